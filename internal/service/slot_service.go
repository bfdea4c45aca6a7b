package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mathisDlmr/Tutut-sub000/config"
	"github.com/mathisDlmr/Tutut-sub000/internal/dto"
	"github.com/mathisDlmr/Tutut-sub000/internal/model"
	"github.com/mathisDlmr/Tutut-sub000/internal/repository"
)

// ── 时段模块业务错误 ──

var (
	ErrSlotNotFound             = errors.New("时段不存在")
	ErrRegenerationNeedsConfirm = errors.New("该周已有抢位或报名，重新生成需确认")
)

// 跳过原因
const (
	SkipReasonBreakWeek = "break_week"
)

// TimetableEntry 标准课表中的一个时段起点
type TimetableEntry struct {
	Start    datatypes.Time
	Duration time.Duration
}

func slotAt(h, m, minutes int) TimetableEntry {
	return TimetableEntry{Start: datatypes.NewTime(h, m, 0, 0), Duration: time.Duration(minutes) * time.Minute}
}

var weekdayTimetable = []TimetableEntry{slotAt(12, 15, 90), slotAt(18, 40, 60), slotAt(19, 40, 60)}

// examTimetable 考试周：08:00 起每小时一个时段，08:00 为 90 分钟，其余 120 分钟
func examTimetable() []TimetableEntry {
	list := []TimetableEntry{slotAt(8, 0, 90)}
	for h := 9; h <= 18; h++ {
		list = append(list, slotAt(h, 0, 120))
	}
	return list
}

// DefaultTimetable 标准课表（周日无时段）
var DefaultTimetable = map[model.DayLabel][]TimetableEntry{
	model.DayMonday:    weekdayTimetable,
	model.DayTuesday:   weekdayTimetable,
	model.DayWednesday: weekdayTimetable,
	model.DayThursday:  weekdayTimetable,
	model.DayFriday:    weekdayTimetable,
	model.DaySaturday:  {slotAt(10, 0, 60)},
	model.DayMidterms:  examTimetable(),
	model.DayFinals:    examTimetable(),
}

// WeekPlanInput 生成计划所需的全部输入
type WeekPlanInput struct {
	Week      *model.Week
	Semester  *model.Semester
	Overrides []model.CalendarOverride
	Rooms     []model.RoomAvailability
	Timetable map[model.DayLabel][]TimetableEntry
	Location  *time.Location
}

// PlanWeekSlots 计算一周应有的时段（不读写数据库）
// 周一到周六逐日解析日期模板，按教室可用窗口与课表求交
func PlanWeekSlots(in WeekPlanInput) ([]model.Slot, []string) {
	overrides := make(map[time.Time]*model.CalendarOverride, len(in.Overrides))
	for i := range in.Overrides {
		overrides[model.DateOnly(in.Overrides[i].Date)] = &in.Overrides[i]
	}

	roomsByLabel := make(map[model.DayLabel][]model.RoomAvailability)
	for _, ra := range in.Rooms {
		roomsByLabel[ra.DayLabel] = append(roomsByLabel[ra.DayLabel], ra)
	}

	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}

	var slots []model.Slot
	var warnings []string
	monday := in.Week.BaseMonday(in.Semester.StartDate)

	for i := 0; i < 6; i++ {
		date := monday.AddDate(0, 0, i)
		if !in.Semester.Contains(date) {
			warnings = append(warnings, fmt.Sprintf("%s 不在学期范围内，不生成时段", formatDate(date)))
			continue
		}

		res := ResolveDay(date, overrides[date], in.Semester)
		if res.Holiday {
			warnings = append(warnings, fmt.Sprintf("%s 为假日，不生成时段", formatDate(date)))
			continue
		}

		for _, ra := range roomsByLabel[res.Label] {
			for _, te := range in.Timetable[res.Label] {
				if !ra.Fits(te.Start, te.Duration) {
					continue
				}
				start := atClock(date, te.Start, loc)
				slots = append(slots, model.Slot{
					WeekID:  in.Week.WeekID,
					Room:    ra.Room,
					StartAt: start,
					EndAt:   start.Add(te.Duration),
				})
			}
		}
	}

	sort.SliceStable(slots, func(i, j int) bool {
		if !slots[i].StartAt.Equal(slots[j].StartAt) {
			return slots[i].StartAt.Before(slots[j].StartAt)
		}
		return slots[i].Room < slots[j].Room
	})
	return slots, warnings
}

// GenerateOptions 生成选项
type GenerateOptions struct {
	Confirm bool
}

// SlotService 时段生成与查询接口
type SlotService interface {
	Generate(ctx context.Context, weekID string, opts GenerateOptions, callerID string) (*dto.GenerateSlotsResponse, error)
	ListByWeek(ctx context.Context, weekID string, req *dto.SlotListRequest) ([]dto.SlotResponse, error)
	Get(ctx context.Context, slotID string) (*dto.SlotResponse, error)
}

type slotService struct {
	repo   *repository.Repository
	cfg    *config.SchedulingConfig
	logger *zap.Logger
}

// NewSlotService 创建 SlotService 实例
func NewSlotService(repo *repository.Repository, cfg *config.SchedulingConfig, logger *zap.Logger) SlotService {
	return &slotService{repo: repo, cfg: cfg, logger: logger}
}

// ────────────────────── Generate ──────────────────────

// Generate 重新生成一周的时段，删除与插入在同一事务内完成
func (s *slotService) Generate(ctx context.Context, weekID string, opts GenerateOptions, callerID string) (*dto.GenerateSlotsResponse, error) {
	resp := &dto.GenerateSlotsResponse{WeekID: weekID, Slots: []dto.SlotResponse{}}

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		week, err := tx.Week.GetByID(ctx, weekID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWeekNotFound
			}
			return fmt.Errorf("查询周次失败: %w", err)
		}

		if week.IsBreak {
			resp.Skipped = true
			resp.Reason = SkipReasonBreakWeek
			return nil
		}

		semester := week.Semester
		if semester == nil {
			if semester, err = tx.Semester.GetByID(ctx, week.SemesterID); err != nil {
				return fmt.Errorf("查询学期失败: %w", err)
			}
		}

		if !opts.Confirm {
			claimed, err := tx.Slot.CountClaimedByWeek(ctx, weekID)
			if err != nil {
				return fmt.Errorf("统计抢位失败: %w", err)
			}
			enrolled, err := tx.Enrollment.CountByWeek(ctx, weekID)
			if err != nil {
				return fmt.Errorf("统计报名失败: %w", err)
			}
			if claimed > 0 || enrolled > 0 {
				return ErrRegenerationNeedsConfirm
			}
		}

		monday := week.BaseMonday(semester.StartDate)
		overrides, err := tx.CalendarOverride.ListRange(ctx, monday, monday.AddDate(0, 0, 5))
		if err != nil {
			return fmt.Errorf("查询校历覆盖失败: %w", err)
		}
		rooms, err := tx.RoomAvailability.List(ctx, repository.RoomAvailabilityFilter{})
		if err != nil {
			return fmt.Errorf("查询教室可用时间失败: %w", err)
		}

		slots, warnings := PlanWeekSlots(WeekPlanInput{
			Week:      week,
			Semester:  semester,
			Overrides: overrides,
			Rooms:     rooms,
			Timetable: DefaultTimetable,
			Location:  s.cfg.Location(),
		})
		resp.Warnings = warnings

		// SQLite 不级联删除，先删报名
		if _, err := tx.Enrollment.DeleteByWeek(ctx, weekID); err != nil {
			return fmt.Errorf("删除旧报名失败: %w", err)
		}
		if resp.Removed, err = tx.Slot.DeleteByWeek(ctx, weekID); err != nil {
			return fmt.Errorf("删除旧时段失败: %w", err)
		}

		for i := range slots {
			slots[i].CreatedBy = &callerID
			slots[i].UpdatedBy = &callerID
		}
		if err := tx.Slot.BatchCreate(ctx, slots); err != nil {
			return fmt.Errorf("写入时段失败: %w", err)
		}

		resp.Created = len(slots)
		for i := range slots {
			resp.Slots = append(resp.Slots, *toSlotResponse(&slots[i], 0, s.cfg))
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrWeekNotFound) || errors.Is(err, ErrRegenerationNeedsConfirm) {
			return nil, err
		}
		s.logger.Error("生成时段失败", zap.String("week_id", weekID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("时段生成完成",
		zap.String("week_id", weekID),
		zap.Bool("skipped", resp.Skipped),
		zap.Int("created", resp.Created),
		zap.Int64("removed", resp.Removed),
		zap.String("operator", callerID),
	)
	return resp, nil
}

// ────────────────────── ListByWeek ──────────────────────

func (s *slotService) ListByWeek(ctx context.Context, weekID string, req *dto.SlotListRequest) ([]dto.SlotResponse, error) {
	if _, err := s.repo.Week.GetByID(ctx, weekID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWeekNotFound
		}
		s.logger.Error("查询周次失败", zap.String("week_id", weekID), zap.Error(err))
		return nil, err
	}

	slots, err := s.repo.Slot.ListByWeek(ctx, weekID, req.OpenOnly)
	if err != nil {
		s.logger.Error("列出时段失败", zap.String("week_id", weekID), zap.Error(err))
		return nil, err
	}
	return slotResponses(ctx, s.repo, slots, s.cfg)
}

// ────────────────────── Get ──────────────────────

func (s *slotService) Get(ctx context.Context, slotID string) (*dto.SlotResponse, error) {
	slot, err := getSlot(ctx, s.repo, slotID)
	if err != nil {
		if !errors.Is(err, ErrSlotNotFound) {
			s.logger.Error("查询时段失败", zap.String("slot_id", slotID), zap.Error(err))
		}
		return nil, err
	}

	n, err := s.repo.Enrollment.CountBySlot(ctx, slotID)
	if err != nil {
		s.logger.Error("统计报名失败", zap.String("slot_id", slotID), zap.Error(err))
		return nil, err
	}
	return toSlotResponse(slot, n, s.cfg), nil
}

// ── 时段相关共用辅助 ──

func getSlot(ctx context.Context, repo *repository.Repository, slotID string) (*model.Slot, error) {
	slot, err := repo.Slot.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	return slot, nil
}

// slotResponses 批量附带报名人数
func slotResponses(ctx context.Context, repo *repository.Repository, slots []model.Slot, cfg *config.SchedulingConfig) ([]dto.SlotResponse, error) {
	ids := make([]string, 0, len(slots))
	for i := range slots {
		ids = append(ids, slots[i].SlotID)
	}
	counts, err := repo.Enrollment.CountBySlots(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]dto.SlotResponse, 0, len(slots))
	for i := range slots {
		result = append(result, *toSlotResponse(&slots[i], counts[slots[i].SlotID], cfg))
	}
	return result, nil
}

func toSlotResponse(slot *model.Slot, enrolled int64, cfg *config.SchedulingConfig) *dto.SlotResponse {
	return &dto.SlotResponse{
		ID:            slot.SlotID,
		WeekID:        slot.WeekID,
		Room:          slot.Room,
		StartAt:       formatTimestamp(slot.StartAt),
		EndAt:         formatTimestamp(slot.EndAt),
		Tutor1ID:      slot.Tutor1ID,
		Tutor1Counted: slot.Tutor1Counted,
		Tutor2ID:      slot.Tutor2ID,
		Tutor2Counted: slot.Tutor2Counted,
		IsOpen:        slot.IsOpen,
		Capacity:      slot.Capacity(cfg.CapacityOneTutor, cfg.CapacityTwoTutors),
		Enrolled:      enrolled,
		Version:       slot.Version,
	}
}
