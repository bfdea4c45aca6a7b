package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mathisDlmr/Tutut-sub000/config"
	"github.com/mathisDlmr/Tutut-sub000/internal/dto"
	"github.com/mathisDlmr/Tutut-sub000/internal/model"
	"github.com/mathisDlmr/Tutut-sub000/internal/repository"
)

// ── 校历模块业务错误 ──

var (
	ErrOverrideNotFound  = errors.New("校历覆盖不存在")
	ErrOverrideInvalid   = errors.New("校历覆盖必须且只能是假日或指定日期模板之一")
	ErrDayLabelInvalid   = errors.New("日期模板标签无效")
	ErrICSParseFailed    = errors.New("ICS 文件解析失败")
	ErrICSEmpty          = errors.New("ICS 文件中未发现全天假日")
	ErrICSSourceMissing  = errors.New("未提供假日 ICS 地址")
	ErrICSFetchFailed    = errors.New("获取假日 ICS 失败")
	ErrOverrideDateRange = errors.New("查询区间起点晚于终点")
)

// ResolutionSource 日期解析依据
type ResolutionSource string

const (
	SourceOverride   ResolutionSource = "override"
	SourceExamPeriod ResolutionSource = "exam_period"
	SourceWeekday    ResolutionSource = "weekday"
)

const warnNoActiveSemester = "无激活学期：考试周无法识别，按星期解析"

// Resolution 日期解析结果；Holiday 为 true 时 Label 为空
type Resolution struct {
	Date     time.Time
	Holiday  bool
	Label    model.DayLabel
	Source   ResolutionSource
	Degraded bool
	Warning  string
}

// ToResponse 转换为接口响应
func (r *Resolution) ToResponse() *dto.ResolveResponse {
	return &dto.ResolveResponse{
		Date:     formatDate(r.Date),
		Holiday:  r.Holiday,
		DayLabel: string(r.Label),
		Source:   string(r.Source),
		Degraded: r.Degraded,
		Warning:  r.Warning,
	}
}

// ResolveDay 日期解析规则：覆盖 > 考试周 > 星期
// semester 为空时跳过考试周判断并标记降级
func ResolveDay(date time.Time, override *model.CalendarOverride, semester *model.Semester) Resolution {
	r := Resolution{Date: model.DateOnly(date)}
	if semester == nil {
		r.Degraded = true
		r.Warning = warnNoActiveSemester
	}

	if override != nil {
		if override.IsHoliday {
			r.Holiday = true
			r.Source = SourceOverride
			return r
		}
		if override.DayLabel != nil && override.DayLabel.Valid() {
			r.Label = *override.DayLabel
			r.Source = SourceOverride
			return r
		}
	}

	if semester != nil {
		switch {
		case semester.InMidterms(date):
			r.Label, r.Source = model.DayMidterms, SourceExamPeriod
			return r
		case semester.InFinals(date):
			r.Label, r.Source = model.DayFinals, SourceExamPeriod
			return r
		}
	}

	r.Label, r.Source = model.WeekdayLabel(date.Weekday()), SourceWeekday
	return r
}

// CalendarService 校历解析与覆盖管理接口
type CalendarService interface {
	// Resolve 以当前激活学期解析日期；无激活学期时降级而不报错
	Resolve(ctx context.Context, date time.Time) (*Resolution, error)
	// ResolveFor 以指定学期解析日期
	ResolveFor(ctx context.Context, semester *model.Semester, date time.Time) (*Resolution, error)

	SetOverride(ctx context.Context, req *dto.SetOverrideRequest, callerID string) (*dto.OverrideResponse, error)
	DeleteOverride(ctx context.Context, id string) error
	ListOverrides(ctx context.Context, req *dto.OverrideListRequest) ([]dto.OverrideResponse, error)

	ImportHolidaysICS(ctx context.Context, reader io.Reader, replaceExisting bool, callerID string) (*dto.ImportHolidaysResponse, error)
	ImportHolidaysFromURL(ctx context.Context, rawURL string, replaceExisting bool, callerID string) (*dto.ImportHolidaysResponse, error)
}

type calendarService struct {
	repo   *repository.Repository
	cfg    *config.CalendarConfig
	logger *zap.Logger
}

// NewCalendarService 创建 CalendarService 实例
func NewCalendarService(repo *repository.Repository, cfg *config.CalendarConfig, logger *zap.Logger) CalendarService {
	return &calendarService{repo: repo, cfg: cfg, logger: logger}
}

// ────────────────────── Resolve ──────────────────────

func (s *calendarService) Resolve(ctx context.Context, date time.Time) (*Resolution, error) {
	semester, err := s.repo.Semester.GetCurrent(ctx)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询当前学期失败", zap.Error(err))
			return nil, err
		}
		semester = nil
	}

	res, err := s.ResolveFor(ctx, semester, date)
	if err != nil {
		return nil, err
	}
	if res.Degraded {
		s.logger.Warn(res.Warning, zap.String("date", formatDate(date)))
	}
	return res, nil
}

func (s *calendarService) ResolveFor(ctx context.Context, semester *model.Semester, date time.Time) (*Resolution, error) {
	override, err := s.repo.CalendarOverride.GetByDate(ctx, date)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询校历覆盖失败", zap.String("date", formatDate(date)), zap.Error(err))
			return nil, err
		}
		override = nil
	}

	res := ResolveDay(date, override, semester)
	return &res, nil
}

// ────────────────────── Overrides ──────────────────────

func (s *calendarService) SetOverride(ctx context.Context, req *dto.SetOverrideRequest, callerID string) (*dto.OverrideResponse, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	hasLabel := req.DayLabel != nil && *req.DayLabel != ""
	if req.IsHoliday == hasLabel {
		return nil, ErrOverrideInvalid
	}

	o := &model.CalendarOverride{
		Date:        date,
		IsHoliday:   req.IsHoliday,
		Description: req.Description,
	}
	if hasLabel {
		label, ok := model.ParseDayLabel(*req.DayLabel)
		if !ok {
			return nil, ErrDayLabelInvalid
		}
		o.DayLabel = &label
	}
	o.CreatedBy = &callerID
	o.UpdatedBy = &callerID

	if err := s.repo.CalendarOverride.Upsert(ctx, o); err != nil {
		s.logger.Error("写入校历覆盖失败", zap.String("date", req.Date), zap.Error(err))
		return nil, err
	}

	s.logger.Info("校历覆盖已设置",
		zap.String("date", req.Date),
		zap.Bool("holiday", o.IsHoliday),
		zap.String("caller", callerID),
	)
	return toOverrideResponse(o), nil
}

func (s *calendarService) DeleteOverride(ctx context.Context, id string) error {
	if _, err := s.repo.CalendarOverride.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOverrideNotFound
		}
		s.logger.Error("查询校历覆盖失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.CalendarOverride.Delete(ctx, id); err != nil {
		s.logger.Error("删除校历覆盖失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *calendarService) ListOverrides(ctx context.Context, req *dto.OverrideListRequest) ([]dto.OverrideResponse, error) {
	var from, to time.Time
	var err error
	if req.From != "" {
		if from, err = parseDate(req.From); err != nil {
			return nil, err
		}
	}
	if req.To != "" {
		if to, err = parseDate(req.To); err != nil {
			return nil, err
		}
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, ErrOverrideDateRange
	}

	list, err := s.repo.CalendarOverride.ListRange(ctx, from, to)
	if err != nil {
		s.logger.Error("列出校历覆盖失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.OverrideResponse, 0, len(list))
	for i := range list {
		result = append(result, *toOverrideResponse(&list[i]))
	}
	return result, nil
}

// ────────────────────── ICS import ──────────────────────

// ImportHolidaysICS 将全天事件导入为假日覆盖，整体在一个事务内完成
// 已有的日期模板覆盖（非假日）保留不动，记入 warnings
func (s *calendarService) ImportHolidaysICS(ctx context.Context, reader io.Reader, replaceExisting bool, callerID string) (*dto.ImportHolidaysResponse, error) {
	holidays, skipped, err := ParseHolidayICS(reader)
	if err != nil {
		s.logger.Warn("假日 ICS 解析失败", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrICSParseFailed, err)
	}
	if len(holidays) == 0 {
		return nil, ErrICSEmpty
	}

	result := &dto.ImportHolidaysResponse{Skipped: skipped}
	first, last := holidays[0].Date, holidays[len(holidays)-1].Date

	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if replaceExisting {
			removed, err := txRepo.CalendarOverride.DeleteHolidaysInRange(ctx, first, last)
			if err != nil {
				return err
			}
			result.Removed = removed
		}

		for _, h := range holidays {
			existing, err := txRepo.CalendarOverride.GetByDate(ctx, h.Date)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if existing != nil && !existing.IsHoliday {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("%s 已有日期模板覆盖，未改为假日", formatDate(h.Date)))
				continue
			}

			o := &model.CalendarOverride{
				Date:        h.Date,
				IsHoliday:   true,
				Description: truncate(h.Summary, 200),
			}
			o.CreatedBy = &callerID
			o.UpdatedBy = &callerID
			if err := txRepo.CalendarOverride.Upsert(ctx, o); err != nil {
				return err
			}
			result.Imported++
		}
		return nil
	})
	if err != nil {
		s.logger.Error("导入假日失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("假日导入完成",
		zap.Int("imported", result.Imported),
		zap.Int64("removed", result.Removed),
		zap.Int("skipped", result.Skipped),
		zap.String("from", formatDate(first)),
		zap.String("to", formatDate(last)),
	)
	return result, nil
}

func (s *calendarService) ImportHolidaysFromURL(ctx context.Context, rawURL string, replaceExisting bool, callerID string) (*dto.ImportHolidaysResponse, error) {
	if rawURL == "" && s.cfg != nil {
		rawURL = s.cfg.HolidayICSURL
	}
	if rawURL == "" {
		return nil, ErrICSSourceMissing
	}

	var timeout time.Duration
	if s.cfg != nil {
		timeout = s.cfg.ICSFetchTimeout
	}

	body, err := FetchICSContent(ctx, rawURL, timeout)
	if err != nil {
		s.logger.Warn("获取假日 ICS 失败", zap.String("url", rawURL), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrICSFetchFailed, err)
	}
	defer body.Close()

	return s.ImportHolidaysICS(ctx, body, replaceExisting, callerID)
}

// ── 内部辅助方法 ──

func toOverrideResponse(o *model.CalendarOverride) *dto.OverrideResponse {
	resp := &dto.OverrideResponse{
		ID:          o.OverrideID,
		Date:        formatDate(o.Date),
		IsHoliday:   o.IsHoliday,
		Description: o.Description,
	}
	if o.DayLabel != nil {
		l := string(*o.DayLabel)
		resp.DayLabel = &l
	}
	return resp
}

// truncate 按字符截断
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
