package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mathisDlmr/Tutut-sub000/internal/dto"
	"github.com/mathisDlmr/Tutut-sub000/internal/model"
	"github.com/mathisDlmr/Tutut-sub000/internal/repository"
	pkgerrors "github.com/mathisDlmr/Tutut-sub000/pkg/errors"
)

// ── 课时台账业务错误 ──

var (
	ErrLedgerLocked        = errors.New("台账已锁定，不能重新计算")
	ErrLedgerEntryNotFound = errors.New("台账条目不存在")
	ErrLedgerConflict      = errors.New("台账已被并发修改，请重试")
	ErrSupplementalInvalid = errors.New("补充课时参数无效")
)

var minutesPerHour = decimal.NewFromInt(60)

// AccountingService 周课时计算与台账接口
type AccountingService interface {
	ComputeWeeklyHours(ctx context.Context, userID, weekID string, supplemental *[]dto.SupplementalHoursInput, callerID string) (*dto.ComputeHoursResponse, error)
	Validate(ctx context.Context, userID, weekID, callerID string) (*dto.LedgerEntryResponse, error)
	Invalidate(ctx context.Context, userID, weekID, callerID string) (*dto.LedgerEntryResponse, error)
	SetComment(ctx context.Context, userID, weekID string, req *dto.SetCommentRequest, callerID string) (*dto.LedgerEntryResponse, error)
	GetEntry(ctx context.Context, userID, weekID string) (*dto.LedgerDetailResponse, error)
	ListByWeek(ctx context.Context, weekID string) ([]dto.LedgerEntryResponse, error)
}

type accountingService struct {
	repo     *repository.Repository
	validate *validator.Validate
	logger   *zap.Logger
}

// NewAccountingService 创建 AccountingService 实例
func NewAccountingService(repo *repository.Repository, logger *zap.Logger) AccountingService {
	return &accountingService{repo: repo, validate: newValidator(), logger: logger}
}

// ────────────────────── ComputeWeeklyHours ──────────────────────

// ComputeWeeklyHours 计算用户一周课时并写入台账
// supplemental 为 nil 时沿用已有补充课时，否则整体替换
func (s *accountingService) ComputeWeeklyHours(ctx context.Context, userID, weekID string, supplemental *[]dto.SupplementalHoursInput, callerID string) (*dto.ComputeHoursResponse, error) {
	if supplemental != nil {
		for i := range *supplemental {
			if err := s.validate.Struct(&(*supplemental)[i]); err != nil {
				return nil, fmt.Errorf("%w: 第 %d 条 %s", ErrSupplementalInvalid, i+1, describeValidation(err))
			}
		}
	}

	resp := &dto.ComputeHoursResponse{UserID: userID, WeekID: weekID}

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if _, err := tx.Week.GetByID(ctx, weekID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWeekNotFound
			}
			return fmt.Errorf("查询周次失败: %w", err)
		}

		entry, err := tx.Ledger.Get(ctx, userID, weekID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("查询台账失败: %w", err)
			}
		}
		if entry != nil && entry.IsLocked {
			return ErrLedgerLocked
		}

		rows, err := s.supplementalRows(ctx, tx, userID, weekID, supplemental, callerID)
		if err != nil {
			return err
		}
		resp.SupplementalReplaced = supplemental != nil

		slots, err := tx.Slot.ListByTutor(ctx, weekID, userID)
		if err != nil {
			return fmt.Errorf("查询时段失败: %w", err)
		}

		resp.SlotHours = CountedSlotHours(slots, userID)
		resp.SupplementalHours = sumSupplemental(rows)
		resp.Total = resp.SlotHours.Add(resp.SupplementalHours).Round(2)
		resp.Supplemental = toSupplementalResponses(rows)

		switch {
		case entry == nil && resp.Total.IsZero() && len(rows) == 0:
			// 无课时不建台账
			return nil
		case entry == nil:
			entry = &model.AccountingLedgerEntry{UserID: userID, WeekID: weekID, Hours: resp.Total}
			entry.CreatedBy = &callerID
			entry.UpdatedBy = &callerID
			if err := tx.Ledger.Create(ctx, entry); err != nil {
				return wrapLedgerWrite(err)
			}
			resp.Written = true
		case resp.Total.IsZero() && !entry.Hours.IsZero():
			// 已有非零课时不被 0 覆盖，补充课时的替换仍然生效
			s.logger.Info("总课时为 0，保留已有台账课时",
				zap.String("user_id", userID),
				zap.String("week_id", weekID),
				zap.String("kept", entry.Hours.StringFixed(2)),
				zap.Bool("supplemental_replaced", resp.SupplementalReplaced),
			)
		default:
			entry.Hours = resp.Total
			entry.UpdatedBy = &callerID
			if err := tx.Ledger.UpdateHours(ctx, entry); err != nil {
				return wrapLedgerWrite(err)
			}
			resp.Written = true
		}
		resp.Entry = toLedgerEntryResponse(entry)
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrWeekNotFound), errors.Is(err, ErrLedgerLocked), errors.Is(err, ErrLedgerConflict):
			s.logger.Debug("课时计算未写入", zap.String("user_id", userID), zap.String("week_id", weekID), zap.Error(err))
		default:
			s.logger.Error("课时计算失败", zap.String("user_id", userID), zap.String("week_id", weekID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("周课时已计算",
		zap.String("user_id", userID),
		zap.String("week_id", weekID),
		zap.String("total", resp.Total.StringFixed(2)),
		zap.Bool("written", resp.Written),
		zap.Bool("supplemental_replaced", resp.SupplementalReplaced),
		zap.String("operator", callerID),
	)
	return resp, nil
}

// CountedSlotHours 累加用户出勤为“计入”的时段时长（小时）
func CountedSlotHours(slots []model.Slot, userID string) decimal.Decimal {
	total := decimal.Zero
	for i := range slots {
		pos, ok := slots[i].PositionOf(userID)
		if !ok || slots[i].Counted(pos) != model.AttendanceCounted {
			continue
		}
		minutes := decimal.NewFromInt(int64(slots[i].Duration().Minutes()))
		total = total.Add(minutes.Div(minutesPerHour))
	}
	return total
}

// ────────────────────── Validate / Invalidate ──────────────────────

// Validate 锁定台账，锁定后不再自动重算
func (s *accountingService) Validate(ctx context.Context, userID, weekID, callerID string) (*dto.LedgerEntryResponse, error) {
	return s.setLocked(ctx, userID, weekID, true, callerID)
}

// Invalidate 解除锁定
func (s *accountingService) Invalidate(ctx context.Context, userID, weekID, callerID string) (*dto.LedgerEntryResponse, error) {
	return s.setLocked(ctx, userID, weekID, false, callerID)
}

func (s *accountingService) setLocked(ctx context.Context, userID, weekID string, locked bool, callerID string) (*dto.LedgerEntryResponse, error) {
	n, err := s.repo.Ledger.SetLocked(ctx, userID, weekID, locked, callerID)
	if err != nil {
		s.logger.Error("更新台账锁定状态失败", zap.String("user_id", userID), zap.String("week_id", weekID), zap.Error(err))
		return nil, err
	}
	if n == 0 {
		return nil, ErrLedgerEntryNotFound
	}

	s.logger.Info("台账锁定状态已更新",
		zap.String("user_id", userID),
		zap.String("week_id", weekID),
		zap.Bool("locked", locked),
		zap.String("operator", callerID),
	)
	entry, err := s.getEntry(ctx, userID, weekID)
	if err != nil {
		return nil, err
	}
	return toLedgerEntryResponse(entry), nil
}

// ────────────────────── SetComment ──────────────────────

// SetComment 设置备注，锁定状态下同样允许
func (s *accountingService) SetComment(ctx context.Context, userID, weekID string, req *dto.SetCommentRequest, callerID string) (*dto.LedgerEntryResponse, error) {
	var comment *string
	if req.Comment != nil {
		comment = model.StrPtr(*req.Comment)
	}

	n, err := s.repo.Ledger.SetComment(ctx, userID, weekID, comment, callerID)
	if err != nil {
		s.logger.Error("更新台账备注失败", zap.String("user_id", userID), zap.String("week_id", weekID), zap.Error(err))
		return nil, err
	}
	if n == 0 {
		return nil, ErrLedgerEntryNotFound
	}

	entry, err := s.getEntry(ctx, userID, weekID)
	if err != nil {
		return nil, err
	}
	return toLedgerEntryResponse(entry), nil
}

// ────────────────────── GetEntry ──────────────────────

func (s *accountingService) GetEntry(ctx context.Context, userID, weekID string) (*dto.LedgerDetailResponse, error) {
	entry, err := s.getEntry(ctx, userID, weekID)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.Supplemental.ListByUserWeek(ctx, userID, weekID)
	if err != nil {
		s.logger.Error("查询补充课时失败", zap.String("user_id", userID), zap.String("week_id", weekID), zap.Error(err))
		return nil, err
	}
	return &dto.LedgerDetailResponse{
		Entry:        *toLedgerEntryResponse(entry),
		Supplemental: toSupplementalResponses(rows),
	}, nil
}

// ────────────────────── ListByWeek ──────────────────────

func (s *accountingService) ListByWeek(ctx context.Context, weekID string) ([]dto.LedgerEntryResponse, error) {
	list, err := s.repo.Ledger.ListByWeek(ctx, weekID)
	if err != nil {
		s.logger.Error("列出台账失败", zap.String("week_id", weekID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.LedgerEntryResponse, 0, len(list))
	for i := range list {
		result = append(result, *toLedgerEntryResponse(&list[i]))
	}
	return result, nil
}

// ── 内部辅助方法 ──

func (s *accountingService) getEntry(ctx context.Context, userID, weekID string) (*model.AccountingLedgerEntry, error) {
	entry, err := s.repo.Ledger.Get(ctx, userID, weekID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLedgerEntryNotFound
		}
		s.logger.Error("查询台账失败", zap.String("user_id", userID), zap.String("week_id", weekID), zap.Error(err))
		return nil, err
	}
	return entry, nil
}

// supplementalRows 返回本次计算使用的补充课时；传入新集合时先整体替换
func (s *accountingService) supplementalRows(ctx context.Context, tx *repository.Repository, userID, weekID string, in *[]dto.SupplementalHoursInput, callerID string) ([]model.SupplementalHours, error) {
	if in == nil {
		rows, err := tx.Supplemental.ListByUserWeek(ctx, userID, weekID)
		if err != nil {
			return nil, fmt.Errorf("查询补充课时失败: %w", err)
		}
		return rows, nil
	}

	rows := make([]model.SupplementalHours, 0, len(*in))
	for _, item := range *in {
		row := model.SupplementalHours{
			Hours:         item.Hours.Round(2),
			Justification: item.Justification,
		}
		row.CreatedBy = &callerID
		row.UpdatedBy = &callerID
		rows = append(rows, row)
	}
	if err := tx.Supplemental.Replace(ctx, userID, weekID, rows); err != nil {
		return nil, fmt.Errorf("替换补充课时失败: %w", err)
	}
	return rows, nil
}

func sumSupplemental(rows []model.SupplementalHours) decimal.Decimal {
	total := decimal.Zero
	for i := range rows {
		total = total.Add(rows[i].Hours)
	}
	return total
}

func wrapLedgerWrite(err error) error {
	if errors.Is(err, pkgerrors.ErrOptimisticLock) {
		return ErrLedgerConflict
	}
	return fmt.Errorf("写入台账失败: %w", err)
}

func toLedgerEntryResponse(e *model.AccountingLedgerEntry) *dto.LedgerEntryResponse {
	return &dto.LedgerEntryResponse{
		ID:        e.LedgerEntryID,
		UserID:    e.UserID,
		WeekID:    e.WeekID,
		Hours:     e.Hours,
		Comment:   e.Comment,
		IsLocked:  e.IsLocked,
		Version:   e.Version,
		UpdatedAt: formatTimestamp(e.UpdatedAt),
	}
}

func toSupplementalResponses(rows []model.SupplementalHours) []dto.SupplementalHoursResponse {
	result := make([]dto.SupplementalHoursResponse, 0, len(rows))
	for i := range rows {
		result = append(result, dto.SupplementalHoursResponse{
			ID:            rows[i].SupplementalHoursID,
			Hours:         rows[i].Hours,
			Justification: rows[i].Justification,
		})
	}
	return result
}
