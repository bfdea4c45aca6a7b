package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mathisDlmr/Tutut-sub000/config"
	"github.com/mathisDlmr/Tutut-sub000/internal/dto"
	"github.com/mathisDlmr/Tutut-sub000/internal/model"
	"github.com/mathisDlmr/Tutut-sub000/internal/repository"
	pkgerrors "github.com/mathisDlmr/Tutut-sub000/pkg/errors"
)

// ── 报名模块业务错误 ──

var (
	ErrSlotNotOpen       = errors.New("时段未开放报名")
	ErrAlreadyEnrolled   = errors.New("已报名该时段")
	ErrSlotFull          = errors.New("时段名额已满")
	ErrSlotNotEnrollable = errors.New("时段暂无辅导员，无法报名")
	ErrTooManySubjects   = errors.New("期望科目数量超出上限")
)

// EnrollmentService 学员报名接口
type EnrollmentService interface {
	Enroll(ctx context.Context, slotID, tuteeID string, req *dto.EnrollRequest) (*dto.EnrollmentResponse, error)
	Withdraw(ctx context.Context, slotID, tuteeID string) error
	ListBySlot(ctx context.Context, slotID string) ([]dto.EnrollmentResponse, error)
	ListMine(ctx context.Context, tuteeID string, req *dto.MyEnrollmentsRequest) ([]dto.EnrollmentResponse, error)
}

type enrollmentService struct {
	repo   *repository.Repository
	cfg    *config.SchedulingConfig
	logger *zap.Logger
}

// NewEnrollmentService 创建 EnrollmentService 实例
func NewEnrollmentService(repo *repository.Repository, cfg *config.SchedulingConfig, logger *zap.Logger) EnrollmentService {
	return &enrollmentService{repo: repo, cfg: cfg, logger: logger}
}

// ────────────────────── Enroll ──────────────────────

// Enroll 报名：先递增时段版本号锁住该行，再校验状态、计数并插入
// 同一时段的并发报名因此串行执行，唯一索引兜底重复报名
func (s *enrollmentService) Enroll(ctx context.Context, slotID, tuteeID string, req *dto.EnrollRequest) (*dto.EnrollmentResponse, error) {
	subjects := normalizeSubjects(req.DesiredSubjects)
	if len(subjects) > s.cfg.MaxDesiredSubjects {
		return nil, ErrTooManySubjects
	}

	enrollment := &model.Enrollment{
		SlotID:          slotID,
		TuteeID:         tuteeID,
		DesiredSubjects: datatypes.JSONSlice[string](subjects),
	}
	enrollment.CreatedBy = &tuteeID
	enrollment.UpdatedBy = &tuteeID

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		locked, err := tx.Slot.Touch(ctx, slotID)
		if err != nil {
			return fmt.Errorf("锁定时段失败: %w", err)
		}
		if !locked {
			return ErrSlotNotFound
		}

		slot, err := tx.Slot.GetByID(ctx, slotID)
		if err != nil {
			return fmt.Errorf("查询时段失败: %w", err)
		}
		if !slot.IsOpen {
			return ErrSlotNotOpen
		}

		if _, err := tx.Enrollment.Get(ctx, slotID, tuteeID); err == nil {
			return ErrAlreadyEnrolled
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("查询报名失败: %w", err)
		}

		capacity := slot.Capacity(s.cfg.CapacityOneTutor, s.cfg.CapacityTwoTutors)
		if capacity == 0 {
			return ErrSlotNotEnrollable
		}
		count, err := tx.Enrollment.CountBySlot(ctx, slotID)
		if err != nil {
			return fmt.Errorf("统计报名失败: %w", err)
		}
		if count >= int64(capacity) {
			return ErrSlotFull
		}

		if err := tx.Enrollment.Create(ctx, enrollment); err != nil {
			if pkgerrors.IsDuplicateKey(err) {
				return ErrAlreadyEnrolled
			}
			return fmt.Errorf("写入报名失败: %w", err)
		}
		return nil
	})
	if err != nil {
		if isEnrollmentRefusal(err) {
			s.logger.Debug("报名被拒绝", zap.String("slot_id", slotID), zap.String("tutee_id", tuteeID), zap.Error(err))
			return nil, err
		}
		s.logger.Error("报名失败", zap.String("slot_id", slotID), zap.String("tutee_id", tuteeID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("报名成功", zap.String("slot_id", slotID), zap.String("tutee_id", tuteeID))
	return toEnrollmentResponse(enrollment, nil), nil
}

// ────────────────────── Withdraw ──────────────────────

// Withdraw 取消报名，未报名时为空操作
func (s *enrollmentService) Withdraw(ctx context.Context, slotID, tuteeID string) error {
	n, err := s.repo.Enrollment.Delete(ctx, slotID, tuteeID)
	if err != nil {
		s.logger.Error("取消报名失败", zap.String("slot_id", slotID), zap.String("tutee_id", tuteeID), zap.Error(err))
		return err
	}
	if n > 0 {
		s.logger.Info("报名已取消", zap.String("slot_id", slotID), zap.String("tutee_id", tuteeID))
	}
	return nil
}

// ────────────────────── ListBySlot ──────────────────────

func (s *enrollmentService) ListBySlot(ctx context.Context, slotID string) ([]dto.EnrollmentResponse, error) {
	if _, err := getSlot(ctx, s.repo, slotID); err != nil {
		if !errors.Is(err, ErrSlotNotFound) {
			s.logger.Error("查询时段失败", zap.String("slot_id", slotID), zap.Error(err))
		}
		return nil, err
	}

	list, err := s.repo.Enrollment.ListBySlot(ctx, slotID)
	if err != nil {
		s.logger.Error("列出报名失败", zap.String("slot_id", slotID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.EnrollmentResponse, 0, len(list))
	for i := range list {
		result = append(result, *toEnrollmentResponse(&list[i], nil))
	}
	return result, nil
}

// ────────────────────── ListMine ──────────────────────

func (s *enrollmentService) ListMine(ctx context.Context, tuteeID string, req *dto.MyEnrollmentsRequest) ([]dto.EnrollmentResponse, error) {
	list, err := s.repo.Enrollment.ListByTutee(ctx, tuteeID, req.WeekID)
	if err != nil {
		s.logger.Error("查询我的报名失败", zap.String("tutee_id", tuteeID), zap.Error(err))
		return nil, err
	}

	ids := make([]string, 0, len(list))
	for i := range list {
		ids = append(ids, list[i].SlotID)
	}
	counts, err := s.repo.Enrollment.CountBySlots(ctx, ids)
	if err != nil {
		s.logger.Error("统计报名失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.EnrollmentResponse, 0, len(list))
	for i := range list {
		var slot *dto.SlotResponse
		if list[i].Slot != nil {
			slot = toSlotResponse(list[i].Slot, counts[list[i].SlotID], s.cfg)
		}
		result = append(result, *toEnrollmentResponse(&list[i], slot))
	}
	return result, nil
}

// ── 内部辅助方法 ──

// normalizeSubjects 去除空白与重复（大小写不敏感），保留首次出现的写法
func normalizeSubjects(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, raw := range in {
		subject := strings.TrimSpace(raw)
		if subject == "" {
			continue
		}
		key := strings.ToUpper(subject)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, subject)
	}
	return out
}

func isEnrollmentRefusal(err error) bool {
	for _, target := range []error{
		ErrSlotNotFound, ErrSlotNotOpen, ErrAlreadyEnrolled,
		ErrSlotFull, ErrSlotNotEnrollable,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func toEnrollmentResponse(e *model.Enrollment, slot *dto.SlotResponse) *dto.EnrollmentResponse {
	subjects := []string(e.DesiredSubjects)
	if subjects == nil {
		subjects = []string{}
	}
	return &dto.EnrollmentResponse{
		ID:              e.EnrollmentID,
		SlotID:          e.SlotID,
		TuteeID:         e.TuteeID,
		DesiredSubjects: subjects,
		CreatedAt:       formatTimestamp(e.CreatedAt),
		Slot:            slot,
	}
}
