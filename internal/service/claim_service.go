package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mathisDlmr/Tutut-sub000/config"
	"github.com/mathisDlmr/Tutut-sub000/internal/dto"
	"github.com/mathisDlmr/Tutut-sub000/internal/model"
	"github.com/mathisDlmr/Tutut-sub000/internal/repository"
)

// ── 抢位模块业务错误 ──

var (
	ErrPositionInvalid   = errors.New("席位只能为 1 或 2")
	ErrNotPositionHolder = errors.New("当前用户不是该席位的持有者")
)

// 抢位失败原因；竞争失败属于正常结果，不返回错误
const (
	ClaimReasonPositionTaken = "position_taken"
	ClaimReasonAlreadyInSlot = "already_in_slot"
)

// ClaimService 辅导员抢位接口
type ClaimService interface {
	Claim(ctx context.Context, slotID, tutorID string, position int) (*dto.ClaimResponse, error)
	Release(ctx context.Context, slotID, tutorID string, position int) (*dto.SlotResponse, error)
	OpenWeek(ctx context.Context, weekID, callerID string) (*dto.OpenWeekResponse, error)
	SetAttendance(ctx context.Context, slotID, callerID string, position int, att model.Attendance) (*dto.SlotResponse, error)
	ListMine(ctx context.Context, tutorID, weekID string) ([]dto.SlotResponse, error)
}

type claimService struct {
	repo   *repository.Repository
	cfg    *config.SchedulingConfig
	logger *zap.Logger
}

// NewClaimService 创建 ClaimService 实例
func NewClaimService(repo *repository.Repository, cfg *config.SchedulingConfig, logger *zap.Logger) ClaimService {
	return &claimService{repo: repo, cfg: cfg, logger: logger}
}

// ────────────────────── Claim ──────────────────────

// Claim 抢占席位：单条条件 UPDATE，失败后重读时段判定原因
func (s *claimService) Claim(ctx context.Context, slotID, tutorID string, position int) (*dto.ClaimResponse, error) {
	pos := model.TutorPosition(position)
	if !pos.Valid() {
		return nil, ErrPositionInvalid
	}

	claimed, err := s.repo.Slot.ClaimPosition(ctx, slotID, tutorID, pos)
	if err != nil {
		s.logger.Error("抢位失败", zap.String("slot_id", slotID), zap.String("tutor_id", tutorID), zap.Error(err))
		return nil, err
	}

	slot, err := s.load(ctx, slotID)
	if err != nil {
		return nil, err
	}

	resp := &dto.ClaimResponse{Claimed: claimed, Slot: slot.response}
	if !claimed {
		if _, in := slot.row.PositionOf(tutorID); in {
			resp.Reason = ClaimReasonAlreadyInSlot
		} else {
			resp.Reason = ClaimReasonPositionTaken
		}
		s.logger.Debug("抢位未成功",
			zap.String("slot_id", slotID),
			zap.String("tutor_id", tutorID),
			zap.Int("position", position),
			zap.String("reason", resp.Reason),
		)
		return resp, nil
	}

	s.logger.Info("抢位成功",
		zap.String("slot_id", slotID),
		zap.String("tutor_id", tutorID),
		zap.Int("position", position),
	)
	return resp, nil
}

// ────────────────────── Release ──────────────────────

// Release 释放席位；已有报名保留
func (s *claimService) Release(ctx context.Context, slotID, tutorID string, position int) (*dto.SlotResponse, error) {
	pos := model.TutorPosition(position)
	if !pos.Valid() {
		return nil, ErrPositionInvalid
	}

	released, err := s.repo.Slot.ReleasePosition(ctx, slotID, tutorID, pos)
	if err != nil {
		s.logger.Error("释放席位失败", zap.String("slot_id", slotID), zap.Error(err))
		return nil, err
	}

	slot, err := s.load(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if !released {
		return nil, ErrNotPositionHolder
	}

	s.logger.Info("席位已释放",
		zap.String("slot_id", slotID),
		zap.String("tutor_id", tutorID),
		zap.Int("position", position),
	)
	return slot.response, nil
}

// ────────────────────── OpenWeek ──────────────────────

// OpenWeek 开放指定周的全部时段，其余周全部关闭
func (s *claimService) OpenWeek(ctx context.Context, weekID, callerID string) (*dto.OpenWeekResponse, error) {
	var opened int64
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if _, err := tx.Week.GetByID(ctx, weekID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWeekNotFound
			}
			return fmt.Errorf("查询周次失败: %w", err)
		}

		n, err := tx.Slot.OpenOnlyWeek(ctx, weekID)
		if err != nil {
			return fmt.Errorf("开放时段失败: %w", err)
		}
		opened = n
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrWeekNotFound) {
			s.logger.Error("开放周失败", zap.String("week_id", weekID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("周时段已开放",
		zap.String("week_id", weekID),
		zap.Int64("opened", opened),
		zap.String("operator", callerID),
	)
	return &dto.OpenWeekResponse{WeekID: weekID, Opened: opened}, nil
}

// ────────────────────── SetAttendance ──────────────────────

// SetAttendance 席位持有者标记本人出勤
func (s *claimService) SetAttendance(ctx context.Context, slotID, callerID string, position int, att model.Attendance) (*dto.SlotResponse, error) {
	pos := model.TutorPosition(position)
	if !pos.Valid() {
		return nil, ErrPositionInvalid
	}

	updated, err := s.repo.Slot.SetAttendance(ctx, slotID, callerID, pos, att)
	if err != nil {
		s.logger.Error("标记出勤失败", zap.String("slot_id", slotID), zap.Error(err))
		return nil, err
	}

	slot, err := s.load(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrNotPositionHolder
	}
	return slot.response, nil
}

// ────────────────────── ListMine ──────────────────────

func (s *claimService) ListMine(ctx context.Context, tutorID, weekID string) ([]dto.SlotResponse, error) {
	slots, err := s.repo.Slot.ListByTutor(ctx, weekID, tutorID)
	if err != nil {
		s.logger.Error("查询我的时段失败", zap.String("tutor_id", tutorID), zap.Error(err))
		return nil, err
	}
	return slotResponses(ctx, s.repo, slots, s.cfg)
}

// ── 内部辅助方法 ──

type loadedSlot struct {
	row      *model.Slot
	response *dto.SlotResponse
}

func (s *claimService) load(ctx context.Context, slotID string) (*loadedSlot, error) {
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
	return &loadedSlot{row: slot, response: toSlotResponse(slot, n, s.cfg)}, nil
}
