package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mathisDlmr/Tutut-sub000/internal/dto"
	"github.com/mathisDlmr/Tutut-sub000/internal/model"
	"github.com/mathisDlmr/Tutut-sub000/internal/repository"
)

// ── 教室可用时间业务错误 ──

var (
	ErrRoomAvailabilityNotFound = errors.New("教室可用时间不存在")
	ErrRoomAvailabilityTime     = errors.New("开始时间必须早于结束时间，格式 HH:MM")
)

// RoomAvailabilityService 教室可用时间业务接口
type RoomAvailabilityService interface {
	Create(ctx context.Context, req *dto.CreateRoomAvailabilityRequest, callerID string) (*dto.RoomAvailabilityResponse, error)
	GetByID(ctx context.Context, id string) (*dto.RoomAvailabilityResponse, error)
	List(ctx context.Context, req *dto.RoomAvailabilityListRequest) ([]dto.RoomAvailabilityResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateRoomAvailabilityRequest, callerID string) (*dto.RoomAvailabilityResponse, error)
	Delete(ctx context.Context, id string) error
}

type roomAvailabilityService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewRoomAvailabilityService 创建 RoomAvailabilityService 实例
func NewRoomAvailabilityService(repo *repository.Repository, logger *zap.Logger) RoomAvailabilityService {
	return &roomAvailabilityService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *roomAvailabilityService) Create(ctx context.Context, req *dto.CreateRoomAvailabilityRequest, callerID string) (*dto.RoomAvailabilityResponse, error) {
	label, ok := model.ParseDayLabel(req.DayLabel)
	if !ok {
		return nil, ErrDayLabelInvalid
	}
	start, err := parseClock(req.StartTime)
	if err != nil {
		return nil, ErrRoomAvailabilityTime
	}
	end, err := parseClock(req.EndTime)
	if err != nil {
		return nil, ErrRoomAvailabilityTime
	}
	if start >= end {
		return nil, ErrRoomAvailabilityTime
	}

	ra := &model.RoomAvailability{
		Room:      req.Room,
		DayLabel:  label,
		StartTime: start,
		EndTime:   end,
	}
	ra.CreatedBy = &callerID
	ra.UpdatedBy = &callerID

	if err := s.repo.RoomAvailability.Create(ctx, ra); err != nil {
		s.logger.Error("创建教室可用时间失败", zap.String("room", req.Room), zap.Error(err))
		return nil, err
	}
	return toRoomAvailabilityResponse(ra), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *roomAvailabilityService) GetByID(ctx context.Context, id string) (*dto.RoomAvailabilityResponse, error) {
	ra, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toRoomAvailabilityResponse(ra), nil
}

// ────────────────────── List ──────────────────────

func (s *roomAvailabilityService) List(ctx context.Context, req *dto.RoomAvailabilityListRequest) ([]dto.RoomAvailabilityResponse, error) {
	filter := repository.RoomAvailabilityFilter{Room: req.Room}
	if req.DayLabel != "" {
		label, ok := model.ParseDayLabel(req.DayLabel)
		if !ok {
			return nil, ErrDayLabelInvalid
		}
		filter.DayLabel = label
	}

	list, err := s.repo.RoomAvailability.List(ctx, filter)
	if err != nil {
		s.logger.Error("列出教室可用时间失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.RoomAvailabilityResponse, 0, len(list))
	for i := range list {
		result = append(result, *toRoomAvailabilityResponse(&list[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *roomAvailabilityService) Update(ctx context.Context, id string, req *dto.UpdateRoomAvailabilityRequest, callerID string) (*dto.RoomAvailabilityResponse, error) {
	ra, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Room != nil {
		ra.Room = *req.Room
	}
	if req.DayLabel != nil {
		label, ok := model.ParseDayLabel(*req.DayLabel)
		if !ok {
			return nil, ErrDayLabelInvalid
		}
		ra.DayLabel = label
	}
	if req.StartTime != nil {
		if ra.StartTime, err = parseClock(*req.StartTime); err != nil {
			return nil, ErrRoomAvailabilityTime
		}
	}
	if req.EndTime != nil {
		if ra.EndTime, err = parseClock(*req.EndTime); err != nil {
			return nil, ErrRoomAvailabilityTime
		}
	}
	if ra.StartTime >= ra.EndTime {
		return nil, ErrRoomAvailabilityTime
	}

	ra.UpdatedBy = &callerID
	if err := s.repo.RoomAvailability.Update(ctx, ra); err != nil {
		s.logger.Error("更新教室可用时间失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toRoomAvailabilityResponse(ra), nil
}

// ────────────────────── Delete ──────────────────────

func (s *roomAvailabilityService) Delete(ctx context.Context, id string) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.RoomAvailability.Delete(ctx, id); err != nil {
		s.logger.Error("删除教室可用时间失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *roomAvailabilityService) get(ctx context.Context, id string) (*model.RoomAvailability, error) {
	ra, err := s.repo.RoomAvailability.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomAvailabilityNotFound
		}
		s.logger.Error("查询教室可用时间失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return ra, nil
}

func toRoomAvailabilityResponse(ra *model.RoomAvailability) *dto.RoomAvailabilityResponse {
	return &dto.RoomAvailabilityResponse{
		ID:        ra.RoomAvailabilityID,
		Room:      ra.Room,
		DayLabel:  string(ra.DayLabel),
		StartTime: formatClock(ra.StartTime),
		EndTime:   formatClock(ra.EndTime),
	}
}
