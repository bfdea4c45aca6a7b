package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mathisDlmr/Tutut-sub000/internal/dto"
	"github.com/mathisDlmr/Tutut-sub000/internal/model"
	"github.com/mathisDlmr/Tutut-sub000/internal/repository"
	pkgerrors "github.com/mathisDlmr/Tutut-sub000/pkg/errors"
)

// ── 周次模块业务错误 ──

var (
	ErrWeekNotFound      = errors.New("周次不存在")
	ErrWeekDateInvalid   = errors.New("周次日期无效或超出学期范围")
	ErrWeekNumberExists  = errors.New("该学期已存在相同编号的周次")
	ErrSemesterEnded     = errors.New("学期已结束，无法追加周次")
	ErrWeekVersionExpire = errors.New("周次已被其他操作修改，请刷新后重试")
)

// WeekService 周次业务接口
type WeekService interface {
	Create(ctx context.Context, req *dto.CreateWeekRequest, callerID string) (*dto.WeekResponse, error)
	CreateNextWeek(ctx context.Context, req *dto.CreateNextWeekRequest, callerID string) (*dto.WeekResponse, error)
	GetByID(ctx context.Context, id string) (*dto.WeekResponse, error)
	ListBySemester(ctx context.Context, semesterID string) ([]dto.WeekResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateWeekRequest, callerID string) (*dto.WeekResponse, error)
	Delete(ctx context.Context, id string) error
}

type weekService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewWeekService 创建 WeekService 实例
func NewWeekService(repo *repository.Repository, logger *zap.Logger) WeekService {
	return &weekService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *weekService) Create(ctx context.Context, req *dto.CreateWeekRequest, callerID string) (*dto.WeekResponse, error) {
	semester, err := s.getSemester(ctx, req.SemesterID)
	if err != nil {
		return nil, err
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		return nil, ErrWeekDateInvalid
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return nil, ErrWeekDateInvalid
	}

	week := &model.Week{
		SemesterID: semester.SemesterID,
		Number:     req.Number,
		StartDate:  start,
		EndDate:    end,
		IsBreak:    req.IsBreak,
	}
	if err := validateWeekDates(week, semester); err != nil {
		return nil, err
	}

	return s.create(ctx, week, callerID)
}

// ────────────────────── CreateNextWeek ──────────────────────

// CreateNextWeek 追加下一周：编号为上一周 +1，起始日为上一周结束次日（首周为学期开始日），
// 结束日为起始日 +6 天与学期结束日中的较早者
func (s *weekService) CreateNextWeek(ctx context.Context, req *dto.CreateNextWeekRequest, callerID string) (*dto.WeekResponse, error) {
	semester, err := s.getSemester(ctx, req.SemesterID)
	if err != nil {
		return nil, err
	}

	number := 1
	start := model.DateOnly(semester.StartDate)

	last, err := s.repo.Week.GetLastBySemester(ctx, semester.SemesterID)
	switch {
	case err == nil:
		number = last.Number + 1
		start = model.DateOnly(last.EndDate).AddDate(0, 0, 1)
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		s.logger.Error("查询最后一周失败", zap.String("semester_id", semester.SemesterID), zap.Error(err))
		return nil, err
	}

	semEnd := model.DateOnly(semester.EndDate)
	if start.After(semEnd) {
		return nil, ErrSemesterEnded
	}
	end := start.AddDate(0, 0, 6)
	if end.After(semEnd) {
		end = semEnd
	}

	week := &model.Week{
		SemesterID: semester.SemesterID,
		Number:     number,
		StartDate:  start,
		EndDate:    end,
		IsBreak:    req.IsBreak,
	}
	return s.create(ctx, week, callerID)
}

// ────────────────────── GetByID ──────────────────────

func (s *weekService) GetByID(ctx context.Context, id string) (*dto.WeekResponse, error) {
	week, err := s.repo.Week.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWeekNotFound
		}
		s.logger.Error("查询周次失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toWeekResponse(week), nil
}

// ────────────────────── ListBySemester ──────────────────────

func (s *weekService) ListBySemester(ctx context.Context, semesterID string) ([]dto.WeekResponse, error) {
	if _, err := s.getSemester(ctx, semesterID); err != nil {
		return nil, err
	}

	weeks, err := s.repo.Week.ListBySemester(ctx, semesterID)
	if err != nil {
		s.logger.Error("列出周次失败", zap.String("semester_id", semesterID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.WeekResponse, 0, len(weeks))
	for i := range weeks {
		result = append(result, *toWeekResponse(&weeks[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *weekService) Update(ctx context.Context, id string, req *dto.UpdateWeekRequest, callerID string) (*dto.WeekResponse, error) {
	week, err := s.repo.Week.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWeekNotFound
		}
		s.logger.Error("查询周次失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.StartDate != nil {
		if week.StartDate, err = parseDate(*req.StartDate); err != nil {
			return nil, ErrWeekDateInvalid
		}
	}
	if req.EndDate != nil {
		if week.EndDate, err = parseDate(*req.EndDate); err != nil {
			return nil, ErrWeekDateInvalid
		}
	}
	if req.IsBreak != nil {
		week.IsBreak = *req.IsBreak
	}
	if week.Semester != nil {
		if err := validateWeekDates(week, week.Semester); err != nil {
			return nil, err
		}
	}

	week.UpdatedBy = &callerID
	if err := s.repo.Week.Update(ctx, week); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrWeekVersionExpire
		}
		s.logger.Error("更新周次失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toWeekResponse(week), nil
}

// ────────────────────── Delete ──────────────────────

func (s *weekService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Week.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWeekNotFound
		}
		s.logger.Error("查询周次失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.Week.Delete(ctx, id); err != nil {
		s.logger.Error("删除周次失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *weekService) create(ctx context.Context, week *model.Week, callerID string) (*dto.WeekResponse, error) {
	week.CreatedBy = &callerID
	week.UpdatedBy = &callerID

	if err := s.repo.Week.Create(ctx, week); err != nil {
		if pkgerrors.IsDuplicateKey(err) {
			return nil, ErrWeekNumberExists
		}
		s.logger.Error("创建周次失败", zap.String("semester_id", week.SemesterID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("周次已创建",
		zap.String("semester_id", week.SemesterID),
		zap.Int("number", week.Number),
		zap.String("start", formatDate(week.StartDate)),
		zap.String("end", formatDate(week.EndDate)),
	)
	return toWeekResponse(week), nil
}

func (s *weekService) getSemester(ctx context.Context, id string) (*model.Semester, error) {
	semester, err := s.repo.Semester.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return semester, nil
}

func validateWeekDates(w *model.Week, semester *model.Semester) error {
	if w.EndDate.Before(w.StartDate) {
		return ErrWeekDateInvalid
	}
	if !semester.Contains(w.StartDate) || !semester.Contains(w.EndDate) {
		return ErrWeekDateInvalid
	}
	return nil
}

func toWeekResponse(w *model.Week) *dto.WeekResponse {
	return &dto.WeekResponse{
		ID:         w.WeekID,
		SemesterID: w.SemesterID,
		Number:     w.Number,
		StartDate:  formatDate(w.StartDate),
		EndDate:    formatDate(w.EndDate),
		IsBreak:    w.IsBreak,
		Version:    w.Version,
	}
}
