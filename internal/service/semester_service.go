package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mathisDlmr/Tutut-sub000/internal/dto"
	"github.com/mathisDlmr/Tutut-sub000/internal/model"
	"github.com/mathisDlmr/Tutut-sub000/internal/repository"
	pkgerrors "github.com/mathisDlmr/Tutut-sub000/pkg/errors"
)

// ── 学期模块业务错误 ──

var (
	ErrSemesterNotFound     = errors.New("学期不存在")
	ErrSemesterDateInvalid  = errors.New("学期结束日期必须晚于开始日期")
	ErrSemesterExamInvalid  = errors.New("考试周区间须成对填写、起止有序且位于学期内")
	ErrSemesterCodeExists   = errors.New("学期代码已存在")
	ErrSemesterActiveDelete = errors.New("不能删除当前激活的学期")
)

// SemesterService 学期业务接口
type SemesterService interface {
	Create(ctx context.Context, req *dto.CreateSemesterRequest, callerID string) (*dto.SemesterResponse, error)
	GetByID(ctx context.Context, id string) (*dto.SemesterResponse, error)
	GetCurrent(ctx context.Context) (*dto.SemesterResponse, error)
	List(ctx context.Context) ([]dto.SemesterResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateSemesterRequest, callerID string) (*dto.SemesterResponse, error)
	Activate(ctx context.Context, id string, callerID string) error
	Delete(ctx context.Context, id string) error
}

type semesterService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSemesterService 创建 SemesterService 实例
func NewSemesterService(repo *repository.Repository, logger *zap.Logger) SemesterService {
	return &semesterService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *semesterService) Create(ctx context.Context, req *dto.CreateSemesterRequest, callerID string) (*dto.SemesterResponse, error) {
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return nil, ErrSemesterDateInvalid
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return nil, ErrSemesterDateInvalid
	}

	semester := &model.Semester{
		Code:      req.Code,
		StartDate: startDate,
		EndDate:   endDate,
		IsActive:  false,
	}
	if err := applyExamRanges(semester, req.MidtermStart, req.MidtermEnd, req.FinalsStart, req.FinalsEnd); err != nil {
		return nil, err
	}
	if err := validateSemesterDates(semester); err != nil {
		return nil, err
	}
	semester.CreatedBy = &callerID
	semester.UpdatedBy = &callerID

	if err := s.repo.Semester.Create(ctx, semester); err != nil {
		if pkgerrors.IsDuplicateKey(err) {
			return nil, ErrSemesterCodeExists
		}
		s.logger.Error("创建学期失败", zap.Error(err))
		return nil, err
	}

	return toSemesterResponse(semester), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *semesterService) GetByID(ctx context.Context, id string) (*dto.SemesterResponse, error) {
	semester, err := s.repo.Semester.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toSemesterResponse(semester), nil
}

// ────────────────────── GetCurrent ──────────────────────

func (s *semesterService) GetCurrent(ctx context.Context) (*dto.SemesterResponse, error) {
	semester, err := s.repo.Semester.GetCurrent(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		s.logger.Error("查询当前学期失败", zap.Error(err))
		return nil, err
	}

	return toSemesterResponse(semester), nil
}

// ────────────────────── List ──────────────────────

func (s *semesterService) List(ctx context.Context) ([]dto.SemesterResponse, error) {
	semesters, err := s.repo.Semester.List(ctx)
	if err != nil {
		s.logger.Error("列出学期失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.SemesterResponse, 0, len(semesters))
	for i := range semesters {
		result = append(result, *toSemesterResponse(&semesters[i]))
	}

	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *semesterService) Update(ctx context.Context, id string, req *dto.UpdateSemesterRequest, callerID string) (*dto.SemesterResponse, error) {
	semester, err := s.repo.Semester.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Code != nil {
		semester.Code = *req.Code
	}
	if req.StartDate != nil {
		if semester.StartDate, err = parseDate(*req.StartDate); err != nil {
			return nil, ErrSemesterDateInvalid
		}
	}
	if req.EndDate != nil {
		if semester.EndDate, err = parseDate(*req.EndDate); err != nil {
			return nil, ErrSemesterDateInvalid
		}
	}

	// 未传的考试周字段保持原值
	ms, me := pick(req.MidtermStart, semester.MidtermStart), pick(req.MidtermEnd, semester.MidtermEnd)
	fs, fe := pick(req.FinalsStart, semester.FinalsStart), pick(req.FinalsEnd, semester.FinalsEnd)
	if err := applyExamRanges(semester, ms, me, fs, fe); err != nil {
		return nil, err
	}
	if err := validateSemesterDates(semester); err != nil {
		return nil, err
	}

	semester.UpdatedBy = &callerID

	if err := s.repo.Semester.Update(ctx, semester); err != nil {
		if pkgerrors.IsDuplicateKey(err) {
			return nil, ErrSemesterCodeExists
		}
		s.logger.Error("更新学期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toSemesterResponse(semester), nil
}

// ────────────────────── Activate ──────────────────────

// Activate 在单个事务内清除全部激活标记并激活目标学期
// 读者不会观察到零个或两个激活学期的中间状态；部分唯一索引兜底
func (s *semesterService) Activate(ctx context.Context, id string, callerID string) error {
	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.Semester.ClearActive(ctx); err != nil {
			return err
		}

		// ClearActive 会递增版本号，需在事务内重新读取
		semester, err := txRepo.Semester.GetByID(ctx, id)
		if err != nil {
			return err
		}

		semester.IsActive = true
		semester.UpdatedBy = &callerID
		return txRepo.Semester.Update(ctx, semester)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSemesterNotFound
		}
		s.logger.Error("激活学期失败", zap.String("id", id), zap.Error(err))
		return err
	}

	s.logger.Info("学期已激活", zap.String("id", id), zap.String("caller", callerID))
	return nil
}

// ────────────────────── Delete ──────────────────────

func (s *semesterService) Delete(ctx context.Context, id string) error {
	semester, err := s.repo.Semester.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if semester.IsActive {
		return ErrSemesterActiveDelete
	}

	if err := s.repo.Semester.Delete(ctx, id); err != nil {
		s.logger.Error("删除学期失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ── 内部辅助方法 ──

func validateSemesterDates(s *model.Semester) error {
	if !s.EndDate.After(s.StartDate) {
		return ErrSemesterDateInvalid
	}
	for _, r := range [][2]*time.Time{{s.MidtermStart, s.MidtermEnd}, {s.FinalsStart, s.FinalsEnd}} {
		start, end := r[0], r[1]
		if (start == nil) != (end == nil) {
			return ErrSemesterExamInvalid
		}
		if start == nil {
			continue
		}
		if end.Before(*start) || start.Before(s.StartDate) || end.After(s.EndDate) {
			return ErrSemesterExamInvalid
		}
	}
	return nil
}

// applyExamRanges 解析并写入考试周区间
func applyExamRanges(s *model.Semester, ms, me, fs, fe *string) error {
	var err error
	if s.MidtermStart, err = parseOptionalDate(ms); err != nil {
		return ErrSemesterExamInvalid
	}
	if s.MidtermEnd, err = parseOptionalDate(me); err != nil {
		return ErrSemesterExamInvalid
	}
	if s.FinalsStart, err = parseOptionalDate(fs); err != nil {
		return ErrSemesterExamInvalid
	}
	if s.FinalsEnd, err = parseOptionalDate(fe); err != nil {
		return ErrSemesterExamInvalid
	}
	return nil
}

// pick 请求字段未传时回落到当前值
func pick(req *string, current *time.Time) *string {
	if req != nil {
		return req
	}
	return formatOptionalDate(current)
}

func toSemesterResponse(semester *model.Semester) *dto.SemesterResponse {
	return &dto.SemesterResponse{
		ID:           semester.SemesterID,
		Code:         semester.Code,
		StartDate:    formatDate(semester.StartDate),
		EndDate:      formatDate(semester.EndDate),
		IsActive:     semester.IsActive,
		MidtermStart: formatOptionalDate(semester.MidtermStart),
		MidtermEnd:   formatOptionalDate(semester.MidtermEnd),
		FinalsStart:  formatOptionalDate(semester.FinalsStart),
		FinalsEnd:    formatOptionalDate(semester.FinalsEnd),
		CreatedAt:    formatTimestamp(semester.CreatedAt),
		UpdatedAt:    formatTimestamp(semester.UpdatedAt),
	}
}
