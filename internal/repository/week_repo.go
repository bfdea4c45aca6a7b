package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/mathisDlmr/Tutut-sub000/internal/model"
	pkgerrors "github.com/mathisDlmr/Tutut-sub000/pkg/errors"
)

// WeekRepository 教学周数据访问接口
type WeekRepository interface {
	Create(ctx context.Context, week *model.Week) error
	GetByID(ctx context.Context, id string) (*model.Week, error)
	ListBySemester(ctx context.Context, semesterID string) ([]model.Week, error)
	GetLastBySemester(ctx context.Context, semesterID string) (*model.Week, error)
	Update(ctx context.Context, week *model.Week) error
	Delete(ctx context.Context, id string) error
}

type weekRepo struct {
	db *gorm.DB
}

// NewWeekRepo 创建 WeekRepository 实例
func NewWeekRepo(db *gorm.DB) WeekRepository {
	return &weekRepo{db: db}
}

func (r *weekRepo) Create(ctx context.Context, week *model.Week) error {
	return r.db.WithContext(ctx).Omit("Semester").Create(week).Error
}

// GetByID 查询周次并预加载所属学期
func (r *weekRepo) GetByID(ctx context.Context, id string) (*model.Week, error) {
	var week model.Week
	err := r.db.WithContext(ctx).
		Preload("Semester").
		Where("week_id = ?", id).
		First(&week).Error
	if err != nil {
		return nil, err
	}
	return &week, nil
}

func (r *weekRepo) ListBySemester(ctx context.Context, semesterID string) ([]model.Week, error) {
	var weeks []model.Week
	err := r.db.WithContext(ctx).
		Where("semester_id = ?", semesterID).
		Order("number ASC").
		Find(&weeks).Error
	return weeks, err
}

func (r *weekRepo) GetLastBySemester(ctx context.Context, semesterID string) (*model.Week, error) {
	var week model.Week
	err := r.db.WithContext(ctx).
		Where("semester_id = ?", semesterID).
		Order("number DESC").
		First(&week).Error
	if err != nil {
		return nil, err
	}
	return &week, nil
}

// Update 乐观锁更新
func (r *weekRepo) Update(ctx context.Context, week *model.Week) error {
	oldVersion := week.Version
	result := r.db.WithContext(ctx).
		Model(&model.Week{}).
		Where("week_id = ? AND version = ?", week.WeekID, oldVersion).
		Updates(map[string]interface{}{
			"start_date": week.StartDate,
			"end_date":   week.EndDate,
			"is_break":   week.IsBreak,
			"updated_by": week.UpdatedBy,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	week.Version = oldVersion + 1
	return nil
}

func (r *weekRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("week_id = ?", id).
		Delete(&model.Week{}).Error
}
