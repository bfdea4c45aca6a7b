package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/mathisDlmr/Tutut-sub000/internal/model"
)

// SupplementalHoursRepository 补充课时数据访问接口
type SupplementalHoursRepository interface {
	ListByUserWeek(ctx context.Context, userID, weekID string) ([]model.SupplementalHours, error)
	Replace(ctx context.Context, userID, weekID string, rows []model.SupplementalHours) error
}

type supplementalHoursRepo struct {
	db *gorm.DB
}

// NewSupplementalHoursRepo 创建 SupplementalHoursRepository 实例
func NewSupplementalHoursRepo(db *gorm.DB) SupplementalHoursRepository {
	return &supplementalHoursRepo{db: db}
}

func (r *supplementalHoursRepo) ListByUserWeek(ctx context.Context, userID, weekID string) ([]model.SupplementalHours, error) {
	var list []model.SupplementalHours
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND week_id = ?", userID, weekID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

// Replace 先删后插，需在事务内调用
func (r *supplementalHoursRepo) Replace(ctx context.Context, userID, weekID string, rows []model.SupplementalHours) error {
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND week_id = ?", userID, weekID).
		Delete(&model.SupplementalHours{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		rows[i].UserID = userID
		rows[i].WeekID = weekID
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}
