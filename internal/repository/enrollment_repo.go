package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/mathisDlmr/Tutut-sub000/internal/model"
)

// EnrollmentRepository 报名数据访问接口
type EnrollmentRepository interface {
	Create(ctx context.Context, e *model.Enrollment) error
	Get(ctx context.Context, slotID, tuteeID string) (*model.Enrollment, error)
	CountBySlot(ctx context.Context, slotID string) (int64, error)
	CountBySlots(ctx context.Context, slotIDs []string) (map[string]int64, error)
	CountByWeek(ctx context.Context, weekID string) (int64, error)
	ListBySlot(ctx context.Context, slotID string) ([]model.Enrollment, error)
	ListByTutee(ctx context.Context, tuteeID, weekID string) ([]model.Enrollment, error)
	Delete(ctx context.Context, slotID, tuteeID string) (int64, error)
	DeleteByWeek(ctx context.Context, weekID string) (int64, error)
}

type enrollmentRepo struct {
	db *gorm.DB
}

// NewEnrollmentRepo 创建 EnrollmentRepository 实例
func NewEnrollmentRepo(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepo{db: db}
}

func (r *enrollmentRepo) Create(ctx context.Context, e *model.Enrollment) error {
	return r.db.WithContext(ctx).Omit("Slot").Create(e).Error
}

func (r *enrollmentRepo) Get(ctx context.Context, slotID, tuteeID string) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.db.WithContext(ctx).
		Where("slot_id = ? AND tutee_id = ?", slotID, tuteeID).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *enrollmentRepo) CountBySlot(ctx context.Context, slotID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("slot_id = ?", slotID).
		Count(&n).Error
	return n, err
}

// CountBySlots 批量统计报名人数
func (r *enrollmentRepo) CountBySlots(ctx context.Context, slotIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(slotIDs))
	if len(slotIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		SlotID string
		N      int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Select("slot_id, COUNT(*) AS n").
		Where("slot_id IN ?", slotIDs).
		Group("slot_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.SlotID] = row.N
	}
	return counts, nil
}

// CountByWeek 统计一周内全部时段的报名数
func (r *enrollmentRepo) CountByWeek(ctx context.Context, weekID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Joins("JOIN slots ON slots.slot_id = enrollments.slot_id").
		Where("slots.week_id = ?", weekID).
		Count(&n).Error
	return n, err
}

func (r *enrollmentRepo) ListBySlot(ctx context.Context, slotID string) ([]model.Enrollment, error) {
	var list []model.Enrollment
	err := r.db.WithContext(ctx).
		Where("slot_id = ?", slotID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

// ListByTutee 学员报名列表，weekID 为空时不限周次
func (r *enrollmentRepo) ListByTutee(ctx context.Context, tuteeID, weekID string) ([]model.Enrollment, error) {
	var list []model.Enrollment
	db := r.db.WithContext(ctx).
		Preload("Slot").
		Where("enrollments.tutee_id = ?", tuteeID)
	if weekID != "" {
		db = db.Joins("JOIN slots ON slots.slot_id = enrollments.slot_id").
			Where("slots.week_id = ?", weekID)
	}
	err := db.Order("enrollments.created_at ASC").Find(&list).Error
	return list, err
}

func (r *enrollmentRepo) Delete(ctx context.Context, slotID, tuteeID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("slot_id = ? AND tutee_id = ?", slotID, tuteeID).
		Delete(&model.Enrollment{})
	return result.RowsAffected, result.Error
}

// DeleteByWeek 删除一周内全部时段的报名（重新生成时段前调用）
func (r *enrollmentRepo) DeleteByWeek(ctx context.Context, weekID string) (int64, error) {
	sub := r.db.Session(&gorm.Session{NewDB: true}).
		Model(&model.Slot{}).
		Select("slot_id").
		Where("week_id = ?", weekID)
	result := r.db.WithContext(ctx).
		Where("slot_id IN (?)", sub).
		Delete(&model.Enrollment{})
	return result.RowsAffected, result.Error
}
