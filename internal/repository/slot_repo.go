package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/mathisDlmr/Tutut-sub000/internal/model"
)

// SlotRepository 辅导时段数据访问接口
// 席位变更均为单条条件 UPDATE（compare-and-swap），不做先读后写
type SlotRepository interface {
	BatchCreate(ctx context.Context, slots []model.Slot) error
	GetByID(ctx context.Context, id string) (*model.Slot, error)
	ListByWeek(ctx context.Context, weekID string, openOnly bool) ([]model.Slot, error)
	ListByTutor(ctx context.Context, weekID, tutorID string) ([]model.Slot, error)
	CountClaimedByWeek(ctx context.Context, weekID string) (int64, error)
	DeleteByWeek(ctx context.Context, weekID string) (int64, error)

	ClaimPosition(ctx context.Context, slotID, tutorID string, pos model.TutorPosition) (bool, error)
	ReleasePosition(ctx context.Context, slotID, tutorID string, pos model.TutorPosition) (bool, error)
	SetAttendance(ctx context.Context, slotID, tutorID string, pos model.TutorPosition, att model.Attendance) (bool, error)
	OpenOnlyWeek(ctx context.Context, weekID string) (int64, error)
	Touch(ctx context.Context, slotID string) (bool, error)
}

type slotRepo struct {
	db *gorm.DB
}

// NewSlotRepo 创建 SlotRepository 实例
func NewSlotRepo(db *gorm.DB) SlotRepository {
	return &slotRepo{db: db}
}

func (r *slotRepo) BatchCreate(ctx context.Context, slots []model.Slot) error {
	if len(slots) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&slots, 100).Error
}

func (r *slotRepo) GetByID(ctx context.Context, id string) (*model.Slot, error) {
	var slot model.Slot
	err := r.db.WithContext(ctx).
		Where("slot_id = ?", id).
		First(&slot).Error
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *slotRepo) ListByWeek(ctx context.Context, weekID string, openOnly bool) ([]model.Slot, error) {
	var slots []model.Slot
	db := r.db.WithContext(ctx).Where("week_id = ?", weekID)
	if openOnly {
		db = db.Where("is_open = ?", true)
	}
	err := db.Order("start_at ASC, room ASC").Find(&slots).Error
	return slots, err
}

// ListByTutor 列出某辅导员在一周内占据的时段
func (r *slotRepo) ListByTutor(ctx context.Context, weekID, tutorID string) ([]model.Slot, error) {
	var slots []model.Slot
	err := r.db.WithContext(ctx).
		Where("week_id = ? AND (tutor1_id = ? OR tutor2_id = ?)", weekID, tutorID, tutorID).
		Order("start_at ASC, room ASC").
		Find(&slots).Error
	return slots, err
}

// CountClaimedByWeek 统计一周内已有辅导员的时段数
func (r *slotRepo) CountClaimedByWeek(ctx context.Context, weekID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Slot{}).
		Where("week_id = ? AND (tutor1_id IS NOT NULL OR tutor2_id IS NOT NULL)", weekID).
		Count(&n).Error
	return n, err
}

func (r *slotRepo) DeleteByWeek(ctx context.Context, weekID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("week_id = ?", weekID).
		Delete(&model.Slot{})
	return result.RowsAffected, result.Error
}

// ClaimPosition 席位为空且另一席位不是该辅导员时写入
// 返回 false 表示条件不满足（竞争失败或已在本时段），不视为错误
func (r *slotRepo) ClaimPosition(ctx context.Context, slotID, tutorID string, pos model.TutorPosition) (bool, error) {
	col, other := pos.TutorColumn(), pos.Other().TutorColumn()
	result := r.db.WithContext(ctx).
		Model(&model.Slot{}).
		Where("slot_id = ? AND "+col+" IS NULL AND ("+other+" IS NULL OR "+other+" <> ?)", slotID, tutorID).
		Updates(map[string]interface{}{
			col:                 tutorID,
			pos.CountedColumn(): nil,
			"updated_by":        tutorID,
			"version":           gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ReleasePosition 仅当席位持有者为 tutorID 时清空，并重置出勤
func (r *slotRepo) ReleasePosition(ctx context.Context, slotID, tutorID string, pos model.TutorPosition) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Slot{}).
		Where("slot_id = ? AND "+pos.TutorColumn()+" = ?", slotID, tutorID).
		Updates(map[string]interface{}{
			pos.TutorColumn():   nil,
			pos.CountedColumn(): nil,
			"updated_by":        tutorID,
			"version":           gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// SetAttendance 仅席位持有者本人可写出勤
func (r *slotRepo) SetAttendance(ctx context.Context, slotID, tutorID string, pos model.TutorPosition, att model.Attendance) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Slot{}).
		Where("slot_id = ? AND "+pos.TutorColumn()+" = ?", slotID, tutorID).
		Updates(map[string]interface{}{
			pos.CountedColumn(): att,
			"updated_by":        tutorID,
			"version":           gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// OpenOnlyWeek 打开指定周的全部时段并关闭其余时段，需在事务内调用
func (r *slotRepo) OpenOnlyWeek(ctx context.Context, weekID string) (int64, error) {
	if err := r.db.WithContext(ctx).
		Model(&model.Slot{}).
		Where("week_id <> ? AND is_open = ?", weekID, true).
		Update("is_open", false).Error; err != nil {
		return 0, err
	}

	result := r.db.WithContext(ctx).
		Model(&model.Slot{}).
		Where("week_id = ?", weekID).
		Update("is_open", true)
	return result.RowsAffected, result.Error
}

// Touch 递增版本号以获取行写锁（报名事务的串行化点）
func (r *slotRepo) Touch(ctx context.Context, slotID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Slot{}).
		Where("slot_id = ?", slotID).
		UpdateColumn("version", gorm.Expr("version + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
