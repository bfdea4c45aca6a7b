package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mathisDlmr/Tutut-sub000/internal/model"
)

// CalendarOverrideRepository 校历覆盖数据访问接口
type CalendarOverrideRepository interface {
	Upsert(ctx context.Context, o *model.CalendarOverride) error
	GetByID(ctx context.Context, id string) (*model.CalendarOverride, error)
	GetByDate(ctx context.Context, date time.Time) (*model.CalendarOverride, error)
	ListRange(ctx context.Context, from, to time.Time) ([]model.CalendarOverride, error)
	Delete(ctx context.Context, id string) error
	DeleteHolidaysInRange(ctx context.Context, from, to time.Time) (int64, error)
}

type calendarOverrideRepo struct {
	db *gorm.DB
}

// NewCalendarOverrideRepo 创建 CalendarOverrideRepository 实例
func NewCalendarOverrideRepo(db *gorm.DB) CalendarOverrideRepository {
	return &calendarOverrideRepo{db: db}
}

// Upsert 按日期写入，同一日期已存在时覆盖
func (r *calendarOverrideRepo) Upsert(ctx context.Context, o *model.CalendarOverride) error {
	o.Date = model.DateOnly(o.Date)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_holiday", "day_label", "description", "updated_at", "updated_by"}),
		}).
		Create(o).Error
	if err != nil {
		return err
	}

	// 冲突更新时主键为新生成的值，需回读
	stored, err := r.GetByDate(ctx, o.Date)
	if err != nil {
		return err
	}
	*o = *stored
	return nil
}

func (r *calendarOverrideRepo) GetByID(ctx context.Context, id string) (*model.CalendarOverride, error) {
	var o model.CalendarOverride
	err := r.db.WithContext(ctx).
		Where("override_id = ?", id).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *calendarOverrideRepo) GetByDate(ctx context.Context, date time.Time) (*model.CalendarOverride, error) {
	var o model.CalendarOverride
	err := r.db.WithContext(ctx).
		Where("date = ?", model.DateOnly(date)).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// ListRange 列出 [from, to] 内的覆盖，零值表示不设边界
func (r *calendarOverrideRepo) ListRange(ctx context.Context, from, to time.Time) ([]model.CalendarOverride, error) {
	var list []model.CalendarOverride
	db := r.db.WithContext(ctx)

	if !from.IsZero() {
		db = db.Where("date >= ?", model.DateOnly(from))
	}
	if !to.IsZero() {
		db = db.Where("date <= ?", model.DateOnly(to))
	}

	err := db.Order("date ASC").Find(&list).Error
	return list, err
}

func (r *calendarOverrideRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("override_id = ?", id).
		Delete(&model.CalendarOverride{}).Error
}

// DeleteHolidaysInRange 删除区间内的假日覆盖（ICS 重新导入前清理）
func (r *calendarOverrideRepo) DeleteHolidaysInRange(ctx context.Context, from, to time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("is_holiday = ? AND date >= ? AND date <= ?", true, model.DateOnly(from), model.DateOnly(to)).
		Delete(&model.CalendarOverride{})
	return result.RowsAffected, result.Error
}
