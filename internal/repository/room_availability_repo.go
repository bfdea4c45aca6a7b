package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/mathisDlmr/Tutut-sub000/internal/model"
)

// RoomAvailabilityFilter 列表筛选条件（按请求传入，不保存全局状态）
type RoomAvailabilityFilter struct {
	DayLabel model.DayLabel
	Room     string
}

// RoomAvailabilityRepository 教室可用时间数据访问接口
type RoomAvailabilityRepository interface {
	Create(ctx context.Context, ra *model.RoomAvailability) error
	GetByID(ctx context.Context, id string) (*model.RoomAvailability, error)
	List(ctx context.Context, filter RoomAvailabilityFilter) ([]model.RoomAvailability, error)
	Update(ctx context.Context, ra *model.RoomAvailability) error
	Delete(ctx context.Context, id string) error
}

type roomAvailabilityRepo struct {
	db *gorm.DB
}

// NewRoomAvailabilityRepo 创建 RoomAvailabilityRepository 实例
func NewRoomAvailabilityRepo(db *gorm.DB) RoomAvailabilityRepository {
	return &roomAvailabilityRepo{db: db}
}

func (r *roomAvailabilityRepo) Create(ctx context.Context, ra *model.RoomAvailability) error {
	return r.db.WithContext(ctx).Create(ra).Error
}

func (r *roomAvailabilityRepo) GetByID(ctx context.Context, id string) (*model.RoomAvailability, error) {
	var ra model.RoomAvailability
	err := r.db.WithContext(ctx).
		Where("room_availability_id = ?", id).
		First(&ra).Error
	if err != nil {
		return nil, err
	}
	return &ra, nil
}

func (r *roomAvailabilityRepo) List(ctx context.Context, filter RoomAvailabilityFilter) ([]model.RoomAvailability, error) {
	var list []model.RoomAvailability
	db := r.db.WithContext(ctx)

	if filter.DayLabel != "" {
		db = db.Where("day_label = ?", filter.DayLabel)
	}
	if filter.Room != "" {
		db = db.Where("room = ?", filter.Room)
	}

	err := db.Order("day_label ASC, room ASC, start_time ASC").Find(&list).Error
	return list, err
}

func (r *roomAvailabilityRepo) Update(ctx context.Context, ra *model.RoomAvailability) error {
	return r.db.WithContext(ctx).
		Model(&model.RoomAvailability{}).
		Where("room_availability_id = ?", ra.RoomAvailabilityID).
		Updates(map[string]interface{}{
			"room":       ra.Room,
			"day_label":  ra.DayLabel,
			"start_time": ra.StartTime,
			"end_time":   ra.EndTime,
			"updated_by": ra.UpdatedBy,
		}).Error
}

func (r *roomAvailabilityRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("room_availability_id = ?", id).
		Delete(&model.RoomAvailability{}).Error
}
