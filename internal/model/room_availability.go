package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RoomAvailability 教室可用时间，对应 room_availabilities
// 时间为墙上时间，不涉及时区换算
type RoomAvailability struct {
	RoomAvailabilityID string         `gorm:"type:uuid;primaryKey"                      json:"room_availability_id"`
	Room               string         `gorm:"type:varchar(50);not null"                 json:"room"`
	DayLabel           DayLabel       `gorm:"type:varchar(20);not null;index"           json:"day_label"`
	StartTime          datatypes.Time `gorm:"not null"                                  json:"start_time"`
	EndTime            datatypes.Time `gorm:"not null"                                  json:"end_time"`
	BaseModel
}

// TableName 指定表名
func (RoomAvailability) TableName() string { return "room_availabilities" }

// BeforeCreate 生成主键
func (r *RoomAvailability) BeforeCreate(_ *gorm.DB) error {
	ensureID(&r.RoomAvailabilityID)
	return nil
}

// Fits 判断 [start, start+d] 是否完全落在可用窗口内（含边界）
func (r *RoomAvailability) Fits(start datatypes.Time, d time.Duration) bool {
	end := start + datatypes.Time(d)
	return start >= r.StartTime && end <= r.EndTime
}
