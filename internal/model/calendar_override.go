package model

import (
	"time"

	"gorm.io/gorm"
)

// CalendarOverride 校历覆盖，对应 calendar_overrides
// 每个日期至多一条；要么是假日，要么指定日期模板
type CalendarOverride struct {
	OverrideID  string    `gorm:"type:uuid;primaryKey"                                   json:"override_id"`
	Date        time.Time `gorm:"type:date;not null;uniqueIndex:uk_calendar_overrides_date" json:"date"`
	IsHoliday   bool      `gorm:"not null;default:false"                                 json:"is_holiday"`
	DayLabel    *DayLabel `gorm:"type:varchar(20)"                                       json:"day_label,omitempty"`
	Description string    `gorm:"type:varchar(200)"                                      json:"description,omitempty"`
	BaseModel
}

// TableName 指定表名
func (CalendarOverride) TableName() string { return "calendar_overrides" }

// BeforeCreate 生成主键并规整日期
func (o *CalendarOverride) BeforeCreate(_ *gorm.DB) error {
	ensureID(&o.OverrideID)
	o.Date = DateOnly(o.Date)
	return nil
}
