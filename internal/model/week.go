package model

import (
	"time"

	"gorm.io/gorm"
)

// Week 教学周，对应 weeks
type Week struct {
	WeekID     string    `gorm:"type:uuid;primaryKey"                                         json:"week_id"`
	SemesterID string    `gorm:"type:uuid;not null;uniqueIndex:uk_weeks_semester_number,priority:1" json:"semester_id"`
	Number     int       `gorm:"type:smallint;not null;uniqueIndex:uk_weeks_semester_number,priority:2" json:"number"`
	StartDate  time.Time `gorm:"type:date;not null"                                           json:"start_date"`
	EndDate    time.Time `gorm:"type:date;not null"                                           json:"end_date"`
	IsBreak    bool      `gorm:"not null;default:false"                                       json:"is_break"`
	VersionedModel

	// 关联
	Semester *Semester `gorm:"foreignKey:SemesterID;references:SemesterID" json:"semester,omitempty"`
}

// TableName 指定表名
func (Week) TableName() string { return "weeks" }

// BeforeCreate 生成主键
func (w *Week) BeforeCreate(_ *gorm.DB) error {
	ensureID(&w.WeekID)
	w.initVersion()
	return nil
}

// BaseMonday 周次基准周一：学期开始日 + (number-1) 周，再回退到当周周一
func (w *Week) BaseMonday(semesterStart time.Time) time.Time {
	d := DateOnly(semesterStart).AddDate(0, 0, 7*(w.Number-1))
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}
