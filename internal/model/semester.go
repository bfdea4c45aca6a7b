package model

import (
	"time"

	"gorm.io/gorm"
)

// Semester 学期表，对应 semesters
// 考试周区间可选，任一端为空视为未配置
type Semester struct {
	SemesterID   string     `gorm:"type:uuid;primaryKey"               json:"semester_id"`
	Code         string     `gorm:"type:varchar(20);not null;uniqueIndex:uk_semesters_code" json:"code"`
	StartDate    time.Time  `gorm:"type:date;not null"                 json:"start_date"`
	EndDate      time.Time  `gorm:"type:date;not null"                 json:"end_date"`
	IsActive     bool       `gorm:"not null;default:false"             json:"is_active"`
	MidtermStart *time.Time `gorm:"type:date"                          json:"midterm_start,omitempty"`
	MidtermEnd   *time.Time `gorm:"type:date"                          json:"midterm_end,omitempty"`
	FinalsStart  *time.Time `gorm:"type:date"                          json:"finals_start,omitempty"`
	FinalsEnd    *time.Time `gorm:"type:date"                          json:"finals_end,omitempty"`
	VersionedModel
}

// TableName 指定表名
func (Semester) TableName() string { return "semesters" }

// BeforeCreate 生成主键
func (s *Semester) BeforeCreate(_ *gorm.DB) error {
	ensureID(&s.SemesterID)
	s.initVersion()
	return nil
}

// Contains 日期是否落在学期内（含两端）
func (s *Semester) Contains(date time.Time) bool {
	return inRange(date, &s.StartDate, &s.EndDate)
}

// InMidterms 日期是否落在期中考试周
func (s *Semester) InMidterms(date time.Time) bool {
	return inRange(date, s.MidtermStart, s.MidtermEnd)
}

// InFinals 日期是否落在期末考试周
func (s *Semester) InFinals(date time.Time) bool {
	return inRange(date, s.FinalsStart, s.FinalsEnd)
}

func inRange(date time.Time, start, end *time.Time) bool {
	if start == nil || end == nil {
		return false
	}
	d := DateOnly(date)
	return !d.Before(DateOnly(*start)) && !d.After(DateOnly(*end))
}
