package model

import (
	"time"

	"gorm.io/gorm"
)

// TutorPosition 辅导员席位
type TutorPosition int

const (
	Position1 TutorPosition = 1
	Position2 TutorPosition = 2
)

// Valid 是否为合法席位
func (p TutorPosition) Valid() bool {
	return p == Position1 || p == Position2
}

// Other 另一个席位
func (p TutorPosition) Other() TutorPosition {
	if p == Position1 {
		return Position2
	}
	return Position1
}

// TutorColumn 席位对应的辅导员列名
func (p TutorPosition) TutorColumn() string {
	if p == Position1 {
		return "tutor1_id"
	}
	return "tutor2_id"
}

// CountedColumn 席位对应的出勤列名
func (p TutorPosition) CountedColumn() string {
	if p == Position1 {
		return "tutor1_counted"
	}
	return "tutor2_counted"
}

// Slot 辅导时段，对应 slots
// 辅导员席位只能经由抢位引擎修改
type Slot struct {
	SlotID        string     `gorm:"type:uuid;primaryKey"                       json:"slot_id"`
	WeekID        string     `gorm:"type:uuid;not null;index:idx_slots_week"    json:"week_id"`
	Room          string     `gorm:"type:varchar(50);not null"                  json:"room"`
	StartAt       time.Time  `gorm:"not null"                                   json:"start_at"`
	EndAt         time.Time  `gorm:"not null"                                   json:"end_at"`
	Tutor1ID      *string    `gorm:"column:tutor1_id;type:varchar(64)"          json:"tutor1_id"`
	Tutor1Counted Attendance `gorm:"column:tutor1_counted"                      json:"tutor1_counted"`
	Tutor2ID      *string    `gorm:"column:tutor2_id;type:varchar(64)"          json:"tutor2_id"`
	Tutor2Counted Attendance `gorm:"column:tutor2_counted"                      json:"tutor2_counted"`
	IsOpen        bool       `gorm:"not null;default:false"                     json:"is_open"`
	VersionedModel
}

// TableName 指定表名
func (Slot) TableName() string { return "slots" }

// BeforeCreate 生成主键
func (s *Slot) BeforeCreate(_ *gorm.DB) error {
	ensureID(&s.SlotID)
	s.initVersion()
	return nil
}

// Tutor 席位上的辅导员，空席位返回 ""
func (s *Slot) Tutor(p TutorPosition) string {
	ptr := s.Tutor1ID
	if p == Position2 {
		ptr = s.Tutor2ID
	}
	if ptr == nil {
		return ""
	}
	return *ptr
}

// Counted 席位的出勤状态
func (s *Slot) Counted(p TutorPosition) Attendance {
	if p == Position2 {
		return s.Tutor2Counted
	}
	return s.Tutor1Counted
}

// TutorCount 已占席位数
func (s *Slot) TutorCount() int {
	n := 0
	if s.Tutor1ID != nil {
		n++
	}
	if s.Tutor2ID != nil {
		n++
	}
	return n
}

// PositionOf 用户所在席位
func (s *Slot) PositionOf(userID string) (TutorPosition, bool) {
	switch userID {
	case "":
		return 0, false
	case s.Tutor(Position1):
		return Position1, true
	case s.Tutor(Position2):
		return Position2, true
	}
	return 0, false
}

// Duration 时段时长
func (s *Slot) Duration() time.Duration {
	return s.EndAt.Sub(s.StartAt)
}

// Capacity 可报名人数：两位辅导员 two，一位 one，无人 0
func (s *Slot) Capacity(one, two int) int {
	switch s.TutorCount() {
	case 2:
		return two
	case 1:
		return one
	default:
		return 0
	}
}
