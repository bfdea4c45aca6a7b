package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Enrollment 学员报名，对应 enrollments
type Enrollment struct {
	EnrollmentID    string                      `gorm:"type:uuid;primaryKey"                                                   json:"enrollment_id"`
	SlotID          string                      `gorm:"type:uuid;not null;uniqueIndex:uk_enrollments_slot_tutee,priority:1"    json:"slot_id"`
	TuteeID         string                      `gorm:"type:varchar(64);not null;uniqueIndex:uk_enrollments_slot_tutee,priority:2;index" json:"tutee_id"`
	DesiredSubjects datatypes.JSONSlice[string] `gorm:"not null"                                                               json:"desired_subjects"`
	BaseModel

	// 关联
	Slot *Slot `gorm:"foreignKey:SlotID;references:SlotID" json:"slot,omitempty"`
}

// TableName 指定表名
func (Enrollment) TableName() string { return "enrollments" }

// BeforeCreate 生成主键
func (e *Enrollment) BeforeCreate(_ *gorm.DB) error {
	ensureID(&e.EnrollmentID)
	if e.DesiredSubjects == nil {
		e.DesiredSubjects = datatypes.JSONSlice[string]{}
	}
	return nil
}
