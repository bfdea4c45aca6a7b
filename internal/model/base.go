package model

import (
	"time"

	"github.com/google/uuid"
)

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	CreatedBy *string   `gorm:"type:varchar(64)"        json:"created_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
	UpdatedBy *string   `gorm:"type:varchar(64)"        json:"updated_by,omitempty"`
}

// VersionedModel 支持乐观锁的审计字段
type VersionedModel struct {
	BaseModel
	Version int `gorm:"not null;default:1" json:"version"`
}

// ensureID 主键为空时生成 UUID
// 主键在应用侧生成，PostgreSQL 与 SQLite 行为一致
func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// initVersion 新记录版本号从 1 开始
func (v *VersionedModel) initVersion() {
	if v.Version == 0 {
		v.Version = 1
	}
}

// StrPtr 返回字符串指针，空串返回 nil
func StrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// AllModels 返回需要建表的全部模型（测试环境 AutoMigrate 使用）
func AllModels() []interface{} {
	return []interface{}{
		&Semester{},
		&Week{},
		&RoomAvailability{},
		&CalendarOverride{},
		&Slot{},
		&Enrollment{},
		&AccountingLedgerEntry{},
		&SupplementalHours{},
	}
}
