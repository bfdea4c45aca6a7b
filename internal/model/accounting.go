package model

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AccountingLedgerEntry 周课时台账，对应 accounting_ledger_entries
// 每个 (user, week) 至多一条；锁定后不可自动重算
type AccountingLedgerEntry struct {
	LedgerEntryID string          `gorm:"type:uuid;primaryKey"                                           json:"ledger_entry_id"`
	UserID        string          `gorm:"type:varchar(64);not null;uniqueIndex:uk_ledger_user_week,priority:1" json:"user_id"`
	WeekID        string          `gorm:"type:uuid;not null;uniqueIndex:uk_ledger_user_week,priority:2"  json:"week_id"`
	Hours         decimal.Decimal `gorm:"type:numeric(6,2);not null;default:0"                           json:"hours"`
	Comment       *string         `gorm:"type:varchar(500)"                                              json:"comment,omitempty"`
	IsLocked      bool            `gorm:"not null;default:false"                                         json:"is_locked"`
	VersionedModel
}

// TableName 指定表名
func (AccountingLedgerEntry) TableName() string { return "accounting_ledger_entries" }

// BeforeCreate 生成主键
func (e *AccountingLedgerEntry) BeforeCreate(_ *gorm.DB) error {
	ensureID(&e.LedgerEntryID)
	e.initVersion()
	return nil
}

// SupplementalHours 补充课时，对应 supplemental_hours
type SupplementalHours struct {
	SupplementalHoursID string          `gorm:"type:uuid;primaryKey"                 json:"supplemental_hours_id"`
	UserID              string          `gorm:"type:varchar(64);not null;index:idx_supplemental_hours_user_week,priority:1" json:"user_id"`
	WeekID              string          `gorm:"type:uuid;not null;index:idx_supplemental_hours_user_week,priority:2"        json:"week_id"`
	Hours               decimal.Decimal `gorm:"type:numeric(6,2);not null"           json:"hours"`
	Justification       string          `gorm:"type:varchar(500);not null"           json:"justification"`
	BaseModel
}

// TableName 指定表名
func (SupplementalHours) TableName() string { return "supplemental_hours" }

// BeforeCreate 生成主键
func (h *SupplementalHours) BeforeCreate(_ *gorm.DB) error {
	ensureID(&h.SupplementalHoursID)
	return nil
}
