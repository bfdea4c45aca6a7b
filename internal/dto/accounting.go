package dto

import "github.com/shopspring/decimal"

// ── 课时台账 DTO ──

// SupplementalHoursInput 补充课时条目
// hours 的正数校验为结构级校验（decimal 为结构体类型）
type SupplementalHoursInput struct {
	Hours         decimal.Decimal `json:"hours"`
	Justification string          `json:"justification" validate:"required,notblank,max=500"`
}

// ComputeHoursRequest 计算周课时
// supplemental 缺省（null）时沿用已有补充课时；传数组（含空数组）时整体替换
type ComputeHoursRequest struct {
	UserID       string                    `json:"user_id"`
	Supplemental *[]SupplementalHoursInput `json:"supplemental"`
}

// SetCommentRequest 设置台账备注
type SetCommentRequest struct {
	Comment *string `json:"comment" binding:"omitempty,max=500"`
}

// LedgerEntryResponse 台账条目
type LedgerEntryResponse struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	WeekID    string          `json:"week_id"`
	Hours     decimal.Decimal `json:"hours"`
	Comment   *string         `json:"comment,omitempty"`
	IsLocked  bool            `json:"is_locked"`
	Version   int             `json:"version"`
	UpdatedAt string          `json:"updated_at"`
}

// SupplementalHoursResponse 补充课时条目
type SupplementalHoursResponse struct {
	ID            string          `json:"id"`
	Hours         decimal.Decimal `json:"hours"`
	Justification string          `json:"justification"`
}

// ComputeHoursResponse 计算结果
// entry 为空表示总课时为 0 且无补充课时，未创建台账
// written 指台账课时是否写入；supplemental_replaced 指补充课时是否按请求整体替换
type ComputeHoursResponse struct {
	UserID               string                      `json:"user_id"`
	WeekID               string                      `json:"week_id"`
	SlotHours            decimal.Decimal             `json:"slot_hours"`
	SupplementalHours    decimal.Decimal             `json:"supplemental_hours"`
	Total                decimal.Decimal             `json:"total"`
	Written              bool                        `json:"written"`
	SupplementalReplaced bool                        `json:"supplemental_replaced"`
	Entry                *LedgerEntryResponse        `json:"entry,omitempty"`
	Supplemental         []SupplementalHoursResponse `json:"supplemental"`
}

// LedgerDetailResponse 台账详情（含补充课时）
type LedgerDetailResponse struct {
	Entry        LedgerEntryResponse         `json:"entry"`
	Supplemental []SupplementalHoursResponse `json:"supplemental"`
}
