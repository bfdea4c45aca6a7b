package dto

import "github.com/mathisDlmr/Tutut-sub000/internal/model"

// ── 时段与抢位 DTO ──

// GenerateSlotsRequest 生成时段请求
// 周内已有抢位或报名时需 confirm=true 才会覆盖
type GenerateSlotsRequest struct {
	Confirm bool `json:"confirm"`
}

// GenerateSlotsResponse 生成结果
type GenerateSlotsResponse struct {
	WeekID   string         `json:"week_id"`
	Skipped  bool           `json:"skipped"`
	Reason   string         `json:"reason,omitempty"`
	Created  int            `json:"created"`
	Removed  int64          `json:"removed"`
	Slots    []SlotResponse `json:"slots"`
	Warnings []string       `json:"warnings,omitempty"`
}

// SlotListRequest 时段列表参数
type SlotListRequest struct {
	OpenOnly bool `form:"open_only"`
}

// ClaimRequest 抢位 / 释放请求
type ClaimRequest struct {
	Position int `json:"position" binding:"required,oneof=1 2"`
}

// AttendanceRequest 出勤标记；counted 必须出现，显式 null 表示重置为未定
type AttendanceRequest struct {
	Position int             `json:"position" binding:"required,oneof=1 2"`
	Counted  AttendanceField `json:"counted"`
}

// AttendanceField 区分缺省字段与显式 null
type AttendanceField struct {
	Present bool
	Value   model.Attendance
}

// UnmarshalJSON 仅在键存在时被调用（含 null）
func (f *AttendanceField) UnmarshalJSON(data []byte) error {
	if err := f.Value.UnmarshalJSON(data); err != nil {
		return err
	}
	f.Present = true
	return nil
}

// ClaimResponse 抢位结果：竞争失败不是错误，claimed=false 并附原因
type ClaimResponse struct {
	Claimed bool          `json:"claimed"`
	Reason  string        `json:"reason,omitempty"`
	Slot    *SlotResponse `json:"slot"`
}

// OpenWeekResponse 开放周结果
type OpenWeekResponse struct {
	WeekID string `json:"week_id"`
	Opened int64  `json:"opened"`
}

// SlotResponse 时段信息
type SlotResponse struct {
	ID            string           `json:"id"`
	WeekID        string           `json:"week_id"`
	Room          string           `json:"room"`
	StartAt       string           `json:"start_at"`
	EndAt         string           `json:"end_at"`
	Tutor1ID      *string          `json:"tutor1_id"`
	Tutor1Counted model.Attendance `json:"tutor1_counted"`
	Tutor2ID      *string          `json:"tutor2_id"`
	Tutor2Counted model.Attendance `json:"tutor2_counted"`
	IsOpen        bool             `json:"is_open"`
	Capacity      int              `json:"capacity"`
	Enrolled      int64            `json:"enrolled"`
	Version       int              `json:"version"`
}
