package dto

// ── 报名模块 DTO ──

// EnrollRequest 报名请求
type EnrollRequest struct {
	DesiredSubjects []string `json:"desired_subjects" binding:"omitempty,dive,required,max=20"`
}

// MyEnrollmentsRequest 我的报名筛选
type MyEnrollmentsRequest struct {
	WeekID string `form:"week_id" binding:"omitempty,uuid"`
}

// EnrollmentResponse 报名信息
type EnrollmentResponse struct {
	ID              string        `json:"id"`
	SlotID          string        `json:"slot_id"`
	TuteeID         string        `json:"tutee_id"`
	DesiredSubjects []string      `json:"desired_subjects"`
	CreatedAt       string        `json:"created_at"`
	Slot            *SlotResponse `json:"slot,omitempty"`
}
