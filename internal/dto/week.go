package dto

// ── 周次模块 DTO ──

// CreateWeekRequest 手动创建周次
type CreateWeekRequest struct {
	SemesterID string `json:"semester_id" binding:"required,uuid"`
	Number     int    `json:"number"      binding:"required,min=1,max=60"`
	StartDate  string `json:"start_date"  binding:"required"`
	EndDate    string `json:"end_date"    binding:"required"`
	IsBreak    bool   `json:"is_break"`
}

// CreateNextWeekRequest 追加下一周
type CreateNextWeekRequest struct {
	SemesterID string `json:"semester_id" binding:"required,uuid"`
	IsBreak    bool   `json:"is_break"`
}

// UpdateWeekRequest 更新周次
type UpdateWeekRequest struct {
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	IsBreak   *bool   `json:"is_break"`
}

// WeekResponse 周次信息响应
type WeekResponse struct {
	ID         string `json:"id"`
	SemesterID string `json:"semester_id"`
	Number     int    `json:"number"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	IsBreak    bool   `json:"is_break"`
	Version    int    `json:"version"`
}
