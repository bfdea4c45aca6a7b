package dto

// ── 学期模块 DTO ──

// CreateSemesterRequest 创建学期请求
// 日期格式 "2025-02-17"；考试周区间成对出现
type CreateSemesterRequest struct {
	Code         string  `json:"code"          binding:"required,min=2,max=20"`
	StartDate    string  `json:"start_date"    binding:"required"`
	EndDate      string  `json:"end_date"      binding:"required"`
	MidtermStart *string `json:"midterm_start"`
	MidtermEnd   *string `json:"midterm_end"`
	FinalsStart  *string `json:"finals_start"`
	FinalsEnd    *string `json:"finals_end"`
}

// UpdateSemesterRequest 更新学期请求
// 考试周字段传空字符串表示清除
type UpdateSemesterRequest struct {
	Code         *string `json:"code"          binding:"omitempty,min=2,max=20"`
	StartDate    *string `json:"start_date"`
	EndDate      *string `json:"end_date"`
	MidtermStart *string `json:"midterm_start"`
	MidtermEnd   *string `json:"midterm_end"`
	FinalsStart  *string `json:"finals_start"`
	FinalsEnd    *string `json:"finals_end"`
}

// SemesterResponse 学期信息响应
type SemesterResponse struct {
	ID           string  `json:"id"`
	Code         string  `json:"code"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	IsActive     bool    `json:"is_active"`
	MidtermStart *string `json:"midterm_start,omitempty"`
	MidtermEnd   *string `json:"midterm_end,omitempty"`
	FinalsStart  *string `json:"finals_start,omitempty"`
	FinalsEnd    *string `json:"finals_end,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}
