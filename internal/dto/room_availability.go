package dto

// ── 教室可用时间 DTO ──

// CreateRoomAvailabilityRequest 创建教室可用时间
// 时间格式 "18:40"
type CreateRoomAvailabilityRequest struct {
	Room      string `json:"room"       binding:"required,max=50"`
	DayLabel  string `json:"day_label"  binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time"   binding:"required"`
}

// UpdateRoomAvailabilityRequest 更新教室可用时间
type UpdateRoomAvailabilityRequest struct {
	Room      *string `json:"room"       binding:"omitempty,max=50"`
	DayLabel  *string `json:"day_label"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
}

// RoomAvailabilityListRequest 列表筛选参数
type RoomAvailabilityListRequest struct {
	DayLabel string `form:"day_label"`
	Room     string `form:"room"`
}

// RoomAvailabilityResponse 教室可用时间响应
type RoomAvailabilityResponse struct {
	ID        string `json:"id"`
	Room      string `json:"room"`
	DayLabel  string `json:"day_label"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}
