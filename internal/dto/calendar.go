package dto

// ── 校历模块 DTO ──

// SetOverrideRequest 设置某日覆盖：假日或指定日期模板，二选一
type SetOverrideRequest struct {
	Date        string  `json:"date"        binding:"required"`
	IsHoliday   bool    `json:"is_holiday"`
	DayLabel    *string `json:"day_label"`
	Description string  `json:"description" binding:"max=200"`
}

// OverrideListRequest 列表区间参数（请求级，不共享）
type OverrideListRequest struct {
	From string `form:"from"`
	To   string `form:"to"`
}

// OverrideResponse 校历覆盖响应
type OverrideResponse struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	IsHoliday   bool    `json:"is_holiday"`
	DayLabel    *string `json:"day_label,omitempty"`
	Description string  `json:"description,omitempty"`
}

// ResolveResponse 日期解析结果
type ResolveResponse struct {
	Date     string `json:"date"`
	Holiday  bool   `json:"holiday"`
	DayLabel string `json:"day_label,omitempty"`
	Source   string `json:"source"`
	Degraded bool   `json:"degraded"`
	Warning  string `json:"warning,omitempty"`
}

// ImportHolidaysRequest 从 URL 导入假日（为空时使用配置的地址）
type ImportHolidaysRequest struct {
	URL             string `json:"url"              binding:"omitempty,url"`
	ReplaceExisting bool   `json:"replace_existing"`
}

// ImportHolidaysResponse 导入结果
type ImportHolidaysResponse struct {
	Imported int      `json:"imported"`
	Removed  int64    `json:"removed"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings,omitempty"`
}
