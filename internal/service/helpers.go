package service

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/mathisDlmr/Tutut-sub000/internal/model"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// ErrDateInvalid 日期格式错误（各模块共用）
var ErrDateInvalid = errors.New("日期格式无效，应为 YYYY-MM-DD")

// parseDate 解析 YYYY-MM-DD 为 UTC 零点
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, ErrDateInvalid
	}
	return model.DateOnly(t), nil
}

// parseOptionalDate 空指针或空串返回 nil
func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := parseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatDate(*t)
	return &s
}

// formatTimestamp 时刻统一输出 RFC3339
func formatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339)
}

// parseClock 解析 "HH:MM" 墙上时间
func parseClock(s string) (datatypes.Time, error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("时间格式无效 %q，应为 HH:MM", s)
	}
	return datatypes.NewTime(t.Hour(), t.Minute(), 0, 0), nil
}

// formatClock datatypes.Time 输出 "HH:MM"
func formatClock(t datatypes.Time) string {
	d := time.Duration(t)
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}

// atClock 将日期与墙上时间组合为 loc 时区的时刻
func atClock(date time.Time, clock datatypes.Time, loc *time.Location) time.Time {
	d := time.Duration(clock)
	y, m, day := date.Date()
	return time.Date(y, m, day, int(d.Hours()), int(d.Minutes())%60, 0, 0, loc)
}

// ParseDate 解析 YYYY-MM-DD，供 HTTP 层解析查询参数
func ParseDate(s string) (time.Time, error) {
	return parseDate(s)
}
