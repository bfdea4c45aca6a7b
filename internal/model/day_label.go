package model

import (
	"strings"
	"time"
)

// DayLabel 日期模板标签：七个星期名或两个考试周标签
type DayLabel string

const (
	DayMonday    DayLabel = "monday"
	DayTuesday   DayLabel = "tuesday"
	DayWednesday DayLabel = "wednesday"
	DayThursday  DayLabel = "thursday"
	DayFriday    DayLabel = "friday"
	DaySaturday  DayLabel = "saturday"
	DaySunday    DayLabel = "sunday"
	DayMidterms  DayLabel = "midterms"
	DayFinals    DayLabel = "finals"
)

var weekdayLabels = [...]DayLabel{
	time.Sunday:    DaySunday,
	time.Monday:    DayMonday,
	time.Tuesday:   DayTuesday,
	time.Wednesday: DayWednesday,
	time.Thursday:  DayThursday,
	time.Friday:    DayFriday,
	time.Saturday:  DaySaturday,
}

// WeekdayLabel 星期几对应的标签
func WeekdayLabel(d time.Weekday) DayLabel {
	return weekdayLabels[d]
}

// Valid 是否为合法标签
func (l DayLabel) Valid() bool {
	switch l {
	case DayMonday, DayTuesday, DayWednesday, DayThursday, DayFriday,
		DaySaturday, DaySunday, DayMidterms, DayFinals:
		return true
	}
	return false
}

// ParseDayLabel 大小写不敏感地解析标签
func ParseDayLabel(s string) (DayLabel, bool) {
	l := DayLabel(strings.ToLower(strings.TrimSpace(s)))
	return l, l.Valid()
}

// DateOnly 截断为 UTC 零点，日期列统一以此形式存储与比较
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
