package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/mathisDlmr/Tutut-sub000/internal/model"
)

// ── ICS 假日解析 ──────────────────────────────────────────────
//
// 将 iCalendar (RFC 5545) 中的全天事件展开为逐日假日。
//   - DTSTART;VALUE=DATE 起，DTEND 为不含的结束日；缺省时为单日
//   - 带时刻的事件不是假日，计入 skipped
//   - 同一日期出现多次时保留第一个事件的标题
// ─────────────────────────────────────────────────────────────

const (
	icsMaxFileSize    = 5 * 1024 * 1024 // 5MB
	icsMaxHolidaySpan = 120             // 单个事件最多展开的天数
	icsDefaultTimeout = 30 * time.Second
	icsAllDayFormat   = "20060102"
)

// ParsedHoliday 解析出的单日假日
type ParsedHoliday struct {
	Date    time.Time
	Summary string
}

// FetchICSContent 从 URL 获取 ICS 内容，webcal:// 视为 https://
func FetchICSContent(ctx context.Context, rawURL string, timeout time.Duration) (io.ReadCloser, error) {
	u := rawURL
	if strings.HasPrefix(u, "webcal://") {
		u = "https://" + strings.TrimPrefix(u, "webcal://")
	}
	if timeout <= 0 {
		timeout = icsDefaultTimeout
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("构造 ICS 请求失败: %w", err)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("获取 ICS 失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("获取 ICS 失败: HTTP %d", resp.StatusCode)
	}
	// 限制响应体大小，防止恶意 URL 返回超大内容导致 OOM
	return struct {
		io.Reader
		io.Closer
	}{
		Reader: io.LimitReader(resp.Body, icsMaxFileSize),
		Closer: resp.Body,
	}, nil
}

// ParseHolidayICS 解析 ICS 并按日期升序返回假日
func ParseHolidayICS(reader io.Reader) (holidays []ParsedHoliday, skipped int, err error) {
	cal, err := ics.ParseCalendar(io.LimitReader(reader, icsMaxFileSize))
	if err != nil {
		return nil, 0, fmt.Errorf("ICS 格式解析失败: %w", err)
	}

	seen := make(map[string]bool)
	for _, evt := range cal.Events() {
		days, ok := expandAllDayEvent(evt)
		if !ok {
			skipped++
			continue
		}
		summary := ""
		if p := evt.GetProperty(ics.ComponentPropertySummary); p != nil {
			summary = strings.TrimSpace(p.Value)
		}
		for _, d := range days {
			key := d.Format(icsAllDayFormat)
			if seen[key] {
				continue
			}
			seen[key] = true
			holidays = append(holidays, ParsedHoliday{Date: d, Summary: summary})
		}
	}

	sort.Slice(holidays, func(i, j int) bool {
		return holidays[i].Date.Before(holidays[j].Date)
	})
	return holidays, skipped, nil
}

// expandAllDayEvent 展开全天事件覆盖的日期（DTEND 不含）
func expandAllDayEvent(evt *ics.VEvent) ([]time.Time, bool) {
	start, ok := parseAllDay(evt.GetProperty(ics.ComponentPropertyDtStart))
	if !ok {
		return nil, false
	}

	end := start.AddDate(0, 0, 1)
	if p := evt.GetProperty(ics.ComponentPropertyDtEnd); p != nil {
		e, ok := parseAllDay(p)
		if !ok {
			return nil, false
		}
		if e.After(start) {
			end = e
		}
	}

	var days []time.Time
	for d := start; d.Before(end) && len(days) < icsMaxHolidaySpan; d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days, true
}

// parseAllDay 仅接受 VALUE=DATE 形式；带时刻的值返回 false
func parseAllDay(prop *ics.IANAProperty) (time.Time, bool) {
	if prop == nil {
		return time.Time{}, false
	}
	val := strings.TrimSpace(prop.Value)
	if len(val) != len(icsAllDayFormat) {
		return time.Time{}, false
	}
	t, err := time.Parse(icsAllDayFormat, val)
	if err != nil {
		return time.Time{}, false
	}
	return model.DateOnly(t), true
}
