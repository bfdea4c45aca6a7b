package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Attendance 出勤三态：未定 / 计入 / 缺席
// 数据库中为可空布尔，JSON 中为 null / true / false
type Attendance int8

const (
	AttendanceUnset Attendance = iota
	AttendanceCounted
	AttendanceAbsent
)

// String 可读形式
func (a Attendance) String() string {
	switch a {
	case AttendanceCounted:
		return "counted"
	case AttendanceAbsent:
		return "absent"
	default:
		return "unset"
	}
}

// Bool 转为可空布尔
func (a Attendance) Bool() *bool {
	switch a {
	case AttendanceCounted:
		v := true
		return &v
	case AttendanceAbsent:
		v := false
		return &v
	default:
		return nil
	}
}

// AttendanceFromBool 由可空布尔构造
func AttendanceFromBool(b *bool) Attendance {
	if b == nil {
		return AttendanceUnset
	}
	if *b {
		return AttendanceCounted
	}
	return AttendanceAbsent
}

// GormDataType 列类型
func (Attendance) GormDataType() string { return "bool" }

// Value 实现 driver.Valuer
func (a Attendance) Value() (driver.Value, error) {
	if b := a.Bool(); b != nil {
		return *b, nil
	}
	return nil, nil
}

// Scan 实现 sql.Scanner；SQLite 以整数存储布尔
func (a *Attendance) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*a = AttendanceUnset
	case bool:
		*a = AttendanceFromBool(&v)
	case int64:
		b := v != 0
		*a = AttendanceFromBool(&b)
	case []byte:
		return a.scanString(string(v))
	case string:
		return a.scanString(v)
	default:
		return fmt.Errorf("Attendance.Scan: unsupported type %T", src)
	}
	return nil
}

func (a *Attendance) scanString(s string) error {
	switch s {
	case "t", "true", "1", "TRUE":
		*a = AttendanceCounted
	case "f", "false", "0", "FALSE":
		*a = AttendanceAbsent
	default:
		return fmt.Errorf("Attendance.Scan: invalid value %q", s)
	}
	return nil
}

// MarshalJSON 输出 null / true / false
func (a Attendance) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Bool())
}

// UnmarshalJSON 接受 null / true / false
func (a *Attendance) UnmarshalJSON(data []byte) error {
	var b *bool
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("Attendance: %w", err)
	}
	*a = AttendanceFromBool(b)
	return nil
}
