package model

// Role 用户角色（封闭枚举）
type Role string

const (
	RoleAdmin Role = "admin"
	RoleTutor Role = "tutor"
	RoleTutee Role = "tutee"
)

// Capability 操作能力
type Capability string

const (
	CapManageCalendar Capability = "manage_calendar" // 学期、周次、教室、校历
	CapGenerateSlots  Capability = "generate_slots"
	CapOpenWeek       Capability = "open_week"
	CapClaimSlot      Capability = "claim_slot"
	CapMarkAttendance Capability = "mark_attendance"
	CapEnroll         Capability = "enroll"
	CapComputeHours   Capability = "compute_hours"
	CapValidateHours  Capability = "validate_hours"
	CapViewLedger     Capability = "view_ledger"
)

var roleCapabilities = map[Role][]Capability{
	RoleAdmin: {
		CapManageCalendar, CapGenerateSlots, CapOpenWeek,
		CapComputeHours, CapValidateHours, CapViewLedger,
	},
	RoleTutor: {CapClaimSlot, CapMarkAttendance, CapComputeHours},
	RoleTutee: {CapEnroll},
}

// ParseRole 解析角色字符串，未知角色返回 false
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	_, ok := roleCapabilities[r]
	return r, ok
}

// Can 判断角色是否具备某项能力
func (r Role) Can(c Capability) bool {
	for _, granted := range roleCapabilities[r] {
		if granted == c {
			return true
		}
	}
	return false
}
