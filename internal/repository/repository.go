package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Semester         SemesterRepository
	Week             WeekRepository
	RoomAvailability RoomAvailabilityRepository
	CalendarOverride CalendarOverrideRepository
	Slot             SlotRepository
	Enrollment       EnrollmentRepository
	Ledger           LedgerRepository
	Supplemental     SupplementalHoursRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:               db,
		Semester:         NewSemesterRepo(db),
		Week:             NewWeekRepo(db),
		RoomAvailability: NewRoomAvailabilityRepo(db),
		CalendarOverride: NewCalendarOverrideRepo(db),
		Slot:             NewSlotRepo(db),
		Enrollment:       NewEnrollmentRepo(db),
		Ledger:           NewLedgerRepo(db),
		Supplemental:     NewSupplementalHoursRepo(db),
	}
}

// Transaction 在单个事务内执行 fn，fn 返回错误或 panic 时回滚
// db 为空（单元测试 mock）时直接以当前聚合执行
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}
