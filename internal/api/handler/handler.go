package handler

import "github.com/mathisDlmr/Tutut-sub000/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Semester         *SemesterHandler
	Week             *WeekHandler
	RoomAvailability *RoomAvailabilityHandler
	Calendar         *CalendarHandler
	Slot             *SlotHandler
	Enrollment       *EnrollmentHandler
	Accounting       *AccountingHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Semester:         NewSemesterHandler(svc.Semester, svc.Week),
		Week:             NewWeekHandler(svc.Week),
		RoomAvailability: NewRoomAvailabilityHandler(svc.RoomAvailability),
		Calendar:         NewCalendarHandler(svc.Calendar),
		Slot:             NewSlotHandler(svc.Slot, svc.Claim),
		Enrollment:       NewEnrollmentHandler(svc.Enrollment),
		Accounting:       NewAccountingHandler(svc.Accounting),
	}
}
