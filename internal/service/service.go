package service

import (
	"go.uber.org/zap"

	"github.com/mathisDlmr/Tutut-sub000/config"
	"github.com/mathisDlmr/Tutut-sub000/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Semester         SemesterService
	Week             WeekService
	RoomAvailability RoomAvailabilityService
	Calendar         CalendarService
	Slot             SlotService
	Claim            ClaimService
	Enrollment       EnrollmentService
	Accounting       AccountingService
}

// NewService 创建 Service 聚合
func NewService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) *Service {
	return &Service{
		Semester:         NewSemesterService(repo, logger),
		Week:             NewWeekService(repo, logger),
		RoomAvailability: NewRoomAvailabilityService(repo, logger),
		Calendar:         NewCalendarService(repo, &cfg.Calendar, logger),
		Slot:             NewSlotService(repo, &cfg.Scheduling, logger),
		Claim:            NewClaimService(repo, &cfg.Scheduling, logger),
		Enrollment:       NewEnrollmentService(repo, &cfg.Scheduling, logger),
		Accounting:       NewAccountingService(repo, logger),
	}
}
