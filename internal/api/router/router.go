package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mathisDlmr/Tutut-sub000/config"
	"github.com/mathisDlmr/Tutut-sub000/internal/api/handler"
	"github.com/mathisDlmr/Tutut-sub000/internal/api/middleware"
	"github.com/mathisDlmr/Tutut-sub000/internal/model"
	"github.com/mathisDlmr/Tutut-sub000/pkg/jwt"
	"github.com/mathisDlmr/Tutut-sub000/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时抢位/报名接口不限流
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	can := middleware.RequireCapability
	shotgun := middleware.RateLimit(rdb, cfg.Server.RateLimit, cfg.Server.RateWindow, logger)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr))
	{
		// 学期
		semesters := v1.Group("/semesters")
		{
			semesters.GET("", h.Semester.ListSemesters)
			semesters.GET("/current", h.Semester.GetCurrentSemester)
			semesters.GET("/:id", h.Semester.GetSemester)
			semesters.GET("/:id/weeks", h.Semester.ListWeeks)
			semesters.POST("", can(model.CapManageCalendar), h.Semester.CreateSemester)
			semesters.PUT("/:id", can(model.CapManageCalendar), h.Semester.UpdateSemester)
			semesters.PUT("/:id/activate", can(model.CapManageCalendar), h.Semester.ActivateSemester)
			semesters.DELETE("/:id", can(model.CapManageCalendar), h.Semester.DeleteSemester)
		}

		// 周次、时段生成、课时台账
		weeks := v1.Group("/weeks")
		{
			weeks.POST("", can(model.CapManageCalendar), h.Week.CreateWeek)
			weeks.POST("/next", can(model.CapManageCalendar), h.Week.CreateNextWeek)
			weeks.GET("/:id", h.Week.GetWeek)
			weeks.PUT("/:id", can(model.CapManageCalendar), h.Week.UpdateWeek)
			weeks.DELETE("/:id", can(model.CapManageCalendar), h.Week.DeleteWeek)

			weeks.GET("/:id/slots", h.Slot.ListWeekSlots)
			weeks.POST("/:id/slots/generate", can(model.CapGenerateSlots), h.Slot.GenerateSlots)
			weeks.POST("/:id/open", can(model.CapOpenWeek), h.Slot.OpenWeek)

			weeks.POST("/:id/hours", can(model.CapComputeHours), h.Accounting.ComputeHours)
			weeks.GET("/:id/hours/:user_id", h.Accounting.GetEntry)
			weeks.PUT("/:id/hours/:user_id/validate", can(model.CapValidateHours), h.Accounting.ValidateEntry)
			weeks.PUT("/:id/hours/:user_id/invalidate", can(model.CapValidateHours), h.Accounting.InvalidateEntry)
			weeks.PUT("/:id/hours/:user_id/comment", can(model.CapValidateHours), h.Accounting.SetComment)
			weeks.GET("/:id/ledger", can(model.CapViewLedger), h.Accounting.ListWeekLedger)
		}

		// 教室可用时间
		rooms := v1.Group("/rooms")
		{
			rooms.GET("", h.RoomAvailability.ListRooms)
			rooms.GET("/:id", h.RoomAvailability.GetRoom)
			rooms.POST("", can(model.CapManageCalendar), h.RoomAvailability.CreateRoom)
			rooms.PUT("/:id", can(model.CapManageCalendar), h.RoomAvailability.UpdateRoom)
			rooms.DELETE("/:id", can(model.CapManageCalendar), h.RoomAvailability.DeleteRoom)
		}

		// 校历
		calendar := v1.Group("/calendar")
		{
			calendar.GET("/resolve", h.Calendar.Resolve)
			calendar.GET("/overrides", h.Calendar.ListOverrides)
			calendar.PUT("/overrides", can(model.CapManageCalendar), h.Calendar.SetOverride)
			calendar.DELETE("/overrides/:id", can(model.CapManageCalendar), h.Calendar.DeleteOverride)
			calendar.POST("/holidays/import", can(model.CapManageCalendar), h.Calendar.ImportHolidays)
		}

		// 时段：抢位与报名
		slots := v1.Group("/slots")
		{
			slots.GET("/:id", h.Slot.GetSlot)
			slots.POST("/:id/claim", can(model.CapClaimSlot), shotgun, h.Slot.Claim)
			slots.POST("/:id/release", can(model.CapClaimSlot), h.Slot.Release)
			slots.PUT("/:id/attendance", can(model.CapMarkAttendance), h.Slot.SetAttendance)
			slots.POST("/:id/enroll", can(model.CapEnroll), shotgun, h.Enrollment.Enroll)
			slots.DELETE("/:id/enroll", can(model.CapEnroll), h.Enrollment.Withdraw)
			slots.GET("/:id/enrollments", h.Enrollment.ListSlotEnrollments)
		}

		// 当前用户
		me := v1.Group("/me")
		{
			me.GET("/slots", can(model.CapClaimSlot), h.Slot.ListMySlots)
			me.GET("/enrollments", can(model.CapEnroll), h.Enrollment.ListMyEnrollments)
		}
	}

	return r
}
