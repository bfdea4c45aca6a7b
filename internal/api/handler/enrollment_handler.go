package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/mathisDlmr/Tutut-sub000/internal/dto"
	"github.com/mathisDlmr/Tutut-sub000/internal/service"
	"github.com/mathisDlmr/Tutut-sub000/pkg/response"
)

// EnrollmentHandler 学员报名 HTTP 处理器
type EnrollmentHandler struct {
	enrollmentSvc service.EnrollmentService
}

// NewEnrollmentHandler 创建 EnrollmentHandler
func NewEnrollmentHandler(enrollmentSvc service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentSvc: enrollmentSvc}
}

// Enroll 报名时段
// POST /api/v1/slots/:id/enroll
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	slotID, ok := mustParam(c, "id", "时段ID")
	if !ok {
		return
	}

	var req dto.EnrollRequest
	if c.Request.ContentLength != 0 {
		if !bindJSON(c, &req) {
			return
		}
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	enrollment, err := h.enrollmentSvc.Enroll(c.Request.Context(), slotID, callerID, &req)
	if err != nil {
		handleEnrollmentError(c, err)
		return
	}

	response.Created(c, enrollment)
}

// Withdraw 取消报名（未报名时同样成功）
// DELETE /api/v1/slots/:id/enroll
func (h *EnrollmentHandler) Withdraw(c *gin.Context) {
	slotID, ok := mustParam(c, "id", "时段ID")
	if !ok {
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.enrollmentSvc.Withdraw(c.Request.Context(), slotID, callerID); err != nil {
		handleEnrollmentError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListSlotEnrollments 时段报名名单
// GET /api/v1/slots/:id/enrollments
func (h *EnrollmentHandler) ListSlotEnrollments(c *gin.Context) {
	slotID, ok := mustParam(c, "id", "时段ID")
	if !ok {
		return
	}

	list, err := h.enrollmentSvc.ListBySlot(c.Request.Context(), slotID)
	if err != nil {
		handleEnrollmentError(c, err)
		return
	}

	response.OKList(c, list, len(list))
}

// ListMyEnrollments 当前学员的报名
// GET /api/v1/me/enrollments?week_id=
func (h *EnrollmentHandler) ListMyEnrollments(c *gin.Context) {
	var req dto.MyEnrollmentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, err := h.enrollmentSvc.ListMine(c.Request.Context(), callerID, &req)
	if err != nil {
		handleEnrollmentError(c, err)
		return
	}

	response.OKList(c, list, len(list))
}

func handleEnrollmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSlotNotOpen):
		response.Conflict(c, 19001, "时段未开放报名")
	case errors.Is(err, service.ErrAlreadyEnrolled):
		response.Conflict(c, 19002, "已报名该时段")
	case errors.Is(err, service.ErrSlotFull):
		response.Conflict(c, 19003, "时段名额已满")
	case errors.Is(err, service.ErrSlotNotEnrollable):
		response.Conflict(c, 19004, "时段暂无辅导员，无法报名")
	case errors.Is(err, service.ErrTooManySubjects):
		response.BadRequest(c, 19005, "期望科目数量超出上限")
	case errors.Is(err, service.ErrSlotNotFound):
		response.NotFound(c, 18001, "时段不存在")
	default:
		handleCommonError(c, err)
	}
}
