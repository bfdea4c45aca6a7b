package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/mathisDlmr/Tutut-sub000/internal/dto"
	"github.com/mathisDlmr/Tutut-sub000/internal/service"
	"github.com/mathisDlmr/Tutut-sub000/pkg/response"
)

// WeekHandler 周次模块 HTTP 处理器
type WeekHandler struct {
	weekSvc service.WeekService
}

// NewWeekHandler 创建 WeekHandler
func NewWeekHandler(weekSvc service.WeekService) *WeekHandler {
	return &WeekHandler{weekSvc: weekSvc}
}

// CreateWeek 手动创建周次
// POST /api/v1/weeks
func (h *WeekHandler) CreateWeek(c *gin.Context) {
	var req dto.CreateWeekRequest
	if !bindJSON(c, &req) {
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	week, err := h.weekSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		handleWeekError(c, err)
		return
	}

	response.Created(c, week)
}

// CreateNextWeek 追加下一周
// POST /api/v1/weeks/next
func (h *WeekHandler) CreateNextWeek(c *gin.Context) {
	var req dto.CreateNextWeekRequest
	if !bindJSON(c, &req) {
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	week, err := h.weekSvc.CreateNextWeek(c.Request.Context(), &req, callerID)
	if err != nil {
		handleWeekError(c, err)
		return
	}

	response.Created(c, week)
}

// GetWeek 获取周次
// GET /api/v1/weeks/:id
func (h *WeekHandler) GetWeek(c *gin.Context) {
	id, ok := mustParam(c, "id", "周次ID")
	if !ok {
		return
	}

	week, err := h.weekSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		handleWeekError(c, err)
		return
	}

	response.OK(c, week)
}

// UpdateWeek 更新周次（日期、是否假期周）
// PUT /api/v1/weeks/:id
func (h *WeekHandler) UpdateWeek(c *gin.Context) {
	id, ok := mustParam(c, "id", "周次ID")
	if !ok {
		return
	}

	var req dto.UpdateWeekRequest
	if !bindJSON(c, &req) {
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	week, err := h.weekSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		handleWeekError(c, err)
		return
	}

	response.OK(c, week)
}

// DeleteWeek 删除周次
// DELETE /api/v1/weeks/:id
func (h *WeekHandler) DeleteWeek(c *gin.Context) {
	id, ok := mustParam(c, "id", "周次ID")
	if !ok {
		return
	}

	if err := h.weekSvc.Delete(c.Request.Context(), id); err != nil {
		handleWeekError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleWeekError 统一处理周次模块业务错误
func handleWeekError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWeekNotFound):
		response.NotFound(c, 15001, "周次不存在")
	case errors.Is(err, service.ErrWeekDateInvalid):
		response.BadRequest(c, 15002, "周次日期无效或超出学期范围")
	case errors.Is(err, service.ErrWeekNumberExists):
		response.Conflict(c, 15003, "该学期已存在相同编号的周次")
	case errors.Is(err, service.ErrSemesterEnded):
		response.Conflict(c, 15004, "学期已结束，无法追加周次")
	case errors.Is(err, service.ErrWeekVersionExpire):
		response.Conflict(c, 15005, "周次已被其他操作修改，请刷新后重试")
	case errors.Is(err, service.ErrSemesterNotFound):
		response.NotFound(c, 14001, "学期不存在")
	default:
		handleCommonError(c, err)
	}
}
