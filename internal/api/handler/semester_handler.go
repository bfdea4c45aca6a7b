package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/mathisDlmr/Tutut-sub000/internal/dto"
	"github.com/mathisDlmr/Tutut-sub000/internal/service"
	"github.com/mathisDlmr/Tutut-sub000/pkg/response"
)

// SemesterHandler 学期模块 HTTP 处理器
type SemesterHandler struct {
	semesterSvc service.SemesterService
	weekSvc     service.WeekService
}

// NewSemesterHandler 创建 SemesterHandler
func NewSemesterHandler(semesterSvc service.SemesterService, weekSvc service.WeekService) *SemesterHandler {
	return &SemesterHandler{semesterSvc: semesterSvc, weekSvc: weekSvc}
}

// ListSemesters 获取学期列表
// GET /api/v1/semesters
func (h *SemesterHandler) ListSemesters(c *gin.Context) {
	semesters, err := h.semesterSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKList(c, semesters, len(semesters))
}

// GetSemester 获取学期详情
// GET /api/v1/semesters/:id
func (h *SemesterHandler) GetSemester(c *gin.Context) {
	id, ok := mustParam(c, "id", "学期ID")
	if !ok {
		return
	}

	semester, err := h.semesterSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		handleSemesterError(c, err)
		return
	}

	response.OK(c, semester)
}

// GetCurrentSemester 获取当前激活学期
// GET /api/v1/semesters/current
func (h *SemesterHandler) GetCurrentSemester(c *gin.Context) {
	semester, err := h.semesterSvc.GetCurrent(c.Request.Context())
	if err != nil {
		handleSemesterError(c, err)
		return
	}

	response.OK(c, semester)
}

// CreateSemester 创建学期
// POST /api/v1/semesters
func (h *SemesterHandler) CreateSemester(c *gin.Context) {
	var req dto.CreateSemesterRequest
	if !bindJSON(c, &req) {
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	semester, err := h.semesterSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		handleSemesterError(c, err)
		return
	}

	response.Created(c, semester)
}

// UpdateSemester 更新学期
// PUT /api/v1/semesters/:id
func (h *SemesterHandler) UpdateSemester(c *gin.Context) {
	id, ok := mustParam(c, "id", "学期ID")
	if !ok {
		return
	}

	var req dto.UpdateSemesterRequest
	if !bindJSON(c, &req) {
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	semester, err := h.semesterSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		handleSemesterError(c, err)
		return
	}

	response.OK(c, semester)
}

// ActivateSemester 设为当前学期
// PUT /api/v1/semesters/:id/activate
func (h *SemesterHandler) ActivateSemester(c *gin.Context) {
	id, ok := mustParam(c, "id", "学期ID")
	if !ok {
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.semesterSvc.Activate(c.Request.Context(), id, callerID); err != nil {
		handleSemesterError(c, err)
		return
	}

	response.OK(c, nil)
}

// DeleteSemester 删除学期
// DELETE /api/v1/semesters/:id
func (h *SemesterHandler) DeleteSemester(c *gin.Context) {
	id, ok := mustParam(c, "id", "学期ID")
	if !ok {
		return
	}

	if err := h.semesterSvc.Delete(c.Request.Context(), id); err != nil {
		handleSemesterError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListWeeks 学期下的周次
// GET /api/v1/semesters/:id/weeks
func (h *SemesterHandler) ListWeeks(c *gin.Context) {
	id, ok := mustParam(c, "id", "学期ID")
	if !ok {
		return
	}

	weeks, err := h.weekSvc.ListBySemester(c.Request.Context(), id)
	if err != nil {
		handleWeekError(c, err)
		return
	}

	response.OKList(c, weeks, len(weeks))
}

// handleSemesterError 统一处理学期模块业务错误
func handleSemesterError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSemesterNotFound):
		response.NotFound(c, 14001, "学期不存在")
	case errors.Is(err, service.ErrSemesterDateInvalid):
		response.BadRequest(c, 14002, "学期结束日期必须晚于开始日期")
	case errors.Is(err, service.ErrSemesterExamInvalid):
		response.BadRequest(c, 14003, "考试周区间无效")
	case errors.Is(err, service.ErrSemesterCodeExists):
		response.Conflict(c, 14004, "学期代码已存在")
	case errors.Is(err, service.ErrSemesterActiveDelete):
		response.Conflict(c, 14005, "不能删除当前激活的学期")
	default:
		handleCommonError(c, err)
	}
}
