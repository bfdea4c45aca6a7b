package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/mathisDlmr/Tutut-sub000/internal/dto"
	"github.com/mathisDlmr/Tutut-sub000/internal/service"
	"github.com/mathisDlmr/Tutut-sub000/pkg/response"
)

// SlotHandler 时段生成与辅导员抢位 HTTP 处理器
type SlotHandler struct {
	slotSvc  service.SlotService
	claimSvc service.ClaimService
}

// NewSlotHandler 创建 SlotHandler
func NewSlotHandler(slotSvc service.SlotService, claimSvc service.ClaimService) *SlotHandler {
	return &SlotHandler{slotSvc: slotSvc, claimSvc: claimSvc}
}

// GenerateSlots 按校历与教室可用时间生成一周时段
// POST /api/v1/weeks/:id/slots/generate
func (h *SlotHandler) GenerateSlots(c *gin.Context) {
	weekID, ok := mustParam(c, "id", "周次ID")
	if !ok {
		return
	}

	var req dto.GenerateSlotsRequest
	if c.Request.ContentLength != 0 {
		if !bindJSON(c, &req) {
			return
		}
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.slotSvc.Generate(c.Request.Context(), weekID, service.GenerateOptions{Confirm: req.Confirm}, callerID)
	if err != nil {
		handleSlotError(c, err)
		return
	}

	response.OK(c, resp)
}

// ListWeekSlots 一周时段
// GET /api/v1/weeks/:id/slots?open_only=true
func (h *SlotHandler) ListWeekSlots(c *gin.Context) {
	weekID, ok := mustParam(c, "id", "周次ID")
	if !ok {
		return
	}

	var req dto.SlotListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	slots, err := h.slotSvc.ListByWeek(c.Request.Context(), weekID, &req)
	if err != nil {
		handleSlotError(c, err)
		return
	}

	response.OKList(c, slots, len(slots))
}

// OpenWeek 开放该周全部时段，其余周的时段全部关闭
// POST /api/v1/weeks/:id/open
func (h *SlotHandler) OpenWeek(c *gin.Context) {
	weekID, ok := mustParam(c, "id", "周次ID")
	if !ok {
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.claimSvc.OpenWeek(c.Request.Context(), weekID, callerID)
	if err != nil {
		handleSlotError(c, err)
		return
	}

	response.OK(c, resp)
}

// GetSlot 时段详情
// GET /api/v1/slots/:id
func (h *SlotHandler) GetSlot(c *gin.Context) {
	id, ok := mustParam(c, "id", "时段ID")
	if !ok {
		return
	}

	slot, err := h.slotSvc.Get(c.Request.Context(), id)
	if err != nil {
		handleSlotError(c, err)
		return
	}

	response.OK(c, slot)
}

// Claim 抢占辅导员席位
// POST /api/v1/slots/:id/claim
// 竞争失败不是错误：返回 200，claimed=false 并附原因
func (h *SlotHandler) Claim(c *gin.Context) {
	id, ok := mustParam(c, "id", "时段ID")
	if !ok {
		return
	}

	var req dto.ClaimRequest
	if !bindJSON(c, &req) {
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.claimSvc.Claim(c.Request.Context(), id, callerID, req.Position)
	if err != nil {
		handleSlotError(c, err)
		return
	}

	response.OK(c, resp)
}

// Release 释放自己持有的席位
// POST /api/v1/slots/:id/release
func (h *SlotHandler) Release(c *gin.Context) {
	id, ok := mustParam(c, "id", "时段ID")
	if !ok {
		return
	}

	var req dto.ClaimRequest
	if !bindJSON(c, &req) {
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	slot, err := h.claimSvc.Release(c.Request.Context(), id, callerID, req.Position)
	if err != nil {
		handleSlotError(c, err)
		return
	}

	response.OK(c, slot)
}

// SetAttendance 标记本人席位出勤
// PUT /api/v1/slots/:id/attendance
func (h *SlotHandler) SetAttendance(c *gin.Context) {
	id, ok := mustParam(c, "id", "时段ID")
	if !ok {
		return
	}

	var req dto.AttendanceRequest
	if !bindJSON(c, &req) {
		return
	}
	if !req.Counted.Present {
		response.BadRequest(c, 10001, "counted 字段必填，重置请传 null")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	slot, err := h.claimSvc.SetAttendance(c.Request.Context(), id, callerID, req.Position, req.Counted.Value)
	if err != nil {
		handleSlotError(c, err)
		return
	}

	response.OK(c, slot)
}

// ListMySlots 当前辅导员持有席位的时段
// GET /api/v1/me/slots?week_id=
func (h *SlotHandler) ListMySlots(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	weekID := c.Query("week_id")
	if weekID == "" {
		response.BadRequest(c, 10001, "周次ID不能为空")
		return
	}

	slots, err := h.claimSvc.ListMine(c.Request.Context(), callerID, weekID)
	if err != nil {
		handleSlotError(c, err)
		return
	}

	response.OKList(c, slots, len(slots))
}

func handleSlotError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSlotNotFound):
		response.NotFound(c, 18001, "时段不存在")
	case errors.Is(err, service.ErrRegenerationNeedsConfirm):
		response.Conflict(c, 18002, "该周已有抢位或报名，重新生成需确认")
	case errors.Is(err, service.ErrPositionInvalid):
		response.BadRequest(c, 18003, "席位只能为 1 或 2")
	case errors.Is(err, service.ErrNotPositionHolder):
		response.Forbidden(c, 18004, "当前用户不是该席位的持有者")
	case errors.Is(err, service.ErrWeekNotFound):
		response.NotFound(c, 15001, "周次不存在")
	default:
		handleCommonError(c, err)
	}
}
