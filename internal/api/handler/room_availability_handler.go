package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/mathisDlmr/Tutut-sub000/internal/dto"
	"github.com/mathisDlmr/Tutut-sub000/internal/service"
	"github.com/mathisDlmr/Tutut-sub000/pkg/response"
)

// RoomAvailabilityHandler 教室可用时间 HTTP 处理器
type RoomAvailabilityHandler struct {
	roomSvc service.RoomAvailabilityService
}

// NewRoomAvailabilityHandler 创建 RoomAvailabilityHandler
func NewRoomAvailabilityHandler(roomSvc service.RoomAvailabilityService) *RoomAvailabilityHandler {
	return &RoomAvailabilityHandler{roomSvc: roomSvc}
}

// ListRooms 列出教室可用时间
// GET /api/v1/rooms?day_label=&room=
func (h *RoomAvailabilityHandler) ListRooms(c *gin.Context) {
	var req dto.RoomAvailabilityListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.roomSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleRoomError(c, err)
		return
	}

	response.OKList(c, list, len(list))
}

// GetRoom 获取教室可用时间
// GET /api/v1/rooms/:id
func (h *RoomAvailabilityHandler) GetRoom(c *gin.Context) {
	id, ok := mustParam(c, "id", "教室时间ID")
	if !ok {
		return
	}

	room, err := h.roomSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		handleRoomError(c, err)
		return
	}

	response.OK(c, room)
}

// CreateRoom 新增教室可用时间
// POST /api/v1/rooms
func (h *RoomAvailabilityHandler) CreateRoom(c *gin.Context) {
	var req dto.CreateRoomAvailabilityRequest
	if !bindJSON(c, &req) {
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	room, err := h.roomSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		handleRoomError(c, err)
		return
	}

	response.Created(c, room)
}

// UpdateRoom 更新教室可用时间
// PUT /api/v1/rooms/:id
func (h *RoomAvailabilityHandler) UpdateRoom(c *gin.Context) {
	id, ok := mustParam(c, "id", "教室时间ID")
	if !ok {
		return
	}

	var req dto.UpdateRoomAvailabilityRequest
	if !bindJSON(c, &req) {
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	room, err := h.roomSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		handleRoomError(c, err)
		return
	}

	response.OK(c, room)
}

// DeleteRoom 删除教室可用时间
// DELETE /api/v1/rooms/:id
func (h *RoomAvailabilityHandler) DeleteRoom(c *gin.Context) {
	id, ok := mustParam(c, "id", "教室时间ID")
	if !ok {
		return
	}

	if err := h.roomSvc.Delete(c.Request.Context(), id); err != nil {
		handleRoomError(c, err)
		return
	}

	response.OK(c, nil)
}

func handleRoomError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRoomAvailabilityNotFound):
		response.NotFound(c, 16001, "教室可用时间不存在")
	case errors.Is(err, service.ErrRoomAvailabilityTime):
		response.BadRequest(c, 16002, "开始时间必须早于结束时间，格式 HH:MM")
	case errors.Is(err, service.ErrDayLabelInvalid):
		response.BadRequest(c, 16003, "日期模板标签无效")
	default:
		handleCommonError(c, err)
	}
}
