package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mathisDlmr/Tutut-sub000/internal/dto"
	"github.com/mathisDlmr/Tutut-sub000/internal/model"
	"github.com/mathisDlmr/Tutut-sub000/internal/service"
	"github.com/mathisDlmr/Tutut-sub000/pkg/response"
)

// AccountingHandler 课时台账 HTTP 处理器
type AccountingHandler struct {
	accountingSvc service.AccountingService
}

// NewAccountingHandler 创建 AccountingHandler
func NewAccountingHandler(accountingSvc service.AccountingService) *AccountingHandler {
	return &AccountingHandler{accountingSvc: accountingSvc}
}

// ComputeHours 计算周课时
// POST /api/v1/weeks/:id/hours
// 辅导员只能计算本人；具备台账查看权限的角色可通过 user_id 指定他人
func (h *AccountingHandler) ComputeHours(c *gin.Context) {
	weekID, ok := mustParam(c, "id", "周次ID")
	if !ok {
		return
	}

	var req dto.ComputeHoursRequest
	if c.Request.ContentLength != 0 {
		if !bindJSON(c, &req) {
			return
		}
	}

	userID, callerID, ok := resolveLedgerUser(c, req.UserID)
	if !ok {
		return
	}

	resp, err := h.accountingSvc.ComputeWeeklyHours(c.Request.Context(), userID, weekID, req.Supplemental, callerID)
	if err != nil {
		handleAccountingError(c, err)
		return
	}

	response.OK(c, resp)
}

// ListWeekLedger 一周台账
// GET /api/v1/weeks/:id/ledger
func (h *AccountingHandler) ListWeekLedger(c *gin.Context) {
	weekID, ok := mustParam(c, "id", "周次ID")
	if !ok {
		return
	}

	list, err := h.accountingSvc.ListByWeek(c.Request.Context(), weekID)
	if err != nil {
		handleAccountingError(c, err)
		return
	}

	response.OKList(c, list, len(list))
}

// GetEntry 台账详情（含补充课时）
// GET /api/v1/weeks/:id/hours/:user_id
func (h *AccountingHandler) GetEntry(c *gin.Context) {
	weekID, ok := mustParam(c, "id", "周次ID")
	if !ok {
		return
	}

	userID, _, ok := resolveLedgerUser(c, c.Param("user_id"))
	if !ok {
		return
	}

	entry, err := h.accountingSvc.GetEntry(c.Request.Context(), userID, weekID)
	if err != nil {
		handleAccountingError(c, err)
		return
	}

	response.OK(c, entry)
}

// ValidateEntry 锁定台账
// PUT /api/v1/weeks/:id/hours/:user_id/validate
func (h *AccountingHandler) ValidateEntry(c *gin.Context) {
	h.setLocked(c, true)
}

// InvalidateEntry 解除锁定
// PUT /api/v1/weeks/:id/hours/:user_id/invalidate
func (h *AccountingHandler) InvalidateEntry(c *gin.Context) {
	h.setLocked(c, false)
}

func (h *AccountingHandler) setLocked(c *gin.Context, locked bool) {
	weekID, ok := mustParam(c, "id", "周次ID")
	if !ok {
		return
	}
	userID, ok := mustParam(c, "user_id", "用户ID")
	if !ok {
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var (
		entry *dto.LedgerEntryResponse
		err   error
	)
	if locked {
		entry, err = h.accountingSvc.Validate(c.Request.Context(), userID, weekID, callerID)
	} else {
		entry, err = h.accountingSvc.Invalidate(c.Request.Context(), userID, weekID, callerID)
	}
	if err != nil {
		handleAccountingError(c, err)
		return
	}

	response.OK(c, entry)
}

// SetComment 设置备注（锁定后仍可修改）
// PUT /api/v1/weeks/:id/hours/:user_id/comment
func (h *AccountingHandler) SetComment(c *gin.Context) {
	weekID, ok := mustParam(c, "id", "周次ID")
	if !ok {
		return
	}
	userID, ok := mustParam(c, "user_id", "用户ID")
	if !ok {
		return
	}

	var req dto.SetCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	entry, err := h.accountingSvc.SetComment(c.Request.Context(), userID, weekID, &req, callerID)
	if err != nil {
		handleAccountingError(c, err)
		return
	}

	response.OK(c, entry)
}

// resolveLedgerUser 确定操作的台账归属人
// 目标为空或为本人时直接放行；操作他人需 view_ledger 能力
func resolveLedgerUser(c *gin.Context, target string) (userID, callerID string, ok bool) {
	callerID, ok = MustGetUserID(c)
	if !ok {
		return "", "", false
	}
	if target == "" || target == callerID {
		return callerID, callerID, true
	}

	role, ok := MustGetRole(c)
	if !ok {
		return "", "", false
	}
	if !role.Can(model.CapViewLedger) {
		response.Forbidden(c, 10003, "无权限访问他人台账")
		return "", "", false
	}
	return target, callerID, true
}

func handleAccountingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLedgerLocked):
		response.Conflict(c, 20001, "台账已锁定，不能重新计算")
	case errors.Is(err, service.ErrLedgerEntryNotFound):
		response.NotFound(c, 20002, "台账条目不存在")
	case errors.Is(err, service.ErrLedgerConflict):
		response.Conflict(c, 20003, "台账已被并发修改，请重试")
	case errors.Is(err, service.ErrSupplementalInvalid):
		response.ErrorWithDetails(c, http.StatusBadRequest, 20004, "补充课时参数无效", err.Error())
	case errors.Is(err, service.ErrWeekNotFound):
		response.NotFound(c, 15001, "周次不存在")
	default:
		handleCommonError(c, err)
	}
}
