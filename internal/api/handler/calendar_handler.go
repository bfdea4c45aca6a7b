package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mathisDlmr/Tutut-sub000/internal/dto"
	"github.com/mathisDlmr/Tutut-sub000/internal/service"
	"github.com/mathisDlmr/Tutut-sub000/pkg/response"
)

// CalendarHandler 校历解析与覆盖管理 HTTP 处理器
type CalendarHandler struct {
	calendarSvc service.CalendarService
}

// NewCalendarHandler 创建 CalendarHandler
func NewCalendarHandler(calendarSvc service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendarSvc: calendarSvc}
}

// Resolve 解析某日：假日或日期模板
// GET /api/v1/calendar/resolve?date=2025-04-21
func (h *CalendarHandler) Resolve(c *gin.Context) {
	date, err := service.ParseDate(c.Query("date"))
	if err != nil {
		handleCalendarError(c, err)
		return
	}

	res, err := h.calendarSvc.Resolve(c.Request.Context(), date)
	if err != nil {
		handleCalendarError(c, err)
		return
	}

	response.OK(c, res.ToResponse())
}

// ListOverrides 列出覆盖
// GET /api/v1/calendar/overrides?from=&to=
func (h *CalendarHandler) ListOverrides(c *gin.Context) {
	var req dto.OverrideListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.calendarSvc.ListOverrides(c.Request.Context(), &req)
	if err != nil {
		handleCalendarError(c, err)
		return
	}

	response.OKList(c, list, len(list))
}

// SetOverride 设置某日覆盖（同一天只保留一条）
// PUT /api/v1/calendar/overrides
func (h *CalendarHandler) SetOverride(c *gin.Context) {
	var req dto.SetOverrideRequest
	if !bindJSON(c, &req) {
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	override, err := h.calendarSvc.SetOverride(c.Request.Context(), &req, callerID)
	if err != nil {
		handleCalendarError(c, err)
		return
	}

	response.OK(c, override)
}

// DeleteOverride 删除覆盖
// DELETE /api/v1/calendar/overrides/:id
func (h *CalendarHandler) DeleteOverride(c *gin.Context) {
	id, ok := mustParam(c, "id", "覆盖ID")
	if !ok {
		return
	}

	if err := h.calendarSvc.DeleteOverride(c.Request.Context(), id); err != nil {
		handleCalendarError(c, err)
		return
	}

	response.OK(c, nil)
}

// ImportHolidays 导入假日 ICS
// POST /api/v1/calendar/holidays/import
//
// 支持两种方式：
//   - 文件上传: multipart/form-data, field="file", replace_existing=true|false
//   - URL 导入: application/json, body={"url": "...", "replace_existing": false}，url 为空时使用配置地址
func (h *CalendarHandler) ImportHolidays(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if file, _, err := c.Request.FormFile("file"); err == nil {
		defer file.Close()

		replace, _ := strconv.ParseBool(c.PostForm("replace_existing"))
		resp, err := h.calendarSvc.ImportHolidaysICS(c.Request.Context(), file, replace, callerID)
		if err != nil {
			handleCalendarError(c, err)
			return
		}
		response.OK(c, resp)
		return
	}

	var req dto.ImportHolidaysRequest
	if c.Request.ContentLength != 0 {
		if !bindJSON(c, &req) {
			return
		}
	}

	resp, err := h.calendarSvc.ImportHolidaysFromURL(c.Request.Context(), req.URL, req.ReplaceExisting, callerID)
	if err != nil {
		handleCalendarError(c, err)
		return
	}

	response.OK(c, resp)
}

func handleCalendarError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOverrideNotFound):
		response.NotFound(c, 17001, "校历覆盖不存在")
	case errors.Is(err, service.ErrOverrideInvalid):
		response.BadRequest(c, 17002, "校历覆盖必须且只能是假日或指定日期模板之一")
	case errors.Is(err, service.ErrDayLabelInvalid):
		response.BadRequest(c, 17003, "日期模板标签无效")
	case errors.Is(err, service.ErrOverrideDateRange):
		response.BadRequest(c, 17004, "查询区间起点晚于终点")
	case errors.Is(err, service.ErrICSParseFailed):
		response.ErrorWithDetails(c, http.StatusBadRequest, 17005, "ICS 文件解析失败", err.Error())
	case errors.Is(err, service.ErrICSEmpty):
		response.BadRequest(c, 17006, "ICS 文件中未发现全天假日")
	case errors.Is(err, service.ErrICSSourceMissing):
		response.BadRequest(c, 17007, "请上传 ICS 文件或提供 ICS URL")
	case errors.Is(err, service.ErrICSFetchFailed):
		response.ErrorWithDetails(c, http.StatusBadGateway, 17008, "获取假日 ICS 失败", err.Error())
	default:
		handleCommonError(c, err)
	}
}
