package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mathisDlmr/Tutut-sub000/internal/api/middleware"
	"github.com/mathisDlmr/Tutut-sub000/internal/model"
	"github.com/mathisDlmr/Tutut-sub000/internal/service"
	"github.com/mathisDlmr/Tutut-sub000/pkg/response"
)

// MustGetUserID 从上下文取出 JWTAuth 注入的 user_id
// ok=false 时已写入 401，调用方直接 return
func MustGetUserID(c *gin.Context) (string, bool) {
	uid := c.GetString(middleware.ContextUserID)
	if uid == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return uid, true
}

// MustGetRole 从上下文取出角色
func MustGetRole(c *gin.Context) (model.Role, bool) {
	v, exists := c.Get(middleware.ContextRole)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	role, ok := v.(model.Role)
	if !ok {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return role, true
}

// mustParam 读取路径参数，为空时写入 400
func mustParam(c *gin.Context, name, label string) (string, bool) {
	v := c.Param(name)
	if v == "" {
		response.BadRequest(c, 10001, label+"不能为空")
		return "", false
	}
	return v, true
}

// bindJSON 绑定请求体；超出大小限制时返回 413
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			return false
		}
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
		return false
	}
	return true
}

// handleCommonError 各模块共用的错误码
func handleCommonError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDateInvalid):
		response.BadRequest(c, 10006, "日期格式无效，应为 YYYY-MM-DD")
	default:
		response.InternalError(c)
	}
}
