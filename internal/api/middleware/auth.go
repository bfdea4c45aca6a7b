package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mathisDlmr/Tutut-sub000/internal/model"
	"github.com/mathisDlmr/Tutut-sub000/pkg/jwt"
	"github.com/mathisDlmr/Tutut-sub000/pkg/response"
)

// 上下文键
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// JWTAuth 身份提取中间件
// 令牌由外部 OAuth 网关签发，这里只校验签名并注入 user_id 与角色
func JWTAuth(jwtMgr *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "缺少认证头")
			c.Abort()
			return
		}

		scheme, token, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			response.Unauthorized(c, 10002, "认证头格式无效")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(token)
		if err != nil {
			response.Unauthorized(c, 10002, "Token 无效或已过期")
			c.Abort()
			return
		}

		role, ok := model.ParseRole(claims.Role)
		if !ok {
			response.Forbidden(c, 10003, "未知角色")
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, role)

		c.Next()
	}
}

// RequireCapability 能力校验中间件，需挂在 JWTAuth 之后
func RequireCapability(capability model.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get(ContextRole)
		if !exists {
			response.Unauthorized(c, 10002, "未认证")
			c.Abort()
			return
		}

		role, ok := v.(model.Role)
		if !ok || !role.Can(capability) {
			response.Forbidden(c, 10003, "无权限访问")
			c.Abort()
			return
		}

		c.Next()
	}
}
