package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Shivappapadennavar/attend/internal/authz"
	"github.com/Shivappapadennavar/attend/pkg/response"
)

// MustGetIdentity 从 Gin 上下文中提取 JWT 中间件注入的身份。
// 身份不完整时写入 401 响应并返回 false，调用方应直接 return。
// 这是客户端自报 user_id 进不了核心的关口：写操作一律使用该身份。
func MustGetIdentity(c *gin.Context) (authz.Identity, bool) {
	userID, ok1 := getString(c, "user_id")
	role, ok2 := getString(c, "role")

	id := authz.Identity{UserID: userID, Role: role}
	if !ok1 || !ok2 || id.IsZero() {
		response.Unauthorized(c, 10002, "未认证")
		return authz.Identity{}, false
	}
	return id, true
}

func getString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

// handleAuthzError 统一处理鉴权闸门错误；处理了返回 true
func handleAuthzError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		response.Unauthorized(c, 10002, "未认证")
		return true
	case errors.Is(err, authz.ErrForbidden):
		response.Forbidden(c, 10003, "无权限执行该操作")
		return true
	}
	return false
}
