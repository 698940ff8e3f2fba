package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/MosaSabaSaba/scheduling/internal/policy"
	"github.com/MosaSabaSaba/scheduling/pkg/response"
)

// MustGetIdentity 从 Gin 上下文中安全提取调用者身份。
// 身份由 JWT 中间件注入；缺失时返回 false 并写入 401 响应，
// 调用方应在 ok=false 时直接 return。
func MustGetIdentity(c *gin.Context) (policy.Identity, bool) {
	id, exists := c.Get("employee_id")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return policy.Identity{}, false
	}
	employeeID, ok := id.(string)
	if !ok || employeeID == "" {
		response.Unauthorized(c, 10002, "未认证")
		return policy.Identity{}, false
	}

	r, exists := c.Get("role")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return policy.Identity{}, false
	}
	role, ok := r.(string)
	if !ok || role == "" {
		response.Unauthorized(c, 10002, "未认证")
		return policy.Identity{}, false
	}

	return policy.Identity{ID: employeeID, Role: role}, true
}
