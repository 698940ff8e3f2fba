package realtime

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/MosaSabaSaba/scheduling/internal/model"
	"github.com/MosaSabaSaba/scheduling/pkg/jwt"
	"github.com/MosaSabaSaba/scheduling/pkg/response"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS 白名单已在 HTTP 层校验，这里放行
		return true
	},
}

// Handler WebSocket 接入处理器
// 握手使用与 REST 相同的 JWT 验签规则，验签失败直接拒绝升级，
// 不授予任何频道成员资格；连接存续期间不做二次验签
type Handler struct {
	hub    *Hub
	jwtMgr *jwt.Manager
	logger *zap.Logger
}

// NewHandler 创建 WebSocket Handler
func NewHandler(hub *Hub, jwtMgr *jwt.Manager, logger *zap.Logger) *Handler {
	return &Handler{
		hub:    hub,
		jwtMgr: jwtMgr,
		logger: logger,
	}
}

// HandleConnection 处理 WebSocket 握手与连接
// GET /api/v1/ws?token=<jwt>
func (h *Handler) HandleConnection(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		// 浏览器外的客户端也可沿用 REST 的 Bearer 头
		token = bearerToken(c.GetHeader("Authorization"))
	}
	if token == "" {
		response.Unauthorized(c, 10002, "缺少认证信息")
		return
	}

	claims, err := h.jwtMgr.ParseToken(token)
	if err != nil {
		response.Unauthorized(c, 10002, "Token 无效或已过期")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket 升级失败", zap.Error(err))
		return
	}

	client := NewClient(h.hub, conn, claims.EmployeeID, claims.Role == model.RoleManager, h.logger)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

// bearerToken 从 Authorization: Bearer <token> 中提取 token
func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}
