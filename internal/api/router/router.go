package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MosaSabaSaba/scheduling/config"
	"github.com/MosaSabaSaba/scheduling/internal/api/handler"
	"github.com/MosaSabaSaba/scheduling/internal/api/middleware"
	"github.com/MosaSabaSaba/scheduling/internal/model"
	"github.com/MosaSabaSaba/scheduling/internal/realtime"
	"github.com/MosaSabaSaba/scheduling/pkg/jwt"
	"github.com/MosaSabaSaba/scheduling/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(
	cfg *config.Config,
	h *handler.Handler,
	wsHandler *realtime.Handler,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20)) // 1MB

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证；登录注册做速率限制）
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(rdb, 20, time.Minute))
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
		}

		// 实时通道：握手阶段用同一 JWT 验签，不走 REST 认证中间件
		v1.GET("/ws", wsHandler.HandleConnection)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentEmployee)

			// 员工模块
			employees := authorized.Group("/employees")
			{
				employees.GET("", h.Employee.ListEmployees)
				employees.GET("/:id", h.Employee.GetEmployee)
				employees.POST("", middleware.RoleAuth(model.RoleManager), h.Employee.CreateEmployee)
				employees.PUT("/:id", middleware.RoleAuth(model.RoleManager), h.Employee.UpdateEmployee)
				employees.DELETE("/:id", middleware.RoleAuth(model.RoleManager), h.Employee.DeleteEmployee)
			}

			// 班次模块（查看/变更/换班的鉴权在 Service 层按策略判定）
			shifts := authorized.Group("/shifts")
			{
				shifts.GET("", h.Shift.ListShifts)
				shifts.GET("/:id", h.Shift.GetShift)
				shifts.POST("", h.Shift.CreateShift)
				shifts.PUT("/:id", h.Shift.UpdateShift)
				shifts.DELETE("/:id", h.Shift.DeleteShift)
				shifts.POST("/:id/swap-request", h.Shift.SubmitSwap)
				shifts.PUT("/:id/swap-request/:swapId", h.Shift.RespondToSwap)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/shifts", middleware.RoleAuth(model.RoleManager), h.Export.ExportShifts)
				export.GET("/calendar", h.Export.ExportCalendar)
			}
		}
	}

	return r
}
