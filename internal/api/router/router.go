package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Shivappapadennavar/attend/config"
	"github.com/Shivappapadennavar/attend/internal/api/handler"
	"github.com/Shivappapadennavar/attend/internal/api/middleware"
	"github.com/Shivappapadennavar/attend/internal/model"
	"github.com/Shivappapadennavar/attend/pkg/jwt"
	"github.com/Shivappapadennavar/attend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(1 << 20))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证；登录接口限流防爆破）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)

			// 考勤模块
			attendance := authorized.Group("/attendance")
			{
				attendance.POST("/check-in", h.Attendance.CheckIn)
				attendance.POST("/check-out", h.Attendance.CheckOut)
				attendance.GET("/today", h.Attendance.GetToday)
				attendance.GET("/users/:id", h.Attendance.ListForUser) // 本人或管理员（Service 层鉴权）
				attendance.GET("", middleware.RoleAuth(model.RoleAdmin), h.Attendance.ListAll)
				attendance.GET("/export", middleware.RoleAuth(model.RoleAdmin), h.Export.ExportAttendance)
			}

			// 请假模块
			leaves := authorized.Group("/leaves")
			{
				leaves.POST("", h.Leave.Submit)
				leaves.GET("/pending", middleware.RoleAuth(model.RoleAdmin), h.Leave.ListPending)
				leaves.POST("/:id/approve", middleware.RoleAuth(model.RoleAdmin), h.Leave.Approve)
				leaves.POST("/:id/reject", middleware.RoleAuth(model.RoleAdmin), h.Leave.Reject)
				leaves.GET("/users/:id", h.Leave.ListForUser) // 本人或管理员（Service 层鉴权）
				leaves.GET("/users/:id/calendar", h.Export.ExportLeaveCalendar)
			}

			// 用户目录
			users := authorized.Group("/users")
			{
				users.GET("", middleware.RoleAuth(model.RoleAdmin), h.User.ListUsers)
			}
		}
	}

	return r
}
