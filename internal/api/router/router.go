package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"khatib-jumat/config"
	"khatib-jumat/internal/api/handler"
	"khatib-jumat/internal/api/middleware"
	"khatib-jumat/pkg/metrics"
)

// Setup 初始化并返回 Gin 路由引擎
// limiter 为 nil 时报名接口不限流
func Setup(cfg *config.Config, h *handler.Handler, limiter middleware.RateLimiter, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// gin 默认信任所有代理，ClientIP 可被 X-Forwarded-For 伪造从而绕过限流
	if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		logger.Warn("可信代理配置无效，忽略转发头", zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(m))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimitBytes))

	// ── 健康检查 / 指标 ──
	r.GET("/health", h.Health.Health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		v1.GET("/duty-locations", h.Schedule.ListDutyLocations)

		// 排期模块（公开）
		schedules := v1.Group("/schedules")
		{
			schedules.GET("", h.Schedule.GetSchedule)
			schedules.GET("/slots", h.Schedule.ListSlots)
			schedules.POST("/:date/registration",
				middleware.RateLimit(limiter, cfg.RateLimit.ClaimLimit, cfg.RateLimit.ClaimWindow, logger),
				h.Registration.Claim,
			)
		}

		// 管理端（鉴权由前置网关负责）
		admin := v1.Group("/admin/registrations")
		{
			admin.GET("", h.Registration.List)
			admin.GET("/export", h.Export.ExportRegistrations)
			admin.GET("/:date", h.Registration.Get)
			admin.DELETE("/:date", h.Registration.Delete)
		}
	}

	return r
}
