package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger 数据库连通性检查（*sql.DB 实现）
type Pinger interface {
	PingContext(ctx context.Context) error
}

// CachePinger Redis 连通性检查（pkg/redis.Client 实现）
type CachePinger interface {
	Ping(ctx context.Context) error
}

const healthTimeout = 2 * time.Second

// 组件状态
const (
	statusUp       = "up"
	statusDown     = "down"
	statusUnknown  = "unknown"
	statusDisabled = "disabled"
)

// HealthHandler 健康检查
type HealthHandler struct {
	db    Pinger
	cache CachePinger
}

// NewHealthHandler 创建 HealthHandler
// db 为 nil 时数据库状态为 unknown；cache 为 nil 表示未启用 Redis
func NewHealthHandler(db Pinger, cache CachePinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Health 存活探针 + 依赖状态
// 数据库不可用返回 503；Redis 只影响限流与缓存，不可用时仍返回 200
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	dbStatus := statusUnknown
	if h.db != nil {
		dbStatus = statusUp
		if err := h.db.PingContext(ctx); err != nil {
			dbStatus = statusDown
		}
	}

	redisStatus := statusDisabled
	if h.cache != nil {
		redisStatus = statusUp
		if err := h.cache.Ping(ctx); err != nil {
			redisStatus = statusDown
		}
	}

	code, overall := http.StatusOK, "ok"
	switch {
	case dbStatus == statusDown:
		code, overall = http.StatusServiceUnavailable, "degraded"
	case redisStatus == statusDown:
		overall = "degraded"
	}

	c.JSON(code, gin.H{"status": overall, "database": dbStatus, "redis": redisStatus})
}
