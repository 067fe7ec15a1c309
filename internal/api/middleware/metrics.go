package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"khatib-jumat/pkg/metrics"
)

// Metrics 记录请求耗时直方图
// route 取路由模板（如 /api/v1/schedules/:date/registration），未匹配路由记为 "unmatched"
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
