package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const apiCSP = "default-src 'none'; frame-ancestors 'none'"

// SecurityHeaders JSON API 与导出文件的安全响应头
// 报名数据含手机号与 NIP，API 响应一律禁止缓存
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Content-Security-Policy", apiCSP)
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cross-Origin-Resource-Policy", "same-site")

		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			h.Set("Cache-Control", "no-store")
		}

		c.Next()
	}
}
