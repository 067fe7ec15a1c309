package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"khatib-jumat/pkg/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ── Mock RateLimiter ──

type mockLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (m *mockLimiter) CheckRateLimit(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	m.keys = append(m.keys, key)
	return m.allowed, m.err
}

func serve(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

// ── RateLimit ──

func TestRateLimit_Blocks(t *testing.T) {
	limiter := &mockLimiter{allowed: false}
	r := gin.New()
	r.POST("/claim/:date", RateLimit(limiter, 1, time.Minute, zap.NewNop()), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	w := serve(r, "POST", "/claim/2026-01-02")
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", w.Code)
	}
	if len(limiter.keys) != 1 || !strings.HasSuffix(limiter.keys[0], "/claim/:date") {
		t.Errorf("expected key scoped by route template, got %v", limiter.keys)
	}
}

func TestRateLimit_FailOpen(t *testing.T) {
	cases := []struct {
		name    string
		limiter RateLimiter
	}{
		{"nil limiter", nil},
		{"redis error", &mockLimiter{err: errors.New("redis down")}},
		{"allowed", &mockLimiter{allowed: true}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.POST("/claim", RateLimit(tc.limiter, 1, time.Minute, zap.NewNop()), func(c *gin.Context) {
				c.Status(http.StatusCreated)
			})

			if w := serve(r, "POST", "/claim"); w.Code != http.StatusCreated {
				t.Errorf("expected 201, got %d", w.Code)
			}
		})
	}
}

// ── RequestID ──

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(requestIDKey))
	})

	w := serve(r, "GET", "/ping")
	rid := w.Header().Get(requestIDHeader)
	if rid == "" || rid != w.Body.String() {
		t.Errorf("expected generated request id in header and context, got %q / %q", rid, w.Body.String())
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	r.ServeHTTP(w, req)
	if w.Header().Get(requestIDHeader) != "abc-123" {
		t.Errorf("expected incoming request id to be kept")
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set(requestIDHeader, strings.Repeat("x", requestIDMaxLen+1))
	r.ServeHTTP(w, req)
	if len(w.Header().Get(requestIDHeader)) > requestIDMaxLen {
		t.Errorf("expected oversized request id to be replaced")
	}
}

// ── Metrics ──

func TestMetrics_ObservesRouteTemplate(t *testing.T) {
	m := metrics.New()
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/schedules/:date", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, "GET", "/schedules/2026-01-02")
	serve(r, "GET", "/nowhere")

	if n := testutil.CollectAndCount(m.RequestDuration); n != 2 {
		t.Errorf("expected 2 label series, got %d", n)
	}
}

// ── BodyLimit ──

func TestBodyLimit_RejectsLargeContentLength(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(16))
	r.POST("/claim", func(c *gin.Context) { c.Status(http.StatusCreated) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/claim", strings.NewReader(strings.Repeat("a", 64)))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}
}

// ── CORS ──

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173/"}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest("OPTIONS", "/ping", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204 for preflight, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Error("expected allowed origin to be echoed")
	}
	if w.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("expected allow-methods on preflight")
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set("Origin", "http://evil.example")
	r.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("unexpected CORS header for unknown origin")
	}
	if w.Code != http.StatusOK {
		t.Errorf("expected simple request to reach handler, got %d", w.Code)
	}
}

func TestCORS_VaryOnOrigin(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173"}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, origin := range []string{"http://localhost:5173", "http://evil.example"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/ping", nil)
		req.Header.Set("Origin", origin)
		r.ServeHTTP(w, req)
		if w.Header().Get("Vary") != "Origin" {
			t.Errorf("%s: expected Vary: Origin, got %q", origin, w.Header().Get("Vary"))
		}
	}

	w := serve(r, "GET", "/ping")
	if w.Header().Get("Vary") != "" {
		t.Error("expected no Vary header without Origin")
	}
}

func TestCORS_PreflightRules(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173"}))
	r.OPTIONS("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	// 未带 Access-Control-Request-Method 的 OPTIONS 不是预检
	w := httptest.NewRecorder()
	req := httptest.NewRequest("OPTIONS", "/ping", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected plain OPTIONS to reach handler, got %d", w.Code)
	}

	// 非白名单来源的预检被拒绝
	w = httptest.NewRecorder()
	req = httptest.NewRequest("OPTIONS", "/ping", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", "DELETE")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for unknown origin preflight, got %d", w.Code)
	}
}

// ── SecurityHeaders ──

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/api/v1/schedules", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, "GET", "/api/v1/schedules")
	want := map[string]string{
		"X-Content-Type-Options":       "nosniff",
		"X-Frame-Options":              "DENY",
		"Content-Security-Policy":      apiCSP,
		"Referrer-Policy":              "no-referrer",
		"Cross-Origin-Resource-Policy": "same-site",
		"Cache-Control":                "no-store",
	}
	for k, v := range want {
		if got := w.Header().Get(k); got != v {
			t.Errorf("%s: expected %q, got %q", k, v, got)
		}
	}
	if w.Header().Get("X-XSS-Protection") != "" {
		t.Error("X-XSS-Protection should not be sent")
	}

	w = serve(r, "GET", "/health")
	if w.Header().Get("Cache-Control") != "" {
		t.Error("expected no Cache-Control outside /api/")
	}
}

// ── Logger ──

func TestLogger_RequestScopedFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	r := gin.New()
	r.Use(RequestID())
	r.Use(Logger(zap.New(core)))
	r.POST("/schedules/:date/registration", func(c *gin.Context) { c.String(http.StatusTooManyRequests, "slow") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/schedules/2026-01-02/registration?x=1", nil)
	req.Header.Set(requestIDHeader, "rid-1")
	req.Header.Set("User-Agent", "khatib-test")
	r.ServeHTTP(w, req)

	entries := logs.FilterMessage("请求被限流").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 rate-limited log entry, got %d", logs.Len())
	}
	fields := entries[0].ContextMap()
	wantStr := map[string]string{
		"request_id": "rid-1",
		"route":      "/schedules/:date/registration",
		"path":       "/schedules/2026-01-02/registration",
		"date":       "2026-01-02",
		"query":      "x=1",
		"user_agent": "khatib-test",
		"client_ip":  "192.0.2.1",
	}
	for k, v := range wantStr {
		if fields[k] != v {
			t.Errorf("%s: expected %q, got %v", k, v, fields[k])
		}
	}
	if fields["bytes"] != int64(4) {
		t.Errorf("expected bytes=4, got %v", fields["bytes"])
	}

	serve(r, "GET", "/nowhere")
	last := logs.All()[logs.Len()-1].ContextMap()
	if last["route"] != "unmatched" {
		t.Errorf("expected unmatched route, got %v", last["route"])
	}
}
