package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// 报名 / 撤销结果标签
const (
	ResultSuccess  = "success"
	ResultConflict = "conflict"
	ResultInvalid  = "invalid"
	ResultError    = "error"
)

// Metrics 业务与 HTTP 指标集合
type Metrics struct {
	Registry        *prometheus.Registry
	Claims          *prometheus.CounterVec
	Releases        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New 创建指标并注册到独立的 Registry（避免测试间重复注册 panic）
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		Claims: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "khatib",
			Name:      "claims_total",
			Help:      "Number of slot claim attempts by result.",
		}, []string{"result"}),
		Releases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "khatib",
			Name:      "releases_total",
			Help:      "Number of registration releases by result.",
		}, []string{"result"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "khatib",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		m.Claims,
		m.Releases,
		m.RequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveClaim 记录一次报名结果；m 为 nil 时忽略
func (m *Metrics) ObserveClaim(result string) {
	if m == nil {
		return
	}
	m.Claims.WithLabelValues(result).Inc()
}

// ObserveRelease 记录一次撤销结果；m 为 nil 时忽略
func (m *Metrics) ObserveRelease(result string) {
	if m == nil {
		return
	}
	m.Releases.WithLabelValues(result).Inc()
}
