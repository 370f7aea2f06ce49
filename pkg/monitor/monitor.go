package monitor

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// ErrnoKey gin 上下文中记录业务错误码的键, 由 response.Error 写入
const ErrnoKey = "errno"

var (
	// HTTPRequestsTotal 按路由模板、所属流程阶段与状态统计
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_api_requests_total",
			Help: "Local API requests, by route, pipeline stage and status.",
		},
		[]string{"method", "path", "stage", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "wallet_api_request_duration_seconds",
			Help: "Local API latency; announce waits for hash lock confirmation.",
			// announce 可能一直等到确认超时
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 30, 120, 300},
		},
		[]string{"method", "stage"},
	)

	// APIErrorsTotal 返回了非 0 业务码的请求
	APIErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_api_errors_total",
			Help: "Local API responses carrying an errno code, by stage and code.",
		},
		[]string{"stage", "code"},
	)
)

// Init 注册 HTTP 指标并初始化业务指标, 只能调用一次
func Init() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(APIErrorsTotal)
	InitBusinessMetrics()
}

// Stage 路由模板对应的流程阶段
func Stage(path string) string {
	p := strings.TrimPrefix(path, "/api/v1")
	switch {
	case strings.HasPrefix(p, "/stage"):
		return "stage"
	case strings.HasPrefix(p, "/sign"), strings.HasPrefix(p, "/cosign"):
		return "sign"
	case strings.HasPrefix(p, "/announce"):
		return "announce"
	case strings.HasPrefix(p, "/accounts"), strings.HasPrefix(p, "/contacts"), strings.HasPrefix(p, "/wallet"):
		return "account"
	default:
		return "system"
	}
}

// PrometheusMiddleware 记录请求量、延迟与业务错误码
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath() // 路由模板, 而不是具体路径

		c.Next()

		if path == "" { // 忽略未匹配路由
			return
		}
		stage := Stage(path)
		status := strconv.Itoa(c.Writer.Status())
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, stage, status).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, stage).Observe(time.Since(start).Seconds())
		if code := c.GetInt(ErrnoKey); code != 0 {
			APIErrorsTotal.WithLabelValues(stage, strconv.Itoa(code)).Inc()
		}
	}
}
