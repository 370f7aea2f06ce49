package monitor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics 交易流水线的业务指标
type BusinessMetrics struct {
	SignedTotal      *prometheus.CounterVec
	AnnouncedTotal   *prometheus.CounterVec
	LockWaitDuration *prometheus.HistogramVec
	CacheRequests    *prometheus.CounterVec
	Subscriptions    prometheus.Gauge
}

// Business 未初始化时为 nil, 下面的记录函数均为空操作
var Business *BusinessMetrics

func InitBusinessMetrics() {
	Business = NewBusinessMetrics(prometheus.DefaultRegisterer)
}

// NewBusinessMetrics 注册到指定 registerer, 测试中可传入独立的 registry
func NewBusinessMetrics(reg prometheus.Registerer) *BusinessMetrics {
	f := promauto.With(reg)
	return &BusinessMetrics{
		SignedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_signed_transactions_total",
			Help: "Transactions signed, by transaction type",
		}, []string{"type"}),
		AnnouncedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_announced_transactions_total",
			Help: "Announce attempts, by path and result",
		}, []string{"path", "result"}),
		LockWaitDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wallet_hash_lock_wait_seconds",
			Help:    "Time between hash lock announce and its confirmation",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
		}, []string{"result"}),
		CacheRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_cache_requests_total",
			Help: "Read-through cache lookups, by view and hit/miss",
		}, []string{"view", "result"}),
		Subscriptions: f.NewGauge(prometheus.GaugeOpts{
			Name: "wallet_listener_subscriptions",
			Help: "Active confirmed-transaction subscriptions",
		}),
	}
}

func ObserveSigned(txType string) {
	if Business == nil {
		return
	}
	Business.SignedTotal.WithLabelValues(txType).Inc()
}

func ObserveAnnounce(path string, success bool) {
	if Business == nil {
		return
	}
	result := "success"
	if !success {
		result = "failure"
	}
	Business.AnnouncedTotal.WithLabelValues(path, result).Inc()
}

func ObserveLockWait(result string, d time.Duration) {
	if Business == nil {
		return
	}
	Business.LockWaitDuration.WithLabelValues(result).Observe(d.Seconds())
}

func ObserveCache(view string, hit bool) {
	if Business == nil {
		return
	}
	result := "hit"
	if !hit {
		result = "miss"
	}
	Business.CacheRequests.WithLabelValues(view, result).Inc()
}

func AddSubscriptions(delta float64) {
	if Business == nil {
		return
	}
	Business.Subscriptions.Add(delta)
}
