package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 单条邮件分诊延迟（毫秒）
	TriageLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "triage_latency_ms",
			Help:    "Per-message triage latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1ms to ~1s
		},
	)

	// 邮件分类计数
	EmailClassifiedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_classified_count",
			Help: "Total number of emails classified",
		},
		[]string{"category"},
	)

	// 扫描批次计数
	ScanCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scan_count",
			Help: "Total number of mailbox scans",
		},
		[]string{"status"}, // status: success, failed
	)

	// 退订尝试计数
	UnsubscribeAttemptCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unsubscribe_attempt_count",
			Help: "Total number of unsubscribe attempts",
		},
		[]string{"outcome"}, // outcome: success, failed, rejected
	)

	// 安全闸门拦截计数
	SafetyGateBlockCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "safety_gate_block_count",
			Help: "Total number of emails held back for confirmation by the safety gate",
		},
	)

	// HTTP 请求延迟（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// 慢查询计数
	SlowQueryCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "slow_query_count",
			Help: "Total number of SQL queries slower than the configured threshold",
		},
	)

	// MQ 消费延迟（毫秒）
	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "queue"},
	)
)

// RecordTriageLatency 记录分诊延迟
func RecordTriageLatency(duration time.Duration) {
	TriageLatency.Observe(float64(duration.Milliseconds()))
}

// IncrementEmailClassified 增加邮件分类计数
func IncrementEmailClassified(category string) {
	EmailClassifiedCount.WithLabelValues(category).Inc()
}

// IncrementScan 增加扫描计数
func IncrementScan(status string) {
	ScanCount.WithLabelValues(status).Inc()
}

// IncrementUnsubscribeAttempt 增加退订尝试计数
func IncrementUnsubscribeAttempt(outcome string) {
	UnsubscribeAttemptCount.WithLabelValues(outcome).Inc()
}

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// IncrementSlowQuery 增加慢查询计数
func IncrementSlowQuery() {
	SlowQueryCount.Inc()
}

// RecordMQConsumeLatency 记录 MQ 消费延迟
func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}
