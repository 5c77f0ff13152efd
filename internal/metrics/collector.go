// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 指标收集器
type Collector struct {
	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpRequestSize     *prometheus.HistogramVec
	httpResponseSize    *prometheus.HistogramVec

	// 聚合任务指标
	jobsTotal        *prometheus.CounterVec
	jobDuration      *prometheus.HistogramVec
	jobsInFlight     prometheus.Gauge
	tokensTotal      prometheus.Counter
	distinctWords    prometheus.Histogram
	jobWorkers       prometheus.Histogram
	jobChunks        prometheus.Histogram
	stateTransitions *prometheus.CounterVec
	workerPanics     prometheus.Counter

	logger *zap.Logger
}

// NewCollector 创建指标收集器，注册到默认 registry
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	return NewCollectorWithRegisterer(namespace, prometheus.DefaultRegisterer, logger)
}

// NewCollectorWithRegisterer 创建指标收集器，注册到指定 registerer
func NewCollectorWithRegisterer(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	factory := promauto.With(reg)
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	// HTTP 指标
	c.httpRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	c.httpRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	c.httpRequestSize = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_size_bytes",
			Help:      "HTTP request size in bytes",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	c.httpResponseSize = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_response_size_bytes",
			Help:      "HTTP response size in bytes",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// 聚合任务指标
	c.jobsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregation_jobs_total",
			Help:      "Total number of word count aggregation jobs",
		},
		[]string{"status"}, // ok, failed, canceled
	)

	c.jobDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregation_job_duration_seconds",
			Help:      "Aggregation job duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"status"},
	)

	c.jobsInFlight = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "aggregation_jobs_in_flight",
			Help:      "Number of aggregation jobs currently running",
		},
	)

	c.tokensTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregation_tokens_total",
			Help:      "Total number of tokens counted",
		},
	)

	c.distinctWords = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregation_distinct_words",
			Help:      "Distinct words per aggregation job",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		},
	)

	c.jobWorkers = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregation_job_workers",
			Help:      "Worker goroutines used per aggregation job",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64},
		},
	)

	c.jobChunks = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregation_job_chunks",
			Help:      "Text chunks per aggregation job",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64, 128},
		},
	)

	c.stateTransitions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregation_state_transitions_total",
			Help:      "Total number of aggregation job state transitions",
		},
		[]string{"from_state", "to_state"},
	)

	c.workerPanics = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregation_worker_panics_total",
			Help:      "Total number of recovered worker panics",
		},
	)

	logger.Info("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// =============================================================================
// 🎯 HTTP 指标记录
// =============================================================================

// RecordHTTPRequest 记录 HTTP 请求
func (c *Collector) RecordHTTPRequest(method, path string, status int, duration time.Duration, requestSize, responseSize int64) {
	c.httpRequestsTotal.WithLabelValues(method, path, statusCode(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	c.httpRequestSize.WithLabelValues(method, path).Observe(float64(requestSize))
	c.httpResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
}

// =============================================================================
// 🧮 聚合任务指标记录
// =============================================================================

// JobStarted 标记一个聚合任务开始
func (c *Collector) JobStarted() {
	c.jobsInFlight.Inc()
}

// RecordAggregation 记录一个结束的聚合任务
func (c *Collector) RecordAggregation(status string, duration time.Duration, tokens, distinct, workers, chunks int) {
	c.jobsInFlight.Dec()
	c.jobsTotal.WithLabelValues(status).Inc()
	c.jobDuration.WithLabelValues(status).Observe(duration.Seconds())
	c.jobWorkers.Observe(float64(workers))
	c.jobChunks.Observe(float64(chunks))
	if status == "ok" {
		c.tokensTotal.Add(float64(tokens))
		c.distinctWords.Observe(float64(distinct))
	}
}

// RecordWorkerPanics 记录任务中被恢复的 worker panic 次数
func (c *Collector) RecordWorkerPanics(n int) {
	if n > 0 {
		c.workerPanics.Add(float64(n))
	}
}

// RecordStateTransition 记录聚合任务状态转换
func (c *Collector) RecordStateTransition(fromState, toState string) {
	c.stateTransitions.WithLabelValues(fromState, toState).Inc()
}

// =============================================================================
// 🔧 辅助函数
// =============================================================================

// statusCode 将 HTTP 状态码转换为字符串
func statusCode(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
