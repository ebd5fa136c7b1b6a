package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// GenerationCounter 按最终状态统计课程生成次数（draft / failed）
	GenerationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lesson_generation_total",
			Help: "Total number of lesson generation attempts by final status",
		},
		[]string{"status"},
	)

	// GenerationDuration 单次生成耗时，生成调用通常在数十秒量级
	GenerationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lesson_generation_duration_seconds",
			Help:    "Duration of lesson generation attempts",
			Buckets: []float64{5, 15, 30, 60, 120, 300},
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(GenerationCounter)
	prometheus.MustRegister(GenerationDuration)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
