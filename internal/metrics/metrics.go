package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "parentpal",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "parentpal",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency, including streamed bodies",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint"},
	)

	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "parentpal",
			Subsystem: "llm",
			Name:      "generations_total",
			Help:      "Model calls by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	ChatSaveFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "parentpal",
			Subsystem: "chat",
			Name:      "save_failures_total",
			Help:      "Chats that streamed successfully but could not be persisted",
		},
	)

	ChatsDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "parentpal",
			Subsystem: "chat",
			Name:      "deleted_total",
			Help:      "Chats deleted by their owners",
		},
	)
)

// RecordGeneration counts one model call. kind is "chat" or the name of a
// structured generator.
func RecordGeneration(kind string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	GenerationsTotal.WithLabelValues(kind, outcome).Inc()
}

// Middleware records request counts and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		RequestsTotal.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}
