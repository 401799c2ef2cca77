package monitoring

import (
	"strconv"
	"sync"
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
			Buckets: []float64{0.005, 0.025, 0.1, 0.5, 1, 5},
		},
		[]string{"method", "endpoint"},
	)

	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "study_notifications_total",
			Help: "Notifications published by schedule engines",
		},
		[]string{"kind"},
	)

	SessionTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "study_session_transitions_total",
			Help: "Study session state transitions",
		},
		[]string{"transition"},
	)

	FriendRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friend_requests_total",
			Help: "Friend requests by outcome",
		},
		[]string{"outcome"},
	)

	LoadedSchedules = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "study_schedules_loaded",
			Help: "Number of schedule engines held in memory",
		},
	)

	VisitorCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "portal_visitors_total",
			Help: "Page visits counted by the visitor middleware",
		},
	)
)

var registerOnce sync.Once

// Init 注册所有指标，重复调用无副作用
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			NotificationsTotal,
			SessionTransitions,
			FriendRequests,
			LoadedSchedules,
			VisitorCounter,
		)
	})
}

// MetricsMiddleware 以路由模板作为 endpoint 标签，未匹配的路由统一记为 unmatched
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		RequestCounter.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
