package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hostcompare"

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
	MailsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "mails_sent_total", Help: "Outgoing mails."},
		[]string{"kind", "status"},
	)
	ReviewsModerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "reviews_moderated_total", Help: "Moderation decisions."},
		[]string{"status"},
	)
	MigrationRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "migration_rows_total", Help: "Rows copied by the MySQL migration."},
		[]string{"table"},
	)
)

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, CacheEvents, MailsSent, ReviewsModerated, MigrationRows)
	return reg
}

// Handler отдаёт /metrics для gin.
func Handler(reg *prometheus.Registry) gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
}

// Middleware считает запросы по шаблону маршрута, а не по сырому пути.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ObserveHTTP(route, c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func ObserveMail(kind string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	MailsSent.WithLabelValues(kind, status).Inc()
}

func ObserveModeration(status string) {
	ReviewsModerated.WithLabelValues(status).Inc()
}

func ObserveMigrationRows(table string, n int) {
	MigrationRows.WithLabelValues(table).Add(float64(n))
}
