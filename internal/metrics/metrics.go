package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "octavia"

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests received",
	}, []string{"method", "path", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	httpInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_in_flight_requests",
		Help:      "Current number of in-flight HTTP requests",
	})

	voiceActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "voice_active_sessions",
		Help:      "Voice sessions currently holding a concurrency slot",
	})

	voiceLimit = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "voice_concurrency_limit",
		Help:      "Configured voice concurrency limit",
	})

	voicePeak = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "voice_peak_sessions",
		Help:      "Peak concurrent voice sessions per window",
	}, []string{"window"})

	voiceRecommended = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "voice_recommended_additional_slots",
		Help:      "Additional concurrency slots recommended by the advisor",
	})

	sessionsEnded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "interview_sessions_ended_total",
		Help:      "Interview sessions that reached the ended state",
	}, []string{"reason"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Cache reads by result",
	}, []string{"result"})

	reports = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "interview_reports_total",
		Help:      "Interview report generation attempts by outcome",
	}, []string{"outcome"})
)

// Middleware records request count and latency. Unmatched routes share one
// path label so 404 scans cannot blow up cardinality.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		labels := prometheus.Labels{
			"method": c.Request.Method,
			"path":   path,
			"status": strconv.Itoa(c.Writer.Status()),
		}
		httpRequests.With(labels).Inc()
		httpLatency.With(labels).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the default Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveConcurrency publishes the latest usage snapshot.
func ObserveConcurrency(limit, active, peakToday, peakWeek, recommended int) {
	voiceLimit.Set(float64(limit))
	voiceActive.Set(float64(active))
	voicePeak.WithLabelValues("today").Set(float64(peakToday))
	voicePeak.WithLabelValues("week").Set(float64(peakWeek))
	voiceRecommended.Set(float64(recommended))
}

func SessionEnded(reason string) { sessionsEnded.WithLabelValues(reason).Inc() }

func ReportGenerated() { reports.WithLabelValues("ok").Inc() }

func ReportFailed() { reports.WithLabelValues("failed").Inc() }

// CacheLookup counts one cache read; it matches cache.Observer.
func CacheLookup(result string) { cacheLookups.WithLabelValues(result).Inc() }
