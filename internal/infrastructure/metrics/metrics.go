// Package metrics exposes portal Prometheus metrics. Metrics implements
// the observer ports of the event bus, the scheduler and the directory
// gauges job.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nextedu/portal/internal/domain/directory"
)

const namespace = "nextedu"

// Outcome labels.
const (
	ResultSuccess = "success"
	ResultError   = "error"

	ChatbotAnswered = "answered"
	ChatbotFallback = "fallback"
	ChatbotDisabled = "disabled"

	CacheHit  = "hit"
	CacheMiss = "miss"
)

// Metrics holds all Prometheus metrics for the portal.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	ChatbotRequests *prometheus.CounterVec
	ChatbotDuration prometheus.Histogram

	HistoriesGenerated prometheus.Counter
	HistoryCache       *prometheus.CounterVec

	SnapshotSaves *prometheus.CounterVec

	EventsPublished *prometheus.CounterVec
	EventHandlers   *prometheus.CounterVec
	EventDuration   *prometheus.HistogramVec

	JobRuns     *prometheus.CounterVec
	JobDuration *prometheus.HistogramVec

	DirectoryEntities *prometheus.GaugeVec
	DirectoryDirty    prometheus.Gauge

	LoginAttempts *prometheus.CounterVec
}

// New creates and registers all portal metrics on a fresh registry
// together with the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status code",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		ChatbotRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chatbot_requests_total",
			Help:      "Assistant questions by outcome",
		}, []string{"outcome"}),
		ChatbotDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chatbot_request_duration_seconds",
			Help:      "Time spent waiting for the language model",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}),

		HistoriesGenerated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "academic_histories_generated_total",
			Help:      "Academic histories synthesized",
		}),
		HistoryCache: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_cache_lookups_total",
			Help:      "Semester record cache lookups by result",
		}, []string{"result"}),

		SnapshotSaves: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_saves_total",
			Help:      "Directory snapshot saves by result",
		}, []string{"result"}),

		EventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Domain events published by type",
		}, []string{"type"}),
		EventHandlers: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_handlers_total",
			Help:      "Event handler runs by type and result",
		}, []string{"type", "result"}),
		EventDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "event_handler_duration_seconds",
			Help:      "Event handler latency",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"type"}),

		JobRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Scheduled job runs by job and result",
		}, []string{"job", "result"}),
		JobDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Scheduled job latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),

		DirectoryEntities: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "directory_entities",
			Help:      "Directory collection sizes",
		}, []string{"kind"}),
		DirectoryDirty: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "directory_unsaved_changes",
			Help:      "1 when the directory has changes not yet in the snapshot store",
		}),

		LoginAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Login attempts by role and result",
		}, []string{"role", "result"}),
	}
}

// Registry returns the registry the metrics live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}

// ObserveHTTP records one finished request.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveChatbot records one assistant question.
func (m *Metrics) ObserveChatbot(outcome string, d time.Duration) {
	m.ChatbotRequests.WithLabelValues(outcome).Inc()
	if outcome != ChatbotDisabled {
		m.ChatbotDuration.Observe(d.Seconds())
	}
}

// IncHistoriesGenerated counts a synthesized history.
func (m *Metrics) IncHistoriesGenerated() {
	m.HistoriesGenerated.Inc()
}

// ObserveHistoryCache records a cache lookup.
func (m *Metrics) ObserveHistoryCache(hit bool, err error) {
	switch {
	case err != nil:
		m.HistoryCache.WithLabelValues(ResultError).Inc()
	case hit:
		m.HistoryCache.WithLabelValues(CacheHit).Inc()
	default:
		m.HistoryCache.WithLabelValues(CacheMiss).Inc()
	}
}

// ObserveSnapshotSave records a snapshot save attempt.
func (m *Metrics) ObserveSnapshotSave(err error) {
	m.SnapshotSaves.WithLabelValues(result(err)).Inc()
}

// ObserveLogin records a login attempt.
func (m *Metrics) ObserveLogin(role string, err error) {
	m.LoginAttempts.WithLabelValues(role, result(err)).Inc()
}

// EventPublished implements messaging.Observer.
func (m *Metrics) EventPublished(eventType string) {
	m.EventsPublished.WithLabelValues(eventType).Inc()
}

// HandlerFinished implements messaging.Observer.
func (m *Metrics) HandlerFinished(eventType string, d time.Duration, err error) {
	m.EventHandlers.WithLabelValues(eventType, result(err)).Inc()
	m.EventDuration.WithLabelValues(eventType).Observe(d.Seconds())
}

// JobFinished implements scheduler.Observer.
func (m *Metrics) JobFinished(job string, d time.Duration, err error) {
	m.JobRuns.WithLabelValues(job, result(err)).Inc()
	m.JobDuration.WithLabelValues(job).Observe(d.Seconds())
}

// SetDirectoryStats implements jobs.GaugeSink.
func (m *Metrics) SetDirectoryStats(stats directory.Stats, dirty bool) {
	m.DirectoryEntities.WithLabelValues("students").Set(float64(stats.Students))
	m.DirectoryEntities.WithLabelValues("teachers").Set(float64(stats.Teachers))
	m.DirectoryEntities.WithLabelValues("registrations").Set(float64(stats.Registrations))
	m.DirectoryEntities.WithLabelValues("announcements").Set(float64(stats.Announcements))
	if dirty {
		m.DirectoryDirty.Set(1)
	} else {
		m.DirectoryDirty.Set(0)
	}
}
