package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds all Prometheus metric collectors for the service.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics.
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Guard metrics.
	GuardFailuresTotal  *prometheus.CounterVec
	GuardSuccessesTotal *prometheus.CounterVec

	// Domain metrics.
	InvitesIssuedTotal       prometheus.Counter
	ReportUpsertsTotal       *prometheus.CounterVec
	RateLimitRejectionsTotal prometheus.Counter

	// Server lifecycle.
	ServerStartTime prometheus.Gauge
}

// New creates and registers all Prometheus metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "breachwatch_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path_pattern", "status_code"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "breachwatch_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path_pattern"}),

		GuardFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "breachwatch_guard_failures_total",
			Help: "Total number of shared-secret guard rejections.",
		}, []string{"guard"}),

		GuardSuccessesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "breachwatch_guard_successes_total",
			Help: "Total number of shared-secret guard passes.",
		}, []string{"guard"}),

		InvitesIssuedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "breachwatch_invites_issued_total",
			Help: "Total number of invitations issued.",
		}),

		ReportUpsertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "breachwatch_report_upserts_total",
			Help: "Total number of exposure report upserts.",
		}, []string{"kind"}),

		RateLimitRejectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "breachwatch_ratelimit_rejections_total",
			Help: "Total number of rate limit rejections.",
		}),

		ServerStartTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "breachwatch_server_start_time_seconds",
			Help: "Unix timestamp when the server started.",
		}),
	}

	// Register all metrics.
	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.GuardFailuresTotal,
		m.GuardSuccessesTotal,
		m.InvitesIssuedTotal,
		m.ReportUpsertsTotal,
		m.RateLimitRejectionsTotal,
		m.ServerStartTime,
	)

	// Set server start time.
	m.ServerStartTime.Set(float64(time.Now().Unix()))

	// Register Go runtime and process collectors.
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return m
}

// Registry returns the private Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RegisterDBPoolCollector registers a custom DB pool stats collector.
func (m *Metrics) RegisterDBPoolCollector(statFunc DBPoolStatFunc) {
	m.registry.MustRegister(NewDBPoolCollector(statFunc))
}

// GuardResultHook returns a callback suitable for auth.HeaderGuard that
// feeds the guard counters for the named guard instance.
func (m *Metrics) GuardResultHook(guard string) func(ok bool) {
	return func(ok bool) {
		if ok {
			m.GuardSuccessesTotal.WithLabelValues(guard).Inc()
		} else {
			m.GuardFailuresTotal.WithLabelValues(guard).Inc()
		}
	}
}

// IncInviteIssued increments the invites counter.
func (m *Metrics) IncInviteIssued() {
	m.InvitesIssuedTotal.Inc()
}

// IncReportUpsert increments the report upsert counter for "personal" or "org".
func (m *Metrics) IncReportUpsert(kind string) {
	m.ReportUpsertsTotal.WithLabelValues(kind).Inc()
}

// IncRateLimitRejection increments the rate limit rejection counter.
func (m *Metrics) IncRateLimitRejection() {
	m.RateLimitRejectionsTotal.Inc()
}
