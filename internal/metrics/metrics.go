package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/hmesh/presale-dashboard/internal/domain/submission"
	"github.com/hmesh/presale-dashboard/internal/domain/vesting"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records dashboard activity. A nil *Metrics records nothing, so
// callers can pass it straight through when metrics are disabled.
type Metrics struct {
	schedulesCounter   *prometheus.CounterVec
	warningsCounter    *prometheus.CounterVec
	submissionsCounter *prometheus.CounterVec
	cacheCounter       *prometheus.CounterVec
	requestsCounter    *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
}

// NewMetrics registers the dashboard metrics with reg under namespace.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := Metrics{
		// vesting
		schedulesCounter: factory.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_vesting_schedules_total", namespace),
			Help: "Vesting schedules computed",
		}, []string{"chain_id"}),
		warningsCounter: factory.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_vesting_warnings_total", namespace),
			Help: "Configuration warnings raised while computing schedules",
		}, []string{"code"}),
		// transactions
		submissionsCounter: factory.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_submissions_total", namespace),
			Help: "Prepared and reported buy and claim transactions",
		}, []string{"kind", "status"}),
		// ledger reads
		cacheCounter: factory.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_ledger_cache_lookups_total", namespace),
			Help: "Ledger cache lookups by result",
		}, []string{"cache", "result"}),
		// api
		requestsCounter: factory.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_requests_total", namespace),
			Help: "API requests by method and outcome",
		}, []string{"method", "outcome"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    fmt.Sprintf("%s_request_duration_seconds", namespace),
			Help:    "API request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}
	return &m
}

func (m *Metrics) ScheduleComputed(chainID int64, warnings []vesting.ConfigurationWarning) {
	if m == nil {
		return
	}
	m.schedulesCounter.WithLabelValues(strconv.FormatInt(chainID, 10)).Inc()
	for _, w := range warnings {
		m.warningsCounter.WithLabelValues(string(w.Code)).Inc()
	}
}

func (m *Metrics) SubmissionRecorded(kind submission.Kind, status submission.Status) {
	if m == nil {
		return
	}
	m.submissionsCounter.WithLabelValues(string(kind), string(status)).Inc()
}

func (m *Metrics) CacheHit(cache string) {
	if m == nil {
		return
	}
	m.cacheCounter.WithLabelValues(cache, "hit").Inc()
}

func (m *Metrics) CacheMiss(cache string) {
	if m == nil {
		return
	}
	m.cacheCounter.WithLabelValues(cache, "miss").Inc()
}

// RequestHandled records one API call. outcome is "ok" or an error code.
func (m *Metrics) RequestHandled(method, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestsCounter.WithLabelValues(method, outcome).Inc()
	m.requestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}
