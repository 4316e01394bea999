// Package metrics provides Prometheus instrumentation for the curve engine.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// QuotesRejected counts quotes dropped before grouping, by reason.
	QuotesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fwdcurve_quotes_rejected_total",
		Help: "Quotes dropped during cleaning or feature derivation",
	}, []string{"reason"})

	// QuotesAccepted counts quotes that entered curve assembly.
	QuotesAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fwdcurve_quotes_accepted_total",
		Help: "Quotes that entered curve assembly",
	})

	// EligibilityDecisions counts precedence decisions by granularity and reason.
	EligibilityDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fwdcurve_eligibility_decisions_total",
		Help: "Precedence resolver decisions",
	}, []string{"granularity", "reason"})

	// SeriesBuilt counts assembled curve series by curve type.
	SeriesBuilt = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fwdcurve_series_built_total",
		Help: "Curve series assembled",
	}, []string{"curve_type"})

	// MissingDays counts unresolved leading days by curve type.
	MissingDays = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fwdcurve_missing_days_total",
		Help: "Leading curve days left unresolved",
	}, []string{"curve_type"})

	// BuildDuration tracks end-to-end build duration by stage.
	BuildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fwdcurve_build_duration_seconds",
		Help:    "Duration of curve build stages in seconds",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"stage"})

	// RowsPersisted counts rows written to storage by table.
	RowsPersisted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fwdcurve_rows_persisted_total",
		Help: "Rows written to storage",
	}, []string{"table"})

	// FxRatesSaved counts exchange rates upserted by the fx collector.
	FxRatesSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fwdcurve_fx_rates_saved_total",
		Help: "Exchange rates collected and stored",
	})

	// JobRuns counts scheduled job executions by job and outcome.
	JobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fwdcurve_job_runs_total",
		Help: "Scheduled job runs",
	}, []string{"job", "status"})

	// QualityScore holds the last curve quality gate score.
	QualityScore = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fwdcurve_quality_score",
		Help: "Score of the last curve quality check",
	})

	// HTTPRequestsTotal counts HTTP requests by method, route, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fwdcurve_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration tracks request duration by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fwdcurve_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "route"})
)

// ObserveStage records how long a build stage took since start.
func ObserveStage(stage string, start time.Time) {
	BuildDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		// route template keeps label cardinality bounded
		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
