package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	JobsTotal     *prometheus.CounterVec
	PagesFetched  *prometheus.CounterVec
	StageFailures *prometheus.CounterVec
	FetchDuration prometheus.Histogram
	CrawlDuration prometheus.Histogram
}

// NewMetrics registers the application metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		JobsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "domain_intel_jobs_total",
			Help: "Analysis jobs by terminal status",
		}, []string{"status"}), // completed, failed, skipped
		PagesFetched: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "domain_intel_pages_fetched_total",
			Help: "Page fetches by outcome",
		}, []string{"outcome"}), // ok, failed
		StageFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "domain_intel_stage_failures_total",
			Help: "Pipeline stage failures by stage name",
		}, []string{"stage"}),
		FetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "domain_intel_fetch_duration_seconds",
			Help:    "Duration of individual page fetches",
			Buckets: prometheus.DefBuckets,
		}),
		CrawlDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "domain_intel_crawl_duration_seconds",
			Help:    "Duration of full crawl runs",
			Buckets: []float64{1, 5, 10, 15, 30, 60, 120},
		}),
	}
}

// IncJob records a job's terminal status.
func (m *Metrics) IncJob(status string) {
	m.JobsTotal.WithLabelValues(status).Inc()
}

// IncPage records one page fetch outcome.
func (m *Metrics) IncPage(outcome string) {
	m.PagesFetched.WithLabelValues(outcome).Inc()
}

// IncStageFailure records a degraded pipeline stage.
func (m *Metrics) IncStageFailure(stage string) {
	m.StageFailures.WithLabelValues(stage).Inc()
}
