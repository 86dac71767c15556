package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sync run results
const (
	ResultSuccess = "success"
	ResultFailed  = "failed"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	SyncRuns        *prometheus.CounterVec
	PlanetsUpserted prometheus.Counter
	RowsSkipped     *prometheus.CounterVec
	SyncDuration    prometheus.Histogram
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics creates new prometheus metrics registered on reg
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SyncRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_runs_total",
			Help:      "The total number of catalog sync runs by result",
		}, []string{"result"}),
		PlanetsUpserted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "planets_upserted_total",
			Help:      "The total number of planets upserted into the catalog",
		}),
		RowsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_rows_skipped_total",
			Help:      "The total number of archive rows skipped during sync",
		}, []string{"reason"}),
		SyncDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Time taken by a catalog sync run",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		}),
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "The total number of HTTP requests by route and status",
		}, []string{"route", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Time taken to serve HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}
