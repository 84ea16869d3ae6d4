package factor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"pf-engine/models"
)

var (
	refreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pf_engine",
		Name:      "refreshes_total",
		Help:      "Completed refresh runs by outcome.",
	}, []string{"outcome"})

	refreshFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pf_engine",
		Name:      "refresh_failures_total",
		Help:      "Aborted refresh runs by pipeline stage.",
	}, []string{"stage"})

	refreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pf_engine",
		Name:      "refresh_duration_seconds",
		Help:      "Wall-clock duration of a full refresh run.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	parksUpdated = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "pf_engine",
		Name:      "parks_updated",
		Help:      "Parks written by the most recent successful refresh.",
	})

	lowConfidenceParks = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "pf_engine",
		Name:      "low_confidence_parks",
		Help:      "Parks below the recommended consumption thresholds in the most recent refresh.",
	})
)

// observeRecords updates the per-refresh gauges after a successful persist.
func observeRecords(records []models.ParkFactorRecord) {
	low := 0
	for _, rec := range records {
		if !rec.IsTrusted() {
			low++
		}
	}

	parksUpdated.Set(float64(len(records)))
	lowConfidenceParks.Set(float64(low))
}
