package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RankingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "destinasi",
			Name:      "rankings_total",
			Help:      "Total number of ranking computations",
		},
		[]string{"method", "kind", "status"},
	)

	RankingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "destinasi",
			Name:      "ranking_duration_seconds",
			Help:      "Ranking computation duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"method", "kind"},
	)

	DatasetRows = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "destinasi",
			Name:      "dataset_rows",
			Help:      "Number of destinations per ranking request",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	HistoryWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "destinasi",
			Name:      "history_writes_total",
			Help:      "History CSV writes",
		},
		[]string{"status"},
	)
)

var registerOnce sync.Once

// Register registers all collectors with the default registry. Safe to call
// more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RankingsTotal)
		prometheus.MustRegister(RankingDuration)
		prometheus.MustRegister(DatasetRows)
		prometheus.MustRegister(HistoryWritesTotal)
	})
}

// Status labels an outcome for RankingsTotal and HistoryWritesTotal.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
