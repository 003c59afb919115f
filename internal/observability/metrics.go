package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	publishTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pubctl",
			Subsystem: "publish",
			Name:      "total",
			Help:      "Publish attempts by package and outcome.",
		},
		[]string{"package", "outcome"},
	)
	publishDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pubctl",
			Subsystem: "publish",
			Name:      "duration_seconds",
			Help:      "Publish tool wall time in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		},
		[]string{"package", "outcome"},
	)
	manifestUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pubctl",
			Subsystem: "manifest",
			Name:      "updates_total",
			Help:      "Dependency pins written into dependent manifests.",
		},
		[]string{"package", "dependency"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(publishTotal, publishDuration, manifestUpdates)
	})
}

func RecordPublish(pkg, outcome string, duration time.Duration) {
	RegisterMetrics()
	publishTotal.WithLabelValues(pkg, outcome).Inc()
	publishDuration.WithLabelValues(pkg, outcome).Observe(duration.Seconds())
}

func RecordManifestUpdate(pkg, dependency string) {
	RegisterMetrics()
	manifestUpdates.WithLabelValues(pkg, dependency).Inc()
}

// WriteMetrics dumps the default registry in textfile-collector format.
func WriteMetrics(path string) error {
	RegisterMetrics()
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
