package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the pipeline's prometheus instruments.
type Metrics struct {
	VideosProcessed     prometheus.Counter
	VideosFailed        *prometheus.CounterVec
	EdgesCreated        prometheus.Counter
	TranscriptFallbacks prometheus.Counter
}

// NewMetrics creates and registers the pipeline metrics. Passing nil uses
// the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		VideosProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tastetrail",
			Subsystem: "pipeline",
			Name:      "videos_processed_total",
			Help:      "Videos that reached the processed terminal state",
		}),
		VideosFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tastetrail",
			Subsystem: "pipeline",
			Name:      "videos_failed_total",
			Help:      "Videos that failed processing, by error code",
		}, []string{"code"}),
		EdgesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tastetrail",
			Subsystem: "pipeline",
			Name:      "edges_created_total",
			Help:      "Recommendation edges persisted",
		}),
		TranscriptFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tastetrail",
			Subsystem: "pipeline",
			Name:      "transcript_fallbacks_total",
			Help:      "Videos that fell back to the description after transcript acquisition failed",
		}),
	}

	reg.MustRegister(m.VideosProcessed, m.VideosFailed, m.EdgesCreated, m.TranscriptFallbacks)
	return m
}
