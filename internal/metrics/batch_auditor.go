package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/relaywatch/relaywatch-backend/internal/model"
)

var (
	auditorChunksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "relaywatch",
		Subsystem: "batch_auditor",
		Name:      "chunks_total",
		Help:      "Count of processed chunks.",
	}, []string{"network", "status"})

	auditorChunkDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "relaywatch",
		Subsystem: "batch_auditor",
		Name:      "chunk_duration_seconds",
		Help:      "Duration of processing one chunk.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network", "status"})

	auditorEntriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "relaywatch",
		Subsystem: "batch_auditor",
		Name:      "entries_total",
		Help:      "Count of audited relay bids.",
	}, []string{"network", "status"})

	auditorEntryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "relaywatch",
		Subsystem: "batch_auditor",
		Name:      "entry_duration_seconds",
		Help:      "Duration of auditing a single relay bid.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network", "status"})

	auditorProgressRatio = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "relaywatch",
		Subsystem: "batch_auditor",
		Name:      "progress_ratio",
		Help:      "Fraction of the work queue processed in this run.",
	}, []string{"network"})
)

// BatchAuditor tracks metrics for the batch audit pipeline.
type BatchAuditor struct {
	network model.Network
}

func NewBatchAuditor(network model.Network) *BatchAuditor {
	if network == "" {
		network = "unknown"
	}
	return &BatchAuditor{network: network}
}

func (m BatchAuditor) ObserveChunk(err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	auditorChunksTotal.WithLabelValues(string(m.network), status).Inc()
	auditorChunkDuration.WithLabelValues(string(m.network), status).
		Observe(time.Since(started).Seconds())
}

func (m BatchAuditor) ObserveEntry(err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	auditorEntriesTotal.WithLabelValues(string(m.network), status).Inc()
	auditorEntryDuration.WithLabelValues(string(m.network), status).
		Observe(time.Since(started).Seconds())
}

// SetProgress publishes the fraction of this run's work queue already
// processed, in [0, 1].
func (m BatchAuditor) SetProgress(done, total int) {
	if total <= 0 {
		auditorProgressRatio.WithLabelValues(string(m.network)).Set(1)
		return
	}
	auditorProgressRatio.WithLabelValues(string(m.network)).Set(float64(done) / float64(total))
}
