package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	clickhouseRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "relaywatch",
		Subsystem: "clickhouse_repository",
		Name:      "operations_total",
		Help:      "Count of ClickHouse operations.",
	}, []string{"operation", "status"})
	clickhouseRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "relaywatch",
		Subsystem: "clickhouse_repository",
		Name:      "operation_duration_seconds",
		Help:      "Duration of ClickHouse operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "status"})
)

// ClickhouseRepository tracks metrics for the analytical mirror.
type ClickhouseRepository struct{}

func NewClickhouseRepository() *ClickhouseRepository {
	return &ClickhouseRepository{}
}

// Observe records a single repository operation outcome and duration.
func (m ClickhouseRepository) Observe(operation string, err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}

	clickhouseRequestsTotal.WithLabelValues(operation, status).Inc()
	clickhouseRequestDuration.WithLabelValues(operation, status).Observe(time.Since(started).Seconds())
}
