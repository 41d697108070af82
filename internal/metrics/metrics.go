package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RowsProcessed  *prometheus.CounterVec
	APIErrors      prometheus.Counter
	RequestSeconds *prometheus.HistogramVec
	BatchRows      prometheus.Gauge
	CurrentRow     prometheus.Gauge
	BatchSeconds   prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RowsProcessed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "geosheet_rows_processed_total",
			Help: "Total number of processed spreadsheet rows by status class.",
		}, []string{"status"}),
		APIErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "geosheet_provider_api_errors_total",
			Help: "Total number of errors received from the geocoding provider API.",
		}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "geosheet_provider_request_duration_seconds",
			Help:    "Duration of requests to the geocoding provider API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		BatchRows: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "geosheet_batch_rows",
			Help: "Number of data rows in the spreadsheet being processed.",
		}),
		CurrentRow: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "geosheet_batch_current_row",
			Help: "1-based index of the row currently being processed.",
		}),
		BatchSeconds: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "geosheet_batch_duration_seconds",
			Help: "Wall time of the last batch run.",
		}),
	}
}

// ObserveRequest records the duration of a single provider call.
func (m *Metrics) ObserveRequest(provider string, started time.Time) {
	m.RequestSeconds.WithLabelValues(provider).Observe(time.Since(started).Seconds())
}

// WriteTextfile dumps every metric gathered by g into path in the text
// exposition format, for pickup by a node_exporter textfile collector.
func WriteTextfile(g prometheus.Gatherer, path string) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}

	return nil
}
