// Package metrics records numspeak's operational metrics behind a small
// interface so that handlers do not depend on a particular backend.
//
//	m := metrics.NewPrometheusMetrics(prometheus.NewRegistry())
//	_ = m.RegisterWithLabels("http_requests_total", Counter, "HTTP requests", []string{"method", "status"})
//	m.RecordWithLabels("http_requests_total", 1, "GET", "200")
package metrics

// Metric types accepted by Register and RegisterWithLabels.
const (
	Counter   = "Counter"
	Gauge     = "Gauge"
	Histogram = "Histogram"
)

type Metrics interface {
	Register(name, metricType, help string) error
	Record(name string, value float64)
	RegisterWithLabels(name, metricType, help string, labels []string) error
	RecordWithLabels(name string, value float64, labelValues ...string)
}
