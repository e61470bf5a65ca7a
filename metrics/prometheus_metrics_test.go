package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterWithLabels(t *testing.T) {
	m := NewPrometheusMetrics(prometheus.NewRegistry())

	require.NoError(t, m.RegisterWithLabels("test_metric1", Counter, "Test metric with labels", []string{"label1", "label2"}))

	_, ok := m.counterVecs["test_metric1"]
	assert.True(t, ok, "Metric 'test_metric1' was not registered")
}

func TestRecordWithLabels(t *testing.T) {
	m := NewPrometheusMetrics(prometheus.NewRegistry())

	require.NoError(t, m.RegisterWithLabels("test_metric2", Counter, "Test metric with labels", []string{"label1", "label2"}))
	m.RecordWithLabels("test_metric2", 1.0, "value1", "value2")
	m.RecordWithLabels("test_metric2", 2.0, "value1", "value2")

	assert.Equal(t, 3.0, testutil.ToFloat64(m.counterVecs["test_metric2"].WithLabelValues("value1", "value2")))
}

func TestRegisterAndRecord(t *testing.T) {
	m := NewPrometheusMetrics(prometheus.NewRegistry())

	require.NoError(t, m.Register("test_counter", Counter, "counter"))
	require.NoError(t, m.Register("test_gauge", Gauge, "gauge"))
	m.SetCustomBuckets("test_histogram", []float64{0.1, 1})
	require.NoError(t, m.Register("test_histogram", Histogram, "histogram"))

	m.Record("test_counter", 2)
	m.Record("test_gauge", 7)
	m.Record("test_histogram", 0.5)
	m.Record("unknown", 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.counters["test_counter"]))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.gauges["test_gauge"]))
	assert.Equal(t, 1, testutil.CollectAndCount(m.histograms["test_histogram"]))
}

func TestRegisterErrors(t *testing.T) {
	m := NewPrometheusMetrics(prometheus.NewRegistry())

	assert.Error(t, m.Register("test_summary", "Summary", "unsupported"))
	assert.Error(t, m.RegisterWithLabels("test_summary", "Summary", "unsupported", []string{"a"}))

	require.NoError(t, m.Register("dup", Counter, "first"))
	assert.Error(t, m.Register("dup", Counter, "second"))
}

func TestSpeechMetrics(t *testing.T) {
	m := NewPrometheusMetrics(prometheus.NewRegistry())
	require.NoError(t, RegisterSpeechMetrics(m))

	ObserveConversion(m, "words", "indian", time.Now())
	ObserveConversion(m, "words", "indian", time.Now())
	ObserveEvaluationFailure(m)
	ObserveConversion(nil, "words", "indian", time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.counterVecs[ConversionsTotal].WithLabelValues("words", "indian")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.counters[EvaluationFailuresTotal]))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `numspeak_conversions_total{operation="words",system="indian"} 2`)
	assert.Contains(t, string(body), "numspeak_request_duration_seconds_bucket")
}

func TestNewMetricsServer(t *testing.T) {
	m := NewPrometheusMetrics(nil)
	srv := m.NewMetricsServer(9091)
	assert.Equal(t, ":9091", srv.Addr)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
