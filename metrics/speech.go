package metrics

import "time"

// Names of the metrics recorded by the speech service.
const (
	ConversionsTotal        = "numspeak_conversions_total"
	EvaluationFailuresTotal = "numspeak_evaluation_failures_total"
	RequestDuration         = "numspeak_request_duration_seconds"
)

// RegisterSpeechMetrics registers the speech service metrics on m.
func RegisterSpeechMetrics(m Metrics) error {
	if err := m.RegisterWithLabels(ConversionsTotal, Counter,
		"Number of conversions performed, by operation and number system.",
		[]string{"operation", "system"}); err != nil {
		return err
	}
	if err := m.Register(EvaluationFailuresTotal, Counter,
		"Number of expressions whose evaluation failed."); err != nil {
		return err
	}
	return m.RegisterWithLabels(RequestDuration, Histogram,
		"Time spent handling a speech request, by operation.",
		[]string{"operation"})
}

// ObserveConversion counts one conversion and its duration since start.
func ObserveConversion(m Metrics, operation, system string, start time.Time) {
	if m == nil {
		return
	}
	m.RecordWithLabels(ConversionsTotal, 1, operation, system)
	m.RecordWithLabels(RequestDuration, time.Since(start).Seconds(), operation)
}

// ObserveEvaluationFailure counts one failed evaluation.
func ObserveEvaluationFailure(m Metrics) {
	if m == nil {
		return
	}
	m.Record(EvaluationFailuresTotal, 1)
}
