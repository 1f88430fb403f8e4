package observability

import "github.com/prometheus/client_golang/prometheus"

// Pipeline collectors. Label values are fixed sets so cardinality stays
// bounded:
//
//   - result:  hit|miss|error
//   - mode:    blocking|stream
//   - outcome: ok|error|abandoned
//   - verdict: in_domain|refusal
//   - type:    cached|content|done|error
var (
	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qa_cache_lookups_total",
			Help: "Response cache lookups by result.",
		},
		[]string{"result"},
	)

	cacheWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qa_cache_writes_total",
			Help: "Response cache writes by outcome.",
		},
		[]string{"outcome"},
	)

	providerCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qa_provider_calls_total",
			Help: "Answer provider calls by mode and outcome.",
		},
		[]string{"mode", "outcome"},
	)

	providerLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "qa_provider_duration_seconds",
			Help:    "Answer provider call duration in seconds, streams measured to completion.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
		},
		[]string{"mode"},
	)

	answers = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qa_answers_total",
			Help: "Persisted answers by classification verdict.",
		},
		[]string{"verdict"},
	)

	streamEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qa_stream_events_total",
			Help: "Streaming events emitted by type.",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(cacheLookups, cacheWrites, providerCalls, providerLatency, answers, streamEvents)
}

// ObserveCacheLookup counts a cache lookup. result is hit, miss or error.
func ObserveCacheLookup(result string) { cacheLookups.WithLabelValues(result).Inc() }

// ObserveCacheWrite counts a cache write.
func ObserveCacheWrite(err error) { cacheWrites.WithLabelValues(outcome(err)).Inc() }

// ObserveProviderCall counts a provider call and records its duration.
func ObserveProviderCall(mode string, seconds float64, err error) {
	providerCalls.WithLabelValues(mode, outcome(err)).Inc()
	providerLatency.WithLabelValues(mode).Observe(seconds)
}

// OutcomeAbandoned labels provider streams whose consumer went away before
// the stream ended.
const OutcomeAbandoned = "abandoned"

// ObserveProviderAbandoned counts an abandoned provider stream and records how
// long it ran.
func ObserveProviderAbandoned(mode string, seconds float64) {
	providerCalls.WithLabelValues(mode, OutcomeAbandoned).Inc()
	providerLatency.WithLabelValues(mode).Observe(seconds)
}

// ObserveAnswer counts a persisted answer by verdict.
func ObserveAnswer(verdict string) { answers.WithLabelValues(verdict).Inc() }

// ObserveStreamEvent counts an emitted stream event.
func ObserveStreamEvent(typ string) { streamEvents.WithLabelValues(typ).Inc() }

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
