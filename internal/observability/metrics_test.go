package observability

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserve_Counters(t *testing.T) {
	hits := testutil.ToFloat64(cacheLookups.WithLabelValues("hit"))
	ObserveCacheLookup("hit")
	if got := testutil.ToFloat64(cacheLookups.WithLabelValues("hit")); got != hits+1 {
		t.Fatalf("cache hits=%v; want %v", got, hits+1)
	}

	failed := testutil.ToFloat64(cacheWrites.WithLabelValues("error"))
	ObserveCacheWrite(errors.New("full"))
	if got := testutil.ToFloat64(cacheWrites.WithLabelValues("error")); got != failed+1 {
		t.Fatalf("failed writes=%v", got)
	}

	calls := testutil.ToFloat64(providerCalls.WithLabelValues("stream", "ok"))
	ObserveProviderCall("stream", 0.3, nil)
	if got := testutil.ToFloat64(providerCalls.WithLabelValues("stream", "ok")); got != calls+1 {
		t.Fatalf("stream calls=%v", got)
	}

	gone := testutil.ToFloat64(providerCalls.WithLabelValues("stream", OutcomeAbandoned))
	ObserveProviderAbandoned("stream", 0.1)
	if got := testutil.ToFloat64(providerCalls.WithLabelValues("stream", OutcomeAbandoned)); got != gone+1 {
		t.Fatalf("abandoned calls=%v", got)
	}

	refusals := testutil.ToFloat64(answers.WithLabelValues("refusal"))
	ObserveAnswer("refusal")
	if got := testutil.ToFloat64(answers.WithLabelValues("refusal")); got != refusals+1 {
		t.Fatalf("refusals=%v", got)
	}

	done := testutil.ToFloat64(streamEvents.WithLabelValues("done"))
	ObserveStreamEvent("done")
	if got := testutil.ToFloat64(streamEvents.WithLabelValues("done")); got != done+1 {
		t.Fatalf("done events=%v", got)
	}
}

func TestProviderLatency_Registered(t *testing.T) {
	ObserveProviderCall("blocking", 1.5, nil)
	if n := testutil.CollectAndCount(providerLatency, "qa_provider_duration_seconds"); n == 0 {
		t.Fatalf("no latency series collected")
	}
}
