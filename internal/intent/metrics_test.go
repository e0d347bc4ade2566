package intent

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestDispatchCountsEachErrorOnce(t *testing.T) {
	metrics := InitMetrics()
	engine := NewEngine(&fakeStore{}, metrics)

	// One failing intent: limit out of range
	result := engine.Dispatch(context.Background(), newTestIntent("query", map[string]interface{}{
		"limit": 5000.0,
	}))
	if result.Success {
		t.Fatal("expected failure envelope")
	}

	errCount := testutil.ToFloat64(
		metrics.IntentErrors.WithLabelValues("query", string(ErrCodeValidation)))
	if errCount != 1 {
		t.Errorf("error counter = %v after one failed intent, want 1", errCount)
	}

	reqCount := testutil.ToFloat64(metrics.IntentRequests.WithLabelValues("query"))
	if reqCount != 1 {
		t.Errorf("request counter = %v, want 1", reqCount)
	}

	// Pre-dispatch rejection is still counted exactly once
	engine.Dispatch(context.Background(), newTestIntent("transmogrify", nil))
	unknownCount := testutil.ToFloat64(
		metrics.IntentErrors.WithLabelValues("transmogrify", string(ErrCodeValidation)))
	if unknownCount != 1 {
		t.Errorf("error counter = %v after one unknown operation, want 1", unknownCount)
	}
}
