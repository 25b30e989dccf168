package telemetry_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gramhealth/assistant/internal/telemetry"
)

// providerOnce ensures we only create one Provider per test run to avoid
// duplicate Prometheus metric registration errors from promauto's global registry
var (
	testProvider *telemetry.Provider
	providerOnce sync.Once
)

func getTestProvider(t *testing.T) *telemetry.Provider {
	t.Helper()
	providerOnce.Do(func() {
		testProvider = telemetry.NewProvider()
	})
	return testProvider
}

func TestNewProvider(t *testing.T) {
	provider := getTestProvider(t)
	if provider == nil {
		t.Fatal("expected non-nil provider")
	}
	if provider.Tracer == nil {
		t.Error("expected non-nil tracer")
	}
	if provider.Metrics == nil {
		t.Error("expected non-nil metrics")
	}
}

func TestRecordAnswer(t *testing.T) {
	provider := getTestProvider(t)
	ctx := context.Background()

	// Should not panic
	provider.RecordAnswer(ctx, "disease", "en", false, 10*time.Millisecond)
	provider.RecordAnswer(ctx, "triage", "hi", true, 5*time.Millisecond)
}

func TestRecordStrategyMetrics(t *testing.T) {
	provider := getTestProvider(t)
	ctx := context.Background()

	// Should not panic
	provider.RecordDiseaseCandidates(ctx, 3)
	provider.RecordRetrievalResults(ctx, 2)
	provider.RecordHospitalLookup(ctx, "cached")
}

func TestRecordRequest(t *testing.T) {
	provider := getTestProvider(t)

	// Should not panic
	provider.RecordRequest("/chat", "2xx", 20*time.Millisecond)
	provider.RecordRequest("/hospitals/nearest", "4xx", time.Millisecond)
}

func TestHandler(t *testing.T) {
	provider := getTestProvider(t)
	if provider.Handler() == nil {
		t.Error("expected non-nil metrics handler")
	}
}

func TestStartSpan(t *testing.T) {
	provider := getTestProvider(t)

	ctx, span := provider.StartSpan(context.Background(), "test-span")
	if ctx == nil {
		t.Error("expected non-nil context")
	}
	if span == nil {
		t.Fatal("expected non-nil span")
	}
	span.End()
}
