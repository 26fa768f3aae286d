package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordPromptNormalizesOutcome(t *testing.T) {
	before := testutil.ToFloat64(promptsTotal.WithLabelValues("other"))
	RecordPrompt("Something-New", 150*time.Millisecond)
	if got := testutil.ToFloat64(promptsTotal.WithLabelValues("other")); got != before+1 {
		t.Fatalf("expected %v got %v", before+1, got)
	}

	before = testutil.ToFloat64(promptsTotal.WithLabelValues("dispatched"))
	RecordPrompt(" DISPATCHED ", time.Second)
	if got := testutil.ToFloat64(promptsTotal.WithLabelValues("dispatched")); got != before+1 {
		t.Fatalf("expected %v got %v", before+1, got)
	}
}

func TestRecordResolveFailure(t *testing.T) {
	before := testutil.ToFloat64(resolveFailuresTotal.WithLabelValues("no_json"))
	RecordResolveFailure("no_json")
	if got := testutil.ToFloat64(resolveFailuresTotal.WithLabelValues("no_json")); got != before+1 {
		t.Fatalf("expected %v got %v", before+1, got)
	}
}

func TestRecordNavigation(t *testing.T) {
	before := testutil.ToFloat64(navigationsTotal.WithLabelValues("other", "error"))
	RecordNavigation("rotate_image", false)
	if got := testutil.ToFloat64(navigationsTotal.WithLabelValues("other", "error")); got != before+1 {
		t.Fatalf("expected %v got %v", before+1, got)
	}
}
