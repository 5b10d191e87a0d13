package stats

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestLatencySnapshotPercentiles(t *testing.T) {
	l := NewLatency(time.Hour)
	for _, ms := range []int{100, 200, 300, 400, 500} {
		l.Record("story", time.Duration(ms)*time.Millisecond)
	}

	snap, ok := l.Snapshot()["story"]
	if !ok {
		t.Fatal("expected story snapshot")
	}
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.MinMs != 100 || snap.MaxMs != 500 {
		t.Fatalf("expected min=100 max=500, got %d/%d", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
	if snap.P99Ms != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Ms)
	}
}

func TestLatencySeparatesOperations(t *testing.T) {
	l := NewLatency(time.Hour)
	l.Record("story", 10*time.Millisecond)
	l.Record("image", 20*time.Millisecond)
	l.Record("image", 40*time.Millisecond)

	snaps := l.Snapshot()
	if len(snaps) != 2 {
		t.Fatalf("expected 2 operations, got %d", len(snaps))
	}
	if snaps["image"].Count != 2 || snaps["image"].AvgMs != 30 {
		t.Errorf("unexpected image snapshot %+v", snaps["image"])
	}
}

func TestLatencyPrunesExpiredSamples(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := NewLatency(time.Minute)
	l.now = func() time.Time { return now }

	l.Record("segment", 5*time.Millisecond)
	now = now.Add(2 * time.Minute)

	if snaps := l.Snapshot(); len(snaps) != 0 {
		t.Fatalf("expected expired samples pruned, got %v", snaps)
	}

	l.Record("segment", 7*time.Millisecond)
	snap := l.Snapshot()["segment"]
	if snap.Count != 1 || snap.MinMs != 7 {
		t.Fatalf("expected one fresh sample of 7ms, got %+v", snap)
	}
}

func TestLatencyClampsNegativeDuration(t *testing.T) {
	l := NewLatency(time.Hour)
	l.Record("x", -10*time.Millisecond)
	snap := l.Snapshot()["x"]
	if snap.Count != 1 || snap.MinMs != 0 {
		t.Fatalf("expected clamped duration=0, got %+v", snap)
	}
}

func TestLatencySince(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := NewLatency(time.Hour)
	l.now = func() time.Time { return now }

	l.Since("import", now.Add(-250*time.Millisecond))
	if got := l.Snapshot()["import"].MaxMs; got != 250 {
		t.Errorf("expected 250ms, got %d", got)
	}
}

func TestLatencyHandlerExposesHistogramAndGauges(t *testing.T) {
	l := NewLatency(time.Hour)
	l.Record("generate_image", 250*time.Millisecond)
	l.Record("generate_image", -time.Second)
	if err := l.Gauge("queue_depth", "test gauge", func() float64 { return 7 }); err != nil {
		t.Fatalf("register gauge: %v", err)
	}
	if err := l.Gauge("queue_depth", "test gauge", func() float64 { return 7 }); err == nil {
		t.Error("expected duplicate gauge registration to fail")
	}

	rec := httptest.NewRecorder()
	l.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`kidsbook_operation_duration_seconds_count{op="generate_image"} 2`,
		`kidsbook_operation_duration_seconds_sum{op="generate_image"} 0.25`,
		"kidsbook_queue_depth 7",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in metrics output", want)
		}
	}
}
