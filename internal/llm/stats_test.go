package llm

import (
	"testing"
	"time"
)

func TestStats_EmptySnapshot(t *testing.T) {
	s := NewStats(time.Hour)
	snap := s.Snapshot()
	if snap.Count != 0 || snap.AvgMs != 0 {
		t.Errorf("expected zero snapshot, got %+v", snap)
	}
}

func TestStats_Aggregates(t *testing.T) {
	s := NewStats(time.Hour)
	for _, ms := range []int64{100, 200, 300, 400} {
		s.Record(ms)
	}

	snap := s.Snapshot()
	if snap.Count != 4 {
		t.Fatalf("expected 4 samples, got %d", snap.Count)
	}
	if snap.MinMs != 100 || snap.MaxMs != 400 {
		t.Errorf("expected min 100 max 400, got %d/%d", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 250 {
		t.Errorf("expected avg 250, got %f", snap.AvgMs)
	}
	// P50 interpolates between the two middle ranks.
	if snap.P50Ms != 250 {
		t.Errorf("expected p50 250, got %f", snap.P50Ms)
	}
	if snap.P95Ms < 300 || snap.P95Ms > 400 {
		t.Errorf("expected p95 between 300 and 400, got %f", snap.P95Ms)
	}
}

func TestStats_NegativeDurationClamped(t *testing.T) {
	s := NewStats(time.Hour)
	s.Record(-5)
	snap := s.Snapshot()
	if snap.MinMs != 0 {
		t.Errorf("expected negative duration clamped to 0, got %d", snap.MinMs)
	}
}

func TestStats_WindowEviction(t *testing.T) {
	s := NewStats(10 * time.Millisecond)
	s.Record(100)
	time.Sleep(30 * time.Millisecond)
	s.Record(200)

	snap := s.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected old sample evicted, got %d samples", snap.Count)
	}
	if snap.MinMs != 200 {
		t.Errorf("expected surviving sample 200, got %d", snap.MinMs)
	}
}

func TestPercentile_SingleValue(t *testing.T) {
	if got := percentile([]int64{42}, 95); got != 42 {
		t.Errorf("expected 42, got %f", got)
	}
}

func TestPercentile_Bounds(t *testing.T) {
	sorted := []int64{10, 20, 30}
	if got := percentile(sorted, 0); got != 10 {
		t.Errorf("expected 10 at p0, got %f", got)
	}
	if got := percentile(sorted, 100); got != 30 {
		t.Errorf("expected 30 at p100, got %f", got)
	}
}
