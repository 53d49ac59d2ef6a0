package backoff_test

import (
	"testing"
	"time"

	"github.com/xraph/bossbat/backoff"
)

func TestConstant(t *testing.T) {
	c := backoff.NewConstant(250 * time.Millisecond)
	for attempt := 1; attempt <= 5; attempt++ {
		if got := c.Delay(attempt); got != 250*time.Millisecond {
			t.Errorf("Delay(%d) = %v, want 250ms", attempt, got)
		}
	}
}

func TestJittered_Ceiling(t *testing.T) {
	j := backoff.NewJittered(100*time.Millisecond, time.Second)

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, time.Second},
		{30, time.Second},
	}
	for _, tt := range tests {
		if got := j.Ceiling(tt.attempt); got != tt.want {
			t.Errorf("Ceiling(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestJittered_WithinCeiling(t *testing.T) {
	j := backoff.NewJittered(100*time.Millisecond, time.Second)
	for attempt := 1; attempt <= 6; attempt++ {
		ceil := j.Ceiling(attempt)
		for range 50 {
			got := j.Delay(attempt)
			if got < 0 || got > ceil {
				t.Fatalf("Delay(%d) = %v, want within [0, %v]", attempt, got, ceil)
			}
		}
	}
}

func TestJittered_Varies(t *testing.T) {
	j := backoff.NewJittered(time.Second, time.Minute)
	seen := make(map[time.Duration]bool)
	for range 100 {
		seen[j.Delay(3)] = true
	}
	if len(seen) < 2 {
		t.Errorf("expected jitter, got %d distinct values", len(seen))
	}
}

func TestDefaultStrategy(t *testing.T) {
	s := backoff.DefaultStrategy()
	if d := s.Delay(1); d < 0 || d > 100*time.Millisecond {
		t.Errorf("Delay(1) = %v, want within [0, 100ms]", d)
	}
	if d := s.Delay(10); d > 2*time.Second {
		t.Errorf("Delay(10) = %v, want <= 2s", d)
	}
}
