package timeline_test

import (
	"errors"
	"math"
	"testing"

	"cutroom/internal/services"
	"cutroom/internal/timeline"
)

func TestNewTimeRangeRejectsInvalidBounds(t *testing.T) {
	cases := []struct {
		name     string
		start    float64
		duration float64
	}{
		{name: "negative start", start: -0.5, duration: 1},
		{name: "zero duration", start: 0, duration: 0},
		{name: "negative duration", start: 2, duration: -1},
		{name: "nan start", start: math.NaN(), duration: 1},
		{name: "infinite duration", start: 0, duration: math.Inf(1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := timeline.NewTimeRange(tc.start, tc.duration)
			if err == nil {
				t.Fatalf("NewTimeRange(%v, %v) succeeded, want error", tc.start, tc.duration)
			}
			if !errors.Is(err, services.ErrInvalidTimeRange) {
				t.Fatalf("NewTimeRange(%v, %v) error = %v, want ErrInvalidTimeRange", tc.start, tc.duration, err)
			}
		})
	}
}

func TestTimeRangeEnd(t *testing.T) {
	r, err := timeline.NewTimeRange(2.5, 4)
	if err != nil {
		t.Fatalf("NewTimeRange() error = %v", err)
	}
	if got := r.End(); got != 6.5 {
		t.Fatalf("End() = %v, want 6.5", got)
	}
}

func TestTimeRangeZeroStartAllowed(t *testing.T) {
	r, err := timeline.NewTimeRange(0, 1)
	if err != nil {
		t.Fatalf("NewTimeRange(0, 1) error = %v", err)
	}
	if r.Start != 0 || r.Duration != 1 {
		t.Fatalf("NewTimeRange(0, 1) = %+v", r)
	}
}

func TestTimeRangeContainsIsHalfOpen(t *testing.T) {
	r, err := timeline.NewTimeRange(1, 2)
	if err != nil {
		t.Fatalf("NewTimeRange() error = %v", err)
	}
	if !r.Contains(1) {
		t.Fatal("Contains(start) = false, want true")
	}
	if !r.Contains(2.9999) {
		t.Fatal("Contains(just before end) = false, want true")
	}
	if r.Contains(3) {
		t.Fatal("Contains(end) = true, want false")
	}
	if r.Contains(0.5) {
		t.Fatal("Contains(before start) = true, want false")
	}
}

func TestTimeRangeOverlaps(t *testing.T) {
	a, _ := timeline.NewTimeRange(0, 2)
	b, _ := timeline.NewTimeRange(1, 2)
	c, _ := timeline.NewTimeRange(2, 2)
	if !a.Overlaps(b) || !b.Overlaps(a) {
		t.Fatal("interleaved ranges should overlap")
	}
	if a.Overlaps(c) || c.Overlaps(a) {
		t.Fatal("ranges touching at a boundary should not overlap")
	}
}

func TestTimeRangeIntersect(t *testing.T) {
	a, _ := timeline.NewTimeRange(0, 4)
	b, _ := timeline.NewTimeRange(3, 4)
	got, ok := a.Intersect(b)
	if !ok {
		t.Fatal("Intersect() ok = false, want true")
	}
	if got.Start != 3 || got.Duration != 1 {
		t.Fatalf("Intersect() = %+v, want start 3 duration 1", got)
	}

	c, _ := timeline.NewTimeRange(10, 1)
	if _, ok := a.Intersect(c); ok {
		t.Fatal("Intersect() with disjoint range ok = true, want false")
	}
}
