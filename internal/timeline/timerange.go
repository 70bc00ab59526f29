package timeline

import (
	"fmt"
	"math"

	"cutroom/internal/services"
)

// TimeRange is an immutable start/duration pair measured in seconds.
// End is always derived; a range never has zero or negative duration.
type TimeRange struct {
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// NewTimeRange validates and constructs a TimeRange. Zero and negative
// durations are rejected here rather than tolerated downstream.
func NewTimeRange(start, duration float64) (TimeRange, error) {
	if math.IsNaN(start) || math.IsInf(start, 0) || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return TimeRange{}, services.Wrap(services.ErrInvalidTimeRange, "timeline", "new range",
			fmt.Sprintf("start and duration must be finite, got start=%v duration=%v", start, duration), nil)
	}
	if start < 0 {
		return TimeRange{}, services.Wrap(services.ErrInvalidTimeRange, "timeline", "new range",
			fmt.Sprintf("start must be >= 0, got %v", start), nil)
	}
	if duration <= 0 {
		return TimeRange{}, services.Wrap(services.ErrInvalidTimeRange, "timeline", "new range",
			fmt.Sprintf("duration must be positive, got %v", duration), nil)
	}
	return TimeRange{Start: start, Duration: duration}, nil
}

// End returns the exclusive end time of the range.
func (r TimeRange) End() float64 {
	return r.Start + r.Duration
}

// Contains reports whether time t falls inside the half-open interval
// [Start, End).
func (r TimeRange) Contains(t float64) bool {
	return t >= r.Start && t < r.End()
}

// Overlaps reports whether two ranges share any interior time. Ranges that
// merely touch at an endpoint do not overlap.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start < other.End() && other.Start < r.End()
}

// Intersect returns the shared interval of two ranges, if any.
func (r TimeRange) Intersect(other TimeRange) (TimeRange, bool) {
	if !r.Overlaps(other) {
		return TimeRange{}, false
	}
	start := math.Max(r.Start, other.Start)
	end := math.Min(r.End(), other.End())
	return TimeRange{Start: start, Duration: end - start}, true
}

// Validate re-checks range invariants, used when ranges arrive from
// deserialized documents rather than NewTimeRange.
func (r TimeRange) Validate() error {
	_, err := NewTimeRange(r.Start, r.Duration)
	return err
}
