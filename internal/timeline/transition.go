package timeline

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"cutroom/internal/services"
)

// TransitionType identifies the visual treatment applied between two clips.
type TransitionType string

const (
	TransitionCrossDissolve TransitionType = "crossDissolve"
	TransitionSlideLeft     TransitionType = "slideLeft"
	TransitionSlideRight    TransitionType = "slideRight"
	TransitionWipeLeft      TransitionType = "wipeLeft"
	TransitionWipeRight     TransitionType = "wipeRight"
	TransitionFade          TransitionType = "fade"
	TransitionZoom          TransitionType = "zoom"
	TransitionDissolve      TransitionType = "dissolve"
)

var allTransitionTypes = []TransitionType{
	TransitionCrossDissolve,
	TransitionSlideLeft,
	TransitionSlideRight,
	TransitionWipeLeft,
	TransitionWipeRight,
	TransitionFade,
	TransitionZoom,
	TransitionDissolve,
}

var transitionTypeSet = func() map[TransitionType]struct{} {
	set := make(map[TransitionType]struct{}, len(allTransitionTypes))
	for _, t := range allTransitionTypes {
		set[t] = struct{}{}
	}
	return set
}()

// AllTransitionTypes returns the supported transition types in display order.
func AllTransitionTypes() []TransitionType {
	out := make([]TransitionType, len(allTransitionTypes))
	copy(out, allTransitionTypes)
	return out
}

// ParseTransitionType recognizes a transition type name, case-insensitively.
func ParseTransitionType(value string) (TransitionType, bool) {
	trimmed := strings.TrimSpace(value)
	for _, t := range allTransitionTypes {
		if strings.EqualFold(trimmed, string(t)) {
			return t, true
		}
	}
	return "", false
}

// Transition describes a treatment between two clips. The clip references
// are weak: deleting a clip may leave a dangling transition, which renderers
// ignore.
type Transition struct {
	ID         string             `json:"id"`
	Type       TransitionType     `json:"type"`
	Duration   float64            `json:"duration"`
	Parameters map[string]float64 `json:"parameters,omitempty"`
	FromClipID string             `json:"fromClipId,omitempty"`
	ToClipID   string             `json:"toClipId,omitempty"`
}

// TransitionOption mutates a transition during construction.
type TransitionOption func(*Transition)

// WithClipPair links the transition to the clips it bridges.
func WithClipPair(fromClipID, toClipID string) TransitionOption {
	return func(t *Transition) {
		t.FromClipID = fromClipID
		t.ToClipID = toClipID
	}
}

// WithParameters attaches renderer tuning values.
func WithParameters(params map[string]float64) TransitionOption {
	return func(t *Transition) {
		t.Parameters = cloneParameters(params)
	}
}

// NewTransition validates and constructs a transition. A zero duration is
// allowed and renders as a hard cut.
func NewTransition(transitionType TransitionType, duration float64, opts ...TransitionOption) (Transition, error) {
	t := Transition{
		ID:       uuid.NewString(),
		Type:     transitionType,
		Duration: duration,
	}
	for _, opt := range opts {
		opt(&t)
	}
	if err := t.Validate(); err != nil {
		return Transition{}, err
	}
	return t, nil
}

// Validate checks the transition's structural invariants.
func (t *Transition) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return services.Wrap(services.ErrValidation, "timeline", "validate transition", "transition id is empty", nil)
	}
	if _, ok := transitionTypeSet[t.Type]; !ok {
		return services.Wrap(services.ErrValidation, "timeline", "validate transition",
			fmt.Sprintf("unknown transition type %q", t.Type), nil)
	}
	if t.Duration < 0 {
		return services.Wrap(services.ErrInvalidTimeRange, "timeline", "validate transition",
			fmt.Sprintf("duration must not be negative, got %v", t.Duration), nil)
	}
	return nil
}
