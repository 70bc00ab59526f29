package timeline

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"cutroom/internal/services"
)

// TrackKind identifies what a track holds and how the composer treats it.
type TrackKind string

const (
	TrackVideo    TrackKind = "video"
	TrackAudio    TrackKind = "audio"
	TrackOverlay  TrackKind = "overlay"
	TrackSubtitle TrackKind = "subtitle"
	TrackEffect   TrackKind = "effect"
)

var allTrackKinds = []TrackKind{
	TrackVideo,
	TrackAudio,
	TrackOverlay,
	TrackSubtitle,
	TrackEffect,
}

var trackKindSet = func() map[TrackKind]struct{} {
	set := make(map[TrackKind]struct{}, len(allTrackKinds))
	for _, kind := range allTrackKinds {
		set[kind] = struct{}{}
	}
	return set
}()

// AllTrackKinds returns the ordered list of known track kinds.
func AllTrackKinds() []TrackKind {
	cp := make([]TrackKind, len(allTrackKinds))
	copy(cp, allTrackKinds)
	return cp
}

// ParseTrackKind converts a string into a known TrackKind.
func ParseTrackKind(value string) (TrackKind, bool) {
	normalized := TrackKind(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := trackKindSet[normalized]
	return normalized, ok
}

// Track is an ordered, typed collection of clips. Clips are not required to
// be sorted by start time, and the model permits clips whose ranges overlap;
// how overlaps resolve is composer policy, not a track constraint.
type Track struct {
	ID        string    `json:"id"`
	Kind      TrackKind `json:"kind"`
	Clips     []Clip    `json:"clips"`
	IsMuted   bool      `json:"isMuted"`
	IsLocked  bool      `json:"isLocked"`
	IsVisible bool      `json:"isVisible"`
	Volume    float64   `json:"volume"`
}

// NewTrack constructs an empty track of the given kind.
func NewTrack(kind TrackKind) Track {
	return Track{
		ID:        uuid.NewString(),
		Kind:      kind,
		IsVisible: true,
		Volume:    1,
	}
}

// Duration is the effective track length: the maximum clip end time, or 0
// for an empty track.
func (t Track) Duration() float64 {
	max := 0.0
	for i := range t.Clips {
		if end := t.Clips[i].TimeRange.End(); end > max {
			max = end
		}
	}
	return max
}

// AddClip validates and appends a clip. Locked tracks reject edits.
func (t *Track) AddClip(clip Clip) error {
	if t.IsLocked {
		return services.Wrap(services.ErrValidation, "timeline", "add clip",
			fmt.Sprintf("track %s is locked", t.ID), nil)
	}
	if err := clip.Validate(); err != nil {
		return err
	}
	t.Clips = append(t.Clips, clip)
	return nil
}

// RemoveClip deletes the clip with the given ID, reporting whether it was found.
func (t *Track) RemoveClip(clipID string) bool {
	for i := range t.Clips {
		if t.Clips[i].ID == clipID {
			t.Clips = append(t.Clips[:i], t.Clips[i+1:]...)
			return true
		}
	}
	return false
}

// FindClip returns the index of the clip with the given ID.
func (t *Track) FindClip(clipID string) (int, bool) {
	for i := range t.Clips {
		if t.Clips[i].ID == clipID {
			return i, true
		}
	}
	return -1, false
}

// Validate checks track invariants including every contained clip.
func (t *Track) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return services.Wrap(services.ErrValidation, "timeline", "validate track", "track id is empty", nil)
	}
	if _, ok := trackKindSet[t.Kind]; !ok {
		return services.Wrap(services.ErrValidation, "timeline", "validate track",
			fmt.Sprintf("unknown track kind %q", t.Kind), nil)
	}
	if t.Volume < 0 {
		return services.Wrap(services.ErrValidation, "timeline", "validate track",
			fmt.Sprintf("volume must be >= 0, got %v", t.Volume), nil)
	}
	for i := range t.Clips {
		if err := t.Clips[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy of the track, preserving identities.
func (t Track) Clone() Track {
	clone := t
	if len(t.Clips) > 0 {
		clone.Clips = make([]Clip, len(t.Clips))
		for i := range t.Clips {
			clone.Clips[i] = t.Clips[i].Clone()
		}
	}
	return clone
}

func cloneTracks(tracks []Track) []Track {
	if len(tracks) == 0 {
		return nil
	}
	out := make([]Track, len(tracks))
	for i := range tracks {
		out[i] = tracks[i].Clone()
	}
	return out
}
