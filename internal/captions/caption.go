package captions

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"cutroom/internal/services"
	"cutroom/internal/timeline"
)

// Caption is a single timed cue. The range is half-open: a caption is on
// screen from its start up to but excluding its end.
type Caption struct {
	ID        string             `json:"id"`
	TimeRange timeline.TimeRange `json:"timeRange"`
	Text      string             `json:"text"`
}

// NewCaption validates and constructs a cue.
func NewCaption(timeRange timeline.TimeRange, text string) (Caption, error) {
	if err := timeRange.Validate(); err != nil {
		return Caption{}, err
	}
	if strings.TrimSpace(text) == "" {
		return Caption{}, services.Wrap(services.ErrValidation, "captions", "new caption", "caption text is empty", nil)
	}
	return Caption{
		ID:        uuid.NewString(),
		TimeRange: timeRange,
		Text:      text,
	}, nil
}

// Track is an ordered list of cues in one language. Cue order is document
// order, not start-time order; queries preserve it.
type Track struct {
	ID       string    `json:"id"`
	Language string    `json:"language"`
	Captions []Caption `json:"captions"`
}

// NewTrack constructs an empty caption track. The language is normalized
// to its canonical BCP 47 form.
func NewTrack(lang string) (Track, error) {
	normalized, err := NormalizeLanguage(lang)
	if err != nil {
		return Track{}, err
	}
	return Track{
		ID:       uuid.NewString(),
		Language: normalized,
	}, nil
}

// Append validates and adds a cue to the end of the track.
func (t *Track) Append(c Caption) error {
	if strings.TrimSpace(c.ID) == "" {
		return services.Wrap(services.ErrValidation, "captions", "append caption", "caption id is empty", nil)
	}
	if err := c.TimeRange.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Text) == "" {
		return services.Wrap(services.ErrValidation, "captions", "append caption", "caption text is empty", nil)
	}
	t.Captions = append(t.Captions, c)
	return nil
}

// CaptionsAt returns the cues visible at the given time, in track order.
// Boundary times resolve to the cue that starts there, never the one that
// ends there.
func (t *Track) CaptionsAt(at float64) []Caption {
	var active []Caption
	for _, c := range t.Captions {
		if c.TimeRange.Contains(at) {
			active = append(active, c)
		}
	}
	return active
}

// Duration is the latest cue end time, or 0 for an empty track.
func (t *Track) Duration() float64 {
	max := 0.0
	for i := range t.Captions {
		if end := t.Captions[i].TimeRange.End(); end > max {
			max = end
		}
	}
	return max
}

// Validate checks the track and every cue in it.
func (t *Track) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return services.Wrap(services.ErrValidation, "captions", "validate track", "track id is empty", nil)
	}
	if _, err := NormalizeLanguage(t.Language); err != nil {
		return err
	}
	for i := range t.Captions {
		c := &t.Captions[i]
		if strings.TrimSpace(c.ID) == "" {
			return services.Wrap(services.ErrValidation, "captions", "validate track",
				fmt.Sprintf("caption %d has an empty id", i+1), nil)
		}
		if err := c.TimeRange.Validate(); err != nil {
			return err
		}
		if strings.TrimSpace(c.Text) == "" {
			return services.Wrap(services.ErrValidation, "captions", "validate track",
				fmt.Sprintf("caption %d has empty text", i+1), nil)
		}
	}
	return nil
}

// Clone returns a deep copy of the track.
func (t Track) Clone() Track {
	clone := t
	if len(t.Captions) > 0 {
		clone.Captions = make([]Caption, len(t.Captions))
		copy(clone.Captions, t.Captions)
	}
	return clone
}
