package timeline

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"cutroom/internal/services"
)

// ClipKind identifies the media variant a clip carries.
type ClipKind string

const (
	ClipVideo    ClipKind = "video"
	ClipAudio    ClipKind = "audio"
	ClipImage    ClipKind = "image"
	ClipText     ClipKind = "text"
	ClipCompound ClipKind = "compound"
)

var allClipKinds = []ClipKind{
	ClipVideo,
	ClipAudio,
	ClipImage,
	ClipText,
	ClipCompound,
}

var clipKindSet = func() map[ClipKind]struct{} {
	set := make(map[ClipKind]struct{}, len(allClipKinds))
	for _, kind := range allClipKinds {
		set[kind] = struct{}{}
	}
	return set
}()

// AllClipKinds returns the ordered list of known clip kinds.
func AllClipKinds() []ClipKind {
	cp := make([]ClipKind, len(allClipKinds))
	copy(cp, allClipKinds)
	return cp
}

// ParseClipKind converts a string into a known ClipKind.
func ParseClipKind(value string) (ClipKind, bool) {
	normalized := ClipKind(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := clipKindSet[normalized]
	return normalized, ok
}

// Source is a weak reference to external media, either by URL or by an
// asset identifier resolved through the media library. Exactly one of the
// two fields is set.
type Source struct {
	URL     string `json:"url,omitempty"`
	AssetID string `json:"assetId,omitempty"`
}

// Resolvable reports whether the source carries any usable reference.
func (s *Source) Resolvable() bool {
	if s == nil {
		return false
	}
	return strings.TrimSpace(s.URL) != "" || strings.TrimSpace(s.AssetID) != ""
}

// Ref returns the reference string preferred for resolution.
func (s *Source) Ref() string {
	if s == nil {
		return ""
	}
	if url := strings.TrimSpace(s.URL); url != "" {
		return url
	}
	return strings.TrimSpace(s.AssetID)
}

// Transform places a clip on the canvas.
type Transform struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	ScaleX   float64 `json:"scaleX"`
	ScaleY   float64 `json:"scaleY"`
	Rotation float64 `json:"rotation"`
}

// IdentityTransform returns the neutral placement.
func IdentityTransform() Transform {
	return Transform{ScaleX: 1, ScaleY: 1}
}

// TextContent describes the rendered text of a text clip.
type TextContent struct {
	Text      string  `json:"text"`
	FontName  string  `json:"fontName,omitempty"`
	FontSize  float64 `json:"fontSize,omitempty"`
	Color     string  `json:"color,omitempty"`
	Alignment string  `json:"alignment,omitempty"`
}

// Clip is a typed media reference with a time range. For video/audio/image
// clips the range selects a slice of the source asset; text clips carry
// TextContent instead of a source; compound clips nest a sub-timeline of
// tracks. Kind-specific fields are invariant-checked at construction and
// again on Validate so a deserialized document cannot smuggle in a text
// payload on a video clip.
type Clip struct {
	ID          string       `json:"id"`
	Kind        ClipKind     `json:"kind"`
	TimeRange   TimeRange    `json:"timeRange"`
	Source      *Source      `json:"source,omitempty"`
	Transform   Transform    `json:"transform"`
	Opacity     float64      `json:"opacity"`
	Volume      float64      `json:"volume"`
	Effects     []string     `json:"effects,omitempty"`
	IsMuted     bool         `json:"isMuted"`
	TextContent *TextContent `json:"textContent,omitempty"`
	SubTimeline []Track      `json:"subTimeline,omitempty"`
}

// ClipOption customises clip construction.
type ClipOption func(*Clip)

// WithSource attaches a URL source reference.
func WithSource(url string) ClipOption {
	return func(c *Clip) {
		c.Source = &Source{URL: strings.TrimSpace(url)}
	}
}

// WithAssetSource attaches a library asset reference.
func WithAssetSource(assetID string) ClipOption {
	return func(c *Clip) {
		c.Source = &Source{AssetID: strings.TrimSpace(assetID)}
	}
}

// WithText attaches text content, only valid for text clips.
func WithText(content TextContent) ClipOption {
	return func(c *Clip) {
		c.TextContent = &content
	}
}

// WithSubTimeline attaches nested tracks, only valid for compound clips.
func WithSubTimeline(tracks []Track) ClipOption {
	return func(c *Clip) {
		c.SubTimeline = cloneTracks(tracks)
	}
}

// WithTransform overrides the default identity placement.
func WithTransform(tr Transform) ClipOption {
	return func(c *Clip) {
		c.Transform = tr
	}
}

// WithOpacity sets the clip opacity.
func WithOpacity(opacity float64) ClipOption {
	return func(c *Clip) {
		c.Opacity = opacity
	}
}

// WithVolume sets the clip volume gain.
func WithVolume(volume float64) ClipOption {
	return func(c *Clip) {
		c.Volume = volume
	}
}

// WithMuted marks the clip muted.
func WithMuted(muted bool) ClipOption {
	return func(c *Clip) {
		c.IsMuted = muted
	}
}

// WithEffects sets the ordered effect identifiers.
func WithEffects(effects ...string) ClipOption {
	return func(c *Clip) {
		c.Effects = append([]string(nil), effects...)
	}
}

// NewClip validates and constructs a clip of the given kind.
func NewClip(kind ClipKind, timeRange TimeRange, opts ...ClipOption) (Clip, error) {
	clip := Clip{
		ID:        uuid.NewString(),
		Kind:      kind,
		TimeRange: timeRange,
		Transform: IdentityTransform(),
		Opacity:   1,
		Volume:    1,
	}
	for _, opt := range opts {
		opt(&clip)
	}
	if err := clip.Validate(); err != nil {
		return Clip{}, err
	}
	return clip, nil
}

// Validate checks the clip's structural invariants. It is called by NewClip
// and again when clips arrive from persisted documents.
func (c *Clip) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return services.Wrap(services.ErrValidation, "timeline", "validate clip", "clip id is empty", nil)
	}
	if _, ok := clipKindSet[c.Kind]; !ok {
		return services.Wrap(services.ErrValidation, "timeline", "validate clip",
			fmt.Sprintf("unknown clip kind %q", c.Kind), nil)
	}
	if err := c.TimeRange.Validate(); err != nil {
		return err
	}
	if c.Opacity < 0 || c.Opacity > 1 {
		return services.Wrap(services.ErrValidation, "timeline", "validate clip",
			fmt.Sprintf("opacity must be within [0,1], got %v", c.Opacity), nil)
	}
	if c.Volume < 0 {
		return services.Wrap(services.ErrValidation, "timeline", "validate clip",
			fmt.Sprintf("volume must be >= 0, got %v", c.Volume), nil)
	}
	if c.Kind == ClipText {
		if c.TextContent == nil || strings.TrimSpace(c.TextContent.Text) == "" {
			return services.Wrap(services.ErrValidation, "timeline", "validate clip",
				"text clips require text content", nil)
		}
	} else if c.TextContent != nil {
		return services.Wrap(services.ErrValidation, "timeline", "validate clip",
			fmt.Sprintf("%s clips cannot carry text content", c.Kind), nil)
	}
	if c.Kind == ClipCompound {
		if len(c.SubTimeline) == 0 {
			return services.Wrap(services.ErrValidation, "timeline", "validate clip",
				"compound clips require a non-empty sub-timeline", nil)
		}
		for i := range c.SubTimeline {
			if err := c.SubTimeline[i].Validate(); err != nil {
				return err
			}
		}
	} else if len(c.SubTimeline) != 0 {
		return services.Wrap(services.ErrValidation, "timeline", "validate clip",
			fmt.Sprintf("%s clips cannot carry a sub-timeline", c.Kind), nil)
	}
	return nil
}

// Clone returns a deep copy of the clip, preserving its identity.
func (c Clip) Clone() Clip {
	clone := c
	if c.Source != nil {
		src := *c.Source
		clone.Source = &src
	}
	if c.TextContent != nil {
		text := *c.TextContent
		clone.TextContent = &text
	}
	if len(c.Effects) > 0 {
		clone.Effects = append([]string(nil), c.Effects...)
	}
	if len(c.SubTimeline) > 0 {
		clone.SubTimeline = cloneTracks(c.SubTimeline)
	}
	return clone
}

// Trim replaces the clip's time range in place. It does not validate
// against sibling clips; overlap policy is a track-level concern.
func (c *Clip) Trim(newStart, newDuration float64) error {
	trimmed, err := NewTimeRange(newStart, newDuration)
	if err != nil {
		return err
	}
	c.TimeRange = trimmed
	return nil
}

// Split divides the clip at an offset measured from the clip's own start,
// returning two independent copies with fresh identities whose ranges
// partition the original. Offsets at or beyond either edge return ok=false.
func (c Clip) Split(atOffset float64) (Clip, Clip, bool) {
	if atOffset <= 0 || atOffset >= c.TimeRange.Duration {
		return Clip{}, Clip{}, false
	}

	first := c.Clone()
	first.ID = uuid.NewString()
	first.TimeRange = TimeRange{Start: c.TimeRange.Start, Duration: atOffset}

	second := c.Clone()
	second.ID = uuid.NewString()
	second.TimeRange = TimeRange{
		Start:    c.TimeRange.Start + atOffset,
		Duration: c.TimeRange.Duration - atOffset,
	}

	return first, second, true
}

// MakeCompound groups an ordered list of clips into a single compound clip.
// The members keep their original time ranges inside one inner track of the
// given kind; they are not re-based to start at zero. The compound clip's
// own duration is the sum of member durations, which intentionally differs
// from the inner track's span whenever members overlap or do not start at
// zero. An empty input returns ok=false.
func MakeCompound(clips []Clip, trackKind TrackKind) (Clip, bool) {
	if len(clips) == 0 {
		return Clip{}, false
	}
	if trackKind == "" {
		trackKind = TrackVideo
	}

	inner := NewTrack(trackKind)
	total := 0.0
	for _, clip := range clips {
		inner.Clips = append(inner.Clips, clip.Clone())
		total += clip.TimeRange.Duration
	}

	compound := Clip{
		ID:          uuid.NewString(),
		Kind:        ClipCompound,
		TimeRange:   TimeRange{Start: 0, Duration: total},
		Transform:   IdentityTransform(),
		Opacity:     1,
		Volume:      1,
		SubTimeline: []Track{inner},
	}
	return compound, true
}

// SubTimelineDuration reports the longest inner track duration of a compound
// clip. This is distinct from the clip's own TimeRange.Duration, which is
// the sum of member durations; both views are part of the model contract.
func (c Clip) SubTimelineDuration() float64 {
	max := 0.0
	for i := range c.SubTimeline {
		if d := c.SubTimeline[i].Duration(); d > max {
			max = d
		}
	}
	return max
}
