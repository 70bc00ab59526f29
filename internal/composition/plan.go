package composition

import (
	"cutroom/internal/timeline"
)

// SegmentKind identifies which program a segment belongs to.
type SegmentKind string

const (
	SegmentVideo SegmentKind = "video"
	SegmentAudio SegmentKind = "audio"
)

// Segment is one lowered interval: a slice of a source asset placed at a
// position on the output timeline. SourceStart and Duration select the
// slice; Start is where the cursor put it.
type Segment struct {
	Kind        SegmentKind        `json:"kind"`
	TrackID     string             `json:"trackId"`
	ClipID      string             `json:"clipId"`
	AssetID     string             `json:"assetId"`
	AssetPath   string             `json:"assetPath"`
	SourceStart float64            `json:"sourceStart"`
	Duration    float64            `json:"duration"`
	Start       float64            `json:"start"`
	Volume      float64            `json:"volume"`
	Opacity     float64            `json:"opacity"`
	Transform   timeline.Transform `json:"transform"`
	Effects     []string           `json:"effects,omitempty"`
}

// End is the segment's exclusive end position on the output timeline.
func (s Segment) End() float64 {
	return s.Start + s.Duration
}

// SkippedClip records a clip the builder declined to lower and why. Skips
// are part of the plan so callers can audit what a render will not contain.
type SkippedClip struct {
	TrackID string            `json:"trackId"`
	ClipID  string            `json:"clipId"`
	Kind    timeline.ClipKind `json:"kind"`
	Reason  string            `json:"reason"`
}

// Plan is the flat, time-ordered output of lowering a project: one segment
// program per media kind, the tracks that lowering does not handle, and an
// audit trail of skipped clips. Plans are deterministic: the same project
// yields an identical plan on every build.
type Plan struct {
	ProjectID   string           `json:"projectId"`
	Video       []Segment        `json:"video"`
	Audio       []Segment        `json:"audio"`
	Passthrough []timeline.Track `json:"passthrough,omitempty"`
	Skipped     []SkippedClip    `json:"skipped,omitempty"`
}

// Duration is the furthest placement end across both programs.
func (p *Plan) Duration() float64 {
	max := 0.0
	for _, s := range p.Video {
		if end := s.End(); end > max {
			max = end
		}
	}
	for _, s := range p.Audio {
		if end := s.End(); end > max {
			max = end
		}
	}
	return max
}

// SegmentCount is the total number of lowered segments.
func (p *Plan) SegmentCount() int {
	return len(p.Video) + len(p.Audio)
}

// IsEmpty reports whether lowering produced nothing renderable.
func (p *Plan) IsEmpty() bool {
	return p.SegmentCount() == 0
}
