package timeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"cutroom/internal/services"
)

// CanvasSize is the output frame size in pixels.
type CanvasSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Project is the aggregate root of an edit: canvas geometry, timing rates,
// and the ordered track list. Projects own their tracks, tracks own their
// clips, and clips weakly reference external media through Source.
type Project struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	CanvasSize      CanvasSize   `json:"canvasSize"`
	FPS             float64      `json:"fps"`
	AudioSampleRate int          `json:"audioSampleRate"`
	Tracks          []Track      `json:"tracks"`
	Transitions     []Transition `json:"transitions,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
	ModifiedAt      time.Time    `json:"modifiedAt"`
}

// NewProject validates and constructs an empty project.
func NewProject(name string, canvas CanvasSize, fps float64, sampleRate int) (Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Project{}, services.Wrap(services.ErrValidation, "timeline", "new project", "project name is empty", nil)
	}
	if canvas.Width <= 0 || canvas.Height <= 0 {
		return Project{}, services.Wrap(services.ErrValidation, "timeline", "new project",
			fmt.Sprintf("canvas must have positive dimensions, got %dx%d", canvas.Width, canvas.Height), nil)
	}
	if fps <= 0 {
		return Project{}, services.Wrap(services.ErrValidation, "timeline", "new project",
			fmt.Sprintf("fps must be positive, got %v", fps), nil)
	}
	if sampleRate <= 0 {
		return Project{}, services.Wrap(services.ErrValidation, "timeline", "new project",
			fmt.Sprintf("audio sample rate must be positive, got %d", sampleRate), nil)
	}
	now := time.Now().UTC()
	return Project{
		ID:              uuid.NewString(),
		Name:            name,
		CanvasSize:      canvas,
		FPS:             fps,
		AudioSampleRate: sampleRate,
		CreatedAt:       now,
		ModifiedAt:      now,
	}, nil
}

// TotalDuration is the longest track duration, or 0 for an empty project.
func (p *Project) TotalDuration() float64 {
	max := 0.0
	for i := range p.Tracks {
		if d := p.Tracks[i].Duration(); d > max {
			max = d
		}
	}
	return max
}

// Touch updates the modification timestamp.
func (p *Project) Touch() {
	p.ModifiedAt = time.Now().UTC()
}

// AddTrack appends a new empty track of the given kind and returns its ID.
func (p *Project) AddTrack(kind TrackKind) (string, error) {
	if _, ok := trackKindSet[kind]; !ok {
		return "", services.Wrap(services.ErrValidation, "timeline", "add track",
			fmt.Sprintf("unknown track kind %q", kind), nil)
	}
	track := NewTrack(kind)
	p.Tracks = append(p.Tracks, track)
	p.Touch()
	return track.ID, nil
}

// TrackByID returns a pointer into the project's track list.
func (p *Project) TrackByID(trackID string) (*Track, bool) {
	for i := range p.Tracks {
		if p.Tracks[i].ID == trackID {
			return &p.Tracks[i], true
		}
	}
	return nil, false
}

// FindClip locates a clip anywhere in the project's top-level tracks.
func (p *Project) FindClip(clipID string) (*Track, int, bool) {
	for i := range p.Tracks {
		if idx, ok := p.Tracks[i].FindClip(clipID); ok {
			return &p.Tracks[i], idx, true
		}
	}
	return nil, -1, false
}

// TrimClip updates a clip's time range in place.
func (p *Project) TrimClip(clipID string, newStart, newDuration float64) error {
	track, idx, ok := p.FindClip(clipID)
	if !ok {
		return services.Wrap(services.ErrNotFound, "timeline", "trim clip",
			fmt.Sprintf("clip %s not found", clipID), nil)
	}
	if track.IsLocked {
		return services.Wrap(services.ErrValidation, "timeline", "trim clip",
			fmt.Sprintf("track %s is locked", track.ID), nil)
	}
	if err := track.Clips[idx].Trim(newStart, newDuration); err != nil {
		return err
	}
	p.Touch()
	return nil
}

// SplitClip replaces a clip with its two halves split at the given offset
// from the clip's own start. The new clips occupy the original's position
// in list order.
func (p *Project) SplitClip(clipID string, atOffset float64) (Clip, Clip, error) {
	track, idx, ok := p.FindClip(clipID)
	if !ok {
		return Clip{}, Clip{}, services.Wrap(services.ErrNotFound, "timeline", "split clip",
			fmt.Sprintf("clip %s not found", clipID), nil)
	}
	if track.IsLocked {
		return Clip{}, Clip{}, services.Wrap(services.ErrValidation, "timeline", "split clip",
			fmt.Sprintf("track %s is locked", track.ID), nil)
	}
	first, second, ok := track.Clips[idx].Split(atOffset)
	if !ok {
		return Clip{}, Clip{}, services.Wrap(services.ErrInvalidTimeRange, "timeline", "split clip",
			fmt.Sprintf("offset %v outside (0, %v)", atOffset, track.Clips[idx].TimeRange.Duration), nil)
	}
	replaced := make([]Clip, 0, len(track.Clips)+1)
	replaced = append(replaced, track.Clips[:idx]...)
	replaced = append(replaced, first, second)
	replaced = append(replaced, track.Clips[idx+1:]...)
	track.Clips = replaced
	p.Touch()
	return first, second, nil
}

// GroupClips collapses the named clips into one compound clip. The compound
// takes the first named clip's position in its track; the remaining members
// are removed from wherever they live. Member order follows the id list.
func (p *Project) GroupClips(clipIDs []string, innerKind TrackKind) (Clip, error) {
	if len(clipIDs) == 0 {
		return Clip{}, services.Wrap(services.ErrValidation, "timeline", "group clips", "no clip ids given", nil)
	}
	members := make([]Clip, 0, len(clipIDs))
	for _, id := range clipIDs {
		track, idx, ok := p.FindClip(id)
		if !ok {
			return Clip{}, services.Wrap(services.ErrNotFound, "timeline", "group clips",
				fmt.Sprintf("clip %s not found", id), nil)
		}
		if track.IsLocked {
			return Clip{}, services.Wrap(services.ErrValidation, "timeline", "group clips",
				fmt.Sprintf("track %s is locked", track.ID), nil)
		}
		members = append(members, track.Clips[idx].Clone())
	}

	compound, ok := MakeCompound(members, innerKind)
	if !ok {
		return Clip{}, services.Wrap(services.ErrValidation, "timeline", "group clips", "no clips to group", nil)
	}

	// Replace the first member in place, then drop the rest.
	firstTrack, firstIdx, _ := p.FindClip(clipIDs[0])
	firstTrack.Clips[firstIdx] = compound
	for _, id := range clipIDs[1:] {
		if track, _, ok := p.FindClip(id); ok {
			track.RemoveClip(id)
		}
	}
	p.Touch()
	return compound, nil
}

// AddTransition validates and registers a transition between clips.
func (p *Project) AddTransition(t Transition) error {
	if err := t.Validate(); err != nil {
		return err
	}
	p.Transitions = append(p.Transitions, t)
	p.Touch()
	return nil
}

// Validate checks the project and its whole track/clip graph, used when
// documents arrive from the library rather than NewProject.
func (p *Project) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return services.Wrap(services.ErrValidation, "timeline", "validate project", "project id is empty", nil)
	}
	if strings.TrimSpace(p.Name) == "" {
		return services.Wrap(services.ErrValidation, "timeline", "validate project", "project name is empty", nil)
	}
	if p.CanvasSize.Width <= 0 || p.CanvasSize.Height <= 0 {
		return services.Wrap(services.ErrValidation, "timeline", "validate project",
			fmt.Sprintf("canvas must have positive dimensions, got %dx%d", p.CanvasSize.Width, p.CanvasSize.Height), nil)
	}
	if p.FPS <= 0 {
		return services.Wrap(services.ErrValidation, "timeline", "validate project",
			fmt.Sprintf("fps must be positive, got %v", p.FPS), nil)
	}
	if p.AudioSampleRate <= 0 {
		return services.Wrap(services.ErrValidation, "timeline", "validate project",
			fmt.Sprintf("audio sample rate must be positive, got %d", p.AudioSampleRate), nil)
	}
	for i := range p.Tracks {
		if err := p.Tracks[i].Validate(); err != nil {
			return err
		}
	}
	for i := range p.Transitions {
		if err := p.Transitions[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy of the project.
func (p Project) Clone() Project {
	clone := p
	clone.Tracks = cloneTracks(p.Tracks)
	if len(p.Transitions) > 0 {
		clone.Transitions = make([]Transition, len(p.Transitions))
		copy(clone.Transitions, p.Transitions)
		for i := range clone.Transitions {
			clone.Transitions[i].Parameters = cloneParameters(p.Transitions[i].Parameters)
		}
	}
	return clone
}

func cloneParameters(params map[string]float64) map[string]float64 {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]float64, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}

// NewID generates a fresh identifier in the format used across the model.
func NewID() string {
	return uuid.NewString()
}
