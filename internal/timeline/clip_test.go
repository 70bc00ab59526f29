package timeline_test

import (
	"errors"
	"testing"

	"cutroom/internal/services"
	"cutroom/internal/timeline"
)

func mustRange(t *testing.T, start, duration float64) timeline.TimeRange {
	t.Helper()
	r, err := timeline.NewTimeRange(start, duration)
	if err != nil {
		t.Fatalf("NewTimeRange(%v, %v) error = %v", start, duration, err)
	}
	return r
}

func mustClip(t *testing.T, kind timeline.ClipKind, start, duration float64, opts ...timeline.ClipOption) timeline.Clip {
	t.Helper()
	clip, err := timeline.NewClip(kind, mustRange(t, start, duration), opts...)
	if err != nil {
		t.Fatalf("NewClip(%s) error = %v", kind, err)
	}
	return clip
}

func TestNewClipDefaults(t *testing.T) {
	clip := mustClip(t, timeline.ClipVideo, 0, 5, timeline.WithSource("file:///media/a.mp4"))
	if clip.ID == "" {
		t.Fatal("NewClip() produced empty id")
	}
	if clip.Opacity != 1 || clip.Volume != 1 {
		t.Fatalf("defaults opacity=%v volume=%v, want 1 and 1", clip.Opacity, clip.Volume)
	}
	if clip.Transform.ScaleX != 1 || clip.Transform.ScaleY != 1 {
		t.Fatalf("default transform = %+v, want identity scale", clip.Transform)
	}
	if clip.IsMuted {
		t.Fatal("new clip should not be muted")
	}
}

func TestNewClipTextContentRules(t *testing.T) {
	if _, err := timeline.NewClip(timeline.ClipText, mustRange(t, 0, 2)); err == nil {
		t.Fatal("text clip without content accepted, want error")
	}
	if _, err := timeline.NewClip(timeline.ClipVideo, mustRange(t, 0, 2),
		timeline.WithText(timeline.TextContent{Text: "hi"})); err == nil {
		t.Fatal("video clip carrying text content accepted, want error")
	}
	clip, err := timeline.NewClip(timeline.ClipText, mustRange(t, 0, 2),
		timeline.WithText(timeline.TextContent{Text: "lower third", FontName: "Inter", FontSize: 42}))
	if err != nil {
		t.Fatalf("NewClip(text) error = %v", err)
	}
	if clip.TextContent == nil || clip.TextContent.Text != "lower third" {
		t.Fatalf("TextContent = %+v", clip.TextContent)
	}
}

func TestNewClipCompoundRequiresSubTimeline(t *testing.T) {
	if _, err := timeline.NewClip(timeline.ClipCompound, mustRange(t, 0, 2)); err == nil {
		t.Fatal("compound clip without sub timeline accepted, want error")
	}
	inner := timeline.NewTrack(timeline.TrackVideo)
	if err := inner.AddClip(mustClip(t, timeline.ClipVideo, 0, 2, timeline.WithSource("file:///a.mp4"))); err != nil {
		t.Fatalf("AddClip() error = %v", err)
	}
	if _, err := timeline.NewClip(timeline.ClipVideo, mustRange(t, 0, 2),
		timeline.WithSubTimeline([]timeline.Track{inner})); err == nil {
		t.Fatal("video clip carrying a sub timeline accepted, want error")
	}
}

func TestClipTrim(t *testing.T) {
	clip := mustClip(t, timeline.ClipVideo, 1, 8, timeline.WithSource("file:///a.mp4"))
	if err := clip.Trim(2, 3); err != nil {
		t.Fatalf("Trim() error = %v", err)
	}
	if clip.TimeRange.Start != 2 || clip.TimeRange.Duration != 3 {
		t.Fatalf("after Trim range = %+v, want start 2 duration 3", clip.TimeRange)
	}

	err := clip.Trim(2, 0)
	if err == nil {
		t.Fatal("Trim() with zero duration succeeded, want error")
	}
	if !errors.Is(err, services.ErrInvalidTimeRange) {
		t.Fatalf("Trim() error = %v, want ErrInvalidTimeRange", err)
	}
	if clip.TimeRange.Start != 2 || clip.TimeRange.Duration != 3 {
		t.Fatalf("failed Trim mutated clip: %+v", clip.TimeRange)
	}
}

func TestClipSplitEdgeOffsets(t *testing.T) {
	clip := mustClip(t, timeline.ClipVideo, 2, 6, timeline.WithSource("file:///a.mp4"))
	for _, offset := range []float64{0, -1, 6, 7} {
		if _, _, ok := clip.Split(offset); ok {
			t.Fatalf("Split(%v) ok = true, want false", offset)
		}
	}
}

func TestClipSplitPartitionsRange(t *testing.T) {
	clip := mustClip(t, timeline.ClipVideo, 2, 6,
		timeline.WithSource("file:///a.mp4"),
		timeline.WithEffects("lut:warm"),
	)
	first, second, ok := clip.Split(2.5)
	if !ok {
		t.Fatal("Split(2.5) ok = false, want true")
	}
	if first.TimeRange.Start != 2 || first.TimeRange.Duration != 2.5 {
		t.Fatalf("first half = %+v, want start 2 duration 2.5", first.TimeRange)
	}
	if second.TimeRange.Start != 4.5 || second.TimeRange.Duration != 3.5 {
		t.Fatalf("second half = %+v, want start 4.5 duration 3.5", second.TimeRange)
	}
	if got := first.TimeRange.Duration + second.TimeRange.Duration; got != clip.TimeRange.Duration {
		t.Fatalf("halves sum to %v, want %v", got, clip.TimeRange.Duration)
	}
	if first.ID == clip.ID || second.ID == clip.ID || first.ID == second.ID {
		t.Fatalf("split halves must carry fresh ids: %s %s %s", clip.ID, first.ID, second.ID)
	}

	// Halves are deep copies of the original's payload.
	first.Effects[0] = "lut:cold"
	if clip.Effects[0] != "lut:warm" {
		t.Fatal("mutating a split half leaked into the original clip")
	}
	if first.Source == clip.Source {
		t.Fatal("split halves share the original source pointer")
	}
}

func TestMakeCompoundEmptyInput(t *testing.T) {
	if _, ok := timeline.MakeCompound(nil, timeline.TrackVideo); ok {
		t.Fatal("MakeCompound(nil) ok = true, want false")
	}
}

func TestMakeCompoundSumsDurations(t *testing.T) {
	a := mustClip(t, timeline.ClipVideo, 0, 10, timeline.WithSource("file:///a.mp4"))
	b := mustClip(t, timeline.ClipVideo, 5, 10, timeline.WithSource("file:///b.mp4"))

	compound, ok := timeline.MakeCompound([]timeline.Clip{a, b}, timeline.TrackVideo)
	if !ok {
		t.Fatal("MakeCompound() ok = false, want true")
	}
	if compound.Kind != timeline.ClipCompound {
		t.Fatalf("compound kind = %s", compound.Kind)
	}
	// Overlapping members still contribute their full durations.
	if compound.TimeRange.Start != 0 || compound.TimeRange.Duration != 20 {
		t.Fatalf("compound range = %+v, want start 0 duration 20", compound.TimeRange)
	}
	if len(compound.SubTimeline) != 1 {
		t.Fatalf("sub timeline tracks = %d, want 1", len(compound.SubTimeline))
	}
	inner := compound.SubTimeline[0]
	if inner.Kind != timeline.TrackVideo {
		t.Fatalf("inner track kind = %s", inner.Kind)
	}
	if len(inner.Clips) != 2 || inner.Clips[0].ID != a.ID || inner.Clips[1].ID != b.ID {
		t.Fatalf("inner track does not hold the members as given: %+v", inner.Clips)
	}
	// Members keep their own ranges rather than being rebased.
	if inner.Clips[1].TimeRange.Start != 5 {
		t.Fatalf("member range was rebased: %+v", inner.Clips[1].TimeRange)
	}
}

func TestSubTimelineDurationUsesSpan(t *testing.T) {
	a := mustClip(t, timeline.ClipVideo, 0, 10, timeline.WithSource("file:///a.mp4"))
	b := mustClip(t, timeline.ClipVideo, 5, 10, timeline.WithSource("file:///b.mp4"))
	compound, ok := timeline.MakeCompound([]timeline.Clip{a, b}, timeline.TrackVideo)
	if !ok {
		t.Fatal("MakeCompound() ok = false, want true")
	}
	// The declared range sums member durations while the inner span ends at
	// the last member's end. Both views are kept.
	if got := compound.SubTimelineDuration(); got != 15 {
		t.Fatalf("SubTimelineDuration() = %v, want 15", got)
	}
	if compound.TimeRange.Duration == compound.SubTimelineDuration() {
		t.Fatal("expected declared duration and inner span to differ for overlapping members")
	}
}

func TestClipCloneIsDeep(t *testing.T) {
	clip := mustClip(t, timeline.ClipText, 0, 3,
		timeline.WithText(timeline.TextContent{Text: "title", Color: "#ffffff"}))
	clone := clip.Clone()
	if clone.ID != clip.ID {
		t.Fatalf("Clone() changed id: %s vs %s", clone.ID, clip.ID)
	}
	clone.TextContent.Text = "changed"
	if clip.TextContent.Text != "title" {
		t.Fatal("mutating clone text leaked into the original")
	}
}

func TestParseClipKind(t *testing.T) {
	if kind, ok := timeline.ParseClipKind(" Video "); !ok || kind != timeline.ClipVideo {
		t.Fatalf("ParseClipKind(Video) = %v, %v", kind, ok)
	}
	if _, ok := timeline.ParseClipKind("hologram"); ok {
		t.Fatal("ParseClipKind(hologram) ok = true, want false")
	}
}
