package testsupport

import (
	"context"
	"testing"

	"cutroom/internal/config"
	"cutroom/internal/library"
	"cutroom/internal/timeline"
)

// MustOpenLibrary opens a library.Store for tests and registers cleanup.
func MustOpenLibrary(t testing.TB, cfg *config.Config) *library.Store {
	t.Helper()

	store, err := library.Open(cfg)
	if err != nil {
		t.Fatalf("library.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustNewProject builds a valid project with test-friendly defaults.
func MustNewProject(t testing.TB, name string) *timeline.Project {
	t.Helper()

	project, err := timeline.NewProject(name, timeline.CanvasSize{Width: 1920, Height: 1080}, 30, 48_000)
	if err != nil {
		t.Fatalf("timeline.NewProject: %v", err)
	}
	return &project
}

// MustAddClip adds a sourced clip to a fresh track of the given kind and
// returns the clip identifier.
func MustAddClip(t testing.TB, project *timeline.Project, kind timeline.TrackKind, clipKind timeline.ClipKind, source string, start, duration float64) string {
	t.Helper()

	trackID, err := project.AddTrack(kind)
	if err != nil {
		t.Fatalf("AddTrack: %v", err)
	}
	track, ok := project.TrackByID(trackID)
	if !ok {
		t.Fatalf("track %s missing after AddTrack", trackID)
	}
	r, err := timeline.NewTimeRange(start, duration)
	if err != nil {
		t.Fatalf("NewTimeRange: %v", err)
	}
	clip, err := timeline.NewClip(clipKind, r, timeline.WithSource(source))
	if err != nil {
		t.Fatalf("NewClip: %v", err)
	}
	if err := track.AddClip(clip); err != nil {
		t.Fatalf("AddClip: %v", err)
	}
	return clip.ID
}

// SaveProject persists a project, failing the test on error.
func SaveProject(t testing.TB, store *library.Store, project *timeline.Project) {
	t.Helper()

	if err := store.SaveProject(context.Background(), project); err != nil {
		t.Fatalf("SaveProject: %v", err)
	}
}
