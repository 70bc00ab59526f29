package library_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"cutroom/internal/library"
	"cutroom/internal/services"
	"cutroom/internal/testsupport"
	"cutroom/internal/timeline"
)

func TestOpenCreatesSchemaAndHoldsLock(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLibrary(t, cfg)

	if store.Path() == "" {
		t.Fatal("expected database path to be set")
	}

	if _, err := library.Open(cfg); err == nil {
		t.Fatal("expected second open on a held library to fail")
	}

	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := library.Open(cfg)
	if err != nil {
		t.Fatalf("reopen after close failed: %v", err)
	}
	if err := reopened.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestSaveAndGetProjectRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLibrary(t, cfg)

	ctx := context.Background()
	project := testsupport.MustNewProject(t, "festival cut")
	clipID := testsupport.MustAddClip(t, project, timeline.TrackVideo, timeline.ClipVideo, "/media/a.mp4", 2, 6)

	testsupport.SaveProject(t, store, project)

	loaded, err := store.GetProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("GetProject failed: %v", err)
	}
	if loaded.Name != "festival cut" {
		t.Fatalf("unexpected name %q", loaded.Name)
	}
	if len(loaded.Tracks) != 1 || len(loaded.Tracks[0].Clips) != 1 {
		t.Fatalf("unexpected structure: %d tracks", len(loaded.Tracks))
	}
	clip := loaded.Tracks[0].Clips[0]
	if clip.ID != clipID {
		t.Fatalf("clip id changed across round trip: %q vs %q", clip.ID, clipID)
	}
	if clip.TimeRange.Start != 2 || clip.TimeRange.Duration != 6 {
		t.Fatalf("clip range changed across round trip: %+v", clip.TimeRange)
	}
	if err := loaded.Validate(); err != nil {
		t.Fatalf("loaded project failed validation: %v", err)
	}
}

func TestSaveProjectUpserts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLibrary(t, cfg)

	ctx := context.Background()
	project := testsupport.MustNewProject(t, "draft")
	testsupport.SaveProject(t, store, project)

	project.Name = "final"
	project.Touch()
	testsupport.SaveProject(t, store, project)

	records, err := store.ListProjects(ctx)
	if err != nil {
		t.Fatalf("ListProjects failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected a single record after upsert, got %d", len(records))
	}
	if records[0].Name != "final" {
		t.Fatalf("expected updated name, got %q", records[0].Name)
	}
}

func TestListProjectsOrdersByModified(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLibrary(t, cfg)

	ctx := context.Background()
	older := testsupport.MustNewProject(t, "older")
	older.ModifiedAt = time.Now().UTC().Add(-time.Hour)
	newer := testsupport.MustNewProject(t, "newer")

	testsupport.SaveProject(t, store, older)
	testsupport.SaveProject(t, store, newer)

	records, err := store.ListProjects(ctx)
	if err != nil {
		t.Fatalf("ListProjects failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected two records, got %d", len(records))
	}
	if records[0].Name != "newer" || records[1].Name != "older" {
		t.Fatalf("unexpected order: %q then %q", records[0].Name, records[1].Name)
	}
}

func TestFindProjectByIDOrName(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLibrary(t, cfg)

	ctx := context.Background()
	alpha := testsupport.MustNewProject(t, "alpha")
	beta := testsupport.MustNewProject(t, "beta")
	testsupport.SaveProject(t, store, alpha)
	testsupport.SaveProject(t, store, beta)

	byID, err := store.FindProject(ctx, alpha.ID)
	if err != nil || byID.ID != alpha.ID {
		t.Fatalf("find by id failed: %v", err)
	}
	byName, err := store.FindProject(ctx, "beta")
	if err != nil || byName.ID != beta.ID {
		t.Fatalf("find by name failed: %v", err)
	}
	if _, err := store.FindProject(ctx, "missing"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	betaTwin := testsupport.MustNewProject(t, "beta")
	testsupport.SaveProject(t, store, betaTwin)
	if _, err := store.FindProject(ctx, "beta"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ambiguity rejection for duplicate names, got %v", err)
	}
}

func TestDeleteProjectRemovesHistory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLibrary(t, cfg)

	ctx := context.Background()
	project := testsupport.MustNewProject(t, "doomed")
	testsupport.SaveProject(t, store, project)

	started := time.Now().UTC().Add(-time.Minute)
	if _, err := store.RecordExport(ctx, library.ExportRun{
		ProjectID:   project.ID,
		Destination: "/out/doomed.mp4",
		State:       "completed",
		Codec:       "h264",
		StartedAt:   started,
		FinishedAt:  started.Add(30 * time.Second),
	}); err != nil {
		t.Fatalf("RecordExport failed: %v", err)
	}

	if err := store.DeleteProject(ctx, project.ID); err != nil {
		t.Fatalf("DeleteProject failed: %v", err)
	}
	if _, err := store.GetProject(ctx, project.ID); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected project gone, got %v", err)
	}
	if err := store.DeleteProject(ctx, project.ID); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected second delete to report not found, got %v", err)
	}
	runs, err := store.ListExports(ctx, project.ID, 0)
	if err != nil {
		t.Fatalf("ListExports failed: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected history removed with the project, got %d runs", len(runs))
	}
}

func TestExportHistoryOrderAndLimit(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLibrary(t, cfg)

	ctx := context.Background()
	project := testsupport.MustNewProject(t, "history")
	testsupport.SaveProject(t, store, project)

	base := time.Now().UTC().Add(-time.Hour)
	for i, state := range []string{"failed", "completed"} {
		run := library.ExportRun{
			ProjectID:    project.ID,
			Destination:  "/out/history.mp4",
			State:        state,
			Codec:        "h264",
			SegmentCount: i + 1,
			PlanDuration: 12.5,
			Elapsed:      42 * time.Second,
			StartedAt:    base.Add(time.Duration(i) * time.Minute),
			FinishedAt:   base.Add(time.Duration(i)*time.Minute + 42*time.Second),
		}
		if state == "failed" {
			run.ErrorText = "encoder exploded"
		}
		if _, err := store.RecordExport(ctx, run); err != nil {
			t.Fatalf("RecordExport failed: %v", err)
		}
	}

	runs, err := store.ListExports(ctx, project.ID, 0)
	if err != nil {
		t.Fatalf("ListExports failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected two runs, got %d", len(runs))
	}
	if runs[0].State != "completed" || runs[1].State != "failed" {
		t.Fatalf("expected newest first, got %q then %q", runs[0].State, runs[1].State)
	}
	if runs[1].ErrorText != "encoder exploded" {
		t.Fatalf("error text lost: %q", runs[1].ErrorText)
	}
	if runs[0].Elapsed != 42*time.Second {
		t.Fatalf("elapsed lost: %v", runs[0].Elapsed)
	}

	limited, err := store.ListExports(ctx, project.ID, 1)
	if err != nil {
		t.Fatalf("ListExports with limit failed: %v", err)
	}
	if len(limited) != 1 || limited[0].State != "completed" {
		t.Fatalf("expected only the newest run, got %+v", limited)
	}
}
