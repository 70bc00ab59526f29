package preflight_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cutroom/internal/preflight"
	"cutroom/internal/testsupport"
)

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()
	result := preflight.CheckDirectoryAccess("Library directory", dir)
	if !result.Passed {
		t.Fatalf("expected writable temp dir to pass: %+v", result)
	}

	missing := preflight.CheckDirectoryAccess("Library directory", filepath.Join(dir, "absent"))
	if missing.Passed || !strings.Contains(missing.Detail, "does not exist") {
		t.Fatalf("expected missing dir to fail: %+v", missing)
	}

	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	notDir := preflight.CheckDirectoryAccess("Library directory", file)
	if notDir.Passed || !strings.Contains(notDir.Detail, "not a directory") {
		t.Fatalf("expected file path to fail: %+v", notDir)
	}

	blank := preflight.CheckDirectoryAccess("Output directory", "  ")
	if blank.Passed || blank.Detail != "not configured" {
		t.Fatalf("expected blank path to fail: %+v", blank)
	}
}

func TestCheckBinary(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("ffmpeg"))

	found := preflight.CheckBinary("FFmpeg", cfg.FFmpegBinary(), "renders export plans")
	if !found.Passed {
		t.Fatalf("expected stubbed ffmpeg to resolve: %+v", found)
	}

	absent := preflight.CheckBinary("FFprobe", "definitely-not-a-binary", "inspects source media")
	if absent.Passed {
		t.Fatalf("expected unresolvable binary to fail: %+v", absent)
	}

	blank := preflight.CheckBinary("FFmpeg", "", "renders export plans")
	if blank.Passed || blank.Detail != "command not configured" {
		t.Fatalf("expected blank command to fail: %+v", blank)
	}
}

func TestCheckCodecsReportsUnavailableEncoders(t *testing.T) {
	// The stub ffmpeg prints nothing, so no encoder appears available.
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("ffmpeg"))
	cfg.Export.EnabledCodecs = []string{"h264", "mystery"}

	results := preflight.CheckCodecs(context.Background(), cfg)
	if len(results) != 2 {
		t.Fatalf("expected one result per enabled codec, got %d", len(results))
	}
	if results[0].Passed {
		t.Fatalf("expected empty listing to read as unsupported: %+v", results[0])
	}
	if results[1].Passed || !strings.Contains(results[1].Detail, "unknown codec") {
		t.Fatalf("expected unknown codec rejection: %+v", results[1])
	}
}

func TestRunAllCoversDirectoriesAndBinaries(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	results := preflight.RunAll(context.Background(), cfg)
	if len(results) == 0 {
		t.Fatal("expected preflight results")
	}

	byName := make(map[string]preflight.Result, len(results))
	for _, result := range results {
		byName[result.Name] = result
	}
	for _, name := range []string{"Library directory", "Staging directory", "Log directory", "FFmpeg", "FFprobe"} {
		result, ok := byName[name]
		if !ok {
			t.Fatalf("missing check %q in %+v", name, results)
		}
		if !result.Passed {
			t.Fatalf("expected %q to pass with stubs in place: %+v", name, result)
		}
	}

	if preflight.Passed(results) {
		t.Fatal("expected overall failure while codec capability is absent")
	}
}
