package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"cutroom/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantLibrary := filepath.Join(tempHome, ".local", "share", "cutroom", "library")
	if cfg.Paths.LibraryDir != wantLibrary {
		t.Fatalf("unexpected library dir: got %q want %q", cfg.Paths.LibraryDir, wantLibrary)
	}
	wantStaging := filepath.Join(tempHome, ".local", "share", "cutroom", "staging")
	if cfg.Paths.StagingDir != wantStaging {
		t.Fatalf("unexpected staging dir: got %q want %q", cfg.Paths.StagingDir, wantStaging)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7319" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Tools.FFmpeg != "ffmpeg" || cfg.Tools.FFprobe != "ffprobe" {
		t.Fatalf("unexpected tool defaults: %q %q", cfg.Tools.FFmpeg, cfg.Tools.FFprobe)
	}
	if cfg.Project.CanvasWidth != 1920 || cfg.Project.CanvasHeight != 1080 {
		t.Fatalf("unexpected canvas defaults: %dx%d", cfg.Project.CanvasWidth, cfg.Project.CanvasHeight)
	}
	if cfg.Export.DefaultCodec != "h264" {
		t.Fatalf("unexpected default codec: %q", cfg.Export.DefaultCodec)
	}
	if cfg.Export.PollIntervalMS != 100 {
		t.Fatalf("unexpected poll interval: %d", cfg.Export.PollIntervalMS)
	}
	if !cfg.CodecEnabled("h265") {
		t.Fatal("expected h265 enabled by default")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	for _, dir := range []string{cfg.Paths.LibraryDir, cfg.Paths.StagingDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "cutroom.toml")

	type payload struct {
		Paths struct {
			APIBind string `toml:"api_bind"`
		} `toml:"paths"`
		Export struct {
			DefaultCodec   string   `toml:"default_codec"`
			EnabledCodecs  []string `toml:"enabled_codecs"`
			DefaultBitrate int      `toml:"default_bitrate"`
		} `toml:"export"`
		Project struct {
			FrameRate float64 `toml:"frame_rate"`
		} `toml:"project"`
	}
	custom := payload{}
	custom.Paths.APIBind = "0.0.0.0:9000"
	custom.Export.DefaultCodec = "H265"
	custom.Export.EnabledCodecs = []string{"H265", "h264", "h265"}
	custom.Export.DefaultBitrate = 4_000_000
	custom.Project.FrameRate = 23.976
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.APIBind != "0.0.0.0:9000" {
		t.Fatalf("expected api bind override, got %q", cfg.Paths.APIBind)
	}
	if cfg.Export.DefaultCodec != "h265" {
		t.Fatalf("expected codec lowered to h265, got %q", cfg.Export.DefaultCodec)
	}
	if len(cfg.Export.EnabledCodecs) != 2 {
		t.Fatalf("expected deduplicated codecs, got %v", cfg.Export.EnabledCodecs)
	}
	if cfg.Export.DefaultBitrate != 4_000_000 {
		t.Fatalf("expected bitrate override, got %d", cfg.Export.DefaultBitrate)
	}
	if cfg.Project.FrameRate != 23.976 {
		t.Fatalf("expected frame rate override, got %v", cfg.Project.FrameRate)
	}
}

func TestEnvVarOverridesConfigFileForTools(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "cutroom.toml")

	type payload struct {
		Tools struct {
			FFmpeg  string `toml:"ffmpeg"`
			FFprobe string `toml:"ffprobe"`
		} `toml:"tools"`
	}
	custom := payload{}
	custom.Tools.FFmpeg = "/opt/file/ffmpeg"
	custom.Tools.FFprobe = "/opt/file/ffprobe"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	t.Setenv("CUTROOM_FFMPEG", "/opt/env/ffmpeg")
	t.Setenv("CUTROOM_FFPROBE", "/opt/env/ffprobe")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Tools.FFmpeg != "/opt/env/ffmpeg" {
		t.Errorf("expected ffmpeg from env, got %q", cfg.Tools.FFmpeg)
	}
	if cfg.Tools.FFprobe != "/opt/env/ffprobe" {
		t.Errorf("expected ffprobe from env, got %q", cfg.Tools.FFprobe)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "poll_interval_ms") {
		t.Fatalf("sample config missing poll interval knob: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if !strings.Contains(cfg.Paths.LibraryDir, "cutroom") {
		t.Fatalf("expected library dir to contain cutroom, got %q", cfg.Paths.LibraryDir)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Export.DefaultBitrate = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative bitrate")
	}

	cfg = config.Default()
	cfg.Export.PollIntervalMS = -5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative poll interval")
	}

	cfg = config.Default()
	cfg.Export.EnabledCodecs = []string{"av1"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown codec")
	}

	cfg = config.Default()
	cfg.Export.DefaultCodec = "h265"
	cfg.Export.EnabledCodecs = []string{"h264"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when default codec is not enabled")
	}

	cfg = config.Default()
	cfg.Project.CanvasWidth = -1920
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative canvas width")
	}
}
