package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	LibraryDir string `toml:"library_dir"`
	StagingDir string `toml:"staging_dir"`
	OutputDir  string `toml:"output_dir"`
	LogDir     string `toml:"log_dir"`
	APIBind    string `toml:"api_bind"`
}

// Tools contains external binary locations.
type Tools struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
}

// Project contains defaults applied to newly created projects.
type Project struct {
	CanvasWidth  int     `toml:"canvas_width"`
	CanvasHeight int     `toml:"canvas_height"`
	FrameRate    float64 `toml:"frame_rate"`
	SampleRate   int     `toml:"sample_rate"`
}

// Export contains encode defaults and export session tuning.
type Export struct {
	DefaultCodec         string   `toml:"default_codec"`
	EnabledCodecs        []string `toml:"enabled_codecs"`
	DefaultBitrate       int      `toml:"default_bitrate"`
	PollIntervalMS       int      `toml:"poll_interval_ms"`
	OptimizeForStreaming bool     `toml:"optimize_for_streaming"`
	OverwriteExisting    bool     `toml:"overwrite_existing"`
}

// Captions contains subtitle import and serialization settings.
type Captions struct {
	DefaultLanguage string `toml:"default_language"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for Cutroom.
//
// Configuration sections by subsystem:
//   - Paths: library/staging/output directories and API bind address
//   - Tools: ffmpeg and ffprobe binary locations
//   - Project: canvas, frame rate, and sample rate defaults for new projects
//   - Export: codec set, bitrate, and progress polling cadence
//   - Captions: default subtitle language
//   - Logging: log format, level, and retention
type Config struct {
	Paths    Paths    `toml:"paths"`
	Tools    Tools    `toml:"tools"`
	Project  Project  `toml:"project"`
	Export   Export   `toml:"export"`
	Captions Captions `toml:"captions"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/cutroom/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/cutroom/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("cutroom.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for CLI and server operation.
// OutputDir is created on a best-effort basis so commands can run when
// external storage is temporarily unavailable.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LibraryDir, c.Paths.StagingDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.OutputDir) != "" {
		// Best-effort to avoid failing config load when storage is offline.
		_ = os.MkdirAll(c.Paths.OutputDir, 0o755)
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable used for rendering.
func (c *Config) FFmpegBinary() string {
	if bin := strings.TrimSpace(c.Tools.FFmpeg); bin != "" {
		return bin
	}
	return defaultFFmpegBinary
}

// FFprobeBinary returns the ffprobe executable used for media inspection.
func (c *Config) FFprobeBinary() string {
	if bin := strings.TrimSpace(c.Tools.FFprobe); bin != "" {
		return bin
	}
	return defaultFFprobeBinary
}

// DatabasePath returns the location of the SQLite project library.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.LibraryDir, "cutroom.db")
}

// LockPath returns the location of the library writer lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.LibraryDir, "cutroom.lock")
}

// PollInterval returns the export progress polling cadence.
func (c *Config) PollInterval() time.Duration {
	ms := c.Export.PollIntervalMS
	if ms <= 0 {
		ms = defaultPollIntervalMS
	}
	return time.Duration(ms) * time.Millisecond
}

// CodecEnabled reports whether the named codec is allowed for exports.
func (c *Config) CodecEnabled(codec string) bool {
	codec = strings.ToLower(strings.TrimSpace(codec))
	for _, enabled := range c.Export.EnabledCodecs {
		if enabled == codec {
			return true
		}
	}
	return false
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
