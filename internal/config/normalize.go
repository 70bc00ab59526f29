package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeProject()
	c.normalizeExport()
	c.normalizeCaptions()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeTools() {
	// Environment overrides win over file values so wrapper scripts can
	// redirect tool resolution without editing the config.
	if value, ok := os.LookupEnv("CUTROOM_FFMPEG"); ok && strings.TrimSpace(value) != "" {
		c.Tools.FFmpeg = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv("CUTROOM_FFPROBE"); ok && strings.TrimSpace(value) != "" {
		c.Tools.FFprobe = strings.TrimSpace(value)
	}
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = defaultFFmpegBinary
	}
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	if c.Tools.FFprobe == "" {
		c.Tools.FFprobe = defaultFFprobeBinary
	}
}

func (c *Config) normalizeProject() {
	if c.Project.CanvasWidth == 0 {
		c.Project.CanvasWidth = defaultCanvasWidth
	}
	if c.Project.CanvasHeight == 0 {
		c.Project.CanvasHeight = defaultCanvasHeight
	}
	if c.Project.FrameRate == 0 {
		c.Project.FrameRate = defaultFrameRate
	}
	if c.Project.SampleRate == 0 {
		c.Project.SampleRate = defaultSampleRate
	}
}

func (c *Config) normalizeExport() {
	c.Export.DefaultCodec = strings.ToLower(strings.TrimSpace(c.Export.DefaultCodec))
	if c.Export.DefaultCodec == "" {
		c.Export.DefaultCodec = defaultExportCodec
	}
	if len(c.Export.EnabledCodecs) == 0 {
		c.Export.EnabledCodecs = defaultEnabledCodecs()
	} else {
		codecs := make([]string, 0, len(c.Export.EnabledCodecs))
		seen := make(map[string]struct{}, len(c.Export.EnabledCodecs))
		for _, codec := range c.Export.EnabledCodecs {
			normalized := strings.ToLower(strings.TrimSpace(codec))
			if normalized == "" {
				continue
			}
			if _, exists := seen[normalized]; exists {
				continue
			}
			seen[normalized] = struct{}{}
			codecs = append(codecs, normalized)
		}
		if len(codecs) == 0 {
			codecs = defaultEnabledCodecs()
		}
		c.Export.EnabledCodecs = codecs
	}
	if c.Export.DefaultBitrate == 0 {
		c.Export.DefaultBitrate = defaultExportBitrate
	}
	if c.Export.PollIntervalMS == 0 {
		c.Export.PollIntervalMS = defaultPollIntervalMS
	}
}

func (c *Config) normalizeCaptions() {
	c.Captions.DefaultLanguage = strings.ToLower(strings.TrimSpace(c.Captions.DefaultLanguage))
	if c.Captions.DefaultLanguage == "" {
		c.Captions.DefaultLanguage = defaultCaptionLang
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
