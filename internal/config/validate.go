package config

import (
	"errors"
	"fmt"
	"strings"
)

var knownCodecs = map[string]struct{}{
	"h264": {},
	"h265": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateProject(); err != nil {
		return err
	}
	if err := c.validateExport(); err != nil {
		return err
	}
	if err := c.validateTools(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateProject() error {
	if c.Project.CanvasWidth <= 0 {
		return errors.New("project.canvas_width must be positive")
	}
	if c.Project.CanvasHeight <= 0 {
		return errors.New("project.canvas_height must be positive")
	}
	if c.Project.FrameRate <= 0 {
		return errors.New("project.frame_rate must be positive")
	}
	if c.Project.SampleRate <= 0 {
		return errors.New("project.sample_rate must be positive")
	}
	return nil
}

func (c *Config) validateExport() error {
	for _, codec := range c.Export.EnabledCodecs {
		if _, ok := knownCodecs[codec]; !ok {
			return fmt.Errorf("export.enabled_codecs: unknown codec %q (supported: h264, h265)", codec)
		}
	}
	if !c.CodecEnabled(c.Export.DefaultCodec) {
		return fmt.Errorf("export.default_codec %q is not listed in export.enabled_codecs", c.Export.DefaultCodec)
	}
	if c.Export.DefaultBitrate <= 0 {
		return errors.New("export.default_bitrate must be positive")
	}
	if c.Export.PollIntervalMS <= 0 {
		return errors.New("export.poll_interval_ms must be positive")
	}
	return nil
}

func (c *Config) validateTools() error {
	if strings.TrimSpace(c.Tools.FFmpeg) == "" {
		return errors.New("tools.ffmpeg must be set")
	}
	if strings.TrimSpace(c.Tools.FFprobe) == "" {
		return errors.New("tools.ffprobe must be set")
	}
	return nil
}
