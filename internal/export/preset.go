package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"cutroom/internal/config"
	"cutroom/internal/services"
	"cutroom/internal/timeline"
)

// Codec identifies the video codec requested from the encode backend.
type Codec string

const (
	CodecH264 Codec = "h264"
	CodecH265 Codec = "h265"
)

var allCodecs = []Codec{CodecH264, CodecH265}

// AllCodecs returns the codecs the preset model understands.
func AllCodecs() []Codec {
	out := make([]Codec, len(allCodecs))
	copy(out, allCodecs)
	return out
}

// ParseCodec recognizes a codec name, case-insensitively.
func ParseCodec(value string) (Codec, bool) {
	normalized := Codec(strings.ToLower(strings.TrimSpace(value)))
	for _, c := range allCodecs {
		if c == normalized {
			return c, true
		}
	}
	return "", false
}

// Preset bundles the output parameters handed to the encode backend.
type Preset struct {
	Name                 string  `json:"name"`
	Width                int     `json:"width"`
	Height               int     `json:"height"`
	FrameRate            float64 `json:"frameRate"`
	VideoBitrate         int     `json:"videoBitrate"`
	AudioBitrate         int     `json:"audioBitrate"`
	AudioSampleRate      int     `json:"audioSampleRate"`
	Codec                Codec   `json:"codec"`
	OptimizeForStreaming bool    `json:"optimizeForStreaming"`
}

// PresetForProject derives a preset from the project's canvas and rates,
// filling encoder defaults from configuration.
func PresetForProject(project *timeline.Project, cfg *config.Config) Preset {
	preset := Preset{
		Name:                 "project",
		Width:                project.CanvasSize.Width,
		Height:               project.CanvasSize.Height,
		FrameRate:            project.FPS,
		AudioSampleRate:      project.AudioSampleRate,
		AudioBitrate:         192_000,
		VideoBitrate:         8_000_000,
		Codec:                CodecH264,
		OptimizeForStreaming: true,
	}
	if cfg != nil {
		if cfg.Export.DefaultBitrate > 0 {
			preset.VideoBitrate = cfg.Export.DefaultBitrate
		}
		preset.OptimizeForStreaming = cfg.Export.OptimizeForStreaming
		if codec, ok := ParseCodec(cfg.Export.DefaultCodec); ok {
			preset.Codec = codec
		}
	}
	return preset
}

// DefaultDestination places a project's output under the configured output
// directory, named after the project with unsafe characters replaced.
func DefaultDestination(cfg *config.Config, project *timeline.Project) string {
	return filepath.Join(cfg.Paths.OutputDir, sanitizeFilename(project.Name)+".mp4")
}

func sanitizeFilename(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '-'
		}
	}, strings.TrimSpace(name))
	mapped = strings.Trim(mapped, "-.")
	if mapped == "" {
		return "untitled"
	}
	return mapped
}

// Validate checks the preset before any encode work starts.
func (p Preset) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return services.Wrap(services.ErrExport, "export", "validate preset",
			fmt.Sprintf("resolution must be positive, got %dx%d", p.Width, p.Height), nil)
	}
	if p.FrameRate <= 0 {
		return services.Wrap(services.ErrExport, "export", "validate preset",
			fmt.Sprintf("frame rate must be positive, got %v", p.FrameRate), nil)
	}
	if p.VideoBitrate <= 0 {
		return services.Wrap(services.ErrExport, "export", "validate preset",
			fmt.Sprintf("video bitrate must be positive, got %d", p.VideoBitrate), nil)
	}
	if p.AudioSampleRate <= 0 {
		return services.Wrap(services.ErrExport, "export", "validate preset",
			fmt.Sprintf("audio sample rate must be positive, got %d", p.AudioSampleRate), nil)
	}
	found := false
	for _, c := range allCodecs {
		if c == p.Codec {
			found = true
			break
		}
	}
	if !found {
		return services.Wrap(services.ErrExport, "export", "validate preset",
			fmt.Sprintf("unknown codec %q", p.Codec), nil)
	}
	return nil
}

// Resolution renders the preset geometry as WxH.
func (p Preset) Resolution() string {
	return fmt.Sprintf("%dx%d", p.Width, p.Height)
}
