package media

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"cutroom/internal/services"
	"cutroom/internal/timeline"
)

// Asset is probed metadata for one piece of source media. Assets are
// immutable once loaded; clips reference them weakly by URL or ID and the
// library keeps them addressable across sessions.
type Asset struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	Title      string    `json:"title"`
	Duration   float64   `json:"duration"`
	HasVideo   bool      `json:"hasVideo"`
	HasAudio   bool      `json:"hasAudio"`
	Width      int       `json:"width,omitempty"`
	Height     int       `json:"height,omitempty"`
	FrameRate  float64   `json:"frameRate,omitempty"`
	SampleRate int       `json:"sampleRate,omitempty"`
	Channels   int       `json:"channels,omitempty"`
	VideoCodec string    `json:"videoCodec,omitempty"`
	AudioCodec string    `json:"audioCodec,omitempty"`
	Container  string    `json:"container,omitempty"`
	SizeBytes  int64     `json:"sizeBytes,omitempty"`
	AddedAt    time.Time `json:"addedAt"`
}

// IsStill reports whether the asset is a still image: visual media with no
// intrinsic duration. Still assets cover any clip range.
func (a Asset) IsStill() bool {
	return a.HasVideo && !a.HasAudio && a.Duration == 0
}

// CoversRange reports whether a clip slice fits inside the asset. Assets
// without an intrinsic duration, such as stills, cover every range.
func (a Asset) CoversRange(r timeline.TimeRange) bool {
	if a.Duration == 0 {
		return true
	}
	return r.End() <= a.Duration
}

// Validate checks the asset's structural invariants.
func (a Asset) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return services.Wrap(services.ErrValidation, "media", "validate asset", "asset id is empty", nil)
	}
	if strings.TrimSpace(a.URL) == "" {
		return services.Wrap(services.ErrValidation, "media", "validate asset", "asset url is empty", nil)
	}
	if a.Duration < 0 {
		return services.Wrap(services.ErrValidation, "media", "validate asset",
			fmt.Sprintf("duration must not be negative, got %v", a.Duration), nil)
	}
	if !a.HasVideo && !a.HasAudio {
		return services.Wrap(services.ErrValidation, "media", "validate asset", "asset carries neither video nor audio", nil)
	}
	return nil
}

// ResolveRef turns a clip source reference into an absolute filesystem
// path. Plain paths and file:// URLs are accepted; remote schemes are not.
func ResolveRef(ref string) (string, error) {
	trimmed := strings.TrimSpace(ref)
	if trimmed == "" {
		return "", services.Wrap(services.ErrAssetLoad, "media", "resolve ref", "empty source reference", nil)
	}
	if strings.Contains(trimmed, "://") {
		parsed, err := url.Parse(trimmed)
		if err != nil {
			return "", services.Wrap(services.ErrAssetLoad, "media", "resolve ref",
				fmt.Sprintf("malformed source url %q", trimmed), err)
		}
		if !strings.EqualFold(parsed.Scheme, "file") {
			return "", services.Wrap(services.ErrAssetLoad, "media", "resolve ref",
				fmt.Sprintf("unsupported scheme %q, only file urls and local paths are loadable", parsed.Scheme), nil)
		}
		trimmed = parsed.Path
		if trimmed == "" {
			return "", services.Wrap(services.ErrAssetLoad, "media", "resolve ref", "file url carries no path", nil)
		}
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", services.Wrap(services.ErrAssetLoad, "media", "resolve ref",
			fmt.Sprintf("cannot absolutize %q", trimmed), err)
	}
	return abs, nil
}

// CanonicalURL renders an absolute path as the file URL stored on assets.
func CanonicalURL(path string) string {
	return "file://" + filepath.ToSlash(path)
}
