package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"cutroom/internal/logging"
	"cutroom/internal/media/ffprobe"
	"cutroom/internal/services"
)

// Loader resolves a clip source reference into a probed asset.
type Loader interface {
	Load(ctx context.Context, ref string) (Asset, error)
}

// ProbeLoader loads assets from the local filesystem using ffprobe.
type ProbeLoader struct {
	binary string
	logger *slog.Logger
}

// NewProbeLoader constructs a loader backed by the given ffprobe binary.
func NewProbeLoader(binary string, logger *slog.Logger) *ProbeLoader {
	if strings.TrimSpace(binary) == "" {
		binary = "ffprobe"
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ProbeLoader{binary: binary, logger: logger}
}

// Load resolves the reference, stats the file, and probes it. Every failure
// mode reports as an asset load error so callers can distinguish bad media
// from bad timelines.
func (l *ProbeLoader) Load(ctx context.Context, ref string) (Asset, error) {
	path, err := ResolveRef(ref)
	if err != nil {
		return Asset{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return Asset{}, services.Wrap(services.ErrAssetLoad, "media", "load asset",
			fmt.Sprintf("source %s is not readable", path), err)
	}
	if info.IsDir() {
		return Asset{}, services.Wrap(services.ErrAssetLoad, "media", "load asset",
			fmt.Sprintf("source %s is a directory", path), nil)
	}

	result, err := ffprobe.Inspect(ctx, l.binary, path)
	if err != nil {
		return Asset{}, services.Wrap(services.ErrAssetLoad, "media", "load asset",
			fmt.Sprintf("probe failed for %s", path), err)
	}

	asset := assetFromProbe(path, info.Size(), result)
	if !asset.HasVideo && !asset.HasAudio {
		return Asset{}, services.Wrap(services.ErrAssetLoad, "media", "load asset",
			fmt.Sprintf("source %s carries no decodable video or audio streams", path), nil)
	}

	l.logger.Debug("asset probed",
		logging.String("path", path),
		logging.Float64("duration_seconds", asset.Duration),
		logging.Bool("has_video", asset.HasVideo),
		logging.Bool("has_audio", asset.HasAudio),
		logging.String("container", asset.Container),
	)
	return asset, nil
}

func assetFromProbe(path string, sizeBytes int64, result ffprobe.Result) Asset {
	asset := Asset{
		ID:        uuid.NewString(),
		URL:       CanonicalURL(path),
		Title:     strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Duration:  result.DurationSeconds(),
		HasVideo:  result.VideoStreamCount() > 0,
		HasAudio:  result.AudioStreamCount() > 0,
		Container: result.Format.FormatName,
		SizeBytes: sizeBytes,
		AddedAt:   time.Now().UTC(),
	}
	if video, ok := result.FirstStream("video"); ok {
		asset.Width = video.Width
		asset.Height = video.Height
		asset.FrameRate = video.FrameRate()
		asset.VideoCodec = video.CodecName
	}
	if audio, ok := result.FirstStream("audio"); ok {
		asset.SampleRate = audio.SampleRateHz()
		asset.Channels = audio.Channels
		asset.AudioCodec = audio.CodecName
	}
	return asset
}
