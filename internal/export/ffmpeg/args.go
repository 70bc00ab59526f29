package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"

	"cutroom/internal/composition"
	"cutroom/internal/export"
	"cutroom/internal/services"
)

// codecEncoderNames maps preset codecs to ffmpeg encoder names.
var codecEncoderNames = map[export.Codec]string{
	export.CodecH264: "libx264",
	export.CodecH265: "libx265",
}

// BuildArgs renders a segment plan into an ffmpeg invocation. Each unique
// source file becomes one input; segments are trimmed, normalized to the
// preset geometry, and concatenated in plan order through a filter graph.
// Progress is requested on stdout in machine-readable form.
func BuildArgs(plan *composition.Plan, preset export.Preset, destination string) ([]string, error) {
	if plan == nil || plan.IsEmpty() {
		return nil, services.Wrap(services.ErrExport, "ffmpeg", "build args", "plan has no segments", nil)
	}
	if strings.TrimSpace(destination) == "" {
		return nil, services.Wrap(services.ErrExport, "ffmpeg", "build args", "no destination given", nil)
	}
	encoderName, ok := codecEncoderNames[preset.Codec]
	if !ok {
		return nil, services.Wrap(services.ErrExport, "ffmpeg", "build args",
			fmt.Sprintf("no encoder mapping for codec %q", preset.Codec), nil)
	}

	args := []string{"-y", "-nostdin", "-hide_banner", "-v", "error", "-progress", "pipe:1"}

	inputIndex := make(map[string]int)
	var inputs []string
	indexOf := func(path string) int {
		if idx, ok := inputIndex[path]; ok {
			return idx
		}
		idx := len(inputs)
		inputIndex[path] = idx
		inputs = append(inputs, path)
		return idx
	}
	for _, seg := range plan.Video {
		indexOf(seg.AssetPath)
	}
	for _, seg := range plan.Audio {
		indexOf(seg.AssetPath)
	}
	for _, path := range inputs {
		args = append(args, "-i", path)
	}

	var filters []string
	var videoLabels, audioLabels []string
	for i, seg := range plan.Video {
		label := fmt.Sprintf("v%d", i)
		filters = append(filters, fmt.Sprintf(
			"[%d:v]trim=start=%s:end=%s,setpts=PTS-STARTPTS,scale=%d:%d,setsar=1[%s]",
			indexOf(seg.AssetPath),
			formatSeconds(seg.SourceStart),
			formatSeconds(seg.SourceStart+seg.Duration),
			preset.Width, preset.Height, label,
		))
		videoLabels = append(videoLabels, "["+label+"]")
	}
	if len(videoLabels) > 0 {
		filters = append(filters, fmt.Sprintf("%sconcat=n=%d:v=1:a=0[vout]", strings.Join(videoLabels, ""), len(videoLabels)))
	}
	for i, seg := range plan.Audio {
		label := fmt.Sprintf("a%d", i)
		chain := fmt.Sprintf("[%d:a]atrim=start=%s:end=%s,asetpts=PTS-STARTPTS",
			indexOf(seg.AssetPath),
			formatSeconds(seg.SourceStart),
			formatSeconds(seg.SourceStart+seg.Duration),
		)
		if seg.Volume != 1 {
			chain += ",volume=" + formatSeconds(seg.Volume)
		}
		filters = append(filters, fmt.Sprintf("%s[%s]", chain, label))
		audioLabels = append(audioLabels, "["+label+"]")
	}
	if len(audioLabels) > 0 {
		filters = append(filters, fmt.Sprintf("%sconcat=n=%d:v=0:a=1[aout]", strings.Join(audioLabels, ""), len(audioLabels)))
	}
	args = append(args, "-filter_complex", strings.Join(filters, ";"))

	if len(videoLabels) > 0 {
		args = append(args,
			"-map", "[vout]",
			"-c:v", encoderName,
			"-b:v", strconv.Itoa(preset.VideoBitrate),
			"-r", formatSeconds(preset.FrameRate),
			"-pix_fmt", "yuv420p",
		)
	} else {
		args = append(args, "-vn")
	}
	if len(audioLabels) > 0 {
		args = append(args,
			"-map", "[aout]",
			"-c:a", "aac",
			"-b:a", strconv.Itoa(preset.AudioBitrate),
			"-ar", strconv.Itoa(preset.AudioSampleRate),
		)
	} else {
		args = append(args, "-an")
	}
	if preset.OptimizeForStreaming {
		args = append(args, "-movflags", "+faststart")
	}

	args = append(args, destination)
	return args, nil
}

// formatSeconds renders a value the filter syntax accepts without
// scientific notation.
func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
