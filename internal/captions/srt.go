package captions

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"cutroom/internal/services"
	"cutroom/internal/timeline"
)

// ParseStats reports the outcome of an SRT parse.
type ParseStats struct {
	Cues    int
	Skipped int
}

// ParseSRT decodes SubRip content into cues. Cue blocks are separated by
// blank lines; each block carries an index line, a timing line, and one or
// more text lines. Malformed blocks are skipped and counted rather than
// failing the parse, since real subtitle files are frequently sloppy.
func ParseSRT(r io.Reader) ([]Caption, ParseStats, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ParseStats{}, services.Wrap(services.ErrAssetLoad, "captions", "parse srt", "read input", err)
	}

	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	content = strings.TrimPrefix(content, "\uFEFF")
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ParseStats{}, nil
	}

	var (
		cues  []Caption
		stats ParseStats
	)
	for _, block := range strings.Split(content, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		cue, ok := parseBlock(block)
		if !ok {
			stats.Skipped++
			continue
		}
		cues = append(cues, cue)
		stats.Cues++
	}
	return cues, stats, nil
}

func parseBlock(block string) (Caption, bool) {
	lines := strings.Split(block, "\n")
	if len(lines) < 3 {
		return Caption{}, false
	}

	// First line is the cue index. Its value is ignored; output is
	// re-indexed sequentially.
	if _, err := strconv.Atoi(strings.TrimSpace(lines[0])); err != nil {
		return Caption{}, false
	}

	if !strings.Contains(lines[1], "-->") {
		return Caption{}, false
	}
	parts := strings.Split(lines[1], "-->")
	if len(parts) != 2 {
		return Caption{}, false
	}
	start, err := parseTimestamp(parts[0])
	if err != nil {
		return Caption{}, false
	}
	end, err := parseTimestamp(parts[1])
	if err != nil {
		return Caption{}, false
	}

	timeRange, err := timeline.NewTimeRange(start, end-start)
	if err != nil {
		return Caption{}, false
	}

	text := strings.Join(lines[2:], "\n")
	if strings.TrimSpace(text) == "" {
		return Caption{}, false
	}

	return Caption{
		ID:        uuid.NewString(),
		TimeRange: timeRange,
		Text:      text,
	}, true
}

// FormatSRT encodes cues as SubRip text. Cues are written in slice order
// and re-indexed from 1 regardless of any prior numbering.
func FormatSRT(cues []Caption) string {
	var sb strings.Builder
	for i, cue := range cues {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("%d\n", i+1))
		sb.WriteString(fmt.Sprintf("%s --> %s\n", formatTimestamp(cue.TimeRange.Start), formatTimestamp(cue.TimeRange.End())))
		sb.WriteString(cue.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}

func parseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	// SubRip uses a comma before milliseconds; tolerate the period variant.
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	if hours < 0 || minutes < 0 || seconds < 0 || millis < 0 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}

func formatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	msTotal := int(seconds*1000 + 0.5)
	hours := msTotal / 3_600_000
	msTotal %= 3_600_000
	minutes := msTotal / 60_000
	msTotal %= 60_000
	secs := msTotal / 1_000
	millis := msTotal % 1_000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}
