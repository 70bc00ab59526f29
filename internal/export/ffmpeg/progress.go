package ffmpeg

import (
	"strconv"
	"strings"
)

// progressParser turns the key=value stream emitted under -progress into
// a completion fraction against a known output duration.
type progressParser struct {
	totalSeconds float64
}

// fraction interprets one stream line. The second return is false for
// lines that carry no position information.
func (p progressParser) fraction(line string) (float64, bool) {
	key, value, found := strings.Cut(strings.TrimSpace(line), "=")
	if !found {
		return 0, false
	}
	value = strings.TrimSpace(value)
	switch key {
	case "progress":
		if value == "end" {
			return 1, true
		}
		return 0, false
	case "out_time_us":
		us, err := strconv.ParseInt(value, 10, 64)
		if err != nil || us < 0 {
			return 0, false
		}
		return p.clamp(float64(us) / 1e6), true
	case "out_time":
		seconds, ok := parseClock(value)
		if !ok {
			return 0, false
		}
		return p.clamp(seconds), true
	default:
		return 0, false
	}
}

func (p progressParser) clamp(seconds float64) float64 {
	if p.totalSeconds <= 0 {
		return 0
	}
	fraction := seconds / p.totalSeconds
	if fraction < 0 {
		return 0
	}
	// Hold just under 1 until the stream reports the end marker.
	if fraction > 0.999 {
		return 0.999
	}
	return fraction
}

// parseClock reads the HH:MM:SS.micro form ffmpeg uses for out_time.
func parseClock(value string) (float64, bool) {
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return 0, false
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || seconds < 0 {
		return 0, false
	}
	if hours < 0 || minutes < 0 {
		return 0, false
	}
	return float64(hours)*3600 + float64(minutes)*60 + seconds, true
}
