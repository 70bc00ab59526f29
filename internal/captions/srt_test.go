package captions_test

import (
	"strings"
	"testing"

	"cutroom/internal/captions"
	"cutroom/internal/timeline"
)

const sampleSRT = `1
00:00:01,500 --> 00:00:03,500
Hello there

2
00:00:04,000 --> 00:00:05,250
Two
lines
`

func TestParseSRT(t *testing.T) {
	cues, stats, err := captions.ParseSRT(strings.NewReader(sampleSRT))
	if err != nil {
		t.Fatalf("ParseSRT() error = %v", err)
	}
	if stats.Skipped != 0 {
		t.Fatalf("Skipped = %d, want 0", stats.Skipped)
	}
	if len(cues) != 2 || stats.Cues != 2 {
		t.Fatalf("parsed %d cues (stats %d), want 2", len(cues), stats.Cues)
	}
	if cues[0].TimeRange.Start != 1.5 || cues[0].TimeRange.Duration != 2 {
		t.Fatalf("first cue range = %+v, want start 1.5 duration 2", cues[0].TimeRange)
	}
	if cues[0].Text != "Hello there" {
		t.Fatalf("first cue text = %q", cues[0].Text)
	}
	if cues[1].Text != "Two\nlines" {
		t.Fatalf("second cue text = %q", cues[1].Text)
	}
	if cues[0].ID == "" || cues[0].ID == cues[1].ID {
		t.Fatalf("cue ids not unique: %q %q", cues[0].ID, cues[1].ID)
	}
}

func TestParseSRTSkipsMalformedBlocks(t *testing.T) {
	const input = `1
00:00:01,000 --> 00:00:02,000
Good one

oops
00:00:03,000 --> 00:00:04,000
Bad index

3
00:00:05,000 -> 00:00:06,000
Bad arrow

4
00:00:08,000 --> 00:00:07,000
Ends before start

5
00:00:09,000 --> 00:00:10,000
Good two
`
	cues, stats, err := captions.ParseSRT(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseSRT() error = %v", err)
	}
	if len(cues) != 2 {
		t.Fatalf("parsed %d cues, want 2", len(cues))
	}
	if stats.Skipped != 3 {
		t.Fatalf("Skipped = %d, want 3", stats.Skipped)
	}
	if cues[0].Text != "Good one" || cues[1].Text != "Good two" {
		t.Fatalf("wrong cues survived: %q, %q", cues[0].Text, cues[1].Text)
	}
}

func TestParseSRTToleratesCRLFAndBOM(t *testing.T) {
	input := "\uFEFF1\r\n00:00:00,000 --> 00:00:01,000\r\nWindows file\r\n"
	cues, _, err := captions.ParseSRT(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseSRT() error = %v", err)
	}
	if len(cues) != 1 || cues[0].Text != "Windows file" {
		t.Fatalf("cues = %+v", cues)
	}
}

func TestParseSRTToleratesPeriodMilliseconds(t *testing.T) {
	input := "1\n00:00:01.500 --> 00:00:02.000\nDotted\n"
	cues, _, err := captions.ParseSRT(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseSRT() error = %v", err)
	}
	if len(cues) != 1 || cues[0].TimeRange.Start != 1.5 {
		t.Fatalf("cues = %+v", cues)
	}
}

func TestParseSRTEmptyInput(t *testing.T) {
	cues, stats, err := captions.ParseSRT(strings.NewReader("   \n\n  "))
	if err != nil {
		t.Fatalf("ParseSRT() error = %v", err)
	}
	if len(cues) != 0 || stats.Cues != 0 || stats.Skipped != 0 {
		t.Fatalf("cues = %v, stats = %+v", cues, stats)
	}
}

func TestFormatSRTReindexesFromOne(t *testing.T) {
	mk := func(start, duration float64, text string) captions.Caption {
		r, err := timeline.NewTimeRange(start, duration)
		if err != nil {
			t.Fatalf("NewTimeRange() error = %v", err)
		}
		c, err := captions.NewCaption(r, text)
		if err != nil {
			t.Fatalf("NewCaption() error = %v", err)
		}
		return c
	}
	cues := []captions.Caption{
		mk(1.5, 2, "Hello there"),
		mk(4, 1.25, "Two\nlines"),
	}
	got := captions.FormatSRT(cues)
	want := "1\n00:00:01,500 --> 00:00:03,500\nHello there\n\n2\n00:00:04,000 --> 00:00:05,250\nTwo\nlines\n"
	if got != want {
		t.Fatalf("FormatSRT() = %q, want %q", got, want)
	}
}

func TestFormatSRTEmpty(t *testing.T) {
	if got := captions.FormatSRT(nil); got != "" {
		t.Fatalf("FormatSRT(nil) = %q, want empty", got)
	}
}
