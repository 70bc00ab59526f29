package ffmpeg

import "testing"

func TestProgressParserFraction(t *testing.T) {
	parser := progressParser{totalSeconds: 10}

	cases := []struct {
		name string
		line string
		want float64
		ok   bool
	}{
		{"microsecond position", "out_time_us=5000000", 0.5, true},
		{"clock position", "out_time=00:00:02.500000", 0.25, true},
		{"end marker", "progress=end", 1, true},
		{"continue marker carries no position", "progress=continue", 0, false},
		{"frame counter ignored", "frame=120", 0, false},
		{"bare text ignored", "garbage", 0, false},
		{"negative position ignored", "out_time_us=-50", 0, false},
		{"overshoot held short of one", "out_time_us=20000000", 0.999, true},
		{"whitespace tolerated", "  out_time_us=2500000  ", 0.25, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := parser.fraction(tc.line)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Fatalf("fraction = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestProgressParserZeroDurationReportsZero(t *testing.T) {
	parser := progressParser{}
	got, ok := parser.fraction("out_time_us=5000000")
	if !ok || got != 0 {
		t.Fatalf("expected zero fraction for unknown duration, got %v ok=%v", got, ok)
	}
}

func TestParseClock(t *testing.T) {
	if got, ok := parseClock("01:02:03.500000"); !ok || got != 3723.5 {
		t.Fatalf("parseClock = %v ok=%v", got, ok)
	}
	for _, bad := range []string{"", "99", "aa:bb:cc", "00:00:-1"} {
		if _, ok := parseClock(bad); ok {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}
