package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"cutroom/internal/composition"
	"cutroom/internal/export"
	"cutroom/internal/logging"
	"cutroom/internal/services"
)

var commandContext = exec.CommandContext

const stderrTailLimit = 512

// Encoder drives the ffmpeg binary as the encode backend.
type Encoder struct {
	binary string
	logger *slog.Logger

	mu      sync.Mutex
	support map[export.Codec]bool
}

// Option configures the encoder.
type Option func(*Encoder)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(e *Encoder) {
		if binary != "" {
			e.binary = binary
		}
	}
}

// WithLogger attaches a logger for encode diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Encoder) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEncoder constructs an encoder using defaults.
func NewEncoder(opts ...Option) *Encoder {
	e := &Encoder{binary: "ffmpeg", logger: logging.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Supports probes the binary's encoder listing once and caches the result.
// A failed probe reads as no support, which surfaces before any encode
// work starts.
func (e *Encoder) Supports(codec export.Codec) bool {
	if _, ok := codecEncoderNames[codec]; !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.support == nil {
		e.support = e.probeEncoders()
	}
	return e.support[codec]
}

func (e *Encoder) probeEncoders() map[export.Codec]bool {
	support := make(map[export.Codec]bool, len(codecEncoderNames))
	cmd := commandContext(context.Background(), e.binary, "-hide_banner", "-encoders")
	raw, err := cmd.Output()
	if err != nil {
		e.logger.Warn("encoder capability probe failed",
			logging.String(logging.FieldComponent, "ffmpeg"),
			logging.Error(err),
		)
		return support
	}
	listing := string(raw)
	for codec, name := range codecEncoderNames {
		support[codec] = strings.Contains(listing, " "+name+" ")
	}
	return support
}

// Start launches the encode and returns a handle immediately. Progress is
// read from the process's stdout stream on a background task.
func (e *Encoder) Start(ctx context.Context, plan *composition.Plan, preset export.Preset, destination string) (export.Job, error) {
	args, err := BuildArgs(plan, preset, destination)
	if err != nil {
		return nil, err
	}
	if dir := filepath.Dir(destination); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, services.Wrap(services.ErrExport, "ffmpeg", "start", "create destination directory", err)
		}
	}

	cmd := commandContext(ctx, e.binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, services.Wrap(services.ErrExport, "ffmpeg", "start", "stdout pipe", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, services.Wrap(services.ErrExport, "ffmpeg", "start", "launch ffmpeg", err)
	}

	e.logger.Debug("ffmpeg encode started",
		logging.String(logging.FieldComponent, "ffmpeg"),
		logging.String("destination", destination),
		logging.Int("segments", plan.SegmentCount()),
		logging.Float64("plan_duration", plan.Duration()),
	)

	j := &job{cmd: cmd, done: make(chan struct{})}
	parser := progressParser{totalSeconds: plan.Duration()}
	go func() {
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			if fraction, ok := parser.fraction(scanner.Text()); ok {
				j.storeProgress(fraction)
			}
		}
		j.finish(e.translateExit(ctx, j, cmd.Wait(), &stderr))
	}()
	return j, nil
}

func (e *Encoder) translateExit(ctx context.Context, j *job, waitErr error, stderr *bytes.Buffer) error {
	switch {
	case waitErr == nil:
		return nil
	case j.cancelled.Load() || ctx.Err() != nil:
		return services.Wrap(services.ErrCancelled, "ffmpeg", "encode", "encode stopped", nil)
	default:
		detail := strings.TrimSpace(stderr.String())
		if len(detail) > stderrTailLimit {
			detail = detail[len(detail)-stderrTailLimit:]
		}
		if detail == "" {
			return services.Wrap(services.ErrExport, "ffmpeg", "encode", "ffmpeg exited abnormally", waitErr)
		}
		return services.Wrap(services.ErrExport, "ffmpeg", "encode", detail, waitErr)
	}
}

// job is one running ffmpeg process.
type job struct {
	cmd          *exec.Cmd
	progressBits atomic.Uint64
	cancelled    atomic.Bool
	done         chan struct{}
	waitErr      error
}

func (j *job) storeProgress(fraction float64) {
	j.progressBits.Store(math.Float64bits(fraction))
}

// Progress reports the last observed completion fraction.
func (j *job) Progress() float64 {
	return math.Float64frombits(j.progressBits.Load())
}

// Wait blocks until the process exits and the output stream is drained.
func (j *job) Wait() error {
	<-j.done
	return j.waitErr
}

// Cancel signals the process to stop. Interrupt lets ffmpeg finalize the
// container; a signal failure escalates to a hard kill.
func (j *job) Cancel() {
	if !j.cancelled.CompareAndSwap(false, true) {
		return
	}
	if p := j.cmd.Process; p != nil {
		if err := p.Signal(os.Interrupt); err != nil {
			_ = p.Kill()
		}
	}
}

func (j *job) finish(err error) {
	j.waitErr = err
	if err == nil {
		j.storeProgress(1)
	}
	close(j.done)
}

var _ export.Encoder = (*Encoder)(nil)
