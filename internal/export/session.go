package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"cutroom/internal/composition"
	"cutroom/internal/logging"
	"cutroom/internal/services"
	"cutroom/internal/timeline"
)

const defaultPollInterval = 100 * time.Millisecond

// Request carries everything one export call needs.
type Request struct {
	Project     *timeline.Project
	Preset      Preset
	Destination string
	OnProgress  ProgressFunc
}

// Result summarizes a finished export call.
type Result struct {
	State        State
	Destination  string
	Segments     int
	PlanDuration float64
	Elapsed      time.Duration
}

// Session orchestrates a single export: lower the project, hand the plan to
// the encode backend, poll progress on a fixed interval, and resolve to
// exactly one terminal state. One export per session instance; a second
// Export call is rejected while the state machine is away from idle.
//
// All state transitions are serialized behind one mutex. Cancellation is a
// flag plus a cooperative signal to the backend job; once the flag is
// observed the session reports cancelled even if the encode finished
// naturally in the meantime.
type Session struct {
	builder      *composition.Builder
	encoder      Encoder
	logger       *slog.Logger
	pollInterval time.Duration

	mu              sync.Mutex
	state           State
	job             Job
	cancelRequested bool
}

// SessionOption customises session construction.
type SessionOption func(*Session)

// WithPollInterval overrides the progress poll interval.
func WithPollInterval(interval time.Duration) SessionOption {
	return func(s *Session) {
		if interval > 0 {
			s.pollInterval = interval
		}
	}
}

// WithSessionLogger attaches a logger for session diagnostics.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSession constructs an idle session around a builder and a backend.
func NewSession(builder *composition.Builder, encoder Encoder, opts ...SessionOption) *Session {
	s := &Session{
		builder:      builder,
		encoder:      encoder,
		logger:       logging.NewNop(),
		pollInterval: defaultPollInterval,
		state:        StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current lifecycle position.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Cancel requests cooperative cancellation of the in-flight export. It is
// a no-op unless an export is active.
func (s *Session) Cancel() {
	s.mu.Lock()
	if !s.state.Active() {
		s.mu.Unlock()
		return
	}
	s.cancelRequested = true
	job := s.job
	s.mu.Unlock()

	if job != nil {
		job.Cancel()
	}
}

// Export runs the full pipeline. It blocks until the export reaches a
// terminal state and guarantees exactly one terminal progress notification
// on every exit path.
func (s *Session) Export(ctx context.Context, req Request) (Result, error) {
	s.mu.Lock()
	if s.state != StateIdle {
		current := s.state
		s.mu.Unlock()
		return Result{State: current}, services.Wrap(services.ErrExport, "export", "export",
			fmt.Sprintf("session is %s; one export per session instance", current), nil)
	}
	s.state = StatePreparing
	s.mu.Unlock()

	started := time.Now()
	notify := newNotifier(req.OnProgress)

	fail := func(err error) (Result, error) {
		s.setState(StateFailed)
		notify.terminal(Progress{State: StateFailed})
		logging.ErrorWithContext(s.logger, "export failed", "export_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "inspect the wrapped cause; the session made no further attempts"),
		)
		return Result{State: StateFailed, Destination: req.Destination, Elapsed: time.Since(started)}, err
	}

	if req.Project == nil {
		return fail(services.Wrap(services.ErrExport, "export", "export", "no project given", nil))
	}
	if strings.TrimSpace(req.Destination) == "" {
		return fail(services.Wrap(services.ErrExport, "export", "export", "no destination given", nil))
	}
	if err := req.Preset.Validate(); err != nil {
		return fail(err)
	}
	if s.encoder == nil {
		return fail(services.Wrap(services.ErrExport, "export", "export", "no encode backend configured", nil))
	}
	// Capability gate before any encode work.
	if !s.encoder.Supports(req.Preset.Codec) {
		return fail(services.Wrap(services.ErrExport, "export", "export",
			fmt.Sprintf("codec %s is unavailable in this environment", req.Preset.Codec), nil))
	}

	s.logger.Info("export started",
		logging.String(logging.FieldComponent, "export"),
		logging.String("project_id", req.Project.ID),
		logging.String("destination", req.Destination),
		logging.String("codec", string(req.Preset.Codec)),
		logging.String("resolution", req.Preset.Resolution()),
	)

	plan, err := s.builder.Build(ctx, req.Project)
	if err != nil {
		return fail(services.Wrap(services.ErrExport, "export", "export", "composition failed", err))
	}
	if plan.IsEmpty() {
		return fail(services.Wrap(services.ErrExport, "export", "export", "composition produced no segments", nil))
	}

	if s.cancelled() {
		return s.resolveCancelled(req, notify, plan, started)
	}

	s.setState(StateExporting)
	notify.sample(Progress{State: StateExporting, Fraction: 0})

	job, err := s.encoder.Start(ctx, plan, req.Preset, req.Destination)
	if err != nil {
		return fail(services.Wrap(services.ErrExport, "export", "export", "backend refused the encode", err))
	}

	s.mu.Lock()
	s.job = job
	alreadyCancelled := s.cancelRequested
	s.mu.Unlock()
	if alreadyCancelled {
		job.Cancel()
	}

	// Progress poll: a background task sampling the job on a fixed
	// interval, torn down on every exit path before the terminal
	// notification fires.
	pollCtx, stopPoll := context.WithCancel(context.Background())
	var pollWG sync.WaitGroup
	pollWG.Add(1)
	go func() {
		defer pollWG.Done()
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()
		callerDone := ctx.Done()
		for {
			select {
			case <-pollCtx.Done():
				return
			case <-callerDone:
				s.Cancel()
				callerDone = nil
			case <-ticker.C:
				fraction := clampFraction(job.Progress())
				notify.sample(Progress{
					State:              StateExporting,
					Fraction:           fraction,
					EstimatedRemaining: estimateRemaining(started, fraction),
				})
			}
		}
	}()

	encodeErr := job.Wait()
	stopPoll()
	pollWG.Wait()

	s.mu.Lock()
	cancelled := s.cancelRequested
	s.job = nil
	s.mu.Unlock()

	switch {
	case cancelled || errors.Is(encodeErr, services.ErrCancelled):
		return s.resolveCancelled(req, notify, plan, started)
	case encodeErr == nil:
		s.setState(StateCompleted)
		notify.terminal(Progress{State: StateCompleted, Fraction: 1})
		s.logger.Info("export completed",
			logging.String(logging.FieldComponent, "export"),
			logging.String("destination", req.Destination),
			logging.Int("segments", plan.SegmentCount()),
			logging.Duration("elapsed", time.Since(started)),
		)
		return Result{
			State:        StateCompleted,
			Destination:  req.Destination,
			Segments:     plan.SegmentCount(),
			PlanDuration: plan.Duration(),
			Elapsed:      time.Since(started),
		}, nil
	default:
		result, err := fail(services.Wrap(services.ErrExport, "export", "export", "backend encode failed", encodeErr))
		result.Segments = plan.SegmentCount()
		result.PlanDuration = plan.Duration()
		return result, err
	}
}

func (s *Session) resolveCancelled(req Request, notify *notifier, plan *composition.Plan, started time.Time) (Result, error) {
	s.setState(StateCancelled)
	notify.terminal(Progress{State: StateCancelled})
	s.logger.Info("export cancelled",
		logging.String(logging.FieldComponent, "export"),
		logging.String("destination", req.Destination),
		logging.Duration("elapsed", time.Since(started)),
	)
	result := Result{
		State:       StateCancelled,
		Destination: req.Destination,
		Elapsed:     time.Since(started),
	}
	if plan != nil {
		result.Segments = plan.SegmentCount()
		result.PlanDuration = plan.Duration()
	}
	return result, services.Wrap(services.ErrCancelled, "export", "export", "export cancelled", nil)
}

func (s *Session) setState(next State) {
	s.mu.Lock()
	prev := s.state
	s.state = next
	s.mu.Unlock()
	if prev != next {
		s.logger.Debug("session state changed",
			logging.String(logging.FieldComponent, "export"),
			logging.String("from", string(prev)),
			logging.String("to", string(next)),
		)
	}
}

func (s *Session) cancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelRequested
}

// notifier serializes progress delivery and enforces the exactly-one
// terminal notification contract.
type notifier struct {
	fn           ProgressFunc
	mu           sync.Mutex
	lastFraction float64
	terminalSent bool
}

func newNotifier(fn ProgressFunc) *notifier {
	return &notifier{fn: fn}
}

func (n *notifier) sample(p Progress) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.terminalSent {
		return
	}
	n.lastFraction = p.Fraction
	if n.fn != nil {
		n.fn(p)
	}
}

func (n *notifier) terminal(p Progress) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.terminalSent {
		return
	}
	n.terminalSent = true
	if p.State == StateCompleted {
		p.Fraction = 1
	} else if p.Fraction == 0 {
		p.Fraction = n.lastFraction
	}
	if n.fn != nil {
		n.fn(p)
	}
}

func clampFraction(fraction float64) float64 {
	if fraction < 0 {
		return 0
	}
	if fraction > 1 {
		return 1
	}
	return fraction
}

func estimateRemaining(started time.Time, fraction float64) time.Duration {
	if fraction <= 0.01 || fraction >= 1 {
		return 0
	}
	elapsed := time.Since(started)
	return time.Duration(float64(elapsed) * (1 - fraction) / fraction)
}
