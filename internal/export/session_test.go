package export_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cutroom/internal/composition"
	"cutroom/internal/export"
	"cutroom/internal/media"
	"cutroom/internal/services"
	"cutroom/internal/timeline"
)

type stubLoader struct {
	err error
}

func (l stubLoader) Load(_ context.Context, ref string) (media.Asset, error) {
	if l.err != nil {
		return media.Asset{}, l.err
	}
	return media.Asset{
		ID:       "asset-" + ref,
		URL:      ref,
		Duration: 120,
		HasVideo: true,
		HasAudio: true,
		Width:    1920,
		Height:   1080,
	}, nil
}

// fakeJob is a hand-driven encode job. Tests advance its progress and
// decide when and how it finishes.
type fakeJob struct {
	mu           sync.Mutex
	fraction     float64
	err          error
	finished     bool
	cancels      int
	cancelFinish bool
	done         chan struct{}
}

func newFakeJob(cancelFinish bool) *fakeJob {
	return &fakeJob{cancelFinish: cancelFinish, done: make(chan struct{})}
}

func (j *fakeJob) Progress() float64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fraction
}

func (j *fakeJob) setProgress(fraction float64) {
	j.mu.Lock()
	j.fraction = fraction
	j.mu.Unlock()
}

func (j *fakeJob) finish(err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.finished {
		return
	}
	j.finished = true
	j.err = err
	close(j.done)
}

func (j *fakeJob) Wait() error {
	<-j.done
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

func (j *fakeJob) Cancel() {
	j.mu.Lock()
	j.cancels++
	finish := j.cancelFinish && !j.finished
	j.mu.Unlock()
	if finish {
		j.finish(services.Wrap(services.ErrCancelled, "encode", "cancel", "encode stopped", nil))
	}
}

func (j *fakeJob) cancelCount() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.cancels
}

type fakeEncoder struct {
	mu          sync.Mutex
	unsupported bool
	startErr    error
	job         *fakeJob
	starts      int
}

func (e *fakeEncoder) Supports(export.Codec) bool {
	return !e.unsupported
}

func (e *fakeEncoder) Start(_ context.Context, _ *composition.Plan, _ export.Preset, _ string) (export.Job, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.starts++
	if e.startErr != nil {
		return nil, e.startErr
	}
	return e.job, nil
}

func (e *fakeEncoder) startCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.starts
}

// progressLog records every callback delivery for later assertions.
type progressLog struct {
	mu      sync.Mutex
	samples []export.Progress
}

func (l *progressLog) record(p export.Progress) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.samples = append(l.samples, p)
}

func (l *progressLog) snapshot() []export.Progress {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]export.Progress, len(l.samples))
	copy(out, l.samples)
	return out
}

func (l *progressLog) terminalCount() int {
	count := 0
	for _, p := range l.snapshot() {
		if p.State.Terminal() {
			count++
		}
	}
	return count
}

func (l *progressLog) hasExportingSampleAt(fraction float64) bool {
	for _, p := range l.snapshot() {
		if p.State == export.StateExporting && p.Fraction == fraction {
			return true
		}
	}
	return false
}

func sourcedProject(t *testing.T) *timeline.Project {
	t.Helper()
	project, err := timeline.NewProject("render me", timeline.CanvasSize{Width: 1920, Height: 1080}, 30, 48_000)
	if err != nil {
		t.Fatalf("NewProject failed: %v", err)
	}
	trackID, err := project.AddTrack(timeline.TrackVideo)
	if err != nil {
		t.Fatalf("AddTrack failed: %v", err)
	}
	track, _ := project.TrackByID(trackID)
	r, err := timeline.NewTimeRange(0, 5)
	if err != nil {
		t.Fatalf("NewTimeRange failed: %v", err)
	}
	clip, err := timeline.NewClip(timeline.ClipVideo, r, timeline.WithSource("/media/a.mp4"))
	if err != nil {
		t.Fatalf("NewClip failed: %v", err)
	}
	if err := track.AddClip(clip); err != nil {
		t.Fatalf("AddClip failed: %v", err)
	}
	return &project
}

func testPreset() export.Preset {
	return export.Preset{
		Name:            "test",
		Width:           1920,
		Height:          1080,
		FrameRate:       30,
		VideoBitrate:    6_000_000,
		AudioBitrate:    192_000,
		AudioSampleRate: 48_000,
		Codec:           export.CodecH264,
	}
}

func newTestSession(encoder export.Encoder) *export.Session {
	builder := composition.NewBuilder(stubLoader{})
	return export.NewSession(builder, encoder, export.WithPollInterval(2*time.Millisecond))
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		if cond() {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for %s", what)
		default:
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestExportCompletes(t *testing.T) {
	job := newFakeJob(true)
	encoder := &fakeEncoder{job: job}
	session := newTestSession(encoder)
	log := &progressLog{}

	type outcome struct {
		result export.Result
		err    error
	}
	project := sourcedProject(t)
	resultCh := make(chan outcome, 1)
	go func() {
		result, err := session.Export(context.Background(), export.Request{
			Project:     project,
			Preset:      testPreset(),
			Destination: "/tmp/out.mp4",
			OnProgress:  log.record,
		})
		resultCh <- outcome{result, err}
	}()

	waitFor(t, "exporting state", func() bool { return session.State() == export.StateExporting })
	job.setProgress(0.5)
	waitFor(t, "mid-encode progress sample", func() bool { return log.hasExportingSampleAt(0.5) })
	job.finish(nil)

	out := <-resultCh
	if out.err != nil {
		t.Fatalf("Export failed: %v", out.err)
	}
	if out.result.State != export.StateCompleted {
		t.Fatalf("expected completed result, got %s", out.result.State)
	}
	if out.result.Segments != 2 {
		t.Fatalf("expected video plus bridged audio segment, got %d", out.result.Segments)
	}
	if out.result.Destination != "/tmp/out.mp4" {
		t.Fatalf("unexpected destination %q", out.result.Destination)
	}
	if session.State() != export.StateCompleted {
		t.Fatalf("expected session to remain completed, got %s", session.State())
	}

	samples := log.snapshot()
	if len(samples) == 0 {
		t.Fatal("expected progress samples")
	}
	last := samples[len(samples)-1]
	if last.State != export.StateCompleted || last.Fraction != 1 {
		t.Fatalf("expected final sample completed at 1.0, got %+v", last)
	}
	if log.terminalCount() != 1 {
		t.Fatalf("expected exactly one terminal notification, got %d", log.terminalCount())
	}
}

func TestExportRejectsSecondCallWhileBusy(t *testing.T) {
	job := newFakeJob(true)
	encoder := &fakeEncoder{job: job}
	session := newTestSession(encoder)
	firstLog := &progressLog{}

	project := sourcedProject(t)
	errCh := make(chan error, 1)
	go func() {
		_, err := session.Export(context.Background(), export.Request{
			Project:     project,
			Preset:      testPreset(),
			Destination: "/tmp/first.mp4",
			OnProgress:  firstLog.record,
		})
		errCh <- err
	}()

	waitFor(t, "exporting state", func() bool { return session.State() == export.StateExporting })

	_, err := session.Export(context.Background(), export.Request{
		Project:     sourcedProject(t),
		Preset:      testPreset(),
		Destination: "/tmp/second.mp4",
	})
	if !errors.Is(err, services.ErrExport) {
		t.Fatalf("expected export rejection, got %v", err)
	}
	if session.State() != export.StateExporting {
		t.Fatalf("rejection must not disturb the running export, state is %s", session.State())
	}

	job.finish(nil)
	if err := <-errCh; err != nil {
		t.Fatalf("first export should complete cleanly, got %v", err)
	}
	if firstLog.terminalCount() != 1 {
		t.Fatalf("expected one terminal notification for the first export, got %d", firstLog.terminalCount())
	}
}

func TestCancelBeforeCompletionYieldsCancelled(t *testing.T) {
	job := newFakeJob(true)
	encoder := &fakeEncoder{job: job}
	session := newTestSession(encoder)
	log := &progressLog{}

	project := sourcedProject(t)
	errCh := make(chan error, 1)
	go func() {
		_, err := session.Export(context.Background(), export.Request{
			Project:     project,
			Preset:      testPreset(),
			Destination: "/tmp/out.mp4",
			OnProgress:  log.record,
		})
		errCh <- err
	}()

	waitFor(t, "exporting state", func() bool { return session.State() == export.StateExporting })
	session.Cancel()

	err := <-errCh
	if !errors.Is(err, services.ErrCancelled) {
		t.Fatalf("expected cancellation error, got %v", err)
	}
	if session.State() != export.StateCancelled {
		t.Fatalf("expected cancelled state, got %s", session.State())
	}
	if job.cancelCount() == 0 {
		t.Fatal("expected the backend job to receive the cancel signal")
	}
	if log.terminalCount() != 1 {
		t.Fatalf("expected exactly one terminal notification, got %d", log.terminalCount())
	}
	samples := log.snapshot()
	if samples[len(samples)-1].State != export.StateCancelled {
		t.Fatalf("expected terminal cancelled sample, got %+v", samples[len(samples)-1])
	}
}

func TestCancelWinsOverNaturalCompletion(t *testing.T) {
	// The job ignores Cancel and later finishes cleanly; the session must
	// still resolve to cancelled because the request came first.
	job := newFakeJob(false)
	encoder := &fakeEncoder{job: job}
	session := newTestSession(encoder)

	project := sourcedProject(t)
	errCh := make(chan error, 1)
	go func() {
		_, err := session.Export(context.Background(), export.Request{
			Project:     project,
			Preset:      testPreset(),
			Destination: "/tmp/out.mp4",
		})
		errCh <- err
	}()

	waitFor(t, "exporting state", func() bool { return session.State() == export.StateExporting })
	session.Cancel()
	waitFor(t, "cancel delivery", func() bool { return job.cancelCount() > 0 })
	job.finish(nil)

	err := <-errCh
	if !errors.Is(err, services.ErrCancelled) {
		t.Fatalf("expected cancelled outcome, got %v", err)
	}
	if session.State() != export.StateCancelled {
		t.Fatalf("expected cancelled state, got %s", session.State())
	}
}

func TestUnsupportedCodecFailsBeforeStart(t *testing.T) {
	encoder := &fakeEncoder{unsupported: true}
	session := newTestSession(encoder)
	log := &progressLog{}

	_, err := session.Export(context.Background(), export.Request{
		Project:     sourcedProject(t),
		Preset:      testPreset(),
		Destination: "/tmp/out.mp4",
		OnProgress:  log.record,
	})
	if !errors.Is(err, services.ErrExport) {
		t.Fatalf("expected export failure, got %v", err)
	}
	if encoder.startCount() != 0 {
		t.Fatalf("encode must not start for an unsupported codec, saw %d starts", encoder.startCount())
	}
	if session.State() != export.StateFailed {
		t.Fatalf("expected failed state, got %s", session.State())
	}
	if log.terminalCount() != 1 {
		t.Fatalf("expected exactly one terminal notification, got %d", log.terminalCount())
	}
}

func TestCompositionFailureFailsExport(t *testing.T) {
	loadErr := services.Wrap(services.ErrAssetLoad, "media", "probe", "file vanished", nil)
	builder := composition.NewBuilder(stubLoader{err: loadErr})
	encoder := &fakeEncoder{job: newFakeJob(true)}
	session := export.NewSession(builder, encoder, export.WithPollInterval(2*time.Millisecond))

	_, err := session.Export(context.Background(), export.Request{
		Project:     sourcedProject(t),
		Preset:      testPreset(),
		Destination: "/tmp/out.mp4",
	})
	if !errors.Is(err, services.ErrExport) {
		t.Fatalf("expected export failure, got %v", err)
	}
	if !errors.Is(err, services.ErrComposition) {
		t.Fatalf("expected the composition cause to stay visible, got %v", err)
	}
	if encoder.startCount() != 0 {
		t.Fatalf("encode must not start after a failed composition, saw %d starts", encoder.startCount())
	}
	if session.State() != export.StateFailed {
		t.Fatalf("expected failed state, got %s", session.State())
	}
}

func TestEmptyPlanFailsExport(t *testing.T) {
	project, err := timeline.NewProject("empty", timeline.CanvasSize{Width: 1280, Height: 720}, 24, 44_100)
	if err != nil {
		t.Fatalf("NewProject failed: %v", err)
	}
	if _, err := project.AddTrack(timeline.TrackVideo); err != nil {
		t.Fatalf("AddTrack failed: %v", err)
	}

	encoder := &fakeEncoder{job: newFakeJob(true)}
	session := newTestSession(encoder)

	_, err = session.Export(context.Background(), export.Request{
		Project:     &project,
		Preset:      testPreset(),
		Destination: "/tmp/out.mp4",
	})
	if !errors.Is(err, services.ErrExport) {
		t.Fatalf("expected export failure for a segmentless plan, got %v", err)
	}
	if encoder.startCount() != 0 {
		t.Fatalf("encode must not start for an empty plan, saw %d starts", encoder.startCount())
	}
}

func TestCallerContextCancellationCancelsExport(t *testing.T) {
	job := newFakeJob(true)
	encoder := &fakeEncoder{job: job}
	session := newTestSession(encoder)

	ctx, cancel := context.WithCancel(context.Background())
	project := sourcedProject(t)
	errCh := make(chan error, 1)
	go func() {
		_, err := session.Export(ctx, export.Request{
			Project:     project,
			Preset:      testPreset(),
			Destination: "/tmp/out.mp4",
		})
		errCh <- err
	}()

	waitFor(t, "exporting state", func() bool { return session.State() == export.StateExporting })
	cancel()

	err := <-errCh
	if !errors.Is(err, services.ErrCancelled) {
		t.Fatalf("expected cancellation via caller context, got %v", err)
	}
	if session.State() != export.StateCancelled {
		t.Fatalf("expected cancelled state, got %s", session.State())
	}
}

func TestCancelOnIdleSessionIsNoOp(t *testing.T) {
	session := newTestSession(&fakeEncoder{job: newFakeJob(true)})
	session.Cancel()
	if session.State() != export.StateIdle {
		t.Fatalf("cancel on an idle session must not change state, got %s", session.State())
	}
}
