package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"cutroom/internal/composition"
	"cutroom/internal/config"
	"cutroom/internal/export"
	"cutroom/internal/library"
	"cutroom/internal/logging"
	"cutroom/internal/media"
	"cutroom/internal/services"
	"cutroom/internal/timeline"
)

var (
	errExportBusy = errors.New("an export is already running")
	errNoExport   = errors.New("no active export")
)

// exportManager owns at most one export at a time on behalf of the HTTP
// surface. Sessions are single use, so each start builds a fresh one; the
// manager keeps the last observable status for polling clients.
type exportManager struct {
	cfg     *config.Config
	library *library.Store
	loader  media.Loader
	encoder export.Encoder
	logger  *slog.Logger

	mu      sync.Mutex
	session *export.Session
	status  ExportStatus
	active  bool
	seen    bool
}

func newExportManager(cfg *config.Config, lib *library.Store, loader media.Loader, encoder export.Encoder, logger *slog.Logger) *exportManager {
	return &exportManager{
		cfg:     cfg,
		library: lib,
		loader:  loader,
		encoder: encoder,
		logger:  logger,
	}
}

// Start launches an export in the background and returns its initial
// status. Only one export runs at a time.
func (m *exportManager) Start(project *timeline.Project, codecName, destination string) (ExportStatus, error) {
	preset := export.PresetForProject(project, m.cfg)
	if codecName != "" {
		codec, ok := export.ParseCodec(codecName)
		if !ok {
			return ExportStatus{}, services.Wrap(services.ErrValidation, "api", "start export",
				"unknown codec "+codecName, nil)
		}
		if !m.cfg.CodecEnabled(string(codec)) {
			return ExportStatus{}, services.Wrap(services.ErrValidation, "api", "start export",
				"codec "+string(codec)+" is not enabled", nil)
		}
		preset.Codec = codec
	}

	m.mu.Lock()
	if m.active {
		m.mu.Unlock()
		return ExportStatus{}, errExportBusy
	}
	builder := composition.NewBuilder(m.loader, composition.WithLogger(m.logger))
	session := export.NewSession(builder, m.encoder,
		export.WithPollInterval(m.cfg.PollInterval()),
		export.WithSessionLogger(m.logger),
	)
	m.session = session
	m.active = true
	m.seen = true
	m.status = ExportStatus{
		ProjectID:   project.ID,
		ProjectName: project.Name,
		Destination: destination,
		State:       string(export.StatePreparing),
	}
	status := m.status
	m.mu.Unlock()

	go m.run(session, project, preset, destination)
	return status, nil
}

func (m *exportManager) run(session *export.Session, project *timeline.Project, preset export.Preset, destination string) {
	started := time.Now().UTC()
	result, err := session.Export(context.Background(), export.Request{
		Project:     project,
		Preset:      preset,
		Destination: destination,
		OnProgress:  m.observe,
	})
	finished := time.Now().UTC()

	m.mu.Lock()
	m.active = false
	m.session = nil
	m.status.State = string(result.State)
	if err != nil && !errors.Is(err, services.ErrCancelled) {
		m.status.Error = err.Error()
	}
	m.mu.Unlock()

	run := library.ExportRun{
		ProjectID:    project.ID,
		Destination:  destination,
		State:        string(result.State),
		Codec:        string(preset.Codec),
		SegmentCount: result.Segments,
		PlanDuration: result.PlanDuration,
		Elapsed:      result.Elapsed,
		StartedAt:    started,
		FinishedAt:   finished,
	}
	if err != nil && !errors.Is(err, services.ErrCancelled) {
		run.ErrorText = err.Error()
	}
	if _, recErr := m.library.RecordExport(context.Background(), run); recErr != nil {
		m.logger.Warn("failed to record export history",
			logging.String(logging.FieldComponent, "api"),
			logging.Error(recErr),
		)
	}
}

func (m *exportManager) observe(p export.Progress) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status.State = string(p.State)
	m.status.Fraction = p.Fraction
	m.status.EstimatedRemaining = p.EstimatedRemaining.Milliseconds()
}

// Status returns the latest export status; the second return is false
// until the first export starts.
func (m *exportManager) Status() (ExportStatus, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status, m.seen
}

// Cancel signals the running session, if any.
func (m *exportManager) Cancel() error {
	m.mu.Lock()
	session := m.session
	m.mu.Unlock()
	if session == nil {
		return errNoExport
	}
	session.Cancel()
	return nil
}

// Active reports whether an export is in flight.
func (m *exportManager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

func startExportHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, err := cfg.Library.FindProject(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		var req StartExportRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		destination := req.Destination
		if destination == "" {
			destination = export.DefaultDestination(cfg.Config, project)
		}

		status, err := cfg.exports.Start(project, req.Codec, destination)
		if errors.Is(err, errExportBusy) {
			WriteError(w, http.StatusConflict, err.Error(), "EXPORT_BUSY")
			return
		}
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusAccepted, status)
	}
}

func exportStatusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		status, ok := cfg.exports.Status()
		if !ok {
			WriteError(w, http.StatusNotFound, "no export has run yet", "NOT_FOUND")
			return
		}
		WriteJSON(w, http.StatusOK, status)
	}
}

func cancelExportHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if err := cfg.exports.Cancel(); err != nil {
			WriteError(w, http.StatusConflict, err.Error(), "NO_ACTIVE_EXPORT")
			return
		}
		status, _ := cfg.exports.Status()
		WriteJSON(w, http.StatusAccepted, status)
	}
}

func exportHistoryHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, err := cfg.Library.FindProject(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		runs, err := cfg.Library.ListExports(r.Context(), project.ID, 0)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		resp := ExportRunsResponse{Runs: make([]ExportRunResponse, 0, len(runs))}
		for _, run := range runs {
			resp.Runs = append(resp.Runs, ExportRunResponse{
				ID:           run.ID,
				ProjectID:    run.ProjectID,
				Destination:  run.Destination,
				State:        run.State,
				Codec:        run.Codec,
				SegmentCount: run.SegmentCount,
				PlanDuration: run.PlanDuration,
				ElapsedMS:    run.Elapsed.Milliseconds(),
				Error:        run.ErrorText,
				StartedAt:    run.StartedAt,
				FinishedAt:   run.FinishedAt,
			})
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func planHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, err := cfg.Library.FindProject(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		builder := composition.NewBuilder(cfg.Loader, composition.WithLogger(cfg.Logger))
		plan, err := builder.Build(r.Context(), project)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, plan)
	}
}
