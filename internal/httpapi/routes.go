package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"cutroom/internal/preflight"
)

// NewRouter builds the HTTP route table. The configuration is normalized
// first, so zero-value collaborators fall back to the real ffmpeg-backed
// implementations.
func NewRouter(cfg ServerConfig) *chi.Mux {
	cfg = cfg.normalized()

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))
	r.Get("/status", statusHandler(cfg))

	r.Route("/projects", func(r chi.Router) {
		r.Get("/", listProjectsHandler(cfg))
		r.Post("/", createProjectHandler(cfg))
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", getProjectHandler(cfg))
			r.Delete("/", deleteProjectHandler(cfg))
			r.Post("/tracks", addTrackHandler(cfg))
			r.Post("/clips", addClipHandler(cfg))
			r.Post("/clips/{clipId}/split", splitClipHandler(cfg))
			r.Post("/clips/{clipId}/trim", trimClipHandler(cfg))
			r.Get("/plan", planHandler(cfg))
			r.Post("/export", startExportHandler(cfg))
			r.Get("/exports", exportHistoryHandler(cfg))
		})
	})

	r.Get("/export", exportStatusHandler(cfg))
	r.Post("/export/cancel", cancelExportHandler(cfg))
	r.Get("/logs", logsHandler(cfg))

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: cfg.Version,
			UptimeS: int64(time.Since(cfg.StartTime).Seconds()),
		})
	}
}

func statusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := cfg.Library.ListProjects(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := StatusResponse{
			State:        "idle",
			ProjectCount: len(records),
			LibraryPath:  cfg.Library.Path(),
		}
		if cfg.exports.Active() {
			resp.State = "exporting"
		}
		if status, ok := cfg.exports.Status(); ok {
			resp.Export = &status
		}
		for _, check := range preflight.RunAll(r.Context(), cfg.Config) {
			resp.Preflight = append(resp.Preflight, CheckResponse{
				Name:   check.Name,
				Passed: check.Passed,
				Detail: check.Detail,
			})
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}
