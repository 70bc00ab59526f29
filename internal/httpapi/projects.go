package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cutroom/internal/library"
	"cutroom/internal/services"
	"cutroom/internal/timeline"
)

// serviceStatus maps service error markers onto an HTTP status and a
// machine-readable code for the error envelope.
func serviceStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, services.ErrInvalidTimeRange):
		return http.StatusBadRequest, "INVALID_TIME_RANGE"
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, services.ErrComposition), errors.Is(err, services.ErrAssetLoad):
		return http.StatusUnprocessableEntity, "COMPOSITION_FAILED"
	case errors.Is(err, services.ErrExport):
		return http.StatusInternalServerError, "EXPORT_FAILED"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	status, code := serviceStatus(err)
	WriteError(w, status, err.Error(), code)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), "INVALID_BODY")
		return false
	}
	return true
}

func projectSummary(rec library.ProjectRecord) ProjectSummary {
	return ProjectSummary{
		ID:         rec.ID,
		Name:       rec.Name,
		Duration:   rec.Duration,
		TrackCount: rec.TrackCount,
		ClipCount:  rec.ClipCount,
		CreatedAt:  rec.CreatedAt,
		ModifiedAt: rec.ModifiedAt,
	}
}

func listProjectsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := cfg.Library.ListProjects(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		resp := ProjectsResponse{Projects: make([]ProjectSummary, 0, len(records))}
		for _, rec := range records {
			resp.Projects = append(resp.Projects, projectSummary(rec))
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func createProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateProjectRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Name == "" {
			WriteError(w, http.StatusBadRequest, "project name is required", "VALIDATION_ERROR")
			return
		}

		defaults := cfg.Config.Project
		canvas := timeline.CanvasSize{Width: defaults.CanvasWidth, Height: defaults.CanvasHeight}
		if req.CanvasWidth > 0 {
			canvas.Width = req.CanvasWidth
		}
		if req.CanvasHeight > 0 {
			canvas.Height = req.CanvasHeight
		}
		fps := defaults.FrameRate
		if req.FPS > 0 {
			fps = req.FPS
		}
		sampleRate := defaults.SampleRate
		if req.AudioSampleRate > 0 {
			sampleRate = req.AudioSampleRate
		}

		project, err := timeline.NewProject(req.Name, canvas, fps, sampleRate)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if err := cfg.Library.SaveProject(r.Context(), &project); err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, project)
	}
}

func getProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, err := cfg.Library.FindProject(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, project)
	}
}

func deleteProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, err := cfg.Library.FindProject(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if err := cfg.Library.DeleteProject(r.Context(), project.ID); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func addTrackHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, err := cfg.Library.FindProject(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		var req AddTrackRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		kind, ok := timeline.ParseTrackKind(req.Kind)
		if !ok {
			WriteError(w, http.StatusBadRequest, "unknown track kind "+req.Kind, "VALIDATION_ERROR")
			return
		}
		trackID, err := project.AddTrack(kind)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if err := cfg.Library.SaveProject(r.Context(), project); err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, AddTrackResponse{TrackID: trackID})
	}
}

func addClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, err := cfg.Library.FindProject(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		var req AddClipRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		kind, ok := timeline.ParseClipKind(req.Kind)
		if !ok {
			WriteError(w, http.StatusBadRequest, "unknown clip kind "+req.Kind, "VALIDATION_ERROR")
			return
		}
		track, ok := project.TrackByID(req.TrackID)
		if !ok {
			WriteError(w, http.StatusNotFound, "track "+req.TrackID+" not found", "NOT_FOUND")
			return
		}

		timeRange, err := timeline.NewTimeRange(req.Start, req.Duration)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		opts := make([]timeline.ClipOption, 0, 3)
		if req.Source != "" {
			opts = append(opts, timeline.WithSource(req.Source))
		}
		if kind == timeline.ClipText {
			opts = append(opts, timeline.WithText(timeline.TextContent{Text: req.Text}))
		}
		if req.Muted {
			opts = append(opts, timeline.WithMuted(true))
		}
		clip, err := timeline.NewClip(kind, timeRange, opts...)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if err := track.AddClip(clip); err != nil {
			writeServiceError(w, err)
			return
		}
		project.Touch()
		if err := cfg.Library.SaveProject(r.Context(), project); err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, AddClipResponse{ClipID: clip.ID})
	}
}

func splitClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, err := cfg.Library.FindProject(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		var req SplitClipRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		first, second, err := project.SplitClip(chi.URLParam(r, "clipId"), req.Offset)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if err := cfg.Library.SaveProject(r.Context(), project); err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, SplitClipResponse{
			FirstClipID:  first.ID,
			SecondClipID: second.ID,
		})
	}
}

func trimClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, err := cfg.Library.FindProject(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		var req TrimClipRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		clipID := chi.URLParam(r, "clipId")
		if err := project.TrimClip(clipID, req.Start, req.Duration); err != nil {
			writeServiceError(w, err)
			return
		}
		if err := cfg.Library.SaveProject(r.Context(), project); err != nil {
			writeServiceError(w, err)
			return
		}
		track, index, _ := project.FindClip(clipID)
		WriteJSON(w, http.StatusOK, track.Clips[index])
	}
}
