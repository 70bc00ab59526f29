package httpapi

import (
	"time"

	"cutroom/internal/logging"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HealthResponse reports server liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

// StatusResponse summarizes library and export state.
type StatusResponse struct {
	State        string          `json:"state"`
	ProjectCount int             `json:"projectCount"`
	LibraryPath  string          `json:"libraryPath"`
	Export       *ExportStatus   `json:"export,omitempty"`
	Preflight    []CheckResponse `json:"preflight,omitempty"`
}

// CheckResponse is one preflight check outcome.
type CheckResponse struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// ProjectSummary is one library listing row.
type ProjectSummary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Duration   float64   `json:"duration"`
	TrackCount int       `json:"trackCount"`
	ClipCount  int       `json:"clipCount"`
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// ProjectsResponse lists library projects.
type ProjectsResponse struct {
	Projects []ProjectSummary `json:"projects"`
}

// CreateProjectRequest creates a project; zero values fall back to the
// configured project defaults.
type CreateProjectRequest struct {
	Name            string  `json:"name"`
	CanvasWidth     int     `json:"canvasWidth,omitempty"`
	CanvasHeight    int     `json:"canvasHeight,omitempty"`
	FPS             float64 `json:"fps,omitempty"`
	AudioSampleRate int     `json:"audioSampleRate,omitempty"`
}

// AddTrackRequest adds a track to a project.
type AddTrackRequest struct {
	Kind string `json:"kind"`
}

// AddTrackResponse returns the new track identifier.
type AddTrackResponse struct {
	TrackID string `json:"trackId"`
}

// AddClipRequest appends a clip to a track.
type AddClipRequest struct {
	TrackID  string  `json:"trackId"`
	Kind     string  `json:"kind"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Source   string  `json:"source,omitempty"`
	Text     string  `json:"text,omitempty"`
	Muted    bool    `json:"muted,omitempty"`
}

// AddClipResponse returns the new clip identifier.
type AddClipResponse struct {
	ClipID string `json:"clipId"`
}

// SplitClipRequest splits a clip at an offset from its own start.
type SplitClipRequest struct {
	Offset float64 `json:"offset"`
}

// SplitClipResponse names the two clips that replaced the original.
type SplitClipResponse struct {
	FirstClipID  string `json:"firstClipId"`
	SecondClipID string `json:"secondClipId"`
}

// TrimClipRequest replaces a clip's time range.
type TrimClipRequest struct {
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// StartExportRequest launches an export for a project.
type StartExportRequest struct {
	Destination string `json:"destination,omitempty"`
	Codec       string `json:"codec,omitempty"`
}

// ExportStatus mirrors the session's observable state.
type ExportStatus struct {
	ProjectID          string  `json:"projectId"`
	ProjectName        string  `json:"projectName"`
	Destination        string  `json:"destination"`
	State              string  `json:"state"`
	Fraction           float64 `json:"fraction"`
	EstimatedRemaining int64   `json:"estimatedRemainingMs"`
	Error              string  `json:"error,omitempty"`
}

// ExportRunResponse is one export history row.
type ExportRunResponse struct {
	ID           int64     `json:"id"`
	ProjectID    string    `json:"projectId"`
	Destination  string    `json:"destination"`
	State        string    `json:"state"`
	Codec        string    `json:"codec"`
	SegmentCount int       `json:"segmentCount"`
	PlanDuration float64   `json:"planDuration"`
	ElapsedMS    int64     `json:"elapsedMs"`
	Error        string    `json:"error,omitempty"`
	StartedAt    time.Time `json:"startedAt"`
	FinishedAt   time.Time `json:"finishedAt"`
}

// ExportRunsResponse lists export history.
type ExportRunsResponse struct {
	Runs []ExportRunResponse `json:"runs"`
}

// LogStreamResponse pages buffered log events; Next is the cursor for the
// following request.
type LogStreamResponse struct {
	Events []logging.LogEvent `json:"events"`
	Next   uint64             `json:"next"`
}
