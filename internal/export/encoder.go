package export

import (
	"context"

	"cutroom/internal/composition"
)

// Job is a handle on one running encode. Progress is pollable at any time;
// Wait blocks until the encode reaches a terminal status and returns nil
// for completion, a cancellation error when stopped, or the backend
// failure otherwise.
type Job interface {
	Progress() float64
	Wait() error
	Cancel()
}

// Encoder is the backend collaborator that turns a segment plan into an
// output file.
type Encoder interface {
	// Supports reports whether the codec is usable in the current
	// environment. Sessions fail fast on unsupported codecs before any
	// encode work starts.
	Supports(codec Codec) bool

	// Start launches the encode and returns immediately with a Job handle.
	Start(ctx context.Context, plan *composition.Plan, preset Preset, destination string) (Job, error)
}
