// Package services defines the shared error taxonomy and context annotations
// used across cutroom components.
//
// The sentinel errors classify failures at component boundaries: temporal
// validation (ErrInvalidTimeRange), media resolution (ErrAssetLoad), plan
// construction (ErrComposition), export orchestration (ErrExport), and
// cooperative cancellation (ErrCancelled). Wrap attaches component and
// operation context while preserving both the marker and the underlying
// cause for errors.Is classification.
package services
