package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidTimeRange = errors.New("invalid time range")
	ErrAssetLoad        = errors.New("asset load failed")
	ErrComposition      = errors.New("composition failed")
	ErrExport           = errors.New("export failed")
	ErrCancelled        = errors.New("cancelled")
	ErrValidation       = errors.New("validation error")
	ErrConfiguration    = errors.New("configuration error")
	ErrNotFound         = errors.New("not found")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrValidation
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Terminal reports whether the error represents a deliberate stop rather
// than a failure. Cancellation is terminal but not a fault.
func Terminal(err error) bool {
	return errors.Is(err, ErrCancelled)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
