package preflight

import (
	"context"

	"cutroom/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// RunAll executes every applicable check for the given config: directory
// access, external binaries, and encoder capability for each enabled
// codec.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Library directory", cfg.Paths.LibraryDir),
		CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir),
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckBinary("FFmpeg", cfg.FFmpegBinary(), "renders export plans"),
		CheckBinary("FFprobe", cfg.FFprobeBinary(), "inspects source media"),
	}
	results = append(results, CheckCodecs(ctx, cfg)...)
	return results
}

// Passed reports whether every result passed.
func Passed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}
