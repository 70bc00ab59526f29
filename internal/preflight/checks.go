package preflight

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"

	"cutroom/internal/config"
	"cutroom/internal/export"
	"cutroom/internal/export/ffmpeg"
)

// CheckDirectoryAccess verifies that the directory exists and is
// readable, writable, and traversable.
func CheckDirectoryAccess(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckBinary verifies that an external command resolves on PATH or at
// its configured location.
func CheckBinary(name, command, purpose string) Result {
	command = strings.TrimSpace(command)
	if command == "" {
		return Result{Name: name, Detail: "command not configured"}
	}
	resolved, err := exec.LookPath(command)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("binary %q not found (%s)", command, purpose)}
	}
	return Result{Name: name, Passed: true, Detail: resolved}
}

// CheckCodecs probes the ffmpeg build once per enabled codec so exports
// fail in preflight rather than mid-session.
func CheckCodecs(_ context.Context, cfg *config.Config) []Result {
	enc := ffmpeg.NewEncoder(ffmpeg.WithBinary(cfg.FFmpegBinary()))
	results := make([]Result, 0, len(cfg.Export.EnabledCodecs))
	for _, name := range cfg.Export.EnabledCodecs {
		display := fmt.Sprintf("Codec %s", name)
		codec, ok := export.ParseCodec(name)
		if !ok {
			results = append(results, Result{Name: display, Detail: fmt.Sprintf("unknown codec %q", name)})
			continue
		}
		if !enc.Supports(codec) {
			results = append(results, Result{Name: display, Detail: "not available in this ffmpeg build"})
			continue
		}
		results = append(results, Result{Name: display, Passed: true, Detail: "encoder available"})
	}
	return results
}
