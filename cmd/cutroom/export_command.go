package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"cutroom/internal/composition"
	"cutroom/internal/config"
	"cutroom/internal/export"
	"cutroom/internal/export/ffmpeg"
	"cutroom/internal/library"
	"cutroom/internal/logging"
	"cutroom/internal/media"
	"cutroom/internal/services"
	"cutroom/internal/timeline"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var (
		codecName   string
		destination string
	)

	cmd := &cobra.Command{
		Use:   "export <project>",
		Short: "Render a project through the ffmpeg backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return ctx.withProject(runCtx, args[0], func(cfg *config.Config, store *library.Store, project *timeline.Project) (bool, error) {
				preset := export.PresetForProject(project, cfg)
				if codecName != "" {
					codec, ok := export.ParseCodec(codecName)
					if !ok {
						return false, services.Wrap(services.ErrValidation, "cli", "export",
							"unknown codec "+codecName, nil)
					}
					if !cfg.CodecEnabled(string(codec)) {
						return false, services.Wrap(services.ErrValidation, "cli", "export",
							"codec "+string(codec)+" is disabled in configuration", nil)
					}
					preset.Codec = codec
				}

				dest := destination
				if dest == "" {
					dest = export.DefaultDestination(cfg, project)
				}

				// Log to file only; stdout belongs to the progress line.
				logPath := filepath.Join(cfg.Paths.LogDir, "cutroom.log")
				logger, err := logging.New(logging.Options{
					Level:            cfg.Logging.Level,
					Format:           cfg.Logging.Format,
					OutputPaths:      []string{logPath},
					ErrorOutputPaths: []string{logPath},
				})
				if err != nil {
					return false, err
				}

				loader := media.NewProbeLoader(cfg.FFprobeBinary(), logger)
				builder := composition.NewBuilder(loader, composition.WithLogger(logger))
				encoder := ffmpeg.NewEncoder(
					ffmpeg.WithBinary(cfg.FFmpegBinary()),
					ffmpeg.WithLogger(logger),
				)
				session := export.NewSession(builder, encoder,
					export.WithPollInterval(cfg.PollInterval()),
					export.WithSessionLogger(logger),
				)

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Exporting %s to %s (%s, %s)\n",
					project.Name, dest, preset.Codec, preset.Resolution())

				printer := newProgressPrinter(out)
				started := time.Now().UTC()
				result, exportErr := session.Export(runCtx, export.Request{
					Project:     project,
					Preset:      preset,
					Destination: dest,
					OnProgress:  printer.observe,
				})
				printer.flush()
				recordExportRun(cmd, store, project.ID, preset, dest, result, exportErr, started)

				switch {
				case exportErr == nil:
					fmt.Fprintf(out, "Export completed: %s (%d segments, %s program, %s)\n",
						result.Destination, result.Segments,
						formatSeconds(result.PlanDuration), result.Elapsed.Round(time.Millisecond))
					return false, nil
				case errors.Is(exportErr, services.ErrCancelled):
					fmt.Fprintf(out, "Export cancelled after %s\n", result.Elapsed.Round(time.Millisecond))
					return false, nil
				default:
					return false, exportErr
				}
			})
		},
	}

	cmd.Flags().StringVarP(&destination, "out", "o", "", "Output file path (defaults to the output directory)")
	cmd.Flags().StringVar(&codecName, "codec", "", "Video codec for this export (defaults to configuration)")
	return cmd
}

func recordExportRun(cmd *cobra.Command, store *library.Store, projectID string, preset export.Preset, destination string, result export.Result, exportErr error, started time.Time) {
	run := library.ExportRun{
		ProjectID:    projectID,
		Destination:  destination,
		State:        string(result.State),
		Codec:        string(preset.Codec),
		SegmentCount: result.Segments,
		PlanDuration: result.PlanDuration,
		Elapsed:      result.Elapsed,
		StartedAt:    started,
		FinishedAt:   time.Now().UTC(),
	}
	if exportErr != nil && !errors.Is(exportErr, services.ErrCancelled) {
		run.ErrorText = exportErr.Error()
	}
	// History is best effort and must survive a cancelled command context.
	if _, err := store.RecordExport(context.Background(), run); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: could not record export history: %v\n", err)
	}
}

// progressPrinter renders progress samples as an in-place terminal line, or
// as bucket-sampled plain lines when stdout is not a terminal.
type progressPrinter struct {
	out     io.Writer
	tty     bool
	sampler *logging.ProgressSampler
	wrote   bool
}

func newProgressPrinter(out io.Writer) *progressPrinter {
	return &progressPrinter{
		out:     out,
		tty:     shouldColorize(out),
		sampler: logging.NewProgressSampler(5),
	}
}

func (p *progressPrinter) observe(sample export.Progress) {
	if sample.State.Terminal() {
		return
	}
	percent := sample.Fraction * 100
	if p.tty {
		line := fmt.Sprintf("\r%-9s %5.1f%%", sample.State, percent)
		if sample.EstimatedRemaining > 0 {
			line += fmt.Sprintf("  about %s left", sample.EstimatedRemaining.Round(time.Second))
		}
		fmt.Fprint(p.out, line)
		p.wrote = true
		return
	}
	if p.sampler.ShouldLog(percent, string(sample.State), "") {
		fmt.Fprintf(p.out, "%s %.0f%%\n", sample.State, percent)
	}
}

// flush ends the in-place line so later output starts on a fresh row.
func (p *progressPrinter) flush() {
	if p.tty && p.wrote {
		fmt.Fprintln(p.out)
	}
}
