package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"cutroom/internal/config"
	"cutroom/internal/library"
	"cutroom/internal/timeline"
)

func newNewCommand(ctx *commandContext) *cobra.Command {
	var width, height, sampleRate int
	var fps float64

	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(cfg *config.Config, store *library.Store) error {
				canvas := timeline.CanvasSize{Width: cfg.Project.CanvasWidth, Height: cfg.Project.CanvasHeight}
				if width > 0 {
					canvas.Width = width
				}
				if height > 0 {
					canvas.Height = height
				}
				frameRate := cfg.Project.FrameRate
				if fps > 0 {
					frameRate = fps
				}
				rate := cfg.Project.SampleRate
				if sampleRate > 0 {
					rate = sampleRate
				}

				project, err := timeline.NewProject(args[0], canvas, frameRate, rate)
				if err != nil {
					return err
				}
				if err := store.SaveProject(cmd.Context(), &project); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created project %s (%s, %dx%d @ %g fps)\n",
					project.Name, project.ID, canvas.Width, canvas.Height, frameRate)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&width, "width", 0, "Canvas width in pixels")
	cmd.Flags().IntVar(&height, "height", 0, "Canvas height in pixels")
	cmd.Flags().Float64Var(&fps, "fps", 0, "Frame rate")
	cmd.Flags().IntVar(&sampleRate, "sample-rate", 0, "Audio sample rate in Hz")
	return cmd
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var exportsFor string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List library projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(cfg *config.Config, store *library.Store) error {
				if exportsFor != "" {
					return listExportRuns(cmd, store, exportsFor, asJSON)
				}

				records, err := store.ListProjects(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, records)
				}
				if len(records) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Library is empty")
					return nil
				}

				rows := make([][]string, 0, len(records))
				for _, rec := range records {
					rows = append(rows, []string{
						rec.ID,
						rec.Name,
						formatSeconds(rec.Duration),
						strconv.Itoa(rec.TrackCount),
						strconv.Itoa(rec.ClipCount),
						rec.ModifiedAt.Local().Format("2006-01-02 15:04"),
					})
				}
				table := renderTable(
					[]string{"ID", "Name", "Duration", "Tracks", "Clips", "Modified"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&exportsFor, "exports", "", "List export history for the given project instead")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func listExportRuns(cmd *cobra.Command, store *library.Store, ref string, asJSON bool) error {
	project, err := store.FindProject(cmd.Context(), ref)
	if err != nil {
		return err
	}
	runs, err := store.ListExports(cmd.Context(), project.ID, 0)
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(cmd, runs)
	}
	if len(runs) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No exports recorded for %s\n", project.Name)
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		detail := run.Destination
		if run.ErrorText != "" {
			detail = run.ErrorText
		}
		rows = append(rows, []string{
			strconv.FormatInt(run.ID, 10),
			run.State,
			run.Codec,
			formatSeconds(run.PlanDuration),
			run.Elapsed.Round(time.Millisecond).String(),
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			detail,
		})
	}
	table := renderTable(
		[]string{"Run", "State", "Codec", "Plan", "Elapsed", "Started", "Output"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
	)
	fmt.Fprintln(cmd.OutOrStdout(), table)
	return nil
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <project>",
		Short: "Show a project's timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(cmd.Context(), args[0], func(cfg *config.Config, store *library.Store, project *timeline.Project) (bool, error) {
				if asJSON {
					return false, writeJSON(cmd, project)
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader(project.Name, colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintf(out, "ID:          %s\n", project.ID)
				fmt.Fprintf(out, "Canvas:      %dx%d @ %g fps\n",
					project.CanvasSize.Width, project.CanvasSize.Height, project.FPS)
				fmt.Fprintf(out, "Sample rate: %d Hz\n", project.AudioSampleRate)
				fmt.Fprintf(out, "Duration:    %s\n", formatSeconds(project.TotalDuration()))
				fmt.Fprintf(out, "Modified:    %s\n", project.ModifiedAt.Local().Format(time.RFC1123))

				if len(project.Tracks) == 0 {
					fmt.Fprintln(out, "\nNo tracks yet")
					return false, nil
				}

				for i := range project.Tracks {
					track := &project.Tracks[i]
					fmt.Fprintf(out, "\nTrack %s (%s, %d clips, muted %s, locked %s)\n",
						track.ID, track.Kind, len(track.Clips), yesNo(track.IsMuted), yesNo(track.IsLocked))
					if len(track.Clips) == 0 {
						continue
					}
					rows := make([][]string, 0, len(track.Clips))
					for j := range track.Clips {
						clip := &track.Clips[j]
						rows = append(rows, []string{
							clip.ID,
							string(clip.Kind),
							formatSeconds(clip.TimeRange.Start),
							formatSeconds(clip.TimeRange.Duration),
							clipSourceLabel(clip),
						})
					}
					table := renderTable(
						[]string{"Clip", "Kind", "Start", "Duration", "Source"},
						rows,
						[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
					)
					fmt.Fprintln(out, table)
				}

				if len(project.Transitions) > 0 {
					fmt.Fprintf(out, "\nTransitions: %d\n", len(project.Transitions))
				}
				return false, nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the project document as JSON")
	return cmd
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <project>",
		Short: "Delete a project and its export history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(cfg *config.Config, store *library.Store) error {
				project, err := store.FindProject(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if err := store.DeleteProject(cmd.Context(), project.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %s (%s)\n", project.Name, project.ID)
				return nil
			})
		},
	}
}

func clipSourceLabel(clip *timeline.Clip) string {
	switch {
	case clip.Kind == timeline.ClipText && clip.TextContent != nil:
		return strconv.Quote(clip.TextContent.Text)
	case clip.Kind == timeline.ClipCompound:
		return fmt.Sprintf("compound (%d tracks)", len(clip.SubTimeline))
	case clip.Source != nil:
		return clip.Source.Ref()
	default:
		return ""
	}
}

func formatSeconds(seconds float64) string {
	return formatNumber(seconds) + "s"
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
