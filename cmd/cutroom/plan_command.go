package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"cutroom/internal/composition"
	"cutroom/internal/config"
	"cutroom/internal/library"
	"cutroom/internal/media"
	"cutroom/internal/timeline"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "plan <project>",
		Short: "Lower a project into its export segment plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(cmd.Context(), args[0], func(cfg *config.Config, _ *library.Store, project *timeline.Project) (bool, error) {
				loader := media.NewProbeLoader(cfg.FFprobeBinary(), nil)
				builder := composition.NewBuilder(loader)
				plan, err := builder.Build(cmd.Context(), project)
				if err != nil {
					return false, err
				}
				if asJSON {
					return false, writeJSON(cmd, plan)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Plan for %s: %d segments, %s\n",
					project.Name, plan.SegmentCount(), formatSeconds(plan.Duration()))

				renderSegments(cmd, "Video", plan.Video)
				renderSegments(cmd, "Audio", plan.Audio)

				if len(plan.Passthrough) > 0 {
					fmt.Fprintf(out, "\nPassthrough tracks: %d (resolved by the backend)\n", len(plan.Passthrough))
				}
				for _, skipped := range plan.Skipped {
					fmt.Fprintf(out, "Skipped clip %s: %s\n", skipped.ClipID, skipped.Reason)
				}
				return false, nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the plan as JSON")
	return cmd
}

func renderSegments(cmd *cobra.Command, label string, segments []composition.Segment) {
	if len(segments) == 0 {
		return
	}
	rows := make([][]string, 0, len(segments))
	for i, seg := range segments {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			formatSeconds(seg.Start),
			formatSeconds(seg.Duration),
			seg.AssetPath,
			formatSeconds(seg.SourceStart),
		})
	}
	table := renderTable(
		[]string{"#", "At", "Duration", "Source", "Offset"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignLeft, alignRight},
	)
	fmt.Fprintf(cmd.OutOrStdout(), "\n%s program\n%s\n", label, table)
}
