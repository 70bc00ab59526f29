package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cutroom/internal/config"
	"cutroom/internal/library"
	"cutroom/internal/timeline"
)

func newTrackCommand(ctx *commandContext) *cobra.Command {
	trackCmd := &cobra.Command{
		Use:   "track",
		Short: "Manage project tracks",
	}
	trackCmd.AddCommand(newTrackAddCommand(ctx))
	return trackCmd
}

func newTrackAddCommand(ctx *commandContext) *cobra.Command {
	var kindFlag string

	cmd := &cobra.Command{
		Use:   "add <project>",
		Short: "Add a track to a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := timeline.ParseTrackKind(kindFlag)
			if !ok {
				return fmt.Errorf("unknown track kind %q (one of %v)", kindFlag, timeline.AllTrackKinds())
			}
			return ctx.withProject(cmd.Context(), args[0], func(_ *config.Config, _ *library.Store, project *timeline.Project) (bool, error) {
				trackID, err := project.AddTrack(kind)
				if err != nil {
					return false, err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s track %s\n", kind, trackID)
				return true, nil
			})
		},
	}

	cmd.Flags().StringVarP(&kindFlag, "kind", "k", "video", "Track kind (video, audio, overlay, subtitle, effect)")
	return cmd
}

func newClipCommand(ctx *commandContext) *cobra.Command {
	clipCmd := &cobra.Command{
		Use:   "clip",
		Short: "Edit clips on the timeline",
	}
	clipCmd.AddCommand(newClipAddCommand(ctx))
	clipCmd.AddCommand(newClipSplitCommand(ctx))
	clipCmd.AddCommand(newClipTrimCommand(ctx))
	clipCmd.AddCommand(newClipCompoundCommand(ctx))
	return clipCmd
}

func newClipAddCommand(ctx *commandContext) *cobra.Command {
	var trackID, kindFlag, source, text string
	var start, duration float64
	var muted bool

	cmd := &cobra.Command{
		Use:   "add <project>",
		Short: "Append a clip to a track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := timeline.ParseClipKind(kindFlag)
			if !ok {
				return fmt.Errorf("unknown clip kind %q (one of %v)", kindFlag, timeline.AllClipKinds())
			}
			return ctx.withProject(cmd.Context(), args[0], func(_ *config.Config, _ *library.Store, project *timeline.Project) (bool, error) {
				track, ok := project.TrackByID(trackID)
				if !ok {
					return false, fmt.Errorf("track %q not found in project %s", trackID, project.Name)
				}
				timeRange, err := timeline.NewTimeRange(start, duration)
				if err != nil {
					return false, err
				}

				opts := make([]timeline.ClipOption, 0, 3)
				if source != "" {
					opts = append(opts, timeline.WithSource(source))
				}
				if kind == timeline.ClipText {
					opts = append(opts, timeline.WithText(timeline.TextContent{Text: text}))
				}
				if muted {
					opts = append(opts, timeline.WithMuted(true))
				}
				clip, err := timeline.NewClip(kind, timeRange, opts...)
				if err != nil {
					return false, err
				}
				if err := track.AddClip(clip); err != nil {
					return false, err
				}
				project.Touch()
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s clip %s to track %s\n", kind, clip.ID, track.ID)
				return true, nil
			})
		},
	}

	cmd.Flags().StringVarP(&trackID, "track", "t", "", "Target track id")
	cmd.Flags().StringVarP(&kindFlag, "kind", "k", "video", "Clip kind (video, audio, image, text)")
	cmd.Flags().Float64Var(&start, "start", 0, "Source start offset in seconds")
	cmd.Flags().Float64VarP(&duration, "duration", "d", 0, "Clip duration in seconds")
	cmd.Flags().StringVarP(&source, "source", "s", "", "Media file path or asset id")
	cmd.Flags().StringVar(&text, "text", "", "Text content for text clips")
	cmd.Flags().BoolVar(&muted, "muted", false, "Mute the clip's audio")
	_ = cmd.MarkFlagRequired("track")
	_ = cmd.MarkFlagRequired("duration")
	return cmd
}

func newClipSplitCommand(ctx *commandContext) *cobra.Command {
	var offset float64

	cmd := &cobra.Command{
		Use:   "split <project> <clip>",
		Short: "Split a clip at an offset from its own start",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(cmd.Context(), args[0], func(_ *config.Config, _ *library.Store, project *timeline.Project) (bool, error) {
				first, second, err := project.SplitClip(args[1], offset)
				if err != nil {
					return false, err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Split %s into %s (%ss) and %s (%ss)\n",
					args[1],
					first.ID, formatNumber(first.TimeRange.Duration),
					second.ID, formatNumber(second.TimeRange.Duration))
				return true, nil
			})
		},
	}

	cmd.Flags().Float64Var(&offset, "at", 0, "Offset from the clip start in seconds")
	_ = cmd.MarkFlagRequired("at")
	return cmd
}

func newClipTrimCommand(ctx *commandContext) *cobra.Command {
	var start, duration float64

	cmd := &cobra.Command{
		Use:   "trim <project> <clip>",
		Short: "Replace a clip's time range",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(cmd.Context(), args[0], func(_ *config.Config, _ *library.Store, project *timeline.Project) (bool, error) {
				if err := project.TrimClip(args[1], start, duration); err != nil {
					return false, err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Trimmed %s to start %s duration %s\n",
					args[1], formatNumber(start), formatNumber(duration))
				return true, nil
			})
		},
	}

	cmd.Flags().Float64Var(&start, "start", 0, "New start in seconds")
	cmd.Flags().Float64VarP(&duration, "duration", "d", 0, "New duration in seconds")
	_ = cmd.MarkFlagRequired("duration")
	return cmd
}

func newClipCompoundCommand(ctx *commandContext) *cobra.Command {
	var innerKind string

	cmd := &cobra.Command{
		Use:   "compound <project> <clip> [clip...]",
		Short: "Group clips into one compound clip",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := timeline.ParseTrackKind(innerKind)
			if !ok {
				return fmt.Errorf("unknown track kind %q (one of %v)", innerKind, timeline.AllTrackKinds())
			}
			return ctx.withProject(cmd.Context(), args[0], func(_ *config.Config, _ *library.Store, project *timeline.Project) (bool, error) {
				compound, err := project.GroupClips(args[1:], kind)
				if err != nil {
					return false, err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Grouped %d clips into compound %s (%ss)\n",
					len(args)-1, compound.ID, formatNumber(compound.TimeRange.Duration))
				return true, nil
			})
		},
	}

	cmd.Flags().StringVar(&innerKind, "track-kind", "video", "Kind of the compound's inner track")
	return cmd
}
