package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cutroom/internal/captions"
	"cutroom/internal/config"
	"cutroom/internal/library"
	"cutroom/internal/timeline"
)

func newCaptionsCommand(ctx *commandContext) *cobra.Command {
	captionsCmd := &cobra.Command{
		Use:   "captions",
		Short: "Import, export, and query subtitles",
	}
	captionsCmd.AddCommand(newCaptionsImportCommand(ctx))
	captionsCmd.AddCommand(newCaptionsExportCommand(ctx))
	captionsCmd.AddCommand(newCaptionsAtCommand())
	return captionsCmd
}

func newCaptionsImportCommand(ctx *commandContext) *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "import <project> <file.srt>",
		Short: "Import an SRT file as a subtitle track",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("open subtitle file: %w", err)
			}
			defer file.Close()

			cues, stats, err := captions.ParseSRT(file)
			if err != nil {
				return err
			}
			if len(cues) == 0 {
				return fmt.Errorf("%s contains no usable cues", args[1])
			}

			return ctx.withProject(cmd.Context(), args[0], func(cfg *config.Config, _ *library.Store, project *timeline.Project) (bool, error) {
				language := lang
				if language == "" {
					language = cfg.Captions.DefaultLanguage
				}
				normalized, err := captions.NormalizeLanguage(language)
				if err != nil {
					return false, err
				}

				trackID, err := project.AddTrack(timeline.TrackSubtitle)
				if err != nil {
					return false, err
				}
				track, _ := project.TrackByID(trackID)
				for _, cue := range cues {
					clip, err := timeline.NewClip(timeline.ClipText, cue.TimeRange,
						timeline.WithText(timeline.TextContent{Text: cue.Text}))
					if err != nil {
						return false, err
					}
					if err := track.AddClip(clip); err != nil {
						return false, err
					}
				}
				project.Touch()

				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d cues (%s) onto track %s\n",
					stats.Cues, captions.LanguageName(normalized), trackID)
				if stats.Skipped > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Skipped %d malformed blocks\n", stats.Skipped)
				}
				return true, nil
			})
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "", "BCP 47 language tag (defaults to the configured language)")
	return cmd
}

func newCaptionsExportCommand(ctx *commandContext) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export <project>",
		Short: "Export subtitle tracks as SRT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(cmd.Context(), args[0], func(_ *config.Config, _ *library.Store, project *timeline.Project) (bool, error) {
				var cues []captions.Caption
				for i := range project.Tracks {
					track := &project.Tracks[i]
					if track.Kind != timeline.TrackSubtitle {
						continue
					}
					for j := range track.Clips {
						clip := &track.Clips[j]
						if clip.Kind != timeline.ClipText || clip.TextContent == nil {
							continue
						}
						cues = append(cues, captions.Caption{
							ID:        clip.ID,
							TimeRange: clip.TimeRange,
							Text:      clip.TextContent.Text,
						})
					}
				}
				if len(cues) == 0 {
					return false, fmt.Errorf("project %s has no subtitle cues", project.Name)
				}

				rendered := captions.FormatSRT(cues)
				if outPath == "" {
					fmt.Fprint(cmd.OutOrStdout(), rendered)
					return false, nil
				}
				if err := os.WriteFile(outPath, []byte(rendered), 0o644); err != nil {
					return false, fmt.Errorf("write subtitle file: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d cues to %s\n", len(cues), outPath)
				return false, nil
			})
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Destination file (defaults to stdout)")
	return cmd
}

func newCaptionsAtCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "at <file.srt> <seconds>",
		Short:       "Show the cues visible at a point in time",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid time %q: %w", args[1], err)
			}

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open subtitle file: %w", err)
			}
			defer file.Close()

			cues, _, err := captions.ParseSRT(file)
			if err != nil {
				return err
			}
			track := captions.Track{ID: "query", Language: "und", Captions: cues}
			active := track.CaptionsAt(at)
			if len(active) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No captions at %ss\n", args[1])
				return nil
			}
			for _, cue := range active {
				fmt.Fprintln(cmd.OutOrStdout(), strings.ReplaceAll(cue.Text, "\n", " / "))
			}
			return nil
		},
	}
}
