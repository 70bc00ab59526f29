package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"cutroom/internal/media"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "probe <file>",
		Short: "Inspect a media file with ffprobe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			loader := media.NewProbeLoader(cfg.FFprobeBinary(), nil)
			asset, err := loader.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, asset)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader(asset.Title, colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusLine("Duration", statusInfo, formatSeconds(asset.Duration), colorize))
			fmt.Fprintln(out, renderStatusLine("Container", statusInfo, asset.Container, colorize))
			if asset.HasVideo {
				detail := fmt.Sprintf("%s %dx%d @ %g fps", asset.VideoCodec, asset.Width, asset.Height, asset.FrameRate)
				fmt.Fprintln(out, renderStatusLine("Video", statusInfo, detail, colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("Video", statusWarn, "none", colorize))
			}
			if asset.HasAudio {
				detail := fmt.Sprintf("%s %d Hz, %d channel(s)", asset.AudioCodec, asset.SampleRate, asset.Channels)
				fmt.Fprintln(out, renderStatusLine("Audio", statusInfo, detail, colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("Audio", statusWarn, "none", colorize))
			}
			if asset.SizeBytes > 0 {
				fmt.Fprintln(out, renderStatusLine("Size", statusInfo, formatBytes(asset.SizeBytes), colorize))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the probe result as JSON")
	return cmd
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
