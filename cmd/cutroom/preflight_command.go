package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cutroom/internal/preflight"
	"cutroom/internal/services"
)

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "preflight",
		Short: "Check directories, external tools, and codec support",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			results := preflight.RunAll(cmd.Context(), cfg)
			if asJSON {
				return writeJSON(cmd, results)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Preflight", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, result := range results {
				kind := statusOK
				if !result.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}
			if !preflight.Passed(results) {
				return services.Wrap(services.ErrConfiguration, "cli", "preflight",
					"one or more checks failed", nil)
			}
			fmt.Fprintln(out, "All checks passed.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit check results as JSON")
	return cmd
}
