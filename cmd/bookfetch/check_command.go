package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bookfetch/internal/preflight"
	"bookfetch/internal/services"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check directories, credentials, and service reachability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			results := preflight.RunAll(cmd.Context(), cfg)
			failed := 0
			for _, r := range results {
				if !r.Passed {
					failed++
				}
				fmt.Fprintln(out, renderCheck(r, colorize))
			}
			cache := "disabled"
			if cfg.CatalogCache.Enabled {
				cache = cfg.CatalogCache.Path
			}
			fmt.Fprintln(out, renderStatusLine("Catalog cache", statusInfo, cache, colorize))

			if failed > 0 {
				return services.Wrap(services.ErrConfiguration, "cli", "check",
					fmt.Sprintf("%s failed", pluralize(failed, "check", "checks")), nil)
			}
			return nil
		},
	}
}
