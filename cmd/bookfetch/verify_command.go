package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bookfetch/internal/services"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <policy-id>",
		Short: "Check whether a policy id is a Book.io collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			policy, err := policyArg(args, "")
			if err != nil {
				return err
			}
			client, closeCatalog, err := catalogClient(cfg, ctx.consoleLogger(cfg))
			if err != nil {
				return err
			}
			defer closeCatalog()

			ok, err := client.Verify(cmd.Context(), policy)
			if err != nil {
				return services.Wrap(services.ErrExternal, "cli", "verify", fmt.Sprintf("policy_id %s is not valid", policy), err)
			}
			if !ok {
				return services.Wrap(services.ErrNotFound, "cli", "verify", fmt.Sprintf("policy_id %s is not found", policy), nil)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "policy_id %s is a Book.io collection\n", policy)
			return nil
		},
	}
}
