package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"bookfetch/internal/services/bookio"
)

func newCollectionsCommand(ctx *commandContext) *cobra.Command {
	var refresh bool
	var jsonOutput bool
	var blockchain string

	cmd := &cobra.Command{
		Use:   "collections",
		Short: "List the Book.io collection catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, closeCatalog, err := catalogClient(cfg, ctx.consoleLogger(cfg))
			if err != nil {
				return err
			}
			defer closeCatalog()

			var collections []bookio.Collection
			if refresh {
				collections, err = client.Refresh(cmd.Context())
			} else {
				collections, err = client.Collections(cmd.Context())
			}
			if err != nil {
				return err
			}
			collections = filterCollections(collections, blockchain)

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), collections)
			}
			out := cmd.OutOrStdout()
			if len(collections) == 0 {
				fmt.Fprintln(out, "No collections found")
				return nil
			}
			fmt.Fprintln(out, renderCollectionsTable(collections, shouldColorize(out)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Bypass the catalog cache")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the catalog as JSON")
	cmd.Flags().StringVar(&blockchain, "blockchain", "", "Only show collections on this blockchain (e.g. cardano)")
	return cmd
}

func filterCollections(collections []bookio.Collection, blockchain string) []bookio.Collection {
	blockchain = strings.TrimSpace(blockchain)
	if blockchain == "" {
		return collections
	}
	filtered := make([]bookio.Collection, 0, len(collections))
	for _, c := range collections {
		if strings.EqualFold(c.Blockchain, blockchain) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

func renderCollectionsTable(collections []bookio.Collection, colorize bool) string {
	title := cases.Title(language.Und)
	rows := make([][]string, 0, len(collections))
	for _, c := range collections {
		rows = append(rows, []string{
			c.CollectionID,
			c.Description,
			title.String(c.Blockchain),
			title.String(c.Network),
		})
	}
	return renderTable(collectionColumns, rows, colorize)
}
