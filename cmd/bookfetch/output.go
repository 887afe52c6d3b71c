package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// writeJSON encodes v as indented JSON. Asset names and gateway URLs are
// written verbatim, without HTML escaping.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func printFetchView(cmd *cobra.Command, view fetchView, jsonOutput bool) error {
	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(out, view)
	}
	if len(view.Assets) > 0 {
		fmt.Fprintln(out, renderFetchTable(view, shouldColorize(out)))
	}
	fmt.Fprintln(out, view.summaryLine())
	return nil
}
