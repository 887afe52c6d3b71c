package preflight

import (
	"context"
	"fmt"
	"strings"

	"bookfetch/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunLocal executes the checks that need no network access.
func RunLocal(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	results := []Result{
		CheckOutputDirectory("Output directory", cfg.Paths.OutputDir),
		CheckProjectID(cfg.Blockfrost.ProjectID),
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckOutputDirectory("Log directory", cfg.Paths.LogDir))
	}
	return results
}

// RunAll executes the local checks followed by service reachability checks.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	results := RunLocal(cfg)
	results = append(results,
		CheckBlockfrost(ctx, cfg.Blockfrost.BaseURL, cfg.Blockfrost.ProjectID),
		CheckBookio(ctx, cfg.Bookio.BaseURL),
	)
	return results
}

// FirstFailure returns an error describing the first failed result, or nil.
func FirstFailure(results []Result) error {
	for _, r := range results {
		if !r.Passed {
			return fmt.Errorf("%s: %s", r.Name, r.Detail)
		}
	}
	return nil
}

// CheckProjectID verifies that a Blockfrost project id is configured.
func CheckProjectID(projectID string) Result {
	const name = "Blockfrost project id"
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return Result{Name: name, Detail: "missing (set blockfrost.project_id or BLOCKFROST_PROJECT_ID)"}
	}
	return Result{Name: name, Passed: true, Detail: "configured (" + networkHint(projectID) + ")"}
}

// Blockfrost project ids are prefixed with their network name.
func networkHint(projectID string) string {
	for _, network := range []string{"mainnet", "preprod", "preview"} {
		if strings.HasPrefix(projectID, network) {
			return network
		}
	}
	return "unknown network"
}
