package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"bookfetch/internal/download"
	"bookfetch/internal/pipeline"
)

type fetchAssetView struct {
	Asset  string `json:"asset"`
	Source string `json:"src"`
	File   string `json:"file,omitempty"`
	Status string `json:"status"`
	Bytes  int64  `json:"bytes"`
	Error  string `json:"error,omitempty"`
}

type fetchView struct {
	PolicyID            string           `json:"policy_id"`
	RunID               string           `json:"run_id"`
	State               string           `json:"state"`
	LogFile             string           `json:"log_file,omitempty"`
	Listed              int              `json:"listed"`
	Attempted           int              `json:"attempted"`
	Valid               int              `json:"valid"`
	FetchFailures       int              `json:"fetch_failures"`
	Rejected            map[string]int   `json:"rejected,omitempty"`
	Downloaded          int              `json:"downloaded"`
	Skipped             int              `json:"skipped"`
	Failed              int              `json:"failed"`
	Bytes               int64            `json:"bytes"`
	DownloadConcurrency int              `json:"download_concurrency"`
	Assets              []fetchAssetView `json:"assets"`
}

// pendingStatus marks a validated asset whose download had not finished when
// the run was interrupted.
const pendingStatus = "pending"

func buildFetchView(policy, runID string, report pipeline.Report, logPath string) fetchView {
	view := fetchView{
		PolicyID:      policy,
		RunID:         runID,
		State:         report.State.String(),
		LogFile:       logPath,
		Listed:        report.Summary.Listed,
		Attempted:     report.Summary.Attempted,
		Valid:         len(report.Results),
		FetchFailures: report.Summary.FetchFailures,
		Assets:        make([]fetchAssetView, 0, len(report.Results)),
	}
	if len(report.Summary.Rejected) > 0 {
		view.Rejected = make(map[string]int, len(report.Summary.Rejected))
		for reason, n := range report.Summary.Rejected {
			view.Rejected[string(reason)] = n
		}
	}

	byAsset := make(map[string]download.Result, len(report.Summary.Downloads))
	for _, r := range report.Summary.Downloads {
		byAsset[r.Job.Asset] = r
	}
	for _, validated := range report.Results {
		entry := fetchAssetView{Asset: validated.Asset, Source: validated.Source, Status: pendingStatus}
		if r, ok := byAsset[validated.Asset]; ok {
			entry.File = r.Path
			entry.Status = string(r.Status)
			entry.Bytes = r.Bytes
			if r.Err != nil {
				entry.Error = r.Err.Error()
			}
			switch r.Status {
			case download.StatusDownloaded:
				view.Downloaded++
			case download.StatusSkipped:
				view.Skipped++
			case download.StatusFailed:
				view.Failed++
			}
			view.Bytes += r.Bytes
		}
		view.Assets = append(view.Assets, entry)
	}
	return view
}

func (v fetchView) summaryLine() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s listed, %s with images", v.PolicyID,
		pluralize(v.Listed, "asset", "assets"), humanize.Comma(int64(v.Valid)))
	fmt.Fprintf(&b, "; %d downloaded (%s), %d already present, %d failed",
		v.Downloaded, humanize.Bytes(uint64(v.Bytes)), v.Skipped, v.Failed)
	if v.FetchFailures > 0 {
		fmt.Fprintf(&b, "; %s", pluralize(v.FetchFailures, "metadata request failed", "metadata requests failed"))
	}
	if v.State != pipeline.StateCompleted.String() {
		fmt.Fprintf(&b, " [%s]", v.State)
	}
	return b.String()
}

func renderFetchTable(view fetchView, colorize bool) string {
	rows := make([][]string, 0, len(view.Assets))
	for i, a := range view.Assets {
		size := "-"
		if a.Bytes > 0 {
			size = humanize.Bytes(uint64(a.Bytes))
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			a.Asset,
			a.Source,
			a.Status,
			size,
		})
	}
	return renderTable(fetchColumns, rows, colorize)
}
