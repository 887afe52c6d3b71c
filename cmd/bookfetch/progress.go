package main

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"

	"bookfetch/internal/download"
	"bookfetch/internal/pipeline"
)

// fetchProgress renders one bar tick per consumed metadata outcome. A nil
// bar makes every method a no-op.
type fetchProgress struct {
	bar *progressbar.ProgressBar
}

func newFetchProgress(out io.Writer, total int, replenish string, enabled bool) *fetchProgress {
	if !enabled || total == 0 {
		return &fetchProgress{}
	}
	// Under on-miss the run can stop before the list is exhausted, so the
	// total is unknown and a spinner is shown instead.
	limit := -1
	if replenish == string(pipeline.ReplenishAlways) {
		limit = total
	}
	bar := progressbar.NewOptions(limit,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription("fetching metadata"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("assets"),
		progressbar.OptionShowIts(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(out) }),
	)
	return &fetchProgress{bar: bar}
}

func (p *fetchProgress) fetched(event pipeline.FetchEvent) {
	if p.bar == nil {
		return
	}
	_ = p.bar.Add(1)
	if event.Decision.Valid() {
		p.bar.Describe("fetching metadata (" + event.Asset + ")")
	}
}

func (p *fetchProgress) downloaded(result download.Result) {
	if p.bar == nil || result.Status != download.StatusFailed {
		return
	}
	p.bar.Describe("fetching metadata (download failed: " + result.Job.Asset + ")")
}

func (p *fetchProgress) finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
}
