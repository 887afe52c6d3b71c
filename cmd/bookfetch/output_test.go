package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jedib0t/go-pretty/v6/text"

	"bookfetch/internal/preflight"
)

func TestRenderCheckPlain(t *testing.T) {
	got := renderCheck(preflight.Result{Name: "Output directory", Passed: true, Detail: "/tmp/x (read/write ok)"}, false)
	want := "  Output directory:        [OK] /tmp/x (read/write ok)"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
	failed := renderCheck(preflight.Result{Name: "Book.io catalog", Detail: "unexpected status 500"}, false)
	requireContains(t, failed, "[ERROR] unexpected status 500")
	if strings.Contains(failed, "\x1b[") {
		t.Fatalf("expected no escape codes without colour, got %q", failed)
	}
}

func TestRenderCheckColorized(t *testing.T) {
	text.EnableColors()
	got := renderCheck(preflight.Result{Name: "Blockfrost API", Passed: true, Detail: "Reachable"}, true)
	if !strings.Contains(got, "\x1b[") || !strings.Contains(got, "[OK] Reachable") {
		t.Fatalf("expected coloured OK line, got %q", got)
	}
}

func TestRenderFetchTableColorsStatusOnlyWhenAsked(t *testing.T) {
	text.EnableColors()
	view := fetchView{Assets: []fetchAssetView{
		{Asset: "asset1", Source: "ipfs://CID1", Status: "downloaded", Bytes: 2048},
		{Asset: "asset3", Source: "ipfs://CID3", Status: pendingStatus},
	}}

	plain := renderFetchTable(view, false)
	requireContains(t, plain, "asset1")
	requireContains(t, plain, "2.0 kB")
	requireContains(t, plain, pendingStatus)
	if strings.Contains(plain, "\x1b[") {
		t.Fatalf("expected plain table, got %q", plain)
	}
	if colored := renderFetchTable(view, true); !strings.Contains(colored, "\x1b[") {
		t.Fatalf("expected coloured status cells, got %q", colored)
	}
}

func TestWriteJSONKeepsURLsVerbatim(t *testing.T) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, map[string]string{"src": "https://gw/ipfs/a?x=1&y=2"}); err != nil {
		t.Fatalf("writeJSON: %v", err)
	}
	requireContains(t, buf.String(), "a?x=1&y=2")
}
