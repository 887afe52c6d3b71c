package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"bookfetch/internal/services"
)

func TestFetchOnMissStopsAfterFirstImage(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"fetch", testPolicy}, env.configPath)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	requireContains(t, out, "asset1")
	requireContains(t, out, "1 downloaded")

	if got := env.metaHits.Load(); got != 1 {
		t.Fatalf("expected a single metadata request, got %d", got)
	}
	data, err := os.ReadFile(filepath.Join(env.outputDir, "asset1.png"))
	if err != nil {
		t.Fatalf("read image: %v", err)
	}
	if string(data) != testImageRaw {
		t.Fatalf("unexpected image contents %q", data)
	}
	if _, err := os.Stat(filepath.Join(env.outputDir, "asset3.png")); !os.IsNotExist(err) {
		t.Fatalf("expected asset3 to stay unfetched, stat err=%v", err)
	}
}

func TestFetchAlwaysProcessesWholeCollection(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"fetch", "--replenish", "always", "--fetch-concurrency", "2", "--json", testPolicy}, env.configPath)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	var view fetchView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode fetch json %q: %v", out, err)
	}
	if view.State != "completed" || view.Listed != 3 || view.Attempted != 3 {
		t.Fatalf("unexpected view: %+v", view)
	}
	if view.Valid != 2 || view.Downloaded != 2 {
		t.Fatalf("expected two downloaded images, got %+v", view)
	}
	if view.Rejected["no_files"] != 1 {
		t.Fatalf("expected asset2 rejected for missing files, got %v", view.Rejected)
	}
	for _, name := range []string{"asset1.png", "asset3.png"} {
		if _, err := os.Stat(filepath.Join(env.outputDir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(env.outputDir, "asset2.png")); !os.IsNotExist(err) {
		t.Fatalf("expected no file for asset2, stat err=%v", err)
	}
}

func TestFetchSkipsExistingFiles(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"fetch", testPolicy}, env.configPath); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	out, _, err := runCLI(t, []string{"fetch", testPolicy}, env.configPath)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	requireContains(t, out, "1 already present")
	if got := env.downloads.Load(); got != 1 {
		t.Fatalf("expected the image to be downloaded once, got %d", got)
	}
}

func TestFetchUnknownPolicyWritesNothing(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"fetch", "policyZ"}, env.configPath)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
	requireContains(t, err.Error(), "policy_id policyZ is not found")
	if services.ExitCode(err) != services.ExitNotFound {
		t.Fatalf("unexpected exit code %d", services.ExitCode(err))
	}
	if _, err := os.Stat(env.outputDir); !os.IsNotExist(err) {
		t.Fatalf("expected output dir to be absent, stat err=%v", err)
	}
	if got := env.metaHits.Load(); got != 0 {
		t.Fatalf("expected no metadata requests, got %d", got)
	}
}

func TestFetchRequiresProjectID(t *testing.T) {
	base := t.TempDir()
	t.Setenv("HOME", base)
	t.Setenv("BLOCKFROST_PROJECT_ID", "")
	configPath := filepath.Join(base, "config.toml")
	content := "[paths]\noutput_dir = \"" + filepath.Join(base, "images") + "\"\nlog_dir = \"" + filepath.Join(base, "logs") + "\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, err := runCLI(t, []string{"fetch", testPolicy}, configPath)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	requireContains(t, err.Error(), "BLOCKFROST_PROJECT_ID")
}

func TestFetchRequiresPolicy(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"fetch"}, env.configPath)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFetchRejectsInvalidFlags(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"fetch", "--fetch-concurrency", "0", testPolicy}, env.configPath)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	_, _, err = runCLI(t, []string{"fetch", "--replenish", "sometimes", testPolicy}, env.configPath)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for replenish, got %v", err)
	}
}

func TestVerifyCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"verify", testPolicy}, env.configPath)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	requireContains(t, out, "policy_id policyA is a Book.io collection")

	_, _, err = runCLI(t, []string{"verify", "policyZ"}, env.configPath)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestCollectionsUsesCache(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"collections", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("collections: %v", err)
	}
	if got := decodeCollections(t, out); len(got) != 2 {
		t.Fatalf("expected 2 collections, got %d", len(got))
	}

	out, _, err = runCLI(t, []string{"collections", "--json", "--blockchain", "cardano"}, env.configPath)
	if err != nil {
		t.Fatalf("collections filtered: %v", err)
	}
	filtered := decodeCollections(t, out)
	if len(filtered) != 1 || filtered[0].CollectionID != testPolicy {
		t.Fatalf("unexpected filtered collections: %+v", filtered)
	}
	if got := env.catalogHits.Load(); got != 1 {
		t.Fatalf("expected cached catalog on second call, got %d requests", got)
	}

	out, _, err = runCLI(t, []string{"collections", "--refresh"}, env.configPath)
	if err != nil {
		t.Fatalf("collections refresh: %v", err)
	}
	requireContains(t, out, "The Odyssey")
	requireContains(t, out, "Cardano")
	if got := env.catalogHits.Load(); got != 2 {
		t.Fatalf("expected refresh to hit the catalog, got %d requests", got)
	}
}

func TestCheckCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	requireContains(t, out, "Book.io catalog")
	requireContains(t, out, "Reachable")
	requireContains(t, out, "mainnet")
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Blockfrost project id set: yes")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestFetchPostsNotification(t *testing.T) {
	env := setupCLITestEnv(t)

	titles := make(chan string, 2)
	ntfy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		titles <- r.Header.Get("Title")
	}))
	t.Cleanup(ntfy.Close)
	appendConfig(t, env.configPath, "\n[notifications]\nntfy_topic = \""+ntfy.URL+"/bookfetch\"\n")

	if _, _, err := runCLI(t, []string{"fetch", testPolicy}, env.configPath); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	select {
	case title := <-titles:
		if title != "bookfetch - Collection Fetched" {
			t.Fatalf("unexpected notification title %q", title)
		}
	default:
		t.Fatal("expected a notification to be posted")
	}

	out, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "Test notification sent")
}

func TestTestNotifyDisabled(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "Notifications disabled")
}

func TestFetchReportsFailedDownload(t *testing.T) {
	env := setupCLITestEnv(t)
	env.failGateway.Store(true)

	out, _, err := runCLI(t, []string{"fetch", "--json", testPolicy}, env.configPath)
	if err != nil {
		t.Fatalf("a failed download must not fail the run: %v", err)
	}
	var view fetchView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode fetch json %q: %v", out, err)
	}
	if view.Valid != 1 || view.Failed != 1 || view.Downloaded != 0 {
		t.Fatalf("unexpected counts: %+v", view)
	}
	if len(view.Assets) != 1 || view.Assets[0].Asset != "asset1" || view.Assets[0].Status != "failed" {
		t.Fatalf("expected asset1 listed as failed, got %+v", view.Assets)
	}
	if view.DownloadConcurrency != 3 {
		t.Fatalf("expected default download concurrency, got %d", view.DownloadConcurrency)
	}
	if _, err := os.Stat(filepath.Join(env.outputDir, "asset1.png")); !os.IsNotExist(err) {
		t.Fatalf("expected no image after failed download, stat err=%v", err)
	}
}

func TestFetchInterruptedWhileListing(t *testing.T) {
	env := setupCLITestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	env.onList = func(r *http.Request) {
		cancel()
		<-r.Context().Done()
	}

	_, stderr, err := runCLIContext(t, ctx, []string{"fetch", testPolicy}, env.configPath)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if errors.Is(err, services.ErrExternal) {
		t.Fatalf("interrupt reported as a service failure: %v", err)
	}
	if code := services.ExitCode(err); code != services.ExitCancelled {
		t.Fatalf("expected cancelled exit code, got %d", code)
	}
	requireContains(t, stderr, "Received interrupt; cancelling tasks")
	requireContains(t, stderr, "fetching was not completed")
	if _, err := os.Stat(env.outputDir); !os.IsNotExist(err) {
		t.Fatalf("expected output dir to be absent, stat err=%v", err)
	}
}
