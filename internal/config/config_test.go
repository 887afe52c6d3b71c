package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"bookfetch/internal/config"
)

func TestLoadDefaultConfigUsesEnvProjectIDAndExpandsPaths(t *testing.T) {
	t.Setenv("BLOCKFROST_PROJECT_ID", "mainnet-test")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantLogs := filepath.Join(tempHome, ".local", "share", "bookfetch", "logs")
	if cfg.Paths.LogDir != wantLogs {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogs)
	}
	if cfg.CatalogCache.Path != filepath.Join(tempHome, ".cache", "bookfetch", "catalog.db") {
		t.Fatalf("unexpected catalog cache path: %q", cfg.CatalogCache.Path)
	}
	if cfg.Blockfrost.ProjectID != "mainnet-test" {
		t.Fatalf("expected project id from env, got %q", cfg.Blockfrost.ProjectID)
	}
	if cfg.Pipeline.FetchConcurrency != 1 || cfg.Pipeline.DownloadConcurrency != 3 {
		t.Fatalf("unexpected concurrency defaults: %+v", cfg.Pipeline)
	}
	if cfg.Pipeline.Replenish != config.ReplenishOnMiss {
		t.Fatalf("expected on-miss replenish by default, got %q", cfg.Pipeline.Replenish)
	}
	if cfg.Pipeline.FetchRetries != 0 {
		t.Fatalf("expected retries disabled by default, got %d", cfg.Pipeline.FetchRetries)
	}
	if cfg.IPFS.Gateway != "https://ipfs.io/ipfs/" {
		t.Fatalf("unexpected gateway: %q", cfg.IPFS.Gateway)
	}
	if err := cfg.RequireBlockfrost(); err != nil {
		t.Fatalf("RequireBlockfrost: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.LogDir, cfg.Paths.CacheDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	t.Setenv("BLOCKFROST_PROJECT_ID", "")
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "bookfetch.toml")

	type payload struct {
		Blockfrost struct {
			ProjectID string `toml:"project_id"`
			BaseURL   string `toml:"base_url"`
		} `toml:"blockfrost"`
		IPFS struct {
			Gateway string `toml:"gateway"`
		} `toml:"ipfs"`
		Pipeline struct {
			FetchConcurrency    int    `toml:"fetch_concurrency"`
			DownloadConcurrency int    `toml:"download_concurrency"`
			Replenish           string `toml:"replenish"`
		} `toml:"pipeline"`
	}
	custom := payload{}
	custom.Blockfrost.ProjectID = "abc123"
	custom.Blockfrost.BaseURL = "https://example.com/bf/"
	custom.IPFS.Gateway = "https://gateway.example.com/ipfs"
	custom.Pipeline.FetchConcurrency = 4
	custom.Pipeline.DownloadConcurrency = 2
	custom.Pipeline.Replenish = "ALWAYS"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Blockfrost.ProjectID != "abc123" {
		t.Fatalf("expected project id from file, got %q", cfg.Blockfrost.ProjectID)
	}
	if cfg.Blockfrost.BaseURL != "https://example.com/bf" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Blockfrost.BaseURL)
	}
	if cfg.IPFS.Gateway != "https://gateway.example.com/ipfs/" {
		t.Fatalf("expected gateway to gain trailing slash, got %q", cfg.IPFS.Gateway)
	}
	if cfg.Pipeline.FetchConcurrency != 4 || cfg.Pipeline.DownloadConcurrency != 2 {
		t.Fatalf("unexpected pipeline settings: %+v", cfg.Pipeline)
	}
	if cfg.Pipeline.Replenish != config.ReplenishAlways {
		t.Fatalf("expected replenish normalized to always, got %q", cfg.Pipeline.Replenish)
	}
}

func TestLoadRejectsInvalidPipeline(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "bookfetch.toml")
	content := "[pipeline]\nfetch_concurrency = 0\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil || !strings.Contains(err.Error(), "fetch_concurrency") {
		t.Fatalf("expected fetch_concurrency validation error, got %v", err)
	}

	content = "[pipeline]\nreplenish = \"sometimes\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil || !strings.Contains(err.Error(), "replenish") {
		t.Fatalf("expected replenish validation error, got %v", err)
	}
}

func TestLoadRejectsNonHTTPGateway(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "bookfetch.toml")
	content := "[ipfs]\ngateway = \"ftp://gateway.example.com/\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil || !strings.Contains(err.Error(), "ipfs.gateway") {
		t.Fatalf("expected gateway validation error, got %v", err)
	}
}

func TestRequireBlockfrostMissing(t *testing.T) {
	cfg := config.Default()
	err := cfg.RequireBlockfrost()
	if err == nil {
		t.Fatal("expected error without project id")
	}
	if !strings.Contains(err.Error(), "BLOCKFROST_PROJECT_ID") {
		t.Fatalf("expected env hint in error, got %q", err)
	}
}

func TestCreateSampleParses(t *testing.T) {
	t.Setenv("BLOCKFROST_PROJECT_ID", "")
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(target)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Blockfrost.PageSize != 20 {
		t.Fatalf("unexpected sample page size: %d", cfg.Blockfrost.PageSize)
	}
}

func TestLoadNotifications(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "bookfetch.toml")

	content := "[notifications]\nntfy_topic = \"bookfetch\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil || !strings.Contains(err.Error(), "notifications.ntfy_topic") {
		t.Fatalf("expected topic validation error, got %v", err)
	}

	content = "[notifications]\nntfy_topic = \" https://ntfy.sh/bookfetch \"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Notifications.NtfyTopic != "https://ntfy.sh/bookfetch" {
		t.Fatalf("expected trimmed topic, got %q", cfg.Notifications.NtfyTopic)
	}
	if cfg.NotificationTimeout().Seconds() != 10 {
		t.Fatalf("unexpected default timeout %v", cfg.NotificationTimeout())
	}
}
