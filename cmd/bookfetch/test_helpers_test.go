package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"bookfetch/internal/services/bookio"
)

const (
	testPolicy   = "policyA"
	testCatalog  = `{"type":"collection","data":[{"collection_id":"policyA","description":"The Odyssey","blockchain":"cardano","network":"mainnet"},{"collection_id":"policyB","description":"Solana Book","blockchain":"solana","network":"mainnet"}]}`
	testImageRaw = "PNGDATA"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	outputDir  string

	catalogHits atomic.Int32
	metaHits    atomic.Int32
	downloads   atomic.Int32

	// failGateway makes the gateway answer 500.
	failGateway atomic.Bool
	// onList, when set, runs before the policy listing is answered.
	onList func(r *http.Request)
}

// testAssets is the policy listing served by the fake Blockfrost server, in
// listing order. asset2 carries no image.
var testAssets = []struct {
	id   string
	meta string
}{
	{"asset1", `{"name":"One","files":[{"src":"ipfs://CID1","mediaType":"image/png"}]}`},
	{"asset2", `{"name":"Two"}`},
	{"asset3", `{"name":"Three","files":[{"src":"ipfs://CID3","mediaType":"image/jpeg"}]}`},
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", base)
	t.Setenv("BLOCKFROST_PROJECT_ID", "")
	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "config.toml"),
		outputDir:  filepath.Join(base, "images"),
	}

	catalog := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections" {
			http.NotFound(w, r)
			return
		}
		env.catalogHits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(testCatalog))
	}))
	t.Cleanup(catalog.Close)

	chain := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("project_id") != "mainnettest" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"status_code":403,"error":"Forbidden","message":"Invalid project token."}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/":
			_, _ = w.Write([]byte(`{"url":"https://blockfrost.io/","version":"0.1.0"}`))
		case r.URL.Path == "/assets/policy/"+testPolicy:
			if env.onList != nil {
				env.onList(r)
			}
			page, _ := strconv.Atoi(r.URL.Query().Get("page"))
			if page > 1 {
				_, _ = w.Write([]byte(`[]`))
				return
			}
			listing := make([]map[string]string, 0, len(testAssets))
			for _, a := range testAssets {
				listing = append(listing, map[string]string{"asset": a.id, "quantity": "1"})
			}
			_ = json.NewEncoder(w).Encode(listing)
		case strings.HasPrefix(r.URL.Path, "/assets/"):
			id := strings.TrimPrefix(r.URL.Path, "/assets/")
			for _, a := range testAssets {
				if a.id == id {
					env.metaHits.Add(1)
					fmt.Fprintf(w, `{"asset":%q,"policy_id":%q,"fingerprint":"asset1xyz","onchain_metadata":%s}`, a.id, testPolicy, a.meta)
					return
				}
			}
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"status_code":404,"error":"Not Found","message":"The requested component has not been found."}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(chain.Close)

	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/ipfs/") {
			http.NotFound(w, r)
			return
		}
		env.downloads.Add(1)
		if env.failGateway.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(testImageRaw))
	}))
	t.Cleanup(gateway.Close)

	content := fmt.Sprintf(`[paths]
output_dir = %q
log_dir = %q
cache_dir = %q

[bookio]
base_url = %q

[blockfrost]
project_id = "mainnettest"
base_url = %q
rate_limit = 0

[ipfs]
gateway = %q

[catalog_cache]
enabled = true
path = %q
`,
		env.outputDir,
		filepath.Join(base, "logs"),
		filepath.Join(base, "cache"),
		catalog.URL,
		chain.URL,
		gateway.URL+"/ipfs/",
		filepath.Join(base, "cache", "catalog.db"),
	)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	return runCLIContext(t, context.Background(), args, configPath)
}

func runCLIContext(t *testing.T, ctx context.Context, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func decodeCollections(t *testing.T, out string) []bookio.Collection {
	t.Helper()
	var collections []bookio.Collection
	if err := json.Unmarshal([]byte(out), &collections); err != nil {
		t.Fatalf("decode collections json %q: %v", out, err)
	}
	return collections
}

func appendConfig(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open config: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("append config: %v", err)
	}
}
