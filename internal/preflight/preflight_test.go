package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bookfetch/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckOutputDirectory_WillBeCreated(t *testing.T) {
	result := CheckOutputDirectory("out", filepath.Join(t.TempDir(), "a", "b", "images"))
	if !result.Passed || !strings.Contains(result.Detail, "will be created") {
		t.Fatalf("expected creatable directory to pass, got %+v", result)
	}
}

func TestCheckOutputDirectory_FileInTheWay(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckOutputDirectory("out", f); result.Passed {
		t.Fatal("expected failure for file path")
	}
	if result := CheckOutputDirectory("out", filepath.Join(f, "images")); result.Passed {
		t.Fatal("expected failure when ancestor is a file")
	}
}

func TestCheckProjectID(t *testing.T) {
	if CheckProjectID(" ").Passed {
		t.Fatal("expected failure for missing project id")
	}
	result := CheckProjectID("preprodABC")
	if !result.Passed || !strings.Contains(result.Detail, "preprod") {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestCheckBlockfrost_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("project_id") != "mainnetGood" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(`{"url":"https://blockfrost.io/","version":"0.1.0"}`))
	}))
	defer srv.Close()

	if result := CheckBlockfrost(context.Background(), srv.URL, "mainnetGood"); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if result := CheckBlockfrost(context.Background(), srv.URL, "mainnetBad"); result.Passed {
		t.Fatal("expected failure for bad project id")
	}
}

func TestCheckBookio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"type":"collections","data":[]}`))
	}))
	defer srv.Close()

	if result := CheckBookio(context.Background(), srv.URL); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if result := CheckBookio(context.Background(), ""); result.Passed {
		t.Fatal("expected failure for missing url")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunLocal_MissingProjectID(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithProjectID(""), testsupport.WithoutLogDir())

	results := RunLocal(cfg)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	err := FirstFailure(results)
	if err == nil || !strings.Contains(err.Error(), "project id") {
		t.Fatalf("expected project id failure, got %v", err)
	}
}

func TestRunAll_ChecksServiceReachability(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/collections":
			_, _ = w.Write([]byte(`{"type":"collection","data":[]}`))
		case r.Header.Get("project_id") == "mainnettest":
			_, _ = w.Write([]byte(`{}`))
		default:
			w.WriteHeader(http.StatusForbidden)
		}
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithEndpoints(srv.URL, srv.URL, ""))
	if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
		t.Fatal(err)
	}
	results := RunAll(context.Background(), cfg)
	if err := FirstFailure(results); err != nil {
		t.Fatalf("expected all checks to pass, got %v", err)
	}
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}

	cfg.Blockfrost.ProjectID = "preprodwrong"
	results = RunAll(context.Background(), cfg)
	if err := FirstFailure(results); err == nil || !strings.Contains(err.Error(), "auth failed") {
		t.Fatalf("expected blockfrost auth failure, got %v", err)
	}
}
