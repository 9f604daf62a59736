package downloader

import (
	"context"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/whcollect/whcollect/internal/logging"
)

func quietLogger() *logging.Logger {
	return logging.NewLogger(io.Discard)
}

// TestFetch_WritesFile verifies the asset lands in destDir under the
// locator's final path segment with the response body intact.
func TestFetch_WritesFile(t *testing.T) {
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.URL.Path != "/full/ab/wallhaven-abc123.jpg" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		io.WriteString(w, "jpeg-bytes")
	}))
	defer srv.Close()

	dest := t.TempDir()
	f := NewHTTPFetcher(srv.Client(), quietLogger())

	localPath, err := f.Fetch(context.Background(), srv.URL+"/full/ab/wallhaven-abc123.jpg", dest)
	if err != nil {
		t.Fatalf("expected nil error, got: %v", err)
	}

	want := filepath.Join(dest, "wallhaven-abc123.jpg")
	if localPath != want {
		t.Errorf("local path %q, want %q", localPath, want)
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		t.Fatalf("reading downloaded file: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Errorf("file content %q, want %q", data, "jpeg-bytes")
	}
}

// TestFetch_QueryIgnoredInName verifies query parameters don't leak into the
// file name.
func TestFetch_QueryIgnoredInName(t *testing.T) {
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		io.WriteString(w, "x")
	}))
	defer srv.Close()

	dest := t.TempDir()
	f := NewHTTPFetcher(srv.Client(), quietLogger())

	localPath, err := f.Fetch(context.Background(), srv.URL+"/full/img.png?token=abc", dest)
	if err != nil {
		t.Fatalf("expected nil error, got: %v", err)
	}
	if filepath.Base(localPath) != "img.png" {
		t.Errorf("file name %q, want %q", filepath.Base(localPath), "img.png")
	}
}

// TestFetch_NoFileName verifies a locator without a usable final segment is
// rejected before any request is made.
func TestFetch_NoFileName(t *testing.T) {
	f := NewHTTPFetcher(nethttp.DefaultClient, quietLogger())

	for _, locator := range []string{"https://example.com/", "https://example.com"} {
		if _, err := f.Fetch(context.Background(), locator, t.TempDir()); err == nil {
			t.Errorf("expected error for locator %q, got nil", locator)
		}
	}
}

// TestFetch_HTTPErrorStatus verifies non-2xx responses fail the fetch and
// leave no file behind.
func TestFetch_HTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(nethttp.StatusNotFound)
	}))
	defer srv.Close()

	dest := t.TempDir()
	f := NewHTTPFetcher(srv.Client(), quietLogger())

	_, err := f.Fetch(context.Background(), srv.URL+"/full/gone.jpg", dest)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "status 404") {
		t.Errorf("expected status in error, got: %v", err)
	}

	entries, _ := os.ReadDir(dest)
	if len(entries) != 0 {
		t.Errorf("expected empty dest dir, found %d entries", len(entries))
	}
}

// TestFetch_RetriesTransientFailure verifies the asset client retries a 500
// before succeeding.
func TestFetch_RetriesTransientFailure(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(nethttp.StatusInternalServerError)
			return
		}
		io.WriteString(w, "ok")
	}))
	defer srv.Close()

	dest := t.TempDir()
	f := NewHTTPFetcher(srv.Client(), quietLogger())
	f.client.RetryWaitMin = 0
	f.client.RetryWaitMax = 0

	localPath, err := f.Fetch(context.Background(), srv.URL+"/full/flaky.jpg", dest)
	if err != nil {
		t.Fatalf("expected nil error after retry, got: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
	if _, err := os.Stat(localPath); err != nil {
		t.Errorf("downloaded file missing: %v", err)
	}
}

// TestFetch_ContextCancelled verifies an already cancelled context fails
// fast.
func TestFetch_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		io.WriteString(w, "x")
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewHTTPFetcher(srv.Client(), quietLogger())
	f.client.RetryMax = 0

	if _, err := f.Fetch(ctx, srv.URL+"/full/img.jpg", t.TempDir()); err == nil {
		t.Fatal("expected cancellation error, got nil")
	}
}
