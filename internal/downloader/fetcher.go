// Package downloader persists individual remote assets to local files.
package downloader

import (
	"context"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/whcollect/whcollect/internal/diskspace"
	"github.com/whcollect/whcollect/internal/logging"
)

// Fetcher retrieves one remote asset and writes it under a destination
// directory, returning the final local path. Implementations must fail on
// any non-success response rather than silently skipping the asset.
type Fetcher interface {
	Fetch(ctx context.Context, locator, destDir string) (string, error)
}

// retryLogger adapts retryablehttp's leveled logger to zerolog. Only errors
// and warnings are forwarded; per-attempt chatter stays silent.
type retryLogger struct {
	log *logging.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log.Error().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log.Warn().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{})  {}
func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {}

// HTTPFetcher downloads assets over plain HTTP GET. Transient failures on
// the asset host (throttling, 5xx, connection resets) are retried by
// retryablehttp with its default backoff; the pipeline's own executor covers
// the API listing side, where the backoff schedule is part of the contract.
type HTTPFetcher struct {
	client *retryablehttp.Client
}

// NewHTTPFetcher wraps the shared HTTP client with retry logic for asset
// downloads. The wrapped client's transport stays owned by the caller.
func NewHTTPFetcher(httpClient *nethttp.Client, logger *logging.Logger) *HTTPFetcher {
	rc := retryablehttp.NewClient()
	rc.HTTPClient = httpClient
	rc.RetryMax = 4
	rc.RetryWaitMin = 1 * time.Second
	rc.RetryWaitMax = 30 * time.Second
	rc.Logger = &retryLogger{log: logger}

	return &HTTPFetcher{client: rc}
}

// Fetch downloads the asset at locator into destDir. The saved file's name
// is the locator's final path segment.
func (f *HTTPFetcher) Fetch(ctx context.Context, locator, destDir string) (string, error) {
	u, err := url.Parse(locator)
	if err != nil {
		return "", fmt.Errorf("invalid asset locator %q: %w", locator, err)
	}

	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "", fmt.Errorf("asset locator %q has no file name", locator)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, "GET", locator, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s failed: %w", locator, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("download %s failed: status %d", locator, resp.StatusCode)
	}

	if err := diskspace.CheckAvailableSpace(destDir, resp.ContentLength); err != nil {
		return "", err
	}

	localPath := filepath.Join(destDir, name)
	out, err := os.Create(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", localPath, err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(localPath) // no partial files on disk
		return "", fmt.Errorf("failed to write %s: %w", localPath, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(localPath)
		return "", fmt.Errorf("failed to close %s: %w", localPath, err)
	}

	return localPath, nil
}
