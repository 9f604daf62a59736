// Package http provides the shared HTTP transport and the retrying request
// executor used by every remote call the pipeline makes.
package http

import (
	nethttp "net/http"
	"time"

	"golang.org/x/net/http2"
)

// NewPooledClient creates an HTTP client tuned for many concurrent requests
// against a single host.
//
// The returned client owns its transport and is safe for concurrent use; one
// instance is shared by the listing walker, the collection validator, and
// every download worker. Proxy settings come from the environment
// (HTTP_PROXY, HTTPS_PROXY, NO_PROXY).
//
// timeout bounds each request end to end. Pass 0 for no client-level timeout
// when per-request deadlines come from the context instead.
func NewPooledClient(timeout time.Duration) *nethttp.Client {
	tr := &nethttp.Transport{
		Proxy: nethttp.ProxyFromEnvironment,

		// Connection pooling - the workers all hit the same CDN host,
		// so allow enough idle connections for full reuse.
		MaxIdleConns:        64,
		MaxIdleConnsPerHost: 16,
		MaxConnsPerHost:     16,
		IdleConnTimeout:     90 * time.Second,

		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		// Already-compressed image payloads gain nothing from gzip.
		DisableCompression: true,
		ForceAttemptHTTP2:  true,
	}

	// HTTP/2 gives better multiplexing for the paginated listing calls.
	_ = http2.ConfigureTransport(tr)

	return &nethttp.Client{
		Transport: tr,
		Timeout:   timeout,
	}
}
