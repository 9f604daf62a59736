package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/whcollect/whcollect/internal/http"
)

// DefaultBaseURL is the wallhaven API root.
const DefaultBaseURL = "https://wallhaven.cc/api/v1"

// Client is the wallhaven API client. Every request goes through the
// retrying executor, so throttled (429) responses are invisible to callers
// unless retries exhaust.
//
// The underlying HTTP client is shared and never closed here; its lifecycle
// belongs to whoever constructed it (see pipeline.Orchestrator).
type Client struct {
	httpClient *nethttp.Client
	retry      http.Config
	baseURL    string
	apiKey     string
	keyInQuery bool
}

// NewClient creates an API client on top of a caller-supplied HTTP client.
// If keyInQuery is true the API key is sent as the apikey query parameter
// instead of the X-API-Key header (some deployments strip custom headers).
func NewClient(httpClient *nethttp.Client, baseURL, apiKey string, keyInQuery bool) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		retry:      http.DefaultConfig(),
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		keyInQuery: keyInQuery,
	}
}

// SetRetryConfig overrides the retry parameters used for API calls.
func (c *Client) SetRetryConfig(cfg http.Config) {
	c.retry = cfg
}

// get performs an authenticated GET with retry on throttled responses.
func (c *Client) get(ctx context.Context, path string, query url.Values) (*nethttp.Response, error) {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}

	header := nethttp.Header{}
	header.Set("Accept", "application/json")
	if c.apiKey != "" {
		if c.keyInQuery {
			q.Set("apikey", c.apiKey)
		} else {
			header.Set("X-API-Key", c.apiKey)
		}
	}

	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	return http.Do(ctx, c.httpClient, c.retry, "GET", u, header)
}

// CollectionIndex fetches the collection index for username: every
// collection the API key is allowed to see, with its id and label.
func (c *Client) CollectionIndex(ctx context.Context, username string) ([]IndexEntry, error) {
	resp, err := c.get(ctx, "/collections/"+url.PathEscape(username), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("get collection index failed: status %d: %s", resp.StatusCode, string(body))
	}

	var env indexEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode collection index: %w", err)
	}
	if env.Error != "" {
		return nil, &APIError{Message: env.Error}
	}

	return env.Data, nil
}

// CollectionPage fetches one page of a collection listing. Pages are
// 1-indexed; extra query parameters are merged with the page number.
func (c *Client) CollectionPage(ctx context.Context, username, collectionID string, page int, extra url.Values) (*ListingPage, error) {
	q := url.Values{}
	for k, v := range extra {
		q[k] = v
	}
	q.Set("page", strconv.Itoa(page))

	path := "/collections/" + url.PathEscape(username) + "/" + url.PathEscape(collectionID)
	resp, err := c.get(ctx, path, q)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("get collection page %d failed: status %d: %s", page, resp.StatusCode, string(body))
	}

	var env listingEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode collection page %d: %w", page, err)
	}
	if env.Error != "" {
		return nil, &APIError{Message: env.Error}
	}

	return &ListingPage{
		Assets:      env.Data,
		CurrentPage: env.Meta.CurrentPage,
		LastPage:    env.Meta.LastPage,
	}, nil
}
