package pipeline

import (
	"context"
	"fmt"
	nethttp "net/http"

	"github.com/whcollect/whcollect/internal/api"
	"github.com/whcollect/whcollect/internal/config"
	"github.com/whcollect/whcollect/internal/downloader"
	"github.com/whcollect/whcollect/internal/http"
	"github.com/whcollect/whcollect/internal/logging"
)

// Orchestrator wires the validator, walker and coordinator together and owns
// the lifecycle of the shared HTTP transport: it either creates-and-owns the
// client (and releases it on every exit path) or borrows a caller-owned one
// it must never close. Ownership is fixed at construction.
type Orchestrator struct {
	cfg *config.Config
	log *logging.Logger

	httpClient *nethttp.Client
	ownsClient bool
	fetcher    downloader.Fetcher

	// OnPage and OnTaskDone forward progress to the UI layer. Optional;
	// set before Run.
	OnPage     func(collection string, page, lastPage, assets int)
	OnTaskDone func(task Task, err error)
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithHTTPClient injects a caller-owned HTTP client. The orchestrator will
// use it for every request but never close it.
func WithHTTPClient(client *nethttp.Client) Option {
	return func(o *Orchestrator) {
		o.httpClient = client
		o.ownsClient = false
	}
}

// WithFetcher overrides the asset fetcher.
func WithFetcher(f downloader.Fetcher) Option {
	return func(o *Orchestrator) {
		o.fetcher = f
	}
}

// NewOrchestrator validates cfg and assembles the pipeline. Configuration
// errors surface here, before any network activity.
func NewOrchestrator(cfg *config.Config, logger *logging.Logger, opts ...Option) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &Orchestrator{cfg: cfg, log: logger}
	for _, opt := range opts {
		opt(o)
	}

	if o.httpClient == nil {
		o.httpClient = http.NewPooledClient(cfg.RequestTimeout)
		o.ownsClient = true
	}
	if o.fetcher == nil {
		o.fetcher = downloader.NewHTTPFetcher(o.httpClient, logger)
	}

	return o, nil
}

// apiClient builds the API client sharing the orchestrator's transport.
func (o *Orchestrator) apiClient() *api.Client {
	client := api.NewClient(o.httpClient, o.cfg.APIBaseURL, o.cfg.APIKey, o.cfg.KeyInQuery)
	retry := http.DefaultConfig()
	retry.MaxAttempts = o.cfg.MaxAttempts
	retry.OnRetry = func(attempt int, err error) {
		o.log.Warn().Int("attempt", attempt).Err(err).Msg("Request throttled, backing off")
	}
	client.SetRetryConfig(retry)
	return client
}

// Run executes the pipeline: validate the requested collections, walk their
// listings into the queue, and drain the queue with the worker pool. The
// walker runs as the producer goroutine so workers start downloading while
// pages are still being listed.
//
// Per-task download failures never abort the run; they come back in the
// report. A validator or walker failure aborts enumeration, but Run still
// waits for the already-queued downloads to drain before returning it.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	if o.ownsClient {
		defer o.httpClient.CloseIdleConnections()
	}

	client := o.apiClient()
	validator := NewValidator(client, o.log)
	refs, err := validator.Validate(ctx, o.cfg.Username, o.cfg.Collections)
	if err != nil {
		return nil, fmt.Errorf("validating collections: %w", err)
	}
	if len(refs) == 0 {
		return &Report{}, nil
	}

	o.log.Info().
		Str("username", o.cfg.Username).
		Int("collections", len(refs)).
		Int("workers", o.cfg.Workers).
		Msg("Starting download run")

	queue := NewQueue()
	walker := NewWalker(client, queue, o.cfg.SaveDir, !o.cfg.Flat, o.cfg.ExtraQuery, o.log)
	walker.OnPage = o.OnPage

	coordinator := NewCoordinator(o.fetcher, o.cfg.Workers, o.log)
	coordinator.OnTaskDone = o.OnTaskDone

	walkDone := make(chan error, 1)
	go func() {
		defer queue.Close()
		walkDone <- walker.Walk(ctx, o.cfg.Username, refs)
	}()

	report := coordinator.Run(ctx, queue)

	if err := <-walkDone; err != nil {
		// Tasks queued before the failure were still drained above.
		return report, fmt.Errorf("walking collections: %w", err)
	}
	return report, nil
}

// Enumerate validates and walks the listings without downloading anything,
// returning every task a real run would execute. Used by dry-run mode.
func (o *Orchestrator) Enumerate(ctx context.Context) ([]Task, error) {
	if o.ownsClient {
		defer o.httpClient.CloseIdleConnections()
	}

	client := o.apiClient()
	validator := NewValidator(client, o.log)
	refs, err := validator.Validate(ctx, o.cfg.Username, o.cfg.Collections)
	if err != nil {
		return nil, fmt.Errorf("validating collections: %w", err)
	}
	if len(refs) == 0 {
		return nil, nil
	}

	queue := NewQueue()
	walker := NewWalker(client, queue, o.cfg.SaveDir, !o.cfg.Flat, o.cfg.ExtraQuery, o.log)
	walker.OnPage = o.OnPage
	walker.SkipMkdir = true

	walkErr := walker.Walk(ctx, o.cfg.Username, refs)
	queue.Close()

	var tasks []Task
	for {
		task, ok := queue.Dequeue()
		if !ok {
			break
		}
		tasks = append(tasks, task)
	}

	if walkErr != nil {
		return tasks, fmt.Errorf("walking collections: %w", walkErr)
	}
	return tasks, nil
}
