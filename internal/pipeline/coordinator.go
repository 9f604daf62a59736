package pipeline

import (
	"context"
	"sync"

	"github.com/whcollect/whcollect/internal/downloader"
	"github.com/whcollect/whcollect/internal/logging"
)

// DefaultWorkers is the worker pool size when the caller does not choose one.
const DefaultWorkers = 4

// Coordinator owns the bounded worker pool that drains the download queue.
type Coordinator struct {
	fetcher downloader.Fetcher
	workers int
	log     *logging.Logger

	// OnTaskDone, if set, is called after each task completes, with the
	// fetch error or nil. Called concurrently from worker goroutines.
	OnTaskDone func(task Task, err error)
}

// NewCoordinator creates a coordinator with exactly workers concurrent
// workers (DefaultWorkers when workers < 1).
func NewCoordinator(fetcher downloader.Fetcher, workers int, logger *logging.Logger) *Coordinator {
	if workers < 1 {
		workers = DefaultWorkers
	}
	return &Coordinator{
		fetcher: fetcher,
		workers: workers,
		log:     logger,
	}
}

// Run drains the queue and returns once it is fully drained: the producer
// has closed it, no tasks remain, and every dequeued task has been marked
// complete. Per-task failures never abort the run; they are recorded in
// the report. Workers only ever stop at the dequeue suspension point, never
// mid-download.
func (c *Coordinator) Run(ctx context.Context, queue *Queue) *Report {
	var (
		mu     sync.Mutex
		report Report
		wg     sync.WaitGroup
	)

	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for {
				task, ok := queue.Dequeue()
				if !ok {
					return
				}

				localPath, err := c.fetcher.Fetch(ctx, task.Locator, task.DestDir)

				mu.Lock()
				if err != nil {
					report.Failed++
					report.Errors = append(report.Errors, TaskError{Task: task, Err: err})
				} else {
					report.Downloaded++
				}
				mu.Unlock()

				if err != nil {
					c.log.Warn().
						Int("worker", worker).
						Str("locator", task.Locator).
						Err(err).
						Msg("Download failed")
				} else {
					c.log.Debug().
						Int("worker", worker).
						Str("path", localPath).
						Msg("Download complete")
				}

				if c.OnTaskDone != nil {
					c.OnTaskDone(task, err)
				}
			}
		}(i)
	}

	wg.Wait()
	return &report
}
