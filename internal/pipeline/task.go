// Package pipeline implements the fetch/queue/download pipeline: collection
// validation, paginated listing traversal, and the bounded worker pool that
// drains the download queue.
package pipeline

import "fmt"

// Task is one queued unit of work pairing a remote asset locator with the
// directory the asset is saved into. Immutable; consumed exactly once by
// exactly one worker.
type Task struct {
	Locator string
	DestDir string
}

// TaskError records one task whose download failed after retries.
type TaskError struct {
	Task Task
	Err  error
}

func (e TaskError) Error() string {
	return fmt.Sprintf("%s: %v", e.Task.Locator, e.Err)
}

func (e TaskError) Unwrap() error {
	return e.Err
}

// Report aggregates the outcome of one run. Individual download failures do
// not abort the run; they are collected here and surfaced once the queue
// drains.
type Report struct {
	Downloaded int
	Failed     int
	Errors     []TaskError
}

// Total returns the number of tasks processed.
func (r *Report) Total() int {
	return r.Downloaded + r.Failed
}
