package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

// fakeFetcher records fetched locators and fails those matched by failWhen.
type fakeFetcher struct {
	mu       sync.Mutex
	fetched  []string
	failWhen func(locator string) bool
	inflight int32
	peak     int32
}

func (f *fakeFetcher) Fetch(ctx context.Context, locator, destDir string) (string, error) {
	n := atomic.AddInt32(&f.inflight, 1)
	for {
		peak := atomic.LoadInt32(&f.peak)
		if n <= peak || atomic.CompareAndSwapInt32(&f.peak, peak, n) {
			break
		}
	}
	defer atomic.AddInt32(&f.inflight, -1)

	f.mu.Lock()
	f.fetched = append(f.fetched, locator)
	f.mu.Unlock()

	if f.failWhen != nil && f.failWhen(locator) {
		return "", errors.New("fetch failed")
	}
	return filepath.Join(destDir, filepath.Base(locator)), nil
}

// TestRun_DrainsEverything verifies every queued task is fetched exactly once
// and counted in the report.
func TestRun_DrainsEverything(t *testing.T) {
	q := NewQueue()
	const total = 50
	for i := 0; i < total; i++ {
		q.Enqueue(Task{Locator: fmt.Sprintf("https://x/full/w-%d.jpg", i), DestDir: "/tmp"})
	}
	q.Close()

	fetcher := &fakeFetcher{}
	c := NewCoordinator(fetcher, 4, quietLogger())
	report := c.Run(context.Background(), q)

	if report.Downloaded != total || report.Failed != 0 {
		t.Errorf("report = %d downloaded / %d failed, want %d / 0", report.Downloaded, report.Failed, total)
	}
	if report.Total() != total {
		t.Errorf("Total() = %d, want %d", report.Total(), total)
	}

	seen := make(map[string]int)
	for _, loc := range fetcher.fetched {
		seen[loc]++
	}
	if len(seen) != total {
		t.Errorf("expected %d distinct fetches, got %d", total, len(seen))
	}
	for loc, n := range seen {
		if n != 1 {
			t.Errorf("locator %s fetched %d times", loc, n)
		}
	}
}

// TestRun_FailuresCollectedNotFatal verifies a failing task is recorded in
// the report while the rest of the queue still drains.
func TestRun_FailuresCollectedNotFatal(t *testing.T) {
	q := NewQueue()
	for i := 0; i < 10; i++ {
		q.Enqueue(Task{Locator: fmt.Sprintf("https://x/full/w-%d.jpg", i), DestDir: "/tmp"})
	}
	q.Close()

	fetcher := &fakeFetcher{
		failWhen: func(locator string) bool { return strings.Contains(locator, "w-3") },
	}
	c := NewCoordinator(fetcher, 2, quietLogger())
	report := c.Run(context.Background(), q)

	if report.Downloaded != 9 {
		t.Errorf("expected 9 downloads, got %d", report.Downloaded)
	}
	if report.Failed != 1 {
		t.Errorf("expected 1 failure, got %d", report.Failed)
	}
	if len(report.Errors) != 1 {
		t.Fatalf("expected 1 task error, got %d", len(report.Errors))
	}
	if !strings.Contains(report.Errors[0].Task.Locator, "w-3") {
		t.Errorf("unexpected failed locator: %s", report.Errors[0].Task.Locator)
	}
	if report.Errors[0].Err == nil {
		t.Error("task error should carry the cause")
	}
}

// TestRun_BoundedConcurrency verifies no more workers run fetches at once
// than configured.
func TestRun_BoundedConcurrency(t *testing.T) {
	q := NewQueue()
	for i := 0; i < 100; i++ {
		q.Enqueue(Task{Locator: fmt.Sprintf("https://x/full/w-%d.jpg", i), DestDir: "/tmp"})
	}
	q.Close()

	fetcher := &fakeFetcher{}
	c := NewCoordinator(fetcher, 3, quietLogger())
	c.Run(context.Background(), q)

	if fetcher.peak > 3 {
		t.Errorf("observed %d concurrent fetches, limit is 3", fetcher.peak)
	}
}

// TestRun_OnTaskDone verifies the completion hook fires once per task with
// the task's outcome.
func TestRun_OnTaskDone(t *testing.T) {
	q := NewQueue()
	q.Enqueue(Task{Locator: "https://x/full/ok.jpg", DestDir: "/tmp"})
	q.Enqueue(Task{Locator: "https://x/full/bad.jpg", DestDir: "/tmp"})
	q.Close()

	fetcher := &fakeFetcher{
		failWhen: func(locator string) bool { return strings.Contains(locator, "bad") },
	}
	c := NewCoordinator(fetcher, 2, quietLogger())

	var mu sync.Mutex
	outcomes := make(map[string]error)
	c.OnTaskDone = func(task Task, err error) {
		mu.Lock()
		outcomes[task.Locator] = err
		mu.Unlock()
	}

	c.Run(context.Background(), q)

	if len(outcomes) != 2 {
		t.Fatalf("expected 2 completion callbacks, got %d", len(outcomes))
	}
	if outcomes["https://x/full/ok.jpg"] != nil {
		t.Errorf("ok task reported error: %v", outcomes["https://x/full/ok.jpg"])
	}
	if outcomes["https://x/full/bad.jpg"] == nil {
		t.Error("bad task reported no error")
	}
}

// TestNewCoordinator_DefaultWorkers verifies the fallback pool size.
func TestNewCoordinator_DefaultWorkers(t *testing.T) {
	c := NewCoordinator(&fakeFetcher{}, 0, quietLogger())
	if c.workers != DefaultWorkers {
		t.Errorf("expected %d workers, got %d", DefaultWorkers, c.workers)
	}
}
