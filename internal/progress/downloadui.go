// Package progress provides terminal progress reporting for the download
// pipeline: an aggregate bar for the worker pool and a spinner for listing
// scans.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"
)

// DownloadUI renders one aggregate progress bar for the whole download run.
// The total grows while the listing walker is still enqueueing tasks, so the
// bar is only marked complete explicitly via Finish.
//
// Safe for concurrent use: the walker grows the total while workers
// increment completions.
type DownloadUI struct {
	progress   *mpb.Progress
	bar        *mpb.Bar
	isTerminal bool
	total      int64
	failed     int64
}

// NewDownloadUI creates the aggregate download bar. Output goes to stderr;
// on a non-terminal stderr the bar is suppressed entirely.
func NewDownloadUI() *DownloadUI {
	isTerminal := term.IsTerminal(int(os.Stderr.Fd()))

	var p *mpb.Progress
	if isTerminal {
		// ANSI escapes need Virtual Terminal processing on Windows.
		enableWindowsANSI(os.Stderr)

		p = mpb.New(
			mpb.WithOutput(os.Stderr),
			mpb.WithRefreshRate(300*time.Millisecond),
			mpb.WithWidth(80),
		)
	} else {
		p = mpb.New(mpb.WithOutput(io.Discard))
	}

	u := &DownloadUI{
		progress:   p,
		isTerminal: isTerminal,
	}

	u.bar = p.New(0,
		mpb.BarStyle().
			Lbound("[").
			Filler("█").
			Tip("█").
			Padding("░").
			Rbound("]"),
		mpb.PrependDecorators(
			decor.Any(func(s decor.Statistics) string {
				failed := atomic.LoadInt64(&u.failed)
				if failed > 0 {
					return fmt.Sprintf("downloading (%d failed)", failed)
				}
				return "downloading"
			}, decor.WCSyncSpaceR),
		),
		mpb.AppendDecorators(
			decor.CountersNoUnit("%d / %d", decor.WCSyncSpace),
			decor.Name("  "),
			decor.Percentage(decor.WCSyncSpace),
		),
	)

	return u
}

// AddTotal grows the expected task count as listing pages come in.
func (u *DownloadUI) AddTotal(n int) {
	total := atomic.AddInt64(&u.total, int64(n))
	u.bar.SetTotal(total, false)
}

// TaskDone marks one task complete, successfully or not.
func (u *DownloadUI) TaskDone(err error) {
	if err != nil {
		atomic.AddInt64(&u.failed, 1)
	}
	u.bar.Increment()
}

// Finish pins the bar at its final total and waits for the renderer.
func (u *DownloadUI) Finish() {
	u.bar.SetTotal(atomic.LoadInt64(&u.total), true)
	u.progress.Wait()
}

// Writer returns a writer that outputs safely above the bar while it is
// rendering.
func (u *DownloadUI) Writer() io.Writer {
	if u.isTerminal {
		return u.progress
	}
	return os.Stderr
}

// IsTerminal reports whether the bar is actually rendering.
func (u *DownloadUI) IsTerminal() bool {
	return u.isTerminal
}
