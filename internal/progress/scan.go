package progress

import (
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// ScanProgress is a spinner for the listing-only phase (dry runs), where the
// total is unknown until the last page of the last collection is read.
type ScanProgress struct {
	bar *progressbar.ProgressBar
}

// NewScanProgress creates the spinner on stderr.
func NewScanProgress() *ScanProgress {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("scanning collections"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
	)
	return &ScanProgress{bar: bar}
}

// PageScanned advances the spinner after one listing page.
func (p *ScanProgress) PageScanned(collection string, page, lastPage, assets int) {
	p.bar.Describe(fmt.Sprintf("scanning %s (page %d/%d)", collection, page, lastPage))
	_ = p.bar.Add(1)
}

// Finish stops the spinner.
func (p *ScanProgress) Finish() {
	_ = p.bar.Finish()
}
