package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/whcollect/whcollect/internal/api"
	"github.com/whcollect/whcollect/internal/logging"
	"github.com/whcollect/whcollect/internal/pathutil"
)

// Walker pages through each validated collection's listing and enqueues one
// download task per asset. Pages within one collection are walked strictly
// in increasing order: each page's metadata decides whether the next page is
// fetched at all.
type Walker struct {
	client    *api.Client
	queue     *Queue
	saveRoot  string
	labelDirs bool // per-collection subdirectories under saveRoot
	extra     url.Values
	log       *logging.Logger

	// OnPage, if set, is called after each listing page is enqueued.
	OnPage func(collection string, page, lastPage, assets int)

	// SkipMkdir resolves destination directories without creating them.
	// Set for enumeration-only walks.
	SkipMkdir bool
}

// NewWalker creates a walker that appends to queue. When labelDirs is true
// assets are saved under saveRoot/<label>; otherwise all collections share
// saveRoot. extra is merged into every listing request's query string.
func NewWalker(client *api.Client, queue *Queue, saveRoot string, labelDirs bool, extra url.Values, logger *logging.Logger) *Walker {
	return &Walker{
		client:    client,
		queue:     queue,
		saveRoot:  saveRoot,
		labelDirs: labelDirs,
		extra:     extra,
		log:       logger,
	}
}

// Walk enumerates every asset of every collection in refs, enqueueing a task
// per asset. An application-level error on any page aborts the whole walk;
// tasks already queued stay queued, there is no rollback.
func (w *Walker) Walk(ctx context.Context, username string, refs []api.CollectionRef) error {
	for _, ref := range refs {
		destDir, err := w.destDir(ref)
		if err != nil {
			return err
		}
		if err := w.walkCollection(ctx, username, ref, destDir); err != nil {
			return fmt.Errorf("collection %q: %w", ref.Label, err)
		}
	}
	return nil
}

// destDir resolves and, when needed, creates the save directory for one
// collection. MkdirAll keeps this idempotent across runs.
func (w *Walker) destDir(ref api.CollectionRef) (string, error) {
	if !w.labelDirs {
		return w.saveRoot, nil
	}

	dir := filepath.Join(w.saveRoot, pathutil.SafeLabel(ref.Label))
	if w.SkipMkdir {
		return dir, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return dir, nil
}

func (w *Walker) walkCollection(ctx context.Context, username string, ref api.CollectionRef, destDir string) error {
	for page := 1; ; page++ {
		// Stop issuing new pages once the run is cancelled; tasks already
		// queued are the workers' problem.
		if err := ctx.Err(); err != nil {
			return err
		}

		listing, err := w.client.CollectionPage(ctx, username, ref.ID, page, w.extra)
		if err != nil {
			return err
		}

		for _, asset := range listing.Assets {
			if err := w.queue.Enqueue(Task{Locator: asset.Path, DestDir: destDir}); err != nil {
				return err
			}
		}

		w.log.Debug().
			Str("collection", ref.Label).
			Int("page", page).
			Int("last_page", listing.LastPage).
			Int("assets", len(listing.Assets)).
			Msg("Listing page enqueued")

		if w.OnPage != nil {
			w.OnPage(ref.Label, page, listing.LastPage, len(listing.Assets))
		}

		// last_page is re-read from every response; the last-read value wins.
		if listing.CurrentPage >= listing.LastPage {
			return nil
		}
	}
}
