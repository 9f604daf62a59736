package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/whcollect/whcollect/internal/api"
	"github.com/whcollect/whcollect/internal/logging"
)

// Validator resolves caller-supplied collection identifiers against the
// remote collection index. Callers may mix labels and decimal ids freely;
// matching is set membership, not positional.
type Validator struct {
	client *api.Client
	log    *logging.Logger

	mu        sync.Mutex
	validated []api.CollectionRef
}

// NewValidator creates a validator backed by the given API client.
func NewValidator(client *api.Client, logger *logging.Logger) *Validator {
	return &Validator{client: client, log: logger}
}

// Validate fetches the collection index for username once and returns the
// deduplicated set of (id, label) pairs whose label or stringified id
// appears in requested. A request that matches nothing yields a smaller
// (possibly empty) result, not an error; the caller decides that policy.
func (v *Validator) Validate(ctx context.Context, username string, requested []string) ([]api.CollectionRef, error) {
	want := make(map[string]struct{}, len(requested))
	for _, r := range requested {
		want[strings.TrimSpace(r)] = struct{}{}
	}

	entries, err := v.client.CollectionIndex(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch collection index for %s: %w", username, err)
	}

	seen := make(map[api.CollectionRef]struct{})
	refs := make([]api.CollectionRef, 0, len(requested))
	for _, entry := range entries {
		id := entry.ID.String()
		_, byLabel := want[entry.Label]
		_, byID := want[id]
		if !byLabel && !byID {
			continue
		}

		ref := api.CollectionRef{ID: id, Label: entry.Label}
		if _, dup := seen[ref]; dup {
			continue
		}
		seen[ref] = struct{}{}
		refs = append(refs, ref)
	}

	if len(refs) == 0 {
		v.log.Warn().
			Str("username", username).
			Strs("requested", requested).
			Msg("No requested collections matched the remote index")
	}

	v.mu.Lock()
	v.validated = refs
	v.mu.Unlock()

	return refs, nil
}

// Validated returns the result of the most recent Validate call, for reuse
// by the listing walker without a second index fetch.
func (v *Validator) Validated() []api.CollectionRef {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.validated
}
