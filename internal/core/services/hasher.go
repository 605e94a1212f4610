package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/triago-cli/internal/core/domain"
	"github.com/custodia-labs/triago-cli/internal/core/ports/driven"
)

// ContentDigest returns the hex SHA-256 of the trimmed content. The
// digest is byte-exact after trimming; no whitespace normalisation is
// applied beyond that.
func ContentDigest(content string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(content)))
	return hex.EncodeToString(sum[:])
}

// ProcessDecision is the state tracker's verdict for one item.
type ProcessDecision struct {
	// Process is true when the content differs from the last known
	// digest (or no state exists yet).
	Process bool

	// Digest is the computed digest of the new content.
	Digest string
}

// StateTracker compares content digests against stored file states to
// suppress no-op reprocessing.
type StateTracker struct {
	states driven.FileStateStore
}

// NewStateTracker creates a state tracker over a file-state store.
func NewStateTracker(states driven.FileStateStore) *StateTracker {
	return &StateTracker{states: states}
}

// ShouldProcess decides whether an item needs reprocessing. When the
// stored digest matches, only the last-synced timestamp is refreshed.
// The caller commits the new digest after enrichment succeeds, so a
// failed enrichment is retried on the next run.
func (t *StateTracker) ShouldProcess(ctx context.Context, orgID, externalID, rawContent string) (ProcessDecision, error) {
	digest := ContentDigest(rawContent)

	state, err := t.states.Get(ctx, orgID, externalID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ProcessDecision{Process: true, Digest: digest}, nil
		}
		return ProcessDecision{}, fmt.Errorf("get file state: %w", err)
	}

	if state.Digest == digest {
		if err := t.states.Touch(ctx, orgID, externalID, time.Now().UTC()); err != nil {
			return ProcessDecision{}, fmt.Errorf("touch file state: %w", err)
		}
		return ProcessDecision{Process: false, Digest: digest}, nil
	}

	return ProcessDecision{Process: true, Digest: digest}, nil
}

// Commit upserts the digest after a successful enrichment.
func (t *StateTracker) Commit(ctx context.Context, orgID, externalID, digest string, modifiedAt time.Time) error {
	state := domain.FileState{
		OrgID:        orgID,
		ExternalID:   externalID,
		Digest:       digest,
		ModifiedAt:   modifiedAt,
		LastSyncedAt: time.Now().UTC(),
	}
	if err := t.states.Upsert(ctx, state); err != nil {
		return fmt.Errorf("upsert file state: %w", err)
	}
	return nil
}
