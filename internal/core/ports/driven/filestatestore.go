package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/triago-cli/internal/core/domain"
)

// FileStateStore persists per-(organisation, external item) digests.
type FileStateStore interface {
	// Get retrieves the state for an external item.
	Get(ctx context.Context, orgID, externalID string) (*domain.FileState, error)

	// Upsert stores or updates the state, keyed by (orgID, externalID).
	Upsert(ctx context.Context, state domain.FileState) error

	// Touch refreshes only the last-synced timestamp, used when an
	// unchanged digest suppresses reprocessing.
	Touch(ctx context.Context, orgID, externalID string, at time.Time) error
}
