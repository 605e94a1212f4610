package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/triago-cli/internal/core/domain"
)

// SourceStore persists connected sources.
type SourceStore interface {
	// Save stores or updates a source.
	Save(ctx context.Context, source domain.ConnectedSource) error

	// Get retrieves a source by ID.
	Get(ctx context.Context, id string) (*domain.ConnectedSource, error)

	// List returns all configured sources.
	List(ctx context.Context) ([]domain.ConnectedSource, error)

	// Deactivate soft-deletes a source on disconnect.
	Deactivate(ctx context.Context, id string) error

	// AdvanceCursor atomically commits a new cursor for a source. The
	// update only applies while operationID is the source's running
	// operation; otherwise domain.ErrCursorConflict is returned so a
	// crashed run cannot silently drop items.
	AdvanceCursor(ctx context.Context, sourceID, operationID, cursor string) error

	// ResetCursor nulls the cursor to force a full rescan on the next
	// check.
	ResetCursor(ctx context.Context, sourceID string) error

	// UpdateLastChecked records when change detection last ran.
	UpdateLastChecked(ctx context.Context, sourceID string, at time.Time) error
}
