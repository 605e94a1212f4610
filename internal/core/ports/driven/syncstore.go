package driven

import (
	"context"

	"github.com/custodia-labs/triago-cli/internal/core/domain"
)

// SyncOperationStore persists the append-only run ledger.
type SyncOperationStore interface {
	// Begin records a new operation in running state. Returns
	// domain.ErrSyncInProgress when the source already has a running
	// operation, closing the concurrent-run race.
	Begin(ctx context.Context, op *domain.SyncOperation) error

	// Finalize records the terminal state of an operation. An operation
	// is finalised exactly once.
	Finalize(ctx context.Context, op *domain.SyncOperation) error

	// ListBySource returns the most recent operations for a source,
	// newest first, up to limit.
	ListBySource(ctx context.Context, sourceID string, limit int) ([]domain.SyncOperation, error)
}
