package driving

import (
	"context"

	"github.com/custodia-labs/triago-cli/internal/core/domain"
)

// DetectionEngine drives change detection and ingestion across sources.
type DetectionEngine interface {
	// DetectAll scans every active source whose sync-frequency policy
	// is due and runs DetectOne for each. When force is true the
	// due-ness check is bypassed. Per-source failures are recorded on
	// their operations and do not abort sibling sources.
	DetectAll(ctx context.Context, kind domain.SyncOperationKind, force bool) ([]domain.SyncOperation, error)

	// DetectOne runs a single detection/ingestion pass for one source
	// and returns the finalised operation.
	DetectOne(ctx context.Context, sourceID string, kind domain.SyncOperationKind) (*domain.SyncOperation, error)

	// ResetCursor nulls a source's cursor to force a full rescan on the
	// next check.
	ResetCursor(ctx context.Context, sourceID string) error

	// History returns recent operations for a source, newest first.
	History(ctx context.Context, sourceID string, limit int) ([]domain.SyncOperation, error)
}
