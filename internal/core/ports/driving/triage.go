package driving

import (
	"context"

	"github.com/custodia-labs/triago-cli/internal/core/domain"
)

// TriageAdmin exposes the administrative triage operations.
type TriageAdmin interface {
	// PendingQueue returns the pending drafts for an organisation,
	// newest first.
	PendingQueue(ctx context.Context, orgID string) ([]domain.DraftDocument, error)

	// RecalculateConfidence re-runs the confidence scorer over all
	// pending drafts without re-running enrichment. Returns the number
	// of drafts rescored.
	RecalculateConfidence(ctx context.Context, orgID string) (int, error)
}
