package driven

import (
	"context"

	"github.com/custodia-labs/triago-cli/internal/core/domain"
)

// DraftStore persists draft documents awaiting review.
type DraftStore interface {
	// SaveDraft stores a new draft. Any pending draft for the same
	// (orgID, externalID) is marked superseded in the same transaction.
	// Returns domain.ErrAlreadyExists when a draft with the same
	// (orgID, externalID, contentDigest) was already ingested, which
	// callers treat as an idempotent no-op.
	SaveDraft(ctx context.Context, draft *domain.DraftDocument) error

	// GetDraft retrieves a draft by ID.
	GetDraft(ctx context.Context, id string) (*domain.DraftDocument, error)

	// LatestForItem returns the most recent non-superseded draft for an
	// external item, or domain.ErrNotFound.
	LatestForItem(ctx context.Context, orgID, externalID string) (*domain.DraftDocument, error)

	// ListPending returns pending drafts for an organisation, newest
	// first.
	ListPending(ctx context.Context, orgID string) ([]domain.DraftDocument, error)

	// UpdateConfidence overwrites the stored confidence result on a
	// draft without touching its content.
	UpdateConfidence(ctx context.Context, id string, result domain.ConfidenceResult) error
}
