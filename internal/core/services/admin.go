package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/triago-cli/internal/core/domain"
	"github.com/custodia-labs/triago-cli/internal/core/ports/driven"
	"github.com/custodia-labs/triago-cli/internal/core/ports/driving"
	"github.com/custodia-labs/triago-cli/internal/logger"
)

// TriageAdminService implements the administrative triage operations
// over the draft store.
type TriageAdminService struct {
	drafts driven.DraftStore
	scorer *Scorer
}

var _ driving.TriageAdmin = (*TriageAdminService)(nil)

// NewTriageAdminService creates the service.
func NewTriageAdminService(drafts driven.DraftStore, scorer *Scorer) *TriageAdminService {
	return &TriageAdminService{drafts: drafts, scorer: scorer}
}

// PendingQueue returns the pending drafts for an organisation, newest
// first.
func (t *TriageAdminService) PendingQueue(ctx context.Context, orgID string) ([]domain.DraftDocument, error) {
	drafts, err := t.drafts.ListPending(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("list pending drafts: %w", err)
	}
	return drafts, nil
}

// RecalculateConfidence re-scores every pending draft with the heuristic
// scorer. Enrichment output is left untouched; only the confidence
// result changes, which lets threshold or weight revisions apply to the
// existing queue without re-ingestion.
func (t *TriageAdminService) RecalculateConfidence(ctx context.Context, orgID string) (int, error) {
	drafts, err := t.drafts.ListPending(ctx, orgID)
	if err != nil {
		return 0, fmt.Errorf("list pending drafts: %w", err)
	}

	rescored := 0
	for i := range drafts {
		draft := &drafts[i]
		result := t.scorer.Score(draft.Content, nil, nil, nil, draft.ChangeSummary)
		if err := t.drafts.UpdateConfidence(ctx, draft.ID, result); err != nil {
			logger.Warn("triage: rescore draft %s: %v", draft.ID, err)
			continue
		}
		rescored++
	}
	logger.Info("triage: rescored %d of %d pending drafts", rescored, len(drafts))
	return rescored, nil
}
