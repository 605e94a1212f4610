package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/triago-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/triago-cli/internal/core/domain"
)

func TestRecalculateConfidenceRescoresPendingDrafts(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	stale := domain.ConfidenceResult{Score: 0.99, Level: domain.LevelGreen, Reasoning: "stale"}
	require.NoError(t, store.Drafts().SaveDraft(ctx, &domain.DraftDocument{
		ID: "d1", OrgID: "org", ExternalID: "item-1", ContentDigest: "a",
		Content:    "# Runbook\n\nA structured document describing the recovery procedure in detail.",
		Status:     domain.DraftPending,
		Confidence: stale,
		CreatedAt:  time.Now(),
	}))
	require.NoError(t, store.Drafts().SaveDraft(ctx, &domain.DraftDocument{
		ID: "d2", OrgID: "org", ExternalID: "item-2", ContentDigest: "b",
		Content:   "ok",
		Status:    domain.DraftApproved,
		CreatedAt: time.Now(),
	}))

	admin := NewTriageAdminService(store.Drafts(), NewScorer())

	rescored, err := admin.RecalculateConfidence(ctx, "org")
	require.NoError(t, err)
	assert.Equal(t, 1, rescored)

	got, err := store.Drafts().GetDraft(ctx, "d1")
	require.NoError(t, err)
	assert.NotEqual(t, "stale", got.Confidence.Reasoning)
	assert.NotZero(t, got.Confidence.Score)

	// Approved drafts are left alone.
	approved, err := store.Drafts().GetDraft(ctx, "d2")
	require.NoError(t, err)
	assert.Zero(t, approved.Confidence.Score)
}

func TestPendingQueueNewestFirst(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	require.NoError(t, store.Drafts().SaveDraft(ctx, &domain.DraftDocument{
		ID: "old", OrgID: "org", ExternalID: "item-1", ContentDigest: "a",
		Status: domain.DraftPending, CreatedAt: time.Now().Add(-time.Hour),
	}))
	require.NoError(t, store.Drafts().SaveDraft(ctx, &domain.DraftDocument{
		ID: "new", OrgID: "org", ExternalID: "item-2", ContentDigest: "b",
		Status: domain.DraftPending, CreatedAt: time.Now(),
	}))

	admin := NewTriageAdminService(store.Drafts(), NewScorer())
	queue, err := admin.PendingQueue(ctx, "org")
	require.NoError(t, err)
	require.Len(t, queue, 2)
	assert.Equal(t, "new", queue[0].ID)
	assert.Equal(t, "old", queue[1].ID)
}
