package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/triago-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/triago-cli/internal/core/domain"
	"github.com/custodia-labs/triago-cli/internal/core/ports/driven"
)

type fakeAdapter struct {
	provider domain.ProviderType
	sourceID string
	items    []domain.ChangedItem
	cursor   string
	listErr  error
}

func (f *fakeAdapter) Provider() domain.ProviderType  { return f.provider }
func (f *fakeAdapter) SourceID() string               { return f.sourceID }
func (f *fakeAdapter) Validate(context.Context) error { return nil }
func (f *fakeAdapter) Close() error                   { return nil }

func (f *fakeAdapter) ListChanges(_ context.Context, _ string) ([]domain.ChangedItem, string, error) {
	if f.listErr != nil {
		return nil, "", f.listErr
	}
	return f.items, f.cursor, nil
}

func (f *fakeAdapter) FetchContent(_ context.Context, externalID string) (string, error) {
	for _, item := range f.items {
		if item.ExternalID == externalID {
			return item.Content, nil
		}
	}
	return "", domain.ErrNotFound
}

func (f *fakeAdapter) IsInScope(item domain.ChangedItem, scopeIDs []string) bool {
	if len(scopeIDs) == 0 {
		return true
	}
	for _, id := range scopeIDs {
		if id == item.ParentID {
			return true
		}
	}
	return false
}

type fakeFactory struct {
	adapter driven.SourceAdapter
}

func (f *fakeFactory) Create(_ context.Context, _ domain.ConnectedSource) (driven.SourceAdapter, error) {
	return f.adapter, nil
}

func (f *fakeFactory) SupportedProviders() []domain.ProviderType {
	return []domain.ProviderType{domain.ProviderTeams, domain.ProviderDrive}
}

func newTestEngine(t *testing.T, store *memory.Store, adapter driven.SourceAdapter) *DetectionEngine {
	t.Helper()
	pipeline := NewPipeline(nil, NewRedactor(nil, nil), NewScorer())
	pipeline.batchCooldown = 0
	return NewDetectionEngine(
		"org",
		store.Sources(),
		store.Drafts(),
		store.SyncOperations(),
		&fakeFactory{adapter: adapter},
		NewStateTracker(store.FileStates()),
		NewDiffSummariser(nil),
		pipeline,
	)
}

func saveActiveSource(t *testing.T, store *memory.Store, id string) {
	t.Helper()
	require.NoError(t, store.Sources().Save(context.Background(), domain.ConnectedSource{
		ID:       id,
		OrgID:    "org",
		Provider: domain.ProviderDrive,
		Name:     "Shared drive",
		Active:   true,
	}))
}

func driveItem(id, content string) domain.ChangedItem {
	return domain.ChangedItem{
		Kind:       domain.ItemDriveFile,
		ExternalID: id,
		Title:      "Doc " + id,
		Content:    content,
		Author:     "dana",
		ModifiedAt: time.Now(),
	}
}

func TestDetectOneIngestsAndAdvancesCursor(t *testing.T) {
	store := memory.NewStore()
	saveActiveSource(t, store, "src-1")
	adapter := &fakeAdapter{
		provider: domain.ProviderDrive,
		sourceID: "src-1",
		cursor:   "cursor-1",
		items: []domain.ChangedItem{
			driveItem("file-1", "# Onboarding\n\nThe onboarding checklist covers accounts, hardware and access requests."),
			driveItem("file-2", "# Release Process\n\nReleases are cut every Tuesday after the integration suite passes."),
		},
	}
	engine := newTestEngine(t, store, adapter)

	op, err := engine.DetectOne(context.Background(), "src-1", domain.SyncManual)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncCompleted, op.State)
	assert.Equal(t, 2, op.ItemsProcessed)
	assert.Equal(t, 2, op.ItemsCreated)
	assert.Zero(t, op.ItemsFailed)
	assert.Equal(t, "cursor-1", op.CursorAfter)

	source, err := store.Sources().Get(context.Background(), "src-1")
	require.NoError(t, err)
	assert.Equal(t, "cursor-1", source.Cursor)
	assert.False(t, source.LastCheckedAt.IsZero())

	pending, err := store.Drafts().ListPending(context.Background(), "org")
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestDetectOneRedeliveryCreatesNothing(t *testing.T) {
	store := memory.NewStore()
	saveActiveSource(t, store, "src-1")
	adapter := &fakeAdapter{
		provider: domain.ProviderDrive,
		sourceID: "src-1",
		cursor:   "cursor-1",
		items: []domain.ChangedItem{
			driveItem("file-1", "# Onboarding\n\nThe onboarding checklist covers accounts, hardware and access requests."),
		},
	}
	engine := newTestEngine(t, store, adapter)

	_, err := engine.DetectOne(context.Background(), "src-1", domain.SyncManual)
	require.NoError(t, err)

	// Same items again, as an at-least-once provider may redeliver.
	adapter.cursor = "cursor-2"
	op, err := engine.DetectOne(context.Background(), "src-1", domain.SyncManual)
	require.NoError(t, err)
	assert.Zero(t, op.ItemsCreated)
	assert.Zero(t, op.ItemsUpdated)
	assert.Zero(t, op.ItemsFailed)

	pending, err := store.Drafts().ListPending(context.Background(), "org")
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestDetectOneChangedContentSupersedes(t *testing.T) {
	store := memory.NewStore()
	saveActiveSource(t, store, "src-1")
	adapter := &fakeAdapter{
		provider: domain.ProviderDrive,
		sourceID: "src-1",
		cursor:   "cursor-1",
		items: []domain.ChangedItem{
			driveItem("file-1", "# Release Process\n\nReleases are cut every Tuesday after the integration suite passes."),
		},
	}
	engine := newTestEngine(t, store, adapter)

	_, err := engine.DetectOne(context.Background(), "src-1", domain.SyncManual)
	require.NoError(t, err)

	first, err := store.Drafts().LatestForItem(context.Background(), "org", "file-1")
	require.NoError(t, err)

	adapter.cursor = "cursor-2"
	adapter.items[0].Content = "# Release Process\n\n# Hotfixes\n\nReleases are cut every Tuesday. Hotfixes may ship any day after review."
	op, err := engine.DetectOne(context.Background(), "src-1", domain.SyncManual)
	require.NoError(t, err)
	assert.Equal(t, 1, op.ItemsUpdated)
	assert.Zero(t, op.ItemsCreated)

	latest, err := store.Drafts().LatestForItem(context.Background(), "org", "file-1")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, latest.ID)
	assert.True(t, latest.IsUpdate)
	assert.Equal(t, first.ID, latest.SupersedesID)
	assert.NotEmpty(t, latest.ChangeSummary)

	superseded, err := store.Drafts().GetDraft(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DraftSuperseded, superseded.Status)
}

func TestDetectOneRecordsItemFailures(t *testing.T) {
	store := memory.NewStore()
	saveActiveSource(t, store, "src-1")
	adapter := &fakeAdapter{
		provider: domain.ProviderDrive,
		sourceID: "src-1",
		cursor:   "cursor-1",
		items: []domain.ChangedItem{
			driveItem("file-1", "ok"),
			driveItem("file-2", "# Fine\n\nThis document is long enough to pass validation comfortably."),
		},
	}
	engine := newTestEngine(t, store, adapter)

	op, err := engine.DetectOne(context.Background(), "src-1", domain.SyncManual)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncCompleted, op.State)
	assert.Equal(t, 1, op.ItemsCreated)
	assert.Equal(t, 1, op.ItemsFailed)
	require.Len(t, op.ItemErrors, 1)
	assert.Contains(t, op.ItemErrors[0], "file-1")
}

func TestDetectOneListFailureLeavesCursorUntouched(t *testing.T) {
	store := memory.NewStore()
	saveActiveSource(t, store, "src-1")
	adapter := &fakeAdapter{
		provider: domain.ProviderDrive,
		sourceID: "src-1",
		listErr:  errors.New("provider unavailable"),
	}
	engine := newTestEngine(t, store, adapter)

	op, err := engine.DetectOne(context.Background(), "src-1", domain.SyncManual)
	require.Error(t, err)
	require.NotNil(t, op)
	assert.Equal(t, domain.SyncFailed, op.State)
	assert.Contains(t, op.Error, "provider unavailable")

	source, err := store.Sources().Get(context.Background(), "src-1")
	require.NoError(t, err)
	assert.Empty(t, source.Cursor)
}

func TestDetectOneRefusesInactiveSource(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, store.Sources().Save(context.Background(), domain.ConnectedSource{
		ID: "src-1", OrgID: "org", Provider: domain.ProviderDrive, Active: false,
	}))
	engine := newTestEngine(t, store, &fakeAdapter{})

	_, err := engine.DetectOne(context.Background(), "src-1", domain.SyncManual)
	require.ErrorIs(t, err, domain.ErrSourceInactive)
}

func TestDetectOneSkipsOutOfScopeItems(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, store.Sources().Save(context.Background(), domain.ConnectedSource{
		ID: "src-1", OrgID: "org", Provider: domain.ProviderDrive, Active: true,
		ScopeIDs: []string{"folder-a"},
	}))
	items := []domain.ChangedItem{
		driveItem("file-1", "# In scope\n\nThis document lives inside the selected folder tree."),
		driveItem("file-2", "# Out of scope\n\nThis document lives somewhere else entirely."),
	}
	items[0].ParentID = "folder-a"
	items[1].ParentID = "folder-b"
	adapter := &fakeAdapter{provider: domain.ProviderDrive, sourceID: "src-1", cursor: "c1", items: items}
	engine := newTestEngine(t, store, adapter)

	op, err := engine.DetectOne(context.Background(), "src-1", domain.SyncManual)
	require.NoError(t, err)
	assert.Equal(t, 1, op.ItemsProcessed)
	assert.Equal(t, 1, op.ItemsCreated)
}

func TestDetectAllHonoursSyncFrequency(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Sources().Save(ctx, domain.ConnectedSource{
		ID: "due", OrgID: "org", Provider: domain.ProviderDrive, Active: true,
	}))
	require.NoError(t, store.Sources().Save(ctx, domain.ConnectedSource{
		ID: "recent", OrgID: "org", Provider: domain.ProviderDrive, Active: true,
		LastCheckedAt: time.Now(),
	}))
	require.NoError(t, store.Sources().Save(ctx, domain.ConnectedSource{
		ID: "inactive", OrgID: "org", Provider: domain.ProviderDrive, Active: false,
	}))

	adapter := &fakeAdapter{provider: domain.ProviderDrive, cursor: "c1"}
	engine := newTestEngine(t, store, adapter)

	ops, err := engine.DetectAll(ctx, domain.SyncScheduled, false)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, "due", ops[0].SourceID)

	forced, err := engine.DetectAll(ctx, domain.SyncManual, true)
	require.NoError(t, err)
	assert.Len(t, forced, 2)
}
