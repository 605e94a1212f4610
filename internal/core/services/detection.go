package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/triago-cli/internal/core/domain"
	"github.com/custodia-labs/triago-cli/internal/core/ports/driven"
	"github.com/custodia-labs/triago-cli/internal/core/ports/driving"
	"github.com/custodia-labs/triago-cli/internal/logger"
)

// DetectionEngine runs change detection and ingestion across connected
// sources. One run per source at a time; the operation ledger's Begin
// closes the concurrent-run race and the cursor only advances inside the
// operation that consumed the items.
type DetectionEngine struct {
	sources  driven.SourceStore
	drafts   driven.DraftStore
	ops      driven.SyncOperationStore
	factory  driven.AdapterFactory
	tracker  *StateTracker
	differ   *DiffSummariser
	pipeline *Pipeline

	orgID string
	now   func() time.Time
	newID func() string
}

var _ driving.DetectionEngine = (*DetectionEngine)(nil)

// NewDetectionEngine creates the engine.
func NewDetectionEngine(
	orgID string,
	sources driven.SourceStore,
	drafts driven.DraftStore,
	ops driven.SyncOperationStore,
	factory driven.AdapterFactory,
	tracker *StateTracker,
	differ *DiffSummariser,
	pipeline *Pipeline,
) *DetectionEngine {
	return &DetectionEngine{
		sources:  sources,
		drafts:   drafts,
		ops:      ops,
		factory:  factory,
		tracker:  tracker,
		differ:   differ,
		pipeline: pipeline,
		orgID:    orgID,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// DetectAll checks every active source that is due (or all active
// sources when force is true). Sources are checked sequentially; a
// failure is recorded on that source's operation and the scan moves on.
func (e *DetectionEngine) DetectAll(ctx context.Context, kind domain.SyncOperationKind, force bool) ([]domain.SyncOperation, error) {
	sources, err := e.sources.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	var ops []domain.SyncOperation
	for _, source := range sources {
		if !source.Active {
			continue
		}
		if !force && !source.DueForCheck(e.now()) {
			continue
		}

		op, err := e.DetectOne(ctx, source.ID, kind)
		if err != nil {
			if errors.Is(err, domain.ErrSyncInProgress) {
				logger.Debug("detect: source %s already has a running operation, skipping", source.ID)
				continue
			}
			logger.Error("detect: source %s failed: %v", source.ID, err)
			if op == nil {
				continue
			}
		}
		ops = append(ops, *op)

		if ctx.Err() != nil {
			return ops, ctx.Err()
		}
	}
	return ops, nil
}

// DetectOne runs a single detection/ingestion pass for one source. The
// returned operation is finalised; on run-level failure it is returned
// alongside the error.
func (e *DetectionEngine) DetectOne(ctx context.Context, sourceID string, kind domain.SyncOperationKind) (*domain.SyncOperation, error) {
	source, err := e.sources.Get(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("get source %s: %w", sourceID, err)
	}
	if !source.Active {
		return nil, fmt.Errorf("source %s: %w", sourceID, domain.ErrSourceInactive)
	}

	op := &domain.SyncOperation{
		ID:           e.newID(),
		SourceID:     sourceID,
		Kind:         kind,
		State:        domain.SyncRunning,
		CursorBefore: source.Cursor,
		StartedAt:    e.now().UTC(),
	}
	if err := e.ops.Begin(ctx, op); err != nil {
		return nil, fmt.Errorf("begin operation for source %s: %w", sourceID, err)
	}

	if err := e.run(ctx, source, op); err != nil {
		op.State = domain.SyncFailed
		op.Error = err.Error()
		op.FinishedAt = e.now().UTC()
		if ferr := e.ops.Finalize(ctx, op); ferr != nil {
			logger.Error("detect: finalize failed operation %s: %v", op.ID, ferr)
		}
		return op, fmt.Errorf("source %s: %w", sourceID, err)
	}

	op.State = domain.SyncCompleted
	op.FinishedAt = e.now().UTC()
	if err := e.ops.Finalize(ctx, op); err != nil {
		return op, fmt.Errorf("finalize operation %s: %w", op.ID, err)
	}
	return op, nil
}

// run performs the detection pass body. Item-level failures are recorded
// on the operation; only adapter-level failures abort the run, which
// leaves the cursor untouched so nothing is skipped.
func (e *DetectionEngine) run(ctx context.Context, source *domain.ConnectedSource, op *domain.SyncOperation) error {
	adapter, err := e.factory.Create(ctx, *source)
	if err != nil {
		return fmt.Errorf("create adapter: %w", err)
	}
	defer func() {
		if cerr := adapter.Close(); cerr != nil {
			logger.Warn("detect: close adapter for source %s: %v", source.ID, cerr)
		}
	}()

	items, newCursor, err := adapter.ListChanges(ctx, source.Cursor)
	if err != nil {
		return fmt.Errorf("list changes: %w", err)
	}
	logger.Debug("detect: source %s reported %d changed items", source.ID, len(items))

	reqs, err := e.prepare(ctx, source, adapter, items, op)
	if err != nil {
		return err
	}

	outcomes := e.pipeline.ProcessMany(ctx, reqs)
	for _, outcome := range outcomes {
		req := reqs[outcome.Index]
		if outcome.Err != nil {
			op.ItemsFailed++
			op.ItemErrors = append(op.ItemErrors, fmt.Sprintf("%s: %v", req.Item.ExternalID, outcome.Err))
			continue
		}
		if err := e.persist(ctx, req, outcome.Draft); err != nil {
			op.ItemsFailed++
			op.ItemErrors = append(op.ItemErrors, fmt.Sprintf("%s: %v", req.Item.ExternalID, err))
			continue
		}
		if req.IsUpdate {
			op.ItemsUpdated++
		} else {
			op.ItemsCreated++
		}
	}

	if newCursor != "" && newCursor != source.Cursor {
		if err := e.sources.AdvanceCursor(ctx, source.ID, op.ID, newCursor); err != nil {
			return fmt.Errorf("advance cursor: %w", err)
		}
		op.CursorAfter = newCursor
	}
	if err := e.sources.UpdateLastChecked(ctx, source.ID, e.now().UTC()); err != nil {
		logger.Warn("detect: update last-checked for source %s: %v", source.ID, err)
	}
	return nil
}

// prepare filters and hydrates changed items into enrichment requests.
func (e *DetectionEngine) prepare(
	ctx context.Context,
	source *domain.ConnectedSource,
	adapter driven.SourceAdapter,
	items []domain.ChangedItem,
	op *domain.SyncOperation,
) ([]EnrichmentRequest, error) {
	var reqs []EnrichmentRequest

	for _, item := range items {
		if item.Removed {
			// Deletions do not retract already-reviewed knowledge.
			logger.Debug("detect: item %s removed upstream, ignoring", item.ExternalID)
			continue
		}
		if item.Container {
			continue
		}
		if !adapter.IsInScope(item, source.ScopeIDs) {
			continue
		}
		op.ItemsProcessed++

		raw := item.Content
		if raw == "" {
			fetched, err := adapter.FetchContent(ctx, item.ExternalID)
			if err != nil {
				op.ItemsFailed++
				op.ItemErrors = append(op.ItemErrors, fmt.Sprintf("%s: fetch content: %v", item.ExternalID, err))
				continue
			}
			raw = fetched
		}

		decision, err := e.tracker.ShouldProcess(ctx, e.orgID, item.ExternalID, raw)
		if err != nil {
			op.ItemsFailed++
			op.ItemErrors = append(op.ItemErrors, fmt.Sprintf("%s: state check: %v", item.ExternalID, err))
			continue
		}
		if !decision.Process {
			continue
		}

		req := EnrichmentRequest{
			OrgID:      e.orgID,
			SourceID:   source.ID,
			Provider:   source.Provider,
			Item:       item,
			RawContent: raw,
		}

		existing, err := e.drafts.LatestForItem(ctx, e.orgID, item.ExternalID)
		switch {
		case err == nil:
			req.IsUpdate = true
			req.SupersedesID = existing.ID
			req.ChangeSummary, req.DiffTokens = e.differ.Summarise(ctx, existing.Content, raw)
		case errors.Is(err, domain.ErrNotFound):
			// First ingestion of this item.
		default:
			op.ItemsFailed++
			op.ItemErrors = append(op.ItemErrors, fmt.Sprintf("%s: lookup prior draft: %v", item.ExternalID, err))
			continue
		}

		reqs = append(reqs, req)
	}
	return reqs, nil
}

// persist saves the draft and commits the item's digest. An already-seen
// digest is an idempotent no-op, so redelivered items never duplicate.
func (e *DetectionEngine) persist(ctx context.Context, req EnrichmentRequest, draft *domain.DraftDocument) error {
	if err := e.drafts.SaveDraft(ctx, draft); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			logger.Debug("detect: item %s digest already ingested, skipping", req.Item.ExternalID)
			return e.tracker.Commit(ctx, req.OrgID, req.Item.ExternalID, draft.ContentDigest, req.Item.ModifiedAt)
		}
		return fmt.Errorf("save draft: %w", err)
	}

	if err := e.tracker.Commit(ctx, req.OrgID, req.Item.ExternalID, draft.ContentDigest, req.Item.ModifiedAt); err != nil {
		return fmt.Errorf("commit file state: %w", err)
	}
	return nil
}

// ResetCursor nulls a source's cursor so the next check performs a full
// rescan. Already-ingested content stays deduplicated by digest.
func (e *DetectionEngine) ResetCursor(ctx context.Context, sourceID string) error {
	if err := e.sources.ResetCursor(ctx, sourceID); err != nil {
		return fmt.Errorf("reset cursor for source %s: %w", sourceID, err)
	}
	logger.Info("detect: cursor reset for source %s", sourceID)
	return nil
}

// History returns recent operations for a source, newest first.
func (e *DetectionEngine) History(ctx context.Context, sourceID string, limit int) ([]domain.SyncOperation, error) {
	ops, err := e.ops.ListBySource(ctx, sourceID, limit)
	if err != nil {
		return nil, fmt.Errorf("list operations for source %s: %w", sourceID, err)
	}
	return ops, nil
}
