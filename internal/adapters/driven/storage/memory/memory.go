// Package memory provides an in-memory implementation of the storage
// ports. It backs tests and keeps the same transactional semantics as
// the SQLite store: digest-unique drafts, supersede-on-save, one running
// operation per source and cursor advances tied to the running
// operation.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/triago-cli/internal/core/domain"
	"github.com/custodia-labs/triago-cli/internal/core/ports/driven"
)

// Store holds every collection behind one mutex so cross-collection
// invariants (cursor advance requires a running operation) hold without
// transactions. The per-port views share this state.
type Store struct {
	mu      sync.Mutex
	sources map[string]domain.ConnectedSource
	states  map[string]domain.FileState
	drafts  map[string]domain.DraftDocument
	ops     map[string]domain.SyncOperation
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		sources: make(map[string]domain.ConnectedSource),
		states:  make(map[string]domain.FileState),
		drafts:  make(map[string]domain.DraftDocument),
		ops:     make(map[string]domain.SyncOperation),
	}
}

// Sources returns the source-store view.
func (s *Store) Sources() driven.SourceStore { return sourceStore{s} }

// FileStates returns the file-state-store view.
func (s *Store) FileStates() driven.FileStateStore { return fileStateStore{s} }

// Drafts returns the draft-store view.
func (s *Store) Drafts() driven.DraftStore { return draftStore{s} }

// SyncOperations returns the operation-ledger view.
func (s *Store) SyncOperations() driven.SyncOperationStore { return syncOpStore{s} }

func stateKey(orgID, externalID string) string {
	return orgID + "\x00" + externalID
}

type sourceStore struct{ s *Store }

var _ driven.SourceStore = sourceStore{}

func (v sourceStore) Save(_ context.Context, source domain.ConnectedSource) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	v.s.sources[source.ID] = source
	return nil
}

func (v sourceStore) Get(_ context.Context, id string) (*domain.ConnectedSource, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	source, ok := v.s.sources[id]
	if !ok {
		return nil, fmt.Errorf("source %s: %w", id, domain.ErrNotFound)
	}
	copied := source
	return &copied, nil
}

func (v sourceStore) List(_ context.Context) ([]domain.ConnectedSource, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	out := make([]domain.ConnectedSource, 0, len(v.s.sources))
	for _, source := range v.s.sources {
		out = append(out, source)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (v sourceStore) Deactivate(_ context.Context, id string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	source, ok := v.s.sources[id]
	if !ok {
		return fmt.Errorf("source %s: %w", id, domain.ErrNotFound)
	}
	source.Active = false
	source.UpdatedAt = time.Now().UTC()
	v.s.sources[id] = source
	return nil
}

func (v sourceStore) AdvanceCursor(_ context.Context, sourceID, operationID, cursor string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	source, ok := v.s.sources[sourceID]
	if !ok {
		return fmt.Errorf("source %s: %w", sourceID, domain.ErrNotFound)
	}
	op, ok := v.s.ops[operationID]
	if !ok || op.SourceID != sourceID || op.State != domain.SyncRunning {
		return fmt.Errorf("operation %s not running for source %s: %w", operationID, sourceID, domain.ErrCursorConflict)
	}
	source.Cursor = cursor
	source.UpdatedAt = time.Now().UTC()
	v.s.sources[sourceID] = source
	return nil
}

func (v sourceStore) ResetCursor(_ context.Context, sourceID string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	source, ok := v.s.sources[sourceID]
	if !ok {
		return fmt.Errorf("source %s: %w", sourceID, domain.ErrNotFound)
	}
	source.Cursor = ""
	source.UpdatedAt = time.Now().UTC()
	v.s.sources[sourceID] = source
	return nil
}

func (v sourceStore) UpdateLastChecked(_ context.Context, sourceID string, at time.Time) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	source, ok := v.s.sources[sourceID]
	if !ok {
		return fmt.Errorf("source %s: %w", sourceID, domain.ErrNotFound)
	}
	source.LastCheckedAt = at
	v.s.sources[sourceID] = source
	return nil
}

type fileStateStore struct{ s *Store }

var _ driven.FileStateStore = fileStateStore{}

func (v fileStateStore) Get(_ context.Context, orgID, externalID string) (*domain.FileState, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	state, ok := v.s.states[stateKey(orgID, externalID)]
	if !ok {
		return nil, fmt.Errorf("file state %s/%s: %w", orgID, externalID, domain.ErrNotFound)
	}
	copied := state
	return &copied, nil
}

func (v fileStateStore) Upsert(_ context.Context, state domain.FileState) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	v.s.states[stateKey(state.OrgID, state.ExternalID)] = state
	return nil
}

func (v fileStateStore) Touch(_ context.Context, orgID, externalID string, at time.Time) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	key := stateKey(orgID, externalID)
	state, ok := v.s.states[key]
	if !ok {
		return fmt.Errorf("file state %s/%s: %w", orgID, externalID, domain.ErrNotFound)
	}
	state.LastSyncedAt = at
	v.s.states[key] = state
	return nil
}

type draftStore struct{ s *Store }

var _ driven.DraftStore = draftStore{}

func (v draftStore) SaveDraft(_ context.Context, draft *domain.DraftDocument) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	for _, existing := range v.s.drafts {
		if existing.OrgID == draft.OrgID &&
			existing.ExternalID == draft.ExternalID &&
			existing.ContentDigest == draft.ContentDigest {
			return fmt.Errorf("draft for %s/%s: %w", draft.OrgID, draft.ExternalID, domain.ErrAlreadyExists)
		}
	}

	for id, existing := range v.s.drafts {
		if existing.OrgID == draft.OrgID &&
			existing.ExternalID == draft.ExternalID &&
			existing.Status == domain.DraftPending {
			existing.Status = domain.DraftSuperseded
			existing.UpdatedAt = time.Now().UTC()
			v.s.drafts[id] = existing
		}
	}

	v.s.drafts[draft.ID] = *draft
	return nil
}

func (v draftStore) GetDraft(_ context.Context, id string) (*domain.DraftDocument, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	draft, ok := v.s.drafts[id]
	if !ok {
		return nil, fmt.Errorf("draft %s: %w", id, domain.ErrNotFound)
	}
	copied := draft
	return &copied, nil
}

func (v draftStore) LatestForItem(_ context.Context, orgID, externalID string) (*domain.DraftDocument, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	var latest *domain.DraftDocument
	for id := range v.s.drafts {
		draft := v.s.drafts[id]
		if draft.OrgID != orgID || draft.ExternalID != externalID {
			continue
		}
		if draft.Status == domain.DraftSuperseded {
			continue
		}
		if latest == nil || draft.CreatedAt.After(latest.CreatedAt) {
			copied := draft
			latest = &copied
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("draft for %s/%s: %w", orgID, externalID, domain.ErrNotFound)
	}
	return latest, nil
}

func (v draftStore) ListPending(_ context.Context, orgID string) ([]domain.DraftDocument, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	var out []domain.DraftDocument
	for _, draft := range v.s.drafts {
		if draft.OrgID == orgID && draft.Status == domain.DraftPending {
			out = append(out, draft)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (v draftStore) UpdateConfidence(_ context.Context, id string, result domain.ConfidenceResult) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	draft, ok := v.s.drafts[id]
	if !ok {
		return fmt.Errorf("draft %s: %w", id, domain.ErrNotFound)
	}
	draft.Confidence = result
	draft.UpdatedAt = time.Now().UTC()
	v.s.drafts[id] = draft
	return nil
}

type syncOpStore struct{ s *Store }

var _ driven.SyncOperationStore = syncOpStore{}

func (v syncOpStore) Begin(_ context.Context, op *domain.SyncOperation) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, existing := range v.s.ops {
		if existing.SourceID == op.SourceID && existing.State == domain.SyncRunning {
			return fmt.Errorf("source %s: %w", op.SourceID, domain.ErrSyncInProgress)
		}
	}
	v.s.ops[op.ID] = *op
	return nil
}

func (v syncOpStore) Finalize(_ context.Context, op *domain.SyncOperation) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.ops[op.ID]; !ok {
		return fmt.Errorf("operation %s: %w", op.ID, domain.ErrNotFound)
	}
	v.s.ops[op.ID] = *op
	return nil
}

func (v syncOpStore) ListBySource(_ context.Context, sourceID string, limit int) ([]domain.SyncOperation, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	var out []domain.SyncOperation
	for _, op := range v.s.ops {
		if op.SourceID == sourceID {
			out = append(out, op)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.After(out[j].StartedAt)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
