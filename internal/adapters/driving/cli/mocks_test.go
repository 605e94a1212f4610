package cli

import (
	"context"
	"time"

	"github.com/custodia-labs/triago-cli/internal/core/domain"
	"github.com/custodia-labs/triago-cli/internal/core/ports/driven"
	"github.com/custodia-labs/triago-cli/internal/core/ports/driving"
)

// mockEngine implements driving.DetectionEngine for command tests.
type mockEngine struct {
	ops        []domain.SyncOperation
	op         *domain.SyncOperation
	err        error
	lastSource string
	lastKind   domain.SyncOperationKind
	lastForce  bool
	resets     []string
}

var _ driving.DetectionEngine = (*mockEngine)(nil)

func (m *mockEngine) DetectAll(_ context.Context, kind domain.SyncOperationKind, force bool) ([]domain.SyncOperation, error) {
	m.lastKind = kind
	m.lastForce = force
	return m.ops, m.err
}

func (m *mockEngine) DetectOne(_ context.Context, sourceID string, kind domain.SyncOperationKind) (*domain.SyncOperation, error) {
	m.lastSource = sourceID
	m.lastKind = kind
	return m.op, m.err
}

func (m *mockEngine) ResetCursor(_ context.Context, sourceID string) error {
	m.resets = append(m.resets, sourceID)
	return m.err
}

func (m *mockEngine) History(_ context.Context, sourceID string, _ int) ([]domain.SyncOperation, error) {
	m.lastSource = sourceID
	return m.ops, m.err
}

// mockTriage implements driving.TriageAdmin for command tests.
type mockTriage struct {
	drafts   []domain.DraftDocument
	rescored int
	err      error
	lastOrg  string
}

var _ driving.TriageAdmin = (*mockTriage)(nil)

func (m *mockTriage) PendingQueue(_ context.Context, orgID string) ([]domain.DraftDocument, error) {
	m.lastOrg = orgID
	return m.drafts, m.err
}

func (m *mockTriage) RecalculateConfidence(_ context.Context, orgID string) (int, error) {
	m.lastOrg = orgID
	return m.rescored, m.err
}

// mockSources implements driven.SourceStore for command tests.
type mockSources struct {
	sources     []domain.ConnectedSource
	saved       []domain.ConnectedSource
	deactivated []string
	err         error
}

var _ driven.SourceStore = (*mockSources)(nil)

func (m *mockSources) Save(_ context.Context, source domain.ConnectedSource) error {
	m.saved = append(m.saved, source)
	return m.err
}

func (m *mockSources) Get(_ context.Context, id string) (*domain.ConnectedSource, error) {
	for i := range m.sources {
		if m.sources[i].ID == id {
			return &m.sources[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockSources) List(_ context.Context) ([]domain.ConnectedSource, error) {
	return m.sources, m.err
}

func (m *mockSources) Deactivate(_ context.Context, id string) error {
	m.deactivated = append(m.deactivated, id)
	return m.err
}

func (m *mockSources) AdvanceCursor(_ context.Context, _, _, _ string) error {
	return m.err
}

func (m *mockSources) ResetCursor(_ context.Context, _ string) error {
	return m.err
}

func (m *mockSources) UpdateLastChecked(_ context.Context, _ string, _ time.Time) error {
	return m.err
}
