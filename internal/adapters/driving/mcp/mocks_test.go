package mcp

import (
	"context"
	"time"

	"github.com/custodia-labs/triago-cli/internal/core/domain"
)

// mockDetectionEngine is a mock implementation of driving.DetectionEngine.
type mockDetectionEngine struct {
	ops        []domain.SyncOperation
	op         *domain.SyncOperation
	err        error
	lastSource string
	lastKind   domain.SyncOperationKind
	lastForce  bool
	resets     []string
}

func (m *mockDetectionEngine) DetectAll(
	_ context.Context,
	kind domain.SyncOperationKind,
	force bool,
) ([]domain.SyncOperation, error) {
	m.lastKind = kind
	m.lastForce = force
	return m.ops, m.err
}

func (m *mockDetectionEngine) DetectOne(
	_ context.Context,
	sourceID string,
	kind domain.SyncOperationKind,
) (*domain.SyncOperation, error) {
	m.lastSource = sourceID
	m.lastKind = kind
	return m.op, m.err
}

func (m *mockDetectionEngine) ResetCursor(_ context.Context, sourceID string) error {
	m.resets = append(m.resets, sourceID)
	return m.err
}

func (m *mockDetectionEngine) History(
	_ context.Context,
	_ string,
	_ int,
) ([]domain.SyncOperation, error) {
	return m.ops, m.err
}

// mockTriageAdmin is a mock implementation of driving.TriageAdmin.
type mockTriageAdmin struct {
	drafts   []domain.DraftDocument
	rescored int
	err      error
	lastOrg  string
}

func (m *mockTriageAdmin) PendingQueue(_ context.Context, orgID string) ([]domain.DraftDocument, error) {
	m.lastOrg = orgID
	return m.drafts, m.err
}

func (m *mockTriageAdmin) RecalculateConfidence(_ context.Context, orgID string) (int, error) {
	m.lastOrg = orgID
	return m.rescored, m.err
}

// mockSourceStore is a minimal driven.SourceStore for the sources resource.
type mockSourceStore struct {
	sources []domain.ConnectedSource
	err     error
}

func (m *mockSourceStore) Save(_ context.Context, _ domain.ConnectedSource) error { return m.err }

func (m *mockSourceStore) Get(_ context.Context, _ string) (*domain.ConnectedSource, error) {
	return nil, domain.ErrNotFound
}

func (m *mockSourceStore) List(_ context.Context) ([]domain.ConnectedSource, error) {
	return m.sources, m.err
}

func (m *mockSourceStore) Deactivate(_ context.Context, _ string) error { return m.err }

func (m *mockSourceStore) AdvanceCursor(_ context.Context, _, _, _ string) error { return m.err }

func (m *mockSourceStore) ResetCursor(_ context.Context, _ string) error { return m.err }

func (m *mockSourceStore) UpdateLastChecked(_ context.Context, _ string, _ time.Time) error {
	return m.err
}
