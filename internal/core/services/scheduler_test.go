package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/triago-cli/internal/core/domain"
)

type countingEngine struct {
	scans chan domain.SyncOperationKind
}

func (c *countingEngine) DetectAll(_ context.Context, kind domain.SyncOperationKind, _ bool) ([]domain.SyncOperation, error) {
	c.scans <- kind
	return nil, nil
}

func (c *countingEngine) DetectOne(context.Context, string, domain.SyncOperationKind) (*domain.SyncOperation, error) {
	return nil, nil
}

func (c *countingEngine) ResetCursor(context.Context, string) error { return nil }

func (c *countingEngine) History(context.Context, string, int) ([]domain.SyncOperation, error) {
	return nil, nil
}

func TestSchedulerRunsImmediateScanAndStops(t *testing.T) {
	engine := &countingEngine{scans: make(chan domain.SyncOperationKind, 8)}
	s := NewScheduler(engine, time.Hour)

	s.Start(context.Background())
	select {
	case kind := <-engine.scans:
		assert.Equal(t, domain.SyncScheduled, kind)
	case <-time.After(5 * time.Second):
		t.Fatal("no scan ran after Start")
	}

	s.Stop()

	// Stop is idempotent and a restarted scheduler scans again.
	s.Stop()
	s.Start(context.Background())
	select {
	case <-engine.scans:
	case <-time.After(5 * time.Second):
		t.Fatal("no scan ran after restart")
	}
	s.Stop()
}

func TestSchedulerDefaultInterval(t *testing.T) {
	s := NewScheduler(&countingEngine{scans: make(chan domain.SyncOperationKind, 1)}, 0)
	require.Equal(t, defaultScanInterval, s.interval)
}
