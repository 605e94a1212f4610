package domain

import "time"

// SyncOperationKind distinguishes scheduled from manually triggered runs.
type SyncOperationKind string

const (
	// SyncScheduled was started by the periodic scan.
	SyncScheduled SyncOperationKind = "scheduled"

	// SyncManual was triggered by an operator.
	SyncManual SyncOperationKind = "manual"
)

// SyncOperationState is the lifecycle state of a run.
type SyncOperationState string

const (
	// SyncRunning is the initial state.
	SyncRunning SyncOperationState = "running"

	// SyncCompleted is a successful terminal state.
	SyncCompleted SyncOperationState = "completed"

	// SyncFailed is the failed terminal state.
	SyncFailed SyncOperationState = "failed"
)

// SyncOperation records one detection/ingestion run for one source.
// Operations form an append-only history; each is finalised exactly once.
type SyncOperation struct {
	// ID is the unique identifier for the operation.
	ID string

	// SourceID links to the source being checked.
	SourceID string

	// Kind is scheduled or manual.
	Kind SyncOperationKind

	// State is running, completed or failed.
	State SyncOperationState

	// ItemsProcessed counts every retained item the run examined.
	ItemsProcessed int

	// ItemsCreated counts new draft documents.
	ItemsCreated int

	// ItemsUpdated counts drafts superseding a prior revision.
	ItemsUpdated int

	// ItemsFailed counts items that errored without failing the run.
	ItemsFailed int

	// Error holds the failure message for failed runs.
	Error string

	// ItemErrors collects per-item error messages.
	ItemErrors []string

	// CursorBefore is the source cursor when the run started.
	CursorBefore string

	// CursorAfter is the cursor committed on success.
	CursorAfter string

	// StartedAt is when the run began.
	StartedAt time.Time

	// FinishedAt is when the run reached a terminal state.
	FinishedAt time.Time
}
