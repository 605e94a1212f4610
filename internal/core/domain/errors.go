package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedProvider indicates an unknown provider type.
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// ErrSyncInProgress indicates a run is already open for the source.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrSourceInactive indicates the source has been disconnected.
	ErrSourceInactive = errors.New("source inactive")

	// ErrContentTooShort indicates empty or near-empty content.
	// Fatal for the affected item only.
	ErrContentTooShort = errors.New("content too short to enrich")

	// ErrCursorConflict indicates a cursor advance was refused because
	// the owning operation was no longer running.
	ErrCursorConflict = errors.New("cursor advance conflict")

	// Authentication errors.

	// ErrAuthExpired indicates the provider credentials have expired or
	// been revoked. The run fails closed and the cursor is untouched.
	ErrAuthExpired = errors.New("authentication expired")

	// ErrRateLimited indicates the provider API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// AI-collaborator errors.

	// ErrCompletionUnavailable indicates no text-completion service is
	// configured. AI-assisted stages degrade to their fallbacks.
	ErrCompletionUnavailable = errors.New("completion service unavailable")

	// ErrRecogniserUnavailable indicates no entity-recognition service
	// is configured. Redaction uses the regex fallback.
	ErrRecogniserUnavailable = errors.New("entity recogniser unavailable")
)
