package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/triago-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/triago-cli/internal/core/domain"
	"github.com/custodia-labs/triago-cli/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to
// all metadata store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.triago/data/triago.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".triago", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "triago.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Sources returns a SourceStore interface backed by this store.
func (s *Store) Sources() driven.SourceStore {
	return &sourceStore{store: s}
}

// FileStates returns a FileStateStore interface backed by this store.
func (s *Store) FileStates() driven.FileStateStore {
	return &fileStateStore{store: s}
}

// Drafts returns a DraftStore interface backed by this store.
func (s *Store) Drafts() driven.DraftStore {
	return &draftStore{store: s}
}

// SyncOperations returns a SyncOperationStore interface backed by this store.
func (s *Store) SyncOperations() driven.SyncOperationStore {
	return &syncOpStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// isUniqueViolation reports whether the driver error is a UNIQUE
// constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// marshalJSON encodes a value, substituting the empty-collection
// default when the value is nil.
func marshalJSON(v any, empty string) (string, error) {
	if v == nil {
		return empty, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ==================== Source Store ====================

// sourceStore implements driven.SourceStore.
type sourceStore struct {
	store *Store
}

var _ driven.SourceStore = (*sourceStore)(nil)

const sourceColumns = `id, org_id, provider, name, owner, scope_ids, config, cursor,
	last_checked_at, active, sync_frequency_seconds, created_at, updated_at`

// Save stores or updates a source.
func (s *sourceStore) Save(ctx context.Context, source domain.ConnectedSource) error {
	scopeJSON, err := marshalJSON(source.ScopeIDs, "[]")
	if err != nil {
		return fmt.Errorf("marshalling scope ids: %w", err)
	}
	configJSON, err := marshalJSON(source.Config, "{}")
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	now := time.Now().UTC()
	if source.CreatedAt.IsZero() {
		source.CreatedAt = now
	}
	source.UpdatedAt = now

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO sources (`+sourceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			org_id = excluded.org_id,
			provider = excluded.provider,
			name = excluded.name,
			owner = excluded.owner,
			scope_ids = excluded.scope_ids,
			config = excluded.config,
			active = excluded.active,
			sync_frequency_seconds = excluded.sync_frequency_seconds,
			updated_at = excluded.updated_at
	`, source.ID, source.OrgID, string(source.Provider), source.Name, source.Owner,
		scopeJSON, configJSON, source.Cursor,
		nullTime(source.LastCheckedAt), source.Active,
		int(source.SyncFrequency.Seconds()), source.CreatedAt, source.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving source: %w", err)
	}
	return nil
}

// Get retrieves a source by ID.
func (s *sourceStore) Get(ctx context.Context, id string) (*domain.ConnectedSource, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+sourceColumns+` FROM sources WHERE id = ?`, id)

	source, err := scanSource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("source %s: %w", id, domain.ErrNotFound)
	}
	return source, err
}

// List returns all configured sources.
func (s *sourceStore) List(ctx context.Context) ([]domain.ConnectedSource, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+sourceColumns+` FROM sources ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	var sources []domain.ConnectedSource //nolint:prealloc // size unknown from query
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, *source)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sources: %w", err)
	}

	return sources, nil
}

// Deactivate soft-deletes a source on disconnect.
func (s *sourceStore) Deactivate(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE sources SET active = 0, updated_at = ? WHERE id = ?
	`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("deactivating source: %w", err)
	}
	return requireRowAffected(res, fmt.Errorf("source %s: %w", id, domain.ErrNotFound))
}

// AdvanceCursor commits a new cursor. The conditional update ties the
// write to the running operation so a crashed run cannot advance it.
func (s *sourceStore) AdvanceCursor(ctx context.Context, sourceID, operationID, cursor string) error {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE sources SET cursor = ?, updated_at = ?
		WHERE id = ?
		  AND EXISTS (
			SELECT 1 FROM sync_operations
			WHERE id = ? AND source_id = sources.id AND state = ?
		  )
	`, cursor, time.Now().UTC(), sourceID, operationID, string(domain.SyncRunning))
	if err != nil {
		return fmt.Errorf("advancing cursor: %w", err)
	}
	return requireRowAffected(res,
		fmt.Errorf("operation %s not running for source %s: %w", operationID, sourceID, domain.ErrCursorConflict))
}

// ResetCursor clears the cursor to force a full rescan on the next check.
func (s *sourceStore) ResetCursor(ctx context.Context, sourceID string) error {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE sources SET cursor = '', updated_at = ? WHERE id = ?
	`, time.Now().UTC(), sourceID)
	if err != nil {
		return fmt.Errorf("resetting cursor: %w", err)
	}
	return requireRowAffected(res, fmt.Errorf("source %s: %w", sourceID, domain.ErrNotFound))
}

// UpdateLastChecked records when change detection last ran.
func (s *sourceStore) UpdateLastChecked(ctx context.Context, sourceID string, at time.Time) error {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE sources SET last_checked_at = ? WHERE id = ?
	`, at.UTC(), sourceID)
	if err != nil {
		return fmt.Errorf("updating last checked: %w", err)
	}
	return requireRowAffected(res, fmt.Errorf("source %s: %w", sourceID, domain.ErrNotFound))
}

// scanSource scans a source from a row scanner.
func scanSource(row interface{ Scan(...any) error }) (*domain.ConnectedSource, error) {
	var source domain.ConnectedSource
	var provider, scopeJSON, configJSON string
	var lastChecked sql.NullTime
	var freqSeconds int

	if err := row.Scan(&source.ID, &source.OrgID, &provider, &source.Name, &source.Owner,
		&scopeJSON, &configJSON, &source.Cursor,
		&lastChecked, &source.Active, &freqSeconds,
		&source.CreatedAt, &source.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning source: %w", err)
	}

	source.Provider = domain.ProviderType(provider)
	source.SyncFrequency = time.Duration(freqSeconds) * time.Second
	if lastChecked.Valid {
		source.LastCheckedAt = lastChecked.Time
	}

	if err := json.Unmarshal([]byte(scopeJSON), &source.ScopeIDs); err != nil {
		return nil, fmt.Errorf("unmarshalling scope ids: %w", err)
	}
	if err := json.Unmarshal([]byte(configJSON), &source.Config); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &source, nil
}

// ==================== File State Store ====================

// fileStateStore implements driven.FileStateStore.
type fileStateStore struct {
	store *Store
}

var _ driven.FileStateStore = (*fileStateStore)(nil)

// Get retrieves the state for an external item.
func (s *fileStateStore) Get(ctx context.Context, orgID, externalID string) (*domain.FileState, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT org_id, external_id, digest, modified_at, last_synced_at
		FROM file_states WHERE org_id = ? AND external_id = ?
	`, orgID, externalID)

	var state domain.FileState
	var modifiedAt, lastSynced sql.NullTime
	if err := row.Scan(&state.OrgID, &state.ExternalID, &state.Digest, &modifiedAt, &lastSynced); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("file state %s/%s: %w", orgID, externalID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scanning file state: %w", err)
	}

	if modifiedAt.Valid {
		state.ModifiedAt = modifiedAt.Time
	}
	if lastSynced.Valid {
		state.LastSyncedAt = lastSynced.Time
	}

	return &state, nil
}

// Upsert stores or updates the state, keyed by (orgID, externalID).
func (s *fileStateStore) Upsert(ctx context.Context, state domain.FileState) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO file_states (org_id, external_id, digest, modified_at, last_synced_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(org_id, external_id) DO UPDATE SET
			digest = excluded.digest,
			modified_at = excluded.modified_at,
			last_synced_at = excluded.last_synced_at
	`, state.OrgID, state.ExternalID, state.Digest,
		nullTime(state.ModifiedAt), nullTime(state.LastSyncedAt))

	if err != nil {
		return fmt.Errorf("saving file state: %w", err)
	}
	return nil
}

// Touch refreshes only the last-synced timestamp.
func (s *fileStateStore) Touch(ctx context.Context, orgID, externalID string, at time.Time) error {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE file_states SET last_synced_at = ? WHERE org_id = ? AND external_id = ?
	`, at.UTC(), orgID, externalID)
	if err != nil {
		return fmt.Errorf("touching file state: %w", err)
	}
	return requireRowAffected(res, fmt.Errorf("file state %s/%s: %w", orgID, externalID, domain.ErrNotFound))
}

// ==================== Draft Store ====================

// draftStore implements driven.DraftStore.
type draftStore struct {
	store *Store
}

var _ driven.DraftStore = (*draftStore)(nil)

const draftColumns = `id, org_id, source_id, external_id, title, content, doc_type,
	summary, topics, confidence, pii_entity_count, pii_categories, source_url,
	content_digest, is_update, supersedes_id, change_summary, tokens_used,
	processing_time_ms, status, created_at, updated_at`

// SaveDraft stores a new draft. The supersede of older pending drafts
// for the same item and the insert happen in one transaction, so a
// digest duplicate rolls both back.
func (s *draftStore) SaveDraft(ctx context.Context, draft *domain.DraftDocument) error {
	topicsJSON, err := marshalJSON(draft.Topics, "[]")
	if err != nil {
		return fmt.Errorf("marshalling topics: %w", err)
	}
	confidenceJSON, err := json.Marshal(draft.Confidence)
	if err != nil {
		return fmt.Errorf("marshalling confidence: %w", err)
	}
	categoriesJSON, err := marshalJSON(draft.PIICategories, "[]")
	if err != nil {
		return fmt.Errorf("marshalling pii categories: %w", err)
	}
	changesJSON, err := marshalJSON(draft.ChangeSummary, "[]")
	if err != nil {
		return fmt.Errorf("marshalling change summary: %w", err)
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		UPDATE draft_documents SET status = ?, updated_at = ?
		WHERE org_id = ? AND external_id = ? AND status = ?
	`, string(domain.DraftSuperseded), time.Now().UTC(),
		draft.OrgID, draft.ExternalID, string(domain.DraftPending))
	if err != nil {
		return fmt.Errorf("superseding prior drafts: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO draft_documents (`+draftColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, draft.ID, draft.OrgID, draft.SourceID, draft.ExternalID,
		draft.Title, draft.Content, draft.DocType, draft.Summary,
		topicsJSON, string(confidenceJSON), draft.PIIEntityCount, categoriesJSON,
		draft.SourceURL, draft.ContentDigest, draft.IsUpdate, draft.SupersedesID,
		changesJSON, draft.TokensUsed, draft.ProcessingTimeMs,
		string(draft.Status), draft.CreatedAt, draft.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("draft for %s/%s: %w", draft.OrgID, draft.ExternalID, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("saving draft: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetDraft retrieves a draft by ID.
func (s *draftStore) GetDraft(ctx context.Context, id string) (*domain.DraftDocument, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+draftColumns+` FROM draft_documents WHERE id = ?`, id)

	draft, err := scanDraft(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("draft %s: %w", id, domain.ErrNotFound)
	}
	return draft, err
}

// LatestForItem returns the most recent non-superseded draft for an
// external item.
func (s *draftStore) LatestForItem(ctx context.Context, orgID, externalID string) (*domain.DraftDocument, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+draftColumns+` FROM draft_documents
		WHERE org_id = ? AND external_id = ? AND status != ?
		ORDER BY created_at DESC, id LIMIT 1
	`, orgID, externalID, string(domain.DraftSuperseded))

	draft, err := scanDraft(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("draft for %s/%s: %w", orgID, externalID, domain.ErrNotFound)
	}
	return draft, err
}

// ListPending returns pending drafts for an organisation, newest first.
func (s *draftStore) ListPending(ctx context.Context, orgID string) ([]domain.DraftDocument, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+draftColumns+` FROM draft_documents
		WHERE org_id = ? AND status = ?
		ORDER BY created_at DESC, id
	`, orgID, string(domain.DraftPending))
	if err != nil {
		return nil, fmt.Errorf("querying pending drafts: %w", err)
	}
	defer rows.Close()

	var drafts []domain.DraftDocument //nolint:prealloc // size unknown from query
	for rows.Next() {
		draft, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, *draft)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating drafts: %w", err)
	}

	return drafts, nil
}

// UpdateConfidence overwrites the stored confidence result on a draft.
func (s *draftStore) UpdateConfidence(ctx context.Context, id string, result domain.ConfidenceResult) error {
	confidenceJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshalling confidence: %w", err)
	}

	res, err := s.store.db.ExecContext(ctx, `
		UPDATE draft_documents SET confidence = ?, updated_at = ? WHERE id = ?
	`, string(confidenceJSON), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("updating confidence: %w", err)
	}
	return requireRowAffected(res, fmt.Errorf("draft %s: %w", id, domain.ErrNotFound))
}

// scanDraft scans a draft from a row scanner.
func scanDraft(row interface{ Scan(...any) error }) (*domain.DraftDocument, error) {
	var draft domain.DraftDocument
	var topicsJSON, confidenceJSON, categoriesJSON, changesJSON, status string

	if err := row.Scan(&draft.ID, &draft.OrgID, &draft.SourceID, &draft.ExternalID,
		&draft.Title, &draft.Content, &draft.DocType, &draft.Summary,
		&topicsJSON, &confidenceJSON, &draft.PIIEntityCount, &categoriesJSON,
		&draft.SourceURL, &draft.ContentDigest, &draft.IsUpdate, &draft.SupersedesID,
		&changesJSON, &draft.TokensUsed, &draft.ProcessingTimeMs,
		&status, &draft.CreatedAt, &draft.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning draft: %w", err)
	}

	draft.Status = domain.DraftStatus(status)

	if err := json.Unmarshal([]byte(topicsJSON), &draft.Topics); err != nil {
		return nil, fmt.Errorf("unmarshalling topics: %w", err)
	}
	if err := json.Unmarshal([]byte(confidenceJSON), &draft.Confidence); err != nil {
		return nil, fmt.Errorf("unmarshalling confidence: %w", err)
	}
	if err := json.Unmarshal([]byte(categoriesJSON), &draft.PIICategories); err != nil {
		return nil, fmt.Errorf("unmarshalling pii categories: %w", err)
	}
	if err := json.Unmarshal([]byte(changesJSON), &draft.ChangeSummary); err != nil {
		return nil, fmt.Errorf("unmarshalling change summary: %w", err)
	}

	return &draft, nil
}

// ==================== Sync Operation Store ====================

// syncOpStore implements driven.SyncOperationStore.
type syncOpStore struct {
	store *Store
}

var _ driven.SyncOperationStore = (*syncOpStore)(nil)

const opColumns = `id, source_id, kind, state, items_processed, items_created,
	items_updated, items_failed, error, item_errors, cursor_before, cursor_after,
	started_at, finished_at`

// Begin records a new operation in running state. The unique partial
// index on running operations closes the concurrent-run race.
func (s *syncOpStore) Begin(ctx context.Context, op *domain.SyncOperation) error {
	itemErrorsJSON, err := marshalJSON(op.ItemErrors, "[]")
	if err != nil {
		return fmt.Errorf("marshalling item errors: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO sync_operations (`+opColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, op.ID, op.SourceID, string(op.Kind), string(op.State),
		op.ItemsProcessed, op.ItemsCreated, op.ItemsUpdated, op.ItemsFailed,
		op.Error, itemErrorsJSON, op.CursorBefore, op.CursorAfter,
		op.StartedAt, nullTime(op.FinishedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("source %s: %w", op.SourceID, domain.ErrSyncInProgress)
		}
		return fmt.Errorf("beginning operation: %w", err)
	}
	return nil
}

// Finalize records the terminal state of an operation.
func (s *syncOpStore) Finalize(ctx context.Context, op *domain.SyncOperation) error {
	itemErrorsJSON, err := marshalJSON(op.ItemErrors, "[]")
	if err != nil {
		return fmt.Errorf("marshalling item errors: %w", err)
	}

	res, err := s.store.db.ExecContext(ctx, `
		UPDATE sync_operations SET
			state = ?,
			items_processed = ?,
			items_created = ?,
			items_updated = ?,
			items_failed = ?,
			error = ?,
			item_errors = ?,
			cursor_after = ?,
			finished_at = ?
		WHERE id = ?
	`, string(op.State), op.ItemsProcessed, op.ItemsCreated, op.ItemsUpdated,
		op.ItemsFailed, op.Error, itemErrorsJSON, op.CursorAfter,
		nullTime(op.FinishedAt), op.ID)
	if err != nil {
		return fmt.Errorf("finalising operation: %w", err)
	}
	return requireRowAffected(res, fmt.Errorf("operation %s: %w", op.ID, domain.ErrNotFound))
}

// ListBySource returns the most recent operations for a source, newest
// first, up to limit.
func (s *syncOpStore) ListBySource(ctx context.Context, sourceID string, limit int) ([]domain.SyncOperation, error) {
	query := `SELECT ` + opColumns + ` FROM sync_operations
		WHERE source_id = ? ORDER BY started_at DESC, id`
	args := []any{sourceID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying operations: %w", err)
	}
	defer rows.Close()

	var ops []domain.SyncOperation //nolint:prealloc // size unknown from query
	for rows.Next() {
		var op domain.SyncOperation
		var kind, state, itemErrorsJSON string
		var finishedAt sql.NullTime

		if err := rows.Scan(&op.ID, &op.SourceID, &kind, &state,
			&op.ItemsProcessed, &op.ItemsCreated, &op.ItemsUpdated, &op.ItemsFailed,
			&op.Error, &itemErrorsJSON, &op.CursorBefore, &op.CursorAfter,
			&op.StartedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("scanning operation: %w", err)
		}

		op.Kind = domain.SyncOperationKind(kind)
		op.State = domain.SyncOperationState(state)
		if finishedAt.Valid {
			op.FinishedAt = finishedAt.Time
		}
		if err := json.Unmarshal([]byte(itemErrorsJSON), &op.ItemErrors); err != nil {
			return nil, fmt.Errorf("unmarshalling item errors: %w", err)
		}

		ops = append(ops, op)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating operations: %w", err)
	}

	return ops, nil
}

// ==================== Helper Functions ====================

// nullTime converts a zero time to NULL for storage.
func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

// requireRowAffected returns notFound when the statement touched no rows.
func requireRowAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
