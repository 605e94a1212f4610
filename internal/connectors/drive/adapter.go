// Package drive implements the shared-drive source adapter on the
// Google Drive v3 API. Change detection uses the Changes API: the first
// pass walks every file and records a start page token, later passes
// list only what changed since that token.
package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/oauth2"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/custodia-labs/triago-cli/internal/connectors"
	"github.com/custodia-labs/triago-cli/internal/core/domain"
	"github.com/custodia-labs/triago-cli/internal/core/ports/driven"
	"github.com/custodia-labs/triago-cli/internal/logger"
)

const (
	mimeTypeGoogleDoc    = "application/vnd.google-apps.document"
	mimeTypeGoogleSheet  = "application/vnd.google-apps.spreadsheet"
	mimeTypeGoogleSlides = "application/vnd.google-apps.presentation"
	mimeTypeFolder       = "application/vnd.google-apps.folder"

	exportMimeText = "text/plain"
	exportMimeCSV  = "text/csv"
)

// maxExportSize caps downloaded content at 5MB.
const maxExportSize = 5 * 1024 * 1024

const fileFields = "id, name, mimeType, parents, owners(displayName), webViewLink, createdTime, modifiedTime, trashed, size"

// Adapter is the shared-drive source adapter.
type Adapter struct {
	svc     *gdrive.Service
	source  domain.ConnectedSource
	cfg     *Config
	limiter *connectors.RateLimiter
}

var _ driven.SourceAdapter = (*Adapter)(nil)

// New creates a shared-drive adapter for the given source.
func New(ctx context.Context, source domain.ConnectedSource, ts oauth2.TokenSource) (*Adapter, error) {
	svc, err := gdrive.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &Adapter{
		svc:     svc,
		source:  source,
		cfg:     ParseConfig(source),
		limiter: connectors.NewRateLimiter(domain.ProviderDrive),
	}, nil
}

// Provider returns the provider type.
func (a *Adapter) Provider() domain.ProviderType { return domain.ProviderDrive }

// SourceID returns the configured source ID.
func (a *Adapter) SourceID() string { return a.source.ID }

// Validate confirms the credentials with a lightweight About call.
func (a *Adapter) Validate(ctx context.Context) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return err
	}
	if _, err := a.svc.About.Get().Fields("user").Context(ctx).Do(); err != nil {
		return fmt.Errorf("validate drive credentials: %w", connectors.WrapError(err))
	}
	return nil
}

// ListChanges returns items changed since the cursor. An empty cursor
// triggers a full scan; an expired change token falls back to a full
// scan as well, relying on digest dedup to absorb the replay.
func (a *Adapter) ListChanges(ctx context.Context, cursor string) ([]domain.ChangedItem, string, error) {
	decoded, err := DecodeCursor(cursor)
	if err != nil {
		logger.Warn("drive: undecodable cursor for source %s, rescanning", a.source.ID)
		decoded = NewCursor()
	}

	if decoded.IsEmpty() {
		return a.fullScan(ctx)
	}

	items, next, err := a.incremental(ctx, decoded.PageToken)
	if errors.Is(err, connectors.ErrSyncTokenExpired) {
		logger.Warn("drive: change token expired for source %s, rescanning", a.source.ID)
		return a.fullScan(ctx)
	}
	if err != nil {
		return nil, "", err
	}
	return items, next, nil
}

// fullScan lists every file, then records the start page token so the
// next pass is incremental.
func (a *Adapter) fullScan(ctx context.Context) ([]domain.ChangedItem, string, error) {
	var items []domain.ChangedItem
	pageToken := ""
	for {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, "", err
		}
		call := a.svc.Files.List().
			Q("trashed = false").
			Fields(googleapi.Field("nextPageToken, files(" + fileFields + ")")).
			PageSize(a.cfg.MaxResults).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		page, err := call.Do()
		if err != nil {
			a.recordIfRateLimited(err)
			return nil, "", fmt.Errorf("list files: %w", connectors.WrapError(err))
		}
		for _, file := range page.Files {
			if item, ok := a.toItem(file, false); ok {
				items = append(items, item)
			}
		}
		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return nil, "", err
	}
	start, err := a.svc.Changes.GetStartPageToken().Context(ctx).Do()
	if err != nil {
		return nil, "", fmt.Errorf("get start page token: %w", connectors.WrapError(err))
	}

	next := &Cursor{Version: CursorVersion, PageToken: start.StartPageToken}
	return items, next.Encode(), nil
}

// incremental lists changes since the stored page token.
func (a *Adapter) incremental(ctx context.Context, pageToken string) ([]domain.ChangedItem, string, error) {
	var items []domain.ChangedItem
	newStartToken := ""
	for {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, "", err
		}
		page, err := a.svc.Changes.List(pageToken).
			Fields(googleapi.Field("nextPageToken, newStartPageToken, changes(fileId, removed, file(" + fileFields + "))")).
			PageSize(a.cfg.MaxResults).
			IncludeRemoved(true).
			Context(ctx).
			Do()
		if err != nil {
			a.recordIfRateLimited(err)
			return nil, "", fmt.Errorf("list changes: %w", connectors.WrapError(err))
		}

		for _, change := range page.Changes {
			if change.Removed || change.File == nil {
				items = append(items, domain.ChangedItem{
					Kind:       domain.ItemDriveFile,
					ExternalID: change.FileId,
					Removed:    true,
				})
				continue
			}
			if item, ok := a.toItem(change.File, change.File.Trashed); ok {
				items = append(items, item)
			}
		}

		if page.NewStartPageToken != "" {
			newStartToken = page.NewStartPageToken
			break
		}
		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	if newStartToken == "" {
		newStartToken = pageToken
	}
	next := &Cursor{Version: CursorVersion, PageToken: newStartToken}
	return items, next.Encode(), nil
}

// toItem converts a Drive file to a changed item. Folders and filtered
// MIME types are dropped.
func (a *Adapter) toItem(file *gdrive.File, removed bool) (domain.ChangedItem, bool) {
	if file.MimeType == mimeTypeFolder {
		return domain.ChangedItem{}, false
	}
	if !removed && !a.cfg.allowsMimeType(file.MimeType) {
		return domain.ChangedItem{}, false
	}

	item := domain.ChangedItem{
		Kind:       domain.ItemDriveFile,
		ExternalID: file.Id,
		Title:      file.Name,
		URL:        file.WebViewLink,
		Removed:    removed,
		CreatedAt:  parseDriveTime(file.CreatedTime),
		ModifiedAt: parseDriveTime(file.ModifiedTime),
	}
	if len(file.Parents) > 0 {
		item.ParentID = file.Parents[0]
	}
	for _, owner := range file.Owners {
		if owner.DisplayName != "" {
			item.Authors = append(item.Authors, owner.DisplayName)
		}
	}
	if len(item.Authors) > 0 {
		item.Author = item.Authors[0]
	}
	return item, true
}

// FetchContent retrieves the text content of a file, exporting Workspace
// formats to plain text.
func (a *Adapter) FetchContent(ctx context.Context, externalID string) (string, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return "", err
	}
	file, err := a.svc.Files.Get(externalID).Fields(fileFields).Context(ctx).Do()
	if err != nil {
		a.recordIfRateLimited(err)
		return "", fmt.Errorf("get file %s: %w", externalID, connectors.WrapError(err))
	}

	switch file.MimeType {
	case mimeTypeGoogleDoc, mimeTypeGoogleSlides:
		return a.export(ctx, externalID, exportMimeText)
	case mimeTypeGoogleSheet:
		return a.export(ctx, externalID, exportMimeCSV)
	}

	if !isTextMime(file.MimeType) || file.Size > maxExportSize {
		return "", nil
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return "", err
	}
	resp, err := a.svc.Files.Get(externalID).Context(ctx).Download()
	if err != nil {
		a.recordIfRateLimited(err)
		return "", fmt.Errorf("download file %s: %w", externalID, connectors.WrapError(err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxExportSize))
	if err != nil {
		return "", fmt.Errorf("read file %s: %w", externalID, err)
	}
	return string(data), nil
}

// export converts a Workspace file to the requested text format.
func (a *Adapter) export(ctx context.Context, fileID, exportMime string) (string, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return "", err
	}
	resp, err := a.svc.Files.Export(fileID, exportMime).Context(ctx).Download()
	if err != nil {
		a.recordIfRateLimited(err)
		return "", fmt.Errorf("export file %s: %w", fileID, connectors.WrapError(err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxExportSize))
	if err != nil {
		return "", fmt.Errorf("read export %s: %w", fileID, err)
	}
	return string(data), nil
}

// IsInScope reports whether the file sits under one of the selected
// folders. An empty selection admits everything.
func (a *Adapter) IsInScope(item domain.ChangedItem, scopeIDs []string) bool {
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

// Close releases resources. The Drive client has none to release.
func (a *Adapter) Close() error { return nil }

func (a *Adapter) recordIfRateLimited(err error) {
	if errors.Is(connectors.WrapError(err), domain.ErrRateLimited) {
		a.limiter.RecordRateLimitError(connectors.RetryAfterSeconds(err))
	}
}

func parseDriveTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func isTextMime(mimeType string) bool {
	if strings.HasPrefix(mimeType, "text/") {
		return true
	}
	switch mimeType {
	case "application/json", "application/xml", "application/javascript",
		"application/x-yaml", "application/x-sh", "application/sql":
		return true
	}
	return false
}
