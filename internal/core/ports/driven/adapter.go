package driven

import (
	"context"

	"github.com/custodia-labs/triago-cli/internal/core/domain"
)

// SourceAdapter is the uniform interface over one external provider.
// Each provider type (teams, drive) implements it. Adapters normalise
// provider payloads into the tagged ChangedItem union at the boundary.
type SourceAdapter interface {
	// Provider returns the provider type this adapter serves.
	Provider() domain.ProviderType

	// SourceID returns the configured source ID.
	SourceID() string

	// Validate checks that the adapter is properly configured and
	// authenticated, typically with a lightweight API call.
	Validate(ctx context.Context) error

	// ListChanges returns items changed since the cursor, plus the new
	// cursor. An empty cursor requests a full scan. Adapters handle
	// pagination and rate limiting internally.
	ListChanges(ctx context.Context, cursor string) ([]domain.ChangedItem, string, error)

	// FetchContent retrieves the raw content for one item.
	FetchContent(ctx context.Context, externalID string) (string, error)

	// IsInScope reports whether the item falls inside the selected
	// channels/folders.
	IsInScope(item domain.ChangedItem, scopeIDs []string) bool

	// Close releases resources.
	Close() error
}

// AdapterFactory creates source adapters from source configuration.
type AdapterFactory interface {
	// Create returns a SourceAdapter for the given source.
	// Returns domain.ErrUnsupportedProvider for unknown provider types.
	Create(ctx context.Context, source domain.ConnectedSource) (SourceAdapter, error)

	// SupportedProviders returns all registered provider types.
	SupportedProviders() []domain.ProviderType
}
