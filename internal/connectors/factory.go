package connectors

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/microsoft"

	"github.com/custodia-labs/triago-cli/internal/core/domain"
	"github.com/custodia-labs/triago-cli/internal/core/ports/driven"
)

// adapterConstructors are injected so the factory stays testable without
// provider credentials.
type adapterConstructors struct {
	drive func(ctx context.Context, source domain.ConnectedSource, ts oauth2.TokenSource) (driven.SourceAdapter, error)
	teams func(source domain.ConnectedSource, ts oauth2.TokenSource) (driven.SourceAdapter, error)
}

// Factory creates source adapters from source configuration.
type Factory struct {
	constructors adapterConstructors
}

var _ driven.AdapterFactory = (*Factory)(nil)

// NewFactory creates the production adapter factory.
func NewFactory(
	drive func(ctx context.Context, source domain.ConnectedSource, ts oauth2.TokenSource) (driven.SourceAdapter, error),
	teams func(source domain.ConnectedSource, ts oauth2.TokenSource) (driven.SourceAdapter, error),
) *Factory {
	return &Factory{constructors: adapterConstructors{drive: drive, teams: teams}}
}

// Create returns a SourceAdapter for the given source.
func (f *Factory) Create(ctx context.Context, source domain.ConnectedSource) (driven.SourceAdapter, error) {
	switch source.Provider {
	case domain.ProviderDrive:
		ts, err := TokenSourceFor(source, google.Endpoint)
		if err != nil {
			return nil, err
		}
		return f.constructors.drive(ctx, source, ts)
	case domain.ProviderTeams:
		ts, err := TokenSourceFor(source, microsoft.AzureADEndpoint(source.Config["tenant_id"]))
		if err != nil {
			return nil, err
		}
		return f.constructors.teams(source, ts)
	default:
		return nil, fmt.Errorf("provider %q: %w", source.Provider, domain.ErrUnsupportedProvider)
	}
}

// SupportedProviders returns all registered provider types.
func (f *Factory) SupportedProviders() []domain.ProviderType {
	return []domain.ProviderType{domain.ProviderTeams, domain.ProviderDrive}
}
