package connectors

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/triago-cli/internal/core/domain"
)

// Config keys every provider understands.
const (
	// ConfigAccessToken holds the OAuth access token for the source.
	ConfigAccessToken = "access_token"

	// ConfigRefreshToken optionally holds a refresh token.
	ConfigRefreshToken = "refresh_token"
)

// TokenSourceFor builds an oauth2.TokenSource from a source's stored
// credentials. API clients refresh through the standard oauth2 machinery
// when a refresh token and endpoint are configured; otherwise the static
// token is used until it expires.
func TokenSourceFor(source domain.ConnectedSource, endpoint oauth2.Endpoint) (oauth2.TokenSource, error) {
	access := source.Config[ConfigAccessToken]
	if access == "" {
		return nil, fmt.Errorf("source %s has no access token: %w", source.ID, domain.ErrInvalidInput)
	}

	token := &oauth2.Token{
		AccessToken:  access,
		TokenType:    "Bearer",
		RefreshToken: source.Config[ConfigRefreshToken],
	}

	if token.RefreshToken != "" && endpoint.TokenURL != "" {
		cfg := &oauth2.Config{
			ClientID:     source.Config["client_id"],
			ClientSecret: source.Config["client_secret"],
			Endpoint:     endpoint,
		}
		return cfg.TokenSource(context.Background(), token), nil
	}

	return oauth2.StaticTokenSource(token), nil
}
