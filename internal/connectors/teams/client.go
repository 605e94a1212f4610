package teams

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/triago-cli/internal/connectors"
	"github.com/custodia-labs/triago-cli/internal/core/domain"
)

// DefaultBaseURL is the Microsoft Graph v1.0 endpoint.
const DefaultBaseURL = "https://graph.microsoft.com/v1.0"

// client is a minimal Graph REST client. Requests are paced by the
// shared rate limiter and 429 responses feed its backoff window.
type client struct {
	http    *http.Client
	baseURL string
	ts      oauth2.TokenSource
	limiter *connectors.RateLimiter
}

func newClient(ts oauth2.TokenSource, baseURL string) *client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &client{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
		ts:      ts,
		limiter: connectors.NewRateLimiter(domain.ProviderTeams),
	}
}

// get issues an authenticated GET and decodes the JSON body into out.
// The url may be absolute (delta links come back absolute) or a path
// relative to the base URL.
func (c *client) get(ctx context.Context, url string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	if len(url) > 0 && url[0] == '/' {
		url = c.baseURL + url
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	token, err := c.ts.Token()
	if err != nil {
		return fmt.Errorf("get access token: %w", err)
	}
	token.SetAuthHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("graph request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if resp.StatusCode == http.StatusTooManyRequests {
			c.limiter.RecordRateLimitError(retryAfter(resp))
		}
		return connectors.WrapError(&connectors.StatusError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
		})
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode graph response: %w", err)
	}
	return nil
}

func retryAfter(resp *http.Response) int {
	seconds, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil {
		return 0
	}
	return seconds
}
