package connectors

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/triago-cli/internal/core/domain"
)

// ErrSyncTokenExpired indicates the provider invalidated the change
// token (HTTP 410). Adapters recover by restarting with a full scan.
var ErrSyncTokenExpired = errors.New("connectors: sync token expired, full rescan required")

// StatusError carries a provider HTTP status for classification.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Body)
}

// WrapError maps provider API failures onto domain errors so callers can
// branch without knowing which provider produced them.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	code := 0
	var gerr *googleapi.Error
	var serr *StatusError
	switch {
	case errors.As(err, &gerr):
		code = gerr.Code
	case errors.As(err, &serr):
		code = serr.StatusCode
	default:
		return err
	}

	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %v", domain.ErrAuthExpired, err)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	case http.StatusGone:
		return fmt.Errorf("%w: %v", ErrSyncTokenExpired, err)
	default:
		return err
	}
}

// RetryAfterSeconds extracts a Retry-After hint from a provider error,
// zero when absent.
func RetryAfterSeconds(err error) int {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		for _, h := range gerr.Header.Values("Retry-After") {
			var seconds int
			if _, scanErr := fmt.Sscanf(h, "%d", &seconds); scanErr == nil && seconds > 0 {
				return seconds
			}
		}
	}
	return 0
}
