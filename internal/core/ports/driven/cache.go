package driven

import "github.com/custodia-labs/triago-cli/internal/core/domain"

// RedactionCache caches redaction results by content digest so retries do
// not repeat external recognition calls. Implementations bound both
// capacity and entry age.
type RedactionCache interface {
	// Get returns the cached result for a digest, if present and fresh.
	Get(digest string) (*domain.RedactionResult, bool)

	// Set stores a result under a digest.
	Set(digest string, result *domain.RedactionResult)

	// Reset drops all entries. Used for test isolation.
	Reset()
}
