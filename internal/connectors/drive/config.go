package drive

import (
	"strconv"
	"strings"

	"github.com/custodia-labs/triago-cli/internal/core/domain"
)

// Config holds shared-drive adapter configuration.
type Config struct {
	// MimeTypeFilter limits syncing to specific MIME types (optional).
	MimeTypeFilter []string

	// MaxResults is the page size for API requests.
	MaxResults int64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{MaxResults: 100}
}

// ParseConfig extracts adapter configuration from a source.
func ParseConfig(source domain.ConnectedSource) *Config {
	cfg := DefaultConfig()

	if val := source.Config["mime_types"]; val != "" {
		cfg.MimeTypeFilter = strings.Split(val, ",")
		for i := range cfg.MimeTypeFilter {
			cfg.MimeTypeFilter[i] = strings.TrimSpace(cfg.MimeTypeFilter[i])
		}
	}

	if val := source.Config["max_results"]; val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil && n > 0 {
			cfg.MaxResults = n
		}
	}

	return cfg
}

// allowsMimeType checks the optional MIME filter.
func (c *Config) allowsMimeType(mimeType string) bool {
	if len(c.MimeTypeFilter) == 0 {
		return true
	}
	for _, filter := range c.MimeTypeFilter {
		if mimeType == filter {
			return true
		}
	}
	return false
}
