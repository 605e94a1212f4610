package driven

import (
	"context"

	"github.com/custodia-labs/triago-cli/internal/core/domain"
)

// EntityRecogniser provides named-entity recognition for PII detection.
// Optional: when nil or failing, the redactor uses its regex fallback.
type EntityRecogniser interface {
	// DetectEntities returns sensitive spans of the given categories.
	// Language may be empty for auto-detection.
	DetectEntities(ctx context.Context, text string, categories []domain.PIICategory, language string) ([]domain.PIIEntity, error)

	// Close releases resources.
	Close() error
}
