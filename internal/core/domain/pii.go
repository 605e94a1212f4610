package domain

// PIICategory classifies a sensitive text span.
type PIICategory string

// Categories requested from the entity-recognition service. The regex
// fallback additionally emits the national-ID and credit-card categories.
const (
	PIIPerson       PIICategory = "person"
	PIIPhone        PIICategory = "phone"
	PIIEmail        PIICategory = "email"
	PIIAddress      PIICategory = "address"
	PIIIPAddress    PIICategory = "ip_address"
	PIIOrganisation PIICategory = "organisation"
	PIIURL          PIICategory = "url"
	PIIDate         PIICategory = "date"
	PIIQuantity     PIICategory = "quantity"
	PIINationalID   PIICategory = "national_id"
	PIICreditCard   PIICategory = "credit_card"
)

// DefaultPIICategories is the fixed set asked of the recognition service.
var DefaultPIICategories = []PIICategory{
	PIIPerson, PIIPhone, PIIEmail, PIIAddress, PIIIPAddress,
	PIIOrganisation, PIIURL, PIIDate, PIIQuantity,
}

// PIIEntity is one detected sensitive span. Entities are transient; only
// the redacted text and entity counts/categories are persisted onward.
type PIIEntity struct {
	// Text is the matched span.
	Text string

	// Category classifies the span.
	Category PIICategory

	// Confidence is the detector's confidence in [0,1].
	Confidence float64

	// Offset is the byte offset of the span in the original text.
	Offset int

	// Length is the byte length of the span.
	Length int
}

// RedactionResult is the outcome of masking a text. It is cacheable by
// content digest.
type RedactionResult struct {
	// RedactedText is the input with sensitive spans masked.
	RedactedText string

	// Entities are the masked spans, after overlap merging.
	Entities []PIIEntity

	// FallbackUsed is true when the regex tier produced the entities.
	FallbackUsed bool
}

// CategoryCounts tallies entities per category.
func (r *RedactionResult) CategoryCounts() map[PIICategory]int {
	counts := make(map[PIICategory]int, len(r.Entities))
	for _, e := range r.Entities {
		counts[e.Category]++
	}
	return counts
}

// Categories returns the distinct categories present, in first-seen order.
func (r *RedactionResult) Categories() []PIICategory {
	seen := make(map[PIICategory]bool, len(r.Entities))
	var out []PIICategory
	for _, e := range r.Entities {
		if !seen[e.Category] {
			seen[e.Category] = true
			out = append(out, e.Category)
		}
	}
	return out
}
