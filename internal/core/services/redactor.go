package services

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/triago-cli/internal/core/domain"
	"github.com/custodia-labs/triago-cli/internal/core/ports/driven"
	"github.com/custodia-labs/triago-cli/internal/logger"
)

// MaskStyle selects how detected spans are replaced.
type MaskStyle int

const (
	// MaskStars replaces each span with stars of equal length.
	MaskStars MaskStyle = iota

	// MaskBracket replaces each span with a literal "[REDACTED]" token.
	MaskBracket

	// MaskHash replaces each span with hashes of equal length.
	MaskHash

	// MaskCustom delegates replacement to RedactionOptions.MaskFunc,
	// enabling partial masking such as keeping a card's last 4 digits.
	MaskCustom
)

// DefaultConfidenceThreshold filters recognition results.
const DefaultConfidenceThreshold = 0.8

// RedactionOptions configures a redaction call. The zero value uses the
// star style, the default category set and the default threshold.
type RedactionOptions struct {
	Style      MaskStyle
	Threshold  float64
	Categories []domain.PIICategory
	Language   string

	// MaskFunc supplies the replacement for MaskCustom.
	MaskFunc func(domain.PIIEntity) string
}

// Redactor detects and masks sensitive spans. The external recogniser is
// the primary path; any call failure triggers the deterministic regex
// fallback. Results are cached by content digest so retries avoid
// redundant external calls.
type Redactor struct {
	recogniser driven.EntityRecogniser
	cache      driven.RedactionCache
}

// NewRedactor creates a redactor. Both the recogniser and the cache may
// be nil; a nil recogniser means the regex fallback always runs.
func NewRedactor(recogniser driven.EntityRecogniser, cache driven.RedactionCache) *Redactor {
	return &Redactor{recogniser: recogniser, cache: cache}
}

// Redact masks sensitive spans in text. It never fails: detection
// degrades to the regex tier and an empty result masks nothing.
func (r *Redactor) Redact(ctx context.Context, text string, opts RedactionOptions) domain.RedactionResult {
	if opts.Threshold == 0 {
		opts.Threshold = DefaultConfidenceThreshold
	}
	if len(opts.Categories) == 0 {
		opts.Categories = domain.DefaultPIICategories
	}

	// MaskFunc output is caller-specific and cannot be keyed, so those
	// calls bypass the cache entirely.
	useCache := r.cache != nil && opts.MaskFunc == nil
	cacheKey := redactionCacheKey(text, opts)
	if useCache {
		if cached, ok := r.cache.Get(cacheKey); ok {
			return *cached
		}
	}

	entities, fallbackUsed := r.detect(ctx, text, opts)
	entities = mergeOverlapping(entities)

	result := domain.RedactionResult{
		RedactedText: applyMasks(text, entities, opts),
		Entities:     entities,
		FallbackUsed: fallbackUsed,
	}

	if useCache {
		r.cache.Set(cacheKey, &result)
	}
	return result
}

// redactionCacheKey folds every option that changes the output into the
// key, so calls with differing thresholds or category sets never share
// an entry.
func redactionCacheKey(text string, opts RedactionOptions) string {
	names := make([]string, len(opts.Categories))
	for i, c := range opts.Categories {
		names[i] = string(c)
	}
	sort.Strings(names)
	return fmt.Sprintf("%s:%d:%g:%s", ContentDigest(text), opts.Style, opts.Threshold, strings.Join(names, ","))
}

// detect runs the recogniser, falling back to regexes on any failure.
func (r *Redactor) detect(ctx context.Context, text string, opts RedactionOptions) ([]domain.PIIEntity, bool) {
	if r.recogniser == nil {
		return detectWithRegexes(text), true
	}

	detected, err := r.recogniser.DetectEntities(ctx, text, opts.Categories, opts.Language)
	if err != nil {
		logger.Warn("redactor: recognition failed, using regex fallback: %v", err)
		return detectWithRegexes(text), true
	}

	var entities []domain.PIIEntity
	for _, e := range detected {
		if e.Confidence >= opts.Threshold {
			entities = append(entities, e)
		}
	}
	return entities, false
}

// fallbackPattern pairs a compiled regex with the category it emits.
type fallbackPattern struct {
	category domain.PIICategory
	re       *regexp.Regexp
}

// Fallback patterns, checked in order. The two national-ID formats are
// illustrative (UK National Insurance and Nordic personal numbers).
var fallbackPatterns = []fallbackPattern{
	{domain.PIIEmail, regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)},
	{domain.PIIURL, regexp.MustCompile(`https?://[^\s<>"]+`)},
	{domain.PIICreditCard, regexp.MustCompile(`\b\d{4}[- ]\d{4}[- ]\d{4}[- ]\d{4}\b`)},
	{domain.PIINationalID, regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)},
	{domain.PIINationalID, regexp.MustCompile(`\b[A-Z]{2}\s?\d{6}\s?[A-D]\b`)},
	{domain.PIINationalID, regexp.MustCompile(`\b\d{6}[-+]\d{4}\b`)},
	{domain.PIIPhone, regexp.MustCompile(`\+\d{1,3}[ -]?\d{2,4}[ -]?\d{3,4}[ -]?\d{3,4}\b`)},
	{domain.PIIPhone, regexp.MustCompile(`\b\(?\d{3}\)?[-. ]\d{3}[-. ]\d{4}\b`)},
	{domain.PIIIPAddress, regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)},
	{domain.PIIAddress, regexp.MustCompile(`(?im)^.*\b\d+\s+\w+\s+(street|avenue|road|lane|drive|boulevard|way)\b.*$`)},
}

// detectWithRegexes is the deterministic fallback tier.
func detectWithRegexes(text string) []domain.PIIEntity {
	var entities []domain.PIIEntity
	for _, p := range fallbackPatterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			entities = append(entities, domain.PIIEntity{
				Text:       text[loc[0]:loc[1]],
				Category:   p.category,
				Confidence: 1.0,
				Offset:     loc[0],
				Length:     loc[1] - loc[0],
			})
		}
	}
	return entities
}

// mergeOverlapping collapses overlapping spans, keeping the widest span,
// the earliest-discovered category and the maximum confidence.
func mergeOverlapping(entities []domain.PIIEntity) []domain.PIIEntity {
	if len(entities) < 2 {
		return entities
	}

	// Sorting loses discovery order, so each entity carries its input
	// position and the merged span keeps the earliest one's category.
	type ordered struct {
		domain.PIIEntity
		pos int
	}
	sorted := make([]ordered, len(entities))
	for i, e := range entities {
		sorted[i] = ordered{e, i}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	merged := []ordered{sorted[0]}
	for _, e := range sorted[1:] {
		last := &merged[len(merged)-1]
		if e.Offset < last.Offset+last.Length {
			end := last.Offset + last.Length
			if eEnd := e.Offset + e.Length; eEnd > end {
				end = eEnd
			}
			last.Length = end - last.Offset
			if e.pos < last.pos {
				last.Category = e.Category
				last.pos = e.pos
			}
			if e.Confidence > last.Confidence {
				last.Confidence = e.Confidence
			}
			continue
		}
		merged = append(merged, e)
	}

	out := make([]domain.PIIEntity, len(merged))
	for i, e := range merged {
		out[i] = e.PIIEntity
	}
	return out
}

// applyMasks replaces spans in descending-offset order so earlier
// replacements never shift the offsets of not-yet-processed entities.
func applyMasks(text string, entities []domain.PIIEntity, opts RedactionOptions) string {
	ordered := make([]domain.PIIEntity, len(entities))
	copy(ordered, entities)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Offset > ordered[j].Offset
	})

	for _, e := range ordered {
		if e.Offset < 0 || e.Offset+e.Length > len(text) {
			continue
		}
		text = text[:e.Offset] + maskFor(e, opts) + text[e.Offset+e.Length:]
	}
	return text
}

func maskFor(e domain.PIIEntity, opts RedactionOptions) string {
	switch opts.Style {
	case MaskBracket:
		return "[REDACTED]"
	case MaskHash:
		return strings.Repeat("#", e.Length)
	case MaskCustom:
		if opts.MaskFunc != nil {
			return opts.MaskFunc(e)
		}
		return strings.Repeat("*", e.Length)
	default:
		return strings.Repeat("*", e.Length)
	}
}
