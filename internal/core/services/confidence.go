package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/triago-cli/internal/core/domain"
	"github.com/custodia-labs/triago-cli/internal/markdownutil"
)

// Factor weights for the heuristic combination.
const (
	weightClarity     = 0.4
	weightDensity     = 0.3
	weightConsistency = 0.2
	weightAuthority   = 0.1
)

// aiLowQualityPenalty is subtracted from an AI-supplied score when the
// original raw source was independently judged low quality.
const aiLowQualityPenalty = 0.05

// maxSourcePenalty bounds the heuristic raw-source deduction, so a
// fluent rewrite of a fragmented source cannot fully mask its weakness.
const maxSourcePenalty = 0.2

// AIAssessment is the optional external quality assessment.
type AIAssessment struct {
	// OverallScore, when non-nil, is used directly (clamped to [0,1]).
	OverallScore *float64

	// Reasoning is preferred verbatim when non-trivial.
	Reasoning string

	// Recommendations are improvement hints passed through.
	Recommendations []string
}

// SourceQuality is an independent assessment of the original,
// unprocessed source content.
type SourceQuality struct {
	// Score is the structural quality in [0,1].
	Score float64

	// Tier labels the quality band: "high", "medium" or "low".
	Tier string
}

// SourceMeta carries per-source signals for the consistency and
// authority factors.
type SourceMeta struct {
	Provider         domain.ProviderType
	Author           string
	ParticipantCount int
	ModifiedAt       time.Time
}

// Scorer computes confidence results. It is pure: no I/O, so results
// are recomputable on demand by the recalculation job.
type Scorer struct {
	now func() time.Time
}

// NewScorer creates a confidence scorer.
func NewScorer() *Scorer {
	return &Scorer{now: time.Now}
}

// Score combines heuristic signals with an optional AI assessment into
// a confidence result. changeSummary, when present, is woven into the
// reasoning text.
func (s *Scorer) Score(
	content string,
	sources []SourceMeta,
	ai *AIAssessment,
	quality *SourceQuality,
	changeSummary []string,
) domain.ConfidenceResult {
	if ai != nil && ai.OverallScore != nil {
		return s.scoreFromAssessment(ai, quality, changeSummary)
	}
	return s.scoreHeuristic(content, sources, quality, changeSummary)
}

// scoreFromAssessment uses the AI-supplied score directly.
func (s *Scorer) scoreFromAssessment(ai *AIAssessment, quality *SourceQuality, changeSummary []string) domain.ConfidenceResult {
	score := clamp01(*ai.OverallScore)

	penalty := 0.0
	if quality != nil && quality.Tier == "low" {
		penalty = aiLowQualityPenalty
		score = clamp01(score - penalty)
	}

	reasoning := strings.TrimSpace(ai.Reasoning)
	if len(reasoning) < 10 {
		reasoning = fmt.Sprintf("AI assessment scored this document %.2f.", score)
	}
	if penalty > 0 {
		reasoning += " The original source material was judged low quality."
	}

	return domain.ConfidenceResult{
		Score:           score,
		Level:           domain.LevelForScore(score),
		Reasoning:       withChangeSummary(reasoning, changeSummary),
		Recommendations: ai.Recommendations,
		SourcePenalty:   penalty,
	}
}

// scoreHeuristic computes the four weighted factor scores.
func (s *Scorer) scoreHeuristic(content string, sources []SourceMeta, quality *SourceQuality, changeSummary []string) domain.ConfidenceResult {
	factors := domain.FactorScores{
		Clarity:     scoreClarity(content),
		Density:     scoreDensity(content),
		Consistency: scoreConsistency(sources),
		Authority:   scoreAuthority(sources, s.now()),
	}

	weighted := factors.Clarity*weightClarity +
		factors.Density*weightDensity +
		factors.Consistency*weightConsistency +
		factors.Authority*weightAuthority

	penalty := 0.0
	if quality != nil {
		penalty = (1 - clamp01(quality.Score)) * maxSourcePenalty
	}

	score := clamp01(weighted - penalty)

	return domain.ConfidenceResult{
		Score:         score,
		Level:         domain.LevelForScore(score),
		Factors:       factors,
		Reasoning:     withChangeSummary(synthesiseReasoning(factors, quality), changeSummary),
		SourcePenalty: penalty,
	}
}

// scoreClarity measures structure signals: headings, lists, sentence
// well-formedness and length sanity.
func scoreClarity(content string) float64 {
	score := 0.3

	if len(markdownutil.Headings(content)) > 0 {
		score += 0.25
	}
	if markdownutil.CountListItems(content) > 0 {
		score += 0.15
	}

	sentences := splitSentences(content)
	if len(sentences) > 0 {
		words := 0
		for _, s := range sentences {
			words += len(tokenize(s))
		}
		avg := float64(words) / float64(len(sentences))
		// Well-formed prose averages 8-30 words per sentence.
		if avg >= 8 && avg <= 30 {
			score += 0.2
		} else if avg > 4 {
			score += 0.1
		}
	}

	if n := len(content); n >= 100 && n <= 10000 {
		score += 0.1
	}

	return clamp01(score)
}

// scoreDensity measures signal-to-noise after filler stripping plus
// vocabulary uniqueness, with bonuses for definitions, examples,
// instructions and numeric specifics.
func scoreDensity(content string) float64 {
	tokens := tokenize(content)
	if len(tokens) == 0 {
		return 0
	}

	filler := 0
	unique := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		if fillerWords[t] {
			filler++
		}
		unique[t] = true
	}

	signal := 1 - float64(filler)/float64(len(tokens))
	uniqueness := float64(len(unique)) / float64(len(tokens))

	score := signal*0.4 + uniqueness*0.4

	lower := strings.ToLower(content)
	for _, marker := range []string{"for example", "e.g.", "is defined as", "means that", "step "} {
		if strings.Contains(lower, marker) {
			score += 0.05
			break
		}
	}
	if strings.ContainsAny(content, "0123456789") {
		score += 0.1
	}

	return clamp01(score)
}

// scoreConsistency rises with the number of independent authors.
func scoreConsistency(sources []SourceMeta) float64 {
	authors := make(map[string]bool)
	for _, m := range sources {
		if m.Author != "" {
			authors[m.Author] = true
		}
	}
	if len(authors) == 0 {
		return 0.4
	}
	return clamp01(0.4 + 0.15*float64(len(authors)))
}

// scoreAuthority reflects recency and participant count.
func scoreAuthority(sources []SourceMeta, now time.Time) float64 {
	if len(sources) == 0 {
		return 0.5
	}

	var newest time.Time
	participants := 0
	for _, m := range sources {
		if m.ModifiedAt.After(newest) {
			newest = m.ModifiedAt
		}
		participants += m.ParticipantCount
	}

	score := 0.3
	if !newest.IsZero() {
		age := now.Sub(newest)
		switch {
		case age <= 30*24*time.Hour:
			score += 0.4
		case age <= 180*24*time.Hour:
			score += 0.2
		}
	}
	if participants >= 3 {
		score += 0.3
	} else if participants > 0 {
		score += 0.15
	}

	return clamp01(score)
}

// factorDescription names a factor's strength band for reasoning text.
func factorDescription(name string, value float64) string {
	switch {
	case value >= 0.75:
		return name + " is strong"
	case value >= 0.5:
		return name + " is adequate"
	default:
		return name + " is weak"
	}
}

// synthesiseReasoning builds a human-readable explanation from the
// factor scores and the raw-source quality tier.
func synthesiseReasoning(f domain.FactorScores, quality *SourceQuality) string {
	parts := []struct {
		name  string
		value float64
	}{
		{"content clarity", f.Clarity},
		{"information density", f.Density},
		{"source consistency", f.Consistency},
		{"source authority", f.Authority},
	}

	// Strongest factors first so the headline matches the score.
	sort.SliceStable(parts, func(i, j int) bool {
		return parts[i].value > parts[j].value
	})

	descriptions := make([]string, len(parts))
	for i, p := range parts {
		descriptions[i] = fmt.Sprintf("%s (%.2f)", factorDescription(p.name, p.value), p.value)
	}

	reasoning := "Heuristic assessment: " + strings.Join(descriptions, "; ") + "."
	if quality != nil && quality.Tier != "" {
		reasoning += fmt.Sprintf(" Original source quality: %s.", quality.Tier)
	}
	return reasoning
}

// withChangeSummary prepends the diff summary to the reasoning text.
func withChangeSummary(reasoning string, changeSummary []string) string {
	if len(changeSummary) == 0 {
		return reasoning
	}
	return "Changes since last revision: " + strings.Join(changeSummary, "; ") + ". " + reasoning
}

// AssessRawQuality judges the structural quality of the original,
// unprocessed source content, independent of how polished the enriched
// output looks.
func AssessRawQuality(raw string) SourceQuality {
	score := 0.0

	lines := strings.Split(raw, "\n")
	nonEmpty := 0
	short := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		nonEmpty++
		if len(tokenize(trimmed)) < 4 {
			short++
		}
	}

	if nonEmpty > 0 {
		// Fragmented content is mostly very short lines.
		score += 0.5 * (1 - float64(short)/float64(nonEmpty))
	}
	if len(markdownutil.Headings(raw)) > 0 {
		score += 0.2
	}
	if sentences := splitSentences(raw); len(sentences) >= 3 {
		score += 0.2
	}
	if len(raw) >= 200 {
		score += 0.1
	}

	score = clamp01(score)
	tier := "low"
	switch {
	case score >= 0.7:
		tier = "high"
	case score >= 0.4:
		tier = "medium"
	}
	return SourceQuality{Score: score, Tier: tier}
}
