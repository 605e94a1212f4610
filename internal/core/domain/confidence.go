package domain

// ConfidenceLevel is the triage bucket driving human review priority.
type ConfidenceLevel string

const (
	// LevelGreen needs only a light review.
	LevelGreen ConfidenceLevel = "green"

	// LevelYellow needs a standard review.
	LevelYellow ConfidenceLevel = "yellow"

	// LevelRed needs close scrutiny.
	LevelRed ConfidenceLevel = "red"
)

// Triage thresholds. Scores at or above ThresholdGreen are green, at or
// above ThresholdYellow are yellow, everything below is red.
const (
	ThresholdGreen  = 0.80
	ThresholdYellow = 0.60
)

// LevelForScore maps a score in [0,1] to its triage level.
func LevelForScore(score float64) ConfidenceLevel {
	switch {
	case score >= ThresholdGreen:
		return LevelGreen
	case score >= ThresholdYellow:
		return LevelYellow
	default:
		return LevelRed
	}
}

// FactorScores are the four named heuristic factor scores, each in [0,1].
type FactorScores struct {
	// Clarity measures structure signals: headings, lists, sentence
	// well-formedness, length sanity.
	Clarity float64

	// Density measures signal-to-noise and vocabulary uniqueness.
	Density float64

	// Consistency rises with the number of independent authors.
	Consistency float64

	// Authority reflects recency and participant count.
	Authority float64
}

// ConfidenceResult is the output of the confidence scorer. It is
// computed fresh on every enrichment and never mutated afterwards.
type ConfidenceResult struct {
	// Score is the overall confidence in [0,1].
	Score float64

	// Level is the triage bucket derived from Score.
	Level ConfidenceLevel

	// Factors are the named heuristic factor scores.
	Factors FactorScores

	// Reasoning is a human-readable explanation of the score.
	Reasoning string

	// Recommendations are optional AI-supplied improvement hints.
	Recommendations []string

	// SourcePenalty is the deduction applied for a low-quality
	// original source, zero when none applied.
	SourcePenalty float64
}
