package services

import (
	"regexp"
	"sort"
	"strings"
)

// stopWords are filtered out of keyword and density calculations.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true,
	"at": true, "be": true, "but": true, "by": true, "for": true,
	"from": true, "had": true, "has": true, "have": true, "if": true,
	"in": true, "into": true, "is": true, "it": true, "its": true,
	"no": true, "not": true, "of": true, "on": true, "or": true,
	"so": true, "that": true, "the": true, "their": true, "then": true,
	"there": true, "these": true, "they": true, "this": true, "to": true,
	"was": true, "we": true, "were": true, "which": true, "will": true,
	"with": true, "you": true, "your": true,
}

// fillerWords dilute information density without being stop words.
var fillerWords = map[string]bool{
	"basically": true, "actually": true, "really": true, "very": true,
	"just": true, "quite": true, "maybe": true, "perhaps": true,
	"somehow": true, "somewhat": true, "kind": true, "sort": true,
	"stuff": true, "things": true, "etc": true,
}

var wordPattern = regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9'-]*`)

// tokenize splits text into lowercased word tokens.
func tokenize(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

// topKeywords returns the n most frequent non-stop-word tokens of at
// least four characters, ranked by frequency then alphabetically so the
// result is deterministic.
func topKeywords(text string, n int) []string {
	freq := make(map[string]int)
	for _, tok := range tokenize(text) {
		if len(tok) < 4 || stopWords[tok] {
			continue
		}
		freq[tok]++
	}

	words := make([]string, 0, len(freq))
	for w := range freq {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if freq[words[i]] != freq[words[j]] {
			return freq[words[i]] > freq[words[j]]
		}
		return words[i] < words[j]
	})

	if len(words) > n {
		words = words[:n]
	}
	return words
}

var sentenceEnd = regexp.MustCompile(`[.!?]+\s+`)

// splitSentences breaks text into sentences on terminal punctuation.
func splitSentences(text string) []string {
	parts := sentenceEnd.Split(text, -1)
	var out []string
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// clamp01 bounds a score to [0,1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
