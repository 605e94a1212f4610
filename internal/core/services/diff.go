package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/triago-cli/internal/core/domain"
	"github.com/custodia-labs/triago-cli/internal/core/ports/driven"
	"github.com/custodia-labs/triago-cli/internal/logger"
	"github.com/custodia-labs/triago-cli/internal/markdownutil"
)

// maxDiffEntries caps the number of change descriptions returned.
const maxDiffEntries = 5

// diffExcerptLimit bounds the content sent to the completion service.
const diffExcerptLimit = 2000

// diffTimeout is the hard ceiling for the completion attempt.
const diffTimeout = 30 * time.Second

const diffPrompt = `Compare the two versions of a document below and list what changed.

OLD VERSION:
%s

NEW VERSION:
%s

Respond with ONLY a JSON array of at most %d short change descriptions, for example:
["Added a rollback procedure section", "Updated the on-call rotation"]`

// DiffSummariser produces a short human-readable list of changes between
// two document revisions. The completion service is tried first; any
// timeout or parse failure falls through to a deterministic heuristic
// that never fails.
type DiffSummariser struct {
	llm     driven.CompletionService
	timeout time.Duration
}

// NewDiffSummariser creates a diff summariser. The completion service
// may be nil, in which case only the heuristic tier runs.
func NewDiffSummariser(llm driven.CompletionService) *DiffSummariser {
	return &DiffSummariser{llm: llm, timeout: diffTimeout}
}

// Summarise returns at most five change descriptions plus the
// completion token spend, or nil when the contents are identical.
func (d *DiffSummariser) Summarise(ctx context.Context, oldContent, newContent string) ([]string, int) {
	if strings.TrimSpace(oldContent) == strings.TrimSpace(newContent) {
		return nil, 0
	}

	if d.llm != nil {
		entries, tokens, ok := d.summariseWithCompletion(ctx, oldContent, newContent)
		if ok {
			return entries, tokens
		}
		logger.Debug("diff: completion tier unavailable, using heuristic")
		// Tokens were still spent when the call succeeded but the
		// response was unparseable.
		return d.summariseHeuristic(oldContent, newContent), tokens
	}

	return d.summariseHeuristic(oldContent, newContent), 0
}

// summariseWithCompletion asks the completion service to compare
// excerpts. The boolean is false when the call failed or the response
// could not be parsed; the token count covers any completed call.
func (d *DiffSummariser) summariseWithCompletion(ctx context.Context, oldContent, newContent string) ([]string, int, bool) {
	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	prompt := fmt.Sprintf(diffPrompt,
		excerpt(oldContent, diffExcerptLimit),
		excerpt(newContent, diffExcerptLimit),
		maxDiffEntries)

	resp, err := d.llm.Complete(callCtx, []driven.ChatMessage{
		{Role: "user", Content: prompt},
	}, driven.CompleteOptions{MaxTokens: 300, Temperature: 0.2})
	if err != nil {
		return nil, 0, false
	}

	entries, err := extractJSONStringArray(resp.Text)
	if err != nil || len(entries) == 0 {
		return nil, resp.TokensUsed, false
	}

	if len(entries) > maxDiffEntries {
		entries = entries[:maxDiffEntries]
	}
	return entries, resp.TokensUsed, true
}

// summariseHeuristic is the deterministic, dependency-free fallback tier.
func (d *DiffSummariser) summariseHeuristic(oldContent, newContent string) []string {
	var entries []string

	oldLines := countNonEmptyLines(oldContent)
	newLines := countNonEmptyLines(newContent)
	switch {
	case newLines > oldLines:
		entries = append(entries, fmt.Sprintf("Content grew from %d to %d lines", oldLines, newLines))
	case newLines < oldLines:
		entries = append(entries, fmt.Sprintf("Content shrank from %d to %d lines", oldLines, newLines))
	}

	oldHeadings := markdownutil.HeadingSet(oldContent)
	newHeadings := markdownutil.HeadingSet(newContent)
	for _, h := range sortedKeys(newHeadings) {
		if !oldHeadings[h] {
			entries = append(entries, fmt.Sprintf("Added section %q", h))
		}
	}
	for _, h := range sortedKeys(oldHeadings) {
		if !newHeadings[h] {
			entries = append(entries, fmt.Sprintf("Removed section %q", h))
		}
	}

	oldKeywords := toSet(topKeywords(oldContent, 10))
	newKeywords := toSet(topKeywords(newContent, 10))
	if added := setDifference(newKeywords, oldKeywords); len(added) > 0 {
		entries = append(entries, "New topics mentioned: "+strings.Join(added, ", "))
	}
	if removed := setDifference(oldKeywords, newKeywords); len(removed) > 0 {
		entries = append(entries, "No longer mentioned: "+strings.Join(removed, ", "))
	}

	if len(entries) == 0 {
		entries = append(entries, "Content updated")
	}
	if len(entries) > maxDiffEntries {
		entries = entries[:maxDiffEntries]
	}
	return entries
}

var jsonArrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// extractJSONStringArray locates and parses the first JSON array in a
// completion response, tolerating surrounding prose and code fences.
func extractJSONStringArray(text string) ([]string, error) {
	text = stripCodeFences(text)

	match := jsonArrayPattern.FindString(text)
	if match == "" {
		return nil, fmt.Errorf("locate json array: %w", domain.ErrInvalidInput)
	}

	var entries []string
	if err := json.Unmarshal([]byte(match), &entries); err != nil {
		return nil, fmt.Errorf("parse json array: %w", err)
	}

	var out []string
	for _, e := range entries {
		if s := strings.TrimSpace(e); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

// stripCodeFences removes a surrounding markdown code fence, if any.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	end := len(lines) - 1
	for i := len(lines) - 1; i > 0; i-- {
		if strings.TrimSpace(lines[i]) == "```" {
			end = i
			break
		}
	}
	return strings.Join(lines[1:end], "\n")
}

func excerpt(s string, limit int) string {
	s = strings.TrimSpace(s)
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "\n[truncated]"
}

func countNonEmptyLines(s string) int {
	count := 0
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

func setDifference(a, b map[string]bool) []string {
	var out []string
	for _, k := range sortedKeys(a) {
		if !b[k] {
			out = append(out, k)
		}
	}
	return out
}
