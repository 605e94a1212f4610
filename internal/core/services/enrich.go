package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/triago-cli/internal/core/domain"
	"github.com/custodia-labs/triago-cli/internal/core/ports/driven"
	"github.com/custodia-labs/triago-cli/internal/logger"
	"github.com/custodia-labs/triago-cli/internal/markdownutil"
)

// minContentLength is the ingestion floor; anything shorter is noise.
const minContentLength = 10

// maxTopics caps extracted topic strings per draft.
const maxTopics = 5

// stageTimeout bounds each completion-backed pipeline stage.
const stageTimeout = 30 * time.Second

// Batch processing parameters. The cooldown between batches keeps
// sustained ingestion under provider rate ceilings.
const (
	defaultBatchSize     = 5
	defaultBatchCooldown = 2 * time.Second
)

// Document type taxonomy. Classification output outside this set is
// coerced to DocTypeStandardProcedure.
const (
	DocTypeStandardProcedure = "standard_procedure"
	DocTypeTechnicalGuide    = "technical_guide"
	DocTypeMeetingNotes      = "meeting_notes"
	DocTypePolicy            = "policy"
	DocTypeFAQ               = "faq"
	DocTypeTroubleshooting   = "troubleshooting"
	DocTypeReference         = "reference"
	DocTypeUnclassified      = "unclassified"
)

var validDocTypes = map[string]bool{
	DocTypeStandardProcedure: true,
	DocTypeTechnicalGuide:    true,
	DocTypeMeetingNotes:      true,
	DocTypePolicy:            true,
	DocTypeFAQ:               true,
	DocTypeTroubleshooting:   true,
	DocTypeReference:         true,
	DocTypeUnclassified:      true,
}

// EnrichmentRequest carries one item through the pipeline.
type EnrichmentRequest struct {
	OrgID      string
	SourceID   string
	Provider   domain.ProviderType
	Item       domain.ChangedItem
	RawContent string

	// IsUpdate and SupersedesID link a re-ingested item to its prior
	// draft; ChangeSummary is the diff summariser's output for it and
	// DiffTokens the completion spend attributed to producing it.
	IsUpdate      bool
	SupersedesID  string
	ChangeSummary []string
	DiffTokens    int
}

// BatchOutcome is the settled result for one item of a batch. Exactly
// one of Draft and Err is meaningful.
type BatchOutcome struct {
	Index int
	Draft *domain.DraftDocument
	Err   error
}

// Pipeline turns raw source content into reviewed-ready draft documents.
// Stages run in order: validate, redact, classify, structure, summarise,
// extract topics, score. Every completion-backed stage has a
// deterministic fallback, so the pipeline works offline.
type Pipeline struct {
	llm      driven.CompletionService
	redactor *Redactor
	scorer   *Scorer

	batchSize     int
	batchCooldown time.Duration
	now           func() time.Time
	newID         func() string
}

// NewPipeline creates an enrichment pipeline. The completion service may
// be nil.
func NewPipeline(llm driven.CompletionService, redactor *Redactor, scorer *Scorer) *Pipeline {
	return &Pipeline{
		llm:           llm,
		redactor:      redactor,
		scorer:        scorer,
		batchSize:     defaultBatchSize,
		batchCooldown: defaultBatchCooldown,
		now:           time.Now,
		newID:         uuid.NewString,
	}
}

// Process runs one item through every stage and returns the draft. A
// domain.ErrContentTooShort failure is permanent; other errors are
// retryable on the next detection run because the content digest is only
// committed after success.
func (p *Pipeline) Process(ctx context.Context, req EnrichmentRequest) (*domain.DraftDocument, error) {
	started := p.now()

	raw := strings.TrimSpace(req.RawContent)
	if len(raw) < minContentLength {
		return nil, fmt.Errorf("item %s: %w", req.Item.ExternalID, domain.ErrContentTooShort)
	}

	redaction := p.redactor.Redact(ctx, raw, RedactionOptions{Style: MaskBracket})
	redacted := redaction.RedactedText

	docType, classifyTokens := p.classify(ctx, req.Item.Title, redacted)
	structured, structureTokens := p.structure(ctx, req.Item.Title, redacted, docType)
	summary := extractSummary(structured)
	topics, topicTokens := p.extractTopics(ctx, structured)

	quality := AssessRawQuality(raw)
	assessment, assessTokens := p.assess(ctx, structured, docType)
	confidence := p.scorer.Score(
		structured,
		sourceMetaFor(req),
		assessment,
		&quality,
		req.ChangeSummary,
	)

	now := p.now().UTC()
	draft := &domain.DraftDocument{
		ID:             p.newID(),
		OrgID:          req.OrgID,
		SourceID:       req.SourceID,
		ExternalID:     req.Item.ExternalID,
		Title:          titleFor(req.Item, structured),
		Content:        structured,
		DocType:        docType,
		Summary:        summary,
		Topics:         topics,
		Confidence:     confidence,
		PIIEntityCount: len(redaction.Entities),
		PIICategories:  categoryNames(redaction.Categories()),
		SourceURL:      req.Item.URL,
		ContentDigest:  ContentDigest(req.RawContent),
		IsUpdate:       req.IsUpdate,
		SupersedesID:   req.SupersedesID,
		ChangeSummary:  req.ChangeSummary,
		TokensUsed:     req.DiffTokens + classifyTokens + structureTokens + topicTokens + assessTokens,
		Status:         domain.DraftPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	draft.ProcessingTimeMs = now.Sub(started.UTC()).Milliseconds()
	return draft, nil
}

// ProcessMany enriches items in fixed-size concurrent batches with a
// cooldown between batches. Every item settles to its own outcome; one
// item's failure or panic never discards its siblings.
func (p *Pipeline) ProcessMany(ctx context.Context, reqs []EnrichmentRequest) []BatchOutcome {
	outcomes := make([]BatchOutcome, len(reqs))

	for start := 0; start < len(reqs); start += p.batchSize {
		end := start + p.batchSize
		if end > len(reqs) {
			end = len(reqs)
		}

		var g errgroup.Group
		g.SetLimit(p.batchSize)
		for i := start; i < end; i++ {
			g.Go(func() error {
				outcomes[i] = p.processSettled(ctx, i, reqs[i])
				return nil
			})
		}
		// Goroutines always return nil; results land in outcomes.
		_ = g.Wait()

		if end < len(reqs) && p.batchCooldown > 0 {
			select {
			case <-ctx.Done():
				for i := end; i < len(reqs); i++ {
					outcomes[i] = BatchOutcome{Index: i, Err: ctx.Err()}
				}
				return outcomes
			case <-time.After(p.batchCooldown):
			}
		}
	}
	return outcomes
}

// processSettled wraps Process so a panic in one item settles as that
// item's error.
func (p *Pipeline) processSettled(ctx context.Context, index int, req EnrichmentRequest) (out BatchOutcome) {
	out.Index = index
	defer func() {
		if r := recover(); r != nil {
			logger.Error("enrich: item %s panicked: %v", req.Item.ExternalID, r)
			out.Draft = nil
			out.Err = fmt.Errorf("enrich item %s: panic: %v", req.Item.ExternalID, r)
		}
	}()
	out.Draft, out.Err = p.Process(ctx, req)
	return out
}

const classifyPrompt = `Classify the document below into exactly one of these types:
standard_procedure, technical_guide, meeting_notes, policy, faq, troubleshooting, reference, unclassified

Title: %s

%s

Respond with ONLY the type name.`

// classify assigns a document type and reports the token spend. Without
// a completion service, cheap textual heuristics decide; unknown
// completion output is coerced to standard_procedure.
func (p *Pipeline) classify(ctx context.Context, title, content string) (string, int) {
	if p.llm != nil {
		callCtx, cancel := context.WithTimeout(ctx, stageTimeout)
		defer cancel()

		resp, err := p.llm.Complete(callCtx, []driven.ChatMessage{
			{Role: "user", Content: fmt.Sprintf(classifyPrompt, title, excerpt(content, diffExcerptLimit))},
		}, driven.CompleteOptions{MaxTokens: 20, Temperature: 0})
		if err == nil {
			answer := strings.ToLower(strings.TrimSpace(stripCodeFences(resp.Text)))
			answer = strings.Trim(answer, `"'.`)
			if validDocTypes[answer] {
				return answer, resp.TokensUsed
			}
			logger.Debug("enrich: unknown document type %q, coercing", answer)
			return DocTypeStandardProcedure, resp.TokensUsed
		}
		logger.Debug("enrich: classification completion failed: %v", err)
	}
	return classifyHeuristic(title, content), 0
}

// classifyHeuristic is keyword-driven and intentionally conservative.
func classifyHeuristic(title, content string) string {
	text := strings.ToLower(title + "\n" + content)
	switch {
	case strings.Contains(text, "agenda") || strings.Contains(text, "attendees") || strings.Contains(text, "minutes"):
		return DocTypeMeetingNotes
	case strings.Contains(text, "troubleshoot") || strings.Contains(text, "error") && strings.Contains(text, "fix"):
		return DocTypeTroubleshooting
	case strings.Contains(text, "policy") || strings.Contains(text, "must not") || strings.Contains(text, "compliance"):
		return DocTypePolicy
	case strings.Contains(text, "faq") || strings.Count(text, "?") >= 3:
		return DocTypeFAQ
	case strings.Contains(text, "step 1") || strings.Contains(text, "procedure"):
		return DocTypeStandardProcedure
	case strings.Contains(text, "install") || strings.Contains(text, "configure") || strings.Contains(text, "deploy"):
		return DocTypeTechnicalGuide
	case len(markdownutil.Headings(content)) > 0:
		return DocTypeReference
	default:
		return DocTypeUnclassified
	}
}

const structurePrompt = `Rewrite the document below as clean markdown for a %s document.
Keep every fact; do not invent content. Use headings and lists where they help.
Preserve any [REDACTED] tokens exactly as they appear.

Title: %s

%s

Respond with ONLY the restructured markdown.`

// structure rewrites content as clean markdown and reports the token
// spend, counted even when the output is discarded. The fallback keeps
// the content as-is under an ensured top-level heading.
func (p *Pipeline) structure(ctx context.Context, title, content, docType string) (string, int) {
	tokens := 0
	if p.llm != nil {
		callCtx, cancel := context.WithTimeout(ctx, stageTimeout)
		defer cancel()

		resp, err := p.llm.Complete(callCtx, []driven.ChatMessage{
			{Role: "user", Content: fmt.Sprintf(structurePrompt, strings.ReplaceAll(docType, "_", " "), title, content)},
		}, driven.CompleteOptions{MaxTokens: 2000, Temperature: 0.3})
		if err == nil {
			tokens = resp.TokensUsed
			structured := strings.TrimSpace(stripCodeFences(resp.Text))
			// A structuring pass that lost [REDACTED] tokens or most of
			// the content is worse than no pass at all.
			if structured != "" && redactionPreserved(content, structured) && len(structured) >= len(content)/3 {
				return structured, tokens
			}
			logger.Debug("enrich: discarding structuring output (tokens dropped or content lost)")
		} else {
			logger.Debug("enrich: structuring completion failed: %v", err)
		}
	}

	if len(markdownutil.Headings(content)) > 0 || strings.TrimSpace(title) == "" {
		return content, tokens
	}
	return "# " + strings.TrimSpace(title) + "\n\n" + content, tokens
}

// redactionPreserved checks the restructured text kept every mask token.
func redactionPreserved(original, structured string) bool {
	return strings.Count(structured, "[REDACTED]") >= strings.Count(original, "[REDACTED]")
}

var paragraphSplit = regexp.MustCompile(`\n\s*\n`)

// extractSummary produces a deterministic extractive summary: the first
// sentence of a Summary/Overview section, else the first substantial
// paragraph, else a synthesis from the leading headings. Never empty.
func extractSummary(content string) string {
	headings := markdownutil.Headings(content)

	if section := sectionBody(content, "summary"); section == "" {
		if overview := sectionBody(content, "overview"); overview != "" {
			if s := firstSentence(overview); s != "" {
				return s
			}
		}
	} else if s := firstSentence(section); s != "" {
		return s
	}

	for _, para := range paragraphSplit.Split(content, -1) {
		para = strings.TrimSpace(para)
		if para == "" || strings.HasPrefix(para, "#") {
			continue
		}
		if len(tokenize(para)) >= 8 {
			if s := firstSentence(para); s != "" {
				return s
			}
		}
	}

	switch {
	case len(headings) >= 2 && headings[1] != "":
		return fmt.Sprintf("Covers %s and %s.", headings[0], strings.ToLower(headings[1][:1])+headings[1][1:])
	case len(headings) >= 1 && headings[0] != "":
		return fmt.Sprintf("Covers %s.", headings[0])
	default:
		if s := firstSentence(content); s != "" {
			return s
		}
		return "Document content pending review."
	}
}

// sectionBody returns the text between a heading whose title contains
// name (case-insensitive) and the next heading.
func sectionBody(content, name string) string {
	lines := strings.Split(content, "\n")
	var body []string
	inSection := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			if inSection {
				break
			}
			title := strings.ToLower(strings.TrimLeft(trimmed, "# "))
			inSection = strings.Contains(title, name)
			continue
		}
		if inSection {
			body = append(body, line)
		}
	}
	return strings.TrimSpace(strings.Join(body, "\n"))
}

// firstSentence returns the first sentence of text, terminal punctuation
// included.
func firstSentence(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if loc := sentenceEnd.FindStringIndex(text); loc != nil {
		return strings.TrimSpace(text[:loc[0]+1])
	}
	if len(text) > 200 {
		text = text[:200]
	}
	if !strings.HasSuffix(text, ".") {
		text += "."
	}
	return text
}

const topicsPrompt = `List the main topics of the document below.

%s

Respond with ONLY a JSON array of at most %d short topic strings.`

// extractTopics returns up to five topics plus the token spend:
// completion JSON first, then a bullet-list parse of the raw response,
// then keyword frequency.
func (p *Pipeline) extractTopics(ctx context.Context, content string) ([]string, int) {
	tokens := 0
	if p.llm != nil {
		callCtx, cancel := context.WithTimeout(ctx, stageTimeout)
		defer cancel()

		resp, err := p.llm.Complete(callCtx, []driven.ChatMessage{
			{Role: "user", Content: fmt.Sprintf(topicsPrompt, excerpt(content, diffExcerptLimit), maxTopics)},
		}, driven.CompleteOptions{MaxTokens: 150, Temperature: 0.2})
		if err == nil {
			tokens = resp.TokensUsed
			if topics, jerr := extractJSONStringArray(resp.Text); jerr == nil && len(topics) > 0 {
				return capTopics(topics), tokens
			}
			if topics := parseBulletList(resp.Text); len(topics) > 0 {
				return capTopics(topics), tokens
			}
			logger.Debug("enrich: unparseable topics response, using keywords")
		} else {
			logger.Debug("enrich: topics completion failed: %v", err)
		}
	}
	return topKeywords(content, maxTopics), tokens
}

// parseBulletList salvages topics from a "- topic" style response.
func parseBulletList(text string) []string {
	var topics []string
	for _, line := range strings.Split(stripCodeFences(text), "\n") {
		trimmed := strings.TrimSpace(line)
		for _, marker := range []string{"- ", "* ", "• "} {
			if strings.HasPrefix(trimmed, marker) {
				if topic := strings.TrimSpace(trimmed[len(marker):]); topic != "" {
					topics = append(topics, topic)
				}
				break
			}
		}
	}
	return topics
}

func capTopics(topics []string) []string {
	if len(topics) > maxTopics {
		topics = topics[:maxTopics]
	}
	return topics
}

const assessPrompt = `Assess the quality of this %s document for a knowledge base.

%s

Respond with ONLY a JSON object:
{"score": 0.0, "reasoning": "...", "recommendations": ["..."]}
where score is between 0 and 1.`

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// assess asks the completion service for a quality judgement and
// reports the token spend. Any failure returns nil so the scorer falls
// back to heuristics.
func (p *Pipeline) assess(ctx context.Context, content, docType string) (*AIAssessment, int) {
	if p.llm == nil {
		return nil, 0
	}

	callCtx, cancel := context.WithTimeout(ctx, stageTimeout)
	defer cancel()

	resp, err := p.llm.Complete(callCtx, []driven.ChatMessage{
		{Role: "user", Content: fmt.Sprintf(assessPrompt, strings.ReplaceAll(docType, "_", " "), excerpt(content, diffExcerptLimit))},
	}, driven.CompleteOptions{MaxTokens: 400, Temperature: 0.2})
	if err != nil {
		logger.Debug("enrich: assessment completion failed: %v", err)
		return nil, 0
	}

	match := jsonObjectPattern.FindString(stripCodeFences(resp.Text))
	if match == "" {
		return nil, resp.TokensUsed
	}

	var parsed struct {
		Score           float64  `json:"score"`
		Reasoning       string   `json:"reasoning"`
		Recommendations []string `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(match), &parsed); err != nil {
		logger.Debug("enrich: unparseable assessment response: %v", err)
		return nil, resp.TokensUsed
	}

	score := clamp01(parsed.Score)
	return &AIAssessment{
		OverallScore:    &score,
		Reasoning:       parsed.Reasoning,
		Recommendations: parsed.Recommendations,
	}, resp.TokensUsed
}

// sourceMetaFor derives the scorer's per-source signals from the item.
func sourceMetaFor(req EnrichmentRequest) []SourceMeta {
	authors := req.Item.Authors
	if len(authors) == 0 && req.Item.Author != "" {
		authors = []string{req.Item.Author}
	}

	if len(authors) == 0 {
		return []SourceMeta{{
			Provider:   req.Provider,
			ModifiedAt: req.Item.ModifiedAt,
		}}
	}

	meta := make([]SourceMeta, 0, len(authors))
	for _, a := range authors {
		meta = append(meta, SourceMeta{
			Provider:         req.Provider,
			Author:           a,
			ParticipantCount: len(authors),
			ModifiedAt:       req.Item.ModifiedAt,
		})
	}
	return meta
}

func categoryNames(categories []domain.PIICategory) []string {
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = string(c)
	}
	return out
}

// titleFor prefers the item's own title, then the first heading of the
// structured content, then the external ID.
func titleFor(item domain.ChangedItem, structured string) string {
	if t := strings.TrimSpace(item.Title); t != "" {
		return t
	}
	if headings := markdownutil.Headings(structured); len(headings) > 0 {
		return headings[0]
	}
	return item.ExternalID
}
