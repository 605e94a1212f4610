package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/triago-cli/internal/core/domain"
)

func newOfflinePipeline() *Pipeline {
	p := NewPipeline(nil, NewRedactor(nil, nil), NewScorer())
	p.batchCooldown = 0
	return p
}

func TestProcessRejectsShortContent(t *testing.T) {
	p := newOfflinePipeline()

	_, err := p.Process(context.Background(), EnrichmentRequest{
		OrgID:      "org",
		Item:       domain.ChangedItem{ExternalID: "msg-1"},
		RawContent: "   ok   ",
	})
	require.ErrorIs(t, err, domain.ErrContentTooShort)
}

func TestProcessProducesPendingDraft(t *testing.T) {
	p := newOfflinePipeline()

	raw := "# Incident Runbook\n\n" +
		"When the ingestion queue backs up, page the on-call engineer and check the broker first. " +
		"Escalate to platform if the backlog exceeds an hour.\n\n" +
		"Contact oncall@example.com for access.\n"

	draft, err := p.Process(context.Background(), EnrichmentRequest{
		OrgID:      "org",
		SourceID:   "src-1",
		Provider:   domain.ProviderDrive,
		Item:       domain.ChangedItem{ExternalID: "file-1", Title: "Incident Runbook", URL: "https://example.com/doc", Author: "dana", ModifiedAt: time.Now()},
		RawContent: raw,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.DraftPending, draft.Status)
	assert.Equal(t, "Incident Runbook", draft.Title)
	assert.Equal(t, ContentDigest(raw), draft.ContentDigest)
	assert.NotEmpty(t, draft.Summary)
	assert.NotEmpty(t, draft.Topics)
	assert.LessOrEqual(t, len(draft.Topics), 5)
	assert.NotEmpty(t, draft.Confidence.Reasoning)
	assert.False(t, draft.IsUpdate)

	// The email address never survives into the draft.
	assert.NotContains(t, draft.Content, "oncall@example.com")
	assert.GreaterOrEqual(t, draft.PIIEntityCount, 1)
	assert.Contains(t, draft.PIICategories, string(domain.PIIEmail))

	// A fully offline run spends no tokens.
	assert.Zero(t, draft.TokensUsed)
	assert.GreaterOrEqual(t, draft.ProcessingTimeMs, int64(0))
}

func TestProcessRecordsTokenSpendAndDuration(t *testing.T) {
	raw := "# Incident Runbook\n\nWhen the queue backs up, page the on-call engineer and check the broker first."

	p := newOfflinePipeline()
	p.llm = &fakeLLM{responses: []string{
		"meeting_notes",
		raw,
		`["queues", "paging"]`,
		`{"score": 0.8, "reasoning": "Clear and complete runbook content.", "recommendations": []}`,
	}}

	base := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	ticks := []time.Time{base, base.Add(1500 * time.Millisecond)}
	p.now = func() time.Time {
		next := ticks[0]
		if len(ticks) > 1 {
			ticks = ticks[1:]
		}
		return next
	}

	draft, err := p.Process(context.Background(), EnrichmentRequest{
		OrgID:      "org",
		SourceID:   "src-1",
		Item:       domain.ChangedItem{ExternalID: "file-1", Title: "Incident Runbook"},
		RawContent: raw,
		DiffTokens: 30,
	})
	require.NoError(t, err)

	// Four completion calls at 42 tokens each, plus the diff spend.
	assert.Equal(t, 30+4*42, draft.TokensUsed)
	assert.Equal(t, int64(1500), draft.ProcessingTimeMs)
}

func TestProcessManySettlesEveryItem(t *testing.T) {
	p := newOfflinePipeline()

	reqs := make([]EnrichmentRequest, 25)
	for i := range reqs {
		content := fmt.Sprintf("# Document %d\n\nA perfectly reasonable body of text describing procedure number %d in detail.", i, i)
		if i == 5 || i == 17 {
			content = "hi"
		}
		reqs[i] = EnrichmentRequest{
			OrgID:      "org",
			Item:       domain.ChangedItem{ExternalID: fmt.Sprintf("item-%d", i)},
			RawContent: content,
		}
	}

	outcomes := p.ProcessMany(context.Background(), reqs)
	require.Len(t, outcomes, 25)

	failed := 0
	for i, outcome := range outcomes {
		assert.Equal(t, i, outcome.Index)
		if outcome.Err != nil {
			failed++
			assert.True(t, errors.Is(outcome.Err, domain.ErrContentTooShort))
			continue
		}
		require.NotNil(t, outcome.Draft)
	}
	assert.Equal(t, 2, failed)
}

func TestClassifyHeuristic(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		content string
		want    string
	}{
		{"meeting notes", "Weekly sync", "Attendees: dana, sam\nAgenda:\n- roadmap", DocTypeMeetingNotes},
		{"policy", "Data retention policy", "Records must not be kept beyond two years.", DocTypePolicy},
		{"faq", "Access FAQ", "How do I log in? Where is the portal? Who approves requests?", DocTypeFAQ},
		{"procedure", "Rotation", "Step 1: generate the key. Step 2: deploy it.", DocTypeStandardProcedure},
		{"guide", "Setup", "Install the agent and configure the endpoint before you deploy.", DocTypeTechnicalGuide},
		{"unclassified", "", "plain prose without any of the marker words at all", DocTypeUnclassified},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyHeuristic(tt.title, tt.content))
		})
	}
}

func TestClassifyCoercesUnknownCompletionOutput(t *testing.T) {
	p := newOfflinePipeline()
	p.llm = &fakeLLM{responses: []string{"how_to_document"}}

	got, tokens := p.classify(context.Background(), "Title", "content body")
	assert.Equal(t, DocTypeStandardProcedure, got)
	assert.Equal(t, 42, tokens)
}

func TestExtractSummaryPrefersSummarySection(t *testing.T) {
	content := "# Runbook\n\n## Summary\n\nThis runbook covers queue recovery. It has more sentences.\n\n## Steps\n\n- one"
	assert.Equal(t, "This runbook covers queue recovery.", extractSummary(content))
}

func TestExtractSummaryFallsBackToFirstParagraph(t *testing.T) {
	content := "# Title\n\nThe deployment pipeline promotes builds through staging before production rollout begins. More detail follows."
	assert.Equal(t,
		"The deployment pipeline promotes builds through staging before production rollout begins.",
		extractSummary(content))
}

func TestExtractSummaryNeverEmpty(t *testing.T) {
	assert.NotEmpty(t, extractSummary(""))
	assert.NotEmpty(t, extractSummary("# Only A Heading"))
	assert.NotEmpty(t, extractSummary("short fragment"))
}

func TestExtractTopicsBulletFallback(t *testing.T) {
	p := newOfflinePipeline()
	p.llm = &fakeLLM{responses: []string{"The main topics are:\n- deployment\n- rollback safety\n- monitoring"}}

	topics, _ := p.extractTopics(context.Background(), "content")
	assert.Equal(t, []string{"deployment", "rollback safety", "monitoring"}, topics)
}

func TestExtractTopicsKeywordFallback(t *testing.T) {
	p := newOfflinePipeline()

	topics, tokens := p.extractTopics(context.Background(),
		"deployment deployment deployment rollback rollback monitoring")
	require.NotEmpty(t, topics)
	assert.Equal(t, "deployment", topics[0])
	assert.Zero(t, tokens)
}
