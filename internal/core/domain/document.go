package domain

import "time"

// DraftStatus is the review state of a draft document.
type DraftStatus string

const (
	// DraftPending awaits human review.
	DraftPending DraftStatus = "pending"

	// DraftApproved has been accepted by a reviewer.
	DraftApproved DraftStatus = "approved"

	// DraftRejected has been declined by a reviewer.
	DraftRejected DraftStatus = "rejected"

	// DraftSuperseded was replaced by a newer revision of the same
	// external item before review.
	DraftSuperseded DraftStatus = "superseded"
)

// DraftDocument is the enrichment pipeline's output awaiting human
// review. Re-ingestion of the same external item supersedes the previous
// pending draft rather than deleting it.
type DraftDocument struct {
	// ID is the unique identifier for the draft.
	ID string

	// OrgID is the owning organisation.
	OrgID string

	// SourceID links to the ConnectedSource that produced the item.
	SourceID string

	// ExternalID is the provider's identifier for the source item.
	ExternalID string

	// Title is the document title.
	Title string

	// Content is the structured, redacted markdown.
	Content string

	// DocType is the classified document type, one of the fixed
	// taxonomy values ("standard_procedure", "meeting_notes", ...).
	DocType string

	// Summary is a one-sentence extractive summary.
	Summary string

	// Topics are up to five extracted topic strings.
	Topics []string

	// Confidence is the machine-computed triage score.
	Confidence ConfidenceResult

	// PIIEntityCount is how many sensitive spans were masked.
	PIIEntityCount int

	// PIICategories lists the distinct categories that were masked.
	PIICategories []string

	// SourceURL links back to the original item.
	SourceURL string

	// ContentDigest fingerprints the raw content this draft was built
	// from. Together with OrgID and ExternalID it dedups re-ingestion.
	ContentDigest string

	// IsUpdate is true when a prior revision of this item exists.
	IsUpdate bool

	// SupersedesID links to the prior revision, if any.
	SupersedesID string

	// ChangeSummary describes what changed since the prior revision.
	ChangeSummary []string

	// TokensUsed is the total completion token spend for this draft,
	// diff summarisation included. Zero when every stage ran offline.
	TokensUsed int

	// ProcessingTimeMs is the wall-clock enrichment duration in
	// milliseconds.
	ProcessingTimeMs int64

	// Status is the review state.
	Status DraftStatus

	// CreatedAt is when the draft was created.
	CreatedAt time.Time

	// UpdatedAt is when the draft was last updated.
	UpdatedAt time.Time
}
