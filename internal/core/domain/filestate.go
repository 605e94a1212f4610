package domain

import "time"

// FileState records the last-seen content digest for an external item
// within an organisation. An unchanged digest suppresses reprocessing.
type FileState struct {
	// OrgID is the owning organisation.
	OrgID string

	// ExternalID is the provider's identifier for the item.
	ExternalID string

	// Digest is the content fingerprint from the last successful
	// ingestion.
	Digest string

	// ModifiedAt is the provider modification time seen at ingestion.
	ModifiedAt time.Time

	// LastSyncedAt is when this item was last seen by a sync run,
	// whether or not it was reprocessed.
	LastSyncedAt time.Time
}
