package domain

import "time"

// ProviderType identifies an external content provider.
type ProviderType string

const (
	// ProviderTeams is a Microsoft-Teams-style message channel provider.
	ProviderTeams ProviderType = "teams"

	// ProviderDrive is a Google-Drive-style shared drive provider.
	ProviderDrive ProviderType = "drive"
)

// DefaultSyncFrequency applies when a source has no explicit frequency.
const DefaultSyncFrequency = 15 * time.Minute

// ConnectedSource is a user's authorised link to one external provider.
// The cursor and last-check timestamp are mutated only by the change
// detection engine; disconnecting deactivates the source rather than
// deleting it.
type ConnectedSource struct {
	// ID is the unique identifier for the source.
	ID string

	// OrgID is the owning organisation.
	OrgID string

	// Provider identifies the external provider.
	Provider ProviderType

	// Name is the human-readable name for this source.
	Name string

	// Owner identifies the user who authorised the connection.
	Owner string

	// ScopeIDs are the selected channel/folder identifiers.
	// An empty scope means everything the credentials can see.
	ScopeIDs []string

	// Config contains provider-specific configuration such as the
	// team or drive identifier and the access credential reference.
	Config map[string]string

	// Cursor is the opaque provider change token. Empty means the next
	// check performs a full scan.
	Cursor string

	// LastCheckedAt is when change detection last ran for this source.
	LastCheckedAt time.Time

	// Active is false once the source has been disconnected.
	Active bool

	// SyncFrequency is the minimum interval between scheduled checks.
	SyncFrequency time.Duration

	// CreatedAt is when the source was created.
	CreatedAt time.Time

	// UpdatedAt is when the source was last updated.
	UpdatedAt time.Time
}

// DueForCheck reports whether the source should be checked now under its
// sync-frequency policy. Inactive sources are never due.
func (s *ConnectedSource) DueForCheck(now time.Time) bool {
	if !s.Active {
		return false
	}
	freq := s.SyncFrequency
	if freq <= 0 {
		freq = DefaultSyncFrequency
	}
	if s.LastCheckedAt.IsZero() {
		return true
	}
	return now.Sub(s.LastCheckedAt) >= freq
}

// InScope reports whether a scope identifier is selected for this source.
// An empty selection admits everything.
func (s *ConnectedSource) InScope(scopeID string) bool {
	if len(s.ScopeIDs) == 0 {
		return true
	}
	for _, id := range s.ScopeIDs {
		if id == scopeID {
			return true
		}
	}
	return false
}
