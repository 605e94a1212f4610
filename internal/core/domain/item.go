package domain

import "time"

// ItemKind discriminates the provider-specific shape of a changed item.
type ItemKind string

const (
	// ItemTeamsMessage is a message posted to a team channel.
	ItemTeamsMessage ItemKind = "teams_message"

	// ItemDriveFile is a file in a shared drive.
	ItemDriveFile ItemKind = "drive_file"
)

// ChangedItem is a normalised unit of content from any provider.
// Source adapters produce it at the boundary; it is consumed by the
// pipeline and never persisted as-is.
type ChangedItem struct {
	// Kind is the provider-specific discriminant.
	Kind ItemKind

	// ExternalID is the provider's identifier for the item.
	ExternalID string

	// Title is the human-readable title or subject.
	Title string

	// Content is the raw content. Adapters may leave it empty and
	// supply it lazily via FetchContent.
	Content string

	// Author is the display name of the item's author.
	Author string

	// Authors lists distinct contributors when the provider exposes
	// them (thread participants, file editors).
	Authors []string

	// ParentID is the containing channel or folder, used for scope
	// filtering.
	ParentID string

	// CreatedAt is when the item was created at the provider.
	CreatedAt time.Time

	// ModifiedAt is when the item was last modified at the provider.
	ModifiedAt time.Time

	// URL is the provider's canonical link to the item.
	URL string

	// Removed marks items deleted or trashed at the provider.
	Removed bool

	// Container marks folder/team objects that carry no content.
	Container bool
}
