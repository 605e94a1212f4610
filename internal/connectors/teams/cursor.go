package teams

import (
	"encoding/base64"
	"encoding/json"
	"errors"
)

// CursorVersion is the current cursor format version.
const CursorVersion = 1

// ErrInvalidCursor indicates the cursor could not be decoded.
var ErrInvalidCursor = errors.New("teams: invalid cursor format")

// Cursor tracks per-channel delta state. Each channel carries its own
// delta link because the Graph messages delta is scoped to one channel.
type Cursor struct {
	// Version is the cursor format version for future compatibility.
	Version int `json:"v"`

	// DeltaLinks maps channel ID to the delta URL to resume from.
	DeltaLinks map[string]string `json:"delta_links"`
}

// NewCursor creates a new empty cursor.
func NewCursor() *Cursor {
	return &Cursor{
		Version:    CursorVersion,
		DeltaLinks: make(map[string]string),
	}
}

// Encode serialises the cursor to a base64 string for storage.
func (c *Cursor) Encode() string {
	data, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeCursor deserialises a cursor from a base64 string. An empty
// string decodes to an empty cursor, which requests a full scan of every
// channel.
func DecodeCursor(s string) (*Cursor, error) {
	if s == "" {
		return NewCursor(), nil
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	var cursor Cursor
	if err := json.Unmarshal(data, &cursor); err != nil {
		return nil, ErrInvalidCursor
	}

	if cursor.Version > CursorVersion {
		return nil, ErrInvalidCursor
	}
	if cursor.DeltaLinks == nil {
		cursor.DeltaLinks = make(map[string]string)
	}

	return &cursor, nil
}

// IsEmpty returns true if no channel has delta state yet.
func (c *Cursor) IsEmpty() bool {
	return len(c.DeltaLinks) == 0
}
