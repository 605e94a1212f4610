package drive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	cursor := &Cursor{Version: CursorVersion, PageToken: "token-123"}

	decoded, err := DecodeCursor(cursor.Encode())
	require.NoError(t, err)
	assert.Equal(t, cursor.PageToken, decoded.PageToken)
	assert.False(t, decoded.IsEmpty())
}

func TestDecodeCursorEmptyString(t *testing.T) {
	decoded, err := DecodeCursor("")
	require.NoError(t, err)
	assert.True(t, decoded.IsEmpty())
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	_, err := DecodeCursor("not base64 at all!!!")
	assert.ErrorIs(t, err, ErrInvalidCursor)

	// Valid base64 but not JSON.
	_, err = DecodeCursor("bm90IGpzb24=")
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestDecodeCursorRejectsFutureVersion(t *testing.T) {
	future := &Cursor{Version: CursorVersion + 1, PageToken: "t"}
	_, err := DecodeCursor(future.Encode())
	assert.ErrorIs(t, err, ErrInvalidCursor)
}
