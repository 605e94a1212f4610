package ttl

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/triago-cli/internal/core/domain"
)

func result(masked string) *domain.RedactionResult {
	return &domain.RedactionResult{RedactedText: masked}
}

func TestGetReturnsFreshEntry(t *testing.T) {
	c := New(0, 0)
	c.Set("digest-1", result("masked"))

	got, ok := c.Get("digest-1")
	require.True(t, ok)
	assert.Equal(t, "masked", got.RedactedText)

	_, ok = c.Get("digest-2")
	assert.False(t, ok)
}

func TestExpiredEntryIsDropped(t *testing.T) {
	c := New(time.Minute, 10)
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	c.Set("digest-1", result("masked"))

	clock = clock.Add(59 * time.Second)
	_, ok := c.Get("digest-1")
	assert.True(t, ok)

	clock = clock.Add(2 * time.Second)
	_, ok = c.Get("digest-1")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCapacityEvictsOldest(t *testing.T) {
	c := New(time.Minute, 3)
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("digest-%d", i), result("masked"))
		clock = clock.Add(time.Second)
	}
	c.Set("digest-3", result("masked"))

	assert.Equal(t, 3, c.Len())
	_, ok := c.Get("digest-0")
	assert.False(t, ok, "entry closest to expiry should be evicted")
	_, ok = c.Get("digest-3")
	assert.True(t, ok)
}

func TestSetOverwritesWithoutEviction(t *testing.T) {
	c := New(time.Minute, 2)
	c.Set("digest-1", result("one"))
	c.Set("digest-2", result("two"))
	c.Set("digest-1", result("updated"))

	assert.Equal(t, 2, c.Len())
	got, ok := c.Get("digest-1")
	require.True(t, ok)
	assert.Equal(t, "updated", got.RedactedText)
}

func TestReset(t *testing.T) {
	c := New(0, 0)
	c.Set("digest-1", result("masked"))
	c.Reset()

	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("digest-1")
	assert.False(t, ok)
}
