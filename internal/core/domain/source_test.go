package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDueForCheck(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		source ConnectedSource
		want   bool
	}{
		{
			name:   "inactive source never due",
			source: ConnectedSource{Active: false},
			want:   false,
		},
		{
			name:   "never checked is due",
			source: ConnectedSource{Active: true},
			want:   true,
		},
		{
			name: "checked within frequency not due",
			source: ConnectedSource{
				Active:        true,
				SyncFrequency: 30 * time.Minute,
				LastCheckedAt: now.Add(-10 * time.Minute),
			},
			want: false,
		},
		{
			name: "checked beyond frequency is due",
			source: ConnectedSource{
				Active:        true,
				SyncFrequency: 30 * time.Minute,
				LastCheckedAt: now.Add(-31 * time.Minute),
			},
			want: true,
		},
		{
			name: "zero frequency uses default",
			source: ConnectedSource{
				Active:        true,
				LastCheckedAt: now.Add(-DefaultSyncFrequency),
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.source.DueForCheck(now))
		})
	}
}

func TestInScope(t *testing.T) {
	s := ConnectedSource{ScopeIDs: []string{"chan-1", "chan-2"}}
	assert.True(t, s.InScope("chan-1"))
	assert.False(t, s.InScope("chan-3"))

	open := ConnectedSource{}
	assert.True(t, open.InScope("anything"))
}

func TestLevelForScore(t *testing.T) {
	assert.Equal(t, LevelGreen, LevelForScore(0.80))
	assert.Equal(t, LevelGreen, LevelForScore(1.0))
	assert.Equal(t, LevelYellow, LevelForScore(0.7999))
	assert.Equal(t, LevelYellow, LevelForScore(0.60))
	assert.Equal(t, LevelRed, LevelForScore(0.5999))
	assert.Equal(t, LevelRed, LevelForScore(0))
}
