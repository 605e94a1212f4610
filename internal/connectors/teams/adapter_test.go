package teams

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/triago-cli/internal/core/domain"
)

func newTestAdapter(t *testing.T, handler http.Handler) *Adapter {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	adapter, err := New(domain.ConnectedSource{
		ID:       "src-1",
		Provider: domain.ProviderTeams,
		Config: map[string]string{
			ConfigTeamID:     "team-1",
			"graph_base_url": server.URL,
			"access_token":   "test-token",
		},
	}, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"}))
	require.NoError(t, err)
	return adapter
}

func TestListChangesFullScanThenDelta(t *testing.T) {
	deltaCalls := 0
	mux := http.NewServeMux()
	var serverURL string

	mux.HandleFunc("/teams/team-1/channels", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(channelList{Value: []channel{
			{ID: "chan-1", DisplayName: "General"},
		}})
	})
	mux.HandleFunc("/teams/team-1/channels/chan-1/messages/delta", func(w http.ResponseWriter, r *http.Request) {
		deltaCalls++
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		page := messageDeltaPage{
			DeltaLink: serverURL + "/delta/chan-1/next",
			Value: []message{{
				ID:              "msg-1",
				Body:            messageBody{ContentType: "html", Content: "<p>The deploy finished without incident.</p>"},
				From:            &messageFrom{User: &messageUser{DisplayName: "dana"}},
				CreatedDateTime: "2026-08-29T10:00:00Z",
				MessageType:     "message",
			}},
		}
		_ = json.NewEncoder(w).Encode(page)
	})
	mux.HandleFunc("/delta/chan-1/next", func(w http.ResponseWriter, _ *http.Request) {
		deltaCalls++
		_ = json.NewEncoder(w).Encode(messageDeltaPage{DeltaLink: serverURL + "/delta/chan-1/next"})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	serverURL = server.URL

	adapter, err := New(domain.ConnectedSource{
		ID:       "src-1",
		Provider: domain.ProviderTeams,
		Config:   map[string]string{ConfigTeamID: "team-1", "graph_base_url": server.URL},
	}, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"}))
	require.NoError(t, err)

	items, cursor, err := adapter.ListChanges(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "chan-1/msg-1", items[0].ExternalID)
	assert.Equal(t, "The deploy finished without incident.", items[0].Content)
	assert.Equal(t, "dana", items[0].Author)
	assert.Equal(t, "chan-1", items[0].ParentID)

	decoded, err := DecodeCursor(cursor)
	require.NoError(t, err)
	assert.Equal(t, serverURL+"/delta/chan-1/next", decoded.DeltaLinks["chan-1"])

	// Second pass follows the stored delta link and finds nothing new.
	items, _, err = adapter.ListChanges(context.Background(), cursor)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, 2, deltaCalls)
}

func TestListChangesSurfacesAuthFailure(t *testing.T) {
	adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "token expired", http.StatusUnauthorized)
	}))

	_, _, err := adapter.ListChanges(context.Background(), "")
	require.ErrorIs(t, err, domain.ErrAuthExpired)
}

func TestToItemSkipsSystemEvents(t *testing.T) {
	_, ok := toItem(channel{ID: "c"}, message{ID: "m", MessageType: "systemEventMessage"})
	assert.False(t, ok)
}

func TestToItemMarksDeletedMessages(t *testing.T) {
	item, ok := toItem(channel{ID: "c", DisplayName: "General"}, message{
		ID:              "m",
		MessageType:     "message",
		DeletedDateTime: "2026-08-29T10:00:00Z",
	})
	require.True(t, ok)
	assert.True(t, item.Removed)
	assert.Equal(t, "General", item.Title)
}

func TestSplitExternalID(t *testing.T) {
	channelID, messageID, err := splitExternalID("chan-1/msg-9")
	require.NoError(t, err)
	assert.Equal(t, "chan-1", channelID)
	assert.Equal(t, "msg-9", messageID)

	_, _, err = splitExternalID("missing-separator")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCursorRoundTrip(t *testing.T) {
	cursor := NewCursor()
	cursor.DeltaLinks["chan-1"] = "https://example.com/delta"

	decoded, err := DecodeCursor(cursor.Encode())
	require.NoError(t, err)
	assert.Equal(t, cursor.DeltaLinks, decoded.DeltaLinks)
	assert.False(t, decoded.IsEmpty())

	empty, err := DecodeCursor("")
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	_, err = DecodeCursor("!!!")
	assert.ErrorIs(t, err, ErrInvalidCursor)
}
