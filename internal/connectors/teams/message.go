package teams

import (
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/triago-cli/internal/core/domain"
	"github.com/custodia-labs/triago-cli/internal/htmlutil"
)

// Graph wire shapes, limited to the fields the adapter reads.

type channelList struct {
	Value []channel `json:"value"`
}

type channel struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	WebURL      string `json:"webUrl"`
}

type messageDeltaPage struct {
	Value     []message `json:"value"`
	NextLink  string    `json:"@odata.nextLink"`
	DeltaLink string    `json:"@odata.deltaLink"`
}

type message struct {
	ID              string       `json:"id"`
	Subject         string       `json:"subject"`
	Body            messageBody  `json:"body"`
	From            *messageFrom `json:"from"`
	WebURL          string       `json:"webUrl"`
	CreatedDateTime string       `json:"createdDateTime"`
	ModifiedAt      string       `json:"lastModifiedDateTime"`
	DeletedDateTime string       `json:"deletedDateTime"`
	MessageType     string       `json:"messageType"`
}

type messageBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type messageFrom struct {
	User *messageUser `json:"user"`
}

type messageUser struct {
	DisplayName string `json:"displayName"`
}

// externalID joins channel and message IDs so one opaque identifier
// addresses a message across the whole system.
func externalID(channelID, messageID string) string {
	return channelID + "/" + messageID
}

// splitExternalID is the inverse of externalID.
func splitExternalID(id string) (channelID, messageID string, err error) {
	channelID, messageID, ok := strings.Cut(id, "/")
	if !ok || channelID == "" || messageID == "" {
		return "", "", fmt.Errorf("malformed message id %q: %w", id, domain.ErrInvalidInput)
	}
	return channelID, messageID, nil
}

// toItem converts a Graph message to a changed item. System event
// messages carry no user content and are dropped.
func toItem(ch channel, msg message) (domain.ChangedItem, bool) {
	if msg.MessageType != "" && msg.MessageType != "message" {
		return domain.ChangedItem{}, false
	}

	content := msg.Body.Content
	if strings.EqualFold(msg.Body.ContentType, "html") {
		content = htmlutil.StripTags(content)
	}

	title := strings.TrimSpace(msg.Subject)
	if title == "" {
		title = ch.DisplayName
	}

	item := domain.ChangedItem{
		Kind:       domain.ItemTeamsMessage,
		ExternalID: externalID(ch.ID, msg.ID),
		Title:      title,
		Content:    content,
		ParentID:   ch.ID,
		URL:        msg.WebURL,
		Removed:    msg.DeletedDateTime != "",
		CreatedAt:  parseGraphTime(msg.CreatedDateTime),
		ModifiedAt: parseGraphTime(msg.ModifiedAt),
	}
	if item.ModifiedAt.IsZero() {
		item.ModifiedAt = item.CreatedAt
	}
	if msg.From != nil && msg.From.User != nil && msg.From.User.DisplayName != "" {
		item.Author = msg.From.User.DisplayName
		item.Authors = []string{item.Author}
	}
	return item, true
}

func parseGraphTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
