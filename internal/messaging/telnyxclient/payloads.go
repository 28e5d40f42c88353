package telnyxclient

import (
	"errors"
	"strings"
	"time"
)

// SendMessageRequest is one outbound SMS. From may be empty when the
// messaging profile supplies a number pool.
type SendMessageRequest struct {
	From               string
	To                 string
	Text               string
	MessagingProfileID string
}

func (r SendMessageRequest) validate() error {
	switch {
	case strings.TrimSpace(r.To) == "":
		return errors.New("telnyxclient: to number required")
	case strings.TrimSpace(r.From) == "" && strings.TrimSpace(r.MessagingProfileID) == "":
		return errors.New("telnyxclient: from number or messaging profile required")
	case strings.TrimSpace(r.Text) == "":
		return errors.New("telnyxclient: message text required")
	}
	return nil
}

// payload renders the request in the wire shape the Messages API expects.
func (r SendMessageRequest) payload() sendMessagePayload {
	return sendMessagePayload{
		From:               r.From,
		To:                 r.To,
		Text:               r.Text,
		MessagingProfileID: r.MessagingProfileID,
	}
}

type sendMessagePayload struct {
	From               string `json:"from,omitempty"`
	To                 string `json:"to"`
	Text               string `json:"text"`
	MessagingProfileID string `json:"messaging_profile_id,omitempty"`
}

// Message is the Telnyx message resource as returned by a send.
type Message struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Text      string    `json:"text"`
	Parts     int       `json:"parts"`
	CreatedAt time.Time `json:"created_at"`
}
