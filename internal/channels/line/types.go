package line

import "time"

// WebhookRequest is the top-level structure received from the LINE platform.
type WebhookRequest struct {
	Destination string  `json:"destination"`
	Events      []Event `json:"events"`
}

// Event represents a single webhook event.
type Event struct {
	Type       string    `json:"type"`
	ReplyToken string    `json:"replyToken"`
	Timestamp  int64     `json:"timestamp"`
	Source     Source    `json:"source"`
	Message    *Message  `json:"message,omitempty"`
	Postback   *Postback `json:"postback,omitempty"`
}

// Source identifies who triggered the event.
type Source struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

// Message contains the message content.
type Message struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text"`
}

// Postback represents a button tap on a flex card.
type Postback struct {
	Data string `json:"data"`
}

// ParsedInbound is a channel-neutral view of one inbound event.
type ParsedInbound struct {
	UserID          string
	ReplyToken      string
	Timestamp       time.Time
	Text            string
	MessageID       string
	IsPostback      bool
	PostbackPayload string
}

// ReplyRequest is the payload sent to the Messaging API reply endpoint.
type ReplyRequest struct {
	ReplyToken string         `json:"replyToken"`
	Messages   []ReplyMessage `json:"messages"`
}

// ReplyMessage is one outbound message. Contents carries the flex bubble
// when Type is "flex".
type ReplyMessage struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	AltText  string `json:"altText,omitempty"`
	Contents any    `json:"contents,omitempty"`
}
