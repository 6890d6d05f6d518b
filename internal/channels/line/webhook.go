// Package line adapts the LINE Messaging API webhook and reply endpoints to
// the analysis pipeline.
package line

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"time"
)

// WebhookHandler verifies and parses inbound LINE webhook events.
type WebhookHandler struct {
	channelSecret string
	onMessage     func(msg ParsedInbound)
}

// NewWebhookHandler creates a webhook handler. onMessage is called for each
// parsed text message or postback.
func NewWebhookHandler(channelSecret string, onMessage func(ParsedInbound)) *WebhookHandler {
	return &WebhookHandler{
		channelSecret: channelSecret,
		onMessage:     onMessage,
	}
}

// HandleInbound handles POST webhook events from the LINE platform.
func (h *WebhookHandler) HandleInbound(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	signature := r.Header.Get("X-Line-Signature")
	if !VerifySignature(h.channelSecret, body, signature) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req WebhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	// Must respond 200 quickly to avoid platform retries
	w.WriteHeader(http.StatusOK)

	for _, msg := range ParseWebhookRequest(req) {
		if h.onMessage != nil {
			h.onMessage(msg)
		}
	}
}

// ParseWebhookRequest extracts ParsedInbound events from a webhook request.
// Only text messages and postbacks are kept.
func ParseWebhookRequest(req WebhookRequest) []ParsedInbound {
	var out []ParsedInbound

	for _, ev := range req.Events {
		parsed := ParsedInbound{
			UserID:     ev.Source.UserID,
			ReplyToken: ev.ReplyToken,
			Timestamp:  time.UnixMilli(ev.Timestamp),
		}

		switch {
		case ev.Type == "message" && ev.Message != nil && ev.Message.Type == "text":
			parsed.Text = ev.Message.Text
			parsed.MessageID = ev.Message.ID
		case ev.Type == "postback" && ev.Postback != nil:
			parsed.IsPostback = true
			parsed.PostbackPayload = ev.Postback.Data
		default:
			continue
		}

		out = append(out, parsed)
	}

	return out
}

// VerifySignature verifies the X-Line-Signature header, a base64-encoded
// HMAC-SHA256 of the raw request body keyed by the channel secret.
func VerifySignature(channelSecret string, body []byte, signature string) bool {
	if channelSecret == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(channelSecret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
