package line

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
)

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	secret := "test_channel_secret"
	body := []byte(`{"destination":"U0","events":[]}`)
	validSig := signBody(secret, body)

	tests := []struct {
		name      string
		secret    string
		body      []byte
		signature string
		want      bool
	}{
		{"valid signature", secret, body, validSig, true},
		{"wrong signature", secret, body, signBody("other_secret", body), false},
		{"empty signature", secret, body, "", false},
		{"empty secret", "", body, validSig, false},
		{"not base64", secret, body, "!!not-base64!!", false},
		{"tampered body", secret, []byte(`tampered`), validSig, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VerifySignature(tt.secret, tt.body, tt.signature)
			if got != tt.want {
				t.Errorf("VerifySignature() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHandleInbound(t *testing.T) {
	secret := "test_channel_secret"
	body := []byte(`{
		"destination": "Ubot",
		"events": [
			{
				"type": "message",
				"replyToken": "rt-1",
				"timestamp": 1700000000000,
				"source": {"type": "user", "userId": "U123"},
				"message": {"id": "m-1", "type": "text", "text": "媽媽常常忘記關瓦斯"}
			}
		]
	}`)

	t.Run("valid signature dispatches message", func(t *testing.T) {
		var got []ParsedInbound
		h := NewWebhookHandler(secret, func(msg ParsedInbound) { got = append(got, msg) })

		req := httptest.NewRequest(http.MethodPost, "/webhook/line", bytes.NewReader(body))
		req.Header.Set("X-Line-Signature", signBody(secret, body))
		w := httptest.NewRecorder()
		h.HandleInbound(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if len(got) != 1 {
			t.Fatalf("expected 1 parsed message, got %d", len(got))
		}
		if got[0].UserID != "U123" || got[0].Text != "媽媽常常忘記關瓦斯" || got[0].ReplyToken != "rt-1" {
			t.Errorf("unexpected parsed message: %+v", got[0])
		}
	})

	t.Run("invalid signature is rejected", func(t *testing.T) {
		called := false
		h := NewWebhookHandler(secret, func(ParsedInbound) { called = true })

		req := httptest.NewRequest(http.MethodPost, "/webhook/line", bytes.NewReader(body))
		req.Header.Set("X-Line-Signature", signBody("wrong", body))
		w := httptest.NewRecorder()
		h.HandleInbound(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
		if called {
			t.Error("handler must not dispatch on bad signature")
		}
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		bad := []byte(`{broken`)
		h := NewWebhookHandler(secret, nil)

		req := httptest.NewRequest(http.MethodPost, "/webhook/line", bytes.NewReader(bad))
		req.Header.Set("X-Line-Signature", signBody(secret, bad))
		w := httptest.NewRecorder()
		h.HandleInbound(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}

func TestParseWebhookRequest(t *testing.T) {
	req := WebhookRequest{
		Destination: "Ubot",
		Events: []Event{
			{
				Type:       "message",
				ReplyToken: "rt-1",
				Timestamp:  1700000000000,
				Source:     Source{Type: "user", UserID: "U1"},
				Message:    &Message{ID: "m-1", Type: "text", Text: "hello"},
			},
			{
				Type:       "postback",
				ReplyToken: "rt-2",
				Timestamp:  1700000001000,
				Source:     Source{Type: "user", UserID: "U1"},
				Postback:   &Postback{Data: "view=detail:M3"},
			},
			{
				// Sticker messages carry no text and are skipped.
				Type:       "message",
				ReplyToken: "rt-3",
				Source:     Source{Type: "user", UserID: "U2"},
				Message:    &Message{ID: "m-2", Type: "sticker"},
			},
			{
				Type:   "follow",
				Source: Source{Type: "user", UserID: "U3"},
			},
		},
	}

	msgs := ParseWebhookRequest(req)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 parsed events, got %d", len(msgs))
	}
	if msgs[0].IsPostback || msgs[0].Text != "hello" || msgs[0].MessageID != "m-1" {
		t.Errorf("unexpected first event: %+v", msgs[0])
	}
	if !msgs[1].IsPostback || msgs[1].PostbackPayload != "view=detail:M3" {
		t.Errorf("unexpected second event: %+v", msgs[1])
	}
	if msgs[0].Timestamp.UnixMilli() != 1700000000000 {
		t.Errorf("timestamp not preserved: %v", msgs[0].Timestamp)
	}
}
