package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/careline-ai/careline/internal/flexcard"
)

const (
	defaultAPIBase     = "https://api.line.me/v2/bot"
	defaultHTTPTimeout = 10 * time.Second
)

// Client sends replies via the LINE Messaging API.
type Client struct {
	channelToken string
	apiBase      string
	httpClient   *http.Client
}

// NewClient creates a Messaging API client.
func NewClient(channelToken string) *Client {
	return &Client{
		channelToken: channelToken,
		apiBase:      defaultAPIBase,
		httpClient:   &http.Client{Timeout: defaultHTTPTimeout},
	}
}

// SetAPIBase overrides the Messaging API base URL (useful for testing).
func (c *Client) SetAPIBase(base string) {
	c.apiBase = base
}

// ReplyText sends a plain text reply.
func (c *Client) ReplyText(ctx context.Context, replyToken, text string) error {
	return c.reply(ctx, ReplyRequest{
		ReplyToken: replyToken,
		Messages:   []ReplyMessage{{Type: "text", Text: text}},
	})
}

// ReplyFlex sends a flex card reply.
func (c *Client) ReplyFlex(ctx context.Context, replyToken string, card flexcard.Card) error {
	return c.reply(ctx, ReplyRequest{
		ReplyToken: replyToken,
		Messages: []ReplyMessage{{
			Type:     "flex",
			AltText:  card.AltText,
			Contents: card.Contents,
		}},
	})
}

func (c *Client) reply(ctx context.Context, req ReplyRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("line: marshal reply request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/message/reply", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("line: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.channelToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("line: send reply: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("line: reply rejected with status %d: %s", resp.StatusCode, respBody)
	}
	return nil
}
