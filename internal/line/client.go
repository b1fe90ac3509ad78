package line

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/avast/retry-go"
)

const defaultEndpoint = "https://api.line.me/v2/bot/message/reply"

// Client sends reply messages through the LINE Messaging API.
type Client struct {
	httpClient *http.Client
	token      string
	endpoint   string
}

// NewClient builds a reply client for the given channel access token.
func NewClient(token string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		token:      token,
		endpoint:   defaultEndpoint,
	}
}

type replyRequest struct {
	ReplyToken string        `json:"replyToken"`
	Messages   []textMessage `json:"messages"`
}

type textMessage struct {
	Type       string      `json:"type"`
	Text       string      `json:"text"`
	QuickReply *quickReply `json:"quickReply,omitempty"`
}

type quickReply struct {
	Items []quickReplyItem `json:"items"`
}

type quickReplyItem struct {
	Type   string        `json:"type"`
	Action messageAction `json:"action"`
}

type messageAction struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Reply sends one text message for the given reply token. Rate limits
// and server errors are retried a few times; reply tokens expire, so
// client errors are not.
func (c *Client) Reply(ctx context.Context, replyToken, text string, quickActions []string) error {
	msg := textMessage{Type: "text", Text: text}
	if len(quickActions) > 0 {
		qr := &quickReply{}
		for _, a := range quickActions {
			qr.Items = append(qr.Items, quickReplyItem{
				Type:   "action",
				Action: messageAction{Type: "message", Label: a, Text: a},
			})
		}
		msg.QuickReply = qr
	}

	body, err := json.Marshal(replyRequest{ReplyToken: replyToken, Messages: []textMessage{msg}})
	if err != nil {
		return fmt.Errorf("marshal reply: %w", err)
	}

	err = retry.Do(
		func() error {
			return c.send(ctx, body)
		},
		retry.RetryIf(func(err error) bool {
			var apiErr *apiError
			if errors.As(err, &apiErr) {
				return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
			}
			// Network errors are worth another attempt.
			return true
		}),
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("send reply: %w", err)
	}

	slog.InfoContext(ctx, "Sent reply", "chars", len(text))
	return nil
}

func (c *Client) send(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &apiError{StatusCode: resp.StatusCode, Body: string(detail)}
	}
	return nil
}

type apiError struct {
	StatusCode int
	Body       string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("LINE API status %d: %s", e.StatusCode, e.Body)
}
