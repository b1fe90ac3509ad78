// Package line implements the small slice of the LINE Messaging API the
// bot needs: webhook payload types, signature verification, and a reply
// client.
package line

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// WebhookRequest is the body LINE posts to the webhook endpoint. One
// request may carry multiple events.
type WebhookRequest struct {
	Destination string  `json:"destination"`
	Events      []Event `json:"events"`
}

// Event is a single webhook event. Only message events with text
// content are processed; everything else is skipped.
type Event struct {
	Type       string  `json:"type"`
	ReplyToken string  `json:"replyToken"`
	Source     Source  `json:"source"`
	Message    Message `json:"message"`
	Timestamp  int64   `json:"timestamp"`
}

type Source struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

type Message struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Text string `json:"text"`
}

// IsTextMessage reports whether the event carries user text to process.
func (e Event) IsTextMessage() bool {
	return e.Type == "message" && e.Message.Type == "text"
}

// ValidateSignature checks the X-Line-Signature header against the raw
// request body using the channel secret.
func ValidateSignature(secret string, body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
