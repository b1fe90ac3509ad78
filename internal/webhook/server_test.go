package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"donnote/internal/bot"
	"donnote/internal/core"
	"donnote/internal/ledger"
	"donnote/internal/ledger/memory"
)

type sentReply struct {
	token string
	text  string
}

type chanReplier struct {
	replies chan sentReply
}

func (r *chanReplier) Reply(_ context.Context, token, text string, _ []string) error {
	r.replies <- sentReply{token: token, text: text}
	return nil
}

func newTestServer(secret string) (*Server, ledger.Store, *chanReplier) {
	store := ledger.Guard(memory.New())
	h := bot.NewHandler(store, core.DefaultTaxonomy(), time.UTC, nil)
	replier := &chanReplier{replies: make(chan sentReply, 16)}
	return NewServer(":0", secret, h, replier, 8), store, replier
}

func eventBody(events ...string) []byte {
	return []byte(`{"destination":"dest","events":[` + strings.Join(events, ",") + `]}`)
}

func textEvent(userID, replyToken, text string) string {
	return fmt.Sprintf(
		`{"type":"message","replyToken":%q,"source":{"type":"user","userId":%q},"message":{"type":"text","id":"m1","text":%q}}`,
		replyToken, userID, text)
}

func postWebhook(t *testing.T, s *Server, body []byte, sign func([]byte) string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	if sign != nil {
		req.Header.Set("X-Line-Signature", sign(body))
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func waitReply(t *testing.T, r *chanReplier) sentReply {
	t.Helper()
	select {
	case got := <-r.replies:
		return got
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reply")
		return sentReply{}
	}
}

func TestWebhookAcksAndProcesses(t *testing.T) {
	s, store, replier := newTestServer("")

	rec := postWebhook(t, s, eventBody(textEvent("u1", "rt-1", "ข้าว 50")), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	got := waitReply(t, replier)
	if got.token != "rt-1" {
		t.Errorf("reply token = %q, want rt-1", got.token)
	}
	if !strings.Contains(got.text, "บันทึกแล้ว") {
		t.Errorf("reply = %q, want recorded confirmation", got.text)
	}

	snap, err := store.Snapshot(context.Background(), "u1")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap) != 1 || snap[0].Amount.Cents != 5000 {
		t.Fatalf("snapshot = %+v, want one 5000-cent entry", snap)
	}
}

func TestWebhookBatchIsolation(t *testing.T) {
	s, store, replier := newTestServer("")

	body := eventBody(
		textEvent("u1", "rt-1", "ข้าว 50"),
		textEvent("u2", "rt-2", "เงินเดือน 20000"),
		textEvent("u1", "rt-3", "แท็กซี่ 120"),
	)
	rec := postWebhook(t, s, body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	for i := 0; i < 3; i++ {
		waitReply(t, replier)
	}

	ctx := context.Background()
	u1, _ := store.Snapshot(ctx, "u1")
	u2, _ := store.Snapshot(ctx, "u2")
	if len(u1) != 2 {
		t.Errorf("u1 entries = %d, want 2", len(u1))
	}
	if len(u2) != 1 || u2[0].Kind != core.Income {
		t.Errorf("u2 entries = %+v, want one income", u2)
	}
}

func TestWebhookSkipsNonTextEvents(t *testing.T) {
	s, store, _ := newTestServer("")

	body := eventBody(
		`{"type":"follow","source":{"type":"user","userId":"u1"}}`,
		`{"type":"message","replyToken":"rt","source":{"type":"user","userId":"u1"},"message":{"type":"sticker","id":"m2"}}`,
	)
	rec := postWebhook(t, s, body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	// Give any stray goroutine a moment before checking nothing landed.
	time.Sleep(50 * time.Millisecond)
	snap, _ := store.Snapshot(context.Background(), "u1")
	if len(snap) != 0 {
		t.Fatalf("non-text events must not touch the ledger, got %+v", snap)
	}
}

func TestWebhookSignatureVerification(t *testing.T) {
	const secret = "channel-secret"
	s, _, replier := newTestServer(secret)

	sign := func(body []byte) string {
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(body)
		return base64.StdEncoding.EncodeToString(mac.Sum(nil))
	}

	body := eventBody(textEvent("u1", "rt-1", "ข้าว 50"))

	rec := postWebhook(t, s, body, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("unsigned request status = %d, want 403", rec.Code)
	}

	rec = postWebhook(t, s, body, func([]byte) string { return sign([]byte("other")) })
	if rec.Code != http.StatusForbidden {
		t.Fatalf("bad signature status = %d, want 403", rec.Code)
	}

	rec = postWebhook(t, s, body, sign)
	if rec.Code != http.StatusOK {
		t.Fatalf("signed request status = %d, want 200", rec.Code)
	}
	waitReply(t, replier)
}

func TestWebhookRejectsMalformedAndWrongMethod(t *testing.T) {
	s, _, _ := newTestServer("")

	rec := postWebhook(t, s, []byte(`{"events": [`), nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed body status = %d, want 400", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/webhook", nil)
	get := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(get, req)
	if get.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET status = %d, want 405", get.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	s, _, _ := newTestServer("")

	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		s.Server.Handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
		}
	}
}
