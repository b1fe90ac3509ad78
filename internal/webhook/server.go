// Package webhook exposes the HTTP endpoint LINE delivers events to.
// Requests are acknowledged immediately; each event is processed in its
// own goroutine so one user's slow ledger cannot delay the batch ack.
package webhook

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"donnote/internal/bot"
	"donnote/internal/line"
)

const (
	maxBodyBytes   = 1 << 20
	processTimeout = 30 * time.Second
)

// Replier sends the outbound reply for one processed event.
type Replier interface {
	Reply(ctx context.Context, replyToken, text string, quickActions []string) error
}

type Server struct {
	http.Server

	secret  string
	handler *bot.Handler
	replier Replier

	// Bounds the number of events processed concurrently across all
	// webhook batches.
	sem      *semaphore.Weighted
	inFlight sync.WaitGroup

	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// NewServer wires the webhook routes. secret enables signature
// verification when non-empty; replier may be nil (replies are then
// dropped, useful in tests and local runs).
func NewServer(addr, secret string, handler *bot.Handler, replier Replier, maxConcurrent int64) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		secret:      secret,
		handler:     handler,
		replier:     replier,
		sem:         semaphore.NewWeighted(maxConcurrent),
		rateLimiter: newRateLimiter(),
	}

	mux.HandleFunc("/webhook", s.withObservability(s.handleWebhook))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	return s
}

// Shutdown stops accepting requests and waits for in-flight event
// goroutines, bounded by ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)

		done := make(chan struct{})
		go func() {
			s.inFlight.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			slog.Warn("Shutdown deadline reached with events still in flight")
		}
	})
	return err
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to read webhook body", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if s.secret != "" {
		if !line.ValidateSignature(s.secret, body, r.Header.Get("X-Line-Signature")) {
			slog.WarnContext(r.Context(), "Webhook signature mismatch")
			w.WriteHeader(http.StatusForbidden)
			return
		}
	}

	var req line.WebhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		slog.ErrorContext(r.Context(), "Malformed webhook payload", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	// Detach from the request context so processing survives the ack,
	// but keep context values for tracing.
	base := context.WithoutCancel(r.Context())
	for _, ev := range req.Events {
		if !ev.IsTextMessage() {
			slog.DebugContext(r.Context(), "Skipping event", "type", ev.Type)
			continue
		}
		if ev.Source.UserID == "" {
			slog.WarnContext(r.Context(), "Text event without user id")
			continue
		}
		s.inFlight.Add(1)
		go s.processEvent(base, ev)
	}

	// Ack the whole batch regardless of per-event outcomes.
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) processEvent(ctx context.Context, ev line.Event) {
	defer s.inFlight.Done()
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("Panic while processing event", "panic", rec, "user_id", ev.Source.UserID)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, processTimeout)
	defer cancel()

	if err := s.sem.Acquire(ctx, 1); err != nil {
		slog.ErrorContext(ctx, "Gave up waiting for processing slot", "error", err, "user_id", ev.Source.UserID)
		return
	}
	defer s.sem.Release(1)

	reply, err := s.handler.Handle(ctx, ev.Source.UserID, ev.Message.Text)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to process message", "error", err, "user_id", ev.Source.UserID)
		reply = bot.FormatFailure()
	}

	if s.replier == nil || ev.ReplyToken == "" {
		return
	}
	if err := s.replier.Reply(ctx, ev.ReplyToken, reply.Text, reply.QuickActions); err != nil {
		slog.ErrorContext(ctx, "Failed to send reply", "error", err, "user_id", ev.Source.UserID)
	}
}

// withObservability adds a request id, request logging, and rate
// limiting for POSTs.
func (s *Server) withObservability(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

type contextKey string

const requestIDKey contextKey = "request_id"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
