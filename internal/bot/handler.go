package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"donnote/internal/cache"
	"donnote/internal/core"
	"donnote/internal/ledger"
)

const recentLimit = 5

// EventPublisher receives ledger mutation events for downstream export.
// Publishing is best-effort: failures are logged and never fail the
// originating request.
type EventPublisher interface {
	PublishEntryRecorded(ctx context.Context, userID string, e core.Entry) error
	PublishEntryUndone(ctx context.Context, userID string, e core.Entry) error
}

// Handler processes one inbound message at a time: route, mutate or read
// the ledger, and build the reply.
type Handler struct {
	store    ledger.Store
	taxonomy *core.Taxonomy
	loc      *time.Location
	events   EventPublisher

	// Monthly summaries are cached per user+period and invalidated on
	// every mutation for that user. The per-user epoch counts mutations,
	// so a summary computed from a snapshot taken before a mutation is
	// never written back after the invalidation.
	summaries *cache.LRUCache[core.MonthlySummary]
	epochMu   sync.Mutex
	epochs    map[string]uint64
}

// NewHandler builds a handler. store must already be wrapped with
// per-user serialization (ledger.Guard); events may be nil.
func NewHandler(store ledger.Store, taxonomy *core.Taxonomy, loc *time.Location, events EventPublisher) *Handler {
	return &Handler{
		store:     store,
		taxonomy:  taxonomy,
		loc:       loc,
		events:    events,
		summaries: cache.NewLRUCache[core.MonthlySummary](1000, 5*time.Minute),
		epochs:    make(map[string]uint64),
	}
}

// Handle processes a single message text for a user and returns the reply
// to send. Store failures are returned as errors; everything else becomes
// a friendly reply.
func (h *Handler) Handle(ctx context.Context, userID, text string) (Reply, error) {
	switch Route(text) {
	case CmdSummarize:
		return h.summarize(ctx, userID)
	case CmdListRecent:
		return h.listRecent(ctx, userID)
	case CmdUndo:
		return h.undo(ctx, userID)
	case CmdHelp:
		return formatHelp(), nil
	default:
		return h.record(ctx, userID, text)
	}
}

func (h *Handler) record(ctx context.Context, userID, text string) (Reply, error) {
	amount, err := core.ExtractAmount(text)
	if err != nil {
		slog.DebugContext(ctx, "No amount in message", "user_id", userID)
		return formatUnrecognized(), nil
	}

	c := h.taxonomy.Classify(text)
	e := core.Entry{
		ID:           uuid.NewString(),
		Kind:         c.Kind,
		Amount:       amount,
		CategoryID:   c.Category.ID,
		CategoryName: c.Category.Name,
		CategoryIcon: c.Category.Icon,
		Note:         strings.TrimSpace(text),
		Date:         core.NewDate(time.Now().In(h.loc)),
	}

	if err := h.store.Append(ctx, userID, e); err != nil {
		return Reply{}, fmt.Errorf("append entry: %w", err)
	}
	h.invalidate(userID)

	if h.events != nil {
		if err := h.events.PublishEntryRecorded(ctx, userID, e); err != nil {
			slog.ErrorContext(ctx, "Failed to publish entry recorded event",
				"user_id", userID, "entry_id", e.ID, "error", err)
		}
	}

	s, err := h.currentSummary(ctx, userID)
	if err != nil {
		return Reply{}, fmt.Errorf("summarize after append: %w", err)
	}
	return formatRecorded(e, s.Balance), nil
}

func (h *Handler) summarize(ctx context.Context, userID string) (Reply, error) {
	s, err := h.currentSummary(ctx, userID)
	if err != nil {
		return Reply{}, fmt.Errorf("summarize: %w", err)
	}
	return formatSummary(s), nil
}

func (h *Handler) listRecent(ctx context.Context, userID string) (Reply, error) {
	snap, err := h.store.Snapshot(ctx, userID)
	if err != nil {
		return Reply{}, fmt.Errorf("snapshot for recent list: %w", err)
	}
	// Last entries, most recent first.
	n := len(snap)
	if n > recentLimit {
		snap = snap[n-recentLimit:]
	}
	recent := make([]core.Entry, 0, len(snap))
	for i := len(snap) - 1; i >= 0; i-- {
		recent = append(recent, snap[i])
	}
	return formatRecent(recent), nil
}

func (h *Handler) undo(ctx context.Context, userID string) (Reply, error) {
	removed, err := h.store.UndoLast(ctx, userID)
	if err != nil {
		if errors.Is(err, ledger.ErrEmptyLedger) {
			return formatUndoEmpty(), nil
		}
		return Reply{}, fmt.Errorf("undo last entry: %w", err)
	}
	h.invalidate(userID)

	if h.events != nil {
		if err := h.events.PublishEntryUndone(ctx, userID, removed); err != nil {
			slog.ErrorContext(ctx, "Failed to publish entry undone event",
				"user_id", userID, "entry_id", removed.ID, "error", err)
		}
	}

	return formatUndone(removed), nil
}

func (h *Handler) currentSummary(ctx context.Context, userID string) (core.MonthlySummary, error) {
	period := core.CurrentPeriod(h.loc)
	key := summaryKey(userID, period)
	if s, ok := h.summaries.Get(key); ok {
		return s, nil
	}

	h.epochMu.Lock()
	before := h.epochs[userID]
	h.epochMu.Unlock()

	snap, err := h.store.Snapshot(ctx, userID)
	if err != nil {
		return core.MonthlySummary{}, err
	}
	s := core.Summarize(snap, period)

	// Cache only if no mutation landed while the snapshot was in flight.
	h.epochMu.Lock()
	if h.epochs[userID] == before {
		h.summaries.Set(key, s)
	}
	h.epochMu.Unlock()
	return s, nil
}

// RunCacheJanitor evicts stale cached summaries until ctx is canceled.
func (h *Handler) RunCacheJanitor(ctx context.Context, interval time.Duration) {
	h.summaries.Janitor(ctx, interval)
}

func (h *Handler) invalidate(userID string) {
	key := summaryKey(userID, core.CurrentPeriod(h.loc))
	h.epochMu.Lock()
	h.epochs[userID]++
	h.summaries.Delete(key)
	h.epochMu.Unlock()
}

func summaryKey(userID string, p core.Period) string {
	return userID + "|" + string(p)
}
