package bot

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"donnote/internal/core"
	"donnote/internal/ledger"
	"donnote/internal/ledger/memory"
)

type capturedEvent struct {
	event   string
	userID  string
	entryID string
}

type fakePublisher struct {
	events []capturedEvent
}

func (p *fakePublisher) PublishEntryRecorded(_ context.Context, userID string, e core.Entry) error {
	p.events = append(p.events, capturedEvent{"recorded", userID, e.ID})
	return nil
}

func (p *fakePublisher) PublishEntryUndone(_ context.Context, userID string, e core.Entry) error {
	p.events = append(p.events, capturedEvent{"undone", userID, e.ID})
	return nil
}

func newTestHandler(pub EventPublisher) (*Handler, ledger.Store) {
	store := ledger.Guard(memory.New())
	return NewHandler(store, core.DefaultTaxonomy(), time.UTC, pub), store
}

func TestHandleRecordSummarizeUndo(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	h, store := newTestHandler(pub)

	r, err := h.Handle(ctx, "u1", "coffee 45")
	if err != nil {
		t.Fatalf("record expense: %v", err)
	}
	if !strings.Contains(r.Text, "บันทึกแล้ว") {
		t.Errorf("expected recorded confirmation, got %q", r.Text)
	}

	r, err = h.Handle(ctx, "u1", "เงินเดือน 20000")
	if err != nil {
		t.Fatalf("record income: %v", err)
	}
	if !strings.Contains(r.Text, "💚") {
		t.Errorf("expected income confirmation, got %q", r.Text)
	}

	snap, err := store.Snapshot(ctx, "u1")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(snap))
	}
	if snap[0].Kind != core.Expense || snap[0].Amount.Cents != 4500 {
		t.Errorf("first entry = %+v, want expense of 4500 cents", snap[0])
	}
	if snap[1].Kind != core.Income || snap[1].Amount.Cents != 2000000 {
		t.Errorf("second entry = %+v, want income of 2000000 cents", snap[1])
	}
	if snap[0].CategoryID != "exp_other" {
		t.Errorf("coffee 45 classified as %q, want exp_other", snap[0].CategoryID)
	}
	if snap[1].CategoryID != "inc_salary" {
		t.Errorf("เงินเดือน classified as %q, want inc_salary", snap[1].CategoryID)
	}

	r, err = h.Handle(ctx, "u1", "สรุป")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	for _, want := range []string{"20,000", "45", "19,955", "2 รายการ"} {
		if !strings.Contains(r.Text, want) {
			t.Errorf("summary missing %q: %q", want, r.Text)
		}
	}

	r, err = h.Handle(ctx, "u1", "ลบ")
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if !strings.Contains(r.Text, "ลบแล้ว") {
		t.Errorf("expected undo confirmation, got %q", r.Text)
	}

	snap, _ = store.Snapshot(ctx, "u1")
	if len(snap) != 1 || snap[0].Kind != core.Expense {
		t.Fatalf("undo should remove the newest entry, snapshot = %+v", snap)
	}

	if len(pub.events) != 3 {
		t.Fatalf("expected 3 published events, got %d", len(pub.events))
	}
	if pub.events[2].event != "undone" {
		t.Errorf("last event = %q, want undone", pub.events[2].event)
	}
}

func TestHandleNoAmountIsNotRecorded(t *testing.T) {
	ctx := context.Background()
	h, store := newTestHandler(nil)

	r, err := h.Handle(ctx, "u1", "สวัสดีครับ")
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(r.Text, "ไม่เข้าใจ") {
		t.Errorf("expected unrecognized reply, got %q", r.Text)
	}

	snap, _ := store.Snapshot(ctx, "u1")
	if len(snap) != 0 {
		t.Fatalf("no entry should be recorded, got %d", len(snap))
	}
}

func TestHandleUndoOnEmptyLedger(t *testing.T) {
	h, _ := newTestHandler(nil)

	r, err := h.Handle(context.Background(), "u1", "undo")
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(r.Text, "ไม่มีรายการให้ลบ") {
		t.Errorf("expected empty-ledger reply, got %q", r.Text)
	}
}

func TestHandleSummaryEmptyState(t *testing.T) {
	h, _ := newTestHandler(nil)

	r, err := h.Handle(context.Background(), "u1", "summary")
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(r.Text, "ยังไม่มีข้อมูลเดือนนี้") {
		t.Errorf("expected empty summary, got %q", r.Text)
	}
}

func TestHandleListRecentNewestFirstCapped(t *testing.T) {
	ctx := context.Background()
	h, _ := newTestHandler(nil)

	notes := []string{"ข้าว 50", "แท็กซี่ 120", "หนัง 200", "ยา 80", "เสื้อ 300", "กาแฟ 60"}
	for _, n := range notes {
		if _, err := h.Handle(ctx, "u1", n); err != nil {
			t.Fatalf("record %q: %v", n, err)
		}
	}

	r, err := h.Handle(ctx, "u1", "รายการ")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if strings.Contains(r.Text, "ข้าว 50") {
		t.Errorf("oldest entry should be dropped from the list: %q", r.Text)
	}
	// Newest entry appears before the one recorded just before it.
	latest := strings.Index(r.Text, "กาแฟ 60")
	previous := strings.Index(r.Text, "เสื้อ 300")
	if latest == -1 || previous == -1 || latest > previous {
		t.Errorf("expected newest-first ordering, got %q", r.Text)
	}
}

func TestHandleSummaryCacheInvalidatedByMutation(t *testing.T) {
	ctx := context.Background()
	h, _ := newTestHandler(nil)

	if _, err := h.Handle(ctx, "u1", "ข้าว 50"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := h.Handle(ctx, "u1", "สรุป"); err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if _, err := h.Handle(ctx, "u1", "ข้าว 70"); err != nil {
		t.Fatalf("record: %v", err)
	}

	r, err := h.Handle(ctx, "u1", "สรุป")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if !strings.Contains(r.Text, "2 รายการ") {
		t.Errorf("summary should reflect the second entry, got %q", r.Text)
	}
}

// gatedStore takes the underlying snapshot, then holds the first Snapshot
// call until released. This lets a test land a mutation between the read
// and the caller seeing the result.
type gatedStore struct {
	ledger.Store
	mu      sync.Mutex
	gated   bool
	entered chan struct{}
	release chan struct{}
}

func (s *gatedStore) Snapshot(ctx context.Context, userID string) ([]core.Entry, error) {
	snap, err := s.Store.Snapshot(ctx, userID)
	s.mu.Lock()
	first := s.gated
	s.gated = false
	s.mu.Unlock()
	if first {
		close(s.entered)
		<-s.release
	}
	return snap, err
}

func TestHandleSummaryNotCachedAcrossConcurrentMutation(t *testing.T) {
	ctx := context.Background()
	gs := &gatedStore{
		Store:   ledger.Guard(memory.New()),
		gated:   true,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	h := NewHandler(gs, core.DefaultTaxonomy(), time.UTC, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := h.Handle(ctx, "u1", "สรุป"); err != nil {
			t.Errorf("summarize: %v", err)
		}
	}()
	<-gs.entered

	// The snapshot of the empty ledger is in flight; record an entry now.
	if _, err := h.Handle(ctx, "u1", "ข้าว 50"); err != nil {
		t.Fatalf("record: %v", err)
	}
	close(gs.release)
	<-done

	r, err := h.Handle(ctx, "u1", "สรุป")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if !strings.Contains(r.Text, "1 รายการ") {
		t.Errorf("stale summary survived the mutation, got %q", r.Text)
	}
}

func TestHandleHelp(t *testing.T) {
	h, _ := newTestHandler(nil)

	r, err := h.Handle(context.Background(), "u1", "help")
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(r.Text, "คำสั่ง") {
		t.Errorf("expected help menu, got %q", r.Text)
	}
	if len(r.QuickActions) == 0 {
		t.Error("expected quick actions on reply")
	}
}
