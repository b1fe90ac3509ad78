package amqp

import (
	"testing"
	"time"
)

func TestNewEntryEvent(t *testing.T) {
	msg := NewEntryEvent(EventEntryRecorded, "u1", "abc", "expense", 4500)

	if msg.Event != EventEntryRecorded {
		t.Errorf("Event = %q, want %q", msg.Event, EventEntryRecorded)
	}
	if msg.UserID != "u1" || msg.EntryID != "abc" {
		t.Errorf("identifiers = %q/%q, want u1/abc", msg.UserID, msg.EntryID)
	}
	if msg.AmountCents != 4500 {
		t.Errorf("AmountCents = %d, want 4500", msg.AmountCents)
	}
	if msg.Timestamp.IsZero() || time.Since(msg.Timestamp) > time.Second {
		t.Errorf("Timestamp should be recent, got %v", msg.Timestamp)
	}
}

func TestEntryEventJSONRoundTrip(t *testing.T) {
	msg := &EntryEvent{
		Event:       EventEntryUndone,
		UserID:      "u1",
		EntryID:     "abc",
		Kind:        "income",
		AmountCents: 2000000,
		Timestamp:   time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	parsed, err := EntryEventFromJSON(body)
	if err != nil {
		t.Fatalf("EntryEventFromJSON: %v", err)
	}
	if parsed.Event != msg.Event || parsed.EntryID != msg.EntryID || parsed.AmountCents != msg.AmountCents {
		t.Errorf("round trip mismatch: %+v vs %+v", parsed, msg)
	}
	if !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", parsed.Timestamp, msg.Timestamp)
	}
}

func TestEntryEventRejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"event": "entry_recorded", "amount_cents": "x"}`},
		{"unknown event kind", `{"event": "entry_edited", "user_id": "u1"}`},
		{"missing event kind", `{"user_id": "u1", "entry_id": "abc"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := EntryEventFromJSON([]byte(tt.body)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
