package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event kinds carried on the ledger events queue.
const (
	EventEntryRecorded = "entry_recorded"
	EventEntryUndone   = "entry_undone"
)

// EntryEvent is a lightweight notification that a ledger mutation
// happened. It carries identifiers only; the worker fetches the full
// entry from the store before exporting.
type EntryEvent struct {
	Event       string    `json:"event"`
	UserID      string    `json:"user_id"`
	EntryID     string    `json:"entry_id"`
	Kind        string    `json:"kind"`
	AmountCents int64     `json:"amount_cents"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewEntryEvent builds an event of the given kind for one entry.
func NewEntryEvent(event, userID, entryID, kind string, amountCents int64) *EntryEvent {
	return &EntryEvent{
		Event:       event,
		UserID:      userID,
		EntryID:     entryID,
		Kind:        kind,
		AmountCents: amountCents,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (m *EntryEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EntryEventFromJSON parses an event from JSON bytes and checks the
// event kind is one this service understands.
func EntryEventFromJSON(data []byte) (*EntryEvent, error) {
	var msg EntryEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Event {
	case EventEntryRecorded, EventEntryUndone:
	default:
		return nil, fmt.Errorf("unknown event kind %q", msg.Event)
	}
	return &msg, nil
}
