// Package memory provides an in-memory EntryExporter for tests and
// local runs without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"donnote/internal/core"
	"donnote/internal/sheets"
)

// Row is one exported audit row.
type Row struct {
	UserID string
	Entry  core.Entry
}

type Exporter struct {
	mu   sync.Mutex
	rows []Row

	// FailWith, when set, makes every append fail with this error.
	FailWith error
}

var _ sheets.EntryExporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{}
}

func (e *Exporter) AppendEntry(_ context.Context, userID string, entry core.Entry) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.FailWith != nil {
		return "", e.FailWith
	}
	e.rows = append(e.rows, Row{UserID: userID, Entry: entry})
	return fmt.Sprintf("row-%d", len(e.rows)), nil
}

// Rows returns a copy of everything exported so far.
func (e *Exporter) Rows() []Row {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Row, len(e.rows))
	copy(out, e.rows)
	return out
}
