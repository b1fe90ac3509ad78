// Package sheets defines the port for exporting ledger entries to an
// external audit spreadsheet.
package sheets

import (
	"context"

	"donnote/internal/core"
)

// EntryExporter appends one ledger entry as an audit row and returns a
// backend reference for it (e.g. the updated range).
type EntryExporter interface {
	AppendEntry(ctx context.Context, userID string, e core.Entry) (string, error)
}
