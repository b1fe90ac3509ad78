// Package postgres persists ledgers in PostgreSQL. It mirrors the sqlite
// backend's contract; the seq column is a bigserial and undo runs in a
// transaction.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"donnote/internal/core"
	"donnote/internal/ledger"
)

//go:embed 001_create_entries.sql
var migrationSQL string

type Store struct {
	pool *pgxpool.Pool
}

var (
	_ ledger.Store         = (*Store)(nil)
	_ ledger.ExportTracker = (*Store)(nil)
)

// NewFromURL connects using a postgres:// connection URL, verifies the
// connection and runs the migration.
func NewFromURL(ctx context.Context, url string) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parsing connection url: %w", err)
	}
	if poolConfig.MaxConns == 0 {
		poolConfig.MaxConns = 10
	}
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = 1 * time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := pool.Exec(ctx, migrationSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("executing migration: %w", err)
	}

	slog.InfoContext(ctx, "Connected to PostgreSQL", "database", poolConfig.ConnConfig.Database)

	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

const entryColumns = "id, kind, amount_cents, category_id, category_name, category_icon, note, entry_date"

func (s *Store) Append(ctx context.Context, userID string, e core.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO entries (id, user_id, kind, amount_cents, category_id, category_name, category_icon, note, entry_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, userID, string(e.Kind), e.Amount.Cents,
		e.CategoryID, e.CategoryName, e.CategoryIcon, e.Note, string(e.Date))
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}

	slog.InfoContext(ctx, "Entry saved to PostgreSQL",
		"entry_id", e.ID,
		"user_id", userID,
		"kind", e.Kind,
		"amount_cents", e.Amount.Cents)

	return nil
}

func (s *Store) UndoLast(ctx context.Context, userID string) (core.Entry, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return core.Entry{}, fmt.Errorf("begin undo transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE user_id = $1 ORDER BY seq DESC LIMIT 1`,
		userID)
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return core.Entry{}, ledger.ErrEmptyLedger
		}
		return core.Entry{}, fmt.Errorf("select last entry: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM entries WHERE id = $1`, e.ID); err != nil {
		return core.Entry{}, fmt.Errorf("delete last entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return core.Entry{}, fmt.Errorf("commit undo: %w", err)
	}

	slog.InfoContext(ctx, "Entry removed from PostgreSQL",
		"entry_id", e.ID,
		"user_id", userID)

	return e, nil
}

func (s *Store) Snapshot(ctx context.Context, userID string) ([]core.Entry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE user_id = $1 ORDER BY seq ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []core.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

// GetEntry implements ledger.ExportTracker.
func (s *Store) GetEntry(ctx context.Context, userID, entryID string) (core.Entry, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE user_id = $1 AND id = $2`,
		userID, entryID)
	e, err := scanEntry(row)
	if err != nil {
		return core.Entry{}, fmt.Errorf("get entry %s: %w", entryID, err)
	}
	return e, nil
}

// PendingExport implements ledger.ExportTracker.
func (s *Store) PendingExport(ctx context.Context, limit int) ([]ledger.ExportItem, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT user_id, `+entryColumns+` FROM entries WHERE export_status = 'pending' ORDER BY seq ASC LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("query pending entries: %w", err)
	}
	defer rows.Close()

	var items []ledger.ExportItem
	for rows.Next() {
		var (
			userID string
			e      core.Entry
		)
		if err := rows.Scan(&userID, &e.ID, &e.Kind, &e.Amount.Cents,
			&e.CategoryID, &e.CategoryName, &e.CategoryIcon, &e.Note, &e.Date); err != nil {
			return nil, fmt.Errorf("scan pending entry: %w", err)
		}
		items = append(items, ledger.ExportItem{UserID: userID, Entry: e})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending entries: %w", err)
	}
	return items, nil
}

// MarkExported implements ledger.ExportTracker.
func (s *Store) MarkExported(ctx context.Context, entryID string) error {
	return s.setExportStatus(ctx, entryID, "exported")
}

// MarkExportError implements ledger.ExportTracker.
func (s *Store) MarkExportError(ctx context.Context, entryID string) error {
	return s.setExportStatus(ctx, entryID, "error")
}

func (s *Store) setExportStatus(ctx context.Context, entryID, status string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE entries SET export_status = $1 WHERE id = $2`, status, entryID)
	if err != nil {
		return fmt.Errorf("set export status %s: %w", status, err)
	}
	return nil
}

func scanEntry(row pgx.Row) (core.Entry, error) {
	var e core.Entry
	err := row.Scan(&e.ID, &e.Kind, &e.Amount.Cents,
		&e.CategoryID, &e.CategoryName, &e.CategoryIcon, &e.Note, &e.Date)
	return e, err
}
