// Package sqlite implements a SQLite-backed storage.Source and storage.Sink
// using database/sql. Writes are batched INSERTs inside a single transaction;
// SQLite has no bulk-load API like Postgres COPY, but one transaction keeps
// performance acceptable for moderate volumes.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // cgo-free SQLite driver

	"recordopt/pkg/records"
)

// Config holds SQLite connection and table settings.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:records.db?cache=shared"
	//   "records.db"
	DSN string

	// Table is the table read from or inserted into.
	Table string

	// Query optionally overrides the generated SELECT when reading.
	Query string

	// Columns fixes the insert column set. When empty, the first record's
	// fields are used, in record order.
	Columns []string
}

// Store reads and writes record batches against one SQLite database.
type Store struct {
	db  *sql.DB
	cfg Config
}

// Open connects to the database and returns a Store plus a close function.
func Open(ctx context.Context, cfg Config) (*Store, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	closeFn := func() { db.Close() }
	return &Store{db: db, cfg: cfg}, closeFn, nil
}

// Read runs the configured query (or SELECT * FROM table) and converts the
// result set into records. Field order follows the result set's column order,
// so SELECT column lists carry through to record field order.
func (s *Store) Read(ctx context.Context) (records.Collection, error) {
	query := s.cfg.Query
	if strings.TrimSpace(query) == "" {
		if strings.TrimSpace(s.cfg.Table) == "" {
			return nil, fmt.Errorf("sqlite: either query or table is required to read")
		}
		query = "SELECT * FROM " + quoteIdent(s.cfg.Table)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("sqlite: columns: %w", err)
	}

	var out records.Collection
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("sqlite: scan: %w", err)
		}
		rec := records.New()
		for i, c := range cols {
			rec.Set(c, normalizeValue(vals[i]))
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: rows: %w", err)
	}
	return out, nil
}

// Write inserts all records into the configured table inside one
// transaction. Fields missing from a record insert as NULL; fields outside
// the column set are dropped.
func (s *Store) Write(ctx context.Context, recs records.Collection) error {
	if len(recs) == 0 {
		return nil
	}
	if strings.TrimSpace(s.cfg.Table) == "" {
		return fmt.Errorf("sqlite: table must not be empty")
	}

	cols := s.cfg.Columns
	if len(cols) == 0 {
		cols = recs[0].Fields()
	}
	if len(cols) == 0 {
		return fmt.Errorf("sqlite: no columns to insert")
	}

	quoted := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
		placeholders[i] = "?"
	}
	stmtSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(s.cfg.Table),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	row := make([]any, len(cols))
	for _, rec := range recs {
		for i, c := range cols {
			row[i] = bindValue(rec.Get(c))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("sqlite: insert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

// Exec runs an arbitrary SQL statement, typically DDL in tests and setup.
func (s *Store) Exec(ctx context.Context, sqlText string) error {
	if strings.TrimSpace(sqlText) == "" {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("sqlite: exec: %w", err)
	}
	return nil
}

// normalizeValue maps driver scan values onto the record value model.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	default:
		return v
	}
}

// bindValue converts record values into something the driver can bind.
// Composite values (slices, maps) become their JSON-ish string form via
// fmt so the insert does not fail; callers who care should json_encode first.
func bindValue(v any) any {
	switch v.(type) {
	case nil, string, int, int64, float64, bool, []byte, time.Time:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// quoteIdent quotes an identifier for SQLite.
func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
