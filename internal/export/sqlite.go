package export

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	_ "modernc.org/sqlite"
)

// Tables created in a standalone export file, ready for `datasette serve`.
const (
	authorsExportSchema = `CREATE TABLE IF NOT EXISTS authors (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		birth_year INTEGER,
		death_year INTEGER
	)`
	booksExportSchema = `CREATE TABLE IF NOT EXISTS books (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		language TEXT,
		download_count REAL,
		author_id INTEGER REFERENCES authors(id)
	)`
)

// SQLiteWriter writes snapshot rows into a local SQLite file.
type SQLiteWriter struct {
	db *sql.DB
}

// OpenSQLiteWriter opens (or creates) path and ensures the export tables exist.
func OpenSQLiteWriter(path string) (*SQLiteWriter, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	for _, schema := range []string{authorsExportSchema, booksExportSchema} {
		if _, err := db.Exec(schema); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create table: %w", err)
		}
	}
	return &SQLiteWriter{db: db}, nil
}

// Insert upserts rows into table inside one transaction.
func (s *SQLiteWriter) Insert(ctx context.Context, table string, rows []map[string]any) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// no-op after a successful commit
		_ = tx.Rollback()
	}()

	columns := make([]string, 0, len(rows[0]))
	for col := range rows[0] {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = "?"
	}
	query := fmt.Sprintf(
		"INSERT OR REPLACE INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, row := range rows {
		values := make([]any, len(columns))
		for i, col := range columns {
			values[i] = row[col]
		}
		if _, err := stmt.ExecContext(ctx, values...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteWriter) Close() error {
	return s.db.Close()
}
