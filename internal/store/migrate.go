package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type migration struct {
	version  int
	name     string
	sqlite   string
	postgres string
}

// migrations are applied in order; never edit an applied entry, append a new one.
var migrations = []migration{
	{
		version: 1,
		name:    "create authors",
		sqlite: `CREATE TABLE IF NOT EXISTS authors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			name_key TEXT NOT NULL,
			birth_year INTEGER,
			death_year INTEGER
		)`,
		postgres: `CREATE TABLE IF NOT EXISTS authors (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			name_key TEXT NOT NULL,
			birth_year INTEGER,
			death_year INTEGER
		)`,
	},
	{
		version: 2,
		name:    "create books",
		sqlite: `CREATE TABLE IF NOT EXISTS books (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL UNIQUE,
			title_key TEXT NOT NULL,
			language TEXT NOT NULL DEFAULT '',
			download_count REAL NOT NULL DEFAULT 0,
			author_id INTEGER NOT NULL REFERENCES authors(id)
		)`,
		postgres: `CREATE TABLE IF NOT EXISTS books (
			id BIGSERIAL PRIMARY KEY,
			title TEXT NOT NULL UNIQUE,
			title_key TEXT NOT NULL,
			language TEXT NOT NULL DEFAULT '',
			download_count DOUBLE PRECISION NOT NULL DEFAULT 0,
			author_id BIGINT NOT NULL REFERENCES authors(id)
		)`,
	},
	{
		version:  3,
		name:     "index books by language",
		sqlite:   `CREATE INDEX IF NOT EXISTS idx_books_language ON books(language)`,
		postgres: `CREATE INDEX IF NOT EXISTS idx_books_language ON books(language)`,
	},
	{
		version:  4,
		name:     "index books by author",
		sqlite:   `CREATE INDEX IF NOT EXISTS idx_books_author_id ON books(author_id)`,
		postgres: `CREATE INDEX IF NOT EXISTS idx_books_author_id ON books(author_id)`,
	},
}

const migrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	applied_at TEXT NOT NULL
)`

// Migrate applies every pending migration. It is safe to call on each start.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.exec(ctx, migrationsTable); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := d.appliedVersions(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.version] {
			continue
		}

		stmt := m.sqlite
		if d.dialect == dialectPostgres {
			stmt = m.postgres
		}

		err := d.InTx(ctx, func(q *Queries) error {
			if _, err := q.exec(ctx, stmt); err != nil {
				return err
			}
			_, err := q.exec(ctx, `INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)`,
				m.version, m.name, time.Now().UTC().Format(time.RFC3339))
			return err
		})
		if err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.name, err)
		}
		slog.Debug("Applied migration", "version", m.version, "name", m.name, "dialect", d.dialect)
	}

	return nil
}

// SchemaVersion returns the highest applied migration version.
func (d *DB) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := d.queryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

func (d *DB) appliedVersions(ctx context.Context) (map[int]bool, error) {
	rows, err := d.query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to read applied migrations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}
