package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const authorColumns = `id, name, birth_year, death_year`

// FindAuthorByNameContains returns the first author (lowest id) whose name
// contains q, ignoring case. ErrNotFound when nothing matches.
func (q *Queries) FindAuthorByNameContains(ctx context.Context, name string) (*Author, error) {
	row := q.queryRow(ctx, `SELECT `+authorColumns+` FROM authors
		WHERE name_key LIKE ? ESCAPE '\'
		ORDER BY id LIMIT 1`, containsPattern(name))

	a, err := scanAuthor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find author: %w", err)
	}
	return a, nil
}

// SaveAuthor inserts a and sets its ID.
func (q *Queries) SaveAuthor(ctx context.Context, a *Author) error {
	err := q.queryRow(ctx, `INSERT INTO authors (name, name_key, birth_year, death_year)
		VALUES (?, ?, ?, ?) RETURNING id`,
		a.Name, foldKey(a.Name), nullInt(a.BirthYear), nullInt(a.DeathYear)).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("failed to save author %q: %w", a.Name, err)
	}
	return nil
}

// ListAuthors returns every author in id order with the titles they own.
func (q *Queries) ListAuthors(ctx context.Context) ([]Author, error) {
	authors, err := q.queryAuthors(ctx, `SELECT `+authorColumns+` FROM authors ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return authors, q.attachTitles(ctx, authors)
}

// FindAuthorsAliveInYear returns authors with birth <= year <= death.
// Authors with an unknown birth or death year never match.
func (q *Queries) FindAuthorsAliveInYear(ctx context.Context, year int) ([]Author, error) {
	authors, err := q.queryAuthors(ctx, `SELECT `+authorColumns+` FROM authors
		WHERE birth_year IS NOT NULL AND death_year IS NOT NULL
		AND birth_year <= ? AND death_year >= ?
		ORDER BY id`, year, year)
	if err != nil {
		return nil, err
	}
	return authors, q.attachTitles(ctx, authors)
}

// CountAuthors returns the number of stored authors.
func (q *Queries) CountAuthors(ctx context.Context) (int64, error) {
	var n int64
	if err := q.queryRow(ctx, `SELECT COUNT(*) FROM authors`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count authors: %w", err)
	}
	return n, nil
}

func (q *Queries) queryAuthors(ctx context.Context, query string, args ...any) ([]Author, error) {
	rows, err := q.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query authors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var authors []Author
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan author: %w", err)
		}
		authors = append(authors, *a)
	}
	return authors, rows.Err()
}

// attachTitles fills Books for each author with their titles in id order.
func (q *Queries) attachTitles(ctx context.Context, authors []Author) error {
	if len(authors) == 0 {
		return nil
	}

	index := make(map[int64]int, len(authors))
	for i := range authors {
		index[authors[i].ID] = i
	}

	rows, err := q.query(ctx, `SELECT author_id, title FROM books ORDER BY id`)
	if err != nil {
		return fmt.Errorf("failed to query author titles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var authorID int64
		var title string
		if err := rows.Scan(&authorID, &title); err != nil {
			return fmt.Errorf("failed to scan author title: %w", err)
		}
		if i, ok := index[authorID]; ok {
			authors[i].Books = append(authors[i].Books, title)
		}
	}
	return rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAuthor(s scanner) (*Author, error) {
	var a Author
	var birth, death sql.NullInt64
	if err := s.Scan(&a.ID, &a.Name, &birth, &death); err != nil {
		return nil, err
	}
	a.BirthYear = intPtr(birth)
	a.DeathYear = intPtr(death)
	return &a, nil
}
