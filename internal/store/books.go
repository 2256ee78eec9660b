package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const bookSelect = `SELECT b.id, b.title, b.language, b.download_count, b.author_id, a.name
	FROM books b JOIN authors a ON a.id = b.author_id`

// FindBookByTitleContains returns the first book (lowest id) whose title
// contains title, ignoring case. ErrNotFound when nothing matches.
func (q *Queries) FindBookByTitleContains(ctx context.Context, title string) (*Book, error) {
	row := q.queryRow(ctx, bookSelect+`
		WHERE b.title_key LIKE ? ESCAPE '\'
		ORDER BY b.id LIMIT 1`, containsPattern(title))

	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find book: %w", err)
	}
	return b, nil
}

// SaveBook inserts b and sets its ID. The referenced author must exist.
func (q *Queries) SaveBook(ctx context.Context, b *Book) error {
	if b.AuthorID == 0 {
		return fmt.Errorf("failed to save book %q: missing author", b.Title)
	}
	err := q.queryRow(ctx, `INSERT INTO books (title, title_key, language, download_count, author_id)
		VALUES (?, ?, ?, ?, ?) RETURNING id`,
		b.Title, foldKey(b.Title), strings.ToLower(b.Language), b.DownloadCount, b.AuthorID).Scan(&b.ID)
	if err != nil {
		return fmt.Errorf("failed to save book %q: %w", b.Title, err)
	}
	b.Language = strings.ToLower(b.Language)
	return nil
}

// ListBooks returns every book in id order.
func (q *Queries) ListBooks(ctx context.Context) ([]Book, error) {
	return q.queryBooks(ctx, bookSelect+` ORDER BY b.id`)
}

// FindBooksByLanguage returns books stored with the given language code.
func (q *Queries) FindBooksByLanguage(ctx context.Context, code string) ([]Book, error) {
	return q.queryBooks(ctx, bookSelect+` WHERE b.language = ? ORDER BY b.id`,
		strings.ToLower(strings.TrimSpace(code)))
}

// FindBooksByAuthor returns the books owned by an author.
func (q *Queries) FindBooksByAuthor(ctx context.Context, authorID int64) ([]Book, error) {
	return q.queryBooks(ctx, bookSelect+` WHERE b.author_id = ? ORDER BY b.id`, authorID)
}

// FindTopBooksByDownloads returns at most n books ordered by download count,
// descending when desc is set. Ties keep id order.
func (q *Queries) FindTopBooksByDownloads(ctx context.Context, n int, desc bool) ([]Book, error) {
	if n <= 0 {
		return nil, nil
	}
	order := "ASC"
	if desc {
		order = "DESC"
	}
	return q.queryBooks(ctx, bookSelect+` ORDER BY b.download_count `+order+`, b.id ASC LIMIT ?`, n)
}

// AverageDownloadCount returns the mean download count. ok is false when
// there are no books.
func (q *Queries) AverageDownloadCount(ctx context.Context) (avg float64, ok bool, err error) {
	var v sql.NullFloat64
	if err := q.queryRow(ctx, `SELECT AVG(download_count) FROM books`).Scan(&v); err != nil {
		return 0, false, fmt.Errorf("failed to average download counts: %w", err)
	}
	return v.Float64, v.Valid, nil
}

// CountBooks returns the number of stored books.
func (q *Queries) CountBooks(ctx context.Context) (int64, error) {
	var n int64
	if err := q.queryRow(ctx, `SELECT COUNT(*) FROM books`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count books: %w", err)
	}
	return n, nil
}

func (q *Queries) queryBooks(ctx context.Context, query string, args ...any) ([]Book, error) {
	rows, err := q.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var books []Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, *b)
	}
	return books, rows.Err()
}

func scanBook(s scanner) (*Book, error) {
	var b Book
	if err := s.Scan(&b.ID, &b.Title, &b.Language, &b.DownloadCount, &b.AuthorID, &b.AuthorName); err != nil {
		return nil, err
	}
	return &b, nil
}
