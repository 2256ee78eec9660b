// Package report renders catalog listings and statistics as text.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/lepinkainen/literalura/internal/store"
)

// DefaultTopN is the size of the most-downloaded listing in the menu.
const DefaultTopN = 10

// Reader is the read side of the catalog store.
type Reader interface {
	ListBooks(ctx context.Context) ([]store.Book, error)
	ListAuthors(ctx context.Context) ([]store.Author, error)
	FindBooksByLanguage(ctx context.Context, code string) ([]store.Book, error)
	FindBooksByAuthor(ctx context.Context, authorID int64) ([]store.Book, error)
	FindTopBooksByDownloads(ctx context.Context, n int, desc bool) ([]store.Book, error)
	FindAuthorsAliveInYear(ctx context.Context, year int) ([]store.Author, error)
	FindAuthorByNameContains(ctx context.Context, name string) (*store.Author, error)
	AverageDownloadCount(ctx context.Context) (float64, bool, error)
	CountBooks(ctx context.Context) (int64, error)
	CountAuthors(ctx context.Context) (int64, error)
}

// Service writes reports to out.
type Service struct {
	store Reader
	out   io.Writer
}

// NewService creates a report writer.
func NewService(r Reader, out io.Writer) *Service {
	return &Service{store: r, out: out}
}

// Books lists every stored book.
func (s *Service) Books(ctx context.Context) error {
	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return fmt.Errorf("list books: %w", err)
	}
	if len(books) == 0 {
		return s.println("No books registered yet.")
	}
	return s.bookTable("Registered books", books)
}

// Authors lists every stored author with their titles.
func (s *Service) Authors(ctx context.Context) error {
	authors, err := s.store.ListAuthors(ctx)
	if err != nil {
		return fmt.Errorf("list authors: %w", err)
	}
	if len(authors) == 0 {
		return s.println("No authors registered yet.")
	}
	return s.authorTable("Registered authors", authors)
}

// BooksByLanguage lists the books stored with the given language code.
func (s *Service) BooksByLanguage(ctx context.Context, code string) error {
	code = strings.ToLower(strings.TrimSpace(code))
	books, err := s.store.FindBooksByLanguage(ctx, code)
	if err != nil {
		return fmt.Errorf("books by language %q: %w", code, err)
	}
	if len(books) == 0 {
		return s.printf("No books found for language %s.\n", LanguageName(code))
	}
	return s.bookTable("Books in "+LanguageName(code), books)
}

// TopBooks lists the n most downloaded books.
func (s *Service) TopBooks(ctx context.Context, n int) error {
	return s.ranked(ctx, n, true)
}

// LeastDownloaded lists the n least downloaded books.
func (s *Service) LeastDownloaded(ctx context.Context, n int) error {
	return s.ranked(ctx, n, false)
}

func (s *Service) ranked(ctx context.Context, n int, desc bool) error {
	if n <= 0 {
		n = DefaultTopN
	}
	books, err := s.store.FindTopBooksByDownloads(ctx, n, desc)
	if err != nil {
		return fmt.Errorf("rank books: %w", err)
	}
	if len(books) == 0 {
		return s.println("No books registered yet.")
	}
	title := fmt.Sprintf("Top %d most downloaded", n)
	if !desc {
		title = fmt.Sprintf("Top %d least downloaded", n)
	}
	return s.bookTable(title, books)
}

// AuthorsAliveIn lists the authors alive during year.
func (s *Service) AuthorsAliveIn(ctx context.Context, year int) error {
	authors, err := s.store.FindAuthorsAliveInYear(ctx, year)
	if err != nil {
		return fmt.Errorf("authors alive in %d: %w", year, err)
	}
	if len(authors) == 0 {
		return s.printf("No authors found alive in %d.\n", year)
	}
	return s.authorTable(fmt.Sprintf("Authors alive in %d", year), authors)
}

// AuthorByName shows the first author whose name contains q, with their books.
func (s *Service) AuthorByName(ctx context.Context, q string) error {
	q = strings.TrimSpace(q)
	author, err := s.store.FindAuthorByNameContains(ctx, q)
	if errors.Is(err, store.ErrNotFound) {
		return s.printf("No author matching %q.\n", q)
	}
	if err != nil {
		return fmt.Errorf("find author %q: %w", q, err)
	}

	books, err := s.store.FindBooksByAuthor(ctx, author.ID)
	if err != nil {
		return fmt.Errorf("books by author %d: %w", author.ID, err)
	}

	rows := [][]string{
		{"Name", author.Name},
		{"Born", yearOrUnknown(author.BirthYear)},
		{"Died", yearOrUnknown(author.DeathYear)},
		{"Books", humanize.Comma(int64(len(books)))},
	}
	if err := s.section("Author", renderTable(nil, rows, nil)); err != nil {
		return err
	}
	if len(books) == 0 {
		return nil
	}
	return s.bookTable("Books by "+author.Name, books)
}

// Statistics prints catalog totals and download extremes.
func (s *Service) Statistics(ctx context.Context) error {
	books, err := s.store.CountBooks(ctx)
	if err != nil {
		return fmt.Errorf("count books: %w", err)
	}
	authors, err := s.store.CountAuthors(ctx)
	if err != nil {
		return fmt.Errorf("count authors: %w", err)
	}
	avg, ok, err := s.store.AverageDownloadCount(ctx)
	if err != nil {
		return fmt.Errorf("average downloads: %w", err)
	}

	average := "no data"
	if ok {
		average = humanize.CommafWithDigits(avg, 2)
	}

	rows := [][]string{
		{"Books", humanize.Comma(books)},
		{"Authors", humanize.Comma(authors)},
		{"Average downloads", average},
	}

	most, err := s.store.FindTopBooksByDownloads(ctx, 1, true)
	if err != nil {
		return fmt.Errorf("most downloaded: %w", err)
	}
	least, err := s.store.FindTopBooksByDownloads(ctx, 1, false)
	if err != nil {
		return fmt.Errorf("least downloaded: %w", err)
	}
	if len(most) > 0 {
		rows = append(rows, []string{"Most downloaded", fmt.Sprintf("%s (%s)", most[0].Title, Downloads(most[0].DownloadCount))})
	}
	if len(least) > 0 {
		rows = append(rows, []string{"Least downloaded", fmt.Sprintf("%s (%s)", least[0].Title, Downloads(least[0].DownloadCount))})
	}

	return s.section("Statistics", renderTable(nil, rows, []columnAlignment{alignLeft, alignRight}))
}

func (s *Service) bookTable(title string, books []store.Book) error {
	rows := make([][]string, 0, len(books))
	for _, b := range books {
		rows = append(rows, []string{b.Title, b.AuthorName, LanguageName(b.Language), Downloads(b.DownloadCount)})
	}
	return s.section(title, renderTable(
		[]string{"Title", "Author", "Language", "Downloads"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
	))
}

func (s *Service) authorTable(title string, authors []store.Author) error {
	rows := make([][]string, 0, len(authors))
	for _, a := range authors {
		rows = append(rows, []string{a.Name, yearOrUnknown(a.BirthYear), yearOrUnknown(a.DeathYear), titles(a.Books)})
	}
	return s.section(title, renderTable(
		[]string{"Name", "Born", "Died", "Books"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
	))
}

func (s *Service) section(title, body string) error {
	_, err := fmt.Fprintf(s.out, "\n%s\n%s\n", title, body)
	return err
}

func (s *Service) println(line string) error {
	_, err := fmt.Fprintln(s.out, line)
	return err
}

func (s *Service) printf(format string, args ...any) error {
	_, err := fmt.Fprintf(s.out, format, args...)
	return err
}
