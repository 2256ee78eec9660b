// Package catalog searches Gutendex and stores new books with their authors.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lepinkainen/literalura/internal/gutendex"
	"github.com/lepinkainen/literalura/internal/store"
)

// ErrEmptyQuery is returned when the search title is blank.
var ErrEmptyQuery = errors.New("search title is empty")

// Searcher runs a Gutendex title search.
type Searcher interface {
	Search(ctx context.Context, title, language string) (*gutendex.SearchResponse, error)
}

// Store is the persistence the ingestion workflow needs.
type Store interface {
	FindBookByTitleContains(ctx context.Context, title string) (*store.Book, error)
	InTx(ctx context.Context, fn func(q *store.Queries) error) error
}

// Chooser picks one of the candidates. ok is false when the user cancels.
type Chooser func(ctx context.Context, query Query, candidates []gutendex.Book) (index int, ok bool, err error)

// FirstCandidate always takes the first search result.
func FirstCandidate(_ context.Context, _ Query, candidates []gutendex.Book) (int, bool, error) {
	return 0, len(candidates) > 0, nil
}

// Service runs the search-and-save workflow.
type Service struct {
	searcher Searcher
	store    Store
	choose   Chooser
}

// Option configures a Service.
type Option func(*Service)

// WithChooser replaces the default first-result chooser.
func WithChooser(c Chooser) Option {
	return func(s *Service) {
		if c != nil {
			s.choose = c
		}
	}
}

// NewService creates the ingestion workflow.
func NewService(searcher Searcher, st Store, opts ...Option) *Service {
	s := &Service{
		searcher: searcher,
		store:    st,
		choose:   FirstCandidate,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest searches for q, picks a candidate and stores it unless it is already
// registered or has no author. Transport and payload failures are returned
// as errors; every other outcome is reported through Outcome.Status.
func (s *Service) Ingest(ctx context.Context, q Query) (*Outcome, error) {
	q.Title = strings.TrimSpace(q.Title)
	q.Language = strings.ToLower(strings.TrimSpace(q.Language))
	if q.Title == "" {
		return nil, ErrEmptyQuery
	}

	slog.Debug("Searching Gutendex", "query", q.Title, "language", q.Language)
	res, err := s.searcher.Search(ctx, q.Title, q.Language)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", q.Title, err)
	}

	if len(res.Results) == 0 {
		return s.notFound(ctx, q)
	}

	idx, ok, err := s.choose(ctx, q, res.Results)
	if err != nil {
		return nil, fmt.Errorf("choose candidate: %w", err)
	}
	if !ok {
		return &Outcome{Status: StatusCancelled, Query: q}, nil
	}
	if idx < 0 || idx >= len(res.Results) {
		return nil, fmt.Errorf("choose candidate: index %d out of range", idx)
	}

	candidate := res.Results[idx]
	return s.save(ctx, q, candidate)
}

// notFound reports an empty search. With a language filter, the title is
// searched again without it to list the languages it is available in.
func (s *Service) notFound(ctx context.Context, q Query) (*Outcome, error) {
	out := &Outcome{Status: StatusNotFound, Query: q}
	if q.Language == "" {
		return out, nil
	}

	res, err := s.searcher.Search(ctx, q.Title, "")
	if err != nil {
		return nil, fmt.Errorf("search %q without language filter: %w", q.Title, err)
	}
	if langs := gutendex.DistinctLanguages(res.Results); len(langs) > 0 {
		out.Status = StatusNotInLanguage
		out.AvailableLanguages = langs
	}
	return out, nil
}

func (s *Service) save(ctx context.Context, q Query, candidate gutendex.Book) (*Outcome, error) {
	out := &Outcome{Query: q, Candidate: &candidate}

	existing, err := s.store.FindBookByTitleContains(ctx, candidate.Title)
	switch {
	case err == nil:
		out.Status = StatusDuplicate
		out.Book = existing
		return out, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	person, ok := candidate.FirstAuthor()
	if !ok {
		out.Status = StatusNoAuthor
		return out, nil
	}

	book := &store.Book{
		Title:         candidate.Title,
		Language:      candidate.FirstLanguage(),
		DownloadCount: candidate.DownloadCount,
	}

	err = s.store.InTx(ctx, func(tx *store.Queries) error {
		author, err := tx.FindAuthorByNameContains(ctx, person.Name)
		if errors.Is(err, store.ErrNotFound) {
			author = &store.Author{Name: person.Name, BirthYear: person.BirthYear, DeathYear: person.DeathYear}
			if err := tx.SaveAuthor(ctx, author); err != nil {
				return err
			}
			out.AuthorCreated = true
		} else if err != nil {
			return err
		}

		book.AuthorID = author.ID
		book.AuthorName = author.Name
		return tx.SaveBook(ctx, book)
	})
	if err != nil {
		return nil, fmt.Errorf("save %q: %w", candidate.Title, err)
	}

	slog.Info("Book saved", "title", book.Title, "author", book.AuthorName, "author_created", out.AuthorCreated)
	out.Status = StatusSaved
	out.Book = book
	return out, nil
}
