package catalog

import (
	"github.com/lepinkainen/literalura/internal/gutendex"
	"github.com/lepinkainen/literalura/internal/store"
)

// Status is the reported outcome of an ingestion attempt.
type Status int

const (
	// StatusSaved means a new book (and possibly author) was stored.
	StatusSaved Status = iota
	// StatusNotFound means the search returned no candidates.
	StatusNotFound
	// StatusNotInLanguage means nothing matched the language filter but the
	// title exists in other languages.
	StatusNotInLanguage
	// StatusDuplicate means a stored book already contains the candidate title.
	StatusDuplicate
	// StatusNoAuthor means the chosen candidate lists no author.
	StatusNoAuthor
	// StatusCancelled means the user declined to pick a candidate.
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusSaved:
		return "saved"
	case StatusNotFound:
		return "not found"
	case StatusNotInLanguage:
		return "not in language"
	case StatusDuplicate:
		return "already registered"
	case StatusNoAuthor:
		return "no author"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Query is a free-text title search with an optional language code.
type Query struct {
	Title    string
	Language string
}

// Outcome describes what an ingestion did.
type Outcome struct {
	Status Status
	Query  Query
	// Candidate is the search result that was considered, when there was one.
	Candidate *gutendex.Book
	// Book is the saved record for StatusSaved, or the existing record for StatusDuplicate.
	Book *store.Book
	// AuthorCreated is set when StatusSaved also created the author.
	AuthorCreated bool
	// AvailableLanguages lists where the title exists for StatusNotInLanguage.
	AvailableLanguages []string
}
