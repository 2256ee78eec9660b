package store

import "fmt"

// Author is a stored author. BirthYear and DeathYear are nil when unknown.
type Author struct {
	ID        int64    `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	BirthYear *int     `json:"birth_year" yaml:"birth_year"`
	DeathYear *int     `json:"death_year" yaml:"death_year"`
	Books     []string `json:"books,omitempty" yaml:"books,omitempty"`
}

// Book is a stored book. AuthorName is filled by read queries.
type Book struct {
	ID            int64   `json:"id" yaml:"id"`
	Title         string  `json:"title" yaml:"title"`
	Language      string  `json:"language" yaml:"language"`
	DownloadCount float64 `json:"download_count" yaml:"download_count"`
	AuthorID      int64   `json:"author_id" yaml:"author_id"`
	AuthorName    string  `json:"author_name" yaml:"author_name"`
}

func (b Book) String() string {
	author := b.AuthorName
	if author == "" {
		author = "N/A"
	}
	return fmt.Sprintf("Book{title=%q, language=%q, downloadCount=%v, author=%q}", b.Title, b.Language, b.DownloadCount, author)
}
