package report

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/lepinkainen/literalura/internal/catalog"
	"github.com/lepinkainen/literalura/internal/gutendex"
	"github.com/lepinkainen/literalura/internal/store"
	"github.com/lepinkainen/literalura/internal/testutil"
	"github.com/stretchr/testify/require"
)

func year(v int) *int { return &v }

func newReport(t *testing.T) (*Service, *store.DB, *bytes.Buffer) {
	t.Helper()

	env := testutil.NewTestEnv(t)
	db, err := store.Open(env.Path("catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(context.Background()))

	var out bytes.Buffer
	return NewService(db, &out), db, &out
}

func seed(t *testing.T, db *store.DB) {
	t.Helper()
	ctx := context.Background()

	machado := &store.Author{Name: "Machado de Assis", BirthYear: year(1839), DeathYear: year(1908)}
	require.NoError(t, db.SaveAuthor(ctx, machado))
	austen := &store.Author{Name: "Austen, Jane", BirthYear: year(1775), DeathYear: year(1817)}
	require.NoError(t, db.SaveAuthor(ctx, austen))

	for _, b := range []store.Book{
		{Title: "Dom Casmurro", Language: "pt", DownloadCount: 1200, AuthorID: machado.ID},
		{Title: "Memorias Posthumas de Braz Cubas", Language: "pt", DownloadCount: 800, AuthorID: machado.ID},
		{Title: "Pride and Prejudice", Language: "en", DownloadCount: 54322, AuthorID: austen.ID},
	} {
		book := b
		require.NoError(t, db.SaveBook(ctx, &book))
	}
}

func TestEmptyCatalog(t *testing.T) {
	r, _, out := newReport(t)
	ctx := context.Background()

	require.NoError(t, r.Books(ctx))
	require.NoError(t, r.Authors(ctx))
	require.NoError(t, r.TopBooks(ctx, 10))
	require.NoError(t, r.AuthorsAliveIn(ctx, 1850))

	text := out.String()
	assert.Contains(t, text, "No books registered yet.")
	assert.Contains(t, text, "No authors registered yet.")
	assert.Contains(t, text, "No authors found alive in 1850.")
}

func TestStatisticsEmptyAverage(t *testing.T) {
	r, _, out := newReport(t)

	require.NoError(t, r.Statistics(context.Background()))

	text := out.String()
	assert.Contains(t, text, "Average downloads")
	assert.Contains(t, text, "no data")
	assert.NotContains(t, text, "Most downloaded")
}

func TestStatistics(t *testing.T) {
	r, db, out := newReport(t)
	seed(t, db)

	require.NoError(t, r.Statistics(context.Background()))

	text := out.String()
	assert.Contains(t, text, "18,774")
	assert.Contains(t, text, "Pride and Prejudice (54,322)")
	assert.Contains(t, text, "Memorias Posthumas de Braz Cubas (800)")
	assert.NotContains(t, text, "no data")
}

func TestBooksAndAuthors(t *testing.T) {
	r, db, out := newReport(t)
	seed(t, db)
	ctx := context.Background()

	require.NoError(t, r.Books(ctx))
	books := out.String()
	assert.Contains(t, books, "Registered books")
	assert.Contains(t, books, "Dom Casmurro")
	assert.Contains(t, books, "Portuguese (pt)")
	assert.Contains(t, books, "1,200")

	out.Reset()
	require.NoError(t, r.Authors(ctx))
	authors := out.String()
	assert.Contains(t, authors, "Machado de Assis")
	assert.Contains(t, authors, "Dom Casmurro; Memorias Posthumas de Braz Cubas")
	assert.Contains(t, authors, "1775")
}

func TestBooksByLanguage(t *testing.T) {
	r, db, out := newReport(t)
	seed(t, db)
	ctx := context.Background()

	require.NoError(t, r.BooksByLanguage(ctx, "EN"))
	assert.Contains(t, out.String(), "Books in English (en)")
	assert.Contains(t, out.String(), "Pride and Prejudice")
	assert.NotContains(t, out.String(), "Dom Casmurro")

	out.Reset()
	require.NoError(t, r.BooksByLanguage(ctx, "fr"))
	assert.Contains(t, out.String(), "No books found for language French (fr).")
}

func TestTopBooksOrder(t *testing.T) {
	r, db, out := newReport(t)
	seed(t, db)
	ctx := context.Background()

	require.NoError(t, r.TopBooks(ctx, 2))
	text := out.String()
	assert.Contains(t, text, "Top 2 most downloaded")
	assert.True(t, strings.Index(text, "Pride and Prejudice") < strings.Index(text, "Dom Casmurro"))
	assert.NotContains(t, text, "Braz Cubas")

	out.Reset()
	require.NoError(t, r.LeastDownloaded(ctx, 0))
	text = out.String()
	assert.Contains(t, text, "Top 10 least downloaded")
	assert.True(t, strings.Index(text, "Braz Cubas") < strings.Index(text, "Pride and Prejudice"))
}

func TestAuthorsAliveIn(t *testing.T) {
	r, db, out := newReport(t)
	seed(t, db)

	require.NoError(t, r.AuthorsAliveIn(context.Background(), 1800))
	text := out.String()
	assert.Contains(t, text, "Authors alive in 1800")
	assert.Contains(t, text, "Austen, Jane")
	assert.NotContains(t, text, "Machado")
}

func TestAuthorByName(t *testing.T) {
	r, db, out := newReport(t)
	seed(t, db)
	ctx := context.Background()

	require.NoError(t, r.AuthorByName(ctx, "  machado "))
	text := out.String()
	assert.Contains(t, text, "Machado de Assis")
	assert.Contains(t, text, "Books by Machado de Assis")
	assert.Contains(t, text, "Memorias Posthumas de Braz Cubas")

	out.Reset()
	require.NoError(t, r.AuthorByName(ctx, "Tolstoy"))
	assert.Equal(t, "No author matching \"Tolstoy\".\n", out.String())
}

func TestLanguageName(t *testing.T) {
	assert.Equal(t, "Portuguese (pt)", LanguageName("pt"))
	assert.Equal(t, "unknown", LanguageName(""))
	assert.Equal(t, "not a tag!", LanguageName("not a tag!"))
}

func TestDownloads(t *testing.T) {
	assert.Equal(t, "54,321", Downloads(54321))
	assert.Equal(t, "12.5", Downloads(12.5))
}

func TestWriteOutcome(t *testing.T) {
	tests := []struct {
		name    string
		outcome catalog.Outcome
		want    string
	}{
		{
			name:    "duplicate",
			outcome: catalog.Outcome{Status: catalog.StatusDuplicate, Book: &store.Book{Title: "Dom Casmurro"}},
			want:    "\"Dom Casmurro\" is already registered.",
		},
		{
			name:    "not found",
			outcome: catalog.Outcome{Status: catalog.StatusNotFound, Query: catalog.Query{Title: "Nothing"}},
			want:    "No books found for \"Nothing\".",
		},
		{
			name: "not in language",
			outcome: catalog.Outcome{
				Status:             catalog.StatusNotInLanguage,
				Query:              catalog.Query{Title: "Dom Casmurro", Language: "es"},
				AvailableLanguages: []string{"en", "pt"},
			},
			want: "No books found for \"Dom Casmurro\" in Spanish (es). Available in: English (en), Portuguese (pt).",
		},
		{
			name:    "no author",
			outcome: catalog.Outcome{Status: catalog.StatusNoAuthor, Candidate: &gutendex.Book{Title: "Beowulf"}},
			want:    "\"Beowulf\" has no author and was not saved.",
		},
		{
			name:    "cancelled",
			outcome: catalog.Outcome{Status: catalog.StatusCancelled},
			want:    "Operation cancelled.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteOutcome(&buf, &tt.outcome))
			assert.Equal(t, tt.want+"\n", buf.String())
		})
	}
}

func TestWriteOutcomeSaved(t *testing.T) {
	var buf bytes.Buffer
	o := &catalog.Outcome{
		Status: catalog.StatusSaved,
		Book:   &store.Book{Title: "Dom Casmurro", AuthorName: "Machado de Assis", Language: "pt", DownloadCount: 1200},
	}
	require.NoError(t, WriteOutcome(&buf, o))

	text := buf.String()
	assert.Contains(t, text, "Book saved")
	assert.Contains(t, text, "Machado de Assis")
	assert.Contains(t, text, "Portuguese (pt)")
	assert.Contains(t, text, "1,200")
}
