package store

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"pgregory.net/rapid"
)

type genAuthor struct {
	birth *int
	death *int
}

func genOptionalYear(t *rapid.T, label string) *int {
	if rapid.Bool().Draw(t, label+"Known") {
		v := rapid.IntRange(1500, 2020).Draw(t, label)
		return &v
	}
	return nil
}

func TestAliveInYearProperty(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	rapid.Check(t, func(t *rapid.T) {
		if _, err := db.exec(ctx, `DELETE FROM books`); err != nil {
			t.Fatalf("reset books: %v", err)
		}
		if _, err := db.exec(ctx, `DELETE FROM authors`); err != nil {
			t.Fatalf("reset authors: %v", err)
		}

		n := rapid.IntRange(0, 12).Draw(t, "authors")
		expected := make(map[string]bool)
		y := rapid.IntRange(1500, 2020).Draw(t, "year")

		for i := 0; i < n; i++ {
			g := genAuthor{birth: genOptionalYear(t, "birth"), death: genOptionalYear(t, "death")}
			name := fmt.Sprintf("Author %d", i)
			if err := db.SaveAuthor(ctx, &Author{Name: name, BirthYear: g.birth, DeathYear: g.death}); err != nil {
				t.Fatalf("save author: %v", err)
			}
			if g.birth != nil && g.death != nil && *g.birth <= y && y <= *g.death {
				expected[name] = true
			}
		}

		got, err := db.FindAuthorsAliveInYear(ctx, y)
		if err != nil {
			t.Fatalf("alive query: %v", err)
		}
		if len(got) != len(expected) {
			t.Fatalf("got %d authors, want %d", len(got), len(expected))
		}
		for _, a := range got {
			if !expected[a.Name] {
				t.Fatalf("unexpected author %q alive in %d", a.Name, y)
			}
			if a.DeathYear == nil {
				t.Fatalf("author %q with unknown death year returned", a.Name)
			}
		}
	})
}

func TestTopByDownloadsProperty(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	rapid.Check(t, func(t *rapid.T) {
		if _, err := db.exec(ctx, `DELETE FROM books`); err != nil {
			t.Fatalf("reset books: %v", err)
		}
		if _, err := db.exec(ctx, `DELETE FROM authors`); err != nil {
			t.Fatalf("reset authors: %v", err)
		}

		author := &Author{Name: "Prolific"}
		if err := db.SaveAuthor(ctx, author); err != nil {
			t.Fatalf("save author: %v", err)
		}

		counts := rapid.SliceOfN(rapid.IntRange(0, 50), 0, 25).Draw(t, "downloads")
		for i, c := range counts {
			b := &Book{Title: fmt.Sprintf("Book %d", i), Language: "en", DownloadCount: float64(c), AuthorID: author.ID}
			if err := db.SaveBook(ctx, b); err != nil {
				t.Fatalf("save book: %v", err)
			}
		}

		top, err := db.FindTopBooksByDownloads(ctx, 10, true)
		if err != nil {
			t.Fatalf("top query: %v", err)
		}

		want := len(counts)
		if want > 10 {
			want = 10
		}
		if len(top) != want {
			t.Fatalf("got %d books, want %d", len(top), want)
		}
		if !sort.SliceIsSorted(top, func(i, j int) bool { return top[i].DownloadCount > top[j].DownloadCount }) {
			t.Fatalf("books not in descending download order: %+v", top)
		}

		sorted := append([]int(nil), counts...)
		sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
		for i := range top {
			if top[i].DownloadCount != float64(sorted[i]) {
				t.Fatalf("position %d has %v downloads, want %d", i, top[i].DownloadCount, sorted[i])
			}
		}
	})
}
