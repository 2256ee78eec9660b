package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/lepinkainen/literalura/internal/catalog"
)

// WriteOutcome prints the user-facing message for an ingestion result.
func WriteOutcome(w io.Writer, o *catalog.Outcome) error {
	var msg string
	switch o.Status {
	case catalog.StatusSaved:
		b := o.Book
		rows := [][]string{
			{"Title", b.Title},
			{"Author", b.AuthorName},
			{"Language", LanguageName(b.Language)},
			{"Downloads", Downloads(b.DownloadCount)},
		}
		_, err := fmt.Fprintf(w, "\nBook saved\n%s\n", renderTable(nil, rows, nil))
		return err
	case catalog.StatusDuplicate:
		msg = fmt.Sprintf("%q is already registered.", o.Book.Title)
	case catalog.StatusNotFound:
		msg = fmt.Sprintf("No books found for %q.", o.Query.Title)
		if o.Query.Language != "" {
			msg = fmt.Sprintf("No books found for %q in any language.", o.Query.Title)
		}
	case catalog.StatusNotInLanguage:
		names := make([]string, 0, len(o.AvailableLanguages))
		for _, code := range o.AvailableLanguages {
			names = append(names, LanguageName(code))
		}
		msg = fmt.Sprintf("No books found for %q in %s. Available in: %s.",
			o.Query.Title, LanguageName(o.Query.Language), strings.Join(names, ", "))
	case catalog.StatusNoAuthor:
		msg = fmt.Sprintf("%q has no author and was not saved.", o.Candidate.Title)
	case catalog.StatusCancelled:
		msg = "Operation cancelled."
	default:
		msg = o.Status.String()
	}
	_, err := fmt.Fprintln(w, msg)
	return err
}
