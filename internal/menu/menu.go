// Package menu runs the interactive numbered menu over a line-oriented
// reader and writer.
package menu

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/lepinkainen/literalura/internal/catalog"
	apperrors "github.com/lepinkainen/literalura/internal/errors"
	"github.com/lepinkainen/literalura/internal/report"
)

const banner = `
*** Welcome to LiterAlura ***

Choose an option:
1 - Search book by title
2 - List registered books
3 - List registered authors
4 - List authors alive in a given year
5 - List books in a given language
6 - Download statistics
7 - Top 10 most downloaded books
8 - Find author by name

0 - Exit
`

const languagePrompt = `Language code:
es - Spanish
en - English
fr - French
pt - Portuguese`

// Ingester runs the search-and-save workflow.
type Ingester interface {
	Ingest(ctx context.Context, q catalog.Query) (*catalog.Outcome, error)
}

// Reporter renders catalog listings.
type Reporter interface {
	Books(ctx context.Context) error
	Authors(ctx context.Context) error
	AuthorsAliveIn(ctx context.Context, year int) error
	BooksByLanguage(ctx context.Context, code string) error
	Statistics(ctx context.Context) error
	TopBooks(ctx context.Context, n int) error
	AuthorByName(ctx context.Context, q string) error
}

// Menu is one interactive session.
type Menu struct {
	in       *bufio.Scanner
	out      io.Writer
	ingester Ingester
	reporter Reporter
}

// New creates a menu reading commands from in and writing to out.
func New(in io.Reader, out io.Writer, ingester Ingester, reporter Reporter) *Menu {
	return &Menu{
		in:       bufio.NewScanner(in),
		out:      out,
		ingester: ingester,
		reporter: reporter,
	}
}

// Run loops until the user picks 0, input ends or ctx is cancelled.
// Failures inside an option are reported and the loop continues.
func (m *Menu) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		m.print(banner)
		line, ok := m.readLine()
		if !ok {
			m.print("Exiting LiterAlura. See you next time!\n")
			return m.in.Err()
		}

		option, err := strconv.Atoi(line)
		if err != nil {
			m.print("Please enter a valid whole number.\n")
			continue
		}
		if option == 0 {
			m.print("Exiting LiterAlura. See you next time!\n")
			return nil
		}

		action, ok := m.action(option)
		if !ok {
			m.print("Invalid option. Try again.\n")
			continue
		}

		if err := action(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Error("Menu option failed", "option", option, "error", err)
			m.print(fmt.Sprintf("Operation failed: %v\n", err))
			if hint := failureHint(err); hint != "" {
				m.print(hint + "\n")
			}
		}
	}
}

// failureHint suggests what the user can do about a failed option.
func failureHint(err error) string {
	switch {
	case apperrors.IsRateLimitError(err):
		return "Gutendex is limiting requests. Wait a moment before searching again."
	case apperrors.IsTransportError(err):
		return "Could not reach Gutendex. Check your network connection or the --api-url setting."
	case apperrors.IsPayloadError(err):
		return "Gutendex sent a response that could not be read. Try again later."
	default:
		return ""
	}
}

func (m *Menu) action(option int) (func(context.Context) error, bool) {
	switch option {
	case 1:
		return m.searchAndSave, true
	case 2:
		return m.reporter.Books, true
	case 3:
		return m.reporter.Authors, true
	case 4:
		return m.authorsAliveIn, true
	case 5:
		return m.booksByLanguage, true
	case 6:
		return m.reporter.Statistics, true
	case 7:
		return func(ctx context.Context) error { return m.reporter.TopBooks(ctx, report.DefaultTopN) }, true
	case 8:
		return m.authorByName, true
	default:
		return nil, false
	}
}

func (m *Menu) searchAndSave(ctx context.Context) error {
	title, ok := m.prompt("Enter the book title or a keyword to search:")
	if !ok {
		return nil
	}
	if title == "" {
		m.print("The title cannot be empty.\n")
		return nil
	}
	language, ok := m.prompt("Language code to filter by (Enter for any):")
	if !ok {
		return nil
	}

	m.print("Searching Gutendex...\n")
	outcome, err := m.ingester.Ingest(ctx, catalog.Query{Title: title, Language: language})
	if err != nil {
		return err
	}
	return report.WriteOutcome(m.out, outcome)
}

func (m *Menu) authorsAliveIn(ctx context.Context) error {
	line, ok := m.prompt("Enter the year to search for living authors:")
	if !ok {
		return nil
	}
	year, err := strconv.Atoi(line)
	if err != nil {
		m.print("Please enter a valid year.\n")
		return nil
	}
	return m.reporter.AuthorsAliveIn(ctx, year)
}

func (m *Menu) booksByLanguage(ctx context.Context) error {
	code, ok := m.prompt(languagePrompt)
	if !ok || code == "" {
		return nil
	}
	return m.reporter.BooksByLanguage(ctx, code)
}

func (m *Menu) authorByName(ctx context.Context) error {
	name, ok := m.prompt("Enter the author's name or part of it:")
	if !ok || name == "" {
		return nil
	}
	return m.reporter.AuthorByName(ctx, name)
}

func (m *Menu) prompt(question string) (string, bool) {
	m.print(question + "\n")
	return m.readLine()
}

func (m *Menu) readLine() (string, bool) {
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *Menu) print(s string) {
	_, _ = io.WriteString(m.out, s)
}
