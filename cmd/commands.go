package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lepinkainen/literalura/internal/cache"
	"github.com/lepinkainen/literalura/internal/catalog"
	"github.com/lepinkainen/literalura/internal/config"
	"github.com/lepinkainen/literalura/internal/export"
	"github.com/lepinkainen/literalura/internal/menu"
	"github.com/lepinkainen/literalura/internal/report"
)

// MenuCmd runs the interactive numbered menu.
type MenuCmd struct{}

// SearchCmd searches Gutendex and saves the chosen candidate.
type SearchCmd struct {
	Title    []string `arg:"" help:"Book title or keyword"`
	Language string   `short:"l" help:"Only consider results in this language code (e.g. pt)"`
}

// BooksCmd lists registered books.
type BooksCmd struct {
	Language string `short:"l" help:"Only list books in this language code"`
}

// AuthorsCmd lists registered authors.
type AuthorsCmd struct {
	AliveIn int    `name:"alive-in" help:"Only list authors alive in this year"`
	Name    string `help:"Show the first author whose name contains this text"`
}

// TopCmd ranks books by download count.
type TopCmd struct {
	N   int  `short:"n" help:"Number of books to list" default:"10"`
	Asc bool `help:"List the least downloaded books instead"`
}

// StatsCmd prints catalog statistics.
type StatsCmd struct{}

// ExportCmd writes a catalog snapshot to a file or publishes it to Datasette.
type ExportCmd struct {
	Format         string `short:"f" help:"File format" enum:"json,yaml,yml" default:"json"`
	Output         string `short:"o" help:"Output file path"`
	Force          bool   `help:"Replace the output file if it exists"`
	SQLite         string `name:"sqlite" help:"Also write the catalog into this SQLite file for datasette serve"`
	DatasetteURL   string `name:"datasette-url" help:"Publish to this Datasette instance instead of a file"`
	DatasetteToken string `name:"datasette-token" help:"Bearer token for the Datasette insert API"`
	DatasetteDB    string `name:"datasette-db" help:"Datasette database receiving the rows (default literalura)"`
}

// CacheCmd groups cache maintenance commands.
type CacheCmd struct {
	Clear CacheClearCmd `cmd:"" help:"Delete cached Gutendex responses"`
}

// CacheClearCmd invalidates cached responses.
type CacheClearCmd struct {
	Source string `arg:"" optional:"" help:"Cache source to clear (default all)" enum:"gutendex,all" default:"all"`
}

func (m *MenuCmd) Run(ctx context.Context) error {
	return withApp(ctx, func(a *app) error {
		return menu.New(stdin, stdout, a.catalog, a.report).Run(ctx)
	})
}

func (s *SearchCmd) Run(ctx context.Context) error {
	q := catalog.Query{Title: strings.Join(s.Title, " "), Language: s.Language}
	return withApp(ctx, func(a *app) error {
		outcome, err := a.catalog.Ingest(ctx, q)
		if err != nil {
			return err
		}
		return report.WriteOutcome(stdout, outcome)
	})
}

func (b *BooksCmd) Run(ctx context.Context) error {
	return withApp(ctx, func(a *app) error {
		if b.Language != "" {
			return a.report.BooksByLanguage(ctx, b.Language)
		}
		return a.report.Books(ctx)
	})
}

func (c *AuthorsCmd) Run(ctx context.Context) error {
	if c.AliveIn != 0 && c.Name != "" {
		return fmt.Errorf("--alive-in and --name cannot be combined")
	}
	return withApp(ctx, func(a *app) error {
		switch {
		case c.Name != "":
			return a.report.AuthorByName(ctx, c.Name)
		case c.AliveIn != 0:
			return a.report.AuthorsAliveIn(ctx, c.AliveIn)
		default:
			return a.report.Authors(ctx)
		}
	})
}

func (t *TopCmd) Run(ctx context.Context) error {
	if t.N <= 0 {
		return fmt.Errorf("-n must be positive, got %d", t.N)
	}
	return withApp(ctx, func(a *app) error {
		if t.Asc {
			return a.report.LeastDownloaded(ctx, t.N)
		}
		return a.report.TopBooks(ctx, t.N)
	})
}

func (s *StatsCmd) Run(ctx context.Context) error {
	return withApp(ctx, func(a *app) error {
		return a.report.Statistics(ctx)
	})
}

func (e *ExportCmd) Run(ctx context.Context) error {
	datasetteURL := firstNonEmpty(e.DatasetteURL, config.DatasetteURL)
	if e.Output == "" && e.SQLite == "" && datasetteURL == "" {
		return fmt.Errorf("an output file (-o), a SQLite file (--sqlite) or a Datasette URL (--datasette-url or datasette.url in config) is required")
	}

	format, err := export.ParseFormat(e.Format)
	if err != nil {
		return err
	}

	return withApp(ctx, func(a *app) error {
		snap, err := export.Take(ctx, a.db)
		if err != nil {
			return err
		}

		if e.Output != "" {
			if err := snap.WriteFile(e.Output, format, e.Force); err != nil {
				return err
			}
			slog.Info("Catalog exported", "path", e.Output, "format", format, "authors", len(snap.Authors), "books", len(snap.Books))
		}

		if e.SQLite != "" {
			if err := exportSQLite(ctx, e.SQLite, snap); err != nil {
				return err
			}
			slog.Info("Catalog written to SQLite", "path", e.SQLite, "authors", len(snap.Authors), "books", len(snap.Books))
		}

		if datasetteURL != "" {
			client := export.NewDatasetteClient(
				datasetteURL,
				firstNonEmpty(e.DatasetteToken, config.DatasetteToken),
				firstNonEmpty(e.DatasetteDB, config.DatasetteDB),
			)
			if err := export.Publish(ctx, client, snap); err != nil {
				return err
			}
			slog.Info("Catalog published", "url", datasetteURL, "authors", len(snap.Authors), "books", len(snap.Books))
		}
		return nil
	})
}

func exportSQLite(ctx context.Context, path string, snap *export.Snapshot) (err error) {
	w, err := export.OpenSQLiteWriter(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, w.Close())
	}()
	return export.Publish(ctx, w, snap)
}

func (c *CacheClearCmd) Run() error {
	db, err := cache.Open(config.CacheDBFile, config.CacheTTL)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	for source, table := range cache.SourceTables {
		if c.Source != "all" && c.Source != source {
			continue
		}
		removed, err := db.Invalidate(table)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(stdout, "Cleared %d cached %s responses\n", removed, source)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
