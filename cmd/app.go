package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofrs/flock"
	"github.com/lepinkainen/literalura/internal/cache"
	"github.com/lepinkainen/literalura/internal/catalog"
	"github.com/lepinkainen/literalura/internal/config"
	"github.com/lepinkainen/literalura/internal/gutendex"
	"github.com/lepinkainen/literalura/internal/ratelimit"
	"github.com/lepinkainen/literalura/internal/report"
	"github.com/lepinkainen/literalura/internal/store"
	"github.com/lepinkainen/literalura/internal/tui"
)

// chooser is the interactive picker used by --choose on a terminal.
var chooser catalog.Chooser = tui.Choose

// app holds the resources shared by catalog commands for one process.
type app struct {
	db      *store.DB
	cache   *cache.CacheDB
	lock    *flock.Flock
	catalog *catalog.Service
	report  *report.Service
}

func openApp(ctx context.Context) (a *app, err error) {
	a = &app{}
	defer func() {
		if err != nil {
			err = errors.Join(err, a.Close())
			a = nil
		}
	}()

	if !store.IsPostgresDSN(config.DB) {
		a.lock = flock.New(config.DB + ".lock")
		ok, lockErr := a.lock.TryLock()
		if lockErr != nil {
			return a, fmt.Errorf("acquire catalog lock: %w", lockErr)
		}
		if !ok {
			a.lock = nil
			return a, fmt.Errorf("catalog %s is in use by another literalura process", config.DB)
		}
	}

	a.db, err = store.Open(config.DB)
	if err != nil {
		return a, err
	}
	if err := a.db.Migrate(ctx); err != nil {
		return a, err
	}
	schemaVersion, err := a.db.SchemaVersion(ctx)
	if err != nil {
		return a, err
	}

	if config.CacheEnabled {
		c, cacheErr := cache.Open(config.CacheDBFile, config.CacheTTL)
		if cacheErr != nil {
			slog.Warn("Response cache unavailable, continuing without it", "path", config.CacheDBFile, "error", cacheErr)
		} else {
			a.cache = c
			if removed, purgeErr := c.ClearExpired(cache.GutendexTable); purgeErr != nil {
				slog.Warn("Failed to purge expired cache entries", "path", c.Path(), "error", purgeErr)
			} else if removed > 0 {
				slog.Debug("Purged expired cache entries", "path", c.Path(), "removed", removed)
			}
		}
	}

	limiter := ratelimit.New("gutendex", config.RequestsPerSecond)
	client := gutendex.NewClient(
		gutendex.WithBaseURL(config.APIBaseURL),
		gutendex.WithRateLimiter(limiter),
		gutendex.WithCache(a.cache),
	)

	var opts []catalog.Option
	if config.Choose {
		if isTerminal() {
			opts = append(opts, catalog.WithChooser(chooser))
		} else {
			slog.Warn("Interactive choice needs a terminal, taking the first result")
		}
	}

	a.catalog = catalog.NewService(client, a.db, opts...)
	a.report = report.NewService(a.db, stdout)

	attrs := []any{
		"db", config.DB,
		"dialect", a.db.Dialect(),
		"schema_version", schemaVersion,
		"rate_limited", !limiter.Unlimited(),
	}
	if a.cache != nil {
		attrs = append(attrs, "cache", a.cache.Path(), "cache_ttl", a.cache.TTL())
	}
	slog.Debug("Catalog opened", attrs...)
	return a, nil
}

// Close releases the cache, the store and the catalog lock.
func (a *app) Close() error {
	var errs []error
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	if a.lock != nil {
		errs = append(errs, a.lock.Unlock())
	}
	return errors.Join(errs...)
}

// withApp opens the catalog for the duration of fn.
func withApp(ctx context.Context, fn func(a *app) error) (err error) {
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, a.Close())
	}()
	return fn(a)
}
