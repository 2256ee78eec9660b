package cmd

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/gofrs/flock"
	"github.com/lepinkainen/literalura/internal/cache"
	"github.com/lepinkainen/literalura/internal/catalog"
	"github.com/lepinkainen/literalura/internal/config"
	"github.com/lepinkainen/literalura/internal/gutendex"
	"github.com/lepinkainen/literalura/internal/testutil"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const domCasmurro = `{"count":2,"next":null,"previous":null,"results":[
	{"id":55752,"title":"Dom Casmurro","authors":[{"name":"Machado de Assis","birth_year":1839,"death_year":1908}],"languages":["pt"],"download_count":1200},
	{"id":55753,"title":"Dom Casmurro (English)","authors":[{"name":"Machado de Assis","birth_year":1839,"death_year":1908}],"languages":["en"],"download_count":300}
]}`

func resetCmdState(t *testing.T) {
	t.Helper()

	origStdout, origStdin, origTerminal, origChooser := stdout, stdin, isTerminal, chooser
	t.Cleanup(func() {
		stdout, stdin, isTerminal, chooser = origStdout, origStdin, origTerminal, origChooser
	})

	stdin = strings.NewReader("")
	isTerminal = func() bool { return false }
	testutil.ResetConfig(t)
}

func parseCLI(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()

	cli := &CLI{}
	parser, err := newParser(cli, kong.Exit(func(code int) {
		t.Fatalf("unexpected Kong exit %d", code)
	}))
	require.NoError(t, err)

	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	return cli, kctx
}

// setupCatalog points the config at a sandbox and a Gutendex stub.
func setupCatalog(t *testing.T) (*testutil.TestEnv, *testutil.GutendexStub) {
	t.Helper()
	resetCmdState(t)

	env := testutil.NewTestEnv(t)
	stub := testutil.NewGutendexStub(t)
	stub.Respond("search=Dom%20Casmurro", domCasmurro)
	testutil.SetTestConfig(t, env, stub.URL())
	return env, stub
}

func execCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cli, kctx := parseCLI(t, args...)
	updateGlobalConfig(cli)

	var out bytes.Buffer
	stdout = &out
	err := run(context.Background(), kctx)
	return out.String(), err
}

func TestDefaultCommandIsMenu(t *testing.T) {
	resetCmdState(t)

	_, kctx := parseCLI(t)
	assert.Equal(t, "menu", kctx.Command())
}

func TestSearchCommandParsing(t *testing.T) {
	resetCmdState(t)

	cli, kctx := parseCLI(t, "--db", "books.db", "--no-cache", "search", "Dom", "Casmurro", "-l", "pt")

	assert.Equal(t, "search <title>", kctx.Command())
	assert.Equal(t, []string{"Dom", "Casmurro"}, cli.Search.Title)
	assert.Equal(t, "pt", cli.Search.Language)
	assert.Equal(t, "books.db", cli.DB)
	assert.True(t, cli.NoCache)
}

func TestTopAndExportDefaults(t *testing.T) {
	resetCmdState(t)

	cli, _ := parseCLI(t, "top")
	assert.Equal(t, 10, cli.Top.N)
	assert.False(t, cli.Top.Asc)

	cli, _ = parseCLI(t, "export", "-o", "catalog.json")
	assert.Equal(t, "json", cli.Export.Format)
	assert.Equal(t, "catalog.json", cli.Export.Output)
}

func TestUpdateGlobalConfig(t *testing.T) {
	resetCmdState(t)

	viper.Set("db", "from-config.db")

	updateGlobalConfig(&CLI{})
	assert.Equal(t, "from-config.db", config.DB)
	assert.True(t, config.CacheEnabled)

	updateGlobalConfig(&CLI{
		DB:       "postgres://localhost/literalura",
		APIURL:   "http://127.0.0.1:9000",
		CacheDB:  "/tmp/cache.db",
		CacheTTL: "12h",
		NoCache:  true,
		Choose:   true,
	})

	assert.Equal(t, "postgres://localhost/literalura", config.DB)
	assert.Equal(t, "http://127.0.0.1:9000", config.APIBaseURL)
	assert.Equal(t, "/tmp/cache.db", config.CacheDBFile)
	assert.Equal(t, "12h0m0s", config.CacheTTL.String())
	assert.False(t, config.CacheEnabled)
	assert.True(t, config.Choose)
}

func TestSearchSavesThenReportsDuplicate(t *testing.T) {
	setupCatalog(t)

	out, err := execCLI(t, "search", "Dom", "Casmurro")
	require.NoError(t, err)
	assert.Contains(t, out, "Book saved")
	assert.Contains(t, out, "Machado de Assis")

	out, err = execCLI(t, "search", "Dom Casmurro")
	require.NoError(t, err)
	assert.Contains(t, out, "\"Dom Casmurro\" is already registered.")

	out, err = execCLI(t, "books")
	require.NoError(t, err)
	assert.Contains(t, out, "Portuguese (pt)")

	out, err = execCLI(t, "authors", "--alive-in", "1900")
	require.NoError(t, err)
	assert.Contains(t, out, "Machado de Assis")

	out, err = execCLI(t, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "1,200")
}

func TestSearchFailsFastOnTransportError(t *testing.T) {
	resetCmdState(t)
	env := testutil.NewTestEnv(t)
	testutil.SetTestConfig(t, env, "http://127.0.0.1:1")

	_, err := execCLI(t, "search", "Dom Casmurro")
	require.Error(t, err)
}

func TestChooseNeedsTerminal(t *testing.T) {
	setupCatalog(t)

	called := false
	chooser = func(_ context.Context, _ catalog.Query, candidates []gutendex.Book) (int, bool, error) {
		called = true
		return 1, true, nil
	}

	out, err := execCLI(t, "--choose", "search", "Dom Casmurro")
	require.NoError(t, err)
	assert.False(t, called)
	assert.Contains(t, out, "Portuguese (pt)")
}

func TestChooseOnTerminal(t *testing.T) {
	setupCatalog(t)
	isTerminal = func() bool { return true }
	chooser = func(_ context.Context, _ catalog.Query, candidates []gutendex.Book) (int, bool, error) {
		return 1, true, nil
	}

	out, err := execCLI(t, "--choose", "search", "Dom Casmurro")
	require.NoError(t, err)
	assert.Contains(t, out, "English (en)")
}

func TestMenuCommandReadsStdin(t *testing.T) {
	setupCatalog(t)
	stdin = strings.NewReader("6\n0\n")

	out, err := execCLI(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome to LiterAlura")
	assert.Contains(t, out, "no data")
	assert.Contains(t, out, "Exiting LiterAlura")
}

func TestCatalogLockedByAnotherProcess(t *testing.T) {
	setupCatalog(t)

	lock := flock.New(config.DB + ".lock")
	ok, err := lock.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	t.Cleanup(func() { _ = lock.Unlock() })

	_, err = execCLI(t, "stats")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "in use by another literalura process")
}

func TestTopRejectsNonPositive(t *testing.T) {
	setupCatalog(t)

	_, err := execCLI(t, "top", "-n", "0")
	require.Error(t, err)
}

func TestAuthorsRejectsCombinedFilters(t *testing.T) {
	setupCatalog(t)

	_, err := execCLI(t, "authors", "--alive-in", "1900", "--name", "machado")
	require.Error(t, err)
}

func TestExportToFile(t *testing.T) {
	env, _ := setupCatalog(t)

	_, err := execCLI(t, "search", "Dom Casmurro")
	require.NoError(t, err)

	_, err = execCLI(t, "export", "-f", "yaml", "-o", env.Path("out", "catalog.yaml"))
	require.NoError(t, err)

	content := env.ReadFileString("out/catalog.yaml")
	assert.Contains(t, content, "title: Dom Casmurro")
	assert.Contains(t, content, "name: Machado de Assis")
}

func TestExportRequiresDestination(t *testing.T) {
	setupCatalog(t)

	_, err := execCLI(t, "export")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Datasette URL")
}

func TestExportToSQLiteAndDatasette(t *testing.T) {
	env, _ := setupCatalog(t)

	var paths []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(ts.Close)

	_, err := execCLI(t, "search", "Dom Casmurro")
	require.NoError(t, err)

	_, err = execCLI(t, "export", "--sqlite", env.Path("datasette.db"), "--datasette-url", ts.URL)
	require.NoError(t, err)

	assert.True(t, env.FileExists("datasette.db"))
	assert.Equal(t, []string{"/-/insert/literalura/authors", "/-/insert/literalura/books"}, paths)
}

func TestExportKeepsExistingFile(t *testing.T) {
	env, _ := setupCatalog(t)
	env.WriteFileString("catalog.json", "keep")

	_, err := execCLI(t, "export", "-o", env.Path("catalog.json"))
	require.Error(t, err)
	assert.Equal(t, "keep", env.ReadFileString("catalog.json"))

	_, err = execCLI(t, "export", "-o", env.Path("catalog.json"), "--force")
	require.NoError(t, err)
	assert.Contains(t, env.ReadFileString("catalog.json"), "\"authors\": []")
}

func TestOpeningCatalogPurgesExpiredCacheEntries(t *testing.T) {
	env, _ := setupCatalog(t)
	viper.Set("cache.enabled", true)
	viper.Set("cache.dbfile", env.Path("cache.db"))

	c, err := cache.Open(env.Path("cache.db"), time.Hour)
	require.NoError(t, err)
	require.NoError(t, c.Set(cache.GutendexTable, "fresh", "{}"))
	require.NoError(t, c.Close())

	raw, err := sql.Open("sqlite", env.Path("cache.db"))
	require.NoError(t, err)
	defer raw.Close()
	_, err = raw.Exec("INSERT INTO gutendex_cache (cache_key, data, cached_at) VALUES (?, ?, ?)",
		"stale", "{}", time.Now().Add(-48*time.Hour).Unix())
	require.NoError(t, err)

	_, err = execCLI(t, "stats")
	require.NoError(t, err)

	var keys []string
	rows, err := raw.Query("SELECT cache_key FROM gutendex_cache ORDER BY cache_key")
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var key string
		require.NoError(t, rows.Scan(&key))
		keys = append(keys, key)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"fresh"}, keys)
}

func TestCacheClear(t *testing.T) {
	env, stub := setupCatalog(t)
	viper.Set("cache.enabled", true)
	viper.Set("cache.dbfile", env.Path("cache.db"))

	_, err := execCLI(t, "search", "Dom Casmurro")
	require.NoError(t, err)
	_, err = execCLI(t, "search", "Dom Casmurro")
	require.NoError(t, err)
	assert.Len(t, stub.Requests(), 1)

	out, err := execCLI(t, "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared 1 cached gutendex responses")

	_, err = execCLI(t, "search", "Dom Casmurro")
	require.NoError(t, err)
	assert.Len(t, stub.Requests(), 2)
}
