package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/lepinkainen/literalura/internal/config"
	"github.com/mattn/go-isatty"
	"github.com/spf13/viper"
)

var (
	stdout io.Writer = os.Stdout
	stdin  io.Reader = os.Stdin

	isTerminal = func() bool {
		fd := os.Stdin.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
)

// CLI represents the complete command structure for the literalura application
type CLI struct {
	// Global flags
	DB       string `name:"db" help:"Catalog location: SQLite file path or postgres:// URL (default ./literalura.db)"`
	APIURL   string `name:"api-url" help:"Gutendex base URL (default https://gutendex.com)"`
	CacheDB  string `name:"cache-db" help:"Path to the response cache SQLite file (default ./cache.db)"`
	CacheTTL string `name:"cache-ttl" help:"Cache time-to-live duration (e.g. 2h, default 24h)"`
	NoCache  bool   `name:"no-cache" help:"Always query Gutendex, bypassing the response cache"`
	Choose   bool   `help:"Pick the search result interactively instead of taking the first one"`
	Debug    bool   `help:"Enable debug logging"`

	Menu    MenuCmd    `cmd:"" default:"1" help:"Run the interactive menu (default)"`
	Search  SearchCmd  `cmd:"" help:"Search Gutendex and save the chosen book"`
	Books   BooksCmd   `cmd:"" help:"List registered books"`
	Authors AuthorsCmd `cmd:"" help:"List registered authors"`
	Top     TopCmd     `cmd:"" help:"List books ranked by download count"`
	Stats   StatsCmd   `cmd:"" help:"Show catalog statistics"`
	Export  ExportCmd  `cmd:"" help:"Export the catalog to a file or a Datasette instance"`
	Cache   CacheCmd   `cmd:"" help:"Manage the Gutendex response cache"`
}

func newParser(cli *CLI, opts ...kong.Option) (*kong.Kong, error) {
	opts = append([]kong.Option{
		kong.Name("literalura"),
		kong.Description("Build a local book catalog from the Gutendex (Project Gutenberg) API."),
		kong.UsageOnError(),
	}, opts...)
	return kong.New(cli, opts...)
}

// Execute runs the Kong-based CLI
func Execute() {
	var cli CLI

	parser, err := newParser(&cli)
	if err != nil {
		panic(err)
	}

	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	initLogging(cli.Debug)
	initConfig()
	updateGlobalConfig(&cli)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, kctx); err != nil {
		slog.Error("Command failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, kctx *kong.Context) error {
	kctx.BindTo(ctx, (*context.Context)(nil))
	err := kctx.Run()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func initConfig() {
	config.SetDefaults()

	viper.SetEnvPrefix("LITERALURA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			slog.Debug("Config file not found, using defaults")
		} else {
			slog.Error("Failed to read config file", "error", err)
			os.Exit(1)
		}
	}

	config.InitConfig()
}

// updateGlobalConfig lets explicitly passed flags override config and env.
func updateGlobalConfig(cli *CLI) {
	if cli.DB != "" {
		viper.Set("db", cli.DB)
	}
	if cli.APIURL != "" {
		viper.Set("api.baseurl", cli.APIURL)
	}
	if cli.CacheDB != "" {
		viper.Set("cache.dbfile", cli.CacheDB)
	}
	if cli.CacheTTL != "" {
		viper.Set("cache.ttl", cli.CacheTTL)
	}
	if cli.NoCache {
		viper.Set("cache.enabled", false)
	}
	if cli.Choose {
		viper.Set("choose", true)
	}

	config.InitConfig()
}

func initLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	// stdout carries menu and report text
	handler := humanlog.NewHandler(os.Stderr, &humanlog.Options{
		Level: level,
	})

	slog.SetDefault(slog.New(handler))
}
