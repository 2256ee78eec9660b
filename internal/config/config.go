package config

import (
	"log/slog"
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultAPIBaseURL is the public Gutendex instance.
	DefaultAPIBaseURL = "https://gutendex.com"
	// DefaultDB is the SQLite catalog created in the working directory.
	DefaultDB = "./literalura.db"
	// DefaultCacheTTL keeps Gutendex responses for a day.
	DefaultCacheTTL = 24 * time.Hour
)

// Global configuration variables
var (
	// DB is the catalog location: a SQLite file path or a postgres:// URL
	DB string
	// APIBaseURL is the Gutendex base URL, without the /books/ path
	APIBaseURL string
	// RequestsPerSecond limits outbound Gutendex calls; 0 disables the limiter
	RequestsPerSecond float64
	// CacheEnabled controls whether Gutendex responses are cached
	CacheEnabled bool
	// CacheDBFile is the SQLite file holding cached responses
	CacheDBFile string
	// CacheTTL is how long a cached response stays valid
	CacheTTL time.Duration
	// Choose enables the interactive candidate picker
	Choose bool
	// DatasetteURL is the remote Datasette instance used by export
	DatasetteURL string
	// DatasetteToken is the bearer token for the Datasette insert API
	DatasetteToken string
	// DatasetteDB is the Datasette database that receives exported rows
	DatasetteDB string
)

// SetDefaults registers the default values with viper
func SetDefaults() {
	viper.SetDefault("db", DefaultDB)
	viper.SetDefault("api.baseurl", DefaultAPIBaseURL)
	viper.SetDefault("api.rps", 2)
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.dbfile", "./cache.db")
	viper.SetDefault("cache.ttl", DefaultCacheTTL.String())
	viper.SetDefault("choose", false)
	viper.SetDefault("datasette.url", "")
	viper.SetDefault("datasette.token", "")
	viper.SetDefault("datasette.database", "literalura")
}

// InitConfig initializes the global configuration
func InitConfig() {
	SetDefaults()

	DB = viper.GetString("db")
	APIBaseURL = viper.GetString("api.baseurl")
	RequestsPerSecond = viper.GetFloat64("api.rps")
	CacheEnabled = viper.GetBool("cache.enabled")
	CacheDBFile = viper.GetString("cache.dbfile")
	Choose = viper.GetBool("choose")
	DatasetteURL = viper.GetString("datasette.url")
	DatasetteToken = viper.GetString("datasette.token")
	DatasetteDB = viper.GetString("datasette.database")

	ttlStr := viper.GetString("cache.ttl")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		slog.Warn("Invalid cache TTL, using default", "ttl", ttlStr, "error", err)
		ttl = DefaultCacheTTL
	}
	CacheTTL = ttl
}
