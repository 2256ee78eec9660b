package testutil

import (
	"testing"
	"time"

	"github.com/lepinkainen/literalura/internal/config"
	"github.com/spf13/viper"
)

// ConfigState holds the state of the config package variables.
type ConfigState struct {
	DB                string
	APIBaseURL        string
	RequestsPerSecond float64
	CacheEnabled      bool
	CacheDBFile       string
	CacheTTL          time.Duration
	Choose            bool
	DatasetteURL      string
	DatasetteToken    string
	DatasetteDB       string
}

// SaveConfigState captures the current state of config package variables.
func SaveConfigState() ConfigState {
	return ConfigState{
		DB:                config.DB,
		APIBaseURL:        config.APIBaseURL,
		RequestsPerSecond: config.RequestsPerSecond,
		CacheEnabled:      config.CacheEnabled,
		CacheDBFile:       config.CacheDBFile,
		CacheTTL:          config.CacheTTL,
		Choose:            config.Choose,
		DatasetteURL:      config.DatasetteURL,
		DatasetteToken:    config.DatasetteToken,
		DatasetteDB:       config.DatasetteDB,
	}
}

// RestoreConfigState restores the config package variables to a saved state.
func RestoreConfigState(state ConfigState) {
	config.DB = state.DB
	config.APIBaseURL = state.APIBaseURL
	config.RequestsPerSecond = state.RequestsPerSecond
	config.CacheEnabled = state.CacheEnabled
	config.CacheDBFile = state.CacheDBFile
	config.CacheTTL = state.CacheTTL
	config.Choose = state.Choose
	config.DatasetteURL = state.DatasetteURL
	config.DatasetteToken = state.DatasetteToken
	config.DatasetteDB = state.DatasetteDB
}

// ResetConfig saves the current config state, resets viper and schedules
// restoration when the test completes.
func ResetConfig(t *testing.T) {
	t.Helper()

	state := SaveConfigState()
	viper.Reset()

	t.Cleanup(func() {
		RestoreConfigState(state)
		viper.Reset()
	})
}

// SetTestConfig points every configured path into env and disables the
// response cache and rate limiter.
func SetTestConfig(t *testing.T, env *TestEnv, apiBaseURL string) {
	t.Helper()

	ResetConfig(t)

	viper.Set("db", env.Path("catalog.db"))
	viper.Set("api.baseurl", apiBaseURL)
	viper.Set("api.rps", 0)
	viper.Set("cache.enabled", false)
	viper.Set("cache.dbfile", env.Path("cache.db"))
	config.InitConfig()
}
