package cache

// SQL schemas for cache tables
// All cache tables use "cache_key" as the primary key column for consistency

// GutendexTable holds raw Gutendex search responses keyed by request URL
const GutendexTable = "gutendex_cache"

// GutendexCacheSchema defines the schema for the Gutendex response cache
const GutendexCacheSchema = `
CREATE TABLE IF NOT EXISTS gutendex_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_gutendex_cached_at ON gutendex_cache(cached_at);
`

// AllCacheSchemas lists the schemas created when a cache database is opened
var AllCacheSchemas = []string{
	GutendexCacheSchema,
}

// ValidCacheTableNames whitelists table names accepted by the cache API
var ValidCacheTableNames = map[string]bool{
	GutendexTable: true,
}

// SourceTables maps user-facing source names to cache tables
var SourceTables = map[string]string{
	"gutendex": GutendexTable,
}
