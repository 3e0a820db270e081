// Package config loads server settings from environment variables and the
// endpoint registry from a YAML or JSON file.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/usestring/apiscout-mcp/pkg/client"
	"github.com/usestring/apiscout-mcp/pkg/jsoncompact"
	"github.com/usestring/apiscout-mcp/pkg/schema"
)

// Token store backends.
const (
	TokenStoreMemory = "memory"
	TokenStoreRedis  = "redis"
)

// Config holds all configuration for the MCP server.
type Config struct {
	EndpointsFile  string // APISCOUT_ENDPOINTS_FILE, default "endpoints.yaml"
	WatchEndpoints bool   // APISCOUT_WATCH_ENDPOINTS, default false

	HTTPClientTimeout time.Duration // HTTP_CLIENT_TIMEOUT_MS, default 30000ms (30s)
	MaxResponseBytes  int64         // MAX_RESPONSE_BYTES, default 10 MiB

	// Type detection
	SampleSize      int  // SAMPLE_SIZE, default 5
	StrictTypes     bool // STRICT_TYPES, default false
	MaxNestingDepth int  // MAX_NESTING_DEPTH, default 32

	AnalyzeWorkers      int    // ANALYZE_WORKERS, default 4
	ResultCacheMaxItems int    // RESULT_CACHE_MAX_ITEMS, default 256
	QueryCacheMaxItems  int    // QUERY_CACHE_MAX_ITEMS, default 128
	TokenStore          string // TOKEN_STORE, "memory" or "redis", default "memory"

	// Compaction of sample data in tool output
	CompactMaxArrayItems int // COMPACT_MAX_ARRAY_ITEMS
	CompactMaxStringLen  int // COMPACT_MAX_STRING_LEN
	CompactMaxDepth      int // COMPACT_MAX_DEPTH

	// Logging configuration
	LogLevel      string // LOG_LEVEL, default "info"
	LogFile       string // LOG_FILE, default "" (stderr only)
	LogMaxSizeMB  int    // LOG_MAX_SIZE_MB, default 10
	LogMaxBackups int    // LOG_MAX_BACKUPS, default 5
	LogMaxAgeDays int    // LOG_MAX_AGE_DAYS, default 28
	LogCompress   bool   // LOG_COMPRESS, default true
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		EndpointsFile:  getEnvString("APISCOUT_ENDPOINTS_FILE", "endpoints.yaml"),
		WatchEndpoints: getEnvBool("APISCOUT_WATCH_ENDPOINTS", false),

		HTTPClientTimeout: getEnvDurationMs("HTTP_CLIENT_TIMEOUT_MS", int(client.DefaultTimeout/time.Millisecond)),
		MaxResponseBytes:  int64(getEnvInt("MAX_RESPONSE_BYTES", int(client.DefaultMaxBodyBytes))),

		SampleSize:      getEnvInt("SAMPLE_SIZE", schema.DefaultSampleSize),
		StrictTypes:     getEnvBool("STRICT_TYPES", false),
		MaxNestingDepth: getEnvInt("MAX_NESTING_DEPTH", schema.DefaultMaxDepth),

		AnalyzeWorkers:      getEnvInt("ANALYZE_WORKERS", 4),
		ResultCacheMaxItems: getEnvInt("RESULT_CACHE_MAX_ITEMS", 256),
		QueryCacheMaxItems:  getEnvInt("QUERY_CACHE_MAX_ITEMS", 128),
		TokenStore:          strings.ToLower(getEnvString("TOKEN_STORE", TokenStoreMemory)),

		CompactMaxArrayItems: getEnvInt("COMPACT_MAX_ARRAY_ITEMS", jsoncompact.DefaultMaxArrayItems),
		CompactMaxStringLen:  getEnvInt("COMPACT_MAX_STRING_LEN", jsoncompact.DefaultMaxStringLen),
		CompactMaxDepth:      getEnvInt("COMPACT_MAX_DEPTH", jsoncompact.DefaultMaxDepth),

		LogLevel:      getEnvString("LOG_LEVEL", "info"),
		LogFile:       getEnvString("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		LogCompress:   getEnvBool("LOG_COMPRESS", true),
	}
}

// CompactOptions returns the sample compaction settings.
func (c *Config) CompactOptions() *jsoncompact.Options {
	return &jsoncompact.Options{
		MaxArrayItems: c.CompactMaxArrayItems,
		MaxStringLen:  c.CompactMaxStringLen,
		MaxDepth:      c.CompactMaxDepth,
	}
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultVal
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDurationMs(key string, defaultMs int) time.Duration {
	ms := getEnvInt(key, defaultMs)
	return time.Duration(ms) * time.Millisecond
}
