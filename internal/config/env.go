package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// applyEnvOverrides overlays environment variables onto cfg. Malformed
// values are reported together rather than silently ignored.
func applyEnvOverrides(cfg *Config) error {
	e := &envReader{}

	// Server
	e.stringVar("RUN_MODE", &cfg.Server.Mode)
	e.stringVar("HOST", &cfg.Server.Host)
	e.intVar("PORT", &cfg.Server.Port)
	e.stringVar("JWT_SECRET", &cfg.Server.JWTSecret)
	e.stringVar("API_KEY", &cfg.Server.APIKey)
	e.intVar("TOKEN_TTL", &cfg.Server.TokenTTL)
	e.listVar("ALLOWED_ORIGINS", &cfg.Server.AllowedOrigins)

	// Cache
	e.boolVar("CACHE_ENABLED", &cfg.Cache.Enabled)
	e.intVar("CACHE_TTL", &cfg.Cache.TTL)
	e.intVar("MAX_CACHE_SIZE", &cfg.Cache.MaxSizeMB)
	e.stringVar("CACHE_DIR", &cfg.Cache.Dir)
	e.intVar("CACHE_HOT_SIZE", &cfg.Cache.HotSize)
	e.stringVar("CACHE_MAINTENANCE_SCHEDULE", &cfg.Cache.Schedule)

	// Search
	e.listVar("FALLBACK_CHAIN", &cfg.Search.FallbackChain)
	e.boolVar("FALLBACK_ENABLED", &cfg.Search.FallbackEnabled)
	e.floatVar("SEARCH_TIMEOUT", &cfg.Search.Timeout)
	e.floatVar("REQUEST_DELAY", &cfg.Search.RequestDelay)
	e.stringVar("BRAVE_API_KEY", &cfg.Search.BraveAPIKey)
	e.stringVar("GOOGLE_API_KEY", &cfg.Search.GoogleAPIKey)
	e.stringVar("GOOGLE_SEARCH_ENGINE_ID", &cfg.Search.GoogleSearchEngineID)

	// Research
	e.intVar("MAX_EXTRACTIONS", &cfg.Research.MaxExtractions)
	e.floatVar("RESEARCH_DEADLINE", &cfg.Research.Deadline)

	// Extraction
	e.floatVar("EXTRACTION_TIMEOUT", &cfg.Extraction.Timeout)
	e.boolVar("PRESERVE_CODE_BLOCKS", &cfg.Extraction.PreserveCodeBlocks)

	// Storage
	e.stringVar("DATABASE_URL", &cfg.Storage.DatabaseURL)
	e.stringVar("REDIS_URL", &cfg.Storage.RedisURL)
	e.stringVar("MEMORY_PATH", &cfg.Storage.MemoryPath)

	// Logging
	e.stringVar("LOG_LEVEL", &cfg.Logging.Level)
	e.stringVar("LOG_FORMAT", &cfg.Logging.Format)

	if len(e.errs) > 0 {
		return fmt.Errorf("invalid environment: %w", errors.Join(e.errs...))
	}
	return nil
}

type envReader struct {
	errs []error
}

func (e *envReader) lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (e *envReader) stringVar(key string, dst *string) {
	if v, ok := e.lookup(key); ok {
		*dst = v
	}
}

func (e *envReader) intVar(key string, dst *int) {
	v, ok := e.lookup(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %q is not an integer", key, v))
		return
	}
	*dst = n
}

func (e *envReader) floatVar(key string, dst *float64) {
	v, ok := e.lookup(key)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %q is not a number", key, v))
		return
	}
	*dst = f
}

func (e *envReader) boolVar(key string, dst *bool) {
	v, ok := e.lookup(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %q is not a boolean", key, v))
		return
	}
	*dst = b
}

// listVar splits a comma separated value, dropping empty items
func (e *envReader) listVar(key string, dst *[]string) {
	v, ok := e.lookup(key)
	if !ok {
		return
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	*dst = out
}
