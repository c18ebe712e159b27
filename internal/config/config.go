// Package config loads runtime settings from an optional TOML file with
// environment variable overrides.
//
// Priority: environment > config file > defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
)

const (
	// DefaultPath is read when no path is given and SERCHA_RESEARCH_CONFIG is unset
	DefaultPath = "sercha-research.toml"

	// PathEnv names the environment variable holding the config file path
	PathEnv = "SERCHA_RESEARCH_CONFIG"
)

// Run modes
const (
	ModeAPI   = "api"
	ModeMCP   = "mcp"
	ModeQuery = "query"
)

// Config is the complete runtime configuration
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Cache      CacheConfig      `toml:"cache"`
	Search     SearchConfig     `toml:"search"`
	Research   ResearchConfig   `toml:"research"`
	Extraction ExtractionConfig `toml:"extraction"`
	Storage    StorageConfig    `toml:"storage"`
	Logging    LoggingConfig    `toml:"logging"`
}

type ServerConfig struct {
	Mode           string   `toml:"mode" validate:"oneof=api mcp query"`
	Host           string   `toml:"host"`
	Port           int      `toml:"port" validate:"min=1,max=65535"`
	JWTSecret      string   `toml:"jwt_secret" validate:"required"`
	APIKey         string   `toml:"api_key"`                    // Empty disables authentication
	TokenTTL       int      `toml:"token_ttl" validate:"min=60"` // Seconds
	AllowedOrigins []string `toml:"allowed_origins"`
}

type CacheConfig struct {
	Enabled   bool   `toml:"enabled"`
	TTL       int    `toml:"ttl" validate:"min=1"`         // Seconds
	MaxSizeMB int    `toml:"max_size_mb" validate:"min=1"` // Cold tier budget
	Dir       string `toml:"dir" validate:"required"`
	HotSize   int    `toml:"hot_size" validate:"min=1"`   // LRU slots
	HotWindow int    `toml:"hot_window" validate:"min=1"` // Seconds
	Schedule  string `toml:"maintenance_schedule" validate:"required"`
}

type SearchConfig struct {
	FallbackChain        []string `toml:"fallback_chain" validate:"min=1,dive,oneof=brave duckduckgo google"`
	FallbackEnabled      bool     `toml:"fallback_enabled"`
	Timeout              float64  `toml:"timeout" validate:"gt=0"`        // Seconds, per provider
	RequestDelay         float64  `toml:"request_delay" validate:"gte=0"` // Seconds between requests to one provider
	MaxRetries           int      `toml:"max_retries" validate:"min=0,max=10"`
	BraveAPIKey          string   `toml:"brave_api_key"`
	GoogleAPIKey         string   `toml:"google_api_key"`
	GoogleSearchEngineID string   `toml:"google_search_engine_id" validate:"required_with=GoogleAPIKey"`
}

type ResearchConfig struct {
	MaxExtractions int     `toml:"max_extractions" validate:"min=1,max=10"`
	MaxResults     int     `toml:"max_results" validate:"min=1,max=50"`
	MinGoodResults int     `toml:"min_good_results" validate:"min=1"`
	MaxIterations  int     `toml:"max_iterations" validate:"min=1,max=20"`
	MinQuality     float64 `toml:"min_quality" validate:"gte=0,lte=1"`
	Deadline       float64 `toml:"deadline" validate:"gte=0"` // Seconds, zero for none

	// ExtractMinGoodResults replaces MinGoodResults for extract and analyze modes
	ExtractMinGoodResults int `toml:"extract_min_good_results" validate:"min=1"`
}

type ExtractionConfig struct {
	PreserveCodeBlocks bool    `toml:"preserve_code_blocks"`
	Timeout            float64 `toml:"timeout" validate:"gt=0"` // Seconds
	ChunkSize          int     `toml:"chunk_size" validate:"min=100"`
	ChunkOverlap       int     `toml:"chunk_overlap" validate:"min=0,ltfield=ChunkSize"`
	UserAgent          string  `toml:"user_agent" validate:"required"`
	MaxBytes           int64   `toml:"max_bytes" validate:"min=1024"`
}

type StorageConfig struct {
	DatabaseURL string `toml:"database_url"` // Empty uses the in-process memory store
	RedisURL    string `toml:"redis_url"`    // Empty uses the disk cold tier
	MemoryPath  string `toml:"memory_path"`  // Snapshot file for the in-process store
}

type LoggingConfig struct {
	Level  string `toml:"level" validate:"oneof=debug info warn error"`
	Format string `toml:"format" validate:"oneof=text json"`
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Mode:      ModeAPI,
			Host:      "0.0.0.0",
			Port:      8080,
			JWTSecret: "development-secret-change-in-production",
			TokenTTL:  3600,
		},
		Cache: CacheConfig{
			Enabled:   true,
			TTL:       300,
			MaxSizeMB: 100,
			Dir:       "~/.sercha/web_cache",
			HotSize:   1024,
			HotWindow: 60,
			Schedule:  "@every 10m",
		},
		Search: SearchConfig{
			FallbackChain:   []string{"brave", "duckduckgo", "google"},
			FallbackEnabled: true,
			Timeout:         30,
			RequestDelay:    0.5,
			MaxRetries:      2,
		},
		Research: ResearchConfig{
			MaxExtractions: domain.DefaultMaxExtractions,
			MaxResults:     domain.DefaultMaxResults,
			MinGoodResults: domain.DefaultMinGoodResults,
			MaxIterations:  domain.DefaultMaxIterations,
			MinQuality:     domain.DefaultMinQualityThreshold,
			Deadline:       120,

			ExtractMinGoodResults: domain.DefaultExtractMinGoodResults,
		},
		Extraction: ExtractionConfig{
			PreserveCodeBlocks: true,
			Timeout:            30,
			ChunkSize:          1000,
			ChunkOverlap:       200,
			UserAgent:          "SerchaResearch/1.0",
			MaxBytes:           10 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from path, then applies environment overrides
// and validates the result. An empty path falls back to SERCHA_RESEARCH_CONFIG
// and then DefaultPath; only an explicitly named file must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(PathEnv)
		explicit = path != ""
	}
	if path == "" {
		path = DefaultPath
	}

	// A missing default file means defaults and environment only
	if err := cfg.mergeFile(path); err != nil && (explicit || !errors.Is(err, os.ErrNotExist)) {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks field constraints and normalises the cache directory
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	dir, err := expandHome(c.Cache.Dir)
	if err != nil {
		return fmt.Errorf("invalid configuration: cache dir: %w", err)
	}
	c.Cache.Dir = dir
	return nil
}

// AuthEnabled reports whether the HTTP API requires a token
func (c *Config) AuthEnabled() bool {
	return c.Server.APIKey != ""
}

// TokenTTLDuration returns the access token lifetime
func (s ServerConfig) TokenTTLDuration() time.Duration {
	return time.Duration(s.TokenTTL) * time.Second
}

// HotWindowDuration returns how long hot tier entries are trusted
func (c CacheConfig) HotWindowDuration() time.Duration {
	return time.Duration(c.HotWindow) * time.Second
}

// Chain returns the configured fallback order
func (s SearchConfig) Chain() []domain.ProviderID {
	return domain.ParseProviderIDs(s.FallbackChain)
}

func (s SearchConfig) TimeoutDuration() time.Duration { return seconds(s.Timeout) }

// RequestDelayDuration returns the per-provider request gap. Zero disables
// throttling, which the provider client expresses as a negative delay.
func (s SearchConfig) RequestDelayDuration() time.Duration {
	if s.RequestDelay == 0 {
		return -1
	}
	return seconds(s.RequestDelay)
}

// Retries returns the retry count in provider client terms
func (s SearchConfig) Retries() int {
	if s.MaxRetries == 0 {
		return -1
	}
	return s.MaxRetries
}

func (r ResearchConfig) DeadlineDuration() time.Duration { return seconds(r.Deadline) }

func (e ExtractionConfig) TimeoutDuration() time.Duration { return seconds(e.Timeout) }

// LoopDefaults maps research and search settings onto loop defaults
func (c *Config) LoopDefaults() domain.LoopContext {
	lc := domain.DefaultLoopContext()
	lc.FallbackChain = c.Search.Chain()
	lc.Fallback = c.Search.FallbackEnabled
	lc.MaxResults = c.Research.MaxResults
	lc.MaxExtractions = c.Research.MaxExtractions
	lc.MinGoodResults = c.Research.MinGoodResults
	lc.MaxIterations = c.Research.MaxIterations
	lc.MinQualityThreshold = c.Research.MinQuality
	lc.PreserveCode = c.Extraction.PreserveCodeBlocks
	lc.Deadline = c.Research.DeadlineDuration()
	return lc
}

// NewLogger builds a slog logger for the configured level and format
func (l LoggingConfig) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
