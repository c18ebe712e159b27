package main

// @title           Sercha Research API
// @version         1.0
// @description     Web research orchestration. Sercha Research searches the web across several providers, extracts pages and scores the results through a reasoning loop.

// @contact.name   Sercha OSS
// @contact.url    https://github.com/custodia-labs/sercha-research/issues

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Format: "Bearer {token}"

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/custodia-labs/sercha-research/internal/adapters/driven/auth"
	"github.com/custodia-labs/sercha-research/internal/adapters/driven/cache/disk"
	"github.com/custodia-labs/sercha-research/internal/adapters/driven/cache/memory"
	"github.com/custodia-labs/sercha-research/internal/adapters/driven/extractor"
	"github.com/custodia-labs/sercha-research/internal/adapters/driven/memstore"
	"github.com/custodia-labs/sercha-research/internal/adapters/driven/postgres"
	"github.com/custodia-labs/sercha-research/internal/adapters/driven/providers"
	redisadapter "github.com/custodia-labs/sercha-research/internal/adapters/driven/redis"
	"github.com/custodia-labs/sercha-research/internal/adapters/driving/http"
	"github.com/custodia-labs/sercha-research/internal/adapters/driving/mcp"
	"github.com/custodia-labs/sercha-research/internal/config"
	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-research/internal/core/services"
	"github.com/custodia-labs/sercha-research/internal/runtime"

	_ "github.com/custodia-labs/sercha-research/docs"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "sercha-research: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}

	// Run mode from config (RUN_MODE) or command line arg
	args := os.Args[1:]
	if len(args) > 0 {
		cfg.Server.Mode = args[0]
		args = args[1:]
	}

	// Stdout carries the MCP protocol and query output, so logs go to stderr
	logger := cfg.Logging.NewLogger(os.Stderr)
	slog.SetDefault(logger)
	logger.Info("sercha-research starting", "version", version, "mode", cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.close()

	switch cfg.Server.Mode {
	case config.ModeAPI:
		if err := app.maintainer.Start(); err != nil {
			return fmt.Errorf("failed to start cache maintenance: %w", err)
		}
		defer app.maintainer.Stop()
		return runAPI(ctx, cfg, app, logger)

	case config.ModeMCP:
		if err := app.maintainer.Start(); err != nil {
			return fmt.Errorf("failed to start cache maintenance: %w", err)
		}
		defer app.maintainer.Stop()
		server := mcp.NewServer(mcp.Config{Version: version, Logger: logger}, app.research)
		logger.Info("MCP server listening on stdio")
		return server.ServeStdio()

	case config.ModeQuery:
		return runQuery(ctx, app.research, strings.Join(args, " "))

	default:
		return fmt.Errorf("unknown mode: %s (use: api, mcp, or query)", cfg.Server.Mode)
	}
}

// app holds the wired services and whatever must be closed on exit
type app struct {
	research   driving.ResearchService
	auth       driving.AuthService // Nil when no API key is configured
	maintainer *services.CacheMaintainer
	checks     map[string]http.Pinger
	closers    []func() error
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			slog.Warn("shutdown error", "error", err)
		}
	}
}

func build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{checks: make(map[string]http.Pinger)}

	// ===== Cache tiers (Redis cold tier if available, otherwise disk) =====
	var (
		cold       driven.ColdCache
		lock       driven.CacheLock
		cacheKind  = "disk"
		memoryKind = "memory"
	)
	if cfg.Storage.RedisURL != "" {
		logger.Info("connecting to Redis")
		client, err := redisadapter.Connect(ctx, cfg.Storage.RedisURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		redisCache := redisadapter.NewColdCache(client)
		cold = redisCache
		lock = redisadapter.NewLock(client)
		a.checks["redis"] = redisCache
		cacheKind = "redis"
	} else {
		diskCache, err := disk.NewColdCache(cfg.Cache.Dir)
		if err != nil {
			return nil, err
		}
		cold = diskCache
	}

	hot, err := memory.NewHotCache(cfg.Cache.HotSize)
	if err != nil {
		return nil, err
	}

	cache := services.NewCacheStore(services.CacheStoreConfig{
		Hot:        hot,
		Cold:       cold,
		Lock:       lock,
		Disabled:   !cfg.Cache.Enabled,
		DefaultTTL: cfg.Cache.TTL,
		MaxSizeMB:  cfg.Cache.MaxSizeMB,
		HotWindow:  cfg.Cache.HotWindowDuration(),
		Logger:     logger,
	})
	a.maintainer = services.NewCacheMaintainer(services.CacheMaintainerConfig{
		Cache:    cache,
		Schedule: cfg.Cache.Schedule,
		Logger:   logger,
	})

	// ===== Memory store (PostgreSQL if available, otherwise in-process) =====
	var memoryStore driven.MemoryStore
	if cfg.Storage.DatabaseURL != "" {
		logger.Info("connecting to PostgreSQL")
		db, err := postgres.Connect(ctx, postgres.DefaultConfig(cfg.Storage.DatabaseURL))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		if err := db.InitSchema(ctx); err != nil {
			return nil, err
		}
		memoryStore = postgres.NewMemoryStore(db)
		a.checks["postgres"] = db
		memoryKind = "postgres"
	} else if cfg.Storage.MemoryPath != "" {
		store, err := memstore.Open(cfg.Storage.MemoryPath)
		if err != nil {
			return nil, err
		}
		memoryStore = store
	} else {
		memoryStore = memstore.New()
	}

	// ===== Search providers =====
	registry := runtime.NewServices(domain.NewRuntimeConfig(cacheKind, memoryKind))
	if err := registerProviders(registry, cfg, logger); err != nil {
		return nil, err
	}
	if registry.Config().ProviderCount() == 0 {
		return nil, errors.New("no search providers configured")
	}
	a.closers = append(a.closers, registry.Close)

	search := services.NewFallbackSearchCoordinator(services.FallbackSearchConfig{
		Services:        registry,
		FallbackChain:   cfg.Search.Chain(),
		DisableFallback: !cfg.Search.FallbackEnabled,
		Timeout:         cfg.Search.TimeoutDuration(),
		Logger:          logger,
	})

	pageExtractor := extractor.New(extractor.Config{
		UserAgent:          cfg.Extraction.UserAgent,
		Timeout:            cfg.Extraction.TimeoutDuration(),
		MaxBytes:           cfg.Extraction.MaxBytes,
		PreserveInlineCode: cfg.Extraction.PreserveCodeBlocks,
		Logger:             logger,
	})

	defaults := cfg.LoopDefaults()
	a.research = services.NewResearchService(services.ResearchServiceConfig{
		Loop:         services.NewReasoningLoop(services.ReasoningLoopConfig{Logger: logger}),
		Search:       search,
		Extractor:    pageExtractor,
		Memory:       memoryStore,
		Cache:        cache,
		Deadline:     cfg.Research.DeadlineDuration(),
		LoopDefaults: &defaults,
		ChunkSize:    cfg.Extraction.ChunkSize,
		ChunkOverlap: cfg.Extraction.ChunkOverlap,
		Logger:       logger,

		ExtractMinGoodResults: cfg.Research.ExtractMinGoodResults,
	})

	// ===== Auth (only when an API key is configured) =====
	if cfg.AuthEnabled() {
		adapter := auth.NewAdapter(cfg.Server.JWTSecret)
		hash, err := adapter.HashSecret(cfg.Server.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to hash api key: %w", err)
		}
		a.auth = services.NewAuthService(services.AuthServiceConfig{
			AuthAdapter: adapter,
			APIKeyHash:  hash,
			TokenTTL:    cfg.Server.TokenTTLDuration(),
		})
	}

	logger.Info("services ready",
		"cache", cacheKind,
		"memory", memoryKind,
		"providers", registry.Resolve(cfg.Search.Chain()),
		"auth", cfg.AuthEnabled(),
	)
	return a, nil
}

// registerProviders registers every provider whose credentials are present.
// DuckDuckGo needs none and is always available.
func registerProviders(registry *runtime.Services, cfg *config.Config, logger *slog.Logger) error {
	pcfg := providers.Config{
		RequestDelay: cfg.Search.RequestDelayDuration(),
		MaxRetries:   cfg.Search.Retries(),
		UserAgent:    cfg.Extraction.UserAgent,
		Logger:       logger,
	}

	if cfg.Search.BraveAPIKey != "" {
		brave, err := providers.NewBrave(cfg.Search.BraveAPIKey, pcfg)
		if err != nil {
			return err
		}
		registry.RegisterProvider(brave)
	} else {
		logger.Info("brave provider disabled: no api key")
	}

	if cfg.Search.GoogleAPIKey != "" {
		google, err := providers.NewGoogle(cfg.Search.GoogleAPIKey, cfg.Search.GoogleSearchEngineID, pcfg)
		if err != nil {
			return err
		}
		registry.RegisterProvider(google)
	} else {
		logger.Info("google provider disabled: no api key")
	}

	registry.RegisterProvider(providers.NewDuckDuckGo(pcfg))
	return nil
}

func runAPI(ctx context.Context, cfg *config.Config, a *app, logger *slog.Logger) error {
	server := http.NewServer(
		http.Config{
			Host:           cfg.Server.Host,
			Port:           cfg.Server.Port,
			Version:        version,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			Logger:         logger,
		},
		a.auth,
		a.research,
		a.checks,
	)

	logger.Info("API server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)
	return server.Start(ctx)
}

// runQuery runs one research request and prints the response as JSON
func runQuery(ctx context.Context, research driving.ResearchService, query string) error {
	if strings.TrimSpace(query) == "" {
		return errors.New("usage: sercha-research query <text>")
	}

	resp, err := research.Research(ctx, domain.ResearchRequest{Query: query})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
