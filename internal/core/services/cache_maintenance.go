package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultMaintenanceSchedule runs cache maintenance every ten minutes
const DefaultMaintenanceSchedule = "@every 10m"

// CacheMaintainer periodically prunes expired cold entries and enforces the
// size budget, so entries nobody reads again still leave the cold tier.
type CacheMaintainer struct {
	cache    *CacheStore
	cron     *cron.Cron
	schedule string
	timeout  time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
}

// CacheMaintainerConfig holds configuration for the maintainer.
type CacheMaintainerConfig struct {
	Cache    *CacheStore
	Schedule string        // Cron expression, default "@every 10m"
	Timeout  time.Duration // Bound on one run, default 5m
	Logger   *slog.Logger
}

// NewCacheMaintainer creates a new maintainer. It does nothing until Start.
func NewCacheMaintainer(cfg CacheMaintainerConfig) *CacheMaintainer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	schedule := cfg.Schedule
	if schedule == "" {
		schedule = DefaultMaintenanceSchedule
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	return &CacheMaintainer{
		cache:    cfg.Cache,
		cron:     cron.New(),
		schedule: schedule,
		timeout:  timeout,
		logger:   logger.With("component", "cache_maintenance"),
	}
}

// Start registers the maintenance job and starts the cron runner
func (m *CacheMaintainer) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return nil
	}

	if _, err := m.cron.AddFunc(m.schedule, m.run); err != nil {
		return err
	}
	m.cron.Start()
	m.running = true

	m.logger.Info("cache maintenance started", "schedule", m.schedule)
	return nil
}

// Stop halts the runner and waits for a job in progress
func (m *CacheMaintainer) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	m.mu.Unlock()

	<-m.cron.Stop().Done()
	m.logger.Info("cache maintenance stopped")
}

// RunNow performs one maintenance pass synchronously
func (m *CacheMaintainer) RunNow(ctx context.Context) int {
	if !m.cache.Enabled() {
		return 0
	}
	pruned := m.cache.PruneExpired(ctx)
	m.cache.EvictIfOverBudget(ctx)

	stats := m.cache.Stats(ctx)
	m.logger.Info("cache maintenance completed",
		"pruned", pruned,
		"file_entries", stats.ColdEntries,
		"size_mb", stats.TotalSizeMB,
	)
	return pruned
}

func (m *CacheMaintainer) run() {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	m.RunNow(ctx)
}
