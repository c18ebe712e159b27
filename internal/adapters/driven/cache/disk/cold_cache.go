// Package disk stores cache entries as JSON files sharded by the first two
// characters of their fingerprint: <root>/<fp[:2]>/<fp>.json.
package disk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ColdCache = (*ColdCache)(nil)

const entryExt = ".json"

// ColdCache implements driven.ColdCache on the local filesystem
type ColdCache struct {
	root string
}

// NewColdCache creates the cache root if needed
func NewColdCache(root string) (*ColdCache, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: cache directory is required", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &ColdCache{root: root}, nil
}

// Root returns the cache directory
func (c *ColdCache) Root() string {
	return c.root
}

func (c *ColdCache) path(fingerprint string) (string, error) {
	if len(fingerprint) < 3 || strings.ContainsAny(fingerprint, `/\.`) {
		return "", fmt.Errorf("%w: bad fingerprint %q", domain.ErrInvalidInput, fingerprint)
	}
	return filepath.Join(c.root, fingerprint[:2], fingerprint+entryExt), nil
}

// Read loads and decodes the entry file
func (c *ColdCache) Read(ctx context.Context, fingerprint string) (*domain.CacheEntry, error) {
	p, err := c.path(fingerprint)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read cache file: %w", err)
	}

	var entry domain.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("decode cache file %s: %w", p, err)
	}
	entry.Fingerprint = fingerprint
	return &entry, nil
}

// Write replaces the entry file atomically, so readers never see a
// partially written entry.
func (c *ColdCache) Write(ctx context.Context, entry *domain.CacheEntry) error {
	p, err := c.path(entry.Fingerprint)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create cache shard: %w", err)
	}
	if err := atomic.WriteFile(p, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	return nil
}

// Delete removes the entry file
func (c *ColdCache) Delete(ctx context.Context, fingerprint string) error {
	p, err := c.path(fingerprint)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete cache file: %w", err)
	}
	return nil
}

// Entries walks every shard and reports entry files with their size and
// modification time
func (c *ColdCache) Entries(ctx context.Context) ([]domain.ColdEntryInfo, error) {
	entries := []domain.ColdEntryInfo{}
	err := c.walk(ctx, func(path string, d fs.DirEntry) error {
		info, err := d.Info()
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return err
		}
		entries = append(entries, domain.ColdEntryInfo{
			Fingerprint: strings.TrimSuffix(d.Name(), entryExt),
			Size:        info.Size(),
			ModTime:     info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list cache files: %w", err)
	}
	return entries, nil
}

// Clear removes every entry file. Files other than entries are left alone.
func (c *ColdCache) Clear(ctx context.Context) error {
	err := c.walk(ctx, func(path string, d fs.DirEntry) error {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("clear cache files: %w", err)
	}
	return nil
}

// walk visits entry files one shard level below the root
func (c *ColdCache) walk(ctx context.Context, fn func(path string, d fs.DirEntry) error) error {
	return filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path == c.root {
				return nil
			}
			if filepath.Dir(path) != c.root {
				return fs.SkipDir
			}
			return nil
		}
		if filepath.Dir(filepath.Dir(path)) != c.root || filepath.Ext(path) != entryExt {
			return nil
		}
		return fn(path, d)
	})
}
