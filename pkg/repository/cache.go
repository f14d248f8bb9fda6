package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/m-mizutani/burrow/pkg/model"
	"github.com/m-mizutani/burrow/pkg/utils/logging"
)

const cacheSchema = `
CREATE TABLE IF NOT EXISTS tag_cache (
	day         TEXT NOT NULL,
	tag         TEXT NOT NULL,
	max_results INTEGER NOT NULL,
	video_ids   TEXT NOT NULL,
	PRIMARY KEY (day, tag, max_results)
)`

// DiscoveryCache memoizes tag search results per calendar day, so repeated
// queries on the same day cost no API quota. Entries from prior days are
// never matched again and are left in place rather than purged.
//
// The cache fails open: a missing, unwritable or corrupt backing store
// degrades to a permanent miss, never an error.
type DiscoveryCache struct {
	db *sql.DB
}

// NewDiscoveryCache opens (and initializes if needed) the cache at path. An
// empty path defaults to ~/.burrow/tag_cache.db. Failures are logged and
// result in a disabled cache, not an error.
func NewDiscoveryCache(ctx context.Context, path string) *DiscoveryCache {
	logger := logging.From(ctx)

	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			logger.Warn("failed to resolve home directory, discovery cache disabled", "error", err)
			return &DiscoveryCache{}
		}
		path = filepath.Join(home, ".burrow", "tag_cache.db")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		logger.Warn("failed to create cache directory, discovery cache disabled", "error", err)
		return &DiscoveryCache{}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		logger.Warn("failed to open discovery cache, running without it", "path", path, "error", err)
		return &DiscoveryCache{}
	}

	if _, err := db.ExecContext(ctx, cacheSchema); err != nil {
		logger.Warn("failed to initialize discovery cache, running without it", "path", path, "error", err)
		db.Close()
		return &DiscoveryCache{}
	}

	return &DiscoveryCache{db: db}
}

// Close releases the backing store
func (c *DiscoveryCache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Get returns the cached video IDs for (day, tag, maxResults), or false on a
// miss. Corrupt entries count as misses.
func (c *DiscoveryCache) Get(ctx context.Context, day, tag string, maxResults int) ([]model.VideoID, bool) {
	if c.db == nil {
		return nil, false
	}

	var raw string
	err := c.db.QueryRowContext(ctx,
		`SELECT video_ids FROM tag_cache WHERE day = ? AND tag = ? AND max_results = ?`,
		day, tag, maxResults).Scan(&raw)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logging.From(ctx).Warn("discovery cache read failed", "tag", tag, "error", err)
		}
		return nil, false
	}

	var ids []model.VideoID
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		logging.From(ctx).Warn("discovery cache entry corrupt, treating as miss", "tag", tag, "error", err)
		return nil, false
	}
	return ids, true
}

// Put stores the video IDs for (day, tag, maxResults), replacing any prior
// entry. Write failures are logged and swallowed.
func (c *DiscoveryCache) Put(ctx context.Context, day, tag string, maxResults int, ids []model.VideoID) {
	if c.db == nil {
		return
	}

	raw, err := json.Marshal(ids)
	if err != nil {
		logging.From(ctx).Warn("failed to encode discovery cache entry", "tag", tag, "error", err)
		return
	}

	if _, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO tag_cache (day, tag, max_results, video_ids) VALUES (?, ?, ?, ?)`,
		day, tag, maxResults, string(raw)); err != nil {
		logging.From(ctx).Warn("discovery cache write failed", "tag", tag, "error", err)
	}
}
