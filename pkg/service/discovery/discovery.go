// Package discovery enumerates videos related to a seed by tag search and
// same-channel listing, under quota and cache control.
package discovery

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/burrow/pkg/adapter"
	"github.com/m-mizutani/burrow/pkg/model"
	"github.com/m-mizutani/burrow/pkg/repository"
	"github.com/m-mizutani/burrow/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

const (
	// maxTags bounds how many of the seed's tags are searched
	maxTags = 3
	// DefaultMaxSearchCalls bounds external search calls per invocation.
	// Search requests cost 100 quota units each, so this is kept tight.
	DefaultMaxSearchCalls = 2
	// DefaultPerTag is the default number of results requested per tag
	DefaultPerTag = 5
	// DefaultChannelMax is the default number of same-channel uploads
	DefaultChannelMax = 25

	dayFormat = "2006-01-02"
)

// Engine discovers candidate videos for corpus expansion
type Engine struct {
	yt             adapter.YouTube
	cache          *repository.DiscoveryCache
	maxSearchCalls int
	now            func() time.Time
}

type Option func(*Engine)

// WithMaxSearchCalls sets the external search call ceiling per invocation
func WithMaxSearchCalls(n int) Option {
	return func(e *Engine) {
		e.maxSearchCalls = n
	}
}

// WithNow replaces the clock used for cache day keys
func WithNow(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates a discovery engine. The cache may be a disabled cache but must
// not be nil.
func New(yt adapter.YouTube, cache *repository.DiscoveryCache, opts ...Option) *Engine {
	e := &Engine{
		yt:             yt,
		cache:          cache,
		maxSearchCalls: DefaultMaxSearchCalls,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SearchByTags finds videos matching the first tags of the seed. Results are
// served from the day-scoped cache when possible; at most the configured
// number of external calls are issued per invocation. A quota-exceeded signal
// stops further external calls and the partial result is returned. Other
// per-tag failures skip that tag only.
func (e *Engine) SearchByTags(ctx context.Context, tags []string, perTag int64) []model.VideoID {
	logger := logging.From(ctx)
	day := e.now().Format(dayFormat)

	var ids []model.VideoID
	calls := 0

	if len(tags) > maxTags {
		tags = tags[:maxTags]
	}
	for _, tag := range tags {
		if cached, ok := e.cache.Get(ctx, day, tag, int(perTag)); ok {
			logger.Debug("tag cache hit", "tag", tag, "hits", len(cached))
			ids = append(ids, cached...)
			continue
		}

		if calls >= e.maxSearchCalls {
			logger.Debug("search call ceiling reached, skipping tag", "tag", tag)
			continue
		}

		found, err := e.yt.SearchByTag(ctx, tag, perTag)
		calls++
		if err != nil {
			if errors.Is(err, model.ErrQuotaExceeded) {
				logger.Warn("search quota exhausted, stopping tag discovery", "tag", tag)
				break
			}
			logger.Warn("tag search failed, skipping tag", "tag", tag, "error", err)
			continue
		}

		e.cache.Put(ctx, day, tag, int(perTag), found)
		ids = append(ids, found...)
	}

	logger.Debug("tag discovery finished", "candidates", len(ids), "api_calls", calls)
	return ids
}

// SameChannel enumerates other uploads of the seed's channel, excluding the
// seed itself
func (e *Engine) SameChannel(ctx context.Context, seedID model.VideoID, channelID model.ChannelID, max int64) ([]model.VideoID, error) {
	if err := channelID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "cannot enumerate channel uploads")
	}

	uploads, err := e.yt.ListChannelUploads(ctx, channelID, max)
	if err != nil {
		return nil, err
	}

	ids := make([]model.VideoID, 0, len(uploads))
	for _, id := range uploads {
		if id != seedID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// DiscoverInput is the input for the union discovery over both strategies
type DiscoverInput struct {
	SeedVideoID model.VideoID
	SeedTags    []string
	ChannelID   model.ChannelID
	PerTag      int64
	ChannelMax  int64
}

// Discover unions tag-based and same-channel candidates, removing the seed.
// The result is a set: duplicates across strategies are dropped, first-seen
// order preserved.
func (e *Engine) Discover(ctx context.Context, input DiscoverInput) []model.VideoID {
	logger := logging.From(ctx)

	merged := e.SearchByTags(ctx, input.SeedTags, input.PerTag)

	channelHits, err := e.SameChannel(ctx, input.SeedVideoID, input.ChannelID, input.ChannelMax)
	if err != nil {
		logger.Warn("same-channel discovery failed, continuing with tag hits", "error", err)
	}
	merged = append(merged, channelHits...)

	return Dedup(merged, input.SeedVideoID)
}

// Dedup removes duplicates and the seed from ids, preserving first-seen order
func Dedup(ids []model.VideoID, seed model.VideoID) []model.VideoID {
	seen := make(map[model.VideoID]bool, len(ids))
	ordered := make([]model.VideoID, 0, len(ids))
	for _, id := range ids {
		if id == seed || seen[id] {
			continue
		}
		seen[id] = true
		ordered = append(ordered, id)
	}
	return ordered
}
