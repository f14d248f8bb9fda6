package model

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrVideoNotFound = goerr.New("video not found")
	ErrQuotaExceeded = goerr.New("search quota exceeded")
)

type VideoID string

const watchURLTemplate = "https://www.youtube.com/watch?v=%s"

// WatchURL returns the canonical watch page URL for the video
func (id VideoID) WatchURL() string {
	return fmt.Sprintf(watchURLTemplate, string(id))
}

type ChannelID string

// channelIDRe matches the common UC... channel ID format
var channelIDRe = regexp.MustCompile(`^UC[a-zA-Z0-9_-]{22}$`)

// Validate checks if the channel ID has the expected UC... format
func (id ChannelID) Validate() error {
	if !channelIDRe.MatchString(string(id)) {
		return goerr.New("invalid channel ID, expected UC... format", goerr.V("channel_id", id))
	}
	return nil
}

// VideoMeta holds the metadata of a single video. It is constructed by the
// metadata adapter and immutable afterwards.
type VideoMeta struct {
	ID        VideoID
	Title     string
	Channel   string
	ChannelID ChannelID
	Tags      []string
	URL       string
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeTags lower-cases, collapses whitespace, deduplicates and sorts tags.
// Empty and whitespace-only tags are dropped.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(whitespaceRe.ReplaceAllString(t, " ")))
		if t == "" {
			continue
		}
		seen[t] = true
	}

	normalized := make([]string, 0, len(seen))
	for t := range seen {
		normalized = append(normalized, t)
	}
	sort.Strings(normalized)
	return normalized
}

// Fragment is one indexed span of a video transcript. The owning VideoMeta is
// embedded so fragments are self-describing in the store.
type Fragment struct {
	Video  VideoMeta
	Index  int
	Text   string
	TagSet []string
}

// ID returns the deterministic fragment identity. Re-indexing the same video
// with an unchanged transcript yields the same IDs, so upserts overwrite
// instead of appending.
func (f *Fragment) ID() string {
	return fmt.Sprintf("%s#%d", f.Video.ID, f.Index)
}
