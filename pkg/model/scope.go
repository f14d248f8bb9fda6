package model

import (
	"github.com/m-mizutani/goerr/v2"
)

var ErrInvalidScope = goerr.New("invalid scope")

// Scope is the permitted boundary of videos a retrieval query may draw from.
type Scope string

const (
	// ScopeOneVideo restricts retrieval to the seed video only
	ScopeOneVideo Scope = "one_video"
	// ScopeSeedPlusTag allows the seed plus tag-similar videos
	ScopeSeedPlusTag Scope = "seed_plus_tag"
	// ScopeSeedPlusChannel allows the seed plus other uploads of the same channel
	ScopeSeedPlusChannel Scope = "seed_plus_channel"
	// ScopeAny allows the seed plus anything helpful
	ScopeAny Scope = "any"
)

// ParseScope converts a string into a Scope, failing on unknown values
func ParseScope(s string) (Scope, error) {
	scope := Scope(s)
	if err := scope.Validate(); err != nil {
		return "", err
	}
	return scope, nil
}

// Validate checks if the scope is one of the four closed values
func (s Scope) Validate() error {
	switch s {
	case ScopeOneVideo, ScopeSeedPlusTag, ScopeSeedPlusChannel, ScopeAny:
		return nil
	default:
		return goerr.Wrap(ErrInvalidScope, "unknown scope value", goerr.V("scope", s))
	}
}

// PermitsTagSearch reports whether tag-based discovery is allowed under the scope
func (s Scope) PermitsTagSearch() bool {
	return s == ScopeSeedPlusTag || s == ScopeAny
}

// PermitsChannelScan reports whether same-channel enumeration is allowed under the scope
func (s Scope) PermitsChannelScan() bool {
	return s == ScopeSeedPlusChannel || s == ScopeAny
}

// RetrievalContext carries the per-question retrieval settings. It is built
// once after scope inference and expansion; only the allowlist may widen
// later, when the model expands the corpus mid-session.
type RetrievalContext struct {
	Scope         Scope
	SeedVideoID   VideoID
	SeedChannelID ChannelID
	SeedTags      []string

	// AllowedVideoIDs is an optional explicit allowlist. Used for
	// seed_plus_tag to restrict retrieval to the tag-discovered set.
	AllowedVideoIDs []VideoID

	// Rerank controls for the hybrid ranker. Alpha weights cosine
	// similarity, Beta weights tag Jaccard overlap. They are not required
	// to sum to 1.
	TagRerank   bool
	RerankAlpha float64
	RerankBeta  float64
}
