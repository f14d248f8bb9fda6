// Package scope renders a resolved retrieval scope into the storage filter
// and allowlist that enforce it.
package scope

import (
	"github.com/m-mizutani/burrow/pkg/model"
	"github.com/m-mizutani/burrow/pkg/repository"
)

// BuildFilter renders the scope into a fragment search filter. It is total
// over the four scope values and never fails; unknown values behave as no
// restriction.
//
// seed_plus_tag without an explicit allowlist yields no hard filter: the
// hybrid reranker alone biases results toward the seed's tags. This is a soft
// boundary, kept deliberately.
func BuildFilter(scope model.Scope, seedID model.VideoID, channelID model.ChannelID, allowed []model.VideoID) *repository.Filter {
	switch scope {
	case model.ScopeOneVideo:
		return &repository.Filter{VideoID: seedID}

	case model.ScopeSeedPlusChannel:
		// Channel membership is itself the boundary, no ID list needed.
		// Without a channel ID the boundary must not widen, so fall back
		// to the seed video alone.
		if channelID == "" {
			return &repository.Filter{VideoID: seedID}
		}
		return &repository.Filter{ChannelID: channelID}

	case model.ScopeSeedPlusTag:
		if len(allowed) > 0 {
			return &repository.Filter{VideoIDs: allowed}
		}
		return nil

	default:
		// ScopeAny
		return nil
	}
}

// Allowlist builds the explicit video allowlist passed to retrieval for the
// scope, given the expansion result. Only seed_plus_tag restricts retrieval
// to the discovered set; the other scopes rely on their filter (or none).
func Allowlist(scope model.Scope, seedID model.VideoID, expanded []model.VideoID) []model.VideoID {
	switch scope {
	case model.ScopeOneVideo:
		return []model.VideoID{seedID}
	case model.ScopeSeedPlusTag:
		return append([]model.VideoID{seedID}, expanded...)
	default:
		return nil
	}
}
