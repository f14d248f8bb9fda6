package rag

import (
	"context"

	"github.com/m-mizutani/burrow/pkg/model"
	"github.com/m-mizutani/burrow/pkg/service/scope"
	"github.com/m-mizutani/burrow/pkg/utils/logging"
)

// Default hybrid rerank weights. Callers may pass anything, including weights
// outside [0,1].
const (
	DefaultRerankAlpha = 0.8
	DefaultRerankBeta  = 0.2
)

// PrepareOptions tunes context preparation for one question
type PrepareOptions struct {
	// ForceScope skips classification when set to a valid scope
	ForceScope model.Scope
	// SkipExpand disables the eager expansion step
	SkipExpand  bool
	TagRerank   bool
	RerankAlpha float64
	RerankBeta  float64
}

// PrepareContext readies retrieval for one question: the seed video is
// indexed if absent, the scope is resolved (forced or classified) and the
// scope-permitted expansion runs eagerly so retrieval sees the widened
// corpus from the first search. Returns the retrieval context, the seed
// metadata and the scope rationale.
func (uc *UseCase) PrepareContext(ctx context.Context, videoID model.VideoID, question string, opts PrepareOptions) (*model.RetrievalContext, *model.VideoMeta, string, error) {
	logger := logging.From(ctx)

	meta, err := uc.ensureIndexed(ctx, videoID)
	if err != nil {
		return nil, nil, "", err
	}

	resolved := opts.ForceScope
	rationale := "scope forced by caller"
	if resolved.Validate() != nil {
		resolved, rationale = uc.InferScope(ctx, question, meta)
	}

	rc := &model.RetrievalContext{
		Scope:         resolved,
		SeedVideoID:   meta.ID,
		SeedChannelID: meta.ChannelID,
		SeedTags:      meta.Tags,
		TagRerank:     opts.TagRerank,
		RerankAlpha:   opts.RerankAlpha,
		RerankBeta:    opts.RerankBeta,
	}

	if !opts.SkipExpand && (resolved.PermitsTagSearch() || resolved.PermitsChannelScan()) {
		report := uc.Expand(ctx, ExpandInput{
			Scope:         resolved,
			SeedVideoID:   meta.ID,
			SeedTags:      meta.Tags,
			SeedChannelID: meta.ChannelID,
		})
		if allowed := scope.Allowlist(resolved, meta.ID, report.VideoIDs()); allowed != nil {
			rc.AllowedVideoIDs = allowed
		}
	} else if allowed := scope.Allowlist(resolved, meta.ID, nil); allowed != nil {
		rc.AllowedVideoIDs = allowed
	}

	logger.Debug("retrieval context prepared",
		"video_id", meta.ID, "scope", resolved, "allowlist", len(rc.AllowedVideoIDs))
	return rc, meta, rationale, nil
}

// ensureIndexed indexes the video only when no fragments of it are stored yet
func (uc *UseCase) ensureIndexed(ctx context.Context, videoID model.VideoID) (*model.VideoMeta, error) {
	count, err := uc.repo.CountFragments(ctx, videoID)
	if err == nil && count > 0 {
		return uc.yt.GetVideo(ctx, videoID)
	}
	if err != nil {
		logging.From(ctx).Warn("fragment count failed, indexing anyway", "video_id", videoID, "error", err)
	}
	return uc.Index(ctx, videoID)
}
