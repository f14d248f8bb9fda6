package rag

import (
	"context"

	"github.com/m-mizutani/burrow/pkg/model"
	"github.com/m-mizutani/burrow/pkg/service/discovery"
	"github.com/m-mizutani/burrow/pkg/utils/logging"
)

// ExpandInput describes the seed for a scoped expansion
type ExpandInput struct {
	Scope         model.Scope
	SeedVideoID   model.VideoID
	SeedTags      []string
	SeedChannelID model.ChannelID
}

// Expand discovers videos related to the seed and indexes each of them. Only
// discovery strategies the scope permits are invoked. The candidate list
// concatenates same-channel hits then tag hits, deduplicated in first-seen
// order, so the result is reproducible for identical cache state. Per-video
// indexing failures are recorded in the report and never abort the batch.
func (uc *UseCase) Expand(ctx context.Context, input ExpandInput) *model.ExpandReport {
	logger := logging.From(ctx)
	report := &model.ExpandReport{Scope: input.Scope}

	var candidates []model.VideoID

	if input.Scope.PermitsChannelScan() {
		hits, err := uc.engine.SameChannel(ctx, input.SeedVideoID, input.SeedChannelID, uc.channelMax)
		if err != nil {
			logger.Warn("same-channel discovery failed, continuing", "error", err)
		}
		candidates = append(candidates, hits...)
	}

	if input.Scope.PermitsTagSearch() {
		candidates = append(candidates, uc.engine.SearchByTags(ctx, input.SeedTags, uc.perTag)...)
	}

	for _, id := range discovery.Dedup(candidates, input.SeedVideoID) {
		_, err := uc.Index(ctx, id)
		if err != nil {
			logger.Warn("failed to index discovered video, skipping", "video_id", id, "error", err)
		}
		report.Outcomes = append(report.Outcomes, model.ExpandOutcome{VideoID: id, Err: err})
	}

	logger.Info("expansion finished",
		"scope", input.Scope, "indexed", report.Indexed(), "failed", report.Failed())
	return report
}
