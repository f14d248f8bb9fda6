package rag

import (
	"context"

	"github.com/m-mizutani/burrow/pkg/model"
	"github.com/m-mizutani/burrow/pkg/service/rerank"
	"github.com/m-mizutani/burrow/pkg/service/scope"
	"github.com/m-mizutani/burrow/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// DefaultTopK is the default number of fragments returned by Search
const DefaultTopK = 8

// Search embeds the query, retrieves the nearest fragments within the scope
// boundary carried by rc and applies the hybrid reranker. The returned hits
// are ordered by descending combined score (or raw similarity when tag
// reranking is disabled).
func (uc *UseCase) Search(ctx context.Context, query string, topK int, rc *model.RetrievalContext) ([]*model.SearchHit, error) {
	logger := logging.From(ctx)
	if topK <= 0 {
		topK = DefaultTopK
	}

	vectors, err := uc.gemini.Embedding(ctx, []string{query})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed query")
	}

	filter := scope.BuildFilter(rc.Scope, rc.SeedVideoID, rc.SeedChannelID, rc.AllowedVideoIDs)

	hits, err := uc.repo.Search(ctx, vectors[0], topK, filter)
	if err != nil {
		return nil, goerr.Wrap(err, "fragment search failed", goerr.V("scope", rc.Scope))
	}

	rerank.Apply(hits, rc.SeedTags, rc.RerankAlpha, rc.RerankBeta, rc.TagRerank)

	logger.Debug("scoped search finished",
		"scope", rc.Scope, "top_k", topK, "hits", len(hits), "rerank", rc.TagRerank)
	return hits, nil
}
