package corpus_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/burrow/pkg/model"
	"github.com/m-mizutani/burrow/pkg/tool/corpus"
	"github.com/m-mizutani/gt"
	"google.golang.org/genai"
)

func TestRegistryPublishesOnlyOpenTools(t *testing.T) {
	rc := &model.RetrievalContext{Scope: model.ScopeOneVideo, SeedVideoID: "seed"}
	registry := corpus.NewRegistry(nil, rc)

	// Under one_video only search is announced to the model
	specs := registry.Specs()
	gt.A(t, specs).Length(1)
	gt.Equal(t, specs[0].FunctionDeclarations[0].Name, "search_fragments")

	prompts := registry.Prompts(context.Background())
	gt.S(t, prompts).Contains("search_fragments")
	gt.S(t, prompts).NotContains("expand_corpus")

	// A hidden tool cannot be called by name either
	_, err := registry.Execute(context.Background(), genai.FunctionCall{Name: "expand_corpus"})
	gt.Error(t, err)
}

func TestExpandSpecHiddenUnderOneVideo(t *testing.T) {
	rc := &model.RetrievalContext{Scope: model.ScopeOneVideo, SeedVideoID: "seed"}
	gt.Nil(t, corpus.NewExpand(nil, rc).Spec())
	gt.Equal(t, corpus.NewExpand(nil, rc).Prompt(context.Background()), "")

	rc = &model.RetrievalContext{Scope: model.ScopeSeedPlusTag, SeedVideoID: "seed"}
	gt.V(t, corpus.NewExpand(nil, rc).Spec()).NotNil()
}

func TestIndexSpecOnlyUnderAny(t *testing.T) {
	for _, scope := range []model.Scope{model.ScopeOneVideo, model.ScopeSeedPlusTag, model.ScopeSeedPlusChannel} {
		rc := &model.RetrievalContext{Scope: scope, SeedVideoID: "seed"}
		gt.Nil(t, corpus.NewIndex(nil, rc).Spec())
	}

	rc := &model.RetrievalContext{Scope: model.ScopeAny, SeedVideoID: "seed"}
	gt.V(t, corpus.NewIndex(nil, rc).Spec()).NotNil()
}

func TestIndexRejectsNonSeedOutsideAny(t *testing.T) {
	rc := &model.RetrievalContext{Scope: model.ScopeOneVideo, SeedVideoID: "seed"}
	x := corpus.NewIndex(nil, rc)

	_, err := x.Execute(context.Background(), genai.FunctionCall{
		Name: "index_video",
		Args: map[string]any{"video_id": "other"},
	})
	gt.Error(t, err)
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	rc := &model.RetrievalContext{Scope: model.ScopeAny, SeedVideoID: "seed"}
	s := corpus.NewSearch(nil, rc)

	_, err := s.Execute(context.Background(), genai.FunctionCall{
		Name: "search_fragments",
		Args: map[string]any{"query": "   "},
	})
	gt.Error(t, err)
}
