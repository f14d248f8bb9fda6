package corpus

import (
	"context"
	"fmt"

	"github.com/m-mizutani/burrow/pkg/model"
	"github.com/m-mizutani/burrow/pkg/service/scope"
	"github.com/m-mizutani/burrow/pkg/usecase/rag"
	"google.golang.org/genai"
)

// Expand exposes scoped corpus expansion as a function call. It mutates the
// retrieval context's allowlist so that subsequent searches see the widened
// corpus.
type Expand struct {
	uc *rag.UseCase
	rc *model.RetrievalContext
}

// NewExpand creates the expand_corpus tool bound to one retrieval context
func NewExpand(uc *rag.UseCase, rc *model.RetrievalContext) *Expand {
	return &Expand{uc: uc, rc: rc}
}

func (e *Expand) Prompt(ctx context.Context) string {
	if !e.rc.Scope.PermitsTagSearch() && !e.rc.Scope.PermitsChannelScan() {
		return ""
	}
	return `Use the expand_corpus tool once, before searching, when the question needs material beyond the seed video. It discovers and indexes related videos allowed by the current scope.`
}

// Spec returns the tool specification for Gemini function calling
func (e *Expand) Spec() *genai.Tool {
	// Under one_video the seed is the whole corpus, no expansion to offer
	if !e.rc.Scope.PermitsTagSearch() && !e.rc.Scope.PermitsChannelScan() {
		return nil
	}
	return &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        "expand_corpus",
				Description: "Discover and index videos related to the seed video, as allowed by the current retrieval scope. Takes no parameters.",
				Parameters: &genai.Schema{
					Type:       genai.TypeObject,
					Properties: map[string]*genai.Schema{},
				},
			},
		},
	}
}

// Execute runs the tool with the given function call
func (e *Expand) Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error) {
	report := e.uc.Expand(ctx, rag.ExpandInput{
		Scope:         e.rc.Scope,
		SeedVideoID:   e.rc.SeedVideoID,
		SeedTags:      e.rc.SeedTags,
		SeedChannelID: e.rc.SeedChannelID,
	})

	if allowed := scope.Allowlist(e.rc.Scope, e.rc.SeedVideoID, report.VideoIDs()); allowed != nil {
		e.rc.AllowedVideoIDs = allowed
	}

	msg := fmt.Sprintf("Expansion finished: %d video(s) indexed, %d failed. Search again to use the widened corpus.",
		report.Indexed(), report.Failed())
	return &genai.FunctionResponse{
		Name:     fc.Name,
		Response: map[string]any{"result": msg},
	}, nil
}
