// Package corpus provides the function-calling tools the answering session
// uses to consult the fragment index: scoped search, corpus expansion and
// on-demand indexing. Every tool checks its request against the retrieval
// scope before acting.
package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/m-mizutani/burrow/pkg/model"
	"github.com/m-mizutani/burrow/pkg/usecase/rag"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

type searchInput struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

// Search exposes scoped fragment retrieval as a function call
type Search struct {
	uc *rag.UseCase
	rc *model.RetrievalContext
}

// NewSearch creates the search_fragments tool bound to one retrieval context
func NewSearch(uc *rag.UseCase, rc *model.RetrievalContext) *Search {
	return &Search{uc: uc, rc: rc}
}

func (s *Search) Prompt(ctx context.Context) string {
	return fmt.Sprintf(`Use the search_fragments tool to retrieve transcript fragments relevant to the question. Retrieval is restricted to the "%s" scope; you cannot widen it. Rephrase and search again if the first results are weak.`, s.rc.Scope)
}

// Spec returns the tool specification for Gemini function calling
func (s *Search) Spec() *genai.Tool {
	return &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        "search_fragments",
				Description: "Search indexed video transcript fragments by semantic similarity, within the current retrieval scope",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"query": {
							Type:        genai.TypeString,
							Description: "Natural language query to search for",
						},
						"top_k": {
							Type:        genai.TypeInteger,
							Description: fmt.Sprintf("Max fragments to return (default: %d)", rag.DefaultTopK),
						},
					},
					Required: []string{"query"},
				},
			},
		},
	}
}

// Execute runs the tool with the given function call
func (s *Search) Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error) {
	paramsJSON, err := json.Marshal(fc.Args)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal function arguments")
	}

	var input searchInput
	if err := json.Unmarshal(paramsJSON, &input); err != nil {
		return nil, goerr.Wrap(err, "failed to parse input parameters")
	}
	if strings.TrimSpace(input.Query) == "" {
		return nil, goerr.New("query must not be empty")
	}

	hits, err := s.uc.Search(ctx, input.Query, input.TopK, s.rc)
	if err != nil {
		return nil, goerr.Wrap(err, "fragment search failed")
	}

	return &genai.FunctionResponse{
		Name:     fc.Name,
		Response: map[string]any{"result": formatHits(hits)},
	}, nil
}

// formatHits renders hits so the model can cite fragments by their reference
func formatHits(hits []*model.SearchHit) string {
	if len(hits) == 0 {
		return "No fragments found within the current scope."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d fragment(s):\n\n", len(hits))
	for i, h := range hits {
		fmt.Fprintf(&b, "%d. [%s] %s (%s)\n", i+1, h.Fragment.ID(), h.Fragment.Video.Title, h.Fragment.Video.Channel)
		fmt.Fprintf(&b, "   similarity=%.4f combined=%.4f\n", h.Similarity, h.Combined)
		fmt.Fprintf(&b, "   %s\n\n", h.Fragment.Text)
	}
	return b.String()
}
