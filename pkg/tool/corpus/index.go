package corpus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/m-mizutani/burrow/pkg/model"
	"github.com/m-mizutani/burrow/pkg/usecase/rag"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

type indexInput struct {
	VideoID string `json:"video_id"`
}

// Index exposes on-demand indexing of a single video as a function call.
// Requests are validated against the retrieval scope: outside of the "any"
// scope only the seed video may be indexed.
type Index struct {
	uc *rag.UseCase
	rc *model.RetrievalContext
}

// NewIndex creates the index_video tool bound to one retrieval context
func NewIndex(uc *rag.UseCase, rc *model.RetrievalContext) *Index {
	return &Index{uc: uc, rc: rc}
}

func (x *Index) Prompt(ctx context.Context) string {
	if x.rc.Scope != model.ScopeAny {
		return ""
	}
	return `Use the index_video tool when the user names a specific video ID that is not yet in the index.`
}

// Spec returns the tool specification for Gemini function calling
func (x *Index) Spec() *genai.Tool {
	if x.rc.Scope != model.ScopeAny {
		return nil
	}
	return &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        "index_video",
				Description: "Fetch, chunk and index the transcript of one video by its ID",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"video_id": {
							Type:        genai.TypeString,
							Description: "YouTube video ID to index",
						},
					},
					Required: []string{"video_id"},
				},
			},
		},
	}
}

// Execute runs the tool with the given function call
func (x *Index) Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error) {
	paramsJSON, err := json.Marshal(fc.Args)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal function arguments")
	}

	var input indexInput
	if err := json.Unmarshal(paramsJSON, &input); err != nil {
		return nil, goerr.Wrap(err, "failed to parse input parameters")
	}

	videoID := model.VideoID(input.VideoID)
	if x.rc.Scope != model.ScopeAny && videoID != x.rc.SeedVideoID {
		return nil, goerr.New("retrieval scope does not allow indexing this video",
			goerr.V("scope", x.rc.Scope), goerr.V("video_id", videoID))
	}

	meta, err := x.uc.Index(ctx, videoID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to index video", goerr.V("video_id", videoID))
	}

	msg := fmt.Sprintf("Indexed %q (%s).", meta.Title, meta.Channel)
	return &genai.FunctionResponse{
		Name:     fc.Name,
		Response: map[string]any{"result": msg},
	}, nil
}
