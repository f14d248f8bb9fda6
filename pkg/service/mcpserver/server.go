// Package mcpserver exposes the retrieval capabilities as an MCP stdio
// server, so agent hosts can ask questions about videos without going
// through the CLI.
package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/burrow/pkg/model"
	"github.com/m-mizutani/burrow/pkg/tool/corpus"
	"github.com/m-mizutani/burrow/pkg/usecase/rag"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverVersion = "0.1.0"

// Server serves burrow's retrieval operations over MCP
type Server struct {
	uc     *rag.UseCase
	opts   rag.PrepareOptions
	server *mcp.Server
}

// New creates the MCP server with all tools registered
func New(uc *rag.UseCase, opts rag.PrepareOptions) *Server {
	s := &Server{
		uc:   uc,
		opts: opts,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "burrow",
			Version: serverVersion,
		}, nil),
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_video",
		Description: "Answer a natural language question about a YouTube video, grounded in its indexed transcript. The retrieval scope is inferred from the question.",
	}, s.askVideo)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_fragments",
		Description: "Search indexed transcript fragments of a video by semantic similarity, without generating an answer",
	}, s.searchFragments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "index_video",
		Description: "Fetch, chunk and index the transcript of one YouTube video",
	}, s.indexVideo)

	return s
}

// Run serves over stdio until the context is cancelled
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

type askVideoParams struct {
	VideoID  string `json:"video_id" jsonschema:"YouTube video ID of the seed video"`
	Question string `json:"question" jsonschema:"Natural language question about the video"`
}

func (s *Server) askVideo(ctx context.Context, req *mcp.CallToolRequest, params *askVideoParams) (*mcp.CallToolResult, any, error) {
	if params.VideoID == "" || strings.TrimSpace(params.Question) == "" {
		return nil, nil, fmt.Errorf("video_id and question are required")
	}

	rc, meta, rationale, err := s.uc.PrepareContext(ctx, model.VideoID(params.VideoID), params.Question, s.opts)
	if err != nil {
		return nil, nil, err
	}

	history, err := s.uc.Answer(ctx, rag.AnswerInput{
		Question:  params.Question,
		Seed:      meta,
		Context:   rc,
		Rationale: rationale,
		Registry:  corpus.NewRegistry(s.uc, rc),
	})
	if err != nil {
		return nil, nil, err
	}

	text := fmt.Sprintf("%s\n\n(scope: %s)", history.Answer, history.Scope)
	return textResult(text), nil, nil
}

type searchFragmentsParams struct {
	VideoID string `json:"video_id" jsonschema:"YouTube video ID of the seed video"`
	Query   string `json:"query" jsonschema:"Natural language query to search for"`
	TopK    int    `json:"top_k,omitempty" jsonschema:"Max fragments to return"`
	Scope   string `json:"scope,omitempty" jsonschema:"Retrieval scope: one_video, seed_plus_tag, seed_plus_channel or any (default: one_video)"`
}

func (s *Server) searchFragments(ctx context.Context, req *mcp.CallToolRequest, params *searchFragmentsParams) (*mcp.CallToolResult, any, error) {
	if params.VideoID == "" || strings.TrimSpace(params.Query) == "" {
		return nil, nil, fmt.Errorf("video_id and query are required")
	}

	forced := model.ScopeOneVideo
	if params.Scope != "" {
		parsed, err := model.ParseScope(params.Scope)
		if err != nil {
			return nil, nil, err
		}
		forced = parsed
	}

	opts := s.opts
	opts.ForceScope = forced

	rc, _, _, err := s.uc.PrepareContext(ctx, model.VideoID(params.VideoID), params.Query, opts)
	if err != nil {
		return nil, nil, err
	}

	hits, err := s.uc.Search(ctx, params.Query, params.TopK, rc)
	if err != nil {
		return nil, nil, err
	}

	if len(hits) == 0 {
		return textResult("No fragments found within the requested scope."), nil, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d fragment(s):\n\n", len(hits))
	for i, h := range hits {
		fmt.Fprintf(&b, "%d. [%s] %s (combined=%.4f)\n%s\n\n",
			i+1, h.Fragment.ID(), h.Fragment.Video.Title, h.Combined, h.Fragment.Text)
	}
	return textResult(b.String()), nil, nil
}

type indexVideoParams struct {
	VideoID string `json:"video_id" jsonschema:"YouTube video ID to index"`
}

func (s *Server) indexVideo(ctx context.Context, req *mcp.CallToolRequest, params *indexVideoParams) (*mcp.CallToolResult, any, error) {
	if params.VideoID == "" {
		return nil, nil, fmt.Errorf("video_id is required")
	}

	meta, err := s.uc.Index(ctx, model.VideoID(params.VideoID))
	if err != nil {
		return nil, nil, err
	}

	return textResult(fmt.Sprintf("Indexed %q (%s).", meta.Title, meta.Channel)), nil, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}
