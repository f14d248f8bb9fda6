package rag

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/burrow/pkg/model"
	"github.com/m-mizutani/burrow/pkg/tool"
	"github.com/m-mizutani/burrow/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

//go:embed prompt/answer.md
var answerPromptRaw string

// maxAnswerIterations bounds the tool call loop of one answering session
const maxAnswerIterations = 16

// AnswerInput carries one question with its resolved retrieval settings
type AnswerInput struct {
	Question  string
	Seed      *model.VideoMeta
	Context   *model.RetrievalContext
	Rationale string
	Registry  *tool.Registry
}

// Answer runs the answering session: a tool call loop where the model
// searches the fragment index (and expands the corpus, scope permitting)
// until it produces a grounded answer. The answered question is saved to
// history before returning.
func (uc *UseCase) Answer(ctx context.Context, input AnswerInput) (*model.History, error) {
	logger := logging.From(ctx)

	systemPrompt := uc.buildAnswerPrompt(ctx, input)

	contents := []*genai.Content{
		genai.NewContentFromText(input.Question, genai.RoleUser),
	}

	thinkingBudget := int32(0)
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, ""),
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  &thinkingBudget,
		},
		Tools: input.Registry.Specs(),
	}

	var finalResponse string

	for i := 0; i < maxAnswerIterations; i++ {
		resp, err := uc.gemini.GenerateContent(ctx, contents, config)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to generate content")
		}

		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return nil, goerr.New("empty response from Gemini")
		}

		candidate := resp.Candidates[0]
		contents = append(contents, candidate.Content)

		hasFuncCall := false
		var functionResponses []*genai.Part

		for _, part := range candidate.Content.Parts {
			if part.FunctionCall == nil {
				continue
			}
			hasFuncCall = true

			logger.Debug("tool call", "name", part.FunctionCall.Name)
			funcResp, execErr := input.Registry.Execute(ctx, *part.FunctionCall)
			if execErr != nil {
				logger.Warn("tool execution failed", "name", part.FunctionCall.Name, "error", execErr)
				funcResp = &genai.FunctionResponse{
					Name:     part.FunctionCall.Name,
					Response: map[string]any{"error": execErr.Error()},
				}
			}

			functionResponses = append(functionResponses, &genai.Part{FunctionResponse: funcResp})
		}

		// All function responses go back as a single user Content
		if len(functionResponses) > 0 {
			contents = append(contents, &genai.Content{
				Role:  genai.RoleUser,
				Parts: functionResponses,
			})
		}

		if !hasFuncCall {
			var textParts []string
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					textParts = append(textParts, part.Text)
				}
			}
			finalResponse = strings.Join(textParts, "\n")
			break
		}
	}

	if finalResponse == "" {
		return nil, goerr.New("answering session did not converge",
			goerr.V("iterations", maxAnswerIterations))
	}

	history := &model.History{
		ID:        model.NewHistoryID(),
		VideoID:   input.Context.SeedVideoID,
		Question:  input.Question,
		Scope:     input.Context.Scope,
		Rationale: input.Rationale,
		Answer:    finalResponse,
		CreatedAt: time.Now(),
	}
	if err := uc.repo.PutHistory(ctx, history); err != nil {
		logger.Warn("failed to save answer history", "error", err)
	}

	return history, nil
}

// buildAnswerPrompt assembles the system prompt from the base instructions,
// the seed video context, the scope boundary and the tool guidance
func (uc *UseCase) buildAnswerPrompt(ctx context.Context, input AnswerInput) string {
	var b strings.Builder
	b.WriteString(answerPromptRaw)

	b.WriteString("\n\n# Seed video\n\n")
	fmt.Fprintf(&b, "- Title: %s\n", input.Seed.Title)
	fmt.Fprintf(&b, "- Channel: %s\n", input.Seed.Channel)
	fmt.Fprintf(&b, "- URL: %s\n", input.Seed.ID.WatchURL())
	if len(input.Seed.Tags) > 0 {
		fmt.Fprintf(&b, "- Tags: %s\n", strings.Join(input.Seed.Tags, ", "))
	}

	fmt.Fprintf(&b, "\n# Retrieval scope\n\nScope: %s", input.Context.Scope)
	if input.Rationale != "" {
		fmt.Fprintf(&b, " (%s)", input.Rationale)
	}
	b.WriteString("\n")

	if prompts := input.Registry.Prompts(ctx); prompts != "" {
		b.WriteString("\n# Tools\n\n")
		b.WriteString(prompts)
		b.WriteString("\n")
	}

	return b.String()
}
