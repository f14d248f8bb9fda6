package rag

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/m-mizutani/burrow/pkg/model"
	"github.com/m-mizutani/burrow/pkg/utils/logging"
	"google.golang.org/genai"
)

//go:embed prompt/infer_scope.md
var inferScopePromptRaw string

// scopeDecision is the structured classification output
type scopeDecision struct {
	Scope     string `json:"scope"`
	Rationale string `json:"rationale"`
}

// InferScope classifies the question into a retrieval scope. Classification
// is advisory: any model failure, malformed output or unknown scope value
// falls back to ScopeAny so that answering always proceeds.
func (uc *UseCase) InferScope(ctx context.Context, question string, seed *model.VideoMeta) (model.Scope, string) {
	logger := logging.From(ctx)

	contents := []*genai.Content{
		genai.NewContentFromText(fmt.Sprintf(
			"Seed video title: %s\nSeed video channel: %s\nQuestion: %s",
			seed.Title, seed.Channel, question,
		), genai.RoleUser),
	}

	thinkingBudget := int32(0)
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(inferScopePromptRaw, ""),
		ResponseMIMEType:  "application/json",
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  &thinkingBudget,
		},
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"scope": {
					Type:        genai.TypeString,
					Description: "Retrieval scope for the question",
					Enum: []string{
						string(model.ScopeOneVideo),
						string(model.ScopeSeedPlusTag),
						string(model.ScopeSeedPlusChannel),
						string(model.ScopeAny),
					},
				},
				"rationale": {
					Type:        genai.TypeString,
					Description: "One short sentence quoting the cue that decided the scope",
				},
			},
			Required: []string{"scope", "rationale"},
		},
	}

	resp, err := uc.gemini.GenerateContent(ctx, contents, config)
	if err != nil {
		logger.Warn("scope classification failed, falling back to any", "error", err)
		return model.ScopeAny, "classification unavailable"
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		logger.Warn("empty scope classification response, falling back to any")
		return model.ScopeAny, "classification unavailable"
	}

	rawJSON := resp.Candidates[0].Content.Parts[0].Text

	var decision scopeDecision
	if err := json.Unmarshal([]byte(rawJSON), &decision); err != nil {
		logger.Warn("malformed scope classification, falling back to any", "json", rawJSON, "error", err)
		return model.ScopeAny, "classification unavailable"
	}

	scope, err := model.ParseScope(decision.Scope)
	if err != nil {
		logger.Warn("unknown scope from classifier, falling back to any", "scope", decision.Scope)
		return model.ScopeAny, "classification unavailable"
	}

	logger.Debug("scope inferred", "scope", scope, "rationale", decision.Rationale)
	return scope, decision.Rationale
}
