// Package tool dispatches Gemini function calls of an answering session to
// first-party capabilities. Tools may hide themselves by returning a nil
// spec, so what the model sees is decided per session.
package tool

import (
	"context"

	"google.golang.org/genai"
)

// Tool is one capability offered to the model during an answering session
type Tool interface {
	// Spec returns the tool specification for Gemini function calling.
	// Returns nil when the tool is unavailable in the current session;
	// such tools are never announced to the model.
	Spec() *genai.Tool

	// Execute runs the tool with the given function call and returns the response
	Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error)

	// Prompt returns additional guidance to be added to the system prompt.
	// Returns empty string if no additional prompt is needed.
	Prompt(ctx context.Context) string
}
