package service

import (
	"context"
	"encoding/json"

	"moviechat/internal/tools"
)

// ChatModel is the language-model boundary used by the query router: it takes
// a conversation plus callable tool descriptors and returns either text or
// proposed tool calls.
type ChatModel interface {
	ChatWithTools(ctx context.Context, messages []ChatMessage, defs []tools.ToolDef) (*ChatWithToolsResult, error)

	// IsEnabled returns whether the client is configured and ready
	IsEnabled() bool
}

// ChatMessage represents a single message in the conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ToolCall is one tool invocation proposed by the model
type ToolCall struct {
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ChatWithToolsResult is the model's reply: free text, tool calls, or both
type ChatWithToolsResult struct {
	Content      string
	ToolCalls    []ToolCall
	FinishReason string
}

// Ensure OpenAIClient implements ChatModel
var _ ChatModel = (*OpenAIClient)(nil)
