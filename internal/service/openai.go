package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"moviechat/internal/config"
	"moviechat/internal/logger"
	"moviechat/internal/tools"

	"go.uber.org/zap"
)

// OpenAIClient talks to an OpenAI-compatible chat completions endpoint
// (OpenAI itself, Ollama's /v1, vLLM and similar)
type OpenAIClient struct {
	config     config.LLMConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewOpenAIClient creates a new OpenAI-compatible client
func NewOpenAIClient(cfg config.LLMConfig, log *zap.Logger) *OpenAIClient {
	return &OpenAIClient{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.OrNop(log),
	}
}

// IsEnabled returns whether the client is configured and ready
func (c *OpenAIClient) IsEnabled() bool {
	return c.config.Enabled && c.config.APIBase != ""
}

// ChatCompletionRequest represents a chat completion request
type ChatCompletionRequest struct {
	Model       string          `json:"model"`
	Messages    []ChatMessage   `json:"messages"`
	Temperature *float64        `json:"temperature,omitempty"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Tools       []tools.ToolDef `json:"tools,omitempty"`
	ToolChoice  string          `json:"tool_choice,omitempty"`
	Stream      bool            `json:"stream"`
}

// completionToolCall is a tool call in the OpenAI wire format
type completionToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	} `json:"function"`
}

// ChatCompletionResponse represents the API response
type ChatCompletionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role      string               `json:"role"`
			Content   *string              `json:"content"`
			ToolCalls []completionToolCall `json:"tool_calls"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// ChatWithTools sends messages with the tool declarations and returns the
// first choice of the reply
func (c *OpenAIClient) ChatWithTools(ctx context.Context, messages []ChatMessage, defs []tools.ToolDef) (*ChatWithToolsResult, error) {
	if !c.IsEnabled() {
		return nil, fmt.Errorf("LLM client is not enabled")
	}

	temperature := c.config.Temperature
	req := ChatCompletionRequest{
		Model:       c.config.ChatModel,
		Messages:    messages,
		Temperature: &temperature,
		MaxTokens:   c.config.MaxTokens,
		Tools:       defs,
	}
	if len(defs) > 0 {
		req.ToolChoice = "auto"
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", c.config.APIBase)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.config.APIKey))
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var completion ChatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("response contained no choices")
	}

	choice := completion.Choices[0]
	result := &ChatWithToolsResult{FinishReason: choice.FinishReason}
	if choice.Message.Content != nil {
		result.Content = *choice.Message.Content
	}
	for _, tc := range choice.Message.ToolCalls {
		result.ToolCalls = append(result.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	c.logger.Debug("chat completion",
		zap.String("model", completion.Model),
		zap.Int("tool_calls", len(result.ToolCalls)),
		zap.String("finish_reason", result.FinishReason),
		zap.Int("total_tokens", completion.Usage.TotalTokens),
	)

	return result, nil
}
