package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"moviechat/internal/apperrors"
	"moviechat/internal/logger"
	"moviechat/internal/model"
	"moviechat/internal/tools"
	"moviechat/internal/utils"

	"go.uber.org/zap"
)

// QueryRouter turns a user query into a RoutingDecision with the help of the
// chat model. It never returns an error: model failures become an error
// decision carrying an apology.
type QueryRouter struct {
	chat     ChatModel
	registry *tools.Registry
	logger   *zap.Logger
}

// NewQueryRouter creates a new query router
func NewQueryRouter(chat ChatModel, registry *tools.Registry, log *zap.Logger) *QueryRouter {
	return &QueryRouter{
		chat:     chat,
		registry: registry,
		logger:   logger.OrNop(log),
	}
}

// inlineCall is a tool call the model wrote as JSON text
type inlineCall struct {
	Name       string          `json:"name"`
	Arguments  json.RawMessage `json:"arguments"`
	Parameters json.RawMessage `json:"parameters"`
}

// Route produces exactly one RoutingDecision for text
func (r *QueryRouter) Route(ctx context.Context, text string) model.RoutingDecision {
	decision := r.route(ctx, strings.TrimSpace(text))
	routingDecisionsTotal.WithLabelValues(string(decision.Kind)).Inc()
	return decision
}

func (r *QueryRouter) route(ctx context.Context, text string) model.RoutingDecision {
	if r.chat == nil || !r.chat.IsEnabled() {
		return model.NewErrorDecision(apperrors.NewRouterError(fmt.Errorf("LLM client is not enabled")), routerApology)
	}

	messages := []ChatMessage{
		{Role: "system", Content: routerSystemPrompt},
		{Role: "user", Content: text},
	}

	reply, err := r.chat.ChatWithTools(ctx, messages, r.registry.Definitions())
	if err != nil {
		r.logger.Error("chat model call failed", zap.Error(err))
		return model.NewErrorDecision(apperrors.NewRouterError(err), routerApology)
	}
	if reply == nil {
		return model.NewErrorDecision(apperrors.NewRouterError(fmt.Errorf("empty model reply")), routerApology)
	}

	content := strings.TrimSpace(reply.Content)
	calls := reply.ToolCalls
	inline := false
	if len(calls) == 0 {
		calls = r.inlineToolCalls(content)
		inline = len(calls) > 0
	}

	if len(calls) == 0 {
		if content == "" {
			return model.NewTextDecision(emptyAnswerFallback)
		}
		return model.NewTextDecision(content)
	}

	filters := r.collectFilters(calls)
	if len(filters) > 0 {
		return model.NewFilterDecision(filters)
	}

	// Every proposed call was unknown or invalid
	if !inline && content != "" {
		return model.NewTextDecision(content)
	}
	return model.NewTextDecision(invalidFiltersMessage)
}

// collectFilters validates proposed calls, drops unknown or invalid ones and
// collapses duplicates, keeping the model's order
func (r *QueryRouter) collectFilters(calls []ToolCall) []model.FilterSpec {
	seen := make(map[string]bool, len(calls))
	filters := make([]model.FilterSpec, 0, len(calls))

	for _, call := range calls {
		spec, err := r.registry.Parse(call.Name, call.Arguments)
		if err != nil {
			r.logger.Warn("dropping proposed tool call",
				zap.String("tool", call.Name),
				zap.ByteString("arguments", call.Arguments),
				zap.String("code", string(apperrors.CodeOf(err))),
				zap.Error(err),
			)
			continue
		}

		key := spec.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		filters = append(filters, spec)
	}

	return filters
}

// inlineToolCalls recovers tool calls written into the reply text as JSON,
// either one {name, arguments} object or a list of them. Only objects naming
// a known tool count.
func (r *QueryRouter) inlineToolCalls(content string) []ToolCall {
	if !strings.ContainsAny(content, "{[") {
		return nil
	}

	var candidates []inlineCall
	if err := utils.ParseAIJSON(content, &candidates); err != nil {
		candidates = nil
		for _, snippet := range utils.ExtractJSONSnippets(content) {
			var c inlineCall
			if err := json.Unmarshal([]byte(snippet), &c); err == nil {
				candidates = append(candidates, c)
			}
		}
		// Last resort: one object that needs repairs first
		var single inlineCall
		if len(candidates) == 0 && utils.ParseAIJSON(content, &single) == nil {
			candidates = []inlineCall{single}
		}
	}

	var calls []ToolCall
	for _, c := range candidates {
		if !r.registry.Known(c.Name) {
			continue
		}
		args := c.Arguments
		if len(args) == 0 {
			args = c.Parameters
		}
		calls = append(calls, ToolCall{Name: c.Name, Arguments: args})
	}

	if len(calls) > 0 {
		r.logger.Debug("recovered inline tool calls", zap.Int("count", len(calls)))
	}
	return calls
}
