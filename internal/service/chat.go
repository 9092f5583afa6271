package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"moviechat/internal/apperrors"
	"moviechat/internal/logger"
	"moviechat/internal/model"
	"moviechat/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SearchLogger records chat queries. Optional.
type SearchLogger interface {
	LogSearch(ctx context.Context, entry repository.SearchLogEntry) error
}

// ChatEventCallback is called for streaming chat events
type ChatEventCallback func(event string, data any) error

// ChatResult is the outcome of one chat query
type ChatResult struct {
	SearchID string                 `json:"search_id"`
	Decision model.RoutingDecision  `json:"decision"`
	Fused    *model.FusedResult     `json:"fused,omitempty"`
	Envelope model.ResponseEnvelope `json:"results"`
	Took     int64                  `json:"took_ms"`
}

// ChatService wires router, fusion and formatter into the chat pipeline
type ChatService struct {
	router    *QueryRouter
	fusion    *FusionEngine
	formatter *ResponseFormatter
	searchLog SearchLogger
	logger    *zap.Logger
}

// NewChatService creates a new chat service. searchLog may be nil.
func NewChatService(
	router *QueryRouter,
	fusion *FusionEngine,
	formatter *ResponseFormatter,
	searchLog SearchLogger,
	log *zap.Logger,
) *ChatService {
	return &ChatService{
		router:    router,
		fusion:    fusion,
		formatter: formatter,
		searchLog: searchLog,
		logger:    logger.OrNop(log),
	}
}

// Chat answers a free-text query
func (s *ChatService) Chat(ctx context.Context, query string) (*ChatResult, error) {
	return s.run(ctx, query, nil)
}

// ChatStream answers a query, reporting progress through callback
func (s *ChatService) ChatStream(ctx context.Context, query string, callback ChatEventCallback) (*ChatResult, error) {
	return s.run(ctx, query, callback)
}

func (s *ChatService) run(ctx context.Context, query string, callback ChatEventCallback) (*ChatResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.NewRequestError("Search message missing")
	}

	startTime := time.Now()
	result := &ChatResult{SearchID: uuid.New().String()}

	emit := func(event string, data any) error {
		if callback == nil {
			return nil
		}
		return callback(event, data)
	}

	if err := emit("start", map[string]any{
		"search_id": result.SearchID,
		"status":    "Understanding your request...",
	}); err != nil {
		return nil, err
	}

	result.Decision = s.router.Route(ctx, query)
	if result.Decision.Err != nil {
		s.logger.Warn("routing degraded",
			zap.String("search_id", result.SearchID),
			zap.Error(result.Decision.Err),
		)
	}

	if err := emit("routing", map[string]any{
		"kind":    result.Decision.Kind,
		"filters": model.FilterStrings(result.Decision.Filters),
		"text":    result.Decision.Text,
	}); err != nil {
		return nil, err
	}

	if result.Decision.HasFilters() {
		var streamErr error
		fused := s.fusion.Fuse(ctx, result.Decision.Filters, func(o model.FilterOutcome) {
			if streamErr != nil {
				return
			}
			streamErr = emit("filter", map[string]any{
				"tool":   o.Filter.Tool,
				"filter": o.Filter.String(),
				"count":  o.Count,
				"failed": o.Failed,
			})
		})
		if streamErr != nil {
			return nil, streamErr
		}
		result.Fused = &fused
		result.Envelope = s.formatter.FormatFused(fused)
	} else {
		result.Envelope = s.formatter.FormatText(result.Decision.Text)
	}

	result.Took = time.Since(startTime).Milliseconds()

	s.logger.Info("chat query answered",
		zap.String("search_id", result.SearchID),
		zap.String("decision", string(result.Decision.Kind)),
		zap.Strings("filters", model.FilterStrings(result.Decision.Filters)),
		zap.Int("movies", len(result.Envelope.Movies)),
		zap.Int64("took_ms", result.Took),
	)

	s.logSearch(query, result)

	return result, nil
}

// logSearch writes the query log without blocking the response
func (s *ChatService) logSearch(query string, result *ChatResult) {
	if s.searchLog == nil {
		return
	}

	filters, err := json.Marshal(model.FilterStrings(result.Decision.Filters))
	if err != nil {
		filters = []byte("[]")
	}
	entry := repository.SearchLogEntry{
		SearchID:       result.SearchID,
		Query:          query,
		DecisionKind:   string(result.Decision.Kind),
		Filters:        filters,
		ResultCount:    len(result.Envelope.Movies),
		ResponseTimeMs: int(result.Took),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.searchLog.LogSearch(ctx, entry); err != nil {
			s.logger.Warn("failed to log search", zap.String("search_id", entry.SearchID), zap.Error(err))
		}
	}()
}
