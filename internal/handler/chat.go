package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"moviechat/internal/apperrors"
	"moviechat/internal/logger"
	"moviechat/internal/model"
	"moviechat/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	missingSearchMessage = "Search message missing"
	internalErrorMessage = "Internal server error"
)

// ChatHandler handles chat-related HTTP requests
type ChatHandler struct {
	chatService *service.ChatService
	logger      *zap.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService, log *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger.OrNop(log),
	}
}

// bindSearch reads the {search} body. An unreadable body counts as a missing search.
func bindSearch(c *gin.Context) (string, bool) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Search) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": missingSearchMessage})
		return "", false
	}
	return req.Search, true
}

// Chat handles POST /api/v1/chat and POST /api/ai
func (h *ChatHandler) Chat(c *gin.Context) {
	search, ok := bindSearch(c)
	if !ok {
		return
	}

	result, err := h.chatService.Chat(c.Request.Context(), search)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("X-Search-ID", result.SearchID)
	c.JSON(http.StatusOK, result.Envelope)
}

// ChatStream handles POST /api/v1/chat/stream - SSE streaming chat
func (h *ChatHandler) ChatStream(c *gin.Context) {
	search, ok := bindSearch(c)
	if !ok {
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Streaming not supported"})
		return
	}

	// Set SSE headers
	c.Header("Content-Type", "text/event-stream; charset=utf-8")
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	result, err := h.chatService.ChatStream(c.Request.Context(), search, func(event string, data any) error {
		if err := c.Request.Context().Err(); err != nil {
			return err
		}
		sendSSE(c, event, data)
		flusher.Flush()
		return nil
	})
	if err != nil {
		h.logger.Warn("chat stream aborted", zap.Error(err))
		sendSSE(c, "error", map[string]any{"error": internalErrorMessage})
		flusher.Flush()
		return
	}

	sendSSE(c, "results", result.Envelope)
	flusher.Flush()

	sendSSE(c, "done", map[string]any{"search_id": result.SearchID, "took_ms": result.Took})
	flusher.Flush()
}

func (h *ChatHandler) respondError(c *gin.Context, err error) {
	if apperrors.CodeOf(err) == apperrors.ErrCodeRequest {
		c.JSON(http.StatusBadRequest, gin.H{"error": missingSearchMessage})
		return
	}

	internal := apperrors.NewInternalError(err)
	_ = c.Error(internal)
	h.logger.Error("chat request failed", zap.String("code", string(internal.Code)), zap.Error(internal))
	c.JSON(http.StatusInternalServerError, gin.H{"error": internalErrorMessage})
}

// sendSSE sends a Server-Sent Event
func sendSSE(c *gin.Context, event string, data any) {
	if data == nil {
		fmt.Fprintf(c.Writer, "event: %s\ndata: {}\n\n", event)
		return
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		fmt.Fprintf(c.Writer, "event: error\ndata: {\"error\": \"JSON marshal failed\"}\n\n")
		return
	}
	fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, jsonData)
}
