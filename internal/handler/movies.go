package handler

import (
	"encoding/json"
	"net/http"

	"moviechat/internal/apperrors"
	"moviechat/internal/logger"
	"moviechat/internal/model"
	"moviechat/internal/tools"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MovieHandler serves the per-filter endpoints straight from the movie store
type MovieHandler struct {
	registry *tools.Registry
	logger   *zap.Logger
}

// NewMovieHandler creates a new movie handler. registry must read from the
// store directly, never through these endpoints.
func NewMovieHandler(registry *tools.Registry, log *zap.Logger) *MovieHandler {
	return &MovieHandler{
		registry: registry,
		logger:   logger.OrNop(log),
	}
}

// Register mounts GET /<dimension>/:<dimension> for every registered tool
func (h *MovieHandler) Register(group *gin.RouterGroup) {
	for _, name := range h.registry.Names() {
		dim := name.Dimension()
		group.GET("/"+dim+"/:"+dim, h.find(name))
	}
}

// find handles GET /api/v1/{rating|year|title|genre}/:value
func (h *MovieHandler) find(name model.ToolName) gin.HandlerFunc {
	dim := name.Dimension()

	return func(c *gin.Context) {
		raw, err := json.Marshal(map[string]string{dim: c.Param(dim)})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": internalErrorMessage})
			return
		}

		spec, err := h.registry.Parse(string(name), raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		movies, err := h.registry.Execute(c.Request.Context(), spec)
		if err != nil {
			if apperrors.IsValidation(err) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			h.logger.Error("movie lookup failed", zap.String("filter", spec.String()), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch movies"})
			return
		}

		if len(movies) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"message": "No movies found"})
			return
		}

		c.JSON(http.StatusOK, movies)
	}
}
