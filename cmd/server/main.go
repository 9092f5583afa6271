package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"moviechat/internal/apiclient"
	"moviechat/internal/cache"
	"moviechat/internal/config"
	"moviechat/internal/handler"
	"moviechat/internal/logger"
	"moviechat/internal/repository"
	"moviechat/internal/service"
	"moviechat/internal/tools"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer func() { _ = zlog.Sync() }()

	zlog.Info("movie chat server",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	gin.SetMode(cfg.Server.GinMode)

	// Database handle is established on first query
	repo := repository.NewPostgresRepository(
		cfg.GetPostgreSQLDSN(),
		cfg.PostgreSQL.MaxConnections,
		cfg.PostgreSQL.MaxIdleConnections,
		cfg.PostgreSQL.MoviesTable,
	)
	defer repo.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := repo.Ping(pingCtx); err != nil {
		zlog.Warn("movie store not reachable yet, will retry on first request", zap.Error(err))
	} else {
		zlog.Info("connected to PostgreSQL")
	}
	cancelPing()

	// Store the per-filter endpoints read from
	var directStore tools.MovieStore = repo
	if cfg.Cache.Enabled() {
		redisCache := cache.NewRedisCache(cfg.Cache, zlog)
		defer redisCache.Close()

		pingCtx, cancelPing := context.WithTimeout(context.Background(), 2*time.Second)
		if err := redisCache.Ping(pingCtx); err != nil {
			zlog.Warn("redis not reachable, cache lookups will fall through", zap.Error(err))
		}
		cancelPing()

		directStore = cache.NewCachedStore(repo, redisCache)
		zlog.Info("result cache enabled", zap.String("addr", cfg.Cache.Address), zap.Duration("ttl", cfg.Cache.TTL))
	}
	endpointRegistry := tools.NewRegistry(directStore)

	// Store the chat pipeline's executors read from
	executorRegistry := endpointRegistry
	if cfg.Store.Mode == config.StoreModeHTTP {
		executorRegistry = tools.NewRegistry(apiclient.NewClient(cfg.Store))
		zlog.Info("filter executors use the HTTP store", zap.String("api_base", cfg.Store.APIBase))
	}

	llm := service.NewOpenAIClient(cfg.LLM, zlog)
	if llm.IsEnabled() {
		zlog.Info("LLM client initialized",
			zap.String("api_base", cfg.LLM.APIBase),
			zap.String("chat_model", cfg.LLM.ChatModel),
			zap.Float64("temperature", cfg.LLM.Temperature),
			zap.Int("max_tokens", cfg.LLM.MaxTokens),
		)
	} else {
		zlog.Warn("LLM is disabled, every chat query gets the fallback apology")
	}

	chatService := service.NewChatService(
		service.NewQueryRouter(llm, executorRegistry, zlog),
		service.NewFusionEngine(executorRegistry, cfg.Fusion, zlog),
		service.NewResponseFormatter(),
		repo,
		zlog,
	)

	// Initialize handlers
	chatHandler := handler.NewChatHandler(chatService, zlog)
	movieHandler := handler.NewMovieHandler(endpointRegistry, zlog)

	router := gin.New()
	router.UseRawPath = true
	router.Use(handler.RequestID(), handler.RequestLogger(zlog), handler.Recovery(zlog))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.Server.AllowedOrigins, ",")
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", handler.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{handler.RequestIDHeader, "X-Search-ID"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "healthy",
			"service":     "moviechat",
			"version":     Version,
			"store_mode":  cfg.Store.Mode,
			"llm_enabled": llm.IsEnabled(),
			"cache":       cfg.Cache.Enabled(),
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Legacy chat path kept for existing web clients
	router.POST("/api/ai", chatHandler.Chat)

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/chat", chatHandler.Chat)
		apiV1.POST("/chat/stream", chatHandler.ChatStream)

		// GET /rating/:rating, /year/:year, /title/:title, /genre/:genre
		movieHandler.Register(apiV1)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("starting server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zlog.Error("server forced to shutdown", zap.Error(err))
	}

	zlog.Info("server stopped")
}
