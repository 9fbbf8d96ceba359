package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/policylens/backend/internal/api/handlers"
	"github.com/policylens/backend/internal/cache/redis"
	"github.com/policylens/backend/internal/document"
	"github.com/policylens/backend/internal/llm"
	"github.com/policylens/backend/internal/metrics"
	"github.com/policylens/backend/internal/middleware/auth"
	"github.com/policylens/backend/internal/middleware/ratelimit"
	"github.com/policylens/backend/internal/middleware/security"
	"github.com/policylens/backend/internal/middleware/validation"
	"github.com/policylens/backend/internal/query"
	"github.com/policylens/backend/internal/retrieval"
	"github.com/policylens/backend/internal/storage/sqlite"
	"github.com/policylens/backend/internal/vector/milvus"
	"github.com/policylens/backend/pkg/config"
	appLogger "github.com/policylens/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting PolicyLens API Server")

	metrics.Init()

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	if err := sqliteClient.InitSchema(); err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	milvusClient, err := milvus.NewClient(
		context.Background(),
		cfg.Milvus.Endpoint,
		cfg.Milvus.CollectionName,
		cfg.Milvus.VectorDim,
	)
	if err != nil {
		appLogger.Fatal("Failed to create Milvus client", zap.Error(err))
	}
	defer milvusClient.Close()

	if err := milvusClient.CreateCollection(context.Background()); err != nil {
		appLogger.Fatal("Failed to create collection", zap.Error(err))
	}

	var cache query.Cache
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			time.Duration(cfg.Redis.TTLSec)*time.Second,
		)
		if err != nil {
			appLogger.Fatal("Failed to create Redis client", zap.Error(err))
		}
		defer redisClient.Close()
		cache = redisClient
	}

	llmClient := llm.NewClient(
		cfg.LLM.APIKey,
		cfg.LLM.Model,
		cfg.LLM.EmbeddingModel,
		cfg.LLM.Temperature,
		cfg.LLM.MaxTokens,
		time.Duration(cfg.LLM.TimeoutSec)*time.Second,
	)

	processor := document.NewProcessor(
		cfg.Document.ChunkSize,
		cfg.Document.ChunkOverlap,
		time.Duration(cfg.Document.DownloadTimeoutSec)*time.Second,
		cfg.Document.MaxDownloadBytes,
	)

	retrievalCfg := retrieval.DefaultConfig()
	retrievalCfg.TopN = cfg.Retrieval.TopN
	retrievalCfg.MinScore = cfg.Retrieval.MinScore
	retrievalCfg.OverFetch = cfg.Retrieval.OverFetch
	retrievalCfg.MaxBoost = cfg.Retrieval.MaxBoost

	engine := query.NewEngine(query.Deps{
		Processor:   processor,
		Embedder:    llmClient,
		Store:       milvusClient,
		Synthesizer: llmClient,
		Cache:       cache,
		History:     sqliteClient,
	}, query.Config{
		Retrieval:        retrievalCfg,
		MaxParallel:      cfg.Retrieval.MaxParallel,
		RetrievalTimeout: time.Duration(cfg.Retrieval.TimeoutSec) * time.Second,
	})

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	rateLimiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: 60,
		Logger:               appLogger.GetLogger(),
	})
	defer rateLimiter.Stop()

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))
	app.Use(rateLimiter.Middleware())

	runHandler := handlers.NewRunHandler(engine)
	historyHandler := handlers.NewHistoryHandler(sqliteClient)
	wsHandler := handlers.NewWebSocketHandler(engine)

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	app.Get("/metrics", metrics.MetricsHandler())

	protected := api.Group("/", auth.Middleware(cfg.Auth.Token))
	protected.Post("/hackrx/run",
		validation.Middleware(validation.Config{Logger: appLogger.GetLogger()}),
		runHandler.HandleRun,
	)
	protected.Get("/documents/:id/questions", historyHandler.GetDocumentHistory)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(wsHandler.HandleConnection))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
