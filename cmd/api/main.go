package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/contentpulse/backend/internal/api/handlers"
	"github.com/contentpulse/backend/internal/cache/redis"
	"github.com/contentpulse/backend/internal/fetch"
	"github.com/contentpulse/backend/internal/ingestion"
	"github.com/contentpulse/backend/internal/llm"
	"github.com/contentpulse/backend/internal/metrics"
	"github.com/contentpulse/backend/internal/middleware/ratelimit"
	"github.com/contentpulse/backend/internal/middleware/security"
	"github.com/contentpulse/backend/internal/search/web"
	"github.com/contentpulse/backend/internal/similarity"
	"github.com/contentpulse/backend/internal/storage/sqlite"
	"github.com/contentpulse/backend/pkg/config"
	appLogger "github.com/contentpulse/backend/pkg/logger"
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

	appLogger.Info("Starting ContentPulse intelligence store")

	metrics.Init()

	mode := sqlite.ModeFile
	if cfg.SQLite.InMemory {
		mode = sqlite.ModeMemory
	}
	db, err := sqlite.NewClient(sqlite.Options{Mode: mode, Path: cfg.SQLite.Path})
	if err != nil {
		appLogger.Fatal("Failed to open store", zap.Error(err))
	}
	defer db.Close()

	if err := db.InitSchema(); err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	var cache *redis.Client
	if cfg.Redis.Enabled {
		cache, err = redis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Warn("Redis unavailable, running without cache", zap.Error(err))
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	fetcher := fetch.NewFetcher(time.Duration(cfg.Fetcher.TimeoutSec)*time.Second, cfg.Fetcher.UserAgent)
	searchClient := web.NewClient(cfg.Search.APIKey, cfg.Search.Region, time.Duration(cfg.Search.TimeoutSec)*time.Second)

	var llmClient *llm.Client
	if cfg.LLM.APIKey != "" {
		llmClient = llm.NewClient(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Temperature,
			cfg.LLM.MaxTokens, time.Duration(cfg.LLM.TimeoutSec)*time.Second)
	} else {
		appLogger.Warn("No LLM API key configured, summaries disabled")
	}

	processor := ingestion.NewProcessor(db, fetcher, llmClient)
	simEngine := similarity.NewEngine(db)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	limiter := ratelimit.New(ratelimit.Config{
		RequestsPerMinute: cfg.Server.RateLimit,
		Logger:            appLogger.GetLogger(),
	})
	defer limiter.Stop()

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(security.HeadersMiddleware(security.HeadersConfig{
		IsDevelopment: cfg.Logging.Level == "debug",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-API-Key",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(limiter.Middleware())

	if counts, err := db.CountTopicsByStatus(); err == nil {
		metrics.SetTopicCounts(counts)
	}

	topicHandler := handlers.NewTopicHandler(db)
	documentHandler := handlers.NewDocumentHandler(db, processor)
	serpHandler := handlers.NewSERPHandler(db, searchClient, cache,
		time.Duration(cfg.Redis.TTLSec)*time.Second)
	analysisHandler := handlers.NewAnalysisHandler(db, fetcher, cache,
		time.Duration(cfg.Redis.TTLSec)*time.Second)
	similarityHandler := handlers.NewSimilarityHandler(db, simEngine)
	clusterHandler := handlers.NewClusterHandler(db)
	articleHandler := handlers.NewArticleHandler(db)

	api := app.Group("/api/v1")

	api.Post("/topics", topicHandler.CreateTopic)
	api.Get("/topics", topicHandler.ListTopics)
	api.Get("/topics/:id", topicHandler.GetTopic)
	api.Put("/topics/:id", topicHandler.UpdateTopic)
	api.Delete("/topics/:id", topicHandler.DeleteTopic)

	api.Post("/documents", documentHandler.IngestDocument)
	api.Get("/documents", documentHandler.ListDocuments)
	api.Get("/documents/search", documentHandler.SearchDocuments)
	api.Get("/documents/:id", documentHandler.GetDocument)
	api.Delete("/documents/:id", documentHandler.DeleteDocument)

	api.Post("/topics/:id/serp", serpHandler.RefreshSnapshot)
	api.Get("/topics/:id/serp", serpHandler.LatestSnapshot)
	api.Get("/topics/:id/serp/history", serpHandler.SnapshotHistory)

	api.Post("/analyze/content", analysisHandler.AnalyzeContent)
	api.Get("/scores/content", analysisHandler.GetContentScore)
	api.Post("/topics/:id/difficulty", analysisHandler.AnalyzeDifficulty)
	api.Get("/topics/:id/difficulty", analysisHandler.GetDifficulty)

	api.Get("/topics/:id/related", similarityHandler.RelatedTopics)
	api.Get("/topics/:id/synthesis", similarityHandler.Synthesis)
	api.Get("/topics/:id/links", similarityHandler.InternalLinks)

	api.Post("/clusters", clusterHandler.CreateCluster)
	api.Get("/clusters/:id", clusterHandler.GetCluster)
	api.Post("/clusters/:id/spokes", clusterHandler.AddSpoke)

	api.Post("/articles", articleHandler.CreateArticle)
	api.Get("/articles/:id", articleHandler.GetArticle)
	api.Get("/topics/:id/articles", articleHandler.ListForTopic)
	api.Get("/costs", articleHandler.Costs)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		if err := db.DB().Ping(); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "store unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ready"})
	})

	app.Get("/metrics", metrics.MetricsHandler())

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
