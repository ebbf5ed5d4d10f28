package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/arturoeanton/go-code-context/internal/adapter/ai"
	"github.com/arturoeanton/go-code-context/internal/adapter/notify"
	"github.com/arturoeanton/go-code-context/internal/adapter/store"
	"github.com/arturoeanton/go-code-context/internal/adapter/vcs"
	"github.com/arturoeanton/go-code-context/internal/handler"
	"github.com/arturoeanton/go-code-context/internal/jobs"
	"github.com/arturoeanton/go-code-context/internal/mcp"
	"github.com/arturoeanton/go-code-context/internal/metrics"
	"github.com/arturoeanton/go-code-context/internal/port"
	"github.com/arturoeanton/go-code-context/internal/service"
	"github.com/arturoeanton/go-code-context/pkg/config"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/lib/pq"
)

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("🚀 Starting Code Context",
		"port", cfg.Port,
		"embedding_provider", cfg.EmbeddingProvider,
		"embedding_model", cfg.EmbeddingModel,
		"mcp_enabled", cfg.MCPEnabled,
	)

	// ── Database ─────────────────────────────────────────────────────────
	pgStore, err := store.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pgStore.Close()

	if err := pgStore.EnsureSchema(context.Background(), cfg.EmbeddingDimension); err != nil {
		slog.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	chunkStore := store.NewChunkStore(pgStore)

	// ── Adapters ─────────────────────────────────────────────────────────
	var embedder port.Embedder
	switch cfg.EmbeddingProvider {
	case "ollama":
		embedder = ai.NewOllamaEmbedder(cfg.OllamaBaseURL, cfg.EmbeddingModel, cfg.OllamaToken)
	default:
		embedder = ai.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.EmbeddingModel)
	}

	gitVCS := vcs.NewGitProvider()
	notifier := notify.NewFunctionNotifier(cfg.FunctionsBaseURL, cfg.FunctionsKey, cfg.NotifyFunction)

	// ── Metrics ──────────────────────────────────────────────────────────
	registry := prometheus.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(registry)

	// ── Services ─────────────────────────────────────────────────────────
	tracker := jobs.NewTracker()

	ingestService, err := service.NewIngestService(embedder, chunkStore, gitVCS, notifier, recorder, tracker, cfg.IngestWorkers)
	if err != nil {
		slog.Error("failed to create ingest service", "error", err)
		os.Exit(1)
	}
	defer ingestService.Release()

	contextService := service.NewContextService(embedder, chunkStore, recorder)

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New())

	// Health check
	app.Get("/health", func(c fiber.Ctx) error {
		chunks, err := pgStore.CountChunks(c.Context())
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unhealthy", "error": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "healthy", "chunks": chunks})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	ingestHandler := handler.NewIngestHandler(ingestService)
	ingestHandler.Register(app)

	contextHandler := handler.NewContextHandler(contextService)
	contextHandler.Register(app)

	jobsHandler := handler.NewJobsHandler(tracker)
	jobsHandler.Register(app)

	// ── MCP Server (separate port) ───────────────────────────────────────
	if cfg.MCPEnabled {
		mcpServer := mcp.NewServer(contextService, cfg.MCPPort)
		go func() {
			if err := mcpServer.Start(); err != nil {
				slog.Error("MCP server failed", "error", err)
			}
		}()
	}

	// ── Start ────────────────────────────────────────────────────────────
	slog.Info("🌐 Fiber listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
