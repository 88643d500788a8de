package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"chatrelay/internal/auth"
	"chatrelay/internal/config"
	chatRepo "chatrelay/internal/domain/repositories/chat"
	chatSvc "chatrelay/internal/domain/services/chat"
	"chatrelay/internal/handler"
	"chatrelay/internal/middleware"
	"chatrelay/internal/repository/memory"
	"chatrelay/internal/repository/postgres"
	postgresChat "chatrelay/internal/repository/postgres/chat"
	redisRepo "chatrelay/internal/repository/redis"
	serviceChat "chatrelay/internal/service/chat"
	openaiProvider "chatrelay/internal/service/llm/providers/openai"
	"chatrelay/internal/service/llm/tools"
	"chatrelay/internal/service/llm/tools/external"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logger, logCloser, err := config.NewLogger(cfg.Environment, cfg.LogDir, cfg.LogMaxFiles)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"backend", cfg.ChatBackend,
		"table_prefix", cfg.TablePrefix,
	)

	ctx := context.Background()
	healthChecks := map[string]handler.HealthCheckFunc{}

	// Transcript persistence (optional)
	var pool *pgxpool.Pool
	var sink chatSvc.TranscriptSink = serviceChat.NopSink{}
	var transcriptRepo chatRepo.TranscriptRepository
	if cfg.PersistenceEnabled() {
		pool, err = postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to create connection pool: %v", err)
		}
		defer pool.Close()

		tables := postgres.NewTableNames(cfg.TablePrefix)
		if err := postgres.CheckSchema(ctx, pool, tables); err != nil {
			logger.Warn("transcript schema check failed", "error", err)
		}

		transcriptRepo = postgresChat.NewTranscriptRepository(&postgres.RepositoryConfig{
			Pool:   pool,
			Tables: tables,
			Logger: logger,
		})
		sink = serviceChat.NewBestEffortSink(transcriptRepo, cfg.TranscriptWriteTimeout, logger)
		healthChecks["postgres"] = pool.Ping
		logger.Info("transcript persistence enabled", "table", tables.ChatMessages)
	} else {
		logger.Warn("DATABASE_URL not set - transcripts will not be persisted")
	}

	// Session directory store
	var sessionStore chatRepo.SessionStore
	switch cfg.SessionStore {
	case "redis":
		client, err := redisRepo.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer client.Close()
		sessionStore = redisRepo.NewSessionStore(client, cfg.RedisKeyPrefix)
		healthChecks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		logger.Info("session store initialized", "type", "redis", "prefix", cfg.RedisKeyPrefix)
	default:
		sessionStore = memory.NewSessionStore()
		logger.Info("session store initialized", "type", "memory")
	}

	// Tools
	catalog, err := tools.LoadCatalog()
	if err != nil {
		log.Fatalf("Failed to load tool catalog: %v", err)
	}
	var crmClient external.CRMClient
	if cfg.CRMWebhookURL != "" {
		crmClient = external.NewWebhookCRMClient(cfg.CRMWebhookURL, cfg.CRMTimeout)
	} else {
		logger.Warn("CRM_WEBHOOK_URL not set - lead tools will report a configuration error")
	}
	toolRegistry := tools.NewToolRegistryBuilder(catalog).
		WithConfig(tools.DefaultToolConfig()).
		WithLeadTools(crmClient).
		Build()

	// Remote LLM APIs
	sdk, err := openaiProvider.NewSDKClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
	if err != nil {
		log.Fatalf("Failed to create OpenAI client: %v", err)
	}
	var backends serviceChat.Backends
	switch cfg.ChatBackend {
	case config.BackendAssistant:
		assistants, err := openaiProvider.NewAssistantsClient(sdk, cfg.OpenAIAssistantID)
		if err != nil {
			log.Fatalf("Failed to create assistants client: %v", err)
		}
		backends.Sessions = assistants
	case config.BackendCompletion:
		completion, err := openaiProvider.NewCompletionClient(sdk, cfg.OpenAIModel)
		if err != nil {
			log.Fatalf("Failed to create completion client: %v", err)
		}
		backends.Completion = completion
	}

	chatService, err := serviceChat.SetupChatService(cfg, backends, sessionStore, toolRegistry, sink, logger)
	if err != nil {
		log.Fatalf("Failed to setup chat service: %v", err)
	}

	// Create handlers
	chatHandler := handler.NewChatHandler(chatService, logger)
	healthHandler := handler.NewHealthHandler(healthChecks)

	// Setup router
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", healthHandler.HealthCheck)

	// Chat routes
	mux.HandleFunc("POST /chat", chatHandler.PostChat)
	mux.HandleFunc("OPTIONS /chat", chatHandler.Preflight)

	// Admin routes (require persistence and admin key material)
	if transcriptRepo != nil && cfg.AdminEnabled() {
		verifier, err := auth.NewJWTVerifier(cfg.AdminJWKSURL, cfg.AdminJWTSecret, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer verifier.Close()

		transcriptHandler := handler.NewTranscriptHandler(serviceChat.NewTranscriptService(transcriptRepo, logger), logger)
		adminAuth := middleware.AdminAuth(verifier, logger)
		mux.Handle("GET /admin/transcripts", adminAuth(http.HandlerFunc(transcriptHandler.ListTranscripts)))
		mux.Handle("GET /admin/transcripts/export.csv", adminAuth(http.HandlerFunc(transcriptHandler.ExportCSV)))
		mux.Handle("GET /admin/transcripts/export.ndjson", adminAuth(http.HandlerFunc(transcriptHandler.ExportNDJSON)))
		logger.Info("admin routes registered")
	} else {
		logger.Warn("admin routes disabled - need DATABASE_URL and ADMIN_JWKS_URL or ADMIN_JWT_SECRET")
	}

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → RequestLogger → Recovery → Routes
	h = middleware.Recovery(logger)(h)
	h = middleware.RequestLogger(logger)(h)

	// CORS - outermost so OPTIONS pre-flight requests are answered first
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	})
	h = corsHandler.Handler(h)

	// Turns may poll for up to RunTimeout, so the write deadline must outlast it
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RunTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	logger.Info("shutting down", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
