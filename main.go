package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/blociq/blociq-engine/pkg/adapters"
	"github.com/blociq/blociq-engine/pkg/auth"
	"github.com/blociq/blociq-engine/pkg/config"
	"github.com/blociq/blociq-engine/pkg/database"
	"github.com/blociq/blociq-engine/pkg/handlers"
	"github.com/blociq/blociq-engine/pkg/llm"
	"github.com/blociq/blociq-engine/pkg/logging"
	"github.com/blociq/blociq-engine/pkg/mcp"
	mcpauth "github.com/blociq/blociq-engine/pkg/mcp/auth"
	"github.com/blociq/blociq-engine/pkg/mcp/tools"
	"github.com/blociq/blociq-engine/pkg/middleware"
	"github.com/blociq/blociq-engine/pkg/reports"
	"github.com/blociq/blociq-engine/pkg/repositories"
	"github.com/blociq/blociq-engine/pkg/storage"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := buildLogger(cfg.Env)
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("version", cfg.Version),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
	)

	ctx := context.Background()

	if err := migrate(cfg, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.String("error", logging.SanitizeError(err)))
	}

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.String("error", logging.SanitizeError(err)))
	}
	defer db.Close()

	tenants := database.NewTenantScopeProvider(db)

	verifier, err := auth.NewVerifier(ctx, cfg.Auth.JWKSEndpoints, cfg.Auth.EnableVerification, logger)
	if err != nil {
		logger.Fatal("Failed to initialize token verifier", zap.Error(err))
	}
	authMiddleware := auth.NewMiddleware(verifier, logger)

	registry := reports.NewRegistry()
	handlerSet := &reports.HandlerSet{
		Compliance: repositories.NewComplianceRepository(),
		Documents:  repositories.NewDocumentRepository(),
		Buildings:  repositories.NewBuildingRepository(),
	}
	handlerSet.RegisterAll(registry)
	engine := reports.NewEngine(registry, logger)

	var exports storage.Exports
	if cfg.Exports.Bucket != "" {
		exports, err = storage.NewS3Exports(ctx, storage.Config{
			Bucket:       cfg.Exports.Bucket,
			Region:       cfg.Exports.Region,
			Endpoint:     cfg.Exports.Endpoint,
			SignedURLTTL: time.Duration(cfg.Exports.SignedURLTTLSeconds) * time.Second,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to initialize export storage", zap.Error(err))
		}
	}

	completer, err := llm.NewClient(&llm.Config{
		Provider: cfg.AI.Provider,
		BaseURL:  cfg.AI.BaseURL,
		Model:    cfg.AI.Model,
		APIKey:   cfg.AI.APIKey,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize LLM client", zap.Error(err))
	}

	buildings := repositories.NewBuildingRepository()
	leases := repositories.NewLeaseRepository()
	qaAdapter := adapters.NewQAAdapter(buildings, leases, logger)
	replyAdapter := adapters.NewReplyAdapter(buildings, leases, completer, logger)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(cfg, logger)
	healthHandler.RegisterRoutes(mux)

	api := http.NewServeMux()
	handlers.NewAskHandler(engine, exports, qaAdapter, replyAdapter, tenants, logger).RegisterRoutes(api)
	handlers.NewReplyHandler(replyAdapter, tenants, logger).RegisterRoutes(api)
	handlers.NewReportsHandler(engine, registry, tenants, logger).RegisterRoutes(api)
	mux.Handle("/api/v1/", authMiddleware.RequireAuth(api))

	if cfg.MCP.Enabled {
		mcpServer := mcp.NewServer("blociq-engine", cfg.Version, logger)
		tools.RegisterHealthTool(mcpServer.MCP(), cfg.Version)
		tools.RegisterReportTools(mcpServer.MCP(), &tools.ReportToolDeps{
			Engine:   engine,
			Registry: registry,
			Tenants:  tenants,
			Logger:   logger,
		})
		tools.RegisterGlossaryTools(mcpServer.MCP())
		mcpAuth := mcpauth.NewMiddleware(verifier, logger)
		mux.Handle("/mcp", mcpAuth.RequireAuth(mcpServer.NewStreamableHTTPServer()))
		logger.Info("MCP server enabled", zap.String("endpoint", "/mcp"))
	}

	srv := &http.Server{
		Addr:              cfg.BindAddr + ":" + cfg.Port,
		Handler:           middleware.RequestLogger(logger)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting blociq-engine",
			zap.String("addr", srv.Addr),
			zap.String("version", cfg.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}

// migrate applies pending schema migrations over a short-lived database/sql
// connection; the pgx pool is opened only after the schema is current.
func migrate(cfg *config.Config, logger *zap.Logger) error {
	sqlDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()

	return database.RunMigrations(sqlDB, cfg.Database.MigrationsPath, logger)
}

func buildLogger(env string) *zap.Logger {
	if env == "local" || env == "development" {
		logger, err := zap.NewDevelopment()
		if err != nil {
			log.Fatalf("Failed to build logger: %v", err)
		}
		return logger
	}
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	return logger
}
