package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	httpapi "agentforge-backend/internal/api/http"
	"agentforge-backend/internal/cache"
	"agentforge-backend/internal/chat"
	"agentforge-backend/internal/config"
	"agentforge-backend/internal/ledger"
	"agentforge-backend/internal/logger"
	"agentforge-backend/internal/repository/postgres"
	"agentforge-backend/internal/security"
	"agentforge-backend/internal/service"
	"agentforge-backend/internal/utils"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting AgentForge Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Redis snapshot cache. Redis is optional: without it every
	// read goes straight to the database.
	var snapshots *cache.SnapshotCache
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Warn("Redis unavailable, continuing without snapshot cache", "error", err)
		} else {
			snapshots = cache.NewSnapshotCache(rdb, time.Duration(cfg.Redis.TTLSeconds)*time.Second)
			logger.Info("Redis snapshot cache enabled", "addr", cfg.Redis.Addr, "ttl_seconds", cfg.Redis.TTLSeconds)
		}
	}

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry, cfg.JWT.RefreshTokenExpiry)

	// Marketplace policy
	creationFee, err := utils.ParseSei(cfg.Marketplace.CreationFeeSei)
	if err != nil {
		log.Fatalf("Invalid creation fee %q: %v", cfg.Marketplace.CreationFeeSei, err)
	}
	treasury, err := security.NormalizeAddress(cfg.Marketplace.TreasuryAccount)
	if err != nil {
		log.Fatalf("Invalid treasury account %q: %v", cfg.Marketplace.TreasuryAccount, err)
	}

	// Transaction submitter for the async write path
	submitter := ledger.NewSubmitter(30 * time.Second)

	// LLM client for agent chat
	chatClient := chat.NewClient(nil, chat.Config{
		APIKey:          cfg.LLM.APIKey,
		Model:           cfg.LLM.Model,
		BaseURL:         cfg.LLM.BaseURL,
		MaxOutputTokens: cfg.LLM.MaxOutputTokens,
		Temperature:     cfg.LLM.Temperature,
		Timeout:         time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
	})

	// Initialize Services
	directorySvc := service.NewDirectoryService(store.AgentRepository, submitter, snapshots, creationFee, treasury)
	rentalSvc := service.NewRentalService(store.RentalRepository, submitter, snapshots, cfg.Marketplace.PlatformFeeBps, treasury)
	ratingSvc := service.NewRatingService(store.RatingRepository, submitter, snapshots)
	chatSvc := service.NewChatService(directorySvc, chatClient)
	ledgerSvc := service.NewLedgerService(store.LedgerRepository, submitter)
	txSvc := service.NewTxService(submitter)

	// Initialize HTTP layer
	handlers := httpapi.NewHandlers(tokenManager, directorySvc, rentalSvc, ratingSvc, chatSvc, ledgerSvc, txSvc, cfg.Server.AllowedOrigins)
	router := httpapi.NewRouter(handlers, tokenManager, cfg)

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // long enough for /tx/{hash}/wait
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}
