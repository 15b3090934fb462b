package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ryoureddy/medadapt-content-server/internal/logger"
	"github.com/ryoureddy/medadapt-content-server/internal/server/analysis"
	"github.com/ryoureddy/medadapt-content-server/internal/server/api"
	"github.com/ryoureddy/medadapt-content-server/internal/server/backup"
	"github.com/ryoureddy/medadapt-content-server/internal/server/resolve"
	"github.com/ryoureddy/medadapt-content-server/internal/server/sources"
	"github.com/ryoureddy/medadapt-content-server/internal/server/store"
	"github.com/ryoureddy/medadapt-content-server/internal/server/topics"
)

func main() {
	// Load configuration from environment
	port := getEnv("PORT", "8080")
	dbPath := getEnv("MEDADAPT_DB", "medadapt.db")
	topicBackend := getEnv("TOPIC_BACKEND", "sqlite")
	backupDir := getEnv("BACKUP_DIR", "backups")
	logMode := getEnv("LOG_MODE", "development")

	zlog, err := logger.New(logMode)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	ctx := context.Background()

	// Resource store
	st, err := store.Open(ctx, dbPath, zlog)
	if err != nil {
		zlog.Fatal("Failed to open content database", zap.String("path", dbPath), zap.Error(err))
	}
	defer st.Close(ctx)

	// Topic graph backend
	var topicRepo topics.Repository
	switch topicBackend {
	case "neo4j":
		topicRepo, err = topics.NewNeo4j(ctx, topics.Neo4jConfig{
			URI:      getEnv("NEO4J_URI", "bolt://localhost:7687"),
			Username: getEnv("NEO4J_USER", "neo4j"),
			Password: getEnv("NEO4J_PASSWORD", "password"),
			Database: "neo4j",
		})
		if err != nil {
			zlog.Fatal("Failed to connect to Neo4j", zap.Error(err))
		}
	default:
		topicRepo, err = topics.NewSQLite(ctx, st.DB())
		if err != nil {
			zlog.Fatal("Failed to initialize topic graph", zap.Error(err))
		}
	}
	defer topicRepo.Close(ctx)

	// Source adapters, in fixed priority order
	adapterCfg := sources.Config{
		APIKey:  os.Getenv("NCBI_API_KEY"),
		Timeout: getEnvDuration("NCBI_TIMEOUT", sources.DefaultTimeout),
	}
	adapters := []sources.Adapter{
		sources.NewPubMed(adapterCfg),
		sources.NewBookshelf(adapterCfg),
	}

	engine := resolve.New(st, adapters, zlog)
	extractor := analysis.NewExtractor()
	advisor := analysis.NewAdvisor(engine, topicRepo, zlog)
	backups := backup.NewManager(st.Path(), backupDir, zlog)

	apiServer := api.New(engine, st, topicRepo, advisor, extractor, backups, zlog)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      api.NewRouter(apiServer),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		zlog.Info("Starting medadapt content server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Fatal("Server forced to shutdown", zap.Error(err))
	}

	zlog.Info("Server exited")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	return defaultValue
}
