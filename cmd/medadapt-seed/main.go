// Command medadapt-seed loads the baseline topic mappings into the topic
// graph so related-topic queries return useful results on a fresh database.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/ryoureddy/medadapt-content-server/internal/logger"
	"github.com/ryoureddy/medadapt-content-server/internal/server/store"
	"github.com/ryoureddy/medadapt-content-server/internal/server/topics"
)

func main() {
	dbPath := flag.String("db", envOr("MEDADAPT_DB", "medadapt.db"), "path to the content database")
	backend := flag.String("backend", envOr("TOPIC_BACKEND", "sqlite"), "topic graph backend: sqlite or neo4j")
	flag.Parse()

	zlog, err := logger.New(envOr("LOG_MODE", "development"))
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	ctx := context.Background()

	var repo topics.Repository
	switch *backend {
	case "neo4j":
		repo, err = topics.NewNeo4j(ctx, topics.Neo4jConfig{
			URI:      envOr("NEO4J_URI", "bolt://localhost:7687"),
			Username: envOr("NEO4J_USER", "neo4j"),
			Password: envOr("NEO4J_PASSWORD", "password"),
			Database: "neo4j",
		})
		if err != nil {
			zlog.Fatal("Failed to connect to Neo4j", zap.Error(err))
		}
	default:
		st, err := store.Open(ctx, *dbPath, zlog)
		if err != nil {
			zlog.Fatal("Failed to open content database", zap.String("path", *dbPath), zap.Error(err))
		}
		defer st.Close(ctx)

		repo, err = topics.NewSQLite(ctx, st.DB())
		if err != nil {
			zlog.Fatal("Failed to initialize topic graph", zap.Error(err))
		}
	}
	defer repo.Close(ctx)

	count, err := topics.Seed(ctx, repo)
	if err != nil {
		zlog.Fatal("Seeding failed", zap.Error(err))
	}
	zlog.Info("Topic mappings seeded", zap.Int("count", count))
}

func envOr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
