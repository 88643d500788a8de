package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"chatrelay/internal/config"
	"chatrelay/internal/repository/postgres"
)

func main() {
	// Parse command-line flags
	drop := flag.Bool("drop", false, "Drop the transcript table before creating it (fresh start)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *drop {
		log.Fatalf("BLOCKED: cannot run -drop in production environment")
	}

	logger, closer, err := config.NewLogger(cfg.Environment, "", 0)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closer.Close()

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)
	txManager := postgres.NewTransactionManager(pool, logger)

	var statements []string
	if *drop {
		statements = append(statements, postgres.DropStatements(tables)...)
	}
	statements = append(statements, postgres.SchemaStatements(tables)...)

	if err := postgres.ApplyStatements(ctx, pool, txManager, statements); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	logger.Info("schema ready",
		"environment", cfg.Environment,
		"table", tables.ChatMessages,
		"dropped", *drop,
	)
}
