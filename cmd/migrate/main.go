package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"pizzeria-api/internal/config"
	"pizzeria-api/internal/database"
)

// migrate applies pending schema migrations using the API's database
// settings, without starting the server.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return err
	}

	fmt.Printf("Database %s is up to date\n", cfg.Database.Database)
	return nil
}
