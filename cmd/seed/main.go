package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"

	"github.com/apexneuralecosystems/tracking-leads/internal/config"
	"github.com/apexneuralecosystems/tracking-leads/internal/database"
	"github.com/apexneuralecosystems/tracking-leads/internal/logger"
	"github.com/apexneuralecosystems/tracking-leads/internal/seed"
)

func main() {
	leadCount := flag.Int("leads", 50, "number of leads to create")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg := config.Load()
	if err := logger.Initialize(cfg.LogLevel, "seed.log"); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	db, err := database.Connect(cfg.DatabaseURL, cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	seeder := seed.NewSeeder(db)
	if err := seeder.SeedDev(context.Background(), *leadCount); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
