package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/apexneuralecosystems/tracking-leads/internal/config"
	"github.com/apexneuralecosystems/tracking-leads/internal/database"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "up":
		runMigrationsUp()
	default:
		fmt.Println("Usage: migrate [up]")
		fmt.Println("  up - Run all pending migrations")
		os.Exit(1)
	}
}

func runMigrationsUp() {
	cfg := config.Load()

	log.Println("Connecting to database...")
	db, err := database.Connect(cfg.DatabaseURL, cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	log.Println("Running migrations...")
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("All migrations completed successfully")
}
