package main

import (
	stdlog "log"

	"github.com/joho/godotenv"

	"findingaids/cmd"
	"findingaids/internal/config"
	"findingaids/internal/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		stdlog.Printf("Warning: Could not load .env file: %v", err)
	}

	cfg := config.Load()
	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		stdlog.Fatalf("Failed to initialize logger: %v", err)
	}

	log := logger.WithComponent("main")
	log.Info().Msg("Starting finding aids CLI")

	cmd.Execute()
}
