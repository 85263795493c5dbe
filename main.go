package main

import (
	"log"

	"github.com/joho/godotenv"

	"compliance/cmd"
	"compliance/internal/config"
	"compliance/internal/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Printf("Warning: Could not load configuration, using default logging: %v", err)
	}
	if err := logger.Setup(loggerConfig(cfg)); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	log := logger.WithComponent("main")
	log.Debug().Msg("Starting Compliance CLI")

	cmd.Execute()

	log.Debug().Msg("Compliance CLI shutdown")
}

// loggerConfig returns the configured logging settings, or the defaults when
// the configuration could not be loaded.
func loggerConfig(cfg *config.Config) logger.LogConfig {
	if cfg == nil {
		return logger.DefaultConfig()
	}
	return cfg.GetLoggerConfig()
}
