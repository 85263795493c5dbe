package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"compliance/internal/config"
	"compliance/internal/logger"
	"compliance/internal/sheets"
)

var version = "1.0.0"

// requestID identifies one CLI invocation in the logs.
var requestID string

var rootCmd = &cobra.Command{
	Use:   "compliance",
	Short: "Compliance CLI - BAS sync and client risk scoring for bookkeeping practices",
	Long: `Compliance CLI helps a bookkeeping practice stay ahead of lodgement deadlines.

It normalizes Business Activity Statement figures exported from Xero or MYOB
into one canonical summary, and scores every client 0-100 for the risk of
missing their next deadline. Results can be printed, emitted as JSON, or
appended to the practice's Google Sheet.`,
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		requestID = uuid.NewString()
	},
	Run: func(cmd *cobra.Command, args []string) {
		log := commandLogger("root")
		log.Info().
			Str("version", version).
			Msg("Compliance CLI executed")

		fmt.Println("Welcome to Compliance CLI!")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

// commandLogger returns a logger tagged with the component and the
// invocation's request ID.
func commandLogger(component string) zerolog.Logger {
	return logger.WithRequestID(requestID).With().Str("component", component).Logger()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// newSheetsService connects to the configured spreadsheet.
func newSheetsService(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*sheets.Service, error) {
	if err := cfg.RequireSheet(); err != nil {
		return nil, fmt.Errorf("%w (set it in the environment or .env)", err)
	}

	svc, err := sheets.NewSheetsService(ctx, cfg.GoogleSheetURL)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create Google Sheets service")
		return nil, fmt.Errorf("failed to connect to Google Sheets: %w", err)
	}
	return svc, nil
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
