package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"compliance/internal/clients"
	"compliance/internal/report"
	"compliance/internal/risk"
)

var riskCmd = &cobra.Command{
	Use:   "risk",
	Short: "Score clients for the risk of missing a compliance deadline",
	Long: `Score clients 0-100 for the risk of missing their next lodgement deadline.

The score adds points for deadline proximity, open obligations, payroll size,
ignored reminders and late lodgement history. 60 and above is high risk,
30 to 59 medium, below 30 low.

Clients come from a JSON file or from the Clients worksheet of the practice
spreadsheet with columns:
  A=Client ID, B=Name, C=Days until deadline, D=Open obligations,
  E=Employees, F=Ignored reminder (yes/no), G=Late lodgements

Optional environment variables:
  GOOGLE_SHEET_URL - Spreadsheet for --from-sheet and --sheet
  CLIENTS_WORKSHEET - Worksheet clients are read from (default: Clients)
  RISK_WORKSHEET - Worksheet rankings are appended to (default: Risk)`,
}

var riskScoreCmd = &cobra.Command{
	Use:   "score [signals.json]",
	Short: "Score one client's signals",
	Example: `  # Score a single client
  compliance risk score signals.json

  # Read signals from stdin
  echo '{"daysUntilNextDeadline": 2, "employeeCount": 25}' | compliance risk score -`,
	Args: cobra.ExactArgs(1),
	RunE: runRiskScore,
}

var riskRankCmd = &cobra.Command{
	Use:   "rank [clients.json]",
	Short: "Rank clients by risk, highest first",
	Example: `  # Rank clients from a JSON file
  compliance risk rank clients.json

  # Show the five most at-risk clients from the Clients worksheet
  compliance risk rank --from-sheet --top 5

  # Rank from the sheet and append the ranking to the Risk worksheet
  compliance risk rank --from-sheet --sheet`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRiskRank,
}

func init() {
	rootCmd.AddCommand(riskCmd)
	riskCmd.AddCommand(riskScoreCmd, riskRankCmd)

	riskScoreCmd.Flags().Bool("json", false, "Output as JSON format")

	riskRankCmd.Flags().Bool("from-sheet", false, "Read clients from the Clients worksheet")
	riskRankCmd.Flags().Int("top", 0, "Only show the N highest-risk clients (0 = all)")
	riskRankCmd.Flags().Bool("json", false, "Output as JSON format")
	riskRankCmd.Flags().Bool("sheet", false, "Append the ranking to the Risk worksheet")
}

func runRiskScore(cmd *cobra.Command, args []string) error {
	log := commandLogger("risk")

	jsonOutput, _ := cmd.Flags().GetBool("json")

	in, closeFn, err := openInput(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}
	defer closeFn()

	signals, err := clients.DecodeSignals(in)
	if err != nil {
		return fmt.Errorf("failed to read signals from %s: %w", args[0], err)
	}

	result := risk.Score(signals)

	log.Info().
		Int("score", result.Score).
		Str("level", result.Level.String()).
		Msg("Client scored")

	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), struct {
			risk.Result
			Label string `json:"label"`
		}{result, result.Label()})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Risk: %s\n", result.Label())
	for _, reason := range result.Reasons {
		fmt.Fprintf(w, "  - %s\n", reason)
	}
	return nil
}

func runRiskRank(cmd *cobra.Command, args []string) error {
	log := commandLogger("risk")

	fromSheet, _ := cmd.Flags().GetBool("from-sheet")
	top, _ := cmd.Flags().GetInt("top")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	toSheet, _ := cmd.Flags().GetBool("sheet")

	if fromSheet == (len(args) == 1) {
		return fmt.Errorf("give either a clients file or --from-sheet")
	}
	if top < 0 {
		return fmt.Errorf("--top must not be negative, got %d", top)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var list []risk.Client
	if fromSheet {
		sheetsService, err := newSheetsService(ctx, cfg, log)
		if err != nil {
			return err
		}
		list, err = clients.NewReader(sheetsService).WithLogger(log).ReadClients(ctx, cfg.ClientsWorksheet)
		if err != nil {
			return fmt.Errorf("failed to read clients from Google Sheet: %w", err)
		}
	} else {
		in, closeFn, err := openInput(args[0], cmd.InOrStdin())
		if err != nil {
			return err
		}
		list, err = clients.DecodeClients(in)
		closeFn()
		if err != nil {
			return fmt.Errorf("failed to read clients from %s: %w", args[0], err)
		}
	}

	ranked := risk.TopAtRisk(list, top)
	scoredAt := time.Now()

	log.Info().
		Int("clients", len(list)).
		Int("shown", len(ranked)).
		Msg("Clients ranked")

	if toSheet {
		sheetsService, err := newSheetsService(ctx, cfg, log)
		if err != nil {
			return err
		}
		writer := report.NewWriter(sheetsService, cfg.RiskWorksheet, cfg.BASWorksheet).WithLogger(log)
		if err := writer.WriteRisk(ctx, ranked, scoredAt); err != nil {
			return fmt.Errorf("failed to write ranking to Google Sheet: %w", err)
		}
	}

	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), rankedJSON(ranked))
	}
	outputRankConsole(cmd.OutOrStdout(), ranked, log)
	return nil
}

type rankedEntry struct {
	Rank   int         `json:"rank"`
	Client risk.Client `json:"client"`
	Risk   risk.Result `json:"risk"`
	Label  string      `json:"label"`
}

func rankedJSON(ranked []risk.Ranked) []rankedEntry {
	out := make([]rankedEntry, len(ranked))
	for i, r := range ranked {
		out[i] = rankedEntry{Rank: i + 1, Client: r.Client, Risk: r.Result, Label: r.Result.Label()}
	}
	return out
}

// outputRankConsole prints the ranking as a table
func outputRankConsole(w io.Writer, ranked []risk.Ranked, log zerolog.Logger) {
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintf(w, "%s\n", centered("CLIENT RISK RANKING", 80))
	fmt.Fprintln(w, strings.Repeat("=", 80))

	if len(ranked) == 0 {
		fmt.Fprintln(w, "No clients to rank.")
		fmt.Fprintln(w, strings.Repeat("=", 80))
		return
	}

	fmt.Fprintf(w, "%-4s %-28s %-9s %s\n", "#", "Client", "Risk", "Reasons")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for i, r := range ranked {
		fmt.Fprintf(w, "%-4d %-28s %-9s %s\n",
			i+1, truncate(r.Client.DisplayName(), 28), r.Result.Label(), strings.Join(r.Result.Reasons, "; "))
	}
	fmt.Fprintln(w, strings.Repeat("=", 80))

	high := 0
	for _, r := range ranked {
		if r.Result.Level == risk.LevelHigh {
			high++
		}
	}
	fmt.Fprintf(w, "%d of %d clients at high risk\n", high, len(ranked))

	log.Debug().Int("high", high).Msg("Risk ranking printed")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// openInput opens path for reading, or stdin for "-".
func openInput(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to create JSON output: %w", err)
	}
	fmt.Fprintln(w, string(jsonData))
	return nil
}
