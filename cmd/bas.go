package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"compliance/internal/bas"
	"compliance/internal/report"
	"compliance/internal/snapshot"
)

var basCmd = &cobra.Command{
	Use:   "bas",
	Short: "Normalize BAS figures from Xero or MYOB exports",
	Long: `Normalize Business Activity Statement figures into one canonical summary.

Xero exports are the JSON body of the Reports/BASorGST endpoint. MYOB has no
BAS report, so MYOB exports hold the raw Sales, Purchases and Payroll records
and the summary is computed from them.

Optional environment variables:
  BAS_PERIOD - Period label used when --period is not given
  GOOGLE_SHEET_URL - Spreadsheet for --sheet
  BAS_WORKSHEET - Worksheet for --sheet (default: BAS)`,
}

var basXeroCmd = &cobra.Command{
	Use:   "xero [report.json]",
	Short: "Normalize a Xero BAS report export",
	Example: `  # Print the BAS summary of a Xero export
  compliance bas xero exports/smith-plumbing.json --period "Q3 FY2024-25"

  # JSON output
  compliance bas xero exports/smith-plumbing.json --json

  # Append the summary to the BAS worksheet
  compliance bas xero exports/smith-plumbing.json --sheet`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBAS(cmd, args[0], bas.SourceXero)
	},
}

var basMYOBCmd = &cobra.Command{
	Use:   "myob [transactions.json]",
	Short: "Compute a BAS from an MYOB transaction export",
	Example: `  # Compute the BAS from exported MYOB records
  compliance bas myob exports/anderson-cafe.json --period "Q3 FY2024-25"

  # JSON output
  compliance bas myob exports/anderson-cafe.json --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBAS(cmd, args[0], bas.SourceMYOB)
	},
}

func init() {
	rootCmd.AddCommand(basCmd)
	basCmd.AddCommand(basXeroCmd, basMYOBCmd)

	for _, c := range []*cobra.Command{basXeroCmd, basMYOBCmd} {
		c.Flags().String("period", "", "Reporting period label, e.g. \"Q3 FY2024-25\"")
		c.Flags().Bool("json", false, "Output as JSON format")
		c.Flags().Bool("sheet", false, "Append the summary to the BAS worksheet")
	}
}

func runBAS(cmd *cobra.Command, path string, source bas.Source) error {
	log := commandLogger("bas")

	period, _ := cmd.Flags().GetString("period")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	toSheet, _ := cmd.Flags().GetBool("sheet")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if period == "" {
		period = cfg.BASPeriod
	}

	dir, connectionID, err := splitExportPath(path)
	if err != nil {
		return err
	}

	log.Info().
		Str("source", source.String()).
		Str("file", path).
		Str("period", period).
		Bool("json", jsonOutput).
		Bool("sheet", toSheet).
		Msg("Starting BAS sync")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	files := snapshot.FileSource{Dir: dir}
	svc := snapshot.NewService(files, files).WithLogger(log)

	var snap *snapshot.Snapshot
	switch source {
	case bas.SourceXero:
		snap, err = svc.SyncXero(ctx, connectionID, period, time.Now())
	case bas.SourceMYOB:
		snap, err = svc.SyncMYOB(ctx, connectionID, period, time.Now())
	default:
		return fmt.Errorf("unsupported source: %s", source)
	}
	if err != nil {
		return handleBASError(err, path, source)
	}

	if toSheet {
		sheetsService, err := newSheetsService(ctx, cfg, log)
		if err != nil {
			return err
		}
		writer := report.NewWriter(sheetsService, cfg.RiskWorksheet, cfg.BASWorksheet).WithLogger(log)
		if err := writer.WriteBAS(ctx, snap); err != nil {
			return fmt.Errorf("failed to write BAS summary to Google Sheet: %w", err)
		}
	}

	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), snap)
	}
	outputBASConsole(cmd.OutOrStdout(), snap, log)
	return nil
}

// splitExportPath maps an export file to the directory and connection ID a
// FileSource reads it by.
func splitExportPath(path string) (string, string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", "", fmt.Errorf("export file not found: %s", path)
		}
		return "", "", fmt.Errorf("error accessing export file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", "", fmt.Errorf("path is not a regular file: %s", path)
	}

	base := filepath.Base(path)
	if !strings.EqualFold(filepath.Ext(base), ".json") {
		return "", "", fmt.Errorf("export file must have a .json extension: %s", path)
	}
	return filepath.Dir(path), strings.TrimSuffix(base, filepath.Ext(base)), nil
}

// handleBASError keeps the bookkeeper-facing message while naming the cause.
func handleBASError(err error, path string, source bas.Source) error {
	switch {
	case errors.Is(err, bas.ErrMalformedSourceData):
		return fmt.Errorf("%w: %s is not a valid %s export", snapshot.ErrPeriodUnreadable, path, source.DisplayName())
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%w: %s not found", snapshot.ErrPeriodUnreadable, path)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: timed out", snapshot.ErrPeriodUnreadable)
	default:
		return err
	}
}

// outputBASConsole prints the snapshot as a formatted statement
func outputBASConsole(w io.Writer, snap *snapshot.Snapshot, log zerolog.Logger) {
	s := snap.Summary

	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "%s\n", centered("BUSINESS ACTIVITY STATEMENT", 60))
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Source: %s (%s)\n", s.Source.DisplayName(), snap.ConnectionID)
	if snap.Period != "" {
		fmt.Fprintf(w, "Period: %s\n", snap.Period)
	}
	fmt.Fprintf(w, "Synced: %s\n", snap.LastSynced.Format("02 Jan 2006 15:04"))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== GST ===")
	line := func(label string, v string) {
		fmt.Fprintf(w, "%-32s %16s\n", label, v)
	}
	line("G1  Total sales", dollars(s.TotalSales.StringFixed(2)))
	line("G3  GST on sales", dollars(s.GSTOnSales.StringFixed(2)))
	if s.HasCapitalItems() {
		line("G10 Capital purchases", dollars(s.CapitalPurchases.StringFixed(2)))
	}
	if s.GSTOnCapital != nil {
		line("G11 GST on capital purchases", dollars(s.GSTOnCapital.StringFixed(2)))
	}
	line("G20 Total purchases", dollars(s.TotalPurchases.StringFixed(2)))
	line("G21 GST on purchases", dollars(s.GSTOnPurchases.StringFixed(2)))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== PAYG ===")
	line("W1  PAYG withheld", dollars(s.PAYGWithheld.StringFixed(2)))
	fmt.Fprintln(w)

	fmt.Fprintln(w, strings.Repeat("-", 60))
	if s.Refund() {
		line("Refund due", dollars(s.NetPayable().Abs().StringFixed(2)))
	} else {
		line("Net GST payable", dollars(s.NetPayable().StringFixed(2)))
	}
	fmt.Fprintln(w, strings.Repeat("=", 60))

	if snap.Note != "" {
		fmt.Fprintf(w, "Note: %s\n", snap.Note)
	}

	log.Debug().Msg("BAS summary printed")
}

func dollars(amount string) string {
	if strings.HasPrefix(amount, "-") {
		return "-$" + strings.TrimPrefix(amount, "-")
	}
	return "$" + amount
}

func centered(s string, width int) string {
	pad := (width - len(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}
