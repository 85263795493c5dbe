package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compliance/internal/bas"
	"compliance/internal/risk"
	"compliance/internal/snapshot"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestSplitExportPath(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "smith-plumbing.json", "{}")

	gotDir, id, err := splitExportPath(path)
	require.NoError(t, err)
	assert.Equal(t, dir, gotDir)
	assert.Equal(t, "smith-plumbing", id)

	_, _, err = splitExportPath(filepath.Join(dir, "missing.json"))
	assert.ErrorContains(t, err, "not found")

	_, _, err = splitExportPath(writeFile(t, dir, "report.csv", ""))
	assert.ErrorContains(t, err, ".json")

	_, _, err = splitExportPath(dir)
	assert.ErrorContains(t, err, "not a regular file")
}

func TestOutputBASConsole(t *testing.T) {
	capital := decimal.RequireFromString("2100")
	capitalGST := decimal.RequireFromString("210")
	snap := &snapshot.Snapshot{
		ConnectionID: "smith-plumbing",
		Period:       "Q3 FY2024-25",
		LastSynced:   time.Date(2025, 4, 2, 9, 30, 0, 0, time.UTC),
		Summary: bas.Summary{
			Source:           bas.SourceXero,
			TotalSales:       decimal.RequireFromString("148500"),
			GSTOnSales:       decimal.RequireFromString("13500"),
			CapitalPurchases: &capital,
			GSTOnCapital:     &capitalGST,
			TotalPurchases:   decimal.RequireFromString("46000"),
			GSTOnPurchases:   decimal.RequireFromString("4200"),
			PAYGWithheld:     decimal.RequireFromString("12400"),
		},
	}

	var buf bytes.Buffer
	outputBASConsole(&buf, snap, zerolog.Nop())
	out := buf.String()

	assert.Contains(t, out, "Source: Xero (smith-plumbing)")
	assert.Contains(t, out, "Period: Q3 FY2024-25")
	assert.Contains(t, out, "$148500.00")
	assert.Contains(t, out, "G10 Capital purchases")
	assert.Contains(t, out, "Net GST payable")
	assert.Contains(t, out, "$9510.00")
	assert.NotContains(t, out, "Note:")
}

func TestOutputBASConsole_MYOBRefund(t *testing.T) {
	snap := &snapshot.Snapshot{
		ConnectionID: "anderson-cafe",
		Note:         snapshot.MYOBReviewNote,
		Summary: bas.Summary{
			Source:         bas.SourceMYOB,
			GSTOnSales:     decimal.RequireFromString("100"),
			GSTOnPurchases: decimal.RequireFromString("350.25"),
		},
	}

	var buf bytes.Buffer
	outputBASConsole(&buf, snap, zerolog.Nop())
	out := buf.String()

	assert.NotContains(t, out, "G10")
	assert.NotContains(t, out, "G11")
	assert.Contains(t, out, "Refund due")
	assert.Contains(t, out, "$250.25")
	assert.Contains(t, out, "Note: "+snapshot.MYOBReviewNote)
}

func TestOutputRankConsole(t *testing.T) {
	ranked := risk.RankAll([]risk.Client{
		{ID: "peak-fitness", Name: "Peak Fitness"},
		{ID: "jones-electrical", Name: "Jones Electrical", Signals: risk.Signals{DaysUntilNextDeadline: risk.Days(1), EmployeeCount: 22}},
	})

	var buf bytes.Buffer
	outputRankConsole(&buf, ranked, zerolog.Nop())
	lines := strings.Split(buf.String(), "\n")

	var rows []string
	for _, l := range lines {
		if strings.HasPrefix(l, "1   ") || strings.HasPrefix(l, "2   ") {
			rows = append(rows, l)
		}
	}
	require.Len(t, rows, 2)
	assert.Contains(t, rows[0], "Jones Electrical")
	assert.Contains(t, rows[0], "60 HIGH")
	assert.Contains(t, rows[1], "Peak Fitness")
	assert.Contains(t, rows[1], risk.NoRiskReason)
	assert.Contains(t, buf.String(), "1 of 2 clients at high risk")
}

func TestHandleBASError(t *testing.T) {
	err := handleBASError(&snapshot.SyncError{Err: bas.ErrMalformedSourceData}, "x.json", bas.SourceMYOB)
	assert.ErrorIs(t, err, snapshot.ErrPeriodUnreadable)
	assert.Equal(t, "unable to read data for this period: x.json is not a valid MYOB export", err.Error())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}

func TestRiskRankCommand(t *testing.T) {
	t.Setenv("LOG_LEVEL", "info")
	dir := t.TempDir()
	path := writeFile(t, dir, "clients.json", `{"clients": [
		{"id": "sunrise-bakery", "daysUntilNextDeadline": 40},
		{"id": "smith-plumbing", "daysUntilNextDeadline": 2, "openObligationsCount": 2, "employeeCount": 12},
		{"id": "anderson-cafe", "daysUntilNextDeadline": 6, "hasIgnoredRecentReminder": true}
	]}`)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"risk", "rank", path, "--json", "--top", "2"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())

	var entries []struct {
		Rank   int    `json:"rank"`
		Label  string `json:"label"`
		Client struct {
			ID string `json:"id"`
		} `json:"client"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "smith-plumbing", entries[0].Client.ID)
	assert.Equal(t, "67 HIGH", entries[0].Label)
	assert.Equal(t, 2, entries[1].Rank)
	assert.Equal(t, "anderson-cafe", entries[1].Client.ID)
}

func TestBASMYOBCommand(t *testing.T) {
	t.Setenv("LOG_LEVEL", "info")
	dir := t.TempDir()
	path := writeFile(t, dir, "cf-1.json", `{
		"Sales": [{"TotalAmount": 1100, "TaxCode": "GST", "Freight": {"TaxAmount": 100}}],
		"Purchases": [],
		"Payroll": []
	}`)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"bas", "myob", path, "--json", "--period", "Q1"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())

	var snap map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &snap))
	assert.Equal(t, "myob", snap["source"])
	assert.Equal(t, "cf-1", snap["connectionId"])
	assert.Equal(t, "Q1", snap["period"])
	assert.Equal(t, snapshot.MYOBReviewNote, snap["note"])

	summary, ok := snap["summary"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "100", summary["netPayable"])
	assert.NotContains(t, summary, "gstOnCapital")
}
