// Package report writes risk rankings and BAS snapshots to worksheets of the
// practice spreadsheet.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"compliance/internal/logger"
	"compliance/internal/risk"
	"compliance/internal/snapshot"
)

// RowAppender appends rows to a worksheet, creating it with the given header
// row if needed. *sheets.Service implements it.
type RowAppender interface {
	AppendRows(ctx context.Context, sheetName string, headers []string, rows [][]interface{}) error
}

// RiskHeaders is the header row of the risk worksheet.
var RiskHeaders = []string{
	"Rank", "Client ID", "Name", "Score", "Level", "Label", "Reasons", "Scored At",
}

// BASHeaders is the header row of the BAS worksheet.
var BASHeaders = []string{
	"Source", "Connection", "Period",
	"G1 Total sales", "G3 GST on sales", "G10 Capital purchases", "G11 GST on capital",
	"G20 Total purchases", "G21 GST on purchases", "W1 PAYG withheld",
	"Net payable", "Refund", "Last synced", "Note",
}

// TimeLayout is how timestamps are written to the sheet.
const TimeLayout = "2006-01-02 15:04:05"

// RiskRows converts a ranking to sheet rows, one per client in rank order.
func RiskRows(ranked []risk.Ranked, scoredAt time.Time) [][]interface{} {
	rows := make([][]interface{}, 0, len(ranked))
	at := scoredAt.Format(TimeLayout)
	for i, r := range ranked {
		rows = append(rows, []interface{}{
			i + 1,
			r.Client.ID,
			r.Client.Name,
			r.Result.Score,
			r.Result.Level.String(),
			r.Result.Label(),
			strings.Join(r.Result.Reasons, "; "),
			at,
		})
	}
	return rows
}

// BASRow converts a snapshot to a sheet row. Amounts are written with two
// decimals; capital columns stay empty for sources without capital items.
func BASRow(s *snapshot.Snapshot) []interface{} {
	sum := s.Summary
	return []interface{}{
		sum.Source.DisplayName(),
		s.ConnectionID,
		s.Period,
		money(sum.TotalSales),
		money(sum.GSTOnSales),
		optionalMoney(sum.CapitalPurchases),
		optionalMoney(sum.GSTOnCapital),
		money(sum.TotalPurchases),
		money(sum.GSTOnPurchases),
		money(sum.PAYGWithheld),
		money(sum.NetPayable()),
		yesNo(sum.Refund()),
		s.LastSynced.Format(TimeLayout),
		s.Note,
	}
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func optionalMoney(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return money(*d)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// Writer appends reports to the practice spreadsheet.
type Writer struct {
	appender  RowAppender
	riskSheet string
	basSheet  string
	log       zerolog.Logger
}

// NewWriter creates a writer for the given risk and BAS worksheets.
func NewWriter(appender RowAppender, riskSheet, basSheet string) *Writer {
	return &Writer{
		appender:  appender,
		riskSheet: riskSheet,
		basSheet:  basSheet,
		log:       logger.WithComponent("report"),
	}
}

// WithLogger returns a copy of the writer that logs to l.
func (w *Writer) WithLogger(l zerolog.Logger) *Writer {
	c := *w
	c.log = l
	return &c
}

// WriteRisk appends a ranking to the risk worksheet.
func (w *Writer) WriteRisk(ctx context.Context, ranked []risk.Ranked, scoredAt time.Time) error {
	const op = "WriteRisk"

	rows := RiskRows(ranked, scoredAt)
	if err := w.appender.AppendRows(ctx, w.riskSheet, RiskHeaders, rows); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	w.log.Info().
		Str("sheet", w.riskSheet).
		Int("clients", len(rows)).
		Msg("Risk ranking written")
	return nil
}

// WriteBAS appends snapshots to the BAS worksheet.
func (w *Writer) WriteBAS(ctx context.Context, snapshots ...*snapshot.Snapshot) error {
	const op = "WriteBAS"

	rows := make([][]interface{}, 0, len(snapshots))
	for _, s := range snapshots {
		if s == nil {
			continue
		}
		rows = append(rows, BASRow(s))
	}

	if err := w.appender.AppendRows(ctx, w.basSheet, BASHeaders, rows); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	w.log.Info().
		Str("sheet", w.basSheet).
		Int("snapshots", len(rows)).
		Msg("BAS snapshots written")
	return nil
}
