// Package clients loads practice clients and their risk signals, either from
// the Clients worksheet of the practice spreadsheet or from a JSON file.
package clients

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"compliance/internal/logger"
	"compliance/internal/risk"
	"compliance/internal/sheets"
)

// Columns of the Clients worksheet, below one header row.
const (
	colID = iota
	colName
	colDaysUntilDeadline
	colOpenObligations
	colEmployees
	colIgnoredReminder
	colLateLodgements

	columnCount
)

// RangeReader reads a range of cell values. *sheets.Service implements it.
type RangeReader interface {
	ReadRange(ctx context.Context, rangeSpec string) ([][]interface{}, error)
}

// Reader reads clients from a worksheet
type Reader struct {
	sheets RangeReader
	log    zerolog.Logger
}

// NewReader creates a new client reader
func NewReader(rr RangeReader) *Reader {
	return &Reader{
		sheets: rr,
		log:    logger.WithComponent("clients-reader"),
	}
}

// WithLogger returns a copy of the reader that logs to l.
func (r *Reader) WithLogger(l zerolog.Logger) *Reader {
	c := *r
	c.log = l
	return &c
}

// ReadClients reads every client row below the header of sheetName.
//
// Parsing is lenient: rows without a client ID are skipped, and a cell that
// does not parse takes the signal's default.
func (r *Reader) ReadClients(ctx context.Context, sheetName string) ([]risk.Client, error) {
	const op = "ReadClients"

	r.log.Info().Str("sheet", sheetName).Msg("Reading clients")

	values, err := r.sheets.ReadRange(ctx, sheets.Range(sheetName, "A:"+sheets.ColumnLetter(columnCount)))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read %s sheet: %w", op, sheetName, err)
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("%s: %s sheet is empty", op, sheetName)
	}

	var clients []risk.Client
	for i, row := range values[1:] {
		rowNum := i + 2 // header row and 1-based sheet rows

		if getString(row, colID) == "" {
			if !isBlank(row) {
				r.log.Warn().
					Int("row", rowNum).
					Str("sheet", sheetName).
					Msg("Skipping client row without an ID")
			}
			continue
		}

		clients = append(clients, r.parseClientRow(row, rowNum))
	}

	r.log.Info().
		Int("total_rows", len(values)-1).
		Int("parsed_clients", len(clients)).
		Str("sheet", sheetName).
		Msg("Clients read successfully")

	return clients, nil
}

// parseClientRow parses a single client row
func (r *Reader) parseClientRow(row []interface{}, rowNum int) risk.Client {
	client := risk.Client{
		ID:   getString(row, colID),
		Name: getString(row, colName),
	}

	warn := func(column, value string, err error) {
		r.log.Warn().
			Err(err).
			Str("client_id", client.ID).
			Str("column", column).
			Str("value", value).
			Int("row", rowNum).
			Msg("Invalid cell, using default")
	}

	if s := getString(row, colDaysUntilDeadline); s != "" {
		days, err := parseCount(s)
		if err != nil {
			warn("days_until_deadline", s, err)
		} else {
			client.DaysUntilNextDeadline = &days
		}
	}

	intCell := func(col int, column string) int {
		s := getString(row, col)
		if s == "" {
			return 0
		}
		n, err := parseCount(s)
		if err != nil {
			warn(column, s, err)
			return 0
		}
		return n
	}

	client.OpenObligationsCount = intCell(colOpenObligations, "open_obligations")
	client.EmployeeCount = intCell(colEmployees, "employees")
	client.LateLodgementHistoryCount = intCell(colLateLodgements, "late_lodgements")

	if s := getString(row, colIgnoredReminder); s != "" {
		ignored, err := parseFlag(s)
		if err != nil {
			warn("ignored_reminder", s, err)
		}
		client.HasIgnoredRecentReminder = ignored
	}

	return client
}
