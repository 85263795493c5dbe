package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"compliance/internal/bas"
)

// FileSource serves Xero reports and MYOB transactions from exported JSON
// files named <Dir>/<connection id>.json.
type FileSource struct {
	Dir string
}

// FetchBASReport implements XeroReportSource.
func (f FileSource) FetchBASReport(ctx context.Context, tenantID string) (*bas.XeroReport, error) {
	file, err := f.open(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return bas.DecodeXeroReport(file)
}

// FetchTransactions implements MYOBTransactionSource.
func (f FileSource) FetchTransactions(ctx context.Context, companyFileID string) (*bas.MYOBTransactions, error) {
	file, err := f.open(ctx, companyFileID)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return bas.DecodeMYOBTransactions(file)
}

// Path returns the file a connection id is read from.
func (f FileSource) Path(id string) string {
	return filepath.Join(f.Dir, id+".json")
}

func (f FileSource) open(ctx context.Context, id string) (*os.File, error) {
	const op = "FileSource.open"

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return nil, fmt.Errorf("%s: %q: %w", op, id, ErrInvalidConnectionID)
	}

	file, err := os.Open(f.Path(id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return file, nil
}

var (
	_ XeroReportSource      = FileSource{}
	_ MYOBTransactionSource = FileSource{}
)
