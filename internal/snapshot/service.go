// Package snapshot runs a BAS sync for one client connection: fetch the raw
// platform data, normalize it and stamp it with the caller's sync time.
package snapshot

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"compliance/internal/bas"
	"compliance/internal/logger"
)

// MYOBReviewNote accompanies every MYOB snapshot, since its figures are
// computed rather than reported.
const MYOBReviewNote = "Computed from MYOB transaction data — review before lodging."

// XeroReportSource fetches the BAS report for a Xero tenant.
type XeroReportSource interface {
	FetchBASReport(ctx context.Context, tenantID string) (*bas.XeroReport, error)
}

// MYOBTransactionSource fetches sales, purchase and payroll records for an
// MYOB company file.
type MYOBTransactionSource interface {
	FetchTransactions(ctx context.Context, companyFileID string) (*bas.MYOBTransactions, error)
}

// Snapshot is the result of one successful sync.
type Snapshot struct {
	Source       bas.Source  `json:"source"`
	ConnectionID string      `json:"connectionId"`
	ReportID     string      `json:"reportId,omitempty"`
	Period       string      `json:"period"`
	Summary      bas.Summary `json:"summary"`
	LastSynced   time.Time   `json:"lastSynced"`
	Note         string      `json:"note,omitempty"`
}

// Service syncs BAS snapshots from the configured sources. Either source may
// be nil if that platform is not connected.
type Service struct {
	xero XeroReportSource
	myob MYOBTransactionSource
	log  zerolog.Logger
}

// NewService creates a snapshot service.
func NewService(xero XeroReportSource, myob MYOBTransactionSource) *Service {
	return &Service{
		xero: xero,
		myob: myob,
		log:  logger.WithComponent("snapshot"),
	}
}

// WithLogger returns a copy of the service that logs to l.
func (s *Service) WithLogger(l zerolog.Logger) *Service {
	c := *s
	c.log = l
	return &c
}

// SyncXero fetches and normalizes the BAS report of a Xero tenant. An empty
// period takes the report's own period title.
func (s *Service) SyncXero(ctx context.Context, tenantID, period string, syncedAt time.Time) (*Snapshot, error) {
	const op = "SyncXero"

	log := s.log.With().
		Str("source", bas.SourceXero.String()).
		Str("tenant_id", tenantID).
		Str("period", period).
		Logger()

	fail := func(err error) (*Snapshot, error) {
		log.Error().Err(err).Msg("BAS sync failed")
		return nil, &SyncError{Op: op, Source: bas.SourceXero, ConnectionID: tenantID, Period: period, Err: err}
	}

	if s.xero == nil {
		return fail(errNotConnected)
	}

	log.Debug().Msg("Fetching Xero BAS report")
	report, err := s.xero.FetchBASReport(ctx, tenantID)
	if err != nil {
		return fail(err)
	}

	summary, err := bas.NormalizeXeroBAS(report, period)
	if err != nil {
		return fail(err)
	}

	s.warnNegative(log, summary)
	log.Info().
		Str("net_payable", summary.NetPayable().StringFixed(2)).
		Bool("refund", summary.Refund()).
		Msg("Xero BAS synced")

	return &Snapshot{
		Source:       bas.SourceXero,
		ConnectionID: tenantID,
		ReportID:     report.ReportID,
		Period:       summary.Period,
		Summary:      summary,
		LastSynced:   syncedAt,
	}, nil
}

// SyncMYOB fetches MYOB transactions for a company file and computes the BAS
// from them.
func (s *Service) SyncMYOB(ctx context.Context, companyFileID, period string, syncedAt time.Time) (*Snapshot, error) {
	const op = "SyncMYOB"

	log := s.log.With().
		Str("source", bas.SourceMYOB.String()).
		Str("company_file_id", companyFileID).
		Str("period", period).
		Logger()

	fail := func(err error) (*Snapshot, error) {
		log.Error().Err(err).Msg("BAS sync failed")
		return nil, &SyncError{Op: op, Source: bas.SourceMYOB, ConnectionID: companyFileID, Period: period, Err: err}
	}

	if s.myob == nil {
		return fail(errNotConnected)
	}

	log.Debug().Msg("Fetching MYOB transactions")
	txns, err := s.myob.FetchTransactions(ctx, companyFileID)
	if err != nil {
		return fail(err)
	}

	summary, err := bas.MYOBAdapter{Transactions: txns}.Normalize(period)
	if err != nil {
		return fail(err)
	}

	s.warnNegative(log, summary)
	log.Info().
		Int("sales", len(txns.Sales)).
		Int("purchases", len(txns.Purchases)).
		Int("payslips", len(txns.Payroll)).
		Str("net_payable", summary.NetPayable().StringFixed(2)).
		Bool("refund", summary.Refund()).
		Msg("MYOB BAS computed")

	return &Snapshot{
		Source:       bas.SourceMYOB,
		ConnectionID: companyFileID,
		Period:       summary.Period,
		Summary:      summary,
		LastSynced:   syncedAt,
		Note:         MYOBReviewNote,
	}, nil
}

func (s *Service) warnNegative(log zerolog.Logger, summary bas.Summary) {
	if fields := summary.NegativeComponents(); len(fields) > 0 {
		log.Warn().Strs("fields", fields).Msg("BAS summary has negative components")
	}
}
