// Package bas normalizes accounting-platform data into a canonical Business
// Activity Statement summary.
//
// Two platforms are supported and they expose very different shapes:
//   - Xero returns a pre-aggregated BAS report made of labelled rows whose
//     amounts are formatted strings ("$148,500.00").
//   - MYOB has no BAS endpoint, so the summary is aggregated from raw sales,
//     purchase and payroll records.
//
// Both adapters produce the same Summary. Normalization is best-effort: a
// missing row or an unparseable amount counts as zero. Only input that is not
// shaped like the source at all fails, with ErrMalformedSourceData.
//
// All functions in this package are pure: no I/O, no clock, no shared state.
package bas

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Source identifies the accounting platform a summary was derived from.
type Source string

const (
	SourceXero Source = "xero"
	SourceMYOB Source = "myob"
)

// String returns the string representation.
func (s Source) String() string {
	return string(s)
}

// DisplayName returns the platform name as shown to bookkeepers.
func (s Source) DisplayName() string {
	switch s {
	case SourceXero:
		return "Xero"
	case SourceMYOB:
		return "MYOB"
	default:
		return string(s)
	}
}

// Summary is the canonical BAS record for one reporting period.
//
// Net payable and the refund flag are derived from the stored fields on every
// call, so they can never disagree with them.
type Summary struct {
	Source Source
	Period string

	TotalSales     decimal.Decimal // G1
	GSTOnSales     decimal.Decimal // G3
	TotalPurchases decimal.Decimal // G20
	GSTOnPurchases decimal.Decimal // G21

	// Capital items are only reported by Xero. Nil means the source does not
	// distinguish them, which is not the same as zero.
	CapitalPurchases *decimal.Decimal // G10
	GSTOnCapital     *decimal.Decimal // G11

	PAYGWithheld decimal.Decimal // W1
}

// NetPayable returns GST on sales plus GST on capital purchases minus GST on
// purchases. A negative value is a refund.
func (s Summary) NetPayable() decimal.Decimal {
	net := s.GSTOnSales
	if s.GSTOnCapital != nil {
		net = net.Add(*s.GSTOnCapital)
	}
	return net.Sub(s.GSTOnPurchases)
}

// Refund reports whether the period results in a refund from the ATO.
func (s Summary) Refund() bool {
	return s.NetPayable().IsNegative()
}

// HasCapitalItems reports whether the source distinguished capital purchases.
func (s Summary) HasCapitalItems() bool {
	return s.CapitalPurchases != nil
}

// NegativeComponents lists the monetary fields that came out below zero.
func (s Summary) NegativeComponents() []string {
	var fields []string
	check := func(name string, v decimal.Decimal) {
		if v.IsNegative() {
			fields = append(fields, name)
		}
	}
	check("totalSales", s.TotalSales)
	check("gstOnSales", s.GSTOnSales)
	check("totalPurchases", s.TotalPurchases)
	check("gstOnPurchases", s.GSTOnPurchases)
	if s.CapitalPurchases != nil {
		check("capitalPurchases", *s.CapitalPurchases)
	}
	if s.GSTOnCapital != nil {
		check("gstOnCapital", *s.GSTOnCapital)
	}
	check("paygWithheld", s.PAYGWithheld)
	return fields
}

type summaryJSON struct {
	Source           Source           `json:"source"`
	Period           string           `json:"period"`
	TotalSales       decimal.Decimal  `json:"totalSales"`
	GSTOnSales       decimal.Decimal  `json:"gstOnSales"`
	TotalPurchases   decimal.Decimal  `json:"totalPurchases"`
	GSTOnPurchases   decimal.Decimal  `json:"gstOnPurchases"`
	CapitalPurchases *decimal.Decimal `json:"capitalPurchases,omitempty"`
	GSTOnCapital     *decimal.Decimal `json:"gstOnCapital,omitempty"`
	PAYGWithheld     decimal.Decimal  `json:"paygWithheld"`
	NetPayable       decimal.Decimal  `json:"netPayable"`
	Refund           bool             `json:"refund"`
}

// MarshalJSON encodes the summary including the derived net payable and
// refund fields.
func (s Summary) MarshalJSON() ([]byte, error) {
	return json.Marshal(summaryJSON{
		Source:           s.Source,
		Period:           s.Period,
		TotalSales:       s.TotalSales,
		GSTOnSales:       s.GSTOnSales,
		TotalPurchases:   s.TotalPurchases,
		GSTOnPurchases:   s.GSTOnPurchases,
		CapitalPurchases: s.CapitalPurchases,
		GSTOnCapital:     s.GSTOnCapital,
		PAYGWithheld:     s.PAYGWithheld,
		NetPayable:       s.NetPayable(),
		Refund:           s.Refund(),
	})
}

// UnmarshalJSON decodes a summary previously produced by MarshalJSON. The
// derived fields are ignored and recomputed.
func (s *Summary) UnmarshalJSON(data []byte) error {
	var raw summaryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode BAS summary: %w", err)
	}
	*s = Summary{
		Source:           raw.Source,
		Period:           raw.Period,
		TotalSales:       raw.TotalSales,
		GSTOnSales:       raw.GSTOnSales,
		TotalPurchases:   raw.TotalPurchases,
		GSTOnPurchases:   raw.GSTOnPurchases,
		CapitalPurchases: raw.CapitalPurchases,
		GSTOnCapital:     raw.GSTOnCapital,
		PAYGWithheld:     raw.PAYGWithheld,
	}
	return nil
}
