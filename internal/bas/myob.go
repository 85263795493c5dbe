package bas

import (
	"bytes"
	"encoding/json"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// MYOBTaxCodeGST is the MYOB tax code for taxable supplies.
const MYOBTaxCodeGST = "GST"

// Amount is a monetary value read from an MYOB record. Valid is false when
// the field was absent or not a number; such an amount counts as zero.
type Amount struct {
	Value decimal.Decimal
	Valid bool
}

// NewAmount returns a valid Amount.
func NewAmount(v decimal.Decimal) Amount {
	return Amount{Value: v, Valid: true}
}

// OrZero returns the amount, or zero when it is not valid.
func (a Amount) OrZero() decimal.Decimal {
	if !a.Valid {
		return decimal.Zero
	}
	return a.Value
}

// UnmarshalJSON accepts JSON numbers and numeric strings ("1,250.00").
// Anything else leaves the amount invalid rather than failing the record.
func (a *Amount) UnmarshalJSON(data []byte) error {
	*a = Amount{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil
		}
		if v, ok := parseMoney(s); ok {
			*a = NewAmount(v)
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		if v, err := decimal.NewFromString(string(trimmed)); err == nil {
			*a = NewAmount(v)
		}
	}
	return nil
}

// MarshalJSON encodes a valid amount as a JSON number and an invalid one as null.
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return []byte(a.Value.String()), nil
}

// TaxCode is an MYOB tax code. The API returns it either as a bare code or
// as a reference object ({"UID": "...", "Code": "GST"}); both decode to the code.
type TaxCode string

// UnmarshalJSON implements json.Unmarshaler.
func (t *TaxCode) UnmarshalJSON(data []byte) error {
	*t = ""
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			*t = TaxCode(s)
		}
	case '{':
		var ref struct {
			Code string `json:"Code"`
		}
		if err := json.Unmarshal(trimmed, &ref); err == nil {
			*t = TaxCode(ref.Code)
		}
	}
	return nil
}

// MYOBFreight is the freight block of an MYOB sale; its tax amount carries
// the GST for the sale.
type MYOBFreight struct {
	TaxAmount Amount `json:"TaxAmount"`
}

// UnmarshalJSON decodes leniently; a non-object freight block is empty.
func (f *MYOBFreight) UnmarshalJSON(data []byte) error {
	type plain MYOBFreight
	var p plain
	_ = json.Unmarshal(data, &p)
	*f = MYOBFreight(p)
	return nil
}

// MYOBSale is a sale record.
type MYOBSale struct {
	TotalAmount Amount       `json:"TotalAmount"`
	TaxCode     TaxCode      `json:"TaxCode"`
	Freight     *MYOBFreight `json:"Freight,omitempty"`
}

// UnmarshalJSON decodes leniently; a record that is not an object is empty.
func (s *MYOBSale) UnmarshalJSON(data []byte) error {
	type plain MYOBSale
	var p plain
	_ = json.Unmarshal(data, &p)
	*s = MYOBSale(p)
	return nil
}

// TaxAmount returns the GST carried on the sale, zero if none.
func (s MYOBSale) TaxAmount() decimal.Decimal {
	if s.Freight == nil {
		return decimal.Zero
	}
	return s.Freight.TaxAmount.OrZero()
}

// MYOBPurchase is a purchase (bill) record.
type MYOBPurchase struct {
	TotalAmount      Amount  `json:"TotalAmount"`
	TaxCode          TaxCode `json:"TaxCode"`
	FreightTaxAmount Amount  `json:"FreightTaxAmount"`
}

// UnmarshalJSON decodes leniently; a record that is not an object is empty.
func (p *MYOBPurchase) UnmarshalJSON(data []byte) error {
	type plain MYOBPurchase
	var v plain
	_ = json.Unmarshal(data, &v)
	*p = MYOBPurchase(v)
	return nil
}

// TaxAmount returns the GST claimable on the purchase, zero if none.
func (p MYOBPurchase) TaxAmount() decimal.Decimal {
	return p.FreightTaxAmount.OrZero()
}

// MYOBPayslip is a payroll record.
type MYOBPayslip struct {
	GrossWages Amount `json:"GrossWages"`
	NetWages   Amount `json:"NetWages"`
}

// UnmarshalJSON decodes leniently; a record that is not an object is empty.
func (p *MYOBPayslip) UnmarshalJSON(data []byte) error {
	type plain MYOBPayslip
	var v plain
	_ = json.Unmarshal(data, &v)
	*p = MYOBPayslip(v)
	return nil
}

// Withheld returns gross minus net wages. A payslip missing either figure
// withholds nothing.
func (p MYOBPayslip) Withheld() decimal.Decimal {
	if !p.GrossWages.Valid || !p.NetWages.Valid {
		return decimal.Zero
	}
	return p.GrossWages.Value.Sub(p.NetWages.Value)
}

// MYOBTransactions groups the records a BAS is computed from.
type MYOBTransactions struct {
	Sales     []MYOBSale     `json:"Sales"`
	Purchases []MYOBPurchase `json:"Purchases"`
	Payroll   []MYOBPayslip  `json:"Payroll"`
}

// NormalizeMYOBBAS aggregates MYOB records into a Summary.
//
// Totals include every record regardless of tax code; GST only counts
// records coded GST. MYOB does not distinguish capital purchases, so the
// capital fields are left absent and net payable has no capital term.
func NormalizeMYOBBAS(sales []MYOBSale, purchases []MYOBPurchase, payroll []MYOBPayslip, period string) Summary {
	summary := Summary{
		Source:         SourceMYOB,
		Period:         period,
		TotalSales:     decimal.Zero,
		GSTOnSales:     decimal.Zero,
		TotalPurchases: decimal.Zero,
		GSTOnPurchases: decimal.Zero,
		PAYGWithheld:   decimal.Zero,
	}

	for _, sale := range sales {
		summary.TotalSales = summary.TotalSales.Add(sale.TotalAmount.OrZero())
		if sale.TaxCode == MYOBTaxCodeGST {
			summary.GSTOnSales = summary.GSTOnSales.Add(sale.TaxAmount())
		}
	}

	for _, purchase := range purchases {
		summary.TotalPurchases = summary.TotalPurchases.Add(purchase.TotalAmount.OrZero())
		if purchase.TaxCode == MYOBTaxCodeGST {
			summary.GSTOnPurchases = summary.GSTOnPurchases.Add(purchase.TaxAmount())
		}
	}

	for _, slip := range payroll {
		summary.PAYGWithheld = summary.PAYGWithheld.Add(slip.Withheld())
	}

	return summary
}

// DecodeMYOBTransactions reads {"Sales": ..., "Purchases": ..., "Payroll": ...}.
// Each list is either a JSON array or an MYOB page ({"Items": [...]}). A
// missing list or one of any other shape is malformed; an empty list is not.
func DecodeMYOBTransactions(r io.Reader) (*MYOBTransactions, error) {
	const op = "DecodeMYOBTransactions"

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, WrapNormalizationError(op, SourceMYOB, err, "failed to read transactions")
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil || top == nil {
		return nil, malformed(op, SourceMYOB, "transactions are not a JSON object")
	}

	txns := &MYOBTransactions{}
	if txns.Sales, err = decodeMYOBList[MYOBSale](op, top, "Sales"); err != nil {
		return nil, err
	}
	if txns.Purchases, err = decodeMYOBList[MYOBPurchase](op, top, "Purchases"); err != nil {
		return nil, err
	}
	if txns.Payroll, err = decodeMYOBList[MYOBPayslip](op, top, "Payroll"); err != nil {
		return nil, err
	}

	return txns, nil
}

func decodeMYOBList[T any](op string, top map[string]json.RawMessage, key string) ([]T, error) {
	raw, ok := lookupFold(top, key)
	if !ok {
		return nil, malformed(op, SourceMYOB, key+" is missing")
	}

	if !isJSONArray(raw) {
		var page map[string]json.RawMessage
		if err := json.Unmarshal(raw, &page); err != nil || page == nil {
			return nil, malformed(op, SourceMYOB, key+" is neither a list nor a page")
		}
		items, ok := lookupFold(page, "Items")
		if !ok || !isJSONArray(items) {
			return nil, malformed(op, SourceMYOB, key+" page has no Items array")
		}
		raw = items
	}

	list := []T{}
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, malformed(op, SourceMYOB, key+" could not be decoded")
	}
	return list, nil
}

func lookupFold(m map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	if v, ok := m[key]; ok {
		return v, true
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.EqualFold(k, key) {
			return m[k], true
		}
	}
	return nil, false
}

// MYOBAdapter normalizes MYOB transaction data.
type MYOBAdapter struct {
	Transactions *MYOBTransactions
}

// Source implements SourceAdapter.
func (a MYOBAdapter) Source() Source {
	return SourceMYOB
}

// Normalize implements SourceAdapter.
func (a MYOBAdapter) Normalize(period string) (Summary, error) {
	if a.Transactions == nil {
		return Summary{}, malformed("NormalizeMYOBBAS", SourceMYOB, "transactions are nil")
	}
	t := a.Transactions
	return NormalizeMYOBBAS(t.Sales, t.Purchases, t.Payroll, period), nil
}
