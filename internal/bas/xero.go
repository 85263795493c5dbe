package bas

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

// Xero BAS report row labels.
const (
	XeroTotalSales       = "G1 Total sales"
	XeroGSTOnSales       = "G3 GST on sales"
	XeroCapitalPurchases = "G10 Capital purchases"
	XeroGSTOnCapital     = "G11 GST on capital purchases"
	XeroTotalPurchases   = "G20 Total purchases"
	XeroGSTOnPurchases   = "G21 GST on purchases"
	XeroPAYGWithheld     = "W1 PAYG withheld"
)

// XeroReport is a report returned by the Xero Accounting API
// (GET /Reports/BASorGST).
type XeroReport struct {
	ReportID     string    `json:"ReportID"`
	ReportName   string    `json:"ReportName"`
	ReportTitles []string  `json:"ReportTitles"`
	Rows         []XeroRow `json:"Rows"`
}

// XeroRow is a report row. Section rows carry child rows; data rows carry
// cells, the first of which is the label.
type XeroRow struct {
	RowType string     `json:"RowType"`
	Title   string     `json:"Title"`
	Cells   []XeroCell `json:"Cells"`
	Rows    []XeroRow  `json:"Rows"`
}

// UnmarshalJSON decodes a row leniently. A row that is not an object, or has
// fields of the wrong type, keeps whatever could be decoded.
func (r *XeroRow) UnmarshalJSON(data []byte) error {
	type plain XeroRow
	var p plain
	_ = json.Unmarshal(data, &p)
	*r = XeroRow(p)
	return nil
}

// XeroCell is a single report cell. Value holds the cell text as Xero
// formats it.
type XeroCell struct {
	Value string `json:"Value"`
}

// UnmarshalJSON accepts string and numeric cell values; anything else reads
// as an empty cell.
func (c *XeroCell) UnmarshalJSON(data []byte) error {
	var raw struct {
		Value json.RawMessage `json:"Value"`
	}
	*c = XeroCell{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	c.Value = scalarText(raw.Value)
	return nil
}

// ExtractCell returns the amount in the second cell of the first row whose
// first cell equals label (case-sensitive), scanning rows depth-first. A
// missing row reads as zero: Xero omits rows for zero-value fields.
func ExtractCell(report *XeroReport, label string) decimal.Decimal {
	if report == nil {
		return decimal.Zero
	}
	if text, ok := findCell(report.Rows, label); ok {
		return ParseMoney(text)
	}
	return decimal.Zero
}

func findCell(rows []XeroRow, label string) (string, bool) {
	for _, row := range rows {
		if len(row.Cells) > 0 && row.Cells[0].Value == label {
			if len(row.Cells) < 2 {
				return "", true
			}
			return row.Cells[1].Value, true
		}
		if text, ok := findCell(row.Rows, label); ok {
			return text, true
		}
	}
	return "", false
}

// NormalizeXeroBAS maps a Xero BAS report onto a Summary.
//
// When period is empty the last report title is used, which is where Xero
// puts the "For the period ..." line.
func NormalizeXeroBAS(report *XeroReport, period string) (Summary, error) {
	const op = "NormalizeXeroBAS"

	if report == nil {
		return Summary{}, malformed(op, SourceXero, "report is nil")
	}

	if period == "" && len(report.ReportTitles) > 0 {
		period = strings.TrimSpace(report.ReportTitles[len(report.ReportTitles)-1])
	}

	capital := ExtractCell(report, XeroCapitalPurchases)
	gstOnCapital := ExtractCell(report, XeroGSTOnCapital)

	return Summary{
		Source:           SourceXero,
		Period:           period,
		TotalSales:       ExtractCell(report, XeroTotalSales),
		GSTOnSales:       ExtractCell(report, XeroGSTOnSales),
		TotalPurchases:   ExtractCell(report, XeroTotalPurchases),
		GSTOnPurchases:   ExtractCell(report, XeroGSTOnPurchases),
		CapitalPurchases: &capital,
		GSTOnCapital:     &gstOnCapital,
		PAYGWithheld:     ExtractCell(report, XeroPAYGWithheld),
	}, nil
}

// DecodeXeroReport reads a Xero report from JSON. It accepts either the API
// response envelope ({"Reports": [...]}, first report wins) or a bare report
// object. The report must carry a Rows array; an empty one is fine.
func DecodeXeroReport(r io.Reader) (*XeroReport, error) {
	const op = "DecodeXeroReport"

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, WrapNormalizationError(op, SourceXero, err, "failed to read report")
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil || top == nil {
		return nil, malformed(op, SourceXero, "report is not a JSON object")
	}

	reportRaw := json.RawMessage(data)
	body := top
	if reports, ok := top["Reports"]; ok {
		var list []json.RawMessage
		if err := json.Unmarshal(reports, &list); err != nil {
			return nil, malformed(op, SourceXero, "Reports is not an array")
		}
		if len(list) == 0 {
			return nil, malformed(op, SourceXero, "response contains no reports")
		}
		body = nil
		if err := json.Unmarshal(list[0], &body); err != nil || body == nil {
			return nil, malformed(op, SourceXero, "first report is not an object")
		}
		reportRaw = list[0]
	}

	rows, ok := body["Rows"]
	if !ok || !isJSONArray(rows) {
		return nil, malformed(op, SourceXero, "report has no Rows array")
	}

	// Type mismatches in individual fields degrade to zero values; Rows itself
	// is known to be an array and its elements decode leniently.
	report := &XeroReport{}
	_ = json.Unmarshal(reportRaw, report)

	return report, nil
}

// XeroAdapter normalizes a Xero BAS report.
type XeroAdapter struct {
	Report *XeroReport
}

// Source implements SourceAdapter.
func (a XeroAdapter) Source() Source {
	return SourceXero
}

// Normalize implements SourceAdapter.
func (a XeroAdapter) Normalize(period string) (Summary, error) {
	return NormalizeXeroBAS(a.Report, period)
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

// scalarText renders a JSON string or number as text. Other values, including
// null, render as "".
func scalarText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ""
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return ""
		}
		return s
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return ""
		}
		return n.String()
	default:
		return ""
	}
}
