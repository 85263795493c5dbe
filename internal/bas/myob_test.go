package bas_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compliance/internal/bas"
)

func amt(v string) bas.Amount {
	return bas.NewAmount(decimal.RequireFromString(v))
}

func gstSale(total, tax string) bas.MYOBSale {
	return bas.MYOBSale{
		TotalAmount: amt(total),
		TaxCode:     bas.MYOBTaxCodeGST,
		Freight:     &bas.MYOBFreight{TaxAmount: amt(tax)},
	}
}

func TestNormalizeMYOBBAS_SalesTotalsIgnoreTaxCode(t *testing.T) {
	sales := []bas.MYOBSale{
		gstSale("100", "10"),
		{TotalAmount: amt("50"), TaxCode: "FRE", Freight: &bas.MYOBFreight{TaxAmount: amt("0")}},
	}

	summary := bas.NormalizeMYOBBAS(sales, nil, nil, "Q3")

	assert.Equal(t, "150", summary.TotalSales.String())
	assert.Equal(t, "10", summary.GSTOnSales.String())
}

func TestNormalizeMYOBBAS_OnlyGSTCodedRowsCarryTax(t *testing.T) {
	sales := []bas.MYOBSale{
		gstSale("110", "10"),
		{TotalAmount: amt("220"), TaxCode: "FRE", Freight: &bas.MYOBFreight{TaxAmount: amt("20")}},
		{TotalAmount: amt("330"), TaxCode: "gst", Freight: &bas.MYOBFreight{TaxAmount: amt("30")}},
	}
	purchases := []bas.MYOBPurchase{
		{TotalAmount: amt("55"), TaxCode: "GST", FreightTaxAmount: amt("5")},
		{TotalAmount: amt("44"), TaxCode: "N-T", FreightTaxAmount: amt("4")},
	}

	summary := bas.NormalizeMYOBBAS(sales, purchases, nil, "Q3")

	assert.Equal(t, "660", summary.TotalSales.String())
	assert.Equal(t, "10", summary.GSTOnSales.String(), "tax codes match case-sensitively")
	assert.Equal(t, "99", summary.TotalPurchases.String())
	assert.Equal(t, "5", summary.GSTOnPurchases.String())
}

func TestNormalizeMYOBBAS_Payroll(t *testing.T) {
	payroll := []bas.MYOBPayslip{
		{GrossWages: amt("5000"), NetWages: amt("3900")},
		{GrossWages: amt("4200.50"), NetWages: amt("3350.25")},
		{GrossWages: amt("1000")}, // net missing: contributes nothing
		{},
	}

	summary := bas.NormalizeMYOBBAS(nil, nil, payroll, "Q3")
	assert.Equal(t, "1950.25", summary.PAYGWithheld.String())
}

func TestNormalizeMYOBBAS_NoCapitalTerm(t *testing.T) {
	sales := []bas.MYOBSale{gstSale("96200", "8745")}
	purchases := []bas.MYOBPurchase{{TotalAmount: amt("31400"), TaxCode: "GST", FreightTaxAmount: amt("2854")}}

	summary := bas.NormalizeMYOBBAS(sales, purchases, nil, "Q3 FY2024-25")

	assert.Equal(t, bas.SourceMYOB, summary.Source)
	assert.Nil(t, summary.CapitalPurchases)
	assert.Nil(t, summary.GSTOnCapital)
	assert.False(t, summary.HasCapitalItems())
	assert.Equal(t, "5891", summary.NetPayable().String())
	assert.False(t, summary.Refund())
}

func TestNormalizeMYOBBAS_Refund(t *testing.T) {
	sales := []bas.MYOBSale{gstSale("110", "10")}
	purchases := []bas.MYOBPurchase{{TotalAmount: amt("550"), TaxCode: "GST", FreightTaxAmount: amt("50")}}

	summary := bas.NormalizeMYOBBAS(sales, purchases, nil, "Q3")
	assert.Equal(t, "-40", summary.NetPayable().String())
	assert.True(t, summary.Refund())
}

func TestNormalizeMYOBBAS_Empty(t *testing.T) {
	summary := bas.NormalizeMYOBBAS(nil, nil, nil, "Q1")
	assert.True(t, summary.TotalSales.IsZero())
	assert.True(t, summary.NetPayable().IsZero())
	assert.False(t, summary.Refund())
}

func TestMYOBAdapter(t *testing.T) {
	var adapter bas.SourceAdapter = bas.MYOBAdapter{Transactions: &bas.MYOBTransactions{
		Sales: []bas.MYOBSale{gstSale("100", "10")},
	}}

	assert.Equal(t, bas.SourceMYOB, adapter.Source())
	summary, err := adapter.Normalize("Q3")
	require.NoError(t, err)
	assert.Equal(t, "10", summary.NetPayable().String())

	_, err = bas.MYOBAdapter{}.Normalize("Q3")
	assert.ErrorIs(t, err, bas.ErrMalformedSourceData)
}

func TestDecodeMYOBTransactions(t *testing.T) {
	body := `{
	  "Sales": [
	    {"TotalAmount": 100, "TaxCode": "GST", "Freight": {"TaxAmount": 10}},
	    {"TotalAmount": 50, "TaxCode": {"UID": "5a0b1e3c", "Code": "FRE"}, "Freight": {"TaxAmount": 0}},
	    {"TotalAmount": "1,000.00", "TaxCode": {"Code": "GST"}, "Freight": {"TaxAmount": "90.91"}}
	  ],
	  "Purchases": {"Items": [
	    {"TotalAmount": 55, "TaxCode": "GST", "FreightTaxAmount": 5}
	  ], "NextPageLink": null, "Count": 1},
	  "payroll": [
	    {"GrossWages": 5000, "NetWages": 3900}
	  ]
	}`

	txns, err := bas.DecodeMYOBTransactions(strings.NewReader(body))
	require.NoError(t, err)
	require.Len(t, txns.Sales, 3)
	require.Len(t, txns.Purchases, 1)
	require.Len(t, txns.Payroll, 1)

	assert.Equal(t, bas.TaxCode("FRE"), txns.Sales[1].TaxCode)

	summary, err := bas.MYOBAdapter{Transactions: txns}.Normalize("Q3")
	require.NoError(t, err)
	assert.Equal(t, "1150", summary.TotalSales.String())
	assert.Equal(t, "100.91", summary.GSTOnSales.String())
	assert.Equal(t, "55", summary.TotalPurchases.String())
	assert.Equal(t, "5", summary.GSTOnPurchases.String())
	assert.Equal(t, "1100", summary.PAYGWithheld.String())
	assert.Equal(t, "95.91", summary.NetPayable().String())
}

func TestDecodeMYOBTransactions_BadRecordsDegrade(t *testing.T) {
	body := `{
	  "Sales": [
	    "garbage",
	    null,
	    {"TotalAmount": "n/a", "TaxCode": "GST", "Freight": 7},
	    {"TotalAmount": true, "TaxCode": 12, "Freight": {"TaxAmount": "abc"}},
	    {"TotalAmount": 20, "TaxCode": "GST", "Freight": {"TaxAmount": 2}}
	  ],
	  "Purchases": [],
	  "Payroll": [{"GrossWages": "lots", "NetWages": 100}]
	}`

	txns, err := bas.DecodeMYOBTransactions(strings.NewReader(body))
	require.NoError(t, err)
	require.Len(t, txns.Sales, 5)

	summary := bas.NormalizeMYOBBAS(txns.Sales, txns.Purchases, txns.Payroll, "Q3")
	assert.Equal(t, "20", summary.TotalSales.String())
	assert.Equal(t, "2", summary.GSTOnSales.String())
	assert.True(t, summary.PAYGWithheld.IsZero())
}

func TestDecodeMYOBTransactions_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `sales,purchases`},
		{"top-level array", `[]`},
		{"null", `null`},
		{"missing payroll", `{"Sales": [], "Purchases": []}`},
		{"sales is a string", `{"Sales": "none", "Purchases": [], "Payroll": []}`},
		{"page without items", `{"Sales": {"Count": 0}, "Purchases": [], "Payroll": []}`},
		{"page items not a list", `{"Sales": {"Items": {}}, "Purchases": [], "Payroll": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txns, err := bas.DecodeMYOBTransactions(strings.NewReader(tt.body))
			assert.ErrorIs(t, err, bas.ErrMalformedSourceData)
			assert.Nil(t, txns)
		})
	}
}

func TestDecodeMYOBTransactions_EmptyListsAreValid(t *testing.T) {
	txns, err := bas.DecodeMYOBTransactions(strings.NewReader(`{"Sales": [], "Purchases": {"Items": []}, "Payroll": []}`))
	require.NoError(t, err)

	summary, err := bas.MYOBAdapter{Transactions: txns}.Normalize("Q1")
	require.NoError(t, err)
	assert.True(t, summary.NetPayable().IsZero())
}

func TestAmount_JSON(t *testing.T) {
	var a bas.Amount
	require.NoError(t, json.Unmarshal([]byte(`"$1,234.50"`), &a))
	assert.True(t, a.Valid)
	assert.Equal(t, "1234.5", a.Value.String())

	require.NoError(t, json.Unmarshal([]byte(`null`), &a))
	assert.False(t, a.Valid)
	assert.True(t, a.OrZero().IsZero())

	out, err := json.Marshal(struct {
		Set   bas.Amount
		Unset bas.Amount
	}{Set: amt("12.5")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Set": 12.5, "Unset": null}`, string(out))
}
