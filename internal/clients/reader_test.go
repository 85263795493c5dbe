package clients_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compliance/internal/clients"
	"compliance/internal/risk"
)

type fakeRange struct {
	values   [][]interface{}
	err      error
	gotRange string
}

func (f *fakeRange) ReadRange(_ context.Context, rangeSpec string) ([][]interface{}, error) {
	f.gotRange = rangeSpec
	return f.values, f.err
}

func TestReader_ReadClients(t *testing.T) {
	sheet := &fakeRange{values: [][]interface{}{
		{"Client ID", "Name", "Days until deadline", "Open obligations", "Employees", "Ignored reminder", "Late lodgements"},
		{"smith-plumbing", "Smith Plumbing", "2", "2", "12", "no", "0"},
		{"jones-electrical", "Jones Electrical", float64(0), float64(1), float64(22), true, float64(1)},
		{"anderson-cafe", "Anderson Cafe", "6", "", "", "Yes"},
		{"", "Orphan Row", "3"},
		{},
		{"sunrise-bakery", "Sunrise Bakery", "", "0", "6", "", "0"},
		{"bad-cells", "Bad Cells", "soon", "many", "1,200", "maybe", "2.0"},
	}}

	reader := clients.NewReader(sheet).WithLogger(zerolog.Nop())
	got, err := reader.ReadClients(context.Background(), "Clients")
	require.NoError(t, err)

	assert.Equal(t, "Clients!A:G", sheet.gotRange)
	require.Len(t, got, 5)

	assert.Equal(t, risk.Client{
		ID:   "smith-plumbing",
		Name: "Smith Plumbing",
		Signals: risk.Signals{
			DaysUntilNextDeadline: risk.Days(2),
			OpenObligationsCount:  2,
			EmployeeCount:         12,
		},
	}, got[0])

	jones := got[1]
	require.NotNil(t, jones.DaysUntilNextDeadline)
	assert.Equal(t, 0, *jones.DaysUntilNextDeadline)
	assert.True(t, jones.HasIgnoredRecentReminder)
	assert.Equal(t, 22, jones.EmployeeCount)
	assert.Equal(t, 1, jones.LateLodgementHistoryCount)
	assert.Equal(t, risk.NoDeadline, jones.DaysUntilDeadline())
	assert.Equal(t, "37 MED", risk.Score(jones.Signals).Label())

	cafe := got[2]
	assert.Equal(t, "anderson-cafe", cafe.ID)
	assert.True(t, cafe.HasIgnoredRecentReminder)
	assert.Zero(t, cafe.OpenObligationsCount)

	bakery := got[3]
	assert.Nil(t, bakery.DaysUntilNextDeadline, "blank days means no known deadline")
	assert.Equal(t, risk.NoDeadline, bakery.DaysUntilDeadline())

	bad := got[4]
	assert.Nil(t, bad.DaysUntilNextDeadline)
	assert.Zero(t, bad.OpenObligationsCount)
	assert.Equal(t, 1200, bad.EmployeeCount)
	assert.False(t, bad.HasIgnoredRecentReminder)
	assert.Equal(t, 2, bad.LateLodgementHistoryCount)
}

func TestReader_QuotesSheetNames(t *testing.T) {
	sheet := &fakeRange{values: [][]interface{}{{"Client ID"}}}
	got, err := clients.NewReader(sheet).WithLogger(zerolog.Nop()).ReadClients(context.Background(), "Client List")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, "'Client List'!A:G", sheet.gotRange)
}

func TestReader_Errors(t *testing.T) {
	t.Run("read fails", func(t *testing.T) {
		cause := errors.New("403 forbidden")
		_, err := clients.NewReader(&fakeRange{err: cause}).WithLogger(zerolog.Nop()).ReadClients(context.Background(), "Clients")
		assert.ErrorIs(t, err, cause)
	})

	t.Run("empty sheet", func(t *testing.T) {
		_, err := clients.NewReader(&fakeRange{}).WithLogger(zerolog.Nop()).ReadClients(context.Background(), "Clients")
		assert.ErrorContains(t, err, "Clients sheet is empty")
	})
}

func TestDecodeClients(t *testing.T) {
	tests := []struct {
		name string
		body string
		ids  []string
	}{
		{"bare array", `[{"id": "a", "daysUntilNextDeadline": 3}, {"id": "b"}]`, []string{"a", "b"}},
		{"wrapped", `{"clients": [{"id": "c", "employeeCount": 20}]}`, []string{"c"}},
		{"empty", `[]`, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := clients.DecodeClients(strings.NewReader(tt.body))
			require.NoError(t, err)
			ids := make([]string, 0, len(got))
			for _, c := range got {
				ids = append(ids, c.ID)
			}
			assert.Equal(t, tt.ids, ids)
		})
	}
}

func TestDecodeClients_Errors(t *testing.T) {
	_, err := clients.DecodeClients(strings.NewReader(`[{"name": "No ID"}]`))
	assert.ErrorIs(t, err, clients.ErrMissingClientID)

	_, err = clients.DecodeClients(strings.NewReader(`{"clients": "nope"}`))
	assert.Error(t, err)

	_, err = clients.DecodeClients(strings.NewReader(`not json`))
	assert.Error(t, err)
}

func TestDecodeSignals(t *testing.T) {
	signals, err := clients.DecodeSignals(strings.NewReader(`{
		"daysUntilNextDeadline": 2,
		"openObligationsCount": 3,
		"employeeCount": 25,
		"hasIgnoredRecentReminder": true,
		"lateLodgementHistoryCount": 2
	}`))
	require.NoError(t, err)
	assert.Equal(t, 100, risk.Score(signals).Score)

	zero, err := clients.DecodeSignals(strings.NewReader(`{
		"daysUntilNextDeadline": 0,
		"openObligationsCount": 0,
		"employeeCount": 0,
		"hasIgnoredRecentReminder": false,
		"lateLodgementHistoryCount": 0
	}`))
	require.NoError(t, err)
	result := risk.Score(zero)
	assert.Equal(t, 0, result.Score)
	assert.Equal(t, risk.LevelLow, result.Level)
	assert.Equal(t, []string{risk.NoRiskReason}, result.Reasons)

	_, err = clients.DecodeSignals(strings.NewReader(`{"employeeCount": "many"}`))
	assert.Error(t, err)
}
