package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	appinv "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func readRows(t *testing.T, data []byte) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	return rows
}

func TestMovementHistory(t *testing.T) {
	at := time.Date(2024, 3, 10, 15, 4, 0, 0, time.Local)
	data, err := MovementHistory([]appinv.MovementResponse{
		{Timestamp: at, UserName: "alice", VariantCode: "B8-001", ItemName: "Bolt", SpecLabel: "M8", Quantity: 2, Direction: "OUT"},
		{Timestamp: at.Add(-time.Hour), VariantCode: "B8-001", ItemName: "Bolt", SpecLabel: "M8", Quantity: 6, Direction: "IN"},
	}, "")
	require.NoError(t, err)

	rows := readRows(t, data)
	require.Len(t, rows, 3)
	assert.Equal(t, historyHeaders, rows[0])
	assert.Equal(t, []string{"2024-03-10", "1", "alice", "B8-001", "Bolt", "M8", "2"}, rows[1])
	assert.Equal(t, "", rows[2][2])
	assert.Equal(t, "6", rows[2][6])
}

func TestMovementHistory_Empty(t *testing.T) {
	data, err := MovementHistory(nil, "7")
	require.NoError(t, err)
	rows := readRows(t, data)
	require.Len(t, rows, 1)
}

func TestUsageStatistics(t *testing.T) {
	data, err := UsageStatistics(&appinv.UsageStatsResponse{
		Rows: []appinv.UsageRowResponse{
			{ItemName: "Bolt", SpecLabel: "M8", UnitPrice: decimal.RequireFromString("2.5"), Quantity: 4, Amount: decimal.RequireFromString("10")},
		},
	})
	require.NoError(t, err)

	rows := readRows(t, data)
	require.Len(t, rows, 2)
	assert.Equal(t, usageHeaders, rows[0])
	assert.Equal(t, []string{"Bolt", "M8", "2.5", "4", "10"}, rows[1])
}
