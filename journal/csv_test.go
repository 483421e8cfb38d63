package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	fh, err := os.Open(path)
	require.NoError(t, err)
	defer fh.Close()
	rows, err := csv.NewReader(fh).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVJournalHeaders(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.csv")
	equityPath := filepath.Join(dir, "equity.csv")

	j, err := NewCSV(tradesPath, equityPath)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	trades := readCSV(t, tradesPath)
	require.Len(t, trades, 1)
	assert.Equal(t, tradeHeader, trades[0])

	equity := readCSV(t, equityPath)
	require.Len(t, equity, 1)
	assert.Equal(t, equityHeader, equity[0])
}

func TestCSVJournalRecordAndAppend(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.csv")
	equityPath := filepath.Join(dir, "equity.csv")
	closeT := time.Date(2024, 1, 2, 4, 5, 6, 0, time.UTC)

	j, err := NewCSV(tradesPath, equityPath)
	require.NoError(t, err)
	require.NoError(t, j.RecordTrade(sampleRecord("T1", "alice", closeT, 40)))
	require.NoError(t, j.RecordEquity(EquitySnapshot{Time: closeT, User: "alice", Capital: 1000, Equity: 1040, RealizedPL: 40, OpenTrades: 1}))
	require.NoError(t, j.Close())

	// reopening appends without a second header
	j, err = NewCSV(tradesPath, equityPath)
	require.NoError(t, err)
	require.NoError(t, j.RecordTrade(sampleRecord("T2", "alice", closeT.Add(time.Hour), -20)))
	require.NoError(t, j.Close())

	trades := readCSV(t, tradesPath)
	require.Len(t, trades, 3)
	assert.Equal(t, "T1", trades[1][0])
	assert.Equal(t, "alice", trades[1][1])
	assert.Equal(t, "EUR/USD", trades[1][2])
	assert.Equal(t, "BUY", trades[1][3])
	assert.Equal(t, "0.100000", trades[1][4])
	assert.Equal(t, closeT.Format(time.RFC3339), trades[1][10])
	assert.Equal(t, "40.000000", trades[1][11])
	assert.Equal(t, "TAKE_PROFIT", trades[1][12])
	assert.Equal(t, "T2", trades[2][0])
	assert.Equal(t, "-20.000000", trades[2][11])

	equity := readCSV(t, equityPath)
	require.Len(t, equity, 2)
	assert.Equal(t, []string{closeT.Format(time.RFC3339), "alice", "1000.000000", "1040.000000", "40.000000", "1"}, equity[1])
}

func TestOpen(t *testing.T) {
	t.Parallel()

	j, err := Open(Options{})
	require.NoError(t, err)
	assert.IsType(t, Nop{}, j)
	assert.NoError(t, j.RecordTrade(TradeRecord{}))

	dir := t.TempDir()
	j, err = Open(Options{Type: "sqlite", DBPath: filepath.Join(dir, "j.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, j)
	require.NoError(t, j.Close())

	_, err = Open(Options{Type: "mongo"})
	assert.Error(t, err)
}
