package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/misterpips/config"
)

// resetFlags puts every flag back to its default so runs do not leak
// state into each other.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	c := config.Default()
	c.Account.User = "tester"
	c.Store.Dir = filepath.Join(dir, "docs")
	c.Journal.DBPath = filepath.Join(dir, "journal.db")
	c.Log.Level = "warn"
	path := filepath.Join(dir, "misterpips.yaml")
	require.NoError(t, c.SaveToFile(path))
	return path
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "misterpips version "+version+"\n", out)
}

func TestCalcCommands(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "pnl",
			args: []string{"calc", "pnl", "--pair", "EUR/USD", "--dir", "buy", "--entry", "1.1", "--sl", "1.099",
				"--tp", "1.102", "--lots", "0.1", "--exit", "1.102", "--capital", "1000", "--risk", "2"},
			want: []string{"+40.00 USD", "10.0 pips", "20.0 pips"},
		},
		{
			name: "pnl_uses_account_defaults",
			args: []string{"calc", "pnl", "--entry", "1.1", "--sl", "1.099", "--tp", "1.102", "--exit", "1.099"},
			want: []string{"-20.00 USD", "$20.00"},
		},
		{
			name: "position",
			args: []string{"calc", "position", "--pair", "EURUSD", "--capital", "10000", "--risk", "1", "--entry", "1.1", "--sl", "1.095"},
			want: []string{"Lots:", "0.20", "50.0 pips"},
		},
		{
			name: "pipvalue",
			args: []string{"calc", "pipvalue", "--pair", "GBP/USD", "--lots", "1", "--pips", "10"},
			want: []string{"$10.00", "$100.00"},
		},
		{
			name: "risk",
			args: []string{"calc", "risk", "--capital", "10000", "--trades", "3", "--avg-risk", "2", "--correlation", "high"},
			want: []string{"9.00%", "$900.00", "Moderate"},
		},
		{
			name: "swap",
			args: []string{"calc", "swap", "--pair", "USDJPY", "--dir", "short", "--lots", "1", "--nights", "1"},
			want: []string{"-18.60%", "-50.96 USD"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append([]string{"--log-level", "error"}, tt.args...)...)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestCalcRejectsBadInput(t *testing.T) {
	_, err := run(t, "--log-level", "error", "calc", "pnl", "--entry", "0", "--sl", "1.099", "--tp", "1.102", "--exit", "1.1")
	assert.ErrorContains(t, err, "entry")

	_, err = run(t, "--log-level", "error", "calc", "position", "--entry", "1.1", "--sl", "1.1")
	assert.ErrorContains(t, err, "stop-loss distance is zero")

	_, err = run(t, "--log-level", "error", "calc", "swap", "--pair", "DOGE")
	assert.ErrorContains(t, err, "unknown instrument")
}

func TestTradeLifecycle(t *testing.T) {
	cfgPath := writeConfig(t)
	base := []string{"--config", cfgPath}

	out, err := run(t, append(base, "trade", "open", "--pair", "EUR/USD", "--dir", "buy",
		"--entry", "1.1", "--sl", "1.099", "--tp", "1.102", "--lots", "0.1")...)
	require.NoError(t, err)
	fields := strings.Fields(out)
	require.GreaterOrEqual(t, len(fields), 2)
	id := fields[1]

	out, err = run(t, append(base, "trade", "list")...)
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "OPEN")

	out, err = run(t, append(base, "trade", "close", id, "--reason", "sl", "--preview")...)
	require.NoError(t, err)
	assert.Contains(t, out, "-20.00 USD")

	out, err = run(t, append(base, "trade", "close", id, "--reason", "tp")...)
	require.NoError(t, err)
	assert.Contains(t, out, "CLOSED_TP")
	assert.Contains(t, out, "+40.00 USD")

	_, err = run(t, append(base, "trade", "close", id, "--reason", "tp")...)
	assert.ErrorContains(t, err, "not open")

	out, err = run(t, append(base, "trade", "list")...)
	require.NoError(t, err)
	assert.NotContains(t, out, id)

	out, err = run(t, append(base, "trade", "list", "--all")...)
	require.NoError(t, err)
	assert.Contains(t, out, id)

	out, err = run(t, append(base, "trade", "stats")...)
	require.NoError(t, err)
	assert.Contains(t, out, "40.00 USD")
	assert.Contains(t, out, "1040.00")

	export := filepath.Join(t.TempDir(), "trades.csv")
	_, err = run(t, append(base, "trade", "export", "-o", export)...)
	require.NoError(t, err)
	b, err := os.ReadFile(export)
	require.NoError(t, err)
	assert.Contains(t, string(b), "Date,Pair,Type,Entry,Exit,SL,TP,Lot,P&L,Status")
	assert.Contains(t, string(b), "CLOSED_TP")

	out, err = run(t, append(base, "journal", "trade", id)...)
	require.NoError(t, err)
	assert.Contains(t, out, ":ID: "+id)
	assert.Contains(t, out, ":USER: tester")

	out, err = run(t, append(base, "journal", "summary")...)
	require.NoError(t, err)
	assert.Contains(t, out, "trades: 1  wins: 1")

	out, err = run(t, append(base, "trade", "open", "--pair", "GBPUSD", "--entry", "1.25", "--sl", "1.249", "--tp", "1.252")...)
	require.NoError(t, err)
	marked := strings.Fields(out)[1]

	_, err = run(t, append(base, "trade", "mark")...)
	assert.ErrorContains(t, err, "PAIR=PRICE")

	out, err = run(t, append(base, "trade", "mark", "GBPUSD=1.2505")...)
	require.NoError(t, err)
	assert.Contains(t, out, "open "+marked)
	assert.Contains(t, out, "+10.00 USD")
	assert.Contains(t, out, "1050.00 USD")

	out, err = run(t, append(base, "trade", "mark", "GBP/USD=1.2521")...)
	require.NoError(t, err)
	assert.Contains(t, out, "closed "+marked)
	assert.Contains(t, out, "CLOSED_TP at 1.252")
	assert.Contains(t, out, "1080.00 USD")

	out, err = run(t, append(base, "trade", "open", "--entry", "150", "--sl", "151", "--tp", "148", "--pair", "USDJPY", "--dir", "sell")...)
	require.NoError(t, err)
	other := strings.Fields(out)[1]
	out, err = run(t, append(base, "trade", "delete", other)...)
	require.NoError(t, err)
	assert.Contains(t, out, "deleted "+other)
}

func TestAlertCommands(t *testing.T) {
	cfgPath := writeConfig(t)
	base := []string{"--config", cfgPath}

	out, err := run(t, append(base, "alert", "add", "--pair", "eurusd", "--condition", "above", "--price", "1.1", "-m", "breakout")...)
	require.NoError(t, err)
	assert.Contains(t, out, "EUR/USD above 1.1")

	out, err = run(t, append(base, "alert", "check", "EUR/USD=1.0995")...)
	require.NoError(t, err)
	assert.Contains(t, out, "no alerts triggered")

	out, err = run(t, append(base, "alert", "check", "EURUSD=1.1004")...)
	require.NoError(t, err)
	assert.Contains(t, out, "TRIGGERED")
	assert.Contains(t, out, "breakout")

	out, err = run(t, append(base, "alert", "list")...)
	require.NoError(t, err)
	assert.Contains(t, out, "false")

	_, err = run(t, append(base, "alert", "check", "EURUSD")...)
	assert.ErrorContains(t, err, "PAIR=PRICE")
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.yaml")

	out, err := run(t, "--log-level", "error", "config", "init", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	out, err = run(t, "--log-level", "error", "config", "validate", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration valid")
	assert.Contains(t, out, "Journal: sqlite")

	_, err = run(t, "--log-level", "loud", "version")
	assert.Error(t, err)
}

func TestQuotesNeedsCredentials(t *testing.T) {
	t.Setenv("OANDA_TOKEN", "")
	t.Setenv("OANDA_ACCOUNT", "")
	_, err := run(t, "--config", writeConfig(t), "quotes", "EURUSD")
	assert.ErrorContains(t, err, "OANDA_TOKEN")
}

func TestParseQuotes(t *testing.T) {
	q, err := parseQuotes([]string{"EUR/USD=1.1", "USDJPY=150.25"})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"EUR/USD": 1.1, "USDJPY": 150.25}, q)

	_, err = parseQuotes([]string{"=1.1"})
	assert.Error(t, err)
	_, err = parseQuotes([]string{"EURUSD=abc"})
	assert.Error(t, err)
}

func TestDayBounds(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	start, end, err := dayBounds(loc, "2025-04-16")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 4, 16, 0, 0, 0, 0, loc), start)
	assert.Equal(t, 24*time.Hour, end.Sub(start))

	_, _, err = dayBounds(loc, "16/04/2025")
	assert.Error(t, err)
}

func TestTradeHistory(t *testing.T) {
	cfgPath := writeConfig(t)
	base := []string{"--config", cfgPath}
	args := func(date string) []string {
		return append(base, "trade", "history", "--pair", "EUR/USD", "--dir", "buy",
			"--entry", "1.1", "--sl", "1.099", "--tp", "1.102", "--exit", "1.1015", "--date", date)
	}

	out, err := run(t, args("2025-01-15")...)
	require.NoError(t, err)
	assert.Contains(t, out, "CLOSED_MANUAL")
	assert.Contains(t, out, "on 2025-01-15")
	assert.Contains(t, out, "+30.00 USD")
	id := strings.Fields(out)[1]

	out, err = run(t, append(base, "trade", "list", "--all")...)
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "2025-01-15")

	out, err = run(t, append(base, "journal", "trade", id)...)
	require.NoError(t, err)
	assert.Contains(t, out, ":ID: "+id)

	_, err = run(t, args("2999-01-01")...)
	assert.ErrorContains(t, err, "invalid trade date")

	_, err = run(t, args("15/01/2025")...)
	assert.ErrorContains(t, err, "invalid trade date")

	_, err = run(t, append(base, "trade", "history", "--exit", "1.1")...)
	assert.ErrorContains(t, err, "date")
}
