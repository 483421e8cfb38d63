package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/misterpips/dashboard"
	"github.com/rustyeddy/misterpips/market"
	"github.com/rustyeddy/misterpips/trade"
)

var tradeCmd = &cobra.Command{
	Use:   "trade",
	Short: "Open, close and review trades on a dashboard",
	Long: `Manage the trades of a user's dashboard in the configured store.

Subcommands:
  open    - Record a new open trade
  close   - Close an open trade at TP, SL, break-even or a manual price
  delete  - Remove an open trade
  list    - List trades
  stats   - Show statistics and trading-plan progress
  export  - Write every trade as CSV
  mark    - Close trades the given prices hit and value the rest
  history - Record a trade that was opened and closed in the past

Examples:
  misterpips trade open --pair EUR/USD --dir buy --entry 1.1 --sl 1.099 --tp 1.102 --lots 0.1
  misterpips trade close 01J... --reason tp
  misterpips trade close 01J... --reason manual --exit 1.1012
  misterpips trade mark EURUSD=1.1021 USDJPY=149.32
  misterpips trade history --pair EUR/USD --dir buy --entry 1.1 --sl 1.099 --tp 1.102 --exit 1.1015 --date 2025-04-14`,
}

var tradeFlags struct {
	user    string
	pair    string
	dir     string
	entry   float64
	sl      float64
	tp      float64
	lots    float64
	reason  string
	exit    float64
	preview bool
	all     bool
	output  string
	live    bool
	date    string
}

var tradeOpenCmd = &cobra.Command{
	Use:   "open",
	Short: "Record a new open trade",
	Args:  cobra.NoArgs,
	RunE:  runTradeOpen,
}

var tradeCloseCmd = &cobra.Command{
	Use:   "close <trade-id>",
	Short: "Close an open trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradeClose,
}

var tradeDeleteCmd = &cobra.Command{
	Use:   "delete <trade-id>",
	Short: "Remove an open trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradeDelete,
}

var tradeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List open trades (--all for every trade)",
	Args:  cobra.NoArgs,
	RunE:  runTradeList,
}

var tradeStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show statistics and trading-plan progress",
	Args:  cobra.NoArgs,
	RunE:  runTradeStats,
}

var tradeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export trades as CSV",
	Args:  cobra.NoArgs,
	RunE:  runTradeExport,
}

var tradeMarkCmd = &cobra.Command{
	Use:   "mark [PAIR=PRICE...]",
	Short: "Close trades whose SL or TP the prices reach and show unrealized P&L",
	RunE:  runTradeMark,
}

var tradeHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Record a past trade closed manually at --exit on --date",
	Args:  cobra.NoArgs,
	RunE:  runTradeHistory,
}

func init() {
	rootCmd.AddCommand(tradeCmd)
	tradeCmd.AddCommand(tradeOpenCmd, tradeCloseCmd, tradeDeleteCmd, tradeListCmd, tradeStatsCmd, tradeExportCmd, tradeMarkCmd, tradeHistoryCmd)

	tradeCmd.PersistentFlags().StringVarP(&tradeFlags.user, "user", "u", "", "dashboard owner (default account.user)")

	tradeOpenCmd.Flags().StringVarP(&tradeFlags.pair, "pair", "p", "EUR/USD", "instrument")
	tradeOpenCmd.Flags().StringVar(&tradeFlags.dir, "dir", "buy", "buy or sell")
	tradeOpenCmd.Flags().Float64Var(&tradeFlags.entry, "entry", 0, "entry price")
	tradeOpenCmd.Flags().Float64Var(&tradeFlags.sl, "sl", 0, "stop-loss price")
	tradeOpenCmd.Flags().Float64Var(&tradeFlags.tp, "tp", 0, "take-profit price")
	tradeOpenCmd.Flags().Float64Var(&tradeFlags.lots, "lots", 0.1, "position size in lots")

	tradeHistoryCmd.Flags().StringVarP(&tradeFlags.pair, "pair", "p", "EUR/USD", "instrument")
	tradeHistoryCmd.Flags().StringVar(&tradeFlags.dir, "dir", "buy", "buy or sell")
	tradeHistoryCmd.Flags().Float64Var(&tradeFlags.entry, "entry", 0, "entry price")
	tradeHistoryCmd.Flags().Float64Var(&tradeFlags.sl, "sl", 0, "stop-loss price")
	tradeHistoryCmd.Flags().Float64Var(&tradeFlags.tp, "tp", 0, "take-profit price")
	tradeHistoryCmd.Flags().Float64Var(&tradeFlags.lots, "lots", 0.1, "position size in lots")
	tradeHistoryCmd.Flags().Float64Var(&tradeFlags.exit, "exit", 0, "exit price")
	tradeHistoryCmd.Flags().StringVar(&tradeFlags.date, "date", "", "trade date, YYYY-MM-DD (local) or RFC 3339")
	_ = tradeHistoryCmd.MarkFlagRequired("date")
	_ = tradeHistoryCmd.MarkFlagRequired("exit")

	tradeCloseCmd.Flags().StringVarP(&tradeFlags.reason, "reason", "r", "", "tp, sl, be or manual")
	tradeCloseCmd.Flags().Float64Var(&tradeFlags.exit, "exit", 0, "exit price for manual closures")
	tradeCloseCmd.Flags().BoolVar(&tradeFlags.preview, "preview", false, "show the outcome without closing")
	_ = tradeCloseCmd.MarkFlagRequired("reason")

	tradeListCmd.Flags().BoolVarP(&tradeFlags.all, "all", "a", false, "include closed trades")
	tradeExportCmd.Flags().StringVarP(&tradeFlags.output, "output", "o", "", "output file (default stdout)")
	tradeMarkCmd.Flags().BoolVar(&tradeFlags.live, "live", false, "price open trades from OANDA")
}

func runTradeOpen(cmd *cobra.Command, args []string) error {
	dir, err := market.ParseDirection(tradeFlags.dir)
	if err != nil {
		return err
	}
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	t, decision, err := a.dashboards.OpenTrade(cmd.Context(), user(tradeFlags.user), trade.Spec{
		Instrument: tradeFlags.pair,
		Direction:  dir,
		Entry:      tradeFlags.entry,
		StopLoss:   tradeFlags.sl,
		TakeProfit: tradeFlags.tp,
		LotSize:    tradeFlags.lots,
	})
	for _, v := range decision.Violations {
		fmt.Fprintf(cmd.ErrOrStderr(), "policy: %s: %s\n", v.Code, v.Msg)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "opened %s %s %s @ %s (SL %s, TP %s, %.2f lots, R:R %.2f)\n",
		t.ID, t.Direction, t.Instrument, fmtPrice(t.Entry), fmtPrice(t.StopLoss), fmtPrice(t.TakeProfit), t.LotSize, t.RiskReward())
	return nil
}

func runTradeHistory(cmd *cobra.Command, args []string) error {
	dir, err := market.ParseDirection(tradeFlags.dir)
	if err != nil {
		return err
	}
	at, err := dashboard.ParseTradeDate(tradeFlags.date, time.Local)
	if err != nil {
		return err
	}
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := a.dashboards.RecordPastTrade(cmd.Context(), user(tradeFlags.user), trade.Spec{
		Instrument: tradeFlags.pair,
		Direction:  dir,
		Entry:      tradeFlags.entry,
		StopLoss:   tradeFlags.sl,
		TakeProfit: tradeFlags.tp,
		LotSize:    tradeFlags.lots,
	}, at, tradeFlags.exit)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "recorded %s %s %s %s on %s at %s => %+.2f USD\n",
		t.ID, t.Status, t.Direction, t.Instrument, at.Format("2006-01-02"), fmtPrice(t.Outcome.ExitPrice), t.Outcome.PnL)
	return nil
}

func runTradeClose(cmd *cobra.Command, args []string) error {
	reason, err := trade.ParseReason(tradeFlags.reason)
	if err != nil {
		return err
	}
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	u, id := user(tradeFlags.user), args[0]
	out := cmd.OutOrStdout()
	if tradeFlags.preview {
		o, err := a.dashboards.PreviewClose(cmd.Context(), u, id, reason, tradeFlags.exit)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "preview %s: %s at %s => %+.2f USD\n", id, o.Reason, fmtPrice(o.ExitPrice), o.PnL)
		return nil
	}

	t, err := a.dashboards.CloseTrade(cmd.Context(), u, id, reason, tradeFlags.exit)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "closed %s %s at %s => %+.2f USD\n", t.ID, t.Status, fmtPrice(t.Outcome.ExitPrice), t.Outcome.PnL)
	return nil
}

func runTradeDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.dashboards.DeleteTrade(cmd.Context(), user(tradeFlags.user), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
	return nil
}

func runTradeList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	d, err := a.dashboards.Load(cmd.Context(), user(tradeFlags.user))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tOPENED\tPAIR\tSIDE\tENTRY\tSL\tTP\tLOTS\tSTATUS\tP&L")
	for _, t := range d.Trades {
		if !tradeFlags.all && t.Status != trade.Open {
			continue
		}
		pnl := ""
		if t.Outcome != nil {
			pnl = fmt.Sprintf("%+.2f", t.Outcome.PnL)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%.2f\t%s\t%s\n",
			t.ID, t.OpenedAt.Local().Format("2006-01-02 15:04"), t.Instrument, t.Direction,
			fmtPrice(t.Entry), fmtPrice(t.StopLoss), fmtPrice(t.TakeProfit), t.LotSize, t.Status, pnl)
	}
	return w.Flush()
}

func runTradeStats(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.dashboards.Stats(cmd.Context(), user(tradeFlags.user))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Trades:\t%d (%d open, %d closed)\n", s.TotalTrades, s.OpenTrades, s.ClosedTrades)
	fmt.Fprintf(w, "Win rate:\t%.1f%% (last 7 days %.1f%%)\n", s.WinRate, s.RecentWinRate)
	fmt.Fprintf(w, "Total P&L:\t%s USD\n", s.TotalPnL.StringFixed(2))
	fmt.Fprintf(w, "Capital:\t%s -> %s (%+.2f%%)\n", s.InitialCapital.StringFixed(2), s.CurrentCapital.StringFixed(2), s.CapitalChangePct)
	for _, p := range s.Plan {
		fmt.Fprintf(w, "Plan %s:\t%s / %s USD (%.1f%%)\n", p.Period, p.PnL.StringFixed(2), p.Target.StringFixed(2), p.Progress)
	}
	return w.Flush()
}

func runTradeExport(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	var out io.Writer = cmd.OutOrStdout()
	if tradeFlags.output != "" {
		f, err := os.Create(tradeFlags.output)
		if err != nil {
			return fmt.Errorf("create export: %w", err)
		}
		defer f.Close()
		out = f
	}
	return a.dashboards.ExportCSV(cmd.Context(), user(tradeFlags.user), out)
}

// markBoard builds the quotes for trade mark. A PAIR=PRICE argument is a
// one-sided quote with bid and ask both at PRICE.
func markBoard(cmd *cobra.Command, args []string, d dashboard.Dashboard) (*market.QuoteBoard, error) {
	board := market.NewQuoteBoard()
	if tradeFlags.live {
		var symbols []string
		seen := map[string]bool{}
		for _, t := range d.OpenTrades() {
			if k := market.Key(t.Instrument); !seen[k] {
				seen[k] = true
				symbols = append(symbols, t.Instrument)
			}
		}
		if len(symbols) == 0 {
			return board, nil
		}
		client, err := oandaClient()
		if err != nil {
			return nil, err
		}
		quotes, err := client.Pricing(cmd.Context(), symbols)
		if err != nil {
			return nil, err
		}
		for _, q := range quotes {
			if err := board.Set(q); err != nil {
				return nil, err
			}
		}
	}

	prices, err := parseQuotes(args)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	for pair, p := range prices {
		if err := board.Set(market.Quote{Instrument: pair, Bid: p, Ask: p, Time: now}); err != nil {
			return nil, err
		}
	}
	return board, nil
}

func runTradeMark(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !tradeFlags.live {
		return fmt.Errorf("give PAIR=PRICE arguments or --live")
	}
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	u := user(tradeFlags.user)
	d, err := a.dashboards.Load(cmd.Context(), u)
	if err != nil {
		return err
	}
	board, err := markBoard(cmd, args, d)
	if err != nil {
		return err
	}
	m, err := a.dashboards.MarkToMarket(cmd.Context(), u, board)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	for _, t := range m.Closed {
		fmt.Fprintf(w, "closed %s\t%s\t%s at %s\t%+.2f USD\n", t.ID, t.Instrument, t.Status, fmtPrice(t.Outcome.ExitPrice), t.Outcome.PnL)
	}
	for _, p := range m.Open {
		price := "-"
		if p.Quote != nil {
			price = fmtPrice(p.Quote.Mid())
		}
		fmt.Fprintf(w, "open %s\t%s %s\t%s\t%+.2f USD\n", p.Trade.ID, p.Trade.Direction, p.Trade.Instrument, price, p.Unrealized)
	}
	fmt.Fprintf(w, "Unrealized:\t%+.2f USD\n", m.Unrealized)
	fmt.Fprintf(w, "Equity:\t%.2f USD\n", m.Equity)
	return w.Flush()
}

func fmtPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
