package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/misterpips/market"
	"github.com/rustyeddy/misterpips/risk"
	"github.com/rustyeddy/misterpips/trade"
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Trade economics calculators",
	Long: `Stateless calculators for planning and reviewing trades.

Subcommands:
  pnl       - P&L of a position closed at a given price
  position  - Lot size for a risk budget and stop
  pipvalue  - USD value of a number of pips
  risk      - Aggregate risk of several open trades
  swap      - Overnight financing estimate

Examples:
  misterpips calc pnl --pair EUR/USD --dir buy --entry 1.1 --sl 1.099 --tp 1.102 --lots 0.1 --exit 1.102
  misterpips calc position --pair USD/JPY --capital 10000 --risk 1 --entry 150 --sl 149.5
  misterpips calc swap --pair USDJPY --dir short --lots 1 --nights 7`,
}

var calcFlags struct {
	pair        string
	dir         string
	entry       float64
	sl          float64
	tp          float64
	lots        float64
	exit        float64
	capital     float64
	risk        float64
	pips        float64
	avgRisk     float64
	trades      int
	correlation string
	nights      int
}

var calcPnLCmd = &cobra.Command{
	Use:   "pnl",
	Short: "P&L of a position closed at --exit",
	Args:  cobra.NoArgs,
	RunE:  runCalcPnL,
}

var calcPositionCmd = &cobra.Command{
	Use:   "position",
	Short: "Lot size for a risk budget and stop",
	Args:  cobra.NoArgs,
	RunE:  runCalcPosition,
}

var calcPipValueCmd = &cobra.Command{
	Use:   "pipvalue",
	Short: "USD value of --pips on --lots",
	Args:  cobra.NoArgs,
	RunE:  runCalcPipValue,
}

var calcRiskCmd = &cobra.Command{
	Use:   "risk",
	Short: "Aggregate risk of open trades",
	Args:  cobra.NoArgs,
	RunE:  runCalcRisk,
}

var calcSwapCmd = &cobra.Command{
	Use:   "swap",
	Short: "Overnight swap estimate",
	Args:  cobra.NoArgs,
	RunE:  runCalcSwap,
}

func init() {
	rootCmd.AddCommand(calcCmd)
	calcCmd.AddCommand(calcPnLCmd, calcPositionCmd, calcPipValueCmd, calcRiskCmd, calcSwapCmd)

	for _, c := range []*cobra.Command{calcPnLCmd, calcPositionCmd, calcPipValueCmd, calcSwapCmd} {
		c.Flags().StringVarP(&calcFlags.pair, "pair", "p", "EUR/USD", "instrument, e.g. EUR/USD, USDJPY, xau_usd")
	}
	for _, c := range []*cobra.Command{calcPnLCmd, calcSwapCmd} {
		c.Flags().StringVar(&calcFlags.dir, "dir", "buy", "buy/sell (long/short accepted)")
	}
	for _, c := range []*cobra.Command{calcPnLCmd, calcPositionCmd} {
		c.Flags().Float64Var(&calcFlags.entry, "entry", 0, "entry price")
		c.Flags().Float64Var(&calcFlags.sl, "sl", 0, "stop-loss price")
	}
	for _, c := range []*cobra.Command{calcPnLCmd, calcPositionCmd, calcRiskCmd} {
		c.Flags().Float64Var(&calcFlags.capital, "capital", 0, "account capital in USD (default account.capital)")
	}
	for _, c := range []*cobra.Command{calcPnLCmd, calcPositionCmd} {
		c.Flags().Float64Var(&calcFlags.risk, "risk", 0, "risk per trade in percent (default account.risk_per_trade)")
	}
	for _, c := range []*cobra.Command{calcPnLCmd, calcPipValueCmd, calcSwapCmd} {
		c.Flags().Float64Var(&calcFlags.lots, "lots", 0.1, "position size in lots")
	}

	calcPnLCmd.Flags().Float64Var(&calcFlags.tp, "tp", 0, "take-profit price")
	calcPnLCmd.Flags().Float64Var(&calcFlags.exit, "exit", 0, "exit price")
	calcPipValueCmd.Flags().Float64Var(&calcFlags.pips, "pips", 10, "number of pips")
	calcRiskCmd.Flags().IntVar(&calcFlags.trades, "trades", 1, "number of open trades")
	calcRiskCmd.Flags().Float64Var(&calcFlags.avgRisk, "avg-risk", 2, "average risk per trade in percent")
	calcRiskCmd.Flags().StringVar(&calcFlags.correlation, "correlation", "low", "low, medium or high")
	calcSwapCmd.Flags().IntVar(&calcFlags.nights, "nights", 1, "nights held")
}

// accountFlags fills --capital and --risk from the config when unset.
func accountFlags(cmd *cobra.Command) (capital, riskPct float64) {
	capital, riskPct = calcFlags.capital, calcFlags.risk
	if !cmd.Flags().Changed("capital") {
		capital = cfg.Account.Capital
	}
	if f := cmd.Flags().Lookup("risk"); f != nil && !f.Changed {
		riskPct = cfg.Account.RiskPerTrade
	}
	return capital, riskPct
}

func runCalcPnL(cmd *cobra.Command, args []string) error {
	dir, err := market.ParseDirection(calcFlags.dir)
	if err != nil {
		return err
	}
	capital, riskPct := accountFlags(cmd)
	spec := trade.Spec{
		Instrument: calcFlags.pair,
		Direction:  dir,
		Entry:      calcFlags.entry,
		StopLoss:   calcFlags.sl,
		TakeProfit: calcFlags.tp,
		LotSize:    calcFlags.lots,
	}
	b, err := trade.Calculate(spec, trade.Account{Capital: capital, RiskPerTrade: riskPct}, calcFlags.exit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Risk amount:\t$%.2f\n", b.RiskAmount)
	fmt.Fprintf(w, "SL distance:\t%.1f pips\n", b.SLDistance)
	fmt.Fprintf(w, "Value per pip:\t$%.4f\n", b.ValuePerPip)
	fmt.Fprintf(w, "Exit distance:\t%.1f pips\n", b.ExitDistance)
	fmt.Fprintf(w, "P&L:\t%+.2f USD\n", b.PnL)
	if b.Degenerate {
		fmt.Fprintln(w, "Warning:\tstop-loss equals entry, value per pip fell back to 1")
	}
	return w.Flush()
}

func runCalcPosition(cmd *cobra.Command, args []string) error {
	capital, riskPct := accountFlags(cmd)
	s, err := risk.SizePosition(risk.SizingInput{
		Capital:    capital,
		RiskPct:    riskPct,
		EntryPrice: calcFlags.entry,
		StopPrice:  calcFlags.sl,
		Instrument: calcFlags.pair,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Instrument:\t%s (%s)\n", s.Instrument, s.Class)
	fmt.Fprintf(w, "Risk amount:\t$%.2f\n", s.RiskAmount)
	fmt.Fprintf(w, "Stop:\t%.1f pips\n", s.StopPips)
	fmt.Fprintf(w, "Lots:\t%.2f\n", s.Lots)
	fmt.Fprintf(w, "Pip value:\t$%.2f\n", s.PipValue)
	fmt.Fprintf(w, "Margin:\t$%.2f\n", s.Margin)
	fmt.Fprintf(w, "Leverage:\t%.1f:1\n", s.Leverage)
	return w.Flush()
}

func runCalcPipValue(cmd *cobra.Command, args []string) error {
	v, err := risk.PipValue(calcFlags.lots, calcFlags.pips, calcFlags.pair)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Per pip:\t$%.2f\n", v.PerPip)
	fmt.Fprintf(w, "Total:\t$%.2f\n", v.Total)
	fmt.Fprintf(w, "Price move:\t%.5f\n", v.PriceMove)
	fmt.Fprintf(w, "Percent move:\t%.2f%%\n", v.PercentMove)
	return w.Flush()
}

func runCalcRisk(cmd *cobra.Command, args []string) error {
	corr, err := risk.ParseCorrelation(calcFlags.correlation)
	if err != nil {
		return err
	}
	capital := calcFlags.capital
	if !cmd.Flags().Changed("capital") {
		capital = cfg.Account.Capital
	}
	e, err := risk.AggregateRisk(capital, calcFlags.trades, calcFlags.avgRisk, corr)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Total risk:\t%.2f%%\n", e.TotalRiskPct)
	fmt.Fprintf(w, "Adjusted risk:\t%.2f%% (x%.1f)\n", e.AdjustedPct, e.Multiplier)
	fmt.Fprintf(w, "Amount at risk:\t$%.2f\n", e.Amount)
	fmt.Fprintf(w, "Level:\t%s\n", e.Level)
	fmt.Fprintf(w, "Recommendation:\t%s\n", e.Recommendation)
	return w.Flush()
}

func runCalcSwap(cmd *cobra.Command, args []string) error {
	dir, err := market.ParseDirection(calcFlags.dir)
	if err != nil {
		return err
	}
	s, err := risk.EstimateSwap(calcFlags.pair, dir, calcFlags.lots, calcFlags.nights)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Annual rate:\t%+.2f%%\n", s.AnnualPct)
	fmt.Fprintf(w, "Per night:\t%+.2f USD\n", s.Nightly)
	fmt.Fprintf(w, "Total (%d nights):\t%+.2f USD\n", s.Nights, s.Total)
	fmt.Fprintf(w, "Impact:\t%+.4f%%\n", s.ImpactPct)
	return w.Flush()
}
