package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/misterpips/market"
	"github.com/rustyeddy/misterpips/oanda"
)

var quotesCmd = &cobra.Command{
	Use:   "quotes [symbol...]",
	Short: "Fetch current prices from OANDA",
	Long: `Fetch top-of-book prices from the OANDA v20 pricing endpoint. Without
arguments the symbols from quotes.symbols are used. Credentials come from
quotes.oanda_token and quotes.oanda_account or OANDA_TOKEN and OANDA_ACCOUNT.

Example:
  misterpips quotes EUR/USD USD/JPY`,
	RunE: runQuotes,
}

func init() {
	rootCmd.AddCommand(quotesCmd)
}

func oandaClient() (*oanda.Client, error) {
	q := cfg.Quotes
	if q.Token == "" || q.Account == "" {
		return nil, fmt.Errorf("oanda credentials missing: set OANDA_TOKEN and OANDA_ACCOUNT")
	}
	return oanda.NewClient(q.Token, q.Account, q.Practice), nil
}

func runQuotes(cmd *cobra.Command, args []string) error {
	symbols := args
	if len(symbols) == 0 {
		symbols = cfg.Quotes.Symbols
	}
	client, err := oandaClient()
	if err != nil {
		return err
	}
	quotes, err := client.Pricing(cmd.Context(), symbols)
	if err != nil {
		return err
	}

	board := market.NewQuoteBoard()
	for _, q := range quotes {
		if err := board.Set(q); err != nil {
			return err
		}
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PAIR\tBID\tASK\tMID\tSPREAD\tTIME")
	for _, q := range board.All() {
		spread, _ := q.SpreadPips()
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f\t%s\n", q.Instrument, fmtPrice(q.Bid), fmtPrice(q.Ask),
			fmtPrice(q.Mid()), spread, q.Time.Local().Format("15:04:05"))
	}
	return w.Flush()
}
