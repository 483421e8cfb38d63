package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/misterpips/alert"
)

var alertCmd = &cobra.Command{
	Use:   "alert",
	Short: "Manage price alerts",
	Long: `Price alerts fire once when a quote crosses a level.

Subcommands:
  add     - Create an alert
  list    - List alerts
  remove  - Delete an alert
  check   - Feed quotes and report alerts that fired

Examples:
  misterpips alert add --pair EUR/USD --condition above --price 1.1
  misterpips alert check EUR/USD=1.0995
  misterpips alert check EUR/USD=1.1004 USDJPY=149.2`,
}

var alertFlags struct {
	user      string
	pair      string
	condition string
	price     float64
	message   string
}

var alertAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create an alert",
	Args:  cobra.NoArgs,
	RunE:  runAlertAdd,
}

var alertListCmd = &cobra.Command{
	Use:   "list",
	Short: "List alerts",
	Args:  cobra.NoArgs,
	RunE:  runAlertList,
}

var alertRemoveCmd = &cobra.Command{
	Use:   "remove <alert-id>",
	Short: "Delete an alert",
	Args:  cobra.ExactArgs(1),
	RunE:  runAlertRemove,
}

var alertCheckCmd = &cobra.Command{
	Use:   "check <PAIR=PRICE>...",
	Short: "Feed quotes to the alerts",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAlertCheck,
}

func init() {
	rootCmd.AddCommand(alertCmd)
	alertCmd.AddCommand(alertAddCmd, alertListCmd, alertRemoveCmd, alertCheckCmd)

	alertCmd.PersistentFlags().StringVarP(&alertFlags.user, "user", "u", "", "alert owner (default account.user)")
	alertAddCmd.Flags().StringVarP(&alertFlags.pair, "pair", "p", "EUR/USD", "instrument")
	alertAddCmd.Flags().StringVar(&alertFlags.condition, "condition", "above", "above, below or equals")
	alertAddCmd.Flags().Float64Var(&alertFlags.price, "price", 0, "alert level")
	alertAddCmd.Flags().StringVarP(&alertFlags.message, "message", "m", "", "note shown when the alert fires")
}

func runAlertAdd(cmd *cobra.Command, args []string) error {
	cond, err := alert.ParseCondition(alertFlags.condition)
	if err != nil {
		return err
	}
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	al, err := a.alerts.Add(cmd.Context(), user(alertFlags.user), alert.Alert{
		Pair:      alertFlags.pair,
		Condition: cond,
		Price:     alertFlags.price,
		Message:   alertFlags.message,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "added %s: %s %s %s\n", al.ID, al.Pair, al.Condition, fmtPrice(al.Price))
	return nil
}

func runAlertList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	list, err := a.alerts.List(cmd.Context(), user(alertFlags.user))
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPAIR\tCONDITION\tPRICE\tACTIVE\tMESSAGE")
	for _, al := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\t%s\n", al.ID, al.Pair, al.Condition, fmtPrice(al.Price), al.Active, al.Message)
	}
	return w.Flush()
}

func runAlertRemove(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.alerts.Remove(cmd.Context(), user(alertFlags.user), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
	return nil
}

// parseQuotes reads PAIR=PRICE arguments.
func parseQuotes(args []string) (map[string]float64, error) {
	quotes := make(map[string]float64, len(args))
	for _, arg := range args {
		pair, px, ok := strings.Cut(arg, "=")
		if !ok || pair == "" {
			return nil, fmt.Errorf("quote %q: want PAIR=PRICE", arg)
		}
		v, err := strconv.ParseFloat(px, 64)
		if err != nil {
			return nil, fmt.Errorf("quote %q: %w", arg, err)
		}
		quotes[pair] = v
	}
	return quotes, nil
}

func runAlertCheck(cmd *cobra.Command, args []string) error {
	quotes, err := parseQuotes(args)
	if err != nil {
		return err
	}
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	fired, err := a.alerts.Evaluate(cmd.Context(), user(alertFlags.user), quotes)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(fired) == 0 {
		fmt.Fprintln(out, "no alerts triggered")
		return nil
	}
	for _, t := range fired {
		fmt.Fprintf(out, "TRIGGERED %s: %s %s %s (quote %s) %s\n",
			t.Alert.ID, t.Alert.Pair, t.Alert.Condition, fmtPrice(t.Alert.Price), fmtPrice(t.Quote), t.Alert.Message)
	}
	return nil
}
