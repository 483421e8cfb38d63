package cmd

import (
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/misterpips/api"
	"github.com/rustyeddy/misterpips/market"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve the calculators, dashboards and alerts as a JSON API, with a
websocket feed of dashboard changes at /api/v1/dashboards/{user}/ws.
With quotes.source set to oanda the quote board is refreshed from OANDA
every quotes.interval.

Example:
  misterpips --config misterpips.yaml serve --addr :8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	board := market.NewQuoteBoard()
	if cfg.Quotes.Source == "oanda" {
		client, err := oandaClient()
		if err != nil {
			return err
		}
		go func() {
			log.Info().Strs("symbols", cfg.Quotes.Symbols).Dur("interval", cfg.Quotes.Interval).Msg("polling oanda prices")
			if err := client.Poll(ctx, board, cfg.Quotes.Symbols, cfg.Quotes.Interval); err != nil {
				log.Error().Err(err).Msg("oanda poller stopped")
			}
		}()
	}

	gin.SetMode(cfg.Server.Mode)
	return api.New(a.dashboards, a.alerts, board, version).Run(ctx, addr)
}
