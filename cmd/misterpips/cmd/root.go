package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/rustyeddy/misterpips/config"
)

var rootCmd = &cobra.Command{
	Use:   "misterpips",
	Short: "Forex trade economics calculator and trading journal",
	Long: `Misterpips computes pip distances, position P&L and trade planning
figures for the major forex pairs and gold, and keeps a trading journal.

It provides tools for:
  - Profit and loss of a position closed at TP, SL, break-even or a manual price
  - Position sizing, pip values, aggregate risk and swap estimates
  - A per-user dashboard of trades with statistics and plan progress
  - Price alerts
  - A JSON HTTP API with a live websocket feed`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var (
	cfgFile  string
	logLevel string

	// cfg is loaded once by setup before any command runs.
	cfg *config.Config
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON); defaults apply when empty")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides log.level)")
}

func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	if err := setupLogging(c.Log, cmd.ErrOrStderr()); err != nil {
		return err
	}
	cfg = c
	log.Debug().Str("config", cfgFile).Str("user", cfg.Account.User).Msg("configuration loaded")
	return nil
}

// setupLogging points the global logger at stderr and, when configured,
// a rotated JSON log file.
func setupLogging(lc config.LogConfig, stderr io.Writer) error {
	lvl, err := zerolog.ParseLevel(lc.Level)
	if err != nil || lc.Level == "" {
		return fmt.Errorf("log level %q: must be debug, info, warn or error", lc.Level)
	}
	zerolog.SetGlobalLevel(lvl)

	var w io.Writer = zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.Kitchen}
	if lc.File != "" {
		w = zerolog.MultiLevelWriter(w, &lumberjack.Logger{
			Filename:   lc.File,
			MaxSize:    10, // MB
			MaxBackups: 10,
			MaxAge:     30, // days
			Compress:   true,
		})
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	return nil
}
