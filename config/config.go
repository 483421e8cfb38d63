package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/misterpips/dashboard"
	"github.com/rustyeddy/misterpips/journal"
	"github.com/rustyeddy/misterpips/market"
	"github.com/rustyeddy/misterpips/risk"
	"github.com/rustyeddy/misterpips/store"
)

// Config represents the complete misterpips configuration
type Config struct {
	Account AccountConfig `json:"account" yaml:"account"`
	Plan    PlanConfig    `json:"plan" yaml:"plan"`
	Policy  risk.Policy   `json:"policy" yaml:"policy"`
	Store   StoreConfig   `json:"store" yaml:"store"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	Quotes  QuotesConfig  `json:"quotes" yaml:"quotes"`
	Server  ServerConfig  `json:"server" yaml:"server"`
	Log     LogConfig     `json:"log" yaml:"log"`
}

// AccountConfig names the default user and the capital baseline new
// dashboards start with
type AccountConfig struct {
	User         string  `json:"user" yaml:"user"`
	Capital      float64 `json:"capital" yaml:"capital"`
	RiskPerTrade float64 `json:"risk_per_trade" yaml:"risk_per_trade"` // percent
}

// PlanConfig holds trading-plan targets as percent of capital
type PlanConfig struct {
	Daily   float64 `json:"daily" yaml:"daily"`
	Weekly  float64 `json:"weekly" yaml:"weekly"`
	Monthly float64 `json:"monthly" yaml:"monthly"`
	Yearly  float64 `json:"yearly" yaml:"yearly"`
}

// StoreConfig selects the document store backend
type StoreConfig struct {
	Type          string `json:"type" yaml:"type"` // "memory", "file" or "redis"
	Dir           string `json:"dir,omitempty" yaml:"dir,omitempty"`
	RedisAddr     string `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty"`
	RedisPassword string `json:"redis_password,omitempty" yaml:"redis_password,omitempty"`
	RedisDB       int    `json:"redis_db,omitempty" yaml:"redis_db,omitempty"`
	Prefix        string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// QuotesConfig selects where live prices come from. With source "none"
// quotes are only what clients push.
type QuotesConfig struct {
	Source   string        `json:"source" yaml:"source"` // "none" or "oanda"
	Token    string        `json:"oanda_token,omitempty" yaml:"oanda_token,omitempty"`
	Account  string        `json:"oanda_account,omitempty" yaml:"oanda_account,omitempty"`
	Practice bool          `json:"oanda_practice" yaml:"oanda_practice"`
	Symbols  []string      `json:"symbols,omitempty" yaml:"symbols,omitempty"`
	Interval time.Duration `json:"interval" yaml:"interval"`
}

type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
	Mode string `json:"mode" yaml:"mode"` // gin mode: debug, release or test
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
	File  string `json:"file,omitempty" yaml:"file,omitempty"`
}

// LoadFromFile loads configuration from a file (YAML or JSON), applies
// environment overrides and validates the result
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Load reads path when it is set, otherwise starts from Default. A .env
// file in the working directory is loaded into the environment first
// when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path != "" {
		return LoadFromFile(path)
	}
	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides file settings with MISTERPIPS_* variables and the
// REDIS_* and OANDA_* credentials.
func (c *Config) ApplyEnv() error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *float64) error {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			return nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = f
		return nil
	}

	str("MISTERPIPS_USER", &c.Account.User)
	if err := num("MISTERPIPS_CAPITAL", &c.Account.Capital); err != nil {
		return err
	}
	if err := num("MISTERPIPS_RISK_PER_TRADE", &c.Account.RiskPerTrade); err != nil {
		return err
	}
	str("MISTERPIPS_STORE", &c.Store.Type)
	str("MISTERPIPS_STORE_DIR", &c.Store.Dir)
	str("REDIS_ADDR", &c.Store.RedisAddr)
	str("REDIS_PASSWORD", &c.Store.RedisPassword)
	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
		c.Store.RedisDB = db
	}
	str("MISTERPIPS_JOURNAL", &c.Journal.Type)
	str("MISTERPIPS_JOURNAL_DB", &c.Journal.DBPath)
	str("MISTERPIPS_QUOTES", &c.Quotes.Source)
	str("OANDA_TOKEN", &c.Quotes.Token)
	str("OANDA_ACCOUNT", &c.Quotes.Account)
	str("MISTERPIPS_ADDR", &c.Server.Addr)
	str("GIN_MODE", &c.Server.Mode)
	str("MISTERPIPS_LOG_LEVEL", &c.Log.Level)
	str("MISTERPIPS_LOG_FILE", &c.Log.File)
	return nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Account.User) == "" || strings.ContainsAny(c.Account.User, "/\\") {
		return fmt.Errorf("account.user is required and must not contain slashes")
	}
	if err := c.Settings().Validate(); err != nil {
		return fmt.Errorf("account/plan: %w", err)
	}
	if c.Policy.MaxRiskPct < 0 || c.Policy.MinRR < 0 || c.Policy.MaxOpenTrades < 0 || c.Policy.MaxDailyLossPct < 0 {
		return fmt.Errorf("policy limits must not be negative")
	}

	switch c.Store.Type {
	case "memory":
	case "file":
		if c.Store.Dir == "" {
			return fmt.Errorf("store.dir required for file type")
		}
	case "redis":
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("store.redis_addr required for redis type")
		}
	default:
		return fmt.Errorf("store.type must be 'memory', 'file' or 'redis'")
	}

	switch c.Journal.Type {
	case "none":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}

	switch c.Quotes.Source {
	case "none":
	case "oanda":
		if c.Quotes.Token == "" || c.Quotes.Account == "" {
			return fmt.Errorf("quotes oanda_token and oanda_account required for oanda source")
		}
		if len(c.Quotes.Symbols) == 0 {
			return fmt.Errorf("quotes.symbols required for oanda source")
		}
		for _, s := range c.Quotes.Symbols {
			if _, err := market.Lookup(s); err != nil {
				return fmt.Errorf("quotes.symbols: %w", err)
			}
		}
		if c.Quotes.Interval <= 0 {
			return fmt.Errorf("quotes.interval must be positive")
		}
	default:
		return fmt.Errorf("quotes.source must be 'none' or 'oanda'")
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be 'debug', 'release' or 'test'")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	return nil
}

// Settings are the defaults a new dashboard starts with.
func (c *Config) Settings() dashboard.Settings {
	return dashboard.Settings{
		Capital:       c.Account.Capital,
		RiskPerTrade:  c.Account.RiskPerTrade,
		DailyTarget:   c.Plan.Daily,
		WeeklyTarget:  c.Plan.Weekly,
		MonthlyTarget: c.Plan.Monthly,
		YearlyTarget:  c.Plan.Yearly,
	}
}

func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Type: c.Store.Type,
		Dir:  c.Store.Dir,
		Redis: store.RedisOptions{
			Addr:     c.Store.RedisAddr,
			Password: c.Store.RedisPassword,
			DB:       c.Store.RedisDB,
			Prefix:   c.Store.Prefix,
		},
	}
}

func (c *Config) JournalOptions() journal.Options {
	return journal.Options{
		Type:       c.Journal.Type,
		TradesFile: c.Journal.TradesFile,
		EquityFile: c.Journal.EquityFile,
		DBPath:     c.Journal.DBPath,
	}
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	st := dashboard.DefaultSettings()
	return &Config{
		Account: AccountConfig{
			User:         "default",
			Capital:      st.Capital,
			RiskPerTrade: st.RiskPerTrade,
		},
		Plan: PlanConfig{
			Daily:   st.DailyTarget,
			Weekly:  st.WeeklyTarget,
			Monthly: st.MonthlyTarget,
			Yearly:  st.YearlyTarget,
		},
		Policy: risk.DefaultPolicy(),
		Store: StoreConfig{
			Type: "file",
			Dir:  "./data",
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./misterpips.db",
		},
		Quotes: QuotesConfig{
			Source:   "none",
			Practice: true,
			Symbols:  []string{"EUR/USD", "GBP/USD", "USD/JPY"},
			Interval: 5 * time.Second,
		},
		Server: ServerConfig{
			Addr: ":8080",
			Mode: "release",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
