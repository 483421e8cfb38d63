// Package dashboard holds a user's trading journal state: trades, settings
// and accounts. All of it lives in one document at dashboards/{user}.
package dashboard

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rustyeddy/misterpips/market"
	"github.com/rustyeddy/misterpips/store"
	"github.com/rustyeddy/misterpips/trade"
)

var (
	ErrInvalidUser    = errors.New("invalid user")
	ErrUnknownAccount = errors.New("unknown account")
	ErrPolicyRejected = errors.New("trade rejected by risk policy")
	ErrInvalidDate    = errors.New("invalid trade date")
)

// Settings are percentages of capital except Capital itself.
type Settings struct {
	Capital       float64 `json:"capital" yaml:"capital"`
	RiskPerTrade  float64 `json:"riskPerTrade" yaml:"risk_per_trade"`
	DailyTarget   float64 `json:"dailyTarget" yaml:"daily_target"`
	WeeklyTarget  float64 `json:"weeklyTarget" yaml:"weekly_target"`
	MonthlyTarget float64 `json:"monthlyTarget" yaml:"monthly_target"`
	YearlyTarget  float64 `json:"yearlyTarget" yaml:"yearly_target"`
}

func DefaultSettings() Settings {
	return Settings{
		Capital:       1000,
		RiskPerTrade:  2,
		DailyTarget:   1,
		WeeklyTarget:  3,
		MonthlyTarget: 15,
		YearlyTarget:  200,
	}
}

func (s Settings) Validate() error {
	if err := s.Account().Validate(); err != nil {
		return err
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"daily_target", s.DailyTarget},
		{"weekly_target", s.WeeklyTarget},
		{"monthly_target", s.MonthlyTarget},
		{"yearly_target", s.YearlyTarget},
	} {
		if f.v < 0 || math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return &market.InputError{Field: f.name, Value: f.v}
		}
	}
	return nil
}

// Account is the P&L valuation baseline these settings describe.
func (s Settings) Account() trade.Account {
	return trade.Account{Capital: s.Capital, RiskPerTrade: s.RiskPerTrade}
}

type Account struct {
	Name    string  `json:"name"`
	Capital float64 `json:"capital"`
}

func DefaultAccounts() map[string]Account {
	return map[string]Account{
		"compte1": {Name: "Main account", Capital: 1000},
		"compte2": {Name: "Demo account", Capital: 500},
		"compte3": {Name: "Swing account", Capital: 2000},
	}
}

type Dashboard struct {
	User           string             `json:"user"`
	Trades         []trade.Trade      `json:"trades"`
	Settings       Settings           `json:"settings"`
	Accounts       map[string]Account `json:"accounts"`
	CurrentAccount string             `json:"currentAccount"`
	LastUpdated    time.Time          `json:"lastUpdated"`
}

// New returns a dashboard with default settings and accounts.
func New(user string) Dashboard {
	return Dashboard{
		User:           user,
		Trades:         []trade.Trade{},
		Settings:       DefaultSettings(),
		Accounts:       DefaultAccounts(),
		CurrentAccount: "compte1",
	}
}

// Find returns a pointer into d.Trades.
func (d *Dashboard) Find(id string) (*trade.Trade, error) {
	for i := range d.Trades {
		if d.Trades[i].ID == id {
			return &d.Trades[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", trade.ErrTradeNotFound, id)
}

func (d *Dashboard) remove(id string) {
	out := d.Trades[:0]
	for _, t := range d.Trades {
		if t.ID != id {
			out = append(out, t)
		}
	}
	d.Trades = out
}

// InitialCapital is the current account's capital, falling back to the
// settings when the account is unknown.
func (d *Dashboard) InitialCapital() float64 {
	if a, ok := d.Accounts[d.CurrentAccount]; ok && a.Capital > 0 {
		return a.Capital
	}
	return d.Settings.Capital
}

// OpenTrades lists trades still OPEN.
func (d *Dashboard) OpenTrades() []trade.Trade {
	var out []trade.Trade
	for _, t := range d.Trades {
		if t.Status == trade.Open {
			out = append(out, t)
		}
	}
	return out
}

func path(user string) (string, error) {
	if strings.TrimSpace(user) == "" || strings.ContainsAny(user, "/\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidUser, user)
	}
	return store.Path("dashboards", user), nil
}
