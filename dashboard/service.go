package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rustyeddy/misterpips/journal"
	"github.com/rustyeddy/misterpips/market"
	"github.com/rustyeddy/misterpips/risk"
	"github.com/rustyeddy/misterpips/store"
	"github.com/rustyeddy/misterpips/trade"
)

// Service applies user actions to dashboards. Every mutation is a single
// store.UpdateJSON on the user's document, so concurrent closures of
// different trades never overwrite each other.
type Service struct {
	store    store.Store
	journal  journal.Journal
	policy   risk.Policy
	defaults Settings
	now      func() time.Time
}

type Option func(*Service)

func WithPolicy(p risk.Policy) Option { return func(s *Service) { s.policy = p } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithDefaults sets the settings of dashboards created on first use.
func WithDefaults(d Settings) Option { return func(s *Service) { s.defaults = d } }

func NewService(st store.Store, j journal.Journal, opts ...Option) *Service {
	if j == nil {
		j = journal.Nop{}
	}
	s := &Service{
		store:    st,
		journal:  j,
		policy:   risk.DefaultPolicy(),
		defaults: DefaultSettings(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) fresh(user string) Dashboard {
	d := New(user)
	d.Settings = s.defaults
	if a, ok := d.Accounts[d.CurrentAccount]; ok {
		a.Capital = s.defaults.Capital
		d.Accounts[d.CurrentAccount] = a
	}
	return d
}

// Load returns the user's dashboard, or a fresh one that is not yet saved.
func (s *Service) Load(ctx context.Context, user string) (Dashboard, error) {
	p, err := path(user)
	if err != nil {
		return Dashboard{}, err
	}
	d, err := store.GetJSON[Dashboard](ctx, s.store, p)
	if errors.Is(err, store.ErrNotFound) {
		return s.fresh(user), nil
	}
	if err != nil {
		return Dashboard{}, err
	}
	return d, nil
}

// mutate runs fn on the stored dashboard inside one atomic update.
func (s *Service) mutate(ctx context.Context, user string, fn func(d *Dashboard) error) (Dashboard, error) {
	p, err := path(user)
	if err != nil {
		return Dashboard{}, err
	}
	return store.UpdateJSON(ctx, s.store, p, func(d *Dashboard, exists bool) error {
		if !exists {
			*d = s.fresh(user)
		}
		if d.Accounts == nil {
			d.Accounts = DefaultAccounts()
		}
		if err := fn(d); err != nil {
			return err
		}
		d.LastUpdated = s.now().UTC()
		return nil
	})
}

// OpenTrade validates spec, checks it against the risk policy and appends
// it. Violations are returned in the decision; they only block the trade
// when the policy is enforced.
func (s *Service) OpenTrade(ctx context.Context, user string, spec trade.Spec) (trade.Trade, risk.Decision, error) {
	var (
		opened   trade.Trade
		decision risk.Decision
	)
	_, err := s.mutate(ctx, user, func(d *Dashboard) error {
		now := s.now()
		t, err := trade.New(spec, now)
		if err != nil {
			return err
		}

		decision = risk.Evaluate(s.policy, risk.Intent{
			Instrument: t.Instrument,
			RiskPct:    d.Settings.RiskPerTrade,
			Entry:      t.Entry,
			Stop:       t.StopLoss,
			TakeProfit: t.TakeProfit,
		}, risk.Book{
			Capital:     d.Settings.Capital,
			OpenTrades:  len(d.OpenTrades()),
			DayRealized: DayRealized(*d, now),
		})
		if !decision.Allowed {
			if s.policy.Enforce {
				return fmt.Errorf("%w: %s", ErrPolicyRejected, decision.Codes())
			}
			log.Warn().Str("user", user).Str("instrument", t.Instrument).
				Str("violations", decision.Codes()).Msg("opening trade despite policy violations")
		}

		d.Trades = append(d.Trades, *t)
		opened = *t
		return nil
	})
	if err != nil {
		return trade.Trade{}, decision, err
	}

	log.Info().Str("user", user).Str("trade", opened.ID).Str("instrument", opened.Instrument).
		Str("direction", string(opened.Direction)).Float64("lots", opened.LotSize).Msg("trade opened")
	return opened, decision, nil
}

// PreviewClose computes a closure outcome without saving it.
func (s *Service) PreviewClose(ctx context.Context, user, id string, reason trade.Reason, exit float64) (trade.Outcome, error) {
	d, err := s.Load(ctx, user)
	if err != nil {
		return trade.Outcome{}, err
	}
	t, err := d.Find(id)
	if err != nil {
		return trade.Outcome{}, err
	}
	return t.Preview(reason, d.Settings.Account(), exit, s.now())
}

// CloseTrade closes an open trade and records it in the journal. exit is
// only used for manual closures.
func (s *Service) CloseTrade(ctx context.Context, user, id string, reason trade.Reason, exit float64) (trade.Trade, error) {
	var closed trade.Trade
	d, err := s.mutate(ctx, user, func(d *Dashboard) error {
		t, err := d.Find(id)
		if err != nil {
			return err
		}
		if _, err := t.Close(reason, d.Settings.Account(), exit, s.now()); err != nil {
			return err
		}
		closed = *t
		return nil
	})
	if err != nil {
		return trade.Trade{}, err
	}

	log.Info().Str("user", user).Str("trade", id).Str("reason", string(reason)).
		Float64("exit", closed.Outcome.ExitPrice).Float64("pnl", closed.Outcome.PnL).Msg("trade closed")

	s.record(user, &closed, d)
	return closed, nil
}

// ParseTradeDate reads an RFC 3339 timestamp or a bare YYYY-MM-DD day,
// which is taken as midnight in loc.
func ParseTradeDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q, want YYYY-MM-DD or RFC 3339", ErrInvalidDate, s)
	}
	return t, nil
}

// RecordPastTrade adds a trade taken outside the dashboard. It is opened
// and closed manually at exit on date at, so its P&L follows the same
// formula as any other closure, and it is journaled. No policy check runs
// on history.
func (s *Service) RecordPastTrade(ctx context.Context, user string, spec trade.Spec, at time.Time, exit float64) (trade.Trade, error) {
	if at.IsZero() || at.After(s.now()) {
		return trade.Trade{}, fmt.Errorf("%w: %s is not in the past", ErrInvalidDate, at.Format(time.RFC3339))
	}

	var recorded trade.Trade
	d, err := s.mutate(ctx, user, func(d *Dashboard) error {
		t, err := trade.New(spec, at)
		if err != nil {
			return err
		}
		if _, err := t.Close(trade.Manual, d.Settings.Account(), exit, at); err != nil {
			return err
		}
		d.Trades = append(d.Trades, *t)
		recorded = *t
		return nil
	})
	if err != nil {
		return trade.Trade{}, err
	}

	log.Info().Str("user", user).Str("trade", recorded.ID).Str("instrument", recorded.Instrument).
		Time("date", at).Float64("exit", exit).Float64("pnl", recorded.Outcome.PnL).Msg("past trade recorded")

	s.record(user, &recorded, d)
	return recorded, nil
}

// record writes the journal entries of a closure. The dashboard is already
// saved, so failures are logged rather than returned.
func (s *Service) record(user string, t *trade.Trade, d Dashboard) {
	rec, err := journal.FromTrade(user, t)
	if err == nil {
		err = s.journal.RecordTrade(rec)
	}
	if err != nil {
		log.Error().Err(err).Str("user", user).Str("trade", t.ID).Msg("journal trade")
	}

	st := ComputeStats(d, s.now())
	err = s.journal.RecordEquity(journal.EquitySnapshot{
		Time:       t.Outcome.ClosedAt,
		User:       user,
		Capital:    st.InitialCapital.InexactFloat64(),
		Equity:     st.CurrentCapital.InexactFloat64(),
		RealizedPL: st.TotalPnL.InexactFloat64(),
		OpenTrades: st.OpenTrades,
	})
	if err != nil {
		log.Error().Err(err).Str("user", user).Msg("journal equity")
	}
}

// DeleteTrade removes an open trade. Closed trades stay in the history.
func (s *Service) DeleteTrade(ctx context.Context, user, id string) error {
	_, err := s.mutate(ctx, user, func(d *Dashboard) error {
		t, err := d.Find(id)
		if err != nil {
			return err
		}
		if err := t.Delete(); err != nil {
			return err
		}
		d.remove(id)
		return nil
	})
	if err != nil {
		return err
	}
	log.Info().Str("user", user).Str("trade", id).Msg("trade deleted")
	return nil
}

func (s *Service) UpdateSettings(ctx context.Context, user string, st Settings) (Dashboard, error) {
	if err := st.Validate(); err != nil {
		return Dashboard{}, err
	}
	return s.mutate(ctx, user, func(d *Dashboard) error {
		d.Settings = st
		return nil
	})
}

// SwitchAccount makes account current and adopts its capital.
func (s *Service) SwitchAccount(ctx context.Context, user, account string) (Dashboard, error) {
	return s.mutate(ctx, user, func(d *Dashboard) error {
		a, ok := d.Accounts[account]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownAccount, account)
		}
		d.CurrentAccount = account
		d.Settings.Capital = a.Capital
		return nil
	})
}

// AddAccount creates or replaces an account.
func (s *Service) AddAccount(ctx context.Context, user, account, name string, capital float64) (Dashboard, error) {
	if account == "" {
		return Dashboard{}, fmt.Errorf("%w: empty id", ErrUnknownAccount)
	}
	if err := market.Positive("capital", capital); err != nil {
		return Dashboard{}, err
	}
	return s.mutate(ctx, user, func(d *Dashboard) error {
		d.Accounts[account] = Account{Name: name, Capital: capital}
		return nil
	})
}

func (s *Service) Stats(ctx context.Context, user string) (Stats, error) {
	d, err := s.Load(ctx, user)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(d, s.now()), nil
}

// Watch streams the dashboard now and after every change until ctx ends.
func (s *Service) Watch(ctx context.Context, user string) (<-chan Dashboard, error) {
	p, err := path(user)
	if err != nil {
		return nil, err
	}
	raw, err := s.store.Subscribe(ctx, p)
	if err != nil {
		return nil, err
	}

	out := make(chan Dashboard)
	go func() {
		defer close(out)
		for b := range raw {
			d := s.fresh(user)
			if b != nil {
				d = Dashboard{}
				if err := json.Unmarshal(b, &d); err != nil {
					log.Warn().Err(err).Str("user", user).Msg("skipping undecodable dashboard")
					continue
				}
			}
			select {
			case out <- d:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// ExportCSV writes every trade in the spreadsheet layout.
func (s *Service) ExportCSV(ctx context.Context, user string, w io.Writer) error {
	d, err := s.Load(ctx, user)
	if err != nil {
		return err
	}
	return journal.WriteTradesCSV(w, d.Trades)
}
