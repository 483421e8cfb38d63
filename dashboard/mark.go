package dashboard

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/rustyeddy/misterpips/market"
	"github.com/rustyeddy/misterpips/trade"
)

// Quoter supplies the latest quote of an instrument. *market.QuoteBoard
// implements it.
type Quoter interface {
	Get(symbol string) (market.Quote, error)
}

// Position is an open trade valued at its latest quote. Quote is nil when
// the instrument has none.
type Position struct {
	Trade      trade.Trade   `json:"trade"`
	Quote      *market.Quote `json:"quote,omitempty"`
	Unrealized float64       `json:"unrealized"`
}

type Mark struct {
	Closed     []trade.Trade `json:"closed"`
	Open       []Position    `json:"open"`
	Unrealized float64       `json:"unrealized"`
	Equity     float64       `json:"equity"` // current capital plus unrealized
}

// MarkToMarket closes every open trade whose stop-loss or take-profit the
// quotes reach, at that level, and values the remaining open trades.
func (s *Service) MarkToMarket(ctx context.Context, user string, quotes Quoter) (Mark, error) {
	d, err := s.Load(ctx, user)
	if err != nil {
		return Mark{}, err
	}

	if anyTriggered(d, quotes) {
		var closed []trade.Trade
		d, err = s.mutate(ctx, user, func(d *Dashboard) error {
			closed = closed[:0]
			now := s.now()
			for i := range d.Trades {
				t := &d.Trades[i]
				q, err := quotes.Get(t.Instrument)
				if err != nil {
					continue
				}
				reason, hit := t.Triggered(q)
				if !hit {
					continue
				}
				if _, err := t.Close(reason, d.Settings.Account(), 0, now); err != nil {
					return err
				}
				closed = append(closed, *t)
			}
			return nil
		})
		if err != nil {
			return Mark{}, err
		}
		for i := range closed {
			t := &closed[i]
			log.Info().Str("user", user).Str("trade", t.ID).Str("reason", string(t.Outcome.Reason)).
				Float64("pnl", t.Outcome.PnL).Msg("trade closed by quote")
			s.record(user, t, d)
		}
		return s.value(d, closed, quotes), nil
	}
	return s.value(d, nil, quotes), nil
}

func anyTriggered(d Dashboard, quotes Quoter) bool {
	for i := range d.Trades {
		q, err := quotes.Get(d.Trades[i].Instrument)
		if err != nil {
			continue
		}
		if _, hit := d.Trades[i].Triggered(q); hit {
			return true
		}
	}
	return false
}

func (s *Service) value(d Dashboard, closed []trade.Trade, quotes Quoter) Mark {
	m := Mark{Closed: closed, Open: []Position{}}
	if m.Closed == nil {
		m.Closed = []trade.Trade{}
	}
	acct := d.Settings.Account()
	for _, t := range d.OpenTrades() {
		p := Position{Trade: t}
		if q, err := quotes.Get(t.Instrument); err == nil {
			p.Quote = &q
			if u, err := t.Unrealized(acct, q); err == nil {
				p.Unrealized = u
				m.Unrealized += u
			}
		}
		m.Open = append(m.Open, p)
	}
	st := ComputeStats(d, s.now())
	m.Equity = st.CurrentCapital.InexactFloat64() + m.Unrealized
	return m
}
