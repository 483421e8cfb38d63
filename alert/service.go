package alert

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rustyeddy/misterpips/market"
	"github.com/rustyeddy/misterpips/pkg/id"
	"github.com/rustyeddy/misterpips/store"
)

// Trigger is an alert that fired and the quote that fired it.
type Trigger struct {
	Alert Alert   `json:"alert"`
	Quote float64 `json:"quote"`
}

// Service keeps a user's alerts as a map under alerts/{user}.
type Service struct {
	store store.Store
	now   func() time.Time
}

func NewService(st store.Store, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: st, now: now}
}

type book = map[string]Alert

var errNoAlerts = errors.New("no alerts")

func path(user string) (string, error) {
	if strings.TrimSpace(user) == "" || strings.ContainsAny(user, "/\\") {
		return "", fmt.Errorf("%w: user %q", store.ErrInvalidPath, user)
	}
	return store.Path("alerts", user), nil
}

// Add stores a new active alert and returns it with its id.
func (s *Service) Add(ctx context.Context, user string, a Alert) (Alert, error) {
	if err := a.Validate(); err != nil {
		return Alert{}, err
	}
	p, err := path(user)
	if err != nil {
		return Alert{}, err
	}

	inst, _ := market.Lookup(a.Pair)
	a.Pair = inst.Symbol
	a.ID = id.New()
	a.Active = true
	a.LastPrice = nil
	a.TriggeredAt = nil
	a.CreatedAt = s.now().UTC()

	_, err = store.UpdateJSON(ctx, s.store, p, func(b *book, _ bool) error {
		if *b == nil {
			*b = book{}
		}
		(*b)[a.ID] = a
		return nil
	})
	if err != nil {
		return Alert{}, err
	}
	log.Info().Str("user", user).Str("alert", a.ID).Str("pair", a.Pair).
		Str("condition", string(a.Condition)).Float64("price", a.Price).Msg("alert added")
	return a, nil
}

// List returns the user's alerts, oldest first.
func (s *Service) List(ctx context.Context, user string) ([]Alert, error) {
	p, err := path(user)
	if err != nil {
		return nil, err
	}
	b, err := store.GetJSON[book](ctx, s.store, p)
	if errors.Is(err, store.ErrNotFound) {
		return []Alert{}, nil
	}
	if err != nil {
		return nil, err
	}
	return sorted(b), nil
}

func sorted(b book) []Alert {
	out := make([]Alert, 0, len(b))
	for _, a := range b {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Service) Remove(ctx context.Context, user, alertID string) error {
	p, err := path(user)
	if err != nil {
		return err
	}
	_, err = store.UpdateJSON(ctx, s.store, p, func(b *book, _ bool) error {
		if _, ok := (*b)[alertID]; !ok {
			return fmt.Errorf("%w: %s", ErrAlertNotFound, alertID)
		}
		delete(*b, alertID)
		return nil
	})
	return err
}

// Evaluate checks every active alert against quotes, keyed by any accepted
// symbol spelling, and saves the updated last prices.
func (s *Service) Evaluate(ctx context.Context, user string, quotes map[string]float64) ([]Trigger, error) {
	p, err := path(user)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]float64, len(quotes))
	for sym, q := range quotes {
		byKey[market.Key(sym)] = q
	}

	var fired []Trigger
	_, err = store.UpdateJSON(ctx, s.store, p, func(b *book, exists bool) error {
		fired = fired[:0]
		if !exists {
			return errNoAlerts
		}
		now := s.now()
		for _, a := range sorted(*b) {
			q, ok := byKey[market.Key(a.Pair)]
			if !ok {
				continue
			}
			if a.Check(q, now) {
				fired = append(fired, Trigger{Alert: a, Quote: q})
			}
			(*b)[a.ID] = a
		}
		return nil
	})
	if errors.Is(err, errNoAlerts) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	for _, t := range fired {
		log.Info().Str("user", user).Str("alert", t.Alert.ID).Str("pair", t.Alert.Pair).
			Float64("quote", t.Quote).Str("message", t.Alert.Message).Msg("alert triggered")
	}
	return fired, nil
}
