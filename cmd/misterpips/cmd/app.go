package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/rustyeddy/misterpips/alert"
	"github.com/rustyeddy/misterpips/dashboard"
	"github.com/rustyeddy/misterpips/journal"
	"github.com/rustyeddy/misterpips/store"
)

// app wires the configured store and journal into the services.
type app struct {
	store      store.Store
	journal    journal.Journal
	dashboards *dashboard.Service
	alerts     *alert.Service
}

func openApp(ctx context.Context) (*app, error) {
	st, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	j, err := journal.Open(cfg.JournalOptions())
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("open journal: %w", err)
	}
	log.Debug().Str("store", cfg.Store.Type).Str("journal", cfg.Journal.Type).Msg("app opened")

	return &app{
		store:   st,
		journal: j,
		dashboards: dashboard.NewService(st, j,
			dashboard.WithPolicy(cfg.Policy),
			dashboard.WithDefaults(cfg.Settings()),
		),
		alerts: alert.NewService(st, nil),
	}, nil
}

func (a *app) Close() {
	if err := a.journal.Close(); err != nil {
		log.Warn().Err(err).Msg("close journal")
	}
	if err := a.store.Close(); err != nil {
		log.Warn().Err(err).Msg("close store")
	}
}

// user resolves the --user flag, falling back to account.user.
func user(flag string) string {
	if flag != "" {
		return flag
	}
	return cfg.Account.User
}
