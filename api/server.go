// Package api serves the calculators, dashboards and alerts over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/rustyeddy/misterpips/alert"
	"github.com/rustyeddy/misterpips/dashboard"
	"github.com/rustyeddy/misterpips/market"
)

type Server struct {
	dashboards *dashboard.Service
	alerts     *alert.Service
	quotes     *market.QuoteBoard
	version    string
	engine     *gin.Engine
}

// New builds the router. Callers pick the gin mode before calling it.
// quotes may be shared with a poller that keeps it fresh.
func New(dashboards *dashboard.Service, alerts *alert.Service, quotes *market.QuoteBoard, version string) *Server {
	if quotes == nil {
		quotes = market.NewQuoteBoard()
	}
	s := &Server{
		dashboards: dashboards,
		alerts:     alerts,
		quotes:     quotes,
		version:    version,
		engine:     gin.New(),
	}
	s.engine.Use(gin.Recovery(), requestLogger())
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() {
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": s.version,
			"time":    time.Now().Unix(),
		})
	})

	v1 := s.engine.Group("/api/v1")
	v1.GET("/instruments", listInstruments)

	calc := v1.Group("/calc")
	calc.POST("/pnl", calcPnL)
	calc.POST("/position", calcPosition)
	calc.POST("/pip-value", calcPipValue)
	calc.POST("/risk", calcRisk)
	calc.POST("/swap", calcSwap)

	qh := &quoteHandler{board: s.quotes}
	qh.RegisterRoutes(v1)

	dh := &dashboardHandler{svc: s.dashboards, quotes: s.quotes}
	dh.RegisterRoutes(v1)

	ah := &alertHandler{svc: s.alerts, quotes: s.quotes}
	ah.RegisterRoutes(v1)
}

// Run serves on addr until ctx is cancelled, then drains for up to five
// seconds.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("http server listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info().Msg("http server stopped")
	return nil
}
