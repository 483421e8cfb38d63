package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/rustyeddy/misterpips/dashboard"
	"github.com/rustyeddy/misterpips/market"
	"github.com/rustyeddy/misterpips/trade"
)

const wsWriteWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type dashboardHandler struct {
	svc    *dashboard.Service
	quotes *market.QuoteBoard
}

func (h *dashboardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	d := rg.Group("/dashboards/:user")
	d.GET("", h.get)
	d.GET("/ws", h.watch)
	d.PUT("/settings", h.updateSettings)
	d.POST("/accounts", h.addAccount)
	d.PUT("/account", h.switchAccount)
	d.POST("/trades", h.openTrade)
	d.POST("/trades/history", h.recordPastTrade)
	d.POST("/trades/:id/preview", h.previewClose)
	d.POST("/trades/:id/close", h.closeTrade)
	d.DELETE("/trades/:id", h.deleteTrade)
	d.POST("/mark", h.mark)
	d.GET("/stats", h.stats)
	d.GET("/export.csv", h.export)
}

// GET /api/v1/dashboards/:user
func (h *dashboardHandler) get(c *gin.Context) {
	d, err := h.svc.Load(c.Request.Context(), c.Param("user"))
	if err != nil {
		fail(c, err)
		return
	}
	success(c, d)
}

// PUT /api/v1/dashboards/:user/settings
func (h *dashboardHandler) updateSettings(c *gin.Context) {
	var st dashboard.Settings
	if err := c.ShouldBindJSON(&st); err != nil {
		badRequest(c, err.Error())
		return
	}
	d, err := h.svc.UpdateSettings(c.Request.Context(), c.Param("user"), st)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, d)
}

// POST /api/v1/dashboards/:user/accounts
func (h *dashboardHandler) addAccount(c *gin.Context) {
	var req struct {
		ID      string  `json:"id" binding:"required"`
		Name    string  `json:"name"`
		Capital float64 `json:"capital"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	d, err := h.svc.AddAccount(c.Request.Context(), c.Param("user"), req.ID, req.Name, req.Capital)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, d)
}

// PUT /api/v1/dashboards/:user/account
func (h *dashboardHandler) switchAccount(c *gin.Context) {
	var req struct {
		Account string `json:"account" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	d, err := h.svc.SwitchAccount(c.Request.Context(), c.Param("user"), req.Account)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, d)
}

// POST /api/v1/dashboards/:user/trades
func (h *dashboardHandler) openTrade(c *gin.Context) {
	var spec trade.Spec
	if err := c.ShouldBindJSON(&spec); err != nil {
		badRequest(c, err.Error())
		return
	}
	t, decision, err := h.svc.OpenTrade(c.Request.Context(), c.Param("user"), spec)
	if errors.Is(err, dashboard.ErrPolicyRejected) {
		errorJSON(c, http.StatusUnprocessableEntity, CodeRejected, err.Error(), decision)
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	created(c, gin.H{"trade": t, "decision": decision})
}

type pastTradeRequest struct {
	trade.Spec
	Date string  `json:"date" binding:"required"`
	Exit float64 `json:"exit"`
}

// POST /api/v1/dashboards/:user/trades/history records a trade that is
// already closed. date is YYYY-MM-DD (UTC) or RFC 3339.
func (h *dashboardHandler) recordPastTrade(c *gin.Context) {
	var req pastTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	at, err := dashboard.ParseTradeDate(req.Date, time.UTC)
	if err != nil {
		fail(c, err)
		return
	}
	t, err := h.svc.RecordPastTrade(c.Request.Context(), c.Param("user"), req.Spec, at, req.Exit)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, t)
}

type closeRequest struct {
	Reason string  `json:"reason" binding:"required"`
	Exit   float64 `json:"exit"`
}

func bindClose(c *gin.Context) (trade.Reason, float64, bool) {
	var req closeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return "", 0, false
	}
	reason, err := trade.ParseReason(req.Reason)
	if err != nil {
		fail(c, err)
		return "", 0, false
	}
	return reason, req.Exit, true
}

// POST /api/v1/dashboards/:user/trades/:id/preview
func (h *dashboardHandler) previewClose(c *gin.Context) {
	reason, exit, ok := bindClose(c)
	if !ok {
		return
	}
	out, err := h.svc.PreviewClose(c.Request.Context(), c.Param("user"), c.Param("id"), reason, exit)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, out)
}

// POST /api/v1/dashboards/:user/trades/:id/close
func (h *dashboardHandler) closeTrade(c *gin.Context) {
	reason, exit, ok := bindClose(c)
	if !ok {
		return
	}
	t, err := h.svc.CloseTrade(c.Request.Context(), c.Param("user"), c.Param("id"), reason, exit)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, t)
}

// DELETE /api/v1/dashboards/:user/trades/:id
func (h *dashboardHandler) deleteTrade(c *gin.Context) {
	if err := h.svc.DeleteTrade(c.Request.Context(), c.Param("user"), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	success(c, gin.H{"deleted": c.Param("id")})
}

// POST /api/v1/dashboards/:user/mark closes trades the current quotes
// have stopped out or taken profit on and values the rest.
func (h *dashboardHandler) mark(c *gin.Context) {
	m, err := h.svc.MarkToMarket(c.Request.Context(), c.Param("user"), h.quotes)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, m)
}

// GET /api/v1/dashboards/:user/stats
func (h *dashboardHandler) stats(c *gin.Context) {
	st, err := h.svc.Stats(c.Request.Context(), c.Param("user"))
	if err != nil {
		fail(c, err)
		return
	}
	success(c, st)
}

// GET /api/v1/dashboards/:user/export.csv
func (h *dashboardHandler) export(c *gin.Context) {
	var buf bytes.Buffer
	user := c.Param("user")
	if err := h.svc.ExportCSV(c.Request.Context(), user, &buf); err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="misterpips-%s.csv"`, user))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// GET /api/v1/dashboards/:user/ws streams the dashboard as JSON text
// messages: once on connect, then after every change.
func (h *dashboardHandler) watch(c *gin.Context) {
	user := c.Param("user")
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	feed, err := h.svc.Watch(ctx, user)
	if err != nil {
		fail(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Str("user", user).Msg("websocket upgrade")
		return
	}
	defer conn.Close()

	// The client never sends anything we use; reading detects the close.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	log.Info().Str("user", user).Msg("dashboard watcher connected")
	for d := range feed {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(d); err != nil {
			log.Debug().Err(err).Str("user", user).Msg("websocket write")
			break
		}
	}
	log.Info().Str("user", user).Msg("dashboard watcher disconnected")
}
