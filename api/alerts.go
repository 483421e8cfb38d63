package api

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/rustyeddy/misterpips/alert"
	"github.com/rustyeddy/misterpips/market"
)

type alertHandler struct {
	svc    *alert.Service
	quotes *market.QuoteBoard
}

func (h *alertHandler) RegisterRoutes(rg *gin.RouterGroup) {
	a := rg.Group("/alerts/:user")
	a.GET("", h.list)
	a.POST("", h.add)
	a.DELETE("/:id", h.remove)
	a.POST("/check", h.check)
}

func (h *alertHandler) list(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), c.Param("user"))
	if err != nil {
		fail(c, err)
		return
	}
	success(c, list)
}

func (h *alertHandler) add(c *gin.Context) {
	var req struct {
		Pair      string  `json:"pair" binding:"required"`
		Condition string  `json:"condition" binding:"required"`
		Price     float64 `json:"price"`
		Message   string  `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	cond, err := alert.ParseCondition(req.Condition)
	if err != nil {
		fail(c, err)
		return
	}
	a, err := h.svc.Add(c.Request.Context(), c.Param("user"), alert.Alert{
		Pair:      req.Pair,
		Condition: cond,
		Price:     req.Price,
		Message:   req.Message,
	})
	if err != nil {
		fail(c, err)
		return
	}
	created(c, a)
}

func (h *alertHandler) remove(c *gin.Context) {
	if err := h.svc.Remove(c.Request.Context(), c.Param("user"), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	success(c, gin.H{"deleted": c.Param("id")})
}

// POST /api/v1/alerts/:user/check with {"quotes": {"EUR/USD": 1.1012}}.
// Without quotes the mids of the live quote board are used.
func (h *alertHandler) check(c *gin.Context) {
	var req struct {
		Quotes map[string]float64 `json:"quotes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err.Error())
		return
	}
	if len(req.Quotes) == 0 {
		req.Quotes = h.quotes.Mids()
	}
	fired, err := h.svc.Evaluate(c.Request.Context(), c.Param("user"), req.Quotes)
	if err != nil {
		fail(c, err)
		return
	}
	if fired == nil {
		fired = []alert.Trigger{}
	}
	success(c, gin.H{"triggered": fired})
}
