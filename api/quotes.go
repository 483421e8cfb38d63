package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rustyeddy/misterpips/market"
)

type quoteHandler struct {
	board *market.QuoteBoard
}

func (h *quoteHandler) RegisterRoutes(rg *gin.RouterGroup) {
	q := rg.Group("/quotes")
	q.GET("", h.list)
	q.PUT("", h.set)
	q.GET("/:symbol", h.get)
}

type quoteView struct {
	market.Quote
	Mid        float64 `json:"mid"`
	SpreadPips float64 `json:"spreadPips"`
}

func viewQuote(q market.Quote) quoteView {
	spread, _ := q.SpreadPips()
	return quoteView{Quote: q, Mid: q.Mid(), SpreadPips: spread}
}

// GET /api/v1/quotes
func (h *quoteHandler) list(c *gin.Context) {
	all := h.board.All()
	out := make([]quoteView, 0, len(all))
	for _, q := range all {
		out = append(out, viewQuote(q))
	}
	success(c, out)
}

// GET /api/v1/quotes/:symbol, symbol without the slash ("EURUSD")
func (h *quoteHandler) get(c *gin.Context) {
	q, err := h.board.Get(c.Param("symbol"))
	if err != nil {
		fail(c, err)
		return
	}
	success(c, viewQuote(q))
}

// PUT /api/v1/quotes with {"quotes": [{"instrument": "EUR/USD", "bid": 1.1, "ask": 1.1002}]}.
// The batch is checked in full before any quote is stored.
func (h *quoteHandler) set(c *gin.Context) {
	var req struct {
		Quotes []market.Quote `json:"quotes" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	for _, q := range req.Quotes {
		if err := q.Validate(); err != nil {
			fail(c, err)
			return
		}
	}
	now := time.Now().UTC()
	for _, q := range req.Quotes {
		if q.Time.IsZero() {
			q.Time = now
		}
		if err := h.board.Set(q); err != nil {
			fail(c, err)
			return
		}
	}
	success(c, gin.H{"updated": len(req.Quotes)})
}
