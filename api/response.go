package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/rustyeddy/misterpips/alert"
	"github.com/rustyeddy/misterpips/dashboard"
	"github.com/rustyeddy/misterpips/journal"
	"github.com/rustyeddy/misterpips/market"
	"github.com/rustyeddy/misterpips/risk"
	"github.com/rustyeddy/misterpips/store"
	"github.com/rustyeddy/misterpips/trade"
)

// Response is the envelope of every JSON reply. Code is 0 on success.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error codes carried in Response.Code.
const (
	CodeInvalidInput  = -1100
	CodeUnknownSymbol = -1121
	CodeNotFound      = -1003
	CodeConflict      = -2010
	CodeRejected      = -2020
	CodeInternal      = -1
)

func success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "success", Data: data})
}

func created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Response{Code: 0, Message: "created", Data: data})
}

func errorJSON(c *gin.Context, status, code int, message string, data any) {
	c.AbortWithStatusJSON(status, Response{Code: code, Message: message, Data: data})
}

func badRequest(c *gin.Context, message string) {
	errorJSON(c, http.StatusBadRequest, CodeInvalidInput, message, nil)
}

// fail maps a domain error onto a status code and envelope.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, market.ErrUnknownInstrument):
		errorJSON(c, http.StatusBadRequest, CodeUnknownSymbol, err.Error(), nil)
	case errors.Is(err, market.ErrInvalidNumericInput),
		errors.Is(err, market.ErrInvalidDirection),
		errors.Is(err, market.ErrDegenerateStopLoss),
		errors.Is(err, trade.ErrInvalidReason),
		errors.Is(err, risk.ErrInvalidCorrelation),
		errors.Is(err, alert.ErrInvalidCondition),
		errors.Is(err, dashboard.ErrInvalidUser),
		errors.Is(err, dashboard.ErrInvalidDate),
		errors.Is(err, store.ErrInvalidPath):
		errorJSON(c, http.StatusBadRequest, CodeInvalidInput, err.Error(), nil)
	case errors.Is(err, trade.ErrTradeNotFound),
		errors.Is(err, alert.ErrAlertNotFound),
		errors.Is(err, dashboard.ErrUnknownAccount),
		errors.Is(err, journal.ErrNotFound),
		errors.Is(err, market.ErrNoQuote),
		errors.Is(err, store.ErrNotFound):
		errorJSON(c, http.StatusNotFound, CodeNotFound, err.Error(), nil)
	case errors.Is(err, trade.ErrTradeNotOpen),
		errors.Is(err, store.ErrConflict):
		errorJSON(c, http.StatusConflict, CodeConflict, err.Error(), nil)
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		errorJSON(c, http.StatusInternalServerError, CodeInternal, err.Error(), nil)
	}
}
