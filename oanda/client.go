package oanda

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rustyeddy/misterpips/market"
)

const (
	// PracticeURL is the URL for OANDA's practice/demo environment
	PracticeURL = "https://api-fxpractice.oanda.com"
	// LiveURL is the URL for OANDA's live trading environment
	LiveURL = "https://api-fxtrade.oanda.com"
)

// Client reads current prices from the OANDA v20 REST API
type Client struct {
	baseURL    string
	token      string
	accountID  string
	httpClient *http.Client
}

// NewClient creates a new OANDA API client
func NewClient(token, accountID string, practice bool) *Client {
	baseURL := LiveURL
	if practice {
		baseURL = PracticeURL
	}

	return &Client{
		baseURL:   baseURL,
		token:     token,
		accountID: accountID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type priceLevel struct {
	Price string `json:"price"`
}

type apiPrice struct {
	Instrument string       `json:"instrument"`
	Time       string       `json:"time"`
	Bids       []priceLevel `json:"bids"`
	Asks       []priceLevel `json:"asks"`
}

type pricingResponse struct {
	Prices []apiPrice `json:"prices"`
}

// Instrument converts a symbol in any accepted spelling to OANDA's
// "EUR_USD" form.
func Instrument(symbol string) (string, error) {
	inst, err := market.Lookup(symbol)
	if err != nil {
		return "", err
	}
	return inst.BaseCurrency + "_" + inst.QuoteCurrency, nil
}

// Pricing fetches the top-of-book quote of every symbol
func (c *Client) Pricing(ctx context.Context, symbols []string) ([]market.Quote, error) {
	if c.token == "" {
		return nil, fmt.Errorf("oanda: missing token")
	}
	if c.accountID == "" {
		return nil, fmt.Errorf("oanda: missing account id")
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("oanda: no instruments requested")
	}

	names := make([]string, 0, len(symbols))
	for _, s := range symbols {
		n, err := Instrument(s)
		if err != nil {
			return nil, err
		}
		names = append(names, n)
	}

	params := url.Values{}
	params.Set("instruments", strings.Join(names, ","))
	apiURL := fmt.Sprintf("%s/v3/accounts/%s/pricing?%s", c.baseURL, url.PathEscape(c.accountID), params.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var apiResp pricingResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	quotes := make([]market.Quote, 0, len(apiResp.Prices))
	for _, p := range apiResp.Prices {
		q, err := p.quote()
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

func (p apiPrice) quote() (market.Quote, error) {
	if len(p.Bids) == 0 || len(p.Asks) == 0 {
		return market.Quote{}, fmt.Errorf("oanda: %s has an empty book", p.Instrument)
	}
	bid, err := strconv.ParseFloat(p.Bids[0].Price, 64)
	if err != nil {
		return market.Quote{}, fmt.Errorf("parse bid %q: %w", p.Bids[0].Price, err)
	}
	ask, err := strconv.ParseFloat(p.Asks[0].Price, 64)
	if err != nil {
		return market.Quote{}, fmt.Errorf("parse ask %q: %w", p.Asks[0].Price, err)
	}
	t, err := time.Parse(time.RFC3339Nano, p.Time)
	if err != nil {
		return market.Quote{}, fmt.Errorf("parse time %s: %w", p.Time, err)
	}
	return market.Quote{Instrument: p.Instrument, Bid: bid, Ask: ask, Time: t}, nil
}

// Poll refreshes board with the symbols' prices every interval until ctx
// is done. Failed fetches are logged and retried on the next tick.
func (c *Client) Poll(ctx context.Context, board *market.QuoteBoard, symbols []string, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("oanda: poll interval must be positive")
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := c.refresh(ctx, board, symbols); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Warn().Err(err).Msg("oanda pricing")
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (c *Client) refresh(ctx context.Context, board *market.QuoteBoard, symbols []string) error {
	quotes, err := c.Pricing(ctx, symbols)
	if err != nil {
		return err
	}
	for _, q := range quotes {
		if err := board.Set(q); err != nil {
			log.Debug().Err(err).Str("instrument", q.Instrument).Msg("quote rejected")
		}
	}
	return nil
}
