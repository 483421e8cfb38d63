package market

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuote(t *testing.T) {
	t.Parallel()

	q := Quote{Instrument: "USD/JPY", Bid: 149.50, Ask: 149.53}
	assert.InDelta(t, 149.515, q.Mid(), 1e-9)
	sp, err := q.SpreadPips()
	require.NoError(t, err)
	assert.InDelta(t, 3.0, sp, 1e-6)

	assert.NoError(t, q.Validate())
	assert.True(t, errors.Is(Quote{Instrument: "EURUSD", Bid: 1.1, Ask: 1.0}.Validate(), ErrInvalidNumericInput))
	assert.True(t, errors.Is(Quote{Instrument: "EURUSD", Bid: 0, Ask: 1.0}.Validate(), ErrInvalidNumericInput))
	assert.True(t, errors.Is(Quote{Instrument: "FOO", Bid: 1, Ask: 1}.Validate(), ErrUnknownInstrument))
}

func TestQuoteBoard(t *testing.T) {
	t.Parallel()

	b := NewQuoteBoard()
	_, err := b.Get("EUR/USD")
	assert.True(t, errors.Is(err, ErrNoQuote))

	require.NoError(t, b.Set(Quote{Instrument: "eur_usd", Bid: 1.1, Ask: 1.1002}))
	require.NoError(t, b.Set(Quote{Instrument: "USDJPY", Bid: 150, Ask: 150.02}))
	assert.Error(t, b.Set(Quote{Instrument: "USDJPY", Bid: -1, Ask: 150}))

	q, err := b.Get("EURUSD")
	require.NoError(t, err)
	assert.Equal(t, "EUR/USD", q.Instrument)

	all := b.All()
	require.Len(t, all, 2)
	assert.Equal(t, "EUR/USD", all[0].Instrument)
	assert.Equal(t, "USD/JPY", all[1].Instrument)
	assert.InDelta(t, 150.01, b.Mids()["USD/JPY"], 1e-9)
}

func TestQuoteBoardConcurrent(t *testing.T) {
	t.Parallel()

	b := NewQuoteBoard()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = b.Set(Quote{Instrument: "GBPUSD", Bid: 1.25 + float64(i)/1e5, Ask: 1.2502 + float64(i)/1e5})
			_, _ = b.Get("GBPUSD")
			_ = b.Mids()
		}(i)
	}
	wg.Wait()
	assert.Len(t, b.All(), 1)
}
