// journal/csv.go
package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"sync"
	"time"
)

var (
	tradeHeader  = []string{"trade_id", "user", "instrument", "direction", "lot_size", "entry_price", "stop_loss", "take_profit", "exit_price", "open_time", "close_time", "realized_pl", "reason"}
	equityHeader = []string{"time", "user", "capital", "equity", "realized_pl", "open_trades"}
)

// CSV appends to two files. Headers are written only when a file is new.
type CSV struct {
	mu     sync.Mutex
	trades *csv.Writer
	equity *csv.Writer
	tf, ef *os.File
}

func NewCSV(tradesPath, equityPath string) (*CSV, error) {
	tf, tw, err := openAppend(tradesPath, tradeHeader)
	if err != nil {
		return nil, err
	}
	ef, ew, err := openAppend(equityPath, equityHeader)
	if err != nil {
		tf.Close()
		return nil, err
	}
	return &CSV{trades: tw, equity: ew, tf: tf, ef: ef}, nil
}

func openAppend(path string, header []string) (*os.File, *csv.Writer, error) {
	fh, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	info, err := fh.Stat()
	if err != nil {
		fh.Close()
		return nil, nil, err
	}

	w := csv.NewWriter(fh)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			fh.Close()
			return nil, nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			fh.Close()
			return nil, nil, err
		}
	}
	return fh, w, nil
}

func (j *CSV) RecordTrade(t TradeRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	err := j.trades.Write([]string{
		t.TradeID,
		t.User,
		t.Instrument,
		t.Direction,
		f(t.LotSize),
		f(t.EntryPrice),
		f(t.StopLoss),
		f(t.TakeProfit),
		f(t.ExitPrice),
		t.OpenTime.UTC().Format(time.RFC3339),
		t.CloseTime.UTC().Format(time.RFC3339),
		f(t.RealizedPL),
		t.Reason,
	})
	if err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSV) RecordEquity(e EquitySnapshot) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	err := j.equity.Write([]string{
		e.Time.UTC().Format(time.RFC3339),
		e.User,
		f(e.Capital),
		f(e.Equity),
		f(e.RealizedPL),
		strconv.Itoa(e.OpenTrades),
	})
	if err != nil {
		return err
	}
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSV) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		return err
	}

	if err := j.tf.Close(); err != nil {
		return err
	}
	return j.ef.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
