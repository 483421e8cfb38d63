package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

// RecordTrade upserts by trade id so a replayed closure does not fail.
func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT OR REPLACE INTO trades
		(trade_id, user_id, instrument, direction, lot_size, entry_price, stop_loss, take_profit,
		 exit_price, open_time, close_time, realized_pl, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.User, t.Instrument, t.Direction, t.LotSize, t.EntryPrice, t.StopLoss,
		t.TakeProfit, t.ExitPrice, t.OpenTime.UTC(), t.CloseTime.UTC(), t.RealizedPL, t.Reason,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(time, user_id, capital, equity, realized_pl, open_trades)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.Time.UTC(), e.User, e.Capital, e.Equity, e.RealizedPL, e.OpenTrades,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
