package journal

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rustyeddy/misterpips/trade"
)

// ExportHeader is the column set of the dashboard spreadsheet export.
var ExportHeader = []string{"Date", "Pair", "Type", "Entry", "Exit", "SL", "TP", "Lot", "P&L", "Status"}

// WriteTradesCSV writes trades, open ones included, in the export layout.
// Exit and P&L are blank until a trade is closed.
func WriteTradesCSV(w io.Writer, trades []trade.Trade) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return err
	}
	for _, t := range trades {
		exit, pnl := "", ""
		if t.Outcome != nil {
			exit = price(t.Outcome.ExitPrice)
			pnl = strconv.FormatFloat(t.Outcome.PnL, 'f', 2, 64)
		}
		row := []string{
			t.OpenedAt.UTC().Format("2006-01-02"),
			t.Instrument,
			string(t.Direction),
			price(t.Entry),
			exit,
			price(t.StopLoss),
			price(t.TakeProfit),
			strconv.FormatFloat(t.LotSize, 'f', -1, 64),
			pnl,
			string(t.Status),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func price(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
