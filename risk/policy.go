package risk

// Policy bounds a new trade. Percentages are percent of capital.
type Policy struct {
	MaxRiskPct      float64 `yaml:"max_risk_pct" json:"max_risk_pct"`
	MinRR           float64 `yaml:"min_rr" json:"min_rr"`
	MaxOpenTrades   int     `yaml:"max_open_trades" json:"max_open_trades"`
	MaxDailyLossPct float64 `yaml:"max_daily_loss_pct" json:"max_daily_loss_pct"`

	// Enforce turns violations into rejections. Otherwise they only warn.
	Enforce bool `yaml:"enforce" json:"enforce"`
}

func DefaultPolicy() Policy {
	return Policy{
		MaxRiskPct:      2,
		MinRR:           1.5,
		MaxOpenTrades:   5,
		MaxDailyLossPct: 5,
	}
}

// Intent is a trade about to be opened.
type Intent struct {
	Instrument string
	RiskPct    float64

	Entry      float64
	Stop       float64
	TakeProfit float64
}

// Book is the account state the intent is checked against.
type Book struct {
	Capital     float64
	OpenTrades  int
	DayRealized float64 // closed P&L today, USD
}
