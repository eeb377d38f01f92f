package models

import "time"

// StockQuote is a current price for one listed stock, from the live feed or
// the database mirror. The two sources produce the same shape.
type StockQuote struct {
	Symbol         string    `json:"symbol"`
	Name           string    `json:"name"`
	Sector         string    `json:"sector"`
	Price          float64   `json:"price"`
	DailyChange    float64   `json:"daily_change"`
	DailyChangePct float64   `json:"daily_change_pct"`
	UpdatedAt      time.Time `json:"updated_at"`
	Source         string    `json:"source,omitempty"` // "live" or "mirror"
}

// Candle is one bar of a price history series.
type Candle struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// PriceHistory is a generated OHLC series for charting. The series is a
// seeded random walk anchored at the current quote — illustrative only,
// never an input to valuation.
type PriceHistory struct {
	Symbol    string   `json:"symbol"`
	Synthetic bool     `json:"synthetic"` // always true
	Candles   []Candle `json:"candles"`
}
