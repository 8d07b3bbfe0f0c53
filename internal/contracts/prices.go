package contracts

// PriceBar is one trading day from the price collaborator, split-adjusted
type PriceBar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// SplitEvent is a stock split; Factor is new shares per old share
type SplitEvent struct {
	Date   string  `json:"date"`
	Factor float64 `json:"factor"`
}

// PriceHistory bundles a ticker's daily bars (ascending) and splits (ascending)
type PriceHistory struct {
	Ticker string       `json:"ticker"`
	Bars   []PriceBar   `json:"bars"`
	Splits []SplitEvent `json:"splits"`
}
