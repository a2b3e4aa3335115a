package domain

import "time"

// TrendingToken is a DexScreener profile joined with its deepest pair.
type TrendingToken struct {
	Address        string      `json:"address"`
	ChainID        string      `json:"chain_id"`
	Name           string      `json:"name"`
	Symbol         string      `json:"symbol"`
	Icon           string      `json:"icon,omitempty"`
	Header         string      `json:"header,omitempty"`
	Description    string      `json:"description,omitempty"`
	URL            string      `json:"url"`
	PairAddress    string      `json:"pair_address"`
	DexID          string      `json:"dex_id"`
	PriceUSD       float64     `json:"price_usd"`
	LiquidityUSD   float64     `json:"liquidity_usd"`
	Volume24h      float64     `json:"volume_24h"`
	PriceChange24h float64     `json:"price_change_24h"`
	MarketCap      float64     `json:"market_cap"`
	FDV            float64     `json:"fdv"`
	Links          []TokenLink `json:"links,omitempty"`
}

type TokenLink struct {
	Type  string `json:"type,omitempty"`
	Label string `json:"label,omitempty"`
	URL   string `json:"url"`
}

// Candle is one OHLCV bar of the simulated chart.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}
