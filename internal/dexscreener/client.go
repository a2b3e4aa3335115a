// Package dexscreener reads token profiles and pair data from the public
// DexScreener API.
package dexscreener

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// MaxAddressesPerCall is the token-pairs endpoint batch limit.
const MaxAddressesPerCall = 30

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type Link struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Profile is an entry of /token-profiles/latest/v1.
type Profile struct {
	URL          string `json:"url"`
	ChainID      string `json:"chainId"`
	TokenAddress string `json:"tokenAddress"`
	Icon         string `json:"icon"`
	Header       string `json:"header"`
	Description  string `json:"description"`
	Links        []Link `json:"links"`
}

type PairToken struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

// Pair is an entry of /tokens/v1/{chain}/{addresses}.
type Pair struct {
	ChainID     string    `json:"chainId"`
	DexID       string    `json:"dexId"`
	URL         string    `json:"url"`
	PairAddress string    `json:"pairAddress"`
	BaseToken   PairToken `json:"baseToken"`
	QuoteToken  PairToken `json:"quoteToken"`
	PriceUSD    string    `json:"priceUsd"`
	Volume      struct {
		H24 float64 `json:"h24"`
	} `json:"volume"`
	PriceChange struct {
		H24 float64 `json:"h24"`
	} `json:"priceChange"`
	Liquidity *struct {
		USD float64 `json:"usd"`
	} `json:"liquidity"`
	FDV       float64 `json:"fdv"`
	MarketCap float64 `json:"marketCap"`
	Info      *struct {
		ImageURL string `json:"imageUrl"`
	} `json:"info"`
}

// LiquidityUSD is zero for pairs without reported liquidity.
func (p Pair) LiquidityUSD() float64 {
	if p.Liquidity == nil {
		return 0
	}
	return p.Liquidity.USD
}

// LatestProfiles returns the newest token profiles across all chains.
func (c *Client) LatestProfiles(ctx context.Context) ([]Profile, error) {
	var out []Profile
	if err := c.get(ctx, "/token-profiles/latest/v1", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TokenPairs returns all pairs for up to MaxAddressesPerCall tokens on chainID.
func (c *Client) TokenPairs(ctx context.Context, chainID string, addresses []string) ([]Pair, error) {
	if len(addresses) == 0 {
		return nil, nil
	}
	if len(addresses) > MaxAddressesPerCall {
		return nil, fmt.Errorf("dexscreener: %d addresses exceeds batch limit %d", len(addresses), MaxAddressesPerCall)
	}
	var out []Pair
	path := fmt.Sprintf("/tokens/v1/%s/%s", chainID, strings.Join(addresses, ","))
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("dexscreener %s: %s - %s", path, resp.Status, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}
