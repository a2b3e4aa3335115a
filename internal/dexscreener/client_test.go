package dexscreener

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestProfiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/token-profiles/latest/v1", r.URL.Path)
		_, _ = w.Write([]byte(`[{"url":"https://dexscreener.com/solana/abc","chainId":"solana","tokenAddress":"abc","icon":"https://img/abc.png","description":"dog","links":[{"type":"twitter","url":"https://x.com/abc"}]}]`))
	}))
	defer srv.Close()

	profiles, err := NewClient(srv.URL + "/").LatestProfiles(t.Context())
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "abc", profiles[0].TokenAddress)
	assert.Equal(t, "twitter", profiles[0].Links[0].Type)
}

func TestTokenPairs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tokens/v1/solana/abc,def", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"chainId":"solana","dexId":"raydium","pairAddress":"p1","baseToken":{"address":"abc","name":"Abc","symbol":"ABC"},"priceUsd":"0.0012","liquidity":{"usd":15000.5},"volume":{"h24":900},"priceChange":{"h24":-3.2},"fdv":120000,"marketCap":110000},
			{"chainId":"solana","dexId":"pumpswap","pairAddress":"p2","baseToken":{"address":"def","name":"Def","symbol":"DEF"},"priceUsd":"1.5"}
		]`))
	}))
	defer srv.Close()

	pairs, err := NewClient(srv.URL).TokenPairs(t.Context(), "solana", []string{"abc", "def"})
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, 15000.5, pairs[0].LiquidityUSD())
	assert.Equal(t, 0.0, pairs[1].LiquidityUSD())
	assert.Equal(t, -3.2, pairs[0].PriceChange.H24)
}

func TestTokenPairsBatchLimit(t *testing.T) {
	addrs := strings.Split(strings.Repeat("a,", MaxAddressesPerCall+1), ",")[:MaxAddressesPerCall+1]
	_, err := NewClient("http://unused").TokenPairs(t.Context(), "solana", addrs)
	assert.Error(t, err)

	pairs, err := NewClient("http://unused").TokenPairs(t.Context(), "solana", nil)
	assert.NoError(t, err)
	assert.Nil(t, pairs)
}

func TestNon200IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).LatestProfiles(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
