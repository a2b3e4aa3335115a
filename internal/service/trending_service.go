package service

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"creatememe/internal/apperr"
	"creatememe/internal/dexscreener"
	"creatememe/internal/domain"
	"creatememe/internal/logger"
)

const solanaChainID = "solana"

// TrendingService joins the latest Solana token profiles with their most
// liquid trading pair.
type TrendingService struct {
	source TrendingSource
	cache  TrendingCache
	ttl    time.Duration
	limit  int

	mu    sync.RWMutex
	stale []domain.TrendingToken

	log *slog.Logger
}

func NewTrendingService(source TrendingSource, cache TrendingCache, ttl time.Duration, limit int) *TrendingService {
	return &TrendingService{
		source: source,
		cache:  cache,
		ttl:    ttl,
		limit:  limit,
		log:    logger.With("component", "trending"),
	}
}

// List returns the cached list, refreshing it when the cache is cold. A
// failed refresh falls back to the last good list.
func (s *TrendingService) List(ctx context.Context) ([]domain.TrendingToken, error) {
	if s.cache != nil {
		tokens, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.log.Warn("trending cache read failed", "error", err)
		} else if ok {
			return tokens, nil
		}
	}

	tokens, err := s.refresh(ctx)
	if err == nil {
		TrendingFetches.WithLabelValues("ok").Inc()
		return tokens, nil
	}

	s.mu.RLock()
	stale := s.stale
	s.mu.RUnlock()
	if stale != nil {
		TrendingFetches.WithLabelValues("stale").Inc()
		s.log.Warn("trending refresh failed, serving stale list", "error", err)
		return stale, nil
	}

	TrendingFetches.WithLabelValues("error").Inc()
	return nil, apperr.Wrap(apperr.KindUnavailable, "trending tokens unavailable", err)
}

// Get returns one currently trending token.
func (s *TrendingService) Get(ctx context.Context, address string) (*domain.TrendingToken, error) {
	tokens, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tokens {
		if tokens[i].Address == address {
			t := tokens[i]
			return &t, nil
		}
	}
	return nil, apperr.NotFound("token is not trending")
}

func (s *TrendingService) refresh(ctx context.Context) ([]domain.TrendingToken, error) {
	profiles, err := s.source.LatestProfiles(ctx)
	if err != nil {
		return nil, err
	}

	var (
		solanaProfiles []dexscreener.Profile
		addresses      []string
		seen           = map[string]bool{}
	)
	for _, p := range profiles {
		if p.ChainID != solanaChainID || p.TokenAddress == "" || seen[p.TokenAddress] {
			continue
		}
		seen[p.TokenAddress] = true
		solanaProfiles = append(solanaProfiles, p)
		addresses = append(addresses, p.TokenAddress)
	}

	var pairs []dexscreener.Pair
	for start := 0; start < len(addresses); start += dexscreener.MaxAddressesPerCall {
		end := min(start+dexscreener.MaxAddressesPerCall, len(addresses))
		batch, err := s.source.TokenPairs(ctx, solanaChainID, addresses[start:end])
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, batch...)
	}

	tokens := JoinTrending(solanaProfiles, pairs, s.limit)

	if s.cache != nil {
		if err := s.cache.Set(ctx, tokens, s.ttl); err != nil {
			s.log.Warn("trending cache write failed", "error", err)
		}
	}
	s.mu.Lock()
	s.stale = tokens
	s.mu.Unlock()
	return tokens, nil
}

// JoinTrending pairs each profile with its highest-liquidity pair. Profiles
// without a pair are dropped and profile order is kept. limit <= 0 means
// no cap.
func JoinTrending(profiles []dexscreener.Profile, pairs []dexscreener.Pair, limit int) []domain.TrendingToken {
	best := make(map[string]dexscreener.Pair, len(pairs))
	for _, p := range pairs {
		addr := p.BaseToken.Address
		cur, ok := best[addr]
		if !ok || p.LiquidityUSD() > cur.LiquidityUSD() {
			best[addr] = p
		}
	}

	out := []domain.TrendingToken{}
	for _, prof := range profiles {
		pair, ok := best[prof.TokenAddress]
		if !ok {
			continue
		}
		out = append(out, toTrending(prof, pair))
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func toTrending(prof dexscreener.Profile, pair dexscreener.Pair) domain.TrendingToken {
	price, _ := strconv.ParseFloat(pair.PriceUSD, 64)

	t := domain.TrendingToken{
		Address:        prof.TokenAddress,
		ChainID:        prof.ChainID,
		Name:           pair.BaseToken.Name,
		Symbol:         pair.BaseToken.Symbol,
		Icon:           prof.Icon,
		Header:         prof.Header,
		Description:    prof.Description,
		URL:            prof.URL,
		PairAddress:    pair.PairAddress,
		DexID:          pair.DexID,
		PriceUSD:       price,
		LiquidityUSD:   pair.LiquidityUSD(),
		Volume24h:      pair.Volume.H24,
		PriceChange24h: pair.PriceChange.H24,
		MarketCap:      pair.MarketCap,
		FDV:            pair.FDV,
	}
	if t.Icon == "" && pair.Info != nil {
		t.Icon = pair.Info.ImageURL
	}
	for _, l := range prof.Links {
		t.Links = append(t.Links, domain.TokenLink{Type: l.Type, Label: l.Label, URL: l.URL})
	}
	return t
}
