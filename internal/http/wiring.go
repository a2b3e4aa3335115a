package http

import (
	"fmt"
	"net/url"

	"creatememe/internal/cache"
	"creatememe/internal/config"
	"creatememe/internal/dexscreener"
	"creatememe/internal/http/handlers"
	"creatememe/internal/oauth"
	"creatememe/internal/repository"
	"creatememe/internal/service"
	"creatememe/internal/solana"

	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// NewHandler builds repositories, external clients and services. rdb may
// be nil, in which case nonces and the trending cache stay in process.
func NewHandler(cfg *config.Config, db *pgxpool.Pool, rdb *redis.Client) (*handlers.Handler, *service.Sessions, error) {
	fees, err := service.NewFeeSchedule(cfg.Fees.TokenCreationSOL, cfg.Fees.PoolCreationSOL, cfg.Fees.CloneSOL)
	if err != nil {
		return nil, nil, fmt.Errorf("fee schedule: %w", err)
	}
	rate, err := decimal.NewFromString(cfg.DefaultCommissionRate)
	if err != nil {
		return nil, nil, fmt.Errorf("commission rate: %w", err)
	}

	users := repository.NewUserRepository(db)
	wallets := repository.NewWalletRepository(db)
	txs := repository.NewTransactionRepository(db)
	subs := repository.NewSubscriptionRepository(db)
	earnings := repository.NewAffiliateRepository(db)
	tokens := repository.NewTokenRepository(db)
	pools := repository.NewPoolRepository(db)
	stats := repository.NewStatsRepository(db)
	adminLogs := repository.NewAdminLogRepository(db)
	blog := repository.NewBlogRepository(db)

	var (
		nonces   service.NonceStore    = cache.NewMemoryNonces()
		trending service.TrendingCache = cache.NewMemoryTrending()
	)
	if rdb != nil {
		nonces = cache.NewRedisNonces(rdb)
		trending = cache.NewRedisTrending(rdb)
	}

	network := solana.Network(cfg.Solana.Network)
	chain := solana.NewClient(network, cfg.Solana.RPCURL)
	sessions := service.NewSessions(cfg.JWTSecret, cfg.SessionTTL)

	logs := service.NewAdminLogService(adminLogs)
	affiliates := service.NewAffiliateService(users, earnings, rate)
	payments := service.NewPaymentService(txs, wallets, chain, cfg.Solana.TreasuryWallet, affiliates)
	trendingSvc := service.NewTrendingService(dexscreener.NewClient(cfg.DexScreenerBaseURL), trending, cfg.TrendingTTL, cfg.TrendingLimit)

	auth := service.NewAuthService(users, wallets, sessions, oauth.NewGoogleVerifier(cfg.GoogleClientID), nonces, affiliates, service.AuthConfig{
		AdminEmails:       cfg.AdminEmails,
		AdminWallets:      cfg.AdminWallets,
		AdminLoginEmail:   cfg.AdminLoginEmail,
		AdminPasswordHash: cfg.AdminPasswordHash,
		SignInDomain:      signInDomain(cfg.AppBaseURL),
		NonceTTL:          cfg.SignInNonceTTL,
	})

	h := &handlers.Handler{
		Auth:          auth,
		Payments:      payments,
		Affiliates:    affiliates,
		Subscriptions: service.NewSubscriptionService(subs, payments, affiliates, service.DefaultPlans()),
		Trending:      trendingSvc,
		Tokens:        service.NewTokenService(tokens, payments, trendingSvc, fees),
		Pools:         service.NewPoolService(pools, tokens, payments, fees),
		Wallets:       service.NewWalletService(wallets, users, chain),
		Admin:         service.NewAdminService(users, wallets, txs, subs, stats, affiliates, logs),
		Blog:          service.NewBlogService(blog, logs),
		Fees:          fees,
		Network:       string(network),
		BaseURL:       cfg.AppBaseURL,
		SecureCookies: cfg.IsProduction(),
	}
	return h, sessions, nil
}

func signInDomain(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return "creatememe.io"
	}
	return u.Host
}
