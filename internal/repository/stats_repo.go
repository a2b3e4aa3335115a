package repository

import (
	"context"

	"creatememe/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type StatsRepository struct {
	db *pgxpool.Pool
}

func NewStatsRepository(db *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{db: db}
}

// Platform computes dashboard counters in one round trip.
func (r *StatsRepository) Platform(ctx context.Context) (*domain.PlatformStats, error) {
	var s domain.PlatformStats
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM users WHERE is_creator),
			(SELECT COUNT(*) FROM wallets),
			(SELECT COUNT(*) FROM tokens),
			(SELECT COUNT(*) FROM liquidity_pools),
			(SELECT COUNT(*) FROM transactions),
			(SELECT COALESCE(SUM(amount_lamports), 0) FROM transactions WHERE status = 'confirmed'),
			(SELECT COUNT(*) FROM subscriptions WHERE status = 'active'),
			(SELECT COALESCE(SUM(amount_lamports), 0) FROM affiliate_earnings WHERE status = 'pending')`,
	).Scan(&s.Users, &s.Creators, &s.Wallets, &s.Tokens, &s.Pools, &s.Transactions,
		&s.RevenueLamports, &s.ActiveSubscriptions, &s.PendingEarnings)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Ping checks connectivity for readiness probes.
func (r *StatsRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
