package repository

import (
	"context"
	"errors"

	"creatememe/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const poolColumns = `id, token_id, creator_id, quote_mint, base_amount, quote_amount_lamports,
	status, pool_address, signature, created_at, updated_at`

type PoolRepository struct {
	db *pgxpool.Pool
}

func NewPoolRepository(db *pgxpool.Pool) *PoolRepository {
	return &PoolRepository{db: db}
}

func scanPool(row pgx.Row) (*domain.LiquidityPool, error) {
	var p domain.LiquidityPool
	if err := row.Scan(
		&p.ID, &p.TokenID, &p.CreatorID, &p.QuoteMint, &p.BaseAmount, &p.QuoteAmountLamports,
		&p.Status, &p.PoolAddress, &p.Signature, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func collectPools(rows pgx.Rows) ([]domain.LiquidityPool, error) {
	defer rows.Close()
	var out []domain.LiquidityPool
	for rows.Next() {
		p, err := scanPool(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Create stores p and its pool fee payment in one database transaction.
// A reused signature yields ErrConflict and stores neither.
func (r *PoolRepository) Create(ctx context.Context, p *domain.LiquidityPool, payment *domain.Transaction) error {
	if p.Status == "" {
		p.Status = domain.PoolStatusActive
	}
	var created *domain.LiquidityPool
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := createTransaction(ctx, tx, payment); err != nil {
			return err
		}
		var err error
		created, err = scanPool(tx.QueryRow(ctx, `
			INSERT INTO liquidity_pools (token_id, creator_id, quote_mint, base_amount, quote_amount_lamports, status, pool_address, signature)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING `+poolColumns,
			p.TokenID, p.CreatorID, p.QuoteMint, p.BaseAmount, p.QuoteAmountLamports, p.Status, p.PoolAddress, payment.Signature,
		))
		return err
	})
	if err != nil {
		return mapErr(err)
	}
	*p = *created
	return nil
}

func (r *PoolRepository) GetByID(ctx context.Context, id int64) (*domain.LiquidityPool, error) {
	return scanPool(r.db.QueryRow(ctx, `SELECT `+poolColumns+` FROM liquidity_pools WHERE id = $1`, id))
}

// Transition moves a pool from one status to another. It returns
// ErrConflict when the pool is not in the from status.
func (r *PoolRepository) Transition(ctx context.Context, id int64, from, to domain.PoolStatus) (*domain.LiquidityPool, error) {
	p, err := scanPool(r.db.QueryRow(ctx, `
		UPDATE liquidity_pools SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING `+poolColumns,
		id, from, to,
	))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrConflict
	}
	return p, err
}

func (r *PoolRepository) ListByToken(ctx context.Context, tokenID int64) ([]domain.LiquidityPool, error) {
	rows, err := r.db.Query(ctx, `SELECT `+poolColumns+` FROM liquidity_pools WHERE token_id = $1 ORDER BY created_at DESC`, tokenID)
	if err != nil {
		return nil, err
	}
	return collectPools(rows)
}

func (r *PoolRepository) ListByCreator(ctx context.Context, creatorID int64) ([]domain.LiquidityPool, error) {
	rows, err := r.db.Query(ctx, `SELECT `+poolColumns+` FROM liquidity_pools WHERE creator_id = $1 ORDER BY created_at DESC`, creatorID)
	if err != nil {
		return nil, err
	}
	return collectPools(rows)
}
