package repository

import (
	"context"
	"fmt"
	"strings"

	"creatememe/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const earningColumns = `id, creator_id, referred_user_id, transaction_id, amount_lamports, status, created_at, paid_at`

type AffiliateRepository struct {
	db *pgxpool.Pool
}

func NewAffiliateRepository(db *pgxpool.Pool) *AffiliateRepository {
	return &AffiliateRepository{db: db}
}

func scanEarning(row pgx.Row, extra ...any) (*domain.AffiliateEarning, error) {
	var e domain.AffiliateEarning
	dest := []any{&e.ID, &e.CreatorID, &e.ReferredUserID, &e.TransactionID, &e.AmountLamports, &e.Status, &e.CreatedAt, &e.PaidAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, mapErr(err)
	}
	return &e, nil
}

// CreateEarning stores a commission; one per source transaction.
func (r *AffiliateRepository) CreateEarning(ctx context.Context, e *domain.AffiliateEarning) error {
	created, err := scanEarning(r.db.QueryRow(ctx, `
		INSERT INTO affiliate_earnings (creator_id, referred_user_id, transaction_id, amount_lamports, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+earningColumns,
		e.CreatorID, e.ReferredUserID, e.TransactionID, e.AmountLamports, domain.EarningPending,
	))
	if err != nil {
		return err
	}
	*e = *created
	return nil
}

// Stats aggregates a creator's referrals and earnings.
func (r *AffiliateRepository) Stats(ctx context.Context, creatorID int64, recent int) (*domain.AffiliateStats, error) {
	var st domain.AffiliateStats
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE referrer_id = $1`, creatorID,
	).Scan(&st.Referrals); err != nil {
		return nil, err
	}

	if err := r.db.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount_lamports) FILTER (WHERE status = 'pending'), 0),
			COALESCE(SUM(amount_lamports) FILTER (WHERE status = 'paid'), 0)
		FROM affiliate_earnings WHERE creator_id = $1`, creatorID,
	).Scan(&st.PendingLamports, &st.PaidLamports); err != nil {
		return nil, err
	}

	list, _, err := r.List(ctx, creatorID, "", domain.Page{Limit: recent})
	if err != nil {
		return nil, err
	}
	st.Recent = list
	return &st, nil
}

// List returns earnings, optionally for one creator and/or status.
func (r *AffiliateRepository) List(ctx context.Context, creatorID int64, status domain.EarningStatus, page domain.Page) ([]domain.AffiliateEarning, int64, error) {
	limit, offset := clampPage(page.Limit, page.Offset)

	var (
		where []string
		args  []any
	)
	if creatorID != 0 {
		args = append(args, creatorID)
		where = append(where, fmt.Sprintf("creator_id = $%d", len(args)))
	}
	if status != "" {
		args = append(args, status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	q := `SELECT ` + earningColumns + `, COUNT(*) OVER() FROM affiliate_earnings`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limit, offset)
	q += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []domain.AffiliateEarning{}
	var total int64
	for rows.Next() {
		e, err := scanEarning(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *e)
	}
	return out, total, rows.Err()
}

// MarkPaid settles a pending earning. Already-paid earnings yield ErrConflict.
func (r *AffiliateRepository) MarkPaid(ctx context.Context, id int64) (*domain.AffiliateEarning, error) {
	var out *domain.AffiliateEarning
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		e, err := scanEarning(tx.QueryRow(ctx,
			`SELECT `+earningColumns+` FROM affiliate_earnings WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}
		if e.Status == domain.EarningPaid {
			return ErrConflict
		}
		out, err = scanEarning(tx.QueryRow(ctx, `
			UPDATE affiliate_earnings SET status = $2, paid_at = NOW()
			WHERE id = $1
			RETURNING `+earningColumns, id, domain.EarningPaid))
		return err
	})
	return out, err
}
