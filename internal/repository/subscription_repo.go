package repository

import (
	"context"
	"fmt"
	"time"

	"creatememe/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const subscriptionColumns = `id, user_id, wallet_address, plan_type, status, last_payment, next_payment, created_at, updated_at`

type SubscriptionRepository struct {
	db *pgxpool.Pool
}

func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func scanSubscription(row pgx.Row, extra ...any) (*domain.Subscription, error) {
	var s domain.Subscription
	dest := []any{&s.ID, &s.UserID, &s.WalletAddress, &s.PlanType, &s.Status, &s.LastPayment, &s.NextPayment, &s.CreatedAt, &s.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, mapErr(err)
	}
	return &s, nil
}

func (r *SubscriptionRepository) Get(ctx context.Context, userID int64) (*domain.Subscription, error) {
	return scanSubscription(r.db.QueryRow(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE user_id = $1`, userID))
}

// Activate records the first payment, upserts the subscription row and
// mirrors it onto the user, all or nothing.
func (r *SubscriptionRepository) Activate(ctx context.Context, s domain.Subscription, autoPay bool, payment *domain.Transaction) (*domain.Subscription, error) {
	var out *domain.Subscription
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := createTransaction(ctx, tx, payment); err != nil {
			return err
		}
		saved, err := scanSubscription(tx.QueryRow(ctx, `
			INSERT INTO subscriptions (user_id, wallet_address, plan_type, status, last_payment, next_payment)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (user_id) DO UPDATE SET
				wallet_address = EXCLUDED.wallet_address,
				plan_type = EXCLUDED.plan_type,
				status = EXCLUDED.status,
				last_payment = EXCLUDED.last_payment,
				next_payment = EXCLUDED.next_payment,
				updated_at = NOW()
			RETURNING `+subscriptionColumns,
			s.UserID, s.WalletAddress, s.PlanType, s.Status, s.LastPayment, s.NextPayment,
		))
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `
			UPDATE users SET is_auto_pay = $2, plan_type = $3, subscription_status = $4,
				last_payment = $5, next_payment = $6, updated_at = NOW()
			WHERE id = $1`,
			s.UserID, autoPay, s.PlanType, s.Status, s.LastPayment, s.NextPayment)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		out = saved
		return nil
	})
	return out, mapErr(err)
}

func (r *SubscriptionRepository) SetAutoPay(ctx context.Context, userID int64, enabled bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET is_auto_pay = $2, updated_at = NOW() WHERE id = $1`, userID, enabled)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Cancel stops renewals and marks the subscription cancelled.
func (r *SubscriptionRepository) Cancel(ctx context.Context, userID int64) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE subscriptions SET status = $2, updated_at = NOW() WHERE user_id = $1`,
			userID, domain.SubscriptionCancelled)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		_, err = tx.Exec(ctx,
			`UPDATE users SET subscription_status = $2, is_auto_pay = FALSE, updated_at = NOW() WHERE id = $1`,
			userID, domain.SubscriptionCancelled)
		return err
	})
}

// ListDue returns auto-pay users whose next payment is at or before now.
func (r *SubscriptionRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]domain.DueUser, error) {
	if limit <= 0 {
		limit = 500
	}
	rows, err := r.db.Query(ctx, `
		SELECT u.id, u.plan_type, COALESCE(NULLIF(s.wallet_address, ''), u.wallet_address, ''), u.next_payment
		FROM users u
		LEFT JOIN subscriptions s ON s.user_id = u.id
		WHERE u.is_auto_pay
		  AND u.subscription_status = $1
		  AND u.status = 'active'
		  AND u.next_payment IS NOT NULL
		  AND u.next_payment <= $2
		ORDER BY u.next_payment ASC, u.id ASC
		LIMIT $3`,
		domain.SubscriptionActive, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DueUser
	for rows.Next() {
		var d domain.DueUser
		if err := rows.Scan(&d.UserID, &d.PlanType, &d.WalletAddress, &d.NextPayment); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Renew records the simulated charge for one billing cycle and advances the
// user's next payment, atomically. ErrConflict means the cycle was already
// renewed (period key taken) or next_payment moved since it was read.
func (r *SubscriptionRepository) Renew(ctx context.Context, rn domain.Renewal) (*domain.Transaction, error) {
	var out *domain.Transaction
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		periodKey := rn.PeriodKey
		t := &domain.Transaction{
			UserID:         rn.UserID,
			Signature:      rn.Signature,
			AmountLamports: rn.AmountLamports,
			Type:           domain.TxSubscriptionRenewal,
			Status:         domain.TxStatusSimulated,
			PeriodKey:      &periodKey,
			Meta:           rn.Meta,
		}
		if err := createTransaction(ctx, tx, t); err != nil {
			return err
		}

		now := time.Now()
		tag, err := tx.Exec(ctx, `
			UPDATE users SET last_payment = $2, next_payment = $3, updated_at = NOW()
			WHERE id = $1 AND next_payment = $4 AND is_auto_pay`,
			rn.UserID, now, rn.NextAt, rn.DueAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() != 1 {
			return fmt.Errorf("%w: next_payment moved", ErrConflict)
		}

		if _, err := tx.Exec(ctx, `
			UPDATE subscriptions SET last_payment = $2, next_payment = $3, status = $4, updated_at = NOW()
			WHERE user_id = $1`,
			rn.UserID, now, rn.NextAt, domain.SubscriptionActive); err != nil {
			return err
		}
		out = t
		return nil
	})
	return out, mapErr(err)
}

// List is the admin view over subscriptions.
func (r *SubscriptionRepository) List(ctx context.Context, status domain.SubscriptionStatus, page domain.Page) ([]domain.Subscription, int64, error) {
	limit, offset := clampPage(page.Limit, page.Offset)

	q := `SELECT ` + subscriptionColumns + `, COUNT(*) OVER() FROM subscriptions`
	args := []any{}
	if status != "" {
		args = append(args, status)
		q += " WHERE status = $1"
	}
	args = append(args, limit, offset)
	q += fmt.Sprintf(" ORDER BY updated_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var (
		out   []domain.Subscription
		total int64
	)
	for rows.Next() {
		s, err := scanSubscription(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *s)
	}
	return out, total, rows.Err()
}
