package repository

import (
	"context"
	"fmt"
	"strings"

	"creatememe/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const userColumns = `id, email, name, image, role, status, wallet_address,
	is_creator, promo_code, commission_rate::text, referrer_id,
	is_auto_pay, plan_type, subscription_status, last_payment, next_payment,
	created_at, updated_at`

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row, extra ...any) (*domain.User, error) {
	var (
		u    domain.User
		rate string
	)
	dest := []any{
		&u.ID, &u.Email, &u.Name, &u.Image, &u.Role, &u.Status, &u.WalletAddress,
		&u.IsCreator, &u.PromoCode, &rate, &u.ReferrerID,
		&u.IsAutoPay, &u.PlanType, &u.SubscriptionStatus, &u.LastPayment, &u.NextPayment,
		&u.CreatedAt, &u.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, mapErr(err)
	}
	d, err := decimal.NewFromString(rate)
	if err != nil {
		return nil, fmt.Errorf("commission_rate %q: %w", rate, err)
	}
	u.CommissionRate = d
	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email)))
}

func (r *UserRepository) GetByWallet(ctx context.Context, address string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE wallet_address = $1`, address))
}

func (r *UserRepository) GetByPromoCode(ctx context.Context, code string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE promo_code = $1`, strings.ToUpper(code)))
}

// UpsertByEmail creates or refreshes a user keyed by email. The role is only
// ever raised to admin here, never lowered. created reports an insert.
func (r *UserRepository) UpsertByEmail(ctx context.Context, email, name, image string, role domain.Role) (*domain.User, bool, error) {
	var created bool
	u, err := scanUser(r.db.QueryRow(ctx, `
		INSERT INTO users (email, name, image, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE SET
			name = CASE WHEN users.name = '' THEN EXCLUDED.name ELSE users.name END,
			image = CASE WHEN EXCLUDED.image <> '' THEN EXCLUDED.image ELSE users.image END,
			role = CASE WHEN EXCLUDED.role = 'admin' THEN 'admin' ELSE users.role END,
			updated_at = NOW()
		RETURNING `+userColumns+`, (xmax = 0)`,
		strings.ToLower(email), name, image, role,
	), &created)
	return u, created, err
}

// UpsertByWallet is UpsertByEmail keyed by the user's primary wallet address.
func (r *UserRepository) UpsertByWallet(ctx context.Context, address string, role domain.Role) (*domain.User, bool, error) {
	var created bool
	u, err := scanUser(r.db.QueryRow(ctx, `
		INSERT INTO users (wallet_address, name, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (wallet_address) DO UPDATE SET
			role = CASE WHEN EXCLUDED.role = 'admin' THEN 'admin' ELSE users.role END,
			updated_at = NOW()
		RETURNING `+userColumns+`, (xmax = 0)`,
		address, shortAddress(address), role,
	), &created)
	return u, created, err
}

// SetReferrer stores referrerID on userID only if no referrer is set yet.
// It reports whether the row changed.
func (r *UserRepository) SetReferrer(ctx context.Context, userID, referrerID int64) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET referrer_id = $1, updated_at = NOW()
		 WHERE id = $2 AND referrer_id IS NULL AND id <> $1`,
		referrerID, userID,
	)
	if err != nil {
		return false, mapErr(err)
	}
	return tag.RowsAffected() == 1, nil
}

// SetWalletAddressIfEmpty fills users.wallet_address for users that have none.
func (r *UserRepository) SetWalletAddressIfEmpty(ctx context.Context, userID int64, address string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET wallet_address = $1, updated_at = NOW()
		 WHERE id = $2 AND wallet_address IS NULL`,
		address, userID,
	)
	return mapErr(err)
}

// MakeCreator flags a user as creator with the given promo code.
func (r *UserRepository) MakeCreator(ctx context.Context, userID int64, promoCode string, rate decimal.Decimal) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, `
		UPDATE users SET is_creator = TRUE, promo_code = $1, commission_rate = $2::numeric, updated_at = NOW()
		WHERE id = $3
		RETURNING `+userColumns,
		strings.ToUpper(promoCode), rate.String(), userID,
	))
}

// List returns a filtered page of users and the total match count.
func (r *UserRepository) List(ctx context.Context, f domain.UserFilter) ([]domain.User, int64, error) {
	limit, offset := clampPage(f.Limit, f.Offset)

	var (
		where []string
		args  []any
	)
	if f.Role != "" {
		args = append(args, f.Role)
		where = append(where, fmt.Sprintf("role = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+strings.ToLower(s)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(LOWER(COALESCE(email, '')) LIKE $%d OR LOWER(name) LIKE $%d OR COALESCE(wallet_address, '') LIKE $%d)", n, n, n))
	}

	q := `SELECT ` + userColumns + `, COUNT(*) OVER() FROM users`
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

	var (
		out   []domain.User
		total int64
	)
	for rows.Next() {
		u, err := scanUser(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *u)
	}
	return out, total, rows.Err()
}

// Update applies the non-nil fields of p.
func (r *UserRepository) Update(ctx context.Context, id int64, p domain.UserPatch) (*domain.User, error) {
	var (
		sets []string
		args []any
	)
	add := func(expr string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf(expr, len(args)))
	}
	if p.Role != nil {
		add("role = $%d", *p.Role)
	}
	if p.Status != nil {
		add("status = $%d", *p.Status)
	}
	if p.IsCreator != nil {
		add("is_creator = $%d", *p.IsCreator)
	}
	if p.CommissionRate != nil {
		add("commission_rate = $%d::numeric", p.CommissionRate.String())
	}
	if p.PromoCode != nil {
		if *p.PromoCode == "" {
			add("promo_code = NULLIF($%d, '')", "")
		} else {
			add("promo_code = $%d", strings.ToUpper(*p.PromoCode))
		}
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	args = append(args, id)
	q := `UPDATE users SET ` + strings.Join(sets, ", ") + `, updated_at = NOW()
		WHERE id = $` + fmt.Sprint(len(args)) + ` RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(ctx, q, args...))
}

func shortAddress(a string) string {
	if len(a) <= 10 {
		return a
	}
	return a[:4] + "..." + a[len(a)-4:]
}
