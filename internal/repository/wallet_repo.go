package repository

import (
	"context"
	"fmt"

	"creatememe/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const walletColumns = `id, user_id, address, status, label, balance_lamports, is_primary, linked_at, updated_at`

type WalletRepository struct {
	db *pgxpool.Pool
}

func NewWalletRepository(db *pgxpool.Pool) *WalletRepository {
	return &WalletRepository{db: db}
}

func scanWallet(row pgx.Row, extra ...any) (*domain.Wallet, error) {
	var w domain.Wallet
	dest := []any{&w.ID, &w.UserID, &w.Address, &w.Status, &w.Label, &w.BalanceLamports, &w.IsPrimary, &w.LinkedAt, &w.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, mapErr(err)
	}
	return &w, nil
}

func (r *WalletRepository) GetByID(ctx context.Context, id int64) (*domain.Wallet, error) {
	return scanWallet(r.db.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE id = $1`, id))
}

func (r *WalletRepository) GetByAddress(ctx context.Context, address string) (*domain.Wallet, error) {
	return scanWallet(r.db.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE address = $1`, address))
}

// ListByUser returns the user's wallets, primary first.
func (r *WalletRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Wallet, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+walletColumns+` FROM wallets
		WHERE user_id = $1
		ORDER BY is_primary DESC, linked_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

// Create links a new wallet. The first wallet of a user becomes primary.
// A taken address yields ErrConflict.
func (r *WalletRepository) Create(ctx context.Context, w *domain.Wallet) error {
	if w.Status == "" {
		w.Status = domain.WalletStatusActive
	}
	created, err := scanWallet(r.db.QueryRow(ctx, `
		INSERT INTO wallets (user_id, address, status, label, is_primary)
		VALUES ($1, $2, $3, $4, NOT EXISTS (SELECT 1 FROM wallets WHERE user_id = $1))
		RETURNING `+walletColumns,
		w.UserID, w.Address, w.Status, w.Label,
	))
	if err != nil {
		return err
	}
	*w = *created
	return nil
}

// SetPrimary makes walletID the only primary wallet of userID.
func (r *WalletRepository) SetPrimary(ctx context.Context, userID, walletID int64) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE wallets SET is_primary = (id = $2), updated_at = NOW() WHERE user_id = $1`,
			userID, walletID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		var addr string
		if err := tx.QueryRow(ctx,
			`SELECT address FROM wallets WHERE id = $1 AND user_id = $2`, walletID, userID,
		).Scan(&addr); err != nil {
			return mapErr(err)
		}
		_, err = tx.Exec(ctx,
			`UPDATE users SET wallet_address = $1, updated_at = NOW() WHERE id = $2`, addr, userID)
		return mapErr(err)
	})
}

// Update changes status and/or label.
func (r *WalletRepository) Update(ctx context.Context, id int64, status *domain.WalletStatus, label *string) (*domain.Wallet, error) {
	return scanWallet(r.db.QueryRow(ctx, `
		UPDATE wallets SET
			status = COALESCE($2, status),
			label = COALESCE($3, label),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+walletColumns,
		id, status, label,
	))
}

func (r *WalletRepository) UpdateBalance(ctx context.Context, id, lamports int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE wallets SET balance_lamports = $2, updated_at = NOW() WHERE id = $1`, id, lamports)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List is the admin view over all wallets.
func (r *WalletRepository) List(ctx context.Context, status domain.WalletStatus, page domain.Page) ([]domain.Wallet, int64, error) {
	limit, offset := clampPage(page.Limit, page.Offset)

	q := `SELECT ` + walletColumns + `, COUNT(*) OVER() FROM wallets`
	args := []any{}
	if status != "" {
		args = append(args, status)
		q += " WHERE status = $1"
	}
	args = append(args, limit, offset)
	q += fmt.Sprintf(" ORDER BY linked_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var (
		out   []domain.Wallet
		total int64
	)
	for rows.Next() {
		w, err := scanWallet(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *w)
	}
	return out, total, rows.Err()
}
