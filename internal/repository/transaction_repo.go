package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"creatememe/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const txColumns = `id, user_id, signature, amount_lamports, type, status, period_key, meta, created_at`

type TransactionRepository struct {
	db *pgxpool.Pool
}

func NewTransactionRepository(db *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func scanTransaction(row pgx.Row, extra ...any) (*domain.Transaction, error) {
	var (
		t    domain.Transaction
		meta []byte
	)
	dest := []any{&t.ID, &t.UserID, &t.Signature, &t.AmountLamports, &t.Type, &t.Status, &t.PeriodKey, &meta, &t.CreatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, mapErr(err)
	}
	if len(meta) > 0 {
		_ = json.Unmarshal(meta, &t.Meta)
	}
	return &t, nil
}

// Create records a payment; a reused signature or period key yields ErrConflict.
func (r *TransactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	return createTransaction(ctx, r.db, t)
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func createTransaction(ctx context.Context, q queryRower, t *domain.Transaction) error {
	metaJSON, err := json.Marshal(t.Meta)
	if err != nil || t.Meta == nil {
		metaJSON = []byte("{}")
	}
	created, err := scanTransaction(q.QueryRow(ctx, `
		INSERT INTO transactions (user_id, signature, amount_lamports, type, status, period_key, meta)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+txColumns,
		t.UserID, t.Signature, t.AmountLamports, t.Type, t.Status, t.PeriodKey, metaJSON,
	))
	if err != nil {
		return err
	}
	*t = *created
	return nil
}

func (r *TransactionRepository) GetBySignature(ctx context.Context, signature string) (*domain.Transaction, error) {
	return scanTransaction(r.db.QueryRow(ctx, `SELECT `+txColumns+` FROM transactions WHERE signature = $1`, signature))
}

// List returns a filtered page of transactions and the total match count.
func (r *TransactionRepository) List(ctx context.Context, f domain.TransactionFilter) ([]domain.Transaction, int64, error) {
	limit, offset := clampPage(f.Limit, f.Offset)

	var (
		where []string
		args  []any
	)
	if f.UserID != 0 {
		args = append(args, f.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if f.Type != "" {
		args = append(args, f.Type)
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}

	q := `SELECT ` + txColumns + `, COUNT(*) OVER() FROM transactions`
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
		out   []domain.Transaction
		total int64
	)
	for rows.Next() {
		t, err := scanTransaction(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *t)
	}
	return out, total, rows.Err()
}
