package repository

import (
	"context"

	"creatememe/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const tokenColumns = `id, creator_id, name, symbol, description, image_url, website, twitter, telegram,
	decimals, supply, address, cloned_from, mint_revoked, freeze_revoked, signature, created_at`

type TokenRepository struct {
	db *pgxpool.Pool
}

func NewTokenRepository(db *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{db: db}
}

func scanToken(row pgx.Row) (*domain.Token, error) {
	var t domain.Token
	if err := row.Scan(
		&t.ID, &t.CreatorID, &t.Name, &t.Symbol, &t.Description, &t.ImageURL, &t.Website, &t.Twitter, &t.Telegram,
		&t.Decimals, &t.Supply, &t.Address, &t.ClonedFrom, &t.MintRevoked, &t.FreezeRevoked, &t.Signature, &t.CreatedAt,
	); err != nil {
		return nil, mapErr(err)
	}
	return &t, nil
}

func collectTokens(rows pgx.Rows) ([]domain.Token, error) {
	defer rows.Close()
	var out []domain.Token
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// Create stores t and the payment that bought it in one database
// transaction. A duplicate address or reused signature yields ErrConflict.
func (r *TokenRepository) Create(ctx context.Context, t *domain.Token, payment *domain.Transaction) error {
	var created *domain.Token
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := createTransaction(ctx, tx, payment); err != nil {
			return err
		}
		var err error
		created, err = scanToken(tx.QueryRow(ctx, `
			INSERT INTO tokens (creator_id, name, symbol, description, image_url, website, twitter, telegram,
				decimals, supply, address, cloned_from, signature)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			RETURNING `+tokenColumns,
			t.CreatorID, t.Name, t.Symbol, t.Description, t.ImageURL, t.Website, t.Twitter, t.Telegram,
			t.Decimals, t.Supply, t.Address, t.ClonedFrom, payment.Signature,
		))
		return err
	})
	if err != nil {
		return mapErr(err)
	}
	*t = *created
	return nil
}

func (r *TokenRepository) GetByID(ctx context.Context, id int64) (*domain.Token, error) {
	return scanToken(r.db.QueryRow(ctx, `SELECT `+tokenColumns+` FROM tokens WHERE id = $1`, id))
}

func (r *TokenRepository) GetByAddress(ctx context.Context, address string) (*domain.Token, error) {
	return scanToken(r.db.QueryRow(ctx, `SELECT `+tokenColumns+` FROM tokens WHERE address = $1`, address))
}

func (r *TokenRepository) ListRecent(ctx context.Context, limit int) ([]domain.Token, error) {
	limit, _ = clampPage(limit, 0)
	rows, err := r.db.Query(ctx, `SELECT `+tokenColumns+` FROM tokens ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return collectTokens(rows)
}

func (r *TokenRepository) ListByCreator(ctx context.Context, creatorID int64) ([]domain.Token, error) {
	rows, err := r.db.Query(ctx, `SELECT `+tokenColumns+` FROM tokens WHERE creator_id = $1 ORDER BY created_at DESC, id DESC`, creatorID)
	if err != nil {
		return nil, err
	}
	return collectTokens(rows)
}

// RevokeMint sets the one-way mint_revoked flag. It reports false when the
// flag was already set.
func (r *TokenRepository) RevokeMint(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE tokens SET mint_revoked = TRUE WHERE id = $1 AND NOT mint_revoked`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// RevokeFreeze is RevokeMint for the freeze authority.
func (r *TokenRepository) RevokeFreeze(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE tokens SET freeze_revoked = TRUE WHERE id = $1 AND NOT freeze_revoked`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
