package domain

import "time"

// Token is an SPL token created through the platform.
type Token struct {
	ID            int64     `db:"id" json:"id"`
	CreatorID     int64     `db:"creator_id" json:"creator_id"`
	Name          string    `db:"name" json:"name"`
	Symbol        string    `db:"symbol" json:"symbol"`
	Description   string    `db:"description" json:"description,omitempty"`
	ImageURL      string    `db:"image_url" json:"image_url,omitempty"`
	Website       string    `db:"website" json:"website,omitempty"`
	Twitter       string    `db:"twitter" json:"twitter,omitempty"`
	Telegram      string    `db:"telegram" json:"telegram,omitempty"`
	Decimals      int16     `db:"decimals" json:"decimals"`
	Supply        int64     `db:"supply" json:"supply"`
	Address       string    `db:"address" json:"address"`
	ClonedFrom    *string   `db:"cloned_from" json:"cloned_from,omitempty"`
	MintRevoked   bool      `db:"mint_revoked" json:"mint_revoked"`
	FreezeRevoked bool      `db:"freeze_revoked" json:"freeze_revoked"`
	Signature     string    `db:"signature" json:"signature"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

type PoolStatus string

const (
	PoolStatusPending PoolStatus = "pending"
	PoolStatusActive  PoolStatus = "active"
	PoolStatusRugged  PoolStatus = "rugged"
)

// LiquidityPool pairs a platform token with a quote asset.
type LiquidityPool struct {
	ID                  int64      `db:"id" json:"id"`
	TokenID             int64      `db:"token_id" json:"token_id"`
	CreatorID           int64      `db:"creator_id" json:"creator_id"`
	QuoteMint           string     `db:"quote_mint" json:"quote_mint"`
	BaseAmount          int64      `db:"base_amount" json:"base_amount"`
	QuoteAmountLamports int64      `db:"quote_amount_lamports" json:"quote_amount_lamports"`
	Status              PoolStatus `db:"status" json:"status"`
	PoolAddress         *string    `db:"pool_address" json:"pool_address,omitempty"`
	Signature           string     `db:"signature" json:"signature"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}
