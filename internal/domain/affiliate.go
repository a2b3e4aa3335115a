package domain

import "time"

type EarningStatus string

const (
	EarningPending EarningStatus = "pending"
	EarningPaid    EarningStatus = "paid"
)

// AffiliateEarning is a creator's commission on one referred transaction.
type AffiliateEarning struct {
	ID             int64         `db:"id" json:"id"`
	CreatorID      int64         `db:"creator_id" json:"creator_id"`
	ReferredUserID int64         `db:"referred_user_id" json:"referred_user_id"`
	TransactionID  int64         `db:"transaction_id" json:"transaction_id"`
	AmountLamports int64         `db:"amount_lamports" json:"amount_lamports"`
	Status         EarningStatus `db:"status" json:"status"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	PaidAt         *time.Time    `db:"paid_at" json:"paid_at,omitempty"`
}

type AffiliateStats struct {
	Referrals       int64              `json:"referrals"`
	PendingLamports int64              `json:"pending_lamports"`
	PaidLamports    int64              `json:"paid_lamports"`
	Recent          []AffiliateEarning `json:"recent"`
}
