package domain

import "time"

type WalletStatus string

const (
	WalletStatusActive       WalletStatus = "active"
	WalletStatusFlagged      WalletStatus = "flagged"
	WalletStatusBanned       WalletStatus = "banned"
	WalletStatusDisconnected WalletStatus = "disconnected"
)

func (s WalletStatus) Valid() bool {
	switch s {
	case WalletStatusActive, WalletStatusFlagged, WalletStatusBanned, WalletStatusDisconnected:
		return true
	}
	return false
}

// Wallet is a Solana address linked to a user.
type Wallet struct {
	ID              int64        `db:"id" json:"id"`
	UserID          int64        `db:"user_id" json:"user_id"`
	Address         string       `db:"address" json:"address"`
	Status          WalletStatus `db:"status" json:"status"`
	Label           string       `db:"label" json:"label"`
	BalanceLamports int64        `db:"balance_lamports" json:"balance_lamports"`
	IsPrimary       bool         `db:"is_primary" json:"is_primary"`
	LinkedAt        time.Time    `db:"linked_at" json:"linked_at"`
	UpdatedAt       time.Time    `db:"updated_at" json:"updated_at"`
}
