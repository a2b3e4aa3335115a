package domain

import "time"

type TransactionType string

const (
	TxTokenCreation       TransactionType = "token_creation"
	TxPoolCreation        TransactionType = "pool_creation"
	TxTokenClone          TransactionType = "token_clone"
	TxSubscription        TransactionType = "subscription"
	TxSubscriptionRenewal TransactionType = "subscription_renewal"
)

type TransactionStatus string

const (
	TxStatusConfirmed TransactionStatus = "confirmed"
	TxStatusSimulated TransactionStatus = "simulated"
	TxStatusFailed    TransactionStatus = "failed"
)

// Transaction is a recorded platform payment, unique by signature.
type Transaction struct {
	ID             int64                  `db:"id" json:"id"`
	UserID         int64                  `db:"user_id" json:"user_id"`
	Signature      string                 `db:"signature" json:"signature"`
	AmountLamports int64                  `db:"amount_lamports" json:"amount_lamports"`
	Type           TransactionType        `db:"type" json:"type"`
	Status         TransactionStatus      `db:"status" json:"status"`
	PeriodKey      *string                `db:"period_key" json:"period_key,omitempty"`
	Meta           map[string]interface{} `db:"meta" json:"meta,omitempty"`
	CreatedAt      time.Time              `db:"created_at" json:"created_at"`
}

// TransactionFilter narrows admin transaction listings.
type TransactionFilter struct {
	UserID int64
	Type   TransactionType
	Limit  int
	Offset int
}
