package domain

import "time"

// AdminLog is an append-only record of an admin mutation.
type AdminLog struct {
	ID        int64     `db:"id" json:"id"`
	AdminID   int64     `db:"admin_id" json:"admin_id"`
	Action    string    `db:"action" json:"action"`
	TargetID  string    `db:"target_id" json:"target_id"`
	Details   string    `db:"details" json:"details"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

const (
	AdminActionUpdateUser      = "user.update"
	AdminActionUpdateWallet    = "wallet.update"
	AdminActionEarningPaid     = "affiliate.earning_paid"
	AdminActionPostCreate      = "blog.post_create"
	AdminActionPostUpdate      = "blog.post_update"
	AdminActionPostDelete      = "blog.post_delete"
	AdminActionCategoryCreate  = "blog.category_create"
	AdminActionCategoryDelete  = "blog.category_delete"
	AdminActionTagCreate       = "blog.tag_create"
	AdminActionTagDelete       = "blog.tag_delete"
	AdminActionRenewalsTrigger = "subscriptions.renew"
)

// PlatformStats backs the admin dashboard.
type PlatformStats struct {
	Users               int64 `json:"users"`
	Creators            int64 `json:"creators"`
	Wallets             int64 `json:"wallets"`
	Tokens              int64 `json:"tokens"`
	Pools               int64 `json:"pools"`
	Transactions        int64 `json:"transactions"`
	RevenueLamports     int64 `json:"revenue_lamports"`
	ActiveSubscriptions int64 `json:"active_subscriptions"`
	PendingEarnings     int64 `json:"pending_earnings_lamports"`
}

// Page is a generic offset page request.
type Page struct {
	Limit  int
	Offset int
}
