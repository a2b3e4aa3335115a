package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusBanned    UserStatus = "banned"
)

func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusActive, UserStatusSuspended, UserStatusBanned:
		return true
	}
	return false
}

type User struct {
	ID            int64      `db:"id" json:"id"`
	Email         *string    `db:"email" json:"email,omitempty"`
	Name          string     `db:"name" json:"name"`
	Image         string     `db:"image" json:"image,omitempty"`
	Role          Role       `db:"role" json:"role"`
	Status        UserStatus `db:"status" json:"status"`
	WalletAddress *string    `db:"wallet_address" json:"wallet_address,omitempty"`

	// Creator / affiliate program.
	IsCreator      bool            `db:"is_creator" json:"is_creator"`
	PromoCode      *string         `db:"promo_code" json:"promo_code,omitempty"`
	CommissionRate decimal.Decimal `db:"commission_rate" json:"commission_rate"`
	ReferrerID     *int64          `db:"referrer_id" json:"referrer_id,omitempty"`

	// Subscription snapshot mirrored from the subscriptions table.
	IsAutoPay          bool               `db:"is_auto_pay" json:"is_auto_pay"`
	PlanType           string             `db:"plan_type" json:"plan_type,omitempty"`
	SubscriptionStatus SubscriptionStatus `db:"subscription_status" json:"subscription_status"`
	LastPayment        *time.Time         `db:"last_payment" json:"last_payment,omitempty"`
	NextPayment        *time.Time         `db:"next_payment" json:"next_payment,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

func (u *User) Active() bool {
	return u != nil && u.Status == UserStatusActive
}

// UserFilter narrows admin user listings.
type UserFilter struct {
	Role   Role
	Status UserStatus
	Search string
	Limit  int
	Offset int
}

// UserPatch carries optional admin edits; nil fields are left untouched.
type UserPatch struct {
	Role           *Role
	Status         *UserStatus
	IsCreator      *bool
	CommissionRate *decimal.Decimal
	PromoCode      *string
}
