package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type SubscriptionStatus string

const (
	SubscriptionNone      SubscriptionStatus = "none"
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionPastDue   SubscriptionStatus = "past_due"
)

type Subscription struct {
	ID            int64              `db:"id" json:"id"`
	UserID        int64              `db:"user_id" json:"user_id"`
	WalletAddress string             `db:"wallet_address" json:"wallet_address"`
	PlanType      string             `db:"plan_type" json:"plan_type"`
	Status        SubscriptionStatus `db:"status" json:"status"`
	LastPayment   *time.Time         `db:"last_payment" json:"last_payment,omitempty"`
	NextPayment   *time.Time         `db:"next_payment" json:"next_payment,omitempty"`
	CreatedAt     time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `db:"updated_at" json:"updated_at"`
}

// Plan is an entry of the subscription catalog.
type Plan struct {
	ID           string          `yaml:"id" json:"id"`
	Name         string          `yaml:"name" json:"name"`
	PriceSOL     decimal.Decimal `yaml:"-" json:"price_sol"`
	IntervalDays int             `yaml:"interval_days" json:"interval_days"`
	Features     []string        `yaml:"features" json:"features"`
}

// Interval returns the billing cycle length.
func (p Plan) Interval() time.Duration {
	return time.Duration(p.IntervalDays) * 24 * time.Hour
}

// DueUser is a user whose auto-pay renewal is due.
type DueUser struct {
	UserID        int64
	PlanType      string
	WalletAddress string
	NextPayment   time.Time
}

// RenewalReport summarises one renewal run.
type RenewalReport struct {
	Scanned int `json:"scanned"`
	Renewed int `json:"renewed"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Renewal is one simulated auto-pay charge. PeriodKey identifies the
// billing cycle and is unique across transactions.
type Renewal struct {
	UserID         int64
	PeriodKey      string
	Signature      string
	AmountLamports int64
	DueAt          time.Time
	NextAt         time.Time
	Meta           map[string]interface{}
}
