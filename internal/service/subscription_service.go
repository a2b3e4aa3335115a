package service

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"creatememe/internal/apperr"
	"creatememe/internal/domain"
	"creatememe/internal/logger"
	"creatememe/internal/repository"
	"creatememe/internal/solana"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed plans.yaml
var defaultPlans []byte

const renewalBatch = 500

type planFile struct {
	Plans []struct {
		ID           string   `yaml:"id"`
		Name         string   `yaml:"name"`
		PriceSOL     string   `yaml:"price_sol"`
		IntervalDays int      `yaml:"interval_days"`
		Features     []string `yaml:"features"`
	} `yaml:"plans"`
}

// LoadPlans parses a YAML plan catalog.
func LoadPlans(data []byte) ([]domain.Plan, error) {
	var f planFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse plans: %w", err)
	}
	out := make([]domain.Plan, 0, len(f.Plans))
	seen := map[string]bool{}
	for _, p := range f.Plans {
		if p.ID == "" || seen[p.ID] {
			return nil, fmt.Errorf("plan %q: missing or duplicate id", p.ID)
		}
		price, err := decimal.NewFromString(p.PriceSOL)
		if err != nil || !price.IsPositive() {
			return nil, fmt.Errorf("plan %q: invalid price %q", p.ID, p.PriceSOL)
		}
		if p.IntervalDays <= 0 {
			return nil, fmt.Errorf("plan %q: interval_days must be positive", p.ID)
		}
		seen[p.ID] = true
		out = append(out, domain.Plan{
			ID:           p.ID,
			Name:         p.Name,
			PriceSOL:     price,
			IntervalDays: p.IntervalDays,
			Features:     p.Features,
		})
	}
	return out, nil
}

// DefaultPlans is the embedded catalog.
func DefaultPlans() []domain.Plan {
	plans, err := LoadPlans(defaultPlans)
	if err != nil {
		panic(err)
	}
	return plans
}

type SubscriptionService struct {
	subs        SubscriptionStore
	payments    PaymentChecker
	commissions CommissionRecorder
	plans       []domain.Plan
	now         func() time.Time
	log         *slog.Logger
}

func NewSubscriptionService(subs SubscriptionStore, payments PaymentChecker, commissions CommissionRecorder, plans []domain.Plan) *SubscriptionService {
	return &SubscriptionService{
		subs:        subs,
		payments:    payments,
		commissions: commissions,
		plans:       plans,
		now:         time.Now,
		log:         logger.With("component", "subscriptions"),
	}
}

func (s *SubscriptionService) Plans() []domain.Plan {
	return s.plans
}

func (s *SubscriptionService) Plan(id string) (domain.Plan, bool) {
	for _, p := range s.plans {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Plan{}, false
}

type SubscribeInput struct {
	PlanID        string
	WalletAddress string
	Signature     string
	AutoPay       bool
}

// Subscribe verifies the first payment of a plan and activates it. The
// payment is recorded only if the activation is.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID int64, in SubscribeInput) (*domain.Subscription, error) {
	plan, ok := s.Plan(in.PlanID)
	if !ok {
		return nil, apperr.Validation("unknown plan")
	}
	if err := solana.ValidateAddress(in.WalletAddress); err != nil {
		return nil, apperr.Validation("invalid wallet address")
	}

	payment, err := s.payments.Check(ctx, userID, PaymentRequest{
		Signature:        in.Signature,
		Type:             domain.TxSubscription,
		ExpectedLamports: solana.SOLToLamports(plan.PriceSOL),
		Payer:            in.WalletAddress,
		Meta:             map[string]interface{}{"plan": plan.ID},
	})
	if err != nil {
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Second)
	next := now.Add(plan.Interval())
	sub, err := s.subs.Activate(ctx, domain.Subscription{
		UserID:        userID,
		WalletAddress: in.WalletAddress,
		PlanType:      plan.ID,
		Status:        domain.SubscriptionActive,
		LastPayment:   &now,
		NextPayment:   &next,
	}, in.AutoPay, payment)
	if err != nil {
		if paymentReused(err) {
			return nil, apperr.Conflict("transaction already recorded")
		}
		return nil, storeErr(err, "user")
	}
	s.payments.Settle(ctx, payment)

	s.log.Info("subscription activated", "user_id", userID, "plan", plan.ID, "auto_pay", in.AutoPay)
	return sub, nil
}

func (s *SubscriptionService) Get(ctx context.Context, userID int64) (*domain.Subscription, error) {
	sub, err := s.subs.Get(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "subscription")
	}
	return sub, nil
}

// SetAutoPay toggles renewals. Enabling requires an active subscription.
func (s *SubscriptionService) SetAutoPay(ctx context.Context, userID int64, enabled bool) error {
	if enabled {
		sub, err := s.subs.Get(ctx, userID)
		if err != nil {
			return storeErr(err, "subscription")
		}
		if sub.Status != domain.SubscriptionActive {
			return apperr.Validation("subscription is not active")
		}
	}
	return storeErr(s.subs.SetAutoPay(ctx, userID, enabled), "user")
}

func (s *SubscriptionService) Cancel(ctx context.Context, userID int64) error {
	if err := s.subs.Cancel(ctx, userID); err != nil {
		return storeErr(err, "subscription")
	}
	s.log.Info("subscription cancelled", "user_id", userID)
	return nil
}

// PeriodKey identifies one billing cycle of a user.
func PeriodKey(userID int64, due time.Time) string {
	return fmt.Sprintf("%d:%s", userID, due.UTC().Format("2006-01-02"))
}

// RenewDue charges every auto-pay user whose next payment is due at now.
// Each cycle is keyed by PeriodKey, so repeated runs renew a user once.
func (s *SubscriptionService) RenewDue(ctx context.Context, now time.Time) (domain.RenewalReport, error) {
	var report domain.RenewalReport

	due, err := s.subs.ListDue(ctx, now, renewalBatch)
	if err != nil {
		return report, apperr.Internal(err)
	}
	report.Scanned = len(due)

	for _, d := range due {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		plan, ok := s.Plan(d.PlanType)
		if !ok {
			report.Failed++
			SubscriptionRenewals.WithLabelValues("failed").Inc()
			s.log.Error("renewal for unknown plan", "user_id", d.UserID, "plan", d.PlanType)
			continue
		}

		tx, err := s.subs.Renew(ctx, domain.Renewal{
			UserID:         d.UserID,
			PeriodKey:      PeriodKey(d.UserID, d.NextPayment),
			Signature:      "sim_" + uuid.NewString(),
			AmountLamports: solana.SOLToLamports(plan.PriceSOL),
			DueAt:          d.NextPayment,
			NextAt:         d.NextPayment.Add(plan.Interval()),
			Meta: map[string]interface{}{
				"plan":      plan.ID,
				"wallet":    d.WalletAddress,
				"simulated": true,
			},
		})
		switch {
		case errors.Is(err, repository.ErrConflict):
			report.Skipped++
			SubscriptionRenewals.WithLabelValues("skipped").Inc()
			continue
		case err != nil:
			report.Failed++
			SubscriptionRenewals.WithLabelValues("failed").Inc()
			s.log.Error("renewal failed", "user_id", d.UserID, "error", err)
			continue
		}

		report.Renewed++
		SubscriptionRenewals.WithLabelValues("renewed").Inc()
		if s.commissions != nil {
			if err := s.commissions.RecordCommission(ctx, tx); err != nil {
				s.log.Error("record commission failed", "error", err, "transaction_id", tx.ID)
			}
		}
	}

	s.log.Info("renewal run finished",
		"scanned", report.Scanned,
		"renewed", report.Renewed,
		"skipped", report.Skipped,
		"failed", report.Failed,
	)
	return report, nil
}

func (s *SubscriptionService) List(ctx context.Context, status domain.SubscriptionStatus, page domain.Page) ([]domain.Subscription, int64, error) {
	out, total, err := s.subs.List(ctx, status, page)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return out, total, nil
}
