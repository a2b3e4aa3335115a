package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"creatememe/internal/apperr"
	"creatememe/internal/domain"
	"creatememe/internal/logger"
	"creatememe/internal/repository"

	"github.com/shopspring/decimal"
)

var promoCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,32}$`)

// ValidPromoCode reports whether code may be used as a creator promo code.
func ValidPromoCode(code string) bool {
	return promoCodePattern.MatchString(code)
}

const recentEarnings = 10

type AffiliateService struct {
	users       UserStore
	earnings    AffiliateStore
	defaultRate decimal.Decimal
	log         *slog.Logger
}

func NewAffiliateService(users UserStore, earnings AffiliateStore, defaultRate decimal.Decimal) *AffiliateService {
	return &AffiliateService{
		users:       users,
		earnings:    earnings,
		defaultRate: defaultRate,
		log:         logger.With("component", "affiliate"),
	}
}

// AttributeReferral stores the creator behind code as userID's referrer.
// The referrer is set at most once.
func (s *AffiliateService) AttributeReferral(ctx context.Context, userID int64, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return apperr.Validation("referral code is required")
	}

	referrer, err := s.users.GetByPromoCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.Validation("invalid referral code")
	}
	if err != nil {
		return apperr.Internal(err)
	}
	if !referrer.IsCreator || !referrer.Active() {
		return apperr.Validation("invalid referral code")
	}
	if referrer.ID == userID {
		return apperr.Validation("cannot use your own referral code")
	}

	changed, err := s.users.SetReferrer(ctx, userID, referrer.ID)
	if err != nil {
		return apperr.Internal(err)
	}
	if !changed {
		return apperr.Conflict("referrer already set")
	}

	s.log.Info("referral attributed", "user_id", userID, "referrer_id", referrer.ID)
	return nil
}

// BecomeCreator enrols userID in the creator program under promoCode.
func (s *AffiliateService) BecomeCreator(ctx context.Context, userID int64, promoCode string) (*domain.User, error) {
	promoCode = strings.TrimSpace(promoCode)
	if !ValidPromoCode(promoCode) {
		return nil, apperr.Validation("promo code must be 3-32 letters, digits, '-' or '_'")
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "user")
	}
	if u.IsCreator {
		return nil, apperr.Conflict("already a creator")
	}

	rate := s.defaultRate
	if u.CommissionRate.IsPositive() {
		rate = u.CommissionRate
	}

	u, err = s.users.MakeCreator(ctx, userID, promoCode, rate)
	if repository.ConflictOn(err, "promo_code") {
		return nil, apperr.Conflict("promo code already taken")
	}
	if err != nil {
		return nil, storeErr(err, "user")
	}
	return u, nil
}

// Commission is amount * rate rounded down to whole lamports.
func Commission(amountLamports int64, rate decimal.Decimal) int64 {
	if amountLamports <= 0 || !rate.IsPositive() {
		return 0
	}
	return decimal.NewFromInt(amountLamports).Mul(rate).Floor().IntPart()
}

// RecordCommission credits the payer's referrer, if they are a creator,
// with a pending earning for tx.
func (s *AffiliateService) RecordCommission(ctx context.Context, tx *domain.Transaction) error {
	payer, err := s.users.GetByID(ctx, tx.UserID)
	if err != nil {
		return err
	}
	if payer.ReferrerID == nil {
		return nil
	}

	referrer, err := s.users.GetByID(ctx, *payer.ReferrerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !referrer.IsCreator {
		return nil
	}

	amount := Commission(tx.AmountLamports, referrer.CommissionRate)
	if amount == 0 {
		return nil
	}

	e := &domain.AffiliateEarning{
		CreatorID:      referrer.ID,
		ReferredUserID: payer.ID,
		TransactionID:  tx.ID,
		AmountLamports: amount,
	}
	if err := s.earnings.CreateEarning(ctx, e); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil
		}
		return err
	}

	s.log.Info("commission recorded",
		"creator_id", referrer.ID,
		"transaction_id", tx.ID,
		"lamports", amount,
	)
	return nil
}

func (s *AffiliateService) Stats(ctx context.Context, creatorID int64) (*domain.AffiliateStats, error) {
	u, err := s.users.GetByID(ctx, creatorID)
	if err != nil {
		return nil, storeErr(err, "user")
	}
	if !u.IsCreator {
		return nil, apperr.Forbidden("not a creator")
	}
	st, err := s.earnings.Stats(ctx, creatorID, recentEarnings)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return st, nil
}

func (s *AffiliateService) ListEarnings(ctx context.Context, creatorID int64, status domain.EarningStatus, page domain.Page) ([]domain.AffiliateEarning, int64, error) {
	out, total, err := s.earnings.List(ctx, creatorID, status, page)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return out, total, nil
}

// MarkPaid settles a pending earning.
func (s *AffiliateService) MarkPaid(ctx context.Context, id int64) (*domain.AffiliateEarning, error) {
	e, err := s.earnings.MarkPaid(ctx, id)
	if errors.Is(err, repository.ErrConflict) {
		return nil, apperr.Conflict("earning already paid")
	}
	if err != nil {
		return nil, storeErr(err, "earning")
	}
	return e, nil
}
