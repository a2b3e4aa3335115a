package service

import (
	"context"
	"strings"

	"creatememe/internal/apperr"
	"creatememe/internal/domain"
	"creatememe/internal/repository"

	"github.com/shopspring/decimal"
)

// AdminService backs the admin dashboard. Every mutation is written to the
// admin log.
type AdminService struct {
	users      UserStore
	wallets    WalletStore
	txs        TransactionStore
	subs       SubscriptionStore
	stats      StatsStore
	affiliates *AffiliateService
	logs       *AdminLogService
}

func NewAdminService(users UserStore, wallets WalletStore, txs TransactionStore, subs SubscriptionStore, stats StatsStore, affiliates *AffiliateService, logs *AdminLogService) *AdminService {
	return &AdminService{
		users:      users,
		wallets:    wallets,
		txs:        txs,
		subs:       subs,
		stats:      stats,
		affiliates: affiliates,
		logs:       logs,
	}
}

func (s *AdminService) Stats(ctx context.Context) (*domain.PlatformStats, error) {
	st, err := s.stats.Platform(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return st, nil
}

func (s *AdminService) ListUsers(ctx context.Context, f domain.UserFilter) ([]domain.User, int64, error) {
	out, total, err := s.users.List(ctx, f)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return out, total, nil
}

// UserUpdate is an admin edit of a user; nil fields are unchanged. An
// empty PromoCode clears it.
type UserUpdate struct {
	Role           *string `json:"role"`
	Status         *string `json:"status"`
	IsCreator      *bool   `json:"is_creator"`
	CommissionRate *string `json:"commission_rate"`
	PromoCode      *string `json:"promo_code"`
}

func (u UserUpdate) patch() (domain.UserPatch, map[string]interface{}, error) {
	var (
		p       domain.UserPatch
		details = map[string]interface{}{}
	)
	if u.Role != nil {
		role := domain.Role(*u.Role)
		if role != domain.RoleUser && role != domain.RoleAdmin {
			return p, nil, apperr.Validation("invalid role")
		}
		p.Role = &role
		details["role"] = role
	}
	if u.Status != nil {
		status := domain.UserStatus(*u.Status)
		if !status.Valid() {
			return p, nil, apperr.Validation("invalid status")
		}
		p.Status = &status
		details["status"] = status
	}
	if u.IsCreator != nil {
		p.IsCreator = u.IsCreator
		details["is_creator"] = *u.IsCreator
	}
	if u.CommissionRate != nil {
		rate, err := decimal.NewFromString(*u.CommissionRate)
		if err != nil || rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
			return p, nil, apperr.Validation("commission rate must be between 0 and 1")
		}
		p.CommissionRate = &rate
		details["commission_rate"] = rate.String()
	}
	if u.PromoCode != nil {
		code := strings.TrimSpace(*u.PromoCode)
		if code != "" && !ValidPromoCode(code) {
			return p, nil, apperr.Validation("invalid promo code")
		}
		p.PromoCode = &code
		details["promo_code"] = code
	}
	return p, details, nil
}

// UpdateUser applies an admin edit. Admins cannot demote or suspend
// themselves.
func (s *AdminService) UpdateUser(ctx context.Context, adminID, userID int64, upd UserUpdate) (*domain.User, error) {
	p, details, err := upd.patch()
	if err != nil {
		return nil, err
	}
	if adminID == userID {
		if p.Role != nil && *p.Role != domain.RoleAdmin {
			return nil, apperr.Validation("admins cannot demote themselves")
		}
		if p.Status != nil && *p.Status != domain.UserStatusActive {
			return nil, apperr.Validation("admins cannot ban or suspend themselves")
		}
	}

	u, err := s.users.Update(ctx, userID, p)
	if repository.ConflictOn(err, "promo_code") {
		return nil, apperr.Conflict("promo code already taken")
	}
	if err != nil {
		return nil, storeErr(err, "user")
	}

	s.logs.Record(ctx, adminID, domain.AdminActionUpdateUser, userID, details)
	return u, nil
}

func (s *AdminService) ListWallets(ctx context.Context, status domain.WalletStatus, page domain.Page) ([]domain.Wallet, int64, error) {
	if status != "" && !status.Valid() {
		return nil, 0, apperr.Validation("invalid status")
	}
	out, total, err := s.wallets.List(ctx, status, page)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return out, total, nil
}

type WalletUpdate struct {
	Status *string `json:"status"`
	Label  *string `json:"label"`
}

func (s *AdminService) UpdateWallet(ctx context.Context, adminID, walletID int64, upd WalletUpdate) (*domain.Wallet, error) {
	details := map[string]interface{}{}
	var status *domain.WalletStatus
	if upd.Status != nil {
		st := domain.WalletStatus(*upd.Status)
		if !st.Valid() {
			return nil, apperr.Validation("invalid status")
		}
		status = &st
		details["status"] = st
	}
	if upd.Label != nil {
		if len(*upd.Label) > 64 {
			return nil, apperr.Validation("label is too long")
		}
		details["label"] = *upd.Label
	}

	w, err := s.wallets.Update(ctx, walletID, status, upd.Label)
	if err != nil {
		return nil, storeErr(err, "wallet")
	}
	s.logs.Record(ctx, adminID, domain.AdminActionUpdateWallet, walletID, details)
	return w, nil
}

func (s *AdminService) ListTransactions(ctx context.Context, f domain.TransactionFilter) ([]domain.Transaction, int64, error) {
	out, total, err := s.txs.List(ctx, f)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return out, total, nil
}

func (s *AdminService) ListSubscriptions(ctx context.Context, status domain.SubscriptionStatus, page domain.Page) ([]domain.Subscription, int64, error) {
	out, total, err := s.subs.List(ctx, status, page)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return out, total, nil
}

func (s *AdminService) ListLogs(ctx context.Context, page domain.Page) ([]domain.AdminLog, int64, error) {
	return s.logs.List(ctx, page)
}

func (s *AdminService) ListEarnings(ctx context.Context, creatorID int64, status domain.EarningStatus, page domain.Page) ([]domain.AffiliateEarning, int64, error) {
	return s.affiliates.ListEarnings(ctx, creatorID, status, page)
}

func (s *AdminService) PayEarning(ctx context.Context, adminID, earningID int64) (*domain.AffiliateEarning, error) {
	e, err := s.affiliates.MarkPaid(ctx, earningID)
	if err != nil {
		return nil, err
	}
	s.logs.Record(ctx, adminID, domain.AdminActionEarningPaid, earningID, map[string]interface{}{
		"creator_id": e.CreatorID,
		"lamports":   e.AmountLamports,
	})
	return e, nil
}

// LogAction records an admin action performed outside this service.
func (s *AdminService) LogAction(ctx context.Context, adminID int64, action string, targetID any, details map[string]interface{}) {
	s.logs.Record(ctx, adminID, action, targetID, details)
}
