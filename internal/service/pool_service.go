package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"creatememe/internal/apperr"
	"creatememe/internal/domain"
	"creatememe/internal/logger"
	"creatememe/internal/repository"
	"creatememe/internal/solana"
)

type CreatePoolInput struct {
	TokenID       int64
	QuoteMint     string
	BaseAmount    int64
	QuoteLamports int64
	Signature     string
	Payer         string
}

type PoolService struct {
	pools    PoolStore
	tokens   TokenStore
	payments PaymentChecker
	fees     FeeSchedule
	log      *slog.Logger
}

func NewPoolService(pools PoolStore, tokens TokenStore, payments PaymentChecker, fees FeeSchedule) *PoolService {
	return &PoolService{
		pools:    pools,
		tokens:   tokens,
		payments: payments,
		fees:     fees,
		log:      logger.With("component", "pools"),
	}
}

// Create opens a pool for one of the caller's tokens. The pool fee is
// checked first; the pool is then stored active together with its payment.
func (s *PoolService) Create(ctx context.Context, userID int64, in CreatePoolInput) (*domain.LiquidityPool, error) {
	t, err := s.tokens.GetByID(ctx, in.TokenID)
	if err != nil {
		return nil, storeErr(err, "token")
	}
	if t.CreatorID != userID {
		return nil, apperr.Forbidden("not the token owner")
	}
	if in.BaseAmount <= 0 || in.QuoteLamports <= 0 {
		return nil, apperr.Validation("pool amounts must be positive")
	}
	if in.BaseAmount > t.Supply {
		return nil, apperr.Validation("base amount exceeds token supply")
	}
	quote := strings.TrimSpace(in.QuoteMint)
	if quote == "" {
		quote = solana.NativeMint
	}
	if err := solana.ValidateAddress(quote); err != nil {
		return nil, apperr.Validation("invalid quote mint")
	}
	if err := solana.ValidateSignature(in.Signature); err != nil {
		return nil, apperr.Validation("invalid transaction signature")
	}

	payment, err := s.payments.Check(ctx, userID, PaymentRequest{
		Signature:        in.Signature,
		Type:             domain.TxPoolCreation,
		ExpectedLamports: s.fees.PoolCreation,
		Payer:            in.Payer,
		Meta:             map[string]interface{}{"token_id": t.ID},
	})
	if err != nil {
		return nil, err
	}

	p := &domain.LiquidityPool{
		TokenID:             t.ID,
		CreatorID:           userID,
		QuoteMint:           quote,
		BaseAmount:          in.BaseAmount,
		QuoteAmountLamports: in.QuoteLamports,
		Status:              domain.PoolStatusActive,
		Signature:           payment.Signature,
	}
	if err := s.pools.Create(ctx, p, payment); err != nil {
		if paymentReused(err) {
			return nil, apperr.Conflict("transaction already recorded")
		}
		return nil, storeErr(err, "pool")
	}
	s.payments.Settle(ctx, payment)

	s.log.Info("pool activated", "pool_id", p.ID, "token_id", t.ID)
	return p, nil
}

// RugPull is the demo transition active -> rugged. Nothing happens on chain.
func (s *PoolService) RugPull(ctx context.Context, userID, poolID int64) (*domain.LiquidityPool, error) {
	p, err := s.pools.GetByID(ctx, poolID)
	if err != nil {
		return nil, storeErr(err, "pool")
	}
	if p.CreatorID != userID {
		return nil, apperr.Forbidden("not the pool owner")
	}

	rugged, err := s.pools.Transition(ctx, poolID, domain.PoolStatusActive, domain.PoolStatusRugged)
	if errors.Is(err, repository.ErrConflict) {
		return nil, apperr.Conflict("pool is not active")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	s.log.Info("pool rugged", "pool_id", poolID)
	return rugged, nil
}

func (s *PoolService) ListByToken(ctx context.Context, tokenID int64) ([]domain.LiquidityPool, error) {
	out, err := s.pools.ListByToken(ctx, tokenID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

func (s *PoolService) ListByCreator(ctx context.Context, userID int64) ([]domain.LiquidityPool, error) {
	out, err := s.pools.ListByCreator(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}
