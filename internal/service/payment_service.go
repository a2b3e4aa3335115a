package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"creatememe/internal/apperr"
	"creatememe/internal/domain"
	"creatememe/internal/logger"
	"creatememe/internal/repository"
	"creatememe/internal/solana"
)

// FeeSchedule holds the platform fees in lamports.
type FeeSchedule struct {
	TokenCreation int64 `json:"token_creation_lamports"`
	PoolCreation  int64 `json:"pool_creation_lamports"`
	TokenClone    int64 `json:"token_clone_lamports"`
}

// NewFeeSchedule parses SOL amounts such as "0.1".
func NewFeeSchedule(tokenSOL, poolSOL, cloneSOL string) (FeeSchedule, error) {
	var (
		f   FeeSchedule
		err error
	)
	if f.TokenCreation, err = solana.ParseSOL(tokenSOL); err != nil {
		return f, err
	}
	if f.PoolCreation, err = solana.ParseSOL(poolSOL); err != nil {
		return f, err
	}
	if f.TokenClone, err = solana.ParseSOL(cloneSOL); err != nil {
		return f, err
	}
	return f, nil
}

// For returns the fee charged for a one-off payment type.
func (f FeeSchedule) For(t domain.TransactionType) (int64, bool) {
	switch t {
	case domain.TxTokenCreation:
		return f.TokenCreation, true
	case domain.TxPoolCreation:
		return f.PoolCreation, true
	case domain.TxTokenClone:
		return f.TokenClone, true
	}
	return 0, false
}

// PaymentRequest is a client-submitted payment to be checked on chain.
// ExpectedLamports always comes from the server side fee schedule.
type PaymentRequest struct {
	Signature        string
	Type             domain.TransactionType
	ExpectedLamports int64
	Payer            string
	Memo             string
	Meta             map[string]interface{}
}

// PaymentChecker is implemented by PaymentService. Check never writes: the
// caller stores the returned transaction in the same database transaction
// as the row it pays for and then calls Settle.
type PaymentChecker interface {
	Check(ctx context.Context, userID int64, req PaymentRequest) (*domain.Transaction, error)
	Settle(ctx context.Context, tx *domain.Transaction)
}

// CommissionRecorder is implemented by AffiliateService.
type CommissionRecorder interface {
	RecordCommission(ctx context.Context, tx *domain.Transaction) error
}

type PaymentService struct {
	txs         TransactionStore
	wallets     WalletStore
	chain       ChainClient
	treasury    string
	commissions CommissionRecorder
	wait        time.Duration
	poll        time.Duration
	log         *slog.Logger
}

func NewPaymentService(txs TransactionStore, wallets WalletStore, chain ChainClient, treasury string, commissions CommissionRecorder) *PaymentService {
	return &PaymentService{
		txs:         txs,
		wallets:     wallets,
		chain:       chain,
		treasury:    treasury,
		commissions: commissions,
		wait:        solana.PaymentWaitTimeout,
		poll:        solana.PaymentPollInterval,
		log:         logger.With("component", "payments"),
	}
}

// Treasury is the address payments must be sent to.
func (s *PaymentService) Treasury() string {
	return s.treasury
}

// Check verifies a payment on chain and returns the transaction to record.
// The payer must be an active wallet linked to userID. Nothing is stored.
func (s *PaymentService) Check(ctx context.Context, userID int64, req PaymentRequest) (*domain.Transaction, error) {
	tx, result, err := s.check(ctx, userID, req)
	PaymentVerifications.WithLabelValues(string(req.Type), result).Inc()
	return tx, err
}

// Settle runs after tx has been stored: it books the affiliate commission.
func (s *PaymentService) Settle(ctx context.Context, tx *domain.Transaction) {
	s.log.Info("payment recorded",
		"user_id", tx.UserID,
		"type", tx.Type,
		"signature", tx.Signature,
		"lamports", tx.AmountLamports,
		"status", tx.Status,
	)
	if s.commissions == nil {
		return
	}
	if err := s.commissions.RecordCommission(ctx, tx); err != nil {
		s.log.Error("record commission failed", "error", err, "transaction_id", tx.ID)
	}
}

func (s *PaymentService) check(ctx context.Context, userID int64, req PaymentRequest) (*domain.Transaction, string, error) {
	if err := solana.ValidateSignature(req.Signature); err != nil {
		return nil, "invalid", apperr.Validation("invalid transaction signature")
	}
	if err := solana.ValidateAddress(req.Payer); err != nil {
		return nil, "invalid", apperr.Validation("invalid payer address")
	}
	if req.ExpectedLamports < 0 {
		return nil, "invalid", apperr.Validation("invalid payment amount")
	}
	if err := s.checkPayer(ctx, userID, req.Payer); err != nil {
		return nil, "foreign_payer", err
	}

	_, err := s.txs.GetBySignature(ctx, req.Signature)
	switch {
	case err == nil:
		return nil, "replay", apperr.Conflict("transaction already recorded")
	case !errors.Is(err, repository.ErrNotFound):
		return nil, "error", apperr.Internal(err)
	}

	tx := &domain.Transaction{
		UserID:    userID,
		Signature: req.Signature,
		Type:      req.Type,
		Meta:      req.Meta,
	}

	if paymentBypass {
		tx.AmountLamports = req.ExpectedLamports
		tx.Status = domain.TxStatusSimulated
		return tx, "simulated", nil
	}

	if s.treasury == "" {
		return nil, "error", apperr.Unavailable("payments are not configured")
	}
	paid, result, err := s.checkChain(ctx, req)
	if err != nil {
		return nil, result, err
	}
	tx.AmountLamports = paid
	tx.Status = domain.TxStatusConfirmed
	return tx, result, nil
}

// checkPayer requires payer to be one of the caller's active wallets.
func (s *PaymentService) checkPayer(ctx context.Context, userID int64, payer string) error {
	w, err := s.wallets.GetByAddress(ctx, payer)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.Forbidden("payer wallet is not linked to this account")
	}
	if err != nil {
		return apperr.Internal(err)
	}
	if w.UserID != userID {
		return apperr.Forbidden("payer wallet is not linked to this account")
	}
	if w.Status != domain.WalletStatusActive {
		return apperr.Forbidden("payer wallet is " + string(w.Status))
	}
	return nil
}

// paymentReused reports whether storing a paid row failed because its
// signature was recorded concurrently.
func paymentReused(err error) bool {
	return repository.ConflictOn(err, "signature")
}

func (s *PaymentService) checkChain(ctx context.Context, req PaymentRequest) (int64, string, error) {
	parsed, err := s.chain.WaitForTransaction(ctx, req.Signature, s.wait, s.poll)
	if errors.Is(err, solana.ErrTransactionNotFound) {
		return 0, "not_found", apperr.NotFound("transaction not found on chain")
	}
	if err != nil {
		return 0, "error", apperr.Wrap(apperr.KindUnavailable, "solana rpc unavailable", err)
	}

	paid, err := parsed.VerifyPayment(solana.PaymentExpectation{
		Recipient:   s.treasury,
		MinLamports: req.ExpectedLamports,
		Payer:       req.Payer,
		Memo:        req.Memo,
	})
	if err != nil {
		s.log.Warn("payment rejected", "signature", req.Signature, "error", err)
		return 0, "rejected", apperr.Wrap(apperr.KindValidation, err.Error(), err)
	}
	return paid, "ok", nil
}

// ListForUser returns the caller's recorded transactions.
func (s *PaymentService) ListForUser(ctx context.Context, userID int64, page domain.Page) ([]domain.Transaction, int64, error) {
	txs, total, err := s.txs.List(ctx, domain.TransactionFilter{UserID: userID, Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return txs, total, nil
}
