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

type WalletService struct {
	wallets WalletStore
	users   UserStore
	chain   ChainClient
	log     *slog.Logger
}

func NewWalletService(wallets WalletStore, users UserStore, chain ChainClient) *WalletService {
	return &WalletService{
		wallets: wallets,
		users:   users,
		chain:   chain,
		log:     logger.With("component", "wallets"),
	}
}

// Link attaches address to userID. Linking an address the user already
// owns is a no-op; created reports whether a new row was made.
func (s *WalletService) Link(ctx context.Context, userID int64, address, label string) (w *domain.Wallet, created bool, err error) {
	address = strings.TrimSpace(address)
	if err := solana.ValidateAddress(address); err != nil {
		return nil, false, apperr.Validation("invalid wallet address")
	}
	label = strings.TrimSpace(label)
	if len(label) > 64 {
		return nil, false, apperr.Validation("label is too long")
	}

	existing, err := s.wallets.GetByAddress(ctx, address)
	switch {
	case err == nil:
		if existing.UserID != userID {
			return nil, false, apperr.Conflict("wallet is linked to another account")
		}
		switch existing.Status {
		case domain.WalletStatusBanned:
			return nil, false, apperr.Forbidden("wallet is banned")
		case domain.WalletStatusDisconnected:
			active := domain.WalletStatusActive
			if existing, err = s.wallets.Update(ctx, existing.ID, &active, nil); err != nil {
				return nil, false, apperr.Internal(err)
			}
		}
		return existing, false, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, false, apperr.Internal(err)
	}

	w = &domain.Wallet{UserID: userID, Address: address, Label: label}
	if err := s.wallets.Create(ctx, w); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, false, apperr.Conflict("wallet is linked to another account")
		}
		return nil, false, apperr.Internal(err)
	}
	if err := s.users.SetWalletAddressIfEmpty(ctx, userID, address); err != nil {
		s.log.Warn("set user wallet address failed", "user_id", userID, "error", err)
	}

	s.log.Info("wallet linked", "user_id", userID, "wallet_id", w.ID)
	return w, true, nil
}

func (s *WalletService) List(ctx context.Context, userID int64) ([]domain.Wallet, error) {
	out, err := s.wallets.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if out == nil {
		out = []domain.Wallet{}
	}
	return out, nil
}

// owned loads a wallet of userID; other users' wallets read as missing.
func (s *WalletService) owned(ctx context.Context, userID, walletID int64) (*domain.Wallet, error) {
	w, err := s.wallets.GetByID(ctx, walletID)
	if err != nil {
		return nil, storeErr(err, "wallet")
	}
	if w.UserID != userID {
		return nil, apperr.NotFound("wallet not found")
	}
	return w, nil
}

func (s *WalletService) SetPrimary(ctx context.Context, userID, walletID int64) error {
	w, err := s.owned(ctx, userID, walletID)
	if err != nil {
		return err
	}
	if w.Status != domain.WalletStatusActive {
		return apperr.Validation("only active wallets can be primary")
	}
	if err := s.wallets.SetPrimary(ctx, userID, walletID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return apperr.Conflict("wallet address is used by another account")
		}
		return storeErr(err, "wallet")
	}
	return nil
}

// Disconnect marks the wallet disconnected. Banned wallets stay banned.
func (s *WalletService) Disconnect(ctx context.Context, userID, walletID int64) (*domain.Wallet, error) {
	w, err := s.owned(ctx, userID, walletID)
	if err != nil {
		return nil, err
	}
	if w.Status == domain.WalletStatusBanned {
		return nil, apperr.Forbidden("wallet is banned")
	}
	status := domain.WalletStatusDisconnected
	w, err = s.wallets.Update(ctx, walletID, &status, nil)
	if err != nil {
		return nil, storeErr(err, "wallet")
	}
	return w, nil
}

// RefreshBalance reads the wallet's SOL balance from the chain.
func (s *WalletService) RefreshBalance(ctx context.Context, userID, walletID int64) (*domain.Wallet, error) {
	w, err := s.owned(ctx, userID, walletID)
	if err != nil {
		return nil, err
	}
	bal, err := s.chain.GetBalance(ctx, w.Address)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "solana rpc unavailable", err)
	}
	if err := s.wallets.UpdateBalance(ctx, walletID, bal); err != nil {
		return nil, storeErr(err, "wallet")
	}
	w.BalanceLamports = bal
	return w, nil
}
