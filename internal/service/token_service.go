package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"creatememe/internal/apperr"
	"creatememe/internal/domain"
	"creatememe/internal/logger"
	"creatememe/internal/repository"
	"creatememe/internal/solana"
)

type CreateTokenInput struct {
	Name        string
	Symbol      string
	Description string
	ImageURL    string
	Website     string
	Twitter     string
	Telegram    string
	Decimals    int
	Supply      int64
	Address     string
	Signature   string
	Payer       string
}

// Normalize trims the input and upper-cases the symbol.
func (in *CreateTokenInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Symbol = strings.ToUpper(strings.TrimSpace(in.Symbol))
	in.Description = strings.TrimSpace(in.Description)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	in.Website = strings.TrimSpace(in.Website)
	in.Twitter = strings.TrimSpace(in.Twitter)
	in.Telegram = strings.TrimSpace(in.Telegram)
	in.Address = strings.TrimSpace(in.Address)
}

func (in *CreateTokenInput) Validate() error {
	if n := utf8.RuneCountInString(in.Name); n < 1 || n > 32 {
		return apperr.Validation("name must be 1-32 characters")
	}
	if n := utf8.RuneCountInString(in.Symbol); n < 1 || n > 10 {
		return apperr.Validation("symbol must be 1-10 characters")
	}
	if in.Decimals < 0 || in.Decimals > 9 {
		return apperr.Validation("decimals must be between 0 and 9")
	}
	if in.Supply <= 0 {
		return apperr.Validation("supply must be positive")
	}
	if utf8.RuneCountInString(in.Description) > 1000 {
		return apperr.Validation("description is too long")
	}
	if err := solana.ValidateAddress(in.Address); err != nil {
		return apperr.Validation("invalid token address")
	}
	return nil
}

// TrendingLookup resolves a currently trending token.
type TrendingLookup interface {
	Get(ctx context.Context, address string) (*domain.TrendingToken, error)
}

type TokenService struct {
	tokens   TokenStore
	payments PaymentChecker
	trending TrendingLookup
	fees     FeeSchedule
	log      *slog.Logger
}

func NewTokenService(tokens TokenStore, payments PaymentChecker, trending TrendingLookup, fees FeeSchedule) *TokenService {
	return &TokenService{
		tokens:   tokens,
		payments: payments,
		trending: trending,
		fees:     fees,
		log:      logger.With("component", "tokens"),
	}
}

// Create registers a token minted by the caller after checking the
// creation fee payment.
func (s *TokenService) Create(ctx context.Context, userID int64, in CreateTokenInput) (*domain.Token, error) {
	return s.create(ctx, userID, in, nil, domain.TxTokenCreation, s.fees.TokenCreation)
}

// Clone registers a token modelled on a trending one. Empty metadata is
// filled in from the source.
func (s *TokenService) Clone(ctx context.Context, userID int64, source string, in CreateTokenInput) (*domain.Token, error) {
	src, err := s.trending.Get(ctx, strings.TrimSpace(source))
	if err != nil {
		return nil, err
	}
	prefill(&in, src)
	return s.create(ctx, userID, in, &src.Address, domain.TxTokenClone, s.fees.TokenClone)
}

func prefill(in *CreateTokenInput, src *domain.TrendingToken) {
	if strings.TrimSpace(in.Name) == "" {
		in.Name = truncateRunes(src.Name, 32)
	}
	if strings.TrimSpace(in.Symbol) == "" {
		in.Symbol = truncateRunes(src.Symbol, 10)
	}
	if strings.TrimSpace(in.Description) == "" {
		in.Description = truncateRunes(src.Description, 1000)
	}
	if strings.TrimSpace(in.ImageURL) == "" {
		in.ImageURL = src.Icon
	}
	for _, l := range src.Links {
		kind := strings.ToLower(l.Type)
		if kind == "" {
			kind = strings.ToLower(l.Label)
		}
		switch {
		case kind == "twitter" && in.Twitter == "":
			in.Twitter = l.URL
		case kind == "telegram" && in.Telegram == "":
			in.Telegram = l.URL
		case kind == "website" && in.Website == "":
			in.Website = l.URL
		}
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func (s *TokenService) create(ctx context.Context, userID int64, in CreateTokenInput, clonedFrom *string, txType domain.TransactionType, fee int64) (*domain.Token, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.tokens.GetByAddress(ctx, in.Address); err == nil {
		return nil, apperr.Conflict("token address already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Internal(err)
	}

	meta := map[string]interface{}{"token_address": in.Address, "symbol": in.Symbol}
	if clonedFrom != nil {
		meta["cloned_from"] = *clonedFrom
	}
	payment, err := s.payments.Check(ctx, userID, PaymentRequest{
		Signature:        in.Signature,
		Type:             txType,
		ExpectedLamports: fee,
		Payer:            in.Payer,
		Meta:             meta,
	})
	if err != nil {
		return nil, err
	}

	t := &domain.Token{
		CreatorID:   userID,
		Name:        in.Name,
		Symbol:      in.Symbol,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		Website:     in.Website,
		Twitter:     in.Twitter,
		Telegram:    in.Telegram,
		Decimals:    int16(in.Decimals),
		Supply:      in.Supply,
		Address:     in.Address,
		ClonedFrom:  clonedFrom,
		Signature:   payment.Signature,
	}
	if err := s.tokens.Create(ctx, t, payment); err != nil {
		switch {
		case paymentReused(err):
			return nil, apperr.Conflict("transaction already recorded")
		case errors.Is(err, repository.ErrConflict):
			return nil, apperr.Conflict("token address already registered")
		}
		return nil, apperr.Internal(err)
	}
	s.payments.Settle(ctx, payment)

	s.log.Info("token created", "token_id", t.ID, "address", t.Address, "creator_id", userID, "cloned", clonedFrom != nil)
	return t, nil
}

// Authority names a revocable token authority.
type Authority string

const (
	AuthorityMint   Authority = "mint"
	AuthorityFreeze Authority = "freeze"
)

// Revoke permanently gives up an authority of the caller's token.
func (s *TokenService) Revoke(ctx context.Context, userID, tokenID int64, authority Authority) (*domain.Token, error) {
	t, err := s.tokens.GetByID(ctx, tokenID)
	if err != nil {
		return nil, storeErr(err, "token")
	}
	if t.CreatorID != userID {
		return nil, apperr.Forbidden("not the token owner")
	}

	var changed bool
	switch authority {
	case AuthorityMint:
		changed, err = s.tokens.RevokeMint(ctx, tokenID)
		t.MintRevoked = true
	case AuthorityFreeze:
		changed, err = s.tokens.RevokeFreeze(ctx, tokenID)
		t.FreezeRevoked = true
	default:
		return nil, apperr.Validation("unknown authority")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !changed {
		return nil, apperr.Conflict(string(authority) + " authority already revoked")
	}

	s.log.Info("authority revoked", "token_id", tokenID, "authority", authority)
	return t, nil
}

func (s *TokenService) Get(ctx context.Context, address string) (*domain.Token, error) {
	t, err := s.tokens.GetByAddress(ctx, address)
	if err != nil {
		return nil, storeErr(err, "token")
	}
	return t, nil
}

func (s *TokenService) ListRecent(ctx context.Context, limit int) ([]domain.Token, error) {
	out, err := s.tokens.ListRecent(ctx, limit)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

func (s *TokenService) ListByCreator(ctx context.Context, userID int64) ([]domain.Token, error) {
	out, err := s.tokens.ListByCreator(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}
