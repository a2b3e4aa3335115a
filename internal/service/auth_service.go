package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"creatememe/internal/apperr"
	"creatememe/internal/domain"
	"creatememe/internal/logger"
	"creatememe/internal/oauth"
	"creatememe/internal/repository"
	"creatememe/internal/solana"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/bcrypt"
)

type AuthConfig struct {
	AdminEmails       []string
	AdminWallets      []string
	AdminLoginEmail   string
	AdminPasswordHash string
	// SignInDomain is the host named in the sign-in message.
	SignInDomain string
	NonceTTL     time.Duration
}

type AuthService struct {
	users      UserStore
	wallets    WalletStore
	sessions   *Sessions
	google     GoogleVerifier
	nonces     NonceStore
	affiliates *AffiliateService
	cfg        AuthConfig
	now        func() time.Time
	log        *slog.Logger
}

func NewAuthService(users UserStore, wallets WalletStore, sessions *Sessions, google GoogleVerifier, nonces NonceStore, affiliates *AffiliateService, cfg AuthConfig) *AuthService {
	if cfg.NonceTTL <= 0 {
		cfg.NonceTTL = 5 * time.Minute
	}
	return &AuthService{
		users:      users,
		wallets:    wallets,
		sessions:   sessions,
		google:     google,
		nonces:     nonces,
		affiliates: affiliates,
		cfg:        cfg,
		now:        time.Now,
		log:        logger.With("component", "auth"),
	}
}

type LoginResult struct {
	Token   string       `json:"token"`
	User    *domain.User `json:"user"`
	Created bool         `json:"created"`
}

// GoogleLogin signs in with a Google ID token. referral is applied only
// when the account is new.
func (s *AuthService) GoogleLogin(ctx context.Context, idToken, referral string) (*LoginResult, error) {
	if s.google == nil || !s.google.Enabled() {
		return nil, apperr.Unavailable("google login is not configured")
	}
	id, err := s.google.Verify(ctx, idToken)
	if err != nil {
		if oauth.IsRejected(err) {
			return nil, apperr.Wrap(apperr.KindUnauthorized, "invalid google token", err)
		}
		s.log.Warn("google token check failed", "error", err)
		return nil, apperr.Wrap(apperr.KindUnavailable, "google sign-in is unavailable", err)
	}

	role := domain.RoleUser
	if slices.Contains(s.cfg.AdminEmails, id.Email) {
		role = domain.RoleAdmin
	}

	u, created, err := s.users.UpsertByEmail(ctx, id.Email, id.Name, id.Picture, role)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return s.finish(ctx, u, created, referral)
}

// CredentialsLogin is the single admin account login. It is disabled
// unless both the login email and the bcrypt hash are configured.
func (s *AuthService) CredentialsLogin(ctx context.Context, email, password string) (*LoginResult, error) {
	if s.cfg.AdminLoginEmail == "" || s.cfg.AdminPasswordHash == "" {
		return nil, apperr.Unavailable("credentials login is disabled")
	}

	email = strings.ToLower(strings.TrimSpace(email))
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(s.cfg.AdminLoginEmail)) == 1
	passOK := bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(password)) == nil
	if !emailOK || !passOK {
		s.log.Warn("credentials login failed", "email", email)
		return nil, apperr.Unauthorized("invalid email or password")
	}

	u, created, err := s.users.UpsertByEmail(ctx, email, "Admin", "", domain.RoleAdmin)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return s.finish(ctx, u, created, "")
}

// NonceChallenge is what a wallet must sign to log in.
type NonceChallenge struct {
	Address   string    `json:"address"`
	Nonce     string    `json:"nonce"`
	Message   string    `json:"message"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *AuthService) WalletNonce(ctx context.Context, address string) (*NonceChallenge, error) {
	if err := solana.ValidateAddress(address); err != nil {
		return nil, apperr.Validation("invalid wallet address")
	}

	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return nil, apperr.Internal(err)
	}
	nonce := base58.Encode(raw)
	issuedAt := s.now().UTC().Truncate(time.Second)

	if err := s.nonces.Issue(ctx, address, nonce, s.cfg.NonceTTL); err != nil {
		return nil, apperr.Internal(err)
	}

	return &NonceChallenge{
		Address:   address,
		Nonce:     nonce,
		Message:   solana.SignInMessage(s.cfg.SignInDomain, address, nonce, issuedAt),
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(s.cfg.NonceTTL),
	}, nil
}

type WalletLoginInput struct {
	Address   string
	Nonce     string
	IssuedAt  time.Time
	Signature string
	Referral  string
}

// WalletLogin verifies a signed challenge and signs the wallet's owner in,
// creating the user and wallet on first connect.
func (s *AuthService) WalletLogin(ctx context.Context, in WalletLoginInput) (*LoginResult, error) {
	if err := solana.ValidateAddress(in.Address); err != nil {
		return nil, apperr.Validation("invalid wallet address")
	}

	ok, err := s.nonces.Consume(ctx, in.Address, in.Nonce)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !ok {
		return nil, apperr.Unauthorized("nonce expired or already used")
	}

	msg := solana.SignInMessage(s.cfg.SignInDomain, in.Address, in.Nonce, in.IssuedAt)
	if err := solana.VerifyMessage(in.Address, msg, in.Signature); err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthorized, "signature does not match wallet", err)
	}

	isAdmin := slices.Contains(s.cfg.AdminWallets, in.Address)

	var (
		u       *domain.User
		created bool
	)
	w, err := s.wallets.GetByAddress(ctx, in.Address)
	switch {
	case err == nil:
		if w.Status == domain.WalletStatusBanned {
			return nil, apperr.Forbidden("wallet is banned")
		}
		if u, err = s.users.GetByID(ctx, w.UserID); err != nil {
			return nil, apperr.Internal(err)
		}
		if isAdmin && !u.IsAdmin() {
			role := domain.RoleAdmin
			if u, err = s.users.Update(ctx, u.ID, domain.UserPatch{Role: &role}); err != nil {
				return nil, apperr.Internal(err)
			}
		}
	case errors.Is(err, repository.ErrNotFound):
		role := domain.RoleUser
		if isAdmin {
			role = domain.RoleAdmin
		}
		if u, created, err = s.users.UpsertByWallet(ctx, in.Address, role); err != nil {
			return nil, apperr.Internal(err)
		}
		nw := &domain.Wallet{UserID: u.ID, Address: in.Address, Label: "Primary"}
		if err := s.wallets.Create(ctx, nw); err != nil && !errors.Is(err, repository.ErrConflict) {
			return nil, apperr.Internal(err)
		}
	default:
		return nil, apperr.Internal(err)
	}

	return s.finish(ctx, u, created, in.Referral)
}

func (s *AuthService) finish(ctx context.Context, u *domain.User, created bool, referral string) (*LoginResult, error) {
	if !u.Active() {
		return nil, apperr.Forbidden("account is " + string(u.Status))
	}

	if created && referral != "" && s.affiliates != nil {
		if err := s.affiliates.AttributeReferral(ctx, u.ID, referral); err != nil {
			s.log.Info("referral not applied", "user_id", u.ID, "code", referral, "error", err)
		} else if fresh, err := s.users.GetByID(ctx, u.ID); err == nil {
			u = fresh
		}
	}

	token, err := s.sessions.Issue(u.ID, u.Role)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	s.log.Info("user logged in", "user_id", u.ID, "role", u.Role, "created", created)
	return &LoginResult{Token: token, User: u, Created: created}, nil
}

// Me loads the caller.
func (s *AuthService) Me(ctx context.Context, userID int64) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "user")
	}
	return u, nil
}
