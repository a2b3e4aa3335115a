package service

import (
	"context"
	"errors"
	"time"

	"creatememe/internal/apperr"
	"creatememe/internal/dexscreener"
	"creatememe/internal/domain"
	"creatememe/internal/oauth"
	"creatememe/internal/repository"
	"creatememe/internal/solana"

	"github.com/shopspring/decimal"
)

// Store interfaces are satisfied by the repository package; services depend
// on these so they can be exercised with in-memory fakes.

type UserStore interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByWallet(ctx context.Context, address string) (*domain.User, error)
	GetByPromoCode(ctx context.Context, code string) (*domain.User, error)
	UpsertByEmail(ctx context.Context, email, name, image string, role domain.Role) (*domain.User, bool, error)
	UpsertByWallet(ctx context.Context, address string, role domain.Role) (*domain.User, bool, error)
	SetReferrer(ctx context.Context, userID, referrerID int64) (bool, error)
	SetWalletAddressIfEmpty(ctx context.Context, userID int64, address string) error
	MakeCreator(ctx context.Context, userID int64, promoCode string, rate decimal.Decimal) (*domain.User, error)
	List(ctx context.Context, f domain.UserFilter) ([]domain.User, int64, error)
	Update(ctx context.Context, id int64, p domain.UserPatch) (*domain.User, error)
}

type WalletStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Wallet, error)
	GetByAddress(ctx context.Context, address string) (*domain.Wallet, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Wallet, error)
	Create(ctx context.Context, w *domain.Wallet) error
	SetPrimary(ctx context.Context, userID, walletID int64) error
	Update(ctx context.Context, id int64, status *domain.WalletStatus, label *string) (*domain.Wallet, error)
	UpdateBalance(ctx context.Context, id, lamports int64) error
	List(ctx context.Context, status domain.WalletStatus, page domain.Page) ([]domain.Wallet, int64, error)
}

// TokenStore.Create and PoolStore.Create store the row together with the
// payment that bought it; a reused signature yields ErrConflict and leaves
// nothing behind.
type TokenStore interface {
	Create(ctx context.Context, t *domain.Token, payment *domain.Transaction) error
	GetByID(ctx context.Context, id int64) (*domain.Token, error)
	GetByAddress(ctx context.Context, address string) (*domain.Token, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Token, error)
	ListByCreator(ctx context.Context, creatorID int64) ([]domain.Token, error)
	RevokeMint(ctx context.Context, id int64) (bool, error)
	RevokeFreeze(ctx context.Context, id int64) (bool, error)
}

type PoolStore interface {
	Create(ctx context.Context, p *domain.LiquidityPool, payment *domain.Transaction) error
	GetByID(ctx context.Context, id int64) (*domain.LiquidityPool, error)
	Transition(ctx context.Context, id int64, from, to domain.PoolStatus) (*domain.LiquidityPool, error)
	ListByToken(ctx context.Context, tokenID int64) ([]domain.LiquidityPool, error)
	ListByCreator(ctx context.Context, creatorID int64) ([]domain.LiquidityPool, error)
}

type TransactionStore interface {
	GetBySignature(ctx context.Context, signature string) (*domain.Transaction, error)
	List(ctx context.Context, f domain.TransactionFilter) ([]domain.Transaction, int64, error)
}

type SubscriptionStore interface {
	Get(ctx context.Context, userID int64) (*domain.Subscription, error)
	Activate(ctx context.Context, s domain.Subscription, autoPay bool, payment *domain.Transaction) (*domain.Subscription, error)
	SetAutoPay(ctx context.Context, userID int64, enabled bool) error
	Cancel(ctx context.Context, userID int64) error
	ListDue(ctx context.Context, now time.Time, limit int) ([]domain.DueUser, error)
	Renew(ctx context.Context, rn domain.Renewal) (*domain.Transaction, error)
	List(ctx context.Context, status domain.SubscriptionStatus, page domain.Page) ([]domain.Subscription, int64, error)
}

type AffiliateStore interface {
	CreateEarning(ctx context.Context, e *domain.AffiliateEarning) error
	Stats(ctx context.Context, creatorID int64, recent int) (*domain.AffiliateStats, error)
	List(ctx context.Context, creatorID int64, status domain.EarningStatus, page domain.Page) ([]domain.AffiliateEarning, int64, error)
	MarkPaid(ctx context.Context, id int64) (*domain.AffiliateEarning, error)
}

type AdminLogStore interface {
	Create(ctx context.Context, l *domain.AdminLog) error
	List(ctx context.Context, page domain.Page) ([]domain.AdminLog, int64, error)
}

type StatsStore interface {
	Platform(ctx context.Context) (*domain.PlatformStats, error)
	Ping(ctx context.Context) error
}

type BlogStore interface {
	CreateCategory(ctx context.Context, c *domain.Category) error
	ListCategories(ctx context.Context) ([]domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	CreateTag(ctx context.Context, t *domain.Tag) error
	ListTags(ctx context.Context) ([]domain.Tag, error)
	DeleteTag(ctx context.Context, id int64) error
	CreatePost(ctx context.Context, p *domain.BlogPost, tagIDs []int64) error
	UpdatePost(ctx context.Context, p *domain.BlogPost, tagIDs []int64) error
	DeletePost(ctx context.Context, id int64) error
	GetPostByID(ctx context.Context, id int64) (*domain.BlogPost, error)
	GetPostBySlug(ctx context.Context, slug string) (*domain.BlogPost, error)
	ListPosts(ctx context.Context, f domain.PostFilter) ([]domain.BlogPost, int64, error)
}

// ChainClient is the subset of the Solana RPC client the services use.
type ChainClient interface {
	GetTransaction(ctx context.Context, signature string) (*solana.ParsedTransaction, error)
	WaitForTransaction(ctx context.Context, signature string, timeout, interval time.Duration) (*solana.ParsedTransaction, error)
	GetBalance(ctx context.Context, address string) (int64, error)
}

// TrendingSource is the market-data aggregator.
type TrendingSource interface {
	LatestProfiles(ctx context.Context) ([]dexscreener.Profile, error)
	TokenPairs(ctx context.Context, chainID string, addresses []string) ([]dexscreener.Pair, error)
}

type GoogleVerifier interface {
	Enabled() bool
	Verify(ctx context.Context, idToken string) (*oauth.GoogleIdentity, error)
}

type NonceStore interface {
	Issue(ctx context.Context, address, nonce string, ttl time.Duration) error
	Consume(ctx context.Context, address, nonce string) (bool, error)
}

type TrendingCache interface {
	Get(ctx context.Context) ([]domain.TrendingToken, bool, error)
	Set(ctx context.Context, tokens []domain.TrendingToken, ttl time.Duration) error
}

var (
	_ UserStore         = (*repository.UserRepository)(nil)
	_ WalletStore       = (*repository.WalletRepository)(nil)
	_ TokenStore        = (*repository.TokenRepository)(nil)
	_ PoolStore         = (*repository.PoolRepository)(nil)
	_ TransactionStore  = (*repository.TransactionRepository)(nil)
	_ SubscriptionStore = (*repository.SubscriptionRepository)(nil)
	_ AffiliateStore    = (*repository.AffiliateRepository)(nil)
	_ AdminLogStore     = (*repository.AdminLogRepository)(nil)
	_ StatsStore        = (*repository.StatsRepository)(nil)
	_ BlogStore         = (*repository.BlogRepository)(nil)
	_ ChainClient       = (*solana.Client)(nil)
	_ TrendingSource    = (*dexscreener.Client)(nil)
	_ GoogleVerifier    = (*oauth.GoogleVerifier)(nil)
)

// storeErr converts repository sentinels into client-facing errors.
// what names the record, e.g. "token".
func storeErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperr.Wrap(apperr.KindNotFound, what+" not found", err)
	case errors.Is(err, repository.ErrConflict):
		return apperr.Wrap(apperr.KindConflict, what+" already exists", err)
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	return apperr.Internal(err)
}
