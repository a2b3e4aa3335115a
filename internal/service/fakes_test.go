package service

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"creatememe/internal/dexscreener"
	"creatememe/internal/domain"
	"creatememe/internal/oauth"
	"creatememe/internal/repository"
	"creatememe/internal/solana"

	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"
)

// newAddress returns a fresh base58 public key and its private key.
func newAddress(t *testing.T) (string, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	return base58.Encode(pub), priv
}

func newSignature(t *testing.T) string {
	t.Helper()
	raw := make([]byte, ed25519.SignatureSize)
	if _, err := rand.Read(raw); err != nil {
		t.Fatal(err)
	}
	return base58.Encode(raw)
}

func conflict(constraint string) error {
	return fmt.Errorf("%w: %s", repository.ErrConflict, constraint)
}

// users

type fakeUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*domain.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[int64]*domain.User{}}
}

func (f *fakeUsers) add(u domain.User) *domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	u.ID = f.nextID
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	if u.Status == "" {
		u.Status = domain.UserStatusActive
	}
	if u.SubscriptionStatus == "" {
		u.SubscriptionStatus = domain.SubscriptionNone
	}
	f.byID[u.ID] = &u
	cp := u
	return &cp
}

func (f *fakeUsers) find(match func(*domain.User) bool) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	return f.find(func(u *domain.User) bool { return u.ID == id })
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return f.find(func(u *domain.User) bool { return u.Email != nil && *u.Email == strings.ToLower(email) })
}

func (f *fakeUsers) GetByWallet(_ context.Context, address string) (*domain.User, error) {
	return f.find(func(u *domain.User) bool { return u.WalletAddress != nil && *u.WalletAddress == address })
}

func (f *fakeUsers) GetByPromoCode(_ context.Context, code string) (*domain.User, error) {
	return f.find(func(u *domain.User) bool { return u.PromoCode != nil && *u.PromoCode == strings.ToUpper(code) })
}

func (f *fakeUsers) UpsertByEmail(ctx context.Context, email, name, image string, role domain.Role) (*domain.User, bool, error) {
	if u, err := f.GetByEmail(ctx, email); err == nil {
		if role == domain.RoleAdmin {
			f.mu.Lock()
			f.byID[u.ID].Role = domain.RoleAdmin
			f.mu.Unlock()
			u.Role = domain.RoleAdmin
		}
		return u, false, nil
	}
	e := strings.ToLower(email)
	return f.add(domain.User{Email: &e, Name: name, Image: image, Role: role}), true, nil
}

func (f *fakeUsers) UpsertByWallet(ctx context.Context, address string, role domain.Role) (*domain.User, bool, error) {
	if u, err := f.GetByWallet(ctx, address); err == nil {
		return u, false, nil
	}
	a := address
	return f.add(domain.User{WalletAddress: &a, Name: address[:4], Role: role}), true, nil
}

func (f *fakeUsers) SetReferrer(_ context.Context, userID, referrerID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok || u.ReferrerID != nil || userID == referrerID {
		return false, nil
	}
	u.ReferrerID = &referrerID
	return true, nil
}

func (f *fakeUsers) SetWalletAddressIfEmpty(_ context.Context, userID int64, address string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[userID]; ok && u.WalletAddress == nil {
		u.WalletAddress = &address
	}
	return nil
}

func (f *fakeUsers) promoTaken(code string, except int64) bool {
	for _, u := range f.byID {
		if u.ID != except && u.PromoCode != nil && *u.PromoCode == strings.ToUpper(code) {
			return true
		}
	}
	return false
}

func (f *fakeUsers) MakeCreator(_ context.Context, userID int64, promoCode string, rate decimal.Decimal) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if f.promoTaken(promoCode, userID) {
		return nil, conflict("users_promo_code_key")
	}
	code := strings.ToUpper(promoCode)
	u.IsCreator = true
	u.PromoCode = &code
	u.CommissionRate = rate
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) List(_ context.Context, _ domain.UserFilter) ([]domain.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.User
	for _, u := range f.byID {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUsers) Update(_ context.Context, id int64, p domain.UserPatch) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if p.PromoCode != nil && *p.PromoCode != "" && f.promoTaken(*p.PromoCode, id) {
		return nil, conflict("users_promo_code_key")
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Status != nil {
		u.Status = *p.Status
	}
	if p.IsCreator != nil {
		u.IsCreator = *p.IsCreator
	}
	if p.CommissionRate != nil {
		u.CommissionRate = *p.CommissionRate
	}
	if p.PromoCode != nil {
		if *p.PromoCode == "" {
			u.PromoCode = nil
		} else {
			code := strings.ToUpper(*p.PromoCode)
			u.PromoCode = &code
		}
	}
	cp := *u
	return &cp, nil
}

// wallets

type fakeWallets struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*domain.Wallet
}

func newFakeWallets() *fakeWallets {
	return &fakeWallets{byID: map[int64]*domain.Wallet{}}
}

func (f *fakeWallets) GetByID(_ context.Context, id int64) (*domain.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (f *fakeWallets) GetByAddress(_ context.Context, address string) (*domain.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range f.byID {
		if w.Address == address {
			cp := *w
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeWallets) ListByUser(_ context.Context, userID int64) ([]domain.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Wallet
	for _, w := range f.byID {
		if w.UserID == userID {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (f *fakeWallets) Create(_ context.Context, w *domain.Wallet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	first := true
	for _, x := range f.byID {
		if x.Address == w.Address {
			return conflict("wallets_address_key")
		}
		if x.UserID == w.UserID {
			first = false
		}
	}
	f.nextID++
	w.ID = f.nextID
	if w.Status == "" {
		w.Status = domain.WalletStatusActive
	}
	w.IsPrimary = first
	cp := *w
	f.byID[w.ID] = &cp
	return nil
}

func (f *fakeWallets) SetPrimary(_ context.Context, userID, walletID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if w, ok := f.byID[walletID]; !ok || w.UserID != userID {
		return repository.ErrNotFound
	}
	for _, w := range f.byID {
		if w.UserID == userID {
			w.IsPrimary = w.ID == walletID
		}
	}
	return nil
}

func (f *fakeWallets) Update(_ context.Context, id int64, status *domain.WalletStatus, label *string) (*domain.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if status != nil {
		w.Status = *status
	}
	if label != nil {
		w.Label = *label
	}
	cp := *w
	return &cp, nil
}

func (f *fakeWallets) UpdateBalance(_ context.Context, id, lamports int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	w.BalanceLamports = lamports
	return nil
}

func (f *fakeWallets) List(_ context.Context, _ domain.WalletStatus, _ domain.Page) ([]domain.Wallet, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Wallet
	for _, w := range f.byID {
		out = append(out, *w)
	}
	return out, int64(len(out)), nil
}

// transactions

type fakeTxs struct {
	mu     sync.Mutex
	nextID int64
	bySig  map[string]*domain.Transaction
}

func newFakeTxs() *fakeTxs {
	return &fakeTxs{bySig: map[string]*domain.Transaction{}}
}

func (f *fakeTxs) Create(_ context.Context, t *domain.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.bySig[t.Signature]; ok {
		return conflict("transactions_signature_key")
	}
	f.nextID++
	t.ID = f.nextID
	t.CreatedAt = time.Now()
	cp := *t
	f.bySig[t.Signature] = &cp
	return nil
}

func (f *fakeTxs) GetBySignature(_ context.Context, sig string) (*domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.bySig[sig]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTxs) List(_ context.Context, fl domain.TransactionFilter) ([]domain.Transaction, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Transaction
	for _, t := range f.bySig {
		if fl.UserID == 0 || t.UserID == fl.UserID {
			out = append(out, *t)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeTxs) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bySig)
}

// chain

type fakeChain struct {
	mu      sync.Mutex
	txs     map[string]*solana.ParsedTransaction
	balance int64
	err     error
}

func newFakeChain() *fakeChain {
	return &fakeChain{txs: map[string]*solana.ParsedTransaction{}}
}

// pay registers a confirmed transfer of lamports from payer to recipient.
func (f *fakeChain) pay(sig, payer, recipient string, lamports int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.txs[sig] = &solana.ParsedTransaction{
		Signature: sig,
		Signers:   []string{payer},
		Transfers: []solana.Transfer{{Source: payer, Destination: recipient, Lamports: lamports}},
	}
}

func (f *fakeChain) GetTransaction(_ context.Context, sig string) (*solana.ParsedTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	tx, ok := f.txs[sig]
	if !ok {
		return nil, solana.ErrTransactionNotFound
	}
	return tx, nil
}

func (f *fakeChain) WaitForTransaction(ctx context.Context, sig string, _, _ time.Duration) (*solana.ParsedTransaction, error) {
	return f.GetTransaction(ctx, sig)
}

func (f *fakeChain) GetBalance(_ context.Context, _ string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.balance, nil
}

// tokens and pools

// fakeTokens stores the payment in txs together with the token, like the
// repository does. failNext makes the next Create fail before anything is
// stored.
type fakeTokens struct {
	mu       sync.Mutex
	nextID   int64
	byID     map[int64]*domain.Token
	txs      *fakeTxs
	failNext error
}

func newFakeTokens(txs *fakeTxs) *fakeTokens {
	return &fakeTokens{byID: map[int64]*domain.Token{}, txs: txs}
}

func (f *fakeTokens) Create(ctx context.Context, t *domain.Token, payment *domain.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failNext; err != nil {
		f.failNext = nil
		return err
	}
	for _, x := range f.byID {
		if x.Address == t.Address {
			return conflict("tokens_address_key")
		}
	}
	if err := f.txs.Create(ctx, payment); err != nil {
		return err
	}
	t.Signature = payment.Signature
	f.nextID++
	t.ID = f.nextID
	cp := *t
	f.byID[t.ID] = &cp
	return nil
}

func (f *fakeTokens) GetByID(_ context.Context, id int64) (*domain.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTokens) GetByAddress(_ context.Context, address string) (*domain.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.byID {
		if t.Address == address {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeTokens) ListRecent(_ context.Context, _ int) ([]domain.Token, error) {
	return f.ListByCreator(context.Background(), 0)
}

func (f *fakeTokens) ListByCreator(_ context.Context, creatorID int64) ([]domain.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Token{}
	for _, t := range f.byID {
		if creatorID == 0 || t.CreatorID == creatorID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTokens) revoke(id int64, field func(*domain.Token) *bool) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byID[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	flag := field(t)
	if *flag {
		return false, nil
	}
	*flag = true
	return true, nil
}

func (f *fakeTokens) RevokeMint(_ context.Context, id int64) (bool, error) {
	return f.revoke(id, func(t *domain.Token) *bool { return &t.MintRevoked })
}

func (f *fakeTokens) RevokeFreeze(_ context.Context, id int64) (bool, error) {
	return f.revoke(id, func(t *domain.Token) *bool { return &t.FreezeRevoked })
}

type fakePools struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*domain.LiquidityPool
	txs    *fakeTxs
}

func newFakePools(txs *fakeTxs) *fakePools {
	return &fakePools{byID: map[int64]*domain.LiquidityPool{}, txs: txs}
}

func (f *fakePools) Create(ctx context.Context, p *domain.LiquidityPool, payment *domain.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.txs.Create(ctx, payment); err != nil {
		return err
	}
	p.Signature = payment.Signature
	f.nextID++
	p.ID = f.nextID
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakePools) GetByID(_ context.Context, id int64) (*domain.LiquidityPool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePools) Transition(_ context.Context, id int64, from, to domain.PoolStatus) (*domain.LiquidityPool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if p.Status != from {
		return nil, repository.ErrConflict
	}
	p.Status = to
	cp := *p
	return &cp, nil
}

func (f *fakePools) ListByToken(_ context.Context, tokenID int64) ([]domain.LiquidityPool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.LiquidityPool{}
	for _, p := range f.byID {
		if p.TokenID == tokenID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePools) ListByCreator(_ context.Context, creatorID int64) ([]domain.LiquidityPool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.LiquidityPool{}
	for _, p := range f.byID {
		if p.CreatorID == creatorID {
			out = append(out, *p)
		}
	}
	return out, nil
}

// subscriptions

type fakeSubs struct {
	mu      sync.Mutex
	users   *fakeUsers
	txs     *fakeTxs
	subs    map[int64]*domain.Subscription
	periods map[string]bool
}

func newFakeSubs(users *fakeUsers, txs *fakeTxs) *fakeSubs {
	return &fakeSubs{users: users, txs: txs, subs: map[int64]*domain.Subscription{}, periods: map[string]bool{}}
}

func (f *fakeSubs) Get(_ context.Context, userID int64) (*domain.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.subs[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSubs) Activate(ctx context.Context, s domain.Subscription, autoPay bool, payment *domain.Transaction) (*domain.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.txs.Create(ctx, payment); err != nil {
		return nil, err
	}
	f.subs[s.UserID] = &s
	f.users.mu.Lock()
	if u, ok := f.users.byID[s.UserID]; ok {
		u.IsAutoPay = autoPay
		u.PlanType = s.PlanType
		u.SubscriptionStatus = s.Status
		u.LastPayment = s.LastPayment
		u.NextPayment = s.NextPayment
	}
	f.users.mu.Unlock()
	cp := s
	return &cp, nil
}

func (f *fakeSubs) SetAutoPay(_ context.Context, userID int64, enabled bool) error {
	f.users.mu.Lock()
	defer f.users.mu.Unlock()
	u, ok := f.users.byID[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsAutoPay = enabled
	return nil
}

func (f *fakeSubs) Cancel(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.subs[userID]
	if !ok {
		return repository.ErrNotFound
	}
	s.Status = domain.SubscriptionCancelled
	f.users.mu.Lock()
	if u, ok := f.users.byID[userID]; ok {
		u.SubscriptionStatus = domain.SubscriptionCancelled
		u.IsAutoPay = false
	}
	f.users.mu.Unlock()
	return nil
}

func (f *fakeSubs) ListDue(_ context.Context, now time.Time, limit int) ([]domain.DueUser, error) {
	f.users.mu.Lock()
	defer f.users.mu.Unlock()
	var out []domain.DueUser
	for _, u := range f.users.byID {
		if !u.IsAutoPay || u.SubscriptionStatus != domain.SubscriptionActive || u.NextPayment == nil || u.NextPayment.After(now) {
			continue
		}
		out = append(out, domain.DueUser{UserID: u.ID, PlanType: u.PlanType, NextPayment: *u.NextPayment})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeSubs) Renew(ctx context.Context, rn domain.Renewal) (*domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.periods[rn.PeriodKey] {
		return nil, conflict("transactions_period_key_key")
	}
	f.users.mu.Lock()
	u, ok := f.users.byID[rn.UserID]
	if !ok || u.NextPayment == nil || !u.NextPayment.Equal(rn.DueAt) {
		f.users.mu.Unlock()
		return nil, conflict("next_payment moved")
	}
	next, last := rn.NextAt, rn.DueAt
	u.NextPayment, u.LastPayment = &next, &last
	f.users.mu.Unlock()

	key := rn.PeriodKey
	tx := &domain.Transaction{
		UserID:         rn.UserID,
		Signature:      rn.Signature,
		AmountLamports: rn.AmountLamports,
		Type:           domain.TxSubscriptionRenewal,
		Status:         domain.TxStatusSimulated,
		PeriodKey:      &key,
		Meta:           rn.Meta,
	}
	if err := f.txs.Create(ctx, tx); err != nil {
		return nil, err
	}
	f.periods[rn.PeriodKey] = true
	return tx, nil
}

func (f *fakeSubs) List(_ context.Context, _ domain.SubscriptionStatus, _ domain.Page) ([]domain.Subscription, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Subscription
	for _, s := range f.subs {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

// affiliate earnings

type fakeEarnings struct {
	mu     sync.Mutex
	nextID int64
	list   []*domain.AffiliateEarning
}

func (f *fakeEarnings) CreateEarning(_ context.Context, e *domain.AffiliateEarning) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.list {
		if x.TransactionID == e.TransactionID {
			return conflict("affiliate_earnings_transaction_id_key")
		}
	}
	f.nextID++
	e.ID = f.nextID
	e.Status = domain.EarningPending
	cp := *e
	f.list = append(f.list, &cp)
	return nil
}

func (f *fakeEarnings) Stats(_ context.Context, creatorID int64, _ int) (*domain.AffiliateStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := &domain.AffiliateStats{Recent: []domain.AffiliateEarning{}}
	for _, e := range f.list {
		if e.CreatorID != creatorID {
			continue
		}
		if e.Status == domain.EarningPaid {
			st.PaidLamports += e.AmountLamports
		} else {
			st.PendingLamports += e.AmountLamports
		}
		st.Recent = append(st.Recent, *e)
	}
	return st, nil
}

func (f *fakeEarnings) List(_ context.Context, creatorID int64, _ domain.EarningStatus, _ domain.Page) ([]domain.AffiliateEarning, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.AffiliateEarning{}
	for _, e := range f.list {
		if creatorID == 0 || e.CreatorID == creatorID {
			out = append(out, *e)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeEarnings) MarkPaid(_ context.Context, id int64) (*domain.AffiliateEarning, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.list {
		if e.ID != id {
			continue
		}
		if e.Status == domain.EarningPaid {
			return nil, repository.ErrConflict
		}
		e.Status = domain.EarningPaid
		cp := *e
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

// admin log

type fakeAdminLogs struct {
	mu      sync.Mutex
	entries []domain.AdminLog
}

func (f *fakeAdminLogs) Create(_ context.Context, l *domain.AdminLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l.ID = int64(len(f.entries) + 1)
	f.entries = append(f.entries, *l)
	return nil
}

func (f *fakeAdminLogs) List(_ context.Context, _ domain.Page) ([]domain.AdminLog, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.AdminLog(nil), f.entries...), int64(len(f.entries)), nil
}

// blog

type fakeBlog struct {
	mu         sync.Mutex
	nextID     int64
	posts      map[int64]*domain.BlogPost
	categories []domain.Category
	tags       []domain.Tag
}

func newFakeBlog() *fakeBlog {
	return &fakeBlog{posts: map[int64]*domain.BlogPost{}}
}

func (f *fakeBlog) CreateCategory(_ context.Context, c *domain.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.categories {
		if x.Slug == c.Slug {
			return conflict("blog_categories_slug_key")
		}
	}
	f.nextID++
	c.ID = f.nextID
	f.categories = append(f.categories, *c)
	return nil
}

func (f *fakeBlog) ListCategories(_ context.Context) ([]domain.Category, error) {
	return f.categories, nil
}

func (f *fakeBlog) DeleteCategory(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.categories {
		if c.ID == id {
			f.categories = append(f.categories[:i], f.categories[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeBlog) CreateTag(_ context.Context, t *domain.Tag) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	t.ID = f.nextID
	f.tags = append(f.tags, *t)
	return nil
}

func (f *fakeBlog) ListTags(_ context.Context) ([]domain.Tag, error) {
	return f.tags, nil
}

func (f *fakeBlog) DeleteTag(_ context.Context, id int64) error {
	return repository.ErrNotFound
}

func (f *fakeBlog) savePost(p *domain.BlogPost) error {
	for _, x := range f.posts {
		if x.Slug == p.Slug && x.ID != p.ID {
			return conflict("blog_posts_slug_key")
		}
	}
	if p.ID == 0 {
		f.nextID++
		p.ID = f.nextID
	}
	cp := *p
	f.posts[p.ID] = &cp
	return nil
}

func (f *fakeBlog) CreatePost(_ context.Context, p *domain.BlogPost, _ []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.savePost(p)
}

func (f *fakeBlog) UpdatePost(_ context.Context, p *domain.BlogPost, _ []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.posts[p.ID]; !ok {
		return repository.ErrNotFound
	}
	return f.savePost(p)
}

func (f *fakeBlog) DeletePost(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.posts, id)
	return nil
}

func (f *fakeBlog) GetPostByID(_ context.Context, id int64) (*domain.BlogPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeBlog) GetPostBySlug(_ context.Context, slug string) (*domain.BlogPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.posts {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeBlog) ListPosts(_ context.Context, fl domain.PostFilter) ([]domain.BlogPost, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.BlogPost{}
	for _, p := range f.posts {
		if fl.PublishedOnly && p.Status != domain.PostPublished {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

// market data

type fakeSource struct {
	mu       sync.Mutex
	profiles []dexscreener.Profile
	pairs    []dexscreener.Pair
	err      error
	calls    int
}

func (f *fakeSource) LatestProfiles(_ context.Context) ([]dexscreener.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.profiles, nil
}

func (f *fakeSource) TokenPairs(_ context.Context, _ string, addresses []string) ([]dexscreener.Pair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	want := map[string]bool{}
	for _, a := range addresses {
		want[a] = true
	}
	var out []dexscreener.Pair
	for _, p := range f.pairs {
		if want[p.BaseToken.Address] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeSource) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

// google

type fakeGoogle struct {
	identity *oauth.GoogleIdentity
	err      error
}

func (f *fakeGoogle) Enabled() bool { return true }

func (f *fakeGoogle) Verify(_ context.Context, _ string) (*oauth.GoogleIdentity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.identity, nil
}

// fakePayments accepts every payment without touching a chain. Settled
// transactions are collected in settled.
type fakePayments struct {
	mu      sync.Mutex
	err     error
	reqs    []PaymentRequest
	settled []*domain.Transaction
}

func (f *fakePayments) Check(_ context.Context, userID int64, req PaymentRequest) (*domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Transaction{
		UserID:         userID,
		Signature:      req.Signature,
		AmountLamports: req.ExpectedLamports,
		Type:           req.Type,
		Status:         domain.TxStatusConfirmed,
		Meta:           req.Meta,
	}, nil
}

func (f *fakePayments) Settle(_ context.Context, tx *domain.Transaction) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settled = append(f.settled, tx)
}

func pairFor(address string, liquidity float64, dex string) dexscreener.Pair {
	p := dexscreener.Pair{
		ChainID:     "solana",
		DexID:       dex,
		PairAddress: address + "-" + dex,
		BaseToken:   dexscreener.PairToken{Address: address, Name: "Name " + address, Symbol: "SYM"},
		PriceUSD:    "0.0012",
	}
	p.Liquidity = &struct {
		USD float64 `json:"usd"`
	}{USD: liquidity}
	return p
}
