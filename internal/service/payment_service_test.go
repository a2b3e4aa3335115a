//go:build !devbypass

package service

import (
	"context"
	"errors"
	"testing"

	"creatememe/internal/apperr"
	"creatememe/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFee = 100_000_000

type paymentFixture struct {
	svc      *PaymentService
	txs      *fakeTxs
	wallets  *fakeWallets
	chain    *fakeChain
	treasury string
	payer    string
}

// newPaymentFixture links payer to user 1.
func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	treasury, _ := newAddress(t)
	payer, _ := newAddress(t)
	txs := newFakeTxs()
	wallets := newFakeWallets()
	require.NoError(t, wallets.Create(context.Background(), &domain.Wallet{UserID: 1, Address: payer}))
	chain := newFakeChain()
	return &paymentFixture{
		svc:      NewPaymentService(txs, wallets, chain, treasury, nil),
		txs:      txs,
		wallets:  wallets,
		chain:    chain,
		treasury: treasury,
		payer:    payer,
	}
}

func (f *paymentFixture) request(sig string) PaymentRequest {
	return PaymentRequest{Signature: sig, Type: domain.TxTokenCreation, ExpectedLamports: testFee, Payer: f.payer}
}

func TestPaymentCheckRecordsNothing(t *testing.T) {
	f := newPaymentFixture(t)
	sig := newSignature(t)
	f.chain.pay(sig, f.payer, f.treasury, testFee)

	tx, err := f.svc.Check(context.Background(), 1, f.request(sig))
	require.NoError(t, err)
	assert.Equal(t, int64(testFee), tx.AmountLamports)
	assert.Equal(t, domain.TxStatusConfirmed, tx.Status)
	assert.Equal(t, int64(1), tx.UserID)
	assert.Zero(t, f.txs.count())

	_, err = f.svc.Check(context.Background(), 1, f.request(sig))
	require.NoError(t, err, "an unrecorded payment can be checked again")

	require.NoError(t, f.txs.Create(context.Background(), tx))
	_, err = f.svc.Check(context.Background(), 1, f.request(sig))
	assert.True(t, apperr.Is(err, apperr.KindConflict), "replay must conflict, got %v", err)
}

func TestPaymentCheckRejects(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *paymentFixture, sig string)
		kind  apperr.Kind
	}{
		{
			name:  "not on chain",
			setup: func(*paymentFixture, string) {},
			kind:  apperr.KindNotFound,
		},
		{
			name: "wrong recipient",
			setup: func(f *paymentFixture, sig string) {
				f.chain.pay(sig, f.payer, f.payer, testFee)
			},
			kind: apperr.KindValidation,
		},
		{
			name: "amount too low",
			setup: func(f *paymentFixture, sig string) {
				f.chain.pay(sig, f.payer, f.treasury, testFee-1)
			},
			kind: apperr.KindValidation,
		},
		{
			name: "failed transaction",
			setup: func(f *paymentFixture, sig string) {
				f.chain.pay(sig, f.payer, f.treasury, testFee)
				f.chain.txs[sig].Failed = true
				f.chain.txs[sig].Err = `{"InstructionError":[0,"Custom"]}`
			},
			kind: apperr.KindValidation,
		},
		{
			name: "rpc down",
			setup: func(f *paymentFixture, _ string) {
				f.chain.err = errors.New("connection refused")
			},
			kind: apperr.KindUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPaymentFixture(t)
			sig := newSignature(t)
			tt.setup(f, sig)

			_, err := f.svc.Check(context.Background(), 1, f.request(sig))
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
		})
	}
}

func TestPaymentCheckInput(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.svc.Check(context.Background(), 1, PaymentRequest{Signature: "nope", Type: domain.TxTokenCreation, Payer: f.payer})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	req := f.request(newSignature(t))
	req.Payer = "not-an-address"
	_, err = f.svc.Check(context.Background(), 1, req)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	req.Payer = ""
	_, err = f.svc.Check(context.Background(), 1, req)
	assert.True(t, apperr.Is(err, apperr.KindValidation), "payer is required")
}

func TestPaymentCheckRequiresCallersWallet(t *testing.T) {
	ctx := context.Background()

	t.Run("wallet of another user", func(t *testing.T) {
		f := newPaymentFixture(t)
		sig := newSignature(t)
		f.chain.pay(sig, f.payer, f.treasury, testFee)

		_, err := f.svc.Check(ctx, 2, f.request(sig))
		assert.True(t, apperr.Is(err, apperr.KindForbidden), "got %v", err)
	})

	t.Run("unlinked wallet", func(t *testing.T) {
		f := newPaymentFixture(t)
		stranger, _ := newAddress(t)
		sig := newSignature(t)
		f.chain.pay(sig, stranger, f.treasury, testFee)

		req := f.request(sig)
		req.Payer = stranger
		_, err := f.svc.Check(ctx, 1, req)
		assert.True(t, apperr.Is(err, apperr.KindForbidden), "got %v", err)
	})

	t.Run("disconnected wallet", func(t *testing.T) {
		f := newPaymentFixture(t)
		w, err := f.wallets.GetByAddress(ctx, f.payer)
		require.NoError(t, err)
		status := domain.WalletStatusDisconnected
		_, err = f.wallets.Update(ctx, w.ID, &status, nil)
		require.NoError(t, err)

		sig := newSignature(t)
		f.chain.pay(sig, f.payer, f.treasury, testFee)
		_, err = f.svc.Check(ctx, 1, f.request(sig))
		assert.True(t, apperr.Is(err, apperr.KindForbidden), "got %v", err)
	})

	t.Run("transfer signed by someone else", func(t *testing.T) {
		f := newPaymentFixture(t)
		stranger, _ := newAddress(t)
		sig := newSignature(t)
		f.chain.pay(sig, stranger, f.treasury, testFee)

		_, err := f.svc.Check(ctx, 1, f.request(sig))
		assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
	})
}

func TestPaymentCheckWithoutTreasury(t *testing.T) {
	f := newPaymentFixture(t)
	f.svc.treasury = ""

	_, err := f.svc.Check(context.Background(), 1, f.request(newSignature(t)))
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))
}

func TestPaymentSettleRecordsCommission(t *testing.T) {
	users := newFakeUsers()
	earnings := &fakeEarnings{}
	creator := users.add(domain.User{IsCreator: true, CommissionRate: mustRate(t, "0.1")})
	buyer := users.add(domain.User{ReferrerID: &creator.ID})

	f := newPaymentFixture(t)
	buyerWallet, _ := newAddress(t)
	require.NoError(t, f.wallets.Create(context.Background(), &domain.Wallet{UserID: buyer.ID, Address: buyerWallet}))
	f.svc.commissions = NewAffiliateService(users, earnings, mustRate(t, "0.1"))
	sig := newSignature(t)
	f.chain.pay(sig, buyerWallet, f.treasury, testFee)

	req := f.request(sig)
	req.Payer = buyerWallet
	tx, err := f.svc.Check(context.Background(), buyer.ID, req)
	require.NoError(t, err)
	assert.Empty(t, earnings.list, "nothing is booked before the payment is stored")

	require.NoError(t, f.txs.Create(context.Background(), tx))
	f.svc.Settle(context.Background(), tx)

	require.Len(t, earnings.list, 1)
	assert.Equal(t, creator.ID, earnings.list[0].CreatorID)
	assert.Equal(t, int64(testFee/10), earnings.list[0].AmountLamports)
}

func TestFeeSchedule(t *testing.T) {
	fees, err := NewFeeSchedule("0.1", "0.4", "0.05")
	require.NoError(t, err)

	got, ok := fees.For(domain.TxPoolCreation)
	assert.True(t, ok)
	assert.Equal(t, int64(400_000_000), got)

	_, ok = fees.For(domain.TxSubscription)
	assert.False(t, ok)

	_, err = NewFeeSchedule("abc", "0.4", "0.05")
	assert.Error(t, err)
}
