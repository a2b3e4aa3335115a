package service

import (
	"context"
	"testing"

	"creatememe/internal/apperr"
	"creatememe/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRate(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestCommissionFloors(t *testing.T) {
	tests := []struct {
		amount int64
		rate   string
		want   int64
	}{
		{100_000_000, "0.1", 10_000_000},
		{999, "0.1", 99},
		{1, "0.5", 0},
		{0, "0.1", 0},
		{-5, "0.1", 0},
		{100, "0", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Commission(tt.amount, mustRate(t, tt.rate)), "%d * %s", tt.amount, tt.rate)
	}
}

func newAffiliateFixture(t *testing.T) (*AffiliateService, *fakeUsers, *fakeEarnings) {
	t.Helper()
	users := newFakeUsers()
	earnings := &fakeEarnings{}
	return NewAffiliateService(users, earnings, mustRate(t, "0.1")), users, earnings
}

func TestAttributeReferralOnce(t *testing.T) {
	svc, users, _ := newAffiliateFixture(t)
	ctx := context.Background()

	code := "ALPHA"
	creator := users.add(domain.User{IsCreator: true, PromoCode: &code})
	other := "BETA"
	second := users.add(domain.User{IsCreator: true, PromoCode: &other})
	u := users.add(domain.User{})

	require.NoError(t, svc.AttributeReferral(ctx, u.ID, "alpha"))

	err := svc.AttributeReferral(ctx, u.ID, "BETA")
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	got, _ := users.GetByID(ctx, u.ID)
	require.NotNil(t, got.ReferrerID)
	assert.Equal(t, creator.ID, *got.ReferrerID)
	assert.NotEqual(t, second.ID, *got.ReferrerID)
}

func TestAttributeReferralRejects(t *testing.T) {
	svc, users, _ := newAffiliateFixture(t)
	ctx := context.Background()

	own := "SELF"
	self := users.add(domain.User{IsCreator: true, PromoCode: &own})
	plain := "PLAIN"
	users.add(domain.User{PromoCode: &plain})
	banned := "BANNED"
	users.add(domain.User{IsCreator: true, PromoCode: &banned, Status: domain.UserStatusBanned})
	u := users.add(domain.User{})

	for _, code := range []string{"", "missing", "plain", "banned"} {
		err := svc.AttributeReferral(ctx, u.ID, code)
		assert.True(t, apperr.Is(err, apperr.KindValidation), "code %q: %v", code, err)
	}

	err := svc.AttributeReferral(ctx, self.ID, "SELF")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestBecomeCreator(t *testing.T) {
	svc, users, _ := newAffiliateFixture(t)
	ctx := context.Background()

	a := users.add(domain.User{})
	b := users.add(domain.User{CommissionRate: mustRate(t, "0.25")})

	got, err := svc.BecomeCreator(ctx, a.ID, "moon_boys")
	require.NoError(t, err)
	assert.True(t, got.IsCreator)
	assert.Equal(t, "MOON_BOYS", *got.PromoCode)
	assert.True(t, got.CommissionRate.Equal(mustRate(t, "0.1")))

	_, err = svc.BecomeCreator(ctx, a.ID, "other")
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = svc.BecomeCreator(ctx, b.ID, "MOON_BOYS")
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = svc.BecomeCreator(ctx, b.ID, "x")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	got, err = svc.BecomeCreator(ctx, b.ID, "whales")
	require.NoError(t, err)
	assert.True(t, got.CommissionRate.Equal(mustRate(t, "0.25")), "custom rate is kept")
}

func TestRecordCommission(t *testing.T) {
	svc, users, earnings := newAffiliateFixture(t)
	ctx := context.Background()

	creator := users.add(domain.User{IsCreator: true, CommissionRate: mustRate(t, "0.2")})
	notCreator := users.add(domain.User{})
	referred := users.add(domain.User{ReferrerID: &creator.ID})
	orphan := users.add(domain.User{})
	misreferred := users.add(domain.User{ReferrerID: &notCreator.ID})

	tx := &domain.Transaction{ID: 10, UserID: referred.ID, AmountLamports: 1_000}
	require.NoError(t, svc.RecordCommission(ctx, tx))
	require.NoError(t, svc.RecordCommission(ctx, tx), "duplicate is ignored")

	require.NoError(t, svc.RecordCommission(ctx, &domain.Transaction{ID: 11, UserID: orphan.ID, AmountLamports: 1_000}))
	require.NoError(t, svc.RecordCommission(ctx, &domain.Transaction{ID: 12, UserID: misreferred.ID, AmountLamports: 1_000}))
	require.NoError(t, svc.RecordCommission(ctx, &domain.Transaction{ID: 13, UserID: referred.ID, AmountLamports: 4}))

	require.Len(t, earnings.list, 1)
	assert.Equal(t, int64(200), earnings.list[0].AmountLamports)
	assert.Equal(t, referred.ID, earnings.list[0].ReferredUserID)

	st, err := svc.Stats(ctx, creator.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(200), st.PendingLamports)

	_, err = svc.Stats(ctx, notCreator.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = svc.MarkPaid(ctx, earnings.list[0].ID)
	require.NoError(t, err)
	_, err = svc.MarkPaid(ctx, earnings.list[0].ID)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}
