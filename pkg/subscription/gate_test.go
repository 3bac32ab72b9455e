package subscription_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/easyppp/easyppp/pkg/subscription"
	"github.com/easyppp/easyppp/pkg/tier"
)

func recordOnTier(t tier.Tier) *subscription.Record {
	return &subscription.Record{UserID: "user_1", Tier: t}
}

func TestCanCreateProduct(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// Free allows 1 product, Standard allows 30.
	cases := []struct {
		name  string
		tier  tier.Tier
		count int64
		want  bool
	}{
		{"free under limit", tier.TierFree, 0, true},
		{"free at limit", tier.TierFree, 1, false},
		{"standard under limit", tier.TierStandard, 29, true},
		{"standard at limit", tier.TierStandard, 30, false},
		{"standard over limit after downgrade", tier.TierFree, 12, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			store := &mockStore{}
			quota := &mockQuota{}
			store.On("FindByUser", mock.Anything, "user_1").Return(recordOnTier(tc.tier), nil)
			quota.On("CurrentProductCount", mock.Anything, "user_1").Return(tc.count, nil)

			svc := newTestService(t, store, &mockProvider{}, quota)
			ok, err := svc.CanCreateProduct(ctx, "user_1")
			require.NoError(t, err)
			assert.Equal(t, tc.want, ok)
		})
	}

	t.Run("usage lookup failure fails closed", func(t *testing.T) {
		t.Parallel()
		store := &mockStore{}
		quota := &mockQuota{}
		store.On("FindByUser", mock.Anything, "user_1").Return(recordOnTier(tier.TierPremium), nil)
		quota.On("CurrentProductCount", mock.Anything, "user_1").Return(int64(0), errors.New("db down"))

		svc := newTestService(t, store, &mockProvider{}, quota)
		ok, err := svc.CanCreateProduct(ctx, "user_1")
		require.Error(t, err)
		assert.False(t, ok)
	})

	t.Run("unknown user fails closed", func(t *testing.T) {
		t.Parallel()
		store := &mockStore{}
		store.On("FindByUser", mock.Anything, "user_1").Return(nil, subscription.ErrRecordNotFound)

		svc := newTestService(t, store, &mockProvider{}, &mockQuota{})
		ok, err := svc.CanCreateProduct(ctx, "user_1")
		require.ErrorIs(t, err, subscription.ErrRecordNotFound)
		assert.False(t, ok)
	})
}

func TestCanShowDiscountBanner(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cases := []struct {
		name  string
		tier  tier.Tier
		views int64
		want  bool
	}{
		{"free under limit", tier.TierFree, 4_999, true},
		{"free at limit", tier.TierFree, 5_000, false},
		{"premium under limit", tier.TierPremium, 999_999, true},
		{"premium at limit", tier.TierPremium, 1_000_000, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			store := &mockStore{}
			quota := &mockQuota{}
			store.On("FindByUser", mock.Anything, "user_1").Return(recordOnTier(tc.tier), nil)
			quota.On("CurrentMonthlyViews", mock.Anything, "user_1").Return(tc.views, nil)

			svc := newTestService(t, store, &mockProvider{}, quota)
			ok, err := svc.CanShowDiscountBanner(ctx, "user_1")
			require.NoError(t, err)
			assert.Equal(t, tc.want, ok)
		})
	}
}

func TestCapabilityFlags(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	check := func(t *testing.T, fn func(*subscription.Service) (bool, error), tr tier.Tier, want bool) {
		t.Helper()
		store := &mockStore{}
		store.On("FindByUser", mock.Anything, "user_1").Return(recordOnTier(tr), nil)
		svc := newTestService(t, store, &mockProvider{}, &mockQuota{})
		ok, err := fn(svc)
		require.NoError(t, err)
		assert.Equal(t, want, ok)
	}

	t.Run("analytics", func(t *testing.T) {
		t.Parallel()
		analytics := func(svc *subscription.Service) (bool, error) { return svc.CanAccessAnalytics(ctx, "user_1") }
		check(t, analytics, tier.TierFree, false)
		check(t, analytics, tier.TierBasic, true)
	})

	t.Run("banner customization", func(t *testing.T) {
		t.Parallel()
		customize := func(svc *subscription.Service) (bool, error) { return svc.CanCustomizeBanner(ctx, "user_1") }
		check(t, customize, tier.TierBasic, false)
		check(t, customize, tier.TierStandard, true)
	})

	t.Run("branding removal", func(t *testing.T) {
		t.Parallel()
		branding := func(svc *subscription.Service) (bool, error) { return svc.CanRemoveBranding(ctx, "user_1") }
		check(t, branding, tier.TierFree, false)
		check(t, branding, tier.TierPremium, true)
	})

	t.Run("stored tier outside catalog fails closed", func(t *testing.T) {
		t.Parallel()
		store := &mockStore{}
		store.On("FindByUser", mock.Anything, "user_1").Return(recordOnTier(tier.Tier("Legacy")), nil)

		svc := newTestService(t, store, &mockProvider{}, &mockQuota{})
		ok, err := svc.CanAccessAnalytics(ctx, "user_1")
		require.Error(t, err)
		assert.False(t, ok)
	})
}
