package tier_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easyppp/easyppp/pkg/tier"
)

func testConfig() tier.Config {
	return tier.Config{
		BasicPriceID:    "price_basic_123",
		StandardPriceID: "price_standard_456",
		PremiumPriceID:  "price_premium_789",
	}
}

func TestNewCatalog_Validation(t *testing.T) {
	t.Parallel()

	t.Run("rejects empty catalog", func(t *testing.T) {
		t.Parallel()
		_, err := tier.NewCatalog()
		assert.ErrorIs(t, err, tier.ErrInvalidCatalog)
	})

	t.Run("rejects duplicate price IDs", func(t *testing.T) {
		t.Parallel()
		_, err := tier.NewCatalog(
			tier.Definition{Name: tier.TierFree},
			tier.Definition{Name: tier.TierBasic, PriceID: "price_x"},
			tier.Definition{Name: tier.TierStandard, PriceID: "price_x"},
		)
		assert.ErrorIs(t, err, tier.ErrDuplicatePriceID)
	})

	t.Run("rejects duplicate tier names", func(t *testing.T) {
		t.Parallel()
		_, err := tier.NewCatalog(
			tier.Definition{Name: tier.TierFree},
			tier.Definition{Name: tier.TierBasic, PriceID: "price_a"},
			tier.Definition{Name: tier.TierBasic, PriceID: "price_b"},
		)
		assert.ErrorIs(t, err, tier.ErrDuplicateTierName)
	})

	t.Run("rejects paid tier without price ID", func(t *testing.T) {
		t.Parallel()
		_, err := tier.NewCatalog(
			tier.Definition{Name: tier.TierFree},
			tier.Definition{Name: tier.TierBasic},
		)
		assert.ErrorIs(t, err, tier.ErrPaidTierWithoutPrice)
	})

	t.Run("rejects catalog without Free tier", func(t *testing.T) {
		t.Parallel()
		_, err := tier.NewCatalog(
			tier.Definition{Name: tier.TierBasic, PriceID: "price_a"},
		)
		assert.ErrorIs(t, err, tier.ErrMissingFreeTier)
	})
}

func TestCatalog_PriceIDBijection(t *testing.T) {
	t.Parallel()

	c, err := tier.DefaultCatalog(testConfig())
	require.NoError(t, err)

	// Every paid tier's price ID must resolve back to exactly that tier.
	for _, def := range c.Definitions() {
		if !def.IsPaid() {
			continue
		}
		resolved, err := c.ByPriceID(def.PriceID)
		require.NoError(t, err)
		assert.Equal(t, def.Name, resolved.Name)
	}
}

func TestCatalog_Lookups(t *testing.T) {
	t.Parallel()

	c, err := tier.DefaultCatalog(testConfig())
	require.NoError(t, err)

	t.Run("by name", func(t *testing.T) {
		t.Parallel()
		def, err := c.ByName(tier.TierStandard)
		require.NoError(t, err)
		assert.Equal(t, int64(30), def.MaxProducts)
		assert.Equal(t, int64(100_000), def.MaxMonthlyViews)
		assert.True(t, def.CanCustomizeBanner)
	})

	t.Run("unknown name", func(t *testing.T) {
		t.Parallel()
		_, err := c.ByName(tier.Tier("Enterprise"))
		assert.ErrorIs(t, err, tier.ErrTierNotFound)
	})

	t.Run("unknown price ID", func(t *testing.T) {
		t.Parallel()
		_, err := c.ByPriceID("price_unknown")
		assert.ErrorIs(t, err, tier.ErrPriceIDNotFound)
	})

	t.Run("free tier is never paid", func(t *testing.T) {
		t.Parallel()
		assert.False(t, c.Free().IsPaid())
		assert.Equal(t, tier.TierFree, c.Free().Name)
	})
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	t.Run("valid file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "tiers.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
- name: Free
  max_products: 1
  max_monthly_views: 5000
- name: Basic
  price_in_cents: 1900
  max_products: 5
  max_monthly_views: 10000
  can_access_analytics: true
  can_remove_branding: true
  price_id: price_basic_yaml
`), 0o600))

		c, err := tier.LoadFile(path)
		require.NoError(t, err)

		def, err := c.ByPriceID("price_basic_yaml")
		require.NoError(t, err)
		assert.Equal(t, tier.TierBasic, def.Name)
		assert.True(t, def.CanAccessAnalytics)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := tier.LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, tier.ErrInvalidCatalog)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "broken.yaml")
		require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0o600))
		_, err := tier.LoadFile(path)
		assert.ErrorIs(t, err, tier.ErrInvalidCatalog)
	})
}
