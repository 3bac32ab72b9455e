package tier

// Config carries the billing price IDs for the default catalog.
// The IDs are created in the billing provider's dashboard and differ
// between environments, so they come from the environment rather than code.
type Config struct {
	BasicPriceID    string `env:"BASIC_PLAN_PRICE_ID,required"`
	StandardPriceID string `env:"STANDARD_PLAN_PRICE_ID,required"`
	PremiumPriceID  string `env:"PREMIUM_PLAN_PRICE_ID,required"`
}

// DefaultDefinitions returns the product's built-in tier ladder with price
// IDs filled in from config.
func DefaultDefinitions(cfg Config) []Definition {
	return []Definition{
		{
			Name:            TierFree,
			PriceInCents:    0,
			MaxProducts:     1,
			MaxMonthlyViews: 5_000,
		},
		{
			Name:               TierBasic,
			PriceInCents:       1_900,
			MaxProducts:        5,
			MaxMonthlyViews:    10_000,
			CanAccessAnalytics: true,
			CanRemoveBranding:  true,
			PriceID:            cfg.BasicPriceID,
		},
		{
			Name:               TierStandard,
			PriceInCents:       4_900,
			MaxProducts:        30,
			MaxMonthlyViews:    100_000,
			CanAccessAnalytics: true,
			CanCustomizeBanner: true,
			CanRemoveBranding:  true,
			PriceID:            cfg.StandardPriceID,
		},
		{
			Name:               TierPremium,
			PriceInCents:       9_900,
			MaxProducts:        50,
			MaxMonthlyViews:    1_000_000,
			CanAccessAnalytics: true,
			CanCustomizeBanner: true,
			CanRemoveBranding:  true,
			PriceID:            cfg.PremiumPriceID,
		},
	}
}

// DefaultCatalog builds a catalog from DefaultDefinitions.
func DefaultCatalog(cfg Config) (*Catalog, error) {
	return NewCatalog(DefaultDefinitions(cfg)...)
}
