package tier

// Tier is a named subscription level. The set of valid tiers is closed:
// every Tier stored in a subscription record is a key of the catalog.
type Tier string

const (
	TierFree     Tier = "Free"
	TierBasic    Tier = "Basic"
	TierStandard Tier = "Standard"
	TierPremium  Tier = "Premium"
)

// Definition describes a tier: its price, quota limits, capability flags
// and the billing provider's price identifier. PriceID is empty for free
// tiers that never touch the billing provider.
type Definition struct {
	Name               Tier   `yaml:"name"`
	PriceInCents       int64  `yaml:"price_in_cents"`
	MaxProducts        int64  `yaml:"max_products"`
	MaxMonthlyViews    int64  `yaml:"max_monthly_views"`
	CanAccessAnalytics bool   `yaml:"can_access_analytics"`
	CanCustomizeBanner bool   `yaml:"can_customize_banner"`
	CanRemoveBranding  bool   `yaml:"can_remove_branding"`
	PriceID            string `yaml:"price_id"`
}

// IsPaid reports whether the tier is billed through the payment provider.
func (d Definition) IsPaid() bool {
	return d.PriceID != ""
}
