package tier

import "errors"

var (
	ErrTierNotFound    = errors.New("tier not found")
	ErrPriceIDNotFound = errors.New("no tier matches the given price ID")

	ErrInvalidCatalog       = errors.New("invalid tier catalog configuration")
	ErrDuplicatePriceID     = errors.New("two tiers share the same price ID")
	ErrDuplicateTierName    = errors.New("two tiers share the same name")
	ErrMissingFreeTier      = errors.New("catalog must contain the Free tier")
	ErrPaidTierWithoutPrice = errors.New("paid tier is missing a price ID")
)
