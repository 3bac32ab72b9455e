package subscription

import (
	"context"
	"fmt"

	"github.com/easyppp/easyppp/pkg/tier"
)

// Quota gate: pure evaluations of current usage against the user's tier
// limits. No side effects; errors fail closed so a lookup problem never
// grants access.

func (s *Service) tierFor(ctx context.Context, userID string) (tier.Definition, error) {
	rec, err := s.store.FindByUser(ctx, userID)
	if err != nil {
		return tier.Definition{}, err
	}
	def, err := s.catalog.ByName(rec.Tier)
	if err != nil {
		// A stored tier outside the catalog is a deployment bug, not a user
		// condition.
		return tier.Definition{}, fmt.Errorf("record for user %s holds invalid tier: %w", userID, err)
	}
	return def, nil
}

// CanCreateProduct reports whether the user is under their product quota.
func (s *Service) CanCreateProduct(ctx context.Context, userID string) (bool, error) {
	def, err := s.tierFor(ctx, userID)
	if err != nil {
		return false, err
	}
	count, err := s.quota.CurrentProductCount(ctx, userID)
	if err != nil {
		return false, err
	}
	return count < def.MaxProducts, nil
}

// CanShowDiscountBanner reports whether the user is under their monthly
// page-view quota; over quota the banner stops rendering.
func (s *Service) CanShowDiscountBanner(ctx context.Context, userID string) (bool, error) {
	def, err := s.tierFor(ctx, userID)
	if err != nil {
		return false, err
	}
	views, err := s.quota.CurrentMonthlyViews(ctx, userID)
	if err != nil {
		return false, err
	}
	return views < def.MaxMonthlyViews, nil
}

// CanCustomizeBanner reports whether the user's tier includes banner
// customization.
func (s *Service) CanCustomizeBanner(ctx context.Context, userID string) (bool, error) {
	def, err := s.tierFor(ctx, userID)
	if err != nil {
		return false, err
	}
	return def.CanCustomizeBanner, nil
}

// CanAccessAnalytics reports whether the user's tier includes analytics.
func (s *Service) CanAccessAnalytics(ctx context.Context, userID string) (bool, error) {
	def, err := s.tierFor(ctx, userID)
	if err != nil {
		return false, err
	}
	return def.CanAccessAnalytics, nil
}

// CanRemoveBranding reports whether the user's tier includes branding
// removal on the public banner.
func (s *Service) CanRemoveBranding(ctx context.Context, userID string) (bool, error) {
	def, err := s.tierFor(ctx, userID)
	if err != nil {
		return false, err
	}
	return def.CanRemoveBranding, nil
}
