package tier

import (
	"errors"
	"fmt"
	"slices"
)

// Catalog is an immutable lookup table of tier definitions. It guarantees
// that tier names are unique and that the mapping from billing price IDs to
// tiers is a bijection, so a webhook carrying a price ID always resolves to
// exactly one tier.
type Catalog struct {
	ordered []Definition
	byName  map[Tier]Definition
	byPrice map[string]Definition
}

// NewCatalog validates the given definitions and builds a catalog.
// Violations are configuration errors: the constructor fails instead of
// deferring to runtime lookups.
func NewCatalog(defs ...Definition) (*Catalog, error) {
	if len(defs) == 0 {
		return nil, errors.Join(ErrInvalidCatalog, errors.New("no tier definitions provided"))
	}

	c := &Catalog{
		ordered: slices.Clone(defs),
		byName:  make(map[Tier]Definition, len(defs)),
		byPrice: make(map[string]Definition, len(defs)),
	}

	for _, def := range defs {
		if def.Name == "" {
			return nil, errors.Join(ErrInvalidCatalog, errors.New("tier definition has no name"))
		}
		if _, exists := c.byName[def.Name]; exists {
			return nil, errors.Join(ErrInvalidCatalog, ErrDuplicateTierName,
				fmt.Errorf("tier %q defined twice", def.Name))
		}
		c.byName[def.Name] = def

		if def.Name != TierFree && !def.IsPaid() {
			return nil, errors.Join(ErrInvalidCatalog, ErrPaidTierWithoutPrice,
				fmt.Errorf("tier %q has no price ID", def.Name))
		}
		if def.IsPaid() {
			if prev, exists := c.byPrice[def.PriceID]; exists {
				return nil, errors.Join(ErrInvalidCatalog, ErrDuplicatePriceID,
					fmt.Errorf("price ID %q used by both %q and %q", def.PriceID, prev.Name, def.Name))
			}
			c.byPrice[def.PriceID] = def
		}
	}

	if _, exists := c.byName[TierFree]; !exists {
		return nil, errors.Join(ErrInvalidCatalog, ErrMissingFreeTier)
	}

	return c, nil
}

// ByName returns the definition for a tier name.
func (c *Catalog) ByName(t Tier) (Definition, error) {
	def, ok := c.byName[t]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrTierNotFound, t)
	}
	return def, nil
}

// ByPriceID resolves a billing provider price ID to a tier definition.
// Absence means the provider sent a price this deployment does not sell,
// which callers treat as a retryable condition.
func (c *Catalog) ByPriceID(priceID string) (Definition, error) {
	def, ok := c.byPrice[priceID]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrPriceIDNotFound, priceID)
	}
	return def, nil
}

// Free returns the Free tier definition. The constructor guarantees it exists.
func (c *Catalog) Free() Definition {
	return c.byName[TierFree]
}

// Definitions returns the definitions in their configured order,
// e.g. for rendering a pricing page.
func (c *Catalog) Definitions() []Definition {
	return slices.Clone(c.ordered)
}
