package subscription

import (
	"context"

	"github.com/easyppp/easyppp/pkg/tier"
)

// Store is the persistence boundary for subscription records. Every method
// executes as a single atomic step against the backing store; in particular
// ApplyBillingUpdate must be a transactional update scoped by the match key,
// never a read-then-write pair, so concurrently delivered webhooks cannot
// interleave into a half-written record.
type Store interface {
	// Create inserts a Free-tier record for the user. Idempotent: a second
	// call for the same user is a no-op, guarding at-least-once redelivery
	// of the user-created event.
	Create(ctx context.Context, userID string) error

	// FindByUser returns the user's record or ErrRecordNotFound.
	FindByUser(ctx context.Context, userID string) (*Record, error)

	// FindByBillingCustomer returns the record holding the given billing
	// customer ID or ErrRecordNotFound.
	FindByBillingCustomer(ctx context.Context, customerID string) (*Record, error)

	// ApplyBillingUpdate updates only the fields present in change on the
	// record matching the key. Returns ErrRecordNotFound when no record
	// matches and ErrNoFieldsToUpdate when change is empty.
	ApplyBillingUpdate(ctx context.Context, match Match, change BillingChange) error

	// DeleteWithOwnedResources removes the record together with everything
	// that cascades from it (products and their views) in one transaction.
	DeleteWithOwnedResources(ctx context.Context, userID string) error
}

// Match selects the record a billing update applies to. Created events carry
// the local user ID in metadata; updated and deleted events only carry the
// billing customer ID.
type Match struct {
	UserID            string
	BillingCustomerID string
}

// MatchByUser selects the record by local user ID.
func MatchByUser(userID string) Match {
	return Match{UserID: userID}
}

// MatchByBillingCustomer selects the record by billing customer ID.
func MatchByBillingCustomer(customerID string) Match {
	return Match{BillingCustomerID: customerID}
}

// BillingChange is a partial update of the billing-owned fields. Nil means
// leave the field untouched; a pointer to the empty string clears it. Fields
// the caller does not own stay out of the statement entirely, which is what
// prevents lost updates between concurrently processed events.
type BillingChange struct {
	Tier                  *tier.Tier
	BillingCustomerID     *string
	BillingSubscriptionID *string
	BillingItemID         *string
}

// IsEmpty reports whether the change would touch no fields.
func (c BillingChange) IsEmpty() bool {
	return c.Tier == nil && c.BillingCustomerID == nil &&
		c.BillingSubscriptionID == nil && c.BillingItemID == nil
}
