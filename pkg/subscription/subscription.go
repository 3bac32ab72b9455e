package subscription

import (
	"time"

	"github.com/easyppp/easyppp/pkg/tier"
)

// Record tracks which tier a user is on and the billing provider identifiers
// attached to it. There is exactly one record per user; it is created on the
// identity provider's user-created event and follows the user until deletion.
//
// BillingCustomerID is set once the first checkout completes and is never
// cleared afterwards, even across cancellation, so a later re-subscription
// reuses the same billing customer. BillingSubscriptionID and BillingItemID
// are present iff an active paid subscription exists: both set or both empty,
// never only one.
type Record struct {
	UserID                string
	Tier                  tier.Tier
	BillingCustomerID     string
	BillingSubscriptionID string
	BillingItemID         string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// HasBillingCustomer reports whether the user ever completed a checkout.
func (r *Record) HasBillingCustomer() bool {
	return r.BillingCustomerID != ""
}

// HasActiveSubscription reports whether a paid subscription currently exists
// at the billing provider.
func (r *Record) HasActiveSubscription() bool {
	return r.BillingSubscriptionID != ""
}
