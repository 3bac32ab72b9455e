package billing

// Event is a verified, validated billing webhook event. The set of variants
// is closed: handlers type-switch over the concrete types below and every
// variant has its required fields checked at the parsing boundary, so a
// missing field is rejected up front instead of surfacing later as an empty
// match key.
type Event interface {
	// EventID returns the provider's event identifier, used for
	// deduplication of redelivered events.
	EventID() string

	isBillingEvent()
}

// SubscriptionCreated signals that a checkout completed and a subscription
// now exists upstream. It is the only event carrying the local user ID,
// recovered from the metadata stamped during checkout creation.
type SubscriptionCreated struct {
	ID             string // provider event id
	SubscriptionID string
	CustomerID     string
	PriceID        string
	ItemID         string // first line item, needed for in-place price changes
	UserID         string // local user id from subscription metadata
}

// SubscriptionUpdated signals a plan change on an existing subscription.
// Metadata is not guaranteed on update events, so the record is matched by
// customer ID instead.
type SubscriptionUpdated struct {
	ID         string
	CustomerID string
	PriceID    string
}

// SubscriptionDeleted signals that the subscription ended upstream.
type SubscriptionDeleted struct {
	ID         string
	CustomerID string
}

func (e SubscriptionCreated) EventID() string { return e.ID }
func (e SubscriptionUpdated) EventID() string { return e.ID }
func (e SubscriptionDeleted) EventID() string { return e.ID }

func (SubscriptionCreated) isBillingEvent() {}
func (SubscriptionUpdated) isBillingEvent() {}
func (SubscriptionDeleted) isBillingEvent() {}
