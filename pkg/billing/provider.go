package billing

import "context"

// Provider is the payment provider boundary. It covers the hosted flows the
// product needs (checkout, portal deep links), the one direct API mutation
// (subscription cancel during account deletion) and inbound webhook parsing.
//
// Implementations are injected into services at construction time so tests
// can substitute a double; there is no package-level client.
type Provider interface {
	// CreateCheckoutSession creates a hosted checkout for a new subscriber
	// and returns the URL to redirect the user to. The session's
	// subscription metadata carries the local user ID so the later
	// subscription-created webhook can be matched back to the user.
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (string, error)

	// CreateUpdateSession returns a portal deep link that lets an existing
	// subscriber confirm a switch of their subscription item to a new price.
	CreateUpdateSession(ctx context.Context, params UpdateParams) (string, error)

	// CreateCancelSession returns a portal deep link pre-configured to the
	// cancellation flow for the given subscription.
	CreateCancelSession(ctx context.Context, customerID, subscriptionID string) (string, error)

	// CreatePortalSession returns a generic customer portal URL.
	CreatePortalSession(ctx context.Context, customerID string) (string, error)

	// CancelSubscription cancels a subscription immediately, server side.
	CancelSubscription(ctx context.Context, subscriptionID string) error

	// ParseWebhook verifies the signature over the exact raw payload bytes
	// and decodes the event into one of the Event variants. Event types the
	// product does not consume yield (nil, nil).
	ParseWebhook(payload []byte, signatureHeader string) (Event, error)
}

// CheckoutParams describes a new hosted checkout session.
type CheckoutParams struct {
	PriceID    string
	UserID     string // stamped into subscription metadata
	Email      string // pre-fills the billing email when known
	SuccessURL string
	CancelURL  string
}

// UpdateParams describes a subscription update confirmation deep link.
type UpdateParams struct {
	CustomerID     string
	SubscriptionID string
	ItemID         string
	PriceID        string
}
