package identity

import "net/http"

// Provider verifies and parses webhooks from the identity provider managing
// user accounts. Authentication itself is delegated entirely to the
// provider; this boundary only consumes its user lifecycle notifications.
type Provider interface {
	// ParseWebhook verifies the signature headers against the raw payload
	// bytes and decodes the event into one of the Event variants. Event
	// types the product does not consume yield (nil, nil).
	ParseWebhook(payload []byte, headers http.Header) (Event, error)
}

// Event is a verified identity webhook event; the set of variants is closed.
type Event interface {
	// EventID returns the provider's delivery identifier, used for
	// deduplication of redelivered events.
	EventID() string

	isIdentityEvent()
}

// UserCreated signals a new user account. Every user gets a local
// subscription record on the Free tier as soon as this arrives.
type UserCreated struct {
	ID     string
	UserID string
}

// UserDeleted signals that the account was removed upstream. The local
// record and everything it owns must go, but only after any active paid
// subscription has been cancelled at the billing provider.
type UserDeleted struct {
	ID     string
	UserID string
}

func (e UserCreated) EventID() string { return e.ID }
func (e UserDeleted) EventID() string { return e.ID }

func (UserCreated) isIdentityEvent() {}
func (UserDeleted) isIdentityEvent() {}
