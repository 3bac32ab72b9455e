// Package billing abstracts the payment provider behind the Provider
// interface and ships a Stripe implementation.
//
// Inbound webhooks are verified and decoded at the boundary into a closed
// set of Event variants (SubscriptionCreated, SubscriptionUpdated,
// SubscriptionDeleted). Required fields are validated during parsing, so
// handlers downstream never see a half-populated event. Events of types the
// product does not consume parse to (nil, nil) and should be acknowledged.
package billing
