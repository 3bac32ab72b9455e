// Package subscription keeps the per-user subscription record consistent
// with the identity provider's user lifecycle, the billing provider's
// subscription lifecycle and the user-initiated checkout/portal flows.
//
// All three inputs arrive asynchronously, at least once and possibly out of
// order. The handlers are written so that reprocessing an identical event is
// a no-op: record creation is an upsert-style conditional insert and every
// billing mutation is a last-write-wins partial update executed as a single
// conditional UPDATE scoped by its match key.
//
// The package also exposes the quota gate used by the product CRUD and
// analytics surfaces to decide feature access from the record's tier.
package subscription
