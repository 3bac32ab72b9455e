package subscription

import "errors"

var (
	// ErrRecordNotFound means no record exists for the addressed user or
	// billing customer. Whether that is benign or fatal depends on the
	// caller: billing events matched by customer ID treat it as a no-op,
	// orchestrator calls treat it as a hard error.
	ErrRecordNotFound = errors.New("subscription record not found")

	// ErrInvalidState means the operation requires a billing identifier the
	// record does not carry (e.g. cancelling without an active subscription).
	ErrInvalidState = errors.New("subscription record is not in a state allowing this operation")

	// ErrUnresolvedReference means a billing event referenced data this
	// deployment cannot resolve (unknown price ID). Retryable: the provider
	// redelivers once configuration is fixed.
	ErrUnresolvedReference = errors.New("billing event references unknown data")

	// ErrNoFieldsToUpdate guards against an ApplyBillingUpdate call that
	// would match rows but change nothing.
	ErrNoFieldsToUpdate = errors.New("billing update contains no fields")

	// ErrUnknownTier means an orchestrator was asked for a tier the catalog
	// does not sell.
	ErrUnknownTier = errors.New("requested tier is not in the catalog")
)
