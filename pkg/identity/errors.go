package identity

import "errors"

var (
	ErrMissingSigningSecret = errors.New("identity webhook signing secret is required")

	// ErrVerificationFailed marks a webhook whose svix signature headers did
	// not verify against the raw payload. Dropped, never retried.
	ErrVerificationFailed = errors.New("identity webhook verification failed")

	// ErrMalformedEvent marks a verified webhook of a known type missing a
	// required field.
	ErrMalformedEvent = errors.New("malformed identity event payload")
)
