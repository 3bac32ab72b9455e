package billing

import "errors"

var (
	ErrMissingAPIKey        = errors.New("billing provider API key is required")
	ErrMissingWebhookSecret = errors.New("billing provider webhook secret is required")

	// ErrVerificationFailed marks a webhook whose signature or timestamp did
	// not check out. Such events are dropped, never retried.
	ErrVerificationFailed = errors.New("webhook signature verification failed")

	// ErrMalformedEvent marks a webhook of a known type that is missing a
	// field the handlers require. Treated the same as a verification
	// failure: rejected at the boundary.
	ErrMalformedEvent = errors.New("malformed webhook event payload")

	// ErrProviderUnavailable wraps transport or API errors from outbound
	// provider calls.
	ErrProviderUnavailable = errors.New("billing provider request failed")

	ErrNoSessionURL = errors.New("billing provider returned no session URL")
)
