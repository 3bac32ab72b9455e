package billing

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/easyppp/easyppp/pkg/billing"
	"github.com/easyppp/easyppp/pkg/identity"
	"github.com/easyppp/easyppp/pkg/subscription"
	"github.com/easyppp/easyppp/pkg/tier"
)

// Service is the slice of the subscription service this module mounts.
type Service interface {
	HandleIdentityEvent(ctx context.Context, evt identity.Event) error
	HandleBillingEvent(ctx context.Context, evt billing.Event) error
	StartCheckout(ctx context.Context, user subscription.User, t tier.Tier) (string, error)
	StartCancel(ctx context.Context, userID string) (string, error)
	StartManage(ctx context.Context, userID string) (string, error)
	Tiers() []tier.Definition
}

// BillingParser verifies and decodes billing provider webhooks.
type BillingParser interface {
	ParseWebhook(payload []byte, signatureHeader string) (billing.Event, error)
}

// AuthFunc resolves the authenticated user from a request. Authentication is
// handled upstream (the identity provider's middleware); this hook only
// extracts the result.
type AuthFunc func(*http.Request) (subscription.User, error)

// RouterOptions wires the billing module's dependencies.
type RouterOptions struct {
	Service        Service
	BillingParser  BillingParser
	IdentityParser identity.Provider
	Auth           AuthFunc
	Dedup          subscription.Deduper
	Logger         *slog.Logger
	MaxBodyBytes   int64 // webhook payload cap; defaults to 64 KiB
}

// Router mounts the webhook endpoints and the user-facing checkout/portal
// flows.
//
//	POST /webhooks/billing   — billing provider events
//	POST /webhooks/identity  — identity provider events
//	POST /checkout?tier=...  — redirect into checkout or plan-change flow
//	POST /cancel             — redirect into the portal cancellation flow
//	POST /portal             — redirect into the generic customer portal
//	GET  /tiers              — tier catalog as JSON
func Router(opts RouterOptions) chi.Router {
	if opts.Service == nil {
		panic("billing module: Service is required")
	}
	if opts.BillingParser == nil {
		panic("billing module: BillingParser is required")
	}
	if opts.IdentityParser == nil {
		panic("billing module: IdentityParser is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Dedup == nil {
		opts.Dedup = subscription.NopDeduper{}
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 64 << 10
	}

	h := &handlers{opts: opts}

	r := chi.NewRouter()
	r.Post("/webhooks/billing", h.billingWebhook)
	r.Post("/webhooks/identity", h.identityWebhook)
	r.Post("/checkout", h.checkout)
	r.Post("/cancel", h.cancel)
	r.Post("/portal", h.portal)
	r.Get("/tiers", h.tiers)
	return r
}
