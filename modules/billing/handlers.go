package billing

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	pkgbilling "github.com/easyppp/easyppp/pkg/billing"
	"github.com/easyppp/easyppp/pkg/subscription"
	"github.com/easyppp/easyppp/pkg/tier"
)

type handlers struct {
	opts RouterOptions
}

// readPayload reads the raw request body. Webhook signatures are computed
// over the exact byte stream, so the body is never re-parsed before
// verification.
func (h *handlers) readPayload(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.opts.MaxBodyBytes))
	if err != nil {
		http.Error(w, "unreadable payload", http.StatusBadRequest)
		return nil, false
	}
	return payload, true
}

// The webhook response code is the redelivery protocol: 400 drops the event
// for good (treated as an attack, not a transient fault), 2xx acknowledges
// it, anything else makes the provider redeliver.
func (h *handlers) billingWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	payload, ok := h.readPayload(w, r)
	if !ok {
		return
	}

	evt, err := h.opts.BillingParser.ParseWebhook(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		h.opts.Logger.WarnContext(ctx, "billing webhook rejected", "error", err)
		http.Error(w, "invalid webhook", http.StatusBadRequest)
		return
	}
	if evt == nil { // event type the product does not consume
		w.WriteHeader(http.StatusOK)
		return
	}

	if h.opts.Dedup.Seen(ctx, "billing", evt.EventID()) {
		h.opts.Logger.DebugContext(ctx, "duplicate billing event skipped", "event_id", evt.EventID())
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := h.opts.Service.HandleBillingEvent(ctx, evt); err != nil {
		h.opts.Logger.ErrorContext(ctx, "billing event failed, awaiting redelivery",
			"event_id", evt.EventID(), "error", err)
		http.Error(w, "event processing failed", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *handlers) identityWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	payload, ok := h.readPayload(w, r)
	if !ok {
		return
	}

	evt, err := h.opts.IdentityParser.ParseWebhook(payload, r.Header)
	if err != nil {
		h.opts.Logger.WarnContext(ctx, "identity webhook rejected", "error", err)
		http.Error(w, "invalid webhook", http.StatusBadRequest)
		return
	}
	if evt == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	if h.opts.Dedup.Seen(ctx, "identity", evt.EventID()) {
		h.opts.Logger.DebugContext(ctx, "duplicate identity event skipped", "event_id", evt.EventID())
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := h.opts.Service.HandleIdentityEvent(ctx, evt); err != nil {
		h.opts.Logger.ErrorContext(ctx, "identity event failed, awaiting redelivery",
			"event_id", evt.EventID(), "error", err)
		http.Error(w, "event processing failed", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *handlers) checkout(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	url, err := h.opts.Service.StartCheckout(r.Context(), user, tier.Tier(r.FormValue("tier")))
	if err != nil {
		h.flowError(w, r, "checkout", err)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func (h *handlers) cancel(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	url, err := h.opts.Service.StartCancel(r.Context(), user.ID)
	if err != nil {
		h.flowError(w, r, "cancel", err)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func (h *handlers) portal(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	url, err := h.opts.Service.StartManage(r.Context(), user.ID)
	if err != nil {
		h.flowError(w, r, "portal", err)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func (h *handlers) tiers(w http.ResponseWriter, r *http.Request) {
	type tierResponse struct {
		Name               tier.Tier `json:"name"`
		PriceInCents       int64     `json:"price_in_cents"`
		MaxProducts        int64     `json:"max_products"`
		MaxMonthlyViews    int64     `json:"max_monthly_views"`
		CanAccessAnalytics bool      `json:"can_access_analytics"`
		CanCustomizeBanner bool      `json:"can_customize_banner"`
		CanRemoveBranding  bool      `json:"can_remove_branding"`
	}

	defs := h.opts.Service.Tiers()
	resp := make([]tierResponse, 0, len(defs))
	for _, d := range defs {
		resp = append(resp, tierResponse{
			Name:               d.Name,
			PriceInCents:       d.PriceInCents,
			MaxProducts:        d.MaxProducts,
			MaxMonthlyViews:    d.MaxMonthlyViews,
			CanAccessAnalytics: d.CanAccessAnalytics,
			CanCustomizeBanner: d.CanCustomizeBanner,
			CanRemoveBranding:  d.CanRemoveBranding,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *handlers) authenticate(w http.ResponseWriter, r *http.Request) (subscription.User, bool) {
	if h.opts.Auth == nil {
		http.Error(w, "authentication not configured", http.StatusUnauthorized)
		return subscription.User{}, false
	}
	user, err := h.opts.Auth(r)
	if err != nil || user.ID == "" {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return subscription.User{}, false
	}
	return user, true
}

// flowError maps orchestrator failures onto user-facing status codes.
func (h *handlers) flowError(w http.ResponseWriter, r *http.Request, flow string, err error) {
	h.opts.Logger.WarnContext(r.Context(), "billing flow failed", "flow", flow, "error", err)

	switch {
	case errors.Is(err, subscription.ErrUnknownTier):
		http.Error(w, "unknown tier", http.StatusBadRequest)
	case errors.Is(err, subscription.ErrRecordNotFound):
		http.Error(w, "no subscription record", http.StatusNotFound)
	case errors.Is(err, subscription.ErrInvalidState):
		http.Error(w, "subscription state does not allow this", http.StatusConflict)
	case errors.Is(err, pkgbilling.ErrProviderUnavailable):
		http.Error(w, "billing provider unavailable", http.StatusBadGateway)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
