package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

// metadataUserIDKey is the subscription metadata key carrying the local user
// ID through checkout and back via the subscription-created webhook.
const metadataUserIDKey = "localUserId"

// Config holds Stripe credentials and webhook settings.
type Config struct {
	SecretKey        string        `env:"STRIPE_SECRET_KEY,required"`
	WebhookSecret    string        `env:"STRIPE_WEBHOOK_SECRET,required"`
	WebhookTolerance time.Duration `env:"STRIPE_WEBHOOK_TOLERANCE" envDefault:"5m"` // replay rejection window
	ReturnURL        string        `env:"BILLING_RETURN_URL,required"`              // where portal sessions send the user back
}

// StripeProvider implements Provider on top of the official Stripe SDK.
type StripeProvider struct {
	api *client.API
	cfg Config
}

// NewStripeProvider builds a provider with its own API client. The client is
// owned by the provider instance rather than shared package state so tests
// and multi-tenant setups can construct independent providers.
func NewStripeProvider(cfg Config) (*StripeProvider, error) {
	if cfg.SecretKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.WebhookSecret == "" {
		return nil, ErrMissingWebhookSecret
	}

	api := &client.API{}
	api.Init(cfg.SecretKey, nil)

	return &StripeProvider{api: api, cfg: cfg}, nil
}

// CreateCheckoutSession creates a hosted subscription checkout. The local
// user ID is stamped into the subscription metadata; it is the only link
// between the upcoming subscription-created webhook and the local account.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (string, error) {
	req := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Price:    stripe.String(params.PriceID),
			Quantity: stripe.Int64(1),
		}},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{metadataUserIDKey: params.UserID},
		},
		SuccessURL: stripe.String(params.SuccessURL),
		CancelURL:  stripe.String(params.CancelURL),
	}
	if params.Email != "" {
		req.CustomerEmail = stripe.String(params.Email)
	}
	req.Context = ctx
	req.IdempotencyKey = stripe.String(uuid.NewString())

	sess, err := p.api.CheckoutSessions.New(req)
	if err != nil {
		return "", errors.Join(ErrProviderUnavailable, fmt.Errorf("create checkout session: %w", err))
	}
	if sess.URL == "" {
		return "", ErrNoSessionURL
	}
	return sess.URL, nil
}

// CreateUpdateSession returns a portal deep link to confirm switching the
// existing subscription item to a new price. Routing plan changes through
// the existing subscription keeps the user on a single subscription instead
// of accumulating a second one via checkout.
func (p *StripeProvider) CreateUpdateSession(ctx context.Context, params UpdateParams) (string, error) {
	req := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(params.CustomerID),
		ReturnURL: stripe.String(p.cfg.ReturnURL),
		FlowData: &stripe.BillingPortalSessionFlowDataParams{
			Type: stripe.String(string(stripe.BillingPortalSessionFlowTypeSubscriptionUpdateConfirm)),
			SubscriptionUpdateConfirm: &stripe.BillingPortalSessionFlowDataSubscriptionUpdateConfirmParams{
				Subscription: stripe.String(params.SubscriptionID),
				Items: []*stripe.BillingPortalSessionFlowDataSubscriptionUpdateConfirmItemParams{{
					ID:       stripe.String(params.ItemID),
					Price:    stripe.String(params.PriceID),
					Quantity: stripe.Int64(1),
				}},
			},
		},
	}
	req.Context = ctx

	return p.newPortalSession(req)
}

// CreateCancelSession returns a portal deep link into the cancellation flow.
func (p *StripeProvider) CreateCancelSession(ctx context.Context, customerID, subscriptionID string) (string, error) {
	req := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(p.cfg.ReturnURL),
		FlowData: &stripe.BillingPortalSessionFlowDataParams{
			Type: stripe.String(string(stripe.BillingPortalSessionFlowTypeSubscriptionCancel)),
			SubscriptionCancel: &stripe.BillingPortalSessionFlowDataSubscriptionCancelParams{
				Subscription: stripe.String(subscriptionID),
			},
		},
	}
	req.Context = ctx

	return p.newPortalSession(req)
}

// CreatePortalSession returns a general customer portal URL.
func (p *StripeProvider) CreatePortalSession(ctx context.Context, customerID string) (string, error) {
	req := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(p.cfg.ReturnURL),
	}
	req.Context = ctx

	return p.newPortalSession(req)
}

func (p *StripeProvider) newPortalSession(req *stripe.BillingPortalSessionParams) (string, error) {
	sess, err := p.api.BillingPortalSessions.New(req)
	if err != nil {
		return "", errors.Join(ErrProviderUnavailable, fmt.Errorf("create portal session: %w", err))
	}
	if sess.URL == "" {
		return "", ErrNoSessionURL
	}
	return sess.URL, nil
}

// CancelSubscription cancels the subscription immediately. Used when the
// local account is being deleted and the upstream subscription must not be
// left billing a removed user.
func (p *StripeProvider) CancelSubscription(ctx context.Context, subscriptionID string) error {
	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx

	if _, err := p.api.Subscriptions.Cancel(subscriptionID, params); err != nil {
		return errors.Join(ErrProviderUnavailable, fmt.Errorf("cancel subscription %s: %w", subscriptionID, err))
	}
	return nil
}

// ParseWebhook verifies the Stripe signature over the exact raw payload and
// decodes the event. Signature verification must see the original byte
// stream: the HMAC is computed over it, not over a re-serialized form.
func (p *StripeProvider) ParseWebhook(payload []byte, signatureHeader string) (Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, p.cfg.WebhookSecret, webhook.ConstructEventOptions{
		Tolerance: p.cfg.WebhookTolerance,
		// The account's pinned API version rarely matches the SDK's; the
		// fields consumed here are stable across versions.
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, errors.Join(ErrVerificationFailed, err)
	}

	switch event.Type {
	case "customer.subscription.created":
		sub, err := decodeSubscription(event.Data.Raw)
		if err != nil {
			return nil, err
		}
		item, err := firstItem(sub)
		if err != nil {
			return nil, err
		}
		userID := sub.Metadata[metadataUserIDKey]
		if userID == "" {
			return nil, fmt.Errorf("%w: subscription %s has no %s metadata", ErrMalformedEvent, sub.ID, metadataUserIDKey)
		}
		return SubscriptionCreated{
			ID:             event.ID,
			SubscriptionID: sub.ID,
			CustomerID:     sub.Customer.ID,
			PriceID:        item.Price.ID,
			ItemID:         item.ID,
			UserID:         userID,
		}, nil

	case "customer.subscription.updated":
		sub, err := decodeSubscription(event.Data.Raw)
		if err != nil {
			return nil, err
		}
		item, err := firstItem(sub)
		if err != nil {
			return nil, err
		}
		return SubscriptionUpdated{
			ID:         event.ID,
			CustomerID: sub.Customer.ID,
			PriceID:    item.Price.ID,
		}, nil

	case "customer.subscription.deleted":
		sub, err := decodeSubscription(event.Data.Raw)
		if err != nil {
			return nil, err
		}
		return SubscriptionDeleted{
			ID:         event.ID,
			CustomerID: sub.Customer.ID,
		}, nil
	}

	// Event types we do not consume are acknowledged and dropped.
	return nil, nil
}

func decodeSubscription(raw json.RawMessage) (*stripe.Subscription, error) {
	var sub stripe.Subscription
	if err := json.Unmarshal(raw, &sub); err != nil {
		return nil, errors.Join(ErrMalformedEvent, err)
	}
	if sub.ID == "" {
		return nil, fmt.Errorf("%w: subscription object has no ID", ErrMalformedEvent)
	}
	if sub.Customer == nil || sub.Customer.ID == "" {
		return nil, fmt.Errorf("%w: subscription %s has no customer", ErrMalformedEvent, sub.ID)
	}
	return &sub, nil
}

func firstItem(sub *stripe.Subscription) (*stripe.SubscriptionItem, error) {
	if sub.Items == nil || len(sub.Items.Data) == 0 {
		return nil, fmt.Errorf("%w: subscription %s has no items", ErrMalformedEvent, sub.ID)
	}
	item := sub.Items.Data[0]
	if item.Price == nil || item.Price.ID == "" {
		return nil, fmt.Errorf("%w: subscription %s item has no price", ErrMalformedEvent, sub.ID)
	}
	return item, nil
}
