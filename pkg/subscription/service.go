package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/easyppp/easyppp/pkg/billing"
	"github.com/easyppp/easyppp/pkg/identity"
	"github.com/easyppp/easyppp/pkg/tier"
)

// Config holds the redirect targets for checkout sessions.
type Config struct {
	CheckoutSuccessURL string `env:"CHECKOUT_SUCCESS_URL,required"` // after completed payment
	CheckoutCancelURL  string `env:"CHECKOUT_CANCEL_URL,required"`  // after abandoned checkout
}

// User identifies the authenticated caller of an orchestrator flow.
type User struct {
	ID    string
	Email string
}

// Service keeps the local subscription records consistent with the identity
// and billing providers and drives the user-initiated checkout and portal
// flows. All dependencies are injected at construction; there is no shared
// package state.
type Service struct {
	cfg      Config
	catalog  *tier.Catalog
	provider billing.Provider
	store    Store
	quota    QuotaSource
	log      *slog.Logger
}

// Option configures optional Service settings.
type Option func(*Service)

// WithLogger sets the logger used for handler diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService wires a Service. Panics on nil required dependencies to fail
// fast during initialization.
func NewService(cfg Config, catalog *tier.Catalog, provider billing.Provider, store Store, quota QuotaSource, opts ...Option) *Service {
	if catalog == nil {
		panic("subscription: tier catalog is required")
	}
	if provider == nil {
		panic("subscription: billing provider is required")
	}
	if store == nil {
		panic("subscription: store is required")
	}
	if quota == nil {
		panic("subscription: quota source is required")
	}

	s := &Service{
		cfg:      cfg,
		catalog:  catalog,
		provider: provider,
		store:    store,
		quota:    quota,
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HandleIdentityEvent applies a verified identity provider event. Errors are
// retryable: the caller answers non-2xx and the provider redelivers.
func (s *Service) HandleIdentityEvent(ctx context.Context, evt identity.Event) error {
	switch e := evt.(type) {
	case identity.UserCreated:
		if err := s.store.Create(ctx, e.UserID); err != nil {
			return fmt.Errorf("create record for user %s: %w", e.UserID, err)
		}
		s.log.InfoContext(ctx, "subscription record created", "user_id", e.UserID)
		return nil

	case identity.UserDeleted:
		rec, err := s.store.FindByUser(ctx, e.UserID)
		if errors.Is(err, ErrRecordNotFound) {
			// Already gone locally; redelivery after a successful deletion.
			return nil
		}
		if err != nil {
			return fmt.Errorf("load record for user %s: %w", e.UserID, err)
		}

		// An active paid subscription must be cancelled upstream before the
		// local record disappears. If the cancel call fails the event is
		// left for redelivery with the record intact.
		if rec.HasActiveSubscription() {
			if err := s.provider.CancelSubscription(ctx, rec.BillingSubscriptionID); err != nil {
				return fmt.Errorf("cancel subscription before user deletion: %w", err)
			}
			s.log.InfoContext(ctx, "upstream subscription cancelled",
				"user_id", e.UserID, "subscription_id", rec.BillingSubscriptionID)
		}

		if err := s.store.DeleteWithOwnedResources(ctx, e.UserID); err != nil {
			return fmt.Errorf("delete record for user %s: %w", e.UserID, err)
		}
		s.log.InfoContext(ctx, "subscription record deleted", "user_id", e.UserID)
		return nil
	}

	return fmt.Errorf("unhandled identity event type %T", evt)
}

// HandleBillingEvent applies a verified billing provider event. Events are
// delivered at least once and possibly out of order; every branch is a pure
// last-write-wins field update so reprocessing an identical event leaves the
// record unchanged.
func (s *Service) HandleBillingEvent(ctx context.Context, evt billing.Event) error {
	switch e := evt.(type) {
	case billing.SubscriptionCreated:
		def, err := s.catalog.ByPriceID(e.PriceID)
		if err != nil {
			// Unknown price: configuration lag between the provider and the
			// catalog. Retryable so the provider redelivers once fixed.
			return errors.Join(ErrUnresolvedReference, err)
		}

		err = s.store.ApplyBillingUpdate(ctx, MatchByUser(e.UserID), BillingChange{
			Tier:                  &def.Name,
			BillingCustomerID:     &e.CustomerID,
			BillingSubscriptionID: &e.SubscriptionID,
			BillingItemID:         &e.ItemID,
		})
		if errors.Is(err, ErrRecordNotFound) {
			// The user was deleted locally between checkout and delivery.
			s.log.WarnContext(ctx, "subscription created for unknown user",
				"user_id", e.UserID, "subscription_id", e.SubscriptionID)
			return nil
		}
		if err != nil {
			return fmt.Errorf("apply subscription created: %w", err)
		}
		s.log.InfoContext(ctx, "subscription activated",
			"user_id", e.UserID, "tier", def.Name, "subscription_id", e.SubscriptionID)
		return nil

	case billing.SubscriptionUpdated:
		def, err := s.catalog.ByPriceID(e.PriceID)
		if err != nil {
			return errors.Join(ErrUnresolvedReference, err)
		}

		// Only the tier moves; identifiers stay untouched.
		err = s.store.ApplyBillingUpdate(ctx, MatchByBillingCustomer(e.CustomerID), BillingChange{
			Tier: &def.Name,
		})
		if errors.Is(err, ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("apply subscription updated: %w", err)
		}
		s.log.InfoContext(ctx, "subscription tier changed",
			"billing_customer_id", e.CustomerID, "tier", def.Name)
		return nil

	case billing.SubscriptionDeleted:
		free := s.catalog.Free().Name
		empty := ""

		// The customer ID is retained so a future re-subscription reuses the
		// same billing customer instead of creating a duplicate.
		err := s.store.ApplyBillingUpdate(ctx, MatchByBillingCustomer(e.CustomerID), BillingChange{
			Tier:                  &free,
			BillingSubscriptionID: &empty,
			BillingItemID:         &empty,
		})
		if errors.Is(err, ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("apply subscription deleted: %w", err)
		}
		s.log.InfoContext(ctx, "subscription ended", "billing_customer_id", e.CustomerID)
		return nil
	}

	return fmt.Errorf("unhandled billing event type %T", evt)
}

// StartCheckout returns the URL the user is redirected to for subscribing to
// a paid tier. First-time subscribers get a hosted checkout session; users
// who already have a billing customer are routed through the portal's
// update-confirmation flow instead, so at most one subscription ever exists
// per user at the provider.
func (s *Service) StartCheckout(ctx context.Context, user User, t tier.Tier) (string, error) {
	def, err := s.catalog.ByName(t)
	if err != nil {
		return "", errors.Join(ErrUnknownTier, err)
	}
	if !def.IsPaid() {
		return "", fmt.Errorf("%w: tier %q is not purchasable", ErrInvalidState, t)
	}

	rec, err := s.store.FindByUser(ctx, user.ID)
	if err != nil {
		return "", err
	}

	if !rec.HasBillingCustomer() {
		return s.provider.CreateCheckoutSession(ctx, billing.CheckoutParams{
			PriceID:    def.PriceID,
			UserID:     user.ID,
			Email:      user.Email,
			SuccessURL: s.cfg.CheckoutSuccessURL,
			CancelURL:  s.cfg.CheckoutCancelURL,
		})
	}

	if !rec.HasActiveSubscription() || rec.BillingItemID == "" {
		return "", fmt.Errorf("%w: billing customer exists but no active subscription to update", ErrInvalidState)
	}
	return s.provider.CreateUpdateSession(ctx, billing.UpdateParams{
		CustomerID:     rec.BillingCustomerID,
		SubscriptionID: rec.BillingSubscriptionID,
		ItemID:         rec.BillingItemID,
		PriceID:        def.PriceID,
	})
}

// StartCancel returns a portal deep link into the cancellation flow for the
// user's active subscription.
func (s *Service) StartCancel(ctx context.Context, userID string) (string, error) {
	rec, err := s.store.FindByUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if !rec.HasBillingCustomer() || !rec.HasActiveSubscription() {
		return "", fmt.Errorf("%w: no active subscription to cancel", ErrInvalidState)
	}
	return s.provider.CreateCancelSession(ctx, rec.BillingCustomerID, rec.BillingSubscriptionID)
}

// StartManage returns a generic customer portal URL.
func (s *Service) StartManage(ctx context.Context, userID string) (string, error) {
	rec, err := s.store.FindByUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if !rec.HasBillingCustomer() {
		return "", fmt.Errorf("%w: user has no billing customer", ErrInvalidState)
	}
	return s.provider.CreatePortalSession(ctx, rec.BillingCustomerID)
}

// Tiers returns the catalog definitions for pricing pages.
func (s *Service) Tiers() []tier.Definition {
	return s.catalog.Definitions()
}
