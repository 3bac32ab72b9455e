package billing_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easyppp/easyppp/pkg/billing"
)

const testWebhookSecret = "whsec_test_secret"

func testConfig() billing.Config {
	return billing.Config{
		SecretKey:        "sk_test_123",
		WebhookSecret:    testWebhookSecret,
		WebhookTolerance: 5 * time.Minute,
		ReturnURL:        "https://app.example.com/dashboard/subscription",
	}
}

// signPayload produces a Stripe-Signature header for the payload, signed the
// way Stripe signs deliveries: HMAC-SHA256 over "<timestamp>.<payload>".
func signPayload(secret string, at time.Time, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", at.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func subscriptionEventPayload(eventID, eventType string, withMetadata bool) []byte {
	metadata := ""
	if withMetadata {
		metadata = `"metadata":{"localUserId":"user_1"},`
	}
	return fmt.Appendf(nil, `{
		"id": %q,
		"type": %q,
		"data": {
			"object": {
				"id": "sub_1",
				"customer": "cus_1",
				%s
				"items": {
					"data": [
						{"id": "si_1", "price": {"id": "price_standard"}}
					]
				}
			}
		}
	}`, eventID, eventType, metadata)
}

func TestNewStripeProvider(t *testing.T) {
	t.Parallel()

	t.Run("requires api key", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.SecretKey = ""
		_, err := billing.NewStripeProvider(cfg)
		assert.ErrorIs(t, err, billing.ErrMissingAPIKey)
	})

	t.Run("requires webhook secret", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.WebhookSecret = ""
		_, err := billing.NewStripeProvider(cfg)
		assert.ErrorIs(t, err, billing.ErrMissingWebhookSecret)
	})
}

func TestParseWebhook(t *testing.T) {
	t.Parallel()

	provider, err := billing.NewStripeProvider(testConfig())
	require.NoError(t, err)

	t.Run("subscription created", func(t *testing.T) {
		t.Parallel()
		payload := subscriptionEventPayload("evt_created", "customer.subscription.created", true)
		evt, err := provider.ParseWebhook(payload, signPayload(testWebhookSecret, time.Now(), payload))
		require.NoError(t, err)

		created, ok := evt.(billing.SubscriptionCreated)
		require.True(t, ok, "expected SubscriptionCreated, got %T", evt)
		assert.Equal(t, "evt_created", created.ID)
		assert.Equal(t, "sub_1", created.SubscriptionID)
		assert.Equal(t, "cus_1", created.CustomerID)
		assert.Equal(t, "price_standard", created.PriceID)
		assert.Equal(t, "si_1", created.ItemID)
		assert.Equal(t, "user_1", created.UserID)
	})

	t.Run("subscription created without user metadata", func(t *testing.T) {
		t.Parallel()
		payload := subscriptionEventPayload("evt_created", "customer.subscription.created", false)
		_, err := provider.ParseWebhook(payload, signPayload(testWebhookSecret, time.Now(), payload))
		assert.ErrorIs(t, err, billing.ErrMalformedEvent)
	})

	t.Run("subscription updated", func(t *testing.T) {
		t.Parallel()
		payload := subscriptionEventPayload("evt_updated", "customer.subscription.updated", false)
		evt, err := provider.ParseWebhook(payload, signPayload(testWebhookSecret, time.Now(), payload))
		require.NoError(t, err)

		updated, ok := evt.(billing.SubscriptionUpdated)
		require.True(t, ok, "expected SubscriptionUpdated, got %T", evt)
		assert.Equal(t, "evt_updated", updated.ID)
		assert.Equal(t, "cus_1", updated.CustomerID)
		assert.Equal(t, "price_standard", updated.PriceID)
	})

	t.Run("subscription deleted", func(t *testing.T) {
		t.Parallel()
		payload := subscriptionEventPayload("evt_deleted", "customer.subscription.deleted", false)
		evt, err := provider.ParseWebhook(payload, signPayload(testWebhookSecret, time.Now(), payload))
		require.NoError(t, err)

		deleted, ok := evt.(billing.SubscriptionDeleted)
		require.True(t, ok, "expected SubscriptionDeleted, got %T", evt)
		assert.Equal(t, "evt_deleted", deleted.ID)
		assert.Equal(t, "cus_1", deleted.CustomerID)
	})

	t.Run("unconsumed event type acknowledged as nil", func(t *testing.T) {
		t.Parallel()
		payload := []byte(`{"id":"evt_inv","type":"invoice.paid","data":{"object":{"id":"in_1"}}}`)
		evt, err := provider.ParseWebhook(payload, signPayload(testWebhookSecret, time.Now(), payload))
		require.NoError(t, err)
		assert.Nil(t, evt)
	})

	t.Run("wrong signing secret", func(t *testing.T) {
		t.Parallel()
		payload := subscriptionEventPayload("evt_1", "customer.subscription.created", true)
		_, err := provider.ParseWebhook(payload, signPayload("whsec_wrong", time.Now(), payload))
		assert.ErrorIs(t, err, billing.ErrVerificationFailed)
	})

	t.Run("tampered payload", func(t *testing.T) {
		t.Parallel()
		payload := subscriptionEventPayload("evt_1", "customer.subscription.created", true)
		header := signPayload(testWebhookSecret, time.Now(), payload)
		tampered := append([]byte(nil), payload...)
		tampered[len(tampered)-2] = ' '
		_, err := provider.ParseWebhook(tampered, header)
		assert.ErrorIs(t, err, billing.ErrVerificationFailed)
	})

	t.Run("stale timestamp outside tolerance", func(t *testing.T) {
		t.Parallel()
		payload := subscriptionEventPayload("evt_1", "customer.subscription.created", true)
		stale := time.Now().Add(-time.Hour)
		_, err := provider.ParseWebhook(payload, signPayload(testWebhookSecret, stale, payload))
		assert.ErrorIs(t, err, billing.ErrVerificationFailed)
	})

	t.Run("missing signature header", func(t *testing.T) {
		t.Parallel()
		payload := subscriptionEventPayload("evt_1", "customer.subscription.created", true)
		_, err := provider.ParseWebhook(payload, "")
		assert.ErrorIs(t, err, billing.ErrVerificationFailed)
	})

	t.Run("object missing subscription items", func(t *testing.T) {
		t.Parallel()
		payload := []byte(`{
			"id": "evt_bad",
			"type": "customer.subscription.created",
			"data": {"object": {"id": "sub_1", "customer": "cus_1", "metadata": {"localUserId": "user_1"}}}
		}`)
		_, err := provider.ParseWebhook(payload, signPayload(testWebhookSecret, time.Now(), payload))
		assert.ErrorIs(t, err, billing.ErrMalformedEvent)
	})
}
