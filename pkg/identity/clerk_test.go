package identity_test

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	svix "github.com/svix/svix-webhooks/go"

	"github.com/easyppp/easyppp/pkg/identity"
)

var testSigningSecret = "whsec_" + base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))

// signedHeaders signs the payload the way Clerk's delivery infrastructure
// does and returns the three svix headers a real request carries.
func signedHeaders(t *testing.T, msgID string, at time.Time, payload []byte) http.Header {
	t.Helper()
	wh, err := svix.NewWebhook(testSigningSecret)
	require.NoError(t, err)
	sig, err := wh.Sign(msgID, at, payload)
	require.NoError(t, err)

	h := http.Header{}
	h.Set("svix-id", msgID)
	h.Set("svix-timestamp", strconv.FormatInt(at.Unix(), 10))
	h.Set("svix-signature", sig)
	return h
}

func userEventPayload(eventType, userID string) []byte {
	return fmt.Appendf(nil, `{"type":%q,"data":{"id":%q}}`, eventType, userID)
}

func TestNewClerkProvider(t *testing.T) {
	t.Parallel()

	t.Run("requires signing secret", func(t *testing.T) {
		t.Parallel()
		_, err := identity.NewClerkProvider(identity.Config{})
		assert.ErrorIs(t, err, identity.ErrMissingSigningSecret)
	})
}

func TestClerkParseWebhook(t *testing.T) {
	t.Parallel()

	provider, err := identity.NewClerkProvider(identity.Config{SigningSecret: testSigningSecret})
	require.NoError(t, err)

	t.Run("user created", func(t *testing.T) {
		t.Parallel()
		payload := userEventPayload("user.created", "user_abc")
		evt, err := provider.ParseWebhook(payload, signedHeaders(t, "msg_1", time.Now(), payload))
		require.NoError(t, err)

		created, ok := evt.(identity.UserCreated)
		require.True(t, ok, "expected UserCreated, got %T", evt)
		assert.Equal(t, "msg_1", created.ID)
		assert.Equal(t, "user_abc", created.UserID)
	})

	t.Run("user deleted", func(t *testing.T) {
		t.Parallel()
		payload := userEventPayload("user.deleted", "user_abc")
		evt, err := provider.ParseWebhook(payload, signedHeaders(t, "msg_2", time.Now(), payload))
		require.NoError(t, err)

		deleted, ok := evt.(identity.UserDeleted)
		require.True(t, ok, "expected UserDeleted, got %T", evt)
		assert.Equal(t, "msg_2", deleted.ID)
		assert.Equal(t, "user_abc", deleted.UserID)
	})

	t.Run("unconsumed event type acknowledged as nil", func(t *testing.T) {
		t.Parallel()
		payload := userEventPayload("session.created", "sess_1")
		evt, err := provider.ParseWebhook(payload, signedHeaders(t, "msg_3", time.Now(), payload))
		require.NoError(t, err)
		assert.Nil(t, evt)
	})

	t.Run("missing user id", func(t *testing.T) {
		t.Parallel()
		payload := userEventPayload("user.created", "")
		_, err := provider.ParseWebhook(payload, signedHeaders(t, "msg_4", time.Now(), payload))
		assert.ErrorIs(t, err, identity.ErrMalformedEvent)
	})

	t.Run("tampered payload", func(t *testing.T) {
		t.Parallel()
		payload := userEventPayload("user.deleted", "user_abc")
		headers := signedHeaders(t, "msg_5", time.Now(), payload)
		tampered := userEventPayload("user.deleted", "user_xyz")
		_, err := provider.ParseWebhook(tampered, headers)
		assert.ErrorIs(t, err, identity.ErrVerificationFailed)
	})

	t.Run("missing signature headers", func(t *testing.T) {
		t.Parallel()
		payload := userEventPayload("user.created", "user_abc")
		_, err := provider.ParseWebhook(payload, http.Header{})
		assert.ErrorIs(t, err, identity.ErrVerificationFailed)
	})

	t.Run("stale timestamp", func(t *testing.T) {
		t.Parallel()
		payload := userEventPayload("user.created", "user_abc")
		headers := signedHeaders(t, "msg_6", time.Now().Add(-time.Hour), payload)
		_, err := provider.ParseWebhook(payload, headers)
		assert.ErrorIs(t, err, identity.ErrVerificationFailed)
	})
}
