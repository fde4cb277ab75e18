package stripe_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	stripeclient "github.com/paynotehq/paynote-api/internal/client/stripe"
)

const testWebhookSecret = "whsec_test_secret"

// signPayload builds a Stripe-Signature header the same way Stripe's
// servers do: v1 = HMAC-SHA256(secret, "<timestamp>.<payload>").
func signPayload(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func newTestClient(t *testing.T) *stripeclient.Client {
	t.Helper()
	client, err := stripeclient.NewClient("sk_test_123", testWebhookSecret, zap.NewNop())
	require.NoError(t, err)
	return client
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	_, err := stripeclient.NewClient("", testWebhookSecret, zap.NewNop())
	assert.Error(t, err)

	_, err = stripeclient.NewClient("sk_test_123", "", zap.NewNop())
	assert.Error(t, err)
}

func TestVerifyWebhookSignature_ValidSignature(t *testing.T) {
	client := newTestClient(t)
	payload := []byte(`{"id":"evt_123","type":"payment_intent.succeeded","data":{"object":{"id":"pi_123"}}}`)

	event, err := client.VerifyWebhookSignature(payload, signPayload(payload, testWebhookSecret, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, "evt_123", event.ID)
	assert.Equal(t, "payment_intent.succeeded", string(event.Type))
}

func TestVerifyWebhookSignature_TamperedPayload(t *testing.T) {
	client := newTestClient(t)
	payload := []byte(`{"id":"evt_123","type":"payment_intent.succeeded","data":{"object":{"id":"pi_123"}}}`)
	header := signPayload(payload, testWebhookSecret, time.Now())

	tampered := []byte(`{"id":"evt_123","type":"payment_intent.succeeded","data":{"object":{"id":"pi_999"}}}`)
	_, err := client.VerifyWebhookSignature(tampered, header)
	assert.Error(t, err)
}

func TestVerifyWebhookSignature_WrongSecret(t *testing.T) {
	client := newTestClient(t)
	payload := []byte(`{"id":"evt_123","type":"payment_intent.succeeded"}`)

	_, err := client.VerifyWebhookSignature(payload, signPayload(payload, "whsec_other", time.Now()))
	assert.Error(t, err)
}

func TestVerifyWebhookSignature_StaleTimestamp(t *testing.T) {
	client := newTestClient(t)
	payload := []byte(`{"id":"evt_123","type":"payment_intent.succeeded"}`)

	_, err := client.VerifyWebhookSignature(payload, signPayload(payload, testWebhookSecret, time.Now().Add(-time.Hour)))
	assert.Error(t, err)
}

func TestVerifyWebhookSignature_MissingInputs(t *testing.T) {
	client := newTestClient(t)
	payload := []byte(`{"id":"evt_123"}`)

	_, err := client.VerifyWebhookSignature(nil, signPayload(payload, testWebhookSecret, time.Now()))
	assert.Error(t, err)

	_, err = client.VerifyWebhookSignature(payload, "")
	assert.Error(t, err)
}
