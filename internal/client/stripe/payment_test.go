package stripe

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
)

func TestMapPaymentIntentToDetails(t *testing.T) {
	raw := `{
		"id": "pi_123",
		"amount": 150000,
		"currency": "mxn",
		"status": "succeeded",
		"description": "Intent description",
		"receipt_email": "receipt@example.com",
		"created": 1735689600,
		"customer": {"id": "cus_123"},
		"latest_charge": {
			"id": "ch_123",
			"description": "Charge description",
			"calculated_statement_descriptor": "ASESORIA ONLINE",
			"billing_details": {
				"name": "Ana García",
				"email": "ana@example.com",
				"phone": "+525551234567"
			},
			"payment_method_details": {
				"type": "card",
				"card": {"last4": "4242"}
			}
		}
	}`

	var pi stripe.PaymentIntent
	require.NoError(t, json.Unmarshal([]byte(raw), &pi))

	details := mapPaymentIntentToDetails(&pi)
	require.NotNil(t, details)

	assert.Equal(t, "pi_123", details.ID)
	assert.Equal(t, int64(150000), details.Amount)
	assert.Equal(t, "mxn", details.Currency)
	assert.Equal(t, "succeeded", details.Status)
	assert.Equal(t, "Intent description", details.Description)
	assert.Equal(t, "receipt@example.com", details.ReceiptEmail)
	assert.Equal(t, "cus_123", details.CustomerID)
	assert.Equal(t, time.Unix(1735689600, 0), details.Created)

	assert.Equal(t, "Ana García", details.BillingName)
	assert.Equal(t, "ana@example.com", details.BillingEmail)
	assert.Equal(t, "+525551234567", details.BillingPhone)
	assert.Equal(t, "ASESORIA ONLINE", details.StatementDescriptor)
	assert.Equal(t, "Charge description", details.ChargeDescription)
	assert.Equal(t, "card", details.PaymentMethodType)
	assert.Equal(t, "4242", details.CardLast4)
}

func TestMapPaymentIntentToDetails_NoCharge(t *testing.T) {
	raw := `{"id": "pi_456", "amount": 5000, "currency": "usd", "status": "succeeded", "created": 1735689600}`

	var pi stripe.PaymentIntent
	require.NoError(t, json.Unmarshal([]byte(raw), &pi))

	details := mapPaymentIntentToDetails(&pi)
	require.NotNil(t, details)

	assert.Equal(t, "pi_456", details.ID)
	assert.Empty(t, details.BillingEmail)
	assert.Empty(t, details.CustomerID)
	assert.Empty(t, details.CardLast4)
}

func TestMapPaymentIntentToDetails_Nil(t *testing.T) {
	assert.Nil(t, mapPaymentIntentToDetails(nil))
}
