package stripe

import (
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"
)

// Client wraps the Stripe SDK for the operations this service needs:
// webhook signature verification, payment enrichment and the customer
// fallback lookup. Method implementations for specific resources are in
// separate files within this package (payment.go, customer.go).
type Client struct {
	client        *stripe.Client
	webhookSecret string
	logger        *zap.Logger
}

// NewClient creates a configured Stripe client.
func NewClient(apiKey, webhookSecret string, logger *zap.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("stripe API key not provided")
	}
	if webhookSecret == "" {
		return nil, fmt.Errorf("stripe webhook secret not provided")
	}

	return &Client{
		client:        stripe.NewClient(apiKey, nil),
		webhookSecret: webhookSecret,
		logger:        logger,
	}, nil
}

// VerifyWebhookSignature validates that payload was signed by Stripe
// with our webhook secret and returns the parsed event. It performs no
// side effects; event fields are provenance-trusted only after this
// call succeeds.
func (c *Client) VerifyWebhookSignature(payload []byte, signatureHeader string) (stripe.Event, error) {
	if len(payload) == 0 || signatureHeader == "" {
		return stripe.Event{}, fmt.Errorf("stripe.VerifyWebhookSignature: missing payload or signature")
	}

	event, err := webhook.ConstructEvent(payload, signatureHeader, c.webhookSecret)
	if err != nil {
		c.logger.Error("Webhook signature verification failed", zap.Error(err))
		return stripe.Event{}, fmt.Errorf("webhook signature verification failed: %w", err)
	}

	c.logger.Info("Received Stripe webhook event",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)))

	return event, nil
}
