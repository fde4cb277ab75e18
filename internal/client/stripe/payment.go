package stripe

import (
	"context"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"
)

// PaymentDetails is the enriched, flattened view of a payment intent
// together with its latest charge. It is the shape the rest of the
// service consumes; Stripe's nested object graph stays in this package.
type PaymentDetails struct {
	ID           string
	Amount       int64
	Currency     string
	Status       string
	Description  string
	ReceiptEmail string
	CustomerID   string
	Created      time.Time

	// From the expanded latest charge, when present.
	BillingName         string
	BillingEmail        string
	BillingPhone        string
	StatementDescriptor string
	ChargeDescription   string
	PaymentMethodType   string
	CardLast4           string
}

// GetPaymentDetails retrieves a payment intent with its latest charge
// and payment method expanded in a single round trip.
func (c *Client) GetPaymentDetails(ctx context.Context, paymentIntentID string) (*PaymentDetails, error) {
	if c.client == nil {
		return nil, fmt.Errorf("stripe client not configured")
	}

	params := &stripe.PaymentIntentRetrieveParams{}
	params.AddExpand("latest_charge")
	params.AddExpand("latest_charge.payment_method")

	pi, err := c.client.V1PaymentIntents.Retrieve(ctx, paymentIntentID, params)
	if err != nil {
		c.logger.Error("Failed to fetch Stripe payment intent",
			zap.Error(err),
			zap.String("payment_intent_id", paymentIntentID))
		return nil, fmt.Errorf("stripe.GetPaymentDetails: failed to fetch payment intent %s: %w", paymentIntentID, err)
	}

	return mapPaymentIntentToDetails(pi), nil
}

// ListCustomerPayments lists every payment intent belonging to a Stripe
// customer.
func (c *Client) ListCustomerPayments(ctx context.Context, customerID string) ([]*PaymentDetails, error) {
	if c.client == nil {
		return nil, fmt.Errorf("stripe client not configured")
	}

	params := &stripe.PaymentIntentListParams{
		Customer: stripe.String(customerID),
	}

	var payments []*PaymentDetails
	for pi, err := range c.client.V1PaymentIntents.List(ctx, params) {
		if err != nil {
			c.logger.Error("Error iterating Stripe payment intents", zap.Error(err), zap.String("customer_id", customerID))
			return nil, fmt.Errorf("stripe.ListCustomerPayments: error during iteration: %w", err)
		}
		if pi == nil {
			continue
		}
		payments = append(payments, mapPaymentIntentToDetails(pi))
	}

	return payments, nil
}

// CreatePaymentIntent creates a payment intent; exposed for checkout
// flows that live outside the webhook pipeline.
func (c *Client) CreatePaymentIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*PaymentDetails, error) {
	if c.client == nil {
		return nil, fmt.Errorf("stripe client not configured")
	}

	params := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		Metadata: metadata,
	}

	pi, err := c.client.V1PaymentIntents.Create(ctx, params)
	if err != nil {
		c.logger.Error("Failed to create Stripe payment intent", zap.Error(err), zap.Int64("amount", amount))
		return nil, fmt.Errorf("stripe.CreatePaymentIntent: failed to create payment intent: %w", err)
	}

	c.logger.Info("Created Stripe payment intent", zap.String("payment_intent_id", pi.ID))
	return mapPaymentIntentToDetails(pi), nil
}

// mapPaymentIntentToDetails flattens a payment intent and its expanded
// latest charge into PaymentDetails.
func mapPaymentIntentToDetails(pi *stripe.PaymentIntent) *PaymentDetails {
	if pi == nil {
		return nil
	}

	details := &PaymentDetails{
		ID:           pi.ID,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
		Description:  pi.Description,
		ReceiptEmail: pi.ReceiptEmail,
		Created:      time.Unix(pi.Created, 0),
	}

	if pi.Customer != nil {
		details.CustomerID = pi.Customer.ID
	}

	if ch := pi.LatestCharge; ch != nil {
		if ch.BillingDetails != nil {
			details.BillingName = ch.BillingDetails.Name
			details.BillingEmail = ch.BillingDetails.Email
			details.BillingPhone = ch.BillingDetails.Phone
		}
		details.StatementDescriptor = ch.CalculatedStatementDescriptor
		details.ChargeDescription = ch.Description
		if ch.PaymentMethodDetails != nil {
			details.PaymentMethodType = string(ch.PaymentMethodDetails.Type)
			if ch.PaymentMethodDetails.Card != nil {
				details.CardLast4 = ch.PaymentMethodDetails.Card.Last4
			}
		}
	}

	return details
}
