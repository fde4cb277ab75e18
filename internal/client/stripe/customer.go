package stripe

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"
)

// CustomerDetails is the flattened customer record used as the email
// fallback when billing details are incomplete.
type CustomerDetails struct {
	ID    string
	Email string
	Name  string
	Phone string
}

// GetCustomer retrieves a customer by id from Stripe.
func (c *Client) GetCustomer(ctx context.Context, customerID string) (*CustomerDetails, error) {
	if c.client == nil {
		return nil, fmt.Errorf("stripe client not configured")
	}

	cust, err := c.client.V1Customers.Retrieve(ctx, customerID, &stripe.CustomerRetrieveParams{})
	if err != nil {
		c.logger.Error("Failed to fetch Stripe customer", zap.Error(err), zap.String("customer_id", customerID))
		return nil, fmt.Errorf("stripe.GetCustomer: failed to fetch customer %s: %w", customerID, err)
	}

	if cust.Deleted {
		c.logger.Warn("Fetched Stripe customer is marked as deleted", zap.String("customer_id", customerID))
		return nil, fmt.Errorf("stripe.GetCustomer: customer %s is deleted", customerID)
	}

	return &CustomerDetails{
		ID:    cust.ID,
		Email: cust.Email,
		Name:  cust.Name,
		Phone: cust.Phone,
	}, nil
}
