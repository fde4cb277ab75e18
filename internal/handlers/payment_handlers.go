package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	stripeclient "github.com/paynotehq/paynote-api/internal/client/stripe"
)

// PaymentHandlers exposes the checkout-side payment endpoints that sit
// outside the webhook pipeline
type PaymentHandlers struct {
	stripeClient *stripeclient.Client
	logger       *zap.Logger
}

// NewPaymentHandlers creates a new payment handlers instance
func NewPaymentHandlers(stripeClient *stripeclient.Client, logger *zap.Logger) *PaymentHandlers {
	return &PaymentHandlers{
		stripeClient: stripeClient,
		logger:       logger,
	}
}

// CreatePaymentIntentRequest is the checkout payload
type CreatePaymentIntentRequest struct {
	Amount   int64             `json:"amount" binding:"required,gt=0"`
	Currency string            `json:"currency" binding:"required"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// CreatePaymentIntent godoc
// @Summary      Create a payment intent
// @Description  Creates a payment intent with the processor for a checkout flow
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request  body  CreatePaymentIntentRequest  true  "Intent parameters"
// @Success      201  {object}  stripeclient.PaymentDetails
// @Failure      400  {object}  ErrorResponse
// @Failure      502  {object}  ErrorResponse
// @Router       /payments/intent [post]
func (h *PaymentHandlers) CreatePaymentIntent(c *gin.Context) {
	var req CreatePaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	details, err := h.stripeClient.CreatePaymentIntent(c.Request.Context(), req.Amount, req.Currency, req.Metadata)
	if err != nil {
		sendError(c, http.StatusBadGateway, "Failed to create payment intent", err)
		return
	}

	sendSuccess(c, http.StatusCreated, details)
}

// ListCustomerPayments godoc
// @Summary      List a customer's payments
// @Description  Lists every payment intent belonging to a processor customer
// @Tags         payments
// @Produce      json
// @Param        customer_id  path  string  true  "Customer ID"
// @Success      200  {array}   stripeclient.PaymentDetails
// @Failure      502  {object}  ErrorResponse
// @Router       /payments/customer/{customer_id} [get]
func (h *PaymentHandlers) ListCustomerPayments(c *gin.Context) {
	customerID := c.Param("customer_id")

	payments, err := h.stripeClient.ListCustomerPayments(c.Request.Context(), customerID)
	if err != nil {
		sendError(c, http.StatusBadGateway, "Failed to list customer payments", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"object": "list",
		"data":   payments,
	})
}
