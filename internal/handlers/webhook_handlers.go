package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/davecgh/go-spew/spew"
	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"

	stripeclient "github.com/paynotehq/paynote-api/internal/client/stripe"
	"github.com/paynotehq/paynote-api/internal/services"
)

// paymentProcessor is the slice of the payment service the webhook
// handlers call.
type paymentProcessor interface {
	ProcessPayment(ctx context.Context, paymentIntentID string) (*services.OrchestrationResult, error)
	ProcessTestPayment(ctx context.Context, input services.TestPaymentInput) (*services.OrchestrationResult, error)
}

// WebhookHandlers handles incoming payment processor webhooks
type WebhookHandlers struct {
	stripeClient *stripeclient.Client
	payments     paymentProcessor
	logger       *zap.Logger
}

// NewWebhookHandlers creates a new webhook handlers instance
func NewWebhookHandlers(stripeClient *stripeclient.Client, payments paymentProcessor, logger *zap.Logger) *WebhookHandlers {
	return &WebhookHandlers{
		stripeClient: stripeClient,
		payments:     payments,
		logger:       logger,
	}
}

// WebhookResponse acknowledges a received webhook event
type WebhookResponse struct {
	Received bool                          `json:"received"`
	Result   *services.OrchestrationResult `json:"result,omitempty"`
}

// HandleStripeWebhook godoc
// @Summary      Stripe webhook receiver
// @Description  Verifies the event signature and replicates succeeded payments into the workspace
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Success      200  {object}  WebhookResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /webhook/stripe [post]
func (h *WebhookHandlers) HandleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		sendError(c, http.StatusBadRequest, "Failed to read request body", err)
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		sendError(c, http.StatusBadRequest, "Missing Stripe-Signature header", nil)
		return
	}

	event, err := h.stripeClient.VerifyWebhookSignature(payload, signature)
	if err != nil {
		sendError(c, http.StatusBadRequest, "Webhook signature verification failed", &services.AuthenticationError{Err: err})
		return
	}

	if event.Type != "payment_intent.succeeded" {
		// Acknowledge everything else so the processor stops retrying.
		h.logger.Debug("Ignoring webhook event",
			zap.String("event_type", string(event.Type)),
			zap.String("event_id", event.ID))
		c.JSON(http.StatusOK, WebhookResponse{Received: true})
		return
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		sendError(c, http.StatusBadRequest, "Failed to parse payment intent from event", err)
		return
	}

	result, err := h.payments.ProcessPayment(c.Request.Context(), pi.ID)
	if err != nil {
		sendError(c, http.StatusInternalServerError, "Failed to process payment", err)
		return
	}

	h.logger.Info("Webhook processed",
		zap.String("event_id", event.ID),
		zap.String("payment_intent_id", pi.ID),
		zap.String("result", result.String()))

	c.JSON(http.StatusOK, WebhookResponse{Received: true, Result: result})
}

// TestWebhookRequest mirrors the processor's event envelope so local
// simulations can post the same shape without a signature.
type TestWebhookRequest struct {
	Type string `json:"type" binding:"required"`
	Data struct {
		Object services.TestPaymentInput `json:"object"`
	} `json:"data"`
}

// HandleTestWebhook godoc
// @Summary      Simulated webhook receiver
// @Description  Runs the payment pipeline on a hand-built event without signature verification. Local use only.
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        request  body  TestWebhookRequest  true  "Simulated event"
// @Success      200  {object}  WebhookResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /webhook/stripe/test [post]
func (h *WebhookHandlers) HandleTestWebhook(c *gin.Context) {
	var req TestWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid test event payload", err)
		return
	}

	if req.Type != "payment_intent.succeeded" {
		h.logger.Debug("Ignoring test webhook event", zap.String("event_type", req.Type))
		c.JSON(http.StatusOK, WebhookResponse{Received: true})
		return
	}

	h.logger.Debug("Test webhook payload", zap.String("dump", spew.Sdump(req.Data.Object)))

	result, err := h.payments.ProcessTestPayment(c.Request.Context(), req.Data.Object)
	if err != nil {
		sendError(c, http.StatusInternalServerError, "Failed to process test payment", err)
		return
	}

	c.JSON(http.StatusOK, WebhookResponse{Received: true, Result: result})
}
