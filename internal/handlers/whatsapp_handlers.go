package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/paynotehq/paynote-api/internal/services"
)

// WhatsAppHandlers exposes the outbound messaging endpoints
type WhatsAppHandlers struct {
	whatsapp *services.WhatsAppService
	logger   *zap.Logger
}

// NewWhatsAppHandlers creates a new WhatsApp handlers instance
func NewWhatsAppHandlers(whatsapp *services.WhatsAppService, logger *zap.Logger) *WhatsAppHandlers {
	return &WhatsAppHandlers{
		whatsapp: whatsapp,
		logger:   logger,
	}
}

// SendMessageRequest is a free-form outbound message
type SendMessageRequest struct {
	To       string `json:"to" binding:"required"`
	Body     string `json:"body" binding:"required"`
	MediaURL string `json:"media_url,omitempty"`
}

// SendTemplateRequest sends a pre-approved template message
type SendTemplateRequest struct {
	To       string            `json:"to" binding:"required"`
	Template services.Template `json:"template" binding:"required"`
}

// WelcomeRequest greets a customer by name
type WelcomeRequest struct {
	To   string `json:"to" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// PaymentConfirmationRequest confirms a received payment
type PaymentConfirmationRequest struct {
	To      string  `json:"to" binding:"required"`
	Name    string  `json:"name" binding:"required"`
	Amount  float64 `json:"amount" binding:"required"`
	OrderID string  `json:"order_id" binding:"required"`
}

// ShipmentRequest notifies a customer their order shipped
type ShipmentRequest struct {
	To             string `json:"to" binding:"required"`
	Name           string `json:"name" binding:"required"`
	OrderID        string `json:"order_id" binding:"required"`
	TrackingNumber string `json:"tracking_number,omitempty"`
}

// PromotionalRequest sends a promotional text
type PromotionalRequest struct {
	To        string `json:"to" binding:"required"`
	Name      string `json:"name" binding:"required"`
	PromoText string `json:"promo_text" binding:"required"`
}

// PhoneValidationResponse reports normalization of one phone number
type PhoneValidationResponse struct {
	Phone     string `json:"phone"`
	Formatted string `json:"formatted"`
	Valid     bool   `json:"valid"`
}

// normalizePhone formats and validates a raw phone number; on failure
// it writes the 400 response and returns ok=false.
func (h *WhatsAppHandlers) normalizePhone(c *gin.Context, raw string) (string, bool) {
	phone := h.whatsapp.FormatPhone(raw)
	if !services.ValidatePhoneNumber(phone) {
		err := &services.ValidationError{Field: "phone", Reason: "not a usable E.164 number after normalization"}
		sendError(c, http.StatusBadRequest, "Invalid phone number: "+raw, err)
		return "", false
	}
	return phone, true
}

// sendResult maps a messaging result onto the HTTP response: delivery
// failures are reported, not raised.
func (h *WhatsAppHandlers) sendResult(c *gin.Context, result services.SendResult) {
	if !result.Success {
		c.JSON(http.StatusBadGateway, result)
		return
	}
	sendSuccess(c, http.StatusOK, result)
}

// SendMessage godoc
// @Summary      Send a WhatsApp message
// @Description  Sends a free-form text message through the configured provider
// @Tags         whatsapp
// @Accept       json
// @Produce      json
// @Param        request  body  SendMessageRequest  true  "Message"
// @Success      200  {object}  services.SendResult
// @Failure      400  {object}  ErrorResponse
// @Failure      502  {object}  services.SendResult
// @Router       /whatsapp/send [post]
func (h *WhatsAppHandlers) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	phone, ok := h.normalizePhone(c, req.To)
	if !ok {
		return
	}

	h.sendResult(c, h.whatsapp.Send(c.Request.Context(), services.OutboundMessage{
		To:       phone,
		Body:     req.Body,
		MediaURL: req.MediaURL,
	}))
}

// SendTemplate godoc
// @Summary      Send a WhatsApp template message
// @Description  Sends a pre-approved template; only available with the Meta Business API provider
// @Tags         whatsapp
// @Accept       json
// @Produce      json
// @Param        request  body  SendTemplateRequest  true  "Template message"
// @Success      200  {object}  services.SendResult
// @Failure      400  {object}  ErrorResponse
// @Failure      502  {object}  services.SendResult
// @Router       /whatsapp/send-template [post]
func (h *WhatsAppHandlers) SendTemplate(c *gin.Context) {
	var req SendTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}
	if req.Template.Name == "" || req.Template.Language == "" {
		sendError(c, http.StatusBadRequest, "Template name and language are required", nil)
		return
	}

	phone, ok := h.normalizePhone(c, req.To)
	if !ok {
		return
	}

	h.sendResult(c, h.whatsapp.SendTemplate(c.Request.Context(), phone, req.Template))
}

// SendWelcome godoc
// @Summary      Send a welcome message
// @Tags         whatsapp
// @Accept       json
// @Produce      json
// @Param        request  body  WelcomeRequest  true  "Recipient"
// @Success      200  {object}  services.SendResult
// @Failure      400  {object}  ErrorResponse
// @Failure      502  {object}  services.SendResult
// @Router       /whatsapp/send-welcome [post]
func (h *WhatsAppHandlers) SendWelcome(c *gin.Context) {
	var req WelcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	phone, ok := h.normalizePhone(c, req.To)
	if !ok {
		return
	}

	h.sendResult(c, h.whatsapp.SendWelcomeMessage(c.Request.Context(), phone, req.Name))
}

// SendPaymentConfirmation godoc
// @Summary      Send a payment confirmation message
// @Tags         whatsapp
// @Accept       json
// @Produce      json
// @Param        request  body  PaymentConfirmationRequest  true  "Confirmation"
// @Success      200  {object}  services.SendResult
// @Failure      400  {object}  ErrorResponse
// @Failure      502  {object}  services.SendResult
// @Router       /whatsapp/send-payment-confirmation [post]
func (h *WhatsAppHandlers) SendPaymentConfirmation(c *gin.Context) {
	var req PaymentConfirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	phone, ok := h.normalizePhone(c, req.To)
	if !ok {
		return
	}

	h.sendResult(c, h.whatsapp.SendPaymentConfirmation(c.Request.Context(), phone, req.Name, req.Amount, req.OrderID))
}

// SendShipmentNotification godoc
// @Summary      Send a shipment notification
// @Tags         whatsapp
// @Accept       json
// @Produce      json
// @Param        request  body  ShipmentRequest  true  "Shipment"
// @Success      200  {object}  services.SendResult
// @Failure      400  {object}  ErrorResponse
// @Failure      502  {object}  services.SendResult
// @Router       /whatsapp/send-shipment [post]
func (h *WhatsAppHandlers) SendShipmentNotification(c *gin.Context) {
	var req ShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	phone, ok := h.normalizePhone(c, req.To)
	if !ok {
		return
	}

	h.sendResult(c, h.whatsapp.SendShipmentNotification(c.Request.Context(), phone, req.Name, req.OrderID, req.TrackingNumber))
}

// SendPromotional godoc
// @Summary      Send a promotional message
// @Tags         whatsapp
// @Accept       json
// @Produce      json
// @Param        request  body  PromotionalRequest  true  "Promotion"
// @Success      200  {object}  services.SendResult
// @Failure      400  {object}  ErrorResponse
// @Failure      502  {object}  services.SendResult
// @Router       /whatsapp/send-promotional [post]
func (h *WhatsAppHandlers) SendPromotional(c *gin.Context) {
	var req PromotionalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	phone, ok := h.normalizePhone(c, req.To)
	if !ok {
		return
	}

	h.sendResult(c, h.whatsapp.SendPromotionalMessage(c.Request.Context(), phone, req.Name, req.PromoText))
}

// ValidatePhone godoc
// @Summary      Validate a phone number
// @Description  Normalizes the number with the default country code and reports whether it is usable
// @Tags         whatsapp
// @Produce      json
// @Param        number  path  string  true  "Phone number"
// @Success      200  {object}  PhoneValidationResponse
// @Router       /whatsapp/validate-phone/{number} [get]
func (h *WhatsAppHandlers) ValidatePhone(c *gin.Context) {
	raw := c.Param("number")
	formatted := h.whatsapp.FormatPhone(raw)

	c.JSON(http.StatusOK, PhoneValidationResponse{
		Phone:     raw,
		Formatted: formatted,
		Valid:     services.ValidatePhoneNumber(formatted),
	})
}
