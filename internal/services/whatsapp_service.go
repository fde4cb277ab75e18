package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// WhatsAppSettings carries the provider credentials and the default
// country code for phone normalization.
type WhatsAppSettings struct {
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioFrom        string
	UseMetaAPI        bool
	MetaAccessToken   string
	MetaPhoneNumberID string

	DefaultCountryCode string
}

// messageProvider is one concrete delivery backend. Exactly one
// provider is selected at construction; there is no fallback chain.
type messageProvider interface {
	Name() string
	Send(ctx context.Context, message OutboundMessage) (string, error)
}

// templateProvider is the optional template capability; only the Meta
// backend has it.
type templateProvider interface {
	SendTemplate(ctx context.Context, to string, template Template) (string, error)
}

// WhatsAppService sends phone-addressed messages through whichever
// provider is configured. Send and SendTemplate never return Go
// errors: delivery is always best-effort relative to the business
// transaction it documents, so failures are reported in the result.
type WhatsAppService struct {
	provider           messageProvider
	defaultCountryCode string
	logger             *zap.Logger
}

// NewWhatsAppService selects the provider from configuration: the Meta
// Business API when its flag and token are set, otherwise Twilio when
// its credentials are set, otherwise no provider (sends fail softly).
func NewWhatsAppService(settings WhatsAppSettings, logger *zap.Logger) *WhatsAppService {
	countryCode := settings.DefaultCountryCode
	if countryCode == "" {
		countryCode = defaultCountryCode
	}

	svc := &WhatsAppService{
		defaultCountryCode: countryCode,
		logger:             logger,
	}

	switch {
	case settings.UseMetaAPI && settings.MetaAccessToken != "":
		svc.provider = newMetaProvider(settings.MetaAccessToken, settings.MetaPhoneNumberID, logger)
	case settings.TwilioAccountSID != "" && settings.TwilioAuthToken != "":
		svc.provider = newTwilioProvider(settings.TwilioAccountSID, settings.TwilioAuthToken, settings.TwilioFrom, logger)
	default:
		logger.Warn("No WhatsApp provider configured; outbound messages will be dropped")
	}

	return svc
}

// Send delivers a plain text message through the configured provider.
func (s *WhatsAppService) Send(ctx context.Context, message OutboundMessage) SendResult {
	if s.provider == nil {
		return SendResult{Success: false, Error: "no whatsapp provider configured"}
	}

	messageID, err := s.provider.Send(ctx, message)
	if err != nil {
		s.logger.Error("Failed to send WhatsApp message",
			zap.Error(err),
			zap.String("provider", s.provider.Name()),
			zap.String("to", message.To))
		return SendResult{Success: false, Error: err.Error()}
	}

	s.logger.Info("WhatsApp message sent",
		zap.String("provider", s.provider.Name()),
		zap.String("message_id", messageID))

	return SendResult{Success: true, MessageID: messageID}
}

// SendTemplate delivers a pre-approved template message. Templates are
// only available through the Meta Business API; requesting one through
// any other provider reports a failure result.
func (s *WhatsAppService) SendTemplate(ctx context.Context, to string, template Template) SendResult {
	if s.provider == nil {
		return SendResult{Success: false, Error: "no whatsapp provider configured"}
	}

	tp, ok := s.provider.(templateProvider)
	if !ok {
		return SendResult{Success: false, Error: "templates are only available with the Meta WhatsApp Business API"}
	}

	messageID, err := tp.SendTemplate(ctx, to, template)
	if err != nil {
		s.logger.Error("Failed to send WhatsApp template",
			zap.Error(err),
			zap.String("template", template.Name),
			zap.String("to", to))
		return SendResult{Success: false, Error: err.Error()}
	}

	return SendResult{Success: true, MessageID: messageID}
}

// SendWelcomeMessage greets a new customer after their first purchase.
func (s *WhatsAppService) SendWelcomeMessage(ctx context.Context, customerPhone, customerName string) SendResult {
	return s.Send(ctx, OutboundMessage{
		To: customerPhone,
		Body: fmt.Sprintf("¡Hola %s! 👋\n\nGracias por tu compra. Te mantendremos informado sobre el estado de tu pedido.\n\n¿Necesitas ayuda? Solo responde a este mensaje.",
			customerName),
	})
}

// SendPaymentConfirmation notifies a customer that their payment was
// received.
func (s *WhatsAppService) SendPaymentConfirmation(ctx context.Context, customerPhone, customerName string, amount float64, orderID string) SendResult {
	return s.Send(ctx, OutboundMessage{
		To: customerPhone,
		Body: fmt.Sprintf("✅ ¡Pago confirmado!\n\nHola %s,\n\nHemos recibido tu pago de $%.2f para el pedido #%s.\n\nTe notificaremos cuando tu pedido esté listo para envío.",
			customerName, amount, orderID),
	})
}

// SendShipmentNotification tells a customer their order shipped.
func (s *WhatsAppService) SendShipmentNotification(ctx context.Context, customerPhone, customerName, orderID, trackingNumber string) SendResult {
	body := fmt.Sprintf("📦 ¡Tu pedido está en camino!\n\nHola %s,\n\nTu pedido #%s ha sido enviado.", customerName, orderID)
	if trackingNumber != "" {
		body += fmt.Sprintf("\n\nNúmero de seguimiento: %s", trackingNumber)
	}
	body += "\n\n¡Pronto lo tendrás en tus manos!"

	return s.Send(ctx, OutboundMessage{To: customerPhone, Body: body})
}

// SendPromotionalMessage sends a promotional text.
func (s *WhatsAppService) SendPromotionalMessage(ctx context.Context, customerPhone, customerName, promoText string) SendResult {
	return s.Send(ctx, OutboundMessage{
		To: customerPhone,
		Body: fmt.Sprintf("🎉 ¡Oferta especial para ti, %s!\n\n%s\n\n¿Interesado? Solo responde a este mensaje.",
			customerName, promoText),
	})
}

// FormatPhone normalizes a phone number using the configured default
// country code.
func (s *WhatsAppService) FormatPhone(phone string) string {
	return FormatPhoneNumber(phone, s.defaultCountryCode)
}

const defaultCountryCode = "+52"

var (
	phonePattern    = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)
	phoneNoiseChars = regexp.MustCompile(`[\s\-()]+`)
)

// ValidatePhoneNumber reports whether s is a plausible E.164 number:
// a + followed by a non-zero digit and 1 to 14 more digits.
func ValidatePhoneNumber(s string) bool {
	return phonePattern.MatchString(s)
}

// FormatPhoneNumber strips whitespace, hyphens and parentheses; when
// the result has no leading +, one trunk zero is dropped and the
// default country code is prepended. Pure, no I/O.
func FormatPhoneNumber(phone, countryCode string) string {
	if countryCode == "" {
		countryCode = defaultCountryCode
	}

	cleaned := phoneNoiseChars.ReplaceAllString(phone, "")
	if !strings.HasPrefix(cleaned, "+") {
		cleaned = strings.TrimPrefix(cleaned, "0")
		cleaned = countryCode + cleaned
	}

	return cleaned
}
