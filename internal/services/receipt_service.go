package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// ReceiptService emails a payment receipt. Like the calendar entry it
// is a best-effort projection of an already durable payment.
type ReceiptService struct {
	client    *resend.Client
	fromEmail string
	fromName  string
	logger    *zap.Logger
}

// NewReceiptService creates the receipt mailer.
func NewReceiptService(apiKey, fromEmail, fromName string, logger *zap.Logger) *ReceiptService {
	return &ReceiptService{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
		logger:    logger,
	}
}

// SendPaymentReceipt sends a plain receipt for one processed payment.
func (s *ReceiptService) SendPaymentReceipt(ctx context.Context, params ReceiptParams) error {
	subject := fmt.Sprintf("Pago recibido - $%.2f %s", params.Amount, params.Currency)

	html := fmt.Sprintf(
		`<p>Hola %s,</p>
<p>Hemos recibido tu pago de <strong>$%.2f %s</strong>.</p>
<p>Referencia: %s<br>Fecha: %s</p>
<p>¡Gracias!</p>`,
		params.CustomerName, params.Amount, params.Currency,
		params.TransactionID, params.PaymentDate.Format("2006-01-02 15:04"))

	text := fmt.Sprintf(
		"Hola %s,\n\nHemos recibido tu pago de $%.2f %s.\n\nReferencia: %s\nFecha: %s\n\n¡Gracias!",
		params.CustomerName, params.Amount, params.Currency,
		params.TransactionID, params.PaymentDate.Format("2006-01-02 15:04"))

	req := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail),
		To:      []string{params.ToEmail},
		Subject: subject,
		Html:    html,
		Text:    text,
		Headers: map[string]string{
			"X-Entity-Ref-ID": uuid.New().String(),
		},
		Tags: []resend.Tag{
			{Name: "category", Value: "payment_receipt"},
		},
	}

	sent, err := s.client.Emails.Send(req)
	if err != nil {
		s.logger.Error("Failed to send payment receipt",
			zap.Error(err),
			zap.String("to", params.ToEmail),
			zap.String("transaction_id", params.TransactionID))
		return fmt.Errorf("failed to send receipt email: %w", err)
	}

	s.logger.Info("Payment receipt sent",
		zap.String("email_id", sent.Id),
		zap.String("to", params.ToEmail))

	return nil
}
