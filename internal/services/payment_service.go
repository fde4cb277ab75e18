package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultCustomerName = "Cliente sin nombre"
	defaultDescription  = "ASESORIA ONLINE"
	defaultMethodLabel  = "card"

	testDescription  = "PAGO DE TEST - ASESORIA ONLINE"
	testMethodDetail = "card •••• 4242 (TEST)"
)

// PaymentService is the event orchestrator: one verified
// payment-succeeded event in, one replicated business event out. Each
// run is stateless and sequential; the workspace store is the only
// durable state.
type PaymentService struct {
	fetcher   PaymentFetcher
	workspace WorkspaceStore
	notifier  Notifier      // optional, best-effort
	mailer    ReceiptMailer // optional, best-effort
	logger    *zap.Logger
}

// NewPaymentService wires the orchestrator. notifier and mailer may be
// nil; the corresponding best-effort steps are skipped.
func NewPaymentService(fetcher PaymentFetcher, workspace WorkspaceStore, notifier Notifier, mailer ReceiptMailer, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		fetcher:   fetcher,
		workspace: workspace,
		notifier:  notifier,
		mailer:    mailer,
		logger:    logger,
	}
}

// ProcessPayment handles a verified payment-succeeded event: it
// re-fetches the enriched payment from the processor, normalizes it,
// and replicates it into the workspace store. A payment whose email
// cannot be resolved is skipped without error; failures before the
// calendar step abort the run.
func (s *PaymentService) ProcessPayment(ctx context.Context, paymentIntentID string) (*OrchestrationResult, error) {
	details, err := s.fetcher.GetPaymentDetails(ctx, paymentIntentID)
	if err != nil {
		return nil, &UpstreamError{Op: "payments.ProcessPayment", Err: err}
	}

	event := PaymentEvent{
		TransactionID:      details.ID,
		AmountMinorUnits:   details.Amount,
		Currency:           strings.ToUpper(details.Currency),
		CustomerEmail:      firstNonEmpty(details.BillingEmail, details.ReceiptEmail),
		CustomerName:       details.BillingName,
		CustomerPhone:      details.BillingPhone,
		Description:        firstNonEmpty(details.StatementDescriptor, details.ChargeDescription, details.Description, defaultDescription),
		PaymentMethodLabel: firstNonEmpty(details.PaymentMethodType, defaultMethodLabel),
		OccurredAt:         details.Created,
	}
	if details.PaymentMethodType != "" {
		event.PaymentMethodInfo = details.PaymentMethodType
		if details.CardLast4 != "" {
			event.PaymentMethodInfo += " •••• " + details.CardLast4
		}
	}

	// Billing details sometimes carry no email; the customer record is
	// the last resort before giving up on the event.
	if event.CustomerEmail == "" && details.CustomerID != "" {
		customer, err := s.fetcher.GetCustomer(ctx, details.CustomerID)
		if err != nil {
			s.logger.Warn("Could not fetch customer for email fallback",
				zap.Error(err),
				zap.String("customer_id", details.CustomerID),
				zap.String("payment_intent_id", paymentIntentID))
		} else {
			event.CustomerEmail = customer.Email
			event.CustomerName = firstNonEmpty(event.CustomerName, customer.Name)
			event.CustomerPhone = firstNonEmpty(event.CustomerPhone, customer.Phone)
		}
	}

	if event.CustomerName == "" {
		event.CustomerName = defaultCustomerName
	}

	if event.CustomerEmail == "" {
		// Expected for cash or anonymous payments: the workspace store
		// is keyed by email, so there is nothing to replicate.
		s.logger.Info("Payment has no resolvable customer email, skipping",
			zap.String("payment_intent_id", paymentIntentID))
		return &OrchestrationResult{Status: StatusSkipped}, nil
	}

	s.logger.Info("Processing payment",
		zap.String("email", event.CustomerEmail),
		zap.Float64("amount", float64(event.AmountMinorUnits)/100),
		zap.String("currency", event.Currency))

	return s.propagate(ctx, event)
}

// TestPaymentInput is the envelope accepted on the signature-free test
// path; identity comes straight from the payload or its metadata.
type TestPaymentInput struct {
	ID       string            `json:"id"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Customer *TestCustomer     `json:"customer"`
	Metadata map[string]string `json:"metadata"`
}

type TestCustomer struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// ProcessTestPayment follows the live pipeline from the client-upsert
// step on, without any processor round trip. The payment timestamp is
// stamped now rather than taken from the processor.
func (s *PaymentService) ProcessTestPayment(ctx context.Context, input TestPaymentInput) (*OrchestrationResult, error) {
	event := PaymentEvent{
		TransactionID:      input.ID,
		AmountMinorUnits:   input.Amount,
		Currency:           strings.ToUpper(input.Currency),
		CustomerName:       defaultCustomerName,
		Description:        testDescription,
		PaymentMethodLabel: defaultMethodLabel,
		PaymentMethodInfo:  testMethodDetail,
		OccurredAt:         time.Now(),
	}

	if input.Customer != nil {
		event.CustomerEmail = input.Customer.Email
		event.CustomerName = firstNonEmpty(input.Customer.Name, event.CustomerName)
		event.CustomerPhone = input.Customer.Phone
	}
	if event.CustomerEmail == "" && input.Metadata != nil {
		event.CustomerEmail = input.Metadata["customer_email"]
		event.CustomerName = firstNonEmpty(input.Metadata["customer_name"], event.CustomerName)
	}

	if event.CustomerEmail == "" {
		s.logger.Info("Test payment has no customer email, skipping",
			zap.String("payment_intent_id", input.ID))
		return &OrchestrationResult{Status: StatusSkipped}, nil
	}

	s.logger.Info("Processing test payment",
		zap.String("email", event.CustomerEmail),
		zap.Float64("amount", float64(event.AmountMinorUnits)/100))

	return s.propagate(ctx, event)
}

// propagate replicates a normalized event into the workspace store and
// fires the best-effort side effects. Steps 1-3 are fatal; the
// calendar entry, confirmation message and receipt are advisory and
// can never abort the run.
func (s *PaymentService) propagate(ctx context.Context, event PaymentEvent) (*OrchestrationResult, error) {
	client, err := s.workspace.UpsertClient(ctx, ClientProfile{
		Name:            event.CustomerName,
		Email:           event.CustomerEmail,
		Phone:           event.CustomerPhone,
		LastPaymentDate: event.OccurredAt,
	})
	if err != nil {
		return nil, err
	}

	paymentID, err := s.workspace.CreatePaymentRecord(ctx, PaymentRecord{
		Name:             event.Description,
		AmountMinorUnits: event.AmountMinorUnits,
		Currency:         event.Currency,
		TransactionID:    event.TransactionID,
		PaymentMethod:    event.PaymentMethodLabel,
		CustomerEmail:    event.CustomerEmail,
		ClientPageID:     client.ID,
		Date:             event.OccurredAt,
	})
	if err != nil {
		return nil, err
	}

	// Recomputed from the store, never incremented, so replayed or
	// out-of-order events cannot drift the total.
	if _, err := s.workspace.SumAndUpdateClientTotal(ctx, client.ID); err != nil {
		return nil, err
	}

	if _, err := s.workspace.CreateCalendarEntry(ctx, CalendarEntry{
		ClientName:        event.CustomerName,
		ClientEmail:       event.CustomerEmail,
		AmountMinorUnits:  event.AmountMinorUnits,
		Currency:          event.Currency,
		TransactionID:     event.TransactionID,
		PaymentDate:       event.OccurredAt,
		PaymentMethodInfo: event.PaymentMethodInfo,
	}); err != nil {
		s.logger.Error("Failed to create calendar entry",
			zap.Error(err),
			zap.String("transaction_id", event.TransactionID))
	}

	if s.notifier != nil && event.CustomerPhone != "" {
		phone := s.notifier.FormatPhone(event.CustomerPhone)
		if !ValidatePhoneNumber(phone) {
			s.logger.Warn("Skipping confirmation message, phone not valid after normalization",
				zap.String("phone", phone),
				zap.String("transaction_id", event.TransactionID))
		} else {
			result := s.notifier.SendPaymentConfirmation(ctx,
				phone,
				event.CustomerName,
				float64(event.AmountMinorUnits)/100,
				event.TransactionID)
			if !result.Success {
				s.logger.Warn("Payment confirmation message not delivered",
					zap.String("error", result.Error),
					zap.String("transaction_id", event.TransactionID))
			}
		}
	}

	if s.mailer != nil {
		if err := s.mailer.SendPaymentReceipt(ctx, ReceiptParams{
			ToEmail:       event.CustomerEmail,
			CustomerName:  event.CustomerName,
			Amount:        float64(event.AmountMinorUnits) / 100,
			Currency:      event.Currency,
			TransactionID: event.TransactionID,
			PaymentDate:   event.OccurredAt,
		}); err != nil {
			s.logger.Warn("Payment receipt email not delivered",
				zap.Error(err),
				zap.String("transaction_id", event.TransactionID))
		}
	}

	s.logger.Info("Payment replicated to workspace",
		zap.String("payment_page_id", paymentID),
		zap.String("client_page_id", client.ID))

	return &OrchestrationResult{
		Status:    StatusProcessed,
		PaymentID: paymentID,
		ClientID:  client.ID,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// String renders the result for request logs.
func (r *OrchestrationResult) String() string {
	if r.Status == StatusSkipped {
		return "skipped"
	}
	return fmt.Sprintf("processed payment=%s client=%s", r.PaymentID, r.ClientID)
}
