package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/paynotehq/paynote-api/internal/client/notion"
)

// Property names of the three workspace databases. These mirror the
// workspace configuration, not this service's contract; a schema
// rename touches only this file.
const (
	propClientName      = "Nombre"
	propClientEmail     = "Email"
	propClientPhone     = "Teléfono"
	propClientLastPaid  = "Fecha Último Pago"
	propClientCategory  = "Categoría"
	propClientTotalPaid = "Total Pagado"

	propPaymentName   = "Nombre del Pago"
	propPaymentAmount = "Monto"
	propPaymentCurr   = "Moneda"
	propPaymentDate   = "Fecha de Pago"
	propPaymentEmail  = "Correo electrónico"
	propPaymentTxID   = "ID de Transacción"
	propPaymentMethod = "Método de Pago"
	propPaymentClient = "Cliente"

	propCalendarTitle  = "Título"
	propCalendarDate   = "Fecha"
	propCalendarType   = "Tipo"
	propCalendarClient = "Cliente"
	propCalendarEmail  = "Email"
	propCalendarAmount = "Monto"
	propCalendarDesc   = "Descripción"
	propCalendarState  = "Estado"

	categoryNew = "Nuevo"
)

// WorkspaceService implements the client registry, payment record and
// calendar adapters against the workspace store. Every operation
// re-queries the store; nothing is cached and nothing retries.
type WorkspaceService struct {
	api        NotionAPI
	clientsDB  string
	paymentsDB string
	calendarDB string
	logger     *zap.Logger
}

// NewWorkspaceService creates the adapter over the given store client
// and database identifiers.
func NewWorkspaceService(api NotionAPI, clientsDB, paymentsDB, calendarDB string, logger *zap.Logger) *WorkspaceService {
	return &WorkspaceService{
		api:        api,
		clientsDB:  clientsDB,
		paymentsDB: paymentsDB,
		calendarDB: calendarDB,
		logger:     logger,
	}
}

// FindClientByEmail returns the first client page matching the email,
// or nil when none exists. Duplicates are a store-side data-quality
// issue and are not resolved here.
func (s *WorkspaceService) FindClientByEmail(ctx context.Context, email string) (*ClientRecord, error) {
	resp, err := s.api.QueryDatabase(ctx, s.clientsDB, &notion.Filter{
		Property: propClientEmail,
		RichText: &notion.TextCondition{Equals: email},
	})
	if err != nil {
		return nil, &WorkspaceError{Op: "workspace.FindClientByEmail", Err: err}
	}

	if len(resp.Results) == 0 {
		return nil, nil
	}

	return clientRecordFromPage(resp.Results[0]), nil
}

// UpsertClient finds a client by email and updates it in place, or
// creates it when missing. The page identity is preserved on update;
// name, phone, last-payment date and category are overwritten.
func (s *WorkspaceService) UpsertClient(ctx context.Context, profile ClientProfile) (*ClientRecord, error) {
	existing, err := s.FindClientByEmail(ctx, profile.Email)
	if err != nil {
		return nil, err
	}

	properties := map[string]notion.Property{
		propClientName:     notion.TitleProperty(profile.Name),
		propClientEmail:    notion.EmailProperty(profile.Email),
		propClientLastPaid: notion.DateProperty(profile.LastPaymentDate),
		propClientCategory: notion.SelectProperty(categoryNew),
	}
	if profile.Phone != "" {
		properties[propClientPhone] = notion.PhoneProperty(profile.Phone)
	}

	var page *notion.Page
	if existing != nil {
		page, err = s.api.UpdatePage(ctx, existing.ID, properties)
	} else {
		page, err = s.api.CreatePage(ctx, s.clientsDB, properties)
	}
	if err != nil {
		return nil, &WorkspaceError{Op: "workspace.UpsertClient", Err: err}
	}

	s.logger.Info("Upserted workspace client",
		zap.String("client_page_id", page.ID),
		zap.String("email", profile.Email),
		zap.Bool("created", existing == nil))

	return &ClientRecord{ID: page.ID, Name: profile.Name, Email: profile.Email}, nil
}

// CreatePaymentRecord creates one payment page; it never checks for an
// existing record with the same transaction id.
func (s *WorkspaceService) CreatePaymentRecord(ctx context.Context, record PaymentRecord) (string, error) {
	properties := map[string]notion.Property{
		propPaymentName:   notion.TitleProperty(record.Name),
		propPaymentAmount: notion.NumberProperty(float64(record.AmountMinorUnits) / 100),
		propPaymentCurr:   notion.SelectProperty(record.Currency),
		propPaymentDate:   notion.DateProperty(record.Date),
		propPaymentEmail:  notion.EmailProperty(record.CustomerEmail),
		propPaymentTxID:   notion.RichTextProperty(record.TransactionID),
		propPaymentMethod: notion.SelectProperty(record.PaymentMethod),
	}
	// Processor status is intentionally not written; only succeeded
	// payments reach this adapter.
	if record.ClientPageID != "" {
		properties[propPaymentClient] = notion.RelationProperty(record.ClientPageID)
	}

	page, err := s.api.CreatePage(ctx, s.paymentsDB, properties)
	if err != nil {
		return "", &WorkspaceError{Op: "workspace.CreatePaymentRecord", Err: err}
	}

	s.logger.Info("Created workspace payment record",
		zap.String("payment_page_id", page.ID),
		zap.String("transaction_id", record.TransactionID))

	return page.ID, nil
}

// SumAndUpdateClientTotal recomputes a client's total paid by summing
// every linked payment record and writes the result back. Entries
// without a numeric amount are skipped rather than failing the sum, so
// replayed or hand-edited rows cannot poison the total.
func (s *WorkspaceService) SumAndUpdateClientTotal(ctx context.Context, clientPageID string) (float64, error) {
	resp, err := s.api.QueryDatabase(ctx, s.paymentsDB, &notion.Filter{
		Property: propPaymentClient,
		Relation: &notion.RelationCondition{Contains: clientPageID},
	})
	if err != nil {
		return 0, &WorkspaceError{Op: "workspace.SumAndUpdateClientTotal", Err: err}
	}

	var total float64
	for _, page := range resp.Results {
		amount, ok := page.Properties[propPaymentAmount]
		if !ok || amount.Number == nil {
			continue
		}
		total += *amount.Number
	}

	_, err = s.api.UpdatePage(ctx, clientPageID, map[string]notion.Property{
		propClientTotalPaid: notion.NumberProperty(total),
	})
	if err != nil {
		return 0, &WorkspaceError{Op: "workspace.SumAndUpdateClientTotal", Err: err}
	}

	s.logger.Info("Updated client total paid",
		zap.String("client_page_id", clientPageID),
		zap.Float64("total", total),
		zap.Int("payments", len(resp.Results)))

	return total, nil
}

// CreateCalendarEntry creates the human-readable calendar projection
// of a payment.
func (s *WorkspaceService) CreateCalendarEntry(ctx context.Context, entry CalendarEntry) (string, error) {
	amount := float64(entry.AmountMinorUnits) / 100
	title := fmt.Sprintf("💰 Pago recibido - %s", entry.ClientName)
	description := fmt.Sprintf("Cliente: %s\nMonto: $%.2f %s\nID: %s",
		entry.ClientEmail, amount, entry.Currency, entry.TransactionID)
	if entry.PaymentMethodInfo != "" {
		description += fmt.Sprintf("\nMétodo: %s", entry.PaymentMethodInfo)
	}

	page, err := s.api.CreatePage(ctx, s.calendarDB, map[string]notion.Property{
		propCalendarTitle:  notion.TitleProperty(title),
		propCalendarDate:   notion.DateProperty(entry.PaymentDate),
		propCalendarType:   notion.SelectProperty("Pago"),
		propCalendarClient: notion.RichTextProperty(entry.ClientName),
		propCalendarEmail:  notion.EmailProperty(entry.ClientEmail),
		propCalendarAmount: notion.NumberProperty(amount),
		propCalendarDesc:   notion.RichTextProperty(description),
		propCalendarState:  notion.SelectProperty("Completado"),
	})
	if err != nil {
		return "", &WorkspaceError{Op: "workspace.CreateCalendarEntry", Err: err}
	}

	return page.ID, nil
}

func clientRecordFromPage(page notion.Page) *ClientRecord {
	record := &ClientRecord{ID: page.ID}
	if name, ok := page.Properties[propClientName]; ok && len(name.Title) > 0 {
		if name.Title[0].Text != nil {
			record.Name = name.Title[0].Text.Content
		} else {
			record.Name = name.Title[0].PlainText
		}
	}
	if email, ok := page.Properties[propClientEmail]; ok {
		record.Email = email.Email
	}
	return record
}
