package services

import (
	"context"

	"github.com/paynotehq/paynote-api/internal/client/notion"
	stripeclient "github.com/paynotehq/paynote-api/internal/client/stripe"
)

// PaymentFetcher retrieves enriched payment data from the processor.
type PaymentFetcher interface {
	GetPaymentDetails(ctx context.Context, paymentIntentID string) (*stripeclient.PaymentDetails, error)
	GetCustomer(ctx context.Context, customerID string) (*stripeclient.CustomerDetails, error)
}

// WorkspaceStore is the client/payment/calendar adapter surface over
// the workspace store.
type WorkspaceStore interface {
	FindClientByEmail(ctx context.Context, email string) (*ClientRecord, error)
	UpsertClient(ctx context.Context, profile ClientProfile) (*ClientRecord, error)
	CreatePaymentRecord(ctx context.Context, record PaymentRecord) (string, error)
	SumAndUpdateClientTotal(ctx context.Context, clientPageID string) (float64, error)
	CreateCalendarEntry(ctx context.Context, entry CalendarEntry) (string, error)
}

// Notifier sends best-effort confirmation messages; implementations
// never return Go errors, only SendResult.
type Notifier interface {
	FormatPhone(phone string) string
	SendPaymentConfirmation(ctx context.Context, phone, name string, amount float64, orderID string) SendResult
}

// ReceiptMailer sends best-effort receipt emails.
type ReceiptMailer interface {
	SendPaymentReceipt(ctx context.Context, params ReceiptParams) error
}

// NotionAPI is the slice of the Notion client the workspace service
// depends on.
type NotionAPI interface {
	QueryDatabase(ctx context.Context, databaseID string, filter *notion.Filter) (*notion.QueryResponse, error)
	CreatePage(ctx context.Context, databaseID string, properties map[string]notion.Property) (*notion.Page, error)
	UpdatePage(ctx context.Context, pageID string, properties map[string]notion.Property) (*notion.Page, error)
}
