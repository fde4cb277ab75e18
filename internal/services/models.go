package services

import "time"

// Orchestration statuses.
const (
	StatusProcessed = "processed"
	StatusSkipped   = "skipped"
)

// PaymentEvent is the normalized shape the orchestrator operates on,
// after identity resolution and the description fallback chain.
type PaymentEvent struct {
	TransactionID      string
	AmountMinorUnits   int64
	Currency           string
	CustomerEmail      string
	CustomerName       string
	CustomerPhone      string
	Description        string
	PaymentMethodLabel string
	PaymentMethodInfo  string
	OccurredAt         time.Time
}

// OrchestrationResult describes one pipeline run. PaymentID and
// ClientID are only set when Status is StatusProcessed.
type OrchestrationResult struct {
	Status    string `json:"status"`
	PaymentID string `json:"payment_id,omitempty"`
	ClientID  string `json:"client_id,omitempty"`
}

// ClientProfile carries the fields written on a client upsert.
type ClientProfile struct {
	Name            string
	Email           string
	Phone           string
	LastPaymentDate time.Time
}

// ClientRecord is a client page in the workspace store; identity is
// the page id, business key is the email.
type ClientRecord struct {
	ID    string
	Name  string
	Email string
}

// PaymentRecord is one row in the payments collection, created once
// per processed event and never updated.
type PaymentRecord struct {
	Name             string
	AmountMinorUnits int64
	Currency         string
	TransactionID    string
	PaymentMethod    string
	CustomerEmail    string
	ClientPageID     string
	Date             time.Time
}

// CalendarEntry is the denormalized projection of a payment for the
// calendar collection.
type CalendarEntry struct {
	ClientName        string
	ClientEmail       string
	AmountMinorUnits  int64
	Currency          string
	TransactionID     string
	PaymentDate       time.Time
	PaymentMethodInfo string
}

// OutboundMessage is an ephemeral phone-addressed message; delivery
// and persistence are the provider's concern.
type OutboundMessage struct {
	To       string `json:"to"`
	Body     string `json:"body"`
	MediaURL string `json:"media_url,omitempty"`
}

// SendResult reports a messaging attempt. Sends never surface Go
// errors; failures always land here.
type SendResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Template identifies a pre-approved message template and its
// parameters; only the Meta provider can deliver these.
type Template struct {
	Name       string              `json:"name"`
	Language   string              `json:"language"`
	Components []TemplateComponent `json:"components,omitempty"`
}

type TemplateComponent struct {
	Type       string              `json:"type"`
	Parameters []TemplateParameter `json:"parameters,omitempty"`
}

type TemplateParameter struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// ReceiptParams carries the fields for a payment receipt email.
type ReceiptParams struct {
	ToEmail       string
	CustomerName  string
	Amount        float64
	Currency      string
	TransactionID string
	PaymentDate   time.Time
}
