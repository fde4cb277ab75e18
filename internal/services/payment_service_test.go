package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	stripeclient "github.com/paynotehq/paynote-api/internal/client/stripe"
	"github.com/paynotehq/paynote-api/internal/services"
)

// MockPaymentFetcher mocks the payment processor surface
type MockPaymentFetcher struct {
	mock.Mock
}

func (m *MockPaymentFetcher) GetPaymentDetails(ctx context.Context, paymentIntentID string) (*stripeclient.PaymentDetails, error) {
	args := m.Called(ctx, paymentIntentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripeclient.PaymentDetails), args.Error(1)
}

func (m *MockPaymentFetcher) GetCustomer(ctx context.Context, customerID string) (*stripeclient.CustomerDetails, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripeclient.CustomerDetails), args.Error(1)
}

// MockWorkspaceStore mocks the workspace adapter surface
type MockWorkspaceStore struct {
	mock.Mock
}

func (m *MockWorkspaceStore) FindClientByEmail(ctx context.Context, email string) (*services.ClientRecord, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ClientRecord), args.Error(1)
}

func (m *MockWorkspaceStore) UpsertClient(ctx context.Context, profile services.ClientProfile) (*services.ClientRecord, error) {
	args := m.Called(ctx, profile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ClientRecord), args.Error(1)
}

func (m *MockWorkspaceStore) CreatePaymentRecord(ctx context.Context, record services.PaymentRecord) (string, error) {
	args := m.Called(ctx, record)
	return args.String(0), args.Error(1)
}

func (m *MockWorkspaceStore) SumAndUpdateClientTotal(ctx context.Context, clientPageID string) (float64, error) {
	args := m.Called(ctx, clientPageID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockWorkspaceStore) CreateCalendarEntry(ctx context.Context, entry services.CalendarEntry) (string, error) {
	args := m.Called(ctx, entry)
	return args.String(0), args.Error(1)
}

// recordingNotifier captures the confirmation call without a provider
type recordingNotifier struct {
	phone   string
	name    string
	amount  float64
	orderID string
	called  bool
	result  services.SendResult
}

func (n *recordingNotifier) FormatPhone(phone string) string {
	return services.FormatPhoneNumber(phone, "+52")
}

func (n *recordingNotifier) SendPaymentConfirmation(_ context.Context, phone, name string, amount float64, orderID string) services.SendResult {
	n.called = true
	n.phone = phone
	n.name = name
	n.amount = amount
	n.orderID = orderID
	return n.result
}

func succeededDetails() *stripeclient.PaymentDetails {
	return &stripeclient.PaymentDetails{
		ID:                  "pi_123",
		Amount:              150000,
		Currency:            "mxn",
		Status:              "succeeded",
		Created:             time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
		BillingName:         "Ana García",
		BillingEmail:        "ana@example.com",
		BillingPhone:        "555-123-4567",
		StatementDescriptor: "ASESORIA ONLINE MARZO",
		PaymentMethodType:   "card",
		CardLast4:           "4242",
	}
}

func expectHappyPath(workspace *MockWorkspaceStore) {
	workspace.On("UpsertClient", mock.Anything, mock.Anything).
		Return(&services.ClientRecord{ID: "page-1", Email: "ana@example.com"}, nil)
	workspace.On("CreatePaymentRecord", mock.Anything, mock.Anything).
		Return("payment-1", nil)
	workspace.On("SumAndUpdateClientTotal", mock.Anything, "page-1").
		Return(1500.0, nil)
	workspace.On("CreateCalendarEntry", mock.Anything, mock.Anything).
		Return("cal-1", nil)
}

func TestProcessPayment_ReplicatesEvent(t *testing.T) {
	fetcher := new(MockPaymentFetcher)
	fetcher.On("GetPaymentDetails", mock.Anything, "pi_123").Return(succeededDetails(), nil)

	workspace := new(MockWorkspaceStore)
	workspace.On("UpsertClient", mock.Anything, mock.MatchedBy(func(p services.ClientProfile) bool {
		return p.Email == "ana@example.com" && p.Name == "Ana García"
	})).Return(&services.ClientRecord{ID: "page-1", Email: "ana@example.com"}, nil)
	workspace.On("CreatePaymentRecord", mock.Anything, mock.MatchedBy(func(r services.PaymentRecord) bool {
		return r.Name == "ASESORIA ONLINE MARZO" &&
			r.AmountMinorUnits == 150000 &&
			r.Currency == "MXN" &&
			r.TransactionID == "pi_123" &&
			r.PaymentMethod == "card" &&
			r.ClientPageID == "page-1"
	})).Return("payment-1", nil)
	workspace.On("SumAndUpdateClientTotal", mock.Anything, "page-1").Return(1500.0, nil)
	workspace.On("CreateCalendarEntry", mock.Anything, mock.MatchedBy(func(e services.CalendarEntry) bool {
		return e.PaymentMethodInfo == "card •••• 4242"
	})).Return("cal-1", nil)

	svc := services.NewPaymentService(fetcher, workspace, nil, nil, zap.NewNop())
	result, err := svc.ProcessPayment(context.Background(), "pi_123")
	require.NoError(t, err)
	assert.Equal(t, services.StatusProcessed, result.Status)
	assert.Equal(t, "payment-1", result.PaymentID)
	assert.Equal(t, "page-1", result.ClientID)
	workspace.AssertExpectations(t)
	fetcher.AssertNotCalled(t, "GetCustomer", mock.Anything, mock.Anything)
}

func TestProcessPayment_SkipsWithoutEmail(t *testing.T) {
	details := succeededDetails()
	details.BillingEmail = ""
	details.ReceiptEmail = ""

	fetcher := new(MockPaymentFetcher)
	fetcher.On("GetPaymentDetails", mock.Anything, "pi_123").Return(details, nil)

	workspace := new(MockWorkspaceStore)

	svc := services.NewPaymentService(fetcher, workspace, nil, nil, zap.NewNop())
	result, err := svc.ProcessPayment(context.Background(), "pi_123")
	require.NoError(t, err)
	assert.Equal(t, services.StatusSkipped, result.Status)
	assert.Empty(t, result.PaymentID)

	workspace.AssertNotCalled(t, "UpsertClient", mock.Anything, mock.Anything)
	workspace.AssertNotCalled(t, "CreatePaymentRecord", mock.Anything, mock.Anything)
	workspace.AssertNotCalled(t, "SumAndUpdateClientTotal", mock.Anything, mock.Anything)
	workspace.AssertNotCalled(t, "CreateCalendarEntry", mock.Anything, mock.Anything)
}

func TestProcessPayment_FallsBackToCustomerEmail(t *testing.T) {
	details := succeededDetails()
	details.BillingEmail = ""
	details.ReceiptEmail = ""
	details.BillingName = ""
	details.CustomerID = "cus_123"

	fetcher := new(MockPaymentFetcher)
	fetcher.On("GetPaymentDetails", mock.Anything, "pi_123").Return(details, nil)
	fetcher.On("GetCustomer", mock.Anything, "cus_123").
		Return(&stripeclient.CustomerDetails{ID: "cus_123", Email: "cust@example.com", Name: "Cliente Stripe"}, nil)

	workspace := new(MockWorkspaceStore)
	workspace.On("UpsertClient", mock.Anything, mock.MatchedBy(func(p services.ClientProfile) bool {
		return p.Email == "cust@example.com" && p.Name == "Cliente Stripe"
	})).Return(&services.ClientRecord{ID: "page-1"}, nil)
	workspace.On("CreatePaymentRecord", mock.Anything, mock.Anything).Return("payment-1", nil)
	workspace.On("SumAndUpdateClientTotal", mock.Anything, "page-1").Return(1500.0, nil)
	workspace.On("CreateCalendarEntry", mock.Anything, mock.Anything).Return("cal-1", nil)

	svc := services.NewPaymentService(fetcher, workspace, nil, nil, zap.NewNop())
	result, err := svc.ProcessPayment(context.Background(), "pi_123")
	require.NoError(t, err)
	assert.Equal(t, services.StatusProcessed, result.Status)
}

func TestProcessPayment_SkipsWhenCustomerLookupFails(t *testing.T) {
	details := succeededDetails()
	details.BillingEmail = ""
	details.ReceiptEmail = ""
	details.CustomerID = "cus_123"

	fetcher := new(MockPaymentFetcher)
	fetcher.On("GetPaymentDetails", mock.Anything, "pi_123").Return(details, nil)
	fetcher.On("GetCustomer", mock.Anything, "cus_123").Return(nil, errors.New("stripe down"))

	workspace := new(MockWorkspaceStore)

	svc := services.NewPaymentService(fetcher, workspace, nil, nil, zap.NewNop())
	result, err := svc.ProcessPayment(context.Background(), "pi_123")
	require.NoError(t, err)
	assert.Equal(t, services.StatusSkipped, result.Status)
	workspace.AssertNotCalled(t, "UpsertClient", mock.Anything, mock.Anything)
}

func TestProcessPayment_WrapsFetchFailure(t *testing.T) {
	fetcher := new(MockPaymentFetcher)
	fetcher.On("GetPaymentDetails", mock.Anything, "pi_123").Return(nil, errors.New("stripe down"))

	svc := services.NewPaymentService(fetcher, new(MockWorkspaceStore), nil, nil, zap.NewNop())
	_, err := svc.ProcessPayment(context.Background(), "pi_123")
	require.Error(t, err)

	var upstream *services.UpstreamError
	assert.True(t, errors.As(err, &upstream))
}

func TestProcessPayment_PaymentRecordFailureIsFatal(t *testing.T) {
	fetcher := new(MockPaymentFetcher)
	fetcher.On("GetPaymentDetails", mock.Anything, "pi_123").Return(succeededDetails(), nil)

	workspace := new(MockWorkspaceStore)
	workspace.On("UpsertClient", mock.Anything, mock.Anything).
		Return(&services.ClientRecord{ID: "page-1"}, nil)
	workspace.On("CreatePaymentRecord", mock.Anything, mock.Anything).
		Return("", &services.WorkspaceError{Op: "workspace.CreatePaymentRecord", Err: errors.New("boom")})

	svc := services.NewPaymentService(fetcher, workspace, nil, nil, zap.NewNop())
	_, err := svc.ProcessPayment(context.Background(), "pi_123")
	require.Error(t, err)

	var wsErr *services.WorkspaceError
	assert.True(t, errors.As(err, &wsErr))
	workspace.AssertNotCalled(t, "SumAndUpdateClientTotal", mock.Anything, mock.Anything)
	workspace.AssertNotCalled(t, "CreateCalendarEntry", mock.Anything, mock.Anything)
}

func TestProcessPayment_CalendarFailureIsBestEffort(t *testing.T) {
	fetcher := new(MockPaymentFetcher)
	fetcher.On("GetPaymentDetails", mock.Anything, "pi_123").Return(succeededDetails(), nil)

	workspace := new(MockWorkspaceStore)
	workspace.On("UpsertClient", mock.Anything, mock.Anything).
		Return(&services.ClientRecord{ID: "page-1"}, nil)
	workspace.On("CreatePaymentRecord", mock.Anything, mock.Anything).Return("payment-1", nil)
	workspace.On("SumAndUpdateClientTotal", mock.Anything, "page-1").Return(1500.0, nil)
	workspace.On("CreateCalendarEntry", mock.Anything, mock.Anything).
		Return("", &services.WorkspaceError{Op: "workspace.CreateCalendarEntry", Err: errors.New("boom")})

	svc := services.NewPaymentService(fetcher, workspace, nil, nil, zap.NewNop())
	result, err := svc.ProcessPayment(context.Background(), "pi_123")
	require.NoError(t, err)
	assert.Equal(t, services.StatusProcessed, result.Status)
}

func TestProcessPayment_SendsConfirmationWithNormalizedPhone(t *testing.T) {
	fetcher := new(MockPaymentFetcher)
	fetcher.On("GetPaymentDetails", mock.Anything, "pi_123").Return(succeededDetails(), nil)

	workspace := new(MockWorkspaceStore)
	expectHappyPath(workspace)

	notifier := &recordingNotifier{result: services.SendResult{Success: true, MessageID: "msg-1"}}

	svc := services.NewPaymentService(fetcher, workspace, notifier, nil, zap.NewNop())
	_, err := svc.ProcessPayment(context.Background(), "pi_123")
	require.NoError(t, err)

	assert.True(t, notifier.called)
	assert.Equal(t, "+525551234567", notifier.phone)
	assert.Equal(t, "Ana García", notifier.name)
	assert.Equal(t, 1500.0, notifier.amount)
	assert.Equal(t, "pi_123", notifier.orderID)
}

func TestProcessPayment_MessagingFailureDoesNotAbort(t *testing.T) {
	fetcher := new(MockPaymentFetcher)
	fetcher.On("GetPaymentDetails", mock.Anything, "pi_123").Return(succeededDetails(), nil)

	workspace := new(MockWorkspaceStore)
	expectHappyPath(workspace)

	notifier := &recordingNotifier{result: services.SendResult{Success: false, Error: "provider down"}}

	svc := services.NewPaymentService(fetcher, workspace, notifier, nil, zap.NewNop())
	result, err := svc.ProcessPayment(context.Background(), "pi_123")
	require.NoError(t, err)
	assert.Equal(t, services.StatusProcessed, result.Status)
	assert.True(t, notifier.called)
}

func TestProcessPayment_SkipsNotifierForUnusablePhone(t *testing.T) {
	details := succeededDetails()
	details.BillingPhone = "no digits"

	fetcher := new(MockPaymentFetcher)
	fetcher.On("GetPaymentDetails", mock.Anything, "pi_123").Return(details, nil)

	workspace := new(MockWorkspaceStore)
	expectHappyPath(workspace)

	notifier := &recordingNotifier{result: services.SendResult{Success: true}}

	svc := services.NewPaymentService(fetcher, workspace, notifier, nil, zap.NewNop())
	_, err := svc.ProcessPayment(context.Background(), "pi_123")
	require.NoError(t, err)
	assert.False(t, notifier.called)
}

func TestProcessTestPayment_UsesMetadataIdentity(t *testing.T) {
	workspace := new(MockWorkspaceStore)
	workspace.On("UpsertClient", mock.Anything, mock.MatchedBy(func(p services.ClientProfile) bool {
		return p.Email == "test@example.com" && p.Name == "Cliente de Prueba"
	})).Return(&services.ClientRecord{ID: "page-1"}, nil)
	workspace.On("CreatePaymentRecord", mock.Anything, mock.MatchedBy(func(r services.PaymentRecord) bool {
		return r.Name == "PAGO DE TEST - ASESORIA ONLINE" && r.TransactionID == "pi_test_1"
	})).Return("payment-1", nil)
	workspace.On("SumAndUpdateClientTotal", mock.Anything, "page-1").Return(500.0, nil)
	workspace.On("CreateCalendarEntry", mock.Anything, mock.Anything).Return("cal-1", nil)

	svc := services.NewPaymentService(new(MockPaymentFetcher), workspace, nil, nil, zap.NewNop())
	result, err := svc.ProcessTestPayment(context.Background(), services.TestPaymentInput{
		ID:       "pi_test_1",
		Amount:   50000,
		Currency: "mxn",
		Metadata: map[string]string{
			"customer_email": "test@example.com",
			"customer_name":  "Cliente de Prueba",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, services.StatusProcessed, result.Status)
	workspace.AssertExpectations(t)
}

func TestProcessTestPayment_SkipsWithoutIdentity(t *testing.T) {
	workspace := new(MockWorkspaceStore)

	svc := services.NewPaymentService(new(MockPaymentFetcher), workspace, nil, nil, zap.NewNop())
	result, err := svc.ProcessTestPayment(context.Background(), services.TestPaymentInput{
		ID:       "pi_test_2",
		Amount:   50000,
		Currency: "mxn",
	})
	require.NoError(t, err)
	assert.Equal(t, services.StatusSkipped, result.Status)
	workspace.AssertNotCalled(t, "UpsertClient", mock.Anything, mock.Anything)
}
