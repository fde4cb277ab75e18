package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// fakeProvider is a text-only backend for exercising the service
// without network calls.
type fakeProvider struct {
	lastMessage OutboundMessage
	messageID   string
	err         error
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Send(_ context.Context, message OutboundMessage) (string, error) {
	p.lastMessage = message
	return p.messageID, p.err
}

// fakeTemplateProvider also accepts templates.
type fakeTemplateProvider struct {
	fakeProvider
	lastTemplate Template
	lastTo       string
}

func (p *fakeTemplateProvider) SendTemplate(_ context.Context, to string, template Template) (string, error) {
	p.lastTo = to
	p.lastTemplate = template
	return p.messageID, p.err
}

func newFakeService(provider messageProvider) *WhatsAppService {
	return &WhatsAppService{
		provider:           provider,
		defaultCountryCode: "+52",
		logger:             zap.NewNop(),
	}
}

func TestNewWhatsAppService_ProviderSelection(t *testing.T) {
	tests := []struct {
		name     string
		settings WhatsAppSettings
		want     string
	}{
		{
			name: "meta preferred when flagged and token present",
			settings: WhatsAppSettings{
				UseMetaAPI:        true,
				MetaAccessToken:   "token",
				MetaPhoneNumberID: "123",
				TwilioAccountSID:  "AC123",
				TwilioAuthToken:   "secret",
			},
			want: "meta",
		},
		{
			name: "twilio when meta not flagged",
			settings: WhatsAppSettings{
				TwilioAccountSID: "AC123",
				TwilioAuthToken:  "secret",
				TwilioFrom:       "+14155238886",
			},
			want: "twilio",
		},
		{
			name: "meta flag without token falls through to twilio",
			settings: WhatsAppSettings{
				UseMetaAPI:       true,
				TwilioAccountSID: "AC123",
				TwilioAuthToken:  "secret",
			},
			want: "twilio",
		},
		{
			name:     "no credentials leaves no provider",
			settings: WhatsAppSettings{},
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewWhatsAppService(tt.settings, zap.NewNop())
			if tt.want == "" {
				assert.Nil(t, svc.provider)
				return
			}
			assert.Equal(t, tt.want, svc.provider.Name())
		})
	}
}

func TestSend_NoProviderFailsSoftly(t *testing.T) {
	svc := NewWhatsAppService(WhatsAppSettings{}, zap.NewNop())

	result := svc.Send(context.Background(), OutboundMessage{To: "+525551234567", Body: "hola"})
	assert.False(t, result.Success)
	assert.Equal(t, "no whatsapp provider configured", result.Error)
}

func TestSend_ReportsProviderError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("rate limited")}
	svc := newFakeService(provider)

	result := svc.Send(context.Background(), OutboundMessage{To: "+525551234567", Body: "hola"})
	assert.False(t, result.Success)
	assert.Equal(t, "rate limited", result.Error)
}

func TestSend_Success(t *testing.T) {
	provider := &fakeProvider{messageID: "msg-1"}
	svc := newFakeService(provider)

	result := svc.Send(context.Background(), OutboundMessage{To: "+525551234567", Body: "hola"})
	assert.True(t, result.Success)
	assert.Equal(t, "msg-1", result.MessageID)
	assert.Equal(t, "+525551234567", provider.lastMessage.To)
}

func TestSendTemplate_RequiresTemplateCapableProvider(t *testing.T) {
	svc := newFakeService(&fakeProvider{messageID: "msg-1"})

	result := svc.SendTemplate(context.Background(), "+525551234567", Template{Name: "order_update", Language: "es_MX"})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "Meta WhatsApp Business API")
}

func TestSendTemplate_DeliversThroughMetaCapableProvider(t *testing.T) {
	provider := &fakeTemplateProvider{fakeProvider: fakeProvider{messageID: "msg-2"}}
	svc := newFakeService(provider)

	result := svc.SendTemplate(context.Background(), "+525551234567", Template{Name: "order_update", Language: "es_MX"})
	assert.True(t, result.Success)
	assert.Equal(t, "msg-2", result.MessageID)
	assert.Equal(t, "order_update", provider.lastTemplate.Name)
}

func TestSendPaymentConfirmation_BodyContainsAmountAndOrder(t *testing.T) {
	provider := &fakeProvider{messageID: "msg-3"}
	svc := newFakeService(provider)

	result := svc.SendPaymentConfirmation(context.Background(), "+525551234567", "Ana", 1500.50, "pi_123")
	assert.True(t, result.Success)
	assert.Contains(t, provider.lastMessage.Body, "Ana")
	assert.Contains(t, provider.lastMessage.Body, "$1500.50")
	assert.Contains(t, provider.lastMessage.Body, "pi_123")
}

func TestFormatPhoneNumber(t *testing.T) {
	tests := []struct {
		name        string
		phone       string
		countryCode string
		want        string
	}{
		{"local number gets country code", "555-123-4567", "+52", "+525551234567"},
		{"spaces and parentheses stripped", "(55) 5123 4567", "+52", "+525551234567"},
		{"existing plus kept", "+1 555-123-4567", "+52", "+15551234567"},
		{"trunk zero dropped", "05551234567", "+52", "+525551234567"},
		{"empty country code falls back to +52", "5551234567", "", "+525551234567"},
		{"other country code", "5551234567", "+34", "+345551234567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPhoneNumber(tt.phone, tt.countryCode))
		})
	}
}

func TestValidatePhoneNumber(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"+525551234567", true},
		{"+15551234567", true},
		{"+12", true},
		{"5551234567", false},
		{"+05551234567", false},
		{"+52555123456789012", false},
		{"+52 555 123 4567", false},
		{"", false},
		{"+", false},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidatePhoneNumber(tt.phone))
		})
	}
}

func TestFormatPhone_UsesServiceDefault(t *testing.T) {
	svc := NewWhatsAppService(WhatsAppSettings{DefaultCountryCode: "+34"}, zap.NewNop())
	assert.Equal(t, "+345551234567", svc.FormatPhone("555 123 4567"))
}
