package services

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	"github.com/paynotehq/paynote-api/internal/client/httpclient"
)

// twilioProvider delivers messages through the Twilio SDK. It cannot
// send template messages.
type twilioProvider struct {
	client *twilio.RestClient
	from   string
	logger *zap.Logger
}

func newTwilioProvider(accountSID, authToken, from string, logger *zap.Logger) *twilioProvider {
	return &twilioProvider{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		from:   from,
		logger: logger,
	}
}

func (p *twilioProvider) Name() string { return "twilio" }

func (p *twilioProvider) Send(_ context.Context, message OutboundMessage) (string, error) {
	if p.from == "" {
		return "", fmt.Errorf("twilio whatsapp sender number not configured")
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetFrom("whatsapp:" + p.from)
	params.SetTo("whatsapp:" + message.To)
	params.SetBody(message.Body)
	if message.MediaURL != "" {
		params.SetMediaUrl([]string{message.MediaURL})
	}

	resp, err := p.client.Api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("twilio send failed: %w", err)
	}

	var sid string
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	return sid, nil
}

const metaGraphBaseURL = "https://graph.facebook.com/v18.0"

// metaProvider delivers messages through the Meta WhatsApp Business
// HTTP API and also supports templates.
type metaProvider struct {
	http          *httpclient.Client
	accessToken   string
	phoneNumberID string
	logger        *zap.Logger
}

func newMetaProvider(accessToken, phoneNumberID string, logger *zap.Logger) *metaProvider {
	return &metaProvider{
		http:          httpclient.New(httpclient.WithBaseURL(metaGraphBaseURL)),
		accessToken:   accessToken,
		phoneNumberID: phoneNumberID,
		logger:        logger,
	}
}

func (p *metaProvider) Name() string { return "meta" }

type metaSendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

func (p *metaProvider) Send(ctx context.Context, message OutboundMessage) (string, error) {
	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                message.To,
		"type":              "text",
		"text":              map[string]string{"body": message.Body},
	}

	return p.post(ctx, payload)
}

func (p *metaProvider) SendTemplate(ctx context.Context, to string, template Template) (string, error) {
	components := template.Components
	if components == nil {
		components = []TemplateComponent{}
	}

	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "template",
		"template": map[string]interface{}{
			"name":       template.Name,
			"language":   map[string]string{"code": template.Language},
			"components": components,
		},
	}

	return p.post(ctx, payload)
}

func (p *metaProvider) post(ctx context.Context, payload map[string]interface{}) (string, error) {
	resp, err := p.http.Post(ctx,
		fmt.Sprintf("/%s/messages", p.phoneNumberID),
		payload,
		httpclient.WithBearerToken(p.accessToken))
	if err != nil {
		return "", fmt.Errorf("meta whatsapp api call failed: %w", err)
	}

	var result metaSendResponse
	if err := p.http.ProcessJSONResponse(resp, &result); err != nil {
		return "", fmt.Errorf("meta whatsapp api response: %w", err)
	}
	if len(result.Messages) == 0 {
		return "", fmt.Errorf("meta whatsapp api returned no message id")
	}

	return result.Messages[0].ID, nil
}
