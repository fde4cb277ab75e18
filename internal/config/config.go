package config

import (
	"os"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config holds every environment-sourced setting the service consumes.
// Values come from the process environment; a .env file is loaded first
// when running locally.
type Config struct {
	App
	Stripe
	Notion
	WhatsApp
	Receipt
}

type App struct {
	Port               string `env:"PORT" envDefault:"8000"`
	DefaultCountryCode string `env:"DEFAULT_COUNTRY_CODE" envDefault:"+52"`
}

type Stripe struct {
	SecretKey     string `env:"STRIPE_SECRET_KEY"`
	WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
}

type Notion struct {
	Secret             string `env:"NOTION_SECRET"`
	ClientsDatabaseID  string `env:"NOTION_CLIENTS_DATABASE_ID"`
	PaymentsDatabaseID string `env:"NOTION_PAYMENTS_DATABASE_ID"`
	CalendarDatabaseID string `env:"NOTION_CALENDAR_DATABASE_ID"`
}

type WhatsApp struct {
	TwilioAccountSID  string `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken   string `env:"TWILIO_AUTH_TOKEN"`
	TwilioFrom        string `env:"TWILIO_WHATSAPP_FROM"`
	UseMetaAPI        bool   `env:"USE_META_WHATSAPP_API" envDefault:"false"`
	MetaAccessToken   string `env:"META_WHATSAPP_ACCESS_TOKEN"`
	MetaPhoneNumberID string `env:"META_WHATSAPP_PHONE_NUMBER_ID"`
}

type Receipt struct {
	ResendAPIKey string `env:"RESEND_API_KEY"`
	FromEmail    string `env:"RECEIPT_FROM_EMAIL"`
	FromName     string `env:"RECEIPT_FROM_NAME" envDefault:"Paynote"`
}

// New loads the configuration from the environment.
func New() (*Config, error) {
	if os.Getenv("GIN_MODE") != "release" {
		_ = godotenv.Load()
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
