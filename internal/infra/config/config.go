package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// EscalationContact is one fixed recipient of the weekly digest.
type EscalationContact struct {
	Name  string `validate:"required"`
	Phone string `validate:"required,e164"`
}

// AppConfig holds all configuration for the application.
type AppConfig struct {
	DatabaseURL string `validate:"required"`
	LogLevel    string
	Environment string

	// TimeZone names the zone all shift starts and job firings use.
	TimeZone string `validate:"required"`

	// Transport selects the outbound message channel.
	Transport        string `validate:"oneof=twilio telegram mock"`
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
	TelegramToken    string

	CronSpecDaily     string
	CronSpecDigest    string
	CronSpecAutoRenew string

	MaxSendAttempts int           `validate:"min=1"`
	RetryBaseDelay  time.Duration `validate:"min=1000000"` // at least 1ms
	MaxInFlight     int           `validate:"min=1"`

	HorizonCycles           int `validate:"min=1"`
	AutoRenewEnabled        bool
	AutoRenewThresholdWeeks int `validate:"min=1"`
	AutoRenewCycles         int `validate:"min=1"`

	EscalationContacts []EscalationContact `validate:"dive"`
}

var validate = validator.New()

// Load reads configuration from environment variables and .env file (if present).
// godotenv.Load will not override existing env variables.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{
		LogLevel:          strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Environment:       strings.ToLower(getEnv("ENVIRONMENT", "development")),
		TimeZone:          getEnv("TIME_ZONE", "America/Chicago"),
		Transport:         strings.ToLower(getEnv("MESSAGE_TRANSPORT", "twilio")),
		CronSpecDaily:     getEnv("CRON_SPEC_DAILY", "0 8 * * *"),
		CronSpecDigest:    getEnv("CRON_SPEC_WEEKLY_DIGEST", "0 8 * * 1"),
		CronSpecAutoRenew: getEnv("CRON_SPEC_AUTO_RENEW", "0 2 * * *"),
		TwilioAccountSID:  os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:   os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber:  os.Getenv("TWILIO_PHONE_NUMBER"),
		TelegramToken:     os.Getenv("TELEGRAM_TOKEN"),
		AutoRenewEnabled:  getEnvBool("AUTO_RENEW_ENABLED", true),
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	var err error
	if cfg.MaxSendAttempts, err = getEnvInt("MAX_SEND_ATTEMPTS", 3); err != nil {
		return nil, err
	}
	baseDelaySecs, err := getEnvInt("RETRY_BASE_DELAY_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	cfg.RetryBaseDelay = time.Duration(baseDelaySecs) * time.Second
	if cfg.MaxInFlight, err = getEnvInt("MAX_IN_FLIGHT_SENDS", 4); err != nil {
		return nil, err
	}
	if cfg.HorizonCycles, err = getEnvInt("HORIZON_CYCLES", 4); err != nil {
		return nil, err
	}
	if cfg.AutoRenewThresholdWeeks, err = getEnvInt("AUTO_RENEW_THRESHOLD_WEEKS", 2); err != nil {
		return nil, err
	}
	if cfg.AutoRenewCycles, err = getEnvInt("AUTO_RENEW_CYCLES", 4); err != nil {
		return nil, err
	}

	cfg.EscalationContacts, err = parseEscalationContacts(os.Getenv("ESCALATION_CONTACTS"))
	if err != nil {
		return nil, err
	}

	switch cfg.Transport {
	case "twilio":
		if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" || cfg.TwilioFromNumber == "" {
			return nil, fmt.Errorf("twilio transport requires TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_PHONE_NUMBER")
		}
	case "telegram":
		if cfg.TelegramToken == "" {
			return nil, fmt.Errorf("telegram transport requires TELEGRAM_TOKEN")
		}
	}

	if _, err := time.LoadLocation(cfg.TimeZone); err != nil {
		return nil, fmt.Errorf("invalid TIME_ZONE %q: %w", cfg.TimeZone, err)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Location resolves the configured time zone. Load has already verified it.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// parseEscalationContacts parses "Name:+15551234567,Other:+15557654321".
func parseEscalationContacts(raw string) ([]EscalationContact, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var contacts []EscalationContact
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, phone, found := strings.Cut(entry, ":")
		if !found {
			return nil, fmt.Errorf("invalid ESCALATION_CONTACTS entry %q, want Name:+1555...", entry)
		}
		contacts = append(contacts, EscalationContact{
			Name:  strings.TrimSpace(name),
			Phone: strings.TrimSpace(phone),
		})
	}
	return contacts, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) bool {
	v := strings.ToLower(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v == "true" || v == "1" || v == "yes" || v == "on"
}
