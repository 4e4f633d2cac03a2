package config

import (
	"fmt"
	"time"
)

const (
	AdvisorBackendTemplate = "template"
	AdvisorBackendOpenAI   = "openai"
)

type Config struct {
	Env                    string
	DatabaseURL            string
	SMSGatewayURL          string
	SMSAPIKey              string
	SMSSenderID            string
	ScoringServiceURL      string
	AdvisorBackend         string
	OpenAIAPIKey           string
	OpenAIModel            string
	DefaultLanguage        string
	SessionTimeoutSec      int
	SessionRetentionHours  int
	CleanupIntervalHours   int
	CaregiverDirectoryJSON string
	WebhookListenAddr      string
	DailySummaryEnabled    bool
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	if c.AdvisorBackend != AdvisorBackendTemplate && c.AdvisorBackend != AdvisorBackendOpenAI {
		return fmt.Errorf("ADVISOR_BACKEND must be %q or %q, got %q", AdvisorBackendTemplate, AdvisorBackendOpenAI, c.AdvisorBackend)
	}
	if c.AdvisorBackend == AdvisorBackendOpenAI && c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when ADVISOR_BACKEND=openai")
	}
	if c.SessionTimeoutSec <= 0 {
		return fmt.Errorf("SESSION_TIMEOUT_SEC must be positive, got %d", c.SessionTimeoutSec)
	}
	if c.SessionRetentionHours <= 0 {
		return fmt.Errorf("SESSION_RETENTION_HOURS must be positive, got %d", c.SessionRetentionHours)
	}
	if c.CleanupIntervalHours <= 0 {
		return fmt.Errorf("CLEANUP_INTERVAL_HOURS must be positive, got %d", c.CleanupIntervalHours)
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "DATABASE_URL", value: c.DatabaseURL},
		{name: "SMS_GATEWAY_URL", value: c.SMSGatewayURL},
		{name: "SMS_API_KEY", value: c.SMSAPIKey},
		{name: "SCORING_SERVICE_URL", value: c.ScoringServiceURL},
		{name: "CAREGIVER_DIRECTORY_JSON", value: c.CaregiverDirectoryJSON},
		{name: "DEFAULT_LANGUAGE", value: c.DefaultLanguage},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) SessionTimeout() time.Duration {
	return time.Duration(c.SessionTimeoutSec) * time.Second
}

func (c *Config) SessionRetention() time.Duration {
	return time.Duration(c.SessionRetentionHours) * time.Hour
}

func (c *Config) CleanupInterval() time.Duration {
	return time.Duration(c.CleanupIntervalHours) * time.Hour
}
