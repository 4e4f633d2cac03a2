package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/postcareplus/postcare-sms/internal/config"
)

type envConfig struct {
	Env                    string `env:"ENV" envDefault:"production"`
	DatabaseURL            string `env:"DATABASE_URL,required"`
	SMSGatewayURL          string `env:"SMS_GATEWAY_URL,required"`
	SMSAPIKey              string `env:"SMS_API_KEY,required"`
	SMSSenderID            string `env:"SMS_SENDER_ID"`
	ScoringServiceURL      string `env:"SCORING_SERVICE_URL,required"`
	AdvisorBackend         string `env:"ADVISOR_BACKEND" envDefault:"template"`
	OpenAIAPIKey           string `env:"OPENAI_API_KEY"`
	OpenAIModel            string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	DefaultLanguage        string `env:"DEFAULT_LANGUAGE" envDefault:"rw"`
	SessionTimeoutSec      int    `env:"SESSION_TIMEOUT_SEC" envDefault:"1800"`
	SessionRetentionHours  int    `env:"SESSION_RETENTION_HOURS" envDefault:"24"`
	CleanupIntervalHours   int    `env:"CLEANUP_INTERVAL_HOURS" envDefault:"24"`
	CaregiverDirectoryJSON string `env:"CAREGIVER_DIRECTORY_JSON,required"`
	WebhookListenAddr      string `env:"WEBHOOK_LISTEN_ADDR" envDefault:":8080"`
	DailySummaryEnabled    bool   `env:"DAILY_SUMMARY_ENABLED" envDefault:"false"`
}

func Load() (*internalconfig.Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:                    raw.Env,
		DatabaseURL:            raw.DatabaseURL,
		SMSGatewayURL:          raw.SMSGatewayURL,
		SMSAPIKey:              raw.SMSAPIKey,
		SMSSenderID:            raw.SMSSenderID,
		ScoringServiceURL:      raw.ScoringServiceURL,
		AdvisorBackend:         raw.AdvisorBackend,
		OpenAIAPIKey:           raw.OpenAIAPIKey,
		OpenAIModel:            raw.OpenAIModel,
		DefaultLanguage:        raw.DefaultLanguage,
		SessionTimeoutSec:      raw.SessionTimeoutSec,
		SessionRetentionHours:  raw.SessionRetentionHours,
		CleanupIntervalHours:   raw.CleanupIntervalHours,
		CaregiverDirectoryJSON: raw.CaregiverDirectoryJSON,
		WebhookListenAddr:      raw.WebhookListenAddr,
		DailySummaryEnabled:    raw.DailySummaryEnabled,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
