package config

import (
	stderrors "errors"
	"testing"

	"github.com/atlasops/salesops-bot-go/pkg/errors"
)

func validConfig() *Config {
	return &Config{
		Slack: SlackConfig{AppToken: "xapp-1", BotToken: "xoxb-1"},
		Salesforce: SalesforceConfig{
			InstanceURL:  "https://example.my.salesforce.com",
			ClientID:     "client",
			ClientSecret: "secret",
			Username:     "ops@example.com",
			Password:     "pw",
		},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
	}
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidateReportsMissingFields(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"missing app token", func(c *Config) { c.Slack.AppToken = "" }, "slack.app_token"},
		{"missing bot token", func(c *Config) { c.Slack.BotToken = "" }, "slack.bot_token"},
		{"missing instance URL", func(c *Config) { c.Salesforce.InstanceURL = "" }, "salesforce.instance_url"},
		{"missing client secret", func(c *Config) { c.Salesforce.ClientSecret = "" }, "salesforce.client_id"},
		{"missing redis host", func(c *Config) { c.Redis.Host = "" }, "redis.host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}

			var vErr *errors.ValidationError
			if !stderrors.As(err, &vErr) {
				t.Fatalf("Validate() error type = %T, want *errors.ValidationError", err)
			}
			if vErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", vErr.Field, tt.wantField)
			}
		})
	}
}
