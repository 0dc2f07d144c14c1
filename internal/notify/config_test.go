package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name: "slack enabled without webhook",
			mutate: func(c *Config) {
				c.Slack.Enabled = true
			},
			wantErr: "webhook_url",
		},
		{
			name: "email enabled without host",
			mutate: func(c *Config) {
				c.Email.Enabled = true
				c.Email.From = "bot@example.org"
				c.Email.To = []string{"team@example.org"}
			},
			wantErr: "smtp_host",
		},
		{
			name: "email port out of range",
			mutate: func(c *Config) {
				c.Email.Enabled = true
				c.Email.SMTPHost = "smtp.example.org"
				c.Email.SMTPPort = 70000
				c.Email.From = "bot@example.org"
				c.Email.To = []string{"team@example.org"}
			},
			wantErr: "smtp_port",
		},
		{
			name: "email without recipients",
			mutate: func(c *Config) {
				c.Email.Enabled = true
				c.Email.SMTPHost = "smtp.example.org"
				c.Email.From = "bot@example.org"
			},
			wantErr: "recipient",
		},
		{
			name: "fully configured channels",
			mutate: func(c *Config) {
				c.Slack.Enabled = true
				c.Slack.WebhookURL = "https://hooks.example.com/x"
				c.Email.Enabled = true
				c.Email.SMTPHost = "smtp.example.org"
				c.Email.From = "bot@example.org"
				c.Email.To = []string{"team@example.org"}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}
