package notify

import (
	"fmt"
)

// Config selects and configures the notification channels. Every channel
// is off by default except the file drop, which costs nothing.
type Config struct {
	File        FileConfig  `yaml:"file"`
	Slack       SlackConfig `yaml:"slack"`
	Email       EmailConfig `yaml:"email"`
	Preferences Preferences `yaml:"preferences"`
}

// FileConfig drops the run's changelog as JSON into the data directory
// for downstream automation to pick up.
type FileConfig struct {
	Enabled bool `yaml:"enabled"`
}

// SlackConfig posts a run summary to an incoming webhook.
type SlackConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url,omitempty"`
	Channel    string `yaml:"channel,omitempty"`
	Username   string `yaml:"username,omitempty"`
}

// EmailConfig sends the run summary over SMTP.
type EmailConfig struct {
	Enabled  bool     `yaml:"enabled"`
	SMTPHost string   `yaml:"smtp_host,omitempty"`
	SMTPPort int      `yaml:"smtp_port,omitempty"`
	Username string   `yaml:"username,omitempty"`
	Password string   `yaml:"password,omitempty"`
	From     string   `yaml:"from,omitempty"`
	To       []string `yaml:"to,omitempty"`
}

// Preferences filter which changelog categories are worth a
// notification.
type Preferences struct {
	NotifyNew           bool `yaml:"notify_new"`
	NotifyDeferred      bool `yaml:"notify_deferred"`
	NotifyRescheduled   bool `yaml:"notify_rescheduled"`
	NotifyDateChanged   bool `yaml:"notify_date_changed"`
	NotifyDateConfirmed bool `yaml:"notify_date_confirmed"`

	// SummaryOnly sends category counts without per-hearing detail.
	SummaryOnly bool `yaml:"summary_only"`
}

// DefaultConfig returns the default notification configuration.
func DefaultConfig() Config {
	return Config{
		File: FileConfig{Enabled: true},
		Slack: SlackConfig{
			Username: "Hearing Monitor",
		},
		Email: EmailConfig{
			SMTPPort: 587,
		},
		Preferences: Preferences{
			NotifyNew:           true,
			NotifyDeferred:      true,
			NotifyRescheduled:   true,
			NotifyDateChanged:   true,
			NotifyDateConfirmed: true,
		},
	}
}

// Validate checks enabled channels for the settings they need.
func (c Config) Validate() error {
	if c.Slack.Enabled && c.Slack.WebhookURL == "" {
		return fmt.Errorf("slack webhook_url is required when slack is enabled")
	}
	if c.Email.Enabled {
		if c.Email.SMTPHost == "" {
			return fmt.Errorf("email smtp_host is required when email is enabled")
		}
		if c.Email.SMTPPort <= 0 || c.Email.SMTPPort > 65535 {
			return fmt.Errorf("email smtp_port out of range (got %d)", c.Email.SMTPPort)
		}
		if c.Email.From == "" {
			return fmt.Errorf("email from address is required when email is enabled")
		}
		if len(c.Email.To) == 0 {
			return fmt.Errorf("at least one email recipient is required when email is enabled")
		}
	}
	return nil
}
