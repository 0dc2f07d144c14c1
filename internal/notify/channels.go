package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"
)

// fileChannel drops the summary as JSON next to the state file so cron
// wrappers and humans can inspect the last run without parsing logs.
type fileChannel struct {
	dir string
}

func (c *fileChannel) Name() string { return "file" }

func (c *fileChannel) Send(_ context.Context, s *Summary) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	path := filepath.Join(c.dir, "last_run_summary.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// slackChannel posts the summary to an incoming-webhook URL.
type slackChannel struct {
	config     SlackConfig
	httpClient *http.Client
}

func (c *slackChannel) Name() string { return "slack" }

func (c *slackChannel) Send(ctx context.Context, s *Summary) error {
	payload := map[string]any{
		"text":     c.renderText(s),
		"username": c.config.Username,
	}
	if c.config.Channel != "" {
		payload["channel"] = c.config.Channel
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}

func (c *slackChannel) renderText(s *Summary) string {
	var b strings.Builder
	b.WriteString("*Hearing updates*\n")
	writeCountLine(&b, s.Counts)
	for _, line := range s.Lines {
		b.WriteString("• ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// emailChannel sends the summary as a plain-text message over SMTP.
type emailChannel struct {
	config EmailConfig
}

func (c *emailChannel) Name() string { return "email" }

func (c *emailChannel) Send(_ context.Context, s *Summary) error {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", c.config.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(c.config.To, ", "))
	fmt.Fprintf(&b, "Subject: Hearing updates %s\r\n", s.GeneratedAt.Format("2006-01-02"))
	b.WriteString("\r\n")

	var counts strings.Builder
	writeCountLine(&counts, s.Counts)
	b.WriteString(counts.String())
	for _, line := range s.Lines {
		b.WriteString(line)
		b.WriteString("\r\n")
	}

	addr := fmt.Sprintf("%s:%d", c.config.SMTPHost, c.config.SMTPPort)
	var auth smtp.Auth
	if c.config.Username != "" {
		auth = smtp.PlainAuth("", c.config.Username, c.config.Password, c.config.SMTPHost)
	}
	if err := smtp.SendMail(addr, auth, c.config.From, c.config.To, []byte(b.String())); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// writeCountLine renders the per-category counts in a stable order.
func writeCountLine(b *strings.Builder, counts map[string]int) {
	order := []string{"new", "deferred", "rescheduled", "date_changed", "date_confirmed"}
	var parts []string
	for _, k := range order {
		if n, ok := counts[k]; ok {
			parts = append(parts, fmt.Sprintf("%d %s", n, strings.ReplaceAll(k, "_", " ")))
		}
	}
	b.WriteString(strings.Join(parts, ", "))
	b.WriteString("\n")
}
