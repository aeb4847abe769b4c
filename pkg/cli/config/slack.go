package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	slackSvc "github.com/secmon-lab/incidex/pkg/service/slack"
	"github.com/urfave/cli/v3"
)

// Slack holds Slack notification configuration
type Slack struct {
	WebhookURL string
	Source     string
}

// Flags returns CLI flags for Slack configuration
func (s *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Slack incoming webhook URL for operation notices",
			Category:    "Slack",
			Sources:     cli.EnvVars("INCIDEX_SLACK_WEBHOOK_URL"),
			Destination: &s.WebhookURL,
		},
		&cli.StringFlag{
			Name:        "slack-source",
			Usage:       "Footer shown under Slack notices",
			Category:    "Slack",
			Value:       "incidex",
			Sources:     cli.EnvVars("INCIDEX_SLACK_SOURCE"),
			Destination: &s.Source,
		},
	}
}

// IsConfigured checks if a webhook URL is set
func (s *Slack) IsConfigured() bool {
	return s.WebhookURL != ""
}

// Configure creates the webhook notifier, or nil when Slack is not configured
func (s *Slack) Configure() (*slackSvc.WebhookNotifier, error) {
	if !s.IsConfigured() {
		return nil, nil
	}
	n, err := slackSvc.NewWebhookNotifier(s.WebhookURL, slackSvc.WithSource(s.Source))
	if err != nil {
		return nil, goerr.Wrap(err, "invalid slack configuration")
	}
	return n, nil
}

// LogValue returns structured log value. The webhook URL is a secret.
func (s Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("has_webhook_url", s.WebhookURL != ""),
		slog.String("source", s.Source),
	)
}
