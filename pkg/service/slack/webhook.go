package slack

import (
	"context"
	"net/http"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/incidex/pkg/domain/interfaces"
	"github.com/secmon-lab/incidex/pkg/domain/model"
	"github.com/slack-go/slack"
)

// Attachment colors
const (
	ColorSuccess = "good"
	ColorError   = "danger"
)

// WebhookNotifier posts notices to a Slack incoming webhook
type WebhookNotifier struct {
	url        string
	source     string
	httpClient *http.Client
}

var _ interfaces.Notifier = (*WebhookNotifier)(nil)

// WebhookOption configures WebhookNotifier
type WebhookOption func(*WebhookNotifier)

// WithHTTPClient replaces the HTTP client used to post messages
func WithHTTPClient(c *http.Client) WebhookOption {
	return func(n *WebhookNotifier) {
		n.httpClient = c
	}
}

// WithSource sets the footer shown under each message, usually the dashboard URL
func WithSource(source string) WebhookOption {
	return func(n *WebhookNotifier) {
		n.source = source
	}
}

// NewWebhookNotifier creates a notifier for the given webhook URL
func NewWebhookNotifier(url string, opts ...WebhookOption) (*WebhookNotifier, error) {
	if url == "" {
		return nil, goerr.New("slack webhook URL is required")
	}

	n := &WebhookNotifier{
		url:        url,
		source:     "incidex",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// Notify implements interfaces.Notifier
func (n *WebhookNotifier) Notify(ctx context.Context, notice model.Notice) error {
	msg := BuildWebhookMessage(notice, n.source)

	if err := slack.PostWebhookCustomHTTPContext(ctx, n.url, n.httpClient, msg); err != nil {
		return goerr.Wrap(err, "failed to post slack webhook",
			goerr.V("message", notice.Message))
	}

	ctxlog.From(ctx).Debug("notice posted to slack", "message", notice.Message)
	return nil
}

// BuildWebhookMessage converts a notice into a webhook payload
func BuildWebhookMessage(notice model.Notice, source string) *slack.WebhookMessage {
	attachment := slack.Attachment{
		Color:    ColorSuccess,
		Fallback: notice.Message,
		Title:    notice.Message,
		Footer:   source,
	}

	if notice.IsError() {
		attachment.Color = ColorError
		if notice.Detail != "" {
			attachment.Fields = []slack.AttachmentField{
				{Title: "Reason", Value: notice.Detail},
			}
		}
	}

	return &slack.WebhookMessage{
		Text:        notice.Message,
		Attachments: []slack.Attachment{attachment},
	}
}
