// Package slack posts pull request notifications to an incoming webhook.
package slack

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/runoshun/tpaws/internal/domain"
	"github.com/slack-go/slack"
)

// Environment variables read by the notifier.
const (
	UserIDEnv     = "SLACK_USER_ID"
	WebhookURLEnv = "SLACK_WEBHOOK_URL"
)

// Button action ids.
const (
	ActionOpenPullRequest = "open_pull_request"
	ActionOpenTicket      = "open_ticket"
)

// Client posts to Slack webhooks.
type Client struct {
	http *http.Client
}

// Ensure Client implements domain.Notifier interface.
var _ domain.Notifier = (*Client)(nil)

// NewClient creates a webhook client. A nil http client uses a default
// one with a timeout.
func NewClient(h *http.Client) *Client {
	if h == nil {
		h = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{http: h}
}

// PullRequestText formats the notification line.
func PullRequestText(n domain.PullRequestNotification) string {
	return fmt.Sprintf("<@%s> opened a PR to: <@%s> - `%s` <%s|%s: %s>",
		n.AuthorSlackID, n.ReviewerSlackID, n.Repository, n.PullRequestLink, n.PullRequestID, n.Title)
}

// PullRequestBlocks builds the Block Kit layout for a new pull request.
func PullRequestBlocks(n domain.PullRequestNotification) []slack.Block {
	buttons := []slack.BlockElement{linkButton(ActionOpenPullRequest, n.PullRequestLink, "Code Commit")}
	if n.TicketLink != "" {
		buttons = append(buttons, linkButton(ActionOpenTicket, n.TicketLink, "Target Process"))
	}
	return []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, PullRequestText(n), false, false), nil, nil),
		slack.NewDividerBlock(),
		slack.NewActionBlock("", buttons...),
	}
}

func linkButton(actionID, url, label string) *slack.ButtonBlockElement {
	btn := slack.NewButtonBlockElement(actionID, "", slack.NewTextBlockObject(slack.PlainTextType, label, true, false))
	btn.URL = url
	return btn
}

// NotifyPullRequest posts the pull request message to the webhook.
func (c *Client) NotifyPullRequest(ctx context.Context, webhookURL string, n domain.PullRequestNotification) error {
	if !strings.HasPrefix(webhookURL, "https://") && !strings.HasPrefix(webhookURL, "http://") {
		return fmt.Errorf("%w: invalid webhook url", domain.ErrSlackNotConfigured)
	}

	msg := &slack.WebhookMessage{
		Text:   PullRequestText(n),
		Blocks: &slack.Blocks{BlockSet: PullRequestBlocks(n)},
	}
	if err := slack.PostWebhookCustomHTTPContext(ctx, webhookURL, c.http, msg); err != nil {
		return fmt.Errorf("send slack message: %w", err)
	}
	return nil
}
