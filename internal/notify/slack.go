package notify

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/slack-go/slack"

	"github.com/warrantydesk/warrantydesk/internal/claims"
	"github.com/warrantydesk/warrantydesk/internal/utils"
)

// SlackAPI is the part of *slack.Client the notifier uses
type SlackAPI interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
	GetConversationsContext(ctx context.Context, params *slack.GetConversationsParameters) ([]slack.Channel, string, error)
}

// SlackNotifier posts routed claims and SLA breach digests to one channel
type SlackNotifier struct {
	api     SlackAPI
	channel string // name (#claims, claims) or ID

	mu         sync.Mutex
	resolvedID string
}

// NewSlackClient creates the Slack API client for a bot token
func NewSlackClient(botToken string) *slack.Client {
	return slack.New(botToken, slack.OptionDebug(false))
}

// NewSlackNotifier creates a notifier posting to channel
func NewSlackNotifier(api SlackAPI, channel string) *SlackNotifier {
	return &SlackNotifier{api: api, channel: strings.TrimSpace(channel)}
}

// SendClaimNotification posts a short summary of a newly routed claim
func (s *SlackNotifier) SendClaimNotification(ctx context.Context, n *claims.ClaimNotification) error {
	var b strings.Builder
	fmt.Fprintf(&b, ":inbox_tray: New warranty claim *%s* for order %s awaits *%s* approval", n.Claim.ClaimNumber, n.Claim.OrderID, n.ApproverRole)
	for _, item := range n.Items {
		fmt.Fprintf(&b, "\n• %s", item.SKU)
		if item.ProductName != "" {
			fmt.Fprintf(&b, " %s", item.ProductName)
		}
		if item.CategoryName != "" {
			fmt.Fprintf(&b, " (%s)", item.CategoryName)
		}
		if item.Description != "" {
			fmt.Fprintf(&b, ": _%s_", utils.TruncateText(item.Description, 120))
		}
	}
	return s.post(ctx, slack.MsgOptionText(b.String(), false))
}

// ReportBreaches posts a digest of claims that are overdue or due today.
// An empty list posts nothing.
func (s *SlackNotifier) ReportBreaches(ctx context.Context, entries []claims.SLAEntry) error {
	if len(entries) == 0 {
		return nil
	}
	text := FormatBreachDigest(entries)
	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, "Warranty SLA report", false, false)),
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil),
	}
	return s.post(ctx, slack.MsgOptionText(text, false), slack.MsgOptionBlocks(blocks...))
}

// FormatBreachDigest renders one line per claim, breached claims first
func FormatBreachDigest(entries []claims.SLAEntry) string {
	var breached, dueToday []string
	for _, e := range entries {
		category := e.CategoryName
		if category == "" {
			category = "uncategorized"
		}
		switch e.SLA.State {
		case claims.SLABreached:
			breached = append(breached, fmt.Sprintf("• *%s* (%s, %s) overdue by %d day(s)",
				e.Claim.ClaimNumber, category, e.Claim.Status.Label(), e.SLA.DaysOverdue))
		case claims.SLADueToday:
			dueToday = append(dueToday, fmt.Sprintf("• *%s* (%s, %s) due today",
				e.Claim.ClaimNumber, category, e.Claim.Status.Label()))
		}
	}

	var b strings.Builder
	if len(breached) > 0 {
		fmt.Fprintf(&b, ":rotating_light: %d claim(s) past SLA\n%s", len(breached), strings.Join(breached, "\n"))
	}
	if len(dueToday) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, ":hourglass: %d claim(s) due today\n%s", len(dueToday), strings.Join(dueToday, "\n"))
	}
	return b.String()
}

func (s *SlackNotifier) post(ctx context.Context, options ...slack.MsgOption) error {
	channelID, err := s.channelID(ctx)
	if err != nil {
		return err
	}
	if _, _, err := s.api.PostMessageContext(ctx, channelID, options...); err != nil {
		return fmt.Errorf("slack post to %s: %w", s.channel, err)
	}
	return nil
}

// channelID resolves the configured channel once and caches the result
func (s *SlackNotifier) channelID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resolvedID != "" {
		return s.resolvedID, nil
	}
	if s.channel == "" {
		return "", fmt.Errorf("slack channel is not configured")
	}
	if isChannelID(s.channel) {
		s.resolvedID = s.channel
		return s.resolvedID, nil
	}

	name := strings.TrimPrefix(s.channel, "#")
	for _, kind := range []string{"public_channel", "private_channel"} {
		channels, _, err := s.api.GetConversationsContext(ctx, &slack.GetConversationsParameters{
			ExcludeArchived: true,
			Limit:           1000,
			Types:           []string{kind},
		})
		if err != nil {
			if kind == "public_channel" {
				return "", fmt.Errorf("failed to list public channels: %w", err)
			}
			log.Printf("Slack: failed to list private channels: %v", err)
			break
		}
		for _, ch := range channels {
			if ch.Name == name {
				s.resolvedID = ch.ID
				log.Printf("Slack: resolved channel '%s' to '%s'", name, ch.ID)
				return ch.ID, nil
			}
		}
	}
	return "", fmt.Errorf("channel '%s' not found", name)
}

// isChannelID checks if a string looks like a Slack channel ID
func isChannelID(s string) bool {
	if len(s) < 9 || len(s) > 15 {
		return false
	}
	if !strings.HasPrefix(s, "C") && !strings.HasPrefix(s, "G") {
		return false
	}
	for _, c := range s[1:] {
		if !((c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
			return false
		}
	}
	return true
}
