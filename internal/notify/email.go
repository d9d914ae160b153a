// Package notify delivers claim notifications over SMTP and Slack.
package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"strings"

	mail "github.com/go-mail/mail/v2"

	"github.com/warrantydesk/warrantydesk/internal/claims"
)

// SMTPConfig holds the outbound mail server settings
type SMTPConfig struct {
	Host          string
	Port          int
	User          string
	Pass          string
	From          string // e.g. "Warranty Desk <no-reply@example.com>"
	SkipTLSVerify bool
}

// Enabled reports whether enough settings are present to send mail
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

// Sender hands finished messages to a mail server. *mail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*mail.Message) error
}

// NewDialer builds a STARTTLS dialer for cfg
func NewDialer(cfg SMTPConfig) *mail.Dialer {
	port := cfg.Port
	if port == 0 {
		port = 587
	}
	d := mail.NewDialer(cfg.Host, port, cfg.User, cfg.Pass)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{
		ServerName:         cfg.Host,
		InsecureSkipVerify: cfg.SkipTLSVerify,
	}
	return d
}

// EmailNotifier sends claim and status change emails
type EmailNotifier struct {
	sender Sender
	from   string
	// customer emails on status changes
	statusToCustomer bool
}

// NewEmailNotifier creates an email notifier
func NewEmailNotifier(sender Sender, from string, statusToCustomer bool) *EmailNotifier {
	return &EmailNotifier{
		sender:           sender,
		from:             from,
		statusToCustomer: statusToCustomer,
	}
}

// SendClaimNotification emails the approvers, copying the claim creator when
// requested, and sends the customer a separate acknowledgement
func (e *EmailNotifier) SendClaimNotification(ctx context.Context, n *claims.ClaimNotification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(n.Recipients) == 0 {
		return fmt.Errorf("claim %s: no recipients", n.Claim.ClaimNumber)
	}

	body, err := RenderClaimEmail(n)
	if err != nil {
		return err
	}
	msg := e.newMessage(claimSubject(n), body)
	msg.SetHeader("To", n.Recipients...)
	if n.NotifyCreator && n.CreatorEmail != "" && !containsFold(n.Recipients, n.CreatorEmail) {
		msg.SetHeader("Cc", n.CreatorEmail)
	}

	var errs []error
	if err := e.sender.DialAndSend(msg); err != nil {
		errs = append(errs, fmt.Errorf("approver email: %w", err))
	}

	if n.NotifyCustomer && n.Claim.CustomerEmail != "" {
		ack, err := RenderCustomerAck(n)
		if err != nil {
			errs = append(errs, err)
		} else {
			cm := e.newMessage("We received your warranty claim "+n.Claim.ClaimNumber, ack)
			cm.SetHeader("To", n.Claim.CustomerEmail)
			if err := e.sender.DialAndSend(cm); err != nil {
				errs = append(errs, fmt.Errorf("customer email: %w", err))
			}
		}
	}
	return errors.Join(errs...)
}

// SendStatusChange tells the customer about the new status of their claim
func (e *EmailNotifier) SendStatusChange(ctx context.Context, n *claims.StatusChangeNotification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !e.statusToCustomer || n.Claim.CustomerEmail == "" {
		return nil
	}
	body, err := RenderStatusEmail(n)
	if err != nil {
		return err
	}
	msg := e.newMessage(fmt.Sprintf("Warranty claim %s: %s", n.Claim.ClaimNumber, n.NewStatus.Label()), body)
	msg.SetHeader("To", n.Claim.CustomerEmail)
	if err := e.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("status email: %w", err)
	}
	log.Printf("Email: status change for claim %s sent to customer", n.Claim.ClaimNumber)
	return nil
}

func (e *EmailNotifier) newMessage(subject, html string) *mail.Message {
	m := mail.NewMessage()
	m.SetHeader("From", e.from)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)
	return m
}

func claimSubject(n *claims.ClaimNotification) string {
	return fmt.Sprintf("[Warranty] Claim %s awaiting %s approval (order %s)", n.Claim.ClaimNumber, n.ApproverRole, n.Claim.OrderID)
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
