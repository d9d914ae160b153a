package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	mail "github.com/go-mail/mail/v2"
	"github.com/slack-go/slack"

	"github.com/warrantydesk/warrantydesk/internal/claims"
	"github.com/warrantydesk/warrantydesk/internal/database"
)

type fakeSender struct {
	sent    []*mail.Message
	failFor string // fail messages whose To header contains this address
}

func (f *fakeSender) DialAndSend(msgs ...*mail.Message) error {
	for _, m := range msgs {
		if f.failFor != "" && strings.Contains(strings.Join(m.GetHeader("To"), ","), f.failFor) {
			return errors.New("550 mailbox unavailable")
		}
		f.sent = append(f.sent, m)
	}
	return nil
}

func sampleNotification() *claims.ClaimNotification {
	return &claims.ClaimNotification{
		Claim: database.Claim{
			ClaimNumber:   "CLAIM-0000ABCD",
			OrderID:       "ORD-9",
			CustomerName:  "Casey <Buyer>",
			CustomerEmail: "casey@example.com",
			CreatedAt:     time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
		},
		Items: []claims.NotificationItem{
			{ClaimItem: database.ClaimItem{SKU: "SOFA-1", ProductName: "Sofa"}, CategoryName: "Structural"},
		},
		Recipients:   []string{"fin1@shop.test", "fin2@shop.test"},
		ApproverRole: "Finance",
		CreatorName:  "Dana",
		CreatorEmail: "dana@shop.test",
	}
}

func TestEmailNotifier_ApproversOnly(t *testing.T) {
	sender := &fakeSender{}
	e := NewEmailNotifier(sender, "Warranty <no-reply@shop.test>", false)

	if err := e.SendClaimNotification(context.Background(), sampleNotification()); err != nil {
		t.Fatalf("SendClaimNotification: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sender.sent))
	}
	m := sender.sent[0]
	if got := m.GetHeader("To"); len(got) != 2 || got[0] != "fin1@shop.test" || got[1] != "fin2@shop.test" {
		t.Errorf("To = %v", got)
	}
	if cc := m.GetHeader("Cc"); len(cc) != 0 {
		t.Errorf("Cc should be empty without NotifyCreator, got %v", cc)
	}
	if subj := m.GetHeader("Subject"); len(subj) != 1 || !strings.Contains(subj[0], "CLAIM-0000ABCD") {
		t.Errorf("Subject = %v", subj)
	}
}

func TestEmailNotifier_CreatorAndCustomer(t *testing.T) {
	sender := &fakeSender{}
	e := NewEmailNotifier(sender, "no-reply@shop.test", false)
	n := sampleNotification()
	n.NotifyCreator = true
	n.NotifyCustomer = true

	if err := e.SendClaimNotification(context.Background(), n); err != nil {
		t.Fatalf("SendClaimNotification: %v", err)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("expected approver and customer messages, got %d", len(sender.sent))
	}
	if cc := sender.sent[0].GetHeader("Cc"); len(cc) != 1 || cc[0] != "dana@shop.test" {
		t.Errorf("Cc = %v, want creator", cc)
	}
	if to := sender.sent[1].GetHeader("To"); len(to) != 1 || to[0] != "casey@example.com" {
		t.Errorf("customer To = %v", to)
	}
}

func TestEmailNotifier_CustomerFailureIsReported(t *testing.T) {
	sender := &fakeSender{failFor: "casey@example.com"}
	e := NewEmailNotifier(sender, "no-reply@shop.test", false)
	n := sampleNotification()
	n.NotifyCustomer = true

	err := e.SendClaimNotification(context.Background(), n)
	if err == nil || !strings.Contains(err.Error(), "customer email") {
		t.Fatalf("expected customer email error, got %v", err)
	}
	if len(sender.sent) != 1 {
		t.Errorf("approver message should still be sent, got %d", len(sender.sent))
	}
}

func TestEmailNotifier_NoRecipients(t *testing.T) {
	e := NewEmailNotifier(&fakeSender{}, "no-reply@shop.test", false)
	n := sampleNotification()
	n.Recipients = nil
	if err := e.SendClaimNotification(context.Background(), n); err == nil {
		t.Error("expected an error without recipients")
	}
}

func TestEmailNotifier_StatusChange(t *testing.T) {
	sender := &fakeSender{}
	n := &claims.StatusChangeNotification{
		Claim:     database.Claim{ClaimNumber: "CLAIM-1", CustomerEmail: "casey@example.com"},
		OldStatus: database.ClaimStatusNew,
		NewStatus: database.ClaimStatusInProgress,
	}

	if err := NewEmailNotifier(sender, "x@shop.test", false).SendStatusChange(context.Background(), n); err != nil {
		t.Fatalf("disabled: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("status mail must not be sent when disabled")
	}

	if err := NewEmailNotifier(sender, "x@shop.test", true).SendStatusChange(context.Background(), n); err != nil {
		t.Fatalf("enabled: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sender.sent))
	}
	if subj := sender.sent[0].GetHeader("Subject")[0]; !strings.HasSuffix(subj, "In Progress") {
		t.Errorf("Subject = %q", subj)
	}
}

func TestRenderClaimEmail_EscapesAndListsItems(t *testing.T) {
	body, err := RenderClaimEmail(sampleNotification())
	if err != nil {
		t.Fatalf("RenderClaimEmail: %v", err)
	}
	for _, want := range []string{"CLAIM-0000ABCD", "Finance", "SOFA-1 Sofa (Structural)", "2024-03-05", "Casey &lt;Buyer&gt;"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}

func TestRenderStatusEmail(t *testing.T) {
	body, err := RenderStatusEmail(&claims.StatusChangeNotification{
		Claim:     database.Claim{ClaimNumber: "CLAIM-2"},
		NewStatus: database.ClaimStatusOnHold,
		Note:      "Waiting for photos",
	})
	if err != nil {
		t.Fatalf("RenderStatusEmail: %v", err)
	}
	if !strings.Contains(body, "On Hold") || !strings.Contains(body, "Waiting for photos") {
		t.Errorf("unexpected body:\n%s", body)
	}
}

// --- Slack ---

type fakeSlack struct {
	channels []slack.Channel
	listErr  error
	posted   []string // channel IDs
	texts    []string
	listCall int
}

func (f *fakeSlack) PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
	_, values, err := slack.UnsafeApplyMsgOptions("token", channelID, "https://slack.test/api/", options...)
	if err != nil {
		return "", "", err
	}
	f.posted = append(f.posted, channelID)
	f.texts = append(f.texts, values.Get("text"))
	return channelID, "1700000000.000100", nil
}

func (f *fakeSlack) GetConversationsContext(ctx context.Context, params *slack.GetConversationsParameters) ([]slack.Channel, string, error) {
	f.listCall++
	if f.listErr != nil {
		return nil, "", f.listErr
	}
	if len(params.Types) == 1 && params.Types[0] == "public_channel" {
		return f.channels, "", nil
	}
	return nil, "", nil
}

func channel(id, name string) slack.Channel {
	var ch slack.Channel
	ch.ID = id
	ch.Name = name
	return ch
}

func TestSlackNotifier_ResolvesChannelOnce(t *testing.T) {
	api := &fakeSlack{channels: []slack.Channel{channel("C0OTHER123", "general"), channel("C0CLAIMS12", "claims")}}
	s := NewSlackNotifier(api, "#claims")

	for i := 0; i < 2; i++ {
		if err := s.SendClaimNotification(context.Background(), sampleNotification()); err != nil {
			t.Fatalf("SendClaimNotification: %v", err)
		}
	}
	if len(api.posted) != 2 || api.posted[0] != "C0CLAIMS12" {
		t.Errorf("posted to %v", api.posted)
	}
	if api.listCall != 1 {
		t.Errorf("expected channel lookup once, got %d", api.listCall)
	}
	if !strings.Contains(api.texts[0], "CLAIM-0000ABCD") || !strings.Contains(api.texts[0], "SOFA-1 Sofa (Structural)") {
		t.Errorf("unexpected text %q", api.texts[0])
	}
}

func TestSlackNotifier_ChannelIDSkipsLookup(t *testing.T) {
	api := &fakeSlack{}
	s := NewSlackNotifier(api, "C01234567890")
	if err := s.SendClaimNotification(context.Background(), sampleNotification()); err != nil {
		t.Fatalf("SendClaimNotification: %v", err)
	}
	if api.listCall != 0 {
		t.Errorf("channel IDs must not be looked up")
	}
}

func TestSlackNotifier_UnknownChannel(t *testing.T) {
	s := NewSlackNotifier(&fakeSlack{}, "missing")
	if err := s.SendClaimNotification(context.Background(), sampleNotification()); err == nil {
		t.Error("expected error for unknown channel")
	}
}

func TestSlackNotifier_ReportBreaches(t *testing.T) {
	api := &fakeSlack{}
	s := NewSlackNotifier(api, "C01234567890")

	if err := s.ReportBreaches(context.Background(), nil); err != nil {
		t.Fatalf("empty report: %v", err)
	}
	if len(api.posted) != 0 {
		t.Fatal("empty report must not post")
	}

	entries := []claims.SLAEntry{
		{Claim: database.Claim{ClaimNumber: "CLAIM-DUE", Status: database.ClaimStatusNew}, CategoryName: "Cosmetic", SLA: claims.SLAResult{State: claims.SLADueToday}},
		{Claim: database.Claim{ClaimNumber: "CLAIM-LATE", Status: database.ClaimStatusOnHold}, SLA: claims.SLAResult{State: claims.SLABreached, DaysOverdue: 3}},
	}
	if err := s.ReportBreaches(context.Background(), entries); err != nil {
		t.Fatalf("ReportBreaches: %v", err)
	}
	text := api.texts[0]
	late := strings.Index(text, "CLAIM-LATE")
	due := strings.Index(text, "CLAIM-DUE")
	if late < 0 || due < 0 || late > due {
		t.Errorf("breached claims should be listed before due ones:\n%s", text)
	}
	if !strings.Contains(text, "overdue by 3 day(s)") || !strings.Contains(text, "uncategorized") {
		t.Errorf("unexpected digest:\n%s", text)
	}
}

func TestIsChannelID(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"C01234567890", true},
		{"G0ABC12345", true},
		{"C1234567", false},
		{"#claims", false},
		{"C01234abcdef", false},
	}
	for _, tt := range tests {
		if got := isChannelID(tt.input); got != tt.want {
			t.Errorf("isChannelID(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

// --- Multi ---

type recordingNotifier struct {
	claimCalls  int
	statusCalls int
	err         error
}

func (r *recordingNotifier) SendClaimNotification(ctx context.Context, n *claims.ClaimNotification) error {
	r.claimCalls++
	return r.err
}

func (r *recordingNotifier) SendStatusChange(ctx context.Context, n *claims.StatusChangeNotification) error {
	r.statusCalls++
	return r.err
}

type claimOnly struct{ calls int }

func (c *claimOnly) SendClaimNotification(ctx context.Context, n *claims.ClaimNotification) error {
	c.calls++
	return nil
}

func TestMulti_FansOutAndJoinsErrors(t *testing.T) {
	failing := &recordingNotifier{err: errors.New("down")}
	ok := &claimOnly{}
	m := NewMulti()
	m.Add(failing)
	m.Add(ok)

	err := m.SendClaimNotification(context.Background(), sampleNotification())
	if err == nil {
		t.Fatal("expected joined error")
	}
	if failing.claimCalls != 1 || ok.calls != 1 {
		t.Errorf("every transport must be called: failing=%d ok=%d", failing.claimCalls, ok.calls)
	}

	_ = m.SendStatusChange(context.Background(), &claims.StatusChangeNotification{})
	if failing.statusCalls != 1 {
		t.Errorf("status notifier calls = %d, want 1", failing.statusCalls)
	}
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
}

func TestSlackNotifier_TruncatesDescriptions(t *testing.T) {
	api := &fakeSlack{}
	s := NewSlackNotifier(api, "C01234567890")
	n := sampleNotification()
	n.Items[0].Description = strings.Repeat("cracked frame ", 30)

	if err := s.SendClaimNotification(context.Background(), n); err != nil {
		t.Fatalf("SendClaimNotification: %v", err)
	}
	if !strings.Contains(api.texts[0], "...") {
		t.Errorf("expected truncated description in %q", api.texts[0])
	}
	if strings.Count(api.texts[0], "cracked frame") > 10 {
		t.Errorf("description not truncated: %q", api.texts[0])
	}
}
