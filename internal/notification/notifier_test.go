package notification

import (
	"context"
	"strings"
	"testing"
	"time"

	"estate_crm_backend/internal/events"
	"estate_crm_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeSender struct {
	to       []string
	subjects []string
	bodies   []string
}

func (f *fakeSender) Send(_ context.Context, toEmail, subject, htmlContent string) error {
	f.to = append(f.to, toEmail)
	f.subjects = append(f.subjects, subject)
	f.bodies = append(f.bodies, htmlContent)
	return nil
}

func testNotifier(sender Sender) *Notifier {
	return &Notifier{
		sender:  sender,
		notify:  "sales@example.com",
		log:     logger.New("development"),
		enabled: true,
	}
}

func TestOnLeadCapturedSendsToNotifyAddress(t *testing.T) {
	sender := &fakeSender{}
	n := testNotifier(sender)

	err := n.onLeadCaptured(context.Background(), events.LeadCaptured{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    uuid.New(),
		Name:      "Asha Verma",
		Phone:     "+919876543210",
	})
	if err != nil {
		t.Fatalf("onLeadCaptured() error = %v", err)
	}

	if len(sender.to) != 1 || sender.to[0] != "sales@example.com" {
		t.Fatalf("sent to %v, want the notify address", sender.to)
	}
	if !strings.Contains(sender.subjects[0], "Asha Verma") {
		t.Errorf("subject %q missing lead name", sender.subjects[0])
	}
	if !strings.Contains(sender.bodies[0], "+919876543210") {
		t.Errorf("body missing lead phone")
	}
}

func TestOnFollowUpReminderDue(t *testing.T) {
	sender := &fakeSender{}
	n := testNotifier(sender)

	err := n.onFollowUpReminderDue(context.Background(), events.FollowUpReminderDue{
		BaseEvent:   events.NewBaseEvent(),
		FollowUpID:  uuid.New(),
		LeadID:      uuid.New(),
		Type:        "call",
		ScheduledAt: time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC),
		LeadName:    "Kiran Rao",
		LeadPhone:   "+919812345678",
	})
	if err != nil {
		t.Fatalf("onFollowUpReminderDue() error = %v", err)
	}

	if len(sender.bodies) != 1 {
		t.Fatalf("expected one email, got %d", len(sender.bodies))
	}
	if !strings.Contains(sender.bodies[0], "Kiran Rao") || !strings.Contains(sender.bodies[0], "call") {
		t.Errorf("reminder body missing details: %s", sender.bodies[0])
	}
}

func TestDisabledNotifierDropsEvents(t *testing.T) {
	sender := &fakeSender{}
	n := testNotifier(sender)
	n.enabled = false

	err := n.onLeadCaptured(context.Background(), events.LeadCaptured{
		BaseEvent: events.NewBaseEvent(),
		Name:      "Asha",
	})
	if err != nil {
		t.Fatalf("disabled notifier must not error: %v", err)
	}
	if len(sender.to) != 0 {
		t.Error("disabled notifier must not send")
	}
}
