package notification

import (
	"context"
	"fmt"

	"estate_crm_backend/internal/events"
	"estate_crm_backend/platform/config"
	"estate_crm_backend/platform/logger"
)

// Notifier subscribes to lead domain events and mails the sales inbox.
type Notifier struct {
	sender  Sender
	notify  string
	log     *logger.Logger
	enabled bool
}

// New creates the notifier. When SMTP or the notify address is not
// configured the notifier stays registered but drops everything, so the
// rest of the system never has to check whether email works.
func New(cfg config.SMTPConfig, log *logger.Logger) *Notifier {
	n := &Notifier{
		notify:  cfg.GetNotifyEmail(),
		log:     log,
		enabled: cfg.IsEmailEnabled() && cfg.GetNotifyEmail() != "",
	}
	if n.enabled {
		n.sender = NewSMTPSender(
			cfg.GetSMTPHost(),
			cfg.GetSMTPPort(),
			cfg.GetSMTPUsername(),
			cfg.GetSMTPPassword(),
			cfg.GetEmailFromAddress(),
			cfg.GetEmailFromName(),
		)
	} else {
		log.Info("email notifications disabled, SMTP or notify address not configured")
	}
	return n
}

// Subscribe registers the notifier's event handlers on the bus.
func (n *Notifier) Subscribe(bus events.Bus) {
	bus.Subscribe(events.LeadCaptured{}.EventName(), events.HandlerFunc(n.onLeadCaptured))
	bus.Subscribe(events.FollowUpReminderDue{}.EventName(), events.HandlerFunc(n.onFollowUpReminderDue))
}

func (n *Notifier) onLeadCaptured(ctx context.Context, event events.Event) error {
	if !n.enabled {
		return nil
	}
	e, ok := event.(events.LeadCaptured)
	if !ok {
		return nil
	}

	content, err := renderTemplate(leadCapturedTmpl, leadCapturedData{
		Name:              e.Name,
		Phone:             e.Phone,
		Email:             e.Email,
		Source:            e.Source,
		PartnerAttributed: e.ChannelPartnerID != nil,
	})
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("New lead: %s", e.Name)
	if err := n.sender.Send(ctx, n.notify, subject, content); err != nil {
		n.log.Error("failed to send lead captured email", "lead_id", e.LeadID, "error", err)
		return err
	}
	return nil
}

func (n *Notifier) onFollowUpReminderDue(ctx context.Context, event events.Event) error {
	if !n.enabled {
		return nil
	}
	e, ok := event.(events.FollowUpReminderDue)
	if !ok {
		return nil
	}

	content, err := renderTemplate(followUpReminderTmpl, followUpReminderData{
		LeadName:    e.LeadName,
		LeadPhone:   e.LeadPhone,
		Type:        e.Type,
		ScheduledAt: e.ScheduledAt.Format("2 Jan 2006 15:04"),
	})
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Follow-up due: %s", e.LeadName)
	if err := n.sender.Send(ctx, n.notify, subject, content); err != nil {
		n.log.Error("failed to send follow-up reminder email", "follow_up_id", e.FollowUpID, "error", err)
		return err
	}
	return nil
}
