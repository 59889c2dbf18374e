// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"estate_crm_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCaptured is published when a new lead enters the system, either from
// the public inquiry form or from a user adding one manually.
type LeadCaptured struct {
	BaseEvent
	LeadID           uuid.UUID  `json:"leadId"`
	Name             string     `json:"name"`
	Phone            string     `json:"phone"`
	Email            string     `json:"email,omitempty"`
	Source           string     `json:"source,omitempty"`
	ChannelPartnerID *uuid.UUID `json:"channelPartnerId,omitempty"`
	SubmittedFrom    string     `json:"submittedFrom,omitempty"`
}

func (e LeadCaptured) EventName() string { return "leads.lead.captured" }

// LeadStatusChanged is published when a user moves a lead to a new status.
type LeadStatusChanged struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	ActorID   uuid.UUID `json:"actorId"`
	OldStatus string    `json:"oldStatus"`
	NewStatus string    `json:"newStatus"`
}

func (e LeadStatusChanged) EventName() string { return "leads.lead.status_changed" }

// FollowUpScheduled is published when a contact attempt is scheduled
// against a lead.
type FollowUpScheduled struct {
	BaseEvent
	FollowUpID  uuid.UUID `json:"followUpId"`
	LeadID      uuid.UUID `json:"leadId"`
	UserID      uuid.UUID `json:"userId"`
	Type        string    `json:"type"`
	ScheduledAt time.Time `json:"scheduledAt"`
	Reminder    bool      `json:"reminder"`
}

func (e FollowUpScheduled) EventName() string { return "leads.followup.scheduled" }

// FollowUpResolved is published when a pending follow-up reaches a terminal
// status (completed or cancelled).
type FollowUpResolved struct {
	BaseEvent
	FollowUpID uuid.UUID `json:"followUpId"`
	LeadID     uuid.UUID `json:"leadId"`
	UserID     uuid.UUID `json:"userId"`
	Outcome    string    `json:"outcome"`
}

func (e FollowUpResolved) EventName() string { return "leads.followup.resolved" }

// FollowUpReminderDue is published by the reminder worker when a scheduled
// follow-up with the reminder flag reaches its scheduled time.
type FollowUpReminderDue struct {
	BaseEvent
	FollowUpID  uuid.UUID `json:"followUpId"`
	LeadID      uuid.UUID `json:"leadId"`
	UserID      uuid.UUID `json:"userId"`
	Type        string    `json:"type"`
	ScheduledAt time.Time `json:"scheduledAt"`
	LeadName    string    `json:"leadName"`
	LeadPhone   string    `json:"leadPhone"`
}

func (e FollowUpReminderDue) EventName() string { return "leads.followup.reminder_due" }
