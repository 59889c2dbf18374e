// Package transport defines the request and response shapes for the leads
// HTTP API and the mapping from storage models to responses.
package transport

import (
	"time"

	"estate_crm_backend/internal/leads/domain"
	"estate_crm_backend/internal/leads/repository"
	"estate_crm_backend/internal/leads/service"
	"estate_crm_backend/internal/leads/timeline"
	"estate_crm_backend/platform/currency"

	"github.com/google/uuid"
)

// CreateLeadRequest is the payload for a lead entered by a signed-in user.
type CreateLeadRequest struct {
	Name            string     `json:"name" validate:"required,max=200"`
	Phone           string     `json:"phone" validate:"required,max=20"`
	Email           string     `json:"email" validate:"omitempty,email"`
	Source          string     `json:"source" validate:"omitempty,max=50"`
	Budget          string     `json:"budget" validate:"omitempty,max=20"`
	Notes           string     `json:"notes" validate:"omitempty,max=2000"`
	AssignedAgentID *uuid.UUID `json:"assignedAgentId"`
}

// PublicLeadRequest is the payload of the unauthenticated inquiry form.
type PublicLeadRequest struct {
	Name          string `json:"name" validate:"required,max=200"`
	Phone         string `json:"phone" validate:"required,max=20"`
	Email         string `json:"email" validate:"omitempty,email"`
	Budget        string `json:"budget" validate:"omitempty,max=20"`
	Notes         string `json:"notes" validate:"omitempty,max=2000"`
	ReferralCode  string `json:"referralCode" validate:"omitempty,max=50"`
	SubmittedFrom string `json:"submittedFrom" validate:"omitempty,max=100"`
}

// UpdateLeadRequest is a partial update; absent fields are untouched.
type UpdateLeadRequest struct {
	Name            *string    `json:"name" validate:"omitempty,max=200"`
	Phone           *string    `json:"phone" validate:"omitempty,max=20"`
	Email           *string    `json:"email" validate:"omitempty,email"`
	Source          *string    `json:"source" validate:"omitempty,max=50"`
	Budget          *string    `json:"budget" validate:"omitempty,max=20"`
	Notes           *string    `json:"notes" validate:"omitempty,max=2000"`
	AssignedAgentID *uuid.UUID `json:"assignedAgentId"`
}

// ChangeStatusRequest moves a lead to a new pipeline status.
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,max=50"`
}

// AttributeLeadRequest attaches partner attribution after the fact.
type AttributeLeadRequest struct {
	ReferralCode string `json:"referralCode" validate:"required,max=50"`
}

// ScheduleFollowUpRequest creates a follow-up on a lead.
type ScheduleFollowUpRequest struct {
	Type        string    `json:"type" validate:"required,max=20"`
	ScheduledAt time.Time `json:"scheduledAt" validate:"required"`
	Notes       string    `json:"notes" validate:"omitempty,max=2000"`
	Reminder    bool      `json:"reminder"`
}

// ResolveFollowUpRequest moves a follow-up to a terminal status.
type ResolveFollowUpRequest struct {
	Outcome string `json:"outcome" validate:"required,oneof=completed cancelled"`
}

// LeadMetadataResponse mirrors the stored attribution fields.
type LeadMetadataResponse struct {
	ReferralCode     string     `json:"referralCode,omitempty"`
	ChannelPartnerID *uuid.UUID `json:"channelPartnerId,omitempty"`
	SubmittedFrom    string     `json:"submittedFrom,omitempty"`
}

// LeadResponse is the API representation of a lead. Budget stays a
// numeric string; budgetDisplay carries the formatted rupee rendering.
type LeadResponse struct {
	ID              uuid.UUID             `json:"id"`
	Name            string                `json:"name"`
	Phone           string                `json:"phone"`
	Email           *string               `json:"email,omitempty"`
	Status          string                `json:"status"`
	StatusLabel     string                `json:"statusLabel"`
	StatusColor     string                `json:"statusColor"`
	Source          *string               `json:"source,omitempty"`
	AssignedAgentID *uuid.UUID            `json:"assignedAgentId,omitempty"`
	Budget          *string               `json:"budget,omitempty"`
	BudgetDisplay   string                `json:"budgetDisplay,omitempty"`
	Notes           *string               `json:"notes,omitempty"`
	Metadata        *LeadMetadataResponse `json:"metadata,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

// FromLead maps a storage lead to its response shape.
func FromLead(lead *repository.Lead) LeadResponse {
	resp := LeadResponse{
		ID:              lead.ID,
		Name:            lead.Name,
		Phone:           lead.Phone,
		Email:           lead.Email,
		Status:          lead.Status,
		StatusLabel:     domain.StatusLabel(lead.Status),
		StatusColor:     domain.StatusColor(lead.Status),
		Source:          lead.Source,
		AssignedAgentID: lead.AssignedAgentID,
		Budget:          lead.Budget,
		Notes:           lead.Notes,
		CreatedAt:       lead.CreatedAt,
		UpdatedAt:       lead.UpdatedAt,
	}
	if lead.Budget != nil {
		resp.BudgetDisplay = currency.FormatBudget(*lead.Budget)
	}
	if lead.Metadata != nil {
		resp.Metadata = &LeadMetadataResponse{
			ReferralCode:     lead.Metadata.ReferralCode,
			ChannelPartnerID: lead.Metadata.ChannelPartnerID,
			SubmittedFrom:    lead.Metadata.SubmittedFrom,
		}
	}
	return resp
}

// FromLeads maps a slice of storage leads.
func FromLeads(items []repository.Lead) []LeadResponse {
	out := make([]LeadResponse, len(items))
	for i := range items {
		out[i] = FromLead(&items[i])
	}
	return out
}

// FollowUpResponse is the API representation of a follow-up. Status is
// the display status: a pending entry past its slot reads "overdue" even
// though storage still says pending.
type FollowUpResponse struct {
	ID          uuid.UUID  `json:"id"`
	LeadID      uuid.UUID  `json:"leadId"`
	Type        string     `json:"type"`
	TypeLabel   string     `json:"typeLabel"`
	Status      string     `json:"status"`
	ScheduledAt time.Time  `json:"scheduledAt"`
	Notes       *string    `json:"notes,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// FromFollowUpView maps a follow-up plus its computed display status.
func FromFollowUpView(v service.FollowUpView) FollowUpResponse {
	return FollowUpResponse{
		ID:          v.ID,
		LeadID:      v.LeadID,
		Type:        v.Type,
		TypeLabel:   domain.FollowUpLabel(v.Type),
		Status:      v.DisplayStatus,
		ScheduledAt: v.ScheduledAt,
		Notes:       v.Notes,
		CompletedAt: v.CompletedAt,
		CreatedAt:   v.CreatedAt,
	}
}

// FromFollowUp maps a freshly written follow-up, computing the display
// status against now.
func FromFollowUp(fu *repository.FollowUp, now time.Time) FollowUpResponse {
	return FromFollowUpView(service.FollowUpView{
		FollowUp:      *fu,
		DisplayStatus: domain.FollowUpBadge(fu.Status, fu.ScheduledAt, now),
	})
}

// ActivityResponse is one recorded timeline event.
type ActivityResponse struct {
	ID          uuid.UUID      `json:"id"`
	Type        string         `json:"type"`
	TypeLabel   string         `json:"typeLabel"`
	Description *string        `json:"description,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	ActorName   *string        `json:"actorName,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// TimelineEntryResponse is one row of the merged timeline. Exactly one
// of Activity and FollowUp is set, matching Kind.
type TimelineEntryResponse struct {
	Kind         string            `json:"kind"`
	OccurredAt   time.Time         `json:"occurredAt"`
	RelativeTime string            `json:"relativeTime"`
	Activity     *ActivityResponse `json:"activity,omitempty"`
	FollowUp     *FollowUpResponse `json:"followUp,omitempty"`
}

// TimelineResponse is the merged feed. Partial marks a degraded read
// where one of the two underlying feeds failed to load.
type TimelineResponse struct {
	Entries []TimelineEntryResponse `json:"entries"`
	Partial bool                    `json:"partial"`
}

// FromTimeline maps a merged timeline result, computing display statuses
// and relative times against now.
func FromTimeline(result service.TimelineResult, now time.Time) TimelineResponse {
	entries := make([]TimelineEntryResponse, len(result.Entries))
	for i, e := range result.Entries {
		entry := TimelineEntryResponse{
			Kind:         e.Kind,
			OccurredAt:   e.OccurredAt,
			RelativeTime: domain.RelativeTime(e.OccurredAt, now),
		}
		switch e.Kind {
		case timeline.EntryActivity:
			entry.Activity = &ActivityResponse{
				ID:          e.Activity.ID,
				Type:        e.Activity.Type,
				TypeLabel:   domain.StatusLabel(e.Activity.Type),
				Description: e.Activity.Description,
				Metadata:    e.Activity.Metadata,
				ActorName:   e.Activity.ActorName,
				CreatedAt:   e.Activity.CreatedAt,
			}
		case timeline.EntryFollowUp:
			resp := FromFollowUp(e.FollowUp, now)
			entry.FollowUp = &resp
		}
		entries[i] = entry
	}
	return TimelineResponse{Entries: entries, Partial: result.Partial}
}

// StatsResponse carries the dashboard counters.
type StatsResponse struct {
	Total          int     `json:"total"`
	Converted      int     `json:"converted"`
	Hot            int     `json:"hot"`
	ThisMonth      int     `json:"thisMonth"`
	ConversionRate float64 `json:"conversionRate"`
}

// FromStats maps the service counters.
func FromStats(s service.Stats) StatsResponse {
	return StatsResponse{
		Total:          s.Total,
		Converted:      s.Converted,
		Hot:            s.Hot,
		ThisMonth:      s.ThisMonth,
		ConversionRate: s.ConversionRate,
	}
}

// StatusOptionResponse is one selectable pipeline status.
type StatusOptionResponse struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// StatusOptions lists the pipeline statuses in order, for building
// status dropdowns without hardcoding tokens client-side.
func StatusOptions() []StatusOptionResponse {
	out := make([]StatusOptionResponse, len(domain.AllStatuses))
	for i, s := range domain.AllStatuses {
		out[i] = StatusOptionResponse{
			Value: s,
			Label: domain.StatusLabel(s),
			Color: domain.StatusColor(s),
		}
	}
	return out
}
