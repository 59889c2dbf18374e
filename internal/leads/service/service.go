// Package service implements the lead lifecycle operations on top of the
// repository, wiring activity recording, attribution, reminders, and
// domain events around every state change.
package service

import (
	"context"
	"fmt"
	"time"

	"estate_crm_backend/internal/events"
	"estate_crm_backend/internal/leads/domain"
	"estate_crm_backend/internal/leads/repository"
	"estate_crm_backend/platform/apperr"
	"estate_crm_backend/platform/logger"
	"estate_crm_backend/platform/phone"
	"estate_crm_backend/platform/sanitize"

	"github.com/google/uuid"
)

// Store is the persistence surface the service needs. It is implemented
// by *repository.Repository and faked in tests.
type Store interface {
	CreateLead(ctx context.Context, lead *repository.Lead) error
	GetLead(ctx context.Context, id uuid.UUID) (*repository.Lead, error)
	ListLeads(ctx context.Context) ([]repository.Lead, error)
	ListLeadsByPartner(ctx context.Context, partnerID uuid.UUID) ([]repository.Lead, error)
	UpdateLead(ctx context.Context, id uuid.UUID, update repository.LeadUpdate) (*repository.Lead, error)
	SetLeadAttribution(ctx context.Context, id uuid.UUID, metadata *repository.LeadMetadata) error
	GetLeadStats(ctx context.Context) (repository.LeadStats, error)

	CreateFollowUp(ctx context.Context, fu *repository.FollowUp) error
	GetFollowUp(ctx context.Context, id uuid.UUID) (*repository.FollowUp, error)
	ListFollowUpsByLead(ctx context.Context, leadID uuid.UUID) ([]repository.FollowUp, error)
	ResolveFollowUp(ctx context.Context, id uuid.UUID, status string, completedAt *time.Time) (*repository.FollowUp, error)

	RecordActivity(ctx context.Context, a *repository.Activity) error
	ListActivitiesByLead(ctx context.Context, leadID uuid.UUID) ([]repository.Activity, error)
}

// PartnerRef identifies a channel partner resolved from a referral code.
type PartnerRef struct {
	ID   uuid.UUID
	Name string
}

// PartnerDirectory resolves referral codes to channel partners. An
// unknown code resolves to (nil, nil); only infrastructure failures
// return an error.
type PartnerDirectory interface {
	ResolveReferralCode(ctx context.Context, code string) (*PartnerRef, error)
}

// ReminderScheduler enqueues follow-up reminder delivery. Implemented by
// the asynq-backed scheduler client.
type ReminderScheduler interface {
	ScheduleFollowUpReminder(ctx context.Context, followUpID, leadID uuid.UUID, at time.Time) error
}

// Actor identifies who performed an operation, taken from the request
// identity. Name and email are denormalized onto activities when known.
type Actor struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// Service implements the lead lifecycle operations.
type Service struct {
	store     Store
	partners  PartnerDirectory
	reminders ReminderScheduler
	bus       events.Bus
	log       *logger.Logger
	now       func() time.Time
}

// New creates the leads service. partners and reminders may be nil when
// the corresponding modules are disabled.
func New(store Store, partners PartnerDirectory, reminders ReminderScheduler, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		store:     store,
		partners:  partners,
		reminders: reminders,
		bus:       bus,
		log:       log,
		now:       time.Now,
	}
}

// CreateLeadInput carries a manually entered lead.
type CreateLeadInput struct {
	Name            string
	Phone           string
	Email           string
	Source          string
	Budget          string
	Notes           string
	AssignedAgentID *uuid.UUID
}

// CreateLead registers a lead entered by a signed-in user. The lead
// starts in the new status and the creation is recorded on its timeline.
func (s *Service) CreateLead(ctx context.Context, input CreateLeadInput, actor Actor) (*repository.Lead, error) {
	lead, err := s.buildLead(input.Name, input.Phone, input.Email, input.Source, input.Budget, input.Notes)
	if err != nil {
		return nil, err
	}
	lead.AssignedAgentID = input.AssignedAgentID

	if err := s.store.CreateLead(ctx, lead); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, lead.ID, repository.ActivityLeadCreated,
		fmt.Sprintf("Lead created by %s", actorLabel(actor)), nil, &actor)

	s.bus.Publish(ctx, events.LeadCaptured{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		Name:      lead.Name,
		Phone:     lead.Phone,
		Email:     input.Email,
		Source:    input.Source,
	})

	return lead, nil
}

// CapturePublicLeadInput carries an inquiry from the public capture form.
type CapturePublicLeadInput struct {
	Name          string
	Phone         string
	Email         string
	Budget        string
	Notes         string
	ReferralCode  string
	SubmittedFrom string
}

// CapturePublicLead registers a lead from the unauthenticated inquiry
// form. A referral code, when present and recognised, attributes the lead
// to a channel partner; an unknown code is ignored rather than rejected
// so a mistyped code never loses an inquiry.
func (s *Service) CapturePublicLead(ctx context.Context, input CapturePublicLeadInput) (*repository.Lead, error) {
	source := domain.SourceWebsite
	if input.ReferralCode != "" {
		source = domain.SourceReferral
	}

	lead, err := s.buildLead(input.Name, input.Phone, input.Email, source, input.Budget, input.Notes)
	if err != nil {
		return nil, err
	}

	metadata := &repository.LeadMetadata{
		SubmittedFrom: sanitize.Text(input.SubmittedFrom),
	}
	var partnerID *uuid.UUID
	if input.ReferralCode != "" {
		metadata.ReferralCode = input.ReferralCode
		partner := s.resolvePartner(ctx, input.ReferralCode)
		if partner != nil {
			metadata.ChannelPartnerID = &partner.ID
			partnerID = &partner.ID
		}
	}
	if metadata.ReferralCode != "" || metadata.SubmittedFrom != "" {
		lead.Metadata = metadata
	}

	if err := s.store.CreateLead(ctx, lead); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, lead.ID, repository.ActivityLeadCreated,
		"Lead captured from public inquiry form", activityMetadata(lead.Metadata), nil)

	s.bus.Publish(ctx, events.LeadCaptured{
		BaseEvent:        events.NewBaseEvent(),
		LeadID:           lead.ID,
		Name:             lead.Name,
		Phone:            lead.Phone,
		Email:            input.Email,
		Source:           source,
		ChannelPartnerID: partnerID,
		SubmittedFrom:    metadata.SubmittedFrom,
	})

	return lead, nil
}

// resolvePartner maps a referral code to a partner. Lookup failures are
// logged and swallowed: attribution is best effort and must never block
// a capture.
func (s *Service) resolvePartner(ctx context.Context, code string) *PartnerRef {
	if s.partners == nil {
		return nil
	}
	partner, err := s.partners.ResolveReferralCode(ctx, code)
	if err != nil {
		s.log.Warn("referral code lookup failed, capturing without attribution",
			"referral_code", code, "error", err)
		return nil
	}
	if partner == nil {
		s.log.Info("unknown referral code on public capture", "referral_code", code)
		return nil
	}
	return partner
}

// GetLead retrieves a single lead.
func (s *Service) GetLead(ctx context.Context, id uuid.UUID) (*repository.Lead, error) {
	return s.store.GetLead(ctx, id)
}

// ListLeads retrieves all leads, newest first.
func (s *Service) ListLeads(ctx context.Context) ([]repository.Lead, error) {
	return s.store.ListLeads(ctx)
}

// ListLeadsByPartner retrieves the leads attributed to a channel partner.
func (s *Service) ListLeadsByPartner(ctx context.Context, partnerID uuid.UUID) ([]repository.Lead, error) {
	return s.store.ListLeadsByPartner(ctx, partnerID)
}

// UpdateLeadInput carries a partial lead update. Status changes go
// through ChangeStatus instead so they get their own timeline entry.
type UpdateLeadInput struct {
	Name            *string
	Phone           *string
	Email           *string
	Source          *string
	Budget          *string
	Notes           *string
	AssignedAgentID *uuid.UUID
}

// UpdateLead applies a partial update and records it on the timeline.
func (s *Service) UpdateLead(ctx context.Context, id uuid.UUID, input UpdateLeadInput, actor Actor) (*repository.Lead, error) {
	update := repository.LeadUpdate{
		Email:           input.Email,
		AssignedAgentID: input.AssignedAgentID,
	}

	if input.Name != nil {
		name := sanitize.Text(*input.Name)
		if name == "" {
			return nil, apperr.Validation("name must not be empty")
		}
		update.Name = &name
	}
	if input.Phone != nil {
		normalized := phone.NormalizeE164(*input.Phone)
		if normalized == "" {
			return nil, apperr.Validation("phone must not be empty")
		}
		update.Phone = &normalized
	}
	if input.Source != nil {
		if !domain.IsValidSource(*input.Source) {
			return nil, apperr.Validation(fmt.Sprintf("invalid lead source: %q", *input.Source))
		}
		update.Source = input.Source
	}
	if input.Budget != nil {
		budget, err := domain.NormalizeBudget(*input.Budget)
		if err != nil {
			return nil, err
		}
		update.Budget = &budget
	}
	if input.Notes != nil {
		notes := sanitize.Text(*input.Notes)
		update.Notes = &notes
	}

	lead, err := s.store.UpdateLead(ctx, id, update)
	if err != nil {
		return nil, err
	}

	s.recordActivity(ctx, lead.ID, repository.ActivityLeadUpdated,
		fmt.Sprintf("Lead details updated by %s", actorLabel(actor)), nil, &actor)

	return lead, nil
}

// ChangeStatus moves a lead to a new pipeline status and records the
// transition on the timeline.
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, newStatus string, actor Actor) (*repository.Lead, error) {
	lead, err := s.store.GetLead(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := domain.ValidateTransition(lead.Status, newStatus); err != nil {
		return nil, err
	}
	if lead.Status == newStatus {
		return lead, nil
	}

	oldStatus := lead.Status
	updated, err := s.store.UpdateLead(ctx, id, repository.LeadUpdate{Status: &newStatus})
	if err != nil {
		return nil, err
	}

	s.recordActivity(ctx, id, repository.ActivityStatusChanged,
		fmt.Sprintf("Status changed from %s to %s", domain.StatusLabel(oldStatus), domain.StatusLabel(newStatus)),
		map[string]any{"from": oldStatus, "to": newStatus}, &actor)

	s.bus.Publish(ctx, events.LeadStatusChanged{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    id,
		ActorID:   actor.ID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	})

	return updated, nil
}

// AttributeLead attaches channel-partner attribution to an existing
// lead, used when an agent learns after the fact that a walk-in came
// through a partner. Unlike public capture, the agent asked for this
// attribution, so a failed partner lookup is a retryable error rather
// than a silent skip, and only a genuinely unknown code is a 404.
func (s *Service) AttributeLead(ctx context.Context, id uuid.UUID, referralCode string, actor Actor) (*repository.Lead, error) {
	if s.partners == nil {
		return nil, apperr.Unavailable("partner directory is not configured")
	}
	partner, err := s.partners.ResolveReferralCode(ctx, referralCode)
	if err != nil {
		s.log.Error("referral code lookup failed", "referral_code", referralCode, "error", err)
		return nil, apperr.Unavailable("partner lookup failed, try again")
	}
	if partner == nil {
		return nil, apperr.NotFound("referral code not recognised")
	}

	lead, err := s.store.GetLead(ctx, id)
	if err != nil {
		return nil, err
	}

	metadata := &repository.LeadMetadata{}
	if lead.Metadata != nil {
		*metadata = *lead.Metadata
	}
	metadata.ReferralCode = referralCode
	metadata.ChannelPartnerID = &partner.ID

	if err := s.store.SetLeadAttribution(ctx, id, metadata); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, id, repository.ActivityLeadUpdated,
		fmt.Sprintf("Lead attributed to partner %s", partner.Name),
		map[string]any{"referralCode": referralCode}, &actor)

	lead.Metadata = metadata
	return lead, nil
}

// Stats returns the dashboard counters plus the derived conversion rate.
type Stats struct {
	Total          int
	Converted      int
	Hot            int
	ThisMonth      int
	ConversionRate float64
}

// GetStats computes the leads dashboard counters.
func (s *Service) GetStats(ctx context.Context) (Stats, error) {
	raw, err := s.store.GetLeadStats(ctx)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		Total:     raw.Total,
		Converted: raw.Converted,
		Hot:       raw.Hot,
		ThisMonth: raw.ThisMonth,
	}
	if raw.Total > 0 {
		stats.ConversionRate = float64(raw.Converted) / float64(raw.Total) * 100
	}
	return stats, nil
}

// buildLead validates and normalizes the intake fields shared by manual
// creation and public capture.
func (s *Service) buildLead(name, phoneNumber, email, source, budget, notes string) (*repository.Lead, error) {
	name = sanitize.Text(name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}

	normalizedPhone := phone.NormalizeE164(phoneNumber)
	if normalizedPhone == "" {
		return nil, apperr.Validation("phone is required")
	}

	if source != "" && !domain.IsValidSource(source) {
		return nil, apperr.Validation(fmt.Sprintf("invalid lead source: %q", source))
	}

	normalizedBudget, err := domain.NormalizeBudget(budget)
	if err != nil {
		return nil, err
	}

	now := s.now()
	lead := &repository.Lead{
		ID:        uuid.New(),
		Name:      name,
		Phone:     normalizedPhone,
		Status:    domain.StatusNew,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if email != "" {
		lead.Email = &email
	}
	if source != "" {
		lead.Source = &source
	}
	if normalizedBudget != "" {
		lead.Budget = &normalizedBudget
	}
	if cleaned := sanitize.Text(notes); cleaned != "" {
		lead.Notes = &cleaned
	}

	return lead, nil
}

// recordActivity appends a timeline record. Failures are logged, not
// returned: the primary write already committed and the timeline is a
// secondary artifact.
func (s *Service) recordActivity(ctx context.Context, leadID uuid.UUID, activityType, description string, metadata map[string]any, actor *Actor) {
	activity := &repository.Activity{
		ID:          uuid.New(),
		LeadID:      leadID,
		Type:        activityType,
		Description: &description,
		Metadata:    metadata,
		CreatedAt:   s.now(),
	}
	if actor != nil && actor.ID != uuid.Nil {
		activity.ActorID = &actor.ID
		if actor.Name != "" {
			activity.ActorName = &actor.Name
		}
		if actor.Email != "" {
			activity.ActorEmail = &actor.Email
		}
	}

	if err := s.store.RecordActivity(ctx, activity); err != nil {
		s.log.Error("failed to record lead activity",
			"lead_id", leadID, "activity_type", activityType, "error", err)
	}
}

func actorLabel(actor Actor) string {
	if actor.Name != "" {
		return actor.Name
	}
	if actor.ID != uuid.Nil {
		return "agent"
	}
	return "system"
}

func activityMetadata(m *repository.LeadMetadata) map[string]any {
	if m == nil {
		return nil
	}
	out := map[string]any{}
	if m.ReferralCode != "" {
		out["referralCode"] = m.ReferralCode
	}
	if m.ChannelPartnerID != nil {
		out["channelPartnerId"] = m.ChannelPartnerID.String()
	}
	if m.SubmittedFrom != "" {
		out["submittedFrom"] = m.SubmittedFrom
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
