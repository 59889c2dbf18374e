package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"estate_crm_backend/internal/events"
	"estate_crm_backend/internal/leads/domain"
	"estate_crm_backend/internal/leads/repository"
	"estate_crm_backend/platform/apperr"
	"estate_crm_backend/platform/sanitize"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ScheduleFollowUpInput carries a new follow-up request. Scheduling in
// the past is allowed: agents backfill interactions that already
// happened, the entry just renders as overdue until resolved.
type ScheduleFollowUpInput struct {
	LeadID      uuid.UUID
	Type        string
	ScheduledAt time.Time
	Notes       string
	Reminder    bool
}

// ScheduleFollowUp creates a pending follow-up on a lead, records it on
// the timeline, and enqueues a reminder when requested.
func (s *Service) ScheduleFollowUp(ctx context.Context, input ScheduleFollowUpInput, actor Actor) (*repository.FollowUp, error) {
	if !domain.IsValidFollowUpType(input.Type) {
		return nil, apperr.Validation(fmt.Sprintf("invalid follow-up type: %q", input.Type))
	}
	if input.ScheduledAt.IsZero() {
		return nil, apperr.Validation("scheduledAt is required")
	}

	// Fail fast on an unknown lead so the activity and reminder are
	// never orphaned.
	if _, err := s.store.GetLead(ctx, input.LeadID); err != nil {
		return nil, err
	}

	now := s.now()
	fu := &repository.FollowUp{
		ID:          uuid.New(),
		LeadID:      input.LeadID,
		Type:        input.Type,
		Status:      domain.FollowUpPending,
		ScheduledAt: input.ScheduledAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if cleaned := sanitize.Text(input.Notes); cleaned != "" {
		fu.Notes = &cleaned
	}
	if actor.ID != uuid.Nil {
		fu.CreatedBy = &actor.ID
	}

	if err := s.store.CreateFollowUp(ctx, fu); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, input.LeadID, repository.ActivityFollowUpScheduled,
		fmt.Sprintf("%s scheduled for %s", domain.FollowUpLabel(input.Type), input.ScheduledAt.Format("2 Jan 2006 15:04")),
		map[string]any{"followUpId": fu.ID.String(), "type": input.Type}, &actor)

	if input.Reminder && s.reminders != nil {
		if err := s.reminders.ScheduleFollowUpReminder(ctx, fu.ID, fu.LeadID, fu.ScheduledAt); err != nil {
			// The follow-up exists either way; the agent just won't get
			// a nudge.
			s.log.Error("failed to schedule follow-up reminder",
				"follow_up_id", fu.ID, "error", err)
		}
	}

	s.bus.Publish(ctx, events.FollowUpScheduled{
		BaseEvent:   events.NewBaseEvent(),
		FollowUpID:  fu.ID,
		LeadID:      fu.LeadID,
		UserID:      actor.ID,
		Type:        fu.Type,
		ScheduledAt: fu.ScheduledAt,
		Reminder:    input.Reminder,
	})

	return fu, nil
}

// ResolveFollowUpInput carries a resolution request.
type ResolveFollowUpInput struct {
	FollowUpID uuid.UUID
	Outcome    string
}

// ResolveFollowUp moves a pending follow-up to completed or cancelled.
// Completing stamps completedAt; cancelling leaves it empty. Only a
// completion earns a timeline activity: a cancelled follow-up was a plan
// that never happened, and the timeline records what happened.
func (s *Service) ResolveFollowUp(ctx context.Context, input ResolveFollowUpInput, actor Actor) (*repository.FollowUp, error) {
	current, err := s.store.GetFollowUp(ctx, input.FollowUpID)
	if err != nil {
		return nil, err
	}

	if err := domain.ValidateResolution(current.Status, input.Outcome); err != nil {
		return nil, err
	}

	var completedAt *time.Time
	if input.Outcome == domain.FollowUpCompleted {
		now := s.now()
		completedAt = &now
	}

	fu, err := s.store.ResolveFollowUp(ctx, input.FollowUpID, input.Outcome, completedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Lost the race to another resolution between the read above
			// and the guarded update.
			return nil, apperr.Conflict("follow-up is already resolved")
		}
		return nil, err
	}

	if input.Outcome == domain.FollowUpCompleted {
		s.recordActivity(ctx, fu.LeadID, repository.ActivityFollowUpCompleted,
			fmt.Sprintf("%s completed", domain.FollowUpLabel(fu.Type)),
			map[string]any{"followUpId": fu.ID.String(), "type": fu.Type}, &actor)
	}

	s.bus.Publish(ctx, events.FollowUpResolved{
		BaseEvent:  events.NewBaseEvent(),
		FollowUpID: fu.ID,
		LeadID:     fu.LeadID,
		UserID:     actor.ID,
		Outcome:    input.Outcome,
	})

	return fu, nil
}

// FollowUpView pairs a stored follow-up with its display status, which
// is the persisted status except that overdue pending entries render as
// overdue.
type FollowUpView struct {
	repository.FollowUp
	DisplayStatus string
}

// ListFollowUps retrieves a lead's follow-ups, newest scheduled first,
// with display statuses computed against the current time.
func (s *Service) ListFollowUps(ctx context.Context, leadID uuid.UUID) ([]FollowUpView, error) {
	items, err := s.store.ListFollowUpsByLead(ctx, leadID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	views := make([]FollowUpView, len(items))
	for i, fu := range items {
		views[i] = FollowUpView{
			FollowUp:      fu,
			DisplayStatus: domain.FollowUpBadge(fu.Status, fu.ScheduledAt, now),
		}
	}
	return views, nil
}
