package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"estate_crm_backend/internal/leads/domain"
	"estate_crm_backend/internal/leads/repository"
	"estate_crm_backend/platform/apperr"

	"github.com/google/uuid"
)

func seedLead(t *testing.T, svc *Service) *repository.Lead {
	t.Helper()
	lead, err := svc.CreateLead(context.Background(), CreateLeadInput{
		Name:  "Asha Verma",
		Phone: "+919876543210",
	}, Actor{})
	if err != nil {
		t.Fatalf("seed lead: %v", err)
	}
	return lead
}

func TestScheduleFollowUp(t *testing.T) {
	store := newFakeStore()
	bus := &fakeBus{}
	reminders := &fakeReminders{}
	svc := newTestService(store, nil, reminders, bus)
	lead := seedLead(t, svc)

	fu, err := svc.ScheduleFollowUp(context.Background(), ScheduleFollowUpInput{
		LeadID:      lead.ID,
		Type:        domain.FollowUpCall,
		ScheduledAt: time.Now().Add(24 * time.Hour),
		Reminder:    true,
	}, Actor{ID: uuid.New()})
	if err != nil {
		t.Fatalf("ScheduleFollowUp() error = %v", err)
	}

	if fu.Status != domain.FollowUpPending {
		t.Errorf("status = %q, want pending", fu.Status)
	}
	if fu.CompletedAt != nil {
		t.Error("completedAt must be empty on a pending follow-up")
	}
	if !containsType(store.activityTypes(), repository.ActivityFollowUpScheduled) {
		t.Error("follow_up_scheduled activity not recorded")
	}
	if reminders.scheduled != 1 {
		t.Errorf("reminders scheduled = %d, want 1", reminders.scheduled)
	}
	if !containsType(bus.names(), "leads.followup.scheduled") {
		t.Errorf("expected follow-up scheduled event, got %v", bus.names())
	}
}

func TestScheduleFollowUpValidation(t *testing.T) {
	svc := newTestService(newFakeStore(), nil, nil, &fakeBus{})
	lead := seedLead(t, svc)

	tests := []struct {
		name     string
		input    ScheduleFollowUpInput
		wantKind apperr.Kind
	}{
		{
			"unknown type",
			ScheduleFollowUpInput{LeadID: lead.ID, Type: "pigeon", ScheduledAt: time.Now()},
			apperr.KindValidation,
		},
		{
			"missing scheduled time",
			ScheduleFollowUpInput{LeadID: lead.ID, Type: domain.FollowUpCall},
			apperr.KindValidation,
		},
		{
			"unknown lead",
			ScheduleFollowUpInput{LeadID: uuid.New(), Type: domain.FollowUpCall, ScheduledAt: time.Now()},
			apperr.KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ScheduleFollowUp(context.Background(), tt.input, Actor{})
			if apperr.GetKind(err) != tt.wantKind {
				t.Errorf("kind = %v, want %v (err: %v)", apperr.GetKind(err), tt.wantKind, err)
			}
		})
	}
}

func TestScheduleFollowUpReminderFailureIsNonFatal(t *testing.T) {
	store := newFakeStore()
	reminders := &fakeReminders{err: errors.New("redis down")}
	svc := newTestService(store, nil, reminders, &fakeBus{})
	lead := seedLead(t, svc)

	fu, err := svc.ScheduleFollowUp(context.Background(), ScheduleFollowUpInput{
		LeadID:      lead.ID,
		Type:        domain.FollowUpMeeting,
		ScheduledAt: time.Now().Add(time.Hour),
		Reminder:    true,
	}, Actor{})
	if err != nil {
		t.Fatalf("reminder failure must not fail scheduling: %v", err)
	}
	if _, err := store.GetFollowUp(context.Background(), fu.ID); err != nil {
		t.Errorf("follow-up was not persisted: %v", err)
	}
}

func TestResolveFollowUpCompleted(t *testing.T) {
	store := newFakeStore()
	bus := &fakeBus{}
	svc := newTestService(store, nil, nil, bus)
	lead := seedLead(t, svc)

	fu, _ := svc.ScheduleFollowUp(context.Background(), ScheduleFollowUpInput{
		LeadID:      lead.ID,
		Type:        domain.FollowUpCall,
		ScheduledAt: time.Now().Add(-time.Hour),
	}, Actor{})

	resolved, err := svc.ResolveFollowUp(context.Background(), ResolveFollowUpInput{
		FollowUpID: fu.ID,
		Outcome:    domain.FollowUpCompleted,
	}, Actor{ID: uuid.New()})
	if err != nil {
		t.Fatalf("ResolveFollowUp() error = %v", err)
	}

	if resolved.Status != domain.FollowUpCompleted {
		t.Errorf("status = %q, want completed", resolved.Status)
	}
	if resolved.CompletedAt == nil {
		t.Error("completedAt must be stamped on completion")
	}
	if !containsType(store.activityTypes(), repository.ActivityFollowUpCompleted) {
		t.Error("follow_up_completed activity not recorded")
	}
	if !containsType(bus.names(), "leads.followup.resolved") {
		t.Errorf("expected follow-up resolved event, got %v", bus.names())
	}
}

func TestResolveFollowUpCancelledRecordsNoActivity(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil, nil, &fakeBus{})
	lead := seedLead(t, svc)

	fu, _ := svc.ScheduleFollowUp(context.Background(), ScheduleFollowUpInput{
		LeadID:      lead.ID,
		Type:        domain.FollowUpEmail,
		ScheduledAt: time.Now().Add(time.Hour),
	}, Actor{})

	resolved, err := svc.ResolveFollowUp(context.Background(), ResolveFollowUpInput{
		FollowUpID: fu.ID,
		Outcome:    domain.FollowUpCancelled,
	}, Actor{})
	if err != nil {
		t.Fatalf("ResolveFollowUp() error = %v", err)
	}

	if resolved.CompletedAt != nil {
		t.Error("completedAt must stay empty on cancellation")
	}
	if containsType(store.activityTypes(), repository.ActivityFollowUpCompleted) {
		t.Error("cancellation must not record a completion activity")
	}
}

func TestResolveFollowUpTwiceConflicts(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil, nil, &fakeBus{})
	lead := seedLead(t, svc)

	fu, _ := svc.ScheduleFollowUp(context.Background(), ScheduleFollowUpInput{
		LeadID:      lead.ID,
		Type:        domain.FollowUpCall,
		ScheduledAt: time.Now(),
	}, Actor{})

	if _, err := svc.ResolveFollowUp(context.Background(), ResolveFollowUpInput{
		FollowUpID: fu.ID,
		Outcome:    domain.FollowUpCompleted,
	}, Actor{}); err != nil {
		t.Fatalf("first resolution: %v", err)
	}

	_, err := svc.ResolveFollowUp(context.Background(), ResolveFollowUpInput{
		FollowUpID: fu.ID,
		Outcome:    domain.FollowUpCompleted,
	}, Actor{})
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Errorf("second resolution kind = %v, want conflict (err: %v)", apperr.GetKind(err), err)
	}
}

func TestListFollowUpsComputesOverdueBadge(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil, nil, &fakeBus{})
	lead := seedLead(t, svc)

	past, _ := svc.ScheduleFollowUp(context.Background(), ScheduleFollowUpInput{
		LeadID:      lead.ID,
		Type:        domain.FollowUpCall,
		ScheduledAt: time.Now().Add(-time.Hour),
	}, Actor{})
	future, _ := svc.ScheduleFollowUp(context.Background(), ScheduleFollowUpInput{
		LeadID:      lead.ID,
		Type:        domain.FollowUpCall,
		ScheduledAt: time.Now().Add(time.Hour),
	}, Actor{})

	views, err := svc.ListFollowUps(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("ListFollowUps() error = %v", err)
	}

	byID := make(map[uuid.UUID]FollowUpView, len(views))
	for _, v := range views {
		byID[v.ID] = v
	}
	if got := byID[past.ID].DisplayStatus; got != domain.FollowUpOverdue {
		t.Errorf("past pending display = %q, want overdue", got)
	}
	if got := byID[past.ID].Status; got != domain.FollowUpPending {
		t.Errorf("stored status = %q, overdue must never be persisted", got)
	}
	if got := byID[future.ID].DisplayStatus; got != domain.FollowUpPending {
		t.Errorf("future pending display = %q, want pending", got)
	}
}

func TestGetTimelinePartialTolerance(t *testing.T) {
	t.Run("one failing feed degrades to partial", func(t *testing.T) {
		store := newFakeStore()
		svc := newTestService(store, nil, nil, &fakeBus{})
		lead := seedLead(t, svc)
		if _, err := svc.ScheduleFollowUp(context.Background(), ScheduleFollowUpInput{
			LeadID:      lead.ID,
			Type:        domain.FollowUpCall,
			ScheduledAt: time.Now(),
		}, Actor{}); err != nil {
			t.Fatalf("seed follow-up: %v", err)
		}

		store.activitiesErr = errors.New("connection reset")

		result, err := svc.GetTimeline(context.Background(), lead.ID)
		if err != nil {
			t.Fatalf("GetTimeline() error = %v", err)
		}
		if !result.Partial {
			t.Error("expected partial flag when activities feed fails")
		}
		if len(result.Entries) == 0 {
			t.Error("expected surviving follow-up entries in partial timeline")
		}
	})

	t.Run("both feeds failing is unavailable", func(t *testing.T) {
		store := newFakeStore()
		svc := newTestService(store, nil, nil, &fakeBus{})
		lead := seedLead(t, svc)

		store.activitiesErr = errors.New("connection reset")
		store.followUpsErr = errors.New("connection reset")

		_, err := svc.GetTimeline(context.Background(), lead.ID)
		if apperr.GetKind(err) != apperr.KindUnavailable {
			t.Errorf("kind = %v, want unavailable (err: %v)", apperr.GetKind(err), err)
		}
	})

	t.Run("healthy feeds merge in descending order", func(t *testing.T) {
		store := newFakeStore()
		svc := newTestService(store, nil, nil, &fakeBus{})
		lead := seedLead(t, svc)
		if _, err := svc.ScheduleFollowUp(context.Background(), ScheduleFollowUpInput{
			LeadID:      lead.ID,
			Type:        domain.FollowUpCall,
			ScheduledAt: time.Now().Add(48 * time.Hour),
		}, Actor{}); err != nil {
			t.Fatalf("seed follow-up: %v", err)
		}

		result, err := svc.GetTimeline(context.Background(), lead.ID)
		if err != nil {
			t.Fatalf("GetTimeline() error = %v", err)
		}
		if result.Partial {
			t.Error("partial must be false when both feeds load")
		}
		for i := 1; i < len(result.Entries); i++ {
			if result.Entries[i].OccurredAt.After(result.Entries[i-1].OccurredAt) {
				t.Fatalf("timeline not descending at index %d", i)
			}
		}
	})
}
