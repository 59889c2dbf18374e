package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"estate_crm_backend/internal/events"
	"estate_crm_backend/internal/leads/domain"
	"estate_crm_backend/internal/leads/repository"
	"estate_crm_backend/platform/apperr"
	"estate_crm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type fakeFollowUpStore struct {
	followUps map[uuid.UUID]*repository.FollowUp
	leads     map[uuid.UUID]*repository.Lead
}

func (s *fakeFollowUpStore) GetFollowUp(_ context.Context, id uuid.UUID) (*repository.FollowUp, error) {
	fu, ok := s.followUps[id]
	if !ok {
		return nil, apperr.NotFound("follow-up not found")
	}
	return fu, nil
}

func (s *fakeFollowUpStore) GetLead(_ context.Context, id uuid.UUID) (*repository.Lead, error) {
	lead, ok := s.leads[id]
	if !ok {
		return nil, apperr.NotFound("lead not found")
	}
	return lead, nil
}

type recordingBus struct {
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.published = append(b.published, event)
}

func (b *recordingBus) PublishSync(_ context.Context, event events.Event) error {
	b.published = append(b.published, event)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func newReminderTask(t *testing.T, followUpID, leadID uuid.UUID) *asynq.Task {
	t.Helper()
	task, err := NewFollowUpReminderTask(FollowUpReminderPayload{
		FollowUpID: followUpID.String(),
		LeadID:     leadID.String(),
	})
	if err != nil {
		t.Fatalf("NewFollowUpReminderTask() error = %v", err)
	}
	return task
}

func TestHandleFollowUpReminder(t *testing.T) {
	leadID := uuid.New()
	followUpID := uuid.New()
	scheduledAt := time.Now().Add(-time.Minute)

	newStore := func(status string) *fakeFollowUpStore {
		return &fakeFollowUpStore{
			followUps: map[uuid.UUID]*repository.FollowUp{
				followUpID: {
					ID:          followUpID,
					LeadID:      leadID,
					Type:        "call",
					Status:      status,
					ScheduledAt: scheduledAt,
				},
			},
			leads: map[uuid.UUID]*repository.Lead{
				leadID: {ID: leadID, Name: "Priya Nair", Phone: "+919812345678"},
			},
		}
	}

	t.Run("pending follow-up publishes the reminder event", func(t *testing.T) {
		bus := &recordingBus{}
		w := &Worker{repo: newStore(domain.FollowUpPending), bus: bus, log: logger.New("development")}

		if err := w.handleFollowUpReminder(context.Background(), newReminderTask(t, followUpID, leadID)); err != nil {
			t.Fatalf("handleFollowUpReminder() error = %v", err)
		}
		if len(bus.published) != 1 {
			t.Fatalf("published %d events, want 1", len(bus.published))
		}
		due, ok := bus.published[0].(events.FollowUpReminderDue)
		if !ok {
			t.Fatalf("published event is %T, want FollowUpReminderDue", bus.published[0])
		}
		if due.LeadName != "Priya Nair" || due.LeadPhone != "+919812345678" {
			t.Errorf("event carries lead %q/%q, want the stored name and phone", due.LeadName, due.LeadPhone)
		}
	})

	t.Run("resolved follow-up is dropped without an event", func(t *testing.T) {
		bus := &recordingBus{}
		w := &Worker{repo: newStore(domain.FollowUpCompleted), bus: bus, log: logger.New("development")}

		if err := w.handleFollowUpReminder(context.Background(), newReminderTask(t, followUpID, leadID)); err != nil {
			t.Fatalf("handleFollowUpReminder() error = %v", err)
		}
		if len(bus.published) != 0 {
			t.Errorf("published %d events, want none for a resolved follow-up", len(bus.published))
		}
	})

	t.Run("deleted follow-up skips retrying", func(t *testing.T) {
		bus := &recordingBus{}
		store := &fakeFollowUpStore{followUps: map[uuid.UUID]*repository.FollowUp{}}
		w := &Worker{repo: store, bus: bus, log: logger.New("development")}

		err := w.handleFollowUpReminder(context.Background(), newReminderTask(t, followUpID, leadID))
		if !errors.Is(err, asynq.SkipRetry) {
			t.Fatalf("handleFollowUpReminder() error = %v, want it to wrap asynq.SkipRetry", err)
		}
		if len(bus.published) != 0 {
			t.Errorf("published %d events, want none for a deleted follow-up", len(bus.published))
		}
	})

	t.Run("deleted lead skips retrying", func(t *testing.T) {
		store := newStore(domain.FollowUpPending)
		store.leads = map[uuid.UUID]*repository.Lead{}
		w := &Worker{repo: store, bus: &recordingBus{}, log: logger.New("development")}

		err := w.handleFollowUpReminder(context.Background(), newReminderTask(t, followUpID, leadID))
		if !errors.Is(err, asynq.SkipRetry) {
			t.Fatalf("handleFollowUpReminder() error = %v, want it to wrap asynq.SkipRetry", err)
		}
	})

	t.Run("malformed payload skips retrying", func(t *testing.T) {
		w := &Worker{repo: newStore(domain.FollowUpPending), bus: &recordingBus{}, log: logger.New("development")}

		task := asynq.NewTask(TaskFollowUpReminder, []byte("not json"))
		err := w.handleFollowUpReminder(context.Background(), task)
		if !errors.Is(err, asynq.SkipRetry) {
			t.Fatalf("handleFollowUpReminder() error = %v, want it to wrap asynq.SkipRetry", err)
		}
	})
}
