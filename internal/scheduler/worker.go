package scheduler

import (
	"context"
	"fmt"

	"estate_crm_backend/internal/events"
	"estate_crm_backend/internal/leads/domain"
	"estate_crm_backend/internal/leads/repository"
	"estate_crm_backend/platform/apperr"
	"estate_crm_backend/platform/config"
	"estate_crm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// followUpStore is the slice of the leads repository the reminder
// handler reads from.
type followUpStore interface {
	GetFollowUp(ctx context.Context, id uuid.UUID) (*repository.FollowUp, error)
	GetLead(ctx context.Context, id uuid.UUID) (*repository.Lead, error)
}

// Worker consumes follow-up reminder tasks and republishes them as
// domain events for the notification module.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	repo   followUpStore
	bus    events.Bus
	log    *logger.Logger
}

// NewWorker creates the asynq worker and registers its task handlers.
func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, bus events.Bus, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		repo:   repository.New(pool),
		bus:    bus,
		log:    log,
	}

	mux.HandleFunc(TaskFollowUpReminder, w.handleFollowUpReminder)

	return w, nil
}

// Run blocks processing tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

// handleFollowUpReminder re-reads the follow-up at delivery time: a
// reminder for a follow-up that was completed, cancelled, or rescheduled
// after enqueueing is silently dropped. Reminders whose follow-up or
// lead no longer exists are dead and must not burn through the retry
// backoff, so those lookups skip retrying.
func (w *Worker) handleFollowUpReminder(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseFollowUpReminderPayload(task)
	if err != nil {
		return fmt.Errorf("malformed reminder payload: %v: %w", err, asynq.SkipRetry)
	}

	followUpID, err := uuid.Parse(payload.FollowUpID)
	if err != nil {
		return fmt.Errorf("malformed follow-up id %q: %w", payload.FollowUpID, asynq.SkipRetry)
	}

	fu, err := w.repo.GetFollowUp(ctx, followUpID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return fmt.Errorf("follow-up %s deleted before reminder delivery: %w", followUpID, asynq.SkipRetry)
		}
		return err
	}

	if fu.Status != domain.FollowUpPending {
		return nil
	}

	lead, err := w.repo.GetLead(ctx, fu.LeadID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return fmt.Errorf("lead %s deleted before reminder delivery: %w", fu.LeadID, asynq.SkipRetry)
		}
		return err
	}

	if w.bus == nil {
		return nil
	}

	var userID uuid.UUID
	if fu.CreatedBy != nil {
		userID = *fu.CreatedBy
	}

	return w.bus.PublishSync(ctx, events.FollowUpReminderDue{
		BaseEvent:   events.NewBaseEvent(),
		FollowUpID:  fu.ID,
		LeadID:      fu.LeadID,
		UserID:      userID,
		Type:        fu.Type,
		ScheduledAt: fu.ScheduledAt,
		LeadName:    lead.Name,
		LeadPhone:   lead.Phone,
	})
}
