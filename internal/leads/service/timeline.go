package service

import (
	"context"

	"estate_crm_backend/internal/leads/repository"
	"estate_crm_backend/internal/leads/timeline"
	"estate_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// TimelineResult is a merged timeline plus a degradation marker. Partial
// is true when exactly one of the two feeds failed to load; the caller
// still gets the other feed instead of an error page.
type TimelineResult struct {
	Entries []timeline.Entry
	Partial bool
}

// GetTimeline fetches a lead's activities and follow-ups concurrently
// and merges them into one descending feed. One failing feed degrades
// the result to partial; both failing is a real outage.
func (s *Service) GetTimeline(ctx context.Context, leadID uuid.UUID) (TimelineResult, error) {
	if _, err := s.store.GetLead(ctx, leadID); err != nil {
		return TimelineResult{}, err
	}

	var (
		activities []repository.Activity
		followUps  []repository.FollowUp
		actErr     error
		fuErr      error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		activities, actErr = s.store.ListActivitiesByLead(gctx, leadID)
		return nil
	})
	g.Go(func() error {
		followUps, fuErr = s.store.ListFollowUpsByLead(gctx, leadID)
		return nil
	})
	// The goroutines never return errors; failures are held per feed so
	// one bad feed cannot cancel the other.
	_ = g.Wait()

	if actErr != nil && fuErr != nil {
		s.log.Error("timeline unavailable, both feeds failed",
			"lead_id", leadID, "activities_error", actErr, "follow_ups_error", fuErr)
		return TimelineResult{}, apperr.Unavailable("timeline temporarily unavailable")
	}

	result := TimelineResult{
		Entries: timeline.Merge(activities, followUps),
	}
	if actErr != nil {
		s.log.Warn("serving partial timeline, activities feed failed", "lead_id", leadID, "error", actErr)
		result.Partial = true
	}
	if fuErr != nil {
		s.log.Warn("serving partial timeline, follow-ups feed failed", "lead_id", leadID, "error", fuErr)
		result.Partial = true
	}

	return result, nil
}
