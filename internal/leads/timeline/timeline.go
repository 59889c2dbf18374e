// Package timeline merges lead activities and follow-ups into one
// chronological feed.
package timeline

import (
	"sort"
	"time"

	"estate_crm_backend/internal/leads/repository"
)

// Entry kinds.
const (
	EntryActivity = "activity"
	EntryFollowUp = "follow_up"
)

// Entry is one row of the merged lead timeline. Exactly one of Activity
// and FollowUp is set, matching Kind. OccurredAt is the sort key: an
// activity sorts by when it was recorded, a follow-up by when it is
// scheduled, so upcoming follow-ups surface at the top of the feed.
type Entry struct {
	Kind       string
	OccurredAt time.Time
	Activity   *repository.Activity
	FollowUp   *repository.FollowUp
}

// Merge interleaves activities and follow-ups into one feed, newest
// first. The sort is stable: entries with equal timestamps keep their
// relative order, activities ahead of follow-ups. The function is pure
// and tolerates either input being nil, which is how a partial timeline
// is assembled when one of the two feeds fails to load.
func Merge(activities []repository.Activity, followUps []repository.FollowUp) []Entry {
	entries := make([]Entry, 0, len(activities)+len(followUps))
	for i := range activities {
		entries = append(entries, Entry{
			Kind:       EntryActivity,
			OccurredAt: activities[i].CreatedAt,
			Activity:   &activities[i],
		})
	}
	for i := range followUps {
		entries = append(entries, Entry{
			Kind:       EntryFollowUp,
			OccurredAt: followUps[i].ScheduledAt,
			FollowUp:   &followUps[i],
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].OccurredAt.After(entries[j].OccurredAt)
	})

	return entries
}
