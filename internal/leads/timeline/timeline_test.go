package timeline

import (
	"testing"
	"time"

	"estate_crm_backend/internal/leads/repository"

	"github.com/google/uuid"
)

func activityAt(t time.Time) repository.Activity {
	return repository.Activity{
		ID:        uuid.New(),
		Type:      repository.ActivityLeadCreated,
		CreatedAt: t,
	}
}

func followUpAt(scheduled time.Time) repository.FollowUp {
	return repository.FollowUp{
		ID:          uuid.New(),
		Type:        "call",
		Status:      "pending",
		ScheduledAt: scheduled,
	}
}

func TestMergeInterleavesByTimestamp(t *testing.T) {
	base := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	activities := []repository.Activity{
		activityAt(base.Add(time.Hour)), // 10:00
		activityAt(base),                // 09:00
	}
	followUps := []repository.FollowUp{
		followUpAt(base.Add(30 * time.Minute)), // 09:30
	}

	entries := Merge(activities, followUps)

	wantKinds := []string{EntryActivity, EntryFollowUp, EntryActivity}
	if len(entries) != len(wantKinds) {
		t.Fatalf("got %d entries, want %d", len(entries), len(wantKinds))
	}
	for i, kind := range wantKinds {
		if entries[i].Kind != kind {
			t.Errorf("entry %d kind = %q, want %q", i, entries[i].Kind, kind)
		}
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].OccurredAt.After(entries[i-1].OccurredAt) {
			t.Errorf("entries not in descending order at index %d", i)
		}
	}
}

func TestMergeFollowUpSortsByScheduledTime(t *testing.T) {
	// A follow-up created yesterday but scheduled for tomorrow must sit
	// above today's activities.
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	fu := followUpAt(now.Add(24 * time.Hour))
	fu.CreatedAt = now.Add(-24 * time.Hour)

	entries := Merge([]repository.Activity{activityAt(now)}, []repository.FollowUp{fu})

	if entries[0].Kind != EntryFollowUp {
		t.Fatalf("first entry kind = %q, want %q", entries[0].Kind, EntryFollowUp)
	}
}

func TestMergeStableOnTies(t *testing.T) {
	at := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	a := activityAt(at)
	fu := followUpAt(at)

	entries := Merge([]repository.Activity{a}, []repository.FollowUp{fu})

	if entries[0].Kind != EntryActivity || entries[1].Kind != EntryFollowUp {
		t.Errorf("tie order = [%s %s], want activity before follow_up", entries[0].Kind, entries[1].Kind)
	}
}

func TestMergeToleratesNilInputs(t *testing.T) {
	if got := Merge(nil, nil); len(got) != 0 {
		t.Errorf("Merge(nil, nil) returned %d entries, want 0", len(got))
	}

	fu := followUpAt(time.Now())
	entries := Merge(nil, []repository.FollowUp{fu})
	if len(entries) != 1 || entries[0].Kind != EntryFollowUp {
		t.Errorf("expected a single follow_up entry, got %+v", entries)
	}

	a := activityAt(time.Now())
	entries = Merge([]repository.Activity{a}, nil)
	if len(entries) != 1 || entries[0].Kind != EntryActivity {
		t.Errorf("expected a single activity entry, got %+v", entries)
	}
}

func TestMergeEntryCarriesMatchingRecord(t *testing.T) {
	a := activityAt(time.Now())
	fu := followUpAt(time.Now().Add(-time.Hour))

	entries := Merge([]repository.Activity{a}, []repository.FollowUp{fu})

	for _, e := range entries {
		switch e.Kind {
		case EntryActivity:
			if e.Activity == nil || e.FollowUp != nil {
				t.Errorf("activity entry must set Activity only: %+v", e)
			}
		case EntryFollowUp:
			if e.FollowUp == nil || e.Activity != nil {
				t.Errorf("follow_up entry must set FollowUp only: %+v", e)
			}
		}
	}
}
