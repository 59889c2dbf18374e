package repository

import (
	"strings"
	"testing"
)

func TestListFollowUpsByLeadQueryOrdersByScheduledTime(t *testing.T) {
	query := strings.ToLower(listFollowUpsByLeadQuery)

	requiredFragments := []string{
		"from follow_ups",
		"where lead_id = $1",
		"order by scheduled_at desc, created_at desc",
	}

	for _, fragment := range requiredFragments {
		if !strings.Contains(query, fragment) {
			t.Fatalf("expected follow-up listing query fragment %q to be present", fragment)
		}
	}
}
