package domain

import (
	"testing"
	"time"

	"estate_crm_backend/platform/apperr"
)

func TestValidateResolution(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		outcome  string
		wantKind apperr.Kind
	}{
		{"complete pending", FollowUpPending, FollowUpCompleted, apperr.KindUnknown},
		{"cancel pending", FollowUpPending, FollowUpCancelled, apperr.KindUnknown},
		{"complete twice", FollowUpCompleted, FollowUpCompleted, apperr.KindConflict},
		{"cancel completed", FollowUpCompleted, FollowUpCancelled, apperr.KindConflict},
		{"complete cancelled", FollowUpCancelled, FollowUpCompleted, apperr.KindConflict},
		{"resolve to pending", FollowUpPending, FollowUpPending, apperr.KindValidation},
		{"resolve to overdue", FollowUpPending, FollowUpOverdue, apperr.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateResolution(tt.current, tt.outcome)
			if tt.wantKind == apperr.KindUnknown {
				if err != nil {
					t.Fatalf("ValidateResolution(%q, %q) = %v, want nil", tt.current, tt.outcome, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidateResolution(%q, %q) = nil, want %v", tt.current, tt.outcome, tt.wantKind)
			}
			if got := apperr.GetKind(err); got != tt.wantKind {
				t.Errorf("kind = %v, want %v", got, tt.wantKind)
			}
		})
	}
}

func TestFollowUpBadge(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		status      string
		scheduledAt time.Time
		want        string
	}{
		{"pending in future", FollowUpPending, now.Add(time.Hour), FollowUpPending},
		{"pending in past", FollowUpPending, now.Add(-time.Hour), FollowUpOverdue},
		{"pending exactly now", FollowUpPending, now, FollowUpPending},
		{"completed in past stays completed", FollowUpCompleted, now.Add(-48 * time.Hour), FollowUpCompleted},
		{"cancelled in past stays cancelled", FollowUpCancelled, now.Add(-time.Minute), FollowUpCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FollowUpBadge(tt.status, tt.scheduledAt, now)
			if got != tt.want {
				t.Errorf("FollowUpBadge(%q, %v) = %q, want %q", tt.status, tt.scheduledAt, got, tt.want)
			}
		})
	}
}

func TestNormalizeBudget(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain amount", "2500000", "2500000", false},
		{"decimal amount", "2500000.50", "2500000.50", false},
		{"trims whitespace", "  5000 ", "5000", false},
		{"empty means no budget", "", "", false},
		{"blank means no budget", "   ", "", false},
		{"not a number", "25 lakh", "", true},
		{"negative", "-100", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeBudget(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NormalizeBudget(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("NormalizeBudget(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if err != nil && apperr.GetKind(err) != apperr.KindValidation {
				t.Errorf("expected validation kind, got %v", apperr.GetKind(err))
			}
		})
	}
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"seconds ago", now.Add(-30 * time.Second), "just now"},
		{"minutes ago", now.Add(-5 * time.Minute), "5m ago"},
		{"hours ago", now.Add(-3 * time.Hour), "3h ago"},
		{"days ago", now.Add(-2 * 24 * time.Hour), "2d ago"},
		{"older than a week", now.Add(-10 * 24 * time.Hour), "5 Jun 2025"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RelativeTime(tt.t, now); got != tt.want {
				t.Errorf("RelativeTime() = %q, want %q", got, tt.want)
			}
		})
	}
}
