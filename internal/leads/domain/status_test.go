package domain

import (
	"strings"
	"testing"

	"estate_crm_backend/platform/apperr"
)

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"new", "New"},
		{"contacted", "Contacted"},
		{"site_visit", "Site Visit"},
		{"negotiation", "Negotiation"},
		{"follow_up_completed", "Follow Up Completed"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got := StatusLabel(tt.token)
			if got != tt.want {
				t.Errorf("StatusLabel(%q) = %q, want %q", tt.token, got, tt.want)
			}
		})
	}
}

func TestStatusLabelNeverContainsUnderscore(t *testing.T) {
	for _, status := range AllStatuses {
		if label := StatusLabel(status); strings.Contains(label, "_") {
			t.Errorf("StatusLabel(%q) = %q contains underscore", status, label)
		}
	}
}

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		wantErr bool
	}{
		{"forward move", StatusNew, StatusContacted, false},
		{"skip ahead", StatusNew, StatusConverted, false},
		{"backwards move", StatusNegotiation, StatusContacted, false},
		{"reopen lost lead", StatusLost, StatusQualified, false},
		{"reopen converted lead", StatusConverted, StatusNegotiation, false},
		{"unknown target", StatusNew, "archived", true},
		{"unknown current", "archived", StatusNew, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTransition(tt.from, tt.to)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateTransition(%q, %q) error = %v, wantErr %v", tt.from, tt.to, err, tt.wantErr)
			}
			if err != nil && apperr.GetKind(err) != apperr.KindValidation {
				t.Errorf("expected validation kind, got %v", apperr.GetKind(err))
			}
		})
	}
}

func TestIsValidStatus(t *testing.T) {
	for _, status := range AllStatuses {
		if !IsValidStatus(status) {
			t.Errorf("IsValidStatus(%q) = false, want true", status)
		}
	}
	for _, token := range []string{"", "New", "site visit", "won"} {
		if IsValidStatus(token) {
			t.Errorf("IsValidStatus(%q) = true, want false", token)
		}
	}
}

func TestStatusColorCoversAllStatuses(t *testing.T) {
	fallback := StatusColor("no_such_status")
	for _, status := range AllStatuses {
		if StatusColor(status) == fallback {
			t.Errorf("StatusColor(%q) fell through to the default class", status)
		}
	}
}
