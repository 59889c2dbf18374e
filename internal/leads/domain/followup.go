package domain

import (
	"fmt"
	"time"

	"estate_crm_backend/platform/apperr"
)

// Follow-up statuses. These are the only values ever persisted; "overdue"
// is computed at read time and must never be written to storage.
const (
	FollowUpPending   = "pending"
	FollowUpCompleted = "completed"
	FollowUpCancelled = "cancelled"
)

// Follow-up interaction types.
const (
	FollowUpCall     = "call"
	FollowUpMeeting  = "meeting"
	FollowUpEmail    = "email"
	FollowUpWhatsApp = "whatsapp"
)

// Display state for a pending follow-up whose scheduled time has passed.
const FollowUpOverdue = "overdue"

var followUpStatuses = map[string]struct{}{
	FollowUpPending:   {},
	FollowUpCompleted: {},
	FollowUpCancelled: {},
}

var followUpTypes = map[string]struct{}{
	FollowUpCall:     {},
	FollowUpMeeting:  {},
	FollowUpEmail:    {},
	FollowUpWhatsApp: {},
}

// IsValidFollowUpStatus reports whether token is a persistable status.
func IsValidFollowUpStatus(token string) bool {
	_, ok := followUpStatuses[token]
	return ok
}

// IsValidFollowUpType reports whether token is a known interaction type.
func IsValidFollowUpType(token string) bool {
	_, ok := followUpTypes[token]
	return ok
}

// ValidateResolution checks that a follow-up in the given status may be
// resolved to the outcome. Only pending follow-ups can be resolved, and
// the only resolution outcomes are completed and cancelled. Resolving an
// already resolved follow-up is a conflict, not a validation error: the
// request was well formed but arrived too late.
func ValidateResolution(current, outcome string) error {
	if outcome != FollowUpCompleted && outcome != FollowUpCancelled {
		return apperr.Validation(fmt.Sprintf("invalid follow-up resolution: %q", outcome))
	}
	if current != FollowUpPending {
		return apperr.Conflict(fmt.Sprintf("follow-up is already %s", current))
	}
	return nil
}

// FollowUpBadge returns the display status for a follow-up: the persisted
// status, except that a pending follow-up scheduled before now renders as
// overdue.
func FollowUpBadge(status string, scheduledAt, now time.Time) string {
	if status == FollowUpPending && scheduledAt.Before(now) {
		return FollowUpOverdue
	}
	return status
}

// FollowUpLabel converts a follow-up status or type token to display form.
func FollowUpLabel(token string) string {
	return StatusLabel(token)
}
