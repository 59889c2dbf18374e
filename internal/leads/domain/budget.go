package domain

import (
	"strconv"
	"strings"

	"estate_crm_backend/platform/apperr"
)

// NormalizeBudget validates a budget expressed as a numeric string and
// returns the trimmed form. Budgets travel the API as strings so that
// large rupee amounts never pass through a float. An empty string means
// "no budget" and normalizes to empty.
func NormalizeBudget(budget string) (string, error) {
	trimmed := strings.TrimSpace(budget)
	if trimmed == "" {
		return "", nil
	}
	amount, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return "", apperr.Validation("budget must be a numeric string")
	}
	if amount < 0 {
		return "", apperr.Validation("budget must not be negative")
	}
	return trimmed, nil
}
