package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"estate_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// FollowUp represents a scheduled interaction with a lead. Status only
// ever holds pending, completed, or cancelled; the overdue display state
// is derived when serving, never stored.
type FollowUp struct {
	ID          uuid.UUID
	LeadID      uuid.UUID
	Type        string
	Status      string
	ScheduledAt time.Time
	Notes       *string
	CompletedAt *time.Time
	CreatedBy   *uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

const followUpSelectCols = `
	id, lead_id, type, status, scheduled_at, notes, completed_at, created_by, created_at, updated_at`

// listFollowUpsByLeadQuery returns a lead's follow-ups ordered by
// scheduled time descending, with creation time as the tiebreaker so
// same-slot entries come back in a stable order. The "latest" follow-up
// is defined as the first row of this ordering.
const listFollowUpsByLeadQuery = `SELECT` + followUpSelectCols + `
	FROM follow_ups
	WHERE lead_id = $1
	ORDER BY scheduled_at DESC, created_at DESC`

// CreateFollowUp inserts a new follow-up.
func (r *Repository) CreateFollowUp(ctx context.Context, fu *FollowUp) error {
	query := `
		INSERT INTO follow_ups (
			id, lead_id, type, status, scheduled_at, notes, completed_at, created_by, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)`

	_, err := r.pool.Exec(ctx, query,
		fu.ID, fu.LeadID, fu.Type, fu.Status, fu.ScheduledAt, fu.Notes,
		fu.CompletedAt, fu.CreatedBy, fu.CreatedAt, fu.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create follow-up: %w", err)
	}

	return nil
}

// GetFollowUp retrieves a follow-up by its ID.
func (r *Repository) GetFollowUp(ctx context.Context, id uuid.UUID) (*FollowUp, error) {
	query := `SELECT` + followUpSelectCols + ` FROM follow_ups WHERE id = $1`

	fu, err := scanFollowUp(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("follow-up not found")
		}
		return nil, fmt.Errorf("failed to get follow-up: %w", err)
	}

	return fu, nil
}

// ListFollowUpsByLead retrieves a lead's follow-ups, newest scheduled
// first.
func (r *Repository) ListFollowUpsByLead(ctx context.Context, leadID uuid.UUID) ([]FollowUp, error) {
	rows, err := r.pool.Query(ctx, listFollowUpsByLeadQuery, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list follow-ups: %w", err)
	}
	defer rows.Close()

	items := make([]FollowUp, 0)
	for rows.Next() {
		fu, err := scanFollowUp(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan follow-up: %w", err)
		}
		items = append(items, *fu)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate follow-ups: %w", err)
	}

	return items, nil
}

// ResolveFollowUp moves a pending follow-up to a terminal status. The
// WHERE clause re-checks pending so two racing resolutions cannot both
// succeed; the loser sees no rows and the caller maps that to a conflict.
func (r *Repository) ResolveFollowUp(ctx context.Context, id uuid.UUID, status string, completedAt *time.Time) (*FollowUp, error) {
	query := `
		UPDATE follow_ups SET
			status = $2,
			completed_at = $3,
			updated_at = $4
		WHERE id = $1 AND status = 'pending'
		RETURNING` + followUpSelectCols

	fu, err := scanFollowUp(r.pool.QueryRow(ctx, query, id, status, completedAt, time.Now()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("failed to resolve follow-up: %w", err)
	}

	return fu, nil
}

// ListDueFollowUps retrieves pending follow-ups scheduled inside the
// window, used by the reminder worker.
func (r *Repository) ListDueFollowUps(ctx context.Context, from, until time.Time) ([]FollowUp, error) {
	query := `SELECT` + followUpSelectCols + `
		FROM follow_ups
		WHERE status = 'pending' AND scheduled_at >= $1 AND scheduled_at < $2
		ORDER BY scheduled_at ASC`

	rows, err := r.pool.Query(ctx, query, from, until)
	if err != nil {
		return nil, fmt.Errorf("failed to list due follow-ups: %w", err)
	}
	defer rows.Close()

	items := make([]FollowUp, 0)
	for rows.Next() {
		fu, err := scanFollowUp(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan follow-up: %w", err)
		}
		items = append(items, *fu)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate due follow-ups: %w", err)
	}

	return items, nil
}

func scanFollowUp(s leadRowScanner) (*FollowUp, error) {
	var fu FollowUp
	if err := s.Scan(
		&fu.ID,
		&fu.LeadID,
		&fu.Type,
		&fu.Status,
		&fu.ScheduledAt,
		&fu.Notes,
		&fu.CompletedAt,
		&fu.CreatedBy,
		&fu.CreatedAt,
		&fu.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &fu, nil
}
