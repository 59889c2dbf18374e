package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Activity types recorded on the lead timeline.
const (
	ActivityLeadCreated       = "lead_created"
	ActivityLeadUpdated       = "lead_updated"
	ActivityStatusChanged     = "status_changed"
	ActivityFollowUpScheduled = "follow_up_scheduled"
	ActivityFollowUpCompleted = "follow_up_completed"
)

// Activity is an append-only timeline record. Actor name and email are
// denormalized at write time so the timeline survives user deletion and
// renders without joins.
type Activity struct {
	ID          uuid.UUID
	LeadID      uuid.UUID
	Type        string
	Description *string
	Metadata    map[string]any
	ActorID     *uuid.UUID
	ActorName   *string
	ActorEmail  *string
	CreatedAt   time.Time
}

// RecordActivity appends a timeline record. Activities are never updated
// or deleted.
func (r *Repository) RecordActivity(ctx context.Context, a *Activity) error {
	var metadataJSON []byte
	if len(a.Metadata) > 0 {
		data, err := json.Marshal(a.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal activity metadata: %w", err)
		}
		metadataJSON = data
	}

	query := `
		INSERT INTO lead_activities (
			id, lead_id, type, description, metadata, actor_id, actor_name, actor_email, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)`

	_, err := r.pool.Exec(ctx, query,
		a.ID, a.LeadID, a.Type, a.Description, metadataJSON,
		a.ActorID, a.ActorName, a.ActorEmail, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}

	return nil
}

// ListActivitiesByLead retrieves a lead's activities, newest first.
func (r *Repository) ListActivitiesByLead(ctx context.Context, leadID uuid.UUID) ([]Activity, error) {
	query := `
		SELECT id, lead_id, type, description, metadata, actor_id, actor_name, actor_email, created_at
		FROM lead_activities
		WHERE lead_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	items := make([]Activity, 0)
	for rows.Next() {
		var a Activity
		var rawMetadata []byte
		if err := rows.Scan(
			&a.ID,
			&a.LeadID,
			&a.Type,
			&a.Description,
			&rawMetadata,
			&a.ActorID,
			&a.ActorName,
			&a.ActorEmail,
			&a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		if len(rawMetadata) > 0 {
			_ = json.Unmarshal(rawMetadata, &a.Metadata)
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activities: %w", err)
	}

	return items, nil
}
