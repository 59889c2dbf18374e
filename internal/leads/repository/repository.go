package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"estate_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const leadNotFoundMsg = "lead not found"

// LeadMetadata is the structured attribution bag carried on a lead.
// It replaces the open-ended metadata map of earlier revisions: only the
// three attribution fields are ever read back.
type LeadMetadata struct {
	ReferralCode     string     `json:"referralCode,omitempty"`
	ChannelPartnerID *uuid.UUID `json:"channelPartnerId,omitempty"`
	SubmittedFrom    string     `json:"submittedFrom,omitempty"`
}

// Lead represents the lead database model.
// Budget is a numeric string, never a float: amounts round-trip through the
// API without precision loss and are only interpreted numerically at the
// formatting boundary.
type Lead struct {
	ID              uuid.UUID
	Name            string
	Phone           string
	Email           *string
	Status          string
	Source          *string
	AssignedAgentID *uuid.UUID
	Budget          *string
	Notes           *string
	Metadata        *LeadMetadata
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// LeadUpdate carries the optional fields of a partial lead update.
// Nil fields are left untouched.
type LeadUpdate struct {
	Name            *string
	Phone           *string
	Email           *string
	Status          *string
	Source          *string
	AssignedAgentID *uuid.UUID
	Budget          *string
	Notes           *string
}

// LeadStats aggregates the dashboard counters for the leads listing.
type LeadStats struct {
	Total     int
	Converted int
	Hot       int
	ThisMonth int
}

// Repository provides database operations for leads, follow-ups, and
// activities.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new leads repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const leadSelectCols = `
	id, name, phone, email, status, source, assigned_agent_id, budget, notes, metadata, created_at, updated_at`

// CreateLead inserts a new lead.
func (r *Repository) CreateLead(ctx context.Context, lead *Lead) error {
	metadataJSON, err := marshalMetadata(lead.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO leads (
			id, name, phone, email, status, source, assigned_agent_id, budget, notes, metadata, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)`

	_, err = r.pool.Exec(ctx, query,
		lead.ID, lead.Name, lead.Phone, lead.Email, lead.Status, lead.Source,
		lead.AssignedAgentID, lead.Budget, lead.Notes, metadataJSON, lead.CreatedAt, lead.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}

	return nil
}

// GetLead retrieves a lead by its ID.
func (r *Repository) GetLead(ctx context.Context, id uuid.UUID) (*Lead, error) {
	query := `SELECT` + leadSelectCols + ` FROM leads WHERE id = $1`

	lead, err := scanLead(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(leadNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	return lead, nil
}

// ListLeads retrieves all leads, newest first.
func (r *Repository) ListLeads(ctx context.Context) ([]Lead, error) {
	query := `SELECT` + leadSelectCols + ` FROM leads ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	return collectLeads(rows)
}

// ListLeadsByPartner retrieves leads attributed to a channel partner,
// newest first. Attribution lives in the metadata JSONB.
func (r *Repository) ListLeadsByPartner(ctx context.Context, partnerID uuid.UUID) ([]Lead, error) {
	query := `SELECT` + leadSelectCols + `
		FROM leads
		WHERE metadata->>'channelPartnerId' = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, partnerID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list partner leads: %w", err)
	}
	defer rows.Close()

	return collectLeads(rows)
}

// UpdateLead applies a partial update and returns the updated lead.
func (r *Repository) UpdateLead(ctx context.Context, id uuid.UUID, update LeadUpdate) (*Lead, error) {
	query := `
		UPDATE leads SET
			name = COALESCE($2, name),
			phone = COALESCE($3, phone),
			email = COALESCE($4, email),
			status = COALESCE($5, status),
			source = COALESCE($6, source),
			assigned_agent_id = COALESCE($7, assigned_agent_id),
			budget = COALESCE($8, budget),
			notes = COALESCE($9, notes),
			updated_at = $10
		WHERE id = $1
		RETURNING` + leadSelectCols

	lead, err := scanLead(r.pool.QueryRow(ctx, query,
		id, update.Name, update.Phone, update.Email, update.Status, update.Source,
		update.AssignedAgentID, update.Budget, update.Notes, time.Now(),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(leadNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}

	return lead, nil
}

// SetLeadAttribution writes the channel-partner attribution metadata.
// This is the only metadata write after creation.
func (r *Repository) SetLeadAttribution(ctx context.Context, id uuid.UUID, metadata *LeadMetadata) error {
	metadataJSON, err := marshalMetadata(metadata)
	if err != nil {
		return err
	}

	result, err := r.pool.Exec(ctx,
		`UPDATE leads SET metadata = $2, updated_at = $3 WHERE id = $1`,
		id, metadataJSON, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to set lead attribution: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(leadNotFoundMsg)
	}

	return nil
}

// GetLeadStats computes the dashboard counters in one round trip.
// "Hot" leads are those actively being worked: qualified or in negotiation.
func (r *Repository) GetLeadStats(ctx context.Context) (LeadStats, error) {
	var stats LeadStats
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'converted'),
			COUNT(*) FILTER (WHERE status IN ('qualified', 'negotiation')),
			COUNT(*) FILTER (WHERE created_at >= date_trunc('month', now()))
		FROM leads
	`).Scan(&stats.Total, &stats.Converted, &stats.Hot, &stats.ThisMonth)
	if err != nil {
		return LeadStats{}, fmt.Errorf("failed to get lead stats: %w", err)
	}

	return stats, nil
}

// leadRowScanner is satisfied by pgx.Rows and pgx.Row so that scanLead can
// be shared between single-row and multi-row queries.
type leadRowScanner interface {
	Scan(dest ...any) error
}

func scanLead(s leadRowScanner) (*Lead, error) {
	var lead Lead
	var rawMetadata []byte
	if err := s.Scan(
		&lead.ID,
		&lead.Name,
		&lead.Phone,
		&lead.Email,
		&lead.Status,
		&lead.Source,
		&lead.AssignedAgentID,
		&lead.Budget,
		&lead.Notes,
		&rawMetadata,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(rawMetadata) > 0 {
		var metadata LeadMetadata
		if err := json.Unmarshal(rawMetadata, &metadata); err == nil {
			lead.Metadata = &metadata
		}
	}
	return &lead, nil
}

func collectLeads(rows pgx.Rows) ([]Lead, error) {
	items := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		items = append(items, *lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leads: %w", err)
	}
	return items, nil
}

func marshalMetadata(metadata *LeadMetadata) ([]byte, error) {
	if metadata == nil {
		return nil, nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal lead metadata: %w", err)
	}
	return data, nil
}
