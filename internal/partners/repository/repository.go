// Package repository provides database operations for channel partners.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"estate_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Partner statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Partner represents a channel partner who refers leads through a
// unique referral code.
type Partner struct {
	ID           uuid.UUID
	Name         string
	Firm         *string
	Phone        string
	Email        *string
	ReferralCode string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewPartner builds an active partner with fresh timestamps.
func NewPartner(name, phone, referralCode string) *Partner {
	now := time.Now()
	return &Partner{
		ID:           uuid.New(),
		Name:         name,
		Phone:        phone,
		ReferralCode: referralCode,
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Repository provides database operations for channel partners.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new partners repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const partnerSelectCols = `
	id, name, firm, phone, email, referral_code, status, created_at, updated_at`

// Create inserts a new channel partner. A duplicate referral code
// surfaces as a conflict so the caller can regenerate and retry.
func (r *Repository) Create(ctx context.Context, p *Partner) error {
	query := `
		INSERT INTO channel_partners (
			id, name, firm, phone, email, referral_code, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.Firm, p.Phone, p.Email, p.ReferralCode, p.Status, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("referral code already in use")
		}
		return fmt.Errorf("failed to create partner: %w", err)
	}

	return nil
}

// Get retrieves a partner by its ID.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Partner, error) {
	query := `SELECT` + partnerSelectCols + ` FROM channel_partners WHERE id = $1`

	p, err := scanPartner(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("partner not found")
		}
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}

	return p, nil
}

// FindByReferralCode retrieves the active partner owning a referral
// code. An unknown or inactive code returns (nil, nil): the caller
// treats that as "no attribution", not an error.
func (r *Repository) FindByReferralCode(ctx context.Context, code string) (*Partner, error) {
	query := `SELECT` + partnerSelectCols + `
		FROM channel_partners
		WHERE referral_code = $1 AND status = 'active'`

	p, err := scanPartner(r.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find partner by referral code: %w", err)
	}

	return p, nil
}

// List retrieves all partners, newest first.
func (r *Repository) List(ctx context.Context) ([]Partner, error) {
	query := `SELECT` + partnerSelectCols + ` FROM channel_partners ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list partners: %w", err)
	}
	defer rows.Close()

	items := make([]Partner, 0)
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan partner: %w", err)
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate partners: %w", err)
	}

	return items, nil
}

// PartnerUpdate carries the optional fields of a partial partner update.
type PartnerUpdate struct {
	Name   *string
	Firm   *string
	Phone  *string
	Email  *string
	Status *string
}

// Update applies a partial update and returns the updated partner.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, update PartnerUpdate) (*Partner, error) {
	query := `
		UPDATE channel_partners SET
			name = COALESCE($2, name),
			firm = COALESCE($3, firm),
			phone = COALESCE($4, phone),
			email = COALESCE($5, email),
			status = COALESCE($6, status),
			updated_at = $7
		WHERE id = $1
		RETURNING` + partnerSelectCols

	p, err := scanPartner(r.pool.QueryRow(ctx, query,
		id, update.Name, update.Firm, update.Phone, update.Email, update.Status, time.Now(),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("partner not found")
		}
		return nil, fmt.Errorf("failed to update partner: %w", err)
	}

	return p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPartner(s rowScanner) (*Partner, error) {
	var p Partner
	if err := s.Scan(
		&p.ID,
		&p.Name,
		&p.Firm,
		&p.Phone,
		&p.Email,
		&p.ReferralCode,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func isUniqueViolation(err error) bool {
	// 23505 is the Postgres unique_violation code.
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
