// Package service implements channel partner management: registration
// with referral code issuance, referral resolution, and per-partner
// lead attribution views.
package service

import (
	"context"
	"crypto/rand"
	"fmt"

	"estate_crm_backend/internal/leads/domain"
	leadsrepo "estate_crm_backend/internal/leads/repository"
	"estate_crm_backend/internal/partners/repository"
	"estate_crm_backend/platform/apperr"
	"estate_crm_backend/platform/logger"
	"estate_crm_backend/platform/phone"
	"estate_crm_backend/platform/sanitize"

	"github.com/google/uuid"
)

// referral codes are short, unambiguous, and typed by hand off printed
// material, so the alphabet drops 0/O and 1/I.
const (
	referralPrefix   = "CP-"
	referralAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"
	referralLength   = 6
	createRetries    = 3
)

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, p *repository.Partner) error
	Get(ctx context.Context, id uuid.UUID) (*repository.Partner, error)
	FindByReferralCode(ctx context.Context, code string) (*repository.Partner, error)
	List(ctx context.Context) ([]repository.Partner, error)
	Update(ctx context.Context, id uuid.UUID, update repository.PartnerUpdate) (*repository.Partner, error)
}

// LeadSource exposes the attributed-lead queries the partners module
// needs from the leads module.
type LeadSource interface {
	ListLeadsByPartner(ctx context.Context, partnerID uuid.UUID) ([]leadsrepo.Lead, error)
}

// Service implements channel partner operations.
type Service struct {
	store Store
	leads LeadSource
	log   *logger.Logger
}

// New creates the partners service. leads is attached separately because
// the leads module is constructed after this one.
func New(store Store, log *logger.Logger) *Service {
	return &Service{store: store, log: log}
}

// AttachLeadSource wires the leads module in once it exists.
func (s *Service) AttachLeadSource(leads LeadSource) {
	s.leads = leads
}

// CreateInput carries a new partner registration.
type CreateInput struct {
	Name  string
	Firm  string
	Phone string
	Email string
}

// Create registers a channel partner and issues a unique referral code.
// Code collisions are retried with a fresh code.
func (s *Service) Create(ctx context.Context, input CreateInput) (*repository.Partner, error) {
	name := sanitize.Text(input.Name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}

	normalizedPhone := phone.NormalizeE164(input.Phone)
	if normalizedPhone == "" {
		return nil, apperr.Validation("phone is required")
	}

	var lastErr error
	for attempt := 0; attempt < createRetries; attempt++ {
		code, err := generateReferralCode()
		if err != nil {
			return nil, err
		}

		p := repository.NewPartner(name, normalizedPhone, code)
		if firm := sanitize.Text(input.Firm); firm != "" {
			p.Firm = &firm
		}
		if input.Email != "" {
			p.Email = &input.Email
		}

		if err := s.store.Create(ctx, p); err != nil {
			if apperr.Is(err, apperr.KindConflict) {
				lastErr = err
				continue
			}
			return nil, err
		}
		return p, nil
	}

	return nil, fmt.Errorf("failed to issue a unique referral code: %w", lastErr)
}

// Get retrieves a single partner.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*repository.Partner, error) {
	return s.store.Get(ctx, id)
}

// List retrieves all partners.
func (s *Service) List(ctx context.Context) ([]repository.Partner, error) {
	return s.store.List(ctx)
}

// UpdateInput carries a partial partner update.
type UpdateInput struct {
	Name   *string
	Firm   *string
	Phone  *string
	Email  *string
	Status *string
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*repository.Partner, error) {
	update := repository.PartnerUpdate{Email: input.Email}

	if input.Name != nil {
		name := sanitize.Text(*input.Name)
		if name == "" {
			return nil, apperr.Validation("name must not be empty")
		}
		update.Name = &name
	}
	if input.Firm != nil {
		firm := sanitize.Text(*input.Firm)
		update.Firm = &firm
	}
	if input.Phone != nil {
		normalized := phone.NormalizeE164(*input.Phone)
		if normalized == "" {
			return nil, apperr.Validation("phone must not be empty")
		}
		update.Phone = &normalized
	}
	if input.Status != nil {
		if *input.Status != repository.StatusActive && *input.Status != repository.StatusInactive {
			return nil, apperr.Validation(fmt.Sprintf("invalid partner status: %q", *input.Status))
		}
		update.Status = input.Status
	}

	return s.store.Update(ctx, id, update)
}

// FindByReferralCode resolves a referral code to its active partner.
// Unknown codes return (nil, nil).
func (s *Service) FindByReferralCode(ctx context.Context, code string) (*repository.Partner, error) {
	return s.store.FindByReferralCode(ctx, code)
}

// PartnerStats summarises a partner's referral performance.
type PartnerStats struct {
	TotalLeads     int
	Converted      int
	ConversionRate float64
}

// Leads retrieves the leads attributed to a partner.
func (s *Service) Leads(ctx context.Context, partnerID uuid.UUID) ([]leadsrepo.Lead, error) {
	if _, err := s.store.Get(ctx, partnerID); err != nil {
		return nil, err
	}
	if s.leads == nil {
		return []leadsrepo.Lead{}, nil
	}
	return s.leads.ListLeadsByPartner(ctx, partnerID)
}

// Stats computes a partner's referral counters.
func (s *Service) Stats(ctx context.Context, partnerID uuid.UUID) (PartnerStats, error) {
	items, err := s.Leads(ctx, partnerID)
	if err != nil {
		return PartnerStats{}, err
	}

	stats := PartnerStats{TotalLeads: len(items)}
	for _, lead := range items {
		if lead.Status == domain.StatusConverted {
			stats.Converted++
		}
	}
	if stats.TotalLeads > 0 {
		stats.ConversionRate = float64(stats.Converted) / float64(stats.TotalLeads) * 100
	}
	return stats, nil
}

func generateReferralCode() (string, error) {
	buf := make([]byte, referralLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate referral code: %w", err)
	}
	code := make([]byte, referralLength)
	for i, b := range buf {
		code[i] = referralAlphabet[int(b)%len(referralAlphabet)]
	}
	return referralPrefix + string(code), nil
}
