// Package transport defines the request and response shapes for the
// channel partners HTTP API.
package transport

import (
	"time"

	"estate_crm_backend/internal/partners/repository"
	"estate_crm_backend/internal/partners/service"

	"github.com/google/uuid"
)

// CreatePartnerRequest registers a new channel partner.
type CreatePartnerRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Firm  string `json:"firm" validate:"omitempty,max=200"`
	Phone string `json:"phone" validate:"required,max=20"`
	Email string `json:"email" validate:"omitempty,email"`
}

// UpdatePartnerRequest is a partial update; absent fields are untouched.
type UpdatePartnerRequest struct {
	Name   *string `json:"name" validate:"omitempty,max=200"`
	Firm   *string `json:"firm" validate:"omitempty,max=200"`
	Phone  *string `json:"phone" validate:"omitempty,max=20"`
	Email  *string `json:"email" validate:"omitempty,email"`
	Status *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// PartnerResponse is the API representation of a channel partner.
type PartnerResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Firm         *string   `json:"firm,omitempty"`
	Phone        string    `json:"phone"`
	Email        *string   `json:"email,omitempty"`
	ReferralCode string    `json:"referralCode"`
	ReferralLink string    `json:"referralLink,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// FromPartner maps a storage partner to its response shape. referralLink
// is the shareable capture-form URL carrying the partner's code.
func FromPartner(p *repository.Partner, referralLink string) PartnerResponse {
	return PartnerResponse{
		ID:           p.ID,
		Name:         p.Name,
		Firm:         p.Firm,
		Phone:        p.Phone,
		Email:        p.Email,
		ReferralCode: p.ReferralCode,
		ReferralLink: referralLink,
		Status:       p.Status,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// PartnerStatsResponse carries a partner's referral counters.
type PartnerStatsResponse struct {
	TotalLeads     int     `json:"totalLeads"`
	Converted      int     `json:"converted"`
	ConversionRate float64 `json:"conversionRate"`
}

// FromStats maps the service counters.
func FromStats(s service.PartnerStats) PartnerStatsResponse {
	return PartnerStatsResponse{
		TotalLeads:     s.TotalLeads,
		Converted:      s.Converted,
		ConversionRate: s.ConversionRate,
	}
}
