// Package partners wires the channel partner bounded context: partner
// registration, referral code resolution, and attribution views.
package partners

import (
	"context"

	apphttp "estate_crm_backend/internal/http"
	leadsservice "estate_crm_backend/internal/leads/service"
	"estate_crm_backend/internal/partners/handler"
	"estate_crm_backend/internal/partners/repository"
	"estate_crm_backend/internal/partners/service"
	"estate_crm_backend/platform/config"
	"estate_crm_backend/platform/logger"
	"estate_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module wires the partners bounded context.
type Module struct {
	service *service.Service
	handler *handler.Handler
}

// NewModule constructs the partners module. The leads module is attached
// afterwards with AttachLeadSource because it is built later in the
// composition root.
func NewModule(pool *pgxpool.Pool, cfg config.AppConfig, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	return &Module{
		service: svc,
		handler: handler.New(svc, cfg, val, log),
	}
}

// AttachLeadSource wires the leads module in for attribution views.
func (m *Module) AttachLeadSource(leads service.LeadSource) {
	m.service.AttachLeadSource(leads)
}

// Directory adapts the partners service to the referral resolution
// interface the leads module consumes.
func (m *Module) Directory() leadsservice.PartnerDirectory {
	return &directory{svc: m.service}
}

type directory struct {
	svc *service.Service
}

func (d *directory) ResolveReferralCode(ctx context.Context, code string) (*leadsservice.PartnerRef, error) {
	p, err := d.svc.FindByReferralCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	return &leadsservice.PartnerRef{ID: p.ID, Name: p.Name}, nil
}

// Name implements http.Module.
func (m *Module) Name() string { return "partners" }

// RegisterRoutes implements http.Module.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected)
}
