// Package leads wires the lead lifecycle engine: capture, pipeline
// status, follow-up scheduling, the merged activity timeline, and
// channel-partner attribution.
package leads

import (
	"estate_crm_backend/internal/events"
	apphttp "estate_crm_backend/internal/http"
	"estate_crm_backend/internal/leads/handler"
	"estate_crm_backend/internal/leads/repository"
	"estate_crm_backend/internal/leads/service"
	"estate_crm_backend/platform/logger"
	"estate_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module wires the leads bounded context.
type Module struct {
	service *Service
	handler *handler.Handler
}

// Service is the leads service type exposed to other modules and the
// reminder worker.
type Service = service.Service

// NewModule constructs the leads module. partners and reminders may be
// nil when those integrations are disabled.
func NewModule(pool *pgxpool.Pool, partners service.PartnerDirectory, reminders service.ReminderScheduler, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, partners, reminders, bus, log)
	return &Module{
		service: svc,
		handler: handler.New(svc, val, log),
	}
}

// Name implements http.Module.
func (m *Module) Name() string { return "leads" }

// RegisterRoutes implements http.Module.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected)
	m.handler.RegisterPublicRoutes(ctx.V1, ctx.PublicFormRateLimiter)
}

// Service exposes the leads service for composition in main and the
// reminder worker.
func (m *Module) Service() *Service { return m.service }
