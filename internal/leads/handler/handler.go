// Package handler exposes the leads HTTP endpoints.
package handler

import (
	"net/http"
	"time"

	"estate_crm_backend/internal/leads/service"
	"estate_crm_backend/internal/leads/transport"
	"estate_crm_backend/platform/httpkit"
	"estate_crm_backend/platform/logger"
	"estate_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler serves the authenticated leads API.
type Handler struct {
	svc *service.Service
	val *validator.Validator
	log *logger.Logger
}

// New creates a leads handler.
func New(svc *service.Service, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{svc: svc, val: val, log: log}
}

// bind decodes and validates a JSON request body, writing the error
// response itself. Returns false when the request was rejected.
func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	return true
}

// RegisterRoutes mounts the authenticated leads routes.
func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	leads := protected.Group("/leads")
	{
		leads.POST("", h.create)
		leads.GET("", h.list)
		leads.GET("/stats", h.stats)
		leads.GET("/statuses", h.statusOptions)
		leads.GET("/:id", h.get)
		leads.PATCH("/:id", h.update)
		leads.PATCH("/:id/status", h.changeStatus)
		leads.POST("/:id/attribution", h.attribute)
		leads.GET("/:id/timeline", h.timeline)
		leads.GET("/:id/follow-ups", h.listFollowUps)
		leads.POST("/:id/follow-ups", h.scheduleFollowUp)
	}

	protected.PATCH("/follow-ups/:id/resolve", h.resolveFollowUp)
}

func (h *Handler) create(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.CreateLeadRequest
	if !h.bind(c, &req) {
		return
	}

	lead, err := h.svc.CreateLead(c.Request.Context(), service.CreateLeadInput{
		Name:            req.Name,
		Phone:           req.Phone,
		Email:           req.Email,
		Source:          req.Source,
		Budget:          req.Budget,
		Notes:           req.Notes,
		AssignedAgentID: req.AssignedAgentID,
	}, actorFrom(identity))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.FromLead(lead))
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.ListLeads(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromLeads(items))
}

func (h *Handler) get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	lead, err := h.svc.GetLead(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromLead(lead))
}

func (h *Handler) update(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.UpdateLeadRequest
	if !h.bind(c, &req) {
		return
	}

	lead, err := h.svc.UpdateLead(c.Request.Context(), id, service.UpdateLeadInput{
		Name:            req.Name,
		Phone:           req.Phone,
		Email:           req.Email,
		Source:          req.Source,
		Budget:          req.Budget,
		Notes:           req.Notes,
		AssignedAgentID: req.AssignedAgentID,
	}, actorFrom(identity))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.FromLead(lead))
}

func (h *Handler) changeStatus(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.ChangeStatusRequest
	if !h.bind(c, &req) {
		return
	}

	lead, err := h.svc.ChangeStatus(c.Request.Context(), id, req.Status, actorFrom(identity))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.FromLead(lead))
}

func (h *Handler) attribute(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.AttributeLeadRequest
	if !h.bind(c, &req) {
		return
	}

	lead, err := h.svc.AttributeLead(c.Request.Context(), id, req.ReferralCode, actorFrom(identity))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.FromLead(lead))
}

func (h *Handler) timeline(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.svc.GetTimeline(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.FromTimeline(result, time.Now()))
}

func (h *Handler) listFollowUps(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	views, err := h.svc.ListFollowUps(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.FollowUpResponse, len(views))
	for i, v := range views {
		out[i] = transport.FromFollowUpView(v)
	}
	httpkit.OK(c, out)
}

func (h *Handler) scheduleFollowUp(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.ScheduleFollowUpRequest
	if !h.bind(c, &req) {
		return
	}

	fu, err := h.svc.ScheduleFollowUp(c.Request.Context(), service.ScheduleFollowUpInput{
		LeadID:      id,
		Type:        req.Type,
		ScheduledAt: req.ScheduledAt,
		Notes:       req.Notes,
		Reminder:    req.Reminder,
	}, actorFrom(identity))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.FromFollowUp(fu, time.Now()))
}

func (h *Handler) resolveFollowUp(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.ResolveFollowUpRequest
	if !h.bind(c, &req) {
		return
	}

	fu, err := h.svc.ResolveFollowUp(c.Request.Context(), service.ResolveFollowUpInput{
		FollowUpID: id,
		Outcome:    req.Outcome,
	}, actorFrom(identity))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.FromFollowUp(fu, time.Now()))
}

func (h *Handler) stats(c *gin.Context) {
	stats, err := h.svc.GetStats(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromStats(stats))
}

func (h *Handler) statusOptions(c *gin.Context) {
	httpkit.OK(c, transport.StatusOptions())
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid id", nil)
		return uuid.Nil, false
	}
	return id, true
}

func actorFrom(identity httpkit.Identity) service.Actor {
	return service.Actor{ID: identity.UserID()}
}
