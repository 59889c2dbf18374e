// Package handler exposes the channel partners HTTP endpoints.
package handler

import (
	"fmt"
	"net/http"
	"net/url"

	leadstransport "estate_crm_backend/internal/leads/transport"
	"estate_crm_backend/internal/partners/repository"
	"estate_crm_backend/internal/partners/service"
	"estate_crm_backend/internal/partners/transport"
	"estate_crm_backend/platform/config"
	"estate_crm_backend/platform/httpkit"
	"estate_crm_backend/platform/logger"
	"estate_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

// Handler serves the channel partners API.
type Handler struct {
	svc *service.Service
	cfg config.AppConfig
	val *validator.Validator
	log *logger.Logger
}

// New creates a partners handler.
func New(svc *service.Service, cfg config.AppConfig, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{svc: svc, cfg: cfg, val: val, log: log}
}

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

// RegisterRoutes mounts the authenticated partner routes. Management is
// admin-only; the read endpoints are open to any signed-in user.
func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	partners := protected.Group("/partners")
	{
		partners.POST("", httpkit.RequireRole("admin"), h.create)
		partners.PATCH("/:id", httpkit.RequireRole("admin"), h.update)
		partners.GET("", h.list)
		partners.GET("/:id", h.get)
		partners.GET("/:id/leads", h.leads)
		partners.GET("/:id/stats", h.stats)
		partners.GET("/:id/qr", h.referralQR)
	}
}

func (h *Handler) create(c *gin.Context) {
	var req transport.CreatePartnerRequest
	if !h.bind(c, &req) {
		return
	}

	p, err := h.svc.Create(c.Request.Context(), service.CreateInput{
		Name:  req.Name,
		Firm:  req.Firm,
		Phone: req.Phone,
		Email: req.Email,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.FromPartner(p, h.referralLink(p)))
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.PartnerResponse, len(items))
	for i := range items {
		out[i] = transport.FromPartner(&items[i], h.referralLink(&items[i]))
	}
	httpkit.OK(c, out)
}

func (h *Handler) get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	p, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromPartner(p, h.referralLink(p)))
}

func (h *Handler) update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.UpdatePartnerRequest
	if !h.bind(c, &req) {
		return
	}

	p, err := h.svc.Update(c.Request.Context(), id, service.UpdateInput{
		Name:   req.Name,
		Firm:   req.Firm,
		Phone:  req.Phone,
		Email:  req.Email,
		Status: req.Status,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.FromPartner(p, h.referralLink(p)))
}

func (h *Handler) leads(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	items, err := h.svc.Leads(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, leadstransport.FromLeads(items))
}

func (h *Handler) stats(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	stats, err := h.svc.Stats(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromStats(stats))
}

// referralQR serves a PNG QR code pointing at the partner's shareable
// capture-form link, sized for print handouts.
func (h *Handler) referralQR(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	p, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	png, err := qrcode.Encode(h.referralLink(p), qrcode.Medium, qrSize)
	if err != nil {
		h.log.Error("failed to encode referral QR code", "partner_id", p.ID, "error", err)
		httpkit.Error(c, http.StatusInternalServerError, "failed to generate QR code", nil)
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) referralLink(p *repository.Partner) string {
	return fmt.Sprintf("%s/inquiry?ref=%s", h.cfg.GetAppBaseURL(), url.QueryEscape(p.ReferralCode))
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid id", nil)
		return uuid.Nil, false
	}
	return id, true
}
