package handler

import (
	"net/http"

	"estate_crm_backend/internal/leads/service"
	"estate_crm_backend/internal/leads/transport"
	"estate_crm_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// RegisterPublicRoutes mounts the unauthenticated inquiry endpoint behind
// its own stricter rate limiter.
func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup, limiter *httpkit.PublicFormRateLimiter) {
	v1.POST("/leads/public", limiter.RateLimit(), h.capturePublic)
}

func (h *Handler) capturePublic(c *gin.Context) {
	var req transport.PublicLeadRequest
	if !h.bind(c, &req) {
		return
	}

	lead, err := h.svc.CapturePublicLead(c.Request.Context(), service.CapturePublicLeadInput{
		Name:          req.Name,
		Phone:         req.Phone,
		Email:         req.Email,
		Budget:        req.Budget,
		Notes:         req.Notes,
		ReferralCode:  req.ReferralCode,
		SubmittedFrom: req.SubmittedFrom,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	// The public form only needs an acknowledgement; the full lead shape
	// is not exposed to anonymous callers.
	httpkit.JSON(c, http.StatusCreated, gin.H{
		"id":      lead.ID,
		"message": "Thank you for your inquiry. Our team will contact you shortly.",
	})
}
