package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-engine/internal/api/dto"
	"github.com/spec-kit/sla-engine/internal/service"
)

// AnalyticsHandler serves adherence and aging dashboards.
type AnalyticsHandler struct {
	sla *service.SLAService
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(slaService *service.SLAService) *AnalyticsHandler {
	return &AnalyticsHandler{sla: slaService}
}

// Adherence GET /tickets/analytics/sla-adherence.
func (h *AnalyticsHandler) Adherence(c *fiber.Ctx) error {
	report, err := h.sla.AdherenceReport(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(dto.FromAdherenceReport(report))
}

// Aging GET /analytics/ticket-aging.
func (h *AnalyticsHandler) Aging(c *fiber.Ctx) error {
	report, err := h.sla.AgingReport(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(dto.FromAgingReport(report))
}
