package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-engine/internal/api/dto"
	"github.com/spec-kit/sla-engine/internal/auth"
	"github.com/spec-kit/sla-engine/internal/service"
	apperrors "github.com/spec-kit/sla-engine/pkg/util/errorutil"
)

// TicketsHandler serves the transition and assignment endpoints. Every
// mutation re-validates against the state machine server-side.
type TicketsHandler struct {
	workflow *service.WorkflowService
	sla      *service.SLAService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(workflowService *service.WorkflowService, slaService *service.SLAService) *TicketsHandler {
	return &TicketsHandler{workflow: workflowService, sla: slaService}
}

// UpdateStatus PUT /tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}

	ticket, err := h.workflow.UpdateStatus(c.Context(), principal, c.Params("id"), req.Status, strings.TrimSpace(req.Comment))
	if err != nil {
		if apperrors.IsAlreadyClosed(err) {
			return c.JSON(fiber.Map{
				"data":   dto.FromTicket(ticket),
				"notice": "already_closed",
			})
		}
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// Assign POST /tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.AssigneeID) == "" {
		return apperrors.NewValidationError("assignee_id required", nil)
	}

	ticket, err := h.workflow.Assign(c.Context(), principal, c.Params("id"), req.AssigneeID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// Evaluate GET /tickets/:id/sla.
func (h *TicketsHandler) Evaluate(c *fiber.Ctx) error {
	result, err := h.sla.EvaluateTicket(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"ticket_id":     result.TicketID,
		"priority":      result.Priority,
		"elapsed_hours": result.ElapsedHours,
		"target_hours":  result.TargetHours,
		"compliance":    result.Compliance,
	}})
}
