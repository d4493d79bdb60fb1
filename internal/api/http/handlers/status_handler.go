package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-engine/internal/api/dto"
	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/workflow"
	apperrors "github.com/spec-kit/sla-engine/pkg/util/errorutil"
)

// StatusHandler serves the workflow catalog endpoints the UI uses to
// render the roadmap and gate action buttons.
type StatusHandler struct{}

// NewStatusHandler constructs handler.
func NewStatusHandler() *StatusHandler {
	return &StatusHandler{}
}

// Workflow GET /status/workflow.
func (h *StatusHandler) Workflow(c *fiber.Ctx) error {
	statuses := workflow.Statuses()
	infos := make([]dto.StatusInfoResponse, 0, len(statuses))
	transitions := make(map[domain.TicketStatus][]domain.TicketStatus, len(statuses))
	for _, status := range statuses {
		infos = append(infos, dto.StatusInfoResponse{
			Name:        status.Name,
			Order:       status.Order,
			Color:       status.Color,
			Description: status.Description,
		})
		transitions[status.Name] = workflow.AllowedTransitions(status.Name)
	}

	permissions := make(map[domain.Role]dto.RolePermissionResponse)
	for role, statuses := range workflow.RolePermissions() {
		permissions[role] = dto.RolePermissionResponse{CanUpdate: statuses}
	}

	return c.JSON(dto.WorkflowResponse{
		Statuses:        infos,
		Transitions:     transitions,
		RolePermissions: permissions,
	})
}

// AllowedTransitions GET /status/allowed-transitions/:status.
func (h *StatusHandler) AllowedTransitions(c *fiber.Ctx) error {
	status := domain.TicketStatus(c.Params("status"))
	if !domain.IsKnownStatus(status) {
		return apperrors.NewValidationError("unknown status", map[string]any{"status": string(status)})
	}
	return c.JSON(dto.AllowedTransitionsResponse{
		Status:             status,
		AllowedTransitions: workflow.AllowedTransitions(status),
	})
}
