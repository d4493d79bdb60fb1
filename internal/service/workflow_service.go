package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/sla-engine/internal/auth"
	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/events"
	"github.com/spec-kit/sla-engine/internal/repository"
	"github.com/spec-kit/sla-engine/internal/workflow"
	apperrors "github.com/spec-kit/sla-engine/pkg/util/errorutil"
)

// WorkflowService validates and applies status transitions. The same
// machine that gates UI buttons re-validates every mutation here, so a
// client cannot bypass workflow rules.
type WorkflowService struct {
	tickets    repository.TicketRepository
	machine    *workflow.Machine
	dispatcher events.Dispatcher
}

// WorkflowDependencies bundles collaborators for the workflow service.
type WorkflowDependencies struct {
	TicketRepo repository.TicketRepository
	Machine    *workflow.Machine
	Dispatcher events.Dispatcher
}

// NewWorkflowService constructs the service.
func NewWorkflowService(deps WorkflowDependencies) *WorkflowService {
	return &WorkflowService{
		tickets:    deps.TicketRepo,
		machine:    deps.Machine,
		dispatcher: deps.Dispatcher,
	}
}

// Machine exposes the state machine for read-only endpoints.
func (s *WorkflowService) Machine() *workflow.Machine {
	return s.machine
}

// UpdateStatus transitions a ticket, stamping resolved_at on close.
// Re-closing a closed ticket returns the ticket and an AlreadyClosed
// signal so batch callers can treat it as a no-op.
func (s *WorkflowService) UpdateStatus(ctx context.Context, principal *auth.Principal, ticketID string, target domain.TicketStatus, comment string) (*domain.Ticket, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	oldStatus := ticket.Status
	if err := s.machine.Apply(ticket, principal.Role, principal.UserID, target, time.Now()); err != nil {
		if apperrors.IsAlreadyClosed(err) {
			return ticket, err
		}
		return nil, err
	}

	if err := s.tickets.UpdateStatus(ctx, ticket.ID, ticket.Status, ticket.ResolvedAt); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    actorFor(principal),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
			CreatedBy: ticket.CreatedBy,
			Comment:   comment,
		},
	})
	return ticket, nil
}

// Assign sets the ticket assignee. Staff tiers only.
func (s *WorkflowService) Assign(ctx context.Context, principal *auth.Principal, ticketID, assigneeID string) (*domain.Ticket, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !principal.Role.IsPrivileged() {
		return nil, apperrors.NewForbidden("insufficient role for assignment")
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !ticket.IsOpen() {
		return nil, apperrors.NewIllegalTransition("closed tickets cannot be reassigned", map[string]any{
			"ticket_id": ticketID,
		})
	}

	if err := s.tickets.Assign(ctx, ticket.ID, assigneeID); err != nil {
		return nil, apperrors.MapError(err)
	}
	ticket.AssigneeID = &assigneeID

	s.publish(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Actor:    actorFor(principal),
		Payload: events.TicketAssignedPayload{
			AssigneeID: assigneeID,
			CreatedBy:  ticket.CreatedBy,
		},
	})
	return ticket, nil
}

func (s *WorkflowService) getTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *WorkflowService) publish(ctx context.Context, event events.Event) {
	publishEvent(ctx, s.dispatcher, event)
}

func actorFor(principal *auth.Principal) events.Actor {
	userID := principal.UserID
	role := principal.Role
	return events.Actor{UserID: &userID, Role: &role}
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = dispatcher.Publish(ctx, event)
}
