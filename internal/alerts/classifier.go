package alerts

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/events"
	apperrors "github.com/spec-kit/sla-engine/pkg/util/errorutil"
)

// Classify maps an engine event to an alert record for the delivery
// channel. Pure mapping: no I/O, no delivery. The recipient is the
// ticket's requester except for assignments, which notify the assignee.
func Classify(event events.Event) (*domain.Alert, error) {
	alert := &domain.Alert{
		ID:        uuid.NewString(),
		TicketID:  event.TicketID,
		CreatedAt: event.Timestamp,
	}

	switch event.Type {
	case events.EventSLAViolated:
		payload, ok := event.Payload.(events.SLAViolatedPayload)
		if !ok {
			return nil, apperrors.NewValidationError("sla_violated event carries wrong payload", nil)
		}
		alert.Type = domain.AlertTypeSLAViolation
		alert.Severity = violationSeverity(payload.Priority)
		alert.Title = "SLA violated"
		alert.Message = fmt.Sprintf("%s ticket open %.1fh, target %.1fh", payload.Priority, payload.ElapsedHours, payload.TargetHours)
		if payload.AssigneeID != nil {
			alert.RecipientID = payload.AssigneeID
		} else {
			creator := payload.CreatedBy
			alert.RecipientID = &creator
		}

	case events.EventTicketStatusChanged:
		payload, ok := event.Payload.(events.TicketStatusChangedPayload)
		if !ok {
			return nil, apperrors.NewValidationError("status_changed event carries wrong payload", nil)
		}
		alert.Type = domain.AlertTypeStatusChange
		alert.Severity = domain.AlertSeverityInfo
		alert.Title = "Ticket status updated"
		alert.Message = fmt.Sprintf("Status changed from %s to %s", payload.OldStatus, payload.NewStatus)
		creator := payload.CreatedBy
		alert.RecipientID = &creator

	case events.EventTicketAssigned:
		payload, ok := event.Payload.(events.TicketAssignedPayload)
		if !ok {
			return nil, apperrors.NewValidationError("assigned event carries wrong payload", nil)
		}
		alert.Type = domain.AlertTypeAssignment
		alert.Severity = domain.AlertSeverityInfo
		alert.Title = "Ticket assigned to you"
		alert.Message = "A ticket has been assigned to you"
		assignee := payload.AssigneeID
		alert.RecipientID = &assignee

	case events.EventTicketCreated:
		payload, ok := event.Payload.(events.TicketCreatedPayload)
		if !ok {
			return nil, apperrors.NewValidationError("created event carries wrong payload", nil)
		}
		alert.Type = domain.AlertTypeTicketCreated
		alert.Severity = domain.AlertSeverityInfo
		alert.Title = "Ticket created"
		alert.Message = fmt.Sprintf("Ticket %s created with priority %s", payload.TicketKey, payload.Priority)
		creator := payload.CreatedBy
		alert.RecipientID = &creator

	case events.EventTicketMessageAdded:
		payload, ok := event.Payload.(events.TicketMessageAddedPayload)
		if !ok {
			return nil, apperrors.NewValidationError("message event carries wrong payload", nil)
		}
		alert.Type = domain.AlertTypeNewMessage
		alert.Severity = domain.AlertSeverityInfo
		alert.Title = "New message on your ticket"
		alert.Message = payload.BodyPreview
		creator := payload.CreatedBy
		alert.RecipientID = &creator

	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown event type %q", event.Type), nil)
	}

	return alert, nil
}

// violationSeverity escalates high-urgency breaches; lower priorities
// surface as warnings so the bell does not cry wolf.
func violationSeverity(priority domain.TicketPriority) domain.AlertSeverity {
	switch priority {
	case domain.TicketPriorityCritical, domain.TicketPriorityHigh:
		return domain.AlertSeverityCritical
	default:
		return domain.AlertSeverityWarning
	}
}
