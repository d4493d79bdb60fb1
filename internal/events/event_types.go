package events

import (
	"time"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketMessageAdded  EventType = "ticket_message_added"
	EventSLAViolated         EventType = "sla_violated"
)

// Actor encapsulates actor metadata for an event. SLA violations are
// detected by the engine itself and carry no actor.
type Actor struct {
	UserID *string      `json:"user_id,omitempty"`
	Role   *domain.Role `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketKey string                `json:"ticket_key"`
	Priority  domain.TicketPriority `json:"priority"`
	Title     string                `json:"title"`
	CreatedBy string                `json:"created_by"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	CreatedBy string              `json:"created_by"`
	Comment   string              `json:"comment,omitempty"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssigneeID string `json:"assignee_id"`
	CreatedBy  string `json:"created_by"`
}

// TicketMessageAddedPayload payload.
type TicketMessageAddedPayload struct {
	AuthorID    string `json:"author_id"`
	CreatedBy   string `json:"created_by"`
	BodyPreview string `json:"body_preview"`
}

// SLAViolatedPayload payload, emitted when an open ticket first crosses
// its resolution target.
type SLAViolatedPayload struct {
	Priority     domain.TicketPriority `json:"priority"`
	ElapsedHours float64               `json:"elapsed_hours"`
	TargetHours  float64               `json:"target_hours"`
	AssigneeID   *string               `json:"assignee_id,omitempty"`
	CreatedBy    string                `json:"created_by"`
}
