package domain

import "time"

// AlertType identifies the event kind behind an alert record.
type AlertType string

const (
	AlertTypeSLAViolation  AlertType = "sla_violation"
	AlertTypeStatusChange  AlertType = "status_change"
	AlertTypeAssignment    AlertType = "assignment"
	AlertTypeTicketCreated AlertType = "ticket_created"
	AlertTypeNewMessage    AlertType = "new_message"
)

// AlertSeverity ranks an alert for display and routing.
type AlertSeverity string

const (
	AlertSeverityCritical AlertSeverity = "critical"
	AlertSeverityWarning  AlertSeverity = "warning"
	AlertSeverityInfo     AlertSeverity = "info"
)

// Alert is a notification record produced by the alert classifier and
// handed to the delivery channel. Only IsRead mutates after creation.
type Alert struct {
	ID          string
	TicketID    string
	Type        AlertType
	Severity    AlertSeverity
	Title       string
	Message     string
	RecipientID *string
	IsRead      bool
	CreatedAt   time.Time
}
