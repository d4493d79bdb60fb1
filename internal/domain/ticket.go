package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew     TicketStatus = "New"
	TicketStatusOpen    TicketStatus = "Open"
	TicketStatusPending TicketStatus = "Pending"
	TicketStatusClosed  TicketStatus = "Closed"
)

// KnownStatuses lists statuses in canonical happy-path order.
func KnownStatuses() []TicketStatus {
	return []TicketStatus{TicketStatusNew, TicketStatusOpen, TicketStatusPending, TicketStatusClosed}
}

// IsKnownStatus reports whether s is one of the canonical statuses.
func IsKnownStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusNew, TicketStatusOpen, TicketStatusPending, TicketStatusClosed:
		return true
	}
	return false
}

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityCritical TicketPriority = "Critical"
	TicketPriorityHigh     TicketPriority = "High"
	TicketPriorityMedium   TicketPriority = "Medium"
	TicketPriorityLow      TicketPriority = "Low"
)

// KnownPriorities lists priorities from most to least urgent.
func KnownPriorities() []TicketPriority {
	return []TicketPriority{TicketPriorityCritical, TicketPriorityHigh, TicketPriorityMedium, TicketPriorityLow}
}

// IsKnownPriority reports whether p is one of the canonical priorities.
func IsKnownPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityCritical, TicketPriorityHigh, TicketPriorityMedium, TicketPriorityLow:
		return true
	}
	return false
}

// Ticket is the snapshot of a support request as read from the upstream
// ticket store. The engine derives judgments from it; the only fields it
// ever writes back are SLAViolated and ResolvedAt.
type Ticket struct {
	ID          string
	TicketKey   string
	Title       string
	Priority    TicketPriority
	Status      TicketStatus
	CreatedBy   string
	AssigneeID  *string
	SLAViolated bool
	CreatedAt   time.Time
	ResolvedAt  *time.Time
}

// IsOpen reports whether the ticket is in a non-terminal status.
func (t *Ticket) IsOpen() bool {
	return t.Status != TicketStatusClosed
}
