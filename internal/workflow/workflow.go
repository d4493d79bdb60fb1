package workflow

import (
	"fmt"
	"time"

	"github.com/spec-kit/sla-engine/internal/domain"
	apperrors "github.com/spec-kit/sla-engine/pkg/util/errorutil"
)

// StatusInfo carries display metadata for one lifecycle status. Order and
// color feed the roadmap UI; only the name matters to the machine.
type StatusInfo struct {
	Name        domain.TicketStatus
	Order       int
	Color       string
	Description string
}

// Statuses returns the canonical status catalog in happy-path order.
func Statuses() []StatusInfo {
	return []StatusInfo{
		{Name: domain.TicketStatusNew, Order: 1, Color: "#3b82f6", Description: "Ticket submitted, awaiting triage"},
		{Name: domain.TicketStatusOpen, Order: 2, Color: "#f59e0b", Description: "Claimed by an agent, work in progress"},
		{Name: domain.TicketStatusPending, Order: 3, Color: "#8b5cf6", Description: "Waiting on requester or third party"},
		{Name: domain.TicketStatusClosed, Order: 4, Color: "#10b981", Description: "Resolved and closed"},
	}
}

// transitions is the legal graph: happy path plus Pending recovery.
// Closed is terminal. New->Closed is deliberately absent: a ticket must be
// actioned before closing (the creator-cancel policy is the one exception,
// handled in Decide).
var transitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusNew:     {domain.TicketStatusOpen},
	domain.TicketStatusOpen:    {domain.TicketStatusPending, domain.TicketStatusClosed},
	domain.TicketStatusPending: {domain.TicketStatusOpen, domain.TicketStatusClosed},
	domain.TicketStatusClosed:  {},
}

// rolePermissions maps each role to the statuses from which it may
// initiate a transition. Absent roles fail closed. Normal User carries an
// extra own-ticket constraint enforced in Decide.
var rolePermissions = map[domain.Role][]domain.TicketStatus{
	domain.RoleNormalUser:          {domain.TicketStatusNew},
	domain.RoleTechnicalUser:       {domain.TicketStatusNew, domain.TicketStatusOpen, domain.TicketStatusPending},
	domain.RoleTechnicalSupervisor: {domain.TicketStatusNew, domain.TicketStatusOpen, domain.TicketStatusPending},
	domain.RoleSystemAdmin:         {domain.TicketStatusNew, domain.TicketStatusOpen, domain.TicketStatusPending},
}

// Machine validates status transitions against the graph and role gating.
type Machine struct {
	creatorCancel bool
}

// NewMachine builds a machine. creatorCancel enables the documented
// exception letting a ticket's creator close (cancel) it while still New.
func NewMachine(creatorCancel bool) *Machine {
	return &Machine{creatorCancel: creatorCancel}
}

// AllowedTransitions returns the legal successor statuses regardless of
// role. Unknown statuses yield an empty set.
func AllowedTransitions(current domain.TicketStatus) []domain.TicketStatus {
	next, ok := transitions[current]
	if !ok {
		return []domain.TicketStatus{}
	}
	out := make([]domain.TicketStatus, len(next))
	copy(out, next)
	return out
}

// RolePermissions exposes the can-update map for the workflow endpoint.
func RolePermissions() map[domain.Role][]domain.TicketStatus {
	out := make(map[domain.Role][]domain.TicketStatus, len(rolePermissions))
	for role, statuses := range rolePermissions {
		copied := make([]domain.TicketStatus, len(statuses))
		copy(copied, statuses)
		out[role] = copied
	}
	return out
}

// Decide validates a requested transition. A nil return means allowed;
// otherwise the error carries the specific refusal reason. Any
// unrecognized role or status fails closed.
func (m *Machine) Decide(role domain.Role, creatorID, requesterID string, current, target domain.TicketStatus) error {
	if !domain.IsKnownStatus(current) || !domain.IsKnownStatus(target) {
		return apperrors.NewIllegalTransition("unknown status", map[string]any{
			"from": string(current), "to": string(target),
		})
	}
	if !domain.IsKnownRole(role) {
		return apperrors.NewIllegalTransition("unknown role", map[string]any{
			"role": string(role),
		})
	}

	if current == domain.TicketStatusClosed {
		if target == domain.TicketStatusClosed {
			return apperrors.NewAlreadyClosed("")
		}
		return apperrors.NewIllegalTransition("closed tickets cannot be reopened", map[string]any{
			"from": string(current), "to": string(target),
		})
	}

	if err := m.roleAllows(role, creatorID, requesterID, current); err != nil {
		return err
	}

	// roleAllows has already pinned a Normal User to their own New ticket;
	// the only transition a requester may trigger is the cancel.
	if role == domain.RoleNormalUser {
		if m.creatorCancel && target == domain.TicketStatusClosed {
			return nil
		}
		return apperrors.NewIllegalTransition("requesters may only cancel their own tickets while New", map[string]any{
			"from": string(current), "to": string(target),
		})
	}

	if current == domain.TicketStatusNew && target == domain.TicketStatusClosed {
		return apperrors.NewIllegalTransition("must be actioned before closing", map[string]any{
			"from": string(current), "to": string(target),
		})
	}

	for _, candidate := range transitions[current] {
		if candidate == target {
			return nil
		}
	}
	return apperrors.NewIllegalTransition(
		fmt.Sprintf("cannot move from %s to %s", current, target),
		map[string]any{"from": string(current), "to": string(target)},
	)
}

// CanTransition is the boolean convenience over Decide for UI gating.
// AlreadyClosed counts as not-a-transition.
func (m *Machine) CanTransition(role domain.Role, creatorID, requesterID string, current, target domain.TicketStatus) bool {
	return m.Decide(role, creatorID, requesterID, current, target) == nil
}

// AllowedTransitionsFor filters the graph through role gating so the UI
// shows only actions the caller can actually take.
func (m *Machine) AllowedTransitionsFor(role domain.Role, creatorID, requesterID string, current domain.TicketStatus) []domain.TicketStatus {
	allowed := []domain.TicketStatus{}
	for _, target := range domain.KnownStatuses() {
		if target == current {
			continue
		}
		if m.CanTransition(role, creatorID, requesterID, current, target) {
			allowed = append(allowed, target)
		}
	}
	return allowed
}

// Apply validates and applies a transition to the ticket in place,
// stamping ResolvedAt exactly once on transition into Closed. Re-closing
// a closed ticket returns AlreadyClosed with the ticket untouched.
func (m *Machine) Apply(ticket *domain.Ticket, role domain.Role, requesterID string, target domain.TicketStatus, now time.Time) error {
	if ticket == nil {
		return apperrors.NewInvalidTicket("", "nil ticket")
	}
	if err := m.Decide(role, ticket.CreatedBy, requesterID, ticket.Status, target); err != nil {
		return err
	}
	ticket.Status = target
	if target == domain.TicketStatusClosed && ticket.ResolvedAt == nil {
		stamped := now
		ticket.ResolvedAt = &stamped
	}
	return nil
}

func (m *Machine) roleAllows(role domain.Role, creatorID, requesterID string, current domain.TicketStatus) error {
	permitted, ok := rolePermissions[role]
	if !ok {
		return apperrors.NewIllegalTransition("role has no workflow permissions", map[string]any{
			"role": string(role),
		})
	}
	allowed := false
	for _, status := range permitted {
		if status == current {
			allowed = true
			break
		}
	}
	if !allowed {
		return apperrors.NewIllegalTransition(
			fmt.Sprintf("role %s may not act while ticket is %s", role, current),
			map[string]any{"role": string(role), "from": string(current)},
		)
	}
	if role == domain.RoleNormalUser {
		if creatorID != requesterID {
			return apperrors.NewIllegalTransition("requesters may only act on their own tickets", map[string]any{
				"role": string(role),
			})
		}
		if current != domain.TicketStatusNew {
			return apperrors.NewIllegalTransition("requesters may only act while the ticket is New", map[string]any{
				"from": string(current),
			})
		}
	}
	return nil
}
