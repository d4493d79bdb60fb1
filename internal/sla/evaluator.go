package sla

import (
	"time"

	"github.com/spec-kit/sla-engine/internal/domain"
	apperrors "github.com/spec-kit/sla-engine/pkg/util/errorutil"
)

// ComplianceState classifies a ticket against its SLA target.
type ComplianceState string

const (
	// Met and Violated are terminal judgments for closed tickets.
	ComplianceMet      ComplianceState = "Met"
	ComplianceViolated ComplianceState = "Violated"
	// OnTrack and AtRisk apply to open tickets only; Violated applies to
	// both open and closed tickets.
	ComplianceOnTrack ComplianceState = "OnTrack"
	ComplianceAtRisk  ComplianceState = "AtRisk"
)

// DefaultAtRiskThreshold is the fraction of target at which an open
// ticket is considered at risk.
const DefaultAtRiskThreshold = 0.8

// Result is the derived, ephemeral judgment for one ticket. It is
// recomputed on demand and never persisted by the engine.
type Result struct {
	TicketID     string
	Priority     domain.TicketPriority
	ElapsedHours float64
	TargetHours  float64
	Compliance   ComplianceState
	Closed       bool
}

// TicketError pairs a per-ticket evaluation failure with its ticket so
// batch callers can isolate bad records without aborting.
type TicketError struct {
	TicketID string
	Err      error
}

// Evaluator decides SLA compliance for tickets against a policy table.
type Evaluator struct {
	policy    *PolicyTable
	threshold float64
}

// NewEvaluator builds an evaluator. A threshold outside (0,1) falls back
// to the default 80%.
func NewEvaluator(policy *PolicyTable, atRiskThreshold float64) *Evaluator {
	if atRiskThreshold <= 0 || atRiskThreshold >= 1 {
		atRiskThreshold = DefaultAtRiskThreshold
	}
	return &Evaluator{policy: policy, threshold: atRiskThreshold}
}

// Evaluate computes the compliance state of a single ticket at the given
// instant. The only mutation performed is the derived SLAViolated flag.
func (e *Evaluator) Evaluate(ticket *domain.Ticket, now time.Time) (Result, error) {
	if ticket == nil {
		return Result{}, apperrors.NewInvalidTicket("", "nil ticket")
	}
	if ticket.CreatedAt.IsZero() {
		return Result{}, apperrors.NewInvalidTicket(ticket.ID, "missing created_at")
	}

	target, err := e.policy.TargetHours(ticket.Priority)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		TicketID:    ticket.ID,
		Priority:    ticket.Priority,
		TargetHours: target,
	}

	if ticket.Status == domain.TicketStatusClosed {
		if ticket.ResolvedAt == nil {
			return Result{}, apperrors.NewInvalidTicket(ticket.ID, "closed without resolved_at")
		}
		result.Closed = true
		result.ElapsedHours = HoursBetween(ticket.CreatedAt, *ticket.ResolvedAt)
		if result.ElapsedHours <= target {
			result.Compliance = ComplianceMet
		} else {
			result.Compliance = ComplianceViolated
		}
	} else {
		result.ElapsedHours = HoursBetween(ticket.CreatedAt, now)
		ratio := result.ElapsedHours / target
		switch {
		case ratio >= 1.0:
			result.Compliance = ComplianceViolated
		case ratio >= e.threshold:
			result.Compliance = ComplianceAtRisk
		default:
			result.Compliance = ComplianceOnTrack
		}
	}

	ticket.SLAViolated = result.Compliance == ComplianceViolated
	return result, nil
}

// EvaluateAll evaluates a batch, isolating per-ticket failures so one bad
// record never blanks a dashboard.
func (e *Evaluator) EvaluateAll(tickets []*domain.Ticket, now time.Time) ([]Result, []TicketError) {
	results := make([]Result, 0, len(tickets))
	var failures []TicketError
	for _, ticket := range tickets {
		result, err := e.Evaluate(ticket, now)
		if err != nil {
			id := ""
			if ticket != nil {
				id = ticket.ID
			}
			failures = append(failures, TicketError{TicketID: id, Err: err})
			continue
		}
		results = append(results, result)
	}
	return results, failures
}

// Threshold exposes the configured at-risk fraction.
func (e *Evaluator) Threshold() float64 {
	return e.threshold
}
