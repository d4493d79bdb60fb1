package analytics

import (
	"time"

	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/sla"
	apperrors "github.com/spec-kit/sla-engine/pkg/util/errorutil"
)

// Breakdown carries met/violated/at-risk counts for one slice of tickets.
type Breakdown struct {
	Total          int
	ClosedMet      int
	ClosedViolated int
	OpenOnTrack    int
	OpenAtRisk     int
	OpenViolated   int
	// AdherencePct is closed_met / (closed_met + closed_violated) * 100.
	// Nil when no closed tickets exist; a fabricated 100% would mislead.
	AdherencePct *float64
	// AvgResolutionHours averages elapsed time over closed tickets. Nil
	// when none are closed.
	AvgResolutionHours *float64
}

// PriorityBreakdown is a Breakdown keyed by priority.
type PriorityBreakdown struct {
	Priority domain.TicketPriority
	Breakdown
}

// WindowBreakdown is a Breakdown over tickets created inside a trailing
// time window.
type WindowBreakdown struct {
	Label string
	Hours float64
	Breakdown
}

// TicketIssue records a per-ticket failure surfaced alongside partial
// results instead of aborting the whole computation.
type TicketIssue struct {
	TicketID string
	Code     string
	Message  string
}

// AdherenceReport is the full dashboard payload. Given the same ticket
// set and instant it is byte-identical: priorities and windows are emitted
// in fixed order and errors in input order.
type AdherenceReport struct {
	GeneratedAt time.Time
	Overall     Breakdown
	ByPriority  []PriorityBreakdown
	Windows     []WindowBreakdown
	Errors      []TicketIssue
}

// window labels mirror the dashboard's trailing ranges.
var reportWindows = []struct {
	Label string
	Hours float64
}{
	{"24h", 24},
	{"7d", 7 * 24},
	{"30d", 30 * 24},
}

// Aggregator reduces ticket snapshots into adherence and aging reports.
// It is stateless; every call receives its own snapshot.
type Aggregator struct {
	evaluator  *sla.Evaluator
	classifier *sla.AgingClassifier
}

// NewAggregator constructs an aggregator over the given evaluator and
// aging classifier.
func NewAggregator(evaluator *sla.Evaluator, classifier *sla.AgingClassifier) *Aggregator {
	return &Aggregator{evaluator: evaluator, classifier: classifier}
}

// Aggregate produces the adherence report for a snapshot at the given
// instant. Tickets that fail evaluation are excluded from every count and
// reported in Errors, keeping the per-priority sums equal to the overall
// totals.
func (a *Aggregator) Aggregate(tickets []*domain.Ticket, now time.Time) AdherenceReport {
	report := AdherenceReport{GeneratedAt: now}

	type scored struct {
		ticket *domain.Ticket
		result sla.Result
	}
	evaluated := make([]scored, 0, len(tickets))
	for _, ticket := range tickets {
		result, err := a.evaluator.Evaluate(ticket, now)
		if err != nil {
			report.Errors = append(report.Errors, issueFromError(ticket, err))
			continue
		}
		evaluated = append(evaluated, scored{ticket: ticket, result: result})
	}

	overall := &accumulator{}
	perPriority := make(map[domain.TicketPriority]*accumulator)
	for _, priority := range domain.KnownPriorities() {
		perPriority[priority] = &accumulator{}
	}
	windows := make([]*accumulator, len(reportWindows))
	for i := range windows {
		windows[i] = &accumulator{}
	}

	for _, entry := range evaluated {
		overall.add(entry.result)
		if acc, ok := perPriority[entry.ticket.Priority]; ok {
			acc.add(entry.result)
		}
		for i, window := range reportWindows {
			cutoff := now.Add(-time.Duration(window.Hours * float64(time.Hour)))
			if !entry.ticket.CreatedAt.Before(cutoff) {
				windows[i].add(entry.result)
			}
		}
	}

	report.Overall = overall.breakdown()
	for _, priority := range domain.KnownPriorities() {
		report.ByPriority = append(report.ByPriority, PriorityBreakdown{
			Priority:  priority,
			Breakdown: perPriority[priority].breakdown(),
		})
	}
	for i, window := range reportWindows {
		report.Windows = append(report.Windows, WindowBreakdown{
			Label:     window.Label,
			Hours:     window.Hours,
			Breakdown: windows[i].breakdown(),
		})
	}
	return report
}

// accumulator collects counts for one slice.
type accumulator struct {
	total           int
	closedMet       int
	closedViolated  int
	openOnTrack     int
	openAtRisk      int
	openViolated    int
	resolutionHours float64
}

func (acc *accumulator) add(result sla.Result) {
	acc.total++
	if result.Closed {
		if result.Compliance == sla.ComplianceMet {
			acc.closedMet++
		} else {
			acc.closedViolated++
		}
		acc.resolutionHours += result.ElapsedHours
		return
	}
	switch result.Compliance {
	case sla.ComplianceOnTrack:
		acc.openOnTrack++
	case sla.ComplianceAtRisk:
		acc.openAtRisk++
	case sla.ComplianceViolated:
		acc.openViolated++
	}
}

func (acc *accumulator) breakdown() Breakdown {
	b := Breakdown{
		Total:          acc.total,
		ClosedMet:      acc.closedMet,
		ClosedViolated: acc.closedViolated,
		OpenOnTrack:    acc.openOnTrack,
		OpenAtRisk:     acc.openAtRisk,
		OpenViolated:   acc.openViolated,
	}
	closed := acc.closedMet + acc.closedViolated
	if closed > 0 {
		pct := float64(acc.closedMet) / float64(closed) * 100
		b.AdherencePct = &pct
		avg := acc.resolutionHours / float64(closed)
		b.AvgResolutionHours = &avg
	}
	return b
}

func issueFromError(ticket *domain.Ticket, err error) TicketIssue {
	id := ""
	if ticket != nil {
		id = ticket.ID
	}
	domainErr := apperrors.ToDomainError(err)
	return TicketIssue{TicketID: id, Code: domainErr.Code, Message: domainErr.Message}
}
