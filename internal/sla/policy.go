package sla

import (
	"github.com/spec-kit/sla-engine/internal/domain"
	apperrors "github.com/spec-kit/sla-engine/pkg/util/errorutil"
)

// PolicyTable maps ticket priority to a target resolution duration in hours.
// The table is immutable after construction and safe for concurrent reads.
type PolicyTable struct {
	targets map[domain.TicketPriority]float64
}

// NewPolicyTable validates and builds a policy table. Every canonical
// priority must carry a positive target; anything less would let the
// evaluator produce silently-wrong adherence numbers.
func NewPolicyTable(targetHours map[string]float64) (*PolicyTable, error) {
	if len(targetHours) == 0 {
		return nil, apperrors.NewConfigurationError("sla policy table is empty", nil)
	}
	targets := make(map[domain.TicketPriority]float64, len(targetHours))
	for name, hours := range targetHours {
		if hours <= 0 {
			return nil, apperrors.NewConfigurationError("sla target for "+name+" must be positive", nil)
		}
		targets[domain.TicketPriority(name)] = hours
	}
	for _, priority := range domain.KnownPriorities() {
		if _, ok := targets[priority]; !ok {
			return nil, apperrors.NewConfigurationError("sla policy table missing entry for "+string(priority), nil)
		}
	}
	return &PolicyTable{targets: targets}, nil
}

// DefaultPolicyTable returns the observed production policy:
// Critical=4h, High=8h, Medium=24h, Low=72h.
func DefaultPolicyTable() *PolicyTable {
	table, err := NewPolicyTable(map[string]float64{
		string(domain.TicketPriorityCritical): 4,
		string(domain.TicketPriorityHigh):     8,
		string(domain.TicketPriorityMedium):   24,
		string(domain.TicketPriorityLow):      72,
	})
	if err != nil {
		panic(err)
	}
	return table
}

// TargetHours looks up the resolution target for a priority. Unknown
// priorities fail closed with UnknownPriority rather than defaulting,
// so bad upstream data surfaces instead of skewing aggregates.
func (p *PolicyTable) TargetHours(priority domain.TicketPriority) (float64, error) {
	hours, ok := p.targets[priority]
	if !ok {
		return 0, apperrors.NewUnknownPriority(string(priority))
	}
	return hours, nil
}
