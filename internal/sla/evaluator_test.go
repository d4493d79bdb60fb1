package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/sla-engine/internal/domain"
	apperrors "github.com/spec-kit/sla-engine/pkg/util/errorutil"
)

func timePtr(t time.Time) *time.Time { return &t }

func openTicket(id string, priority domain.TicketPriority, createdAt time.Time) *domain.Ticket {
	return &domain.Ticket{
		ID:        id,
		TicketKey: "TCK-" + id,
		Title:     "ticket " + id,
		Priority:  priority,
		Status:    domain.TicketStatusOpen,
		CreatedBy: "user-1",
		CreatedAt: createdAt,
	}
}

func closedTicket(id string, priority domain.TicketPriority, createdAt, resolvedAt time.Time) *domain.Ticket {
	t := openTicket(id, priority, createdAt)
	t.Status = domain.TicketStatusClosed
	t.ResolvedAt = timePtr(resolvedAt)
	return t
}

func TestEvaluateOpenTicket(t *testing.T) {
	evaluator := NewEvaluator(DefaultPolicyTable(), DefaultAtRiskThreshold)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		priority domain.TicketPriority
		age      time.Duration
		want     ComplianceState
	}{
		{"critical well inside target", domain.TicketPriorityCritical, 1 * time.Hour, ComplianceOnTrack},
		{"critical at 3.5h crosses 80% of 4h", domain.TicketPriorityCritical, 3*time.Hour + 30*time.Minute, ComplianceAtRisk},
		{"critical at 4.1h past target", domain.TicketPriorityCritical, 4*time.Hour + 6*time.Minute, ComplianceViolated},
		{"critical exactly at target", domain.TicketPriorityCritical, 4 * time.Hour, ComplianceViolated},
		{"high just below threshold", domain.TicketPriorityHigh, 6 * time.Hour, ComplianceOnTrack},
		{"high exactly at 80%", domain.TicketPriorityHigh, 6*time.Hour + 24*time.Minute, ComplianceAtRisk},
		{"medium fresh", domain.TicketPriorityMedium, 30 * time.Minute, ComplianceOnTrack},
		{"low aged but inside 72h", domain.TicketPriorityLow, 50 * time.Hour, ComplianceOnTrack},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket := openTicket("t1", tt.priority, now.Add(-tt.age))
			result, err := evaluator.Evaluate(ticket, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Compliance)
			assert.False(t, result.Closed)
			assert.Equal(t, result.Compliance == ComplianceViolated, ticket.SLAViolated)
		})
	}
}

func TestEvaluateClosedTicket(t *testing.T) {
	evaluator := NewEvaluator(DefaultPolicyTable(), DefaultAtRiskThreshold)
	created := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	// Closed tickets judge against resolved_at; "now" must not matter.
	farFuture := created.Add(1000 * time.Hour)

	tests := []struct {
		name       string
		priority   domain.TicketPriority
		resolution time.Duration
		want       ComplianceState
	}{
		{"medium closed at 20h met", domain.TicketPriorityMedium, 20 * time.Hour, ComplianceMet},
		{"medium closed at 30h violated", domain.TicketPriorityMedium, 30 * time.Hour, ComplianceViolated},
		{"medium closed exactly at target met", domain.TicketPriorityMedium, 24 * time.Hour, ComplianceMet},
		{"critical closed in 10 minutes", domain.TicketPriorityCritical, 10 * time.Minute, ComplianceMet},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket := closedTicket("t1", tt.priority, created, created.Add(tt.resolution))
			result, err := evaluator.Evaluate(ticket, farFuture)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Compliance)
			assert.True(t, result.Closed)
		})
	}
}

func TestEvaluateClosedTicketFrozenAfterClose(t *testing.T) {
	evaluator := NewEvaluator(DefaultPolicyTable(), DefaultAtRiskThreshold)
	created := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	ticket := closedTicket("t1", domain.TicketPriorityCritical, created, created.Add(2*time.Hour))

	first, err := evaluator.Evaluate(ticket, created.Add(3*time.Hour))
	require.NoError(t, err)
	second, err := evaluator.Evaluate(ticket, created.Add(300*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, ComplianceMet, second.Compliance)
}

func TestEvaluateViolationIsMonotonic(t *testing.T) {
	evaluator := NewEvaluator(DefaultPolicyTable(), DefaultAtRiskThreshold)
	created := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	ticket := openTicket("t1", domain.TicketPriorityCritical, created)

	violated := false
	for hours := 1.0; hours <= 12; hours += 0.5 {
		now := created.Add(time.Duration(hours * float64(time.Hour)))
		result, err := evaluator.Evaluate(ticket, now)
		require.NoError(t, err)
		if violated {
			assert.Equal(t, ComplianceViolated, result.Compliance,
				"violation must not clear at %.1fh", hours)
		}
		violated = violated || result.Compliance == ComplianceViolated
	}
	assert.True(t, violated)
}

func TestEvaluateRejectsInvalidTickets(t *testing.T) {
	evaluator := NewEvaluator(DefaultPolicyTable(), DefaultAtRiskThreshold)
	now := time.Now()

	t.Run("nil ticket", func(t *testing.T) {
		_, err := evaluator.Evaluate(nil, now)
		assert.True(t, apperrors.IsCode(err, "INVALID_TICKET"))
	})

	t.Run("zero created_at", func(t *testing.T) {
		ticket := &domain.Ticket{ID: "t1", Priority: domain.TicketPriorityHigh, Status: domain.TicketStatusOpen}
		_, err := evaluator.Evaluate(ticket, now)
		assert.True(t, apperrors.IsCode(err, "INVALID_TICKET"))
	})

	t.Run("closed without resolved_at", func(t *testing.T) {
		ticket := openTicket("t1", domain.TicketPriorityHigh, now.Add(-time.Hour))
		ticket.Status = domain.TicketStatusClosed
		_, err := evaluator.Evaluate(ticket, now)
		assert.True(t, apperrors.IsCode(err, "INVALID_TICKET"))
	})

	t.Run("unknown priority", func(t *testing.T) {
		ticket := openTicket("t1", "Urgent", now.Add(-time.Hour))
		_, err := evaluator.Evaluate(ticket, now)
		assert.True(t, apperrors.IsCode(err, "UNKNOWN_PRIORITY"))
	})
}

func TestEvaluateAllIsolatesFailures(t *testing.T) {
	evaluator := NewEvaluator(DefaultPolicyTable(), DefaultAtRiskThreshold)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tickets := []*domain.Ticket{
		openTicket("good-1", domain.TicketPriorityHigh, now.Add(-time.Hour)),
		openTicket("bad-priority", "Whenever", now.Add(-time.Hour)),
		openTicket("good-2", domain.TicketPriorityLow, now.Add(-time.Hour)),
	}

	results, failures := evaluator.EvaluateAll(tickets, now)

	require.Len(t, results, 2)
	assert.Equal(t, "good-1", results[0].TicketID)
	assert.Equal(t, "good-2", results[1].TicketID)

	require.Len(t, failures, 1)
	assert.Equal(t, "bad-priority", failures[0].TicketID)
	assert.True(t, apperrors.IsCode(failures[0].Err, "UNKNOWN_PRIORITY"))
}

func TestNewEvaluatorThresholdFallback(t *testing.T) {
	table := DefaultPolicyTable()

	assert.Equal(t, DefaultAtRiskThreshold, NewEvaluator(table, 0).Threshold())
	assert.Equal(t, DefaultAtRiskThreshold, NewEvaluator(table, 1.5).Threshold())
	assert.Equal(t, 0.9, NewEvaluator(table, 0.9).Threshold())
}
