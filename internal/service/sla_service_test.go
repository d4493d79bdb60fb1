package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-engine/internal/analytics"
	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/events"
	"github.com/spec-kit/sla-engine/internal/observability"
	"github.com/spec-kit/sla-engine/internal/repository"
	"github.com/spec-kit/sla-engine/internal/sla"
	apperrors "github.com/spec-kit/sla-engine/pkg/util/errorutil"
)

func newSLAService(repo repository.TicketRepository, dispatcher events.Dispatcher) *SLAService {
	evaluator := sla.NewEvaluator(sla.DefaultPolicyTable(), sla.DefaultAtRiskThreshold)
	return NewSLAService(SLADependencies{
		TicketRepo: repo,
		Evaluator:  evaluator,
		Aggregator: analytics.NewAggregator(evaluator, sla.DefaultAgingClassifier()),
		Dispatcher: dispatcher,
		Metrics:    observability.NewMetrics(),
		Logger:     zap.NewNop(),
	})
}

func TestRefreshOpenTicketsFlagsNewViolations(t *testing.T) {
	repo := new(mockTicketRepo)
	dispatcher := events.NewInMemoryDispatcher()

	var published []events.Event
	dispatcher.Subscribe(events.EventSLAViolated, func(_ context.Context, event events.Event) error {
		published = append(published, event)
		return nil
	})

	now := time.Now()
	tickets := []domain.Ticket{
		{
			ID: "fresh", Priority: domain.TicketPriorityCritical,
			Status: domain.TicketStatusOpen, CreatedBy: "user-1",
			CreatedAt: now.Add(-1 * time.Hour),
		},
		{
			ID: "newly-violated", Priority: domain.TicketPriorityCritical,
			Status: domain.TicketStatusOpen, CreatedBy: "user-1",
			CreatedAt: now.Add(-6 * time.Hour),
		},
		{
			ID: "already-violated", Priority: domain.TicketPriorityCritical,
			Status: domain.TicketStatusOpen, CreatedBy: "user-1",
			CreatedAt: now.Add(-10 * time.Hour), SLAViolated: true,
		},
	}

	repo.On("ListOpen", mock.Anything).Return(tickets, nil)
	repo.On("SetSLAViolated", mock.Anything, "newly-violated", true).Return(nil)

	service := newSLAService(repo, dispatcher)
	violations, err := service.RefreshOpenTickets(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, violations)
	repo.AssertExpectations(t)
	repo.AssertNumberOfCalls(t, "SetSLAViolated", 1)

	// Only the newly crossed ticket alerts; re-alerting every poll for a
	// ticket already flagged would spam the bell.
	require.Len(t, published, 1)
	assert.Equal(t, "newly-violated", published[0].TicketID)
	payload, ok := published[0].Payload.(events.SLAViolatedPayload)
	require.True(t, ok)
	assert.Equal(t, domain.TicketPriorityCritical, payload.Priority)
	assert.Equal(t, "user-1", payload.CreatedBy)
}

func TestRefreshOpenTicketsSkipsBrokenTickets(t *testing.T) {
	repo := new(mockTicketRepo)
	now := time.Now()
	tickets := []domain.Ticket{
		{
			ID: "bad-priority", Priority: "Whenever",
			Status: domain.TicketStatusOpen, CreatedBy: "user-1",
			CreatedAt: now.Add(-time.Hour),
		},
		{
			ID: "ok", Priority: domain.TicketPriorityLow,
			Status: domain.TicketStatusOpen, CreatedBy: "user-1",
			CreatedAt: now.Add(-time.Hour),
		},
	}
	repo.On("ListOpen", mock.Anything).Return(tickets, nil)

	service := newSLAService(repo, events.NewInMemoryDispatcher())
	violations, err := service.RefreshOpenTickets(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, violations)
	repo.AssertNotCalled(t, "SetSLAViolated", mock.Anything, mock.Anything, mock.Anything)
}

func TestEvaluateTicketNotFound(t *testing.T) {
	repo := new(mockTicketRepo)
	repo.On("GetByID", mock.Anything, "missing").Return(nil, pgx.ErrNoRows)

	service := newSLAService(repo, nil)
	_, err := service.EvaluateTicket(context.Background(), "missing")

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestEvaluateTicketOnDemand(t *testing.T) {
	repo := new(mockTicketRepo)
	now := time.Now()
	ticket := &domain.Ticket{
		ID: "t1", Priority: domain.TicketPriorityHigh,
		Status: domain.TicketStatusOpen, CreatedBy: "user-1",
		CreatedAt: now.Add(-2 * time.Hour),
	}
	repo.On("GetByID", mock.Anything, "t1").Return(ticket, nil)

	service := newSLAService(repo, nil)
	result, err := service.EvaluateTicket(context.Background(), "t1")

	require.NoError(t, err)
	assert.Equal(t, sla.ComplianceOnTrack, result.Compliance)
	assert.Equal(t, 8.0, result.TargetHours)
}

func TestAdherenceReportUsesFullSnapshot(t *testing.T) {
	repo := new(mockTicketRepo)
	now := time.Now()
	resolved := now.Add(-1 * time.Hour)
	tickets := []domain.Ticket{
		{
			ID: "closed-met", Priority: domain.TicketPriorityMedium,
			Status: domain.TicketStatusClosed, CreatedBy: "user-1",
			CreatedAt: now.Add(-5 * time.Hour), ResolvedAt: &resolved,
		},
		{
			ID: "open", Priority: domain.TicketPriorityMedium,
			Status: domain.TicketStatusOpen, CreatedBy: "user-1",
			CreatedAt: now.Add(-2 * time.Hour),
		},
	}
	repo.On("ListWithFilter", mock.Anything, repository.TicketFilter{}).Return(tickets, nil)

	service := newSLAService(repo, nil)
	report, err := service.AdherenceReport(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, report.Overall.Total)
	assert.Equal(t, 1, report.Overall.ClosedMet)
	require.NotNil(t, report.Overall.AdherencePct)
	assert.InDelta(t, 100.0, *report.Overall.AdherencePct, 0.001)
}

func TestAgingReportListsOpenOnly(t *testing.T) {
	repo := new(mockTicketRepo)
	now := time.Now()
	tickets := []domain.Ticket{
		{
			ID: "o1", Priority: domain.TicketPriorityLow,
			Status: domain.TicketStatusOpen, CreatedBy: "user-1",
			CreatedAt: now.Add(-30 * time.Hour),
		},
	}
	repo.On("ListOpen", mock.Anything).Return(tickets, nil)

	service := newSLAService(repo, nil)
	report, err := service.AgingReport(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalOpen)
	assert.Equal(t, 1, report.Buckets[1].Count)
}
