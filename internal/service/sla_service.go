package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-engine/internal/analytics"
	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/events"
	"github.com/spec-kit/sla-engine/internal/observability"
	"github.com/spec-kit/sla-engine/internal/repository"
	"github.com/spec-kit/sla-engine/internal/sla"
	apperrors "github.com/spec-kit/sla-engine/pkg/util/errorutil"
)

// SLAService runs the evaluator and aggregator over ticket snapshots and
// writes back the derived sla_violated flag.
type SLAService struct {
	tickets    repository.TicketRepository
	evaluator  *sla.Evaluator
	aggregator *analytics.Aggregator
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// SLADependencies bundles collaborators for the SLA service.
type SLADependencies struct {
	TicketRepo repository.TicketRepository
	Evaluator  *sla.Evaluator
	Aggregator *analytics.Aggregator
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewSLAService constructs the service.
func NewSLAService(deps SLADependencies) *SLAService {
	return &SLAService{
		tickets:    deps.TicketRepo,
		evaluator:  deps.Evaluator,
		aggregator: deps.Aggregator,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
}

// AdherenceReport aggregates the full ticket set into dashboard metrics.
func (s *SLAService) AdherenceReport(ctx context.Context) (analytics.AdherenceReport, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{})
	if err != nil {
		return analytics.AdherenceReport{}, apperrors.MapError(err)
	}
	return s.aggregator.Aggregate(ticketPointers(tickets), time.Now()), nil
}

// AgingReport buckets open tickets by elapsed age.
func (s *SLAService) AgingReport(ctx context.Context) (analytics.AgingReport, error) {
	tickets, err := s.tickets.ListOpen(ctx)
	if err != nil {
		return analytics.AgingReport{}, apperrors.MapError(err)
	}
	return s.aggregator.AgingReport(ticketPointers(tickets), time.Now()), nil
}

// EvaluateTicket evaluates a single ticket on demand.
func (s *SLAService) EvaluateTicket(ctx context.Context, ticketID string) (sla.Result, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sla.Result{}, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return sla.Result{}, apperrors.MapError(err)
	}
	return s.evaluator.Evaluate(ticket, time.Now())
}

// RefreshOpenTickets re-evaluates every open ticket, persists flag changes
// and emits a violation event for each ticket newly crossing its target.
// Per-ticket failures are logged and skipped; the pass never aborts.
func (s *SLAService) RefreshOpenTickets(ctx context.Context) (int, error) {
	tickets, err := s.tickets.ListOpen(ctx)
	if err != nil {
		return 0, apperrors.MapError(err)
	}

	now := time.Now()
	violations := 0
	for i := range tickets {
		ticket := &tickets[i]
		wasViolated := ticket.SLAViolated

		result, err := s.evaluator.Evaluate(ticket, now)
		if err != nil {
			s.logger.Warn("skipping ticket during sla refresh",
				zap.String("ticket_id", ticket.ID), zap.Error(err))
			continue
		}

		if ticket.SLAViolated != wasViolated {
			if err := s.tickets.SetSLAViolated(ctx, ticket.ID, ticket.SLAViolated); err != nil {
				s.logger.Error("failed to persist sla flag",
					zap.String("ticket_id", ticket.ID), zap.Error(err))
				continue
			}
		}

		if ticket.SLAViolated && !wasViolated {
			violations++
			s.publishViolation(ctx, ticket, result)
		}
	}

	s.metrics.RecordEvaluation(len(tickets), violations)
	return violations, nil
}

func (s *SLAService) publishViolation(ctx context.Context, ticket *domain.Ticket, result sla.Result) {
	if s.dispatcher == nil {
		return
	}
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventSLAViolated,
		TicketID: ticket.ID,
		Payload: events.SLAViolatedPayload{
			Priority:     ticket.Priority,
			ElapsedHours: result.ElapsedHours,
			TargetHours:  result.TargetHours,
			AssigneeID:   ticket.AssigneeID,
			CreatedBy:    ticket.CreatedBy,
		},
	})
}

func ticketPointers(tickets []domain.Ticket) []*domain.Ticket {
	out := make([]*domain.Ticket, len(tickets))
	for i := range tickets {
		out[i] = &tickets[i]
	}
	return out
}
