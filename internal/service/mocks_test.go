package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/repository"
)

type mockTicketRepo struct {
	mock.Mock
}

func (m *mockTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	args := m.Called(ctx, id)
	if ticket := args.Get(0); ticket != nil {
		return ticket.(*domain.Ticket), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTicketRepo) ListOpen(ctx context.Context) ([]domain.Ticket, error) {
	args := m.Called(ctx)
	if tickets := args.Get(0); tickets != nil {
		return tickets.([]domain.Ticket), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTicketRepo) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	args := m.Called(ctx, filter)
	if tickets := args.Get(0); tickets != nil {
		return tickets.([]domain.Ticket), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTicketRepo) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus, resolvedAt *time.Time) error {
	args := m.Called(ctx, id, status, resolvedAt)
	return args.Error(0)
}

func (m *mockTicketRepo) SetSLAViolated(ctx context.Context, id string, violated bool) error {
	args := m.Called(ctx, id, violated)
	return args.Error(0)
}

func (m *mockTicketRepo) Assign(ctx context.Context, id, assigneeID string) error {
	args := m.Called(ctx, id, assigneeID)
	return args.Error(0)
}
