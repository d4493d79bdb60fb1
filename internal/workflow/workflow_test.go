package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/sla-engine/internal/domain"
	apperrors "github.com/spec-kit/sla-engine/pkg/util/errorutil"
)

const (
	creatorID = "user-creator"
	agentID   = "user-agent"
)

func TestAllowedTransitionsGraph(t *testing.T) {
	tests := []struct {
		current domain.TicketStatus
		want    []domain.TicketStatus
	}{
		{domain.TicketStatusNew, []domain.TicketStatus{domain.TicketStatusOpen}},
		{domain.TicketStatusOpen, []domain.TicketStatus{domain.TicketStatusPending, domain.TicketStatusClosed}},
		{domain.TicketStatusPending, []domain.TicketStatus{domain.TicketStatusOpen, domain.TicketStatusClosed}},
		{domain.TicketStatusClosed, []domain.TicketStatus{}},
		{"Bogus", []domain.TicketStatus{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AllowedTransitions(tt.current), "from %s", tt.current)
	}
}

func TestDecideStaffHappyPath(t *testing.T) {
	machine := NewMachine(true)

	staffRoles := []domain.Role{
		domain.RoleTechnicalUser,
		domain.RoleTechnicalSupervisor,
		domain.RoleSystemAdmin,
	}
	legal := []struct {
		from, to domain.TicketStatus
	}{
		{domain.TicketStatusNew, domain.TicketStatusOpen},
		{domain.TicketStatusOpen, domain.TicketStatusPending},
		{domain.TicketStatusOpen, domain.TicketStatusClosed},
		{domain.TicketStatusPending, domain.TicketStatusOpen},
		{domain.TicketStatusPending, domain.TicketStatusClosed},
	}
	for _, role := range staffRoles {
		for _, tt := range legal {
			err := machine.Decide(role, creatorID, agentID, tt.from, tt.to)
			assert.NoError(t, err, "%s: %s -> %s", role, tt.from, tt.to)
		}
	}
}

func TestDecideNewCannotBeClosedByStaff(t *testing.T) {
	machine := NewMachine(true)

	err := machine.Decide(domain.RoleTechnicalUser, creatorID, agentID,
		domain.TicketStatusNew, domain.TicketStatusClosed)

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "ILLEGAL_TRANSITION"))
	assert.Contains(t, err.Error(), "must be actioned before closing")
}

func TestDecideClosedIsTerminal(t *testing.T) {
	machine := NewMachine(true)

	for _, target := range []domain.TicketStatus{
		domain.TicketStatusNew, domain.TicketStatusOpen, domain.TicketStatusPending,
	} {
		err := machine.Decide(domain.RoleSystemAdmin, creatorID, agentID,
			domain.TicketStatusClosed, target)
		require.Error(t, err, "Closed -> %s", target)
		assert.True(t, apperrors.IsCode(err, "ILLEGAL_TRANSITION"))
	}
}

func TestDecideReclosingIsAlreadyClosed(t *testing.T) {
	machine := NewMachine(true)

	err := machine.Decide(domain.RoleSystemAdmin, creatorID, agentID,
		domain.TicketStatusClosed, domain.TicketStatusClosed)

	require.Error(t, err)
	assert.True(t, apperrors.IsAlreadyClosed(err))
}

func TestDecideFailsClosedOnUnknownInput(t *testing.T) {
	machine := NewMachine(true)

	tests := []struct {
		name    string
		role    domain.Role
		current domain.TicketStatus
		target  domain.TicketStatus
	}{
		{"unknown role", "Superuser", domain.TicketStatusOpen, domain.TicketStatusPending},
		{"unknown current status", domain.RoleSystemAdmin, "Reviewing", domain.TicketStatusOpen},
		{"unknown target status", domain.RoleSystemAdmin, domain.TicketStatusOpen, "Archived"},
		{"empty role", "", domain.TicketStatusOpen, domain.TicketStatusPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := machine.Decide(tt.role, creatorID, agentID, tt.current, tt.target)
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, "ILLEGAL_TRANSITION"))
		})
	}
}

func TestDecideCreatorCancel(t *testing.T) {
	t.Run("creator may cancel own New ticket", func(t *testing.T) {
		machine := NewMachine(true)
		err := machine.Decide(domain.RoleNormalUser, creatorID, creatorID,
			domain.TicketStatusNew, domain.TicketStatusClosed)
		assert.NoError(t, err)
	})

	t.Run("disabled by config", func(t *testing.T) {
		machine := NewMachine(false)
		err := machine.Decide(domain.RoleNormalUser, creatorID, creatorID,
			domain.TicketStatusNew, domain.TicketStatusClosed)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, "ILLEGAL_TRANSITION"))
	})

	t.Run("not the creator", func(t *testing.T) {
		machine := NewMachine(true)
		err := machine.Decide(domain.RoleNormalUser, creatorID, "someone-else",
			domain.TicketStatusNew, domain.TicketStatusClosed)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "their own tickets")
	})
}

func TestDecideNormalUserCannotActAfterTriage(t *testing.T) {
	machine := NewMachine(true)

	// Once a ticket leaves New, the requester is out of the workflow even
	// on their own ticket.
	for _, current := range []domain.TicketStatus{domain.TicketStatusOpen, domain.TicketStatusPending} {
		for _, target := range []domain.TicketStatus{
			domain.TicketStatusOpen, domain.TicketStatusPending, domain.TicketStatusClosed,
		} {
			if current == target {
				continue
			}
			err := machine.Decide(domain.RoleNormalUser, creatorID, creatorID, current, target)
			require.Error(t, err, "%s -> %s", current, target)
			assert.True(t, apperrors.IsCode(err, "ILLEGAL_TRANSITION"))
		}
	}
}

func TestDecideNormalUserCannotTriageOwnTicket(t *testing.T) {
	machine := NewMachine(true)

	err := machine.Decide(domain.RoleNormalUser, creatorID, creatorID,
		domain.TicketStatusNew, domain.TicketStatusOpen)

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "ILLEGAL_TRANSITION"))
}

func TestAllowedTransitionsFor(t *testing.T) {
	machine := NewMachine(true)

	tests := []struct {
		name      string
		role      domain.Role
		requester string
		current   domain.TicketStatus
		want      []domain.TicketStatus
	}{
		{"staff on New", domain.RoleTechnicalUser, agentID, domain.TicketStatusNew,
			[]domain.TicketStatus{domain.TicketStatusOpen}},
		{"staff on Open", domain.RoleTechnicalUser, agentID, domain.TicketStatusOpen,
			[]domain.TicketStatus{domain.TicketStatusPending, domain.TicketStatusClosed}},
		{"creator on own New ticket", domain.RoleNormalUser, creatorID, domain.TicketStatusNew,
			[]domain.TicketStatus{domain.TicketStatusClosed}},
		{"creator on someone else's ticket", domain.RoleNormalUser, "other", domain.TicketStatusNew,
			[]domain.TicketStatus{}},
		{"anyone on Closed", domain.RoleSystemAdmin, agentID, domain.TicketStatusClosed,
			[]domain.TicketStatus{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := machine.AllowedTransitionsFor(tt.role, creatorID, tt.requester, tt.current)
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestApplyStampsResolvedAtOnce(t *testing.T) {
	machine := NewMachine(true)
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	ticket := &domain.Ticket{
		ID:        "t1",
		Status:    domain.TicketStatusOpen,
		CreatedBy: creatorID,
		CreatedAt: now.Add(-3 * time.Hour),
	}

	err := machine.Apply(ticket, domain.RoleTechnicalUser, agentID, domain.TicketStatusClosed, now)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, ticket.Status)
	require.NotNil(t, ticket.ResolvedAt)
	assert.Equal(t, now, *ticket.ResolvedAt)

	// Re-closing is an idempotent no-op: AlreadyClosed, timestamp untouched.
	later := now.Add(2 * time.Hour)
	err = machine.Apply(ticket, domain.RoleTechnicalUser, agentID, domain.TicketStatusClosed, later)
	require.Error(t, err)
	assert.True(t, apperrors.IsAlreadyClosed(err))
	assert.Equal(t, now, *ticket.ResolvedAt)
	assert.Equal(t, domain.TicketStatusClosed, ticket.Status)
}

func TestApplyRejectedTransitionLeavesTicketUntouched(t *testing.T) {
	machine := NewMachine(true)
	now := time.Now()

	ticket := &domain.Ticket{
		ID:        "t1",
		Status:    domain.TicketStatusNew,
		CreatedBy: creatorID,
		CreatedAt: now.Add(-time.Hour),
	}

	err := machine.Apply(ticket, domain.RoleTechnicalUser, agentID, domain.TicketStatusClosed, now)
	require.Error(t, err)
	assert.Equal(t, domain.TicketStatusNew, ticket.Status)
	assert.Nil(t, ticket.ResolvedAt)
}

func TestApplyNilTicket(t *testing.T) {
	machine := NewMachine(true)
	err := machine.Apply(nil, domain.RoleSystemAdmin, agentID, domain.TicketStatusOpen, time.Now())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "INVALID_TICKET"))
}

func TestStatusCatalog(t *testing.T) {
	statuses := Statuses()
	require.Len(t, statuses, 4)

	for i, info := range statuses {
		assert.Equal(t, i+1, info.Order)
		assert.NotEmpty(t, info.Color)
		assert.NotEmpty(t, info.Description)
	}
	assert.Equal(t, domain.TicketStatusNew, statuses[0].Name)
	assert.Equal(t, domain.TicketStatusClosed, statuses[3].Name)
}

func TestRolePermissionsCopyIsDetached(t *testing.T) {
	perms := RolePermissions()
	require.Contains(t, perms, domain.RoleNormalUser)

	perms[domain.RoleNormalUser][0] = "Tampered"
	fresh := RolePermissions()
	assert.Equal(t, domain.TicketStatusNew, fresh[domain.RoleNormalUser][0])
}
