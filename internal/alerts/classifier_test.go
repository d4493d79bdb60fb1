package alerts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/events"
	apperrors "github.com/spec-kit/sla-engine/pkg/util/errorutil"
)

func baseEvent(eventType events.EventType, payload interface{}) events.Event {
	return events.Event{
		ID:        "evt-1",
		Type:      eventType,
		TicketID:  "ticket-1",
		Timestamp: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
		Payload:   payload,
	}
}

func TestClassifySLAViolation(t *testing.T) {
	tests := []struct {
		name         string
		priority     domain.TicketPriority
		assigneeID   *string
		wantSeverity domain.AlertSeverity
		wantRecip    string
	}{
		{"critical to assignee", domain.TicketPriorityCritical, strPtr("agent-1"), domain.AlertSeverityCritical, "agent-1"},
		{"high to assignee", domain.TicketPriorityHigh, strPtr("agent-1"), domain.AlertSeverityCritical, "agent-1"},
		{"medium falls back to creator", domain.TicketPriorityMedium, nil, domain.AlertSeverityWarning, "user-1"},
		{"low is a warning", domain.TicketPriorityLow, strPtr("agent-2"), domain.AlertSeverityWarning, "agent-2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := baseEvent(events.EventSLAViolated, events.SLAViolatedPayload{
				Priority:     tt.priority,
				ElapsedHours: 5.2,
				TargetHours:  4,
				AssigneeID:   tt.assigneeID,
				CreatedBy:    "user-1",
			})

			alert, err := Classify(event)
			require.NoError(t, err)
			assert.Equal(t, domain.AlertTypeSLAViolation, alert.Type)
			assert.Equal(t, tt.wantSeverity, alert.Severity)
			require.NotNil(t, alert.RecipientID)
			assert.Equal(t, tt.wantRecip, *alert.RecipientID)
			assert.Equal(t, "ticket-1", alert.TicketID)
			assert.Equal(t, event.Timestamp, alert.CreatedAt)
		})
	}
}

func TestClassifyStatusChange(t *testing.T) {
	event := baseEvent(events.EventTicketStatusChanged, events.TicketStatusChangedPayload{
		OldStatus: domain.TicketStatusOpen,
		NewStatus: domain.TicketStatusPending,
		CreatedBy: "user-1",
	})

	alert, err := Classify(event)
	require.NoError(t, err)
	assert.Equal(t, domain.AlertTypeStatusChange, alert.Type)
	assert.Equal(t, domain.AlertSeverityInfo, alert.Severity)
	assert.Contains(t, alert.Message, "Open")
	assert.Contains(t, alert.Message, "Pending")
	require.NotNil(t, alert.RecipientID)
	assert.Equal(t, "user-1", *alert.RecipientID)
}

func TestClassifyAssignmentNotifiesAssignee(t *testing.T) {
	event := baseEvent(events.EventTicketAssigned, events.TicketAssignedPayload{
		AssigneeID: "agent-7",
		CreatedBy:  "user-1",
	})

	alert, err := Classify(event)
	require.NoError(t, err)
	assert.Equal(t, domain.AlertTypeAssignment, alert.Type)
	require.NotNil(t, alert.RecipientID)
	assert.Equal(t, "agent-7", *alert.RecipientID)
}

func TestClassifyTicketCreated(t *testing.T) {
	event := baseEvent(events.EventTicketCreated, events.TicketCreatedPayload{
		TicketKey: "TCK-42",
		Priority:  domain.TicketPriorityHigh,
		Title:     "VPN down",
		CreatedBy: "user-1",
	})

	alert, err := Classify(event)
	require.NoError(t, err)
	assert.Equal(t, domain.AlertTypeTicketCreated, alert.Type)
	assert.Contains(t, alert.Message, "TCK-42")
	require.NotNil(t, alert.RecipientID)
	assert.Equal(t, "user-1", *alert.RecipientID)
}

func TestClassifyNewMessage(t *testing.T) {
	event := baseEvent(events.EventTicketMessageAdded, events.TicketMessageAddedPayload{
		AuthorID:    "agent-1",
		CreatedBy:   "user-1",
		BodyPreview: "Please try rebooting the router",
	})

	alert, err := Classify(event)
	require.NoError(t, err)
	assert.Equal(t, domain.AlertTypeNewMessage, alert.Type)
	assert.Equal(t, "Please try rebooting the router", alert.Message)
}

func TestClassifyRejectsBadInput(t *testing.T) {
	t.Run("unknown event type", func(t *testing.T) {
		_, err := Classify(baseEvent("ticket_archived", nil))
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
	})

	t.Run("wrong payload shape", func(t *testing.T) {
		_, err := Classify(baseEvent(events.EventSLAViolated, events.TicketCreatedPayload{}))
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
	})
}

func TestClassifyAssignsUniqueIDs(t *testing.T) {
	event := baseEvent(events.EventTicketCreated, events.TicketCreatedPayload{
		TicketKey: "TCK-1", Priority: domain.TicketPriorityLow, CreatedBy: "user-1",
	})

	first, err := Classify(event)
	require.NoError(t, err)
	second, err := Classify(event)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func strPtr(s string) *string { return &s }
