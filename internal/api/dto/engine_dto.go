package dto

import (
	"time"

	"github.com/spec-kit/sla-engine/internal/analytics"
	"github.com/spec-kit/sla-engine/internal/domain"
)

// TicketResponse is the wire shape of a ticket snapshot.
type TicketResponse struct {
	ID          string                `json:"id"`
	TicketID    string                `json:"ticket_id"`
	Title       string                `json:"title"`
	Priority    domain.TicketPriority `json:"priority"`
	Status      domain.TicketStatus   `json:"status"`
	CreatedAt   time.Time             `json:"created_at"`
	ResolvedAt  *time.Time            `json:"resolved_at"`
	AssignedTo  *string               `json:"assigned_to"`
	CreatedBy   string                `json:"created_by"`
	SLAViolated bool                  `json:"sla_violated"`
}

// FromTicket converts a domain ticket.
func FromTicket(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:          t.ID,
		TicketID:    t.TicketKey,
		Title:       t.Title,
		Priority:    t.Priority,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
		ResolvedAt:  t.ResolvedAt,
		AssignedTo:  t.AssigneeID,
		CreatedBy:   t.CreatedBy,
		SLAViolated: t.SLAViolated,
	}
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status  domain.TicketStatus `json:"status"`
	Comment string              `json:"comment"`
}

// AssignRequest payload.
type AssignRequest struct {
	AssigneeID string `json:"assignee_id"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse payload.
type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	UserID    string      `json:"user_id"`
	Name      string      `json:"name"`
	Role      domain.Role `json:"role"`
}

// BreakdownResponse is one met/violated slice of the adherence report.
type BreakdownResponse struct {
	Total               int      `json:"total"`
	ClosedMet           int      `json:"closed_met"`
	ClosedViolated      int      `json:"closed_violated"`
	OpenOnTrack         int      `json:"open_on_track"`
	OpenAtRisk          int      `json:"open_at_risk"`
	OpenViolated        int      `json:"open_violated"`
	AdherencePercentage *float64 `json:"adherence_percentage"`
	AvgResolutionHours  *float64 `json:"avg_resolution_hours"`
}

// PriorityBreakdownResponse keys a breakdown by priority.
type PriorityBreakdownResponse struct {
	Priority domain.TicketPriority `json:"priority"`
	BreakdownResponse
}

// WindowBreakdownResponse keys a breakdown by trailing window.
type WindowBreakdownResponse struct {
	Window string  `json:"window"`
	Hours  float64 `json:"hours"`
	BreakdownResponse
}

// TicketIssueResponse reports a per-ticket failure in a report.
type TicketIssueResponse struct {
	TicketID string `json:"ticket_id"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// AdherenceResponse is the sla-adherence analytics payload. The top-level
// convenience fields mirror what the summary card renders.
type AdherenceResponse struct {
	GeneratedAt  time.Time                   `json:"generated_at"`
	SLAAdherence *float64                    `json:"sla_adherence"`
	OnTime       int                         `json:"on_time"`
	TotalTickets int                         `json:"total_tickets"`
	Violations   int                         `json:"violations"`
	Overall      BreakdownResponse           `json:"overall"`
	ByPriority   []PriorityBreakdownResponse `json:"by_priority"`
	Windows      []WindowBreakdownResponse   `json:"windows"`
	Errors       []TicketIssueResponse       `json:"errors"`
}

// FromAdherenceReport converts the analytics report.
func FromAdherenceReport(report analytics.AdherenceReport) AdherenceResponse {
	resp := AdherenceResponse{
		GeneratedAt:  report.GeneratedAt,
		SLAAdherence: report.Overall.AdherencePct,
		OnTime:       report.Overall.ClosedMet,
		TotalTickets: report.Overall.Total,
		Violations:   report.Overall.ClosedViolated + report.Overall.OpenViolated,
		Overall:      breakdownResponse(report.Overall),
		ByPriority:   make([]PriorityBreakdownResponse, 0, len(report.ByPriority)),
		Windows:      make([]WindowBreakdownResponse, 0, len(report.Windows)),
		Errors:       issueResponses(report.Errors),
	}
	for _, entry := range report.ByPriority {
		resp.ByPriority = append(resp.ByPriority, PriorityBreakdownResponse{
			Priority:          entry.Priority,
			BreakdownResponse: breakdownResponse(entry.Breakdown),
		})
	}
	for _, entry := range report.Windows {
		resp.Windows = append(resp.Windows, WindowBreakdownResponse{
			Window:            entry.Label,
			Hours:             entry.Hours,
			BreakdownResponse: breakdownResponse(entry.Breakdown),
		})
	}
	return resp
}

// AgingTicketResponse is one bucket member.
type AgingTicketResponse struct {
	ID          string                `json:"id"`
	TicketID    string                `json:"ticket_id"`
	Title       string                `json:"title"`
	Priority    domain.TicketPriority `json:"priority"`
	SLAViolated bool                  `json:"sla_violated"`
	AgeHours    float64               `json:"age_hours"`
}

// AgingBucketResponse is one bucket with membership.
type AgingBucketResponse struct {
	AgeRange string                `json:"age_range"`
	Color    string                `json:"color"`
	Count    int                   `json:"count"`
	Tickets  []AgingTicketResponse `json:"tickets"`
}

// AgingResponse is the ticket-aging analytics payload.
type AgingResponse struct {
	GeneratedAt     time.Time             `json:"generated_at"`
	TotalOpen       int                   `json:"total_open_tickets"`
	AverageAgeHours float64               `json:"average_age_hours"`
	AgingData       []AgingBucketResponse `json:"aging_data"`
	Errors          []TicketIssueResponse `json:"errors"`
}

// FromAgingReport converts the analytics report.
func FromAgingReport(report analytics.AgingReport) AgingResponse {
	resp := AgingResponse{
		GeneratedAt:     report.GeneratedAt,
		TotalOpen:       report.TotalOpen,
		AverageAgeHours: report.AverageAgeHours,
		AgingData:       make([]AgingBucketResponse, 0, len(report.Buckets)),
		Errors:          issueResponses(report.Errors),
	}
	for _, bucket := range report.Buckets {
		members := make([]AgingTicketResponse, 0, len(bucket.Tickets))
		for _, ticket := range bucket.Tickets {
			members = append(members, AgingTicketResponse{
				ID:          ticket.ID,
				TicketID:    ticket.TicketKey,
				Title:       ticket.Title,
				Priority:    ticket.Priority,
				SLAViolated: ticket.SLAViolated,
				AgeHours:    ticket.AgeHours,
			})
		}
		resp.AgingData = append(resp.AgingData, AgingBucketResponse{
			AgeRange: bucket.Label,
			Color:    bucket.Color,
			Count:    bucket.Count,
			Tickets:  members,
		})
	}
	return resp
}

// StatusInfoResponse describes one workflow status for the roadmap UI.
type StatusInfoResponse struct {
	Name        domain.TicketStatus `json:"name"`
	Order       int                 `json:"order"`
	Color       string              `json:"color"`
	Description string              `json:"description"`
}

// RolePermissionResponse lists the statuses a role may act from.
type RolePermissionResponse struct {
	CanUpdate []domain.TicketStatus `json:"can_update"`
}

// WorkflowResponse is the full workflow catalog.
type WorkflowResponse struct {
	Statuses        []StatusInfoResponse                          `json:"statuses"`
	Transitions     map[domain.TicketStatus][]domain.TicketStatus `json:"transitions"`
	RolePermissions map[domain.Role]RolePermissionResponse        `json:"role_permissions"`
}

// AllowedTransitionsResponse lists legal successors of a status.
type AllowedTransitionsResponse struct {
	Status             domain.TicketStatus   `json:"status"`
	AllowedTransitions []domain.TicketStatus `json:"allowed_transitions"`
}

// AlertResponse is the wire shape of an alert record.
type AlertResponse struct {
	ID        string               `json:"id"`
	TicketID  string               `json:"ticket_id"`
	AlertType domain.AlertType     `json:"alert_type"`
	Severity  domain.AlertSeverity `json:"severity"`
	Title     string               `json:"title"`
	Message   string               `json:"message"`
	IsRead    bool                 `json:"is_read"`
	CreatedAt time.Time            `json:"created_at"`
}

// FromAlert converts a domain alert.
func FromAlert(alert domain.Alert) AlertResponse {
	return AlertResponse{
		ID:        alert.ID,
		TicketID:  alert.TicketID,
		AlertType: alert.Type,
		Severity:  alert.Severity,
		Title:     alert.Title,
		Message:   alert.Message,
		IsRead:    alert.IsRead,
		CreatedAt: alert.CreatedAt,
	}
}

func breakdownResponse(b analytics.Breakdown) BreakdownResponse {
	return BreakdownResponse{
		Total:               b.Total,
		ClosedMet:           b.ClosedMet,
		ClosedViolated:      b.ClosedViolated,
		OpenOnTrack:         b.OpenOnTrack,
		OpenAtRisk:          b.OpenAtRisk,
		OpenViolated:        b.OpenViolated,
		AdherencePercentage: b.AdherencePct,
		AvgResolutionHours:  b.AvgResolutionHours,
	}
}

func issueResponses(issues []analytics.TicketIssue) []TicketIssueResponse {
	out := make([]TicketIssueResponse, 0, len(issues))
	for _, issue := range issues {
		out = append(out, TicketIssueResponse{
			TicketID: issue.TicketID,
			Code:     issue.Code,
			Message:  issue.Message,
		})
	}
	return out
}
