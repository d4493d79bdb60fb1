package analytics

import (
	"sort"
	"time"

	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/sla"
)

// AgingTicket is the membership entry for one open ticket inside a bucket.
type AgingTicket struct {
	ID          string
	TicketKey   string
	Title       string
	Priority    domain.TicketPriority
	SLAViolated bool
	AgeHours    float64
}

// BucketCount is one aging bucket with its member tickets.
type BucketCount struct {
	Label   string
	Color   string
	Count   int
	Tickets []AgingTicket
}

// AgingReport summarizes open-ticket age distribution for triage views.
type AgingReport struct {
	GeneratedAt     time.Time
	TotalOpen       int
	AverageAgeHours float64
	Buckets         []BucketCount
	Errors          []TicketIssue
}

// AgingReport buckets every open ticket in the snapshot. Closed tickets
// are skipped, not errored: they have no age for triage purposes. Bucket
// membership is sorted oldest-first with ID tiebreak for deterministic
// output.
func (a *Aggregator) AgingReport(tickets []*domain.Ticket, now time.Time) AgingReport {
	report := AgingReport{GeneratedAt: now}

	buckets := a.classifier.Buckets()
	counts := make([]BucketCount, len(buckets))
	index := make(map[string]int, len(buckets))
	for i, bucket := range buckets {
		counts[i] = BucketCount{Label: bucket.Label, Color: bucket.Color}
		index[bucket.Label] = i
	}

	var totalAge float64
	for _, ticket := range tickets {
		if ticket == nil || ticket.Status == domain.TicketStatusClosed {
			continue
		}
		bucket, err := a.classifier.Classify(ticket, now)
		if err != nil {
			report.Errors = append(report.Errors, issueFromError(ticket, err))
			continue
		}
		ageHours := sla.HoursBetween(ticket.CreatedAt, now)
		i := index[bucket.Label]
		counts[i].Count++
		counts[i].Tickets = append(counts[i].Tickets, AgingTicket{
			ID:          ticket.ID,
			TicketKey:   ticket.TicketKey,
			Title:       ticket.Title,
			Priority:    ticket.Priority,
			SLAViolated: ticket.SLAViolated,
			AgeHours:    ageHours,
		})
		report.TotalOpen++
		totalAge += ageHours
	}

	for i := range counts {
		members := counts[i].Tickets
		sort.Slice(members, func(a, b int) bool {
			if members[a].AgeHours != members[b].AgeHours {
				return members[a].AgeHours > members[b].AgeHours
			}
			return members[a].ID < members[b].ID
		})
	}

	if report.TotalOpen > 0 {
		report.AverageAgeHours = totalAge / float64(report.TotalOpen)
	}
	report.Buckets = counts
	return report
}
