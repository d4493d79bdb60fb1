package sla

import (
	"fmt"
	"math"
	"time"

	"github.com/spec-kit/sla-engine/internal/domain"
	apperrors "github.com/spec-kit/sla-engine/pkg/util/errorutil"
)

// Bucket is one named range of elapsed-open-time. MaxHours is +Inf for
// the final unbounded bucket.
type Bucket struct {
	Label    string
	Color    string
	MinHours float64
	MaxHours float64
}

// Contains reports whether hours falls in [MinHours, MaxHours).
func (b Bucket) Contains(hours float64) bool {
	return hours >= b.MinHours && hours < b.MaxHours
}

var bucketColors = []string{"blue", "amber", "orange", "red"}

// AgingClassifier buckets an open ticket's age into a strict, gapless
// partition of [0, inf).
type AgingClassifier struct {
	buckets []Bucket
}

// NewAgingClassifier builds a classifier from ascending lower bounds
// starting at 0, e.g. [0,24,48,72] yields 0-24, 24-48, 48-72, 72+.
func NewAgingClassifier(boundsHours []float64) (*AgingClassifier, error) {
	if len(boundsHours) == 0 || boundsHours[0] != 0 {
		return nil, apperrors.NewConfigurationError("aging bounds must start at 0", nil)
	}
	for i := 1; i < len(boundsHours); i++ {
		if boundsHours[i] <= boundsHours[i-1] {
			return nil, apperrors.NewConfigurationError("aging bounds must be strictly increasing", nil)
		}
	}

	buckets := make([]Bucket, len(boundsHours))
	for i, lower := range boundsHours {
		upper := math.Inf(1)
		label := fmt.Sprintf("%g+ hours", lower)
		if i < len(boundsHours)-1 {
			upper = boundsHours[i+1]
			label = fmt.Sprintf("%g-%g hours", lower, upper)
		}
		color := bucketColors[len(bucketColors)-1]
		if i < len(bucketColors) {
			color = bucketColors[i]
		}
		buckets[i] = Bucket{Label: label, Color: color, MinHours: lower, MaxHours: upper}
	}
	return &AgingClassifier{buckets: buckets}, nil
}

// DefaultAgingClassifier returns the observed 0-24/24-48/48-72/72+ partition.
func DefaultAgingClassifier() *AgingClassifier {
	classifier, err := NewAgingClassifier([]float64{0, 24, 48, 72})
	if err != nil {
		panic(err)
	}
	return classifier
}

// Buckets returns the ordered partition.
func (c *AgingClassifier) Buckets() []Bucket {
	out := make([]Bucket, len(c.buckets))
	copy(out, c.buckets)
	return out
}

// ClassifyHours places an elapsed age into its bucket. Deterministic for
// identical input regardless of how the bucket set was configured.
func (c *AgingClassifier) ClassifyHours(hours float64) Bucket {
	for _, bucket := range c.buckets {
		if bucket.Contains(hours) {
			return bucket
		}
	}
	// Unreachable given the partition invariant; the final bucket is
	// unbounded and negative ages are clamped by HoursBetween.
	return c.buckets[len(c.buckets)-1]
}

// Classify buckets an open ticket by its current age. Closed tickets have
// no age concept for aging analytics and are rejected.
func (c *AgingClassifier) Classify(ticket *domain.Ticket, now time.Time) (Bucket, error) {
	if ticket == nil {
		return Bucket{}, apperrors.NewInvalidTicket("", "nil ticket")
	}
	if ticket.CreatedAt.IsZero() {
		return Bucket{}, apperrors.NewInvalidTicket(ticket.ID, "missing created_at")
	}
	if ticket.Status == domain.TicketStatusClosed {
		return Bucket{}, apperrors.NewInvalidTicket(ticket.ID, "closed tickets are not aged")
	}
	return c.ClassifyHours(HoursBetween(ticket.CreatedAt, now)), nil
}
