package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// AlertRepository persists alert records for the delivery channel. Only
// the is_read flag mutates after creation.
type AlertRepository interface {
	Create(ctx context.Context, alert *domain.Alert) error
	ListForRecipient(ctx context.Context, recipientID string, unreadOnly bool, limit int) ([]domain.Alert, error)
	MarkRead(ctx context.Context, id string) error
}

type alertRepository struct {
	pool *pgxpool.Pool
}

// NewAlertRepository instantiates repository.
func NewAlertRepository(pool *pgxpool.Pool) AlertRepository {
	return &alertRepository{pool: pool}
}

func (r *alertRepository) Create(ctx context.Context, alert *domain.Alert) error {
	const query = `
        INSERT INTO alerts (id, ticket_id, alert_type, severity, title, message, recipient_id, is_read, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err := r.pool.Exec(ctx, query,
		alert.ID,
		alert.TicketID,
		alert.Type,
		alert.Severity,
		alert.Title,
		alert.Message,
		alert.RecipientID,
		alert.IsRead,
		alert.CreatedAt,
	)
	return err
}

func (r *alertRepository) ListForRecipient(ctx context.Context, recipientID string, unreadOnly bool, limit int) ([]domain.Alert, error) {
	query := `
        SELECT id, ticket_id, alert_type, severity, title, message, recipient_id, is_read, created_at
        FROM alerts WHERE recipient_id=$1`
	if unreadOnly {
		query += " AND is_read=false"
	}
	query += " ORDER BY created_at DESC"
	args := []any{recipientID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	alerts := []domain.Alert{}
	for rows.Next() {
		var alert domain.Alert
		if err := rows.Scan(
			&alert.ID,
			&alert.TicketID,
			&alert.Type,
			&alert.Severity,
			&alert.Title,
			&alert.Message,
			&alert.RecipientID,
			&alert.IsRead,
			&alert.CreatedAt,
		); err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

func (r *alertRepository) MarkRead(ctx context.Context, id string) error {
	const query = `UPDATE alerts SET is_read=true WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
