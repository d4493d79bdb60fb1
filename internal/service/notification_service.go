package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-engine/internal/alerts"
	"github.com/spec-kit/sla-engine/internal/config"
	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/events"
	"github.com/spec-kit/sla-engine/internal/persistence"
	"github.com/spec-kit/sla-engine/internal/repository"
	apperrors "github.com/spec-kit/sla-engine/pkg/util/errorutil"
)

// NotificationService is the delivery channel edge: it observes engine
// events, classifies them into alert records, persists them and fans them
// out on redis for the in-app bell.
type NotificationService struct {
	alerts     repository.AlertRepository
	redis      *persistence.Redis
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotifyConfig
}

// NotificationDependencies bundles collaborators.
type NotificationDependencies struct {
	AlertRepo  repository.AlertRepository
	Redis      *persistence.Redis
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Config     config.NotifyConfig
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	return &NotificationService{
		alerts:     deps.AlertRepo,
		redis:      deps.Redis,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		cfg:        deps.Config,
	}
}

// RegisterHandlers subscribes to every alert-producing event type.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventSLAViolated,
		events.EventTicketStatusChanged,
		events.EventTicketAssigned,
		events.EventTicketCreated,
		events.EventTicketMessageAdded,
	} {
		n.dispatcher.Subscribe(eventType, n.handleEvent)
	}
}

func (n *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	alert, err := alerts.Classify(event)
	if err != nil {
		n.logger.Warn("unclassifiable event",
			zap.String("event_type", string(event.Type)), zap.Error(err))
		return err
	}

	if n.alerts != nil {
		if err := n.alerts.Create(ctx, alert); err != nil {
			n.logger.Error("failed to persist alert",
				zap.String("ticket_id", alert.TicketID), zap.Error(err))
			return err
		}
	}

	n.publishAlert(ctx, alert)
	n.sendEmailNotificationStub(alert)
	n.sendWebhookNotificationStub(alert)
	return nil
}

// ListAlerts returns a recipient's alerts, newest first.
func (n *NotificationService) ListAlerts(ctx context.Context, recipientID string, unreadOnly bool, limit int) ([]domain.Alert, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	records, err := n.alerts.ListForRecipient(ctx, recipientID, unreadOnly, limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return records, nil
}

// MarkRead flips the is_read flag, the only permitted alert mutation.
func (n *NotificationService) MarkRead(ctx context.Context, alertID string) error {
	if err := n.alerts.MarkRead(ctx, alertID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("alert", map[string]any{"alert_id": alertID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

func (n *NotificationService) publishAlert(ctx context.Context, alert *domain.Alert) {
	if n.redis == nil || strings.TrimSpace(n.cfg.RedisChannel) == "" {
		return
	}
	payload, err := json.Marshal(alert)
	if err != nil {
		n.logger.Error("failed to encode alert", zap.Error(err))
		return
	}
	if err := n.redis.Publish(ctx, n.cfg.RedisChannel, payload); err != nil {
		n.logger.Warn("failed to publish alert",
			zap.String("channel", n.cfg.RedisChannel), zap.Error(err))
	}
}

func (n *NotificationService) sendEmailNotificationStub(alert *domain.Alert) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("ticket_id", alert.TicketID),
		zap.String("alert_type", string(alert.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(alert *domain.Alert) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("ticket_id", alert.TicketID),
		zap.String("alert_type", string(alert.Type)))
}
