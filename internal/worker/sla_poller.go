package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/sla-engine/internal/service"
)

// SLAPoller periodically re-evaluates open tickets. The engine itself is
// pull-based; polling cadence lives here, outside the pure core.
type SLAPoller struct {
	sla      *service.SLAService
	interval time.Duration
	logger   *zap.Logger
}

// NewSLAPoller constructs the poller.
func NewSLAPoller(slaService *service.SLAService, interval time.Duration, logger *zap.Logger) *SLAPoller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &SLAPoller{sla: slaService, interval: interval, logger: logger}
}

// Run blocks until ctx is cancelled, refreshing on each tick.
func (p *SLAPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("sla poller started", zap.Duration("interval", p.interval))
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("sla poller stopped")
			return
		case <-ticker.C:
			violations, err := p.sla.RefreshOpenTickets(ctx)
			if err != nil {
				p.logger.Error("sla refresh failed", zap.Error(err))
				continue
			}
			if violations > 0 {
				p.logger.Info("sla refresh found new violations", zap.Int("count", violations))
			}
		}
	}
}

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
