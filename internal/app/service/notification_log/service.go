package notification_log

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kisancoop/dairyops/internal/models"
	"github.com/kisancoop/dairyops/pkg/logctx"
	"github.com/kisancoop/dairyops/pkg/tool"
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

// Save asynchronously persists a webhook event log. Nil input is ignored.
// Logging never blocks the webhook's business transaction. The ID is
// assigned before the goroutine starts so callers can MarkHandled later.
func (s *Service) Save(ctx context.Context, event *models.WebhookEventLog) {
	if event == nil {
		return
	}
	if event.ID == "" {
		event.ID = tool.GenerateUUIDV7()
	}
	if event.TraceID == "" {
		event.TraceID = logctx.TraceIDFromCtx(ctx)
	}
	go func() {
		if err := s.db.Save(event).Error; err != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to save webhook event log: %v", err)
		}
	}()
}

// outcomeStatus maps a handler result onto the event log status.
func outcomeStatus(handleErr error) models.WebhookEventLogStatus {
	if handleErr != nil {
		return models.WebhookEventLogStatusHandleFailed
	}
	return models.WebhookEventLogStatusHandled
}

// MarkHandled updates the outcome of a previously received event.
func (s *Service) MarkHandled(ctx context.Context, id string, handleErr error) {
	go func() {
		status := outcomeStatus(handleErr)
		if err := s.db.Model(&models.WebhookEventLog{}).Where("id = ?", id).Update("status", status).Error; err != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to update webhook event log: %v", err)
		}
	}()
}
