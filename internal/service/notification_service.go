package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kelasku/kelasku-api/internal/models"
	"github.com/kelasku/kelasku-api/pkg/config"
	"github.com/kelasku/kelasku-api/pkg/jobs"
)

// PurchaseNotification is the payload of a purchase-completed job.
type PurchaseNotification struct {
	UserID       string              `json:"user_id"`
	CategoryID   string              `json:"category_id"`
	PurchaseKind models.PurchaseKind `json:"purchase_kind"`
	Amount       float64             `json:"amount"`
}

// NotificationService dispatches best-effort purchase notifications through
// an in-memory worker queue. Failures never affect the purchase itself.
type NotificationService struct {
	queue   *jobs.Queue
	enabled bool
	logger  *zap.Logger
}

// NewNotificationService constructs the service and its queue.
func NewNotificationService(cfg config.NotificationsConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{enabled: cfg.Enabled, logger: logger}
	s.queue = jobs.NewQueue("purchase-notifications", s.handle, jobs.QueueConfig{
		Workers:    cfg.WorkerConcurrency,
		MaxRetries: cfg.WorkerRetries,
		RetryDelay: cfg.RetryDelay,
		OnDrop:     s.dropped,
		Logger:     logger,
	})
	return s
}

// Start begins queue consumption.
func (s *NotificationService) Start(ctx context.Context) {
	if s.enabled {
		s.queue.Start(ctx)
	}
}

// Stop drains the queue workers.
func (s *NotificationService) Stop() {
	if s.enabled {
		s.queue.Stop()
	}
}

// PurchaseCompleted enqueues a notification. Fire and forget.
func (s *NotificationService) PurchaseCompleted(userID, categoryID string, kind models.PurchaseKind, amount float64) {
	if !s.enabled {
		return
	}
	job := jobs.Job{
		ID:   uuid.NewString(),
		Type: "purchase_completed",
		Payload: PurchaseNotification{
			UserID:       userID,
			CategoryID:   categoryID,
			PurchaseKind: kind,
			Amount:       amount,
		},
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue purchase notification",
			zap.String("user_id", userID),
			zap.String("category_id", categoryID),
			zap.Int("backlog", s.queue.Depth()),
			zap.Error(err))
	}
}

// dropped records notifications that exhausted their delivery retries.
func (s *NotificationService) dropped(job jobs.Job) {
	payload, ok := job.Payload.(PurchaseNotification)
	if !ok {
		return
	}
	s.logger.Error("purchase notification dropped",
		zap.String("user_id", payload.UserID),
		zap.String("category_id", payload.CategoryID),
		zap.String("purchase_kind", string(payload.PurchaseKind)))
}

func (s *NotificationService) handle(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(PurchaseNotification)
	if !ok {
		s.logger.Warn("dropping notification with unexpected payload", zap.String("job_id", job.ID))
		return nil
	}
	// Delivery transport (email, push) hangs off here; for now the event is
	// logged so downstream shippers can pick it up.
	s.logger.Info("purchase notification",
		zap.String("user_id", payload.UserID),
		zap.String("category_id", payload.CategoryID),
		zap.String("purchase_kind", string(payload.PurchaseKind)),
		zap.Float64("amount", payload.Amount))
	return nil
}
