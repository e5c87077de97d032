package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-admin-api/internal/models"
	"github.com/noah-isme/lms-admin-api/pkg/jobs"
	"github.com/noah-isme/lms-admin-api/pkg/notify"
)

type notificationMetrics interface {
	RecordNotification(outcome string)
}

// NotificationConfig sizes the delivery worker pool.
type NotificationConfig struct {
	Workers    int
	BufferSize int
	Retries    int
	RetryDelay time.Duration
}

// NotificationService hands alerts to a background queue that fans them out
// to the configured sinks. Delivery is best effort.
type NotificationService struct {
	sink    notify.Sink
	queue   *jobs.Queue
	metrics notificationMetrics
	logger  *zap.Logger
}

// NewNotificationService wires the queue; a nil sink drops every alert.
func NewNotificationService(sink notify.Sink, cfg NotificationConfig, metrics notificationMetrics, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{sink: sink, metrics: metrics, logger: logger}
	s.queue = jobs.NewQueue("notifications", s.deliver, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.Retries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
		OnDrop: func(job jobs.Job) {
			s.record("dropped")
			s.logger.Warn("notification discarded on shutdown", zap.String("kind", job.Type), zap.String("job_id", job.ID))
		},
	})
	return s
}

// Start launches the delivery workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop waits for in-flight deliveries. Alerts still buffered are counted as dropped.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// Notify enqueues the event and returns immediately. Failures are logged only.
func (s *NotificationService) Notify(_ context.Context, event models.NotificationEvent) {
	if s.sink == nil {
		s.record("dropped")
		s.logger.Debug("notification dropped, no sinks configured", zap.String("kind", string(event.Kind)))
		return
	}

	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    string(event.Kind),
		Payload: messageFor(event),
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.record("dropped")
		s.logger.Warn("notification dropped", zap.String("kind", string(event.Kind)), zap.Error(err))
	}
}

func (s *NotificationService) deliver(ctx context.Context, job jobs.Job) error {
	msg, ok := job.Payload.(notify.Message)
	if !ok {
		s.record("dropped")
		return nil
	}
	if err := s.sink.Send(ctx, msg); err != nil {
		s.record("failed")
		return fmt.Errorf("deliver %s: %w", job.Type, err)
	}
	s.record("delivered")
	return nil
}

func (s *NotificationService) record(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordNotification(outcome)
	}
}

func messageFor(event models.NotificationEvent) notify.Message {
	subject := "Attendance alert"
	switch event.Kind {
	case models.NotificationAbsence:
		subject = "Repeated student absence"
	case models.NotificationTrainerAbsent:
		subject = "Trainer absent from class"
	}
	return notify.Message{
		Kind:    string(event.Kind),
		Subject: subject,
		Body:    event.Message,
		Data:    event,
	}
}
