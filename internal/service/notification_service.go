package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/absensi-sd/absensi-api/internal/models"
	"github.com/absensi-sd/absensi-api/internal/notify"
	"github.com/absensi-sd/absensi-api/pkg/config"
	"github.com/absensi-sd/absensi-api/pkg/jobs"
)

const jobTypeAttendanceNotice = "attendance_notice"

type notifiedMarker interface {
	MarkNotified(ctx context.Context, id string) error
}

// NotificationService queues guardian notices for asynchronous delivery.
// Attendance persistence never waits on the gateway: a notice that fails is
// retried by the queue and, on exhaustion, the record simply keeps
// notified=false.
type NotificationService struct {
	gateway notify.Gateway
	records notifiedMarker
	queue   *jobs.Queue
	logger  *zap.Logger
	metrics *MetricsService
}

// NewNotificationService constructs the service and its backing queue.
func NewNotificationService(gateway notify.Gateway, records notifiedMarker, cfg config.NotifyConfig, logger *zap.Logger, metrics *MetricsService) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{
		gateway: gateway,
		records: records,
		logger:  logger,
		metrics: metrics,
	}
	s.queue = jobs.NewQueue(jobTypeAttendanceNotice, s.process, jobs.QueueConfig{
		Workers:     cfg.Workers,
		BufferSize:  cfg.BufferSize,
		MaxRetries:  cfg.MaxRetries,
		RetryDelay:  cfg.RetryDelay,
		Logger:      logger,
		OnExhausted: s.exhausted,
	})
	return s
}

// Start launches the delivery workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// Dispatch enqueues a notice for delivery.
func (s *NotificationService) Dispatch(_ context.Context, notice models.AttendanceNotice) error {
	return s.queue.Enqueue(jobs.Job{
		ID:      notice.RecordID,
		Type:    jobTypeAttendanceNotice,
		Payload: notice,
	})
}

func (s *NotificationService) process(ctx context.Context, job jobs.Job) error {
	notice, ok := job.Payload.(models.AttendanceNotice)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}

	if err := s.gateway.SendAttendanceNotice(ctx, notice); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.NoticeSent()
	}
	if err := s.records.MarkNotified(ctx, notice.RecordID); err != nil {
		// The message already went out; losing the flag only costs a
		// duplicate message on a manual resend.
		s.logger.Sugar().Warnw("notice delivered but flag update failed", "record_id", notice.RecordID, "error", err)
	}
	return nil
}

func (s *NotificationService) exhausted(_ context.Context, job jobs.Job, err error) {
	if s.metrics != nil {
		s.metrics.NoticeFailed()
	}
	s.logger.Sugar().Errorw("guardian notice undeliverable", "record_id", job.ID, "error", err)
}
