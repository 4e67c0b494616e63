package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/absensi-sd/absensi-api/internal/models"
	appErrors "github.com/absensi-sd/absensi-api/pkg/errors"
)

type attendanceRepository interface {
	Upsert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error)
	StudentHistory(ctx context.Context, nis string, limit int) ([]models.AttendanceHistoryRow, error)
}

type rosterLookup interface {
	FindByNIS(ctx context.Context, nis string) (*models.Student, error)
}

type noticeDispatcher interface {
	Dispatch(ctx context.Context, notice models.AttendanceNotice) error
}

type viewCacheInvalidator interface {
	Invalidate(ctx context.Context, key string)
}

// AttendanceService records daily attendance and hands the guardian notice
// to the dispatcher. The store write is authoritative: once it lands the
// operation succeeds, whatever later happens to the notice.
type AttendanceService struct {
	repo       attendanceRepository
	roster     rosterLookup
	dispatcher noticeDispatcher
	validator  *validator.Validate
	logger     *zap.Logger
	metrics    *MetricsService
	viewCache  viewCacheInvalidator

	reportingOffset time.Duration
	now             func() time.Time
}

// NewAttendanceService constructs the service.
func NewAttendanceService(repo attendanceRepository, roster rosterLookup, dispatcher noticeDispatcher, reportingOffset time.Duration, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AttendanceService{
		repo:            repo,
		roster:          roster,
		dispatcher:      dispatcher,
		validator:       validate,
		logger:          logger,
		metrics:         metrics,
		reportingOffset: reportingOffset,
		now:             time.Now,
	}
	svc.validator.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		return models.AttendanceStatus(fl.Field().String()).Valid()
	})
	return svc
}

// UseViewCache registers the cache whose grade/day views are dropped after a
// write, so the dashboard reflects the change immediately.
func (s *AttendanceService) UseViewCache(cache viewCacheInvalidator) {
	s.viewCache = cache
}

// RecordAttendanceRequest describes one attendance entry.
type RecordAttendanceRequest struct {
	NIS    string `json:"nis" validate:"required,len=5,numeric"`
	Status string `json:"status" validate:"required,attendance_status"`
}

// Record writes today's attendance for a student, overwriting any earlier
// entry for the same day, then queues the guardian notice.
func (s *AttendanceService) Record(ctx context.Context, req RecordAttendanceRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}

	student, err := s.roster.FindByNIS(ctx, req.NIS)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve student")
	}

	date := models.ReportingDay(s.now(), s.reportingOffset)
	record := &models.AttendanceRecord{
		ID:          models.RecordKey(student.NIS, date),
		NIS:         student.NIS,
		Name:        student.Name,
		Grade:       student.Grade,
		ParentPhone: student.ParentPhone,
		Status:      models.AttendanceStatus(req.Status),
		Date:        date,
		Notified:    false,
	}

	stored, err := s.repo.Upsert(ctx, record)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}
	if s.metrics != nil {
		s.metrics.RecordAttendance(string(stored.Status))
	}
	if s.viewCache != nil {
		s.viewCache.Invalidate(ctx, dashboardAttendanceKey(stored.Grade, date))
	}

	notice := models.AttendanceNotice{
		RecordID: stored.ID,
		Phone:    models.NormalizeParentPhone(student.ParentPhone),
		Name:     student.Name,
		Grade:    student.Grade,
		Date:     date,
		Status:   stored.Status,
	}
	if err := s.dispatcher.Dispatch(ctx, notice); err != nil {
		// The record is already durable; the flag stays false and the
		// failure only shows up in logs and metrics.
		s.logger.Sugar().Warnw("failed to queue guardian notice", "record_id", stored.ID, "error", err)
	}

	return stored, nil
}

// History returns a student's recent attendance entries.
func (s *AttendanceService) History(ctx context.Context, nis string, limit int) ([]models.AttendanceHistoryRow, error) {
	if _, err := s.roster.FindByNIS(ctx, nis); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve student")
	}
	rows, err := s.repo.StudentHistory(ctx, nis, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load history")
	}
	return rows, nil
}

// Today returns the current reporting day string.
func (s *AttendanceService) Today() string {
	return models.ReportingDay(s.now(), s.reportingOffset)
}
