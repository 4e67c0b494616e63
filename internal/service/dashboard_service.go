package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/absensi-sd/absensi-api/internal/models"
	appErrors "github.com/absensi-sd/absensi-api/pkg/errors"
)

type dashboardAttendanceRepository interface {
	ListByGradeAndDate(ctx context.Context, grade, date string) ([]models.AttendanceRecord, error)
	SummaryByGradeAndDate(ctx context.Context, grade, date string) (*models.AttendanceSummary, error)
}

type dashboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

func dashboardAttendanceKey(grade, date string) string {
	return fmt.Sprintf("dashboard:attendance:%s:%s", grade, date)
}

// DashboardAttendanceResponse is the dashboard read-path payload.
type DashboardAttendanceResponse struct {
	Grade   string                    `json:"grade"`
	Date    string                    `json:"date"`
	Records []models.AttendanceRecord `json:"records"`
	Summary models.AttendanceSummary  `json:"summary"`
}

// DashboardService serves the aggregated attendance read path. Results are
// cached briefly since the same grade/date view is refetched on every page
// visit.
type DashboardService struct {
	repo    dashboardAttendanceRepository
	cache   dashboardCache
	ttl     time.Duration
	logger  *zap.Logger
	metrics *MetricsService
}

// NewDashboardService constructs the service. A nil cache disables caching.
func NewDashboardService(repo dashboardAttendanceRepository, cache dashboardCache, ttl time.Duration, logger *zap.Logger, metrics *MetricsService) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{repo: repo, cache: cache, ttl: ttl, logger: logger, metrics: metrics}
}

// Attendance returns all records for a grade on a day plus summary counts.
// An empty day is a valid, empty response. The bool reports a cache hit.
func (s *DashboardService) Attendance(ctx context.Context, grade, date string) (*DashboardAttendanceResponse, bool, error) {
	if grade == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "grade is required")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "invalid date format, expected YYYY-MM-DD")
	}

	key := dashboardAttendanceKey(grade, date)
	if s.cache != nil {
		var cached DashboardAttendanceResponse
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			if s.metrics != nil {
				s.metrics.CacheHit()
			}
			return &cached, true, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Sugar().Warnw("dashboard cache read failed", "key", key, "error", err)
		}
		if s.metrics != nil {
			s.metrics.CacheMiss()
		}
	}

	records, err := s.repo.ListByGradeAndDate(ctx, grade, date)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	summary, err := s.repo.SummaryByGradeAndDate(ctx, grade, date)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load summary")
	}

	resp := &DashboardAttendanceResponse{
		Grade:   grade,
		Date:    date,
		Records: records,
		Summary: *summary,
	}
	if resp.Records == nil {
		resp.Records = []models.AttendanceRecord{}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, resp, s.ttl); err != nil {
			s.logger.Sugar().Warnw("dashboard cache write failed", "key", key, "error", err)
		}
	}
	return resp, false, nil
}
