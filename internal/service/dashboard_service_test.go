package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/absensi-sd/absensi-api/internal/models"
	appErrors "github.com/absensi-sd/absensi-api/pkg/errors"
)

type mockDashboardRepo struct {
	records []models.AttendanceRecord
	summary models.AttendanceSummary
	calls   int
}

func (m *mockDashboardRepo) ListByGradeAndDate(context.Context, string, string) ([]models.AttendanceRecord, error) {
	m.calls++
	return m.records, nil
}

func (m *mockDashboardRepo) SummaryByGradeAndDate(context.Context, string, string) (*models.AttendanceSummary, error) {
	s := m.summary
	return &s, nil
}

type memoryCache struct {
	values map[string][]byte
	sets   int
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := c.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if c.values == nil {
		c.values = make(map[string][]byte)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.values[key] = raw
	c.sets++
	return nil
}

func TestDashboardAttendanceEmptyDayIsNotAnError(t *testing.T) {
	repo := &mockDashboardRepo{}
	svc := NewDashboardService(repo, nil, time.Minute, zap.NewNop(), nil)

	resp, hit, err := svc.Attendance(context.Background(), "3", "2024-01-02")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NotNil(t, resp.Records)
	assert.Empty(t, resp.Records)
	assert.Equal(t, 0, resp.Summary.Total)
}

func TestDashboardAttendanceCachesSecondRead(t *testing.T) {
	repo := &mockDashboardRepo{
		records: []models.AttendanceRecord{{ID: "00001_2024-01-02", NIS: "00001", Status: models.AttendanceStatusPresent}},
		summary: models.AttendanceSummary{Present: 1, Total: 1},
	}
	cache := &memoryCache{}
	svc := NewDashboardService(repo, cache, time.Minute, zap.NewNop(), nil)

	_, hit, err := svc.Attendance(context.Background(), "3", "2024-01-02")
	require.NoError(t, err)
	assert.False(t, hit)

	resp, hit, err := svc.Attendance(context.Background(), "3", "2024-01-02")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, repo.calls)
	require.Len(t, resp.Records, 1)
	assert.Equal(t, models.AttendanceStatusPresent, resp.Records[0].Status)
}

func TestDashboardAttendanceValidation(t *testing.T) {
	svc := NewDashboardService(&mockDashboardRepo{}, nil, time.Minute, zap.NewNop(), nil)

	_, _, err := svc.Attendance(context.Background(), "", "2024-01-02")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, _, err = svc.Attendance(context.Background(), "3", "02-01-2024")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
