package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/absensi-sd/absensi-api/internal/models"
	appErrors "github.com/absensi-sd/absensi-api/pkg/errors"
)

type mockAttendanceRepo struct {
	records map[string]models.AttendanceRecord
	history []models.AttendanceHistoryRow
	upserts int
}

func (m *mockAttendanceRepo) Upsert(_ context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error) {
	if m.records == nil {
		m.records = make(map[string]models.AttendanceRecord)
	}
	m.upserts++
	record.RecordedAt = time.Now().UTC()
	m.records[record.ID] = *record
	stored := *record
	return &stored, nil
}

func (m *mockAttendanceRepo) StudentHistory(context.Context, string, int) ([]models.AttendanceHistoryRow, error) {
	return m.history, nil
}

type mockRoster struct {
	students map[string]models.Student
}

func (m *mockRoster) FindByNIS(_ context.Context, nis string) (*models.Student, error) {
	if s, ok := m.students[nis]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

type mockDispatcher struct {
	notices []models.AttendanceNotice
	err     error
}

func (m *mockDispatcher) Dispatch(_ context.Context, notice models.AttendanceNotice) error {
	if m.err != nil {
		return m.err
	}
	m.notices = append(m.notices, notice)
	return nil
}

func newAttendanceFixture(roster *mockRoster) (*AttendanceService, *mockAttendanceRepo, *mockDispatcher) {
	repo := &mockAttendanceRepo{}
	dispatcher := &mockDispatcher{}
	svc := NewAttendanceService(repo, roster, dispatcher, 7*time.Hour, validator.New(), zap.NewNop(), nil)
	svc.now = func() time.Time { return time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC) }
	return svc, repo, dispatcher
}

func alice() *mockRoster {
	return &mockRoster{students: map[string]models.Student{
		"00001": {NIS: "00001", Name: "Alice", Grade: "3", ParentPhone: "6281234567890"},
	}}
}

func TestRecordAttendanceWritesKeyedRecordAndDispatches(t *testing.T) {
	svc, repo, dispatcher := newAttendanceFixture(alice())

	stored, err := svc.Record(context.Background(), RecordAttendanceRequest{NIS: "00001", Status: "Hadir"})
	require.NoError(t, err)

	// 18:00Z plus the 7 hour reporting offset lands on the next day.
	assert.Equal(t, "00001_2024-01-02", stored.ID)
	assert.Equal(t, "2024-01-02", stored.Date)
	assert.Equal(t, models.AttendanceStatusPresent, stored.Status)
	assert.False(t, stored.Notified)
	assert.Len(t, repo.records, 1)

	require.Len(t, dispatcher.notices, 1)
	notice := dispatcher.notices[0]
	assert.Equal(t, "6281234567890", notice.Phone)
	assert.Equal(t, "00001_2024-01-02", notice.RecordID)
	assert.Equal(t, models.AttendanceStatusPresent, notice.Status)
}

func TestRecordAttendanceOverwriteLeavesLatestStatus(t *testing.T) {
	svc, repo, _ := newAttendanceFixture(alice())

	_, err := svc.Record(context.Background(), RecordAttendanceRequest{NIS: "00001", Status: "Hadir"})
	require.NoError(t, err)
	_, err = svc.Record(context.Background(), RecordAttendanceRequest{NIS: "00001", Status: "Sakit"})
	require.NoError(t, err)

	assert.Equal(t, 2, repo.upserts)
	require.Len(t, repo.records, 1)
	assert.Equal(t, models.AttendanceStatusSick, repo.records["00001_2024-01-02"].Status)
}

func TestRecordAttendanceUnknownStudent(t *testing.T) {
	svc, repo, dispatcher := newAttendanceFixture(alice())

	_, err := svc.Record(context.Background(), RecordAttendanceRequest{NIS: "99999", Status: "Hadir"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.records)
	assert.Empty(t, dispatcher.notices)
}

func TestRecordAttendanceInvalidStatus(t *testing.T) {
	svc, repo, dispatcher := newAttendanceFixture(alice())

	_, err := svc.Record(context.Background(), RecordAttendanceRequest{NIS: "00001", Status: "Bolos"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.records)
	assert.Empty(t, dispatcher.notices)
}

func TestRecordAttendanceDispatchFailureStillSucceeds(t *testing.T) {
	roster := alice()
	repo := &mockAttendanceRepo{}
	dispatcher := &mockDispatcher{err: assert.AnError}
	svc := NewAttendanceService(repo, roster, dispatcher, 7*time.Hour, validator.New(), zap.NewNop(), nil)

	stored, err := svc.Record(context.Background(), RecordAttendanceRequest{NIS: "00001", Status: "Alpha"})
	require.NoError(t, err)
	assert.False(t, stored.Notified)
	assert.Len(t, repo.records, 1)
}

type mockViewCache struct {
	dropped []string
}

func (m *mockViewCache) Invalidate(_ context.Context, key string) {
	m.dropped = append(m.dropped, key)
}

func TestRecordAttendanceDropsDashboardView(t *testing.T) {
	svc, _, _ := newAttendanceFixture(alice())
	viewCache := &mockViewCache{}
	svc.UseViewCache(viewCache)

	_, err := svc.Record(context.Background(), RecordAttendanceRequest{NIS: "00001", Status: "Izin"})
	require.NoError(t, err)

	require.Len(t, viewCache.dropped, 1)
	assert.Equal(t, "dashboard:attendance:3:2024-01-02", viewCache.dropped[0])
}

func TestHistoryUnknownStudent(t *testing.T) {
	svc, _, _ := newAttendanceFixture(alice())

	_, err := svc.History(context.Background(), "99999", 10)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTodayUsesReportingOffset(t *testing.T) {
	svc, _, _ := newAttendanceFixture(alice())
	assert.Equal(t, "2024-01-02", svc.Today())
}
