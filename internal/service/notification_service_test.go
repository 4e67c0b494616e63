package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/absensi-sd/absensi-api/internal/models"
	"github.com/absensi-sd/absensi-api/pkg/config"
	"github.com/absensi-sd/absensi-api/pkg/jobs"
)

type mockGateway struct {
	mu      sync.Mutex
	sent    []models.AttendanceNotice
	failFor int // fail the first n calls
	calls   int
}

func (m *mockGateway) SendAttendanceNotice(_ context.Context, notice models.AttendanceNotice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.calls <= m.failFor {
		return assert.AnError
	}
	m.sent = append(m.sent, notice)
	return nil
}

type mockMarker struct {
	mu     sync.Mutex
	marked []string
}

func (m *mockMarker) MarkNotified(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.marked = append(m.marked, id)
	return nil
}

func (m *mockMarker) ids() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.marked...)
}

func testNotice() models.AttendanceNotice {
	return models.AttendanceNotice{
		RecordID: "00001_2024-01-02",
		Phone:    "6281234567890",
		Name:     "Alice",
		Grade:    "3",
		Date:     "2024-01-02",
		Status:   models.AttendanceStatusPresent,
	}
}

func TestNotificationProcessMarksRecordNotified(t *testing.T) {
	gateway := &mockGateway{}
	marker := &mockMarker{}
	svc := NewNotificationService(gateway, marker, config.NotifyConfig{}, zap.NewNop(), nil)

	err := svc.process(context.Background(), jobs.Job{ID: "00001_2024-01-02", Payload: testNotice()})
	require.NoError(t, err)
	assert.Equal(t, []string{"00001_2024-01-02"}, marker.ids())
	assert.Len(t, gateway.sent, 1)
}

func TestNotificationProcessPropagatesGatewayError(t *testing.T) {
	gateway := &mockGateway{failFor: 1}
	marker := &mockMarker{}
	svc := NewNotificationService(gateway, marker, config.NotifyConfig{}, zap.NewNop(), nil)

	err := svc.process(context.Background(), jobs.Job{ID: "x", Payload: testNotice()})
	require.Error(t, err)
	assert.Empty(t, marker.ids())
}

func TestNotificationDispatchRetriesUntilDelivered(t *testing.T) {
	gateway := &mockGateway{failFor: 1}
	marker := &mockMarker{}
	svc := NewNotificationService(gateway, marker, config.NotifyConfig{
		Workers:    1,
		MaxRetries: 3,
		RetryDelay: 10 * time.Millisecond,
	}, zap.NewNop(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	require.NoError(t, svc.Dispatch(ctx, testNotice()))

	require.Eventually(t, func() bool {
		return len(marker.ids()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"00001_2024-01-02"}, marker.ids())
}

func TestNotificationDispatchBeforeStartFails(t *testing.T) {
	svc := NewNotificationService(&mockGateway{}, &mockMarker{}, config.NotifyConfig{}, zap.NewNop(), nil)
	require.Error(t, svc.Dispatch(context.Background(), testNotice()))
}
