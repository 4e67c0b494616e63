package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAttendanceStatusValid(t *testing.T) {
	for _, s := range []AttendanceStatus{AttendanceStatusPresent, AttendanceStatusSick, AttendanceStatusExcused, AttendanceStatusAbsent} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, AttendanceStatus("").Valid())
	assert.False(t, AttendanceStatus("Bolos").Valid())
}

func TestRecordKey(t *testing.T) {
	assert.Equal(t, "00001_2024-01-02", RecordKey("00001", "2024-01-02"))
}

func TestReportingDayShiftsAcrossMidnight(t *testing.T) {
	instant := time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-02", ReportingDay(instant, 7*time.Hour))
	assert.Equal(t, "2024-01-01", ReportingDay(instant, 0))
}

func TestReportingDayNormalisesNonUTCInput(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	instant := time.Date(2024, 3, 10, 1, 0, 0, 0, loc) // 2024-03-09T16:00Z
	assert.Equal(t, "2024-03-09", ReportingDay(instant, 7*time.Hour))
}

func TestNormalizeParentPhone(t *testing.T) {
	assert.Equal(t, "6281234567890", NormalizeParentPhone("081234567890"))
	assert.Equal(t, "6281234567890", NormalizeParentPhone("6281234567890"))
	assert.Equal(t, "81234567890", NormalizeParentPhone("81234567890"))
}
