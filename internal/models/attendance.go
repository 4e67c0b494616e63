package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "Hadir"
	AttendanceStatusSick    AttendanceStatus = "Sakit"
	AttendanceStatusExcused AttendanceStatus = "Izin"
	AttendanceStatusAbsent  AttendanceStatus = "Alpha"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusSick, AttendanceStatusExcused, AttendanceStatusAbsent:
		return true
	default:
		return false
	}
}

// AttendanceRecord is one student's attendance for one day. Student fields
// are denormalized into the row so a record stays readable even after the
// student is removed from the roster.
type AttendanceRecord struct {
	ID          string           `db:"id" json:"id"`
	NIS         string           `db:"nis" json:"nis"`
	Name        string           `db:"name" json:"name"`
	Grade       string           `db:"grade" json:"grade"`
	ParentPhone string           `db:"parent_phone" json:"parent_phone"`
	Status      AttendanceStatus `db:"status" json:"status"`
	Date        string           `db:"date" json:"date"`
	RecordedAt  time.Time        `db:"recorded_at" json:"recorded_at"`
	Notified    bool             `db:"notified" json:"notified"`
}

// AttendanceHistoryRow captures one entry of a student's history.
type AttendanceHistoryRow struct {
	Date   string           `db:"date" json:"date"`
	Status AttendanceStatus `db:"status" json:"status"`
}

// AttendanceSummary aggregates per-status counts for a grade and day.
type AttendanceSummary struct {
	Present int `json:"present"`
	Sick    int `json:"sick"`
	Excused int `json:"excused"`
	Absent  int `json:"absent"`
	Total   int `json:"total"`
}

// RecordKey derives the attendance record identifier for a student and day.
// The date must already be formatted YYYY-MM-DD.
func RecordKey(nis, date string) string {
	return nis + "_" + date
}

// ReportingDay converts an instant to the calendar date string in the
// reporting timezone. The offset is applied as a plain shift before
// truncation; there is no DST or historical-offset handling.
func ReportingDay(t time.Time, offset time.Duration) string {
	return t.UTC().Add(offset).Format("2006-01-02")
}
