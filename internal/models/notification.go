package models

// AttendanceNotice is the ephemeral payload sent to a guardian after an
// attendance write. It is never persisted; the attendance record's notified
// flag is the only durable trace of delivery.
type AttendanceNotice struct {
	RecordID string           `json:"record_id"`
	Phone    string           `json:"phone"`
	Name     string           `json:"name"`
	Grade    string           `json:"grade"`
	Date     string           `json:"date"`
	Status   AttendanceStatus `json:"status"`
}
