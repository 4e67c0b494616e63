package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/absensi-sd/absensi-api/internal/models"
)

// AttendanceRepository handles persistence for attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Upsert writes an attendance record under its derived key. A record already
// present for the same student and day is overwritten, last write wins.
func (r *AttendanceRepository) Upsert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error) {
	if record.ID == "" {
		record.ID = models.RecordKey(record.NIS, record.Date)
	}
	record.RecordedAt = time.Now().UTC()
	const query = `INSERT INTO attendance (id, nis, name, grade, parent_phone, status, date, recorded_at, notified)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id)
DO UPDATE SET status = EXCLUDED.status, recorded_at = EXCLUDED.recorded_at, notified = EXCLUDED.notified
RETURNING id, nis, name, grade, parent_phone, status, date, recorded_at, notified`
	var stored models.AttendanceRecord
	if err := r.db.GetContext(ctx, &stored, query, record.ID, record.NIS, record.Name, record.Grade, record.ParentPhone, record.Status, record.Date, record.RecordedAt, record.Notified); err != nil {
		return nil, fmt.Errorf("upsert attendance: %w", err)
	}
	return &stored, nil
}

// MarkNotified flips the notified flag after the guardian message went out.
func (r *AttendanceRepository) MarkNotified(ctx context.Context, id string) error {
	const query = `UPDATE attendance SET notified = true WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("mark attendance notified: %w", err)
	}
	return nil
}

// ListByGradeAndDate returns the records present for a grade on a day.
// Students without a record simply do not appear; absence of a row is "no
// data", never an implicit Alpha.
func (r *AttendanceRepository) ListByGradeAndDate(ctx context.Context, grade, date string) ([]models.AttendanceRecord, error) {
	const query = `SELECT id, nis, name, grade, parent_phone, status, date, recorded_at, notified
FROM attendance WHERE grade = $1 AND date = $2
ORDER BY name ASC`
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, grade, date); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return records, nil
}

// StudentHistory returns a student's most recent attendance entries.
func (r *AttendanceRepository) StudentHistory(ctx context.Context, nis string, limit int) ([]models.AttendanceHistoryRow, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	query := fmt.Sprintf(`SELECT date, status FROM attendance WHERE nis = $1 ORDER BY date DESC LIMIT %d`, limit)
	var rows []models.AttendanceHistoryRow
	if err := r.db.SelectContext(ctx, &rows, query, nis); err != nil {
		return nil, fmt.Errorf("student attendance history: %w", err)
	}
	return rows, nil
}

// SummaryByGradeAndDate aggregates per-status counts for a grade and day.
func (r *AttendanceRepository) SummaryByGradeAndDate(ctx context.Context, grade, date string) (*models.AttendanceSummary, error) {
	const query = `SELECT status, COUNT(*) AS cnt FROM attendance WHERE grade = $1 AND date = $2 GROUP BY status`
	rows := []struct {
		Status string `db:"status"`
		Count  int    `db:"cnt"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, grade, date); err != nil {
		return nil, fmt.Errorf("attendance summary: %w", err)
	}
	summary := &models.AttendanceSummary{}
	for _, row := range rows {
		switch models.AttendanceStatus(row.Status) {
		case models.AttendanceStatusPresent:
			summary.Present += row.Count
		case models.AttendanceStatusSick:
			summary.Sick += row.Count
		case models.AttendanceStatusExcused:
			summary.Excused += row.Count
		case models.AttendanceStatusAbsent:
			summary.Absent += row.Count
		}
		summary.Total += row.Count
	}
	return summary, nil
}
