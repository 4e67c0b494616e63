package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/absensi-sd/absensi-api/internal/models"
)

// StudentRepository manages persistence for the student roster.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Grade != "" {
		where = append(where, fmt.Sprintf("grade = $%d", len(args)+1))
		args = append(args, filter.Grade)
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("(LOWER(name) LIKE $%d OR nis LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT nis, name, grade, parent_phone, created_at
        FROM students WHERE %s
        ORDER BY grade ASC, name ASC
        LIMIT %d OFFSET %d`, whereClause, size, offset)

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM students WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByNIS fetches a student by its identification number.
func (r *StudentRepository) FindByNIS(ctx context.Context, nis string) (*models.Student, error) {
	const query = `SELECT nis, name, grade, parent_phone, created_at FROM students WHERE nis = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, nis); err != nil {
		return nil, err
	}
	return &student, nil
}

// Grades returns the distinct grade labels currently on the roster.
func (r *StudentRepository) Grades(ctx context.Context) ([]string, error) {
	const query = `SELECT DISTINCT grade FROM students ORDER BY grade ASC`
	var grades []string
	if err := r.db.SelectContext(ctx, &grades, query); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return grades, nil
}

// Insert registers a student. The insert is conditional on the NIS being
// unregistered so concurrent registrations cannot overwrite each other; the
// returned bool reports whether the row was actually written.
func (r *StudentRepository) Insert(ctx context.Context, student *models.Student) (bool, error) {
	const query = `INSERT INTO students (nis, name, grade, parent_phone, created_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (nis) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, student.NIS, student.Name, student.Grade, student.ParentPhone, student.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("insert student: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert student result: %w", err)
	}
	return affected == 1, nil
}

// Delete removes a student by NIS. Existing attendance records are left
// untouched; they carry their own copy of the student fields.
func (r *StudentRepository) Delete(ctx context.Context, nis string) error {
	const query = `DELETE FROM students WHERE nis = $1`
	if _, err := r.db.ExecContext(ctx, query, nis); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}
