package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/absensi-sd/absensi-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestStudentRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows([]string{"nis", "name", "grade", "parent_phone", "created_at"}).
		AddRow("00001", "Alice", "3", "6281234567890", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT nis, name, grade, parent_phone, created_at")).
		WithArgs("3").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students")).
		WithArgs("3").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	students, total, err := repo.List(context.Background(), models.StudentFilter{Grade: "3"})
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "00001", students[0].NIS)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryInsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students").
		WithArgs("00001", "Alice", "3", "6281234567890", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	inserted, err := repo.Insert(context.Background(), &models.Student{NIS: "00001", Name: "Alice", Grade: "3", ParentPhone: "6281234567890"})
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryInsertConflictWritesNothing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	// ON CONFLICT DO NOTHING reports zero affected rows for a duplicate NIS.
	mock.ExpectExec("INSERT INTO students").
		WithArgs("00001", "Bob", "4", "6289999999999", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err := repo.Insert(context.Background(), &models.Student{NIS: "00001", Name: "Bob", Grade: "4", ParentPhone: "6289999999999"})
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByNISNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT nis, name, grade, parent_phone, created_at FROM students WHERE nis = $1")).
		WithArgs("99999").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByNIS(context.Background(), "99999")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestStudentRepositoryGrades(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT grade FROM students ORDER BY grade ASC")).
		WillReturnRows(sqlmock.NewRows([]string{"grade"}).AddRow("1").AddRow("3"))

	grades, err := repo.Grades(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, grades)
}

func TestStudentRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM students WHERE nis = $1")).
		WithArgs("00001").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "00001"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
