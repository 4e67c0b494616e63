package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/absensi-sd/absensi-api/internal/models"
	appErrors "github.com/absensi-sd/absensi-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByNIS(ctx context.Context, nis string) (*models.Student, error)
	Grades(ctx context.Context) ([]string, error)
	Insert(ctx context.Context, student *models.Student) (bool, error)
	Delete(ctx context.Context, nis string) error
}

// StudentService manages the student roster.
type StudentService struct {
	repo      studentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the service.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// RegisterStudentRequest is the registration payload.
type RegisterStudentRequest struct {
	NIS         string `json:"nis" validate:"required,len=5,numeric"`
	Name        string `json:"name" validate:"required"`
	Grade       string `json:"grade" validate:"required,oneof=1 2 3 4 5 6"`
	ParentPhone string `json:"parent_phone" validate:"required,numeric,min=10,max=13"`
}

// Register adds a student to the roster. The NIS must be unused; a duplicate
// registration fails with a conflict and never overwrites the first one.
func (s *StudentService) Register(ctx context.Context, req RegisterStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	student := &models.Student{
		NIS:         req.NIS,
		Name:        req.Name,
		Grade:       req.Grade,
		ParentPhone: models.NormalizeParentPhone(req.ParentPhone),
		CreatedAt:   time.Now().UTC(),
	}

	inserted, err := s.repo.Insert(ctx, student)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register student")
	}
	if !inserted {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student number already registered")
	}

	s.logger.Sugar().Infow("student registered", "nis", student.NIS, "grade", student.Grade)
	return student, nil
}

// List returns the roster with pagination.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 50
	}
	filter.Page = page
	filter.PageSize = size

	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return students, pagination, nil
}

// Get fetches one student by NIS.
func (s *StudentService) Get(ctx context.Context, nis string) (*models.Student, error) {
	student, err := s.repo.FindByNIS(ctx, nis)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}
	return student, nil
}

// Grades lists the distinct grade labels on the roster.
func (s *StudentService) Grades(ctx context.Context) ([]string, error) {
	grades, err := s.repo.Grades(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	return grades, nil
}

// Delete removes a student from the roster. Attendance history is kept.
func (s *StudentService) Delete(ctx context.Context, nis string) error {
	if _, err := s.Get(ctx, nis); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, nis); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	return nil
}
