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

type mockUserRepo struct {
	users map[string]models.User // keyed by email
}

func (m *mockUserRepo) Create(_ context.Context, user *models.User) error {
	if m.users == nil {
		m.users = make(map[string]models.User)
	}
	m.users[user.Email] = *user
	return nil
}

func (m *mockUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := m.users[email]; ok {
		return &u, nil
	}
	return nil, sql.ErrNoRows
}

func newAuthService(repo *mockUserRepo) *AuthService {
	return NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		TokenSecret: "test_secret",
		TokenExpiry: 24 * time.Hour,
	})
}

func TestAuthServiceRegisterAssignsTeacherRole(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newAuthService(repo)

	info, err := svc.Register(context.Background(), RegisterTeacherRequest{Name: "Bu Guru", Email: "guru@sekolah.sch.id", Password: "rahasia1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, info.Role)

	stored := repo.users["guru@sekolah.sch.id"]
	assert.NotEqual(t, "rahasia1", stored.PasswordHash)
}

func TestAuthServiceRegisterDuplicateEmail(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newAuthService(repo)

	_, err := svc.Register(context.Background(), RegisterTeacherRequest{Name: "A", Email: "guru@sekolah.sch.id", Password: "rahasia1"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterTeacherRequest{Name: "B", Email: "guru@sekolah.sch.id", Password: "rahasia2"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginRoundTrip(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newAuthService(repo)

	_, err := svc.Register(context.Background(), RegisterTeacherRequest{Name: "Bu Guru", Email: "guru@sekolah.sch.id", Password: "rahasia1"})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "guru@sekolah.sch.id", Password: "rahasia1"})
	require.NoError(t, err)
	assert.Equal(t, int64((24 * time.Hour).Seconds()), resp.ExpiresIn)
	assert.Equal(t, "Bu Guru", resp.User.Name)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "guru@sekolah.sch.id", claims.Email)
	assert.Equal(t, models.RoleTeacher, claims.Role)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newAuthService(repo)

	_, err := svc.Register(context.Background(), RegisterTeacherRequest{Name: "Bu Guru", Email: "guru@sekolah.sch.id", Password: "rahasia1"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "guru@sekolah.sch.id", Password: "salah"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenGarbage(t *testing.T) {
	svc := newAuthService(&mockUserRepo{})

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
