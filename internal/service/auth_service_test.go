package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/gympoint/gympoint-api/internal/models"
	appErrors "github.com/gympoint/gympoint-api/pkg/errors"
)

type mockAuthUserRepo struct {
	byEmail map[string]*models.User
	byID    map[int64]*models.User
}

func (m *mockAuthUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := m.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *mockAuthUserRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	user, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func newAuthFixture(t *testing.T) (*mockAuthUserRepo, *AuthService) {
	hash, err := bcrypt.GenerateFromPassword([]byte("123456"), bcrypt.MinCost)
	require.NoError(t, err)
	admin := &models.User{ID: 1, Name: "Admin", Email: "admin@gympoint.com", PasswordHash: string(hash)}
	repo := &mockAuthUserRepo{
		byEmail: map[string]*models.User{admin.Email: admin},
		byID:    map[int64]*models.User{admin.ID: admin},
	}
	svc := NewAuthService(repo, nil, nil, AuthConfig{Secret: "test-secret", Expiration: time.Hour})
	return repo, svc
}

func TestAuthServiceLogin(t *testing.T) {
	_, svc := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@gympoint.com", Password: "123456"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, "admin@gympoint.com", resp.User.Email)

	claims, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
	assert.Equal(t, "Admin", claims.Name)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	_, svc := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@gympoint.com", Password: "wrong"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	_, svc := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "nobody@gympoint.com", Password: "123456"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestAuthServiceValidateTokenRejectsGarbage(t *testing.T) {
	_, svc := newAuthFixture(t)

	_, err := svc.ValidateToken("not.a.token")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestAuthServiceValidateTokenRejectsOtherSecret(t *testing.T) {
	repo, _ := newAuthFixture(t)
	issuer := NewAuthService(repo, nil, nil, AuthConfig{Secret: "other-secret", Expiration: time.Hour})
	verifier := NewAuthService(repo, nil, nil, AuthConfig{Secret: "test-secret", Expiration: time.Hour})

	resp, err := issuer.Login(context.Background(), models.LoginRequest{Email: "admin@gympoint.com", Password: "123456"})
	require.NoError(t, err)

	_, err = verifier.ValidateToken(resp.Token)
	assert.Error(t, err)
}
