package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/guard-duty-service/internal/auth"
	"github.com/spec-kit/guard-duty-service/internal/domain"
	apperrors "github.com/spec-kit/guard-duty-service/pkg/util"
)

type fakeUserRepo struct {
	byEmail map[string]*domain.User
	nextID  int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]*domain.User{}, nextID: 1}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	user.ID = f.nextID
	f.nextID++
	f.byEmail[user.Email] = user
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func newAuthFixture() (*AuthService, *fakeUserRepo) {
	repo := newFakeUserRepo()
	tokens := auth.NewTokenManager("test-secret", 30)
	return NewAuthService(repo, tokens, 4, zap.NewNop()), repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthFixture()

	session, err := svc.Register(context.Background(), "Ops@Example.com", "Ops", "longenough")
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", session.User.Email)
	assert.NotEmpty(t, session.Token)

	login, err := svc.Login(context.Background(), "ops@example.com", "longenough")
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, login.User.ID)

	claims, err := svc.TokenManager().ParseToken(login.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims.UserID)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), "not-an-email", "Ops", "longenough")
	require.Error(t, err)

	_, err = svc.Register(context.Background(), "ops@example.com", "", "longenough")
	require.Error(t, err)

	_, err = svc.Register(context.Background(), "ops@example.com", "Ops", "short")
	require.Error(t, err)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), "ops@example.com", "Ops", "longenough")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "ops@example.com", "Other", "longenough")
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestLoginBadCredentials(t *testing.T) {
	svc, _ := newAuthFixture()
	_, err := svc.Register(context.Background(), "ops@example.com", "Ops", "longenough")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "ops@example.com", "wrong")
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "UNAUTHORIZED", domainErr.Code)

	_, err = svc.Login(context.Background(), "nobody@example.com", "whatever")
	require.Error(t, err)
}
