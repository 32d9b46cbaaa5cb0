package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/medibook/medibook-api/internal/config"
	"github.com/medibook/medibook-api/internal/domain"
	"github.com/medibook/medibook-api/pkg/auth"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User

	successLogins int
	failedLogins  int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	f.users[u.Email] = &cp
	return nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrInvalidCredentials
}

func (f *fakeUserRepo) UpdateLoginAttempt(_ context.Context, _ uuid.UUID, success bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if success {
		f.successLogins++
	} else {
		f.failedLogins++
	}
	return nil
}

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserRepo) {
	t.Helper()

	users := newFakeUserRepo()
	jwtManager := auth.NewJWTManager(config.JWTConfig{
		Secret:          "unit-test-secret-long-enough-000000",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
		Issuer:          "medibook-test",
	})
	return NewAuthService(users, jwtManager, zap.NewNop()), users
}

func seedUser(t *testing.T, users *fakeUserRepo, mutate func(*domain.User)) *domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)

	patientID := uuid.New()
	u := &domain.User{
		ID:           uuid.New(),
		Email:        "pat@medibook.io",
		PasswordHash: string(hash),
		Role:         domain.RolePatient,
		PatientID:    &patientID,
		IsActive:     true,
	}
	if mutate != nil {
		mutate(u)
	}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestLoginSuccess(t *testing.T) {
	svc, users := newAuthFixture(t)
	u := seedUser(t, users, nil)

	pair, err := svc.Login(context.Background(), u.Email, "correct horse", "10.0.0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.Equal(t, 1, users.successLogins)
	assert.Zero(t, users.failedLogins)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, users := newAuthFixture(t)
	u := seedUser(t, users, nil)

	_, err := svc.Login(context.Background(), u.Email, "wrong", "10.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 1, users.failedLogins)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), "nobody@medibook.io", "whatever", "10.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, users := newAuthFixture(t)
	u := seedUser(t, users, func(u *domain.User) { u.IsActive = false })

	_, err := svc.Login(context.Background(), u.Email, "correct horse", "10.0.0.1")
	assert.ErrorIs(t, err, ErrAccountInactive)
}

func TestLoginLockedAccount(t *testing.T) {
	svc, users := newAuthFixture(t)
	until := time.Now().Add(10 * time.Minute)
	u := seedUser(t, users, func(u *domain.User) { u.LockedUntil = &until })

	_, err := svc.Login(context.Background(), u.Email, "correct horse", "10.0.0.1")
	assert.ErrorIs(t, err, ErrAccountLocked)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	svc, users := newAuthFixture(t)
	u := seedUser(t, users, nil)

	pair, err := svc.Login(context.Background(), u.Email, "correct horse", "10.0.0.1")
	require.NoError(t, err)

	fresh, err := svc.RefreshToken(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.AccessToken)

	// An access token is not accepted as a refresh token.
	_, err = svc.RefreshToken(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshTokenDeactivatedUser(t *testing.T) {
	svc, users := newAuthFixture(t)
	u := seedUser(t, users, nil)

	pair, err := svc.Login(context.Background(), u.Email, "correct horse", "10.0.0.1")
	require.NoError(t, err)

	users.mu.Lock()
	users.users[u.Email].IsActive = false
	users.mu.Unlock()

	_, err = svc.RefreshToken(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
