package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"ops-journal/internal/config"
	"ops-journal/internal/domain"
	"ops-journal/internal/pkg/ratelimit"
	"ops-journal/internal/repository"
	"ops-journal/internal/service/audit"
	"ops-journal/internal/service/auth"
	"ops-journal/tests/mocks"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: 24 * time.Hour,
		LoginRateLimit:   10,
		LoginRateWindow:  time.Minute,
	}
}

func newService(userRepo *mocks.UserRepository, sessionRepo *mocks.SessionRepository, limiter ratelimit.Limiter) auth.Service {
	auditRepo := new(mocks.AuditEventRepository)
	auditRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()

	if limiter == nil {
		limiter = ratelimit.NewMemoryLimiter(10, time.Minute)
	}
	return auth.NewService(userRepo, sessionRepo, audit.NewService(auditRepo), limiter, testConfig())
}

func testUser(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)

	return &domain.User{
		ID:           uuid.New(),
		Email:        "sam@example.com",
		PasswordHash: string(hash),
		FullName:     "Sam",
		Role:         domain.RoleEditor,
		IsActive:     true,
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials issue a token pair", func(t *testing.T) {
		user := testUser(t, "correct horse")
		userRepo := new(mocks.UserRepository)
		userRepo.On("GetByEmail", mock.Anything, "sam@example.com").Return(user, nil)

		var session *repository.Session
		sessionRepo := new(mocks.SessionRepository)
		sessionRepo.On("Create", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				session = args.Get(1).(*repository.Session)
			}).Return(nil)

		svc := newService(userRepo, sessionRepo, nil)

		tokens, gotUser, err := svc.Login(ctx, domain.LoginInput{Email: "Sam@Example.com", Password: "correct horse"}, domain.RequestMeta{})

		assert.NoError(t, err)
		assert.Equal(t, user.ID, gotUser.ID)
		assert.NotEmpty(t, tokens.AccessToken)
		assert.NotEmpty(t, tokens.RefreshToken)

		claims, err := svc.ValidateAccessToken(tokens.AccessToken)
		assert.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, domain.RoleEditor, claims.Role)

		assert.NotNil(t, session)
		assert.NotEqual(t, tokens.RefreshToken, session.TokenHash, "refresh token must be stored hashed")
	})

	t.Run("wrong password fails", func(t *testing.T) {
		user := testUser(t, "correct horse")
		userRepo := new(mocks.UserRepository)
		userRepo.On("GetByEmail", mock.Anything, "sam@example.com").Return(user, nil)
		svc := newService(userRepo, new(mocks.SessionRepository), nil)

		_, _, err := svc.Login(ctx, domain.LoginInput{Email: "sam@example.com", Password: "wrong"}, domain.RequestMeta{})

		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown email fails the same way", func(t *testing.T) {
		userRepo := new(mocks.UserRepository)
		userRepo.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, nil)
		svc := newService(userRepo, new(mocks.SessionRepository), nil)

		_, _, err := svc.Login(ctx, domain.LoginInput{Email: "nobody@example.com", Password: "whatever"}, domain.RequestMeta{})

		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("inactive account cannot log in", func(t *testing.T) {
		user := testUser(t, "correct horse")
		user.IsActive = false
		userRepo := new(mocks.UserRepository)
		userRepo.On("GetByEmail", mock.Anything, "sam@example.com").Return(user, nil)
		svc := newService(userRepo, new(mocks.SessionRepository), nil)

		_, _, err := svc.Login(ctx, domain.LoginInput{Email: "sam@example.com", Password: "correct horse"}, domain.RequestMeta{})

		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("attempts beyond the rate limit are blocked", func(t *testing.T) {
		user := testUser(t, "correct horse")
		userRepo := new(mocks.UserRepository)
		userRepo.On("GetByEmail", mock.Anything, "sam@example.com").Return(user, nil)

		limiter := ratelimit.NewMemoryLimiter(2, time.Minute)
		svc := newService(userRepo, new(mocks.SessionRepository), limiter)

		input := domain.LoginInput{Email: "sam@example.com", Password: "wrong"}
		for i := 0; i < 2; i++ {
			_, _, err := svc.Login(ctx, input, domain.RequestMeta{})
			assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
		}

		_, _, err := svc.Login(ctx, input, domain.RequestMeta{})
		assert.ErrorIs(t, err, auth.ErrTooManyAttempts)
	})
}

func TestRefreshToken(t *testing.T) {
	ctx := context.Background()

	t.Run("valid refresh rotates the session", func(t *testing.T) {
		user := testUser(t, "correct horse")
		userRepo := new(mocks.UserRepository)
		userRepo.On("GetByEmail", mock.Anything, "sam@example.com").Return(user, nil)
		userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

		var lastSession *repository.Session
		sessionRepo := new(mocks.SessionRepository)
		sessionRepo.On("Create", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				lastSession = args.Get(1).(*repository.Session)
			}).Return(nil)
		sessionRepo.On("Revoke", mock.Anything, mock.Anything).Return(nil)

		svc := newService(userRepo, sessionRepo, nil)

		tokens, _, err := svc.Login(ctx, domain.LoginInput{Email: "sam@example.com", Password: "correct horse"}, domain.RequestMeta{})
		assert.NoError(t, err)
		assert.NotNil(t, lastSession)

		sessionRepo.On("GetByTokenHash", mock.Anything, lastSession.TokenHash).Return(lastSession, nil)

		rotated, err := svc.RefreshToken(ctx, tokens.RefreshToken, domain.RequestMeta{})
		assert.NoError(t, err)
		assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)
		sessionRepo.AssertCalled(t, "Revoke", mock.Anything, mock.Anything)
	})

	t.Run("unknown refresh token is rejected", func(t *testing.T) {
		sessionRepo := new(mocks.SessionRepository)
		sessionRepo.On("GetByTokenHash", mock.Anything, mock.Anything).Return(nil, nil)
		svc := newService(new(mocks.UserRepository), sessionRepo, nil)

		_, err := svc.RefreshToken(ctx, "bogus", domain.RequestMeta{})

		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}

func TestValidateAccessToken(t *testing.T) {
	svc := newService(new(mocks.UserRepository), new(mocks.SessionRepository), nil)

	_, err := svc.ValidateAccessToken("not.a.jwt")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
