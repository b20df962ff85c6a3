package auth

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/wolfman30/leadflow/internal/observability/metrics"
	"github.com/wolfman30/leadflow/pkg/logging"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	issuer, err := NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)
	return NewService(
		NewInMemoryUserStore(),
		issuer,
		NewInMemorySessionStore(),
		metrics.NewAuthMetrics(prometheus.NewRegistry()),
		logging.Default(),
	).WithHashCost(bcrypt.MinCost)
}

func TestService_RegisterAndLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, &RegisterRequest{Name: " Test User ", Email: "TestUser@Gmail.com", Password: "Test1234"})
	require.NoError(t, err)
	assert.Equal(t, "Test User", session.User.Name)
	assert.Equal(t, "testuser@gmail.com", session.User.Email)
	assert.NotEqual(t, "Test1234", session.User.PasswordHash)
	assert.NotEmpty(t, session.Token)

	login, err := svc.Login(ctx, &LoginRequest{Email: "testuser@gmail.com", Password: "Test1234"})
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, login.User.ID)

	claims, err := svc.Authenticate(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims.UserID())
}

func TestService_RegisterRejectsDuplicatesAndBadInput(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterRequest{Name: "A", Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, &RegisterRequest{Name: "B", Email: "A@example.com", Password: "secret2"})
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = svc.Register(ctx, &RegisterRequest{Name: "C", Email: "not-an-email", Password: "secret3"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Register(ctx, &RegisterRequest{Name: "D", Email: "d@example.com", Password: "123"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_LoginFailuresAreIndistinguishable(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterRequest{Name: "A", Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &LoginRequest{Email: "a@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, &LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, &LoginRequest{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_LogoutRevokesToken(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, &RegisterRequest{Name: "A", Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, session.Token))
	_, err = svc.Authenticate(ctx, session.Token)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	assert.NoError(t, svc.Logout(ctx, "not-a-token"))
}

func TestService_Me(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, &RegisterRequest{Name: "A", Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)

	user, err := svc.Me(ctx, session.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", user.Email)

	_, err = svc.Me(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
