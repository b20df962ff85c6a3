package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/crypto/bcrypt"

	"github.com/wolfman30/leadflow/internal/observability/metrics"
	"github.com/wolfman30/leadflow/pkg/logging"
)

var authTracer = otel.Tracer("leadflow.internal.auth")

// Session is an authenticated user plus the token that proves it.
type Session struct {
	User   *User
	Token  string
	Claims *Claims
}

// Service registers users, checks passwords and manages session tokens.
type Service struct {
	users    UserStore
	tokens   *TokenIssuer
	sessions SessionStore
	metrics  *metrics.AuthMetrics
	logger   *logging.Logger
	cost     int
}

func NewService(users UserStore, tokens *TokenIssuer, sessions SessionStore, m *metrics.AuthMetrics, logger *logging.Logger) *Service {
	if users == nil || tokens == nil || sessions == nil {
		panic("auth: user store, token issuer and session store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		users:    users,
		tokens:   tokens,
		sessions: sessions,
		metrics:  m,
		logger:   logger,
		cost:     bcrypt.DefaultCost,
	}
}

// WithHashCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func (s *Service) WithHashCost(cost int) *Service {
	s.cost = cost
	return s
}

// Register creates an account and signs the user in.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*Session, error) {
	ctx, span := authTracer.Start(ctx, "auth.register")
	defer span.End()

	session, err := s.register(ctx, req)
	s.metrics.ObserveAttempt("register", err == nil)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("leadflow.user_id", session.User.ID))
	s.logger.Info("user registered", "user_id", session.User.ID)
	return session, nil
}

func (s *Service) register(ctx context.Context, req *RegisterRequest) (*Session, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	user := &User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.issue(user)
}

// Login checks the password and issues a fresh token.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*Session, error) {
	ctx, span := authTracer.Start(ctx, "auth.login")
	defer span.End()

	session, err := s.login(ctx, req)
	s.metrics.ObserveAttempt("login", err == nil)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.logger.Info("user logged in", "user_id", session.User.ID)
	return session, nil
}

func (s *Service) login(ctx context.Context, req *LoginRequest) (*Session, error) {
	if err := req.Validate(); err != nil {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

// Authenticate verifies a presented token and rejects revoked ones.
func (s *Service) Authenticate(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	revoked, err := s.sessions.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Logout revokes token. Invalid or already expired tokens are ignored so
// logging out always succeeds from the client's point of view.
func (s *Service) Logout(ctx context.Context, token string) error {
	ctx, span := authTracer.Start(ctx, "auth.logout")
	defer span.End()

	claims, err := s.tokens.Verify(token)
	if err != nil {
		s.metrics.ObserveAttempt("logout", true)
		return nil
	}
	err = s.sessions.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
	s.metrics.ObserveAttempt("logout", err == nil)
	if err != nil {
		span.RecordError(err)
		return err
	}
	s.logger.Info("user logged out", "user_id", claims.UserID())
	return nil
}

// Me returns the account behind userID.
func (s *Service) Me(ctx context.Context, userID string) (*User, error) {
	return s.users.GetByID(ctx, userID)
}

// TokenTTL reports how long issued tokens remain valid.
func (s *Service) TokenTTL() time.Duration {
	return s.tokens.TTL()
}

func (s *Service) issue(user *User) (*Session, error) {
	token, claims, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token, Claims: claims}, nil
}
