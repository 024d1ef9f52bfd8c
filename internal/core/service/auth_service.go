package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/agrienergy/connect/internal/api/metrics"
	"github.com/agrienergy/connect/internal/core/domain"
	"github.com/agrienergy/connect/internal/core/ports"
)

// TokenIssuer signs bearer tokens for verified principals.
type TokenIssuer interface {
	Issue(subject, userID string, role domain.Role) (string, time.Time, error)
}

// AuthService implements login.
type AuthService struct {
	users  ports.UserRepository
	issuer TokenIssuer
	guard  ports.LoginGuard
	log    zerolog.Logger
}

// NewAuthService wires the login use case. guard may be nil, which disables
// the account lockout.
func NewAuthService(users ports.UserRepository, issuer TokenIssuer, guard ports.LoginGuard, log zerolog.Logger) *AuthService {
	return &AuthService{users: users, issuer: issuer, guard: guard, log: log}
}

// Login verifies credentials and issues a token. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	if s.locked(ctx, email) {
		metrics.LoginAttemptsTotal.WithLabelValues("locked").Inc()
		return nil, domain.ErrAccountLocked
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.recordFailure(ctx, email)
			metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.recordFailure(ctx, email)
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	role, err := domain.ParseRole(string(user.Role))
	if err != nil {
		s.log.Warn().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("login rejected: no usable role")
		metrics.LoginAttemptsTotal.WithLabelValues("no_role").Inc()
		return nil, domain.ErrNoRole
	}

	raw, exp, err := s.issuer.Issue(user.Email, user.ID, role)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("login: %w", err)
	}

	if s.guard != nil {
		if err := s.guard.Reset(ctx, email); err != nil {
			s.log.Warn().Err(err).Msg("failed to reset login failures")
		}
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	metrics.TokensIssuedTotal.WithLabelValues(string(role)).Inc()
	s.log.Info().Str("user_id", user.ID).Str("role", string(role)).Msg("token issued")

	return &ports.LoginResult{Token: raw, ExpiresAt: exp, User: user}, nil
}

// locked fails open: a lockout store outage must not block every login.
func (s *AuthService) locked(ctx context.Context, email string) bool {
	if s.guard == nil {
		return false
	}
	locked, err := s.guard.IsLocked(ctx, email)
	if err != nil {
		s.log.Warn().Err(err).Msg("lockout check failed, continuing")
		return false
	}
	return locked
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if s.guard == nil {
		return
	}
	if err := s.guard.RecordFailure(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("failed to record login failure")
	}
}
