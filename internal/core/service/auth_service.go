package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ecommerce-platform/identity-service/internal/api/metrics"
	"github.com/ecommerce-platform/identity-service/internal/core/domain"
	"github.com/ecommerce-platform/identity-service/internal/core/password"
	"github.com/ecommerce-platform/identity-service/internal/core/ports"
	"github.com/ecommerce-platform/identity-service/internal/core/token"
)

// LoginThrottle abstracts the brute-force attempt limiter (Redis).
// A throttle outage fails open: availability of the limiter must never
// block logins.
type LoginThrottle interface {
	// Allow reports whether another attempt for email is permitted.
	Allow(ctx context.Context, email string) (bool, error)
	// RecordFailure counts a failed attempt against email's window.
	RecordFailure(ctx context.Context, email string) error
	// Reset clears the window after a successful login.
	Reset(ctx context.Context, email string) error
}

// AuthService implements registration, login, user lookups and role updates.
// All dependencies are injected; there is no ambient state beyond the
// immutable signing secret held by the codec.
type AuthService struct {
	repo     ports.UserRepository
	hasher   *password.Pool
	codec    *token.Codec
	throttle LoginThrottle
	log      zerolog.Logger

	// dummyDigest is compared against when the email is unknown, so absent
	// users and wrong passwords share a latency profile.
	dummyDigest string
}

func NewAuthService(
	repo ports.UserRepository,
	hasher *password.Pool,
	codec *token.Codec,
	throttle LoginThrottle,
	log zerolog.Logger,
) *AuthService {
	s := &AuthService{
		repo:     repo,
		hasher:   hasher,
		codec:    codec,
		throttle: throttle,
		log:      log,
	}

	dummy, err := hasher.Hash(context.Background(), "unknown-account-filler")
	if err != nil {
		log.Warn().Err(err).Msg("could not precompute dummy digest")
	}
	s.dummyDigest = dummy

	return s
}

// Register creates a CUSTOMER account and issues its first token.
// A uniqueness violation surfaced by the store at insert time is reported as
// ErrDuplicateEmail even when the pre-check passed (check-then-act race).
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, string, error) {
	email := domain.NormalizeEmail(in.Email)

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, "", fmt.Errorf("register: %w", err)
	}
	if exists {
		metrics.RegistrationsTotal.WithLabelValues("duplicate_email").Inc()
		return nil, "", domain.ErrDuplicateEmail
	}

	digest, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, "", fmt.Errorf("register: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Email:        email,
		PasswordHash: digest,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PhoneNumber:  in.PhoneNumber,
		Role:         domain.RoleCustomer,
		Enabled:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			metrics.RegistrationsTotal.WithLabelValues("duplicate_email").Inc()
			return nil, "", domain.ErrDuplicateEmail
		}
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, "", fmt.Errorf("register: %w", err)
	}

	tok, err := s.codec.Issue(created.ID, created.Role)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, "", fmt.Errorf("register: issue token: %w", err)
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("user_id", created.ID).Str("email", created.Email).Msg("user registered")

	return created, tok, nil
}

// Login verifies credentials and issues a token carrying the user's current
// role. Unknown email and wrong password yield the same error; a disabled
// account is only revealed after the password checks out.
func (s *AuthService) Login(ctx context.Context, email, plaintext string) (*domain.User, string, error) {
	email = domain.NormalizeEmail(email)

	allowed, err := s.throttle.Allow(ctx, email)
	if err != nil {
		s.log.Warn().Err(err).Msg("login throttle unavailable, failing open")
		allowed = true
	}
	if !allowed {
		metrics.LoginsTotal.WithLabelValues("throttled").Inc()
		return nil, "", domain.ErrTooManyAttempts
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Burn a comparison so the miss is not observably faster.
			_, _ = s.hasher.Verify(ctx, plaintext, s.dummyDigest)
			s.recordFailure(ctx, email)
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			return nil, "", domain.ErrInvalidCredentials
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, "", fmt.Errorf("login: %w", err)
	}

	ok, err := s.hasher.Verify(ctx, plaintext, user.PasswordHash)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, "", fmt.Errorf("login: %w", err)
	}
	if !ok {
		s.recordFailure(ctx, email)
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, "", domain.ErrInvalidCredentials
	}

	if !user.Enabled {
		metrics.LoginsTotal.WithLabelValues("disabled").Inc()
		return nil, "", domain.ErrAccountDisabled
	}

	if err := s.throttle.Reset(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("failed to reset login throttle")
	}

	tok, err := s.codec.Issue(user.ID, user.Role)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, "", fmt.Errorf("login: issue token: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("user_id", user.ID).Msg("user logged in")

	return user, tok, nil
}

// GetUser returns the user with the given id.
func (s *AuthService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers returns every user record.
func (s *AuthService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx)
}

// UpdateRole sets a new role on the user and persists it. Previously issued
// tokens keep the old role until they expire; nothing is re-signed or
// invalidated here. ADMIN-only enforcement happens in the route middleware,
// not in this method.
func (s *AuthService) UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	updated, err := s.repo.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", id).Str("role", string(role)).Msg("user role updated")
	return updated, nil
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if err := s.throttle.RecordFailure(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("failed to record login attempt")
	}
}
