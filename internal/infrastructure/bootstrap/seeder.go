// Package bootstrap provisions the well-known default accounts at process
// start. Seeding is idempotent: accounts are created only when their email
// is absent, so re-running against an initialized store performs no writes.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ecommerce-platform/identity-service/internal/core/domain"
	"github.com/ecommerce-platform/identity-service/internal/core/password"
	"github.com/ecommerce-platform/identity-service/internal/core/ports"
)

type seedUser struct {
	email     string
	password  string
	firstName string
	lastName  string
	role      domain.Role
}

var defaultUsers = []seedUser{
	{"admin@ecommerce.com", "Admin@123", "Admin", "User", domain.RoleAdmin},
	{"manager@ecommerce.com", "Manager@123", "Manager", "User", domain.RoleManager},
	{"employee@ecommerce.com", "Employee@123", "Employee", "User", domain.RoleEmployee},
	{"customer@ecommerce.com", "Customer@123", "Customer", "User", domain.RoleCustomer},
}

// Seeder writes through the repository directly rather than via the
// registration use-case, which would force every account to CUSTOMER.
type Seeder struct {
	repo   ports.UserRepository
	hasher *password.Pool
	log    zerolog.Logger
}

func NewSeeder(repo ports.UserRepository, hasher *password.Pool, log zerolog.Logger) *Seeder {
	return &Seeder{repo: repo, hasher: hasher, log: log}
}

// Run ensures one account per role exists.
func (s *Seeder) Run(ctx context.Context) error {
	for _, su := range defaultUsers {
		if err := s.ensure(ctx, su); err != nil {
			return fmt.Errorf("seed %s: %w", su.email, err)
		}
	}
	return nil
}

func (s *Seeder) ensure(ctx context.Context, su seedUser) error {
	email := domain.NormalizeEmail(su.email)

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	digest, err := s.hasher.Hash(ctx, su.password)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = s.repo.Create(ctx, &domain.User{
		Email:        email,
		PasswordHash: digest,
		FirstName:    su.firstName,
		LastName:     su.lastName,
		Role:         su.role,
		Enabled:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, domain.ErrDuplicateEmail) {
		// Another instance seeded first; that is fine.
		return nil
	}
	if err != nil {
		return err
	}

	s.log.Info().Str("email", email).Str("role", string(su.role)).Msg("created default user")
	return nil
}
