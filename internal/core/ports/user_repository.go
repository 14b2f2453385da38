package ports

import (
	"context"

	"github.com/ecommerce-platform/identity-service/internal/core/domain"
)

// UserRepository defines the persistence operations the identity core needs
// from the credential store. Email uniqueness must be enforced atomically by
// the implementation (unique index or equivalent); Create returns
// domain.ErrDuplicateEmail on a violation.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByEmail looks up by canonical (lower-cased) email.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}
