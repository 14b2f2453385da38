package ports

import (
	"context"

	"github.com/ecommerce-platform/identity-service/internal/core/domain"
)

// RegisterInput carries everything needed to create an account.
// The role is not an input: self-registration always yields CUSTOMER.
type RegisterInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
}

// AuthService defines the identity use-cases. Register and Login return the
// user together with a freshly issued bearer token; the token embeds the
// user's role at issuance time and is not updated afterwards.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.User, error)
}
