package ports

import (
	"context"

	"github.com/haulmatch/dispatch-api/internal/core/domain"
)

// RegisterInput carries the fields accepted at sign-up.
type RegisterInput struct {
	Username string
	Password string
	Email    string
	Role     string
	TruckID  string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}
