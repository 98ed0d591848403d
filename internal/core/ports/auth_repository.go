package ports

import (
	"context"

	"github.com/haulmatch/dispatch-api/internal/core/domain"
)

// AuthRepository defines the interface for user authentication persistence.
type AuthRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// FindByTruckID returns the account bound to truckID.
	FindByTruckID(ctx context.Context, truckID string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
