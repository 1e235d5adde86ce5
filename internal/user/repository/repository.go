package repository

import (
	"context"

	"identity-service/internal/user/domain"
)

// Repository defines persistence for users. Lookups match active and inactive
// users alike; deactivation is the only form of deletion.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	// UpdateProfile updates the user's own mutable fields.
	UpdateProfile(ctx context.Context, id, fullName string) (*domain.User, error)
	// UpdateByAdmin updates full name, role, and active flag.
	UpdateByAdmin(ctx context.Context, id string, fullName *string, role *domain.Role, active *bool) (*domain.User, error)
	// Deactivate soft-deletes the user by clearing the active flag.
	Deactivate(ctx context.Context, id string) error
	// ListActive returns active users ordered by creation time descending.
	ListActive(ctx context.Context, limit, offset int) ([]*domain.User, error)
	CountActive(ctx context.Context) (int, error)
}
