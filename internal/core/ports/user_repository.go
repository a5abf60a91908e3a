package ports

import (
	"context"

	"github.com/cws/attendance-system/internal/core/domain"
)

// UserRepository defines persistence operations for users and their face assets.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Update persists the given user in place, addressed by email.
	Update(ctx context.Context, user *domain.User) error
	List(ctx context.Context) ([]*domain.User, error)
	// FindAllFaceAssets returns the (username, image) pair of every user with
	// a stored face image. Users without one are omitted.
	FindAllFaceAssets(ctx context.Context) ([]domain.FaceAsset, error)
}
