package ports

import (
	"context"

	"github.com/cws/attendance-system/internal/core/domain"
)

// UpdateUserInput carries the optional fields of a user update. Nil or empty
// fields are left untouched.
type UpdateUserInput struct {
	Username  string
	Password  string
	Role      string
	FaceImage []byte
}

// UserService defines user-management use cases. Users are addressed by
// email here; attendance and recognition address them by username.
type UserService interface {
	UpdateByEmail(ctx context.Context, email string, input UpdateUserInput) (*domain.User, error)
	UpdateFaceImageByEmail(ctx context.Context, email string, image []byte) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}
