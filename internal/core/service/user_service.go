package service

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/cws/attendance-system/internal/core/domain"
	"github.com/cws/attendance-system/internal/core/ports"
)

// UserService implements user management: partial updates addressed by email
// and face-image uploads feeding the recognition corpus.
type UserService struct {
	repo ports.UserRepository
	log  zerolog.Logger
}

func NewUserService(repo ports.UserRepository, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, log: log}
}

// UpdateByEmail applies the non-empty fields of input to the user addressed
// by email. An empty password leaves the stored hash untouched.
func (s *UserService) UpdateByEmail(ctx context.Context, email string, input ports.UpdateUserInput) (*domain.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if input.Username != "" {
		user.Username = input.Username
	}
	if input.Role != "" {
		user.Role = input.Role
	}
	if input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	if len(input.FaceImage) > 0 {
		user.FaceImage = input.FaceImage
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info().Str("email", email).Str("username", user.Username).Msg("user updated")
	return user, nil
}

// UpdateFaceImageByEmail replaces only the stored face image. An empty image
// is a caller error, not a deletion.
func (s *UserService) UpdateFaceImageByEmail(ctx context.Context, email string, image []byte) (*domain.User, error) {
	if len(image) == 0 {
		return nil, domain.ErrEmptyFaceImage
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	user.FaceImage = image
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info().Str("email", email).Int("bytes", len(image)).Msg("face image updated")
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx)
}
