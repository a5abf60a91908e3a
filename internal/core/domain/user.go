package domain

import (
	"errors"
	"time"
)

const (
	RoleAdmin   = "admin"
	RoleStaff   = "staff"
	RoleStudent = "student"
)

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrEmptyFaceImage = errors.New("face image is empty")

// User models a person tracked by the attendance system. Username is the
// identity key for face assets and attendance; email is a login credential
// and addressing key for user management only.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	FaceImage    []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasFaceImage reports whether the user carries a non-empty face asset and
// therefore participates in corpus materialization.
func (u *User) HasFaceImage() bool {
	return len(u.FaceImage) > 0
}

// FaceAsset is the (identity, image bytes) pair projected into the staging
// directory for the recognition worker.
type FaceAsset struct {
	Username string
	Image    []byte
}
