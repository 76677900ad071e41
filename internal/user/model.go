package user

import (
	"errors"
	"time"

	"github.com/gofrs/uuid"
)

const RoleUser = "USER"

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("email already registered")
	ErrPhoneExists        = errors.New("phone already registered")
	ErrInvalidCredentials = errors.New("invalid password")
	ErrInvalidOTP         = errors.New("invalid OTP format, must be 6 digits")
)

// User is an account of the storefront.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	Phone        string    `json:"phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProfileUpdate carries optional profile fields; empty values are left unchanged.
type ProfileUpdate struct {
	FullName string
	Phone    string
	Address  string
}
