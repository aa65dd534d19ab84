package entities

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

const (
	RoleStudent = "student"
	RoleOwner   = "owner"
)

type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         string
	FirstName    string
	LastName     string

	// ShopID is set only for owners.
	ShopID int64
}

// UserUpdate carries a partial profile update; nil fields are left untouched.
type UserUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
}
