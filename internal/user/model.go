package user

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.New(http.StatusNotFound, "user not found")
	ErrEmailAlreadyUsed   = apperror.New(http.StatusConflict, "email already used")
	ErrInvalidCredentials = apperror.New(http.StatusUnauthorized, "invalid email or password")
	ErrInactiveUser       = apperror.New(http.StatusForbidden, "user is inactive")
	ErrEmailRequired      = apperror.New(http.StatusBadRequest, "email is required")
	ErrPasswordTooShort   = apperror.New(http.StatusBadRequest, "password is too short")
	ErrPasswordTooLong    = apperror.New(http.StatusBadRequest, "password is too long")
)

// User is a hotel guest account. Administrators manage rooms and may act on any booking.
type User struct {
	ID           string // UUID
	Email        string
	PasswordHash string
	DisplayName  *string
	Phone        *string
	IsActive     bool
	IsAdmin      bool
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// Filter defines filter options for listing users.
type Filter struct {
	Email       string
	DisplayName string
	IsActive    *bool // nil means "any"
	IsAdmin     *bool

	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// RegisterRequest carries the fields accepted at sign-up.
type RegisterRequest struct {
	Email       string
	Password    string
	DisplayName string
	Phone       string
}

// UpdateRequest holds optional fields; nil leaves the stored value untouched.
type UpdateRequest struct {
	DisplayName *string
	Phone       *string
	IsActive    *bool
	IsAdmin     *bool
}
