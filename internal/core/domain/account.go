package domain

import (
	"errors"
	"time"
)

// Kind selects which principal population an account belongs to. Customers
// and operators live in separate collections and never share an email space.
type Kind string

const (
	KindUser     Kind = "user"
	KindOperator Kind = "operator"
)

// Valid reports whether k names a known principal kind.
func (k Kind) Valid() bool {
	return k == KindUser || k == KindOperator
}

// RoutePrefix returns the public URL segment for the kind's endpoints; the
// operator surface is historically mounted under /admin.
func (k Kind) RoutePrefix() string {
	if k == KindOperator {
		return "admin"
	}
	return "user"
}

// RoleFlags carries the capability set of an operator account. Both flags are
// false for customer accounts. An operator that is not an administrator is a
// restricted backend account.
type RoleFlags struct {
	IsAdministrator bool `json:"is_administrator" bson:"is_administrator"`
	IsOperator      bool `json:"is_operator" bson:"is_operator"`
}

// Account models a single principal of either kind. PhoneNumber is only
// populated for customers; RoleFlags only for operators.
type Account struct {
	ID           string    `json:"id"`
	Kind         Kind      `json:"kind"`
	UserName     string    `json:"user_name,omitempty"`
	Email        string    `json:"email"`
	PhoneNumber  string    `json:"phone_number,omitempty"`
	Address      string    `json:"address,omitempty"`
	PasswordHash string    `json:"-"`
	Roles        RoleFlags `json:"roles"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	AvatarName   string    `json:"avatar_name,omitempty"`
	LastLoginAt  time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Validation failures (malformed input shape).
var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInvalidPhoneNumber = errors.New("invalid phone number")
	ErrInvalidName        = errors.New("invalid user name")
	ErrInvalidAddress     = errors.New("invalid address")
)

// Conflicts (uniqueness violations, password reuse).
var (
	ErrEmailTaken       = errors.New("email already registered")
	ErrPhoneNumberTaken = errors.New("phone number already registered")
	ErrPasswordReused   = errors.New("new password cannot equal the current password")
)

// Lookup and credential failures.
var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Authorization failures.
var (
	ErrUnauthorized   = errors.New("not authenticated")
	ErrForbidden      = errors.New("access forbidden")
	ErrResetForbidden = errors.New("not authenticated to reset password")
)
