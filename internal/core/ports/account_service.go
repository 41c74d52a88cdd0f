package ports

import (
	"context"

	"github.com/spoonhq/accounts-api/internal/core/domain"
)

// RegisterInput carries a self-service registration. PhoneNumber is required
// for customers and ignored for operators.
type RegisterInput struct {
	Kind        domain.Kind
	Email       string
	Password    string
	PhoneNumber string
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	Token   string
	Account *domain.Account
}

// AccountService implements the credential and session-token flows, one
// generic implementation shared by both principal kinds.
type AccountService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.Account, error)
	Login(ctx context.Context, kind domain.Kind, email, password string) (*LoginResult, error)

	// RequestPasswordReset mints a short-lived token bound to the current
	// password hash and dispatches the reset link out-of-band. Mail
	// delivery failures are never surfaced.
	RequestPasswordReset(ctx context.Context, kind domain.Kind, email string) error
	// VerifyResetToken checks a reset link and returns the account email
	// so a client can present the reset form.
	VerifyResetToken(ctx context.Context, kind domain.Kind, id, token string) (string, error)
	// CompleteReset verifies the token against the current hash and, only
	// then, writes a new hash. The write invalidates every outstanding
	// reset token for the account.
	CompleteReset(ctx context.Context, kind domain.Kind, email, token, newPassword string) error

	ChangePassword(ctx context.Context, kind domain.Kind, id, oldPassword, newPassword string) error
	ValidatePassword(ctx context.Context, kind domain.Kind, id, password string) error

	// AccountData decodes a session token, re-reads the store, and rejects
	// tokens whose embedded hash snapshot no longer matches.
	AccountData(ctx context.Context, kind domain.Kind, token string) (*domain.Account, error)
	UpdateProfile(ctx context.Context, kind domain.Kind, id string, update ProfileUpdate) (*domain.Account, error)
}
