package ports

import (
	"context"

	"github.com/spoonhq/accounts-api/internal/core/domain"
)

// EditOperatorInput carries an administrator's edit of a backend operator.
type EditOperatorInput struct {
	OperatorID  string
	UserName    string
	Email       string
	PhoneNumber string
}

// OperatorService covers the operator lifecycle. Every mutation requires the
// acting principal to be a full administrator; restricted backend operators
// are rejected with domain.ErrForbidden.
type OperatorService interface {
	// AddBackendOperator creates a restricted operator with a placeholder
	// hash and mails them a reset link; the account is unusable until the
	// reset completes.
	AddBackendOperator(ctx context.Context, actorID, name, email string) (*domain.Account, error)
	// EditBackendOperator updates a backend operator's details. A changed
	// email re-placeholders the password and mails a fresh reset link.
	EditBackendOperator(ctx context.Context, actorID string, input EditOperatorInput) error
	DeleteBackendOperator(ctx context.Context, actorID, operatorID string) error
	ListOperators(ctx context.Context) ([]domain.Account, error)

	// SetAvailability flips the restaurant-wide ordering toggle.
	SetAvailability(ctx context.Context, actorID string, open bool) error
	GetAvailability(ctx context.Context) (bool, error)
}
