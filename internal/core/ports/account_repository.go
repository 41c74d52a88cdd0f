package ports

import (
	"context"
	"time"

	"github.com/spoonhq/accounts-api/internal/core/domain"
)

// ProfileUpdate carries the mutable profile fields of an account. Empty avatar
// fields leave the stored avatar untouched.
type ProfileUpdate struct {
	UserName    string
	Email       string
	PhoneNumber string
	Address     string
	AvatarURL   string
	AvatarName  string
}

// AccountRepository defines the interface for credential persistence. Every
// method addresses exactly one document; atomicity beyond a single record is
// not provided.
type AccountRepository interface {
	FindByID(ctx context.Context, kind domain.Kind, id string) (*domain.Account, error)
	FindByEmail(ctx context.Context, kind domain.Kind, email string) (*domain.Account, error)
	// FindByPhoneNumber only searches the customer population; operators
	// have no unique phone constraint.
	FindByPhoneNumber(ctx context.Context, phone string) (*domain.Account, error)
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	UpdatePasswordHash(ctx context.Context, kind domain.Kind, id, hash string) error
	UpdateLastLogin(ctx context.Context, kind domain.Kind, id string, at time.Time) error
	UpdateProfile(ctx context.Context, kind domain.Kind, id string, update ProfileUpdate) (*domain.Account, error)
	ListOperators(ctx context.Context) ([]domain.Account, error)
	Delete(ctx context.Context, kind domain.Kind, id string) error
}

// AvailabilityStore persists the single restaurant-wide ordering toggle. The
// catalog itself is owned by another service; only the admin-gated switch
// lives here.
type AvailabilityStore interface {
	SetOpen(ctx context.Context, open bool) error
	IsOpen(ctx context.Context) (bool, error)
}
