package service

import (
	"context"

	"github.com/spoonhq/accounts-api/internal/core/domain"
	"github.com/spoonhq/accounts-api/internal/core/ports"
)

// Gate answers role questions from the store's current record, never from
// token claims. Session tokens are not live-revoked on password change; role
// checks always reflect the present state of the account.
type Gate struct {
	repo ports.AccountRepository
}

func NewGate(repo ports.AccountRepository) *Gate {
	return &Gate{repo: repo}
}

// RequireAdministrator fails with domain.ErrForbidden unless the principal is
// a full administrator. A restricted backend operator is rejected.
func (g *Gate) RequireAdministrator(ctx context.Context, principalID string) error {
	account, err := g.repo.FindByID(ctx, domain.KindOperator, principalID)
	if err != nil {
		return err
	}
	if !account.Roles.IsAdministrator {
		return domain.ErrForbidden
	}
	return nil
}
