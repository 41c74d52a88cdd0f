package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/spoonhq/accounts-api/internal/core/domain"
	"github.com/spoonhq/accounts-api/internal/core/ports"
)

// OperatorService manages the operator lifecycle. All mutations are gated on
// the acting principal being a full administrator.
type OperatorService struct {
	repo         ports.AccountRepository
	availability ports.AvailabilityStore
	gate         *Gate
	tokens       *TokenIssuer
	notifier     ports.Notifier
	baseURL      string
	hashCost     int
	logger       zerolog.Logger
}

func NewOperatorService(
	repo ports.AccountRepository,
	availability ports.AvailabilityStore,
	gate *Gate,
	tokens *TokenIssuer,
	notifier ports.Notifier,
	baseURL string,
	hashCost int,
	logger zerolog.Logger,
) *OperatorService {
	if hashCost <= 0 {
		hashCost = bcrypt.DefaultCost
	}
	return &OperatorService{
		repo:         repo,
		availability: availability,
		gate:         gate,
		tokens:       tokens,
		notifier:     notifier,
		baseURL:      baseURL,
		hashCost:     hashCost,
		logger:       logger,
	}
}

// AddBackendOperator creates a restricted operator account. The password is a
// hash of random bytes nobody knows; the mailed reset link, bound to that
// placeholder hash, is the only way to make the account usable.
func (s *OperatorService) AddBackendOperator(ctx context.Context, actorID, name, email string) (*domain.Account, error) {
	if !domain.ValidName(name) {
		return nil, domain.ErrInvalidName
	}
	if !domain.ValidEmail(email) {
		return nil, domain.ErrInvalidEmail
	}
	if err := s.gate.RequireAdministrator(ctx, actorID); err != nil {
		return nil, err
	}
	if existing, err := s.repo.FindByEmail(ctx, domain.KindOperator, email); err == nil && existing != nil {
		return nil, domain.ErrEmailTaken
	}

	placeholder, err := s.placeholderHash()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &domain.Account{
		Kind:         domain.KindOperator,
		UserName:     name,
		Email:        email,
		PasswordHash: placeholder,
		Roles:        domain.RoleFlags{IsOperator: true},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	created, err := s.repo.Create(ctx, account)
	if err != nil {
		return nil, err
	}

	s.mailResetLink(created)
	s.logger.Info().Str("operator_id", created.ID).Str("actor_id", actorID).Msg("backend operator created")
	return created, nil
}

// EditBackendOperator updates a backend operator. When the email changes the
// password is re-placeholdered so the old mailbox cannot complete a pending
// reset, and a fresh link goes to the new address.
func (s *OperatorService) EditBackendOperator(ctx context.Context, actorID string, input ports.EditOperatorInput) error {
	if !domain.ValidName(input.UserName) {
		return domain.ErrInvalidName
	}
	if !domain.ValidEmail(input.Email) {
		return domain.ErrInvalidEmail
	}
	if err := s.gate.RequireAdministrator(ctx, actorID); err != nil {
		return err
	}
	target, err := s.repo.FindByID(ctx, domain.KindOperator, input.OperatorID)
	if err != nil {
		return err
	}

	emailChanged := target.Email != input.Email
	if emailChanged {
		if existing, err := s.repo.FindByEmail(ctx, domain.KindOperator, input.Email); err == nil && existing != nil {
			return domain.ErrEmailTaken
		}
	}

	updated, err := s.repo.UpdateProfile(ctx, domain.KindOperator, target.ID, ports.ProfileUpdate{
		UserName:    input.UserName,
		Email:       input.Email,
		PhoneNumber: input.PhoneNumber,
		Address:     target.Address,
	})
	if err != nil {
		return err
	}

	if emailChanged {
		placeholder, err := s.placeholderHash()
		if err != nil {
			return err
		}
		if err := s.repo.UpdatePasswordHash(ctx, domain.KindOperator, updated.ID, placeholder); err != nil {
			return err
		}
		updated.PasswordHash = placeholder
		s.mailResetLink(updated)
	}

	s.logger.Info().Str("operator_id", target.ID).Str("actor_id", actorID).Bool("email_changed", emailChanged).Msg("backend operator updated")
	return nil
}

// DeleteBackendOperator removes an operator account. Administrator-only;
// customers are never deleted through this subsystem.
func (s *OperatorService) DeleteBackendOperator(ctx context.Context, actorID, operatorID string) error {
	if err := s.gate.RequireAdministrator(ctx, actorID); err != nil {
		return err
	}
	if _, err := s.repo.FindByID(ctx, domain.KindOperator, operatorID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, domain.KindOperator, operatorID); err != nil {
		return err
	}
	s.logger.Info().Str("operator_id", operatorID).Str("actor_id", actorID).Msg("backend operator deleted")
	return nil
}

func (s *OperatorService) ListOperators(ctx context.Context) ([]domain.Account, error) {
	return s.repo.ListOperators(ctx)
}

// SetAvailability flips the restaurant-wide ordering toggle. The toggle is the
// only catalog-adjacent state this service owns.
func (s *OperatorService) SetAvailability(ctx context.Context, actorID string, open bool) error {
	if err := s.gate.RequireAdministrator(ctx, actorID); err != nil {
		return err
	}
	if err := s.availability.SetOpen(ctx, open); err != nil {
		return err
	}
	s.logger.Info().Bool("open", open).Str("actor_id", actorID).Msg("availability toggled")
	return nil
}

func (s *OperatorService) GetAvailability(ctx context.Context) (bool, error) {
	return s.availability.IsOpen(ctx)
}

// placeholderHash hashes 32 random bytes; the plaintext is discarded so the
// account cannot be logged into until a reset completes.
func (s *OperatorService) placeholderHash() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate placeholder: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(buf)), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("hash placeholder: %w", err)
	}
	return string(hash), nil
}

func (s *OperatorService) mailResetLink(account *domain.Account) {
	token, err := s.tokens.IssueReset(account)
	if err != nil {
		s.logger.Error().Err(err).Str("operator_id", account.ID).Msg("failed to issue operator reset token")
		return
	}
	link := fmt.Sprintf("%s/admin/reset-password/%s/%s", s.baseURL, account.ID, token)
	s.notifier.Enqueue(ports.ResetMail{Recipient: account.Email, Link: link})
}
