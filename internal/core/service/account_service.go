package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/spoonhq/accounts-api/internal/core/domain"
	"github.com/spoonhq/accounts-api/internal/core/ports"
)

// AccountService implements registration, login, the reset flow, and the
// remaining password operations for both principal kinds.
type AccountService struct {
	repo     ports.AccountRepository
	tokens   *TokenIssuer
	notifier ports.Notifier
	throttle ports.ResetThrottle
	baseURL  string
	hashCost int
	logger   zerolog.Logger
}

func NewAccountService(
	repo ports.AccountRepository,
	tokens *TokenIssuer,
	notifier ports.Notifier,
	throttle ports.ResetThrottle,
	baseURL string,
	hashCost int,
	logger zerolog.Logger,
) *AccountService {
	if hashCost <= 0 {
		hashCost = bcrypt.DefaultCost
	}
	return &AccountService{
		repo:     repo,
		tokens:   tokens,
		notifier: notifier,
		throttle: throttle,
		baseURL:  baseURL,
		hashCost: hashCost,
		logger:   logger,
	}
}

// Register creates a new principal. Customers must present a unique ten-digit
// phone number; self-registered operators become full administrators.
func (s *AccountService) Register(ctx context.Context, input ports.RegisterInput) (*domain.Account, error) {
	if !domain.ValidEmail(input.Email) {
		return nil, domain.ErrInvalidEmail
	}
	if input.Kind == domain.KindUser {
		if !domain.ValidPhoneNumber(input.PhoneNumber) {
			return nil, domain.ErrInvalidPhoneNumber
		}
		if existing, err := s.repo.FindByPhoneNumber(ctx, input.PhoneNumber); err == nil && existing != nil {
			return nil, domain.ErrPhoneNumberTaken
		}
	}
	if existing, err := s.repo.FindByEmail(ctx, input.Kind, input.Email); err == nil && existing != nil {
		return nil, domain.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	account := &domain.Account{
		Kind:         input.Kind,
		Email:        input.Email,
		PhoneNumber:  input.PhoneNumber,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if input.Kind == domain.KindOperator {
		account.Roles = domain.RoleFlags{IsAdministrator: true}
	}

	created, err := s.repo.Create(ctx, account)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("kind", string(input.Kind)).Str("account_id", created.ID).Msg("account registered")
	return created, nil
}

// Login verifies credentials, stamps the login time, and issues a 7-day
// session token. The timestamp is only written after the hash comparison
// succeeds.
func (s *AccountService) Login(ctx context.Context, kind domain.Kind, email, password string) (*ports.LoginResult, error) {
	if !domain.ValidEmail(email) {
		return nil, domain.ErrInvalidEmail
	}
	account, err := s.repo.FindByEmail(ctx, kind, email)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, kind, account.ID, now); err != nil {
		return nil, fmt.Errorf("stamp login: %w", err)
	}
	account.LastLoginAt = now

	token, err := s.tokens.IssueSession(account)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}

	s.logger.Info().Str("kind", string(kind)).Str("account_id", account.ID).Msg("login succeeded")
	return &ports.LoginResult{Token: token, Account: account}, nil
}

// RequestPasswordReset mints a reset token bound to the current hash and
// enqueues the link for mail delivery. Delivery is best-effort: throttle
// errors fail open and the caller never learns whether the mail went out.
func (s *AccountService) RequestPasswordReset(ctx context.Context, kind domain.Kind, email string) error {
	if !domain.ValidEmail(email) {
		return domain.ErrInvalidEmail
	}
	account, err := s.repo.FindByEmail(ctx, kind, email)
	if err != nil {
		return err
	}

	token, err := s.tokens.IssueReset(account)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}
	link := fmt.Sprintf("%s/%s/reset-password/%s/%s", s.baseURL, kind.RoutePrefix(), account.ID, token)

	throttled, err := s.throttle.IsThrottled(ctx, account.Email)
	if err != nil {
		s.logger.Warn().Err(err).Str("email", account.Email).Msg("reset throttle check failed, sending anyway")
		throttled = false
	}
	if throttled {
		s.logger.Info().Str("email", account.Email).Msg("reset mail throttled")
		return nil
	}

	s.notifier.Enqueue(ports.ResetMail{Recipient: account.Email, Link: link})
	if err := s.throttle.Mark(ctx, account.Email); err != nil {
		s.logger.Warn().Err(err).Str("email", account.Email).Msg("reset throttle mark failed")
	}
	s.logger.Info().Str("kind", string(kind)).Str("account_id", account.ID).Msg("reset mail enqueued")
	return nil
}

// VerifyResetToken re-derives the per-account secret from the current stored
// hash and checks the token. Expired tokens and tokens bound to a superseded
// hash fail identically.
func (s *AccountService) VerifyResetToken(ctx context.Context, kind domain.Kind, id, token string) (string, error) {
	account, err := s.repo.FindByID(ctx, kind, id)
	if err != nil {
		return "", err
	}
	if _, err := s.tokens.VerifyReset(token, account.PasswordHash); err != nil {
		return "", err
	}
	return account.Email, nil
}

// CompleteReset finishes the forgot-password flow. The token is verified
// before the same-password comparison so that only a bearer of a live reset
// token can probe whether a candidate password matches the current one.
func (s *AccountService) CompleteReset(ctx context.Context, kind domain.Kind, email, token, newPassword string) error {
	if !domain.ValidEmail(email) {
		return domain.ErrInvalidEmail
	}
	account, err := s.repo.FindByEmail(ctx, kind, email)
	if err != nil {
		return err
	}

	claims, err := s.tokens.VerifyReset(token, account.PasswordHash)
	if err != nil {
		return err
	}
	if claims.PrincipalID != account.ID {
		return domain.ErrResetForbidden
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(newPassword)) == nil {
		return domain.ErrPasswordReused
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.hashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.UpdatePasswordHash(ctx, kind, account.ID, string(hash)); err != nil {
		return err
	}

	s.logger.Info().Str("kind", string(kind)).Str("account_id", account.ID).Msg("password reset completed")
	return nil
}

// ChangePassword is the authenticated self-service path. The session token is
// validated upstream; here only the old password gates the write.
func (s *AccountService) ChangePassword(ctx context.Context, kind domain.Kind, id, oldPassword, newPassword string) error {
	account, err := s.repo.FindByID(ctx, kind, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(oldPassword)) != nil {
		return domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(newPassword)) == nil {
		return domain.ErrPasswordReused
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.hashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.UpdatePasswordHash(ctx, kind, account.ID, string(hash)); err != nil {
		return err
	}

	s.logger.Info().Str("kind", string(kind)).Str("account_id", account.ID).Msg("password changed")
	return nil
}

// ValidatePassword performs a pure hash comparison with no side effects.
func (s *AccountService) ValidatePassword(ctx context.Context, kind domain.Kind, id, password string) error {
	account, err := s.repo.FindByID(ctx, kind, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return domain.ErrInvalidCredentials
	}
	return nil
}

// AccountData decodes a session token and re-reads the store. A token whose
// hash snapshot no longer matches the stored hash is rejected, so sessions
// issued before a password change cannot read account data.
func (s *AccountService) AccountData(ctx context.Context, kind domain.Kind, token string) (*domain.Account, error) {
	claims, err := s.tokens.ParseSession(token)
	if err != nil {
		return nil, err
	}
	account, err := s.repo.FindByID(ctx, kind, claims.PrincipalID)
	if err != nil {
		return nil, err
	}
	if account.PasswordHash != claims.HashSnapshot {
		return nil, domain.ErrUnauthorized
	}
	return account, nil
}

// UpdateProfile validates and writes the mutable profile fields.
func (s *AccountService) UpdateProfile(ctx context.Context, kind domain.Kind, id string, update ports.ProfileUpdate) (*domain.Account, error) {
	if !domain.ValidName(update.UserName) {
		return nil, domain.ErrInvalidName
	}
	if !domain.ValidEmail(update.Email) {
		return nil, domain.ErrInvalidEmail
	}
	if !domain.ValidPhoneNumber(update.PhoneNumber) {
		return nil, domain.ErrInvalidPhoneNumber
	}
	if !domain.ValidAddress(update.Address) {
		return nil, domain.ErrInvalidAddress
	}
	if _, err := s.repo.FindByID(ctx, kind, id); err != nil {
		return nil, err
	}
	return s.repo.UpdateProfile(ctx, kind, id, update)
}
