package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/spoonhq/accounts-api/internal/core/domain"
	"github.com/spoonhq/accounts-api/internal/core/ports"
)

type stubAccountRepo struct {
	accounts map[string]*domain.Account
	nextID   int
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{accounts: make(map[string]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

func (r *stubAccountRepo) key(kind domain.Kind, id string) string {
	return string(kind) + "/" + id
}

func (r *stubAccountRepo) FindByID(_ context.Context, kind domain.Kind, id string) (*domain.Account, error) {
	if a, ok := r.accounts[r.key(kind, id)]; ok {
		return cloneAccount(a), nil
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) FindByEmail(_ context.Context, kind domain.Kind, email string) (*domain.Account, error) {
	for _, a := range r.accounts {
		if a.Kind == kind && a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) FindByPhoneNumber(_ context.Context, phone string) (*domain.Account, error) {
	for _, a := range r.accounts {
		if a.Kind == domain.KindUser && a.PhoneNumber == phone {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	for _, a := range r.accounts {
		if a.Kind == account.Kind && a.Email == account.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	copy := cloneAccount(account)
	r.nextID++
	copy.ID = fmt.Sprintf("acc-%d", r.nextID)
	r.accounts[r.key(copy.Kind, copy.ID)] = cloneAccount(copy)
	return cloneAccount(copy), nil
}

func (r *stubAccountRepo) UpdatePasswordHash(_ context.Context, kind domain.Kind, id, hash string) error {
	a, ok := r.accounts[r.key(kind, id)]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.PasswordHash = hash
	return nil
}

func (r *stubAccountRepo) UpdateLastLogin(_ context.Context, kind domain.Kind, id string, at time.Time) error {
	a, ok := r.accounts[r.key(kind, id)]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.LastLoginAt = at
	return nil
}

func (r *stubAccountRepo) UpdateProfile(_ context.Context, kind domain.Kind, id string, update ports.ProfileUpdate) (*domain.Account, error) {
	a, ok := r.accounts[r.key(kind, id)]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	a.UserName = update.UserName
	a.Email = update.Email
	a.PhoneNumber = update.PhoneNumber
	a.Address = update.Address
	if update.AvatarURL != "" {
		a.AvatarURL = update.AvatarURL
		a.AvatarName = update.AvatarName
	}
	return cloneAccount(a), nil
}

func (r *stubAccountRepo) ListOperators(_ context.Context) ([]domain.Account, error) {
	var out []domain.Account
	for _, a := range r.accounts {
		if a.Kind == domain.KindOperator {
			out = append(out, *cloneAccount(a))
		}
	}
	return out, nil
}

func (r *stubAccountRepo) Delete(_ context.Context, kind domain.Kind, id string) error {
	k := r.key(kind, id)
	if _, ok := r.accounts[k]; !ok {
		return domain.ErrAccountNotFound
	}
	delete(r.accounts, k)
	return nil
}

type stubNotifier struct {
	mails []ports.ResetMail
}

func (n *stubNotifier) Enqueue(mail ports.ResetMail) {
	n.mails = append(n.mails, mail)
}

type stubThrottle struct {
	throttled bool
	err       error
	marks     []string
}

func (t *stubThrottle) IsThrottled(_ context.Context, _ string) (bool, error) {
	return t.throttled, t.err
}

func (t *stubThrottle) Mark(_ context.Context, email string) error {
	t.marks = append(t.marks, email)
	return nil
}

type accountFixture struct {
	svc      *AccountService
	repo     *stubAccountRepo
	notifier *stubNotifier
	throttle *stubThrottle
	tokens   *TokenIssuer
}

func newAccountFixture() *accountFixture {
	repo := newStubAccountRepo()
	notifier := &stubNotifier{}
	throttle := &stubThrottle{}
	tokens := NewTokenIssuer("server-secret", time.Hour, time.Minute)
	svc := NewAccountService(repo, tokens, notifier, throttle, "http://localhost:3000", bcrypt.MinCost, zerolog.Nop())
	return &accountFixture{svc: svc, repo: repo, notifier: notifier, throttle: throttle, tokens: tokens}
}

func TestAccountService_Register_HashesPassword(t *testing.T) {
	f := newAccountFixture()

	account, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Kind: domain.KindUser, Email: "a@x.com", Password: "pw1", PhoneNumber: "1234567890",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if account.PasswordHash == "pw1" {
		t.Fatalf("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("pw1")); err != nil {
		t.Fatalf("stored hash does not verify against plaintext: %v", err)
	}
	if account.Roles.IsAdministrator || account.Roles.IsOperator {
		t.Fatalf("customer must have no role flags: %+v", account.Roles)
	}
}

func TestAccountService_Register_Validation(t *testing.T) {
	f := newAccountFixture()

	if _, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Kind: domain.KindUser, Email: "not-an-email", Password: "pw", PhoneNumber: "1234567890",
	}); err != domain.ErrInvalidEmail {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}

	if _, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Kind: domain.KindUser, Email: "a@x.com", Password: "pw", PhoneNumber: "123",
	}); err != domain.ErrInvalidPhoneNumber {
		t.Fatalf("expected ErrInvalidPhoneNumber, got %v", err)
	}
}

func TestAccountService_Register_Duplicates(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, ports.RegisterInput{
		Kind: domain.KindUser, Email: "a@x.com", Password: "pw1", PhoneNumber: "1234567890",
	}); err != nil {
		t.Fatalf("first register: %v", err)
	}

	if _, err := f.svc.Register(ctx, ports.RegisterInput{
		Kind: domain.KindUser, Email: "a@x.com", Password: "pw2", PhoneNumber: "0987654321",
	}); err != domain.ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	if _, err := f.svc.Register(ctx, ports.RegisterInput{
		Kind: domain.KindUser, Email: "b@x.com", Password: "pw2", PhoneNumber: "1234567890",
	}); err != domain.ErrPhoneNumberTaken {
		t.Fatalf("expected ErrPhoneNumberTaken, got %v", err)
	}

	if len(f.repo.accounts) != 1 {
		t.Fatalf("duplicate registration must not create a second record, have %d", len(f.repo.accounts))
	}
}

func TestAccountService_Register_OperatorIsAdministrator(t *testing.T) {
	f := newAccountFixture()

	account, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Kind: domain.KindOperator, Email: "root@x.com", Password: "pw",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !account.Roles.IsAdministrator {
		t.Fatalf("self-registered operator must be a full administrator")
	}
}

func TestAccountService_Login_Success(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	_, _ = f.svc.Register(ctx, ports.RegisterInput{
		Kind: domain.KindUser, Email: "a@x.com", Password: "pw1", PhoneNumber: "1234567890",
	})

	result, err := f.svc.Login(ctx, domain.KindUser, "a@x.com", "pw1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.Token == "" {
		t.Fatalf("expected a session token")
	}
	if result.Account.LastLoginAt.IsZero() {
		t.Fatalf("login must stamp LastLoginAt")
	}

	stored, _ := f.repo.FindByEmail(ctx, domain.KindUser, "a@x.com")
	if stored.LastLoginAt.IsZero() {
		t.Fatalf("LastLoginAt not persisted")
	}

	claims, err := f.tokens.ParseSession(result.Token)
	if err != nil {
		t.Fatalf("session token not decodable: %v", err)
	}
	if claims.HashSnapshot != stored.PasswordHash {
		t.Fatalf("token must embed the current hash snapshot")
	}
}

func TestAccountService_Login_WrongPasswordDoesNotStamp(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	_, _ = f.svc.Register(ctx, ports.RegisterInput{
		Kind: domain.KindUser, Email: "a@x.com", Password: "pw1", PhoneNumber: "1234567890",
	})

	if _, err := f.svc.Login(ctx, domain.KindUser, "a@x.com", "wrong"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	stored, _ := f.repo.FindByEmail(ctx, domain.KindUser, "a@x.com")
	if !stored.LastLoginAt.IsZero() {
		t.Fatalf("failed login must not mutate LastLoginAt")
	}
}

func TestAccountService_Login_UnknownEmail(t *testing.T) {
	f := newAccountFixture()
	if _, err := f.svc.Login(context.Background(), domain.KindUser, "ghost@x.com", "pw"); err != domain.ErrAccountNotFound {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccountService_ResetFlow_EndToEnd(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()

	// register a@x.com / pw1 / 1234567890, then log in
	_, _ = f.svc.Register(ctx, ports.RegisterInput{
		Kind: domain.KindUser, Email: "a@x.com", Password: "pw1", PhoneNumber: "1234567890",
	})
	if _, err := f.svc.Login(ctx, domain.KindUser, "a@x.com", "pw1"); err != nil {
		t.Fatalf("initial login: %v", err)
	}

	// request a reset; the link carries id and token
	if err := f.svc.RequestPasswordReset(ctx, domain.KindUser, "a@x.com"); err != nil {
		t.Fatalf("RequestPasswordReset: %v", err)
	}
	if len(f.notifier.mails) != 1 {
		t.Fatalf("expected one reset mail, got %d", len(f.notifier.mails))
	}
	account, _ := f.repo.FindByEmail(ctx, domain.KindUser, "a@x.com")
	token, err := f.tokens.IssueReset(account)
	if err != nil {
		t.Fatalf("IssueReset: %v", err)
	}

	// the link verifies while the hash is unchanged
	email, err := f.svc.VerifyResetToken(ctx, domain.KindUser, account.ID, token)
	if err != nil {
		t.Fatalf("VerifyResetToken: %v", err)
	}
	if email != "a@x.com" {
		t.Fatalf("expected account email back, got %s", email)
	}

	// complete with pw2
	if err := f.svc.CompleteReset(ctx, domain.KindUser, "a@x.com", token, "pw2"); err != nil {
		t.Fatalf("CompleteReset: %v", err)
	}

	// the same token is now unverifiable: the hash write rotated the secret
	if _, err := f.svc.VerifyResetToken(ctx, domain.KindUser, account.ID, token); err != domain.ErrResetForbidden {
		t.Fatalf("expected ErrResetForbidden after completion, got %v", err)
	}

	// old password rejected, new one accepted
	if _, err := f.svc.Login(ctx, domain.KindUser, "a@x.com", "pw1"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for pw1, got %v", err)
	}
	if _, err := f.svc.Login(ctx, domain.KindUser, "a@x.com", "pw2"); err != nil {
		t.Fatalf("login with pw2: %v", err)
	}
}

func TestAccountService_CompleteReset_SamePasswordConflict(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	_, _ = f.svc.Register(ctx, ports.RegisterInput{
		Kind: domain.KindUser, Email: "a@x.com", Password: "pw1", PhoneNumber: "1234567890",
	})
	account, _ := f.repo.FindByEmail(ctx, domain.KindUser, "a@x.com")
	token, _ := f.tokens.IssueReset(account)

	if err := f.svc.CompleteReset(ctx, domain.KindUser, "a@x.com", token, "pw1"); err != domain.ErrPasswordReused {
		t.Fatalf("expected ErrPasswordReused, got %v", err)
	}
}

func TestAccountService_CompleteReset_TokenCheckedBeforePasswordComparison(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	_, _ = f.svc.Register(ctx, ports.RegisterInput{
		Kind: domain.KindUser, Email: "a@x.com", Password: "pw1", PhoneNumber: "1234567890",
	})

	// An attacker who knows the current password but holds no token must not
	// learn that the guess matched: the answer is the same forbidden error a
	// wrong guess would get.
	err := f.svc.CompleteReset(ctx, domain.KindUser, "a@x.com", "bogus-token", "pw1")
	if err != domain.ErrResetForbidden {
		t.Fatalf("expected ErrResetForbidden before any password comparison, got %v", err)
	}
}

func TestAccountService_RequestPasswordReset_UnknownEmail(t *testing.T) {
	f := newAccountFixture()
	if err := f.svc.RequestPasswordReset(context.Background(), domain.KindUser, "ghost@x.com"); err != domain.ErrAccountNotFound {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if len(f.notifier.mails) != 0 {
		t.Fatalf("no mail must be sent for unknown accounts")
	}
}

func TestAccountService_RequestPasswordReset_Throttled(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	_, _ = f.svc.Register(ctx, ports.RegisterInput{
		Kind: domain.KindUser, Email: "a@x.com", Password: "pw1", PhoneNumber: "1234567890",
	})
	f.throttle.throttled = true

	if err := f.svc.RequestPasswordReset(ctx, domain.KindUser, "a@x.com"); err != nil {
		t.Fatalf("throttled request must still succeed: %v", err)
	}
	if len(f.notifier.mails) != 0 {
		t.Fatalf("throttled request must not enqueue mail")
	}
}

func TestAccountService_RequestPasswordReset_ThrottleFailsOpen(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	_, _ = f.svc.Register(ctx, ports.RegisterInput{
		Kind: domain.KindUser, Email: "a@x.com", Password: "pw1", PhoneNumber: "1234567890",
	})
	f.throttle.err = fmt.Errorf("redis down")

	if err := f.svc.RequestPasswordReset(ctx, domain.KindUser, "a@x.com"); err != nil {
		t.Fatalf("throttle failure must not fail the request: %v", err)
	}
	if len(f.notifier.mails) != 1 {
		t.Fatalf("throttle failure must fail open and send mail")
	}
}

func TestAccountService_ChangePassword(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	_, _ = f.svc.Register(ctx, ports.RegisterInput{
		Kind: domain.KindUser, Email: "a@x.com", Password: "pw1", PhoneNumber: "1234567890",
	})
	account, _ := f.repo.FindByEmail(ctx, domain.KindUser, "a@x.com")

	if err := f.svc.ChangePassword(ctx, domain.KindUser, account.ID, "wrong", "pw2"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := f.svc.ChangePassword(ctx, domain.KindUser, account.ID, "pw1", "pw1"); err != domain.ErrPasswordReused {
		t.Fatalf("expected ErrPasswordReused, got %v", err)
	}
	if err := f.svc.ChangePassword(ctx, domain.KindUser, account.ID, "pw1", "pw2"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := f.svc.Login(ctx, domain.KindUser, "a@x.com", "pw2"); err != nil {
		t.Fatalf("login with changed password: %v", err)
	}
}

func TestAccountService_ChangePassword_InvalidatesResetTokens(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	_, _ = f.svc.Register(ctx, ports.RegisterInput{
		Kind: domain.KindUser, Email: "a@x.com", Password: "pw1", PhoneNumber: "1234567890",
	})
	account, _ := f.repo.FindByEmail(ctx, domain.KindUser, "a@x.com")
	token, _ := f.tokens.IssueReset(account)

	if err := f.svc.ChangePassword(ctx, domain.KindUser, account.ID, "pw1", "pw2"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := f.svc.VerifyResetToken(ctx, domain.KindUser, account.ID, token); err != domain.ErrResetForbidden {
		t.Fatalf("outstanding reset token must die on any password write, got %v", err)
	}
}

func TestAccountService_ValidatePassword(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	_, _ = f.svc.Register(ctx, ports.RegisterInput{
		Kind: domain.KindOperator, Email: "root@x.com", Password: "pw1",
	})
	account, _ := f.repo.FindByEmail(ctx, domain.KindOperator, "root@x.com")

	if err := f.svc.ValidatePassword(ctx, domain.KindOperator, account.ID, "pw1"); err != nil {
		t.Fatalf("ValidatePassword: %v", err)
	}
	if err := f.svc.ValidatePassword(ctx, domain.KindOperator, account.ID, "nope"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAccountService_AccountData_RejectsStaleSnapshot(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	_, _ = f.svc.Register(ctx, ports.RegisterInput{
		Kind: domain.KindUser, Email: "a@x.com", Password: "pw1", PhoneNumber: "1234567890",
	})

	result, err := f.svc.Login(ctx, domain.KindUser, "a@x.com", "pw1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	account, err := f.svc.AccountData(ctx, domain.KindUser, result.Token)
	if err != nil {
		t.Fatalf("AccountData: %v", err)
	}
	if account.Email != "a@x.com" {
		t.Fatalf("unexpected account: %+v", account)
	}

	if err := f.svc.ChangePassword(ctx, domain.KindUser, account.ID, "pw1", "pw2"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := f.svc.AccountData(ctx, domain.KindUser, result.Token); err != domain.ErrUnauthorized {
		t.Fatalf("stale hash snapshot must be rejected, got %v", err)
	}
}

func TestAccountService_UpdateProfile_Validation(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	_, _ = f.svc.Register(ctx, ports.RegisterInput{
		Kind: domain.KindUser, Email: "a@x.com", Password: "pw1", PhoneNumber: "1234567890",
	})
	account, _ := f.repo.FindByEmail(ctx, domain.KindUser, "a@x.com")

	if _, err := f.svc.UpdateProfile(ctx, domain.KindUser, account.ID, ports.ProfileUpdate{
		UserName: " ", Email: "a@x.com", PhoneNumber: "1234567890", Address: "12 Main St",
	}); err != domain.ErrInvalidName {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}

	updated, err := f.svc.UpdateProfile(ctx, domain.KindUser, account.ID, ports.ProfileUpdate{
		UserName: "Alice", Email: "a@x.com", PhoneNumber: "1234567890", Address: "12 Main St",
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.UserName != "Alice" || updated.Address != "12 Main St" {
		t.Fatalf("profile not applied: %+v", updated)
	}
}
