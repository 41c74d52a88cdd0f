package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/spoonhq/accounts-api/internal/api/metrics"
	"github.com/spoonhq/accounts-api/internal/core/domain"
	"github.com/spoonhq/accounts-api/internal/core/ports"
)

// AccountHandler serves the credential endpoints for one principal kind. The
// same handler is mounted twice, under /user and /admin.
type AccountHandler struct {
	service ports.AccountService
	kind    domain.Kind
}

func NewAccountHandler(service ports.AccountService, kind domain.Kind) *AccountHandler {
	return &AccountHandler{service: service, kind: kind}
}

// Register creates a new account.
//
// @Summary      Register a new account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  envelope
// @Failure      409   {object}  envelope
// @Failure      530   {object}  envelope
// @Router       /user/register [post]
func (h *AccountHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	account, err := h.service.Register(c.Request().Context(), ports.RegisterInput{
		Kind:        h.kind,
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues(string(h.kind)).Inc()
	return c.JSON(http.StatusCreated, ok(account, "account registered successfully"))
}

// Login authenticates an account and returns a session token.
//
// @Summary      Login
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  envelope
// @Failure      401   {object}  envelope
// @Failure      404   {object}  envelope
// @Router       /user/login [post]
func (h *AccountHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.Login(c.Request().Context(), h.kind, req.Email, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(string(h.kind), loginResult(err)).Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues(string(h.kind), "success").Inc()
	return c.JSON(http.StatusOK, ok(loginPayload{Account: result.Account, Token: result.Token}, "login successful"))
}

func loginResult(err error) string {
	switch err {
	case domain.ErrInvalidCredentials:
		return "invalid_credentials"
	case domain.ErrAccountNotFound:
		return "not_found"
	default:
		return "error"
	}
}

// ForgotPassword mails a short-lived reset link.
//
// @Summary      Request a password-reset mail
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body  body      forgotPasswordRequest  true  "Account email"
// @Success      200   {object}  envelope
// @Failure      404   {object}  envelope
// @Failure      530   {object}  envelope
// @Router       /user/set-password [post]
func (h *AccountHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.RequestPasswordReset(c.Request().Context(), h.kind, req.Email); err != nil {
		return err
	}

	metrics.ResetRequestsTotal.WithLabelValues(string(h.kind)).Inc()
	return c.JSON(http.StatusOK, ok(nil, "reset mail sent to "+req.Email))
}

// VerifyReset checks a reset link before the client shows the reset form.
//
// @Summary      Verify a reset link
// @Tags         accounts
// @Produce      json
// @Param        id     path      string  true  "Account id"
// @Param        token  path      string  true  "Reset token"
// @Success      200    {object}  envelope
// @Failure      403    {object}  envelope
// @Router       /user/reset-password/{id}/{token} [get]
func (h *AccountHandler) VerifyReset(c echo.Context) error {
	email, err := h.service.VerifyResetToken(c.Request().Context(), h.kind, c.Param("id"), c.Param("token"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok(verifyResetPayload{Email: email}, "verified for password reset"))
}

// CompleteReset finishes the forgot-password flow with a new password.
//
// @Summary      Complete a password reset
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body  body      completeResetRequest  true  "Email, token, and new password"
// @Success      200   {object}  envelope
// @Failure      403   {object}  envelope
// @Failure      409   {object}  envelope
// @Router       /user/forget-password [post]
func (h *AccountHandler) CompleteReset(c echo.Context) error {
	var req completeResetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err := h.service.CompleteReset(c.Request().Context(), h.kind, req.Email, req.Token, req.NewPassword)
	if err != nil {
		metrics.ResetCompletionsTotal.WithLabelValues(completionResult(err)).Inc()
		return err
	}

	metrics.ResetCompletionsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, ok(nil, "password reset successfully"))
}

func completionResult(err error) string {
	switch err {
	case domain.ErrResetForbidden:
		return "forbidden"
	case domain.ErrPasswordReused:
		return "password_reused"
	default:
		return "error"
	}
}

// ChangePassword is the authenticated self-service path; the principal comes
// from the session token injected by the auth middleware.
//
// @Summary      Change the current password
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changePasswordRequest  true  "Old and new password"
// @Success      200   {object}  envelope
// @Failure      401   {object}  envelope
// @Router       /admin/change-password [post]
func (h *AccountHandler) ChangePassword(c echo.Context) error {
	principalID, err := ctxPrincipalID(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.ChangePassword(c.Request().Context(), h.kind, principalID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok(nil, "password changed successfully"))
}

// ValidatePassword confirms the caller's password without side effects.
func (h *AccountHandler) ValidatePassword(c echo.Context) error {
	principalID, err := ctxPrincipalID(c)
	if err != nil {
		return err
	}

	var req validatePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.ValidatePassword(c.Request().Context(), h.kind, principalID, req.Password); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok(nil, "valid password"))
}

// AccountData returns the account for a session token carried in the body.
// The service re-reads the store and rejects stale hash snapshots.
func (h *AccountHandler) AccountData(c echo.Context) error {
	var req accountDataRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	account, err := h.service.AccountData(c.Request().Context(), h.kind, req.Token)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok(account, "account details"))
}

// UpdateProfile writes the caller's own profile fields. The path id must
// match the authenticated principal.
func (h *AccountHandler) UpdateProfile(c echo.Context) error {
	principalID, err := ctxPrincipalID(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	if id == "" {
		id = principalID
	}
	if id != principalID {
		return domain.ErrForbidden
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	account, err := h.service.UpdateProfile(c.Request().Context(), h.kind, id, ports.ProfileUpdate{
		UserName:    req.UserName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		AvatarURL:   req.AvatarURL,
		AvatarName:  req.AvatarName,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok(account, "details updated successfully"))
}
