package handler

// envelope is the response body shared by every endpoint:
// {"data": ..., "message": "...", "success": true}.
type envelope struct {
	Data    any    `json:"data"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

func ok(data any, message string) envelope {
	return envelope{Data: data, Message: message, Success: true}
}

// --- Request types ---

type registerRequest struct {
	Email    string `json:"email"        validate:"required"`
	Password string `json:"password"     validate:"required"`
	// PhoneNumber is required for customer registration only; the service
	// enforces the ten-digit shape.
	PhoneNumber string `json:"phone_number,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

type completeResetRequest struct {
	Email       string `json:"email"        validate:"required"`
	Token       string `json:"token"        validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

type validatePasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

type accountDataRequest struct {
	Token string `json:"token" validate:"required"`
}

type updateProfileRequest struct {
	UserName    string `json:"user_name"    validate:"required"`
	Email       string `json:"email"        validate:"required"`
	PhoneNumber string `json:"phone_number" validate:"required"`
	Address     string `json:"address"      validate:"required"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	AvatarName  string `json:"avatar_name,omitempty"`
}

type addOperatorRequest struct {
	Name  string `json:"name"  validate:"required"`
	Email string `json:"email" validate:"required"`
}

type editOperatorRequest struct {
	ID          string `json:"id"    validate:"required"`
	Name        string `json:"name"  validate:"required"`
	Email       string `json:"email" validate:"required"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// --- Response payloads carried in envelope.Data ---

type loginPayload struct {
	Account any    `json:"account"`
	Token   string `json:"token"`
}

type verifyResetPayload struct {
	Email string `json:"email"`
}

type availabilityPayload struct {
	Open bool `json:"open"`
}
