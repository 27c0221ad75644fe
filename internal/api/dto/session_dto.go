package dto

// LoginRequest is the credentials payload. Expire is accepted for
// compatibility with older clients and ignored; token lifetimes are fixed
// server-side.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Expire   int    `json:"expire,omitempty"`
}

// SignupRequest is the registration payload.
type SignupRequest struct {
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// MessageResponse is a simple confirmation body.
type MessageResponse struct {
	Message string `json:"message"`
}
