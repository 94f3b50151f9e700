package authmodel

// RefreshRequest is the body of POST /auth/refresh and POST /auth/logout
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	Username       string `json:"username"`
	SocialProvider string `json:"socialProvider,omitempty"`
}

// SocialLoginRequest carries a token issued to the app by a third-party identity provider.
// The token is opaque here; the API verifies it.
type SocialLoginRequest struct {
	Provider string `json:"provider"`
	Token    string `json:"token"`
}

type SendVerificationRequest struct {
	Email string `json:"email"`
}

type VerifyEmailRequest struct {
	Email            string `json:"email"`
	VerificationCode string `json:"verificationCode"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"newPassword"`
}

type DeleteAccountRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
