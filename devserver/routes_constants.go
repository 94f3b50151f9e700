package devserver

// APIPrefix is the root every API route is served under
const APIPrefix = "/api/v1"

// Route path constants, relative to APIPrefix
const (
	// Auth Routes - Login & Logout
	RouteAuthLogin       = "/auth/login"
	RouteAuthSocialLogin = "/auth/social-login"
	RouteAuthLogout      = "/auth/logout"
	RouteAuthRefresh     = "/auth/refresh"

	// Auth Routes - Signup & Email Verification
	RouteAuthSignup           = "/auth/signup"
	RouteAuthSendVerification = "/auth/send-verification"
	RouteAuthVerifyEmail      = "/auth/verify-email"

	// Auth Routes - Account Management
	RouteAuthResetPassword = "/auth/password-reset/verify"
	RouteAuthAccount       = "/auth/account"

	// User Routes
	RouteUserProfile = "/user/profile"

	// Dev Routes - revokes the presented access token to simulate server-side invalidation
	RouteDevRevokeAccess = "/dev/revoke-access"

	// Operational Routes, served outside APIPrefix
	RouteMetrics = "/metrics"
	RouteHealth  = "/healthz"
)
